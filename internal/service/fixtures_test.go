package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/fet-timetable-api/internal/importer"
	"github.com/noah-isme/fet-timetable-api/internal/repository"
	"github.com/noah-isme/fet-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
	"github.com/noah-isme/fet-timetable-api/pkg/storage"
)

const teachersFixture = `<?xml version="1.0" encoding="UTF-8"?>
<Teachers_Timetable>
  <Teacher name="Ahmed">
    <Day name="Lundi_m">
      <Hour name="H1"><Activity id="1"/><Subject name="Math"/><Students name="3APIC-5"/><Room name="101"/></Hour>
      <Hour name="H2"><Activity id="1"/><Subject name="Math"/><Students name="3APIC-5"/><Room name="101"/></Hour>
    </Day>
  </Teacher>
  <Teacher name="Sara">
    <Day name="Mardi">
      <Hour name="H3"><Activity id="2"/><Subject name="SVT"/><Students name="2BAC-1"/><Room name="Labo"/></Hour>
    </Day>
  </Teacher>
</Teachers_Timetable>`

const subgroupsFixture = `<?xml version="1.0" encoding="UTF-8"?>
<Students_Timetable>
  <Subgroup name="3APIC-5">
    <Day name="Lundi_m">
      <Hour name="H1"><Activity id="1"/><Teacher name="Ahmed"/><Subject name="Math"/><Room name="101"/></Hour>
      <Hour name="H2"><Activity id="1"/><Teacher name="Ahmed"/><Subject name="Math"/><Room name="101"/></Hour>
    </Day>
  </Subgroup>
  <Subgroup name="2BAC-1">
    <Day name="Mardi">
      <Hour name="H3"><Activity id="2"/><Teacher name="Sara"/><Subject name="SVT"/><Room name="Labo"/></Hour>
    </Day>
  </Subgroup>
</Students_Timetable>`

const activitiesFixture = `<?xml version="1.0" encoding="UTF-8"?>
<Activities_Timetable>
  <Activity><Id>1</Id><Day>Lundi_m</Day><Hour>H1</Hour><Room>101</Room></Activity>
  <Activity><Id>3</Id><Day>Lundi_m</Day><Hour>H1</Hour><Room>102</Room></Activity>
</Activities_Timetable>`

func fixtureFiles() map[importer.Document][]byte {
	return map[importer.Document][]byte{
		importer.DocumentTeachers:   []byte(teachersFixture),
		importer.DocumentSubgroups:  []byte(subgroupsFixture),
		importer.DocumentActivities: []byte(activitiesFixture),
	}
}

type timetableFixture struct {
	svc      *TimetableService
	sessions *repository.SessionRepository
	store    *storage.LocalStorage
	dir      string
}

func newTimetableFixture(t *testing.T, dir string, cache *CacheService) timetableFixture {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	sessions := repository.NewSessionRepository(time.Hour)
	svc := NewTimetableService(
		sessions,
		repository.NewFileMappingRepository(store),
		repository.NewUploadRepository(store),
		importer.New(nil),
		timetable.New(),
		cache,
		NewMetricsService(),
		nil,
		nil,
		TimetableConfig{MaxUploadBytes: 1 << 20, RestoreSessions: true},
	)
	return timetableFixture{svc: svc, sessions: sessions, store: store, dir: dir}
}

func (f timetableFixture) upload(t *testing.T, sessionID string) {
	t.Helper()
	_, err := f.svc.Upload(context.Background(), sessionID, fixtureFiles())
	require.NoError(t, err)
}

// memoryCache is an in-process CacheRepository.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	gets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = raw
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefix) {
			delete(m.entries, key)
		}
	}
	return nil
}

func (m *memoryCache) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
