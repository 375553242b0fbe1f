package repository

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/noah-isme/fet-timetable-api/internal/models"
)

// SessionRepository keeps one snapshot per session in memory. Each session
// has its own locks; the map lock is held only to find or insert an entry.
// Readers never wait for a writer to finish building the next snapshot.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
	idleTTL  time.Duration
	now      func() time.Time
}

type sessionEntry struct {
	writer   sync.Mutex
	mu       sync.RWMutex
	snap     *models.Snapshot
	lastSeen atomic.Int64
}

func newEntry(snap *models.Snapshot, now time.Time) *sessionEntry {
	e := &sessionEntry{snap: snap}
	e.touch(now)
	return e
}

// NewSessionRepository builds a repository evicting sessions idle for longer
// than idleTTL. A non-positive TTL disables eviction.
func NewSessionRepository(idleTTL time.Duration) *SessionRepository {
	return &SessionRepository{
		sessions: make(map[string]*sessionEntry),
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

func emptySnapshot(now time.Time) *models.Snapshot {
	return &models.Snapshot{
		Teachers:  models.ScheduleTable{},
		Subgroups: models.ScheduleTable{},
		Mappings:  models.NewMappings(),
		UpdatedAt: now,
	}
}

// Get returns the current snapshot of a session and whether it exists.
// The snapshot must be treated as read-only.
func (r *SessionRepository) Get(id string) (*models.Snapshot, bool) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return entry.read(r.now()), true
}

// GetOrCreate returns the session snapshot, creating an empty one on first use.
func (r *SessionRepository) GetOrCreate(id string) *models.Snapshot {
	if snap, ok := r.Get(id); ok {
		return snap
	}
	r.mu.Lock()
	entry, ok := r.sessions[id]
	if !ok {
		now := r.now()
		entry = newEntry(emptySnapshot(now), now)
		r.sessions[id] = entry
	}
	r.mu.Unlock()
	return entry.read(r.now())
}

// Put installs snap for id unless a session already exists, and reports
// whether it was stored. Used when restoring persisted sessions.
func (r *SessionRepository) Put(id string, snap *models.Snapshot) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[id]; exists {
		return false
	}
	r.sessions[id] = newEntry(snap, r.now())
	return true
}

// Update applies fn to a copy of the session snapshot and installs the copy.
// Mapping tables are cloned before fn runs; schedule tables must be replaced,
// not mutated. Writers of one session are serialised; readers keep seeing the
// previous snapshot until the copy is installed. A session swept while fn runs
// is reinstated with the new snapshot; if another entry replaced it meanwhile,
// fn is applied again on top of that entry.
func (r *SessionRepository) Update(id string, fn func(*models.Snapshot) error) (*models.Snapshot, error) {
	for {
		entry := r.entry(id)
		next, installed, err := r.apply(id, entry, fn)
		if err != nil || installed {
			return next, err
		}
	}
}

func (r *SessionRepository) entry(id string) *sessionEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[id]
	if !ok {
		now := r.now()
		entry = newEntry(emptySnapshot(now), now)
		r.sessions[id] = entry
	}
	return entry
}

func (r *SessionRepository) apply(id string, entry *sessionEntry, fn func(*models.Snapshot) error) (*models.Snapshot, bool, error) {
	entry.writer.Lock()
	defer entry.writer.Unlock()

	current := entry.current()
	next := *current
	next.Mappings = current.Mappings.Clone()
	if err := fn(&next); err != nil {
		return current, false, err
	}
	now := r.now()
	next.Version = current.Version + 1
	next.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	live, ok := r.sessions[id]
	if !ok {
		r.sessions[id] = entry
		live = entry
	}
	if live != entry {
		return nil, false, nil
	}
	entry.mu.Lock()
	entry.snap = &next
	entry.mu.Unlock()
	entry.touch(now)
	return &next, true, nil
}

// Delete drops a session.
func (r *SessionRepository) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len counts live sessions.
func (r *SessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// List summarises every live session, sorted by id.
func (r *SessionRepository) List() []models.SessionInfo {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	entries := make(map[string]*sessionEntry, len(r.sessions))
	for id, entry := range r.sessions {
		ids = append(ids, id)
		entries[id] = entry
	}
	r.mu.RUnlock()

	sort.Strings(ids)
	out := make([]models.SessionInfo, 0, len(ids))
	for _, id := range ids {
		entry := entries[id]
		snap, seen := entry.current(), entry.seen()
		out = append(out, models.SessionInfo{
			SessionID:       id,
			TeachersCount:   len(snap.Teachers),
			SubgroupsCount:  len(snap.Subgroups),
			ActivitiesCount: len(snap.Activities),
			HasData:         snap.HasData(),
			LastSeen:        seen,
		})
	}
	return out
}

// Sweep evicts sessions idle longer than the TTL and returns their ids.
func (r *SessionRepository) Sweep() []string {
	if r.idleTTL <= 0 {
		return nil
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	var evicted []string
	for id, entry := range r.sessions {
		if entry.seen().Before(cutoff) {
			delete(r.sessions, id)
			evicted = append(evicted, id)
		}
	}
	sort.Strings(evicted)
	return evicted
}

func (e *sessionEntry) read(now time.Time) *models.Snapshot {
	e.touch(now)
	return e.current()
}

func (e *sessionEntry) current() *models.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snap
}

func (e *sessionEntry) touch(now time.Time) {
	e.lastSeen.Store(now.UnixNano())
}

func (e *sessionEntry) seen() time.Time {
	return time.Unix(0, e.lastSeen.Load())
}
