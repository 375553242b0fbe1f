package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/fet-timetable-api/internal/dto"
	"github.com/noah-isme/fet-timetable-api/internal/importer"
	"github.com/noah-isme/fet-timetable-api/internal/models"
	"github.com/noah-isme/fet-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
)

// Documents lists the importable FET exports in the order they are applied.
var Documents = []importer.Document{importer.DocumentTeachers, importer.DocumentSubgroups, importer.DocumentActivities}

type sessionStore interface {
	Get(id string) (*models.Snapshot, bool)
	GetOrCreate(id string) *models.Snapshot
	Put(id string, snap *models.Snapshot) bool
	Update(id string, fn func(*models.Snapshot) error) (*models.Snapshot, error)
	List() []models.SessionInfo
	Len() int
}

type mappingStore interface {
	Load(ctx context.Context, sessionID string) (models.Mappings, error)
	Save(ctx context.Context, sessionID string, m models.Mappings) error
}

type uploadArchive interface {
	Save(sessionID, doc string, data []byte) error
	Load(sessionID string, docs ...string) (map[string][]byte, error)
	Sessions() ([]string, error)
}

type documentParser interface {
	Parse(doc importer.Document, data []byte, snap *models.Snapshot) error
}

// TimetableConfig tunes the timetable service.
type TimetableConfig struct {
	MaxUploadBytes  int64
	RestoreSessions bool
	CacheTTL        time.Duration
}

// TimetableService owns per-session snapshots and answers every view and
// catalog query through the engine.
type TimetableService struct {
	sessions sessionStore
	mappings mappingStore
	uploads  uploadArchive
	parser   documentParser
	engine   *timetable.Engine
	cache    *CacheService
	metrics  *MetricsService
	validate *validator.Validate
	logger   *zap.Logger
	cfg      TimetableConfig
}

// NewTimetableService wires the service. cache, metrics and uploads may be nil.
func NewTimetableService(
	sessions sessionStore,
	mappings mappingStore,
	uploads uploadArchive,
	parser documentParser,
	engine *timetable.Engine,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg TimetableConfig,
) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if engine == nil {
		engine = timetable.New()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20 * 1024 * 1024
	}
	return &TimetableService{
		sessions: sessions,
		mappings: mappings,
		uploads:  uploads,
		parser:   parser,
		engine:   engine,
		cache:    cache,
		metrics:  metrics,
		validate: validate,
		logger:   logger,
		cfg:      cfg,
	}
}

// Engine exposes the view engine used by exports.
func (s *TimetableService) Engine() *timetable.Engine {
	return s.engine
}

// Snapshot returns the current snapshot of a session, restoring it from
// disk on first use.
func (s *TimetableService) Snapshot(ctx context.Context, sessionID string) *models.Snapshot {
	if snap, ok := s.sessions.Get(sessionID); ok {
		return snap
	}
	if restored := s.restore(ctx, sessionID); restored != nil {
		if s.sessions.Put(sessionID, restored) {
			_ = s.cache.InvalidateSession(ctx, sessionID)
			s.metrics.SetActiveSessions(s.sessions.Len())
			return restored
		}
	}
	snap := s.sessions.GetOrCreate(sessionID)
	s.metrics.SetActiveSessions(s.sessions.Len())
	return snap
}

// restore rebuilds a snapshot from archived uploads and persisted mappings.
// It returns nil when nothing was persisted for the session.
func (s *TimetableService) restore(ctx context.Context, sessionID string) *models.Snapshot {
	snap := &models.Snapshot{
		Teachers:  models.ScheduleTable{},
		Subgroups: models.ScheduleTable{},
		Mappings:  models.NewMappings(),
		UpdatedAt: time.Now(),
	}
	found := false

	if s.mappings != nil {
		m, err := s.mappings.Load(ctx, sessionID)
		if err != nil {
			s.logger.Warn("load mappings failed", zap.String("session_id", sessionID), zap.Error(err))
		} else if len(m.Teachers) > 0 || len(m.Rooms) > 0 {
			snap.Mappings = m
			found = true
		}
	}

	if s.cfg.RestoreSessions && s.uploads != nil {
		names := make([]string, len(Documents))
		for i, doc := range Documents {
			names[i] = string(doc)
		}
		docs, err := s.uploads.Load(sessionID, names...)
		if err != nil {
			s.logger.Warn("load archived uploads failed", zap.String("session_id", sessionID), zap.Error(err))
		}
		for _, doc := range Documents {
			data, ok := docs[string(doc)]
			if !ok {
				continue
			}
			if err := s.parser.Parse(doc, data, snap); err != nil {
				s.logger.Warn("archived document unreadable", zap.String("session_id", sessionID), zap.String("document", string(doc)), zap.Error(err))
				continue
			}
			found = true
		}
	}

	if !found {
		return nil
	}
	s.logger.Info("session restored",
		zap.String("session_id", sessionID),
		zap.Int("teachers", len(snap.Teachers)),
		zap.Int("subgroups", len(snap.Subgroups)),
		zap.Int("activities", len(snap.Activities)))
	return snap
}

// RestoreAll loads every archived session into memory and returns how many
// were restored.
func (s *TimetableService) RestoreAll(ctx context.Context) (int, error) {
	if !s.cfg.RestoreSessions || s.uploads == nil {
		return 0, nil
	}
	ids, err := s.uploads.Sessions()
	if err != nil {
		return 0, err
	}
	restored := 0
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return restored, err
		}
		if _, ok := s.sessions.Get(id); ok {
			continue
		}
		if snap := s.restore(ctx, id); snap != nil && s.sessions.Put(id, snap) {
			restored++
		}
	}
	s.metrics.SetActiveSessions(s.sessions.Len())
	return restored, nil
}

// Upload parses the provided documents and replaces the matching parts of the
// session snapshot. Either every document applies or none does.
func (s *TimetableService) Upload(ctx context.Context, sessionID string, files map[importer.Document][]byte) (*dto.UploadResponse, error) {
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one of teachersXml, subgroupsXml, activitiesXml is required")
	}
	for doc, data := range files {
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			return nil, appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("%s document exceeds %d bytes", doc, s.cfg.MaxUploadBytes))
		}
	}

	s.Snapshot(ctx, sessionID)
	snap, err := s.sessions.Update(sessionID, func(next *models.Snapshot) error {
		for _, doc := range Documents {
			data, ok := files[doc]
			if !ok {
				continue
			}
			err := s.parser.Parse(doc, data, next)
			s.metrics.RecordImport(string(doc), err)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("upload rejected", zap.String("session_id", sessionID), zap.Error(err))
		return nil, appErrors.FromError(err)
	}

	if s.uploads != nil {
		for _, doc := range Documents {
			data, ok := files[doc]
			if !ok {
				continue
			}
			if err := s.uploads.Save(sessionID, string(doc), data); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive upload")
			}
		}
	}
	_ = s.cache.InvalidateSession(ctx, sessionID)

	s.logger.Info("upload applied",
		zap.String("session_id", sessionID),
		zap.Int("documents", len(files)),
		zap.Int("teachers", len(snap.Teachers)),
		zap.Int("subgroups", len(snap.Subgroups)),
		zap.Int("activities", len(snap.Activities)))

	return &dto.UploadResponse{
		Status:    "ok",
		Teachers:  timetable.TeacherNames(snap),
		Classes:   s.engine.Classes(snap),
		Subgroups: timetable.SubgroupIDs(snap),
		SessionID: sessionID,
	}, nil
}

// cachedView derives a view through the cache, keyed on the snapshot version.
func (s *TimetableService) cachedView(ctx context.Context, sessionID, view string, derive func(*models.Snapshot) []models.DerivedSlot, parts ...string) []models.DerivedSlot {
	snap := s.Snapshot(ctx, sessionID)
	key := ViewKey(sessionID, snap.Version, view, parts...)

	var cached []models.DerivedSlot
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached
	}

	start := time.Now()
	slots := derive(snap)
	s.metrics.ObserveView(view, time.Since(start))
	if slots == nil {
		slots = []models.DerivedSlot{}
	}
	_ = s.cache.Set(ctx, key, slots, s.cfg.CacheTTL)
	return slots
}

// TeacherView returns the merged week of a teacher, by original or display name.
func (s *TimetableService) TeacherView(ctx context.Context, sessionID, name string) []models.DerivedSlot {
	return s.cachedView(ctx, sessionID, "teacher", func(snap *models.Snapshot) []models.DerivedSlot {
		return s.engine.TeacherView(snap, name)
	}, name)
}

// ClassView returns the merged week of a class or subgroup.
func (s *TimetableService) ClassView(ctx context.Context, sessionID, name string, query dto.ClassViewQuery) ([]models.DerivedSlot, error) {
	if err := s.validate.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class view options")
	}
	opts := timetable.ClassViewOptions{
		LabelMode:     query.LabelMode,
		LabelSubjects: timetable.ParseLabelSubjects(query.LabelSubjects),
	}
	return s.cachedView(ctx, sessionID, "class", func(snap *models.Snapshot) []models.DerivedSlot {
		return s.engine.ClassView(snap, name, opts)
	}, name, opts.LabelMode, strings.Join(opts.LabelSubjects, ",")), nil
}

// RoomView returns the merged occupation of a room.
func (s *TimetableService) RoomView(ctx context.Context, sessionID, name string) []models.DerivedSlot {
	return s.cachedView(ctx, sessionID, "room", func(snap *models.Snapshot) []models.DerivedSlot {
		return s.engine.RoomView(snap, name)
	}, name)
}

// VacantRooms lists free rooms at every observed key.
func (s *TimetableService) VacantRooms(ctx context.Context, sessionID string) []models.DerivedSlot {
	return s.cachedView(ctx, sessionID, "vacant", s.engine.VacantRooms)
}

// Diagnostics explains the vacant-room inputs.
func (s *TimetableService) Diagnostics(ctx context.Context, sessionID string) timetable.VacancyDiagnostics {
	return timetable.Diagnose(s.Snapshot(ctx, sessionID))
}

// TeachersBySubject groups display teacher names by subject.
func (s *TimetableService) TeachersBySubject(ctx context.Context, sessionID string) map[string][]string {
	return timetable.TeachersBySubject(s.Snapshot(ctx, sessionID))
}

// Classes lists sanitized class names.
func (s *TimetableService) Classes(ctx context.Context, sessionID string) []string {
	return s.engine.Classes(s.Snapshot(ctx, sessionID))
}

// SubgroupsForClass lists the explicit subgroups of a class.
func (s *TimetableService) SubgroupsForClass(ctx context.Context, sessionID, name string) []string {
	return s.engine.SubgroupsForClass(s.Snapshot(ctx, sessionID), name)
}

// Rooms lists every display room name.
func (s *TimetableService) Rooms(ctx context.Context, sessionID string) []string {
	return timetable.Rooms(s.Snapshot(ctx, sessionID))
}

// RenameList returns the rename configuration rows of one kind.
func (s *TimetableService) RenameList(ctx context.Context, sessionID string, kind models.RenameKind) []models.RenameEntry {
	snap := s.Snapshot(ctx, sessionID)
	if kind == models.RenameKindRoom {
		return timetable.RoomRenameList(snap)
	}
	return timetable.TeacherRenameList(snap)
}

// Mappings returns the current rename tables.
func (s *TimetableService) Mappings(ctx context.Context, sessionID string) models.Mappings {
	return s.Snapshot(ctx, sessionID).Mappings
}

// Rename sets or clears one display name and persists both tables.
func (s *TimetableService) Rename(ctx context.Context, sessionID string, kind models.RenameKind, req dto.RenameRequest) (models.Mappings, error) {
	req.Original = strings.TrimSpace(req.Original)
	req.Renamed = strings.TrimSpace(req.Renamed)
	if err := s.validate.Struct(req); err != nil {
		return models.Mappings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "original name is required")
	}
	if kind != models.RenameKindTeacher && kind != models.RenameKindRoom {
		return models.Mappings{}, appErrors.Clone(appErrors.ErrValidation, "unknown rename kind "+string(kind))
	}

	s.Snapshot(ctx, sessionID)
	snap, err := s.sessions.Update(sessionID, func(next *models.Snapshot) error {
		table := next.Mappings.Table(kind)
		if req.Renamed == "" {
			delete(table, req.Original)
		} else {
			table[req.Original] = req.Renamed
		}
		return nil
	})
	if err != nil {
		return models.Mappings{}, appErrors.FromError(err)
	}

	if s.mappings != nil {
		if err := s.mappings.Save(ctx, sessionID, snap.Mappings); err != nil {
			s.logger.Error("persist mappings failed", zap.String("session_id", sessionID), zap.Error(err))
			return models.Mappings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save mappings")
		}
	}
	_ = s.cache.InvalidateSession(ctx, sessionID)

	s.logger.Info("rename saved",
		zap.String("session_id", sessionID),
		zap.String("kind", string(kind)),
		zap.String("original", req.Original),
		zap.Bool("cleared", req.Renamed == ""))
	return snap.Mappings, nil
}

// Sessions lists every live session.
func (s *TimetableService) Sessions() dto.SessionsResponse {
	list := s.sessions.List()
	s.metrics.SetActiveSessions(len(list))
	return dto.SessionsResponse{ActiveSessions: len(list), Sessions: list}
}
