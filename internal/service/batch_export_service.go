package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/fet-timetable-api/internal/dto"
	"github.com/noah-isme/fet-timetable-api/internal/models"
	"github.com/noah-isme/fet-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/fet-timetable-api/pkg/errors"
	"github.com/noah-isme/fet-timetable-api/pkg/jobs"
	"github.com/noah-isme/fet-timetable-api/pkg/storage"
)

const batchJobType = "batch-export"

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type snapshotSource interface {
	Snapshot(ctx context.Context, sessionID string) *models.Snapshot
	Engine() *timetable.Engine
}

type documentExporter interface {
	Export(ctx context.Context, sessionID string, req ExportRequest) (*Rendered, error)
}

// BatchConfig tunes background archive builds.
type BatchConfig struct {
	APIPrefix  string
	ResultTTL  time.Duration
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// BatchExportService builds ZIP archives holding the PDF timetable of every
// teacher or every class, on a background worker pool.
type BatchExportService struct {
	mu   sync.RWMutex
	jobs map[string]*models.BatchJob

	source   snapshotSource
	exporter documentExporter
	storage  fileStorage
	signer   *storage.SignedURLSigner
	queue    *jobs.Queue
	validate *validator.Validate
	logger   *zap.Logger
	cfg      BatchConfig
	now      func() time.Time
}

// NewBatchExportService constructs the service and its queue. Call Start
// before creating jobs.
func NewBatchExportService(source snapshotSource, exporter documentExporter, store fileStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, cfg BatchConfig) *BatchExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if cfg.APIPrefix == "" {
		cfg.APIPrefix = "/api"
	}
	s := &BatchExportService{
		jobs:     make(map[string]*models.BatchJob),
		source:   source,
		exporter: exporter,
		storage:  store,
		signer:   signer,
		validate: validate,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	s.queue = jobs.NewQueue(batchJobType, s.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		OnGiveUp:   s.giveUp,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool.
func (s *BatchExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop waits for running workers to exit.
func (s *BatchExportService) Stop() {
	s.queue.Stop()
}

type batchPayload struct {
	JobID     string
	SessionID string
}

// Create registers a job and queues it.
func (s *BatchExportService) Create(ctx context.Context, sessionID string, req dto.BatchExportRequest) (*models.BatchJob, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "kind must be teachers or classes")
	}
	names := s.names(ctx, sessionID, req.Kind)
	if len(names) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoData, "nothing to export, upload timetables first")
	}

	job := &models.BatchJob{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Kind:      req.Kind,
		Status:    models.BatchStatusQueued,
		Total:     len(names),
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	snapshot := *job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: batchJobType, Payload: batchPayload{JobID: job.ID, SessionID: sessionID}}); err != nil {
		s.fail(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	s.logger.Info("batch export queued", zap.String("job_id", job.ID), zap.String("session_id", sessionID), zap.String("kind", string(req.Kind)), zap.Int("total", job.Total))
	return &snapshot, nil
}

// Get returns a copy of a job owned by the session.
func (s *BatchExportService) Get(sessionID, id string) (*models.BatchJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok || job.SessionID != sessionID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	out := *job
	return &out, nil
}

// Download validates a signed token and opens the archive it grants.
func (s *BatchExportService) Download(token string) (*os.File, string, error) {
	grant, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, "", appErrors.Clone(appErrors.ErrExpired, "download link expired")
		}
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "download link invalid")
	}
	file, err := s.storage.Open(grant.Path)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	s.mu.RLock()
	job, ok := s.jobs[grant.JobID]
	s.mu.RUnlock()
	filename := grant.JobID + ".zip"
	if ok {
		filename = "emplois-du-temps-" + string(job.Kind) + ".zip"
	}
	return file, filename, nil
}

// Cleanup forgets finished jobs older than the result TTL and removes
// their archives.
func (s *BatchExportService) Cleanup() (int, []string, error) {
	cutoff := s.now().Add(-s.cfg.ResultTTL)
	s.mu.Lock()
	forgotten := 0
	for id, job := range s.jobs {
		if job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			delete(s.jobs, id)
			forgotten++
		}
	}
	s.mu.Unlock()

	removed, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	return forgotten, removed, err
}

// names lists the entities of a batch: original teacher names or
// sanitized class names.
func (s *BatchExportService) names(ctx context.Context, sessionID string, kind models.BatchKind) []string {
	snap := s.source.Snapshot(ctx, sessionID)
	if kind == models.BatchKindClasses {
		return s.source.Engine().Classes(snap)
	}
	return timetable.TeacherNames(snap)
}

func (s *BatchExportService) handle(ctx context.Context, j jobs.Job) error {
	payload, ok := j.Payload.(batchPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T", j.Payload)
	}
	s.update(payload.JobID, func(job *models.BatchJob) {
		job.Status = models.BatchStatusProcessing
		job.Done = 0
	})

	job, err := s.Get(payload.SessionID, payload.JobID)
	if err != nil {
		return err
	}

	target := models.ExportTargetTeacher
	if job.Kind == models.BatchKindClasses {
		target = models.ExportTargetSubgroup
	}
	snap := s.source.Snapshot(ctx, payload.SessionID)
	names := s.names(ctx, payload.SessionID, job.Kind)

	buf := &bytes.Buffer{}
	archive := zip.NewWriter(buf)
	used := make(map[string]int)
	written := 0
	for _, name := range sortedCopy(names) {
		if err := ctx.Err(); err != nil {
			return err
		}
		rendered, err := s.exporter.Export(ctx, payload.SessionID, ExportRequest{Format: models.ExportFormatPDF, Target: target, Name: name})
		if err != nil && !errors.Is(err, appErrors.ErrNoData) {
			return err
		}
		if err == nil {
			filename := rendered.Filename
			if target == models.ExportTargetTeacher {
				display := timetable.Display(name, snap.Mappings.Teachers)
				filename = "emploi-temps-professeur-" + slugify(display) + ".pdf"
			}
			w, err := archive.Create(uniqueName(used, filename))
			if err != nil {
				return fmt.Errorf("add %s to archive: %w", filename, err)
			}
			if _, err := w.Write(rendered.Body); err != nil {
				return fmt.Errorf("write %s to archive: %w", filename, err)
			}
			written++
		}
		s.update(job.ID, func(job *models.BatchJob) { job.Done++ })
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	if written == 0 {
		s.fail(job.ID, errors.New("no timetable could be rendered"))
		return nil
	}

	relPath, err := s.storage.Save(job.ID+".zip", buf.Bytes())
	if err != nil {
		return err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/export/download/%s", strings.TrimRight(s.cfg.APIPrefix, "/"), token)
	finished := s.now().UTC()
	s.update(job.ID, func(job *models.BatchJob) {
		job.Status = models.BatchStatusFinished
		job.ResultPath = relPath
		job.ResultURL = &url
		job.ExpiresAt = &expiresAt
		job.FinishedAt = &finished
		job.ErrorMessage = nil
	})
	s.logger.Info("batch export finished", zap.String("job_id", job.ID), zap.Int("files", written), zap.Int("total", job.Total))
	return nil
}

func (s *BatchExportService) giveUp(j jobs.Job, err error) {
	s.fail(j.ID, err)
}

func (s *BatchExportService) fail(id string, err error) {
	msg := err.Error()
	finished := s.now().UTC()
	s.update(id, func(job *models.BatchJob) {
		job.Status = models.BatchStatusFailed
		job.ErrorMessage = &msg
		job.FinishedAt = &finished
	})
	s.logger.Warn("batch export failed", zap.String("job_id", id), zap.Error(err))
}

func (s *BatchExportService) update(id string, fn func(*models.BatchJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
	}
}
