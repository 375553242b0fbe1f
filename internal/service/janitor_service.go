package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type sessionSweeper interface {
	Sweep() []string
	Len() int
}

type exportCleaner interface {
	Cleanup() (int, []string, error)
}

// JanitorService periodically evicts idle sessions and expired exports.
type JanitorService struct {
	sessions sessionSweeper
	exports  exportCleaner
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewJanitorService constructs the janitor. exports and cache may be nil.
func NewJanitorService(sessions sessionSweeper, exports exportCleaner, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *JanitorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JanitorService{
		sessions: sessions,
		exports:  exports,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger))),
	}
}

// Start schedules RunOnce on spec, a cron expression or "@every" duration.
func (j *JanitorService) Start(spec string) error {
	if spec == "" {
		spec = "@every 10m"
	}
	if _, err := j.cron.AddFunc(spec, func() { j.RunOnce(context.Background()) }); err != nil {
		return fmt.Errorf("schedule janitor %q: %w", spec, err)
	}
	j.cron.Start()
	j.logger.Info("janitor started", zap.String("schedule", spec))
	return nil
}

// Stop halts scheduling and waits for a running sweep.
func (j *JanitorService) Stop() {
	<-j.cron.Stop().Done()
}

// RunOnce performs one sweep.
func (j *JanitorService) RunOnce(ctx context.Context) {
	evicted := j.sessions.Sweep()
	for _, id := range evicted {
		_ = j.cache.InvalidateSession(ctx, id)
	}
	j.metrics.SetActiveSessions(j.sessions.Len())
	if len(evicted) > 0 {
		j.logger.Info("idle sessions evicted", zap.Int("count", len(evicted)))
	}

	if j.exports == nil {
		return
	}
	jobs, files, err := j.exports.Cleanup()
	if err != nil {
		j.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if jobs > 0 || len(files) > 0 {
		j.logger.Info("expired exports removed", zap.Int("jobs", jobs), zap.Int("files", len(files)))
	}
}
