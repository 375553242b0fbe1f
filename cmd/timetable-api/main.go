package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/fet-timetable-api/api/swagger"
	"github.com/noah-isme/fet-timetable-api/internal/handler"
	"github.com/noah-isme/fet-timetable-api/internal/importer"
	"github.com/noah-isme/fet-timetable-api/internal/middleware"
	"github.com/noah-isme/fet-timetable-api/internal/models"
	"github.com/noah-isme/fet-timetable-api/internal/repository"
	"github.com/noah-isme/fet-timetable-api/internal/service"
	"github.com/noah-isme/fet-timetable-api/internal/timetable"
	"github.com/noah-isme/fet-timetable-api/pkg/cache"
	"github.com/noah-isme/fet-timetable-api/pkg/config"
	"github.com/noah-isme/fet-timetable-api/pkg/database"
	"github.com/noah-isme/fet-timetable-api/pkg/export"
	"github.com/noah-isme/fet-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/fet-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/fet-timetable-api/pkg/middleware/requestid"
	sessionmiddleware "github.com/noah-isme/fet-timetable-api/pkg/middleware/session"
	"github.com/noah-isme/fet-timetable-api/pkg/storage"
)

// @title FET Timetable API
// @version 1.0.0
// @description Derived teacher, class and room views over FET timetable exports
// @BasePath /api
// @schemes http

type mappingBackend interface {
	Load(ctx context.Context, sessionID string) (models.Mappings, error)
	Save(ctx context.Context, sessionID string, m models.Mappings) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	dataStore, err := storage.NewLocalStorage(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("init data storage: %w", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}

	checks := map[string]handler.ReadinessCheck{}

	var mappings mappingBackend = repository.NewFileMappingRepository(dataStore)
	if cfg.Storage.MappingsBackend == config.MappingsBackendPostgres {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer closeDB(db, logr)
		pg := repository.NewPostgresMappingRepository(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		mappings = pg
		checks["postgres"] = db.PingContext
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.ViewCache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("view cache disabled, redis unavailable", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(client, logr)
			defer repo.Close() //nolint:errcheck
			cacheSvc = service.NewCacheService(repo, metrics, cfg.ViewCache.TTL, logr, true)
			checks["redis"] = redisCheck(client)
		}
	}

	engine := timetable.New(
		timetable.WithMatcher(timetable.MatcherFor(cfg.Timetable.SubjectMatchMode)),
		timetable.WithSanitizer(timetable.NewSanitizer(cfg.Timetable.PlaceholderPhrases...)),
	)
	validate := validator.New()
	sessions := repository.NewSessionRepository(cfg.Session.IdleTTL)

	timetables := service.NewTimetableService(
		sessions,
		mappings,
		repository.NewUploadRepository(dataStore),
		importer.New(logr),
		engine,
		cacheSvc,
		metrics,
		validate,
		logr,
		service.TimetableConfig{
			MaxUploadBytes:  cfg.Storage.MaxUploadBytes,
			RestoreSessions: cfg.Storage.RestoreOnStart,
			CacheTTL:        cfg.ViewCache.TTL,
		},
	)
	if n, err := timetables.RestoreAll(ctx); err != nil {
		logr.Warn("session restore incomplete", zap.Int("restored", n), zap.Error(err))
	} else if n > 0 {
		logr.Info("sessions restored", zap.Int("count", n))
	}

	pdf := newPDFExporter(cfg, logr)
	exports := service.NewExportService(timetables, pdf, nil, nil, nil, metrics, logr)
	batches := service.NewBatchExportService(
		timetables,
		exports,
		exportStore,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		validate,
		logr,
		service.BatchConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Exports.ResultTTL,
			Workers:   cfg.Exports.WorkerConcurrency,
			Retries:   cfg.Exports.WorkerRetries,
		},
	)
	batches.Start(ctx)
	defer batches.Stop()

	janitor := service.NewJanitorService(sessions, batches, cacheSvc, metrics, logr)
	if err := janitor.Start(cfg.Session.SweepSpec); err != nil {
		return err
	}
	defer janitor.Stop()

	tokens := service.NewSessionTokenService(cfg.Session.Secret, cfg.Session.TokenTTL)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics, "/health", "/ready", "/metrics"))

	handler.Handlers{
		Timetable: handler.NewTimetableHandler(timetables, cfg.Storage.MaxUploadBytes),
		Rename:    handler.NewRenameHandler(timetables),
		Export:    handler.NewExportHandler(exports, batches),
		Metrics:   handler.NewMetricsHandler(metrics, checks),
	}.Register(r, cfg.APIPrefix, sessionmiddleware.Middleware(tokens, sessionmiddleware.Options{
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
	}, logr))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newPDFExporter(cfg *config.Config, logr *zap.Logger) *export.PDFExporter {
	if cfg.Exports.PDFFontPath != "" {
		if _, err := os.Stat(cfg.Exports.PDFFontPath); err != nil {
			logr.Warn("pdf font unavailable, using core font", zap.String("path", cfg.Exports.PDFFontPath), zap.Error(err))
			return export.NewPDFExporter("", cfg.Exports.SchoolHeader)
		}
	}
	return export.NewPDFExporter(cfg.Exports.PDFFontPath, cfg.Exports.SchoolHeader)
}

func redisCheck(client *redis.Client) handler.ReadinessCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func closeDB(db *sqlx.DB, logr *zap.Logger) {
	if err := db.Close(); err != nil {
		logr.Warn("close postgres", zap.Error(err))
	}
}
