package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/tonikampos/kampos-xestion-api/api/swagger"
	"github.com/tonikampos/kampos-xestion-api/internal/filestore"
	"github.com/tonikampos/kampos-xestion-api/internal/handler"
	"github.com/tonikampos/kampos-xestion-api/internal/middleware"
	"github.com/tonikampos/kampos-xestion-api/internal/repository"
	"github.com/tonikampos/kampos-xestion-api/internal/service"
	"github.com/tonikampos/kampos-xestion-api/internal/store"
	"github.com/tonikampos/kampos-xestion-api/pkg/cache"
	"github.com/tonikampos/kampos-xestion-api/pkg/config"
	"github.com/tonikampos/kampos-xestion-api/pkg/database"
	"github.com/tonikampos/kampos-xestion-api/pkg/jobs"
	"github.com/tonikampos/kampos-xestion-api/pkg/logger"
	corsmiddleware "github.com/tonikampos/kampos-xestion-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tonikampos/kampos-xestion-api/pkg/middleware/requestid"
	"github.com/tonikampos/kampos-xestion-api/pkg/storage"
)

// backends holds the persistence layer selected at startup. ReportJobs and
// the migration source are only available on the PostgreSQL backend.
type backends struct {
	stores          store.Stores
	reportJobs      store.ReportJobStore
	migrationSource *store.Stores
	db              *sqlx.DB
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logr.Sync() }()

	if err := run(cfg, logr); err != nil {
		logr.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	be, err := openBackends(cfg, logr)
	if err != nil {
		return err
	}
	if be.db != nil {
		defer func() { _ = be.db.Close() }()
	}

	validate := validator.New()

	authSvc := service.NewAuthService(be.stores.Professors, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	professorSvc := service.NewProfessorService(be.stores.Professors, validate, logr)
	studentSvc := service.NewStudentService(be.stores.Students, be.stores.Enrollments, validate, logr)
	subjectSvc := service.NewSubjectService(be.stores.Subjects, be.stores.Enrollments, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(be.stores.Enrollments, be.stores.Students, be.stores.Subjects, validate, logr)
	importSvc := service.NewImportService(studentSvc, logr)
	backupSvc := service.NewBackupService(be.stores, cfg.Backup.Version, logr)

	statsSvc, err := buildStatsService(cfg, be.stores, logr)
	if err != nil {
		return err
	}
	gradeSvc := service.NewGradeService(be.stores.Grades, be.stores.Enrollments, be.stores.Subjects, be.stores.Students, statsSvc, validate, logr)

	var migrationSvc *service.MigrationService
	if be.migrationSource != nil {
		migrationSvc = service.NewMigrationService(*be.migrationSource, be.stores, logr)
	}

	var reportSvc *service.ReportService
	var queue *jobs.Queue
	if be.reportJobs != nil {
		reportStorage, err := storage.NewReportStorage(cfg.Reports.StorageDir)
		if err != nil {
			return fmt.Errorf("report storage: %w", err)
		}
		signer := storage.NewSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
		reportSvc = service.NewReportService(be.reportJobs, be.stores.Subjects, be.stores.Students, be.stores.Enrollments, be.stores.Grades, reportStorage, signer, logr)

		queue = jobs.NewQueue(reportSvc.Process, jobs.Config{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()
		reportSvc.AttachQueue(queue)

		go cleanupLoop(ctx, cfg, reportStorage, logr)
	} else {
		logr.Info("report generation disabled on this backend", zap.String("backend", cfg.Store.Backend))
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if be.db != nil {
			if err := be.db.PingContext(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r, cfg, authSvc, handlers{
		auth:        handler.NewAuthHandler(authSvc, professorSvc),
		students:    handler.NewStudentHandler(studentSvc, importSvc),
		subjects:    handler.NewSubjectHandler(subjectSvc),
		enrollments: handler.NewEnrollmentHandler(enrollmentSvc),
		grades:      handler.NewGradeHandler(gradeSvc),
		stats:       handler.NewStatsHandler(statsSvc),
		backup:      handler.NewBackupHandler(backupSvc, migrationSvc),
		reports:     newReportHandler(reportSvc),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("backend", cfg.Store.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
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

// openBackends builds the persistence layer named by STORE_BACKEND. The
// choice is made once here; everything downstream receives interfaces.
func openBackends(cfg *config.Config, logr *zap.Logger) (*backends, error) {
	switch cfg.Store.Backend {
	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		be := &backends{
			stores: store.Stores{
				Professors:  repository.NewProfessorRepository(db),
				Students:    repository.NewStudentRepository(db),
				Subjects:    repository.NewSubjectRepository(db),
				Enrollments: repository.NewEnrollmentRepository(db),
				Grades:      repository.NewGradeRepository(db),
			},
			reportJobs: repository.NewReportJobRepository(db),
			db:         db,
		}
		// A file store left behind by a previous deployment can be
		// migrated into PostgreSQL via POST /migration/run.
		if info, err := os.Stat(cfg.Store.DataDir); err == nil && info.IsDir() {
			fdb, err := filestore.Open(cfg.Store.DataDir)
			if err != nil {
				return nil, fmt.Errorf("filestore: %w", err)
			}
			src := fdb.Stores()
			be.migrationSource = &src
			logr.Info("migration source available", zap.String("data_dir", cfg.Store.DataDir))
		}
		return be, nil

	case config.BackendFile:
		fdb, err := filestore.Open(cfg.Store.DataDir)
		if err != nil {
			return nil, fmt.Errorf("filestore: %w", err)
		}
		logr.Info("using file backend", zap.String("data_dir", cfg.Store.DataDir))
		return &backends{stores: fdb.Stores()}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

func buildStatsService(cfg *config.Config, stores store.Stores, logr *zap.Logger) (*service.StatsService, error) {
	if !cfg.Stats.CacheEnabled {
		return service.NewStatsService(stores.Subjects, stores.Enrollments, stores.Grades, nil, cfg.Stats.CacheTTL, logr), nil
	}
	client, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return service.NewStatsService(stores.Subjects, stores.Enrollments, stores.Grades, repository.NewCacheRepository(client), cfg.Stats.CacheTTL, logr), nil
}

// cleanupLoop periodically removes report files older than the signed URL
// lifetime; their download tokens have expired anyway.
func cleanupLoop(ctx context.Context, cfg *config.Config, reportStorage *storage.ReportStorage, logr *zap.Logger) {
	ticker := time.NewTicker(cfg.Reports.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := reportStorage.CleanupOlderThan(cfg.Reports.SignedURLTTL)
			if err != nil {
				logr.Warn("report cleanup failed", zap.Error(err))
			} else if removed > 0 {
				logr.Info("expired reports removed", zap.Int("count", removed))
			}
		}
	}
}

type handlers struct {
	auth        *handler.AuthHandler
	students    *handler.StudentHandler
	subjects    *handler.SubjectHandler
	enrollments *handler.EnrollmentHandler
	grades      *handler.GradeHandler
	stats       *handler.StatsHandler
	backup      *handler.BackupHandler
	reports     *handler.ReportHandler
}

// newReportHandler tolerates a nil service so route registration can skip
// the report endpoints on backends without a job store.
func newReportHandler(reports *service.ReportService) *handler.ReportHandler {
	if reports == nil {
		return nil
	}
	return handler.NewReportHandler(reports)
}

func registerRoutes(r *gin.Engine, cfg *config.Config, authSvc *service.AuthService, h handlers) {
	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/register", h.auth.Register)
	api.POST("/auth/login", h.auth.Login)

	if h.reports != nil {
		// Download authenticates via the signed token in the URL.
		api.GET("/reports/download/:token", h.reports.Download)
	}

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/auth/me", h.auth.Me)
	authed.PUT("/auth/me", h.auth.UpdateMe)

	authed.GET("/students", h.students.List)
	authed.POST("/students", h.students.Create)
	authed.POST("/students/import", h.students.Import)
	authed.GET("/students/:id", h.students.Get)
	authed.PUT("/students/:id", h.students.Update)
	authed.DELETE("/students/:id", h.students.Delete)

	authed.GET("/subjects", h.subjects.List)
	authed.POST("/subjects", h.subjects.Create)
	authed.GET("/subjects/:id", h.subjects.Get)
	authed.PUT("/subjects/:id", h.subjects.Update)
	authed.PUT("/subjects/:id/config", h.subjects.UpdateConfig)
	authed.DELETE("/subjects/:id", h.subjects.Delete)

	authed.GET("/enrollments", h.enrollments.List)
	authed.POST("/enrollments", h.enrollments.Create)
	authed.DELETE("/enrollments/:id", h.enrollments.Delete)

	authed.POST("/grades/subjects/:subjectId/init", h.grades.Init)
	authed.GET("/grades/subjects/:subjectId", h.grades.ListBySubject)
	authed.GET("/grades/students/:studentId", h.grades.ListByStudent)
	authed.GET("/grades/students/:studentId/subjects/:subjectId", h.grades.Get)
	authed.PUT("/grades/students/:studentId/subjects/:subjectId", h.grades.Save)

	authed.GET("/stats/overview", h.stats.Overview)
	authed.GET("/stats/subjects/:subjectId", h.stats.Subject)

	if h.reports != nil {
		authed.POST("/reports", h.reports.Create)
		authed.GET("/reports/:id", h.reports.Get)
	}

	authed.GET("/backup/export", h.backup.Export)
	authed.POST("/backup/restore", h.backup.Restore)
	authed.POST("/migration/run", h.backup.Migrate)
}
