package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"

	"github.com/rcabrera/medtrack-api/internal/config"
	"github.com/rcabrera/medtrack-api/internal/database"
	"github.com/rcabrera/medtrack-api/internal/handlers"
	"github.com/rcabrera/medtrack-api/internal/jobs"
	"github.com/rcabrera/medtrack-api/internal/middleware"
	"github.com/rcabrera/medtrack-api/internal/repository"
	"github.com/rcabrera/medtrack-api/internal/services"
	"github.com/rcabrera/medtrack-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL, time.Duration(cfg.SlowQueryMs)*time.Millisecond)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	// Run migrations; the single-current index must exist before serving
	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Initialize repositories and transaction manager
	repos := repository.NewRepositories(db)
	txm := repository.NewTxManager(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, txm, cfg)

	// Schedule recurring compliance jobs
	scheduleJobs(worker, svcs, cfg)

	// Initialize handlers
	h := handlers.NewHandlers(svcs, worker)

	// Setup router
	router := setupRouter(h, cfg)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	worker.Shutdown()

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Authentication (public)
		v1.POST("/auth/login", h.Auth.Login)

		// Protected routes (requires authentication)
		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTSecret))
		{
			// Admin-only routes
			admin := protected.Group("")
			admin.Use(middleware.RequireAdmin())
			{
				admin.POST("/staff", h.Staff.Create)
				admin.DELETE("/staff/:staff_id", h.Staff.Delete)
				admin.DELETE("/patients/:patient_id", h.Patient.Delete)

				admin.POST("/departments", h.Department.Create)
				admin.PUT("/departments/:department_id", h.Department.Update)

				admin.POST("/assignments/bulk", h.Assignment.BulkAssign)
				admin.GET("/jobs/stats", h.Job.Stats)
			}

			// Clinician + admin routes (day-to-day ward operations)
			clinical := protected.Group("")
			clinical.Use(middleware.RequireRole("admin", "clinician"))
			{
				clinical.GET("/patients", h.Patient.Index)
				clinical.POST("/patients", h.Patient.Create)
				clinical.GET("/patients/:patient_id", h.Patient.Show)
				clinical.PUT("/patients/:patient_id", h.Patient.Update)

				clinical.POST("/assignments", h.Assignment.Assign)
				clinical.POST("/assignments/release", h.Assignment.Release)
			}

			// All authenticated staff
			protected.GET("/staff", h.Staff.Index)
			protected.GET("/staff/:staff_id", h.Staff.Show)
			protected.PUT("/staff/:staff_id", h.Staff.Update)

			protected.GET("/departments", h.Department.Index)
			protected.GET("/departments/:department_id", h.Department.Show)

			protected.GET("/assignments/:entity_type/:entity_id/current", h.Assignment.Current)
			protected.GET("/assignments/:entity_type/:entity_id/history", h.Assignment.History)

			// Reporting and compliance (auditors can read everything here)
			reports := protected.Group("")
			reports.Use(middleware.RequireRole("admin", "clinician", "auditor"))
			{
				reports.GET("/departments/:department_id/occupants", h.Report.Occupants)
				reports.GET("/departments/:department_id/stats", h.Report.Stats)
				reports.GET("/audits/recent", h.Audit.RecentActivity)
				reports.GET("/audits/:table/:record_id", h.Audit.HistoryFor)
				reports.GET("/audits/:table/:record_id/narrative", h.Report.Narrative)
			}
		}
	}

	return router
}

func scheduleJobs(worker *jobs.Worker, svcs *services.Services, cfg *config.Config) {
	// Verify the single-current invariant periodically. Violations cannot be
	// produced through the ledger; any hit means the storage constraint was
	// bypassed and needs immediate attention.
	worker.ScheduleEvery(time.Duration(cfg.IntegritySweepMinutes)*time.Minute, func(ctx context.Context) error {
		violations, err := svcs.Assignment.VerifySingleCurrent(ctx)
		if err != nil {
			return err
		}
		if len(violations) > 0 {
			logger.Error("[Job] Single-current invariant violated", "rows", len(violations))
			sentry.CaptureMessage("assignment ledger integrity sweep found duplicate current rows")
			return nil
		}
		logger.Info("[Job] Integrity sweep clean")
		return nil
	})

	// Daily audit activity summary for compliance logs
	worker.ScheduleEvery(time.Duration(cfg.ActivitySummaryHours)*time.Hour, func(ctx context.Context) error {
		since := time.Now().Add(-time.Duration(cfg.ActivitySummaryHours) * time.Hour)
		count, err := svcs.Audit.CountSince(ctx, since)
		if err != nil {
			return err
		}
		logger.Info("[Job] Audit activity summary", "entries", count, "since", since.Format(time.RFC3339))
		return nil
	})

	logger.Info("Scheduled recurring jobs")
}
