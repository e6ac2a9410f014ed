package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maplewood/library/internal/auth"
	"github.com/maplewood/library/internal/config"
	"github.com/maplewood/library/internal/database"
	"github.com/maplewood/library/internal/database/books"
	"github.com/maplewood/library/internal/database/loans"
	"github.com/maplewood/library/internal/database/members"
	"github.com/maplewood/library/internal/database/stats"
	http_controllers "github.com/maplewood/library/internal/http"
	"github.com/maplewood/library/internal/scheduler"
	"github.com/maplewood/library/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Shutdown callback first, so the task queue drains before the pool
	// closes.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the whole service together: pool, repositories, task queue,
// session manager, router. Everything is constructed exactly once and torn
// down on shutdown.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting library service v%s", version)

	dsn := cfg.Database.DSN
	if cfg.Database.Driver != database.DriverPostgres {
		dsn = cfg.Database.Path
	}
	db, err := database.NewDatabase(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             dsn,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	bookRepo := books.NewRepository(db.DB)
	memberRepo := members.NewRepository(db.DB, cfg.Auth.BcryptCost)
	loanRepo := loans.NewRepository(db.DB)
	statsRepo := stats.NewRepository(db.DB)

	// Task queue for background fine accrual
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled && cfg.Database.Driver != database.DriverPostgres {
		taskCfg := tasks.Config{
			Workers:           cfg.Tasks.Workers,
			MaxRetries:        cfg.Tasks.MaxRetries,
			RetryDelay:        cfg.Tasks.RetryDelay,
			TaskTimeout:       cfg.Tasks.TaskTimeout,
			ReleaseAfter:      cfg.Tasks.ReleaseAfter,
			CleanupInterval:   cfg.Tasks.CleanupInterval,
			RetentionDuration: cfg.Tasks.RetentionDuration,
		}

		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewAccrueFinesQueue(loanRepo, taskCfg),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	// Periodic fine accrual
	var fineScheduler *scheduler.FineAccrualScheduler
	if cfg.Fines.AccrualEnabled && taskClient != nil {
		fineScheduler = scheduler.NewFineAccrualScheduler(
			taskClient, cfg.Fines.AccrualSchedule, cfg.Fines.DailyRate)
		if err := fineScheduler.Start(); err != nil {
			log.Fatalf("Failed to start fine accrual scheduler: %v", err)
		}
	}

	// Session-backed admin login (sqlite-backed store, like the rest of
	// the default deployment)
	var sessionManager *auth.SessionManager
	if cfg.Database.Driver != database.DriverPostgres {
		sqlDB, err := db.DB.DB()
		if err != nil {
			log.Fatalf("Failed to get SQL DB for sessions: %v", err)
		}
		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth.SessionLifetime, cfg.Auth.SecureCookies)
		if err != nil {
			log.Fatalf("Failed to initialize session manager: %v", err)
		}
	}

	// Throttle credential guessing on the auth endpoints
	authLimiter := auth.NewRateLimiter(auth.RateLimitConfig{
		MaxRequests: cfg.Auth.RateLimitMax,
		Window:      cfg.Auth.RateLimitWindow,
	})

	routerCfg := http_controllers.RouterConfig{
		Database:        db,
		Books:           bookRepo,
		Members:         memberRepo,
		Loans:           loanRepo,
		Stats:           statsRepo,
		Auth:            memberRepo,
		SessionManager:  sessionManager,
		AuthRateLimiter: authLimiter,
		TaskClient:      taskClient,
		FineDailyRate:   cfg.Fines.DailyRate,
		StaticPath:      cfg.UI.StaticPath,
		CORSOrigin:      cfg.CORS.AllowedOrigin,
		Version:         version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		authLimiter.Stop()
		if fineScheduler != nil {
			fineScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
