package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recovery_crm_backend/internal/activity"
	"recovery_crm_backend/internal/auth"
	"recovery_crm_backend/internal/dashboard"
	"recovery_crm_backend/internal/distribution"
	"recovery_crm_backend/internal/events"
	"recovery_crm_backend/internal/exports"
	apphttp "recovery_crm_backend/internal/http"
	"recovery_crm_backend/internal/http/router"
	"recovery_crm_backend/internal/imports"
	"recovery_crm_backend/internal/leads"
	"recovery_crm_backend/internal/pipeline"
	"recovery_crm_backend/internal/scheduler"
	"recovery_crm_backend/internal/schedules"
	"recovery_crm_backend/internal/sellers"
	"recovery_crm_backend/internal/webhook"
	"recovery_crm_backend/platform/config"
	"recovery_crm_backend/platform/db"
	"recovery_crm_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	reminderScheduler, closeScheduler := initReminderScheduler(cfg, log)
	if closeScheduler != nil {
		defer closeScheduler()
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	authModule := auth.NewModule(pool, cfg, log)
	seedAdmin(ctx, cfg, authModule.Repo, log)

	sellersModule := sellers.NewModule(pool, log)
	distributionModule := distribution.NewModule(pool, log)
	leadsModule := leads.NewModule(pool, distributionModule.Assigner, sellersModule.Repo, eventBus, log)
	activity.NewRecorder(leadsModule.Repo, log).RegisterHandlers(eventBus)
	webhookModule := webhook.NewModule(pool, leadsModule.Service, log)
	importsModule := imports.NewModule(pool, leadsModule.Service, eventBus, log)
	exportsModule := exports.NewModule(pool)
	pipelineModule := pipeline.NewModule(pool)
	dashboardModule := dashboard.NewModule(pool)
	schedulesModule := schedules.NewModule(pool, reminderScheduler, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: db.NewPoolAdapter(pool),
		Modules: []apphttp.Module{
			authModule,
			sellersModule,
			distributionModule,
			leadsModule,
			webhookModule,
			importsModule,
			exportsModule,
			pipelineModule,
			dashboardModule,
			schedulesModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// seedAdmin creates the bootstrap admin account on first run. Skipped when
// ADMIN_EMAIL or ADMIN_PASSWORD is not configured.
func seedAdmin(ctx context.Context, cfg config.BootstrapConfig, repo *auth.Repository, log *logger.Logger) {
	email := cfg.GetAdminEmail()
	password := cfg.GetAdminPassword()
	if email == "" || password == "" {
		log.Warn("ADMIN_EMAIL or ADMIN_PASSWORD not configured; skipping admin bootstrap")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to hash bootstrap admin password", "error", err)
		panic("failed to hash bootstrap admin password: " + err.Error())
	}

	if err := repo.EnsureAdmin(ctx, cfg.GetAdminName(), email, string(hash)); err != nil {
		log.Error("failed to seed bootstrap admin", "error", err)
		panic("failed to seed bootstrap admin: " + err.Error())
	}
	log.Info("bootstrap admin ensured", "email", email)
}

func initReminderScheduler(cfg config.SchedulerConfig, log *logger.Logger) (schedules.ReminderScheduler, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; follow-up reminders disabled")
		return nil, nil
	}

	reminderClient, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize reminder scheduler client", "error", err)
		return nil, nil
	}

	return reminderClient, func() {
		_ = reminderClient.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("%s: %w", name, lastErr)
}
