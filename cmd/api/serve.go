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

	"github.com/planchais/chantiers-backend/internal/ai"
	"github.com/planchais/chantiers-backend/internal/api"
	"github.com/planchais/chantiers-backend/internal/api/handlers"
	"github.com/planchais/chantiers-backend/internal/catalog"
	"github.com/planchais/chantiers-backend/internal/config"
	"github.com/planchais/chantiers-backend/internal/cron"
	"github.com/planchais/chantiers-backend/internal/db"
	"github.com/planchais/chantiers-backend/internal/email"
	"github.com/planchais/chantiers-backend/internal/logger"
	"github.com/planchais/chantiers-backend/internal/repository"
	"github.com/planchais/chantiers-backend/internal/seed"
	"github.com/planchais/chantiers-backend/internal/service"
	"github.com/planchais/chantiers-backend/internal/socket"
)

func runServer(cfg *config.Config) error {
	printBanner(cfg)

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ============================================
	// PostgreSQL (optional: without it data routes answer 503)
	// ============================================
	var (
		pg    *db.PostgresDB
		repos *repository.Repositories
	)
	if cfg.DatabaseURL != "" {
		if cfg.MigrationsOnStart {
			logger.Info("🔄 Running database migrations...")
			if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			logger.Info("✅ Database migrations completed")
		}

		var err error
		pg, err = db.NewPostgresDB(cfg.DatabaseURL)
		if err != nil {
			logger.Error("❌ Failed to connect to PostgreSQL, data routes disabled", "error", err)
			pg = nil
		} else {
			defer pg.Close()
			repos = repository.NewPgRepositories(pg.Pool)
			logger.Info("📦 Repositories initialized")
		}
	} else {
		logger.Warn("⚠️  DATABASE_URL not set, data routes will answer 503")
	}
	databaseReady := repos != nil
	if !databaseReady {
		repos = repository.NewRepositories()
	}

	// ============================================
	// Redis (optional cache and login throttling)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		var err error
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			logger.Warn("⚠️ Failed to connect to Redis, continuing without cache", "error", err)
			redisDB = nil
		} else {
			defer redisDB.Close()
			logger.Info("⚡ Redis cache enabled")
		}
	}

	// ============================================
	// Email
	// ============================================
	emailSvc := email.NewService(&email.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
		FromName: cfg.SMTPFromName,
		UseTLS:   cfg.SMTPUseTLS,
	})
	emailQueue := email.NewEmailQueue(emailSvc, 2)
	defer emailQueue.Stop()
	if emailSvc.Enabled() {
		logger.Info("📧 Email service initialized", "host", cfg.SMTPHost)
	} else {
		logger.Warn("⚠️  Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// WebSocket hub
	// ============================================
	hub := socket.NewHub()
	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go hub.Run(hubCtx)
	logger.Info("🔌 WebSocket hub initialized")

	// ============================================
	// Services
	// ============================================
	aiClient := ai.New(ai.Config{
		APIKey:      cfg.OpenAIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		VisionModel: cfg.OpenAIVisionModel,
		ImageModel:  cfg.OpenAIImageModel,
	}, catalog.Default(), nil)
	if !aiClient.Configured() {
		logger.Warn("⚠️  OPENAI_API_KEY not set, estimation routes will answer 503")
	}

	deps := &service.ServiceDeps{
		Config:    cfg,
		Repos:     repos,
		Publisher: socket.NewBroadcaster(hub),
		AI:        aiClient,
		Mailer:    emailSvc,
		Digests:   emailQueue,
	}
	if redisDB != nil {
		deps.Cache = redisDB
		deps.Limiter = redisDB
	}
	services := service.NewServices(deps)

	// ============================================
	// Seed data (development only)
	// ============================================
	if databaseReady && !cfg.IsProduction() {
		if err := seed.SeedData(ctx, repos, cfg.SeedAdminPassword); err != nil {
			logger.Error("❌ [Seed] failed", "error", err)
		}
	}

	// ============================================
	// Scheduled jobs
	// ============================================
	var scheduler *cron.Scheduler
	if databaseReady {
		scheduler = cron.NewScheduler(services, cron.Options{
			AutoStatus: cfg.AutoStatus,
			Digest:     emailSvc.Enabled(),
		})
		if err := scheduler.Start(); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		defer scheduler.Stop()
	}

	// ============================================
	// Router
	// ============================================
	health := &handlers.HealthHandler{EmailEnabled: emailSvc.Enabled(), Clients: hub.ClientCount}
	if pg != nil {
		health.DB = pg
	}
	if redisDB != nil {
		health.Cache = redisDB
	}
	wsHandler := socket.NewHandler(hub, services.Auth.Authenticate, cfg.CORSOrigins)

	router := api.NewRouter(api.RouterDeps{
		Config:        cfg,
		Services:      services,
		DatabaseReady: databaseReady,
		Health:        health,
		WebSocket:     wsHandler.HandleWebSocket,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("🚀 Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// ============================================
	// Graceful shutdown
	// ============================================
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("🛑 Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Server forced to shutdown", "error", err)
	}
	logger.Info("👋 Server exited")
	return nil
}

func printBanner(cfg *config.Config) {
	fmt.Fprintf(os.Stdout, `
============================================
  %s %s
  environment: %s
============================================
`, appName, Version, cfg.Environment)
}
