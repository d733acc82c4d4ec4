package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/agence/auth"
	"github.com/diewo77/agence/internal/config"
	"github.com/diewo77/agence/internal/db"
	"github.com/diewo77/agence/internal/mail"
	"github.com/diewo77/agence/internal/obs"
	"github.com/diewo77/agence/internal/policy"
	"github.com/diewo77/agence/internal/ratelimit"
	"github.com/diewo77/agence/internal/storage"
	"github.com/diewo77/agence/view"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
	createAdminFlag = flag.Bool("create-admin", false, "Create or reset the admin from ADMIN_USERNAME, ADMIN_PASSWORD, ADMIN_ROLE and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()
	log, err := obs.NewLogger(cfg.App.Dev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbConn, err := db.Connect(ctx, cfg.Database, log)
	if err != nil {
		return err
	}

	switch {
	case *migrateOnlyFlag:
		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		log.Info("migrations completed")
		return nil
	case *seedOnlyFlag:
		if err := db.Seed(ctx, dbConn); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		log.Info("seed completed")
		return nil
	case *createAdminFlag:
		admin, err := db.CreateAdmin(ctx, dbConn, os.Getenv("ADMIN_USERNAME"), os.Getenv("ADMIN_PASSWORD"), os.Getenv("ADMIN_ROLE"))
		if err != nil {
			return fmt.Errorf("create admin: %w", err)
		}
		log.Info("admin ready", zap.String("username", admin.Username), zap.String("role", admin.Role))
		return nil
	}

	if err := prepareSchema(ctx, cfg, dbConn, log); err != nil {
		return err
	}

	store, files, err := openStore(cfg.Storage, cfg.App.SiteURL)
	if err != nil {
		return err
	}
	limiter, closeLimiter, err := openLimiter(cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	view.SetDev(cfg.App.Dev)
	sessions := auth.NewManager(cfg.Session.Secret, cfg.Session.Secure)
	routerCfg := policy.NewRouterConfig(policy.Deps{
		DB:       dbConn,
		Store:    store,
		Mailer:   openMailer(cfg.Mail, log),
		Sessions: sessions,
		SiteURL:  cfg.App.SiteURL,
		URLTTL:   cfg.Storage.URLTTL,
		Log:      log,
	})
	app := NewApp(AppDeps{
		Router:    routerCfg,
		Sessions:  sessions,
		Metrics:   obs.NewMetrics(),
		Limiter:   limiter,
		RateLimit: cfg.RateLimit.PerMinute,
		Files:     files,
		Ping:      func(ctx context.Context) error { return db.Ping(ctx, dbConn) },
		Log:       log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev), zap.String("storage", cfg.Storage.Backend))
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
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server stopped gracefully")
	return nil
}

// prepareSchema runs the SQL migrations when MIGRATIONS is set and falls back
// to AutoMigrate otherwise, then seeds reference content.
func prepareSchema(ctx context.Context, cfg *config.Config, conn *gorm.DB, log *zap.Logger) error {
	if cfg.App.Migrations {
		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
		log.Info("migrations completed")
	} else if err := db.AutoMigrate(conn); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if cfg.App.Seed {
		if err := db.Seed(ctx, conn); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	return nil
}

// openStore returns the object store and, for the local backend, the handler
// serving its signed URLs.
func openStore(cfg config.StorageConfig, siteURL string) (storage.ObjectStore, http.Handler, error) {
	if cfg.Backend == "cloudinary" {
		s, err := storage.NewCloudinaryStore(cfg.CloudName, cfg.APIKey, cfg.APISecret, cfg.Folder)
		return s, nil, err
	}
	s, err := storage.NewLocalStore(cfg.LocalDir, siteURL, cfg.SigningSecret)
	if err != nil {
		return nil, nil, err
	}
	return s, s, nil
}

func openLimiter(cfg config.RedisConfig, log *zap.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.URL == "" {
		return ratelimit.NewInMemory(time.Minute), func() {}, nil
	}
	l, err := ratelimit.NewRedisFromURL(cfg.URL, time.Minute, log)
	if err != nil {
		return nil, nil, fmt.Errorf("redis: %w", err)
	}
	return l, func() { _ = l.Close() }, nil
}

func openMailer(cfg config.MailConfig, log *zap.Logger) mail.Sender {
	if cfg.Host == "" {
		log.Warn("SMTP_HOST not set, invitation emails are only logged")
		return mail.LogSender{Log: log}
	}
	return mail.NewSMTPSender(cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.From)
}
