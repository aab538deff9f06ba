package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/geocoder89/notehub/internal/auth"
	"github.com/geocoder89/notehub/internal/config"
	"github.com/geocoder89/notehub/internal/db"
	httpx "github.com/geocoder89/notehub/internal/http"
	"github.com/geocoder89/notehub/internal/http/handlers"
	"github.com/geocoder89/notehub/internal/notes"
	"github.com/geocoder89/notehub/internal/notifications"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/geocoder89/notehub/internal/otp"
	"github.com/geocoder89/notehub/internal/redisclient"
	"github.com/geocoder89/notehub/internal/repo/postgres"
	"github.com/geocoder89/notehub/internal/security"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	// Load the config set up
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "notehub-api", cfg.Env, cfg.OTLPEndpoint)
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(sctx)
		}()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	pool, err := db.NewPool(ctx, cfg.DBURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("db connect failed: %w", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
		log.Info("migrations applied")
	}

	checks := map[string]handlers.Check{"db": pool.Ping}

	var otpStore otp.Store
	switch cfg.OTPStore {
	case "memory":
		mem := otp.NewMemoryStore()
		go mem.RunSweeper(ctx, time.Minute)
		otpStore = mem
	default:
		rc, err := redisclient.Connect(ctx, redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, 3*time.Second)
		if err != nil {
			return err
		}
		defer rc.Close()

		otpStore = otp.NewRedisStore(rc.Raw())
		checks["redis"] = rc.Ping
	}

	var mailer notifications.Notifier = notifications.NewLogNotifier(log)
	if cfg.MailDriver == "smtp" {
		mailer = notifications.NewSMTPNotifier(notifications.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
	}
	mailer = notifications.NewProtectedNotifier(mailer, notifications.ProtectedNotifierConfig{
		Timeout: 8 * time.Second,
	})

	tokens := auth.NewManager(cfg.JWTSecret, cfg.SessionTTL)
	accounts := auth.NewService(
		postgres.NewUsersRepo(pool, prom),
		security.NewHasher(cfg.BcryptCost),
		tokens,
		prom,
	)

	var draining atomic.Bool

	router := httpx.NewRouter(httpx.Deps{
		Log:      log,
		Config:   cfg,
		Prom:     prom,
		Gatherer: reg,
		Accounts: accounts,
		Sessions: tokens,
		OTP: otp.NewService(otpStore, mailer, otp.Config{
			TTL:         cfg.OTPTTL,
			MaxAttempts: cfg.OTPMaxAttempts,
		}, prom),
		Notes:    notes.NewEngine(postgres.NewNotesRepo(pool, prom)),
		Checks:   checks,
		Draining: draining.Load,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "otp_store", cfg.OTPStore, "mail_driver", cfg.MailDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	// Graceful shutdown
	log.Info("server shutting down")
	draining.Store(true)

	shutdownCtx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}
