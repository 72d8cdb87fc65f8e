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

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/redis/go-redis/v9"

	"github.com/aerotrace-systems/aerotrace/internal/config"
	"github.com/aerotrace-systems/aerotrace/internal/handlers"
	"github.com/aerotrace-systems/aerotrace/internal/integrity"
	"github.com/aerotrace-systems/aerotrace/internal/lock"
	"github.com/aerotrace-systems/aerotrace/internal/logging"
	"github.com/aerotrace-systems/aerotrace/internal/notify"
	"github.com/aerotrace-systems/aerotrace/internal/repository"
	"github.com/aerotrace-systems/aerotrace/internal/server"
	"github.com/aerotrace-systems/aerotrace/internal/service"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)

	connString := cfg.Database.Postgres.ConnString()

	// Run database migrations
	logger.Info("running database migrations")
	m, err := migrate.New("file://migrations", connString)
	if err != nil {
		logger.Error("failed to initialize migrations", logging.Err(err))
		os.Exit(1)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("failed to run migrations", logging.Err(err))
		os.Exit(1)
	}

	ctx := context.Background()

	repo, err := repository.NewPostgresRepository(ctx, connString)
	if err != nil {
		logger.Error("failed to connect to PostgreSQL", logging.Err(err))
		os.Exit(1)
	}
	defer repo.Close()

	var locker lock.Locker = lock.NewLocalLocker()
	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("failed to parse redis url", logging.Err(err))
			os.Exit(1)
		}
		locker = lock.NewRedisLocker(redis.NewClient(opts))
		logger.Info("using redis scan locking", "url", cfg.Redis.URL)
	}

	var notifiers notify.Multi
	if cfg.NATS.Enabled {
		natsCfg := notify.DefaultNATSConfig()
		natsCfg.URL = cfg.NATS.URL
		pub, err := notify.NewNATSPublisher(natsCfg)
		if err != nil {
			logger.Error("failed to connect to NATS", logging.Err(err))
			os.Exit(1)
		}
		defer pub.Close()
		notifiers = append(notifiers, pub)
		logger.Info("publishing exception notifications", "url", cfg.NATS.URL)
	}
	if cfg.Webhook.URL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.Webhook.URL, cfg.Webhook.Timeout))
		logger.Info("critical findings webhook enabled", "url", cfg.Webhook.URL)
	}
	var notifier notify.Notifier = notify.Noop()
	if len(notifiers) > 0 {
		notifier = notifiers
	}

	engine := integrity.NewEngine(integrity.EngineConfig{
		Repo:         repo,
		Locker:       locker,
		Notifier:     notifier,
		Logger:       logger,
		FleetWorkers: cfg.Scanner.FleetWorkers,
	})

	svc := service.NewService(repo, engine, integrity.RealClock())
	handler := handlers.NewHandler(svc, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.NewRouter(handler),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("aerotrace service listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", logging.Err(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", logging.Err(err))
	}
}
