package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/trogers1052/pnl-service/internal/api"
	"github.com/trogers1052/pnl-service/internal/config"
	"github.com/trogers1052/pnl-service/internal/database"
	"github.com/trogers1052/pnl-service/internal/engine"
	"github.com/trogers1052/pnl-service/internal/kafka"
	"github.com/trogers1052/pnl-service/internal/redis"
	"github.com/trogers1052/pnl-service/internal/worker"
	"github.com/trogers1052/pnl-service/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.App.LogLevel, cfg.App.Env)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer log.Sync()

	log.Infow("starting pnl service",
		"app", cfg.App.Name,
		"env", cfg.App.Env,
		"account_id", cfg.Account.ID)

	eng := engine.New(cfg.Account.ID, log)

	// Postgres is a snapshot sink, not a dependency of the core: an
	// unreachable database disables persistence instead of the service.
	var db *database.DB
	if cfg.Snapshot.Enabled {
		db, err = database.New(cfg.Database.ConnectionString())
		if err != nil {
			log.Warnw("failed to connect to database, snapshots disabled", "error", err)
			db = nil
		} else {
			defer db.Close()
			if err := runMigrations(cfg.Database.ConnectionString()); err != nil {
				log.Fatalw("failed to run database migrations", "error", err)
			}
			log.Info("connected to PostgreSQL database")
		}
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Warnw("failed to connect to redis, continuing without cache", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
		log.Info("connected to redis")
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.PnLTopic, cfg.App.Name, log)
	defer producer.Close()
	log.Infow("kafka producer initialized",
		"brokers", cfg.Kafka.Brokers,
		"topic", cfg.Kafka.PnLTopic)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tradesConsumer := kafka.NewTradesConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.TradesTopic,
		cfg.Kafka.ConsumerGroup,
		eng,
		producer,
		log,
	)
	go func() {
		if err := tradesConsumer.Start(ctx); err != nil {
			log.Errorw("trades consumer error", "error", err)
		}
	}()

	pricesConsumer := kafka.NewPricesConsumer(
		cfg.Kafka.Brokers,
		cfg.Kafka.PricesTopic,
		cfg.Kafka.ConsumerGroup,
		eng,
		log,
	)
	go func() {
		if err := pricesConsumer.Start(ctx); err != nil {
			log.Errorw("prices consumer error", "error", err)
		}
	}()

	if cfg.Snapshot.Enabled {
		var sink worker.SnapshotSink
		if db != nil {
			sink = db
		}
		var cache worker.SummaryCache
		if redisClient != nil {
			cache = redisClient
		}
		if sink != nil || cache != nil {
			snapshotWorker := worker.NewSnapshotWorker(
				eng, sink, cache,
				cfg.Snapshot.Interval, cfg.Redis.CacheTTL, log)
			go snapshotWorker.Start(ctx)
		} else {
			log.Warn("snapshot worker idle, neither database nor redis is available")
		}
	}

	handler := api.NewHandler(eng, db, producer, redisClient, log)
	router := api.SetupRoutes(handler)

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("starting http server", "addr", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("failed to start http server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	if err := tradesConsumer.Close(); err != nil {
		log.Errorw("failed to close trades consumer", "error", err)
	}
	if err := pricesConsumer.Close(); err != nil {
		log.Errorw("failed to close prices consumer", "error", err)
	}

	log.Info("server stopped")
}

func runMigrations(databaseURL string) error {
	m, err := migrate.New("file://./db/migrations", databaseURL)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
