package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/amqp"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/config"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/ledger"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/storage"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig()).WithComponent(log.ComponentWorker)
	log.SetDefault(logger)

	logger.Info("starting kas-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("failed to initialize storage", log.FieldError, err, log.FieldDBPath, cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("failed to initialize amqp client", log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	// The worker never publishes, it only rebuilds recaps.
	store := ledger.NewStore(repo, nil, logger.WithComponent(log.ComponentLedger))

	recapWorker := worker.NewRecapWorker(amqpClient, store, cfg.RecapOutputDir, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch up on anything missed while the worker was down, then follow
	// the event stream.
	if err := recapWorker.WriteAll(ctx); err != nil {
		logger.Error("startup recap rebuild failed", log.FieldError, err)
		// Keep going; the event stream will repair individual months.
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return recapWorker.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}

	logger.Info("worker stopped gracefully")
}
