package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/RexzyOfficial/Kas-Pemuda/internal/amqp"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/auth"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/cache"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/config"
	apphttp "github.com/RexzyOfficial/Kas-Pemuda/internal/http"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/ledger"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/log"
	"github.com/RexzyOfficial/Kas-Pemuda/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("starting kas server")

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

	// The event stream is best effort: the server runs fine without the
	// broker, recap files just go stale until the worker catches up.
	var events ledger.EventPublisher
	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Warn("amqp unavailable, change events disabled", log.FieldError, err)
	} else {
		defer amqpClient.Close()
		events = amqpClient
		logger.Info("amqp client initialized",
			log.FieldExchange, cfg.AMQPExchange,
			log.FieldQueue, cfg.AMQPQueue)
	}

	store := ledger.NewStore(repo, events, logger.WithComponent(log.ComponentLedger))
	if err := store.Refresh(context.Background()); err != nil {
		logger.Error("initial ledger load failed", log.FieldError, err)
		os.Exit(1)
	}

	authSvc := auth.NewService(repo, cfg.JWTSecret, cfg.SessionTTL,
		cfg.ProfileCacheSize, cfg.ProfileCacheTTL,
		logger.WithComponent(log.ComponentAuth))

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(authSvc.ProfileCache())
	cacheManager.StartCleanup(5 * time.Minute)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:            ":" + cfg.Port,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitWindow: cfg.RateLimitWindow,
	}, store, authSvc, logger.WithComponent(log.ComponentHTTP))

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("kas server listening", log.FieldPort, cfg.Port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", log.FieldError, err, log.FieldPort, cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("server stopped gracefully")
}
