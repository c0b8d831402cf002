package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"cents/internal/amqp"
	"cents/internal/config"
	"cents/internal/log"
	"cents/internal/objectstore"
	"cents/internal/ocr"
	"cents/internal/receipt"
	"cents/internal/storage"
	"cents/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: log.ComponentWorker,
	})
	log.SetDefault(logger)

	logger.Info("Starting cents-worker")

	cfg := config.Load()
	if err := cfg.ValidateWorker(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.DataBackend != "sqlite" {
		// The memory backend is single process; its scans are swept inline
		// by the server.
		logger.Error("The scan worker requires the sqlite backend", "backend", cfg.DataBackend)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	minioStore, err := objectstore.NewMinioStore(objectstore.Config{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		logger.Error("Failed to initialize MinIO store", "error", err, "endpoint", cfg.MinioEndpoint)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := ocr.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		logger.Error("Failed to initialize Gemini engine", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	var parserOpts []receipt.Option
	if cfg.MerchantPatternsFile != "" {
		patterns, err := config.LoadMerchantPatterns(cfg.MerchantPatternsFile)
		if err != nil {
			logger.Error("Failed to load merchant patterns", "error", err, "path", cfg.MerchantPatternsFile)
			os.Exit(1)
		}
		parserOpts = append(parserOpts, receipt.WithMerchantPatterns(patterns...))
	}
	parser := receipt.New(parserOpts...)

	scanWorker := worker.NewScanWorker(repo, minioStore, engine, parser, cfg.ScanBatchSize)

	// On startup, process any pending scans missed while the worker was down.
	if err := scanWorker.ProcessPendingScans(ctx); err != nil {
		logger.Error("Startup sweep failed", "error", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		g.Go(func() error {
			return amqpClient.ConsumeScanJobs(gctx, func(msg *amqp.ScanJobMessage) error {
				return scanWorker.HandleScanMessage(gctx, msg)
			})
		})
	} else {
		logger.Info("AMQP not configured, running sweep only")
	}

	// Periodic sweep for scans whose AMQP message was lost.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				if err := scanWorker.ProcessPendingScans(gctx); err != nil {
					logger.Error("Periodic sweep failed", "error", err)
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete")
}
