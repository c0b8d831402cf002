package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cents/internal/amqp"
	"cents/internal/cache"
	"cents/internal/config"
	apphttp "cents/internal/http"
	"cents/internal/log"
	"cents/internal/objectstore"
	"cents/internal/ocr"
	"cents/internal/receipt"
	"cents/internal/services"
	"cents/internal/storage"
	"cents/internal/store"
	"cents/internal/store/memory"
	"cents/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(os.Getenv("LOG_LEVEL")),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Parser with optional operator-supplied merchant patterns.
	var parserOpts []receipt.Option
	if cfg.MerchantPatternsFile != "" {
		patterns, err := config.LoadMerchantPatterns(cfg.MerchantPatternsFile)
		if err != nil {
			logger.Error("Failed to load merchant patterns", "error", err, "path", cfg.MerchantPatternsFile)
			os.Exit(1)
		}
		logger.Info("Loaded extra merchant patterns", "count", len(patterns))
		parserOpts = append(parserOpts, receipt.WithMerchantPatterns(patterns...))
	}
	parser := receipt.New(parserOpts...)

	// Choose data backend (default: memory).
	var (
		scans    store.ScanStore
		expenses store.ExpenseStore
		images   store.ImageStore
	)
	switch cfg.DataBackend {
	case "sqlite":
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

		scans, expenses, images = repo, repo, minioStore
		logger.Info("Initialized sqlite backend", "path", cfg.SQLiteDBPath, "bucket", cfg.MinioBucket)
	default:
		mem := memory.New()
		scans, expenses, images = mem, mem, mem
		logger.Info("Initialized memory backend")
	}

	// AMQP is best effort: without a broker, uploads still succeed and the
	// worker's pending sweep picks them up.
	var publisher services.JobPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, relying on pending sweep", "error", err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	scanService := services.NewScanService(scans, images, publisher, parser)
	expenseService := services.NewExpenseService(expenses)

	cacheManager := cache.NewManager()
	cacheManager.Register(expenseService.SummaryCache())
	cacheManager.StartCleanup(10 * time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, scanService, expenseService, cfg.CORSOrigins)

	// Configure server timeouts and limits
	srv.ReadTimeout = 30 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The memory backend is single process, so a separate worker cannot see
	// its scans. Run the sweep inline when an OCR key is configured.
	if cfg.DataBackend == "memory" && cfg.GeminiAPIKey != "" {
		engine, err := ocr.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize Gemini engine", "error", err)
			os.Exit(1)
		}
		defer engine.Close()

		scanWorker := worker.NewScanWorker(scans, images, engine, parser, cfg.ScanBatchSize)
		go func() {
			ticker := time.NewTicker(cfg.SweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := scanWorker.ProcessPendingScans(ctx); err != nil {
						logger.Error("Pending scan sweep failed", "error", err)
					}
				}
			}
		}()
		logger.Info("Running scan sweep in process", "interval", cfg.SweepInterval.String())
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		cacheManager.Stop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting cents server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
