package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/trip-planner/internal/app"
	"github.com/trip-planner/internal/config"
	"github.com/trip-planner/internal/pkg/logger"
	"github.com/trip-planner/internal/worker"
	"github.com/trip-planner/internal/worker/indexing"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if !cfg.Worker.Enabled {
		fmt.Println("Worker is disabled in configuration. Set WORKER_ENABLED=true to enable.")
		os.Exit(0)
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Embedding Worker")
	log.Info("Configuration loaded",
		zap.String("consumer_group", cfg.Worker.ConsumerGroup),
		zap.Int("batch_size", cfg.Worker.BatchSize),
		zap.Int("max_retries", cfg.Worker.MaxRetries),
		zap.Int("embedding_workers", cfg.Embedding.Workers))

	// 3. Storage, external clients, use cases
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.New(initCtx, cfg, log)
	initCancel()
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer container.Close()

	// 4. Initialize workers
	embeddingWorker := indexing.NewEmbeddingWorker(
		container.StreamRepo,
		container.Embeddings,
		cfg.Worker.ConsumerGroup,
		cfg.Worker.BatchSize,
		cfg.Worker.StreamReadTimeout,
		cfg.Worker.MaxRetries,
		logger.Component(log, "embedding_worker"),
	)

	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(embeddingWorker)

	// 5. Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.Start(ctx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Received shutdown signal")

	cancel()

	if err := workerManager.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Worker shutdown complete")
}
