package main

// @title Trip Planner API
// @version 1.0.0
// @description Trip plan intelligence core: conversational plan editing, validation, day distribution and destination recommendations.
// @description
// @description The caller is identified by the X-User-ID header set by the authentication gateway.

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/trip-planner/docs"
	"github.com/trip-planner/internal/app"
	"github.com/trip-planner/internal/config"
	httpDelivery "github.com/trip-planner/internal/delivery/http"
	"github.com/trip-planner/internal/delivery/http/handler"
	"github.com/trip-planner/internal/pkg/logger"
	"github.com/trip-planner/internal/worker"
	"github.com/trip-planner/internal/worker/indexing"
)

// indexConsumerGroup - префикс consumer group событий обновления эмбеддингов для API процессов
const indexConsumerGroup = "vector-index"

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Trip Planner API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Storage, external clients, use cases
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	container, err := app.New(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer container.Close()

	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	if err := container.Health(ctx); err != nil {
		cancel()
		log.Fatal("Health check failed", zap.Error(err))
	}
	cancel()
	log.Info("All connections healthy")

	// 4. Vector index is built and refreshed in-process
	workers := worker.NewWorkerManager(log)
	workers.Register(indexing.NewIndexRefreshWorker(
		container.StreamRepo,
		container.Embeddings,
		indexConsumerGroup,
		cfg.VectorIndex.RefreshInterval,
		logger.Component(log, "index_refresh"),
	))

	runCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if err := workers.Start(runCtx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 5. Initialize HTTP Handlers
	handlers := httpDelivery.Handlers{
		Planner:         handler.NewPlannerHandler(container.Planner, log),
		Plans:           handler.NewPlanHandler(container.Plans, log),
		Recommendations: handler.NewRecommendationHandler(container.Recommendations, log),
		Preferences:     handler.NewPreferenceHandler(container.Preferences, log),
	}

	// 6. Initialize HTTP Server
	server := httpDelivery.NewServer(cfg, logger.Component(log, "http"), handlers, map[string]httpDelivery.HealthChecker{
		"postgres": container.DB,
		"redis":    container.Redis,
	})

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 7. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	stopWorkers()
	if err := workers.Stop(); err != nil {
		log.Error("Error stopping workers", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
