// Package app wires configuration, storage and use cases shared by the api and worker binaries.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/trip-planner/internal/agent"
	"github.com/trip-planner/internal/config"
	"github.com/trip-planner/internal/domain/repository"
	"github.com/trip-planner/internal/embedding"
	"github.com/trip-planner/internal/infrastructure/gemini"
	"github.com/trip-planner/internal/infrastructure/googlemaps"
	"github.com/trip-planner/internal/pkg/logger"
	"github.com/trip-planner/internal/repository/cache"
	"github.com/trip-planner/internal/repository/postgres"
	redisrepo "github.com/trip-planner/internal/repository/redis"
	"github.com/trip-planner/internal/usecase"
	"github.com/trip-planner/internal/vectorindex"
)

// fakeSeed - seed детерминированного энкодера без Gemini
const fakeSeed = 42

// Container - общие зависимости процессов
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	DB    *postgres.DB
	Redis *cache.Redis

	Index  *vectorindex.Index
	pool   *embedding.Pool
	gemini *gemini.Client

	Plans           *usecase.PlanUseCase
	Planner         *usecase.PlannerUseCase
	Recommendations *usecase.RecommendationUseCase
	Preferences     *usecase.PreferenceUseCase
	Embeddings      *usecase.EmbeddingUseCase
	Destinations    *usecase.DestinationUseCase

	StreamRepo repository.StreamRepository
}

// New подключается к Postgres и Redis, применяет миграции и собирает use case слой
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: log}

	db, err := postgres.New(&cfg.Database, logger.Component(log, "postgres"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	c.DB = db

	if cfg.Database.AutoMigrate {
		if err := db.Migrate(ctx); err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	rds, err := cache.NewRedis(&cfg.Redis, logger.Component(log, "redis"))
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	c.Redis = rds

	// Repositories
	planRepo := postgres.NewPlanRepository(db, log)
	destRepo := postgres.NewDestinationRepository(db, log)
	prefRepo := postgres.NewPreferenceRepository(db, log)
	embRepo := postgres.NewEmbeddingRepository(db, log)
	clusterRepo := postgres.NewClusterRepository(db, log)
	placeCache := cache.NewPlaceCache(rds, cfg.Cache.PlaceDetailsTTL)
	stateRepo := cache.NewConversationStateRepository(rds, cfg.Cache.ConversationStateTTL)
	c.StreamRepo = redisrepo.NewStreamRepository(rds.Client(), logger.Component(log, "streams"))

	// External clients
	var provider embedding.Provider
	var generator repository.TextGenerator
	modelVersion := cfg.Embedding.ModelVersion
	if cfg.Gemini.APIKey != "" {
		client, err := gemini.NewClient(ctx, &cfg.Gemini, logger.Component(log, "gemini"))
		if err != nil {
			c.Close()
			return nil, err
		}
		c.gemini = client
		provider = client.NewEmbeddingProvider(&cfg.Gemini)
		generator = client.NewGenerator(&cfg.Gemini)
	} else {
		log.Warn("GEMINI_API_KEY is not set, using deterministic fake encoder and template replies")
		provider = embedding.NewFakeProvider(cfg.Embedding.Dim, fakeSeed)
		modelVersion = "fake:" + modelVersion
	}

	var resolver repository.PlaceResolver
	if cfg.Maps.APIKey != "" {
		resolver, err = googlemaps.NewPlaceResolver(&cfg.Maps, placeCache, logger.Component(log, "places"))
		if err != nil {
			c.Close()
			return nil, err
		}
	} else {
		log.Warn("MAPS_API_KEY is not set, destinations resolve from the local catalog only")
	}

	c.pool = embedding.NewPool(cfg.Embedding.Workers, cfg.Embedding.QueueSize, logger.Component(log, "embedding_pool"))
	c.pool.Start()
	encoder := embedding.NewService(provider, c.pool, cfg.Embedding.Dim, modelVersion, logger.Component(log, "encoder"))

	c.Index = vectorindex.New(cfg.Embedding.Dim, cfg.VectorIndex.ExactThreshold, logger.Component(log, "vector_index"))

	// Use cases
	shape := agent.DailyShape{
		RestaurantsPerDay:    cfg.Planner.RestaurantsPerDay,
		AccommodationsPerDay: cfg.Planner.AccommodationsPerDay,
		MaxAttractionsPerDay: cfg.Planner.MaxAttractionsPerDay,
	}
	runner := usecase.NewAgentRunner(shape, logger.Component(log, "agents"))

	c.Destinations = usecase.NewDestinationUseCase(destRepo, resolver, c.StreamRepo, log)
	c.Embeddings = usecase.NewEmbeddingUseCase(embRepo, destRepo, c.StreamRepo, encoder, c.Index, cfg.Embedding.Workers, log)
	c.Recommendations = usecase.NewRecommendationUseCase(
		c.Index,
		prefRepo,
		clusterRepo,
		embRepo,
		cfg.Embedding.Dim,
		cfg.Recommendation.SimWeight,
		cfg.Recommendation.PopWeight,
		log,
	)
	c.Preferences = usecase.NewPreferenceUseCase(prefRepo, clusterRepo, encoder, log)
	c.Plans = usecase.NewPlanUseCase(planRepo, c.Destinations, shape, runner, log)
	c.Planner = usecase.NewPlannerUseCase(
		planRepo,
		stateRepo,
		clusterRepo,
		c.Destinations,
		c.Recommendations,
		runner,
		generator,
		usecase.PlannerConfig{ReplyTimeout: cfg.Planner.LLMTimeout},
		logger.Component(log, "planner"),
	)

	return c, nil
}

// Health проверяет Postgres и Redis
func (c *Container) Health(ctx context.Context) error {
	if err := c.DB.Health(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if err := c.Redis.Health(ctx); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

// Close освобождает ресурсы в обратном порядке
func (c *Container) Close() {
	if c.pool != nil {
		c.pool.Stop()
	}
	if c.gemini != nil {
		if err := c.gemini.Close(); err != nil {
			c.Logger.Error("Failed to close Gemini client", zap.Error(err))
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.Logger.Error("Failed to close Redis connection", zap.Error(err))
		}
	}
	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Error("Failed to close PostgreSQL connection", zap.Error(err))
		}
	}
}
