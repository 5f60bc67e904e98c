package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Cache          CacheConfig
	Log            LogConfig
	Worker         WorkerConfig
	Embedding      EmbeddingConfig
	VectorIndex    VectorIndexConfig
	Recommendation RecommendationConfig
	Planner        PlannerConfig
	Gemini         GeminiConfig
	Maps           MapsConfig
}

type ServerConfig struct {
	Host        string
	Port        int
	Env         string
	CORSOrigins string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Host           string
	Port           int
	Password       string
	DB             int
	PoolSize       int
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
}

type CacheConfig struct {
	PlaceDetailsTTL      time.Duration
	ConversationStateTTL time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	StreamReadTimeout time.Duration
	MaxRetries        int
	BatchSize         int
}

// EmbeddingConfig - настройки энкодера
type EmbeddingConfig struct {
	Dim          int
	ModelVersion string
	Workers      int
	QueueSize    int
}

type VectorIndexConfig struct {
	ExactThreshold  int
	RefreshInterval time.Duration
	PageSize        int
}

type RecommendationConfig struct {
	SimWeight float64
	PopWeight float64
}

// PlannerConfig - дневная форма плана и таймауты оркестратора
type PlannerConfig struct {
	RestaurantsPerDay    int
	AccommodationsPerDay int
	MaxAttractionsPerDay int
	LLMTimeout           time.Duration
}

// GeminiConfig - пустой APIKey включает детерминированный fake энкодер и шаблонные ответы
type GeminiConfig struct {
	APIKey         string
	TextModel      string
	EmbeddingModel string
	Temperature    float32
}

type MapsConfig struct {
	APIKey         string
	Language       string
	RequestTimeout time.Duration
	RequestsPerSec float64
	Burst          int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("API_CORS_ORIGINS", "http://localhost:3000,http://localhost:5173")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_POOL_SIZE", 20)
	v.SetDefault("REDIS_CONNECT_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")

	v.SetDefault("PLACE_DETAILS_CACHE_TTL", 86400)
	v.SetDefault("CONVERSATION_STATE_TTL", 604800)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WORKER_CONSUMER_GROUP", "embedding-workers")
	v.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	v.SetDefault("WORKER_MAX_RETRIES", 3)
	v.SetDefault("WORKER_BATCH_SIZE", 20)

	v.SetDefault("EMBEDDING_DIM", 384)
	v.SetDefault("EMBEDDING_MODEL_VERSION", "text-embedding-004")
	v.SetDefault("EMBEDDING_WORKERS", 4)
	v.SetDefault("EMBEDDING_QUEUE_SIZE", 100)

	v.SetDefault("VECTOR_INDEX_EXACT_THRESHOLD", 10000)
	v.SetDefault("VECTOR_INDEX_REFRESH_INTERVAL", 300)
	v.SetDefault("VECTOR_INDEX_PAGE_SIZE", 1000)

	v.SetDefault("HYBRID_SIM_WEIGHT", 0.7)
	v.SetDefault("HYBRID_POP_WEIGHT", 0.3)

	v.SetDefault("RESTAURANTS_PER_DAY", 2)
	v.SetDefault("ACCOMMODATIONS_PER_DAY", 1)
	v.SetDefault("MAX_ATTRACTIONS_PER_DAY", 2)
	v.SetDefault("LLM_TIMEOUT", 30)

	v.SetDefault("GEMINI_TEXT_MODEL", "gemini-2.0-flash")
	v.SetDefault("GEMINI_EMBEDDING_MODEL", "text-embedding-004")
	v.SetDefault("GEMINI_TEMPERATURE", 0.4)

	v.SetDefault("MAPS_LANGUAGE", "vi")
	v.SetDefault("PLACES_TIMEOUT", 10)
	v.SetDefault("PLACES_RPS", 10)
	v.SetDefault("PLACES_BURST", 5)
}

// Load читает .env (если есть) и переменные окружения.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("API_HOST"),
			Port: v.GetInt("API_PORT"),
			Env:  v.GetString("API_ENV"),

			CORSOrigins: v.GetString("API_CORS_ORIGINS"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),

			PoolSize:       v.GetInt("REDIS_POOL_SIZE"),
			ConnectTimeout: v.GetDuration("REDIS_CONNECT_TIMEOUT"),
			ReadTimeout:    v.GetDuration("REDIS_READ_TIMEOUT"),
		},
		Cache: CacheConfig{
			PlaceDetailsTTL:      time.Duration(v.GetInt("PLACE_DETAILS_CACHE_TTL")) * time.Second,
			ConversationStateTTL: time.Duration(v.GetInt("CONVERSATION_STATE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
			BatchSize:         v.GetInt("WORKER_BATCH_SIZE"),
		},
		Embedding: EmbeddingConfig{
			Dim:          v.GetInt("EMBEDDING_DIM"),
			ModelVersion: v.GetString("EMBEDDING_MODEL_VERSION"),
			Workers:      v.GetInt("EMBEDDING_WORKERS"),
			QueueSize:    v.GetInt("EMBEDDING_QUEUE_SIZE"),
		},
		VectorIndex: VectorIndexConfig{
			ExactThreshold:  v.GetInt("VECTOR_INDEX_EXACT_THRESHOLD"),
			RefreshInterval: time.Duration(v.GetInt("VECTOR_INDEX_REFRESH_INTERVAL")) * time.Second,
			PageSize:        v.GetInt("VECTOR_INDEX_PAGE_SIZE"),
		},
		Recommendation: RecommendationConfig{
			SimWeight: v.GetFloat64("HYBRID_SIM_WEIGHT"),
			PopWeight: v.GetFloat64("HYBRID_POP_WEIGHT"),
		},
		Planner: PlannerConfig{
			RestaurantsPerDay:    v.GetInt("RESTAURANTS_PER_DAY"),
			AccommodationsPerDay: v.GetInt("ACCOMMODATIONS_PER_DAY"),
			MaxAttractionsPerDay: v.GetInt("MAX_ATTRACTIONS_PER_DAY"),
			LLMTimeout:           time.Duration(v.GetInt("LLM_TIMEOUT")) * time.Second,
		},
		Gemini: GeminiConfig{
			APIKey:         v.GetString("GEMINI_API_KEY"),
			TextModel:      v.GetString("GEMINI_TEXT_MODEL"),
			EmbeddingModel: v.GetString("GEMINI_EMBEDDING_MODEL"),
			Temperature:    float32(v.GetFloat64("GEMINI_TEMPERATURE")),
		},
		Maps: MapsConfig{
			APIKey:         v.GetString("GOOGLE_MAPS_API_KEY"),
			Language:       v.GetString("MAPS_LANGUAGE"),
			RequestTimeout: time.Duration(v.GetInt("PLACES_TIMEOUT")) * time.Second,
			RequestsPerSec: v.GetFloat64("PLACES_RPS"),
			Burst:          v.GetInt("PLACES_BURST"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Embedding.Dim <= 0 {
		return fmt.Errorf("EMBEDDING_DIM must be positive, got %d", c.Embedding.Dim)
	}
	if c.VectorIndex.ExactThreshold <= 0 {
		return fmt.Errorf("VECTOR_INDEX_EXACT_THRESHOLD must be positive, got %d", c.VectorIndex.ExactThreshold)
	}
	if c.Recommendation.SimWeight < 0 || c.Recommendation.PopWeight < 0 {
		return fmt.Errorf("hybrid weights must not be negative")
	}
	if c.Planner.MaxAttractionsPerDay < 0 || c.Planner.RestaurantsPerDay < 0 || c.Planner.AccommodationsPerDay < 0 {
		return fmt.Errorf("daily shape values must not be negative")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
