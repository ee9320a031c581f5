package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"

	apperrors "github.com/clintables/codefinder/pkg/errors"
)

// Config holds all application configuration
type Config struct {
	Agent      AgentConfig
	API        APIConfig
	Cache      CacheConfig
	Redis      RedisConfig
	OpenAI     OpenAIConfig
	Reranker   RerankerConfig
	Expansion  ExpansionConfig
	Checkpoint CheckpointConfig
}

// AgentConfig holds settings for the refinement loop
type AgentConfig struct {
	MaxIterations       int
	ConfidenceThreshold float64
	MaxConcurrency      int
	MultiHopEnabled     bool
}

// APIConfig holds Clinical Tables API settings
type APIConfig struct {
	BaseURL             string
	TimeoutSeconds      float64
	MaxResultsPerSystem int
	MaxConnections      int
	MaxIdleConnections  int
}

// CacheConfig holds response cache settings
type CacheConfig struct {
	Enabled    bool
	Backend    string // "memory" or "redis"
	TTLSeconds int
	MaxSize    int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey         string
	Model          string
	ExpansionModel string
	RateLimitRPM   int
	RateLimitBurst int
}

// RerankerConfig holds semantic reranking settings
type RerankerConfig struct {
	Enabled        bool
	URL            string
	WeightSemantic float64
	WeightLexical  float64
}

// ExpansionConfig holds multi-hop query expansion settings
type ExpansionConfig struct {
	Enabled         bool
	CacheTTLSeconds int
	MaxPerCategory  int
}

// CheckpointConfig holds run-state persistence settings
type CheckpointConfig struct {
	Enabled    bool
	Backend    string // "memory" or "sqlite"
	SQLitePath string
}

// Load loads configuration from environment variables.
// A .env file in the working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	return &Config{
		Agent: AgentConfig{
			MaxIterations:       getEnvAsInt("MAX_ITERATIONS", 3),
			ConfidenceThreshold: getEnvAsFloat("CONFIDENCE_THRESHOLD", 0.3),
			MaxConcurrency:      getEnvAsInt("MAX_CONCURRENCY", 5),
			MultiHopEnabled:     getEnvAsBool("MULTI_HOP_ENABLED", false),
		},
		API: APIConfig{
			BaseURL:             getEnv("CLINICAL_TABLES_URL", "https://clinicaltables.nlm.nih.gov/api"),
			TimeoutSeconds:      getEnvAsFloat("API_TIMEOUT", 5.0),
			MaxResultsPerSystem: getEnvAsInt("MAX_RESULTS_PER_SYSTEM", 10),
			MaxConnections:      getEnvAsInt("HTTP_MAX_CONNECTIONS", 20),
			MaxIdleConnections:  getEnvAsInt("HTTP_MAX_KEEPALIVE", 10),
		},
		Cache: CacheConfig{
			Enabled:    getEnvAsBool("CACHE_ENABLED", true),
			Backend:    getEnv("CACHE_BACKEND", "memory"),
			TTLSeconds: getEnvAsInt("CACHE_TTL", 3600),
			MaxSize:    getEnvAsInt("CACHE_MAX_SIZE", 1000),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o"),
			ExpansionModel: getEnv("EXPANSION_MODEL", "gpt-4o-mini"),
			RateLimitRPM:   getEnvAsInt("OPENAI_RATE_LIMIT_RPM", 60),
			RateLimitBurst: getEnvAsInt("OPENAI_RATE_LIMIT_BURST", 5),
		},
		Reranker: RerankerConfig{
			Enabled:        getEnvAsBool("SEMANTIC_RERANK_ENABLED", false),
			URL:            getEnv("RERANKER_URL", "http://localhost:8087"),
			WeightSemantic: getEnvAsFloat("RERANKER_WEIGHT_SEMANTIC", 0.6),
			WeightLexical:  getEnvAsFloat("RERANKER_WEIGHT_LEXICAL", 0.4),
		},
		Expansion: ExpansionConfig{
			Enabled:         getEnvAsBool("EXPANSION_ENABLED", true),
			CacheTTLSeconds: getEnvAsInt("EXPANSION_CACHE_TTL", 86400),
			MaxPerCategory:  getEnvAsInt("EXPANSION_MAX_PER_CATEGORY", 5),
		},
		Checkpoint: CheckpointConfig{
			Enabled:    getEnvAsBool("CHECKPOINT_ENABLED", false),
			Backend:    getEnv("CHECKPOINT_BACKEND", "memory"),
			SQLitePath: getEnv("CHECKPOINT_SQLITE_PATH", ".codefinder_checkpoints.db"),
		},
	}, nil
}

// Validate checks required configuration before any run begins
func (c *Config) Validate() error {
	if c.OpenAI.APIKey == "" {
		return apperrors.NewConfigurationError("OPENAI_API_KEY environment variable is required")
	}
	if c.Agent.MaxIterations < 1 {
		return apperrors.NewConfigurationError("MAX_ITERATIONS must be at least 1")
	}
	if c.Agent.MaxConcurrency < 1 {
		return apperrors.NewConfigurationError("MAX_CONCURRENCY must be at least 1")
	}
	return nil
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
