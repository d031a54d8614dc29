package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"stockscore/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	RateLimit     RateLimitConfig
	Cache         CacheConfig
	Redis         RedisConfig
	AI            AIConfig
	Database      DatabaseConfig
	Kafka         KafkaConfig
	ErrorTracking ErrorTrackingConfig
	Scoring       ScoringConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"stockscore"`
	Env      string `envconfig:"APP_ENV" default:"development" validate:"oneof=development staging production test"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
}

type HTTPConfig struct {
	Port         int           `envconfig:"HTTP_PORT" default:"8080" validate:"gte=1,lte=65535"`
	ReadTimeout  time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"60s" validate:"gt=0"`
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

type RateLimitConfig struct {
	MaxRequests int    `envconfig:"RATE_LIMIT_MAX_REQUESTS" default:"30" validate:"gte=1"`
	WindowMS    int64  `envconfig:"RATE_LIMIT_WINDOW_MS" default:"60000" validate:"gte=1"`
	Backend     string `envconfig:"RATE_LIMIT_BACKEND" default:"memory" validate:"oneof=memory redis"`
}

func (c RateLimitConfig) Window() time.Duration {
	return time.Duration(c.WindowMS) * time.Millisecond
}

// CacheConfig holds per-resource TTLs in seconds
type CacheConfig struct {
	TTLOverview   int `envconfig:"CACHE_TTL_OVERVIEW" default:"300" validate:"gte=1"`
	TTLFinancials int `envconfig:"CACHE_TTL_FINANCIALS" default:"3600" validate:"gte=1"`
	TTLHistorical int `envconfig:"CACHE_TTL_HISTORICAL" default:"300" validate:"gte=1"`
	TTLAIScore    int `envconfig:"CACHE_TTL_AI_SCORE" default:"1800" validate:"gte=1"`
	TTLSearch     int `envconfig:"CACHE_TTL_SEARCH" default:"60" validate:"gte=1"`
	TTLPopular    int `envconfig:"CACHE_TTL_POPULAR" default:"120" validate:"gte=1"`

	Backend      string `envconfig:"CACHE_BACKEND" default:"memory" validate:"oneof=memory redis"`
	MaxEntries   int    `envconfig:"CACHE_MAX_ENTRIES" default:"1000" validate:"gte=1"`
	SingleFlight bool   `envconfig:"CACHE_SINGLE_FLIGHT" default:"false"`
}

func (c CacheConfig) AIScoreTTL() time.Duration {
	return time.Duration(c.TTLAIScore) * time.Second
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379" validate:"gte=1,lte=65535"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AIConfig struct {
	Provider string `envconfig:"AI_PROVIDER" default:"perplexity" validate:"oneof=perplexity gemini"`

	PerplexityKey     string        `envconfig:"PERPLEXITY_API_KEY"`
	PerplexityModel   string        `envconfig:"PERPLEXITY_MODEL" default:"sonar-pro"`
	PerplexityBaseURL string        `envconfig:"PERPLEXITY_BASE_URL" default:"https://api.perplexity.ai" validate:"url"`
	Timeout           time.Duration `envconfig:"PERPLEXITY_TIMEOUT" default:"30s" validate:"gt=0"`

	GeminiKey   string `envconfig:"GEMINI_API_KEY"`
	GeminiModel string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	Temperature       float64 `envconfig:"AI_TEMPERATURE" default:"0.1" validate:"gte=0,lte=2"`
	MaxTokens         int     `envconfig:"AI_MAX_TOKENS" default:"4096" validate:"gte=1"`
	RequestsPerMinute int     `envconfig:"AI_REQUESTS_PER_MINUTE" default:"60" validate:"gte=1"`
}

// APIKey returns the key for the selected provider
func (c AIConfig) APIKey() string {
	if c.Provider == "gemini" {
		return c.GeminiKey
	}
	return c.PerplexityKey
}

type DatabaseConfig struct {
	Driver       string `envconfig:"DB_DRIVER" default:"sqlite" validate:"oneof=sqlite postgres"`
	DSN          string `envconfig:"DB_DSN" default:"file:stockscore.db" validate:"required"`
	MaxOpenConns int    `envconfig:"DB_MAX_OPEN_CONNS" default:"10" validate:"gte=1"`
	MaxIdleConns int    `envconfig:"DB_MAX_IDLE_CONNS" default:"5" validate:"gte=0"`
}

type KafkaConfig struct {
	Brokers    []string `envconfig:"KAFKA_BROKERS"`
	ScoreTopic string   `envconfig:"KAFKA_SCORE_TOPIC" default:"stockscore.scores" validate:"required"`
}

// Enabled reports whether any non-blank broker is configured
func (c KafkaConfig) Enabled() bool {
	for _, b := range c.Brokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

type ErrorTrackingConfig struct {
	Enabled   bool   `envconfig:"SENTRY_ENABLED" default:"false"`
	SentryDSN string `envconfig:"SENTRY_DSN" validate:"required_if=Enabled true"`
}

type ScoringConfig struct {
	DeriveTechnicals bool `envconfig:"SCORING_DERIVE_TECHNICALS" default:"true"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks enums and ranges
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return errors.Wrap(err, "invalid config")
	}

	first := fieldErrs[0]
	return errors.Wrap(
		errors.NewValidationError(first.Namespace(), fmt.Sprintf("failed %q check", first.Tag()), first.Value()),
		"invalid config",
	)
}
