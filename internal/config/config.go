package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	LLM      LLMConfig
	Matching MatchingConfig
}

type AppConfig struct {
	AppName     string
	Environment string
	HTTPPort    string
}

type DatabaseConfig struct {
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	ConnectTimeout        time.Duration
	PoolMaxConns          int32
	PoolMinConns          int32
	PoolMaxConnLifetime   time.Duration
	PoolMaxConnIdleTime   time.Duration
	PoolHealthCheckPeriod time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type LLMProvider string

const (
	ProviderOpenAI    LLMProvider = "openai"
	ProviderAnthropic LLMProvider = "anthropic"
	ProviderOllama    LLMProvider = "ollama"
)

type LLMConfig struct {
	Provider        LLMProvider
	Model           string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string
	CallTimeout     time.Duration
}

type MatchingConfig struct {
	QueueName  string
	MaxRetries int
	LockTTL    time.Duration
}

var errMissingRequiredEnv = errors.New("missing required environment variables")

func Load() (Config, error) {
	cfg := Config{}

	var missing []string
	req := func(key string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}
	opt := func(key, fallback string) string {
		v := strings.TrimSpace(os.Getenv(key))
		if v == "" {
			return fallback
		}
		return v
	}

	cfg.App = AppConfig{
		AppName:     req("APP_NAME"),
		Environment: req("APP_ENV"),
		HTTPPort:    req("HTTP_PORT"),
	}

	cfg.Database = DatabaseConfig{
		DBHost:         opt("DB_HOST", "localhost"),
		DBPort:         opt("DB_PORT", "5432"),
		DBName:         opt("DB_NAME", ""),
		DBUser:         opt("DB_USER", ""),
		DBPassword:     opt("DB_PASSWORD", ""),
		DBSSLMode:      opt("DB_SSL_MODE", "disable"),
		ConnectTimeout:        durationFromEnv("DB_CONNECT_TIMEOUT_SECONDS", 5*time.Second),
		PoolMaxConns:          int32FromEnv("DB_POOL_MAX_CONNS", 0),
		PoolMinConns:          int32FromEnv("DB_POOL_MIN_CONNS", 0),
		PoolMaxConnLifetime:   durationFromEnv("DB_POOL_MAX_CONN_LIFETIME_SECONDS", 30*time.Minute),
		PoolMaxConnIdleTime:   durationFromEnv("DB_POOL_MAX_CONN_IDLE_SECONDS", 5*time.Minute),
		PoolHealthCheckPeriod: durationFromEnv("DB_POOL_HEALTH_CHECK_SECONDS", time.Minute),
	}

	cfg.Redis = RedisConfig{
		Host:     opt("REDIS_HOST", "localhost"),
		Port:     opt("REDIS_PORT", "6379"),
		Password: opt("REDIS_PASSWORD", ""),
	}

	cfg.LLM = LLMConfig{
		Provider:        LLMProvider(strings.ToLower(opt("LLM_PROVIDER", string(ProviderOpenAI)))),
		Model:           opt("LLM_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey:    opt("OPENAI_API_KEY", ""),
		AnthropicAPIKey: opt("ANTHROPIC_API_KEY", ""),
		OllamaHost:      opt("OLLAMA_HOST", "http://localhost:11434"),
		CallTimeout:     durationFromEnv("LLM_TIMEOUT_SECONDS", 60*time.Second),
	}

	cfg.Matching = MatchingConfig{
		QueueName:  opt("MATCH_QUEUE_NAME", "matching:jobs"),
		MaxRetries: intFromEnv("MATCH_MAX_RETRIES", 2),
		LockTTL:    durationFromEnv("MATCH_LOCK_TTL_SECONDS", 120*time.Second),
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", errMissingRequiredEnv, strings.Join(missing, ", "))
	}

	return cfg, nil
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Second
}

func intFromEnv(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func int32FromEnv(key string, fallback int32) int32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return int32(v)
}
