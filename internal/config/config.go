package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config - структура для хранения конфигурации приложения
type Config struct {
	DatabaseURL string `env:"DATABASE_URL"`
	DBMaxConns  int32  `env:"DB_MAX_CONNS" envDefault:"10"`
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis Config
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Notification webhook Config
	WebhookURL           string        `env:"NOTIFICATION_WEBHOOK_URL"`
	WebhookSecret        string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout       time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries    int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay     time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`
	WebhookRatePerSecond float64       `env:"WEBHOOK_RATE_PER_SECOND" envDefault:"20"`

	// Matching Config
	MatchLimit         int           `env:"MATCH_LIMIT" envDefault:"5"`
	MatchLockTTL       time.Duration `env:"MATCH_LOCK_TTL" envDefault:"2m"`
	ReportMatchTimeout time.Duration `env:"REPORT_MATCH_TIMEOUT" envDefault:"30s"`
	ProfileCacheTTL    time.Duration `env:"PROFILE_CACHE_TTL" envDefault:"1m"`

	// Sweep Config
	SweepInterval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"10m"`
	SweepConcurrency int           `env:"SWEEP_CONCURRENCY" envDefault:"5"`

	// Links used in notifications
	ProviderCasesLink  string `env:"PROVIDER_CASES_LINK" envDefault:"/dashboard/provider/cases"`
	SubmitterCasesLink string `env:"SUBMITTER_CASES_LINK" envDefault:"/dashboard/survivor/cases"`

	// API Keys for authentication
	APIKeys []string `env:"API_KEYS"`
}

// на одно обращение назначается не больше пяти служб
const maxMatchLimit = 5

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		DBMaxConns:           int32(getEnvAsInt("DB_MAX_CONNS", 10)),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:            os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvAsInt("REDIS_DB", 0),
		WebhookURL:           os.Getenv("NOTIFICATION_WEBHOOK_URL"),
		WebhookSecret:        os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:       getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:    getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:     getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
		WebhookRatePerSecond: getEnvAsFloat("WEBHOOK_RATE_PER_SECOND", 20),
		MatchLimit:           getEnvAsInt("MATCH_LIMIT", 5),
		MatchLockTTL:         getEnvAsDuration("MATCH_LOCK_TTL", 2*time.Minute),
		ReportMatchTimeout:   getEnvAsDuration("REPORT_MATCH_TIMEOUT", 30*time.Second),
		ProfileCacheTTL:      getEnvAsDuration("PROFILE_CACHE_TTL", time.Minute),
		SweepInterval:        getEnvAsDuration("SWEEP_INTERVAL", 10*time.Minute),
		SweepConcurrency:     getEnvAsInt("SWEEP_CONCURRENCY", 5),
		ProviderCasesLink:    getEnv("PROVIDER_CASES_LINK", "/dashboard/provider/cases"),
		SubmitterCasesLink:   getEnv("SUBMITTER_CASES_LINK", "/dashboard/survivor/cases"),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if cfg.MatchLimit < 1 || cfg.MatchLimit > maxMatchLimit {
		return nil, fmt.Errorf("MATCH_LIMIT must be between 1 and %d, got %d", maxMatchLimit, cfg.MatchLimit)
	}
	if cfg.SweepConcurrency < 1 {
		return nil, fmt.Errorf("SWEEP_CONCURRENCY must be positive, got %d", cfg.SweepConcurrency)
	}

	return cfg, nil
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}
