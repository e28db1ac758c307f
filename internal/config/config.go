package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

type Config struct {
	DBDSN          string
	TelegramToken  string
	AdminChatID    int64
	Environment    string
	LogLevel       string
	MigrationsPath string

	OpenHour           int
	CloseHour          int
	ClaimAheadDays     int
	CacheTTL           time.Duration
	DefaultHourlyRate  int64
	PayrollCron        string
	TemplateWeeksAhead int
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию из переменных окружения
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBDSN:          os.Getenv("DB_DSN"),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		Environment:    normalizeEnv(getEnv("ENV", "development")),
		LogLevel:       strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
		PayrollCron:    getEnv("PAYROLL_CRON", "0 3 * * *"),
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	var err error
	if cfg.AdminChatID, err = getEnvInt64("ADMIN_CHAT_ID", 0); err != nil {
		return nil, err
	}
	if cfg.DefaultHourlyRate, err = getEnvInt64("DEFAULT_HOURLY_RATE", 10000); err != nil {
		return nil, err
	}
	if cfg.OpenHour, err = getEnvInt("OPEN_HOUR", 8); err != nil {
		return nil, err
	}
	if cfg.CloseHour, err = getEnvInt("CLOSE_HOUR", 22); err != nil {
		return nil, err
	}
	if cfg.ClaimAheadDays, err = getEnvInt("CLAIM_AHEAD_DAYS", 14); err != nil {
		return nil, err
	}
	if cfg.TemplateWeeksAhead, err = getEnvInt("TEMPLATE_WEEKS_AHEAD", 4); err != nil {
		return nil, err
	}

	ttl := getEnv("CACHE_TTL", "1h")
	if cfg.CacheTTL, err = time.ParseDuration(ttl); err != nil {
		return nil, fmt.Errorf("CACHE_TTL: invalid duration %q: %w", ttl, err)
	}

	if cfg.OpenHour < 0 || cfg.CloseHour > 24 || cfg.OpenHour >= cfg.CloseHour {
		return nil, fmt.Errorf("invalid working hours %d-%d", cfg.OpenHour, cfg.CloseHour)
	}
	if cfg.DefaultHourlyRate < 0 {
		return nil, fmt.Errorf("DEFAULT_HOURLY_RATE must not be negative")
	}
	if _, err := cron.ParseStandard(cfg.PayrollCron); err != nil {
		return nil, fmt.Errorf("PAYROLL_CRON: %w", err)
	}

	return cfg, nil
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

// HasTelegram бот и уведомления включаются только с токеном
func (c *Config) HasTelegram() bool {
	return c.TelegramToken != ""
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}

func getEnvInt64(key string, fallback int64) (int64, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, value)
	}
	return n, nil
}

func normalizeEnv(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "dev", "develop", "development", "local":
		return "development"
	case "prod", "production":
		return "production"
	case "test", "testing":
		return "test"
	default:
		return strings.ToLower(strings.TrimSpace(value))
	}
}
