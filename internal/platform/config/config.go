package config

import (
	"log"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL    string
	Port           string
	IsProduction   bool
	EnableDBCheck  bool
	LogLevel       slog.Level
	MigrationsPath string

	// Billing
	CurrencyCode     string
	InvoiceDueDays   int
	BatchConcurrency int

	// HTTP
	CORSAllowedOrigins []string
	RateLimit          string

	// Optional infrastructure
	RedisURL          string
	RabbitMQURL       string
	NotificationQueue string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MIGRATIONS_PATH", "file://migrations")
	viper.SetDefault("CURRENCY_CODE", "PKR")
	viper.SetDefault("INVOICE_DUE_DAYS", 10)
	viper.SetDefault("BATCH_CONCURRENCY", 4)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("NOTIFICATION_QUEUE", "billing.events")

	// Defaults are overridden by .env values, which are overridden by the real environment.
	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")
	cfg.LogLevel = parseLogLevel(viper.GetString("LOG_LEVEL"))
	cfg.MigrationsPath = viper.GetString("MIGRATIONS_PATH")

	cfg.CurrencyCode = strings.ToUpper(viper.GetString("CURRENCY_CODE"))

	cfg.InvoiceDueDays = viper.GetInt("INVOICE_DUE_DAYS")
	if cfg.InvoiceDueDays < 0 {
		log.Printf("Warning: Invalid value for INVOICE_DUE_DAYS (%d). Defaulting to 10.\n", cfg.InvoiceDueDays)
		cfg.InvoiceDueDays = 10
	}

	cfg.BatchConcurrency = viper.GetInt("BATCH_CONCURRENCY")
	if cfg.BatchConcurrency < 1 {
		log.Printf("Warning: Invalid value for BATCH_CONCURRENCY (%d). Defaulting to 1.\n", cfg.BatchConcurrency)
		cfg.BatchConcurrency = 1
	}

	cfg.CORSAllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	cfg.RedisURL = viper.GetString("REDIS_URL")
	cfg.RabbitMQURL = viper.GetString("RABBITMQ_URL")
	cfg.NotificationQueue = viper.GetString("NOTIFICATION_QUEUE")

	return cfg, nil
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		log.Printf("Warning: Invalid value for LOG_LEVEL ('%s'). Defaulting to info.\n", s)
		return slog.LevelInfo
	}
	return level
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
