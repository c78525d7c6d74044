package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServiceName string
	Env         string
	HTTPAddr    string
	LogLevel    string
	LogFile     string

	// DatabaseURL selects postgres; empty runs on the in-memory store.
	DatabaseURL string
	// RedisAddr selects the shared webhook ledger; empty keeps it in process.
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	StripeSecretKey     string
	StripeWebhookSecret string
	FrontendURL         string
	CheckoutSessionTTL  time.Duration
	ShutdownTimeout     time.Duration

	SeedDemoData bool
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ServiceName:         getenv("SERVICE_NAME", "minishop-payments"),
		Env:                 getenv("ENV", "dev"),
		HTTPAddr:            getenv("HTTP_ADDR", ":8080"),
		LogLevel:            getenv("LOG_LEVEL", "info"),
		LogFile:             getenv("LOG_FILE", ""),
		DatabaseURL:         getenv("DATABASE_URL", ""),
		RedisAddr:           getenv("REDIS_ADDR", ""),
		KafkaBrokers:        splitCSV(getenv("KAFKA_BROKERS", "")),
		KafkaTopic:          getenv("KAFKA_TOPIC", "order.events"),
		StripeSecretKey:     getenv("STRIPE_SECRET_KEY", ""),
		StripeWebhookSecret: getenv("STRIPE_WEBHOOK_SECRET", ""),
		FrontendURL:         getenv("FRONTEND_URL", "http://localhost:3000"),
	}

	var err error
	if cfg.CheckoutSessionTTL, err = duration("CHECKOUT_SESSION_TTL", 30*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownTimeout, err = duration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.SeedDemoData, err = boolean("SEED_DEMO_DATA", false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func duration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: %s must be a positive duration, got %q", k, v)
	}
	return d, nil
}

func boolean(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s must be a boolean, got %q", k, v)
	}
	return b, nil
}
