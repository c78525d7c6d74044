package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"SERVICE_NAME", "HTTP_ADDR", "DATABASE_URL", "REDIS_ADDR", "KAFKA_BROKERS",
		"KAFKA_TOPIC", "FRONTEND_URL", "CHECKOUT_SESSION_TTL", "SHUTDOWN_TIMEOUT", "SEED_DEMO_DATA", "LOG_LEVEL", "LOG_FILE"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "minishop-payments", cfg.ServiceName)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Empty(t, cfg.DatabaseURL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "order.events", cfg.KafkaTopic)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.Equal(t, 30*time.Minute, cfg.CheckoutSessionTTL)
	assert.False(t, cfg.SeedDemoData)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")
	t.Setenv("CHECKOUT_SESSION_TTL", "45m")
	t.Setenv("SEED_DEMO_DATA", "true")
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_x")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 45*time.Minute, cfg.CheckoutSessionTTL)
	assert.True(t, cfg.SeedDemoData)
	assert.Equal(t, "whsec_x", cfg.StripeWebhookSecret)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CHECKOUT_SESSION_TTL", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "CHECKOUT_SESSION_TTL")

	t.Setenv("CHECKOUT_SESSION_TTL", "")
	t.Setenv("SEED_DEMO_DATA", "maybe")
	_, err = Load()
	assert.ErrorContains(t, err, "SEED_DEMO_DATA")
}
