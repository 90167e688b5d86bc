package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("PORT", "")
	t.Setenv("SAVE_RETRIES", "")
	t.Setenv("EVENT_LOCK_TTL", "")
	t.Setenv("KAFKA_TOPIC_TICKETS_PURCHASED", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 3, cfg.App.SaveRetries)
	assert.Equal(t, 5*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, "evento.tickets.purchased", cfg.Kafka.Topics.TicketsPurchased)
	assert.Len(t, cfg.Kafka.Topics.All(), 6)
	assert.Error(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("KAFKA_ENABLED", "false")
	t.Setenv("EVENT_LOCK_TTL", "250ms")
	t.Setenv("JWT_EXPIRY_MINUTES", "15")
	t.Setenv("SEED_DATA", "true")
	t.Setenv("PURCHASE_RATE_PER_SECOND", "0.5")
	t.Setenv("SAVE_RETRIES", "not-a-number")

	cfg := Load()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Kafka.Enabled)
	assert.Equal(t, 250*time.Millisecond, cfg.Redis.LockTTL)
	assert.Equal(t, 15*time.Minute, cfg.Auth.Expiry)
	assert.True(t, cfg.App.SeedData)
	assert.Equal(t, 0.5, cfg.RateLimit.PerSecond)
	assert.Equal(t, 3, cfg.App.SaveRetries)
}

func TestValidate_SaveRetries(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SAVE_RETRIES", "0")

	assert.EqualError(t, Load().Validate(), "SAVE_RETRIES must be at least 1")
}
