package redis

import (
	"context"
	"testing"
	"time"

	"evento/internal/logger"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRedisIntegration runs the lock against a real Redis container
func TestRedisIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	defer client.Close()

	lock := NewRedis(client, 2*time.Second, logger.Discard())

	release, err := lock.Acquire(ctx, "evt-int")
	require.NoError(t, err)

	_, ok, err := lock.LockEvent(ctx, "evt-int")
	require.NoError(t, err)
	assert.False(t, ok, "Expected event to be already locked")

	release()

	token, ok, err := lock.LockEvent(ctx, "evt-int")
	require.NoError(t, err)
	assert.True(t, ok, "Expected event to be lockable after release")
	require.NoError(t, lock.UnlockEvent(ctx, "evt-int", token))
}
