package database

import (
	"context"
	"testing"

	"evento/internal/config"
	"evento/internal/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := ConnectRedis(context.Background(), config.RedisConfig{Addr: mr.Addr(), Enabled: true}, logger.Discard())
	require.NoError(t, err)
	require.NotNil(t, client)
	client.Close()
}

func TestConnectRedis_Disabled(t *testing.T) {
	client, err := ConnectRedis(context.Background(), config.RedisConfig{Addr: "unused:1"}, logger.Discard())
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = ConnectRedis(context.Background(), config.RedisConfig{Addr: addr, Enabled: true}, logger.Discard())
	assert.Error(t, err)
}

func TestOpenSQL_RequiresDSN(t *testing.T) {
	_, err := OpenSQL(context.Background(), config.DatabaseConfig{}, logger.Discard())
	assert.EqualError(t, err, "POSTGRES_DSN not set")
}
