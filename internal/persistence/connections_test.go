package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/account-service/internal/config"
)

func TestPoolConfigRequiresDSN(t *testing.T) {
	_, err := poolConfig(config.PostgresConfig{})
	assert.ErrorIs(t, err, ErrPostgresDSNMissing)
}

func TestPoolConfigAppliesLimits(t *testing.T) {
	poolCfg, err := poolConfig(config.PostgresConfig{
		DSN:            "postgres://svc:pw@localhost:5432/accounts",
		MaxConns:       8,
		MinConns:       2,
		ConnMaxIdleSec: 30,
		ConnMaxLifeSec: 300,
	})
	require.NoError(t, err)
	assert.Equal(t, "accounts", poolCfg.ConnConfig.Database)
	assert.EqualValues(t, 8, poolCfg.MaxConns)
	assert.EqualValues(t, 2, poolCfg.MinConns)
	assert.Equal(t, 30*time.Second, poolCfg.MaxConnIdleTime)
	assert.Equal(t, 5*time.Minute, poolCfg.MaxConnLifetime)
}

func TestPoolConfigIgnoresMinAboveMax(t *testing.T) {
	poolCfg, err := poolConfig(config.PostgresConfig{
		DSN:      "postgres://svc:pw@localhost:5432/accounts",
		MaxConns: 2,
		MinConns: 5,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 0, poolCfg.MinConns)
}

func TestPingWithoutConnection(t *testing.T) {
	ctx := context.Background()

	var pg *Postgres
	assert.Error(t, pg.Ping(ctx))

	var rdb *Redis
	assert.Error(t, rdb.Ping(ctx))
	_, err := rdb.QueueLength(ctx, "outgoing")
	assert.Error(t, err)

	var mg *Mongo
	assert.Error(t, mg.Ping(ctx))
}
