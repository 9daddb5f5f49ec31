//go:build integration

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"bizconsole/internal/model"
)

func TestRedisStore_RoundTripAndTTL(t *testing.T) {
	ctx := context.Background()

	rdC, err := tcRedis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	store, err := NewRedisStore(ctx, rdURL, "bizconsole:test:session", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	s, err := New(ctx, store)
	require.NoError(t, err)
	require.NoError(t, s.Login(ctx, "redis-token", model.User{ID: 1, Username: "seller1", Role: model.RoleSeller}))

	ttl, err := store.client.TTL(ctx, "bizconsole:test:session").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	other, err := New(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "redis-token", other.Token())

	require.NoError(t, other.Logout(ctx))
	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
