//go:build integration

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/studentdir/internal/app/models"
	"github.com/yigit/studentdir/internal/pkg/cache"
	"github.com/yigit/studentdir/internal/pkg/testutil/containers"
)

func TestProfileCache_Redis(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	rc := containers.NewRedisContainer(t)
	ctx := context.Background()
	c := cache.NewProfileCache(rc.Client, time.Minute)

	_, err := c.Get(ctx, "MAT00001")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	matric := "MAT00001"
	require.NoError(t, c.Set(ctx, models.StudentProfile{Username: "alice", Name: "Alice A", MatricNumber: &matric}))

	got, err := c.Get(ctx, "MAT00001")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "MAT00001", *got.MatricNumber)

	ttl, err := rc.Client.TTL(ctx, cache.MatricKey("MAT00001")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	// Unmatriculated profiles are never cached
	require.NoError(t, c.Set(ctx, models.StudentProfile{Username: "bob", Name: "Bob"}))
	keys, err := rc.Client.Keys(ctx, cache.KeyPrefix+"*").Result()
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := cache.NewRedisClient(ctx, cache.Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
