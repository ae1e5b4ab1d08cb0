package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sstepanets/plan-manager/internal/config"
	"github.com/sstepanets/plan-manager/internal/models"
)

func setupTestCache(t *testing.T) *Cache {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	t.Cleanup(func() { mr.Close() })

	cfg := config.RedisConnection{
		AddressRedis: mr.Addr(),
		Password:     "",
		DB:           0,
		User:         "",
	}

	cache, err := InitServer(context.Background(), cfg)
	require.NoError(t, err)
	return cache
}

func TestSetAndGet(t *testing.T) {
	cache := setupTestCache(t)

	expected := []models.Plan{
		{ID: 1, Name: "Basic", MonthlyPrice: 9.99, MonthlyQuotaGB: 10, IsActive: true},
		{ID: 2, Name: "Pro", MonthlyPrice: 29.99, MonthlyQuotaGB: 100, IsActive: true},
	}
	err := cache.Set("plans:active", expected, time.Minute)
	require.NoError(t, err)

	var actual []models.Plan
	found, err := cache.Get("plans:active", &actual)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, expected, actual)
}

func TestGetNotFound(t *testing.T) {
	cache := setupTestCache(t)

	var out models.Plan
	found, err := cache.Get("no_such_key", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInvalidate(t *testing.T) {
	cache := setupTestCache(t)

	err := cache.Set("plan:1", models.Plan{ID: 1, Name: "Basic"}, time.Minute)
	require.NoError(t, err)

	err = cache.Invalidate("plan:1")
	require.NoError(t, err)

	var out models.Plan
	found, err := cache.Get("plan:1", &out)
	require.NoError(t, err)
	assert.False(t, found)
}
