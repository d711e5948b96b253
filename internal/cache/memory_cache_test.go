package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	assert.NoError(t, cache.Set(ctx, "perm:role:trainee", []string{"exam:create"}, time.Minute))

	var codes []string
	assert.NoError(t, cache.Get(ctx, "perm:role:trainee", &codes))
	assert.Equal(t, []string{"exam:create"}, codes)
}

func TestMemoryCache_MissingKey(t *testing.T) {
	cache := NewMemoryCache()

	var dest []string
	err := cache.Get(context.Background(), "absent", &dest)

	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryCache_TTLExpiry(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := newMemoryCacheWithClock(func() time.Time { return now })
	ctx := context.Background()

	assert.NoError(t, cache.Set(ctx, "key", "value", 5*time.Minute))

	var dest string
	now = now.Add(5 * time.Minute)
	assert.NoError(t, cache.Get(ctx, "key", &dest), "entry is still live at the boundary")

	now = now.Add(time.Second)
	assert.ErrorIs(t, cache.Get(ctx, "key", &dest), ErrCacheMiss)
}

func TestMemoryCache_ZeroTTLNeverExpires(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cache := newMemoryCacheWithClock(func() time.Time { return now })
	ctx := context.Background()

	assert.NoError(t, cache.Set(ctx, "key", 42, 0))

	now = now.Add(24 * time.Hour)
	var dest int
	assert.NoError(t, cache.Get(ctx, "key", &dest))
	assert.Equal(t, 42, dest)
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	assert.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	assert.NoError(t, cache.Delete(ctx, "key"))

	var dest string
	assert.ErrorIs(t, cache.Get(ctx, "key", &dest), ErrCacheMiss)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	cache := NewMemoryCache()
	ctx := context.Background()

	assert.NoError(t, cache.Set(ctx, "perm:role:trainee", []string{"a"}, time.Minute))
	assert.NoError(t, cache.Set(ctx, "perm:role:manager", []string{"b"}, time.Minute))
	assert.NoError(t, cache.Set(ctx, "other:key", "c", time.Minute))

	assert.NoError(t, cache.DeletePattern(ctx, "perm:role:*"))

	var codes []string
	assert.ErrorIs(t, cache.Get(ctx, "perm:role:trainee", &codes), ErrCacheMiss)
	assert.ErrorIs(t, cache.Get(ctx, "perm:role:manager", &codes), ErrCacheMiss)

	var other string
	assert.NoError(t, cache.Get(ctx, "other:key", &other))
}
