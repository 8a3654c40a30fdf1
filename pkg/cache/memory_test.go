package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, maxEntries int) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(&Options{DefaultTTL: time.Minute, MaxEntries: maxEntries})
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_SetGet(t *testing.T) {
	cache := newTestCache(t, 100)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "tri:dp:abc", []byte("value"), 0))

	got, err := cache.Get(ctx, "tri:dp:abc")
	require.NoError(t, err)
	assert.Equal(t, "value", string(got))
}

func TestMemoryCache_ReturnsCopies(t *testing.T) {
	cache := newTestCache(t, 100)
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, cache.Set(ctx, "k", value, 0))
	value[0] = 'x'

	got, _ := cache.Get(ctx, "k")
	assert.Equal(t, "abc", string(got))

	got[0] = 'y'
	again, _ := cache.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryCache_GetNotFound(t *testing.T) {
	cache := newTestCache(t, 100)

	_, err := cache.Get(context.Background(), "nonexistent")
	if err != ErrKeyNotFound {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryCache_Overwrite(t *testing.T) {
	cache := newTestCache(t, 2)
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("1"), 0)
	_ = cache.Set(ctx, "k", []byte("2"), 0)

	got, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))

	stats, _ := cache.Stats(ctx)
	assert.Equal(t, int64(1), stats.TotalKeys)
	assert.Zero(t, stats.Evictions)
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := newTestCache(t, 100)
	ctx := context.Background()

	_ = cache.Set(ctx, "k", []byte("value"), 0)
	require.NoError(t, cache.Delete(ctx, "k"))
	require.NoError(t, cache.Delete(ctx, "missing"))

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCache_TTL(t *testing.T) {
	cache := newTestCache(t, 100)
	ctx := context.Background()

	_ = cache.Set(ctx, "short", []byte("v"), 20*time.Millisecond)
	_, err := cache.Get(ctx, "short")
	require.NoError(t, err)

	time.Sleep(40 * time.Millisecond)

	_, err = cache.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCache_RemoveExpired(t *testing.T) {
	cache := newTestCache(t, 100)
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), 10*time.Millisecond)
	_ = cache.Set(ctx, "b", []byte("2"), time.Hour)
	time.Sleep(20 * time.Millisecond)

	cache.removeExpired()

	cache.mu.Lock()
	n := len(cache.items)
	cache.mu.Unlock()
	assert.Equal(t, 1, n)
}

func TestMemoryCache_DeleteByPattern(t *testing.T) {
	cache := newTestCache(t, 100)
	ctx := context.Background()

	_ = cache.Set(ctx, "flow:dfs:1", []byte("a"), 0)
	_ = cache.Set(ctx, "flow:bfs:1", []byte("b"), 0)
	_ = cache.Set(ctx, "tri:dp:1", []byte("c"), 0)

	n, err := cache.DeleteByPattern(ctx, "flow:*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = cache.Get(ctx, "tri:dp:1")
	assert.NoError(t, err)
}

func TestMemoryCache_Stats(t *testing.T) {
	cache := newTestCache(t, 100)
	ctx := context.Background()

	_ = cache.Set(ctx, "tri:dp:1", []byte("12345"), 0)
	_ = cache.Set(ctx, "flow:dfs:1", []byte("123"), 0)
	_, _ = cache.Get(ctx, "tri:dp:1")
	_, _ = cache.Get(ctx, "missing")

	stats, err := cache.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalKeys)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
	assert.Equal(t, int64(8), stats.MemoryBytes)
	assert.Equal(t, int64(1), stats.KeysByPrefix["tri"])
	assert.Equal(t, BackendMemory, stats.Backend)
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := newTestCache(t, 100)
	ctx := context.Background()

	_ = cache.Set(ctx, "a", []byte("1"), 0)
	require.NoError(t, cache.Clear(ctx))

	_, err := cache.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemoryCache_LRUEviction(t *testing.T) {
	cache := newTestCache(t, 3)
	ctx := context.Background()

	_ = cache.Set(ctx, "key1", []byte("value1"), 0)
	_ = cache.Set(ctx, "key2", []byte("value2"), 0)
	_ = cache.Set(ctx, "key3", []byte("value3"), 0)

	// key1 становится самым свежим
	_, _ = cache.Get(ctx, "key1")

	_ = cache.Set(ctx, "key4", []byte("value4"), 0)

	_, err := cache.Get(ctx, "key2")
	if err != ErrKeyNotFound {
		t.Error("expected key2 to be evicted")
	}

	for _, k := range []string{"key1", "key3", "key4"} {
		_, err := cache.Get(ctx, k)
		assert.NoError(t, err, k)
	}

	stats, _ := cache.Stats(ctx)
	assert.Equal(t, int64(1), stats.Evictions)
}

func TestMemoryCache_Close(t *testing.T) {
	cache := NewMemoryCache(nil)
	ctx := context.Background()

	_ = cache.Set(ctx, "key", []byte("value"), 0)
	require.NoError(t, cache.Close())

	_, err := cache.Get(ctx, "key")
	assert.ErrorIs(t, err, ErrCacheClosed)
	assert.ErrorIs(t, cache.Set(ctx, "key", nil, 0), ErrCacheClosed)

	_, err = cache.Stats(ctx)
	assert.ErrorIs(t, err, ErrCacheClosed)

	// повторный Close безопасен
	assert.NoError(t, cache.Close())
}

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		key     string
		want    bool
	}{
		{"* anything", "*", "anything", true},
		{"prefix match", "flow:*", "flow:dfs:abc", true},
		{"prefix mismatch", "flow:*", "tri:dp:abc", false},
		{"suffix match", "*:abc", "tri:dp:abc", true},
		{"suffix mismatch", "*:abc", "tri:dp:xyz", false},
		{"exact", "tri:dp:abc", "tri:dp:abc", true},
		{"exact other", "tri:dp:abc", "tri:dp:abd", false},
		{"middle wildcard", "flow:*:abc", "flow:bfs+paths:abc", true},
		{"middle wildcard empty", "flow:*:abc", "flow::abc", true},
		{"key too short", "prefix*suffix", "presuf", false},
		{"exact length", "a*b", "ab", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := matchPattern(tt.pattern, tt.key); got != tt.want {
				t.Errorf("matchPattern(%q, %q) = %v, want %v", tt.pattern, tt.key, got, tt.want)
			}
		})
	}
}

func TestExtractPrefix(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"flow:dfs:abc", "flow"},
		{"key", "other"},
		{":leading", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := extractPrefix(tt.key); got != tt.want {
				t.Errorf("extractPrefix(%s) = %s, want %s", tt.key, got, tt.want)
			}
		})
	}
}
