package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"algolab/pkg/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.Equal(t, BackendMemory, opts.Backend)
	assert.Equal(t, 10*time.Minute, opts.DefaultTTL)
	assert.Equal(t, "algolab:", opts.KeyPrefix)
}

func TestFromConfig(t *testing.T) {
	cfg := &config.CacheConfig{
		Enabled:    true,
		Driver:     "redis",
		Host:       "redis.local",
		Port:       6380,
		Password:   "secret",
		DB:         2,
		DefaultTTL: 30 * time.Second,
	}

	opts := FromConfig(cfg)

	assert.Equal(t, BackendRedis, opts.Backend)
	assert.Equal(t, "redis.local:6380", opts.RedisAddr)
	assert.Equal(t, "secret", opts.RedisPassword)
	assert.Equal(t, 2, opts.RedisDB)
	assert.Equal(t, 30*time.Second, opts.DefaultTTL)
	assert.Equal(t, 10000, opts.MaxEntries, "keeps default when unset")
}

func TestFromConfig_EmptyDriver(t *testing.T) {
	opts := FromConfig(&config.CacheConfig{})
	assert.Equal(t, BackendMemory, opts.Backend)
	assert.Equal(t, 10*time.Minute, opts.DefaultTTL)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		opts    *Options
		wantErr bool
	}{
		{"nil options", nil, false},
		{"memory", &Options{Backend: BackendMemory, MaxEntries: 10}, false},
		{"empty backend", &Options{}, false},
		{"unknown backend", &Options{Backend: "memcached"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &MemoryCache{}, c)
			assert.NoError(t, c.Close())
		})
	}
}
