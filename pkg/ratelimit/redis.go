package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "algolab:ratelimit:"

// slidingWindowScript атомарно чистит окно, считает и добавляет запросы.
// Возвращает {allowed, remaining, oldest_ms}.
var slidingWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local limit = tonumber(ARGV[1])
	local window = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local count = tonumber(ARGV[4])

	redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
	local current = redis.call('ZCARD', key)

	if current + count <= limit then
		for i = 1, count do
			redis.call('ZADD', key, now, now .. ':' .. i .. ':' .. math.random())
		end
		redis.call('PEXPIRE', key, window + 1000)
		return {1, limit - current - count, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	return {0, 0, tonumber(oldest[2])}
`)

// RedisLimiter sliding window поверх sorted set, общий для всех реплик gateway
type RedisLimiter struct {
	client redis.UniversalClient
	config *Config
}

// NewRedisLimiter создаёт Redis rate limiter
func NewRedisLimiter(cfg *Config) (*RedisLimiter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // соединение не установлено
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &RedisLimiter{client: client, config: cfg}, nil
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.AllowN(ctx, key, 1)
}

func (l *RedisLimiter) AllowN(ctx context.Context, key string, n int) (bool, error) {
	result, err := slidingWindowScript.Run(ctx, l.client, []string{redisKey(key)},
		l.config.Requests, l.config.Window.Milliseconds(), time.Now().UnixMilli(), n).Int64Slice()
	if err != nil {
		return false, fmt.Errorf("redis script error: %w", err)
	}
	if len(result) == 0 {
		return false, fmt.Errorf("unexpected empty result from redis script")
	}

	return result[0] == 1, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, redisKey(key)).Err()
}

func (l *RedisLimiter) GetInfo(ctx context.Context, key string) (*LimitInfo, error) {
	now := time.Now()
	windowStart := now.Add(-l.config.Window).UnixMilli()
	rk := redisKey(key)

	count, err := l.client.ZCount(ctx, rk, strconv.FormatInt(windowStart, 10), "+inf").Result()
	if err != nil {
		return nil, err
	}

	info := &LimitInfo{
		Limit:     l.config.Requests,
		Remaining: l.config.Requests - int(count),
		ResetAt:   now.Add(l.config.Window),
	}

	oldest, err := l.client.ZRangeWithScores(ctx, rk, 0, 0).Result()
	if err == nil && len(oldest) > 0 {
		info.ResetAt = time.UnixMilli(int64(oldest[0].Score)).Add(l.config.Window)
	}

	if info.Remaining <= 0 {
		info.Remaining = 0
		info.RetryAfter = info.ResetAt.Sub(now)
	}
	return info, nil
}

func (l *RedisLimiter) Close() error {
	return l.client.Close()
}
