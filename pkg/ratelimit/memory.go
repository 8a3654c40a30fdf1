package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter in-memory реализация, состояние живёт в процессе
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	config  *Config
	stopCh  chan struct{}
	closed  bool
	now     func() time.Time
}

type bucket struct {
	tokens    float64
	lastCheck time.Time
	requests  []time.Time // sliding window, по возрастанию
}

// NewMemoryLimiter создаёт in-memory rate limiter
func NewMemoryLimiter(cfg *Config) *MemoryLimiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}

	l := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		config:  cfg,
		stopCh:  make(chan struct{}),
		now:     time.Now,
	}

	go l.cleanupLoop()

	return l
}

func (l *MemoryLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return l.AllowN(ctx, key, 1)
}

func (l *MemoryLimiter) AllowN(_ context.Context, key string, n int) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false, ErrLimiterClosed
	}

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{
			tokens:    l.capacity(),
			lastCheck: now,
		}
		l.buckets[key] = b
	}

	if l.config.Strategy == StrategyTokenBucket {
		return l.takeTokens(b, n, now), nil
	}
	return l.slideWindow(b, n, now), nil
}

func (l *MemoryLimiter) capacity() float64 {
	return float64(l.config.Requests + l.config.BurstSize)
}

func (l *MemoryLimiter) refill(b *bucket, now time.Time) {
	rate := float64(l.config.Requests) / l.config.Window.Seconds()
	b.tokens += now.Sub(b.lastCheck).Seconds() * rate
	if max := l.capacity(); b.tokens > max {
		b.tokens = max
	}
	b.lastCheck = now
}

func (l *MemoryLimiter) takeTokens(b *bucket, n int, now time.Time) bool {
	l.refill(b, now)
	if b.tokens >= float64(n) {
		b.tokens -= float64(n)
		return true
	}
	return false
}

// trim отбрасывает запросы старше окна
func (l *MemoryLimiter) trim(b *bucket, now time.Time) {
	windowStart := now.Add(-l.config.Window)
	i := 0
	for i < len(b.requests) && !b.requests[i].After(windowStart) {
		i++
	}
	b.requests = b.requests[i:]
}

func (l *MemoryLimiter) slideWindow(b *bucket, n int, now time.Time) bool {
	l.trim(b, now)
	b.lastCheck = now

	if len(b.requests)+n > l.config.Requests {
		return false
	}
	for i := 0; i < n; i++ {
		b.requests = append(b.requests, now)
	}
	return true
}

func (l *MemoryLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.buckets, key)
	return nil
}

func (l *MemoryLimiter) GetInfo(_ context.Context, key string) (*LimitInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLimiterClosed
	}

	now := l.now()
	info := &LimitInfo{
		Limit:     l.config.Requests,
		Remaining: l.config.Requests,
		ResetAt:   now.Add(l.config.Window),
	}

	b, ok := l.buckets[key]
	if !ok {
		return info, nil
	}

	if l.config.Strategy == StrategyTokenBucket {
		l.refill(b, now)
		info.Remaining = int(b.tokens)
		if info.Remaining < 1 {
			rate := float64(l.config.Requests) / l.config.Window.Seconds()
			info.RetryAfter = time.Duration((1 - b.tokens) / rate * float64(time.Second))
			info.ResetAt = now.Add(info.RetryAfter)
		}
		return info, nil
	}

	l.trim(b, now)
	info.Remaining = l.config.Requests - len(b.requests)
	if len(b.requests) > 0 {
		// окно освобождается, когда уходит самый старый запрос
		info.ResetAt = b.requests[0].Add(l.config.Window)
		if info.Remaining <= 0 {
			info.RetryAfter = info.ResetAt.Sub(now)
		}
	}
	if info.Remaining < 0 {
		info.Remaining = 0
	}
	return info, nil
}

func (l *MemoryLimiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	close(l.stopCh)
	l.buckets = nil

	return nil
}

func (l *MemoryLimiter) cleanupLoop() {
	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopCh:
			return
		case <-ticker.C:
			l.removeIdle()
		}
	}
}

// removeIdle удаляет ключи без активности дольше двух окон
func (l *MemoryLimiter) removeIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-2 * l.config.Window)
	for key, b := range l.buckets {
		if b.lastCheck.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
