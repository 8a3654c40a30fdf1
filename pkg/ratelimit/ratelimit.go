// Package ratelimit ограничивает частоту запросов к решателю.
// Ключ лимита выбирает KeyExtractor: IP клиента, метод или их комбинация.
package ratelimit

import (
	"context"
	"errors"
	"strings"
	"time"

	"algolab/pkg/config"
)

// Стратегии
const (
	StrategySlidingWindow = "sliding_window"
	StrategyTokenBucket   = "token_bucket"
)

var ErrLimiterClosed = errors.New("limiter is closed")

// Limiter интерфейс ограничителя запросов
type Limiter interface {
	// Allow проверяет, разрешён ли запрос
	Allow(ctx context.Context, key string) (bool, error)

	// AllowN проверяет, разрешены ли n запросов разом
	AllowN(ctx context.Context, key string, n int) (bool, error)

	// Reset сбрасывает лимит для ключа
	Reset(ctx context.Context, key string) error

	// GetInfo возвращает текущее состояние лимита
	GetInfo(ctx context.Context, key string) (*LimitInfo, error)

	Close() error
}

// LimitInfo информация о состоянии лимита, уходит клиенту в x-ratelimit-* заголовках
type LimitInfo struct {
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	ResetAt    time.Time     `json:"reset_at"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
}

// Config конфигурация rate limiter
type Config struct {
	Requests        int
	Window          time.Duration
	Strategy        string
	Backend         string
	BurstSize       int
	CleanupInterval time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	return &Config{
		Requests:        100,
		Window:          time.Minute,
		Strategy:        StrategySlidingWindow,
		Backend:         "memory",
		BurstSize:       10,
		CleanupInterval: 5 * time.Minute,
	}
}

// FromConfig переносит секцию rate_limit, пустые поля берутся по умолчанию
func FromConfig(cfg *config.RateLimitConfig) *Config {
	out := DefaultConfig()
	if cfg.Requests > 0 {
		out.Requests = cfg.Requests
	}
	if cfg.Window > 0 {
		out.Window = cfg.Window
	}
	if cfg.Strategy != "" {
		out.Strategy = strings.ToLower(cfg.Strategy)
	}
	if cfg.Backend != "" {
		out.Backend = cfg.Backend
	}
	if cfg.BurstSize > 0 {
		out.BurstSize = cfg.BurstSize
	}
	if cfg.CleanupInterval > 0 {
		out.CleanupInterval = cfg.CleanupInterval
	}
	out.RedisAddr = cfg.RedisAddr
	return out
}

// New создаёт лимитер на основе конфигурации
func New(cfg *Config) (Limiter, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	switch cfg.Backend {
	case "redis":
		return NewRedisLimiter(cfg)
	default:
		return NewMemoryLimiter(cfg), nil
	}
}

// KeyExtractor функция извлечения ключа
type KeyExtractor func(ctx context.Context, method string, metadata map[string]string) string

// DefaultKeyExtractor извлекает ключ по IP клиента
func DefaultKeyExtractor(_ context.Context, _ string, metadata map[string]string) string {
	if ip := metadata["x-forwarded-for"]; ip != "" {
		// Первый адрес в цепочке прокси - исходный клиент
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		return strings.TrimSpace(ip)
	}
	if ip := metadata["x-real-ip"]; ip != "" {
		return ip
	}
	if peer := metadata[":authority"]; peer != "" {
		return peer
	}
	return "unknown"
}

// MethodKeyExtractor извлекает ключ по методу
func MethodKeyExtractor(_ context.Context, method string, _ map[string]string) string {
	return method
}

// CompositeKeyExtractor объединяет ключи через ':'
func CompositeKeyExtractor(extractors ...KeyExtractor) KeyExtractor {
	return func(ctx context.Context, method string, metadata map[string]string) string {
		parts := make([]string, 0, len(extractors))
		for _, ext := range extractors {
			parts = append(parts, ext(ctx, method, metadata))
		}
		return strings.Join(parts, ":")
	}
}
