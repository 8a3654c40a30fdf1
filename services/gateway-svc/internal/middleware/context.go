package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"algolab/pkg/interceptors"
	"algolab/pkg/logger"
)

// RequestIDHeader HTTP-заголовок id запроса; тот же ключ уходит в gRPC metadata
var RequestIDHeader = http.CanonicalHeaderKey(interceptors.RequestIDHeader)

// GetRequestID извлекает request_id из контекста
func GetRequestID(ctx context.Context) string {
	return logger.RequestIDFromContext(ctx)
}

// WithRequestID добавляет request_id в контекст
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return logger.ContextWithRequestID(ctx, requestID)
}

// GenerateRequestID генерирует уникальный ID запроса
func GenerateRequestID() string {
	return uuid.NewString()
}

// requestIDFrom берёт id из заголовка клиента или генерирует новый.
// Слишком длинные значения не принимаются.
func requestIDFrom(h http.Header) string {
	if id := strings.TrimSpace(h.Get(RequestIDHeader)); id != "" && len(id) <= 128 {
		return id
	}
	return GenerateRequestID()
}

// headerMetadata переводит HTTP заголовки в map для ratelimit.KeyExtractor
func headerMetadata(h http.Header, peerAddr string) map[string]string {
	md := make(map[string]string, 3)
	if v := h.Get("X-Forwarded-For"); v != "" {
		md["x-forwarded-for"] = v
	}
	if v := h.Get("X-Real-Ip"); v != "" {
		md["x-real-ip"] = v
	}
	if host, _, err := net.SplitHostPort(peerAddr); err == nil {
		md[":authority"] = host
	} else if peerAddr != "" {
		md[":authority"] = peerAddr
	}
	return md
}
