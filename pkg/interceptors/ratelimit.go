package interceptors

import (
	"context"
	"strconv"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"algolab/pkg/logger"
	"algolab/pkg/metrics"
	"algolab/pkg/ratelimit"
)

// RateLimitInterceptor создаёт интерсептор для rate limiting.
// При ошибке лимитера запрос пропускается (fail open).
func RateLimitInterceptor(limiter ratelimit.Limiter, keyExtractor ratelimit.KeyExtractor, exempt map[string]bool) grpc.UnaryServerInterceptor {
	if keyExtractor == nil {
		keyExtractor = ratelimit.DefaultKeyExtractor
	}
	m := metrics.Get()

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if exempt[info.FullMethod] {
			return handler(ctx, req)
		}

		key := keyExtractor(ctx, info.FullMethod, flattenMetadata(ctx))

		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			logger.Log.Warn("Rate limit check failed", "error", err, "key", key)
			return handler(ctx, req)
		}

		if allowed {
			return handler(ctx, req)
		}

		m.RecordRateLimitRejection(info.FullMethod)

		limitInfo, infoErr := limiter.GetInfo(ctx, key)
		if infoErr != nil {
			logger.Log.Warn("Failed to get rate limit info", "error", infoErr, "key", key)
			limitInfo = &ratelimit.LimitInfo{ResetAt: time.Now().Add(time.Minute), RetryAfter: time.Minute}
		}

		logger.WithContext(ctx).Warn("Rate limit exceeded",
			"key", key,
			"method", info.FullMethod,
			"limit", limitInfo.Limit,
		)

		retryAfter := int64(limitInfo.RetryAfter.Round(time.Second) / time.Second)
		if retryAfter < 1 {
			retryAfter = 1
		}
		header := metadata.Pairs(
			"x-ratelimit-limit", strconv.Itoa(limitInfo.Limit),
			"x-ratelimit-remaining", strconv.Itoa(limitInfo.Remaining),
			"x-ratelimit-reset", limitInfo.ResetAt.UTC().Format(time.RFC3339),
			"retry-after", strconv.FormatInt(retryAfter, 10),
		)
		if err := grpc.SetHeader(ctx, header); err != nil {
			logger.Log.Debug("Failed to set rate limit headers", "error", err)
		}

		return nil, status.Errorf(codes.ResourceExhausted,
			"rate limit exceeded: retry in %ds", retryAfter)
	}
}

func flattenMetadata(ctx context.Context) map[string]string {
	md, _ := metadata.FromIncomingContext(ctx)
	out := make(map[string]string, len(md))
	for k, v := range md {
		if len(v) > 0 {
			out[k] = v[0]
		}
	}
	return out
}
