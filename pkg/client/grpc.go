package client

import (
	"context"
	"time"

	grpc_retry "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/retry"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"

	"algolab/pkg/config"
	"algolab/pkg/telemetry"
)

type ClientConfig struct {
	Address      string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxMsgSize ограничивает размер сообщений в обе стороны, 0 = по умолчанию gRPC
	MaxMsgSize int
}

// DefaultClientConfig настройки для локального solver-svc
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Address:      "localhost:50052",
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryBackoff: 100 * time.Millisecond,
		MaxMsgSize:   50 * 1024 * 1024,
	}
}

// FromEndpoint строит ClientConfig из секции services.* конфига
func FromEndpoint(ep config.ServiceEndpoint) ClientConfig {
	cfg := DefaultClientConfig()
	if ep.Host != "" || ep.Port != 0 {
		cfg.Address = ep.Address()
	}
	if ep.Timeout > 0 {
		cfg.Timeout = ep.Timeout
	}
	if ep.MaxRetries >= 0 {
		cfg.MaxRetries = ep.MaxRetries
	}
	if ep.RetryBackoff > 0 {
		cfg.RetryBackoff = ep.RetryBackoff
	}
	return cfg
}

// NewGRPCClient создает соединение с Retry и Timeout
func NewGRPCClient(_ context.Context, cfg ClientConfig, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts := []grpc_retry.CallOption{
		grpc_retry.WithBackoff(grpc_retry.BackoffLinear(cfg.RetryBackoff)),
		grpc_retry.WithCodes(codes.Unavailable, codes.Aborted),
		grpc_retry.WithMax(uint(cfg.MaxRetries)),
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(
			telemetry.UnaryClientInterceptor(),
			grpc_retry.UnaryClientInterceptor(opts...),
		),
		grpc.WithChainStreamInterceptor(
			grpc_retry.StreamClientInterceptor(opts...),
		),
	}
	if cfg.MaxMsgSize > 0 {
		dialOpts = append(dialOpts, grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(cfg.MaxMsgSize),
			grpc.MaxCallSendMsgSize(cfg.MaxMsgSize),
		))
	}

	return grpc.NewClient(cfg.Address, append(dialOpts, extra...)...)
}
