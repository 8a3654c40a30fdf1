package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"algolab/pkg/apperror"
	"algolab/pkg/config"
)

// Атрибуты ресурса: с какими лимитами запущен решатель
const (
	AttrSolverDefaultStrategy = "solver.default_strategy"
	AttrSolverMaxVertices     = "solver.max_vertices"
	AttrSolverMaxNodes        = "solver.max_nodes"
	AttrErrorCode             = "error.code"
)

// Config конфигурация телеметрии
type Config struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	Version     string
	Environment string
	SampleRate  float64

	// Настройки решателя попадают в resource, чтобы трассы разных лимитов различались
	DefaultStrategy string
	MaxVertices     int
	MaxNodes        int
}

// Provider обёртка над TracerProvider
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

var globalProvider *Provider

// FromConfig собирает Config из секций app, tracing и solver
func FromConfig(cfg *config.Config) Config {
	name := cfg.Tracing.ServiceName
	if name == "" {
		name = cfg.App.Name
	}
	return Config{
		Enabled:         cfg.Tracing.Enabled,
		Endpoint:        cfg.Tracing.Endpoint,
		ServiceName:     name,
		Version:         cfg.App.Version,
		Environment:     cfg.App.Environment,
		SampleRate:      cfg.Tracing.SampleRate,
		DefaultStrategy: cfg.Solver.DefaultStrategy,
		MaxVertices:     cfg.Solver.MaxVertices,
		MaxNodes:        cfg.Solver.MaxNodes,
	}
}

// resourceAttributes атрибуты сервиса; solver.* добавляются, когда задана стратегия по умолчанию
func resourceAttributes(cfg Config) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.Version),
		semconv.DeploymentEnvironment(cfg.Environment),
	}
	if cfg.DefaultStrategy != "" {
		attrs = append(attrs,
			attribute.String(AttrSolverDefaultStrategy, cfg.DefaultStrategy),
			attribute.Int(AttrSolverMaxVertices, cfg.MaxVertices),
			attribute.Int(AttrSolverMaxNodes, cfg.MaxNodes),
		)
	}
	return attrs
}

func newSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1.0:
		return sdktrace.AlwaysSample()
	case rate <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.TraceIDRatioBased(rate)
	}
}

func setPropagator() {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
}

// Init настраивает трассировку. Пропагатор ставится всегда:
// даже с выключенным экспортом gateway передаёт traceparent в solver-svc.
func Init(ctx context.Context, cfg Config) (*Provider, error) {
	setPropagator()

	if !cfg.Enabled {
		return &Provider{tracer: otel.Tracer(cfg.ServiceName)}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
		otlptracegrpc.WithInsecure(), // Для dev окружения
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, resourceAttributes(cfg)...),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SampleRate)),
	)
	otel.SetTracerProvider(tp)

	globalProvider = &Provider{
		tp:     tp,
		tracer: tp.Tracer(cfg.ServiceName),
	}
	return globalProvider, nil
}

// Shutdown сбрасывает накопленные span'ы
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp != nil {
		return p.tp.Shutdown(ctx)
	}
	return nil
}

// Get возвращает глобальный provider
func Get() *Provider {
	if globalProvider == nil {
		return &Provider{tracer: otel.Tracer("algolab")}
	}
	return globalProvider
}

// StartSpan начинает span вида "SolverService.Triangulate"
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return Get().tracer.Start(ctx, name, opts...)
}

// SetError помечает span как ошибочный и добавляет код ошибки (INPUT_TOO_LARGE и т.п.),
// по которому трассы удобно фильтровать
func SetError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetAttributes(attribute.String(AttrErrorCode, string(apperror.Code(err))))
	span.SetStatus(codes.Error, err.Error())
}

// SetAttributes устанавливает атрибуты текущего span
func SetAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}
