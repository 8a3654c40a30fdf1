package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "algolab"
	subsystem = "gateway"
)

var (
	once     sync.Once
	instance *GatewayMetrics
)

// GatewayMetrics метрики gateway
type GatewayMetrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveRequests  prometheus.Gauge

	// Вызовы solver-svc
	BackendRequests *prometheus.CounterVec
	BackendDuration *prometheus.HistogramVec
	BackendHealth   *prometheus.GaugeVec

	// Ошибки по прикладным кодам (ODD_EDGE_LIST, TIMEOUT, ...)
	ErrorsByCode *prometheus.CounterVec

	// Экспорт отчётов
	ExportsTotal *prometheus.CounterVec
	ExportSize   *prometheus.HistogramVec

	ResponseSize *prometheus.HistogramVec

	// Rate limiting
	RateLimitHits   prometheus.Counter
	RateLimitPassed prometheus.Counter
}

// Init инициализирует метрики
func Init() *GatewayMetrics {
	once.Do(func() {
		instance = &GatewayMetrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "requests_total",
					Help:      "Total gateway requests",
				},
				[]string{"route", "status"},
			),

			RequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "request_duration_seconds",
					Help:      "Gateway request duration",
					Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
				},
				[]string{"route"},
			),

			ActiveRequests: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "active_requests",
					Help:      "Currently active requests",
				},
			),

			BackendRequests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "backend_requests_total",
					Help:      "Total solver-svc requests",
				},
				[]string{"method", "status"},
			),

			BackendDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "backend_duration_seconds",
					Help:      "solver-svc request duration",
					Buckets:   prometheus.DefBuckets,
				},
				[]string{"method"},
			),

			BackendHealth: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "backend_health",
					Help:      "Backend service health (1=healthy, 0=unhealthy)",
				},
				[]string{"service"},
			),

			ErrorsByCode: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "errors_total",
					Help:      "Total errors by application code",
				},
				[]string{"code"},
			),

			ExportsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "exports_total",
					Help:      "Total rendered reports",
				},
				[]string{"problem", "format"},
			),

			ExportSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "export_size_bytes",
					Help:      "Rendered report size in bytes",
					Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
				},
				[]string{"format"},
			),

			ResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "response_size_bytes",
					Help:      "Response size in bytes",
					Buckets:   prometheus.ExponentialBuckets(100, 10, 8),
				},
				[]string{"route"},
			),

			RateLimitHits: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "rate_limit_hits_total",
					Help:      "Total rate limit hits",
				},
			),

			RateLimitPassed: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: namespace,
					Subsystem: subsystem,
					Name:      "rate_limit_passed_total",
					Help:      "Total requests passed rate limit",
				},
			),
		}
	})
	return instance
}

// Get возвращает инстанс метрик
func Get() *GatewayMetrics {
	if instance == nil {
		return Init()
	}
	return instance
}

// RecordRequest записывает метрики входящего запроса
func (m *GatewayMetrics) RecordRequest(route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordResponseSize записывает размер ответа
func (m *GatewayMetrics) RecordResponseSize(route string, size int) {
	m.ResponseSize.WithLabelValues(route).Observe(float64(size))
}

// RecordBackendRequest записывает метрику вызова solver-svc
func (m *GatewayMetrics) RecordBackendRequest(method, status string, duration time.Duration) {
	m.BackendRequests.WithLabelValues(method, status).Inc()
	m.BackendDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// IncActiveRequests увеличивает счётчик активных запросов
func (m *GatewayMetrics) IncActiveRequests() {
	m.ActiveRequests.Inc()
}

// DecActiveRequests уменьшает счётчик активных запросов
func (m *GatewayMetrics) DecActiveRequests() {
	m.ActiveRequests.Dec()
}

// RecordBackendHealth записывает здоровье backend
func (m *GatewayMetrics) RecordBackendHealth(service string, healthy bool) {
	val := 0.0
	if healthy {
		val = 1.0
	}
	m.BackendHealth.WithLabelValues(service).Set(val)
}

// RecordError записывает ошибку по прикладному коду
func (m *GatewayMetrics) RecordError(code string) {
	m.ErrorsByCode.WithLabelValues(code).Inc()
}

// RecordExport записывает отрендеренный отчёт
func (m *GatewayMetrics) RecordExport(problem, format string, size int) {
	m.ExportsTotal.WithLabelValues(problem, format).Inc()
	m.ExportSize.WithLabelValues(format).Observe(float64(size))
}
