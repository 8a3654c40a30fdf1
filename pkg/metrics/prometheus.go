package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics глобальный контейнер метрик
type Metrics struct {
	// gRPC метрики
	GRPCRequestsTotal    *prometheus.CounterVec
	GRPCRequestDuration  *prometheus.HistogramVec
	GRPCRequestsInFlight *prometheus.GaugeVec

	// Бизнес-метрики
	SolveOperationsTotal *prometheus.CounterVec
	SolveDuration        *prometheus.HistogramVec
	InputSize            *prometheus.HistogramVec
	Augmentations        *prometheus.HistogramVec
	DPCells              prometheus.Histogram
	LastMaxFlow          *prometheus.GaugeVec
	VerificationFailures *prometheus.CounterVec
	SolvesInFlight       *prometheus.GaugeVec

	// Кэш
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec

	// Rate limiting
	RateLimitRejections *prometheus.CounterVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics инициализирует метрики
func InitMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		// gRPC метрики
		GRPCRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_requests_total",
				Help:      "Total number of gRPC requests",
			},
			[]string{"method", "problem", "status"},
		),

		GRPCRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_request_duration_seconds",
				Help:      "Duration of gRPC requests",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "problem"},
		),

		GRPCRequestsInFlight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "grpc_requests_in_flight",
				Help:      "Current number of gRPC requests being processed, by problem",
			},
			[]string{"problem"},
		),

		// Бизнес-метрики
		SolveOperationsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_operations_total",
				Help:      "Total number of solve operations",
			},
			[]string{"problem", "strategy", "status"},
		),

		SolveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Duration of solve operations",
				Buckets:   []float64{.0001, .001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
			[]string{"problem", "strategy"},
		),

		InputSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "input_size",
				Help:      "Polygon vertices or network nodes per request",
				Buckets:   []float64{3, 10, 25, 50, 100, 250, 500, 1000, 2000, 5000},
			},
			[]string{"problem"},
		),

		Augmentations: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "augmentations",
				Help:      "Augmenting paths applied per max-flow solve",
				Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 10000},
			},
			[]string{"strategy"},
		),

		DPCells: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "triangulation_dp_cells",
				Help:      "Split candidates evaluated per triangulation",
				Buckets:   prometheus.ExponentialBuckets(1, 10, 10),
			},
		),

		LastMaxFlow: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "max_flow_value",
				Help:      "Last calculated max flow value",
			},
			[]string{"strategy"},
		),

		VerificationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "verification_failures_total",
				Help:      "Results rejected by post-solve verification",
			},
			[]string{"problem"},
		),

		SolvesInFlight: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solves_in_flight",
				Help:      "Engine runs currently in progress",
			},
			[]string{"problem", "strategy"},
		),

		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_hits_total",
				Help:      "Result cache hits",
			},
			[]string{"problem"},
		),

		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_misses_total",
				Help:      "Result cache misses",
			},
			[]string{"problem"},
		),

		RateLimitRejections: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "rate_limit_rejections_total",
				Help:      "Requests rejected by the rate limiter",
			},
			[]string{"method"},
		),

		ServiceInfo: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("algolab", "")
	}
	return defaultMetrics
}

// RecordGRPCRequest записывает метрики gRPC запроса.
// problem пустой для служебных методов (health, reflection, GetAlgorithms).
func (m *Metrics) RecordGRPCRequest(method, problem, status string, duration time.Duration) {
	m.GRPCRequestsTotal.WithLabelValues(method, problem, status).Inc()
	m.GRPCRequestDuration.WithLabelValues(method, problem).Observe(duration.Seconds())
}

// RecordSolveOperation записывает метрики операции решения.
// Для триангуляции strategy = "interval-dp".
func (m *Metrics) RecordSolveOperation(problem, strategy string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}

	m.SolveOperationsTotal.WithLabelValues(problem, strategy, status).Inc()
	m.SolveDuration.WithLabelValues(problem, strategy).Observe(duration.Seconds())
}

// RecordInputSize записывает размер входа
func (m *Metrics) RecordInputSize(problem string, size int) {
	m.InputSize.WithLabelValues(problem).Observe(float64(size))
}

// RecordMaxFlow записывает число аугментаций и значение потока
func (m *Metrics) RecordMaxFlow(strategy string, augmentations int, maxFlow int64) {
	m.Augmentations.WithLabelValues(strategy).Observe(float64(augmentations))
	m.LastMaxFlow.WithLabelValues(strategy).Set(float64(maxFlow))
}

// RecordDPCells записывает объём работы DP
func (m *Metrics) RecordDPCells(cells int) {
	m.DPCells.Observe(float64(cells))
}

// RecordVerificationFailure считает отклонённые проверкой результаты
func (m *Metrics) RecordVerificationFailure(problem string) {
	m.VerificationFailures.WithLabelValues(problem).Inc()
}

// RecordCacheHit / RecordCacheMiss
func (m *Metrics) RecordCacheHit(problem string) {
	m.CacheHits.WithLabelValues(problem).Inc()
}

func (m *Metrics) RecordCacheMiss(problem string) {
	m.CacheMisses.WithLabelValues(problem).Inc()
}

// RecordRateLimitRejection считает отказы rate limiter
func (m *Metrics) RecordRateLimitRejection(method string) {
	m.RateLimitRejections.WithLabelValues(method).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// NewMetricsServer собирает HTTP сервер для /metrics и /health
func NewMetricsServer(port int, path string) *http.Server {
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		// Игнорируем ошибку записи - response уже отправлен
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint, ошибка записи не критична
	})

	return &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// StartMetricsServer запускает HTTP сервер для метрик
func StartMetricsServer(port int) error {
	return NewMetricsServer(port, "/metrics").ListenAndServe()
}
