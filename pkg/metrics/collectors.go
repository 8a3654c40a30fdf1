package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SolverLimits лимиты решателя, которые видит клиент в GetAlgorithms
type SolverLimits struct {
	MaxVertices int
	MaxNodes    int
	Timeout     time.Duration
}

// LimitsCollector отдаёт лимиты решателя как gauge solver_limit{kind}.
// 0 означает "без ограничения".
type LimitsCollector struct {
	limit  *prometheus.Desc
	limits SolverLimits
}

// NewLimitsCollector создаёт коллектор для фиксированных лимитов
func NewLimitsCollector(namespace, subsystem string, limits SolverLimits) *LimitsCollector {
	return &LimitsCollector{
		limit: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "solver_limit"),
			"Configured solver limit (0 = unlimited)",
			[]string{"kind"}, nil,
		),
		limits: limits,
	}
}

// Describe implements prometheus.Collector
func (c *LimitsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.limit
}

// Collect implements prometheus.Collector
func (c *LimitsCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.limit, prometheus.GaugeValue, float64(c.limits.MaxVertices), "max_vertices")
	ch <- prometheus.MustNewConstMetric(c.limit, prometheus.GaugeValue, float64(c.limits.MaxNodes), "max_nodes")
	ch <- prometheus.MustNewConstMetric(c.limit, prometheus.GaugeValue, c.limits.Timeout.Seconds(), "timeout_seconds")
}

// SolveTimer один прогон движка: держит solves_in_flight и по Finish
// пишет solve_operations_total и длительность.
type SolveTimer struct {
	m        *Metrics
	problem  string
	strategy string
	start    time.Time
	once     sync.Once
	elapsed  time.Duration
}

// StartSolve отмечает начало прогона. Для триангуляции strategy = "interval-dp".
func (m *Metrics) StartSolve(problem, strategy string) *SolveTimer {
	m.SolvesInFlight.WithLabelValues(problem, strategy).Inc()
	return &SolveTimer{
		m:        m,
		problem:  problem,
		strategy: strategy,
		start:    time.Now(),
	}
}

// Elapsed время с начала прогона (после Finish - зафиксированное)
func (t *SolveTimer) Elapsed() time.Duration {
	if t.elapsed > 0 {
		return t.elapsed
	}
	return time.Since(t.start)
}

// Finish записывает результат. Учитывается только первый вызов, поэтому
// defer t.Finish(false) закрывает все ветки с ошибкой.
func (t *SolveTimer) Finish(success bool) time.Duration {
	t.once.Do(func() {
		t.elapsed = time.Since(t.start)
		t.m.SolvesInFlight.WithLabelValues(t.problem, t.strategy).Dec()
		t.m.RecordSolveOperation(t.problem, t.strategy, success, t.elapsed)
	})
	return t.elapsed
}
