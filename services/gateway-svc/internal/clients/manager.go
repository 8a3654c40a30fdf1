package clients

import (
	"context"
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health/grpc_health_v1"

	"algolab/pkg/client"
	"algolab/pkg/config"
	"algolab/pkg/logger"
)

const (
	StatusHealthy   = "HEALTHY"
	StatusUnhealthy = "UNHEALTHY"

	healthCheckTimeout = 5 * time.Second
)

// Manager держит соединение gateway с solver-svc
type Manager struct {
	mu sync.RWMutex

	solver  *client.SolverClient
	address string
	closed  bool

	// stop гасит встроенный сервер в режиме inprocess
	stop func()
}

// Config конфигурация менеджера клиентов
type Config struct {
	Solver config.ServiceEndpoint
}

// NewManager создаёт менеджер клиентов
func NewManager(ctx context.Context, cfg *Config) (*Manager, error) {
	solver, err := client.NewSolverClient(ctx, client.FromEndpoint(cfg.Solver))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to solver-svc: %w", err)
	}
	logger.Log.Info("Connected to solver-svc", "address", cfg.Solver.Address())

	return &Manager{solver: solver, address: cfg.Solver.Address()}, nil
}

// NewManagerWithClient оборачивает готовый клиент (тесты, встроенный режим)
func NewManagerWithClient(solver *client.SolverClient, address string) *Manager {
	return &Manager{solver: solver, address: address}
}

// Solver возвращает клиент solver-svc
func (m *Manager) Solver() *client.SolverClient { return m.solver }

// ServiceHealth информация о здоровье сервиса
type ServiceHealth struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Status    string `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

// CheckHealth опрашивает grpc.health.v1 у всех backend сервисов
func (m *Manager) CheckHealth(ctx context.Context) map[string]*ServiceHealth {
	results := make(map[string]*ServiceHealth)

	services := []struct {
		name    string
		conn    *grpc.ClientConn
		address string
	}{
		{"solver", m.solver.Conn(), m.address},
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, svc := range services {
		wg.Add(1)
		go func(name string, conn *grpc.ClientConn, address string) {
			defer wg.Done()

			h := &ServiceHealth{
				Name:    name,
				Address: address,
			}

			start := time.Now()
			healthCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
			defer cancel()

			resp, err := grpc_health_v1.NewHealthClient(conn).Check(healthCtx, &grpc_health_v1.HealthCheckRequest{})
			h.LatencyMs = time.Since(start).Milliseconds()

			switch {
			case err != nil:
				h.Status = StatusUnhealthy
				h.Error = err.Error()
			case resp.Status == grpc_health_v1.HealthCheckResponse_SERVING:
				h.Status = StatusHealthy
			default:
				h.Status = resp.Status.String()
			}

			mu.Lock()
			results[name] = h
			mu.Unlock()
		}(svc.name, svc.conn, svc.address)
	}

	wg.Wait()
	return results
}

// AllHealthy true, если все сервисы отвечают SERVING
func AllHealthy(health map[string]*ServiceHealth) bool {
	for _, h := range health {
		if h.Status != StatusHealthy {
			return false
		}
	}
	return true
}

// Close закрывает соединения; повторный вызов безопасен
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed || m.solver == nil {
		return nil
	}
	m.closed = true

	err := m.solver.Close()
	if m.stop != nil {
		m.stop()
	}
	if err != nil {
		return fmt.Errorf("errors closing connections: %w", err)
	}
	return nil
}
