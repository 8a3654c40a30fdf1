package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"algolab/services/gateway-svc/internal/clients"
	gwmetrics "algolab/services/gateway-svc/internal/metrics"
)

// HealthHandler отдаёт /health и /ready для k8s probes
type HealthHandler struct {
	clients   *clients.Manager
	version   string
	startedAt time.Time
}

// NewHealthHandler создаёт handler
func NewHealthHandler(clients *clients.Manager, version string) *HealthHandler {
	return &HealthHandler{
		clients:   clients,
		version:   version,
		startedAt: time.Now(),
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

type readyResponse struct {
	Ready    bool                              `json:"ready"`
	Services map[string]*clients.ServiceHealth `json:"services"`
}

// Health процесс жив
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}

// Ready solver-svc отвечает SERVING
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	health := h.clients.CheckHealth(r.Context())

	m := gwmetrics.Get()
	for name, s := range health {
		m.RecordBackendHealth(name, s.Status == clients.StatusHealthy)
	}

	resp := readyResponse{
		Ready:    clients.AllHealthy(health),
		Services: health,
	}

	status := http.StatusOK
	if !resp.Ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// ответ уже начат, ошибку записи логировать некуда
	_ = json.NewEncoder(w).Encode(v)
}
