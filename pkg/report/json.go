package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	solverv1 "algolab/api/solver/v1"
)

// JSONRenderer генератор JSON отчётов
type JSONRenderer struct {
	BaseRenderer
}

// NewJSONRenderer создаёт новый рендерер
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

func (r *JSONRenderer) Format() Format      { return FormatJSON }
func (r *JSONRenderer) ContentType() string { return "application/json" }
func (r *JSONRenderer) Extension() string   { return ".json" }

type jsonReport struct {
	Title         string                        `json:"title"`
	Author        string                        `json:"author"`
	Problem       Problem                       `json:"problem"`
	GeneratedAt   time.Time                     `json:"generated_at"`
	Points        []solverv1.Point              `json:"points,omitempty"`
	NodeCount     int                           `json:"node_count,omitempty"`
	Triangulation *solverv1.TriangulateResponse `json:"triangulation,omitempty"`
	MaxFlow       *solverv1.MaxFlowResponse     `json:"max_flow,omitempty"`
}

// Render рендерит JSON отчёт; таблицы не обрезаются
func (r *JSONRenderer) Render(ctx context.Context, data *Data) ([]byte, error) {
	out := jsonReport{
		Title:         r.GetTitle(data),
		Author:        r.GetAuthor(data),
		Problem:       data.Problem,
		GeneratedAt:   data.GeneratedAt.UTC(),
		Points:        data.Points,
		NodeCount:     data.NodeCount,
		Triangulation: data.Triangulation,
		MaxFlow:       data.MaxFlow,
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}
	return append(b, '\n'), nil
}
