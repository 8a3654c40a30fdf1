package interceptors

import (
	solverv1 "algolab/api/solver/v1"
)

// Метки задач совпадают с теми, что сервис пишет в solve метрики
const (
	problemTriangulation = "triangulation"
	problemMaxFlow       = "maxflow"
)

// requestFacts описывает запрос решателя для метрик и логов
type requestFacts struct {
	problem  string
	strategy string
	size     int
}

// describeRequest определяет задачу по типу запроса.
// Для служебных методов (health, GetAlgorithms) problem пустой.
func describeRequest(req any) requestFacts {
	switch r := req.(type) {
	case *solverv1.TriangulateRequest:
		return requestFacts{problem: problemTriangulation, size: len(r.Points)}
	case *solverv1.MaxFlowRequest:
		return requestFacts{problem: problemMaxFlow, strategy: r.Strategy, size: r.NodeCount}
	default:
		return requestFacts{}
	}
}

// fields превращает описание в пары ключ-значение для slog
func (f requestFacts) fields() []any {
	if f.problem == "" {
		return nil
	}
	out := []any{"problem", f.problem, "input_size", f.size}
	if f.strategy != "" {
		out = append(out, "strategy", f.strategy)
	}
	return out
}
