// Package converter переводит сообщения solverv1 в типы движков и обратно.
package converter

import (
	solverv1 "algolab/api/solver/v1"
	"algolab/services/solver-svc/internal/algorithms"
)

// ToPoints конвертирует вершины многоугольника
func ToPoints(points []solverv1.Point) []algorithms.Point {
	out := make([]algorithms.Point, len(points))
	for i, p := range points {
		out[i] = algorithms.Point{X: p.X, Y: p.Y}
	}
	return out
}

// FromTriangulation конвертирует результат DP в ответ
func FromTriangulation(res *algorithms.TriangulationResult) *solverv1.TriangulateResponse {
	triangles := make([]solverv1.Triangle, len(res.Triangles))
	for i, t := range res.Triangles {
		triangles[i] = solverv1.Triangle{I: t.I, K: t.K, J: t.J}
	}

	return &solverv1.TriangulateResponse{
		MinCost:   res.MinCost,
		RawCost:   res.RawCost,
		Triangles: triangles,
	}
}

// FromMaxFlow конвертирует результат max-flow в ответ.
// Пустые списки остаются пустыми, а не nil, чтобы JSON был [] а не null.
func FromMaxFlow(res *algorithms.MaxFlowResult) *solverv1.MaxFlowResponse {
	resp := &solverv1.MaxFlowResponse{
		MaxFlow:    res.MaxFlow,
		FlowEdges:  make([]solverv1.FlowEdge, len(res.FlowEdges)),
		SourceSide: append(make([]int, 0, len(res.SourceSide)), res.SourceSide...),
		CutEdges:   make([]solverv1.CutEdge, len(res.CutEdges)),
	}

	for i, e := range res.FlowEdges {
		resp.FlowEdges[i] = solverv1.FlowEdge{From: e.From, To: e.To, Flow: e.Flow}
	}
	for i, e := range res.CutEdges {
		resp.CutEdges[i] = solverv1.CutEdge{From: e.From, To: e.To, Capacity: e.Capacity}
	}

	if len(res.Paths) > 0 {
		resp.Paths = make([]solverv1.Path, len(res.Paths))
		for i, p := range res.Paths {
			resp.Paths[i] = solverv1.Path{
				Nodes: append([]int(nil), p.Nodes...),
				Flow:  p.Flow,
			}
		}
	}

	return resp
}

// FromCatalog конвертирует каталог алгоритмов
func FromCatalog(catalog []algorithms.AlgorithmInfo) []solverv1.AlgorithmInfo {
	out := make([]solverv1.AlgorithmInfo, len(catalog))
	for i, a := range catalog {
		out[i] = solverv1.AlgorithmInfo{
			Name:            a.Name,
			Problem:         a.Problem,
			Description:     a.Description,
			TimeComplexity:  a.TimeComplexity,
			SpaceComplexity: a.SpaceComplexity,
			Default:         a.Default,
		}
	}
	return out
}
