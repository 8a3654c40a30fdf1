package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	AttrProblem   = "solve.problem"
	AttrStrategy  = "solve.strategy"
	AttrCacheHit  = "solve.cache_hit"
	AttrVerified  = "solve.verified"
	AttrRequestID = "request.id"

	// Триангуляция
	AttrVertices = "triangulation.vertices"
	AttrMinCost  = "triangulation.min_cost"
	AttrDPCells  = "triangulation.dp_cells"

	// Сеть
	AttrNodes         = "network.nodes"
	AttrEdges         = "network.edges"
	AttrMaxFlow       = "maxflow.value"
	AttrAugmentations = "maxflow.augmentations"
	AttrCutEdges      = "maxflow.cut_edges"

	// Отчёты
	AttrReportFormat = "report.format"
	AttrReportBytes  = "report.bytes"
)

// TriangulationInputAttributes атрибуты входа триангуляции
func TriangulationInputAttributes(vertices int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrProblem, "triangulation"),
		attribute.Int(AttrVertices, vertices),
	}
}

// TriangulationResultAttributes атрибуты результата
func TriangulationResultAttributes(minCost int64, cells int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(AttrMinCost, minCost),
		attribute.Int(AttrDPCells, cells),
	}
}

// NetworkAttributes возвращает атрибуты сети
func NetworkAttributes(nodes, edges int, strategy string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrProblem, "maxflow"),
		attribute.Int(AttrNodes, nodes),
		attribute.Int(AttrEdges, edges),
		attribute.String(AttrStrategy, strategy),
	}
}

// MaxFlowAttributes возвращает атрибуты результата max-flow
func MaxFlowAttributes(maxFlow int64, augmentations, cutEdges int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int64(AttrMaxFlow, maxFlow),
		attribute.Int(AttrAugmentations, augmentations),
		attribute.Int(AttrCutEdges, cutEdges),
	}
}

// ReportAttributes атрибуты экспорта
func ReportAttributes(format string, size int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrReportFormat, format),
		attribute.Int(AttrReportBytes, size),
	}
}
