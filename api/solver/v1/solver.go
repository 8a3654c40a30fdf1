// Package solverv1 defines the messages and service contract of
// algolab.solver.v1.SolverService.
//
// Сообщения передаются в JSON (см. pkg/codec) и по gRPC, и через Connect.
// Все индексы вершин многоугольника 0-based, все узлы сети 1-based.
package solverv1

// Point is a polygon vertex.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Triangle is one triangle (i, k, j) of a triangulation, i < k < j.
type Triangle struct {
	I int `json:"i"`
	K int `json:"k"`
	J int `json:"j"`
}

// TriangulateRequest asks for the minimum-cost triangulation of Points.
type TriangulateRequest struct {
	Points []Point `json:"points"`
	// Verify re-checks the result before it is returned.
	Verify bool `json:"verify,omitempty"`
	// SkipCache bypasses the result cache.
	SkipCache bool `json:"skip_cache,omitempty"`
}

// TriangulationStats describes how a triangulation was computed.
type TriangulationStats struct {
	Vertices          int     `json:"vertices"`
	DPCells           int     `json:"dp_cells"`
	ComputationTimeMs float64 `json:"computation_time_ms"`
	CacheHit          bool    `json:"cache_hit"`
}

// TriangulateResponse carries the rounded minimum cost and the triangles in
// reconstruction order.
type TriangulateResponse struct {
	MinCost   int64               `json:"min_cost"`
	RawCost   float64             `json:"raw_cost"`
	Triangles []Triangle          `json:"triangles"`
	Stats     *TriangulationStats `json:"stats,omitempty"`
}

// MaxFlowRequest asks for the maximum flow from node 1 to node NodeCount.
//
// Adjacency[i] lists the outgoing edges of node i+1 as flat
// (destination, capacity) pairs. Either NodeCount or NodeCount-1 lists may
// be given; a missing sink list means the sink has no outgoing edges.
type MaxFlowRequest struct {
	NodeCount   int       `json:"node_count"`
	Adjacency   [][]int64 `json:"adjacency"`
	Strategy    string    `json:"strategy,omitempty"`
	ReturnPaths bool      `json:"return_paths,omitempty"`
	Verify      bool      `json:"verify,omitempty"`
	SkipCache   bool      `json:"skip_cache,omitempty"`
}

// FlowEdge is an edge with positive flow.
type FlowEdge struct {
	From int   `json:"from"`
	To   int   `json:"to"`
	Flow int64 `json:"flow"`
}

// CutEdge is an edge crossing the minimum cut.
type CutEdge struct {
	From     int   `json:"from"`
	To       int   `json:"to"`
	Capacity int64 `json:"capacity"`
}

// Path is one augmenting path, returned when ReturnPaths is set.
type Path struct {
	Nodes []int `json:"nodes"`
	Flow  int64 `json:"flow"`
}

// MaxFlowStats describes how a max flow was computed.
type MaxFlowStats struct {
	Nodes             int     `json:"nodes"`
	Edges             int     `json:"edges"`
	Augmentations     int     `json:"augmentations"`
	Strategy          string  `json:"strategy"`
	ComputationTimeMs float64 `json:"computation_time_ms"`
	CacheHit          bool    `json:"cache_hit"`
}

// MaxFlowResponse carries the flow value, the per-edge flow and the source
// side of a minimum cut.
type MaxFlowResponse struct {
	MaxFlow    int64         `json:"max_flow"`
	FlowEdges  []FlowEdge    `json:"flow_edges"`
	SourceSide []int         `json:"source_side"`
	CutEdges   []CutEdge     `json:"cut_edges"`
	Paths      []Path        `json:"paths,omitempty"`
	Stats      *MaxFlowStats `json:"stats,omitempty"`
}

// GetAlgorithmsRequest is empty.
type GetAlgorithmsRequest struct{}

// AlgorithmInfo describes one engine.
type AlgorithmInfo struct {
	Name            string `json:"name"`
	Problem         string `json:"problem"`
	Description     string `json:"description"`
	TimeComplexity  string `json:"time_complexity"`
	SpaceComplexity string `json:"space_complexity"`
	Default         bool   `json:"default"`
}

// Limits are the server-side input limits.
type Limits struct {
	MaxVertices int   `json:"max_vertices"`
	MaxNodes    int   `json:"max_nodes"`
	TimeoutMs   int64 `json:"timeout_ms"`
}

// GetAlgorithmsResponse lists the engines and the limits they run under.
type GetAlgorithmsResponse struct {
	Algorithms []AlgorithmInfo `json:"algorithms"`
	Limits     *Limits         `json:"limits,omitempty"`
	Version    string          `json:"version"`
}
