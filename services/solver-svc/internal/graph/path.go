package graph

import "math"

// ReconstructPath восстанавливает путь source→sink по слайсу parent.
// Возвращает nil, если sink не связан с source.
func ReconstructPath(parent []int, source, sink int) []int {
	if sink < 0 || sink >= len(parent) || source < 0 || source >= len(parent) {
		return nil
	}

	path := []int{sink}
	for v := sink; v != source; {
		u := parent[v]
		if u == NoNode || len(path) > len(parent) {
			return nil
		}
		path = append(path, u)
		v = u
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Bottleneck находит минимальную остаточную пропускную способность на пути
func Bottleneck(residual *Matrix, path []int) int64 {
	if len(path) < 2 {
		return 0
	}

	minCap := int64(math.MaxInt64)
	for i := 0; i < len(path)-1; i++ {
		if c := residual.Get(path[i], path[i+1]); c < minCap {
			minCap = c
		}
	}
	return minCap
}

// Augment pushes amount along path.
//
// The residual matrix gets the usual forward decrement and reverse increment.
// The flow matrix keeps net forward flow: flow already sent the opposite way
// along an edge is cancelled before any new forward flow is recorded, so
// 0 ≤ flow[u][v] ≤ capacity[u][v] holds after every call.
func Augment(residual, flow *Matrix, path []int, amount int64) {
	for i := 0; i < len(path)-1; i++ {
		u, v := path[i], path[i+1]

		residual.Add(u, v, -amount)
		residual.Add(v, u, amount)

		cancel := min(flow.Get(v, u), amount)
		if cancel > 0 {
			flow.Add(v, u, -cancel)
		}
		if rest := amount - cancel; rest > 0 {
			flow.Add(u, v, rest)
		}
	}
}
