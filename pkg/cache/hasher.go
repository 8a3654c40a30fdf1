package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	solverv1 "algolab/api/solver/v1"
)

// Префиксы ключей
const (
	PrefixTriangulation = "tri"
	PrefixMaxFlow       = "flow"
)

// PointsHash хеш многоугольника. Порядок вершин значим,
// -0 и +0 считаются одной координатой.
func PointsHash(points []solverv1.Point) string {
	h := sha256.New()

	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(points)))
	h.Write(buf[:])

	for _, p := range points {
		for _, v := range [2]float64{p.X, p.Y} {
			if v == 0 {
				v = 0
			}
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
			h.Write(buf[:])
		}
	}

	return hex.EncodeToString(h.Sum(nil)[:16])
}

type canonicalEdge struct {
	from, to int64
	capacity int64
}

// NetworkHash хеш сети после тех же нормализаций, что делает решатель:
// повторное ребро берёт последнюю ёмкость, петли и нулевые ёмкости
// не влияют на ответ. Поэтому запросы, описывающие одну и ту же сеть
// разными списками, получают один ключ.
func NetworkHash(nodeCount int, adjacency [][]int64) string {
	type pair struct{ from, to int64 }
	last := make(map[pair]int64)

	for i, list := range adjacency {
		from := int64(i + 1)
		for p := 0; p+1 < len(list); p += 2 {
			to := list[p]
			if to == from {
				continue
			}
			last[pair{from, to}] = list[p+1]
		}
	}

	edges := make([]canonicalEdge, 0, len(last))
	for k, c := range last {
		if c > 0 {
			edges = append(edges, canonicalEdge{k.from, k.to, c})
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].from != edges[j].from {
			return edges[i].from < edges[j].from
		}
		return edges[i].to < edges[j].to
	})

	h := sha256.New()
	fmt.Fprintf(h, "n:%d;", nodeCount)
	for _, e := range edges {
		fmt.Fprintf(h, "e:%d:%d:%d;", e.from, e.to, e.capacity)
	}

	return hex.EncodeToString(h.Sum(nil)[:16])
}

// BuildSolveKey строит ключ кэша: <problem>:<variant>:<hash>
func BuildSolveKey(problem, variant, hash string) string {
	return fmt.Sprintf("%s:%s:%s", problem, variant, hash)
}
