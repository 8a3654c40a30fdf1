package algorithms

import (
	"context"
	"fmt"
	"math"

	"algolab/pkg/apperror"
)

// =============================================================================
// Minimum-Cost Polygon Triangulation
// =============================================================================
//
// The vertices are treated as a chain 0..n-1. dp[i][j] is the cheapest way to
// triangulate the sub-polygon i..j, where a triangle (i, k, j) costs the sum of
// the squares of its three side lengths:
//
//	dp[i][i+1] = 0
//	dp[i][j]   = min over i<k<j of dp[i][k] + dp[k][j] + cost(i, k, j)
//
// Ties keep the lowest k. The geometry is never checked: the recurrence works
// on indices only, so any ordered point list with n >= 3 is accepted.
//
// Time Complexity: O(n³)
// Space Complexity: O(n²)
// =============================================================================

// MinVertices is the smallest polygon that can be triangulated.
const MinVertices = 3

// Point is a polygon vertex.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// DistanceSquared returns the squared Euclidean distance between p and q.
//
// The distance is rounded first and then squared. This differs from
// dx*dx+dy*dy in the last bits, and near-tied splits depend on those bits,
// so the triangle lists stay identical to the established text output.
func (p Point) DistanceSquared(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	// conversions keep every product rounded on its own (no FMA)
	d := math.Sqrt(float64(dx*dx) + float64(dy*dy))
	return float64(d * d)
}

// Triangle is one triangle of a triangulation: the range endpoints I and J
// and the apex K chosen to split the range, with I < K < J.
type Triangle struct {
	I int `json:"i"`
	K int `json:"k"`
	J int `json:"j"`
}

// String formats the triangle as "i k j".
func (t Triangle) String() string {
	return fmt.Sprintf("%d %d %d", t.I, t.K, t.J)
}

// TriangulationResult contains the result of the triangulation DP.
type TriangulationResult struct {
	// MinCost is dp[0][n-1] rounded half away from zero.
	MinCost int64

	// RawCost is the unrounded dp[0][n-1].
	RawCost float64

	// Triangles in reconstruction order.
	Triangles []Triangle

	// Cells is the number of (i, k, j) candidates evaluated.
	Cells int
}

// TriangleCost returns the cost of triangle (i, k, j): the sum of its squared side lengths.
func TriangleCost(points []Point, i, k, j int) float64 {
	a, b, c := points[i], points[k], points[j]
	return a.DistanceSquared(b) + b.DistanceSquared(c) + c.DistanceSquared(a)
}

// Triangulate computes the minimum-cost triangulation of the polygon.
func Triangulate(points []Point) (*TriangulationResult, error) {
	return TriangulateContext(context.Background(), points)
}

// TriangulateContext is Triangulate with cancellation checked between span widths.
func TriangulateContext(ctx context.Context, points []Point) (*TriangulationResult, error) {
	if err := ValidatePolygon(points); err != nil {
		return nil, err
	}

	tables, err := fillTables(ctx, points)
	if err != nil {
		return nil, err
	}

	n := len(points)
	raw := tables.cost[0][n-1]

	r := &reconstruction{
		split: tables.split,
		used:  make([]bool, n),
		out:   make([]Triangle, 0, n-2),
	}
	r.walk(0, n-1)

	return &TriangulationResult{
		MinCost:   int64(math.Round(raw)),
		RawCost:   raw,
		Triangles: r.out,
		Cells:     tables.cells,
	}, nil
}

// maxCostBound caps the a priori cost bound checked by ValidatePolygon.
// It stays well below 2^63 so the rounded cost always fits in int64.
const maxCostBound = float64(1 << 62)

// ValidatePolygon rejects vertex lists the DP cannot work with.
//
// Every side of every triangle fits in the bounding box, so the total cost is
// at most 3(n-2)(w²+h²). Polygons whose bound reaches maxCostBound are
// rejected before the DP runs, even when the real optimum would be smaller.
func ValidatePolygon(points []Point) error {
	if len(points) < MinVertices {
		return apperror.Newf(apperror.CodeTooFewVertices,
			"at least %d vertices are required for triangulation, got %d", MinVertices, len(points)).
			WithField("points")
	}

	for i, p := range points {
		if !isFinite(p.X) || !isFinite(p.Y) {
			return apperror.Newf(apperror.CodeNonFiniteCoordinate,
				"vertex %d: coordinates must be finite numbers", i+1).
				WithField(fmt.Sprintf("points[%d]", i))
		}
	}

	if bound := costBound(points); !(bound < maxCostBound) {
		return apperror.Newf(apperror.CodeInputTooLarge,
			"coordinate span too large: triangulation cost bound %g exceeds %g", bound, maxCostBound).
			WithField("points")
	}
	return nil
}

func costBound(points []Point) float64 {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	w, h := maxX-minX, maxY-minY
	return 3 * float64(len(points)-2) * (w*w + h*h)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// dpTables holds the cost and split tables of one run.
// Only cells with i < j are meaningful.
type dpTables struct {
	cost  [][]float64
	split [][]int
	cells int
}

func fillTables(ctx context.Context, points []Point) (*dpTables, error) {
	n := len(points)
	t := &dpTables{
		cost:  make([][]float64, n),
		split: make([][]int, n),
	}
	for i := range t.cost {
		t.cost[i] = make([]float64, n)
		t.split[i] = make([]int, n)
	}

	// dp[i][i+1] = 0 comes from the zero value.
	for width := 2; width < n; width++ {
		if err := ctx.Err(); err != nil {
			return nil, apperror.FromContext(err)
		}

		for i := 0; i+width < n; i++ {
			j := i + width
			best := math.Inf(1)
			bestK := i + 1

			for k := i + 1; k < j; k++ {
				c := t.cost[i][k] + t.cost[k][j] + TriangleCost(points, i, k, j)
				if c < best {
					best = c
					bestK = k
				}
				t.cells++
			}

			t.cost[i][j] = best
			t.split[i][j] = bestK
		}
	}

	return t, nil
}

// reconstruction walks the split table depth first. An apex is reported at
// most once per walk; used is scoped to a single Triangulate call.
type reconstruction struct {
	split [][]int
	used  []bool
	out   []Triangle
}

func (r *reconstruction) walk(i, j int) {
	if j-i < 2 {
		return
	}

	k := r.split[i][j]
	if !r.used[k] {
		r.out = append(r.out, Triangle{I: i, K: k, J: j})
		r.used[k] = true
	}

	r.walk(i, k)
	r.walk(k, j)
}
