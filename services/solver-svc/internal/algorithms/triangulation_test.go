package algorithms

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"algolab/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pts(coords ...float64) []Point {
	out := make([]Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, Point{X: coords[i], Y: coords[i+1]})
	}
	return out
}

func TestTriangulate_Golden(t *testing.T) {
	tests := []struct {
		name      string
		points    []Point
		wantCost  int64
		triangles []Triangle
	}{
		{
			name:      "single triangle",
			points:    pts(0, 0, 1, 0, 0, 1),
			wantCost:  4,
			triangles: []Triangle{{0, 1, 2}},
		},
		{
			// Both diagonals cost 4 per triangle; the lower apex wins the tie.
			name:      "unit square",
			points:    pts(0, 0, 1, 0, 1, 1, 0, 1),
			wantCost:  8,
			triangles: []Triangle{{0, 1, 3}, {1, 2, 3}},
		},
		{
			name:      "pentagon",
			points:    pts(0, 0, 2, 0, 3, 2, 1, 3, -1, 2),
			wantCost:  64,
			triangles: []Triangle{{0, 3, 4}, {0, 1, 3}, {1, 2, 3}},
		},
		{
			name:      "hexagon",
			points:    pts(0, 0, 4, 0, 6, 3, 5, 6, 1, 7, -2, 4),
			wantCost:  366,
			triangles: []Triangle{{0, 4, 5}, {0, 2, 4}, {0, 1, 2}, {2, 3, 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Triangulate(tt.points)
			require.NoError(t, err)

			if res.MinCost != tt.wantCost {
				t.Errorf("MinCost = %d, want %d", res.MinCost, tt.wantCost)
			}
			assert.Equal(t, tt.triangles, res.Triangles)
			assert.NoError(t, VerifyTriangulation(len(tt.points), res))
		})
	}
}

func TestTriangulate_SingleTriangleCostMatchesFormula(t *testing.T) {
	p := pts(1.5, -2, 4, 7.25, -3, 0.5)

	res, err := Triangulate(p)
	require.NoError(t, err)

	want := TriangleCost(p, 0, 1, 2)
	assert.InDelta(t, want, res.RawCost, 1e-9)
	assert.Equal(t, int64(math.Round(want)), res.MinCost)
	assert.Equal(t, []Triangle{{0, 1, 2}}, res.Triangles)
}

func TestTriangulate_TooFewVertices(t *testing.T) {
	for _, p := range [][]Point{nil, {}, pts(0, 0), pts(0, 0, 1, 1)} {
		_, err := Triangulate(p)
		require.Error(t, err)
		assert.True(t, apperror.IsInvalidInput(err))
		assert.Equal(t, apperror.CodeTooFewVertices, apperror.Code(err))
	}
}

func TestTriangulate_NonFinite(t *testing.T) {
	_, err := Triangulate([]Point{{0, 0}, {math.NaN(), 1}, {2, 2}})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeNonFiniteCoordinate, apperror.Code(err))

	_, err = Triangulate([]Point{{0, 0}, {1, 1}, {math.Inf(1), 2}})
	assert.True(t, apperror.IsInvalidInput(err))
}

func TestTriangulate_CostOverflow(t *testing.T) {
	_, err := Triangulate(pts(0, 0, 1e200, 0, 0, 1e200))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInputTooLarge, apperror.Code(err))
	assert.True(t, apperror.IsInvalidInput(err))

	// Отклоняется до DP: отменённый контекст не успевает сработать.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = TriangulateContext(ctx, pts(-1e9, 0, 1e9, 0, 0, 1e9, 0, -1e9))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInputTooLarge, apperror.Code(err))

	// Граница с запасом: 3*(n-2)*(w²+h²) < 2^62 проходит.
	res, err := Triangulate(pts(0, 0, 8e8, 0, 0, 8e8))
	require.NoError(t, err)
	assert.InDelta(t, 2.56e18, float64(res.MinCost), 1e4)
}

func TestValidatePolygon_CostBound(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		ok     bool
	}{
		{"small", pts(0, 0, 1, 0, 0, 1), true},
		{"large but bounded", pts(0, 0, 8e8, 0, 0, 8e8), true},
		{"span overflows float", pts(-1e308, 0, 1e308, 0, 0, 1), false},
		{"bound over limit", pts(0, 0, 2e9, 0, 0, 2e9, -2e9, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePolygon(tt.points)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, apperror.CodeInputTooLarge, apperror.Code(err))
		})
	}
}

func TestTriangulate_RoundsHalfUp(t *testing.T) {
	// Squared sides 0.25 + 1.25 + 1 = 2.5.
	res, err := Triangulate(pts(0, 0, 0.5, 0, 0, 1))
	require.NoError(t, err)

	assert.InDelta(t, 2.5, res.RawCost, 1e-12)
	assert.Equal(t, int64(3), res.MinCost)
}

func TestTriangulate_Collinear(t *testing.T) {
	// No geometric validation: collinear points still triangulate.
	res, err := Triangulate(pts(0, 0, 1, 0, 2, 0, 3, 0))
	require.NoError(t, err)
	assert.Len(t, res.Triangles, 2)
}

func TestTriangulate_TriangleCountProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for n := 3; n <= 40; n++ {
		points := make([]Point, n)
		for i := range points {
			points[i] = Point{X: rng.Float64()*200 - 100, Y: rng.Float64()*200 - 100}
		}

		res, err := Triangulate(points)
		require.NoError(t, err)

		if len(res.Triangles) != n-2 {
			t.Errorf("n=%d: got %d triangles, want %d", n, len(res.Triangles), n-2)
		}
		assert.NoError(t, VerifyTriangulation(n, res))

		// Every reported triangle contributes its cost exactly once.
		var sum float64
		for _, tr := range res.Triangles {
			sum += TriangleCost(points, tr.I, tr.K, tr.J)
		}
		assert.InDelta(t, res.RawCost, sum, 1e-6*math.Max(1, sum))
	}
}

func TestTriangulate_DPTables(t *testing.T) {
	points := pts(0, 0, 2, 0, 3, 2, 1, 3, -1, 2)

	tables, err := fillTables(context.Background(), points)
	require.NoError(t, err)

	n := len(points)
	for i := 0; i+1 < n; i++ {
		assert.Zero(t, tables.cost[i][i+1], "dp[%d][%d]", i, i+1)
	}
	for i := 0; i+2 < n; i++ {
		assert.Equal(t, i+1, tables.split[i][i+2], "width-2 ranges have one apex")
		assert.InDelta(t, TriangleCost(points, i, i+1, i+2), tables.cost[i][i+2], 1e-12)
	}

	// n=5: widths 2,3,4 contribute 3*1 + 2*2 + 1*3 candidates.
	assert.Equal(t, 10, tables.cells)
}

func TestTriangulate_Deterministic(t *testing.T) {
	points := pts(0, 0, 4, 0, 6, 3, 5, 6, 1, 7, -2, 4)

	a, err := Triangulate(points)
	require.NoError(t, err)
	b, err := Triangulate(points)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestTriangulate_RegularPolygonTieBreak(t *testing.T) {
	// A regular hexagon has many equal-cost triangulations; the lowest apex
	// wins every tie, so the answer is stable across runs.
	points := make([]Point, 6)
	for i := range points {
		a := float64(i) * math.Pi / 3
		points[i] = Point{X: math.Cos(a), Y: math.Sin(a)}
	}

	first, err := Triangulate(points)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := Triangulate(points)
		require.NoError(t, err)
		assert.Equal(t, first.Triangles, again.Triangles)
	}
}

// Координаты правильного 9-угольника (r=1) записаны литералами, чтобы не
// зависеть от math.Cos/Sin платформы. Здесь почти равные разбиения, и
// список треугольников зависит от того, как считается квадрат стороны.
func TestTriangulate_RegularNonagonGolden(t *testing.T) {
	points := pts(
		1.0, 0.0,
		0.766044443118978, 0.6427876096865393,
		0.17364817766693041, 0.984807753012208,
		-0.4999999999999998, 0.8660254037844387,
		-0.9396926207859083, 0.3420201433256689,
		-0.9396926207859084, -0.34202014332566866,
		-0.5000000000000004, -0.8660254037844384,
		0.17364817766692997, -0.9848077530122081,
		0.7660444431189778, -0.6427876096865396,
	)

	res, err := Triangulate(points)
	require.NoError(t, err)

	assert.Equal(t, int64(31), res.MinCost)
	assert.Equal(t, []Triangle{
		{0, 1, 8}, {1, 3, 8}, {1, 2, 3}, {3, 5, 8}, {3, 4, 5}, {5, 7, 8}, {5, 6, 7},
	}, res.Triangles)
}

func TestPoint_DistanceSquared(t *testing.T) {
	a, b := Point{X: 0, Y: 0}, Point{X: 3, Y: 4}
	assert.Equal(t, 25.0, a.DistanceSquared(b))
	assert.Equal(t, a.DistanceSquared(b), b.DistanceSquared(a))

	// квадрат округлённого расстояния, а не dx²+dy²
	p, q := Point{X: 0, Y: 0}, Point{X: 1, Y: 1}
	d := math.Sqrt(2)
	assert.Equal(t, d*d, p.DistanceSquared(q))
}

// allTriangulations перебирает все триангуляции диапазона i..j без DP.
func allTriangulations(i, j int) [][]Triangle {
	if j-i < 2 {
		return [][]Triangle{{}}
	}

	var out [][]Triangle
	for k := i + 1; k < j; k++ {
		for _, left := range allTriangulations(i, k) {
			for _, right := range allTriangulations(k, j) {
				t := make([]Triangle, 0, len(left)+len(right)+1)
				t = append(t, Triangle{I: i, K: k, J: j})
				t = append(t, left...)
				t = append(t, right...)
				out = append(out, t)
			}
		}
	}
	return out
}

func TestTriangulate_OptimalAgainstBruteForce(t *testing.T) {
	catalan := []int{1, 1, 2, 5, 14, 42, 132}
	rng := rand.New(rand.NewSource(7))

	for n := 3; n <= 8; n++ {
		all := allTriangulations(0, n-1)
		if len(all) != catalan[n-2] {
			t.Fatalf("n=%d: enumerated %d triangulations, want %d", n, len(all), catalan[n-2])
		}

		for trial := 0; trial < 20; trial++ {
			points := make([]Point, n)
			for i := range points {
				points[i] = Point{X: rng.Float64()*100 - 50, Y: rng.Float64()*100 - 50}
			}

			best := math.Inf(1)
			for _, tris := range all {
				var c float64
				for _, tr := range tris {
					c += TriangleCost(points, tr.I, tr.K, tr.J)
				}
				best = math.Min(best, c)
			}

			res, err := Triangulate(points)
			require.NoError(t, err)
			assert.InDelta(t, best, res.RawCost, 1e-9*math.Max(1, best), "n=%d trial=%d", n, trial)
			assert.Equal(t, int64(math.Round(res.RawCost)), res.MinCost)
		}
	}
}

func TestTriangulateContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TriangulateContext(ctx, pts(0, 0, 1, 0, 1, 1, 0, 1))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeCanceled, apperror.Code(err))
}

func TestTriangle_String(t *testing.T) {
	assert.Equal(t, "0 2 5", Triangle{I: 0, K: 2, J: 5}.String())
}

func TestVerifyTriangulation_Rejects(t *testing.T) {
	assert.Error(t, VerifyTriangulation(4, &TriangulationResult{Triangles: []Triangle{{0, 1, 3}}}))
	assert.Error(t, VerifyTriangulation(4, &TriangulationResult{Triangles: []Triangle{{0, 1, 3}, {1, 1, 3}}}))
	assert.Error(t, VerifyTriangulation(4, &TriangulationResult{Triangles: []Triangle{{0, 1, 3}, {0, 1, 2}}}))
}

func BenchmarkTriangulate(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	points := make([]Point, 120)
	for i := range points {
		points[i] = Point{X: rng.Float64() * 1000, Y: rng.Float64() * 1000}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Triangulate(points); err != nil {
			b.Fatal(err)
		}
	}
}
