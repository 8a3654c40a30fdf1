package input

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/apperror"
)

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"", FormatText},
		{"-", FormatText},
		{"square.txt", FormatText},
		{"net.in", FormatText},
		{"square.json", FormatJSON},
		{"DATA/Area.GeoJSON", FormatGeoJSON},
		{"route.polyline", FormatPolyline},
		{"route.poly", FormatPolyline},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.path); got != tt.want {
			t.Errorf("DetectFormat(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" JSON ")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	f, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	_, err = ParseFormat("xml")
	assert.Equal(t, apperror.CodeInvalidFormat, apperror.Code(err))
}

func TestParseTriangulationText(t *testing.T) {
	points, err := ParseTriangulationText(strings.NewReader("4\n0 0\n1 0\n1 1\n0 1\n"))
	require.NoError(t, err)
	assert.Equal(t, []solverv1.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}, points)

	// разделители не важны, дробные координаты допустимы
	points, err = ParseTriangulationText(strings.NewReader("3 0 0\t2.5 -1   0 1e1"))
	require.NoError(t, err)
	assert.Equal(t, []solverv1.Point{{X: 0, Y: 0}, {X: 2.5, Y: -1}, {X: 0, Y: 10}}, points)
}

func TestParseTriangulationText_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		msg   string
	}{
		{"empty", "", "vertex count"},
		{"bad count", "three", "invalid vertex count"},
		{"negative count", "-1", "invalid vertex count"},
		{"truncated", "3 0 0 1 0 0", "coordinate of vertex 2"},
		{"bad coordinate", "3 0 0 1 x 0 1", `vertex 1: invalid coordinate "x"`},
		{"trailing", "3 0 0 1 0 0 1 9", "unexpected data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTriangulationText(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Equal(t, apperror.CodeParseError, apperror.Code(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

// Заголовок не должен определять объём памяти: n проверяется до разбора
func TestParseText_DeclaredCountBound(t *testing.T) {
	_, err := ParseTriangulationText(strings.NewReader("99999999999999 0 0"))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInputTooLarge, apperror.Code(err))
	assert.True(t, apperror.IsInvalidInput(err))

	// в пределах границы короткий вход просто обрывается
	_, err = ParseTriangulationText(strings.NewReader("65536 0 0"))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeParseError, apperror.Code(err))

	req, err := ParseMaxFlowText(strings.NewReader("65536\n2 5\n"))
	require.NoError(t, err)
	assert.Equal(t, MaxDeclaredCount, req.NodeCount)
	assert.Len(t, req.Adjacency, MaxDeclaredCount-1)
	assert.Equal(t, []int64{2, 5}, req.Adjacency[0])
}

func TestParseTriangulationText_ZeroVerticesLeftToEngine(t *testing.T) {
	points, err := ParseTriangulationText(strings.NewReader("0"))
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestParseMaxFlowText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  *solverv1.MaxFlowRequest
	}{
		{
			name:  "n-1 lines",
			input: "4\n2 3 3 2\n4 2\n4 3\n",
			want:  &solverv1.MaxFlowRequest{NodeCount: 4, Adjacency: [][]int64{{2, 3, 3, 2}, {4, 2}, {4, 3}}},
		},
		{
			name:  "blank line means no edges",
			input: "3\n3 7\n\n",
			want:  &solverv1.MaxFlowRequest{NodeCount: 3, Adjacency: [][]int64{{3, 7}, {}}},
		},
		{
			name:  "missing trailing lines",
			input: "4\n2 1",
			want:  &solverv1.MaxFlowRequest{NodeCount: 4, Adjacency: [][]int64{{2, 1}, {}, {}}},
		},
		{
			name:  "sink line given",
			input: "2\n2 5\n1 1\n",
			want:  &solverv1.MaxFlowRequest{NodeCount: 2, Adjacency: [][]int64{{2, 5}, {1, 1}}},
		},
		{
			name:  "extra blank lines",
			input: "\n2\n2 5\n\n\n\n",
			want:  &solverv1.MaxFlowRequest{NodeCount: 2, Adjacency: [][]int64{{2, 5}}},
		},
		{
			name:  "odd list passes through to engine",
			input: "2\n2\n",
			want:  &solverv1.MaxFlowRequest{NodeCount: 2, Adjacency: [][]int64{{2}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMaxFlowText(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMaxFlowText_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  apperror.ErrorCode
		msg   string
	}{
		{"empty", "", apperror.CodeParseError, "node count"},
		{"bad count", "n\n", apperror.CodeParseError, "invalid node count"},
		{"bad token", "3\n2 five\n", apperror.CodeParseError, `node 1: invalid number "five"`},
		{"too many lines", "2\n2 1\n1 1\n1 1\n", apperror.CodeInvalidNodeCount, "3 adjacency lines"},
		{"huge count", "99999999999999\n2 5\n", apperror.CodeInputTooLarge, "node count"},
		{"huge count without lines", "20000000\n", apperror.CodeInputTooLarge, "node count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMaxFlowText(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.Code(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestParseTriangulationJSON(t *testing.T) {
	points, err := ParseTriangulationJSON([]byte(`{"points":[[0,0],[1,0],{"x":1,"y":1}]}`))
	require.NoError(t, err)
	assert.Equal(t, []solverv1.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, points)

	for _, doc := range []string{
		`{}`,
		`{"points":[[0]]}`,
		`{"points":[[0,0,0]]}`,
		`{"points":"nope"}`,
		`{"points":[],"extra":1}`,
		`{"points":[]} {}`,
		`[`,
	} {
		_, err := ParseTriangulationJSON([]byte(doc))
		if assert.Error(t, err, doc) {
			assert.Equal(t, apperror.CodeParseError, apperror.Code(err), doc)
		}
	}
}

func TestParseMaxFlowJSON(t *testing.T) {
	req, err := ParseMaxFlowJSON([]byte(`{"nodes":3,"edges":[[2,4],null],"strategy":"bfs"}`))
	require.NoError(t, err)
	assert.Equal(t, &solverv1.MaxFlowRequest{
		NodeCount: 3,
		Adjacency: [][]int64{{2, 4}, {}},
		Strategy:  "bfs",
	}, req)

	req, err = ParseMaxFlowJSON([]byte(`{"nodes":2}`))
	require.NoError(t, err)
	assert.Equal(t, [][]int64{}, req.Adjacency)

	_, err = ParseMaxFlowJSON([]byte(`{"edges":[]}`))
	assert.Equal(t, apperror.CodeParseError, apperror.Code(err))

	_, err = ParseMaxFlowJSON([]byte(`{"nodes":2,"edges":[[1.5]]}`))
	assert.Equal(t, apperror.CodeParseError, apperror.Code(err))
}

func TestParseGeoJSON(t *testing.T) {
	polygon := `{"type":"Polygon","coordinates":[[[0,0],[4,0],[4,3],[0,3],[0,0]],[[1,1],[2,1],[2,2],[1,1]]]}`

	tests := []struct {
		name string
		doc  string
		want []solverv1.Point
	}{
		{
			name: "bare polygon drops closing point and holes",
			doc:  polygon,
			want: []solverv1.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 3}, {X: 0, Y: 3}},
		},
		{
			name: "feature",
			doc:  `{"type":"Feature","properties":{},"geometry":` + polygon + `}`,
			want: []solverv1.Point{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 3}, {X: 0, Y: 3}},
		},
		{
			name: "collection skips point features",
			doc: `{"type":"FeatureCollection","features":[
				{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[9,9]}},
				{"type":"Feature","properties":{},"geometry":{"type":"LineString","coordinates":[[1,2],[3,4],[5,0]]}}]}`,
			want: []solverv1.Point{{X: 1, Y: 2}, {X: 3, Y: 4}, {X: 5, Y: 0}},
		},
		{
			name: "multipolygon uses first polygon",
			doc:  `{"type":"MultiPolygon","coordinates":[[[[0,0],[1,0],[0,1],[0,0]]],[[[5,5],[6,5],[5,6],[5,5]]]]}`,
			want: []solverv1.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseGeoJSON([]byte(tt.doc))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseGeoJSON_Errors(t *testing.T) {
	_, err := ParseGeoJSON([]byte(`{"type":"Point","coordinates":[1,2]}`))
	assert.Equal(t, apperror.CodeInvalidFormat, apperror.Code(err))

	_, err = ParseGeoJSON([]byte(`{"coordinates":[]}`))
	assert.Equal(t, apperror.CodeParseError, apperror.Code(err))

	_, err = ParseGeoJSON([]byte(`not json`))
	assert.Equal(t, apperror.CodeParseError, apperror.Code(err))
}

func TestParsePolyline(t *testing.T) {
	// пример из описания формата Google
	points, err := ParsePolyline("_p~iF~ps|U_ulLnnqC_mqNvxq`@\n")
	require.NoError(t, err)
	require.Len(t, points, 3)

	want := []solverv1.Point{{X: -120.2, Y: 38.5}, {X: -120.95, Y: 40.7}, {X: -126.453, Y: 43.252}}
	for i := range want {
		assert.InDelta(t, want[i].X, points[i].X, 1e-9)
		assert.InDelta(t, want[i].Y, points[i].Y, 1e-9)
	}
}

func TestParsePolyline_ClosedRing(t *testing.T) {
	encoded := polyline.EncodeCoords([][]float64{{0, 0}, {0, 1}, {1, 1}, {0, 0}})

	points, err := ParsePolyline(string(encoded))
	require.NoError(t, err)
	assert.Equal(t, []solverv1.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}}, points)
}

func TestParsePolyline_Errors(t *testing.T) {
	_, err := ParsePolyline("   ")
	assert.Equal(t, apperror.CodeParseError, apperror.Code(err))

	_, err = ParsePolyline("_p~iF~ps|U_")
	assert.Equal(t, apperror.CodeParseError, apperror.Code(err))
}

func TestReadTriangulation(t *testing.T) {
	for _, tt := range []struct {
		format Format
		input  string
	}{
		{FormatText, "3\n0 0\n1 0\n0 1"},
		{FormatJSON, `{"points":[[0,0],[1,0],[0,1]]}`},
		{FormatGeoJSON, `{"type":"LineString","coordinates":[[0,0],[1,0],[0,1]]}`},
		{FormatPolyline, string(polyline.EncodeCoords([][]float64{{0, 0}, {0, 1}, {1, 0}}))},
	} {
		t.Run(string(tt.format), func(t *testing.T) {
			req, err := ReadTriangulation(strings.NewReader(tt.input), tt.format)
			require.NoError(t, err)
			assert.Equal(t, []solverv1.Point{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}}, req.Points)
		})
	}

	_, err := ReadTriangulation(strings.NewReader(""), Format("xml"))
	assert.Equal(t, apperror.CodeInvalidFormat, apperror.Code(err))
}

func TestReadMaxFlow(t *testing.T) {
	req, err := ReadMaxFlow(strings.NewReader("2\n2 5\n"), FormatText)
	require.NoError(t, err)
	assert.Equal(t, 2, req.NodeCount)

	req, err = ReadMaxFlow(strings.NewReader(`{"nodes":2,"edges":[[2,5]]}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{2, 5}}, req.Adjacency)

	_, err = ReadMaxFlow(strings.NewReader(""), FormatGeoJSON)
	assert.Equal(t, apperror.CodeInvalidFormat, apperror.Code(err))
}
