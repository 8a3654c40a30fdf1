package input

import (
	"encoding/json"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/apperror"
)

// ParseGeoJSON берёт вершины из первой площадной или линейной геометрии
// документа: FeatureCollection, Feature или голая Geometry.
// У Polygon используется внешнее кольцо без замыкающей точки.
// X - долгота, Y - широта; проекция не выполняется.
func ParseGeoJSON(data []byte) ([]solverv1.Point, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeParseError, "invalid GeoJSON: "+err.Error())
	}

	var geometries []orb.Geometry
	switch head.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeParseError, "invalid GeoJSON: "+err.Error())
		}
		for _, f := range fc.Features {
			geometries = append(geometries, f.Geometry)
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeParseError, "invalid GeoJSON: "+err.Error())
		}
		geometries = append(geometries, f.Geometry)
	case "":
		return nil, apperror.New(apperror.CodeParseError, `invalid GeoJSON: missing "type"`)
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeParseError, "invalid GeoJSON: "+err.Error())
		}
		geometries = append(geometries, g.Geometry())
	}

	for _, g := range geometries {
		if ring, ok := vertexChain(g); ok {
			return toPoints(openRing(ring)), nil
		}
	}

	return nil, apperror.New(apperror.CodeInvalidFormat,
		"GeoJSON has no Polygon, MultiPolygon, LineString or MultiPoint geometry")
}

// vertexChain возвращает упорядоченные вершины геометрии
func vertexChain(g orb.Geometry) ([]orb.Point, bool) {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 {
			return nil, false
		}
		return v[0], true
	case orb.MultiPolygon:
		if len(v) == 0 || len(v[0]) == 0 {
			return nil, false
		}
		return v[0][0], true
	case orb.Ring:
		return v, true
	case orb.LineString:
		return v, true
	case orb.MultiPoint:
		return v, true
	default:
		return nil, false
	}
}

// ParsePolyline декодирует Google encoded polyline (точность 1e5).
// Пары декодируются как (широта, долгота), в Point попадает X=долгота, Y=широта.
func ParsePolyline(s string) ([]solverv1.Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, apperror.New(apperror.CodeParseError, "empty polyline")
	}

	coords, rest, err := polyline.DecodeCoords([]byte(s))
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeParseError, "invalid polyline: "+err.Error())
	}
	if len(rest) > 0 {
		return nil, apperror.Newf(apperror.CodeParseError, "invalid polyline: %d trailing bytes", len(rest))
	}

	chain := make([]orb.Point, len(coords))
	for i, c := range coords {
		chain[i] = orb.Point{c[1], c[0]}
	}
	return toPoints(openRing(chain)), nil
}

// openRing убирает замыкающую точку, совпадающую с первой
func openRing(ring []orb.Point) []orb.Point {
	if len(ring) > 1 && ring[0].Equal(ring[len(ring)-1]) {
		return ring[:len(ring)-1]
	}
	return ring
}

func toPoints(chain []orb.Point) []solverv1.Point {
	points := make([]solverv1.Point, len(chain))
	for i, p := range chain {
		points[i] = solverv1.Point{X: p.X(), Y: p.Y()}
	}
	return points
}
