// Package input читает задачи из файлов и stdin.
//
// Поддерживаемые форматы:
//   - text: исходный консольный формат (n, затем координаты или списки рёбер)
//   - json: {"points":[[x,y],...]} и {"nodes":n,"edges":[[dest,cap,...],...]}
//   - geojson: Polygon / LineString / MultiPolygon (только триангуляция)
//   - polyline: Google encoded polyline (только триангуляция)
//
// Парсеры проверяют только синтаксис. Семантику (n >= 3, пары рёбер,
// диапазон узлов) проверяют движки, чтобы ошибки были одинаковыми при
// любом источнике задачи.
package input

import (
	"io"
	"path/filepath"
	"strings"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/apperror"
)

// Format формат входного файла
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatGeoJSON  Format = "geojson"
	FormatPolyline Format = "polyline"
)

// ParseFormat разбирает имя формата, "" означает text
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatGeoJSON, FormatPolyline:
		return f, nil
	default:
		return "", apperror.Newf(apperror.CodeInvalidFormat,
			"unknown input format %q (want text, json, geojson or polyline)", name).
			WithField("format")
	}
}

// DetectFormat определяет формат по расширению файла.
// Пустой путь и "-" (stdin) дают text.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".geojson":
		return FormatGeoJSON
	case ".polyline", ".poly":
		return FormatPolyline
	default:
		return FormatText
	}
}

// ReadTriangulation читает многоугольник в заданном формате
func ReadTriangulation(r io.Reader, format Format) (*solverv1.TriangulateRequest, error) {
	var (
		points []solverv1.Point
		err    error
	)

	switch format {
	case FormatText, "":
		points, err = ParseTriangulationText(r)
	case FormatJSON, FormatGeoJSON, FormatPolyline:
		data, readErr := io.ReadAll(r)
		if readErr != nil {
			return nil, apperror.Wrap(readErr, apperror.CodeParseError, "failed to read input")
		}
		switch format {
		case FormatJSON:
			points, err = ParseTriangulationJSON(data)
		case FormatGeoJSON:
			points, err = ParseGeoJSON(data)
		default:
			points, err = ParsePolyline(string(data))
		}
	default:
		return nil, apperror.Newf(apperror.CodeInvalidFormat, "unknown input format %q", format)
	}
	if err != nil {
		return nil, err
	}

	return &solverv1.TriangulateRequest{Points: points}, nil
}

// ReadMaxFlow читает сеть в заданном формате
func ReadMaxFlow(r io.Reader, format Format) (*solverv1.MaxFlowRequest, error) {
	switch format {
	case FormatText, "":
		return ParseMaxFlowText(r)
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, apperror.Wrap(err, apperror.CodeParseError, "failed to read input")
		}
		return ParseMaxFlowJSON(data)
	default:
		return nil, apperror.Newf(apperror.CodeInvalidFormat,
			"format %q cannot describe a flow network (want text or json)", format).
			WithField("format")
	}
}
