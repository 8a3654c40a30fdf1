package input

import (
	"bytes"
	"encoding/json"
	"fmt"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/apperror"
)

type triangulationDoc struct {
	Points []json.RawMessage `json:"points"`
}

type maxFlowDoc struct {
	Nodes    *int      `json:"nodes"`
	Edges    [][]int64 `json:"edges"`
	Strategy string    `json:"strategy,omitempty"`
}

// ParseTriangulationJSON читает {"points":[[x,y],...]}.
// Точка может быть и объектом {"x":..,"y":..}.
func ParseTriangulationJSON(data []byte) ([]solverv1.Point, error) {
	var doc triangulationDoc
	if err := decodeStrict(data, &doc); err != nil {
		return nil, err
	}
	if doc.Points == nil {
		return nil, apperror.New(apperror.CodeParseError, `missing "points" array`).WithField("points")
	}

	points := make([]solverv1.Point, len(doc.Points))
	for i, raw := range doc.Points {
		p, err := decodePoint(raw)
		if err != nil {
			return nil, apperror.Newf(apperror.CodeParseError, "points[%d]: %s", i, err.Error()).
				WithField("points")
		}
		points[i] = p
	}
	return points, nil
}

func decodePoint(raw json.RawMessage) (solverv1.Point, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var p solverv1.Point
		err := json.Unmarshal(trimmed, &p)
		return p, err
	}

	var xy []float64
	if err := json.Unmarshal(trimmed, &xy); err != nil {
		return solverv1.Point{}, err
	}
	if len(xy) != 2 {
		return solverv1.Point{}, fmt.Errorf("expected [x, y], got %d numbers", len(xy))
	}
	return solverv1.Point{X: xy[0], Y: xy[1]}, nil
}

// ParseMaxFlowJSON читает {"nodes":n,"edges":[[dest,cap,...],...]}
func ParseMaxFlowJSON(data []byte) (*solverv1.MaxFlowRequest, error) {
	var doc maxFlowDoc
	if err := decodeStrict(data, &doc); err != nil {
		return nil, err
	}
	if doc.Nodes == nil {
		return nil, apperror.New(apperror.CodeParseError, `missing "nodes"`).WithField("nodes")
	}

	adjacency := doc.Edges
	if adjacency == nil {
		adjacency = [][]int64{}
	}
	for i := range adjacency {
		if adjacency[i] == nil {
			adjacency[i] = []int64{}
		}
	}

	return &solverv1.MaxFlowRequest{
		NodeCount: *doc.Nodes,
		Adjacency: adjacency,
		Strategy:  doc.Strategy,
	}, nil
}

func decodeStrict(data []byte, dst any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperror.Wrap(err, apperror.CodeParseError, "invalid JSON: "+err.Error())
	}
	if dec.More() {
		return apperror.New(apperror.CodeParseError, "invalid JSON: unexpected data after document")
	}
	return nil
}
