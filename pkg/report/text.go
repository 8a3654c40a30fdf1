package report

import (
	"bytes"
	"context"
	"fmt"
)

// TextRenderer печатает результат в построчном консольном виде:
//
//	триангуляция: стоимость, затем по строке "i k j" на треугольник;
//	поток: значение, число рёбер, строки "u v f", размер доли истока, вершины по одной.
type TextRenderer struct {
	BaseRenderer
}

// NewTextRenderer создаёт новый рендерер
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

func (r *TextRenderer) Format() Format      { return FormatText }
func (r *TextRenderer) ContentType() string { return "text/plain; charset=utf-8" }
func (r *TextRenderer) Extension() string   { return ".txt" }

// Render рендерит текстовый отчёт
func (r *TextRenderer) Render(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer

	switch data.Problem {
	case ProblemTriangulation:
		res := data.Triangulation
		fmt.Fprintf(&buf, "%d\n", res.MinCost)
		for _, t := range res.Triangles {
			fmt.Fprintf(&buf, "%d %d %d\n", t.I, t.K, t.J)
		}

	case ProblemMaxFlow:
		res := data.MaxFlow
		fmt.Fprintf(&buf, "%d\n", res.MaxFlow)
		fmt.Fprintf(&buf, "%d\n", len(res.FlowEdges))
		for _, e := range res.FlowEdges {
			fmt.Fprintf(&buf, "%d %d %d\n", e.From, e.To, e.Flow)
		}
		fmt.Fprintf(&buf, "%d\n", len(res.SourceSide))
		for _, v := range res.SourceSide {
			fmt.Fprintf(&buf, "%d\n", v)
		}
	}

	return buf.Bytes(), nil
}
