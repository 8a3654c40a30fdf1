package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSVRenderer генератор CSV отчётов
type CSVRenderer struct {
	BaseRenderer
}

// NewCSVRenderer создаёт новый рендерер
func NewCSVRenderer() *CSVRenderer {
	return &CSVRenderer{}
}

func (r *CSVRenderer) Format() Format      { return FormatCSV }
func (r *CSVRenderer) ContentType() string { return "text/csv; charset=utf-8" }
func (r *CSVRenderer) Extension() string   { return ".csv" }

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record ...string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

func (cw *csvWriter) Error() error {
	return cw.err
}

// Render рендерит CSV отчёт: секции разделены пустой строкой
func (r *CSVRenderer) Render(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	cw.Write("Metric", "Value")
	var summary []summaryRow
	if data.Problem == ProblemTriangulation {
		summary = r.triangulationSummary(data)
	} else {
		summary = r.maxFlowSummary(data)
	}
	for _, row := range summary {
		cw.Write(row.Key, row.Value)
	}

	switch data.Problem {
	case ProblemTriangulation:
		r.writeTriangles(cw, data)
	case ProblemMaxFlow:
		r.writeFlow(cw, data)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *CSVRenderer) writeTriangles(cw *csvWriter, data *Data) {
	res := data.Triangulation
	withCost := len(data.Points) > 0

	cw.Write()
	if withCost {
		cw.Write("i", "k", "j", "cost")
	} else {
		cw.Write("i", "k", "j")
	}

	rows := limit(len(res.Triangles), data.Options.MaxTrianglesInTable)
	for _, t := range res.Triangles[:rows] {
		rec := []string{strconv.Itoa(t.I), strconv.Itoa(t.K), strconv.Itoa(t.J)}
		if withCost {
			cost, _ := triangleCost(data.Points, t)
			rec = append(rec, r.FormatFloat(cost, 4))
		}
		cw.Write(rec...)
	}
}

func (r *CSVRenderer) writeFlow(cw *csvWriter, data *Data) {
	res := data.MaxFlow
	maxRows := data.Options.MaxEdgesInTable

	cw.Write()
	cw.Write("from", "to", "flow")
	for _, e := range res.FlowEdges[:limit(len(res.FlowEdges), maxRows)] {
		cw.Write(strconv.Itoa(e.From), strconv.Itoa(e.To), strconv.FormatInt(e.Flow, 10))
	}

	cw.Write()
	cw.Write("cut_from", "cut_to", "capacity")
	for _, e := range res.CutEdges[:limit(len(res.CutEdges), maxRows)] {
		cw.Write(strconv.Itoa(e.From), strconv.Itoa(e.To), strconv.FormatInt(e.Capacity, 10))
	}

	cw.Write()
	cw.Write("source_side")
	for _, v := range res.SourceSide {
		cw.Write(strconv.Itoa(v))
	}

	if len(res.Paths) > 0 {
		cw.Write()
		cw.Write("path", "flow")
		for _, p := range res.Paths {
			cw.Write(pathString(p.Nodes), strconv.FormatInt(p.Flow, 10))
		}
	}
}
