package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXRenderer генератор Excel отчётов
type XLSXRenderer struct {
	BaseRenderer
}

// NewXLSXRenderer создаёт новый рендерер
func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

func (r *XLSXRenderer) Format() Format { return FormatXLSX }
func (r *XLSXRenderer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}
func (r *XLSXRenderer) Extension() string { return ".xlsx" }

const summarySheet = "Summary"

// sheetWriter пишет строки подряд и запоминает первую ошибку
type sheetWriter struct {
	f     *excelize.File
	sheet string
	row   int
	style int
	err   error
}

func (w *sheetWriter) cell(col int) string {
	name, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil && w.err == nil {
		w.err = err
	}
	return name
}

func (w *sheetWriter) Row(values ...any) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetSheetRow(w.sheet, w.cell(1), &values)
	w.row++
}

func (w *sheetWriter) Header(values ...any) {
	if w.err != nil {
		return
	}
	start := w.cell(1)
	end := w.cell(len(values))
	if err := w.f.SetSheetRow(w.sheet, start, &values); err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(w.sheet, start, end, w.style)
	w.row++
}

func (w *sheetWriter) Skip() {
	w.row++
}

// Render рендерит книгу Excel
func (r *XLSXRenderer) Render(ctx context.Context, data *Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// Лист по умолчанию становится сводкой
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	summary := &sheetWriter{f: f, sheet: summarySheet, row: 1, style: headerStyle}
	summary.Row(r.GetTitle(data))
	summary.Row("Author", r.GetAuthor(data))
	summary.Row("Generated", r.FormatTimestamp(data.GeneratedAt))
	summary.Skip()
	summary.Header("Metric", "Value")

	var rows []summaryRow
	if data.Problem == ProblemTriangulation {
		rows = r.triangulationSummary(data)
	} else {
		rows = r.maxFlowSummary(data)
	}
	for _, row := range rows {
		summary.Row(row.Key, row.Value)
	}
	if summary.err != nil {
		return nil, summary.err
	}
	if err := f.SetColWidth(summarySheet, "A", "B", 24); err != nil {
		return nil, err
	}

	switch data.Problem {
	case ProblemTriangulation:
		err = r.writeTriangulation(f, data, headerStyle)
	case ProblemMaxFlow:
		err = r.writeMaxFlow(f, data, headerStyle)
	}
	if err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (r *XLSXRenderer) newSheet(f *excelize.File, name string, style int) (*sheetWriter, error) {
	if _, err := f.NewSheet(name); err != nil {
		return nil, fmt.Errorf("create sheet %s: %w", name, err)
	}
	return &sheetWriter{f: f, sheet: name, row: 1, style: style}, nil
}

func (r *XLSXRenderer) writeTriangulation(f *excelize.File, data *Data, style int) error {
	res := data.Triangulation

	w, err := r.newSheet(f, "Triangles", style)
	if err != nil {
		return err
	}

	withCost := len(data.Points) > 0
	if withCost {
		w.Header("#", "i", "k", "j", "Cost")
	} else {
		w.Header("#", "i", "k", "j")
	}

	rows := limit(len(res.Triangles), data.Options.MaxTrianglesInTable)
	for idx, t := range res.Triangles[:rows] {
		if withCost {
			cost, _ := triangleCost(data.Points, t)
			w.Row(idx+1, t.I, t.K, t.J, cost)
		} else {
			w.Row(idx+1, t.I, t.K, t.J)
		}
	}
	if rows < len(res.Triangles) {
		w.Row(fmt.Sprintf("... and %d more rows", len(res.Triangles)-rows))
	}
	if w.err != nil || !withCost {
		return w.err
	}

	// Вершины многоугольника
	v, err := r.newSheet(f, "Vertices", style)
	if err != nil {
		return err
	}
	v.Header("Index", "X", "Y")
	for i, p := range data.Points {
		v.Row(i, p.X, p.Y)
	}
	return v.err
}

func (r *XLSXRenderer) writeMaxFlow(f *excelize.File, data *Data, style int) error {
	res := data.MaxFlow
	maxRows := data.Options.MaxEdgesInTable

	flows, err := r.newSheet(f, "Flow Edges", style)
	if err != nil {
		return err
	}
	flows.Header("From", "To", "Flow")
	rows := limit(len(res.FlowEdges), maxRows)
	for _, e := range res.FlowEdges[:rows] {
		flows.Row(e.From, e.To, e.Flow)
	}
	if rows < len(res.FlowEdges) {
		flows.Row(fmt.Sprintf("... and %d more rows", len(res.FlowEdges)-rows))
	}
	if flows.err != nil {
		return flows.err
	}

	cut, err := r.newSheet(f, "Min Cut", style)
	if err != nil {
		return err
	}
	cut.Header("From", "To", "Capacity")
	rows = limit(len(res.CutEdges), maxRows)
	for _, e := range res.CutEdges[:rows] {
		cut.Row(e.From, e.To, e.Capacity)
	}
	cut.Skip()
	cut.Header("Source side")
	for _, node := range res.SourceSide {
		cut.Row(node)
	}
	if cut.err != nil {
		return cut.err
	}

	if len(res.Paths) == 0 {
		return nil
	}

	paths, err := r.newSheet(f, "Paths", style)
	if err != nil {
		return err
	}
	paths.Header("#", "Path", "Flow")
	for i, p := range res.Paths {
		paths.Row(i+1, pathString(p.Nodes), p.Flow)
	}
	return paths.err
}
