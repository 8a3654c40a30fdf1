package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// pdfMaxRows лимит строк таблицы в PDF, если в конфиге не задан меньший
const pdfMaxRows = 40

// PDFRenderer генератор PDF отчётов
type PDFRenderer struct {
	BaseRenderer
}

// NewPDFRenderer создаёт новый рендерер
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

func (r *PDFRenderer) Format() Format      { return FormatPDF }
func (r *PDFRenderer) ContentType() string { return "application/pdf" }
func (r *PDFRenderer) Extension() string   { return ".pdf" }

// Стили
var (
	// Цвета
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241} // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	titleStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  14,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   4,
	}

	normalStyle = props.Text{
		Size: 10,
	}

	boldStyle = props.Text{
		Size:  10,
		Style: fontstyle.Bold,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	metricValueStyle = props.Text{
		Size:  18,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: primaryColor,
	}

	metricLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Color: darkGrayColor,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{
		Size:  9,
		Align: align.Center,
	}
)

// Render генерирует PDF отчёт
func (r *PDFRenderer) Render(ctx context.Context, data *Data) ([]byte, error) {
	opts := data.Options.PDF
	b := config.NewBuilder().
		WithPageSize(pageSize(opts.PageSize)).
		WithOrientation(pageOrientation(opts.Orientation)).
		WithLeftMargin(opts.MarginLeft).
		WithTopMargin(opts.MarginTop).
		WithRightMargin(opts.MarginRight)
	if opts.PageNumbers {
		b = b.WithPageNumber()
	}

	m := maroto.New(b.Build())

	r.addHeader(m, data)

	switch data.Problem {
	case ProblemTriangulation:
		r.addTriangulationContent(m, data)
	case ProblemMaxFlow:
		r.addMaxFlowContent(m, data)
	}

	r.addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func pageSize(name string) pagesize.Type {
	switch strings.ToLower(name) {
	case "letter":
		return pagesize.Letter
	case "legal":
		return pagesize.Legal
	case "a3":
		return pagesize.A3
	default:
		return pagesize.A4
	}
}

func pageOrientation(name string) orientation.Type {
	if strings.EqualFold(name, "landscape") {
		return orientation.Horizontal
	}
	return orientation.Vertical
}

func (r *PDFRenderer) addHeader(m core.Maroto, data *Data) {
	m.AddRow(14,
		text.NewCol(12, r.GetTitle(data), titleStyle),
	)

	m.AddRow(5,
		line.NewCol(12),
	)

	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Author: %s", r.GetAuthor(data)), smallStyle),
		text.NewCol(6, fmt.Sprintf("Generated: %s", r.FormatTimestamp(data.GeneratedAt)),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)

	m.AddRow(8) // Отступ
}

func (r *PDFRenderer) addTriangulationContent(m core.Maroto, data *Data) {
	res := data.Triangulation

	r.addSection(m, "Result")
	cards := []metricCard{
		{Label: "Minimum Cost", Value: fmt.Sprintf("%d", res.MinCost), Highlight: true},
		{Label: "Triangles", Value: fmt.Sprintf("%d", len(res.Triangles)), Highlight: true},
	}
	if res.Stats != nil {
		cards = append(cards, metricCard{Label: "Vertices", Value: fmt.Sprintf("%d", res.Stats.Vertices)})
	}
	r.addMetricCards(m, cards)

	r.addSection(m, "Details")
	r.addKeyValueTable(m, r.triangulationSummary(data))

	if len(res.Triangles) == 0 {
		return
	}

	r.addSection(m, "Triangles")
	withCost := len(data.Points) > 0
	headers := []string{"#", "i", "k", "j"}
	if withCost {
		headers = append(headers, "Cost")
	}

	rows := limit(len(res.Triangles), r.maxRows(data.Options.MaxTrianglesInTable))
	body := make([][]string, 0, rows)
	for idx, t := range res.Triangles[:rows] {
		cells := []string{fmt.Sprintf("%d", idx+1), fmt.Sprintf("%d", t.I), fmt.Sprintf("%d", t.K), fmt.Sprintf("%d", t.J)}
		if withCost {
			cost, _ := triangleCost(data.Points, t)
			cells = append(cells, r.FormatFloat(cost, 2))
		}
		body = append(body, cells)
	}
	r.addTable(m, headers, body, len(res.Triangles))
}

func (r *PDFRenderer) addMaxFlowContent(m core.Maroto, data *Data) {
	res := data.MaxFlow

	r.addSection(m, "Result")
	cards := []metricCard{
		{Label: "Maximum Flow", Value: fmt.Sprintf("%d", res.MaxFlow), Highlight: true},
		{Label: "Source Side", Value: fmt.Sprintf("%d nodes", len(res.SourceSide))},
		{Label: "Cut Edges", Value: fmt.Sprintf("%d", len(res.CutEdges))},
	}
	if data.NodeCount > 0 {
		cards = append([]metricCard{{Label: "Nodes", Value: fmt.Sprintf("%d", data.NodeCount)}}, cards...)
	}
	r.addMetricCards(m, cards)

	r.addSection(m, "Details")
	r.addKeyValueTable(m, r.maxFlowSummary(data))

	maxRows := r.maxRows(data.Options.MaxEdgesInTable)

	if len(res.FlowEdges) > 0 {
		r.addSection(m, "Edge Flows")
		rows := limit(len(res.FlowEdges), maxRows)
		body := make([][]string, 0, rows)
		for _, e := range res.FlowEdges[:rows] {
			body = append(body, []string{fmt.Sprintf("%d", e.From), fmt.Sprintf("%d", e.To), fmt.Sprintf("%d", e.Flow)})
		}
		r.addTable(m, []string{"From", "To", "Flow"}, body, len(res.FlowEdges))
	}

	r.addSection(m, "Minimum Cut")
	sourceSide := make([]string, len(res.SourceSide))
	for i, v := range res.SourceSide {
		sourceSide[i] = fmt.Sprintf("%d", v)
	}
	m.AddRow(6,
		text.NewCol(3, "Source side", boldStyle),
		text.NewCol(9, strings.Join(sourceSide, ", "), normalStyle),
	)
	m.AddRow(4)

	if len(res.CutEdges) > 0 {
		rows := limit(len(res.CutEdges), maxRows)
		body := make([][]string, 0, rows)
		for _, e := range res.CutEdges[:rows] {
			body = append(body, []string{fmt.Sprintf("%d", e.From), fmt.Sprintf("%d", e.To), fmt.Sprintf("%d", e.Capacity)})
		}
		r.addTable(m, []string{"From", "To", "Capacity"}, body, len(res.CutEdges))
	}

	if len(res.Paths) > 0 {
		r.addSection(m, "Augmenting Paths")
		rows := limit(len(res.Paths), maxRows)
		for i, p := range res.Paths[:rows] {
			m.AddRow(6,
				text.NewCol(1, fmt.Sprintf("%d.", i+1), smallStyle),
				text.NewCol(9, pathString(p.Nodes), normalStyle),
				text.NewCol(2, fmt.Sprintf("flow %d", p.Flow), boldStyle),
			)
		}
	}
}

// maxRows лимит строк с учётом конфигурации
func (r *PDFRenderer) maxRows(configured int) int {
	if configured > 0 && configured < pdfMaxRows {
		return configured
	}
	return pdfMaxRows
}

type metricCard struct {
	Label     string
	Value     string
	Highlight bool
}

func (r *PDFRenderer) addMetricCards(m core.Maroto, cards []metricCard) {
	if len(cards) == 0 {
		return
	}

	colSize := 12 / len(cards)
	if colSize < 2 {
		colSize = 2
	}

	var cols []core.Col
	for _, card := range cards {
		valueStyle := metricValueStyle
		if !card.Highlight {
			valueStyle.Size = 12
		}

		cols = append(cols,
			col.New(colSize).Add(
				text.New(card.Value, valueStyle),
				text.New(card.Label, metricLabelStyle),
			),
		)
	}

	m.AddRow(20, cols...)
}

func (r *PDFRenderer) addKeyValueTable(m core.Maroto, items []summaryRow) {
	for _, item := range items {
		m.AddRow(6,
			text.NewCol(6, item.Key, boldStyle),
			text.NewCol(6, item.Value, normalStyle),
		)
	}
}

func (r *PDFRenderer) addSection(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, h2Style),
	)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: primaryColor}),
	)
	m.AddRow(4)
}

// addTable рисует таблицу с равными колонками; total — полное число строк до обрезки
func (r *PDFRenderer) addTable(m core.Maroto, headers []string, rows [][]string, total int) {
	size := 12 / len(headers)

	header := make([]core.Col, len(headers))
	for i, h := range headers {
		header[i] = text.NewCol(size, h, tableHeaderTextStyle).WithStyle(tableHeaderStyle)
	}
	m.AddRow(8, header...)

	for _, row := range rows {
		cols := make([]core.Col, len(row))
		for i, v := range row {
			cols[i] = text.NewCol(size, v, tableCellTextStyle).WithStyle(tableCellStyle)
		}
		m.AddRow(6, cols...)
	}

	if total > len(rows) {
		m.AddRow(6,
			text.NewCol(12, fmt.Sprintf("... and %d more rows", total-len(rows)), smallStyle),
		)
	}
}

func (r *PDFRenderer) addFooter(m core.Maroto, data *Data) {
	m.AddRow(10)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: lightGrayColor}),
	)
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated by algolab | %s", r.FormatTimestamp(data.GeneratedAt)),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
