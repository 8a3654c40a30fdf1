// Package report renders solver results into downloadable documents.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/apperror"
	"algolab/pkg/config"
)

// Format формат отчёта
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatXLSX     Format = "xlsx"
	FormatPDF      Format = "pdf"
)

// Formats все поддерживаемые форматы в порядке вывода
var Formats = []Format{FormatText, FormatJSON, FormatCSV, FormatMarkdown, FormatXLSX, FormatPDF}

// Problem тип задачи в отчёте
type Problem string

const (
	ProblemTriangulation Problem = "triangulation"
	ProblemMaxFlow       Problem = "maxflow"
)

// Options параметры оформления
type Options struct {
	Title  string
	Author string

	// 0 = без ограничения
	MaxEdgesInTable     int
	MaxTrianglesInTable int

	PDF PDFOptions
}

// PDFOptions параметры страницы PDF
type PDFOptions struct {
	PageSize    string
	Orientation string
	MarginTop   float64
	MarginLeft  float64
	MarginRight float64
	PageNumbers bool
}

// DefaultOptions возвращает оформление по умолчанию
func DefaultOptions() Options {
	return Options{
		Author: "algolab",
		PDF: PDFOptions{
			PageSize:    "A4",
			Orientation: "portrait",
			MarginTop:   15,
			MarginLeft:  15,
			MarginRight: 15,
			PageNumbers: true,
		},
	}
}

// OptionsFromConfig строит Options из секции report
func OptionsFromConfig(cfg *config.ReportConfig) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}

	if cfg.Title != "" {
		opts.Title = cfg.Title
	}
	if cfg.Author != "" {
		opts.Author = cfg.Author
	}
	opts.MaxEdgesInTable = cfg.MaxEdgesInTable
	opts.MaxTrianglesInTable = cfg.MaxTrianglesInTable

	pdf := cfg.PDF
	if pdf.PageSize != "" {
		opts.PDF.PageSize = pdf.PageSize
	}
	if pdf.Orientation != "" {
		opts.PDF.Orientation = pdf.Orientation
	}
	if pdf.MarginTop > 0 {
		opts.PDF.MarginTop = pdf.MarginTop
	}
	if pdf.MarginLeft > 0 {
		opts.PDF.MarginLeft = pdf.MarginLeft
	}
	if pdf.MarginRight > 0 {
		opts.PDF.MarginRight = pdf.MarginRight
	}
	opts.PDF.PageNumbers = pdf.EnablePageNumbers

	return opts
}

// Data данные для рендера. Заполнен ровно один из результатов.
type Data struct {
	Problem Problem

	// Триангуляция; Points необязательны и нужны для стоимости треугольников
	Points        []solverv1.Point
	Triangulation *solverv1.TriangulateResponse

	// Максимальный поток
	NodeCount int
	MaxFlow   *solverv1.MaxFlowResponse

	Options     Options
	GeneratedAt time.Time
}

// ForTriangulation собирает данные отчёта о триангуляции
func ForTriangulation(points []solverv1.Point, resp *solverv1.TriangulateResponse, opts Options) *Data {
	return &Data{
		Problem:       ProblemTriangulation,
		Points:        points,
		Triangulation: resp,
		Options:       opts,
		GeneratedAt:   time.Now(),
	}
}

// ForMaxFlow собирает данные отчёта о потоке
func ForMaxFlow(nodeCount int, resp *solverv1.MaxFlowResponse, opts Options) *Data {
	return &Data{
		Problem:     ProblemMaxFlow,
		NodeCount:   nodeCount,
		MaxFlow:     resp,
		Options:     opts,
		GeneratedAt: time.Now(),
	}
}

func (d *Data) validate() error {
	if d == nil {
		return apperror.New(apperror.CodeInvalidArgument, "report data is required")
	}
	switch d.Problem {
	case ProblemTriangulation:
		if d.Triangulation == nil {
			return apperror.New(apperror.CodeInvalidArgument, "triangulation result is required")
		}
	case ProblemMaxFlow:
		if d.MaxFlow == nil {
			return apperror.New(apperror.CodeInvalidArgument, "max-flow result is required")
		}
	default:
		return apperror.Newf(apperror.CodeInvalidArgument, "unknown problem %q", d.Problem)
	}
	return nil
}

// Renderer рендерер отчётов
type Renderer interface {
	Render(ctx context.Context, data *Data) ([]byte, error)
	Format() Format
	ContentType() string
	Extension() string
}

// ParseFormat разбирает имя формата; пустая строка означает text
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	case "excel":
		return FormatXLSX, nil
	case FormatText, FormatJSON, FormatCSV, FormatMarkdown, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", apperror.Newf(apperror.CodeInvalidFormat, "unknown report format %q", name)
	}
}

// New возвращает рендерер для формата
func New(format string) (Renderer, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	switch f {
	case FormatJSON:
		return NewJSONRenderer(), nil
	case FormatCSV:
		return NewCSVRenderer(), nil
	case FormatMarkdown:
		return NewMarkdownRenderer(), nil
	case FormatXLSX:
		return NewXLSXRenderer(), nil
	case FormatPDF:
		return NewPDFRenderer(), nil
	default:
		return NewTextRenderer(), nil
	}
}

// Render рендерит данные и проверяет лимит размера (0 = без ограничения)
func Render(ctx context.Context, r Renderer, data *Data, maxBytes int64) ([]byte, error) {
	if err := data.validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, apperror.FromContext(err)
	}

	out, err := r.Render(ctx, data)
	if err != nil {
		if _, ok := err.(*apperror.Error); ok {
			return nil, err
		}
		return nil, apperror.Wrap(err, apperror.CodeInternal, fmt.Sprintf("render %s report", r.Format()))
	}

	if maxBytes > 0 && int64(len(out)) > maxBytes {
		return nil, apperror.Newf(apperror.CodeInputTooLarge,
			"%s report is %d bytes, limit is %d", r.Format(), len(out), maxBytes)
	}
	return out, nil
}

// BaseRenderer общие утилиты рендереров
type BaseRenderer struct{}

// GetTitle возвращает заголовок отчёта
func (b *BaseRenderer) GetTitle(data *Data) string {
	if data.Options.Title != "" {
		return data.Options.Title
	}
	switch data.Problem {
	case ProblemTriangulation:
		return "Minimum-Cost Polygon Triangulation"
	case ProblemMaxFlow:
		return "Maximum Flow and Minimum Cut"
	default:
		return "Algolab Report"
	}
}

// GetAuthor возвращает автора отчёта
func (b *BaseRenderer) GetAuthor(data *Data) string {
	if data.Options.Author != "" {
		return data.Options.Author
	}
	return "algolab"
}

// FormatFloat форматирует число с заданной точностью
func (b *BaseRenderer) FormatFloat(v float64, precision int) string {
	return fmt.Sprintf("%.*f", precision, v)
}

// FormatDuration форматирует длительность
func (b *BaseRenderer) FormatDuration(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.2f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

// FormatTimestamp форматирует время
func (b *BaseRenderer) FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("2006-01-02 15:04:05")
}

// limit обрезает количество строк таблицы
func limit(total, maxRows int) int {
	if maxRows <= 0 || total <= maxRows {
		return total
	}
	return maxRows
}

// triangleCost стоимость треугольника, если известны вершины
func triangleCost(points []solverv1.Point, t solverv1.Triangle) (float64, bool) {
	n := len(points)
	if t.I < 0 || t.K < 0 || t.J < 0 || t.I >= n || t.K >= n || t.J >= n {
		return 0, false
	}
	return sqDist(points[t.I], points[t.K]) + sqDist(points[t.K], points[t.J]) + sqDist(points[t.J], points[t.I]), true
}

func sqDist(a, b solverv1.Point) float64 {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx*dx + dy*dy
}

// summaryRow строка сводной таблицы
type summaryRow struct {
	Key   string
	Value string
}

func (b *BaseRenderer) triangulationSummary(data *Data) []summaryRow {
	res := data.Triangulation
	rows := []summaryRow{
		{"Minimum cost", fmt.Sprintf("%d", res.MinCost)},
		{"Raw cost", b.FormatFloat(res.RawCost, 4)},
		{"Triangles", fmt.Sprintf("%d", len(res.Triangles))},
	}
	if s := res.Stats; s != nil {
		rows = append(rows,
			summaryRow{"Vertices", fmt.Sprintf("%d", s.Vertices)},
			summaryRow{"DP cells", fmt.Sprintf("%d", s.DPCells)},
			summaryRow{"Computation time", b.FormatDuration(s.ComputationTimeMs)},
			summaryRow{"Cache hit", fmt.Sprintf("%v", s.CacheHit)},
		)
	}
	return rows
}

func (b *BaseRenderer) maxFlowSummary(data *Data) []summaryRow {
	res := data.MaxFlow
	rows := []summaryRow{
		{"Maximum flow", fmt.Sprintf("%d", res.MaxFlow)},
		{"Edges with flow", fmt.Sprintf("%d", len(res.FlowEdges))},
		{"Source side size", fmt.Sprintf("%d", len(res.SourceSide))},
		{"Cut edges", fmt.Sprintf("%d", len(res.CutEdges))},
	}
	if data.NodeCount > 0 {
		rows = append([]summaryRow{{"Nodes", fmt.Sprintf("%d", data.NodeCount)}}, rows...)
	}
	if s := res.Stats; s != nil {
		rows = append(rows,
			summaryRow{"Strategy", s.Strategy},
			summaryRow{"Augmentations", fmt.Sprintf("%d", s.Augmentations)},
			summaryRow{"Computation time", b.FormatDuration(s.ComputationTimeMs)},
			summaryRow{"Cache hit", fmt.Sprintf("%v", s.CacheHit)},
		)
	}
	return rows
}

// pathString форматирует путь как 1 -> 3 -> 6
func pathString(nodes []int) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = fmt.Sprintf("%d", n)
	}
	return strings.Join(parts, " -> ")
}
