package report

import (
	"bytes"
	"context"
	"fmt"
)

// MarkdownRenderer генератор Markdown отчётов
type MarkdownRenderer struct {
	BaseRenderer
}

// NewMarkdownRenderer создаёт новый рендерер
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

func (r *MarkdownRenderer) Format() Format      { return FormatMarkdown }
func (r *MarkdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }
func (r *MarkdownRenderer) Extension() string   { return ".md" }

// Render рендерит Markdown отчёт
func (r *MarkdownRenderer) Render(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer

	r.writeHeader(&buf, data)

	switch data.Problem {
	case ProblemTriangulation:
		r.writeSummary(&buf, r.triangulationSummary(data))
		r.writeTriangles(&buf, data)
	case ProblemMaxFlow:
		r.writeSummary(&buf, r.maxFlowSummary(data))
		r.writeFlow(&buf, data)
	}

	r.writeFooter(&buf, data)

	return buf.Bytes(), nil
}

func (r *MarkdownRenderer) writeHeader(buf *bytes.Buffer, data *Data) {
	fmt.Fprintf(buf, "# %s\n\n", r.GetTitle(data))
	fmt.Fprintf(buf, "**Author:** %s  \n", r.GetAuthor(data))
	fmt.Fprintf(buf, "**Generated:** %s\n\n", r.FormatTimestamp(data.GeneratedAt))
	buf.WriteString("---\n\n")
}

func (r *MarkdownRenderer) writeSummary(buf *bytes.Buffer, rows []summaryRow) {
	buf.WriteString("## Summary\n\n")
	buf.WriteString("| Metric | Value |\n")
	buf.WriteString("|--------|-------|\n")
	for _, row := range rows {
		fmt.Fprintf(buf, "| %s | %s |\n", row.Key, row.Value)
	}
	buf.WriteString("\n")
}

func (r *MarkdownRenderer) writeTriangles(buf *bytes.Buffer, data *Data) {
	res := data.Triangulation
	if len(res.Triangles) == 0 {
		return
	}
	withCost := len(data.Points) > 0

	buf.WriteString("## Triangles\n\n")
	if withCost {
		buf.WriteString("| # | i | k | j | Cost |\n")
		buf.WriteString("|---|---|---|---|------|\n")
	} else {
		buf.WriteString("| # | i | k | j |\n")
		buf.WriteString("|---|---|---|---|\n")
	}

	rows := limit(len(res.Triangles), data.Options.MaxTrianglesInTable)
	for idx, t := range res.Triangles[:rows] {
		if withCost {
			cost, _ := triangleCost(data.Points, t)
			fmt.Fprintf(buf, "| %d | %d | %d | %d | %s |\n", idx+1, t.I, t.K, t.J, r.FormatFloat(cost, 2))
		} else {
			fmt.Fprintf(buf, "| %d | %d | %d | %d |\n", idx+1, t.I, t.K, t.J)
		}
	}
	writeTruncated(buf, len(res.Triangles), rows)
}

func (r *MarkdownRenderer) writeFlow(buf *bytes.Buffer, data *Data) {
	res := data.MaxFlow
	maxRows := data.Options.MaxEdgesInTable

	if len(res.FlowEdges) > 0 {
		buf.WriteString("## Edge Flows\n\n")
		buf.WriteString("| From | To | Flow |\n")
		buf.WriteString("|------|----|------|\n")
		rows := limit(len(res.FlowEdges), maxRows)
		for _, e := range res.FlowEdges[:rows] {
			fmt.Fprintf(buf, "| %d | %d | %d |\n", e.From, e.To, e.Flow)
		}
		writeTruncated(buf, len(res.FlowEdges), rows)
	}

	buf.WriteString("## Minimum Cut\n\n")
	fmt.Fprintf(buf, "Source side: %v\n\n", res.SourceSide)
	if len(res.CutEdges) > 0 {
		buf.WriteString("| From | To | Capacity |\n")
		buf.WriteString("|------|----|----------|\n")
		rows := limit(len(res.CutEdges), maxRows)
		for _, e := range res.CutEdges[:rows] {
			fmt.Fprintf(buf, "| %d | %d | %d |\n", e.From, e.To, e.Capacity)
		}
		writeTruncated(buf, len(res.CutEdges), rows)
	}

	if len(res.Paths) > 0 {
		buf.WriteString("## Augmenting Paths\n\n")
		for i, p := range res.Paths {
			fmt.Fprintf(buf, "%d. `%s` (flow %d)\n", i+1, pathString(p.Nodes), p.Flow)
		}
		buf.WriteString("\n")
	}
}

func writeTruncated(buf *bytes.Buffer, total, shown int) {
	if total > shown {
		fmt.Fprintf(buf, "\n*... and %d more rows*\n", total-shown)
	}
	buf.WriteString("\n")
}

func (r *MarkdownRenderer) writeFooter(buf *bytes.Buffer, data *Data) {
	buf.WriteString("---\n\n")
	fmt.Fprintf(buf, "*Generated by algolab | %s*\n", r.FormatTimestamp(data.GeneratedAt))
}
