package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"algolab/pkg/apperror"
	"algolab/pkg/config"
	"algolab/pkg/input"
	"algolab/pkg/logger"
	"algolab/pkg/report"
	"algolab/pkg/telemetry"
	"algolab/services/gateway-svc/internal/clients"
	gwmetrics "algolab/services/gateway-svc/internal/metrics"
)

// ExportRoute шаблон маршрута экспорта
const ExportRoute = "POST /v1/export/{problem}"

const defaultMaxBodyBytes = 10 << 20

// ExportHandler решает задачу и отдаёт отчёт файлом.
//
//	POST /v1/export/{triangulation|maxflow}?format=pdf&input=json&strategy=bfs&paths=true
//
// Тело запроса: задача в формате input (text, json, geojson, polyline).
// Без параметра input формат берётся из Content-Type.
type ExportHandler struct {
	clients *clients.Manager
	cfg     config.ReportConfig
	maxBody int64
}

// NewExportHandler создаёт handler
func NewExportHandler(clients *clients.Manager, cfg *config.Config) *ExportHandler {
	maxBody := cfg.HTTP.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &ExportHandler{
		clients: clients,
		cfg:     cfg.Report,
		maxBody: maxBody,
	}
}

type exportQuery struct {
	problem  report.Problem
	format   string
	input    input.Format
	strategy string
	paths    bool
	verify   bool
	title    string
}

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseQuery(r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	renderer, err := report.New(q.format)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	opts := report.OptionsFromConfig(&h.cfg)
	if q.title != "" {
		opts.Title = q.title
	}

	data, err := h.solve(r.Context(), q, body, opts)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	out, err := report.Render(r.Context(), renderer, data, h.cfg.MaxReportSizeBytes)
	if err != nil {
		WriteError(w, r, err)
		return
	}

	gwmetrics.Get().RecordExport(string(q.problem), string(renderer.Format()), len(out))
	telemetry.SetAttributes(r.Context(), telemetry.ReportAttributes(string(renderer.Format()), len(out))...)
	logger.Log.Info("Report exported",
		"request_id", logger.RequestIDFromContext(r.Context()),
		"problem", q.problem,
		"format", renderer.Format(),
		"size", len(out),
	)

	filename := fmt.Sprintf("%s-%s%s", q.problem, time.Now().UTC().Format("20060102-150405"), renderer.Extension())

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(out)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *ExportHandler) parseQuery(r *http.Request) (*exportQuery, error) {
	values := r.URL.Query()

	q := &exportQuery{
		problem:  report.Problem(strings.ToLower(r.PathValue("problem"))),
		format:   values.Get("format"),
		strategy: values.Get("strategy"),
		title:    values.Get("title"),
	}

	if q.problem != report.ProblemTriangulation && q.problem != report.ProblemMaxFlow {
		return nil, apperror.Newf(apperror.CodeNotFound,
			"unknown problem %q (want triangulation or maxflow)", r.PathValue("problem"))
	}

	if q.format == "" {
		q.format = h.cfg.DefaultFormat
	}

	var err error
	if name := values.Get("input"); name != "" {
		if q.input, err = input.ParseFormat(name); err != nil {
			return nil, err
		}
	} else {
		q.input = formatFromContentType(r.Header.Get("Content-Type"))
	}

	if q.paths, err = boolParam(values.Get("paths"), "paths"); err != nil {
		return nil, err
	}
	if q.verify, err = boolParam(values.Get("verify"), "verify"); err != nil {
		return nil, err
	}
	return q, nil
}

// readBody читает тело целиком, не больше maxBody байт
func (h *ExportHandler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, apperror.Newf(apperror.CodeInputTooLarge,
				"request body exceeds %d bytes", maxErr.Limit)
		}
		return nil, apperror.Wrap(err, apperror.CodeParseError, "failed to read request body")
	}
	return body, nil
}

func (h *ExportHandler) solve(ctx context.Context, q *exportQuery, body []byte, opts report.Options) (*report.Data, error) {
	solver := h.clients.Solver()

	if q.problem == report.ProblemTriangulation {
		req, err := input.ReadTriangulation(bytes.NewReader(body), q.input)
		if err != nil {
			return nil, err
		}
		req.Verify = q.verify

		start := time.Now()
		resp, err := solver.Triangulate(ctx, req)
		recordBackend("Triangulate", start, err)
		if err != nil {
			return nil, err
		}
		return report.ForTriangulation(req.Points, resp, opts), nil
	}

	req, err := input.ReadMaxFlow(bytes.NewReader(body), q.input)
	if err != nil {
		return nil, err
	}
	if q.strategy != "" {
		req.Strategy = q.strategy
	}
	req.ReturnPaths = q.paths
	req.Verify = q.verify

	start := time.Now()
	resp, err := solver.ComputeMaxFlow(ctx, req)
	recordBackend("ComputeMaxFlow", start, err)
	if err != nil {
		return nil, err
	}
	return report.ForMaxFlow(req.NodeCount, resp, opts), nil
}

func formatFromContentType(contentType string) input.Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return input.FormatText
	}
	switch mediaType {
	case "application/json":
		return input.FormatJSON
	case "application/geo+json":
		return input.FormatGeoJSON
	case "application/vnd.google.polyline":
		return input.FormatPolyline
	default:
		return input.FormatText
	}
}

func boolParam(v, name string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apperror.Newf(apperror.CodeInvalidArgument, "%s must be a boolean, got %q", name, v).
			WithField(name)
	}
	return b, nil
}
