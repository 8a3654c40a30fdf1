package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/apperror"
	"algolab/pkg/client"
	"algolab/pkg/input"
	"algolab/pkg/logger"
	"algolab/pkg/report"
	solversvc "algolab/services/solver-svc"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

const usage = `usage: algolab <command> [flags]

commands:
  triangulate   minimum-cost triangulation of a convex polygon
  maxflow       maximum flow and minimum cut from node 1 to node n
  algorithms    list engines and server limits

run "algolab <command> -h" for the flags of a command
`

// solver общий контракт локального сервиса и gRPC клиента
type solver interface {
	Triangulate(ctx context.Context, req *solverv1.TriangulateRequest) (*solverv1.TriangulateResponse, error)
	ComputeMaxFlow(ctx context.Context, req *solverv1.MaxFlowRequest) (*solverv1.MaxFlowResponse, error)
	GetAlgorithms(ctx context.Context) (*solverv1.GetAlgorithmsResponse, error)
}

// localSolver вызывает движки в процессе
type localSolver struct {
	svc solverv1.SolverServiceServer
}

func (l localSolver) Triangulate(ctx context.Context, req *solverv1.TriangulateRequest) (*solverv1.TriangulateResponse, error) {
	return l.svc.Triangulate(ctx, req)
}

func (l localSolver) ComputeMaxFlow(ctx context.Context, req *solverv1.MaxFlowRequest) (*solverv1.MaxFlowResponse, error) {
	return l.svc.ComputeMaxFlow(ctx, req)
}

func (l localSolver) GetAlgorithms(ctx context.Context) (*solverv1.GetAlgorithmsResponse, error) {
	return l.svc.GetAlgorithms(ctx, &solverv1.GetAlgorithmsRequest{})
}

type options struct {
	in          string
	inputFormat string
	format      string
	out         string
	strategy    string
	remote      string
	title       string
	paths       bool
	verify      bool
	timeout     time.Duration
	logLevel    string
}

type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// run разбирает аргументы и выполняет команду, возвращает код выхода
func run(ctx context.Context, args []string, e env) int {
	if len(args) == 0 {
		fmt.Fprint(e.stderr, usage)
		return exitUsage
	}

	cmd, args := args[0], args[1:]
	switch cmd {
	case "triangulate", "maxflow", "algorithms":
	case "-h", "-help", "--help", "help":
		fmt.Fprint(e.stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(e.stderr, "algolab: unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}

	opts, err := parseFlags(cmd, args, e.stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	logger.InitWithWriter(e.stderr, opts.logLevel, "text")

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	s, closeFn, err := newSolver(ctx, opts.remote)
	if err != nil {
		return fail(e.stderr, err)
	}
	defer closeFn()

	if cmd == "algorithms" {
		resp, err := s.GetAlgorithms(ctx)
		if err != nil {
			return fail(e.stderr, err)
		}
		enc := json.NewEncoder(e.stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return fail(e.stderr, err)
		}
		return exitOK
	}

	if err := solve(ctx, cmd, s, opts, e); err != nil {
		return fail(e.stderr, err)
	}
	return exitOK
}

func parseFlags(cmd string, args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("algolab "+cmd, flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.remote, "remote", "", "solver-svc address (host:port); empty solves locally")
	fs.DurationVar(&opts.timeout, "timeout", 0, "overall deadline, 0 = none")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "debug, info, warn or error (logs go to stderr)")

	if cmd != "algorithms" {
		fs.StringVar(&opts.in, "in", "", "input file, stdin when empty or -")
		fs.StringVar(&opts.inputFormat, "input-format", "", "text, json, geojson or polyline (default: by file extension)")
		fs.StringVar(&opts.format, "format", "", "text, json, csv, markdown, xlsx or pdf (default: by -out extension, else text)")
		fs.StringVar(&opts.out, "out", "", "output file, stdout when empty")
		fs.StringVar(&opts.title, "title", "", "report title")
		fs.BoolVar(&opts.verify, "verify", false, "re-check the result before printing it")
	}
	if cmd == "maxflow" {
		fs.StringVar(&opts.strategy, "strategy", "", "augmenting path search: dfs or bfs")
		fs.BoolVar(&opts.paths, "paths", false, "include augmenting paths in the report")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(stderr, "algolab %s: unexpected arguments %v\n", cmd, fs.Args())
		return nil, fmt.Errorf("unexpected arguments")
	}
	return opts, nil
}

func newSolver(ctx context.Context, remote string) (solver, func(), error) {
	if remote == "" {
		return localSolver{svc: solversvc.NewLocalServer()}, func() {}, nil
	}

	cfg := client.DefaultClientConfig()
	cfg.Address = remote
	sc, err := client.NewSolverClient(ctx, cfg)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.CodeUnavailable, "connect to "+remote)
	}
	logger.Debug("Using remote solver", "address", remote)
	return sc, func() { _ = sc.Close() }, nil
}

func solve(ctx context.Context, cmd string, s solver, opts *options, e env) error {
	format := opts.format
	if format == "" {
		format = formatFromPath(opts.out)
	}
	renderer, err := report.New(format)
	if err != nil {
		return err
	}

	r, inFormat, closeIn, err := openInput(opts, e.stdin)
	if err != nil {
		return err
	}
	defer closeIn()

	ropts := report.DefaultOptions()
	ropts.Title = opts.title

	var data *report.Data
	switch cmd {
	case "triangulate":
		req, err := input.ReadTriangulation(r, inFormat)
		if err != nil {
			return err
		}
		req.Verify = opts.verify

		resp, err := s.Triangulate(ctx, req)
		if err != nil {
			return err
		}
		data = report.ForTriangulation(req.Points, resp, ropts)

	default:
		req, err := input.ReadMaxFlow(r, inFormat)
		if err != nil {
			return err
		}
		if opts.strategy != "" {
			req.Strategy = opts.strategy
		}
		req.ReturnPaths = opts.paths
		req.Verify = opts.verify

		resp, err := s.ComputeMaxFlow(ctx, req)
		if err != nil {
			return err
		}
		data = report.ForMaxFlow(req.NodeCount, resp, ropts)
	}

	out, err := report.Render(ctx, renderer, data, 0)
	if err != nil {
		return err
	}

	if opts.out == "" || opts.out == "-" {
		_, err = e.stdout.Write(out)
		return err
	}
	if err := os.WriteFile(opts.out, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.out, err)
	}
	logger.Info("Report written", "path", opts.out, "format", renderer.Format(), "size", len(out))
	return nil
}

func openInput(opts *options, stdin io.Reader) (io.Reader, input.Format, func(), error) {
	format := input.DetectFormat(opts.in)
	if opts.inputFormat != "" {
		f, err := input.ParseFormat(opts.inputFormat)
		if err != nil {
			return nil, "", nil, err
		}
		format = f
	}

	if opts.in == "" || opts.in == "-" {
		return stdin, format, func() {}, nil
	}

	f, err := os.Open(opts.in)
	if err != nil {
		return nil, "", nil, apperror.Wrap(err, apperror.CodeNotFound, "open "+opts.in)
	}
	return f, format, func() { _ = f.Close() }, nil
}

// formatFromPath выбирает формат отчёта по расширению -out
func formatFromPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	for _, f := range report.Formats {
		r, err := report.New(string(f))
		if err == nil && r.Extension() == ext {
			return string(f)
		}
	}
	return ""
}

func fail(stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "algolab: %v\n", err)
	return exitError
}
