// Command algolab solves polygon triangulation and max-flow problems from
// the command line.
//
//	algolab triangulate -in polygon.txt
//	algolab maxflow -in network.json -strategy bfs -out report.pdf
//	algolab maxflow -remote localhost:50052 < network.txt
//
// Without -remote the engines run in process. Results are printed in the
// classic text layout unless -format (or the -out extension) asks for
// json, csv, markdown, xlsx or pdf.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], env{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr})
	stop()
	os.Exit(code)
}
