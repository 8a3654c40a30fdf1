package input

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	solverv1 "algolab/api/solver/v1"
	"algolab/pkg/apperror"
)

const maxLineSize = 16 * 1024 * 1024

// MaxDeclaredCount верхняя граница n в заголовке текстового формата.
// Лимиты решателя (solver.max_vertices, solver.max_nodes) строже и
// проверяются позже; эта граница держит разбор пропорциональным входу.
const MaxDeclaredCount = 1 << 16

func checkDeclaredCount(n int, what string) error {
	if n > MaxDeclaredCount {
		return apperror.Newf(apperror.CodeInputTooLarge,
			"declared %s %d exceeds %d", what, n, MaxDeclaredCount)
	}
	return nil
}

// ParseTriangulationText читает "n x1 y1 x2 y2 ..." (токены через любые пробелы)
func ParseTriangulationText(r io.Reader) ([]solverv1.Point, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	sc.Split(bufio.ScanWords)

	next := func(what string) (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		if err := sc.Err(); err != nil {
			return "", apperror.Wrap(err, apperror.CodeParseError, "failed to read input")
		}
		return "", apperror.Newf(apperror.CodeParseError, "unexpected end of input: expected %s", what)
	}

	tok, err := next("vertex count")
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(tok)
	if err != nil || n < 0 {
		return nil, apperror.Newf(apperror.CodeParseError, "invalid vertex count %q", tok)
	}
	if err := checkDeclaredCount(n, "vertex count"); err != nil {
		return nil, err
	}

	// растёт по мере чтения: n из заголовка ещё ничем не подтверждён
	points := []solverv1.Point{}
	for i := 0; i < n; i++ {
		var xy [2]float64
		for c := range xy {
			tok, err := next("coordinate of vertex " + strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			xy[c], err = strconv.ParseFloat(tok, 64)
			if err != nil {
				return nil, apperror.Newf(apperror.CodeParseError,
					"vertex %d: invalid coordinate %q", i, tok)
			}
		}
		points = append(points, solverv1.Point{X: xy[0], Y: xy[1]})
	}

	if sc.Scan() {
		return nil, apperror.Newf(apperror.CodeParseError,
			"unexpected data after %d vertices: %q", n, sc.Text())
	}

	return points, nil
}

// ParseMaxFlowText читает сеть: первая строка n, затем по строке на узел
// 1..n-1 вида "dest cap dest cap ...". Пустая строка - узел без рёбер.
// Недостающие в конце строки считаются пустыми; допустима и n-я строка (сток).
func ParseMaxFlowText(r io.Reader) (*solverv1.MaxFlowRequest, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	// первая непустая строка - число узлов
	header := ""
	for sc.Scan() {
		if header = strings.TrimSpace(sc.Text()); header != "" {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeParseError, "failed to read input")
	}
	if header == "" {
		return nil, apperror.New(apperror.CodeParseError, "unexpected end of input: expected node count")
	}

	n, err := strconv.Atoi(header)
	if err != nil {
		return nil, apperror.Newf(apperror.CodeParseError, "invalid node count %q", header)
	}
	if err := checkDeclaredCount(n, "node count"); err != nil {
		return nil, err
	}

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeParseError, "failed to read input")
	}

	// хвостовые пустые строки сверх n-1 ничего не значат
	for len(lines) > n-1 && len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if n >= 1 && len(lines) > n {
		return nil, apperror.Newf(apperror.CodeInvalidNodeCount,
			"got %d adjacency lines for %d nodes", len(lines), n)
	}

	adjacency := make([][]int64, 0, len(lines))
	for i, line := range lines {
		row, err := parseEdgeLine(line)
		if err != nil {
			return nil, apperror.Newf(apperror.CodeParseError, "node %d: %s", i+1, err.Error())
		}
		adjacency = append(adjacency, row)
	}
	for len(adjacency) < n-1 {
		adjacency = append(adjacency, []int64{})
	}

	return &solverv1.MaxFlowRequest{NodeCount: n, Adjacency: adjacency}, nil
}

func parseEdgeLine(line string) ([]int64, error) {
	fields := strings.Fields(line)
	row := make([]int64, len(fields))
	for j, f := range fields {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", f)
		}
		row[j] = v
	}
	return row, nil
}
