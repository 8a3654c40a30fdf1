// Package graph provides the dense matrix representation and the search
// primitives shared by the augmenting-path flow algorithms.
//
// Nodes are 0-based indices. All searches scan neighbours in ascending
// index order, so results are reproducible for identical input.
package graph

import "fmt"

// Matrix is an n×n matrix of int64 stored row-major in a single slice.
//
// It is used for capacities, residual capacities and flows. A Matrix is
// not safe for concurrent mutation; every solve owns its own copies.
type Matrix struct {
	n     int
	cells []int64
}

// NewMatrix creates a zero-filled n×n matrix.
func NewMatrix(n int) *Matrix {
	if n < 0 {
		n = 0
	}
	return &Matrix{
		n:     n,
		cells: make([]int64, n*n),
	}
}

// Size returns the number of rows (and columns).
func (m *Matrix) Size() int {
	return m.n
}

// Get returns the value at (u, v).
func (m *Matrix) Get(u, v int) int64 {
	return m.cells[u*m.n+v]
}

// Set stores c at (u, v).
func (m *Matrix) Set(u, v int, c int64) {
	m.cells[u*m.n+v] = c
}

// Add adds d to the value at (u, v).
func (m *Matrix) Add(u, v int, d int64) {
	m.cells[u*m.n+v] += d
}

// Row returns row u as a slice view. Writes through the slice modify the matrix.
func (m *Matrix) Row(u int) []int64 {
	return m.cells[u*m.n : (u+1)*m.n]
}

// Clone returns a deep copy.
func (m *Matrix) Clone() *Matrix {
	cells := make([]int64, len(m.cells))
	copy(cells, m.cells)
	return &Matrix{n: m.n, cells: cells}
}

// Equal reports whether both matrices have the same size and contents.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.n != other.n {
		return false
	}
	for i, c := range m.cells {
		if other.cells[i] != c {
			return false
		}
	}
	return true
}

// RowSum returns the sum of row u (total outgoing value of node u).
func (m *Matrix) RowSum(u int) int64 {
	var sum int64
	for _, c := range m.Row(u) {
		sum += c
	}
	return sum
}

// ColSum returns the sum of column v (total incoming value of node v).
func (m *Matrix) ColSum(v int) int64 {
	var sum int64
	for u := 0; u < m.n; u++ {
		sum += m.cells[u*m.n+v]
	}
	return sum
}

// String renders the matrix one row per line. Intended for debugging and test failures.
func (m *Matrix) String() string {
	s := ""
	for u := 0; u < m.n; u++ {
		s += fmt.Sprintln(m.Row(u))
	}
	return s
}
