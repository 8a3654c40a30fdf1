package algorithms

import (
	"fmt"

	"algolab/pkg/apperror"
)

// VerifyFlow checks a max-flow result against its network:
//   - every listed edge carries 0 < flow ≤ capacity;
//   - flow is conserved at every node except source and sink;
//   - the source's net outflow equals MaxFlow;
//   - the source side contains the source but not the sink;
//   - the capacity crossing the cut equals MaxFlow.
//
// All violations are collected; the returned error is the first one with the
// full list attached under the "violations" detail.
func VerifyFlow(net *Network, res *MaxFlowResult) error {
	v := apperror.NewValidationErrors()
	n := net.NodeCount()

	balance := make([]int64, n+1)
	for _, e := range res.FlowEdges {
		if e.From < 1 || e.From > n || e.To < 1 || e.To > n {
			v.AddError(apperror.CodeFlowViolation, fmt.Sprintf("flow edge %d->%d is out of range", e.From, e.To))
			continue
		}
		if e.Flow <= 0 {
			v.AddError(apperror.CodeFlowViolation, fmt.Sprintf("edge %d->%d lists non-positive flow %d", e.From, e.To, e.Flow))
		}
		if c := net.Capacity(e.From, e.To); e.Flow > c {
			v.AddError(apperror.CodeFlowViolation, fmt.Sprintf("edge %d->%d carries %d over capacity %d", e.From, e.To, e.Flow, c))
		}
		balance[e.From] -= e.Flow
		balance[e.To] += e.Flow
	}

	for node := 1; node <= n; node++ {
		if node == net.Source() || node == net.Sink() {
			continue
		}
		if balance[node] != 0 {
			v.AddError(apperror.CodeConservationViolation,
				fmt.Sprintf("node %d: inflow and outflow differ by %d", node, balance[node]))
		}
	}

	if out := -balance[net.Source()]; out != res.MaxFlow {
		v.AddError(apperror.CodeFlowViolation,
			fmt.Sprintf("source net outflow %d differs from max flow %d", out, res.MaxFlow))
	}

	onSourceSide := make([]bool, n+1)
	for _, node := range res.SourceSide {
		if node >= 1 && node <= n {
			onSourceSide[node] = true
		}
	}
	if !onSourceSide[net.Source()] {
		v.AddError(apperror.CodeCutMismatch, "source side does not contain the source")
	}
	if onSourceSide[net.Sink()] {
		v.AddError(apperror.CodeCutMismatch, "source side contains the sink")
	}

	var cut int64
	for u := 1; u <= n; u++ {
		if !onSourceSide[u] {
			continue
		}
		for w := 1; w <= n; w++ {
			if !onSourceSide[w] {
				cut += net.Capacity(u, w)
			}
		}
	}
	if cut != res.MaxFlow {
		v.AddError(apperror.CodeCutMismatch,
			fmt.Sprintf("cut capacity %d differs from max flow %d", cut, res.MaxFlow))
	}

	if !v.HasErrors() {
		return nil
	}
	return v.First().
		WithSeverity(apperror.SeverityCritical).
		WithDetails("violations", v.ErrorMessages())
}

// VerifyTriangulation checks that a triangulation of n vertices has n-2
// triangles, each with ordered in-range indices, and no repeated apex.
func VerifyTriangulation(n int, res *TriangulationResult) error {
	if len(res.Triangles) != n-2 {
		return apperror.Newf(apperror.CodeInternal,
			"expected %d triangles for %d vertices, got %d", n-2, n, len(res.Triangles)).
			WithSeverity(apperror.SeverityCritical)
	}

	seen := make(map[int]bool, n)
	for _, t := range res.Triangles {
		if t.I < 0 || t.J >= n || t.I >= t.K || t.K >= t.J {
			return apperror.Newf(apperror.CodeInternal, "malformed triangle %s", t).
				WithSeverity(apperror.SeverityCritical)
		}
		if seen[t.K] {
			return apperror.Newf(apperror.CodeInternal, "apex %d reported twice", t.K).
				WithSeverity(apperror.SeverityCritical)
		}
		seen[t.K] = true
	}
	return nil
}
