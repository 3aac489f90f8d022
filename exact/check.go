package exact

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/inter"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/crillab/gensat/formula"
)

const (
	satisfiable   = 1
	unsatisfiable = -1
)

// pollPeriod is the delay between two checks of the state of a running SAT solver.
const pollPeriod = 20 * time.Millisecond

// Check checks whether pb is satisfiable, regardless of weights.
// If it is, the returned model satisfies all clauses, but is not necessarily the one with the highest weight.
// If ctx is done before a result is available, the returned status is formula.Indet.
func Check(ctx context.Context, pb *formula.Problem) (Result, error) {
	g := gini.New()
	used := make([]bool, pb.NbVars) // Vars the SAT solver knows about
	for _, c := range pb.Clauses {
		for _, lit := range c.Lits() {
			g.Add(z.Dimacs2Lit(lit.Int()))
			used[lit.Var()] = true
		}
		g.Add(z.LitNull)
	}
	switch waitForSolution(ctx, g.GoSolve()) {
	case satisfiable:
		genome := make([]bool, pb.NbVars)
		for i := range genome {
			genome[i] = !used[i] || g.Value(z.Dimacs2Lit(i+1)) // Unconstrained vars only add weight
		}
		return newResult(pb, formula.Sat, genome), nil
	case unsatisfiable:
		return Result{Status: formula.Unsat}, nil
	default:
		if err := ctx.Err(); err != nil {
			return Result{Status: formula.Indet}, errors.Wrap(err, "satisfiability check interrupted")
		}
		return Result{Status: formula.Indet}, errors.New("satisfiability check gave no result")
	}
}

func waitForSolution(ctx context.Context, gs inter.Solve) int {
	t := time.NewTicker(pollPeriod)
	defer t.Stop()
	for {
		if result, ok := gs.Test(); ok {
			return result
		}
		select {
		case <-ctx.Done():
			return gs.Stop()
		case <-t.C:
		}
	}
}
