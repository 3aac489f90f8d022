package exact

import (
	"context"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/crillab/gensat/formula"
)

// ErrSatisfiable is returned when asking why a satisfiable problem is unsatisfiable.
var ErrSatisfiable = errors.New("problem is satisfiable")

// MUS returns the indices, in increasing order, of a Minimal Unsatisfiable Subset of the clauses of pb.
// A MUS is an unsatisfiable subset such that, if any of its clause is removed,
// the problem becomes satisfiable. It explains why no assignment can satisfy all clauses.
// The deletion method is used: each clause of an unsatisfiable core is removed in turn,
// and put back if the problem became satisfiable.
// If pb is satisfiable, ErrSatisfiable is returned.
func MUS(ctx context.Context, pb *formula.Problem) ([]int, error) {
	g := gini.New()
	relax := make([]z.Lit, len(pb.Clauses)) // relax[i] true means clause i is ignored
	for i, c := range pb.Clauses {
		for _, lit := range c.Lits() {
			g.Add(z.Dimacs2Lit(lit.Int()))
		}
		relax[i] = z.Dimacs2Lit(pb.NbVars + i + 1)
		g.Add(relax[i])
		g.Add(z.LitNull)
	}
	clauseOf := make(map[z.Lit]int, len(relax))
	for i, r := range relax {
		clauseOf[r.Not()] = i
	}
	solve := func(active []int) (int, error) {
		for _, i := range active {
			g.Assume(relax[i].Not())
		}
		switch res := waitForSolution(ctx, g.GoSolve()); res {
		case satisfiable, unsatisfiable:
			return res, nil
		default:
			if err := ctx.Err(); err != nil {
				return res, errors.Wrap(err, "MUS extraction interrupted")
			}
			return res, errors.New("MUS extraction gave no result")
		}
	}
	all := make([]int, len(pb.Clauses))
	for i := range all {
		all[i] = i
	}
	res, err := solve(all)
	if err != nil {
		return nil, err
	}
	if res == satisfiable {
		return nil, ErrSatisfiable
	}
	// Only clauses from the core found by the solver need to be considered.
	inCore := make([]bool, len(pb.Clauses))
	for _, m := range g.Why(nil) {
		inCore[clauseOf[m]] = true
	}
	for i := range inCore {
		if !inCore[i] {
			continue
		}
		inCore[i] = false
		res, err := solve(indices(inCore))
		if err != nil {
			return nil, err
		}
		if res == satisfiable { // Clause i is necessary
			inCore[i] = true
		}
	}
	return indices(inCore), nil
}

func indices(mask []bool) []int {
	var res []int
	for i, ok := range mask {
		if ok {
			res = append(res, i)
		}
	}
	return res
}
