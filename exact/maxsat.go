package exact

import (
	"github.com/crillab/gophersat/maxsat"

	"github.com/crillab/gensat/formula"
)

// Optimize solves pb as a weighted MaxSAT problem: clauses of pb are hard constraints,
// and each var v is a soft unit clause whose weight is the weight of v.
// Minimizing the cost of falsified soft clauses maximizes the weight of the model.
// If pb is not satisfiable, the returned result has no model.
func Optimize(pb *formula.Problem) Result {
	constrs := make([]maxsat.Constr, 0, len(pb.Clauses)+pb.NbVars)
	for _, c := range pb.Clauses {
		lits := make([]maxsat.Lit, c.Len())
		for i, lit := range c.Lits() {
			lits[i] = maxsatLit(pb, lit)
		}
		constrs = append(constrs, maxsat.HardClause(lits...))
	}
	for i, w := range pb.Weights {
		name := pb.Name(formula.Var(i))
		constrs = append(constrs, maxsat.WeightedClause([]maxsat.Lit{maxsat.Var(name)}, w))
	}
	model, _ := maxsat.New(constrs...).Solve()
	if model == nil {
		return Result{Status: formula.Unsat}
	}
	genome := make([]bool, pb.NbVars)
	for i := range genome {
		genome[i] = model[pb.Name(formula.Var(i))]
	}
	return newResult(pb, formula.Sat, genome)
}

func maxsatLit(pb *formula.Problem, lit formula.Lit) maxsat.Lit {
	name := pb.Name(lit.Var())
	if lit.IsPositive() {
		return maxsat.Var(name)
	}
	return maxsat.Not(name)
}
