// Package exact provides complete methods to solve weighted 3-CNF problems.
// They are meant to assess the quality of the solutions found by the genetic solver on small instances.
package exact

import (
	"context"

	"github.com/pkg/errors"

	"github.com/crillab/gensat/formula"
)

// MaxEnumerationVars is the maximum number of vars of a problem that can be solved by Enumerate.
const MaxEnumerationVars = 30

// ErrTooLarge is returned when a problem has too many vars to be enumerated.
var ErrTooLarge = errors.New("problem too large")

// checkPeriod is the number of assignments enumerated between two checks of the context.
const checkPeriod = 1 << 16

// A Result is the outcome of an exact method.
type Result struct {
	Status         formula.Status
	Model          []bool // Optimal model if Status is Sat. Assignment satisfying the most clauses if Status is Unsat, if available.
	Weight         int
	CorrectClauses int
}

func newResult(pb *formula.Problem, status formula.Status, model []bool) Result {
	res := Result{Status: status, Model: model}
	if model != nil {
		res.Weight = pb.Weight(model)
		res.CorrectClauses = pb.NbSatisfied(model)
	}
	return res
}

// Enumerate solves pb by trying every assignment, one after the other.
// If pb is satisfiable, the returned model is the satisfying assignment with the highest weight.
// Else, the returned model is the assignment satisfying the most clauses.
// Problems with more than MaxEnumerationVars vars are rejected with ErrTooLarge.
func Enumerate(ctx context.Context, pb *formula.Problem) (Result, error) {
	if pb.NbVars > MaxEnumerationVars {
		return Result{Status: formula.Indet}, errors.Wrapf(ErrTooLarge, "%d vars, cannot enumerate more than %d", pb.NbVars, MaxEnumerationVars)
	}
	var (
		genome     = make([]bool, pb.NbVars)
		best       []bool
		bestWeight = -1 // Weight of best, if it is a model
		bestNbSat  = -1 // Nb of clauses satisfied by best, if it is not a model
		nbClauses  = len(pb.Clauses)
	)
	for mask := uint64(0); mask < 1<<pb.NbVars; mask++ {
		if mask%checkPeriod == 0 {
			if err := ctx.Err(); err != nil {
				return Result{Status: formula.Indet}, errors.Wrap(err, "enumeration interrupted")
			}
		}
		for i := range genome {
			genome[i] = mask&(1<<i) != 0
		}
		nbSat := pb.NbSatisfied(genome)
		if nbSat == nbClauses {
			if w := pb.Weight(genome); w > bestWeight {
				bestWeight = w
				best = append(best[:0], genome...)
			}
		} else if bestWeight == -1 && nbSat > bestNbSat {
			bestNbSat = nbSat
			best = append(best[:0], genome...)
		}
	}
	if bestWeight == -1 {
		return newResult(pb, formula.Unsat, best), nil
	}
	return newResult(pb, formula.Sat, best), nil
}
