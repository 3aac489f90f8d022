package formula

import (
	"math/rand/v2"

	"github.com/pkg/errors"
)

// Generate returns a random weighted 3-CNF problem.
// Each clause is made of three distinct vars drawn among nbVars, each of them negated with probability 0.5.
// Weights are drawn uniformly in [1, maxWeight].
// Vars that do not appear in any clause are removed from the problem, so the returned problem may
// have less than nbVars vars.
func Generate(rng *rand.Rand, nbVars, nbClauses, maxWeight int) (*Problem, error) {
	if nbVars < MaxClauseLen {
		return nil, errors.Wrapf(ErrInvalidProblem, "cannot generate a 3-CNF formula over %d vars", nbVars)
	}
	if minClauses := (nbVars + MaxClauseLen - 1) / MaxClauseLen; nbClauses < minClauses {
		return nil, errors.Wrapf(ErrInvalidProblem, "%d clauses cannot cover %d vars", nbClauses, nbVars)
	}
	if maxWeight < 1 {
		return nil, errors.Wrapf(ErrInvalidProblem, "invalid max weight %d", maxWeight)
	}
	clauses := make([][]int, nbClauses)
	used := make([]bool, nbVars)
	for i := range clauses {
		clause := make([]int, 0, MaxClauseLen)
		for len(clause) < MaxClauseLen {
			v := rng.IntN(nbVars)
			if contains(clause, v) {
				continue
			}
			clause = append(clause, v)
			used[v] = true
		}
		clauses[i] = clause
	}
	// Renumber used vars so that they are contiguous.
	renum := make([]int, nbVars)
	nbUsed := 0
	for v, ok := range used {
		if ok {
			nbUsed++
			renum[v] = nbUsed
		}
	}
	for _, clause := range clauses {
		for j, v := range clause {
			clause[j] = renum[v]
			if rng.Float64() < 0.5 {
				clause[j] = -clause[j]
			}
		}
	}
	weights := make([]int, nbUsed)
	for i := range weights {
		weights[i] = 1 + rng.IntN(maxWeight)
	}
	return New(weights, clauses)
}

func contains(vars []int, v int) bool {
	for _, v2 := range vars {
		if v2 == v {
			return true
		}
	}
	return false
}
