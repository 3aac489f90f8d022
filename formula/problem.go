package formula

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidProblem is returned, possibly wrapped, when a problem instance cannot be solved
// because it is malformed.
var ErrInvalidProblem = errors.New("invalid problem instance")

// A Tracker is notified of the evaluation of each clause of a problem.
// Exactly one of its methods is called per clause, in the order the clauses appear in the problem.
type Tracker interface {
	ClauseSatisfied(c *Clause)
	ClauseUnsatisfied(c *Clause)
}

// A Problem is a weighted CNF formula: a list of clauses & a weight for each var.
type Problem struct {
	NbVars  int       // Total nb of vars
	Weights []int     // Weight of each var when it is bound to true
	Clauses []*Clause // List of clauses, in their original order
	Names   []string  // Human-readable name of each var. Can be nil.
}

// New returns a problem whose clauses are given as DIMACS-like slices of ints.
// The number of vars is len(weights).
func New(weights []int, clauses [][]int) (*Problem, error) {
	pb := Problem{
		NbVars:  len(weights),
		Weights: weights,
		Clauses: make([]*Clause, len(clauses)),
	}
	for i, line := range clauses {
		lits := make([]Lit, len(line))
		for j, val := range line {
			if val == 0 {
				return nil, errors.Wrapf(ErrInvalidProblem, "null literal in clause #%d", i+1)
			}
			lits[j] = IntToLit(val)
		}
		pb.Clauses[i] = NewClause(lits)
	}
	if err := pb.Validate(); err != nil {
		return nil, err
	}
	return &pb, nil
}

// Validate checks the problem is a well-formed weighted 3-CNF instance.
// The returned error, if any, wraps ErrInvalidProblem.
func (pb *Problem) Validate() error {
	if pb.NbVars < 1 {
		return errors.Wrap(ErrInvalidProblem, "no variable")
	}
	if len(pb.Weights) != pb.NbVars {
		return errors.Wrapf(ErrInvalidProblem, "%d weights for %d vars", len(pb.Weights), pb.NbVars)
	}
	for i, w := range pb.Weights {
		if w <= 0 {
			return errors.Wrapf(ErrInvalidProblem, "weight %d of var %d is not positive", w, i+1)
		}
	}
	if pb.Names != nil && len(pb.Names) != pb.NbVars {
		return errors.Wrapf(ErrInvalidProblem, "%d names for %d vars", len(pb.Names), pb.NbVars)
	}
	if len(pb.Clauses) == 0 {
		return errors.Wrap(ErrInvalidProblem, "no clause")
	}
	if minClauses := (pb.NbVars + MaxClauseLen - 1) / MaxClauseLen; len(pb.Clauses) < minClauses {
		return errors.Wrapf(ErrInvalidProblem, "%d clauses cannot cover %d vars", len(pb.Clauses), pb.NbVars)
	}
	for i, c := range pb.Clauses {
		if c.Len() == 0 || c.Len() > MaxClauseLen {
			return errors.Wrapf(ErrInvalidProblem, "clause #%d has %d literals", i+1, c.Len())
		}
		for _, lit := range c.lits {
			if v := lit.Var(); v < 0 || int(v) >= pb.NbVars {
				return errors.Wrapf(ErrInvalidProblem, "invalid literal %d in clause #%d for problem with %d vars only", lit.Int(), i+1, pb.NbVars)
			}
		}
	}
	return nil
}

// Evaluate evaluates each clause of pb against genome and reports the result of each evaluation to t.
func (pb *Problem) Evaluate(genome []bool, t Tracker) {
	for _, c := range pb.Clauses {
		if c.Satisfied(genome) {
			t.ClauseSatisfied(c)
		} else {
			t.ClauseUnsatisfied(c)
		}
	}
}

// Weight returns the sum of the weights of the vars bound to true in genome.
func (pb *Problem) Weight(genome []bool) int {
	w := 0
	for i, val := range genome {
		if val {
			w += pb.Weights[i]
		}
	}
	return w
}

// TotalWeight returns the sum of all weights.
func (pb *Problem) TotalWeight() int {
	w := 0
	for _, wi := range pb.Weights {
		w += wi
	}
	return w
}

// NbSatisfied returns the number of clauses satisfied by genome.
func (pb *Problem) NbSatisfied(genome []bool) int {
	nb := 0
	for _, c := range pb.Clauses {
		if c.Satisfied(genome) {
			nb++
		}
	}
	return nb
}

// Unsatisfied returns the indices of the clauses that are not satisfied by genome.
func (pb *Problem) Unsatisfied(genome []bool) []int {
	var res []int
	for i, c := range pb.Clauses {
		if !c.Satisfied(genome) {
			res = append(res, i)
		}
	}
	return res
}

// Name returns the human-readable name of v.
func (pb *Problem) Name(v Var) string {
	if pb.Names != nil {
		return pb.Names[v]
	}
	return fmt.Sprintf("x%03d", v.Int())
}

func (pb *Problem) names() []string {
	if pb.Names != nil {
		return pb.Names
	}
	names := make([]string, pb.NbVars)
	for i := range names {
		names[i] = pb.Name(Var(i))
	}
	return names
}

// ClauseString returns the ith clause in the text format, using the names of the vars.
func (pb *Problem) ClauseString(i int) string {
	return pb.Clauses[i].format(pb.names())
}

// CNF returns a DIMACS CNF representation of the problem, with weights on a "w" line.
func (pb *Problem) CNF() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "p cnf %d %d\n", pb.NbVars, len(pb.Clauses))
	sb.WriteString("w")
	for _, w := range pb.Weights {
		fmt.Fprintf(&sb, " %d", w)
	}
	sb.WriteString(" 0\n")
	for _, clause := range pb.Clauses {
		fmt.Fprintf(&sb, "%s\n", clause.CNF())
	}
	return sb.String()
}

// String returns the problem in the text format accepted by Parse.
func (pb *Problem) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", pb.NbVars)
	for _, w := range pb.Weights {
		fmt.Fprintf(&sb, " %d", w)
	}
	names := pb.names()
	for i, c := range pb.Clauses {
		if i == 0 {
			sb.WriteString(" ")
		} else {
			sb.WriteString(" & ")
		}
		sb.WriteString(c.format(names))
	}
	return sb.String()
}
