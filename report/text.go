package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/crillab/gensat/exact"
	"github.com/crillab/gensat/formula"
	"github.com/crillab/gensat/genetic"
)

// Text writes results in a DIMACS-like format: a status line starting with "s",
// a model line starting with "v", and comment lines starting with "c".
type Text struct {
	W       io.Writer
	Problem *formula.Problem
	Verbose bool // Also outputs impact, heat map, bindings by name and unsatisfied clauses
}

// NewText returns a text reporter writing to w.
func NewText(w io.Writer, pb *formula.Problem, verbose bool) *Text {
	return &Text{W: w, Problem: pb, Verbose: verbose}
}

// Report implements genetic.Reporter.
func (t *Text) Report(res genetic.Result) error {
	ew := &errWriter{w: t.W}
	if res.Outcome == genetic.Solved {
		ew.printf("s SATISFIABLE\n")
	} else {
		ew.printf("s UNKNOWN\n")
		ew.printf("c no feasible solution found, best partial solution follows\n")
	}
	ew.printf("v %s\n", model(res.Model))
	ew.printf("c weight: %d\n", res.Weight)
	ew.printf("c fitness: %d\n", res.Fitness)
	ew.printf("c satisfied clauses: %d/%d\n", res.CorrectClauses, res.NbClauses)
	ew.printf("c generations: %d\n", res.Generations)
	ew.printf("c converged: %t\n", res.Converged)
	ew.printf("c certainty: %.1f%%\n", res.Certainty)
	ew.printf("c seed: %d\n", res.Seed)
	ew.printf("c elapsed: %s\n", res.Elapsed)
	if t.Verbose {
		ew.printf("c impact: %s\n", ints(res.Impact))
		ew.printf("c heat map: %s\n", ints(res.HeatMap))
		ew.printf("c nb improvements: %d\n", res.Stats.NbImprovements)
		ew.printf("c nb crossovers: %d\nc nb pass-throughs: %d\n", res.Stats.NbCrossovers, res.Stats.NbPassThroughs)
		ew.printf("c nb mutation increases: %d\nc nb mutation resets: %d\n", res.Stats.NbMutationIncreases, res.Stats.NbMutationResets)
		t.bindings(ew, res.Model)
		t.unsatisfied(ew, res.Unsatisfied)
	}
	return errors.Wrap(ew.err, "could not write report")
}

// Exact writes the result of an exact method.
func (t *Text) Exact(res exact.Result) error {
	ew := &errWriter{w: t.W}
	switch res.Status {
	case formula.Sat:
		ew.printf("s OPTIMUM FOUND\n")
	case formula.Unsat:
		ew.printf("s UNSATISFIABLE\n")
	default:
		ew.printf("s INDETERMINATE\n")
	}
	if res.Model != nil {
		ew.printf("v %s\n", model(res.Model))
		ew.printf("c weight: %d\n", res.Weight)
		ew.printf("c satisfied clauses: %d/%d\n", res.CorrectClauses, len(t.Problem.Clauses))
		if t.Verbose {
			t.bindings(ew, res.Model)
			t.unsatisfied(ew, t.Problem.Unsatisfied(res.Model))
		}
	}
	return errors.Wrap(ew.err, "could not write report")
}

// Check writes the result of a satisfiability check.
func (t *Text) Check(res exact.Result) error {
	ew := &errWriter{w: t.W}
	switch res.Status {
	case formula.Sat:
		ew.printf("s SATISFIABLE\n")
		ew.printf("v %s\n", model(res.Model))
		ew.printf("c weight: %d\n", res.Weight)
	case formula.Unsat:
		ew.printf("s UNSATISFIABLE\n")
	default:
		ew.printf("s INDETERMINATE\n")
	}
	return errors.Wrap(ew.err, "could not write report")
}

// MUS writes the clauses of a minimal unsatisfiable subset, given by their indices.
func (t *Text) MUS(indices []int) error {
	ew := &errWriter{w: t.W}
	ew.printf("c minimal unsatisfiable subset of %d clause(s):\n", len(indices))
	for _, i := range indices {
		ew.printf("c   #%d: %s\n", i+1, t.Problem.ClauseString(i))
	}
	return errors.Wrap(ew.err, "could not write report")
}

func (t *Text) bindings(ew *errWriter, genome []bool) {
	if t.Problem == nil || t.Problem.Names == nil {
		return
	}
	for i, val := range genome {
		ew.printf("c %s: %t\n", t.Problem.Name(formula.Var(i)), val)
	}
}

func (t *Text) unsatisfied(ew *errWriter, indices []int) {
	if t.Problem == nil {
		return
	}
	for _, i := range indices {
		ew.printf("c unsatisfied clause #%d: %s\n", i+1, t.Problem.ClauseString(i))
	}
}

// model returns genome as a 0-terminated list of DIMACS literals.
func model(genome []bool) string {
	var sb strings.Builder
	for i, val := range genome {
		if val {
			fmt.Fprintf(&sb, "%d ", i+1)
		} else {
			fmt.Fprintf(&sb, "%d ", -i-1)
		}
	}
	sb.WriteString("0")
	return sb.String()
}

func ints(vals []int) string {
	parts := make([]string, len(vals))
	for i, val := range vals {
		parts[i] = fmt.Sprint(val)
	}
	return strings.Join(parts, " ")
}

// errWriter remembers the first error encountered, so that only the final result has to be checked.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
