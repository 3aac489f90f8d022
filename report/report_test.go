package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/crillab/gensat/exact"
	"github.com/crillab/gensat/formula"
	"github.com/crillab/gensat/genetic"
)

func problem(t *testing.T) *formula.Problem {
	t.Helper()
	pb, err := formula.Parse(strings.NewReader("3 5 3 2 (a | !b) & (!a | c) & (!c)"))
	require.NoError(t, err)
	return pb
}

func partial(pb *formula.Problem) genetic.Result {
	model := genetic.Genome{true, false, false}
	return genetic.Result{
		Outcome:        genetic.NoFeasibleSolution,
		Model:          model,
		Fitness:        6,
		Weight:         5,
		CorrectClauses: 2,
		NbClauses:      3,
		Unsatisfied:    pb.Unsatisfied(model),
		Impact:         []int{2, 2, 2},
		HeatMap:        []int{1, 0, 3},
		Generations:    12,
		Converged:      true,
		Certainty:      92.5,
		Seed:           42,
		Stats:          genetic.Stats{NbGenerations: 12, NbImprovements: 2, NbCrossovers: 30},
		Elapsed:        3 * time.Millisecond,
	}
}

func TestTextReport(t *testing.T) {
	pb := problem(t)
	var buf bytes.Buffer
	require.NoError(t, NewText(&buf, pb, true).Report(partial(pb)))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "s UNKNOWN\n"), out)
	for _, line := range []string{
		"v 1 -2 -3 0",
		"c weight: 5",
		"c satisfied clauses: 2/3",
		"c certainty: 92.5%",
		"c seed: 42",
		"c heat map: 1 0 3",
		"c a: true",
		"c unsatisfied clause #2: (!a | c)",
	} {
		assert.Contains(t, out, line+"\n")
	}
}

func TestTextReportQuiet(t *testing.T) {
	pb := problem(t)
	res := partial(pb)
	res.Outcome = genetic.Solved
	var buf bytes.Buffer
	require.NoError(t, NewText(&buf, pb, false).Report(res))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "s SATISFIABLE\nv 1 -2 -3 0\n"), out)
	assert.NotContains(t, out, "heat map")
	assert.NotContains(t, out, "unsatisfied clause")
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestTextReportError(t *testing.T) {
	pb := problem(t)
	err := NewText(failingWriter{}, pb, true).Report(partial(pb))
	assert.ErrorContains(t, err, "broken pipe")
}

func TestTextExact(t *testing.T) {
	pb := problem(t)
	var buf bytes.Buffer
	txt := NewText(&buf, pb, false)
	require.NoError(t, txt.Exact(exact.Result{Status: formula.Sat, Model: []bool{false, false, false}, CorrectClauses: 3}))
	assert.Equal(t, "s OPTIMUM FOUND\nv -1 -2 -3 0\nc weight: 0\nc satisfied clauses: 3/3\n", buf.String())
	buf.Reset()
	require.NoError(t, txt.Check(exact.Result{Status: formula.Unsat}))
	assert.Equal(t, "s UNSATISFIABLE\n", buf.String())
}

func TestTextMUS(t *testing.T) {
	pb := problem(t)
	var buf bytes.Buffer
	require.NoError(t, NewText(&buf, pb, false).MUS([]int{1, 2}))
	assert.Equal(t, "c minimal unsatisfiable subset of 2 clause(s):\nc   #2: (!a | c)\nc   #3: (!c)\n", buf.String())
}

func TestYAMLReport(t *testing.T) {
	pb := problem(t)
	var buf bytes.Buffer
	y := NewYAML(&buf, pb)
	res := partial(pb)
	require.NoError(t, y.Report(res))
	require.NoError(t, y.Report(res))
	require.NoError(t, y.Close())

	dec := yaml.NewDecoder(&buf)
	expected := Document{
		Outcome:          "NO FEASIBLE SOLUTION",
		Model:            []int{1, -2, -3},
		Assignment:       map[string]bool{"a": true, "b": false, "c": false},
		Weight:           5,
		Fitness:          6,
		SatisfiedClauses: 2,
		TotalClauses:     3,
		Unsatisfied:      []string{"(!a | c)"},
		Impact:           []int{2, 2, 2},
		HeatMap:          []int{1, 0, 3},
		Generations:      12,
		Converged:        true,
		Certainty:        92.5,
		Seed:             42,
		Elapsed:          "3ms",
		Stats:            Stats{Improvements: 2, Crossovers: 30},
	}
	for i := 0; i < 2; i++ {
		var doc Document
		require.NoError(t, dec.Decode(&doc))
		if diff := cmp.Diff(expected, doc); diff != "" {
			t.Errorf("document #%d mismatch (-want +got):\n%s", i, diff)
		}
	}
}
