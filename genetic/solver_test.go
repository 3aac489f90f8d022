package genetic

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gensat/formula"
)

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testSolver(t *testing.T, pb *formula.Problem, cfg Config) *Solver {
	t.Helper()
	s, err := New(pb, cfg)
	require.NoError(t, err)
	s.Log = quietLogger()
	return s
}

type snapshots []Snapshot

func (s *snapshots) Observe(snap Snapshot) {
	*s = append(*s, snap)
}

type reporter struct {
	results []Result
	err     error
}

func (r *reporter) Report(res Result) error {
	r.results = append(r.results, res)
	return r.err
}

func TestNewErrors(t *testing.T) {
	pb := newProblem(t, []int{5, 3}, []int{1, -2})
	_, err := New(nil, DefaultConfig())
	assert.True(t, errors.Is(err, formula.ErrInvalidProblem))
	_, err = New(&formula.Problem{NbVars: 1, Weights: []int{1}}, DefaultConfig())
	assert.True(t, errors.Is(err, formula.ErrInvalidProblem))
	cfg := DefaultConfig()
	cfg.PopulationSize = 1
	_, err = New(pb, cfg)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestSolveTwoVars(t *testing.T) {
	pb := newProblem(t, []int{5, 3}, []int{1, -2})
	for _, sel := range []SelectionType{SimpleSelection, RankSelection, GroupingSelection, CustomSelection} {
		for _, cross := range []CrossoverType{RandomCrossover, SimpleCrossover, CustomCrossover} {
			t.Run(fmt.Sprintf("%s-%s", sel, cross), func(t *testing.T) {
				cfg := DefaultConfig()
				cfg.PopulationSize = 50
				cfg.Generations = 100
				cfg.Selection = sel
				cfg.Crossover = cross
				cfg.Seed = 42
				res, err := testSolver(t, pb, cfg).Run()
				require.NoError(t, err)
				assert.Equal(t, Solved, res.Outcome)
				assert.Equal(t, Genome{true, true}, res.Model)
				assert.Equal(t, 8, res.Weight)
				assert.Equal(t, 11, res.Fitness)
				assert.Equal(t, 1, res.CorrectClauses)
				assert.Empty(t, res.Unsatisfied)
			})
		}
	}
}

func TestSolveContradiction(t *testing.T) {
	pb := newProblem(t, []int{1}, []int{1}, []int{-1})
	cfg := DefaultConfig()
	cfg.PopulationSize = 10
	cfg.Generations = 50
	cfg.Seed = 1
	res, err := testSolver(t, pb, cfg).Run()
	require.NoError(t, err)
	assert.Equal(t, NoFeasibleSolution, res.Outcome)
	assert.Equal(t, 1, res.CorrectClauses)
	assert.Len(t, res.Unsatisfied, 1)
}

func generated(t *testing.T, seed uint64) *formula.Problem {
	t.Helper()
	pb, err := formula.Generate(rand.New(rand.NewPCG(seed, seed)), 40, 120, 20)
	require.NoError(t, err)
	return pb
}

func TestBestIsMonotonic(t *testing.T) {
	pb := generated(t, 19)
	cfg := DefaultConfig()
	cfg.PopulationSize = 30
	cfg.Generations = 200
	cfg.Seed = 20
	s := testSolver(t, pb, cfg)
	var snaps snapshots
	s.Observer = &snaps
	res, err := s.Run()
	require.NoError(t, err)
	require.NotEmpty(t, snaps)
	assert.Equal(t, 0, snaps[0].Generation)
	for i, snap := range snaps {
		assert.GreaterOrEqual(t, snap.BestKnownFitness, snap.BestFitness, "generation %d", snap.Generation)
		if i > 0 {
			assert.GreaterOrEqual(t, snap.BestKnownFitness, snaps[i-1].BestKnownFitness, "generation %d", snap.Generation)
			assert.Equal(t, snap.BestKnownFitness > snaps[i-1].BestKnownFitness, snap.Improved)
		}
	}
	assert.Equal(t, snaps[len(snaps)-1].BestKnownFitness, res.Fitness)
	assert.Equal(t, len(snaps)-1, res.Generations)
	assert.Equal(t, res.Generations, res.Stats.NbGenerations)
	assert.Equal(t, pb.NbSatisfied(res.Model), res.CorrectClauses)
	assert.Equal(t, pb.Weight(res.Model), res.Weight)
	assert.Equal(t, res.Outcome == Solved, res.CorrectClauses == len(pb.Clauses))
	assert.Equal(t, uint64(20), res.Seed)
}

func TestSameSeedSameResult(t *testing.T) {
	pb := generated(t, 21)
	cfg := DefaultConfig()
	cfg.PopulationSize = 20
	cfg.Generations = 50
	cfg.Seed = 22
	res1, err := testSolver(t, pb, cfg).Run()
	require.NoError(t, err)
	res2, err := testSolver(t, pb, cfg).Run()
	require.NoError(t, err)
	res1.Elapsed, res2.Elapsed = 0, 0
	assert.Equal(t, res1, res2)
}

func TestEvolutionKeepsPopulationSize(t *testing.T) {
	pb := generated(t, 23)
	for _, elites := range []int{0, 1, 2, 5} {
		cfg := DefaultConfig()
		cfg.PopulationSize = 10
		cfg.ElitesCount = elites
		cfg.Seed = 24
		s := testSolver(t, pb, cfg)
		g := NewGeneration(pb, &cfg, s.rng)
		g.InitializePopulation()
		for i := 0; i < 20; i++ {
			g = s.Evolution(g)
			require.Equal(t, 10, g.Size(), "%d elites", elites)
			for j := 1; j < g.Size(); j++ {
				assert.LessOrEqual(t, Compare(g.Entities[j-1], g.Entities[j]), 0)
			}
			assert.GreaterOrEqual(t, s.Best.Fitness, g.Best.Fitness)
		}
	}
}

func TestEvolutionConverges(t *testing.T) {
	pb := generated(t, 25)
	cfg := DefaultConfig()
	cfg.PopulationSize = 10
	cfg.Seed = 26
	s := testSolver(t, pb, cfg)
	g := NewGeneration(pb, &cfg, s.rng)
	e := randomEntity(s.rng, pb.NbVars)
	e.CountFitness(pb, cfg.Bonus())
	for i := 0; i < cfg.PopulationSize; i++ {
		g.add(e)
	}
	g.Sort()
	require.False(t, s.Converged())
	s.Evolution(g)
	assert.True(t, s.Converged())
}

func TestEvolveStopsWhenConverged(t *testing.T) {
	pb := newProblem(t, []int{5, 3}, []int{1, -2})
	cfg := DefaultConfig()
	cfg.PopulationSize = 20
	cfg.Generations = 2000
	cfg.Seed = 27
	s := testSolver(t, pb, cfg)
	s.Evolve()
	assert.True(t, s.Converged())
	assert.Less(t, s.Stats.NbGenerations, cfg.Generations)
}

func stagnantGenerations(t *testing.T, cfg *Config, prev, next []bool) (*Generation, *Generation) {
	t.Helper()
	pb := newProblem(t, []int{5, 3}, []int{1, -2})
	rng := rand.New(rand.NewPCG(28, 29))
	g1, g2 := NewGeneration(pb, cfg, rng), NewGeneration(pb, cfg, rng)
	g1.add(scored(pb, cfg.Bonus(), prev...))
	g2.add(scored(pb, cfg.Bonus(), next...))
	g1.Sort()
	g2.Sort()
	return g1, g2
}

func TestAdaptiveMutation(t *testing.T) {
	pb := newProblem(t, []int{5, 3}, []int{1, -2})
	cfg := DefaultConfig()
	cfg.MutationStep = 2
	s := testSolver(t, pb, cfg)

	// Satisfiable stagnation: one step every 2 generations.
	prev, next := stagnantGenerations(t, &cfg, []bool{true, false}, []bool{true, false})
	s.current = prev
	s.updateMutation(next)
	assert.Equal(t, 1, s.Stagnation())
	assert.InDelta(t, 0.05, s.Mutation(), 1e-9)
	s.updateMutation(next)
	assert.Equal(t, 2, s.Stagnation())
	assert.InDelta(t, 0.10, s.Mutation(), 1e-9)
	for i := 0; i < 20; i++ {
		s.updateMutation(next)
	}
	assert.InDelta(t, cfg.MaximumMutation, s.Mutation(), 1e-9)

	// Improvement: reset, and heat map updated.
	_, better := stagnantGenerations(t, &cfg, []bool{true, false}, []bool{true, true})
	s.updateMutation(better)
	assert.Zero(t, s.Stagnation())
	assert.Equal(t, cfg.MinimumMutation, s.Mutation())
	assert.Equal(t, []int{0, 1}, s.HeatMap)

	// Unsatisfiable stagnation: jump to the maximum.
	prev, next = stagnantGenerations(t, &cfg, []bool{false, true}, []bool{false, true})
	s.current = prev
	s.updateMutation(next)
	s.updateMutation(next)
	assert.Equal(t, cfg.MaximumMutation, s.Mutation())
	assert.False(t, s.Converged())
}

func TestStagnationCap(t *testing.T) {
	pb := newProblem(t, []int{5, 3}, []int{1, -2})
	cfg := DefaultConfig()
	s := testSolver(t, pb, cfg)
	prev, next := stagnantGenerations(t, &cfg, []bool{true, false}, []bool{true, false})
	s.current = prev
	s.stagnation = maxStagnation
	s.updateMutation(next)
	assert.True(t, s.Converged())
}

func TestReporter(t *testing.T) {
	pb := newProblem(t, []int{5, 3}, []int{1, -2})
	cfg := DefaultConfig()
	cfg.PopulationSize = 10
	cfg.Generations = 10
	s := testSolver(t, pb, cfg)
	var r reporter
	s.Reporter = &r
	res, err := s.Run()
	require.NoError(t, err)
	require.Len(t, r.results, 1)
	assert.Equal(t, res, r.results[0])

	r.err = errors.New("disk full")
	_, err = s.Run()
	assert.ErrorContains(t, err, "disk full")
}

func ExampleSolver_Run() {
	pb, err := formula.Parse(strings.NewReader("2 5 3 (x1 | !x2)"))
	if err != nil {
		fmt.Printf("could not parse problem: %v\n", err)
		return
	}
	cfg := DefaultConfig()
	cfg.PopulationSize = 50
	cfg.Seed = 42
	s, err := New(pb, cfg)
	if err != nil {
		fmt.Printf("could not create solver: %v\n", err)
		return
	}
	s.Log = quietLogger()
	res, err := s.Run()
	if err != nil {
		fmt.Printf("could not solve problem: %v\n", err)
		return
	}
	fmt.Println(res.Outcome)
	fmt.Printf("v %s\n", res.Model)
	fmt.Printf("weight %d\n", res.Weight)
	// Output:
	// SOLVED
	// v 1 2
	// weight 8
}
