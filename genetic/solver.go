package genetic

import (
	"math/rand/v2"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/crillab/gensat/formula"
)

// maxStagnation is the nb of generations without improvement after which the evolution stops.
const maxStagnation = 500

// Stats are statistics about the evolution.
type Stats struct {
	NbGenerations       int // Nb of generations bred since the initial population
	NbImprovements      int // Nb of times the best known entity was replaced
	NbCrossovers        int // Nb of pairs of parents that were bred
	NbPassThroughs      int // Nb of pairs of parents copied as is into the next generation
	NbMutationIncreases int // Nb of times the mutation factor was increased because of stagnation
	NbMutationResets    int // Nb of times the mutation factor was reset because of an improvement
}

// A Snapshot describes the state of the evolution right after a generation was bred.
type Snapshot struct {
	Generation          int
	BestFitness         int // Fitness of the best entity of the generation
	BestKnownFitness    int // Fitness of the best entity ever found
	BestKnownWeight     int
	Satisfiable         bool // Whether the best known entity satisfies all clauses
	SatisfiableEntities int  // Nb of entities of the generation satisfying all clauses
	Mutation            float64
	Certainty           float64
	Stagnation          int
	Improved            bool // Whether the best known entity was replaced by this generation
}

// An Observer is notified after each generation.
type Observer interface {
	Observe(s Snapshot)
}

// A Reporter is given the result of a run.
type Reporter interface {
	Report(res Result) error
}

// Outcome is the kind of result a run ended with.
type Outcome byte

const (
	// Solved means an assignment satisfying all clauses was found.
	Solved = Outcome(iota)
	// NoFeasibleSolution means no assignment satisfying all clauses was found.
	// The result holds the assignment satisfying the most clauses found so far.
	NoFeasibleSolution
)

func (o Outcome) String() string {
	switch o {
	case Solved:
		return "SOLVED"
	case NoFeasibleSolution:
		return "NO FEASIBLE SOLUTION"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is the outcome of a run.
type Result struct {
	Outcome        Outcome
	Model          Genome
	Fitness        int
	Weight         int
	CorrectClauses int
	NbClauses      int
	Unsatisfied    []int // Indices of the clauses that are not satisfied by the model
	Impact         []int
	HeatMap        []int
	Generations    int
	Converged      bool
	Certainty      float64 // Certainty of the last generation
	Seed           uint64
	Stats          Stats
	Elapsed        time.Duration
}

// A Solver looks for a high-weight assignment of a problem with a genetic algorithm.
type Solver struct {
	Log      logrus.FieldLogger // Where progress is logged, at debug level
	Observer Observer           // Notified after each generation. Can be nil.
	Reporter Reporter           // Given the result of Run. Can be nil.
	Stats    Stats
	Best     *Entity // Best entity ever found
	HeatMap  []int   // For each locus, nb of times it changed when the best entity of a generation improved

	pb         *formula.Problem
	cfg        Config
	seed       uint64
	rng        *rand.Rand
	current    *Generation // Last bred generation
	mutation   float64
	stagnation int
	converged  bool
	generation int
}

// New returns a solver for pb.
// The returned error wraps formula.ErrInvalidProblem or ErrInvalidConfig if the problem or
// the configuration cannot be used.
func New(pb *formula.Problem, cfg Config) (*Solver, error) {
	if pb == nil {
		return nil, errors.Wrap(formula.ErrInvalidProblem, "nil problem")
	}
	if err := pb.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	s := &Solver{
		Log:  logrus.StandardLogger(),
		pb:   pb,
		cfg:  cfg,
		seed: seed,
		rng:  rand.New(rand.NewPCG(seed, seed)),
	}
	s.reset()
	return s, nil
}

// Config returns the configuration of the solver.
func (s *Solver) Config() Config {
	return s.cfg
}

// Seed returns the seed of the solver's random source.
func (s *Solver) Seed() uint64 {
	return s.seed
}

// Mutation returns the current mutation factor.
func (s *Solver) Mutation() float64 {
	return s.mutation
}

// Stagnation returns the nb of consecutive generations whose best fitness did not change.
func (s *Solver) Stagnation() int {
	return s.stagnation
}

// Converged returns whether the evolution has converged and should stop.
func (s *Solver) Converged() bool {
	return s.converged
}

func (s *Solver) reset() {
	s.Stats = Stats{}
	s.Best = nil
	s.HeatMap = make([]int, s.pb.NbVars)
	s.current = nil
	s.mutation = s.cfg.MutationFactor
	s.stagnation = 0
	s.converged = false
	s.generation = 0
}

func (s *Solver) newGeneration() *Generation {
	return newGeneration(s.pb, &s.cfg, s.rng, s.mutation, &s.Stats)
}

// Evolve resets the solver, then evolves a random population until it converges or
// the maximum nb of generations is reached. It returns the last generation.
func (s *Solver) Evolve() *Generation {
	s.reset()
	g := s.newGeneration()
	g.InitializePopulation()
	s.current = g
	s.Best = g.Best
	s.observe(g, true)
	for i := 0; i < s.cfg.Generations && !s.converged; i++ {
		g = s.Evolution(g)
	}
	return g
}

// Evolution breeds the generation that follows g and updates the state of the solver accordingly.
func (s *Solver) Evolution(g *Generation) *Generation {
	if s.current == nil {
		s.current = g
	}
	if s.Best == nil {
		s.Best = g.Best
	}
	if g.CheckDifference(s.cfg.DifferenceLevel) {
		s.converged = true
	}
	g.indexImpacts()
	dst := s.newGeneration()
	nbPairs := (s.cfg.PopulationSize+2)/2 - s.cfg.ElitesCount
	for i := 0; i < nbPairs; i++ {
		first, second := g.selectParents()
		g.breed(dst, first, second)
	}
	s.elitism(g, dst)
	dst.Sort()
	dst.truncate(s.cfg.PopulationSize)
	if dst.CheckDifference(s.cfg.DifferenceLevel) {
		s.converged = true
	}
	s.generation++
	s.Stats.NbGenerations++
	improved := false
	if dst.Best.Fitness > s.Best.Fitness {
		s.Best = dst.Best
		s.Stats.NbImprovements++
		improved = true
		s.Log.WithFields(logrus.Fields{
			"generation":         s.generation,
			"fitness":            s.Best.Fitness,
			"weight":             s.Best.Weight,
			"satisfiable":        s.Best.Satisfiable,
			"mutation":           s.mutation,
			"impact":             s.Best.impactSum,
			"satisfied_entities": dst.NbSatisfiable(),
		}).Debug("new best entity")
	}
	s.updateMutation(dst)
	s.observe(dst, improved)
	return dst
}

// elitism adds to dst the best entities of g with distinct fitness values and the best known entity,
// then fills dst up to the population size.
func (s *Solver) elitism(g, dst *Generation) {
	nbElites := 2*s.cfg.ElitesCount - 1
	seen := make(map[int]struct{}, max(nbElites, 0))
	for i := 0; len(seen) < nbElites && i < len(g.Entities); i++ {
		e := g.Entities[i]
		if _, ok := seen[e.Fitness]; ok {
			continue
		}
		seen[e.Fitness] = struct{}{}
		dst.add(e)
	}
	dst.add(s.Best)
	for i := 0; i < s.cfg.PopulationSize-dst.Size()+1; i++ {
		first, second := g.selectParents()
		g.breed(dst, first, second)
	}
	for dst.Size() < s.cfg.PopulationSize {
		dst.add(s.Best)
	}
}

// updateMutation adapts the mutation factor to the progress made by dst compared to the previous generation.
func (s *Solver) updateMutation(dst *Generation) {
	prev := s.current.Best
	if dst.Best.Fitness == prev.Fitness {
		s.stagnation++
		if s.stagnation%s.cfg.MutationStep == 0 {
			if prev.Satisfiable {
				s.mutation = min(s.mutation+s.cfg.MutationStepSize, s.cfg.MaximumMutation)
			} else {
				s.mutation = s.cfg.MaximumMutation
			}
			s.Stats.NbMutationIncreases++
		}
	} else {
		s.stagnation = 0
		s.mutation = s.cfg.MinimumMutation
		s.Stats.NbMutationResets++
		for i, val := range dst.Best.Genome {
			if val != prev.Genome[i] {
				s.HeatMap[i]++
			}
		}
	}
	if s.stagnation > maxStagnation {
		s.converged = true
	}
	s.current = dst
}

func (s *Solver) observe(g *Generation, improved bool) {
	if s.Observer == nil {
		return
	}
	s.Observer.Observe(Snapshot{
		Generation:          s.generation,
		BestFitness:         g.Best.Fitness,
		BestKnownFitness:    s.Best.Fitness,
		BestKnownWeight:     s.Best.Weight,
		Satisfiable:         s.Best.Satisfiable,
		SatisfiableEntities: g.NbSatisfiable(),
		Mutation:            s.mutation,
		Certainty:           g.Certainty,
		Stagnation:          s.stagnation,
		Improved:            improved,
	})
}

// Run evolves a population and returns the best entity found.
// If a reporter was set, the result is reported before being returned.
// Not finding an assignment satisfying all clauses is not an error: the result's outcome
// is then NoFeasibleSolution.
func (s *Solver) Run() (Result, error) {
	start := time.Now()
	last := s.Evolve()
	res := s.result(last, time.Since(start))
	if s.Reporter != nil {
		if err := s.Reporter.Report(res); err != nil {
			return res, errors.Wrap(err, "could not report result")
		}
	}
	return res, nil
}

func (s *Solver) result(last *Generation, elapsed time.Duration) Result {
	best := s.Best
	res := Result{
		Outcome:        NoFeasibleSolution,
		Model:          best.Clone().Genome,
		Fitness:        best.Fitness,
		Weight:         best.Weight,
		CorrectClauses: best.CorrectClauses,
		NbClauses:      len(s.pb.Clauses),
		Unsatisfied:    s.pb.Unsatisfied(best.Genome),
		Impact:         append([]int(nil), best.Impact...),
		HeatMap:        append([]int(nil), s.HeatMap...),
		Generations:    s.generation,
		Converged:      s.converged,
		Certainty:      last.Certainty,
		Seed:           s.seed,
		Stats:          s.Stats,
		Elapsed:        elapsed,
	}
	if best.Satisfiable {
		res.Outcome = Solved
	}
	return res
}
