package genetic

import (
	"math/rand/v2"

	"github.com/crillab/gensat/formula"
)

// maxParentDraws is the maximum number of times the second parent of a pair is drawn again
// because it cannot be told apart from the first one.
const maxParentDraws = 32

// A Generation is a population of entities, along with the strategies used to breed its offspring.
type Generation struct {
	Entities  []*Entity // Sorted from the best to the worst, once the generation is complete
	Best      *Entity   // First entity after the last sort
	Certainty float64   // Percentage of the population sharing the best fitness, as of the last CheckDifference
	pb        *formula.Problem
	cfg       *Config
	rng       *rand.Rand
	mutation  float64 // Mutation factor applied to children bred in this generation
	selector  Selector
	crossover Crossover
	impacts   []*Entity // Entities sorted by increasing impact sum
	stats     *Stats
}

// NewGeneration returns an empty generation whose strategies are chosen according to cfg.
func NewGeneration(pb *formula.Problem, cfg *Config, rng *rand.Rand) *Generation {
	return newGeneration(pb, cfg, rng, cfg.MutationFactor, &Stats{})
}

func newGeneration(pb *formula.Problem, cfg *Config, rng *rand.Rand, mutation float64, stats *Stats) *Generation {
	return &Generation{
		Entities:  make([]*Entity, 0, cfg.PopulationSize+2),
		pb:        pb,
		cfg:       cfg,
		rng:       rng,
		mutation:  mutation,
		selector:  newSelector(cfg.Selection),
		crossover: newCrossover(cfg.Crossover),
		stats:     stats,
	}
}

// Size returns the nb of entities in the generation.
func (g *Generation) Size() int {
	return len(g.Entities)
}

// InitializePopulation fills the generation with random entities.
func (g *Generation) InitializePopulation() {
	g.Entities = g.Entities[:0]
	for i := 0; i < g.cfg.PopulationSize; i++ {
		e := randomEntity(g.rng, g.pb.NbVars)
		e.CountFitness(g.pb, g.cfg.Bonus())
		g.Entities = append(g.Entities, e)
	}
	g.Sort()
	g.CheckDifference(g.cfg.DifferenceLevel)
}

// Sort sorts entities from the best to the worst and updates g.Best.
func (g *Generation) Sort() {
	sortEntities(g.Entities)
	g.impacts = nil
	if len(g.Entities) > 0 {
		g.Best = g.Entities[0]
	}
}

// CheckDifference computes the percentage of entities sharing the fitness of the first entity.
// It returns true iff that percentage is at least level, meaning the population has converged.
// The generation is supposed to be sorted.
func (g *Generation) CheckDifference(level int) bool {
	if len(g.Entities) == 0 {
		g.Certainty = 0
		return false
	}
	top := g.Entities[0].Fitness
	nb := 0
	for _, e := range g.Entities {
		if e.Fitness == top {
			nb++
		}
	}
	g.Certainty = float64(nb) * 100 / float64(g.cfg.PopulationSize)
	return g.Certainty >= float64(level)
}

// NbSatisfiable returns the nb of entities satisfying all clauses.
func (g *Generation) NbSatisfiable() int {
	nb := 0
	for _, e := range g.Entities {
		if e.Satisfiable {
			nb++
		}
	}
	return nb
}

// indexImpacts computes the view of the population sorted by increasing impact sum.
func (g *Generation) indexImpacts() {
	g.impacts = byImpact(g.Entities)
}

func (g *Generation) impactView() []*Entity {
	if g.impacts == nil {
		g.indexImpacts()
	}
	return g.impacts
}

// truncate removes the worst entities so that at most size of them are left.
func (g *Generation) truncate(size int) {
	if len(g.Entities) > size {
		g.Entities = g.Entities[:size]
	}
}

func (g *Generation) add(entities ...*Entity) {
	g.Entities = append(g.Entities, entities...)
}

// addChildren mutates and scores the given children, then adds them to the generation.
func (g *Generation) addChildren(children ...*Entity) {
	for _, child := range children {
		child.Mutate(g.rng, g.mutation)
		child.CountFitness(g.pb, g.cfg.Bonus())
		g.Entities = append(g.Entities, child)
	}
}

// selectParents selects two parents in the generation.
// The second parent is drawn again as long as it is the first one or has the same fitness,
// up to maxParentDraws times.
func (g *Generation) selectParents() (first, second *Entity) {
	first = g.selector.Select(g)
	second = g.selector.Select(g)
	for i := 0; i < maxParentDraws && (second == first || second.Fitness == first.Fitness); i++ {
		second = g.selector.Select(g)
	}
	return first, second
}

// breed adds to dst either two children of the given parents or, if no crossover happens,
// the parents themselves.
func (g *Generation) breed(dst *Generation, first, second *Entity) {
	if g.rng.Float64() >= g.cfg.CrossoverFactor {
		g.stats.NbPassThroughs++
		dst.add(first, second)
		return
	}
	g.stats.NbCrossovers++
	child1, child2 := g.crossover.Cross(g.rng, first, second)
	dst.addChildren(child1, child2)
}
