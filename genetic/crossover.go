package genetic

import "math/rand/v2"

// A Crossover breeds two unscored children from two parents.
// Parents are never modified.
type Crossover interface {
	Cross(rng *rand.Rand, first, second *Entity) (*Entity, *Entity)
}

func newCrossover(typ CrossoverType) Crossover {
	switch typ {
	case RandomCrossover:
		return uniformCrossover{}
	case CustomCrossover:
		return impactCrossover{}
	default:
		return twoPointCrossover{}
	}
}

// twoPointCrossover copies the parents, then swaps the loci between two random cut points, inclusive.
type twoPointCrossover struct{}

func (twoPointCrossover) Cross(rng *rand.Rand, first, second *Entity) (*Entity, *Entity) {
	size := len(first.Genome)
	child1, child2 := NewEntity(size), NewEntity(size)
	copy(child1.Genome, first.Genome)
	copy(child2.Genome, second.Genome)
	lo, hi := rng.IntN(size), rng.IntN(size)
	if lo > hi {
		lo, hi = hi, lo
	}
	for i := lo; i <= hi; i++ {
		child1.Genome[i], child2.Genome[i] = second.Genome[i], first.Genome[i]
	}
	return child1, child2
}

// uniformCrossover draws, for each locus, which parent gives it to which child.
type uniformCrossover struct{}

func (uniformCrossover) Cross(rng *rand.Rand, first, second *Entity) (*Entity, *Entity) {
	size := len(first.Genome)
	child1, child2 := NewEntity(size), NewEntity(size)
	for i := range first.Genome {
		if rng.Float64() < 0.5 {
			child1.Genome[i], child2.Genome[i] = first.Genome[i], second.Genome[i]
		} else {
			child1.Genome[i], child2.Genome[i] = second.Genome[i], first.Genome[i]
		}
	}
	return child1, child2
}

// impactCrossover gives each locus of each child from one of the parents, drawn according to
// how much the locus contributes to satisfy clauses in each parent.
// When both parents have the same impact on a locus, the parent is drawn uniformly.
// Otherwise the locus is taken from the parent with the lower impact with probability
// high/(low+high).
type impactCrossover struct{}

func (impactCrossover) Cross(rng *rand.Rand, first, second *Entity) (*Entity, *Entity) {
	size := len(first.Genome)
	child1, child2 := NewEntity(size), NewEntity(size)
	for i := range first.Genome {
		child1.Genome[i] = impactLocus(rng, first, second, i)
		child2.Genome[i] = impactLocus(rng, first, second, i)
	}
	return child1, child2
}

func impactLocus(rng *rand.Rand, first, second *Entity, i int) bool {
	i1, i2 := first.Impact[i], second.Impact[i]
	if i1 == i2 {
		if rng.Float64() < 0.5 {
			return first.Genome[i]
		}
		return second.Genome[i]
	}
	low, high := first, second
	if i1 > i2 {
		low, high = second, first
	}
	r := rng.IntN(i1 + i2)
	if r < high.Impact[i] {
		return low.Genome[i]
	}
	return high.Genome[i]
}
