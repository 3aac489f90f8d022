package genetic

// A Selector selects an entity in a sorted generation, to be used as a parent.
type Selector interface {
	Select(g *Generation) *Entity
}

var (
	groupingBands = []int{40, 30, 15, 10, 5}
	customBands   = []int{35, 25, 20, 10, 5, 3, 2}
)

// impactSelectionRate is, for a custom selection, the probability to select an entity in the impact view.
const impactSelectionRate = 0.2

func newSelector(typ SelectionType) Selector {
	switch typ {
	case RankSelection:
		return rankSelector{}
	case GroupingSelection:
		return bandSelector{shares: groupingBands}
	case CustomSelection:
		return customSelector{bands: bandSelector{shares: customBands}}
	default:
		return fitnessSelector{}
	}
}

// fitnessSelector selects each entity with a probability proportional to its fitness.
// Entities with a negative fitness are never selected.
// If no entity has a positive fitness, the selection is uniform.
type fitnessSelector struct{}

func (fitnessSelector) Select(g *Generation) *Entity {
	total := 0
	for _, e := range g.Entities {
		total += max(e.Fitness, 0)
	}
	if total == 0 {
		return g.Entities[g.rng.IntN(len(g.Entities))]
	}
	r := g.rng.IntN(total)
	sum := 0
	for _, e := range g.Entities {
		sum += max(e.Fitness, 0)
		if r < sum {
			return e
		}
	}
	return g.Entities[len(g.Entities)-1]
}

// rankSelector selects each entity with a probability proportional to its position in the sorted
// population: the entity at position i, starting from 1 for the best one, has weight i.
type rankSelector struct{}

func (rankSelector) Select(g *Generation) *Entity {
	n := len(g.Entities)
	r := g.rng.IntN(n * (n + 1) / 2)
	sum := 0
	for i, e := range g.Entities {
		sum += i + 1
		if r < sum {
			return e
		}
	}
	return g.Entities[n-1]
}

// bandSelector splits the sorted population in as many bands of equal size as there are shares.
// A band is drawn with a probability proportional to its share, then an entity is drawn uniformly in it.
type bandSelector struct {
	shares []int
}

func (s bandSelector) Select(g *Generation) *Entity {
	return g.Entities[s.index(g)]
}

// index returns the rank of the selected entity.
func (s bandSelector) index(g *Generation) int {
	total := 0
	for _, share := range s.shares {
		total += share
	}
	r := g.rng.IntN(total)
	band := len(s.shares) - 1
	sum := 0
	for i, share := range s.shares {
		sum += share
		if r < sum {
			band = i
			break
		}
	}
	n := len(g.Entities)
	lo := band * n / len(s.shares)
	hi := (band + 1) * n / len(s.shares)
	if hi <= lo { // Empty band in a small population
		if lo >= n {
			lo = n - 1
		}
		hi = lo + 1
	}
	return lo + g.rng.IntN(hi-lo)
}

// customSelector is a band selection that sometimes picks the entity at the mirrored rank
// in the population sorted by increasing impact sum, i.e the entity with the same rank in terms of impact.
type customSelector struct {
	bands bandSelector
}

func (s customSelector) Select(g *Generation) *Entity {
	idx := s.bands.index(g)
	if g.rng.Float64() < impactSelectionRate {
		view := g.impactView()
		return view[len(view)-1-idx]
	}
	return g.Entities[idx]
}
