package genetic

import "sort"

// Compare orders entities from the best to the worst.
// It returns a negative value if a ranks before b, a positive value if b ranks before a, 0 otherwise.
// Entities are compared on their fitness, then on their impact sum, then on their weight.
func Compare(a, b *Entity) int {
	switch {
	case a.Fitness != b.Fitness:
		return cmpDesc(a.Fitness, b.Fitness)
	case a.impactSum != b.impactSum:
		return cmpDesc(a.impactSum, b.impactSum)
	default:
		return cmpDesc(a.Weight, b.Weight)
	}
}

func cmpDesc(x, y int) int {
	switch {
	case x > y:
		return -1
	case x < y:
		return 1
	default:
		return 0
	}
}

// sortEntities sorts entities from the best to the worst. Equivalent entities keep their relative order.
func sortEntities(entities []*Entity) {
	sort.SliceStable(entities, func(i, j int) bool { return Compare(entities[i], entities[j]) < 0 })
}

// byImpact returns a copy of entities, sorted by increasing impact sum.
func byImpact(entities []*Entity) []*Entity {
	res := make([]*Entity, len(entities))
	copy(res, entities)
	sort.SliceStable(res, func(i, j int) bool { return res[i].impactSum < res[j].impactSum })
	return res
}
