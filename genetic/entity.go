package genetic

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/crillab/gensat/formula"
)

const (
	randomizeRate = 0.2 // Among mutated loci, share of loci that are drawn again rather than flipped
	soleImpact    = 2   // Impact of a literal that is the only one to satisfy its clause
	sharedImpact  = 1   // Impact of a literal that satisfies its clause along with one other literal
)

// A Genome is an assignment: the ith locus is the binding of the ith var.
type Genome []bool

func (g Genome) String() string {
	var sb strings.Builder
	for i, val := range g {
		if i > 0 {
			sb.WriteString(" ")
		}
		if val {
			fmt.Fprintf(&sb, "%d", i+1)
		} else {
			fmt.Fprintf(&sb, "%d", -i-1)
		}
	}
	return sb.String()
}

// An Entity is a candidate assignment along with its score.
// All fields but Genome are computed by CountFitness and are meaningless before it is called.
// Once scored, an entity must not be modified, as it can be shared among generations.
type Entity struct {
	Genome         Genome
	CorrectClauses int   // Nb of clauses satisfied by the genome
	Impact         []int // For each locus, how much it contributed to satisfy clauses
	Satisfiable    bool  // Whether all clauses are satisfied
	Weight         int   // Sum of the weights of loci bound to true
	Fitness        int
	impactSum      int
}

// NewEntity returns an unscored entity whose genome has the given size, with all loci bound to false.
func NewEntity(size int) *Entity {
	return &Entity{
		Genome: make(Genome, size),
		Impact: make([]int, size),
	}
}

// randomEntity returns an unscored entity where each locus is true with probability 0.5.
func randomEntity(rng *rand.Rand, size int) *Entity {
	e := NewEntity(size)
	for i := range e.Genome {
		e.Genome[i] = rng.Float64() < 0.5
	}
	return e
}

// CountFitness scores the entity against the problem.
func (e *Entity) CountFitness(pb *formula.Problem, bonus Bonus) {
	e.CorrectClauses = 0
	e.Satisfiable = true
	e.impactSum = 0
	for i := range e.Impact {
		e.Impact[i] = 0
	}
	pb.Evaluate(e.Genome, e)
	e.Weight = pb.Weight(e.Genome)
	for _, impact := range e.Impact {
		e.impactSum += impact
	}
	if e.Satisfiable {
		e.Fitness = len(pb.Clauses)*bonus.Correctness + e.Weight*bonus.Cost + e.impactSum
	} else {
		e.Fitness = e.CorrectClauses*bonus.Correctness + e.impactSum
	}
}

// Mutate mutates each locus with probability factor.
// A mutated locus is usually flipped, but is sometimes drawn again.
func (e *Entity) Mutate(rng *rand.Rand, factor float64) {
	for i := range e.Genome {
		if rng.Float64() < factor {
			if rng.Float64() < randomizeRate {
				e.Genome[i] = rng.Float64() < 0.5
			} else {
				e.Genome[i] = !e.Genome[i]
			}
		}
	}
}

// ClauseSatisfied is called when c is satisfied by the entity's genome.
// Each var making c true gets credit, depending on how many other vars also make c true.
// A var appearing several times in c is credited once.
func (e *Entity) ClauseSatisfied(c *formula.Clause) {
	e.CorrectClauses++
	var vars [formula.MaxClauseLen]formula.Var
	nbTrue := 0
	for _, lit := range c.Lits() {
		if !lit.TrueIn(e.Genome) {
			continue
		}
		v := lit.Var()
		dup := false
		for _, other := range vars[:nbTrue] {
			dup = dup || other == v
		}
		if !dup && nbTrue < len(vars) {
			vars[nbTrue] = v
			nbTrue++
		}
	}
	for _, v := range vars[:nbTrue] {
		switch nbTrue - 1 { // Nb of other true vars
		case 0:
			e.Impact[v] += soleImpact
		case 1:
			e.Impact[v] += sharedImpact
		}
	}
}

// ClauseUnsatisfied is called when c is not satisfied by the entity's genome.
// No literal gets any credit.
func (e *Entity) ClauseUnsatisfied(c *formula.Clause) {
	e.Satisfiable = false
}

// ImpactSum returns the sum of the impact of all loci.
func (e *Entity) ImpactSum() int {
	return e.impactSum
}

// Clone returns a deep copy of e.
func (e *Entity) Clone() *Entity {
	e2 := *e
	e2.Genome = make(Genome, len(e.Genome))
	copy(e2.Genome, e.Genome)
	e2.Impact = make([]int, len(e.Impact))
	copy(e2.Impact, e.Impact)
	return &e2
}

func (e *Entity) String() string {
	return fmt.Sprintf("fitness=%d weight=%d satisfied=%d sat=%t v %s", e.Fitness, e.Weight, e.CorrectClauses, e.Satisfiable, e.Genome)
}
