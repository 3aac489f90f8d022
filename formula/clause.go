package formula

import (
	"fmt"
	"strings"
)

// MaxClauseLen is the maximum number of literals in a clause of a 3-CNF formula.
const MaxClauseLen = 3

// A Clause is a disjunction of literals.
// Each literal carries the polarity its var must have for the clause to be satisfied.
type Clause struct {
	lits []Lit
}

// NewClause returns a clause whose lits are given as an argument.
func NewClause(lits []Lit) *Clause {
	return &Clause{lits: lits}
}

// Len returns the nb of lits in the clause.
func (c *Clause) Len() int {
	return len(c.lits)
}

// Get returns the ith literal from the clause.
func (c *Clause) Get(i int) Lit {
	return c.lits[i]
}

// Lits returns the literals of the clause. The slice must not be modified.
func (c *Clause) Lits() []Lit {
	return c.lits
}

// Satisfied returns true iff at least one literal of c is true in genome.
func (c *Clause) Satisfied(genome []bool) bool {
	for _, l := range c.lits {
		if l.TrueIn(genome) {
			return true
		}
	}
	return false
}

// CNF returns a DIMACS CNF representation of the clause.
func (c *Clause) CNF() string {
	var sb strings.Builder
	for _, lit := range c.lits {
		fmt.Fprintf(&sb, "%d ", lit.Int())
	}
	sb.WriteString("0")
	return sb.String()
}

// format returns the clause in the text format, using names for vars.
func (c *Clause) format(names []string) string {
	parts := make([]string, len(c.lits))
	for i, lit := range c.lits {
		name := names[lit.Var()]
		if lit.IsPositive() {
			parts[i] = name
		} else {
			parts[i] = "!" + name
		}
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func (c *Clause) String() string {
	return c.CNF()
}
