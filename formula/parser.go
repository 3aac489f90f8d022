package formula

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"text/scanner"

	"github.com/pkg/errors"
)

// A namedLit is a literal whose var is still referred to by its name.
type namedLit struct {
	name    string
	negated bool
}

type parser struct {
	s     scanner.Scanner
	eof   bool   // Have we reached eof yet?
	token string // Last token read
}

// Parse parses a weighted formula from the given input Reader.
// It returns the corresponding Problem.
// The input is written as follows:
//
//	N w1 w2 ... wN (x1 | !x2 | x3) & (!x1 | x4 | x5) & ...
//
// where N is the number of vars and wi the weight of the ith var.
// Vars are referred to by their names; the "!" unary operator negates a var.
// The ith var, as far as weights and models are concerned, is the ith name in lexicographic order.
func Parse(r io.Reader) (*Problem, error) {
	var p parser
	p.s.Init(r)
	p.s.Mode = scanner.ScanIdents | scanner.ScanInts
	p.s.Error = func(*scanner.Scanner, string) {} // Errors are reported through unexpected tokens
	p.scan()
	nbVars, err := p.parseInt()
	if err != nil {
		return nil, errors.Wrap(err, "could not read number of vars")
	}
	if nbVars < 1 {
		return nil, errors.Wrapf(ErrInvalidProblem, "invalid number of vars %d", nbVars)
	}
	weights := make([]int, 0, min(nbVars, maxPrealloc))
	for i := 0; i < nbVars; i++ {
		w, err := p.parseInt()
		if err != nil {
			return nil, errors.Wrapf(err, "could not read weight #%d", i+1)
		}
		weights = append(weights, w)
	}
	var clauses [][]namedLit
	for {
		clause, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, clause)
		if p.eof {
			break
		}
		if p.token != "&" {
			return nil, errors.Errorf("expected %q, found %q at %s", "&", p.token, p.s.Pos())
		}
		p.scan()
	}
	return newNamedProblem(weights, clauses)
}

// ParseFile parses the file at the given path. Files ending with ".cnf" or ".mwcnf" are
// parsed as DIMACS files, other files are parsed with Parse.
func ParseFile(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %q", path)
	}
	defer f.Close()
	var pb *Problem
	switch filepath.Ext(path) {
	case ".cnf", ".mwcnf":
		pb, err = ParseCNF(f)
	default:
		pb, err = Parse(f)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse %q", path)
	}
	return pb, nil
}

func (p *parser) scan() {
	if p.eof {
		return
	}
	p.eof = (p.s.Scan() == scanner.EOF)
	p.token = p.s.TokenText()
}

func (p *parser) parseInt() (int, error) {
	if p.eof {
		return 0, errors.Errorf("expected integer, found EOF at %s", p.s.Pos())
	}
	val, err := strconv.Atoi(p.token)
	if err != nil {
		return 0, errors.Errorf("expected integer, found %q at %s", p.token, p.s.Pos())
	}
	p.scan()
	return val, nil
}

func (p *parser) parseClause() ([]namedLit, error) {
	if p.eof {
		return nil, errors.Errorf("expected clause, found EOF at %s", p.s.Pos())
	}
	if p.token != "(" {
		return nil, errors.Errorf("expected opening parenthesis, found %q at %s", p.token, p.s.Pos())
	}
	p.scan()
	var lits []namedLit
	for {
		lit, err := p.parseLit()
		if err != nil {
			return nil, err
		}
		lits = append(lits, lit)
		if p.eof {
			return nil, errors.Errorf("expected closing parenthesis, found EOF at %s", p.s.Pos())
		}
		if p.token == ")" {
			p.scan()
			return lits, nil
		}
		if p.token != "|" {
			return nil, errors.Errorf("expected %q or closing parenthesis, found %q at %s", "|", p.token, p.s.Pos())
		}
		p.scan()
	}
}

func (p *parser) parseLit() (namedLit, error) {
	var lit namedLit
	if !p.eof && p.token == "!" {
		lit.negated = true
		p.scan()
	}
	if p.eof {
		return lit, errors.Errorf("expected var, found EOF at %s", p.s.Pos())
	}
	if !isIdent(p.token) {
		return lit, errors.Errorf("unexpected token %q at %s", p.token, p.s.Pos())
	}
	lit.name = p.token
	p.scan()
	return lit, nil
}

func isIdent(token string) bool {
	if token == "" {
		return false
	}
	c := token[0]
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// newNamedProblem numbers vars in the lexicographic order of their names and builds the problem.
func newNamedProblem(weights []int, clauses [][]namedLit) (*Problem, error) {
	index := make(map[string]Var)
	for _, clause := range clauses {
		for _, lit := range clause {
			index[lit.name] = 0
		}
	}
	names := make([]string, 0, len(index))
	for name := range index {
		names = append(names, name)
	}
	sort.Strings(names)
	if len(names) != len(weights) {
		return nil, errors.Wrapf(ErrInvalidProblem, "formula uses %d vars, %d declared", len(names), len(weights))
	}
	for i, name := range names {
		index[name] = Var(i)
	}
	pb := Problem{
		NbVars:  len(weights),
		Weights: weights,
		Clauses: make([]*Clause, len(clauses)),
		Names:   names,
	}
	for i, clause := range clauses {
		lits := make([]Lit, len(clause))
		for j, lit := range clause {
			lits[j] = index[lit.name].SignedLit(lit.negated)
		}
		pb.Clauses[i] = NewClause(lits)
	}
	if err := pb.Validate(); err != nil {
		return nil, err
	}
	return &pb, nil
}
