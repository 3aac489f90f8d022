package formula

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// maxPrealloc bounds the capacity allocated from counts read in the input.
const maxPrealloc = 1 << 16

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// readInt reads an int from r.
// 'b' is the last read byte. It can be a space, a '-' or a digit.
// The int can be negated.
// All spaces before the int value are ignored.
// Can return EOF.
func readInt(b *byte, r *bufio.Reader) (res int, err error) {
	for err == nil && isSpace(*b) {
		*b, err = r.ReadByte()
	}
	if err == io.EOF {
		return res, io.EOF
	}
	if err != nil {
		return res, errors.Wrap(err, "could not read digit")
	}
	neg := 1
	if *b == '-' {
		neg = -1
		*b, err = r.ReadByte()
		if err != nil {
			return 0, errors.Wrap(err, "cannot read int")
		}
	}
	for {
		if *b < '0' || *b > '9' {
			return 0, errors.Errorf("cannot read int: %q is not a digit", *b)
		}
		res = 10*res + int(*b-'0')
		*b, err = r.ReadByte()
		if err == io.EOF {
			*b = ' ' // Next call will see EOF
			break
		}
		if err != nil {
			return 0, errors.Wrap(err, "cannot read int")
		}
		if isSpace(*b) {
			break
		}
	}
	return res * neg, nil
}

func parseHeader(r *bufio.Reader) (nbVars, nbClauses int, err error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return 0, 0, errors.Wrap(err, "cannot read header")
	}
	fields := strings.Fields(line)
	if len(fields) < 3 || fields[0] != "cnf" {
		return 0, 0, errors.Errorf("invalid syntax %q in header", line)
	}
	nbVars, err = strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, errors.Errorf("nbvars not an int : %q", fields[1])
	}
	nbClauses, err = strconv.Atoi(fields[2])
	if err != nil {
		return 0, 0, errors.Errorf("nbClauses not an int : %q", fields[2])
	}
	if nbVars < 1 {
		return 0, 0, errors.Wrapf(ErrInvalidProblem, "invalid number of vars %d", nbVars)
	}
	if nbClauses < 0 {
		return 0, 0, errors.Wrapf(ErrInvalidProblem, "invalid number of clauses %d", nbClauses)
	}
	return nbVars, nbClauses, nil
}

// parseWeights parses the remaining of a "w" line: a list of weights, optionally 0-terminated.
func parseWeights(r *bufio.Reader) ([]int, error) {
	line, err := r.ReadString('\n')
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "cannot read weights")
	}
	fields := strings.Fields(line)
	weights := make([]int, 0, len(fields))
	for i, field := range fields {
		w, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Errorf("weight not an int : %q", field)
		}
		if w == 0 && i == len(fields)-1 {
			break
		}
		weights = append(weights, w)
	}
	return weights, nil
}

// ParseCNF parses a DIMACS CNF file and returns the corresponding Problem.
// Weights are given on a line starting with "w", listing the weight of each var in order:
//
//	p cnf 3 2
//	w 5 3 2 0
//	1 -2 0
//	2 3 -1 0
//
// If there is no such line, all weights are 1.
func ParseCNF(f io.Reader) (*Problem, error) {
	r := bufio.NewReader(f)
	var (
		nbClauses int
		pb        Problem
		header    bool
	)
	b, err := r.ReadByte()
	for err == nil {
		if b == 'c' { // Ignore comment
			b, err = r.ReadByte()
			for err == nil && b != '\n' {
				b, err = r.ReadByte()
			}
		} else if b == 'p' { // Parse header
			pb.NbVars, nbClauses, err = parseHeader(r)
			if err != nil {
				return nil, errors.Wrap(err, "cannot parse CNF header")
			}
			pb.Clauses = make([]*Clause, 0, min(nbClauses, maxPrealloc))
			header = true
		} else if b == 'w' {
			pb.Weights, err = parseWeights(r)
			if err != nil {
				return nil, errors.Wrap(err, "cannot parse weights")
			}
		} else if !isSpace(b) {
			if !header {
				return nil, errors.New("clause found before CNF header")
			}
			lits := make([]Lit, 0, MaxClauseLen)
			for {
				val, err := readInt(&b, r)
				if err == io.EOF {
					if len(lits) != 0 { // This is not a trailing space at the end...
						return nil, errors.New("unfinished clause while EOF found")
					}
					break // When there are only several useless spaces at the end of the file, that is ok
				}
				if err != nil {
					return nil, errors.Wrap(err, "cannot parse clause")
				}
				if val == 0 {
					pb.Clauses = append(pb.Clauses, NewClause(lits))
					break
				}
				if val > pb.NbVars || -val > pb.NbVars {
					return nil, errors.Errorf("invalid literal %d for problem with %d vars only", val, pb.NbVars)
				}
				lits = append(lits, IntToLit(val))
			}
		}
		b, err = r.ReadByte()
	}
	if err != io.EOF {
		return nil, err
	}
	if !header {
		return nil, errors.New("no CNF header found")
	}
	if pb.Weights == nil {
		if pb.NbVars > MaxClauseLen*len(pb.Clauses) {
			return nil, errors.Wrapf(ErrInvalidProblem, "%d clauses cannot cover %d vars", len(pb.Clauses), pb.NbVars)
		}
		pb.Weights = make([]int, pb.NbVars)
		for i := range pb.Weights {
			pb.Weights[i] = 1
		}
	}
	if err := pb.Validate(); err != nil {
		return nil, err
	}
	return &pb, nil
}
