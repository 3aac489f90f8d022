package report

import (
	"io"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/crillab/gensat/formula"
	"github.com/crillab/gensat/genetic"
)

// YAML writes each result as a YAML document.
// Successive results are separated by "---", so that several runs can be written to the same stream.
type YAML struct {
	enc     *yaml.Encoder
	problem *formula.Problem
}

// NewYAML returns a YAML reporter writing to w.
// Close must be called once all results were reported.
func NewYAML(w io.Writer, pb *formula.Problem) *YAML {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	return &YAML{enc: enc, problem: pb}
}

// Document is the YAML representation of a result.
type Document struct {
	Outcome          string          `yaml:"outcome"`
	Model            []int           `yaml:"model,flow"`
	Assignment       map[string]bool `yaml:"assignment,omitempty"`
	Weight           int             `yaml:"weight"`
	Fitness          int             `yaml:"fitness"`
	SatisfiedClauses int             `yaml:"satisfied-clauses"`
	TotalClauses     int             `yaml:"total-clauses"`
	Unsatisfied      []string        `yaml:"unsatisfied,omitempty"`
	Impact           []int           `yaml:"impact,flow"`
	HeatMap          []int           `yaml:"heat-map,flow"`
	Generations      int             `yaml:"generations"`
	Converged        bool            `yaml:"converged"`
	Certainty        float64         `yaml:"certainty"`
	Seed             uint64          `yaml:"seed"`
	Elapsed          string          `yaml:"elapsed"`
	Stats            Stats           `yaml:"stats"`
}

// Stats is the YAML representation of genetic.Stats.
type Stats struct {
	Improvements      int `yaml:"improvements"`
	Crossovers        int `yaml:"crossovers"`
	PassThroughs      int `yaml:"pass-throughs"`
	MutationIncreases int `yaml:"mutation-increases"`
	MutationResets    int `yaml:"mutation-resets"`
}

// NewDocument returns the YAML representation of res, a result for pb.
func NewDocument(pb *formula.Problem, res genetic.Result) Document {
	doc := Document{
		Outcome:          res.Outcome.String(),
		Model:            make([]int, len(res.Model)),
		Weight:           res.Weight,
		Fitness:          res.Fitness,
		SatisfiedClauses: res.CorrectClauses,
		TotalClauses:     res.NbClauses,
		Impact:           res.Impact,
		HeatMap:          res.HeatMap,
		Generations:      res.Generations,
		Converged:        res.Converged,
		Certainty:        res.Certainty,
		Seed:             res.Seed,
		Elapsed:          res.Elapsed.String(),
		Stats: Stats{
			Improvements:      res.Stats.NbImprovements,
			Crossovers:        res.Stats.NbCrossovers,
			PassThroughs:      res.Stats.NbPassThroughs,
			MutationIncreases: res.Stats.NbMutationIncreases,
			MutationResets:    res.Stats.NbMutationResets,
		},
	}
	for i, val := range res.Model {
		doc.Model[i] = formula.Var(i).SignedLit(!val).Int()
	}
	if pb != nil {
		if pb.Names != nil {
			doc.Assignment = make(map[string]bool, len(res.Model))
			for i, val := range res.Model {
				doc.Assignment[pb.Name(formula.Var(i))] = val
			}
		}
		for _, i := range res.Unsatisfied {
			doc.Unsatisfied = append(doc.Unsatisfied, pb.ClauseString(i))
		}
	}
	return doc
}

// Report implements genetic.Reporter.
func (y *YAML) Report(res genetic.Result) error {
	if err := y.enc.Encode(NewDocument(y.problem, res)); err != nil {
		return errors.Wrap(err, "could not encode result")
	}
	return nil
}

// Close flushes the underlying encoder.
func (y *YAML) Close() error {
	return errors.Wrap(y.enc.Close(), "could not close YAML stream")
}
