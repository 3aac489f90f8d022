package genetic

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned, possibly wrapped, when a Config cannot be used to run a solver.
var ErrInvalidConfig = errors.New("invalid configuration")

// SelectionType is the strategy used to select parents in a generation.
type SelectionType byte

const (
	// SimpleSelection is a fitness-proportionate selection.
	SimpleSelection = SelectionType(iota)
	// RankSelection is a selection proportional to the rank of each entity.
	RankSelection
	// GroupingSelection draws a fitness band, then an entity in that band.
	GroupingSelection
	// CustomSelection is a grouping selection that also samples the population sorted by impact.
	CustomSelection
)

var selectionNames = []string{"simple", "rank", "grouping", "custom"}

func (s SelectionType) String() string {
	if int(s) < len(selectionNames) {
		return selectionNames[s]
	}
	return fmt.Sprintf("SelectionType(%d)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (s SelectionType) MarshalText() ([]byte, error) {
	if int(s) >= len(selectionNames) {
		return nil, errors.Errorf("invalid selection type %d", s)
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *SelectionType) UnmarshalText(text []byte) error {
	val, err := ParseSelection(string(text))
	if err != nil {
		return err
	}
	*s = val
	return nil
}

// ParseSelection returns the selection type whose name is given, ignoring case.
func ParseSelection(name string) (SelectionType, error) {
	for i, n := range selectionNames {
		if strings.EqualFold(n, name) {
			return SelectionType(i), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidConfig, "unknown selection type %q (expected one of %s)", name, strings.Join(selectionNames, ", "))
}

// CrossoverType is the strategy used to breed children from two parents.
type CrossoverType byte

const (
	// RandomCrossover is a uniform crossover.
	RandomCrossover = CrossoverType(iota)
	// SimpleCrossover is a two-point crossover.
	SimpleCrossover
	// CustomCrossover is an impact-weighted crossover.
	CustomCrossover
)

var crossoverNames = []string{"random", "simple", "custom"}

func (c CrossoverType) String() string {
	if int(c) < len(crossoverNames) {
		return crossoverNames[c]
	}
	return fmt.Sprintf("CrossoverType(%d)", c)
}

// MarshalText implements encoding.TextMarshaler.
func (c CrossoverType) MarshalText() ([]byte, error) {
	if int(c) >= len(crossoverNames) {
		return nil, errors.Errorf("invalid crossover type %d", c)
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *CrossoverType) UnmarshalText(text []byte) error {
	val, err := ParseCrossover(string(text))
	if err != nil {
		return err
	}
	*c = val
	return nil
}

// ParseCrossover returns the crossover type whose name is given, ignoring case.
func ParseCrossover(name string) (CrossoverType, error) {
	for i, n := range crossoverNames {
		if strings.EqualFold(n, name) {
			return CrossoverType(i), nil
		}
	}
	return 0, errors.Wrapf(ErrInvalidConfig, "unknown crossover type %q (expected one of %s)", name, strings.Join(crossoverNames, ", "))
}

// Bonus holds the coefficients of the fitness function.
type Bonus struct {
	Correctness int // Bonus for each satisfied clause
	Cost        int // Bonus for each unit of weight, for satisfiable entities only
}

// Config is the set of parameters of a genetic solver.
// It is read once, when the solver is created.
type Config struct {
	PopulationSize   int           `mapstructure:"population-size" yaml:"population-size" validate:"gte=2"`
	Generations      int           `mapstructure:"generations" yaml:"generations" validate:"gte=1"`
	MinimumMutation  float64       `mapstructure:"minimum-mutation" yaml:"minimum-mutation" validate:"gte=0,lte=1"`
	MutationFactor   float64       `mapstructure:"mutation" yaml:"mutation" validate:"gte=0,lte=1"` // Initial mutation factor
	MutationStepSize float64       `mapstructure:"mutation-step-size" yaml:"mutation-step-size" validate:"gte=0,lte=1"`
	MutationStep     int           `mapstructure:"mutation-step" yaml:"mutation-step" validate:"gte=1"` // Nb of stagnant generations between two increases
	MaximumMutation  float64       `mapstructure:"maximum-mutation" yaml:"maximum-mutation" validate:"gte=0,lte=1,gtefield=MinimumMutation"`
	CrossoverFactor  float64       `mapstructure:"crossover" yaml:"crossover" validate:"gte=0,lte=1"`
	DifferenceLevel  int           `mapstructure:"difference-level" yaml:"difference-level" validate:"gt=0,lte=100"` // Percentage of the population sharing the best fitness to stop early
	ElitesCount      int           `mapstructure:"elites" yaml:"elites" validate:"gte=0"`
	CorrectnessBonus int           `mapstructure:"correctness-bonus" yaml:"correctness-bonus" validate:"gte=0"`
	CostBonus        int           `mapstructure:"cost-bonus" yaml:"cost-bonus" validate:"gte=0"`
	Selection        SelectionType `mapstructure:"selection" yaml:"selection"`
	Crossover        CrossoverType `mapstructure:"crossover-type" yaml:"crossover-type"`
	Seed             uint64        `mapstructure:"seed" yaml:"seed"` // 0 means a time-based seed
}

// DefaultConfig returns the default parameters.
func DefaultConfig() Config {
	return Config{
		PopulationSize:   150,
		Generations:      2000,
		MinimumMutation:  0.05,
		MutationFactor:   0.05,
		MutationStepSize: 0.05,
		MutationStep:     2,
		MaximumMutation:  0.30,
		CrossoverFactor:  0.6,
		DifferenceLevel:  90,
		ElitesCount:      2,
		CorrectnessBonus: 1,
		CostBonus:        1,
		Selection:        SimpleSelection,
		Crossover:        SimpleCrossover,
	}
}

// Bonus returns the coefficients of the fitness function.
func (cfg Config) Bonus() Bonus {
	return Bonus{Correctness: cfg.CorrectnessBonus, Cost: cfg.CostBonus}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the parameters are consistent.
// The returned error, if any, wraps ErrInvalidConfig.
func (cfg Config) Validate() error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, ferr := range verrs {
				msgs[i] = fmt.Sprintf("%s=%v does not satisfy %q", ferr.Field(), ferr.Value(), ferr.ActualTag()+paramSuffix(ferr.Param()))
			}
			return errors.Wrap(ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	if int(cfg.Selection) >= len(selectionNames) {
		return errors.Wrapf(ErrInvalidConfig, "invalid selection type %d", cfg.Selection)
	}
	if int(cfg.Crossover) >= len(crossoverNames) {
		return errors.Wrapf(ErrInvalidConfig, "invalid crossover type %d", cfg.Crossover)
	}
	if cfg.MutationFactor < cfg.MinimumMutation || cfg.MutationFactor > cfg.MaximumMutation {
		return errors.Wrapf(ErrInvalidConfig, "mutation factor %g is not in [%g, %g]", cfg.MutationFactor, cfg.MinimumMutation, cfg.MaximumMutation)
	}
	if 2*cfg.ElitesCount-1 >= cfg.PopulationSize {
		return errors.Wrapf(ErrInvalidConfig, "%d elites do not fit in a population of %d", cfg.ElitesCount, cfg.PopulationSize)
	}
	return nil
}

func paramSuffix(param string) string {
	if param == "" {
		return ""
	}
	return "=" + param
}
