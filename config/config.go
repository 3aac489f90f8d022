// Package config loads the configuration of the genetic solver.
//
// Parameters are read, by increasing order of priority, from the default configuration,
// a configuration file (YAML, JSON or TOML), GENSAT_* environment variables and command-line flags.
// An environment variable is the name of the parameter in upper case, with dashes replaced by
// underscores, and prefixed by GENSAT_: for instance, GENSAT_POPULATION_SIZE=300.
package config

import (
	"encoding"
	"io"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/crillab/gensat/genetic"
)

// EnvPrefix is the prefix of the environment variables read by Load.
const EnvPrefix = "GENSAT"

// params lists the configuration parameters, in the order they are shown to the user.
var params = []struct {
	key   string
	usage string
}{
	{"population-size", "number of entities in each generation"},
	{"generations", "maximum number of generations"},
	{"selection", "parent selection strategy (simple, rank, grouping, custom)"},
	{"crossover-type", "crossover strategy (random, simple, custom)"},
	{"crossover", "probability that two parents are bred rather than copied"},
	{"mutation", "initial mutation factor"},
	{"minimum-mutation", "mutation factor after an improvement"},
	{"maximum-mutation", "maximum mutation factor"},
	{"mutation-step-size", "increase of the mutation factor when a satisfiable population stagnates"},
	{"mutation-step", "number of stagnant generations between two increases of the mutation factor"},
	{"difference-level", "percentage of the population sharing the best fitness to stop the evolution"},
	{"elites", "elitism parameter: at most 2*elites-1 best entities are kept in the next generation"},
	{"correctness-bonus", "fitness bonus for each satisfied clause"},
	{"cost-bonus", "fitness bonus for each unit of weight of satisfiable entities"},
	{"seed", "seed of the random source (0 means time-based)"},
}

// defaults returns the default value of each parameter.
// Values that can be marshaled as text, such as strategies, are given as strings.
func defaults() (map[string]interface{}, error) {
	res := make(map[string]interface{})
	if err := mapstructure.Decode(genetic.DefaultConfig(), &res); err != nil {
		return nil, errors.Wrap(err, "could not decode default configuration")
	}
	for key, val := range res {
		if m, ok := val.(encoding.TextMarshaler); ok {
			text, err := m.MarshalText()
			if err != nil {
				return nil, errors.Wrapf(err, "invalid default value for %q", key)
			}
			res[key] = string(text)
		}
	}
	return res, nil
}

// RegisterFlags adds a flag to fs for each configuration parameter.
func RegisterFlags(fs *pflag.FlagSet) {
	defs, err := defaults()
	if err != nil {
		panic(err)
	}
	for _, p := range params {
		switch val := defs[p.key].(type) {
		case int:
			fs.Int(p.key, val, p.usage)
		case uint64:
			fs.Uint64(p.key, val, p.usage)
		case float64:
			fs.Float64(p.key, val, p.usage)
		case string:
			fs.String(p.key, val, p.usage)
		default:
			panic(errors.Errorf("unexpected type %T for parameter %q", val, p.key))
		}
	}
}

// Load reads the configuration. path is the path to a configuration file, or "" if there is none.
// flags, if not nil, are the command-line flags; only flags named after a parameter are taken into account.
// The returned error, if any, wraps genetic.ErrInvalidConfig.
func Load(path string, flags *pflag.FlagSet) (genetic.Config, error) {
	var cfg genetic.Config
	v := viper.New()
	defs, err := defaults()
	if err != nil {
		return cfg, err
	}
	for key, val := range defs {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, errors.Wrapf(genetic.ErrInvalidConfig, "could not read configuration file %q: %v", path, err)
		}
	}
	if flags != nil {
		for _, p := range params {
			if f := flags.Lookup(p.key); f != nil {
				if err := v.BindPFlag(p.key, f); err != nil {
					return cfg, errors.Wrapf(err, "could not bind flag %q", p.key)
				}
			}
		}
	}
	hook := viper.DecodeHook(mapstructure.TextUnmarshallerHookFunc())
	if err := v.UnmarshalExact(&cfg, hook); err != nil {
		return cfg, errors.Wrapf(genetic.ErrInvalidConfig, "%v", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Write writes cfg as a YAML document that can be read back by Load.
func Write(w io.Writer, cfg genetic.Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return errors.Wrap(err, "could not encode configuration")
	}
	return errors.Wrap(enc.Close(), "could not encode configuration")
}
