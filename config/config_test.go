package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gensat/genetic"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, genetic.DefaultConfig(), cfg)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "gensat.yaml", `
population-size: 50
selection: rank
crossover-type: custom
mutation: 0.1
seed: 7
`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	expected := genetic.DefaultConfig()
	expected.PopulationSize = 50
	expected.Selection = genetic.RankSelection
	expected.Crossover = genetic.CustomCrossover
	expected.MutationFactor = 0.1
	expected.Seed = 7
	assert.Equal(t, expected, cfg)
}

func TestLoadJSONFile(t *testing.T) {
	path := writeFile(t, "gensat.json", `{"generations": 10, "selection": "Grouping"}`)
	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Generations)
	assert.Equal(t, genetic.GroupingSelection, cfg.Selection)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("GENSAT_POPULATION_SIZE", "60")
	t.Setenv("GENSAT_SELECTION", "grouping")
	t.Setenv("GENSAT_CROSSOVER_TYPE", "random")
	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.PopulationSize)
	assert.Equal(t, genetic.GroupingSelection, cfg.Selection)
	assert.Equal(t, genetic.RandomCrossover, cfg.Crossover)
}

func TestLoadPriorities(t *testing.T) {
	path := writeFile(t, "gensat.yaml", "population-size: 50\ngenerations: 20\nelites: 3\n")
	t.Setenv("GENSAT_POPULATION_SIZE", "60")
	t.Setenv("GENSAT_GENERATIONS", "30")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--population-size=70", "--crossover-type=random", "--seed=9", "--crossover=0.8"}))
	cfg, err := Load(path, fs)
	require.NoError(t, err)
	assert.Equal(t, 70, cfg.PopulationSize, "flags override everything")
	assert.Equal(t, 30, cfg.Generations, "env overrides file")
	assert.Equal(t, 3, cfg.ElitesCount, "file overrides defaults")
	assert.Equal(t, genetic.RandomCrossover, cfg.Crossover)
	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Equal(t, 0.8, cfg.CrossoverFactor)
	assert.Equal(t, genetic.DefaultConfig().MutationStep, cfg.MutationStep, "unset flags do not override defaults")
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown.yaml", "population: 50\n"},
		{"selection.yaml", "selection: best\n"},
		{"type.yaml", "generations: many\n"},
		{"population.yaml", "population-size: 1\n"},
		{"mutation.yaml", "mutation: 0.5\nmaximum-mutation: 0.3\n"},
		{"elites.yaml", "population-size: 4\nelites: 3\n"},
		{"syntax.yaml", "population-size: [\n"},
	}
	for _, test := range tests {
		_, err := Load(writeFile(t, test.name, test.content), nil)
		assert.True(t, errors.Is(err, genetic.ErrInvalidConfig), "%s: unexpected error %v", test.name, err)
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), nil)
	assert.True(t, errors.Is(err, genetic.ErrInvalidConfig))
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := genetic.DefaultConfig()
	cfg.Selection = genetic.CustomSelection
	cfg.Crossover = genetic.RandomCrossover
	cfg.PopulationSize = 300
	cfg.Seed = 123
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, cfg))
	assert.Contains(t, buf.String(), "selection: custom\n")
	path := writeFile(t, "gensat.yaml", buf.String())
	loaded, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
