package metrics

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crillab/gensat/formula"
	"github.com/crillab/gensat/genetic"
)

func run(t *testing.T, r *Recorder) genetic.Result {
	t.Helper()
	pb, err := formula.New([]int{5, 3}, [][]int{{1, -2}})
	require.NoError(t, err)
	cfg := genetic.DefaultConfig()
	cfg.PopulationSize = 20
	cfg.Generations = 30
	cfg.Seed = 1
	s, err := genetic.New(pb, cfg)
	require.NoError(t, err)
	log := logrus.New()
	log.SetOutput(io.Discard)
	s.Log = log
	s.Observer = r
	s.Reporter = r
	res, err := s.Run()
	require.NoError(t, err)
	return res
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(prometheus.Labels{"selection": "simple"})
	res := run(t, r)
	assert.Equal(t, float64(res.Generations), testutil.ToFloat64(r.generations))
	assert.Equal(t, float64(res.Stats.NbImprovements), testutil.ToFloat64(r.improvements))
	assert.Equal(t, float64(res.Fitness), testutil.ToFloat64(r.bestKnownFitness))
	assert.Equal(t, float64(res.Weight), testutil.ToFloat64(r.bestKnownWeight))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.satisfiable))
	assert.Equal(t, res.Certainty, testutil.ToFloat64(r.certainty))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs.WithLabelValues(genetic.Solved.String())))
	assert.Equal(t, 1, testutil.CollectAndCount(r.runDuration))

	run(t, r)
	assert.Equal(t, 2.0, testutil.ToFloat64(r.runs.WithLabelValues(genetic.Solved.String())))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder(nil)
	run(t, r)
	path := filepath.Join(t.TempDir(), "gensat.prom")
	require.NoError(t, r.WriteTextfile(path))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "gensat_best_fitness")
	assert.Contains(t, string(content), `gensat_runs_total{outcome="SOLVED"} 1`)

	assert.Error(t, r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "gensat.prom")))
}
