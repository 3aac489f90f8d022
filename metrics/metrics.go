// Package metrics exposes the progress of the genetic solver as Prometheus metrics.
package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/crillab/gensat/genetic"
)

const namespace = "gensat"

// A Recorder is a genetic.Observer that keeps track of the evolution in its own registry.
// Counters are cumulated over all the runs observed by the recorder; gauges describe the last generation.
type Recorder struct {
	Registry *prometheus.Registry

	bestFitness         prometheus.Gauge
	bestKnownFitness    prometheus.Gauge
	bestKnownWeight     prometheus.Gauge
	satisfiable         prometheus.Gauge
	satisfiableEntities prometheus.Gauge
	mutation            prometheus.Gauge
	certainty           prometheus.Gauge
	stagnation          prometheus.Gauge
	generations         prometheus.Counter
	improvements        prometheus.Counter
	runs                *prometheus.CounterVec
	runDuration         prometheus.Histogram
}

// NewRecorder returns a recorder whose metrics all carry the given constant labels.
func NewRecorder(labels prometheus.Labels) *Recorder {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name, Help: help, ConstLabels: labels})
	}
	r := &Recorder{
		Registry:            prometheus.NewRegistry(),
		bestFitness:         gauge("generation_best_fitness", "Fitness of the best entity of the last generation"),
		bestKnownFitness:    gauge("best_fitness", "Fitness of the best entity found so far"),
		bestKnownWeight:     gauge("best_weight", "Weight of the best entity found so far"),
		satisfiable:         gauge("best_satisfiable", "1 if the best entity found so far satisfies all clauses, 0 else"),
		satisfiableEntities: gauge("satisfiable_entities", "Number of entities of the last generation satisfying all clauses"),
		mutation:            gauge("mutation_factor", "Current mutation factor"),
		certainty:           gauge("certainty_percent", "Percentage of the last generation sharing the best fitness"),
		stagnation:          gauge("stagnation_generations", "Number of consecutive generations without fitness change"),
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "generations_total", Help: "Number of bred generations", ConstLabels: labels,
		}),
		improvements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "improvements_total", Help: "Number of times the best entity was replaced", ConstLabels: labels,
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "runs_total", Help: "Number of runs, by outcome", ConstLabels: labels,
		}, []string{"outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "run_duration_seconds", Help: "Duration of runs", ConstLabels: labels,
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}
	r.Registry.MustRegister(
		r.bestFitness, r.bestKnownFitness, r.bestKnownWeight, r.satisfiable, r.satisfiableEntities,
		r.mutation, r.certainty, r.stagnation, r.generations, r.improvements, r.runs, r.runDuration,
	)
	return r
}

// Observe implements genetic.Observer.
func (r *Recorder) Observe(s genetic.Snapshot) {
	r.bestFitness.Set(float64(s.BestFitness))
	r.bestKnownFitness.Set(float64(s.BestKnownFitness))
	r.bestKnownWeight.Set(float64(s.BestKnownWeight))
	if s.Satisfiable {
		r.satisfiable.Set(1)
	} else {
		r.satisfiable.Set(0)
	}
	r.satisfiableEntities.Set(float64(s.SatisfiableEntities))
	r.mutation.Set(s.Mutation)
	r.certainty.Set(s.Certainty)
	r.stagnation.Set(float64(s.Stagnation))
	if s.Generation > 0 { // Initial population is not bred
		r.generations.Inc()
		if s.Improved {
			r.improvements.Inc()
		}
	}
}

// Report implements genetic.Reporter: it records the outcome and duration of a run.
func (r *Recorder) Report(res genetic.Result) error {
	r.runs.WithLabelValues(res.Outcome.String()).Inc()
	r.runDuration.Observe(res.Elapsed.Seconds())
	return nil
}

// WriteTextfile writes the metrics to path, in the format of the node exporter's textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return errors.Wrapf(err, "could not write metrics to %q", path)
	}
	return nil
}
