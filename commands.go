package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/crillab/gensat/config"
	"github.com/crillab/gensat/exact"
	"github.com/crillab/gensat/formula"
	"github.com/crillab/gensat/genetic"
	"github.com/crillab/gensat/metrics"
	"github.com/crillab/gensat/report"
)

const (
	textFormat = "text"
	yamlFormat = "yaml"
	cnfFormat  = "cnf"
)

func parse(path string) (*formula.Problem, error) {
	pb, err := formula.ParseFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not parse problem")
	}
	return pb, nil
}

func banner(w io.Writer, pb *formula.Problem) {
	fmt.Fprintf(w, "c ======================================================================================\n")
	fmt.Fprintf(w, "c | Number of clauses   : %9d                                                    |\n", len(pb.Clauses))
	fmt.Fprintf(w, "c | Number of variables : %9d                                                    |\n", pb.NbVars)
	fmt.Fprintf(w, "c | Total weight        : %9d                                                    |\n", pb.TotalWeight())
	fmt.Fprintf(w, "c ======================================================================================\n")
}

func newSolveCmd(verbose *bool) *cobra.Command {
	var (
		cfgPath     string
		runs        int
		format      string
		metricsPath string
	)
	cmd := &cobra.Command{
		Use:   "solve FILE",
		Short: "Solves a problem with the genetic algorithm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if format != textFormat && format != yamlFormat {
				return errors.Errorf("invalid format %q (expected %s or %s)", format, textFormat, yamlFormat)
			}
			if runs < 1 {
				return errors.Errorf("invalid number of runs %d", runs)
			}
			pb, err := parse(args[0])
			if err != nil {
				return err
			}
			cfg, err := config.Load(cfgPath, cmd.Flags())
			if err != nil {
				return errors.Wrap(err, "could not load configuration")
			}
			out := cmd.OutOrStdout()
			var reporter genetic.Reporter
			if format == textFormat {
				fmt.Fprintf(out, "c solving %s\n", args[0])
				if *verbose {
					banner(out, pb)
				}
				reporter = report.NewText(out, pb, *verbose)
			} else {
				y := report.NewYAML(out, pb)
				defer func() {
					if cerr := y.Close(); err == nil {
						err = cerr
					}
				}()
				reporter = y
			}
			var rec *metrics.Recorder
			if metricsPath != "" {
				rec = metrics.NewRecorder(prometheus.Labels{
					"selection": cfg.Selection.String(),
					"crossover": cfg.Crossover.String(),
				})
				reporter = report.Tee(reporter, rec)
			}
			// Run i uses seed+i, so that each run can be replayed on its own with --seed.
			seed := cfg.Seed
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			for i := 0; i < runs; i++ {
				cfg.Seed = seed + uint64(i)
				s, err := genetic.New(pb, cfg)
				if err != nil {
					return err
				}
				s.Log = logrus.WithFields(logrus.Fields{"run": i + 1, "seed": s.Seed()})
				s.Reporter = reporter
				if rec != nil {
					s.Observer = rec
				}
				if _, err := s.Run(); err != nil {
					return err
				}
			}
			if rec != nil {
				return rec.WriteTextfile(metricsPath)
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&cfgPath, "config", "", "configuration file (YAML, JSON or TOML)")
	fs.IntVar(&runs, "runs", 1, "number of successive runs, run i using seed+i-1")
	fs.StringVar(&format, "format", textFormat, "output format (text or yaml)")
	fs.StringVar(&metricsPath, "metrics-file", "", "file where Prometheus metrics are written after the runs")
	config.RegisterFlags(fs)
	return cmd
}

func newExactCmd(verbose *bool) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "exact FILE",
		Short: "Computes the optimal solution of a problem",
		Long: `Computes the optimal solution of a problem, either by enumerating all assignments
(only possible for problems with at most 30 vars), or with a MaxSAT solver.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := parse(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "c solving %s\n", args[0])
			var res exact.Result
			switch method {
			case "enumerate":
				res, err = exact.Enumerate(cmd.Context(), pb)
				if err != nil {
					return err
				}
			case "maxsat":
				res = exact.Optimize(pb)
			default:
				return errors.Errorf("invalid method %q (expected enumerate or maxsat)", method)
			}
			return report.NewText(out, pb, *verbose).Exact(res)
		},
	}
	cmd.Flags().StringVar(&method, "method", "maxsat", "exact method (enumerate or maxsat)")
	return cmd
}

func newCheckCmd() *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Checks whether all clauses of a problem can be satisfied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pb, err := parse(args[0])
			if err != nil {
				return err
			}
			res, err := exact.Check(cmd.Context(), pb)
			if err != nil {
				return err
			}
			txt := report.NewText(cmd.OutOrStdout(), pb, false)
			if err := txt.Check(res); err != nil {
				return err
			}
			if !explain || res.Status != formula.Unsat {
				return nil
			}
			mus, err := exact.MUS(cmd.Context(), pb)
			if err != nil {
				return errors.Wrap(err, "could not explain unsatisfiability")
			}
			return txt.MUS(mus)
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "if the problem is unsatisfiable, outputs a minimal unsatisfiable subset of clauses")
	return cmd
}

func newGenerateCmd() *cobra.Command {
	var (
		nbVars, nbClauses, maxWeight int
		seed                         uint64
		format, output               string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generates a random problem",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != textFormat && format != cnfFormat {
				return errors.Errorf("invalid format %q (expected %s or %s)", format, textFormat, cnfFormat)
			}
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}
			pb, err := formula.Generate(rand.New(rand.NewPCG(seed, seed)), nbVars, nbClauses, maxWeight)
			if err != nil {
				return errors.Wrap(err, "could not generate problem")
			}
			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return errors.Wrapf(err, "could not create %q", output)
				}
				defer func() { _ = f.Close() }()
				w = f
			}
			if format == cnfFormat {
				_, err = fmt.Fprintf(w, "c generated with seed %d\n%s", seed, pb.CNF())
			} else {
				_, err = fmt.Fprintln(w, pb.String())
			}
			return errors.Wrap(err, "could not write problem")
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&nbVars, "vars", 30, "number of vars")
	fs.IntVar(&nbClauses, "clauses", 100, "number of clauses")
	fs.IntVar(&maxWeight, "max-weight", 100, "maximum weight of a var")
	fs.Uint64Var(&seed, "seed", 0, "seed of the random source (0 means time-based)")
	fs.StringVar(&format, "format", textFormat, "output format (text or cnf)")
	fs.StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Prints the configuration the solver would use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath, cmd.Flags())
			if err != nil {
				return err
			}
			return config.Write(cmd.OutOrStdout(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "configuration file (YAML, JSON or TOML)")
	config.RegisterFlags(cmd.Flags())
	return cmd
}
