package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "gensat",
		Short: "Finds high-weight assignments of weighted 3-CNF formulas with a genetic algorithm",
		Long: `gensat looks for an assignment of a weighted 3-CNF formula that satisfies all clauses
and maximizes the sum of the weights of true vars. If no such assignment is found,
the assignment satisfying the most clauses is reported.

Problems are read either in the text format
    3 5 3 2 (x1 | !x2 | x3) & (!x1 | x2 | x3)
or, for files with a .cnf or .mwcnf extension, in the DIMACS CNF format with an additional
"w" line listing weights.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			} else {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "sets verbose mode on")
	cmd.AddCommand(
		newSolveCmd(&verbose),
		newExactCmd(&verbose),
		newCheckCmd(),
		newGenerateCmd(),
		newConfigCmd(),
	)
	return cmd
}
