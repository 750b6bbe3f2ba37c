package cmd

import (
	"fmt"

	"github.com/cottand/tinf/fixpoint"
	"github.com/cottand/tinf/inferring"
	"github.com/spf13/cobra"
)

var SolveCmd = &cobra.Command{
	Use:          "solve graph.yaml",
	Short:        "Propagate types along a graph until they stop changing",
	RunE:         runSolve,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var (
	solveWorkers   int
	solveMaxRounds int
	solveMaxDepth  int
)

func init() {
	SolveCmd.Flags().IntVarP(&solveWorkers, "workers", "w", fixpoint.DefaultWorkers, "number of concurrent workers")
	SolveCmd.Flags().IntVar(&solveMaxRounds, "max-rounds", fixpoint.DefaultMaxRounds, "give up after this many rounds")
	SolveCmd.Flags().IntVar(&solveMaxDepth, "max-depth", inferring.DefaultMaxDepth, "depth after which types are collapsed")
	addLogLevelFlag(SolveCmd)
}

func runSolve(cmd *cobra.Command, args []string) error {
	applyLogLevel()

	g, err := fixpoint.LoadGraphFile(args[0])
	if err != nil {
		return err
	}
	u := inferring.NewUniverse(inferring.WithMaxDepth(solveMaxDepth))
	solver := fixpoint.NewSolver(u,
		fixpoint.WithWorkers(solveWorkers),
		fixpoint.WithMaxRounds(solveMaxRounds),
	)
	res, err := solver.Solve(cmd.Context(), g)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, slot := range res.Slots {
		if _, err := fmt.Fprintf(out, "%s: %s\n", slot.Name, slot.Type); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(out, "# fixpoint after %d rounds\n", res.Rounds)
	return err
}
