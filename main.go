package main

import (
	"os"

	"github.com/cottand/tinf/cmd"
	"github.com/spf13/cobra"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "tinf [subcommand]",
	Short:        "tinf: a type lattice for inferring the types of dynamic programs",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(cmd.MergeCmd)
	rootCmd.AddCommand(cmd.SolveCmd)
	rootCmd.AddCommand(cmd.KeysCmd)
}
