package cmd

import (
	"fmt"

	"github.com/cottand/tinf/inferring"
	"github.com/cottand/tinf/internal/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var MergeCmd = &cobra.Command{
	Use:   "merge TYPE [TYPE...]",
	Short: "Print the least upper bound of some types",
	Long: `Print the least upper bound of some types, written like
  array{"name": string, *: int|false}
Classes used by the types must be declared with --class.`,
	RunE:         runMerge,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var (
	mergeMaxDepth  int
	mergeNoOrFalse bool
	mergeClasses   []string
)

func init() {
	MergeCmd.Flags().IntVar(&mergeMaxDepth, "max-depth", inferring.DefaultMaxDepth, "depth after which types are collapsed")
	MergeCmd.Flags().BoolVar(&mergeNoOrFalse, "no-or-false", false, "ignore whether merged types may be false")
	MergeCmd.Flags().StringArrayVar(&mergeClasses, "class", nil, "declare a class, as Name or Name=Parent")
	addLogLevelFlag(MergeCmd)
}

func runMerge(cmd *cobra.Command, args []string) error {
	applyLogLevel()

	u := inferring.NewUniverse(inferring.WithMaxDepth(mergeMaxDepth))
	if err := declareClasses(u.Classes, mergeClasses); err != nil {
		return err
	}
	types := make([]inferring.TypeData, len(args))
	for i, arg := range args {
		t, err := u.ParseType(arg)
		if err != nil {
			return errors.Wrapf(err, "argument %d", i+1)
		}
		types[i] = t
	}

	w := u.NewWorker()
	res := types[0].Clone()
	for _, t := range types[1:] {
		w.SetLCA(&res, t, !mergeNoOrFalse)
	}
	log.Section("inferring").Debug("merged", "types", len(types), "height", res.Height())

	_, err := fmt.Fprintln(cmd.OutOrStdout(), res.String())
	return err
}
