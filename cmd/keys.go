package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/cottand/tinf/inferring"
	"github.com/spf13/cobra"
)

var KeysCmd = &cobra.Command{
	Use:          "keys LITERAL [LITERAL...]",
	Short:        "Show how literals are interned as keys",
	RunE:         runKeys,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

func init() {
	addLogLevelFlag(KeysCmd)
}

func keyKind(k inferring.Key) string {
	switch {
	case k.IsAny():
		return "any"
	case k.IsInt():
		return "int"
	default:
		return "string"
	}
}

func runKeys(cmd *cobra.Command, args []string) error {
	applyLogLevel()

	u := inferring.NewUniverse()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LITERAL\tKIND\tID\tKEY")
	for _, arg := range args {
		k := u.Keys.KeyFor(arg)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", arg, keyKind(k), k.ID(), u.Keys.KeyString(k))
	}
	return tw.Flush()
}
