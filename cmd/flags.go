package cmd

import (
	"log/slog"
	"strings"

	"github.com/cottand/tinf/inferring"
	"github.com/cottand/tinf/internal/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var logLevel int

func addLogLevelFlag(c *cobra.Command) {
	c.Flags().IntVarP(&logLevel, "log-level", "l", int(slog.LevelError), "log level")
}

func applyLogLevel() {
	log.SetLevel(slog.Level(logLevel))
}

// declareClasses registers classes written as Name or Name=Parent, parents first
func declareClasses(classes *inferring.Classes, decls []string) error {
	for _, decl := range decls {
		name, parentName, hasParent := strings.Cut(decl, "=")
		parent := inferring.NoClass
		if hasParent {
			var ok bool
			parent, ok = classes.Lookup(parentName)
			if !ok {
				return errors.Errorf("class %s: parent %s must be declared first", name, parentName)
			}
		}
		if _, err := classes.Declare(name, parent); err != nil {
			return errors.Wrapf(err, "could not declare %q", decl)
		}
	}
	return nil
}
