package inferring

import (
	"io"
	"log/slog"

	"github.com/pkg/errors"
)

// violated aborts the inference: it is only called when the lattice itself is being misused,
// never because of the program being typed
func violated(format string, args ...any) {
	panic(errors.Errorf("inferring: invariant violated: "+format, args...))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
