package cli

import (
	"errors"

	"github.com/modu-ai/pkgkit/internal/migrate"
	"github.com/modu-ai/pkgkit/internal/ui"
)

// Exit codes returned by Execute.
const (
	ExitOK    = 0
	ExitError = 1
)

// UsageError is a problem with the command line itself. It is reported
// before any filesystem access.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageError(err error) error {
	if err == nil {
		return nil
	}
	return &UsageError{Err: err}
}

// isCancelled reports whether err means the user backed out.
func isCancelled(err error) bool {
	return errors.Is(err, ui.ErrCancelled) || errors.Is(err, migrate.ErrDeclined)
}
