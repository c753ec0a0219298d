// Package cli provides the Cobra command tree of pkgkit and the
// composition root that wires the domain packages together.
package cli

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/modu-ai/pkgkit/internal/config"
	"github.com/modu-ai/pkgkit/internal/feature"
	"github.com/modu-ai/pkgkit/internal/gitstate"
	"github.com/modu-ai/pkgkit/internal/migrate"
	"github.com/modu-ai/pkgkit/internal/pkgmgr"
	"github.com/modu-ai/pkgkit/internal/resilience"
	"github.com/modu-ai/pkgkit/internal/scaffold"
	"github.com/modu-ai/pkgkit/internal/template"
	"github.com/modu-ai/pkgkit/internal/ui"
)

// Prompter asks every interactive question of the CLI.
type Prompter interface {
	scaffold.Prompter
	Confirm(ctx context.Context, title string, initial bool) (bool, error)
}

// Dependencies holds the services used by commands. This is the
// composition root: the only place where concrete types are built.
type Dependencies struct {
	Settings  *config.Settings
	Logger    *slog.Logger
	Templates fs.FS
	Manager   pkgmgr.Manager
	Registry  *feature.Registry
	Headless  *ui.HeadlessManager
	Prompter  Prompter
	Progress  *ui.Progress
	Dirty     migrate.DirtyFunc
}

// deps is set by the root command before any subcommand runs. Tests
// inject their own through SetDeps.
var deps *Dependencies

// GetDeps returns the current Dependencies, or nil before initialization.
func GetDeps() *Dependencies {
	return deps
}

// SetDeps replaces the global dependencies (used for testing).
func SetDeps(d *Dependencies) {
	deps = d
}

// InitDependencies builds every service from settings. Progress output
// goes to out and debug logs to errOut.
func InitDependencies(settings *config.Settings, out, errOut io.Writer) (*Dependencies, error) {
	logger := newLogger(settings.Debug, errOut)

	templates, err := template.Source(settings.TemplatesDir)
	if err != nil {
		return nil, err
	}
	manager, err := pkgmgr.New(settings.PackageManager,
		pkgmgr.WithLogger(logger),
		pkgmgr.WithRetry(resilience.DefaultPolicy()),
	)
	if err != nil {
		return nil, fmt.Errorf("package manager: %w", err)
	}

	theme := ui.NewTheme(noColor(settings))
	hm := ui.NewHeadlessManager()

	return &Dependencies{
		Settings:  settings,
		Logger:    logger,
		Templates: templates,
		Manager:   manager,
		Registry:  feature.Default(),
		Headless:  hm,
		Prompter:  ui.NewPrompter(theme, hm),
		Progress:  ui.NewProgress(theme, hm, out),
		Dirty:     gitstate.Dirty,
	}, nil
}

// newLogger discards logs unless debug is set.
func newLogger(debug bool, w io.Writer) *slog.Logger {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func noColor(settings *config.Settings) bool {
	return settings.NoColor || os.Getenv("NO_COLOR") != ""
}
