// Package pkgmgr drives the JavaScript package manager of a target
// package through its command line.
package pkgmgr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"slices"
	"strings"

	"github.com/modu-ai/pkgkit/internal/resilience"
)

// ErrUnsupported indicates an unknown package manager name.
var ErrUnsupported = errors.New("pkgmgr: unsupported package manager")

// ErrNotFound indicates the package manager binary is not on PATH.
var ErrNotFound = errors.New("pkgmgr: binary not found")

// Manager installs and removes dependencies of the package in dir.
type Manager interface {
	// Name returns the command name, e.g. "pnpm".
	Name() string

	// AddDev installs name as a dev dependency. An empty version means
	// latest. It reports false when the package was already installed.
	AddDev(ctx context.Context, dir, name, version string) (bool, error)

	// Remove uninstalls name. It reports false when it was not installed.
	Remove(ctx context.Context, dir, name string) (bool, error)
}

// RunFunc executes bin with args in dir and returns combined output.
type RunFunc func(ctx context.Context, dir, bin string, args ...string) ([]byte, error)

// Supported package manager names.
var Supported = []string{"pnpm", "npm", "yarn", "bun"}

// CLI is a Manager backed by the package manager's command line.
type CLI struct {
	bin    string
	run    RunFunc
	retry  resilience.RetryPolicy
	logger *slog.Logger
}

// Option configures a CLI.
type Option func(*CLI)

// WithRunner replaces the subprocess runner.
func WithRunner(run RunFunc) Option {
	return func(c *CLI) {
		c.run = run
	}
}

// WithRetry retries failed installs and removals under policy. Missing
// binaries and no-op answers are never retried.
func WithRetry(policy resilience.RetryPolicy) Option {
	return func(c *CLI) {
		c.retry = policy
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *CLI) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New returns a CLI manager for name.
func New(name string, opts ...Option) (*CLI, error) {
	if !slices.Contains(Supported, name) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
	c := &CLI{
		bin:    name,
		run:    execRun,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Name returns the command name.
func (c *CLI) Name() string {
	return c.bin
}

// AddDev installs name@version as a dev dependency.
func (c *CLI) AddDev(ctx context.Context, dir, name, version string) (bool, error) {
	spec := name
	if version != "" {
		spec = name + "@" + version
	}
	c.logger.Debug("installing dev dependency", "manager", c.bin, "package", spec, "dir", dir)

	out, err := c.runRetry(ctx, dir, c.addArgs(spec), alreadyInstalled)
	if err != nil {
		if alreadyInstalled(out) {
			return false, nil
		}
		return false, commandError(c.bin, "add", out, err)
	}
	return true, nil
}

// Remove uninstalls name.
func (c *CLI) Remove(ctx context.Context, dir, name string) (bool, error) {
	c.logger.Debug("removing dependency", "manager", c.bin, "package", name, "dir", dir)

	out, err := c.runRetry(ctx, dir, c.removeArgs(name), notInstalled)
	if err != nil {
		if notInstalled(out) {
			return false, nil
		}
		return false, commandError(c.bin, "remove", out, err)
	}
	return true, nil
}

// runRetry runs the manager under the retry policy. Output matching
// settled stops retrying.
func (c *CLI) runRetry(ctx context.Context, dir string, args []string, settled func([]byte) bool) ([]byte, error) {
	var out []byte
	attempt := 0
	err := resilience.Retry(ctx, c.retry, func() error {
		attempt++
		if attempt > 1 {
			c.logger.Debug("retrying package manager", "manager", c.bin, "attempt", attempt, "args", args)
		}
		var err error
		out, err = c.run(ctx, dir, c.bin, args...)
		if err != nil && (errors.Is(err, ErrNotFound) || settled(out)) {
			return resilience.Permanent(err)
		}
		return err
	})
	return out, err
}

func alreadyInstalled(out []byte) bool {
	return strings.Contains(strings.ToLower(string(out)), "already")
}

func notInstalled(out []byte) bool {
	msg := strings.ToLower(string(out))
	return strings.Contains(msg, "not present") || strings.Contains(msg, "cannot remove") || strings.Contains(msg, "not installed")
}

func (c *CLI) addArgs(spec string) []string {
	switch c.bin {
	case "npm":
		return []string{"install", "--save-dev", spec}
	case "yarn":
		return []string{"add", "--dev", spec}
	default:
		return []string{"add", "-D", spec}
	}
}

func (c *CLI) removeArgs(name string) []string {
	if c.bin == "npm" {
		return []string{"uninstall", name}
	}
	return []string{"remove", name}
}

func commandError(bin, op string, out []byte, err error) error {
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		msg = err.Error()
	}
	return fmt.Errorf("%s %s: %s: %w", bin, op, msg, err)
}

func execRun(ctx context.Context, dir, bin string, args ...string) ([]byte, error) {
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, bin)
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err = cmd.Run()
	return out.Bytes(), err
}
