package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modu-ai/pkgkit/internal/config"
	"github.com/modu-ai/pkgkit/pkg/version"
)

const appName = "pkgkit"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Create packages and keep them aligned with house conventions",
		Long: `pkgkit creates new TypeScript packages from templates and migrates
existing packages toward the shared conventions: scripts, lint config,
formatting, git hooks and AI assistant instructions.

Running pkgkit without a command starts create.`,
		Version:           version.GetVersion(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initDeps,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate(fmt.Sprintf("%s %s\n", appName, version.GetFullVersion()))

	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (default: ~/.config/pkgkit/config.yaml)")
	pf.String("scope", "", "Package scope, e.g. @modu (overrides config)")
	pf.String("templates", "", "Template directory (default: embedded templates)")
	pf.Bool("debug", false, "Log debug output to stderr")
	pf.Bool("no-color", false, "Disable colored output")

	root.AddCommand(newCreateCmd(), newMigrateCmd())
	root.SetHelpFunc(renderHelp)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError(err)
	})
	return root
}

// Execute runs the command line args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(withDefaultCommand(root, args))
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return report(err, stderr, noColorFlag(root))
}

// report prints err and maps it to an exit code.
func report(err error, w io.Writer, noColor bool) int {
	if err == nil {
		return ExitOK
	}
	p := newPrinter(w, noColor)
	if isCancelled(err) {
		p.note("Cancelled. Nothing was changed.")
		return ExitOK
	}
	p.failure("%s", err)
	var ue *UsageError
	if errors.As(err, &ue) || strings.HasPrefix(err.Error(), "unknown command") {
		p.note("Run '%s help' for usage.", appName)
	}
	return ExitError
}

// initDeps loads settings and wires the services, unless a test already
// injected them.
func initDeps(cmd *cobra.Command, _ []string) error {
	if deps != nil || cmd.Name() == "help" {
		return nil
	}
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	settings, err := config.Load(path)
	if err != nil {
		return err
	}
	if flags.Changed("scope") {
		settings.Scope, _ = flags.GetString("scope")
	}
	if flags.Changed("templates") {
		settings.TemplatesDir, _ = flags.GetString("templates")
	}
	if flags.Changed("debug") {
		settings.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("no-color") {
		settings.NoColor, _ = flags.GetBool("no-color")
	}
	if err := config.Validate(settings); err != nil {
		return usageError(err)
	}

	d, err := InitDependencies(settings, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	SetDeps(d)
	return nil
}

func noColorFlag(cmd *cobra.Command) bool {
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	if deps != nil && deps.Settings != nil && deps.Settings.NoColor {
		return true
	}
	v, _ := cmd.PersistentFlags().GetBool("no-color")
	return v
}

// withDefaultCommand prepends "create" when args name no command.
func withDefaultCommand(root *cobra.Command, args []string) []string {
	create, _, _ := root.Find([]string{"create"})
	takesValue := func(name string) bool {
		f := root.PersistentFlags().Lookup(name)
		if f == nil && create != nil {
			f = create.Flags().Lookup(name)
		}
		return f != nil && f.Value.Type() != "bool"
	}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-h" || a == "--help" || a == "-v" || a == "--version":
			return args
		case a == "--":
			return append([]string{"create"}, args...)
		case strings.HasPrefix(a, "--"):
			name := strings.TrimPrefix(a, "--")
			if !strings.Contains(name, "=") && takesValue(name) {
				i++
			}
		case strings.HasPrefix(a, "-"):
		default:
			return args
		}
	}
	return append([]string{"create"}, args...)
}
