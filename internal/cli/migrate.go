package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/modu-ai/pkgkit/internal/manifest"
	"github.com/modu-ai/pkgkit/internal/migrate"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [path]",
		Short: "Align an existing package with the conventions",
		Long: `Compare the package at path (default: current directory) with the
conventions and print what would change. Nothing is written unless
--write is given. --only limits the run to a comma-separated list of
sections. --diff previews the pending changes as unified diffs.`,
		Example: `  pkgkit migrate
  pkgkit migrate packages/widget --only package-json,nvmrc
  pkgkit migrate --diff
  pkgkit migrate --write`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: validateMigrateFlags,
		RunE:    runMigrate,
	}
	f := cmd.Flags()
	f.Bool("write", false, "Apply the changes instead of printing them")
	f.String("only", "", "Comma-separated sections to migrate (default: all)")
	f.Bool("diff", false, "Show unified diffs of pending changes (dry run only)")
	return cmd
}

// validateMigrateFlags fails on unknown sections before touching the
// filesystem.
func validateMigrateFlags(cmd *cobra.Command, _ []string) error {
	if getBoolFlag(cmd, "diff") && getBoolFlag(cmd, "write") {
		return usageError(errors.New("--diff cannot be combined with --write"))
	}
	_, err := migrate.ParseSelector(getStringFlag(cmd, "only"))
	return usageError(err)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	d := GetDeps()
	if d == nil {
		return fmt.Errorf("dependencies not initialized")
	}
	ctx := cmd.Context()
	p := newPrinter(cmd.OutOrStdout(), d.Settings.NoColor)

	only, err := migrate.ParseSelector(getStringFlag(cmd, "only"))
	if err != nil {
		return usageError(err)
	}
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	write := getBoolFlag(cmd, "write")

	cfg := migrate.DefaultConfig(d.Settings.Scope)
	planner := migrate.NewPlanner(cfg, d.Templates, d.Logger,
		migrate.WithDirtyCheck(d.Dirty),
		migrate.WithProgress(d.Progress),
	)
	res, err := planner.Run(ctx, migrate.Options{
		Dir:     dir,
		Write:   write,
		Only:    only,
		Confirm: confirmScope(d),
	})
	if err != nil {
		return migrateError(err, res)
	}

	for _, w := range res.Warnings {
		p.warning("%s", w)
	}
	plan := res.Plan
	p.line("%s %s", p.st.primary.Render("Package"), p.st.bold.Render(plan.Package))
	for _, l := range plan.Lines() {
		p.step("%s", l)
	}
	p.line("")
	if getBoolFlag(cmd, "diff") && plan.Pending() {
		diffs, err := planner.Diff(ctx, plan)
		if err != nil {
			return fmt.Errorf("diff: %w", err)
		}
		for _, fd := range diffs {
			p.diff(fd.Text)
		}
	}
	if !write {
		if plan.Pending() {
			p.note("Dry run. Re-run with --write to apply.")
		} else {
			p.success("Already aligned. Nothing to do.")
		}
		return nil
	}
	p.success("%s", res.Summary())
	return nil
}

// confirmScope asks before migrating a package of another scope. In
// headless mode it proceeds.
func confirmScope(d *Dependencies) migrate.ConfirmFunc {
	if d.Headless.IsHeadless() {
		return nil
	}
	return func(ctx context.Context, packageName string) (bool, error) {
		return d.Prompter.Confirm(ctx, fmt.Sprintf("Detected package: %s. Continue?", packageName), true)
	}
}

// migrateError adds what was already applied to a failed run.
func migrateError(err error, res *migrate.Result) error {
	var se *manifest.SchemaError
	switch {
	case isCancelled(err):
		return err
	case errors.As(err, &se):
		return fmt.Errorf("invalid %s: %w", manifest.FileName, err)
	case res != nil && res.State == migrate.StateFailed && (res.Patches > 0 || len(res.Synced) > 0):
		return fmt.Errorf("%w (before failing: %s)", err, res.Summary())
	}
	return err
}
