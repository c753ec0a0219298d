package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/modu-ai/pkgkit/internal/feature"
	"github.com/modu-ai/pkgkit/internal/scaffold"
)

func newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [dir]",
		Short: "Create a new package from templates",
		Long: `Create a new package in <dir>/<name> (dir defaults to the current
directory). pkgkit asks for the package type, name, description, author
and optional features, deploys the package template and applies each
selected feature.

Without a terminal, or with --yes, no questions are asked: --name is
required and --type and --features choose the rest.`,
		Example: `  pkgkit create
  pkgkit create packages --name widget --type cli
  pkgkit create --yes --name tokens --type config --features formatting,gitHooks`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: validateCreateFlags,
		RunE:    runCreate,
	}
	f := cmd.Flags()
	f.String("name", "", "Package name without scope")
	f.String("type", "", "Package type: "+strings.Join(typeIDs(), ", "))
	f.StringSlice("features", nil, "Features to apply: "+strings.Join(feature.Default().IDs(), ", "))
	f.String("description", "", "Package description")
	f.String("author", "", `Author as "Name | email | url"`)
	f.BoolP("yes", "y", false, "Do not ask questions; use flags and defaults")
	return cmd
}

func typeIDs() []string {
	var ids []string
	for _, t := range scaffold.PackageTypes() {
		ids = append(ids, t.ID)
	}
	return ids
}

// getStringFlag retrieves a string flag value from the command.
func getStringFlag(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return val
}

// getBoolFlag retrieves a bool flag value from the command.
func getBoolFlag(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		return false
	}
	return val
}

// validateCreateFlags rejects bad flag values before any prompt.
func validateCreateFlags(cmd *cobra.Command, _ []string) error {
	if typ := getStringFlag(cmd, "type"); typ != "" {
		if _, err := scaffold.LookupType(typ); err != nil {
			return usageError(err)
		}
	}
	if name := getStringFlag(cmd, "name"); name != "" {
		if err := scaffold.ValidateName(name); err != nil {
			return usageError(err)
		}
	}
	if cmd.Flags().Changed("features") {
		ids, _ := cmd.Flags().GetStringSlice("features")
		if _, err := feature.Default().Resolve(ids); err != nil {
			return usageError(err)
		}
	}
	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	d := GetDeps()
	if d == nil {
		return fmt.Errorf("dependencies not initialized")
	}
	ctx := cmd.Context()
	p := newPrinter(cmd.OutOrStdout(), d.Settings.NoColor)

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	defaults := createDefaults(cmd, d, dir)

	sel := scaffold.NewSelection(d.Prompter, d.Registry)
	var (
		opts scaffold.Options
		err  error
	)
	if getBoolFlag(cmd, "yes") || d.Headless.IsHeadless() {
		opts, err = sel.Headless(defaults)
		if err != nil {
			return usageError(err)
		}
	} else {
		opts, err = sel.Ask(ctx, defaults, nil)
		if err != nil {
			return err
		}
	}

	creator := scaffold.NewCreator(d.Templates, d.Registry, d.Manager, d.Logger, scaffold.WithProgress(d.Progress))
	res, err := creator.Create(ctx, opts)
	if res != nil {
		printFeatureOutcomes(p, res.Features)
	}
	if err != nil {
		return err
	}

	rel := relativeTo(dir, res.Root, opts.Name)
	p.line("")
	p.success("Created %s in %s", p.st.bold.Render(res.PackageName), rel)
	p.note("%d file(s) written", len(res.CreatedFiles))
	p.line("")
	p.line("Next steps:")
	p.line("  cd %s", rel)
	p.line("  %s install", d.Manager.Name())
	return nil
}

// createDefaults merges flags over settings.
func createDefaults(cmd *cobra.Command, d *Dependencies, dir string) scaffold.Defaults {
	s := d.Settings
	defaults := scaffold.Defaults{
		Dir:         dir,
		Scope:       s.Scope,
		Name:        getStringFlag(cmd, "name"),
		Description: s.Description,
		Author:      scaffold.Author{Name: s.Author.Name, Email: s.Author.Email, URL: s.Author.URL},
		Type:        getStringFlag(cmd, "type"),
	}
	if v := getStringFlag(cmd, "description"); v != "" {
		defaults.Description = v
	}
	if v := getStringFlag(cmd, "author"); v != "" {
		defaults.Author = scaffold.ParseAuthor(v)
	}
	if cmd.Flags().Changed("features") {
		ids, _ := cmd.Flags().GetStringSlice("features")
		defaults.Features = append([]string{}, ids...)
	}
	return defaults
}

func printFeatureOutcomes(p *printer, outcomes []feature.Outcome) {
	for _, o := range outcomes {
		if o.Result.Changed() {
			p.success("%s: %s", o.ID, strings.Join(o.Result.Applied, ", "))
			continue
		}
		p.step("%s: %s", o.ID, o.Result.Noop)
	}
}

func relativeTo(dir, root, name string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return root
	}
	if rel, err := filepath.Rel(abs, root); err == nil && rel == name {
		return filepath.Join(dir, name)
	}
	return root
}
