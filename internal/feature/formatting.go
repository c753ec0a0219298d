package feature

import (
	"context"
	"fmt"
	"slices"

	"github.com/modu-ai/pkgkit/internal/manifest"
)

const (
	FormattingID = "formatting"

	dprintConfigFile     = "dprint.jsonc"
	dprintCLIPackage     = "dprint"
	dprintExtension      = "dprint.dprint"
	dprintLintCommand    = "dprint fmt --allow-no-files"
	lintStagedCodeGlob   = "*.{ts,tsx,js,mjs,cjs}"
	lintStagedDataGlob   = "*.{json,jsonc,md,yml,yaml,toml}"
	formatCheckScript    = "format.check"
	releaseCheckScript   = "release.check"
	formattingGroupTitle = "FORMATTING"
	lintingGroupTitle    = "LINTING"
)

var formattingScripts = []manifest.Entry[string]{
	{Key: "format", Value: "dprint fmt --diff"},
	{Key: formatCheckScript, Value: "dprint check"},
}

// Formatting replaces Prettier with dprint driven by the shared dprint
// config package of the house scope.
func Formatting() Feature {
	return Feature{
		ID:         FormattingID,
		Label:      "dprint formatting",
		Hint:       "recommended",
		Extensions: []string{dprintExtension},
		Detect: func(_ context.Context, fc *Context) (bool, error) {
			return exists(fc.path(dprintConfigFile)), nil
		},
		Apply: applyFormatting,
	}
}

func dprintConfigPackage(fc *Context) string {
	return fc.Scope + "/dprint-config"
}

func applyFormatting(ctx context.Context, fc *Context) (Result, error) {
	var res Result

	removed, err := removePrettier(ctx, fc)
	if err != nil {
		return res, err
	}
	if len(removed) > 0 {
		res.add("removed Prettier packages")
	}
	backedUp, err := backupPrettierConfigs(fc.Dir)
	if err != nil {
		return res, fmt.Errorf("back up Prettier config: %w", err)
	}
	if len(backedUp) > 0 {
		res.add("backed up Prettier config(s)")
	}

	installed, err := ensureDevDependencies(ctx, fc, dprintCLIPackage, dprintConfigPackage(fc))
	res.add(installed...)
	if err != nil {
		return res, err
	}

	if wrote, err := ensureTemplate(ctx, fc, featureTemplate(FormattingID, dprintConfigFile), dprintConfigFile); err != nil {
		return res, err
	} else if wrote {
		res.add(dprintConfigFile)
	}

	changed, err := updateManifest(fc, func(m *manifest.Manifest) (*manifest.Manifest, bool) {
		next, added := manifest.InsertScripts(m, manifest.TitledSection(lintingGroupTitle, formattingGroupTitle, formattingScripts))
		return next, len(added) > 0
	})
	if err != nil {
		return res, err
	}
	if changed {
		res.add("formatting scripts")
	}

	if _, err := updateManifest(fc, func(m *manifest.Manifest) (*manifest.Manifest, bool) {
		next, added := manifest.EnsureScripts(m, []manifest.Entry[string]{{
			Key:   "update.dprint-config",
			Value: fmt.Sprintf("pnpm update %s --latest", dprintConfigPackage(fc)),
		}})
		next, prefixed := manifest.PrefixScript(next, releaseCheckScript, "pnpm "+formatCheckScript+" && ", formatCheckScript)
		return next, len(added) > 0 || prefixed
	}); err != nil {
		return res, err
	}

	changed, err = updateManifest(fc, mergeDprintLintStaged)
	if err != nil {
		return res, err
	}
	if changed {
		res.add("lint-staged (dprint entries)")
	}

	added, err := addCIStep(fc.path(ciWorkflow), ciStep{Name: "Format check", Run: "pnpm " + formatCheckScript}, "dprint check", formatCheckScript)
	if err != nil {
		return res, err
	}
	if added {
		res.add("ci.yml (format check step)")
	}

	if err := applyFormatterEditorSettings(fc, &res); err != nil {
		return res, err
	}

	file, err := stripCoveredRules(fc)
	if err != nil {
		return res, err
	}
	if file != "" {
		res.add(file + " (removed formatter-covered stylistic rules)")
	}

	return res.finish("dprint already configured. No changes made."), nil
}

func removePrettier(ctx context.Context, fc *Context) ([]string, error) {
	m, err := manifest.Read(fc.Dir)
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, name := range prettierDependencies(m) {
		if fc.Manager == nil {
			break
		}
		ok, err := fc.Manager.Remove(ctx, fc.Dir, name)
		if err != nil {
			return removed, err
		}
		if ok {
			removed = append(removed, name)
		}
	}
	// The manifest edit covers managers that left the entry behind and
	// scripts that still call prettier.
	_, err = updateManifest(fc, func(m *manifest.Manifest) (*manifest.Manifest, bool) {
		next, gone := manifest.RemoveDependencies(m, prettierDependencies(m)...)
		next, scripts := manifest.RemoveScripts(next, prettierScripts(next)...)
		for _, name := range gone {
			if !slices.Contains(removed, name) {
				removed = append(removed, name)
			}
		}
		return next, len(gone) > 0 || len(scripts) > 0
	})
	return removed, err
}

// mergeDprintLintStaged runs dprint before the code rule and adds a rule
// for data files.
func mergeDprintLintStaged(m *manifest.Manifest) (*manifest.Manifest, bool) {
	next, prepended := manifest.PrependLintStaged(m, lintStagedCodeGlob, dprintLintCommand)
	if _, ok := next.LintStaged(lintStagedDataGlob); ok {
		return next, prepended
	}
	next, added := manifest.EnsureLintStaged(next, manifest.LintStagedRule{
		Pattern:  lintStagedDataGlob,
		Commands: []string{dprintLintCommand},
	})
	return next, prepended || len(added) > 0
}

func applyFormatterEditorSettings(fc *Context, res *Result) error {
	exts, err := addExtensionRecommendations(fc.Dir, dprintExtension)
	if err != nil {
		return err
	}
	if len(exts) > 0 {
		res.add(".vscode/extensions.json")
	}

	m, err := manifest.Read(fc.Dir)
	if err != nil {
		return err
	}
	langs, disabled, err := setLanguageFormatter(fc.Dir, formatterLanguages(m), dprintExtension)
	if err != nil {
		return err
	}
	settingsChanged := len(langs) > 0 || disabled

	keys, err := ensureSettings(fc.Dir,
		manifest.Entry[any]{Key: "dprint.path", Value: "node_modules/.bin/dprint"},
		manifest.Entry[any]{Key: "editor.formatOnSave", Value: true},
	)
	if err != nil {
		return err
	}
	if settingsChanged || len(keys) > 0 {
		res.add(".vscode/settings.json")
	}
	return nil
}

// formatterLanguages picks the VS Code languages dprint should format
// based on the package's dependencies.
func formatterLanguages(m *manifest.Manifest) []string {
	langs := []string{"javascript", "json", "jsonc", "markdown", "yaml"}
	if m.HasDependency("typescript") {
		langs = append(langs, "typescript")
	}
	if m.HasDependency("react") {
		langs = append(langs, "javascriptreact")
		if m.HasDependency("typescript") {
			langs = append(langs, "typescriptreact")
		}
	}
	return langs
}
