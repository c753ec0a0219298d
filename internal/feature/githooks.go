package feature

import (
	"context"

	"github.com/modu-ai/pkgkit/internal/manifest"
)

const (
	GitHooksID = "gitHooks"

	lintStagedPackage  = "lint-staged"
	commitlintConfig   = "commitlint.config.mjs"
	simpleGitHooksFile = ".simple-git-hooks.mjs"
)

var gitHooksPackages = []string{
	"@commitlint/cli",
	"@commitlint/config-conventional",
	lintStagedPackage,
	"simple-git-hooks",
}

// GitHooks wires commitlint and lint-staged through simple-git-hooks.
func GitHooks() Feature {
	return Feature{
		ID:    GitHooksID,
		Label: "git hooks",
		Hint:  "commitlint + lint-staged",
		Detect: func(_ context.Context, fc *Context) (bool, error) {
			return manifest.IsDeclared(fc.Dir, lintStagedPackage), nil
		},
		Apply: applyGitHooks,
	}
}

func applyGitHooks(ctx context.Context, fc *Context) (Result, error) {
	var res Result

	installed, err := ensureDevDependencies(ctx, fc, gitHooksPackages...)
	res.add(installed...)
	if err != nil {
		return res, err
	}

	for _, rel := range []string{commitlintConfig, simpleGitHooksFile} {
		wrote, err := ensureTemplate(ctx, fc, packageTemplate(rel), rel)
		if err != nil {
			return res, err
		}
		if wrote {
			res.add(rel)
		}
	}

	formatted := exists(fc.path(dprintConfigFile))
	changed, err := updateManifest(fc, func(m *manifest.Manifest) (*manifest.Manifest, bool) {
		next, scripts := manifest.EnsureScripts(m, []manifest.Entry[string]{{Key: "prepare", Value: "simple-git-hooks"}})
		next, rules := manifest.EnsureLintStaged(next, manifest.LintStagedRule{
			Pattern:  lintStagedCodeGlob,
			Commands: []string{"eslint --fix"},
		})
		// dprint runs first when formatting was applied before the rule existed.
		prepended := false
		if formatted {
			next, prepended = manifest.PrependLintStaged(next, lintStagedCodeGlob, dprintLintCommand)
		}
		return next, len(scripts) > 0 || len(rules) > 0 || prepended
	})
	if err != nil {
		return res, err
	}
	if changed {
		res.add("package.json (prepare script, lint-staged)")
	}

	return res.finish("git hooks already configured. No changes made."), nil
}
