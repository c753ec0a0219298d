package feature

import (
	"context"

	"github.com/modu-ai/pkgkit/internal/manifest"
)

const (
	MarkdownID = "markdown"

	markdownlintPackage   = "eslint-plugin-markdownlint"
	markdownlintConfig    = ".markdownlint.jsonc"
	markdownlintExtension = "DavidAnson.vscode-markdownlint"
	lintStagedMarkdown    = "*.md"
)

// Markdown lints markdown through ESLint.
func Markdown() Feature {
	return Feature{
		ID:         MarkdownID,
		Label:      "markdown linting",
		Hint:       "markdownlint via ESLint",
		Extensions: []string{markdownlintExtension},
		Detect: func(_ context.Context, fc *Context) (bool, error) {
			return manifest.IsDeclared(fc.Dir, markdownlintPackage), nil
		},
		Apply: applyMarkdown,
	}
}

func applyMarkdown(ctx context.Context, fc *Context) (Result, error) {
	var res Result

	installed, err := ensureDevDependencies(ctx, fc, markdownlintPackage)
	res.add(installed...)
	if err != nil {
		return res, err
	}

	wrote, err := ensureTemplate(ctx, fc, featureTemplate(MarkdownID, markdownlintConfig), markdownlintConfig)
	if err != nil {
		return res, err
	}
	if wrote {
		res.add(markdownlintConfig)
	}

	exts, err := addExtensionRecommendations(fc.Dir, markdownlintExtension)
	if err != nil {
		return res, err
	}
	if len(exts) > 0 {
		res.add(".vscode/extensions.json")
	}

	changed, err := updateManifest(fc, func(m *manifest.Manifest) (*manifest.Manifest, bool) {
		next, added := manifest.EnsureLintStaged(m, manifest.LintStagedRule{
			Pattern:  lintStagedMarkdown,
			Commands: []string{"eslint --fix"},
		})
		return next, len(added) > 0
	})
	if err != nil {
		return res, err
	}
	if changed {
		res.add("lint-staged (markdown)")
	}

	return res.finish("markdown linting already configured. No changes made."), nil
}
