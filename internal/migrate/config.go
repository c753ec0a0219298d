package migrate

import (
	"strings"

	"github.com/modu-ai/pkgkit/internal/deps"
	"github.com/modu-ai/pkgkit/internal/manifest"
)

// SyncItem is a template path kept in lock step with the package.
type SyncItem struct {
	Section Section
	// TemplatePath is relative to the package template tree.
	TemplatePath string
	// TargetPath is relative to the package root.
	TargetPath string
}

// Config is the convention set a migration enforces.
type Config struct {
	// DefaultScope is the scope packages are expected to use. Other scopes
	// need confirmation.
	DefaultScope string

	Scripts    []manifest.Entry[string]
	LintStaged []manifest.LintStagedRule

	// Keyword is always present in "keywords".
	Keyword string
	// IncludePackageName also adds the unscoped package name as a keyword.
	IncludePackageName bool

	Rules []deps.Rule
	Sync  []SyncItem
}

// SyncTable lists the files and directories synced from templates.
var SyncTable = []SyncItem{
	{Section: SectionHooks, TemplatePath: ".simple-git-hooks.mjs", TargetPath: ".simple-git-hooks.mjs"},
	{Section: SectionNvmrc, TemplatePath: ".nvmrc", TargetPath: ".nvmrc"},
	{Section: SectionESLint, TemplatePath: "eslint.config.mjs", TargetPath: "eslint.config.mjs"},
	{Section: SectionWorkflows, TemplatePath: ".github/workflows/release.yml", TargetPath: ".github/workflows/release.yml"},
	{Section: SectionDocs, TemplatePath: "docs", TargetPath: "docs"},
}

// DefaultConfig returns the conventions for packages published under scope.
func DefaultConfig(scope string) Config {
	return Config{
		DefaultScope: scope,
		Scripts: []manifest.Entry[string]{
			{Key: "test", Value: "vitest"},
			{Key: "test.run", Value: "vitest run"},
			{Key: "test.coverage", Value: "vitest run --coverage"},
			{Key: "lint", Value: "eslint ."},
			{Key: "lint.fix", Value: "eslint . --fix"},
			{Key: "typecheck", Value: "tsc --project tsconfig.json --noEmit"},
			{Key: "tsc.debug", Value: "tsc --pretty --project tsconfig.json"},
			{Key: "release.check", Value: "pnpm lint.fix && pnpm typecheck && pnpm test.run"},
			{Key: "release.github.patch", Value: "pnpm run release.check && pnpm version patch && git push --follow-tags"},
			{Key: "release.github.minor", Value: "pnpm run release.check && pnpm version minor && git push --follow-tags"},
			{Key: "release.github.major", Value: "pnpm run release.check && pnpm version major && git push --follow-tags"},
			{Key: "prepack", Value: "pnpm build"},
			{Key: "prepare", Value: "simple-git-hooks"},
		},
		LintStaged: []manifest.LintStagedRule{
			{Pattern: "*.{ts,tsx,js,mjs,cjs}", Commands: []string{"eslint --fix"}},
		},
		Keyword:            strings.TrimPrefix(scope, "@"),
		IncludePackageName: true,
		Rules:              append(deps.DefaultRules(), deps.ScopedRules(scope)...),
		Sync:               SyncTable,
	}
}

// Validate checks the dependency rules.
func (c Config) Validate() error {
	return deps.ValidateRules(c.Rules)
}
