// Package deps reconciles the dependency sections of a manifest against a
// set of desired rules.
package deps

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/modu-ai/pkgkit/internal/manifest"
)

// Section names one of the two dependency sections.
type Section string

// Dependency sections.
const (
	Dependencies    Section = manifest.SectionDependencies
	DevDependencies Section = manifest.SectionDevDependencies
)

// Other returns the opposite section.
func (s Section) Other() Section {
	if s == Dependencies {
		return DevDependencies
	}
	return Dependencies
}

// Latest is the version written for rules without an explicit version.
const Latest = "latest"

// Rule is one desired dependency. An empty Version means "latest".
type Rule struct {
	Name    string
	Version string
	Section Section
}

// Target returns the version spec the rule asks for.
func (r Rule) Target() string {
	if r.Version == "" {
		return Latest
	}
	return r.Version
}

// ErrInvalidRule indicates a malformed dependency rule.
var ErrInvalidRule = errors.New("deps: invalid rule")

// ValidateRules checks that names are unique, sections are known and
// versions are valid semver constraints or dist tags.
func ValidateRules(rules []Rule) error {
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if r.Name == "" {
			return fmt.Errorf("%w: empty name", ErrInvalidRule)
		}
		if seen[r.Name] {
			return fmt.Errorf("%w: duplicate rule for %s", ErrInvalidRule, r.Name)
		}
		seen[r.Name] = true
		if r.Section != Dependencies && r.Section != DevDependencies {
			return fmt.Errorf("%w: %s has unknown section %q", ErrInvalidRule, r.Name, r.Section)
		}
		if r.Version == "" || r.Version == Latest {
			continue
		}
		if _, err := semver.NewConstraint(r.Version); err != nil {
			return fmt.Errorf("%w: %s version %q: %w", ErrInvalidRule, r.Name, r.Version, err)
		}
	}
	return nil
}

// DefaultRules is the toolchain every migrated package carries as dev
// dependencies.
func DefaultRules() []Rule {
	names := []string{
		"typescript",
		"tsdown",
		"vitest",
		"simple-git-hooks",
		"lint-staged",
		"eslint",
		"@eslint/js",
		"eslint-plugin-markdownlint",
		"@stylistic/eslint-plugin",
		"@typescript-eslint/parser",
		"@typescript-eslint/eslint-plugin",
		"typescript-eslint",
		"eslint-plugin-simple-import-sort",
		"@commitlint/cli",
		"@commitlint/config-conventional",
	}
	rules := make([]Rule, 0, len(names))
	for _, n := range names {
		rules = append(rules, Rule{Name: n, Section: DevDependencies})
	}
	return rules
}

// ScopedRules returns the house packages published under scope.
func ScopedRules(scope string) []Rule {
	return []Rule{
		{Name: scope + "/dprint-config", Section: DevDependencies},
		{Name: scope + "/project-scripts", Section: DevDependencies},
	}
}
