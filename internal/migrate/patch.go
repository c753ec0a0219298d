package migrate

import (
	"fmt"

	"github.com/modu-ai/pkgkit/internal/deps"
	"github.com/modu-ai/pkgkit/internal/manifest"
)

// PatchManifest applies the package.json conventions of cfg to m and
// returns the patched copy with one label per change. bareName is the
// unscoped package name. m is not modified.
func PatchManifest(m *manifest.Manifest, cfg Config, bareName string) (*manifest.Manifest, []string) {
	var changes []string

	next, scripts := manifest.EnsureScripts(m, cfg.Scripts)
	for _, key := range scripts {
		changes = append(changes, "scripts."+key)
	}

	next, globs := manifest.EnsureLintStaged(next, cfg.LintStaged...)
	for _, glob := range globs {
		changes = append(changes, "lint-staged."+glob)
	}

	words := []string{cfg.Keyword}
	if cfg.IncludePackageName {
		words = append(words, bareName)
	}
	next, keywords := manifest.EnsureKeywords(next, words...)
	for _, w := range keywords {
		changes = append(changes, "keywords."+w)
	}

	planned := deps.Plan(next, cfg.Rules)
	next = deps.Apply(next, planned)
	for _, c := range planned {
		changes = append(changes, dependencyLabel(c))
	}

	return next, changes
}

func dependencyLabel(c deps.Change) string {
	label := string(c.Section) + "." + c.Name
	if c.Operation == deps.OpAdd {
		return fmt.Sprintf("%s (add %s)", label, c.To)
	}
	if bump := c.Bump(); bump != "" {
		return fmt.Sprintf("%s (%s -> %s, %s)", label, c.From, c.To, bump)
	}
	return fmt.Sprintf("%s (%s -> %s)", label, c.From, c.To)
}
