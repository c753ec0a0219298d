package feature

import (
	"os"
	"regexp"
)

// eslintConfigFiles are checked in order; the first present is edited.
var eslintConfigFiles = []string{
	"eslint.config.ts",
	"eslint.config.mjs",
	"eslint.config.js",
	"eslint.config.cjs",
}

// formatterCoveredRules are stylistic rules a code formatter enforces.
var formatterCoveredRules = []string{
	"@stylistic/indent",
	"@stylistic/quotes",
	"@stylistic/semi",
	"@stylistic/comma-dangle",
	"@stylistic/comma-spacing",
	"@stylistic/object-curly-spacing",
	"@stylistic/array-bracket-spacing",
	"@stylistic/arrow-parens",
	"@stylistic/brace-style",
	"@stylistic/key-spacing",
	"@stylistic/space-infix-ops",
	"@stylistic/member-delimiter-style",
	"@stylistic/eol-last",
	"@stylistic/no-trailing-spaces",
	"@stylistic/no-multiple-empty-lines",
}

var (
	ruleLines = func() []*regexp.Regexp {
		out := make([]*regexp.Regexp, len(formatterCoveredRules))
		for i, r := range formatterCoveredRules {
			out[i] = regexp.MustCompile(`(?m)^[ \t]*'` + regexp.QuoteMeta(r) + `':.+\n`)
		}
		return out
	}()
	stylisticComment = regexp.MustCompile(`(?m)^[ \t]*// Stylistic\n`)
	extraBlankLines  = regexp.MustCompile(`\n{3,}`)
)

// stripCoveredRules removes formatter-covered rule lines from the first
// ESLint flat config found in the package. It returns the file edited, or "".
func stripCoveredRules(fc *Context) (string, error) {
	for _, name := range eslintConfigFiles {
		p := fc.path(name)
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		updated := data
		for _, re := range ruleLines {
			updated = re.ReplaceAll(updated, nil)
		}
		updated = stylisticComment.ReplaceAll(updated, nil)
		updated = extraBlankLines.ReplaceAll(updated, []byte("\n\n"))
		if string(updated) == string(data) {
			return "", nil
		}
		if err := os.WriteFile(p, updated, 0o644); err != nil {
			return "", err
		}
		return name, nil
	}
	return "", nil
}
