package migrate

import (
	"fmt"
	"slices"
	"strings"
)

// Section is an independently selectable slice of migration work.
type Section string

// Known sections in planning order.
const (
	SectionPackageJSON Section = "package-json"
	SectionHooks       Section = "hooks"
	SectionNvmrc       Section = "nvmrc"
	SectionESLint      Section = "eslint"
	SectionWorkflows   Section = "workflows"
	SectionDocs        Section = "docs"
)

// AllSections lists every section in planning order.
var AllSections = []Section{
	SectionPackageJSON,
	SectionHooks,
	SectionNvmrc,
	SectionESLint,
	SectionWorkflows,
	SectionDocs,
}

// Description is a one-line summary of what the section migrates.
func (s Section) Description() string {
	switch s {
	case SectionPackageJSON:
		return "scripts, lint-staged, keywords and dependency versions"
	case SectionHooks:
		return "git hook definitions (.simple-git-hooks.mjs)"
	case SectionNvmrc:
		return "Node.js version pin (.nvmrc)"
	case SectionESLint:
		return "shared ESLint config (eslint.config.mjs)"
	case SectionWorkflows:
		return "release workflow (.github/workflows/release.yml)"
	case SectionDocs:
		return "developer documentation (docs/)"
	}
	return ""
}

// Selector is the set of sections a run covers.
type Selector struct {
	sections []Section
}

// SelectAll returns a selector covering every section.
func SelectAll() Selector {
	return Selector{sections: slices.Clone(AllSections)}
}

// ParseSelector parses a comma-separated --only value. An empty value
// selects every section. Unknown names fail with ErrUnknownSection.
func ParseSelector(only string) (Selector, error) {
	if strings.TrimSpace(only) == "" {
		return SelectAll(), nil
	}
	want := make(map[Section]bool)
	for _, part := range strings.Split(only, ",") {
		name := Section(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		if !slices.Contains(AllSections, name) {
			return Selector{}, fmt.Errorf("%w: %q (known: %s)", ErrUnknownSection, name, sectionList())
		}
		want[name] = true
	}
	if len(want) == 0 {
		return SelectAll(), nil
	}
	var sel Selector
	for _, s := range AllSections {
		if want[s] {
			sel.sections = append(sel.sections, s)
		}
	}
	return sel, nil
}

// Has reports whether s is selected.
func (sel Selector) Has(s Section) bool {
	return slices.Contains(sel.sections, s)
}

// Sections returns the selected sections in planning order.
func (sel Selector) Sections() []Section {
	return slices.Clone(sel.sections)
}

func sectionList() string {
	names := make([]string, len(AllSections))
	for i, s := range AllSections {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
