package deps

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/modu-ai/pkgkit/internal/manifest"
)

// Operation is the kind of a planned change.
type Operation string

// Planned operations. Rules already satisfied produce no change.
const (
	OpAdd    Operation = "add"
	OpUpdate Operation = "update"
)

// Change is one planned dependency edit.
type Change struct {
	Name      string
	From      string
	To        string
	Operation Operation
	Section   Section
}

func (c Change) String() string {
	switch c.Operation {
	case OpUpdate:
		if bump := c.Bump(); bump != "" {
			return fmt.Sprintf("update %s %s -> %s (%s, %s)", c.Name, c.From, c.To, bump, c.Section)
		}
		return fmt.Sprintf("update %s %s -> %s (%s)", c.Name, c.From, c.To, c.Section)
	default:
		return fmt.Sprintf("add %s@%s (%s)", c.Name, c.To, c.Section)
	}
}

// Bump classifies an update as "major", "minor", "patch" or "downgrade".
// It returns "" when either side is not a concrete version.
func (c Change) Bump() string {
	from, err := semver.NewVersion(trimRange(c.From))
	if err != nil {
		return ""
	}
	to, err := semver.NewVersion(trimRange(c.To))
	if err != nil {
		return ""
	}
	switch {
	case to.LessThan(from):
		return "downgrade"
	case to.Major() != from.Major():
		return "major"
	case to.Minor() != from.Minor():
		return "minor"
	case to.Patch() != from.Patch():
		return "patch"
	}
	return ""
}

func trimRange(spec string) string {
	return strings.TrimLeft(strings.TrimSpace(spec), "^~>=<v ")
}

// Plan compares rules with the manifest. Only the rule's own section is
// consulted: a missing name is an add, a different version an update, and
// an equal version nothing. A rule without a version is satisfied by any
// declared version. A satisfied name that is also declared in the opposite
// section yields an update to its current version so Apply removes the
// duplicate. Plan has no side effects.
func Plan(m *manifest.Manifest, rules []Rule) []Change {
	var changes []Change
	for _, r := range rules {
		current, ok := m.Dependencies(string(r.Section))[r.Name]
		if !ok {
			changes = append(changes, Change{
				Name:      r.Name,
				To:        r.Target(),
				Operation: OpAdd,
				Section:   r.Section,
			})
			continue
		}
		to := current
		if r.Version != "" {
			to = r.Version
		}
		_, duplicated := m.Dependencies(string(r.Section.Other()))[r.Name]
		if to != current || duplicated {
			changes = append(changes, Change{
				Name:      r.Name,
				From:      current,
				To:        to,
				Operation: OpUpdate,
				Section:   r.Section,
			})
		}
	}
	return changes
}

// Apply performs changes in order on a copy of m. For each change the name
// is removed from the opposite section, which is dropped when it becomes
// empty, and then set in the change's section. m is not modified.
func Apply(m *manifest.Manifest, changes []Change) *manifest.Manifest {
	if len(changes) == 0 {
		return m
	}
	next := m.Clone()
	root := next.Root()
	for _, c := range changes {
		other := string(c.Section.Other())
		if obj, ok := root.GetObject(other); ok && obj.Delete(c.Name) && obj.Len() == 0 {
			root.Delete(other)
		}
		target, ok := root.GetObject(string(c.Section))
		if !ok {
			target = manifest.NewObject()
			root.Set(string(c.Section), target)
		}
		target.Set(c.Name, c.To)
	}
	return next
}
