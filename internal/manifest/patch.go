package manifest

import (
	"slices"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// InsertScripts places a titled scripts section after its anchor group.
// It returns the keys that were added; none means m was returned as is.
func InsertScripts(m *Manifest, s Section[string]) (*Manifest, []string) {
	current := m.Scripts()
	out, added := InsertSection(current, s)
	if len(added) == 0 {
		return m, nil
	}
	return m.withScripts(out), added
}

// EnsureScripts appends every script whose key is missing. Existing
// commands are left alone.
func EnsureScripts(m *Manifest, scripts []Entry[string]) (*Manifest, []string) {
	current := m.Scripts()
	have := make(map[string]bool, len(current))
	for _, e := range current {
		have[e.Key] = true
	}
	var added []string
	for _, e := range scripts {
		if have[e.Key] {
			continue
		}
		current = append(current, e)
		have[e.Key] = true
		added = append(added, e.Key)
	}
	if len(added) == 0 {
		return m, nil
	}
	return m.withScripts(current), added
}

// RemoveScripts drops the named scripts. It reports the keys removed.
func RemoveScripts(m *Manifest, keys ...string) (*Manifest, []string) {
	current := m.Scripts()
	var removed []string
	kept := slices.DeleteFunc(slices.Clone(current), func(e Entry[string]) bool {
		if slices.Contains(keys, e.Key) {
			removed = append(removed, e.Key)
			return true
		}
		return false
	})
	if len(removed) == 0 {
		return m, nil
	}
	return m.withScripts(kept), removed
}

// PrefixScript prepends prefix to the script key unless the command already
// contains marker. Missing scripts are left alone.
func PrefixScript(m *Manifest, key, prefix, marker string) (*Manifest, bool) {
	cmd, ok := m.Script(key)
	if !ok || strings.Contains(cmd, marker) {
		return m, false
	}
	scripts, _ := m.root.GetObject("scripts")
	next := m.Clone()
	obj := scripts.Clone()
	obj.Set(key, prefix+cmd)
	next.root.Set("scripts", obj)
	return next, true
}

func (m *Manifest) withScripts(entries []Entry[string]) *Manifest {
	obj := NewObject()
	for _, e := range entries {
		obj.Set(e.Key, e.Value)
	}
	return m.Set("scripts", obj)
}

// LintStagedRule pairs a glob pattern with the commands it runs.
type LintStagedRule struct {
	Pattern  string
	Commands []string
}

// PrependLintStaged puts command first for pattern when the pattern exists
// and does not already run it. Absent patterns are left alone.
func PrependLintStaged(m *Manifest, pattern, command string) (*Manifest, bool) {
	commands, ok := m.LintStaged(pattern)
	if !ok || slices.Contains(commands, command) {
		return m, false
	}
	return m.withLintStaged(pattern, append([]string{command}, commands...)), true
}

// EnsureLintStaged adds each rule whose pattern is not configured yet and
// appends missing commands to patterns that are. It returns the patterns
// that changed.
func EnsureLintStaged(m *Manifest, rules ...LintStagedRule) (*Manifest, []string) {
	var changed []string
	out := m
	for _, r := range rules {
		current, ok := out.LintStaged(r.Pattern)
		next := slices.Clone(current)
		for _, c := range r.Commands {
			if !slices.Contains(next, c) {
				next = append(next, c)
			}
		}
		if ok && len(next) == len(current) {
			continue
		}
		out = out.withLintStaged(r.Pattern, next)
		changed = append(changed, r.Pattern)
	}
	return out, changed
}

func (m *Manifest) withLintStaged(pattern string, commands []string) *Manifest {
	next := m.Clone()
	obj, ok := next.root.GetObject("lint-staged")
	if !ok {
		obj = NewObject()
		next.root.Set("lint-staged", obj)
	}
	items := make([]any, len(commands))
	for i, c := range commands {
		items[i] = c
	}
	obj.Set(pattern, items)
	return next
}

// NormalizeKeyword folds a keyword to NFC lower case.
func NormalizeKeyword(word string) string {
	return strings.ToLower(strings.TrimSpace(norm.NFC.String(word)))
}

// EnsureKeywords appends the words missing from "keywords". Comparison
// uses NormalizeKeyword; stored words are normalized.
func EnsureKeywords(m *Manifest, words ...string) (*Manifest, []string) {
	current := m.Keywords()
	seen := make(map[string]bool, len(current))
	for _, w := range current {
		seen[NormalizeKeyword(w)] = true
	}
	var added []string
	for _, w := range words {
		n := NormalizeKeyword(w)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		current = append(current, n)
		added = append(added, n)
	}
	if len(added) == 0 {
		return m, nil
	}
	items := make([]any, len(current))
	for i, w := range current {
		items[i] = w
	}
	return m.Set("keywords", items), added
}

// RemoveDependencies drops names from both dependency sections and
// deletes sections left empty. It reports the names removed.
func RemoveDependencies(m *Manifest, names ...string) (*Manifest, []string) {
	next := m.Clone()
	var removed []string
	for _, section := range []string{SectionDependencies, SectionDevDependencies} {
		obj, ok := next.root.GetObject(section)
		if !ok {
			continue
		}
		before := len(removed)
		for _, n := range names {
			if obj.Delete(n) {
				removed = append(removed, n)
			}
		}
		if len(removed) > before && obj.Len() == 0 {
			next.root.Delete(section)
		}
	}
	if len(removed) == 0 {
		return m, nil
	}
	return next, removed
}
