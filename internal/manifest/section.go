package manifest

import (
	"slices"
	"strings"
)

// Decorative group titles inside "scripts" look like
// "·········· LINTING" and carry a divider string as their value.
const (
	TitlePrefix  = "··········"
	TitleDivider = "·········································"
)

// Entry is one key/value pair of an ordered mapping.
type Entry[V any] struct {
	Key   string
	Value V
}

// Section describes a titled group of entries to place in an ordered
// mapping relative to an existing anchor group.
type Section[V any] struct {
	// Anchor matches the title key of the group the new section follows.
	// A nil Anchor, or one matching nothing, appends at the end.
	Anchor func(key string) bool
	// IsTitle matches any group title key. It bounds the anchor group.
	IsTitle func(key string) bool
	// Title is the decorative title entry. An empty key means no title.
	Title   Entry[V]
	Entries []Entry[V]
}

// TitleKey returns the decorative title key for a group name.
func TitleKey(name string) string {
	return TitlePrefix + " " + name
}

// IsTitleKey reports whether key is a decorative group title.
func IsTitleKey(key string) bool {
	return strings.HasPrefix(key, TitlePrefix)
}

// TitleContains returns an anchor matcher for title keys containing name.
func TitleContains(name string) func(string) bool {
	return func(key string) bool {
		return IsTitleKey(key) && strings.Contains(key, name)
	}
}

// TitledSection is the usual scripts section: a title key named name,
// placed after the group whose title contains anchor.
func TitledSection(anchor, name string, entries []Entry[string]) Section[string] {
	s := Section[string]{
		IsTitle: IsTitleKey,
		Title:   Entry[string]{Key: TitleKey(name), Value: TitleDivider},
		Entries: entries,
	}
	if anchor != "" {
		s.Anchor = TitleContains(anchor)
	}
	return s
}

// InsertSection returns entries with the section placed after its anchor
// group. When any of the section's keys is already present the input is
// returned unchanged and added is empty. The input slice is never modified.
func InsertSection[V any](entries []Entry[V], s Section[V]) (out []Entry[V], added []string) {
	present := make(map[string]bool, len(entries))
	for _, e := range entries {
		present[e.Key] = true
	}
	for _, e := range s.Entries {
		if present[e.Key] {
			return entries, nil
		}
	}

	at := insertionPoint(entries, s)

	out = make([]Entry[V], 0, len(entries)+len(s.Entries)+1)
	out = append(out, entries[:at]...)
	if s.Title.Key != "" && !present[s.Title.Key] {
		out = append(out, s.Title)
		added = append(added, s.Title.Key)
	}
	for _, e := range s.Entries {
		out = append(out, e)
		added = append(added, e.Key)
	}
	out = append(out, entries[at:]...)
	return out, added
}

// insertionPoint is the index just past the anchor group: the position of
// the next title key after the anchor, or the end of the mapping.
func insertionPoint[V any](entries []Entry[V], s Section[V]) int {
	if s.Anchor == nil {
		return len(entries)
	}
	anchor := slices.IndexFunc(entries, func(e Entry[V]) bool { return s.Anchor(e.Key) })
	if anchor < 0 {
		return len(entries)
	}
	isTitle := s.IsTitle
	if isTitle == nil {
		isTitle = IsTitleKey
	}
	for i := anchor + 1; i < len(entries); i++ {
		if isTitle(entries[i].Key) {
			return i
		}
	}
	return len(entries)
}
