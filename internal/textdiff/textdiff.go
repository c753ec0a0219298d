// Package textdiff renders line-based unified diffs for previewing file
// changes before they are written.
package textdiff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ContextLines is the number of unchanged lines kept around each change.
const ContextLines = 3

// Op is the kind of a line in an edit script.
type Op int

// Line operations.
const (
	OpEqual Op = iota
	OpInsert
	OpDelete
)

// Line is one line of an edit script. OldPos and NewPos count the lines
// of each side consumed before this one.
type Line struct {
	Op     Op
	Text   string
	OldPos int
	NewPos int
}

// Lines computes the line edit script turning a into b.
func Lines(a, b string) []Line {
	dmp := diffmatchpatch.New()
	ca, cb, table := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), table)

	var out []Line
	oldPos, newPos := 0, 0
	for _, d := range diffs {
		op := OpEqual
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = OpInsert
		case diffmatchpatch.DiffDelete:
			op = OpDelete
		}
		for _, text := range splitLines(d.Text) {
			out = append(out, Line{Op: op, Text: text, OldPos: oldPos, NewPos: newPos})
			if op != OpInsert {
				oldPos++
			}
			if op != OpDelete {
				newPos++
			}
		}
	}
	return out
}

// Stat counts inserted and deleted lines between a and b.
func Stat(a, b string) (added, removed int) {
	for _, l := range Lines(a, b) {
		switch l.Op {
		case OpInsert:
			added++
		case OpDelete:
			removed++
		}
	}
	return added, removed
}

// Unified returns a unified diff of old and current under name, or ""
// when they are identical.
func Unified(name string, old, current []byte) string {
	lines := Lines(string(old), string(current))
	hunks := hunkRanges(lines)
	if len(hunks) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n", name)
	fmt.Fprintf(&sb, "+++ b/%s\n", name)
	for _, h := range hunks {
		writeHunk(&sb, lines[h[0]:h[1]])
	}
	return sb.String()
}

// hunkRanges groups changed lines with their context. Changes closer than
// twice the context share a hunk.
func hunkRanges(lines []Line) [][2]int {
	var hunks [][2]int
	for i := 0; i < len(lines); i++ {
		if lines[i].Op == OpEqual {
			continue
		}
		start := max(i-ContextLines, 0)
		end := i + 1
		for j := end; j < len(lines) && j < end+2*ContextLines; j++ {
			if lines[j].Op != OpEqual {
				end = j + 1
			}
		}
		end = min(end+ContextLines, len(lines))
		if n := len(hunks); n > 0 && start <= hunks[n-1][1] {
			hunks[n-1][1] = end
		} else {
			hunks = append(hunks, [2]int{start, end})
		}
		i = end - 1
	}
	return hunks
}

func writeHunk(sb *strings.Builder, lines []Line) {
	oldCount, newCount := 0, 0
	for _, l := range lines {
		if l.Op != OpInsert {
			oldCount++
		}
		if l.Op != OpDelete {
			newCount++
		}
	}
	fmt.Fprintf(sb, "@@ -%s +%s @@\n",
		hunkRange(lines[0].OldPos, oldCount), hunkRange(lines[0].NewPos, newCount))
	for _, l := range lines {
		prefix := " "
		switch l.Op {
		case OpInsert:
			prefix = "+"
		case OpDelete:
			prefix = "-"
		}
		sb.WriteString(prefix + l.Text + "\n")
	}
}

// An empty range starts at the line before it.
func hunkRange(pos, count int) string {
	if count == 0 {
		return fmt.Sprintf("%d,0", pos)
	}
	return fmt.Sprintf("%d,%d", pos+1, count)
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.SplitAfter(s, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	for i, p := range parts {
		parts[i] = strings.TrimSuffix(p, "\n")
	}
	return parts
}
