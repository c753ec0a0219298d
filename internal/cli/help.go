package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/modu-ai/pkgkit/internal/migrate"
)

const helpWrap = 80

// renderHelp prints the help page of cmd as rendered markdown.
func renderHelp(cmd *cobra.Command, _ []string) {
	md := helpMarkdown(cmd)
	out := cmd.OutOrStdout()
	rendered, err := renderMarkdown(md, helpNoColor(cmd))
	if err != nil {
		_, _ = fmt.Fprint(out, md)
		return
	}
	_, _ = fmt.Fprint(out, rendered)
}

func helpNoColor(cmd *cobra.Command) bool {
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	v, _ := cmd.Flags().GetBool("no-color")
	return v
}

func renderMarkdown(md string, noColor bool) (string, error) {
	style := glamour.WithAutoStyle()
	if noColor {
		style = glamour.WithStandardStyle("notty")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(helpWrap))
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

// helpMarkdown builds the help page: usage, commands, options,
// sections and examples.
func helpMarkdown(cmd *cobra.Command) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", cmd.CommandPath())
	desc := cmd.Long
	if desc == "" {
		desc = cmd.Short
	}
	b.WriteString(desc + "\n\n")

	b.WriteString("## Usage\n\n")
	fmt.Fprintf(&b, "    %s\n", cmd.UseLine())
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(&b, "    %s <command> [flags]\n", cmd.CommandPath())
	}
	b.WriteString("\n")

	if rows := commandRows(cmd); len(rows) > 0 {
		b.WriteString("## Commands\n\n")
		writeTable(&b, rows)
	}

	if rows := flagRows(cmd.NonInheritedFlags()); len(rows) > 0 {
		b.WriteString("## Options\n\n")
		writeTable(&b, rows)
	}
	if rows := flagRows(cmd.InheritedFlags()); len(rows) > 0 {
		b.WriteString("## Global options\n\n")
		writeTable(&b, rows)
	}

	if cmd.Name() == "migrate" {
		b.WriteString("## Sections\n\n")
		rows := make([][2]string, 0, len(migrate.AllSections))
		for _, s := range migrate.AllSections {
			rows = append(rows, [2]string{string(s), s.Description()})
		}
		writeTable(&b, rows)
	}

	if cmd.Example != "" {
		b.WriteString("## Examples\n\n")
		for _, line := range strings.Split(cmd.Example, "\n") {
			fmt.Fprintf(&b, "    %s\n", strings.TrimSpace(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func commandRows(cmd *cobra.Command) [][2]string {
	var rows [][2]string
	for _, c := range cmd.Commands() {
		if !c.IsAvailableCommand() && c.Name() != "help" {
			continue
		}
		rows = append(rows, [2]string{c.Name(), c.Short})
	}
	return rows
}

func flagRows(fs *pflag.FlagSet) [][2]string {
	var rows [][2]string
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Hidden {
			return
		}
		name := "--" + f.Name
		if f.Shorthand != "" {
			name = "-" + f.Shorthand + ", " + name
		}
		if t := f.Value.Type(); t != "bool" {
			name += " <" + strings.TrimSuffix(t, "Slice") + ">"
		}
		rows = append(rows, [2]string{name, f.Usage})
	})
	return rows
}

// writeTable writes rows as an indented code block with the first
// column padded to its widest cell.
func writeTable(b *strings.Builder, rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r[0]))
	}
	for _, r := range rows {
		fmt.Fprintf(b, "    %s  %s\n", runewidth.FillRight(r[0], width), r[1])
	}
	b.WriteString("\n")
}
