package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are the output styles of one command run.
type styles struct {
	success lipgloss.Style
	warn    lipgloss.Style
	err     lipgloss.Style
	muted   lipgloss.Style
	primary lipgloss.Style
	bold    lipgloss.Style
}

func newStyles(w io.Writer, noColor bool) styles {
	r := lipgloss.NewRenderer(w)
	if noColor {
		plain := r.NewStyle()
		return styles{success: plain, warn: plain, err: plain, muted: plain, primary: plain, bold: plain}
	}
	return styles{
		success: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#059669", Dark: "#10B981"}),
		warn:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#F59E0B"}),
		err:     r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#EF4444"}),
		muted:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#9CA3AF", Dark: "#6B7280"}),
		primary: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#F97316"}),
		bold:    r.NewStyle().Bold(true),
	}
}

func (s styles) symSuccess() string  { return s.success.Render("✓") }
func (s styles) symError() string    { return s.err.Render("✗") }
func (s styles) symWarning() string  { return s.warn.Render("!") }
func (s styles) symProgress() string { return s.muted.Render("○") }

// printer writes styled user-facing lines.
type printer struct {
	out io.Writer
	st  styles
}

func newPrinter(w io.Writer, noColor bool) *printer {
	return &printer{out: w, st: newStyles(w, noColor)}
}

func (p *printer) line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *printer) success(format string, args ...any) {
	p.line("%s %s", p.st.symSuccess(), fmt.Sprintf(format, args...))
}

func (p *printer) warning(format string, args ...any) {
	p.line("%s %s", p.st.symWarning(), fmt.Sprintf(format, args...))
}

func (p *printer) failure(format string, args ...any) {
	p.line("%s %s", p.st.symError(), fmt.Sprintf(format, args...))
}

func (p *printer) step(format string, args ...any) {
	p.line("  %s %s", p.st.symProgress(), fmt.Sprintf(format, args...))
}

func (p *printer) note(format string, args ...any) {
	p.line("%s", p.st.muted.Render(fmt.Sprintf(format, args...)))
}

// diff writes a unified diff with added and removed lines colored.
func (p *printer) diff(text string) {
	for l := range strings.Lines(text) {
		l = strings.TrimSuffix(l, "\n")
		switch {
		case strings.HasPrefix(l, "+++"), strings.HasPrefix(l, "---"):
			p.line("%s", p.st.bold.Render(l))
		case strings.HasPrefix(l, "@@"):
			p.line("%s", p.st.primary.Render(l))
		case strings.HasPrefix(l, "+"):
			p.line("%s", p.st.success.Render(l))
		case strings.HasPrefix(l, "-"):
			p.line("%s", p.st.err.Render(l))
		default:
			p.line("%s", l)
		}
	}
	p.line("")
}
