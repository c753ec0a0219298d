package ui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner is an indeterminate activity indicator.
type Spinner interface {
	SetTitle(title string)
	Stop()
}

// ProgressBar tracks a known number of steps.
type ProgressBar interface {
	Increment(n int)
	SetTitle(title string)
	Done()
}

// Progress renders spinners and progress bars, animated on a terminal
// and as plain lines otherwise.
type Progress struct {
	theme    *Theme
	headless *HeadlessManager
	writer   io.Writer
}

// NewProgress creates a Progress writing plain lines to w when headless.
func NewProgress(theme *Theme, hm *HeadlessManager, w io.Writer) *Progress {
	return &Progress{theme: theme, headless: hm, writer: w}
}

func (p *Progress) plain() bool {
	return p.headless.IsHeadless() || p.theme.NoColor
}

// Spinner starts a spinner showing title.
func (p *Progress) Spinner(title string) Spinner {
	if p.plain() {
		return newPlainSpinner(title, p.writer)
	}
	return newAnimatedSpinner(p.theme, title, p.writer)
}

// Start begins a progress bar of total steps.
func (p *Progress) Start(title string, total int) ProgressBar {
	if p.plain() {
		return &plainProgressBar{title: title, total: total, writer: p.writer}
	}
	return newAnimatedProgressBar(p.theme, title, total, p.writer)
}

// Run shows a spinner titled title while fn runs.
func (p *Progress) Run(ctx context.Context, title string, fn func(context.Context) error) error {
	s := p.Spinner(title)
	err := fn(ctx)
	s.Stop()
	return err
}

// --- animated spinner ---

type spinnerTitleMsg string

type spinnerStopMsg struct{}

type spinnerModel struct {
	spinner spinner.Model
	title   string
	done    bool
}

func newSpinnerModel(theme *Theme, title string) spinnerModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !theme.NoColor {
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Colors.Primary))
	}
	return spinnerModel{spinner: s, title: title}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTitleMsg:
		m.title = string(msg)
		return m, nil
	case spinnerStopMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.title + "\n"
}

type animatedSpinner struct {
	program *tea.Program
	once    sync.Once
}

// The program owns no input so Ctrl-C reaches the command's signal
// handling instead of the spinner.
func newAnimatedSpinner(theme *Theme, title string, w io.Writer) *animatedSpinner {
	p := tea.NewProgram(newSpinnerModel(theme, title), tea.WithInput(nil), tea.WithOutput(w))
	go func() {
		_, _ = p.Run()
	}()
	return &animatedSpinner{program: p}
}

func (s *animatedSpinner) SetTitle(title string) {
	s.program.Send(spinnerTitleMsg(title))
}

func (s *animatedSpinner) Stop() {
	s.once.Do(func() {
		s.program.Send(spinnerStopMsg{})
		s.program.Wait()
	})
}

// --- animated progress bar ---

type progressIncrMsg int

type progressTitleMsg string

type progressDoneMsg struct{}

type progressModel struct {
	bar     progress.Model
	title   string
	current int
	total   int
	done    bool
}

func newProgressModel(theme *Theme, title string, total int) progressModel {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))
	if !theme.NoColor {
		bar = progress.New(
			progress.WithGradient(theme.Colors.Primary, theme.Colors.Secondary),
			progress.WithWidth(40),
		)
	}
	return progressModel{bar: bar, title: title, total: total}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressIncrMsg:
		m.current = min(m.current+int(msg), m.total)
		return m, nil
	case progressTitleMsg:
		m.title = string(msg)
		return m, nil
	case progressDoneMsg:
		m.current = m.total
		m.done = true
		return m, tea.Quit
	case progress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		m.bar = pm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	pct := 0.0
	if m.total > 0 {
		pct = float64(m.current) / float64(m.total)
	}
	return m.bar.ViewAs(pct) + " " + fmt.Sprintf("[%d/%d] %s\n", m.current, m.total, m.title)
}

type animatedProgressBar struct {
	program *tea.Program
	once    sync.Once
}

func newAnimatedProgressBar(theme *Theme, title string, total int, w io.Writer) *animatedProgressBar {
	p := tea.NewProgram(newProgressModel(theme, title, total), tea.WithInput(nil), tea.WithOutput(w))
	go func() {
		_, _ = p.Run()
	}()
	return &animatedProgressBar{program: p}
}

func (b *animatedProgressBar) Increment(n int) {
	b.program.Send(progressIncrMsg(n))
}

func (b *animatedProgressBar) SetTitle(title string) {
	b.program.Send(progressTitleMsg(title))
}

func (b *animatedProgressBar) Done() {
	b.once.Do(func() {
		b.program.Send(progressDoneMsg{})
		b.program.Wait()
	})
}

// --- plain output ---

type plainSpinner struct {
	writer io.Writer
}

func newPlainSpinner(title string, w io.Writer) *plainSpinner {
	_, _ = fmt.Fprintf(w, "%s...\n", title)
	return &plainSpinner{writer: w}
}

func (s *plainSpinner) SetTitle(title string) {
	_, _ = fmt.Fprintf(s.writer, "%s...\n", title)
}

func (s *plainSpinner) Stop() {}

type plainProgressBar struct {
	title   string
	total   int
	current int
	writer  io.Writer
}

func (b *plainProgressBar) Increment(n int) {
	b.current = min(b.current+n, b.total)
	_, _ = fmt.Fprintf(b.writer, "[%d/%d] %s\n", b.current, b.total, b.title)
}

func (b *plainProgressBar) SetTitle(title string) {
	b.title = title
}

func (b *plainProgressBar) Done() {
	if b.current == b.total {
		return
	}
	b.current = b.total
	_, _ = fmt.Fprintf(b.writer, "[%d/%d] %s\n", b.current, b.total, b.title)
}
