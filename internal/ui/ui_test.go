package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func headless() *HeadlessManager {
	hm := NewHeadlessManager()
	hm.ForceHeadless(true)
	return hm
}

// newTestProgram creates a tea.Program that needs no TTY.
func newTestProgram(m tea.Model) *tea.Program {
	return tea.NewProgram(m,
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
	)
}

func startTestProgram(p *tea.Program) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = p.Run()
	}()
	time.Sleep(10 * time.Millisecond)
	return done
}

func waitForProgram(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Error("tea.Program did not exit within 2 second timeout")
	}
}

func TestHeadlessManagerForce(t *testing.T) {
	hm := NewHeadlessManager()
	hm.ForceHeadless(true)
	if !hm.IsHeadless() {
		t.Error("IsHeadless() = false after ForceHeadless(true)")
	}
	hm.ForceHeadless(false)
	if hm.IsHeadless() {
		t.Error("IsHeadless() = true after ForceHeadless(false)")
	}
	hm.ClearForce()
	if hm.forced != nil {
		t.Error("ClearForce() left an override")
	}
}

func TestPromptsRefuseHeadless(t *testing.T) {
	p := NewPrompter(NewTheme(true), headless())
	ctx := context.Background()

	if _, err := p.Select(ctx, "Type", []Option{{Label: "Library", Value: "library"}}, "library"); !errors.Is(err, ErrHeadless) {
		t.Errorf("Select() error = %v, want ErrHeadless", err)
	}
	if _, err := p.MultiSelect(ctx, "Features", nil, nil); !errors.Is(err, ErrHeadless) {
		t.Errorf("MultiSelect() error = %v, want ErrHeadless", err)
	}
	if _, err := p.Input(ctx, "Name", "widget", nil); !errors.Is(err, ErrHeadless) {
		t.Errorf("Input() error = %v, want ErrHeadless", err)
	}
	if _, err := p.Confirm(ctx, "Continue?", true); !errors.Is(err, ErrHeadless) {
		t.Errorf("Confirm() error = %v, want ErrHeadless", err)
	}
}

func TestOptionKey(t *testing.T) {
	if got := (Option{Label: "dprint", Hint: "recommended"}).key(); got != "dprint - recommended" {
		t.Errorf("key() = %q", got)
	}
	if got := (Option{Label: "git hooks"}).key(); got != "git hooks" {
		t.Errorf("key() = %q", got)
	}
}

func TestProgressRunPlain(t *testing.T) {
	var buf strings.Builder
	p := NewProgress(NewTheme(false), headless(), &buf)

	want := errors.New("boom")
	err := p.Run(context.Background(), "Installing vitest", func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Errorf("Run() error = %v, want %v", err, want)
	}
	if got := buf.String(); got != "Installing vitest...\n" {
		t.Errorf("output = %q", got)
	}
}

func TestPlainProgressBar(t *testing.T) {
	var buf strings.Builder
	bar := NewProgress(NewTheme(true), headless(), &buf).Start("features", 3)
	bar.Increment(1)
	bar.SetTitle("testing")
	bar.Increment(5)
	bar.Done()

	want := "[1/3] features\n[3/3] testing\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestAnimatedSpinnerStopIdempotent(t *testing.T) {
	p := newTestProgram(newSpinnerModel(NewTheme(false), "Syncing"))
	s := &animatedSpinner{program: p, once: sync.Once{}}
	done := startTestProgram(p)

	s.SetTitle("Still syncing")
	s.Stop()
	s.Stop()
	waitForProgram(t, done)
}

func TestAnimatedProgressBarDone(t *testing.T) {
	p := newTestProgram(newProgressModel(NewTheme(false), "features", 4))
	b := &animatedProgressBar{program: p}
	done := startTestProgram(p)

	b.Increment(2)
	b.SetTitle("markdown")
	b.Done()
	b.Done()
	waitForProgram(t, done)
}

func TestSpinnerModelTick(t *testing.T) {
	m := newSpinnerModel(NewTheme(false), "Ticking")
	msg := m.Init()()
	if _, ok := msg.(spinner.TickMsg); !ok {
		t.Skip("tick command returned an unexpected message")
	}
	updated, _ := m.Update(msg)
	if updated.(spinnerModel).done {
		t.Error("tick stopped the spinner")
	}
}

func TestProgressModelClampsAndFrames(t *testing.T) {
	m := newProgressModel(NewTheme(false), "features", 2)
	updated, _ := m.Update(progressIncrMsg(5))
	pm := updated.(progressModel)
	if pm.current != 2 {
		t.Errorf("current = %d, want 2", pm.current)
	}
	updated, _ = pm.Update(progress.FrameMsg{})
	if updated.(progressModel).done {
		t.Error("FrameMsg marked the bar done")
	}
	if !strings.Contains(pm.View(), "[2/2] features") {
		t.Errorf("View() = %q", pm.View())
	}
}

func TestThemeHuh(t *testing.T) {
	if NewTheme(false).Huh() == nil || NewTheme(true).Huh() == nil {
		t.Error("Huh() returned nil")
	}
}
