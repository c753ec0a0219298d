package ui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/huh"
)

// Option is one choice of a select prompt.
type Option struct {
	Label string
	Value string
	Hint  string
}

func (o Option) key() string {
	if o.Hint == "" {
		return o.Label
	}
	return o.Label + " - " + o.Hint
}

// Prompter asks questions through huh forms. Each question runs as its
// own form.
type Prompter struct {
	theme    *Theme
	headless *HeadlessManager
}

// NewPrompter creates a Prompter.
func NewPrompter(theme *Theme, hm *HeadlessManager) *Prompter {
	return &Prompter{theme: theme, headless: hm}
}

func (p *Prompter) run(ctx context.Context, field huh.Field) error {
	if p.headless.IsHeadless() {
		return ErrHeadless
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	form := huh.NewForm(huh.NewGroup(field)).
		WithTheme(p.theme.Huh()).
		WithAccessible(false)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCancelled
		}
		return fmt.Errorf("prompt: %w", err)
	}
	return nil
}

// Select asks for one of options. initial preselects a value.
func (p *Prompter) Select(ctx context.Context, title string, options []Option, initial string) (string, error) {
	selected := initial
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.key(), o.Value)
	}
	field := huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&selected)
	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	return selected, nil
}

// MultiSelect asks for any number of options. initial preselects values.
func (p *Prompter) MultiSelect(ctx context.Context, title string, options []Option, initial []string) ([]string, error) {
	selected := slices.Clone(initial)
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o.key(), o.Value).Selected(slices.Contains(initial, o.Value))
	}
	field := huh.NewMultiSelect[string]().
		Title(title).
		Description("space to toggle, enter to confirm").
		Options(opts...).
		Value(&selected)
	if err := p.run(ctx, field); err != nil {
		return nil, err
	}
	return selected, nil
}

// Input asks for a line of text. An empty answer falls back to
// placeholder. validate may be nil.
func (p *Prompter) Input(ctx context.Context, title, placeholder string, validate func(string) error) (string, error) {
	var value string
	field := huh.NewInput().
		Title(title).
		Placeholder(placeholder).
		Value(&value).
		Validate(func(s string) error {
			s = strings.TrimSpace(s)
			if s == "" {
				s = placeholder
			}
			if validate == nil {
				return nil
			}
			return validate(s)
		})
	if err := p.run(ctx, field); err != nil {
		return "", err
	}
	if v := strings.TrimSpace(value); v != "" {
		return v, nil
	}
	return placeholder, nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(ctx context.Context, title string, initial bool) (bool, error) {
	value := initial
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&value)
	if err := p.run(ctx, field); err != nil {
		return false, err
	}
	return value, nil
}
