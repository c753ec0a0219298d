package scaffold

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/modu-ai/pkgkit/internal/feature"
	"github.com/modu-ai/pkgkit/internal/ui"
)

// Prompter asks the create questions. *ui.Prompter implements it.
type Prompter interface {
	Select(ctx context.Context, title string, options []ui.Option, initial string) (string, error)
	MultiSelect(ctx context.Context, title string, options []ui.Option, initial []string) ([]string, error)
	Input(ctx context.Context, title, placeholder string, validate func(string) error) (string, error)
}

// Defaults pre-fill the create questions. In headless mode they are the
// answers.
type Defaults struct {
	Dir         string
	Scope       string
	Name        string
	Description string
	Author      Author
	Type        string
	// Features, when non-nil, replaces the package type defaults.
	Features []string
}

// DefaultDescription is offered when no description is configured.
func DefaultDescription(scope string) string {
	if scope == "" {
		return "A cool new package"
	}
	return fmt.Sprintf("A cool new package for the %s ecosystem", scope)
}

// Selection drives the questions of the create flow.
type Selection struct {
	prompter Prompter
	registry *feature.Registry
}

// NewSelection creates a Selection over the features in registry.
func NewSelection(p Prompter, registry *feature.Registry) *Selection {
	return &Selection{prompter: p, registry: registry}
}

// Ask collects create options interactively. detected lists features
// the target already has; they are not offered. Any prompt error,
// including cancellation, is returned unchanged.
func (s *Selection) Ask(ctx context.Context, d Defaults, detected []string) (Options, error) {
	opts := Options{Dir: d.Dir, Scope: d.Scope}

	initialType := d.Type
	if initialType == "" {
		initialType = DefaultType
	}
	typeOptions := make([]ui.Option, 0, len(packageTypes))
	for _, t := range packageTypes {
		typeOptions = append(typeOptions, ui.Option{Label: t.Label(), Value: t.ID, Hint: t.Description})
	}
	typ, err := s.prompter.Select(ctx, "What type of package are you creating?", typeOptions, initialType)
	if err != nil {
		return Options{}, err
	}
	pt, err := LookupType(typ)
	if err != nil {
		return Options{}, err
	}
	opts.Type = pt.ID

	if opts.Name, err = s.prompter.Input(ctx, "Package name:", d.Name, ValidateName); err != nil {
		return Options{}, err
	}

	desc := d.Description
	if desc == "" {
		desc = DefaultDescription(d.Scope)
	}
	if opts.Description, err = s.prompter.Input(ctx, "Description:", desc, nil); err != nil {
		return Options{}, err
	}

	author, err := s.prompter.Input(ctx, "Author (Name | email | url):", d.Author.Line(), nil)
	if err != nil {
		return Options{}, err
	}
	opts.Author = ParseAuthor(author)

	featureOptions, initial := s.featureChoices(pt, d.Features, detected)
	if len(featureOptions) > 0 {
		if opts.Features, err = s.prompter.MultiSelect(ctx, "Select optional features:", featureOptions, initial); err != nil {
			return Options{}, err
		}
	}
	return opts, nil
}

// Headless builds create options from defaults without prompting.
func (s *Selection) Headless(d Defaults) (Options, error) {
	if d.Name == "" {
		return Options{}, ErrNameRequired
	}
	typ := d.Type
	if typ == "" {
		typ = DefaultType
	}
	pt, err := LookupType(typ)
	if err != nil {
		return Options{}, err
	}
	if err := ValidateName(d.Name); err != nil {
		return Options{}, err
	}
	features := d.Features
	if features == nil {
		features = pt.DefaultFeatures
	}
	features, err = s.registry.Resolve(features)
	if err != nil {
		return Options{}, err
	}
	desc := d.Description
	if desc == "" {
		desc = DefaultDescription(d.Scope)
	}
	return Options{
		Dir:         d.Dir,
		Scope:       d.Scope,
		Name:        d.Name,
		Description: desc,
		Author:      d.Author,
		Type:        pt.ID,
		Features:    features,
	}, nil
}

// featureChoices lists the features not yet detected and the ones to
// preselect.
func (s *Selection) featureChoices(pt PackageType, override, detected []string) ([]ui.Option, []string) {
	preselect := pt.DefaultFeatures
	if override != nil {
		preselect = override
	}
	var (
		options []ui.Option
		initial []string
	)
	for _, f := range s.registry.All() {
		if slices.Contains(detected, f.ID) {
			continue
		}
		options = append(options, ui.Option{Label: f.Label, Value: f.ID, Hint: featureHint(f)})
		if slices.Contains(preselect, f.ID) {
			initial = append(initial, f.ID)
		}
	}
	return options, initial
}

func featureHint(f feature.Feature) string {
	if len(f.Extensions) == 0 {
		return f.Hint
	}
	ext := "VS Code: " + strings.Join(f.Extensions, ", ")
	if f.Hint == "" {
		return ext
	}
	return f.Hint + " (" + ext + ")"
}
