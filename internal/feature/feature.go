// Package feature models optional package capabilities. Each feature can
// detect whether a package already has it and apply itself idempotently.
package feature

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"slices"

	"github.com/modu-ai/pkgkit/internal/pkgmgr"
	"github.com/modu-ai/pkgkit/internal/template"
)

// ErrUnknownFeature indicates a feature id that is not registered.
var ErrUnknownFeature = errors.New("feature: unknown feature")

// PackageInfo describes the package a feature is applied to.
type PackageInfo struct {
	Scope       string
	Name        string
	Description string
	AuthorName  string
	AuthorEmail string
	AuthorURL   string
}

// Context is shared by every feature of one command invocation. Features
// must treat it as read-only.
type Context struct {
	// Dir is the package root.
	Dir string
	// Package is optional metadata used for template placeholders.
	Package *PackageInfo
	// Scope is the house scope owning shared config packages, e.g. "@modu".
	Scope string

	Manager   pkgmgr.Manager
	Templates fs.FS
	Logger    *slog.Logger
	// Progress reports long-running steps such as installs. Optional.
	Progress Progress
}

// Progress wraps a long-running step with user feedback.
type Progress interface {
	Run(ctx context.Context, title string, fn func(context.Context) error) error
}

func (fc *Context) logger() *slog.Logger {
	if fc.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return fc.Logger
}

func (fc *Context) copier() *template.Copier {
	return template.NewCopier(fc.Templates, fc.logger())
}

func (fc *Context) vars() template.Vars {
	var opts []template.VarsOption
	if p := fc.Package; p != nil {
		opts = append(opts,
			template.WithPackage(p.Scope, p.Name),
			template.WithDescription(p.Description),
			template.WithAuthor(p.AuthorName, p.AuthorEmail, p.AuthorURL),
		)
	}
	v := template.NewVars(opts...)
	if fc.Scope != "" {
		v[template.VarScope] = fc.Scope
	}
	if fc.Manager != nil {
		v[template.VarPackageMgr] = fc.Manager.Name()
	}
	return v
}

func (fc *Context) run(ctx context.Context, title string, fn func(context.Context) error) error {
	if fc.Progress == nil {
		return fn(ctx)
	}
	return fc.Progress.Run(ctx, title, fn)
}

// Result lists what one Apply call changed. An empty Applied list with a
// Noop message means the feature was already fully present.
type Result struct {
	Applied []string
	Noop    string
}

// Changed reports whether anything was applied.
func (r Result) Changed() bool {
	return len(r.Applied) > 0
}

func (r *Result) add(items ...string) {
	r.Applied = append(r.Applied, items...)
}

// finish sets the no-op message when nothing was applied.
func (r Result) finish(noop string) Result {
	if len(r.Applied) == 0 {
		r.Noop = noop
	}
	return r
}

// Feature is one optional capability.
type Feature struct {
	ID         string
	Label      string
	Hint       string
	Extensions []string
	// Owns lists package template paths that only exist for this
	// feature. Creating a package without it skips them.
	Owns []string

	// Detect reports whether the package already fully has the feature.
	// It never modifies anything.
	Detect func(ctx context.Context, fc *Context) (bool, error)

	// Apply creates only what is missing. On error the returned Result
	// still lists the steps completed before the failure.
	Apply func(ctx context.Context, fc *Context) (Result, error)
}

// Outcome is the result of applying one feature through a Registry.
type Outcome struct {
	ID     string
	Result Result
}

// Registry is an ordered set of features resolved by id.
type Registry struct {
	features []Feature
	index    map[string]int
}

// NewRegistry returns a registry of features in the given order.
func NewRegistry(features ...Feature) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(features))}
	for _, f := range features {
		if f.ID == "" || f.Detect == nil || f.Apply == nil {
			return nil, fmt.Errorf("feature %q: incomplete definition", f.ID)
		}
		if _, dup := r.index[f.ID]; dup {
			return nil, fmt.Errorf("feature %q: registered twice", f.ID)
		}
		r.index[f.ID] = len(r.features)
		r.features = append(r.features, f)
	}
	return r, nil
}

// Default returns the built-in features.
func Default() *Registry {
	r, err := NewRegistry(
		Formatting(),
		Testing(),
		AIInstructions(),
		AIClaude(),
		Markdown(),
		GitHooks(),
	)
	if err != nil {
		panic(err)
	}
	return r
}

// Unowned returns the template paths owned by features not in ids.
func (r *Registry) Unowned(ids []string) []string {
	var out []string
	for _, f := range r.features {
		if !slices.Contains(ids, f.ID) {
			out = append(out, f.Owns...)
		}
	}
	return out
}

// All returns the features in registry order.
func (r *Registry) All() []Feature {
	out := make([]Feature, len(r.features))
	copy(out, r.features)
	return out
}

// IDs returns feature ids in registry order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.features))
	for i, f := range r.features {
		ids[i] = f.ID
	}
	return ids
}

// Get returns the feature with id.
func (r *Registry) Get(id string) (Feature, bool) {
	i, ok := r.index[id]
	if !ok {
		return Feature{}, false
	}
	return r.features[i], true
}

// Resolve validates ids and returns them in registry order without
// duplicates.
func (r *Registry) Resolve(ids []string) ([]string, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := r.index[id]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFeature, id)
		}
		want[id] = true
	}
	var out []string
	for _, f := range r.features {
		if want[f.ID] {
			out = append(out, f.ID)
		}
	}
	return out, nil
}

// Detected returns the ids of features the package already has.
func (r *Registry) Detected(ctx context.Context, fc *Context) ([]string, error) {
	var out []string
	for _, f := range r.features {
		ok, err := f.Detect(ctx, fc)
		if err != nil {
			return nil, fmt.Errorf("detect %s: %w", f.ID, err)
		}
		if ok {
			out = append(out, f.ID)
		}
	}
	return out, nil
}

// Install applies the features named by ids in registry order. It stops at
// the first failure and returns the outcomes gathered so far.
func (r *Registry) Install(ctx context.Context, fc *Context, ids []string) ([]Outcome, error) {
	ordered, err := r.Resolve(ids)
	if err != nil {
		return nil, err
	}
	outcomes := make([]Outcome, 0, len(ordered))
	for _, id := range ordered {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		f, _ := r.Get(id)
		fc.logger().Debug("applying feature", "feature", id, "dir", fc.Dir)
		res, err := f.Apply(ctx, fc)
		outcomes = append(outcomes, Outcome{ID: id, Result: res})
		if err != nil {
			return outcomes, fmt.Errorf("apply %s: %w", id, err)
		}
	}
	return outcomes, nil
}
