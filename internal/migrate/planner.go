package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/modu-ai/pkgkit/internal/manifest"
	"github.com/modu-ai/pkgkit/internal/template"
)

// State is a stage of a migration run.
type State int

// Migration states. A run ends in DryRunReport, Done or Failed.
const (
	StateValidating State = iota
	StatePlanningSections
	StateDryRunReport
	StateApplyingSections
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateValidating:
		return "validating"
	case StatePlanningSections:
		return "planning"
	case StateDryRunReport:
		return "dry-run"
	case StateApplyingSections:
		return "applying"
	case StateDone:
		return "done"
	default:
		return "failed"
	}
}

// ConfirmFunc asks whether to migrate a package outside the default scope.
type ConfirmFunc func(ctx context.Context, packageName string) (bool, error)

// DirtyFunc reports whether the working tree at dir has uncommitted changes.
type DirtyFunc func(dir string) (bool, error)

// Progress wraps a long-running step with user feedback.
type Progress interface {
	Run(ctx context.Context, title string, fn func(context.Context) error) error
}

// Options configures one migration run.
type Options struct {
	Dir string
	// Write applies the plan. Without it the run stops at the dry-run report.
	Write bool
	Only  Selector

	// Confirm is asked when the package scope differs from the default
	// scope. A nil Confirm proceeds.
	Confirm ConfirmFunc
	// OnState observes state transitions.
	OnState func(State)
}

// SyncPlan is a planned template sync.
type SyncPlan struct {
	Item   SyncItem
	Status template.Status
	IsDir  bool
}

// Plan is what a migration would change.
type Plan struct {
	Dir     string
	Package string

	// PatchManifest is set when the package-json section was planned.
	PatchManifest bool
	Manifest      *manifest.Manifest
	Changes       []string

	Syncs []SyncPlan
	Vars  template.Vars
}

// Lines describes the plan, one step per line.
func (p *Plan) Lines() []string {
	var lines []string
	if p.PatchManifest {
		if len(p.Changes) > 0 {
			lines = append(lines, "patch package.json: "+strings.Join(p.Changes, ", "))
		} else {
			lines = append(lines, "package.json already aligned")
		}
	}
	for _, s := range p.Syncs {
		lines = append(lines, fmt.Sprintf("sync %s (%s)", s.Item.TargetPath, s.Status))
	}
	return lines
}

// Pending reports whether applying the plan would change anything.
func (p *Plan) Pending() bool {
	if p.PatchManifest && len(p.Changes) > 0 {
		return true
	}
	for _, s := range p.Syncs {
		if s.Status != template.StatusUpToDate {
			return true
		}
	}
	return false
}

// Result is the outcome of a migration run.
type Result struct {
	State    State
	Plan     *Plan
	Synced   []string
	Patches  int
	Warnings []string
}

// Summary returns the one-line apply report.
func (r *Result) Summary() string {
	return fmt.Sprintf("synced %d file(s), applied %d patch(es)", len(r.Synced), r.Patches)
}

// Planner plans and applies migrations.
type Planner struct {
	cfg      Config
	copier   *template.Copier
	dirty    DirtyFunc
	progress Progress
	logger   *slog.Logger
}

// PlannerOption configures a Planner.
type PlannerOption func(*Planner)

// WithDirtyCheck sets the working tree probe used before applying.
func WithDirtyCheck(fn DirtyFunc) PlannerOption {
	return func(p *Planner) {
		p.dirty = fn
	}
}

// WithProgress sets the feedback wrapper for template syncs.
func WithProgress(progress Progress) PlannerOption {
	return func(p *Planner) {
		p.progress = progress
	}
}

// NewPlanner creates a Planner reading templates from fsys.
func NewPlanner(cfg Config, fsys fs.FS, logger *slog.Logger, opts ...PlannerOption) *Planner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	p := &Planner{
		cfg:    cfg,
		copier: template.NewCopier(fsys, logger),
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validate checks that dir is a package directory with a valid manifest.
func (p *Planner) Validate(dir string) (*manifest.Manifest, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotAProject, dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotAProject, dir)
	}
	m, err := manifest.Read(dir)
	if errors.Is(err, manifest.ErrNotFound) {
		return nil, fmt.Errorf("%w: no %s in %s", ErrNotAProject, manifest.FileName, dir)
	}
	if err != nil {
		return nil, err
	}
	if err := manifest.Validate(manifest.Path(dir), m); err != nil {
		return nil, err
	}
	return m, nil
}

// Plan computes the changes for the selected sections. It writes nothing.
func (p *Planner) Plan(ctx context.Context, dir string, m *manifest.Manifest, only Selector) (*Plan, error) {
	scope, bare := manifest.SplitName(m.Name())
	plan := &Plan{
		Dir:     dir,
		Package: m.Name(),
		Vars: template.NewVars(
			template.WithPackage(scope, bare),
			template.WithDescription(m.Description()),
		),
	}

	if only.Has(SectionPackageJSON) {
		plan.PatchManifest = true
		plan.Manifest, plan.Changes = PatchManifest(m, p.cfg, bare)
	}

	for _, item := range p.cfg.Sync {
		if !only.Has(item.Section) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		src := path.Join(template.PackageRoot, item.TemplatePath)
		isDir, ok := p.copier.Exists(src)
		if !ok {
			p.logger.Debug("template missing, skipping sync item", "section", item.Section, "src", src)
			continue
		}
		status, err := p.copier.Compare(ctx, src, targetPath(dir, item), plan.Vars)
		if err != nil {
			return nil, fmt.Errorf("plan %s: %w", item.TargetPath, err)
		}
		plan.Syncs = append(plan.Syncs, SyncPlan{Item: item, Status: status, IsDir: isDir})
	}
	return plan, nil
}

// Apply carries out plan. Steps completed before a failure are kept.
func (p *Planner) Apply(ctx context.Context, plan *Plan) (*Result, error) {
	res := &Result{State: StateApplyingSections, Plan: plan}

	if plan.PatchManifest && len(plan.Changes) > 0 {
		if err := manifest.Write(plan.Dir, plan.Manifest); err != nil {
			res.State = StateFailed
			return res, err
		}
		res.Patches = len(plan.Changes)
		p.logger.Debug("patched manifest", "root", plan.Dir, "changes", len(plan.Changes))
	}

	var pending []SyncPlan
	for _, s := range plan.Syncs {
		if s.Status != template.StatusUpToDate {
			pending = append(pending, s)
		}
	}
	if len(pending) > 0 {
		err := p.run(ctx, fmt.Sprintf("Syncing %d item(s) from templates", len(pending)), func(ctx context.Context) error {
			for _, s := range pending {
				synced, err := p.sync(ctx, plan, s)
				res.Synced = append(res.Synced, synced...)
				if err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			res.State = StateFailed
			return res, err
		}
	}

	res.State = StateDone
	return res, nil
}

func (p *Planner) sync(ctx context.Context, plan *Plan, s SyncPlan) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src := path.Join(template.PackageRoot, s.Item.TemplatePath)
	dest := targetPath(plan.Dir, s.Item)
	p.logger.Debug("syncing template", "section", s.Item.Section, "dest", dest)
	if !s.IsDir {
		if err := p.copier.CopyFile(src, dest, plan.Vars); err != nil {
			return nil, err
		}
		return []string{s.Item.TargetPath}, nil
	}
	files, err := p.copier.CopyDirectory(ctx, src, dest, plan.Vars)
	synced := make([]string, 0, len(files))
	for _, f := range files {
		rel, relErr := filepath.Rel(plan.Dir, f)
		if relErr != nil {
			rel = f
		}
		synced = append(synced, filepath.ToSlash(rel))
	}
	return synced, err
}

func (p *Planner) run(ctx context.Context, title string, fn func(context.Context) error) error {
	if p.progress == nil {
		return fn(ctx)
	}
	return p.progress.Run(ctx, title, fn)
}

// Run drives one migration through its states. A dry run ends in
// StateDryRunReport with the plan and writes nothing.
func (p *Planner) Run(ctx context.Context, opts Options) (*Result, error) {
	res := &Result{}
	enter := func(s State) {
		res.State = s
		p.logger.Debug("migrate state", "state", s.String(), "root", opts.Dir)
		if opts.OnState != nil {
			opts.OnState(s)
		}
	}
	fail := func(err error) (*Result, error) {
		enter(StateFailed)
		return res, err
	}

	enter(StateValidating)
	m, err := p.Validate(opts.Dir)
	if err != nil {
		return fail(err)
	}
	if scope, _ := manifest.SplitName(m.Name()); scope != p.cfg.DefaultScope && opts.Confirm != nil {
		ok, err := opts.Confirm(ctx, m.Name())
		if err != nil {
			return fail(err)
		}
		if !ok {
			return fail(ErrDeclined)
		}
	}

	enter(StatePlanningSections)
	plan, err := p.Plan(ctx, opts.Dir, m, opts.Only)
	if err != nil {
		return fail(err)
	}
	res.Plan = plan

	if !opts.Write {
		enter(StateDryRunReport)
		return res, nil
	}

	enter(StateApplyingSections)
	if p.dirty != nil && plan.Pending() {
		if dirty, err := p.dirty(opts.Dir); err != nil {
			p.logger.Debug("working tree probe failed", "root", opts.Dir, "error", err)
		} else if dirty {
			res.Warnings = append(res.Warnings, "working tree has uncommitted changes")
		}
	}
	applied, err := p.Apply(ctx, plan)
	res.Synced = applied.Synced
	res.Patches = applied.Patches
	if err != nil {
		return fail(err)
	}
	enter(StateDone)
	return res, nil
}

func targetPath(dir string, item SyncItem) string {
	return filepath.Join(dir, filepath.FromSlash(item.TargetPath))
}
