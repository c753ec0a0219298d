package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/modu-ai/pkgkit/internal/feature"
	"github.com/modu-ai/pkgkit/internal/manifest"
	"github.com/modu-ai/pkgkit/internal/pkgmgr"
	"github.com/modu-ai/pkgkit/internal/template"
	"github.com/modu-ai/pkgkit/internal/ui"
)

// Options configures one Create call.
type Options struct {
	Dir         string   // Parent directory; the package is created in Dir/Name.
	Scope       string   // Package scope, e.g. "@modu". Empty for unscoped.
	Name        string   // Bare package name.
	Description string   // package.json description.
	Author      Author   // package.json author.
	Type        string   // Package type id.
	Features    []string // Feature ids to apply after deploying templates.
}

// PackageName returns the full npm name.
func (o Options) PackageName() string {
	if o.Scope == "" {
		return o.Name
	}
	return o.Scope + "/" + o.Name
}

// Result summarizes a created package.
type Result struct {
	Root         string            // Absolute package directory.
	PackageName  string            // Full npm name.
	CreatedFiles []string          // Template files written, relative to Root.
	Patched      []string          // package.json fields merged from the package type.
	Features     []feature.Outcome // One outcome per applied feature.
}

// Progress reports feature installation.
type Progress interface {
	Start(title string, total int) ui.ProgressBar
}

// Creator builds new packages.
type Creator interface {
	// Create deploys the package template into opts.Dir/opts.Name and
	// applies the selected features. The target must be missing or empty.
	Create(ctx context.Context, opts Options) (*Result, error)
}

// Option configures a Creator.
type Option func(*creator)

// WithProgress reports feature installs on p.
func WithProgress(p Progress) Option {
	return func(c *creator) {
		c.progress = p
	}
}

type creator struct {
	templates fs.FS
	deployer  template.Deployer
	registry  *feature.Registry
	manager   pkgmgr.Manager
	logger    *slog.Logger
	progress  Progress
}

// NewCreator creates a Creator deploying from templates.
func NewCreator(templates fs.FS, registry *feature.Registry, manager pkgmgr.Manager, logger *slog.Logger, opts ...Option) Creator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	c := &creator{
		templates: templates,
		deployer:  template.NewDeployer(templates),
		registry:  registry,
		manager:   manager,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *creator) Create(ctx context.Context, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pt, err := LookupType(opts.Type)
	if err != nil {
		return nil, err
	}
	if err := ValidateName(opts.Name); err != nil {
		return nil, err
	}
	features, err := c.registry.Resolve(opts.Features)
	if err != nil {
		return nil, err
	}

	root, err := filepath.Abs(filepath.Join(opts.Dir, opts.Name))
	if err != nil {
		return nil, fmt.Errorf("resolve target: %w", err)
	}
	c.logger.Info("creating package",
		"root", root,
		"name", opts.PackageName(),
		"type", pt.ID,
		"features", strings.Join(features, ","),
	)
	result := &Result{Root: root, PackageName: opts.PackageName()}

	// Step 1: Claim the target directory
	if err := ensureEmptyDir(root); err != nil {
		return nil, err
	}

	// Step 2: Deploy the type overlay, then the common package tree
	if err := ctx.Err(); err != nil {
		return result, err
	}
	if err := c.deploy(ctx, root, pt, opts, features, result); err != nil {
		return result, err
	}

	// Step 3: Merge package type defaults into package.json
	if err := ctx.Err(); err != nil {
		return result, err
	}
	patched, err := patchManifest(root, pt, opts)
	if err != nil {
		return result, fmt.Errorf("patch %s: %w", manifest.FileName, err)
	}
	result.Patched = patched

	// Step 4: Apply features in registry order
	if err := ctx.Err(); err != nil {
		return result, err
	}
	outcomes, err := c.install(ctx, root, opts, features)
	result.Features = outcomes
	if err != nil {
		return result, err
	}

	c.logger.Info("package created", "root", root, "files", len(result.CreatedFiles))
	return result, nil
}

func (c *creator) deploy(ctx context.Context, root string, pt PackageType, opts Options, features []string, result *Result) error {
	vars := template.NewVars(
		template.WithPackage(opts.Scope, opts.Name),
		template.WithDescription(opts.Description),
		template.WithAuthor(opts.Author.Name, opts.Author.Email, opts.Author.URL),
		template.WithPackageManager(c.manager.Name()),
	)
	ignore := c.registry.Unowned(features)

	roots := []string{template.PackageRoot}
	if _, err := fs.Stat(c.templates, pt.Overlay()); err == nil {
		roots = []string{pt.Overlay(), template.PackageRoot}
	} else {
		c.logger.Debug("no template overlay for package type", "type", pt.ID)
	}
	for _, r := range roots {
		written, err := c.deployer.Deploy(ctx, root, template.DeployOptions{
			Root:   r,
			Vars:   vars,
			Ignore: ignore,
		})
		result.CreatedFiles = append(result.CreatedFiles, written...)
		if err != nil {
			return fmt.Errorf("deploy %s: %w", r, err)
		}
	}
	return nil
}

func (c *creator) install(ctx context.Context, root string, opts Options, features []string) ([]feature.Outcome, error) {
	if len(features) == 0 {
		return nil, nil
	}
	fc := &feature.Context{
		Dir: root,
		Package: &feature.PackageInfo{
			Scope:       opts.Scope,
			Name:        opts.Name,
			Description: opts.Description,
			AuthorName:  opts.Author.Name,
			AuthorEmail: opts.Author.Email,
			AuthorURL:   opts.Author.URL,
		},
		Scope:     opts.Scope,
		Manager:   c.manager,
		Templates: c.templates,
		Logger:    c.logger,
	}

	var bar ui.ProgressBar
	if c.progress != nil {
		bar = c.progress.Start("Applying features", len(features))
		defer bar.Done()
	}
	var outcomes []feature.Outcome
	for _, id := range features {
		if bar != nil {
			f, _ := c.registry.Get(id)
			bar.SetTitle(f.Label)
		}
		// One feature at a time so the bar advances between installs.
		out, err := c.registry.Install(ctx, fc, []string{id})
		outcomes = append(outcomes, out...)
		if err != nil {
			return outcomes, err
		}
		if bar != nil {
			bar.Increment(1)
		}
	}
	return outcomes, nil
}

// patchManifest merges description, author, keywords and bin into the
// deployed package.json.
func patchManifest(root string, pt PackageType, opts Options) ([]string, error) {
	var patched []string
	_, err := manifest.Update(root, func(m *manifest.Manifest) (*manifest.Manifest, bool) {
		next := m
		if opts.Description != "" && next.Description() != opts.Description {
			next = next.Set("description", opts.Description)
			patched = append(patched, "description")
		}
		if !opts.Author.IsZero() {
			next = next.Set("author", opts.Author.String())
			patched = append(patched, "author")
		}
		words := append([]string{}, pt.Keywords...)
		if kw := strings.TrimPrefix(opts.Scope, "@"); kw != "" {
			words = append(words, kw)
		}
		next, added := manifest.EnsureKeywords(next, words...)
		for _, w := range added {
			patched = append(patched, "keywords."+w)
		}
		if pt.Bin != "" {
			bin := manifest.NewObject()
			bin.Set(opts.Name, pt.Bin)
			next = next.Set("bin", bin)
			patched = append(patched, "bin")
		}
		return next, len(patched) > 0
	})
	return patched, err
}

// ensureEmptyDir creates dir, or accepts it when it exists and is empty.
func ensureEmptyDir(dir string) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read %s: %w", dir, err)
	case len(entries) > 0:
		return fmt.Errorf("%w: %s", template.ErrTargetNotEmpty, dir)
	}
	return nil
}
