package template

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DeployOptions controls a Deploy call.
type DeployOptions struct {
	// Root is the template subtree to deploy, e.g. "package".
	Root string
	Vars Vars
	// Ignore lists doublestar patterns, relative to Root, that are not
	// deployed. A pattern naming a directory excludes its contents.
	Ignore []string
}

// Deployer writes a template subtree into a new package directory.
type Deployer interface {
	// Deploy renders every file under opts.Root into projectRoot. Files
	// that already exist are left untouched. It returns the relative paths
	// written, in walk order.
	Deploy(ctx context.Context, projectRoot string, opts DeployOptions) ([]string, error)

	// ListTemplates returns the relative paths of all files under root.
	ListTemplates(root string) []string
}

type deployer struct {
	fsys     fs.FS
	renderer Renderer
}

// NewDeployer creates a Deployer backed by the given filesystem.
// In production the fs.FS comes from go:embed; in tests use testing/fstest.MapFS.
func NewDeployer(fsys fs.FS) Deployer {
	return &deployer{fsys: fsys, renderer: NewRenderer(fsys)}
}

func (d *deployer) Deploy(ctx context.Context, projectRoot string, opts DeployOptions) ([]string, error) {
	projectRoot = filepath.Clean(projectRoot)
	if _, err := fs.Stat(d.fsys, opts.Root); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, opts.Root)
	}

	var written []string
	err := fs.WalkDir(d.fsys, opts.Root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == opts.Root {
			return nil
		}
		rel := strings.TrimPrefix(p, opts.Root+"/")
		if Ignored(rel, opts.Ignore) {
			if entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			return nil
		}

		if err := validateDeployPath(projectRoot, rel); err != nil {
			return err
		}
		dest := filepath.Join(projectRoot, filepath.FromSlash(rel))

		// Existing files belong to the user.
		if _, statErr := os.Stat(dest); statErr == nil {
			return nil
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			return statErr
		}

		content, err := d.renderer.Render(p, opts.Vars)
		if err != nil {
			return fmt.Errorf("template render %q: %w", p, err)
		}
		if err := writeFile(dest, content); err != nil {
			return err
		}
		written = append(written, rel)
		return nil
	})
	return written, err
}

func (d *deployer) ListTemplates(root string) []string {
	var list []string
	_ = fs.WalkDir(d.fsys, root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if entry.IsDir() {
			return nil
		}
		list = append(list, strings.TrimPrefix(p, root+"/"))
		return nil
	})
	slices.Sort(list)
	return list
}

// Ignored reports whether rel matches any pattern, either directly or as
// a file inside a matched directory.
func Ignored(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = strings.TrimSuffix(pattern, "/")
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(path.Join(pattern, "**"), rel); ok {
			return true
		}
	}
	return false
}

// validateDeployPath ensures a template path does not escape projectRoot.
func validateDeployPath(projectRoot, relPath string) error {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))

	if filepath.IsAbs(cleaned) {
		return fmt.Errorf("%w: absolute path %q", ErrPathTraversal, relPath)
	}
	if strings.HasPrefix(cleaned, "..") || strings.Contains(cleaned, string(filepath.Separator)+"..") {
		return fmt.Errorf("%w: parent reference in %q", ErrPathTraversal, relPath)
	}

	absProjectRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolve project root: %w", err)
	}
	absPath := filepath.Join(absProjectRoot, cleaned)
	if !strings.HasPrefix(absPath, absProjectRoot+string(filepath.Separator)) && absPath != absProjectRoot {
		return fmt.Errorf("%w: %q escapes project root", ErrPathTraversal, relPath)
	}
	return nil
}
