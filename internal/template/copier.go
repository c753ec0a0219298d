package template

import (
	"bytes"
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
)

// Status describes how a template compares to its destination.
type Status int

// Sync statuses.
const (
	StatusCreate Status = iota
	StatusOverwrite
	StatusUpToDate
)

func (s Status) String() string {
	switch s {
	case StatusCreate:
		return "create"
	case StatusOverwrite:
		return "overwrite"
	default:
		return "up to date"
	}
}

// Copier copies template files and directories into a package, replacing
// placeholders on the way.
type Copier struct {
	fsys     fs.FS
	renderer Renderer
	logger   *slog.Logger
}

// NewCopier creates a Copier reading from fsys.
func NewCopier(fsys fs.FS, logger *slog.Logger) *Copier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Copier{fsys: fsys, renderer: NewRenderer(fsys), logger: logger}
}

// Exists reports whether src is present in the template tree and whether
// it is a directory.
func (c *Copier) Exists(src string) (isDir, ok bool) {
	info, err := fs.Stat(c.fsys, src)
	if err != nil {
		return false, false
	}
	return info.IsDir(), true
}

// Render returns the rendered content of the template file src.
func (c *Copier) Render(src string, vars Vars) ([]byte, error) {
	return c.renderer.Render(src, vars)
}

// Files lists the files under the template directory src, relative to src.
func (c *Copier) Files(ctx context.Context, src string) ([]string, error) {
	var files []string
	err := c.walk(ctx, src, func(rel string) error {
		files = append(files, rel)
		return nil
	})
	return files, err
}

// CopyFile renders src and writes it to dest, creating parent directories.
func (c *Copier) CopyFile(src, dest string, vars Vars) error {
	content, err := c.renderer.Render(src, vars)
	if err != nil {
		return err
	}
	if err := writeFile(dest, content); err != nil {
		return err
	}
	c.logger.Debug("copied template", "src", src, "dest", dest)
	return nil
}

// CopyDirectory renders every file under src into dest. It returns the
// destination paths written.
func (c *Copier) CopyDirectory(ctx context.Context, src, dest string, vars Vars) ([]string, error) {
	var written []string
	err := c.walk(ctx, src, func(rel string) error {
		if err := validateDeployPath(dest, rel); err != nil {
			return err
		}
		target := filepath.Join(dest, filepath.FromSlash(rel))
		if err := c.CopyFile(path.Join(src, rel), target, vars); err != nil {
			return err
		}
		written = append(written, target)
		return nil
	})
	return written, err
}

// Compare reports whether copying src to dest would create, overwrite or
// leave it unchanged. Directories compare file by file.
func (c *Copier) Compare(ctx context.Context, src, dest string, vars Vars) (Status, error) {
	isDir, ok := c.Exists(src)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrTemplateNotFound, src)
	}
	if _, err := os.Stat(dest); errors.Is(err, fs.ErrNotExist) {
		return StatusCreate, nil
	} else if err != nil {
		return 0, err
	}
	if !isDir {
		return c.compareFile(src, dest, vars)
	}

	status := StatusUpToDate
	err := c.walk(ctx, src, func(rel string) error {
		s, err := c.compareFile(path.Join(src, rel), filepath.Join(dest, filepath.FromSlash(rel)), vars)
		if err != nil {
			return err
		}
		if s != StatusUpToDate {
			status = StatusOverwrite
			return fs.SkipAll
		}
		return nil
	})
	return status, err
}

func (c *Copier) compareFile(src, dest string, vars Vars) (Status, error) {
	want, err := c.renderer.Render(src, vars)
	if err != nil {
		return 0, err
	}
	have, err := os.ReadFile(dest)
	if errors.Is(err, fs.ErrNotExist) {
		return StatusOverwrite, nil
	}
	if err != nil {
		return 0, err
	}
	if bytes.Equal(want, have) {
		return StatusUpToDate, nil
	}
	return StatusOverwrite, nil
}

// walk calls fn with the slash-separated path of every file under root,
// relative to root.
func (c *Copier) walk(ctx context.Context, root string, fn func(rel string) error) error {
	err := fs.WalkDir(c.fsys, root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		return fn(rel)
	})
	if errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func writeFile(dest string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("template mkdir %q: %w", filepath.Dir(dest), err)
	}
	perm := fs.FileMode(0o644)
	if strings.HasSuffix(dest, ".sh") {
		perm = 0o755
	}
	if err := os.WriteFile(dest, content, perm); err != nil {
		return fmt.Errorf("template write %q: %w", dest, err)
	}
	return nil
}
