package feature

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/modu-ai/pkgkit/internal/manifest"
	"github.com/modu-ai/pkgkit/internal/template"
)

func (fc *Context) path(rel string) string {
	return filepath.Join(fc.Dir, filepath.FromSlash(rel))
}

func exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

func allExist(fc *Context, rels ...string) bool {
	for _, rel := range rels {
		if !exists(fc.path(rel)) {
			return false
		}
	}
	return true
}

// ensureTemplate copies the template src to rel when rel is missing. A
// directory template is copied as a whole.
func ensureTemplate(ctx context.Context, fc *Context, src, rel string) (bool, error) {
	dest := fc.path(rel)
	if exists(dest) {
		return false, nil
	}
	c := fc.copier()
	isDir, ok := c.Exists(src)
	if !ok {
		return false, fmt.Errorf("%w: %s", template.ErrTemplateNotFound, src)
	}
	if isDir {
		if _, err := c.CopyDirectory(ctx, src, dest, fc.vars()); err != nil {
			return false, err
		}
		return true, nil
	}
	if err := c.CopyFile(src, dest, fc.vars()); err != nil {
		return false, err
	}
	return true, nil
}

// packageTemplate returns the path of rel inside the package template tree.
func packageTemplate(rel string) string {
	return path.Join(template.PackageRoot, rel)
}

// featureTemplate returns the path of rel inside a feature's template tree.
func featureTemplate(id, rel string) string {
	return path.Join(template.FeaturesRoot, id, rel)
}

// ensureDevDependency installs name unless the manifest already declares it.
func ensureDevDependency(ctx context.Context, fc *Context, name, version string) (bool, error) {
	if manifest.IsDeclared(fc.Dir, name) {
		return false, nil
	}
	if fc.Manager == nil {
		return false, fmt.Errorf("install %s: no package manager configured", name)
	}
	var installed bool
	err := fc.run(ctx, "Installing "+name, func(ctx context.Context) error {
		var err error
		installed, err = fc.Manager.AddDev(ctx, fc.Dir, name, version)
		return err
	})
	if err != nil {
		return false, err
	}
	return installed, nil
}

// ensureDevDependencies installs every name not yet declared and returns
// those actually installed.
func ensureDevDependencies(ctx context.Context, fc *Context, names ...string) ([]string, error) {
	var installed []string
	for _, name := range names {
		ok, err := ensureDevDependency(ctx, fc, name, "")
		if err != nil {
			return installed, err
		}
		if ok {
			installed = append(installed, name)
		}
	}
	return installed, nil
}

// updateManifest applies patch to the package manifest and writes it back
// when something changed.
func updateManifest(fc *Context, patch func(*manifest.Manifest) (*manifest.Manifest, bool)) (bool, error) {
	return manifest.Update(fc.Dir, patch)
}

// ensureLines appends the lines missing from the text file at p, creating
// the file when needed. It returns the lines added.
func ensureLines(p string, lines ...string) ([]string, error) {
	data, err := os.ReadFile(p)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	var have []string
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		have = append(have, strings.TrimSpace(sc.Text()))
	}
	var missing []string
	for _, l := range lines {
		if !slices.Contains(have, l) {
			missing = append(missing, l)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	var buf bytes.Buffer
	buf.Write(data)
	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		buf.WriteByte('\n')
	}
	for _, l := range missing {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(p, buf.Bytes(), 0o644); err != nil {
		return nil, err
	}
	return missing, nil
}
