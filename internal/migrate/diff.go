package migrate

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/modu-ai/pkgkit/internal/manifest"
	"github.com/modu-ai/pkgkit/internal/template"
	"github.com/modu-ai/pkgkit/internal/textdiff"
)

// FileDiff is the pending change of one file in unified diff form.
type FileDiff struct {
	Path string
	Text string
}

// Diff renders every pending change of plan as a unified diff, in plan
// order. It writes nothing.
func (p *Planner) Diff(ctx context.Context, plan *Plan) ([]FileDiff, error) {
	var diffs []FileDiff
	add := func(rel string, old, current []byte) {
		if text := textdiff.Unified(rel, old, current); text != "" {
			diffs = append(diffs, FileDiff{Path: rel, Text: text})
		}
	}

	if plan.PatchManifest && len(plan.Changes) > 0 {
		old, err := os.ReadFile(manifest.Path(plan.Dir))
		if err != nil {
			return nil, err
		}
		current, err := plan.Manifest.Bytes()
		if err != nil {
			return nil, err
		}
		add(manifest.FileName, old, current)
	}

	for _, s := range plan.Syncs {
		if s.Status == template.StatusUpToDate {
			continue
		}
		src := path.Join(template.PackageRoot, s.Item.TemplatePath)
		files := []string{""}
		if s.IsDir {
			var err error
			if files, err = p.copier.Files(ctx, src); err != nil {
				return nil, err
			}
		}
		for _, f := range files {
			rel := path.Join(s.Item.TargetPath, f)
			want, err := p.copier.Render(path.Join(src, f), plan.Vars)
			if err != nil {
				return nil, err
			}
			have, err := os.ReadFile(filepath.Join(plan.Dir, filepath.FromSlash(rel)))
			if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
			add(rel, have, want)
		}
	}
	return diffs, nil
}
