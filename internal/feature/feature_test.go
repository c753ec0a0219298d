package feature

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modu-ai/pkgkit/internal/manifest"
	"github.com/modu-ai/pkgkit/internal/template"
)

// fakeManager records calls and edits package.json the way a real
// package manager would.
type fakeManager struct {
	mu      sync.Mutex
	added   []string
	removed []string
	failOn  string
}

func (f *fakeManager) Name() string { return "pnpm" }

func (f *fakeManager) AddDev(_ context.Context, dir, name, _ string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if name == f.failOn {
		return false, errors.New("network down")
	}
	f.added = append(f.added, name)
	_, err := manifest.Update(dir, func(m *manifest.Manifest) (*manifest.Manifest, bool) {
		next := m.Clone()
		root := next.Root()
		devs, ok := root.GetObject(manifest.SectionDevDependencies)
		if !ok {
			devs = manifest.NewObject()
			root.Set(manifest.SectionDevDependencies, devs)
		}
		devs.Set(name, "^1.0.0")
		return next, true
	})
	return true, err
}

func (f *fakeManager) Remove(_ context.Context, dir, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, name)
	changed, err := manifest.Update(dir, func(m *manifest.Manifest) (*manifest.Manifest, bool) {
		next, gone := manifest.RemoveDependencies(m, name)
		return next, len(gone) > 0
	})
	return changed, err
}

// newPackage deploys the embedded package template into a temp dir and
// returns a feature context for it.
func newPackage(t *testing.T) (*Context, *fakeManager) {
	t.Helper()
	fsys, err := template.EmbeddedFS()
	require.NoError(t, err)

	dir := t.TempDir()
	vars := template.NewVars(template.WithPackage("@modu", "widget"))
	_, err = template.NewCopier(fsys, nil).CopyDirectory(context.Background(), template.PackageRoot, dir, vars)
	require.NoError(t, err)

	// Start without the AI artifacts so those features have work to do.
	for _, rel := range []string{".github/copilot-instructions.md", ".github/instructions", ".cursor", ".claude", "CLAUDE.md"} {
		require.NoError(t, os.RemoveAll(filepath.Join(dir, rel)))
	}

	mgr := &fakeManager{}
	return &Context{
		Dir:       dir,
		Package:   &PackageInfo{Scope: "@modu", Name: "widget"},
		Scope:     "@modu",
		Manager:   mgr,
		Templates: fsys,
	}, mgr
}

func readManifest(t *testing.T, dir string) *manifest.Manifest {
	t.Helper()
	m, err := manifest.Read(dir)
	require.NoError(t, err)
	return m
}

func TestDefaultRegistryOrder(t *testing.T) {
	want := []string{FormattingID, TestingID, AIInstructionsID, AIClaudeID, MarkdownID, GitHooksID}
	assert.Equal(t, want, Default().IDs())
}

func TestNewRegistryRejectsInvalid(t *testing.T) {
	f := Testing()
	_, err := NewRegistry(f, f)
	assert.Error(t, err)

	_, err = NewRegistry(Feature{ID: "bare"})
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	r := Default()

	got, err := r.Resolve([]string{GitHooksID, FormattingID, GitHooksID})
	require.NoError(t, err)
	assert.Equal(t, []string{FormattingID, GitHooksID}, got)

	_, err = r.Resolve([]string{"prettier"})
	assert.ErrorIs(t, err, ErrUnknownFeature)
}

func TestUnowned(t *testing.T) {
	r := Default()

	assert.Equal(t, []string{"CLAUDE.md", ".claude"}, r.Unowned([]string{AIInstructionsID, TestingID}))
	assert.Empty(t, r.Unowned([]string{AIInstructionsID, AIClaudeID}))
	assert.Len(t, r.Unowned(nil), 5)
}

func TestInstallAllThenIdempotent(t *testing.T) {
	ctx := context.Background()
	fc, mgr := newPackage(t)
	r := Default()

	detected, err := r.Detected(ctx, fc)
	require.NoError(t, err)
	assert.Empty(t, detected)

	outcomes, err := r.Install(ctx, fc, r.IDs())
	require.NoError(t, err)
	require.Len(t, outcomes, len(r.IDs()))
	for _, o := range outcomes {
		assert.True(t, o.Result.Changed(), "feature %s applied nothing", o.ID)
	}

	detected, err = r.Detected(ctx, fc)
	require.NoError(t, err)
	assert.Equal(t, r.IDs(), detected)

	before := readManifest(t, fc.Dir)
	installs := len(mgr.added)

	outcomes, err = r.Install(ctx, fc, r.IDs())
	require.NoError(t, err)
	for _, o := range outcomes {
		assert.Empty(t, o.Result.Applied, "feature %s not idempotent", o.ID)
		assert.NotEmpty(t, o.Result.Noop, "feature %s", o.ID)
	}
	assert.Len(t, mgr.added, installs)
	assert.True(t, before.Equal(readManifest(t, fc.Dir)))
}

func TestInstallStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	fc, mgr := newPackage(t)
	mgr.failOn = vitestPackage

	outcomes, err := Default().Install(ctx, fc, []string{TestingID, GitHooksID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply testing")
	require.Len(t, outcomes, 1)
	assert.Equal(t, TestingID, outcomes[0].ID)
	assert.False(t, manifest.IsDeclared(fc.Dir, lintStagedPackage))
}

func TestInstallHonoursCancellation(t *testing.T) {
	fc, _ := newPackage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := Default().Install(ctx, fc, []string{TestingID})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, outcomes)
}

func TestFormattingApply(t *testing.T) {
	ctx := context.Background()
	fc, mgr := newPackage(t)

	_, err := manifest.Update(fc.Dir, func(m *manifest.Manifest) (*manifest.Manifest, bool) {
		next := m.Clone()
		devs, _ := next.Root().GetObject(manifest.SectionDevDependencies)
		devs.Set("prettier", "^3.0.0")
		devs.Set("prettier-plugin-tailwindcss", "^0.6.0")
		scripts, _ := next.Root().GetObject("scripts")
		scripts.Set("prettier.write", "prettier --write .")
		return next, true
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(fc.Dir, ".prettierrc"), []byte("{}\n"), 0o644))

	res, err := Formatting().Apply(ctx, fc)
	require.NoError(t, err)
	assert.True(t, res.Changed())

	assert.ElementsMatch(t, []string{"prettier", "prettier-plugin-tailwindcss"}, mgr.removed)
	assert.FileExists(t, filepath.Join(fc.Dir, ".prettierrc--backup"))
	assert.NoFileExists(t, filepath.Join(fc.Dir, ".prettierrc"))

	m := readManifest(t, fc.Dir)
	assert.True(t, m.HasDependency("dprint"))
	assert.True(t, m.HasDependency("@modu/dprint-config"))
	assert.False(t, m.HasDependency("prettier"))
	_, ok := m.Script("prettier.write")
	assert.False(t, ok)

	var keys []string
	for _, e := range m.Scripts() {
		keys = append(keys, e.Key)
	}
	typecheck := slices.Index(keys, "typecheck")
	format := slices.Index(keys, "format")
	release := slices.Index(keys, manifest.TitleKey("RELEASE"))
	assert.Equal(t, manifest.TitleKey(formattingGroupTitle), keys[typecheck+1])
	assert.Greater(t, release, format)

	check, _ := m.Script(releaseCheckScript)
	assert.True(t, strings.HasPrefix(check, "pnpm format.check && "), check)

	data, ok := m.LintStaged(lintStagedDataGlob)
	require.True(t, ok)
	assert.Equal(t, []string{dprintLintCommand}, data)

	conf, err := os.ReadFile(filepath.Join(fc.Dir, dprintConfigFile))
	require.NoError(t, err)
	assert.Contains(t, string(conf), "@modu/dprint-config")

	ci, err := os.ReadFile(filepath.Join(fc.Dir, ciWorkflow))
	require.NoError(t, err)
	assert.Contains(t, string(ci), "pnpm format.check")

	settings, err := os.ReadFile(filepath.Join(fc.Dir, ".vscode", "settings.json"))
	require.NoError(t, err)
	assert.Contains(t, string(settings), `"prettier.enable": false`)
	assert.Contains(t, string(settings), `"[typescript]"`)
}

func TestGitHooksAfterFormattingRunsDprintFirst(t *testing.T) {
	ctx := context.Background()
	fc, _ := newPackage(t)

	_, err := Default().Install(ctx, fc, []string{FormattingID, GitHooksID})
	require.NoError(t, err)

	code, ok := readManifest(t, fc.Dir).LintStaged(lintStagedCodeGlob)
	require.True(t, ok)
	assert.Equal(t, []string{dprintLintCommand, "eslint --fix"}, code)
}

func TestAIClaudeAppliesInstructionsFirst(t *testing.T) {
	ctx := context.Background()
	fc, _ := newPackage(t)

	res, err := AIClaude().Apply(ctx, fc)
	require.NoError(t, err)
	assert.Contains(t, res.Applied, instructionsDir)
	assert.Contains(t, res.Applied, "CLAUDE.md")

	ok, err := AIInstructions().Detect(ctx, fc)
	require.NoError(t, err)
	assert.True(t, ok)

	ignore, err := os.ReadFile(filepath.Join(fc.Dir, gitignoreFile))
	require.NoError(t, err)
	for _, line := range claudeGitignore {
		assert.Contains(t, string(ignore), line+"\n")
	}
}

func TestDetectIsReadOnly(t *testing.T) {
	ctx := context.Background()
	fc, mgr := newPackage(t)
	before := readManifest(t, fc.Dir)

	for _, f := range Default().All() {
		_, err := f.Detect(ctx, fc)
		require.NoError(t, err, f.ID)
	}
	assert.Empty(t, mgr.added)
	assert.True(t, before.Equal(readManifest(t, fc.Dir)))
	assert.NoDirExists(t, filepath.Join(fc.Dir, ".vscode"))
}

type recordingProgress struct{ titles []string }

func (p *recordingProgress) Run(ctx context.Context, title string, fn func(context.Context) error) error {
	p.titles = append(p.titles, title)
	return fn(ctx)
}

func TestInstallsReportProgress(t *testing.T) {
	fc, _ := newPackage(t)
	progress := &recordingProgress{}
	fc.Progress = progress

	_, err := Markdown().Apply(context.Background(), fc)
	require.NoError(t, err)
	assert.Equal(t, []string{"Installing " + markdownlintPackage}, progress.titles)
}
