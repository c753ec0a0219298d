package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/modu-ai/pkgkit/internal/config"
	"github.com/modu-ai/pkgkit/internal/feature"
	"github.com/modu-ai/pkgkit/internal/template"
	"github.com/modu-ai/pkgkit/internal/ui"
)

type stubManager struct{}

func (stubManager) Name() string { return "pnpm" }

func (stubManager) AddDev(context.Context, string, string, string) (bool, error) {
	return false, errors.New("package manager disabled in tests")
}

func (stubManager) Remove(context.Context, string, string) (bool, error) {
	return false, errors.New("package manager disabled in tests")
}

// stubPrompter answers every prompt with fixed values.
type stubPrompter struct {
	err     error
	confirm bool
	asked   []string
}

func (p *stubPrompter) Select(_ context.Context, title string, _ []ui.Option, initial string) (string, error) {
	p.asked = append(p.asked, title)
	return initial, p.err
}

func (p *stubPrompter) MultiSelect(_ context.Context, title string, _ []ui.Option, _ []string) ([]string, error) {
	p.asked = append(p.asked, title)
	return nil, p.err
}

func (p *stubPrompter) Input(_ context.Context, title, placeholder string, _ func(string) error) (string, error) {
	p.asked = append(p.asked, title)
	return placeholder, p.err
}

func (p *stubPrompter) Confirm(_ context.Context, title string, _ bool) (bool, error) {
	p.asked = append(p.asked, title)
	return p.confirm, p.err
}

func setTestDeps(t *testing.T, p Prompter, interactive bool) *Dependencies {
	t.Helper()
	fsys, err := template.EmbeddedFS()
	if err != nil {
		t.Fatal(err)
	}
	hm := ui.NewHeadlessManager()
	hm.ForceHeadless(!interactive)
	theme := ui.NewTheme(true)
	settings := config.NewDefaultSettings()
	settings.NoColor = true

	d := &Dependencies{
		Settings:  settings,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Templates: fsys,
		Manager:   stubManager{},
		Registry:  feature.Default(),
		Headless:  hm,
		Prompter:  p,
		Progress:  ui.NewProgress(theme, hm, io.Discard),
		Dirty:     func(string) (bool, error) { return false, nil },
	}
	SetDeps(d)
	t.Cleanup(func() { SetDeps(nil) })
	return d
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr strings.Builder
	code := Execute(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writePackage(t *testing.T, name string) string {
	t.Helper()
	dir := t.TempDir()
	content := `{
  "name": "` + name + `",
  "version": "1.0.0",
  "scripts": {
    "build": "tsdown"
  }
}
`
	if err := os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestWithDefaultCommand(t *testing.T) {
	root := newRootCmd()
	tests := []struct {
		args []string
		want []string
	}{
		{nil, []string{"create"}},
		{[]string{"migrate", "--write"}, []string{"migrate", "--write"}},
		{[]string{"--yes", "--name", "widget"}, []string{"create", "--yes", "--name", "widget"}},
		{[]string{"--config", "c.yaml", "migrate"}, []string{"--config", "c.yaml", "migrate"}},
		{[]string{"--debug", "--type=cli"}, []string{"create", "--debug", "--type=cli"}},
		{[]string{"--help"}, []string{"--help"}},
		{[]string{"-v"}, []string{"-v"}},
		{[]string{"frobnicate"}, []string{"frobnicate"}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			got := withDefaultCommand(root, tt.args)
			if !slices.Equal(got, tt.want) {
				t.Errorf("withDefaultCommand(%v) = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestHelp(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"--help"}, []string{"pkgkit", "create", "migrate", "--no-color"}},
		{[]string{"-h"}, []string{"migrate"}},
		{[]string{"help", "migrate"}, []string{"--write", "--only", "--diff", "package-json", "workflows"}},
		{[]string{"migrate", "--help"}, []string{"Sections", "pkgkit migrate --write"}},
		{[]string{"create", "-h"}, []string{"--features", "library, cli, config"}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			code, stdout, stderr := run(t, tt.args...)
			if code != ExitOK {
				t.Fatalf("exit = %d, stderr = %q", code, stderr)
			}
			for _, w := range tt.want {
				if !strings.Contains(stdout, w) {
					t.Errorf("help output missing %q:\n%s", w, stdout)
				}
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	code, _, stderr := run(t, "frobnicate")
	if code != ExitError {
		t.Errorf("exit = %d, want %d", code, ExitError)
	}
	if !strings.Contains(stderr, "unknown command") || !strings.Contains(stderr, "pkgkit help") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestMigrateUnknownSection(t *testing.T) {
	setTestDeps(t, nil, false)
	code, _, stderr := run(t, "migrate", "/does/not/exist", "--only", "package-json,bogus")
	if code != ExitError {
		t.Fatalf("exit = %d, want %d", code, ExitError)
	}
	if !strings.Contains(stderr, "unknown section") {
		t.Errorf("stderr = %q, want unknown section", stderr)
	}
	if strings.Contains(stderr, "not a package") {
		t.Error("section validation ran after filesystem access")
	}
}

func TestMigrateNotAProject(t *testing.T) {
	setTestDeps(t, nil, false)
	code, _, stderr := run(t, "migrate", filepath.Join(t.TempDir(), "missing"))
	if code != ExitError {
		t.Fatalf("exit = %d, want %d", code, ExitError)
	}
	if !strings.Contains(stderr, "not a package directory") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestMigrateDryRunThenWrite(t *testing.T) {
	setTestDeps(t, nil, false)
	dir := writePackage(t, "@modu/widget")
	before, _ := os.ReadFile(filepath.Join(dir, "package.json"))

	code, stdout, stderr := run(t, "migrate", dir)
	if code != ExitOK {
		t.Fatalf("dry run exit = %d, stderr = %q", code, stderr)
	}
	for _, w := range []string{"@modu/widget", "patch package.json", "sync .nvmrc (create)", "Dry run"} {
		if !strings.Contains(stdout, w) {
			t.Errorf("dry run output missing %q:\n%s", w, stdout)
		}
	}
	after, _ := os.ReadFile(filepath.Join(dir, "package.json"))
	if string(before) != string(after) {
		t.Error("dry run modified package.json")
	}
	if _, err := os.Stat(filepath.Join(dir, ".nvmrc")); err == nil {
		t.Error("dry run wrote .nvmrc")
	}

	code, stdout, stderr = run(t, "migrate", dir, "--write")
	if code != ExitOK {
		t.Fatalf("write exit = %d, stderr = %q", code, stderr)
	}
	if !strings.Contains(stdout, "synced") || !strings.Contains(stdout, "patch(es)") {
		t.Errorf("write output = %q", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, ".nvmrc")); err != nil {
		t.Errorf(".nvmrc not synced: %v", err)
	}

	code, stdout, _ = run(t, "migrate", dir)
	if code != ExitOK || !strings.Contains(stdout, "Already aligned") {
		t.Errorf("second dry run exit = %d, output = %q", code, stdout)
	}
}

func TestMigrateDiff(t *testing.T) {
	setTestDeps(t, nil, false)
	dir := writePackage(t, "@modu/widget")

	code, stdout, stderr := run(t, "migrate", dir, "--diff", "--only", "nvmrc")
	if code != ExitOK {
		t.Fatalf("exit = %d, stderr = %q", code, stderr)
	}
	for _, w := range []string{"--- a/.nvmrc", "+++ b/.nvmrc", "@@ -0,0 +1,1 @@"} {
		if !strings.Contains(stdout, w) {
			t.Errorf("output missing %q:\n%s", w, stdout)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, ".nvmrc")); err == nil {
		t.Error("--diff wrote .nvmrc")
	}

	code, _, stderr = run(t, "migrate", dir, "--diff", "--write")
	if code != ExitError || !strings.Contains(stderr, "--diff cannot be combined with --write") {
		t.Errorf("exit = %d, stderr = %q", code, stderr)
	}
}

func TestMigrateDeclinedForeignScope(t *testing.T) {
	p := &stubPrompter{confirm: false}
	setTestDeps(t, p, true)
	dir := writePackage(t, "@other/widget")

	code, stdout, stderr := run(t, "migrate", dir, "--write")
	if code != ExitOK {
		t.Fatalf("exit = %d, stderr = %q", code, stderr)
	}
	if len(p.asked) != 1 || !strings.Contains(p.asked[0], "Detected package: @other/widget") {
		t.Errorf("asked = %v", p.asked)
	}
	if !strings.Contains(stderr, "Cancelled") {
		t.Errorf("stderr = %q, want cancellation note", stderr)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want nothing", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, ".nvmrc")); err == nil {
		t.Error("declined migration wrote files")
	}
}

func TestMigrateHeadlessSkipsConfirm(t *testing.T) {
	setTestDeps(t, nil, false)
	dir := writePackage(t, "@other/widget")

	code, _, stderr := run(t, "migrate", dir)
	if code != ExitOK {
		t.Errorf("exit = %d, stderr = %q", code, stderr)
	}
}

func TestCreateHeadless(t *testing.T) {
	setTestDeps(t, nil, false)
	parent := t.TempDir()

	code, stdout, stderr := run(t, "create", parent, "--name", "tokens", "--type", "config", "--author", "Ada | ada@example.com")
	if code != ExitOK {
		t.Fatalf("exit = %d, stderr = %q", code, stderr)
	}
	if !strings.Contains(stdout, "Created @modu/tokens") {
		t.Errorf("stdout = %q", stdout)
	}
	data, err := os.ReadFile(filepath.Join(parent, "tokens", "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	for _, w := range []string{`"@modu/tokens"`, `"Ada <ada@example.com>"`, `"shared-config"`} {
		if !strings.Contains(string(data), w) {
			t.Errorf("package.json missing %s:\n%s", w, data)
		}
	}
}

func TestCreateIsDefaultCommand(t *testing.T) {
	setTestDeps(t, nil, false)
	parent := t.TempDir()
	t.Chdir(parent)

	code, _, stderr := run(t, "--yes", "--name", "tokens", "--type", "config")
	if code != ExitOK {
		t.Fatalf("exit = %d, stderr = %q", code, stderr)
	}
	if _, err := os.Stat(filepath.Join(parent, "tokens", "package.json")); err != nil {
		t.Errorf("package not created: %v", err)
	}
}

func TestCreateHeadlessRequiresName(t *testing.T) {
	setTestDeps(t, nil, false)
	code, _, stderr := run(t, "create", t.TempDir())
	if code != ExitError {
		t.Fatalf("exit = %d, want %d", code, ExitError)
	}
	if !strings.Contains(stderr, "name is required") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestCreateRejectsBadFlags(t *testing.T) {
	setTestDeps(t, nil, false)
	tests := [][]string{
		{"create", "--type", "plugin", "--name", "x"},
		{"create", "--name", "Bad Name"},
		{"create", "--name", "x", "--features", "storybook"},
		{"create", "--bogus"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			code, _, stderr := run(t, args...)
			if code != ExitError {
				t.Errorf("exit = %d, want %d", code, ExitError)
			}
			if !strings.Contains(stderr, "pkgkit help") {
				t.Errorf("stderr = %q, want usage hint", stderr)
			}
		})
	}
}

func TestCreateInteractiveCancel(t *testing.T) {
	p := &stubPrompter{err: ui.ErrCancelled}
	setTestDeps(t, p, true)
	parent := t.TempDir()

	code, _, stderr := run(t, "create", parent)
	if code != ExitOK {
		t.Fatalf("exit = %d, stderr = %q", code, stderr)
	}
	entries, _ := os.ReadDir(parent)
	if len(entries) != 0 {
		t.Errorf("cancelled create wrote %d entries", len(entries))
	}
	if !strings.Contains(stderr, "Cancelled") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestCreateInteractiveUsesAnswers(t *testing.T) {
	p := &stubPrompter{}
	setTestDeps(t, p, true)
	parent := t.TempDir()

	code, _, stderr := run(t, "create", parent, "--name", "widget")
	if code != ExitOK {
		t.Fatalf("exit = %d, stderr = %q", code, stderr)
	}
	if len(p.asked) != 5 {
		t.Errorf("asked %d questions, want 5: %v", len(p.asked), p.asked)
	}
	if _, err := os.Stat(filepath.Join(parent, "widget", "tsdown.config.ts")); err != nil {
		t.Errorf("package not created: %v", err)
	}
}

func TestReport(t *testing.T) {
	tests := []struct {
		err  error
		code int
		want string
	}{
		{nil, ExitOK, ""},
		{ui.ErrCancelled, ExitOK, "Cancelled"},
		{usageError(errors.New("bad flag")), ExitError, "pkgkit help"},
		{errors.New("disk full"), ExitError, "disk full"},
	}
	for _, tt := range tests {
		var buf strings.Builder
		if got := report(tt.err, &buf, true); got != tt.code {
			t.Errorf("report(%v) = %d, want %d", tt.err, got, tt.code)
		}
		if !strings.Contains(buf.String(), tt.want) {
			t.Errorf("report(%v) output = %q, want %q", tt.err, buf.String(), tt.want)
		}
	}
}

func TestInitDependencies(t *testing.T) {
	settings := config.NewDefaultSettings()
	d, err := InitDependencies(settings, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("InitDependencies() error = %v", err)
	}
	if d.Manager.Name() != "pnpm" || d.Templates == nil || d.Registry == nil {
		t.Errorf("incomplete dependencies: %+v", d)
	}

	settings.TemplatesDir = filepath.Join(t.TempDir(), "missing")
	if _, err := InitDependencies(settings, io.Discard, io.Discard); err == nil {
		t.Error("InitDependencies() accepted a missing templates dir")
	}
}
