package template

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"testing/fstest"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"package/package.json":                    {Data: []byte(`{"name": "{{PACKAGE_NAME}}"}`)},
		"package/README.md":                       {Data: []byte("# {{PACKAGE_NAME}}\n")},
		"package/.claude/settings.json":           {Data: []byte("{}")},
		"package/CLAUDE.md":                       {Data: []byte("claude")},
		"package/.github/copilot-instructions.md": {Data: []byte("copilot")},
		"package/scripts/run.sh":                  {Data: []byte("#!/bin/sh\n")},
	}
}

func TestDeployer_Deploy(t *testing.T) {
	root := t.TempDir()
	d := NewDeployer(testFS())

	written, err := d.Deploy(context.Background(), root, DeployOptions{
		Root:   "package",
		Vars:   Vars{"PACKAGE_NAME": "@modu/tools"},
		Ignore: []string{".claude", "CLAUDE.md"},
	})
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	want := []string{".github/copilot-instructions.md", "README.md", "package.json", "scripts/run.sh"}
	slices.Sort(written)
	if !slices.Equal(written, want) {
		t.Errorf("written = %v, want %v", written, want)
	}

	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"name": "@modu/tools"}` {
		t.Errorf("package.json = %s", data)
	}

	if _, err := os.Stat(filepath.Join(root, ".claude")); !errors.Is(err, os.ErrNotExist) {
		t.Error(".claude should have been ignored")
	}

	info, err := os.Stat(filepath.Join(root, "scripts", "run.sh"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o100 == 0 {
		t.Error("shell script is not executable")
	}
}

func TestDeployer_SkipsExistingFiles(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "README.md"), []byte("mine"), 0o644); err != nil {
		t.Fatal(err)
	}

	written, err := NewDeployer(testFS()).Deploy(context.Background(), root, DeployOptions{Root: "package"})
	if err != nil {
		t.Fatalf("Deploy: %v", err)
	}
	if slices.Contains(written, "README.md") {
		t.Error("existing README.md reported as written")
	}
	data, _ := os.ReadFile(filepath.Join(root, "README.md"))
	if string(data) != "mine" {
		t.Errorf("README.md overwritten: %q", data)
	}
}

func TestDeployer_MissingRoot(t *testing.T) {
	_, err := NewDeployer(testFS()).Deploy(context.Background(), t.TempDir(), DeployOptions{Root: "nope"})
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("error = %v, want ErrTemplateNotFound", err)
	}
}

func TestDeployer_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewDeployer(testFS()).Deploy(ctx, t.TempDir(), DeployOptions{Root: "package"})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestDeployer_ListTemplates(t *testing.T) {
	list := NewDeployer(testFS()).ListTemplates("package")
	if len(list) != 6 || list[0] != ".claude/settings.json" {
		t.Errorf("ListTemplates() = %v", list)
	}
}

func TestIgnored(t *testing.T) {
	patterns := []string{".github/copilot-instructions.md", ".github/instructions", ".cursor", "*.log"}
	tests := []struct {
		rel  string
		want bool
	}{
		{".github/copilot-instructions.md", true},
		{".github/instructions/typescript.instructions.md", true},
		{".cursor/rules/project.mdc", true},
		{"debug.log", true},
		{".github/workflows/ci.yml", false},
		{"README.md", false},
	}
	for _, tt := range tests {
		if got := Ignored(tt.rel, patterns); got != tt.want {
			t.Errorf("Ignored(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestValidateDeployPath(t *testing.T) {
	root := t.TempDir()
	for _, rel := range []string{"../etc/passwd", "a/../../b", "/abs/path"} {
		if err := validateDeployPath(root, rel); !errors.Is(err, ErrPathTraversal) {
			t.Errorf("validateDeployPath(%q) = %v, want ErrPathTraversal", rel, err)
		}
	}
	if err := validateDeployPath(root, "src/index.ts"); err != nil {
		t.Errorf("validateDeployPath(src/index.ts) = %v", err)
	}
}
