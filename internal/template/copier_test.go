package template

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestCopier_CompareAndCopy(t *testing.T) {
	fsys := fstest.MapFS{
		"package/.nvmrc":                    {Data: []byte("22\n")},
		"package/docs/DEVELOPER_WORKFLOW.md": {Data: []byte("# {{PACKAGE_NAME}}\n")},
		"package/docs/RELEASES.md":           {Data: []byte("releases\n")},
	}
	c := NewCopier(fsys, nil)
	ctx := context.Background()
	root := t.TempDir()
	vars := Vars{"PACKAGE_NAME": "@modu/tools"}

	nvmrc := filepath.Join(root, ".nvmrc")
	if s, err := c.Compare(ctx, "package/.nvmrc", nvmrc, vars); err != nil || s != StatusCreate {
		t.Fatalf("Compare(missing) = %v, %v; want create", s, err)
	}
	if err := os.WriteFile(nvmrc, []byte("20\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if s, _ := c.Compare(ctx, "package/.nvmrc", nvmrc, vars); s != StatusOverwrite {
		t.Errorf("Compare(different) = %v, want overwrite", s)
	}
	if err := c.CopyFile("package/.nvmrc", nvmrc, vars); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	if s, _ := c.Compare(ctx, "package/.nvmrc", nvmrc, vars); s != StatusUpToDate {
		t.Errorf("Compare(copied) = %v, want up to date", s)
	}

	docs := filepath.Join(root, "docs")
	written, err := c.CopyDirectory(ctx, "package/docs", docs, vars)
	if err != nil {
		t.Fatalf("CopyDirectory: %v", err)
	}
	if len(written) != 2 {
		t.Errorf("CopyDirectory wrote %d files, want 2", len(written))
	}
	data, _ := os.ReadFile(filepath.Join(docs, "DEVELOPER_WORKFLOW.md"))
	if string(data) != "# @modu/tools\n" {
		t.Errorf("DEVELOPER_WORKFLOW.md = %q", data)
	}
	if s, _ := c.Compare(ctx, "package/docs", docs, vars); s != StatusUpToDate {
		t.Errorf("Compare(dir) = %v, want up to date", s)
	}

	if err := os.Remove(filepath.Join(docs, "RELEASES.md")); err != nil {
		t.Fatal(err)
	}
	if s, _ := c.Compare(ctx, "package/docs", docs, vars); s != StatusOverwrite {
		t.Errorf("Compare(dir missing file) = %v, want overwrite", s)
	}
}

func TestCopier_Exists(t *testing.T) {
	c := NewCopier(fstest.MapFS{"a/b.txt": {Data: []byte("x")}}, nil)
	if isDir, ok := c.Exists("a"); !ok || !isDir {
		t.Errorf("Exists(a) = %v, %v", isDir, ok)
	}
	if isDir, ok := c.Exists("a/b.txt"); !ok || isDir {
		t.Errorf("Exists(a/b.txt) = %v, %v", isDir, ok)
	}
	if _, ok := c.Exists("missing"); ok {
		t.Error("Exists(missing) = true")
	}
}

func TestEmbeddedFS_HasPackageTree(t *testing.T) {
	fsys, err := EmbeddedFS()
	if err != nil {
		t.Fatal(err)
	}
	c := NewCopier(fsys, nil)
	for _, p := range []string{
		"package/package.json",
		"package/.nvmrc",
		"package/.simple-git-hooks.mjs",
		"package/eslint.config.mjs",
		"package/.github/workflows/release.yml",
		"package/docs",
		"features/formatting/dprint.jsonc",
	} {
		if _, ok := c.Exists(p); !ok {
			t.Errorf("embedded template %s missing", p)
		}
	}
}

func TestCopier_RenderAndFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"package/docs/DEVELOPER_WORKFLOW.md": {Data: []byte("# {{PACKAGE_NAME}}\n")},
		"package/docs/guides/RELEASES.md":    {Data: []byte("releases\n")},
	}
	c := NewCopier(fsys, nil)

	got, err := c.Render("package/docs/DEVELOPER_WORKFLOW.md", Vars{"PACKAGE_NAME": "@modu/tools"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if string(got) != "# @modu/tools\n" {
		t.Errorf("Render = %q", got)
	}

	files, err := c.Files(context.Background(), "package/docs")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	want := []string{"DEVELOPER_WORKFLOW.md", "guides/RELEASES.md"}
	if len(files) != len(want) || files[0] != want[0] || files[1] != want[1] {
		t.Errorf("Files = %v, want %v", files, want)
	}
}
