package template

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
)

//go:embed all:templates
var embedded embed.FS

// Template tree roots.
const (
	// PackageRoot holds the files of a freshly created package.
	PackageRoot = "package"
	// FeaturesRoot holds files owned by individual features.
	FeaturesRoot = "features"
)

// EmbeddedFS returns the template tree compiled into the binary.
func EmbeddedFS() (fs.FS, error) {
	sub, err := fs.Sub(embedded, "templates")
	if err != nil {
		return nil, fmt.Errorf("open embedded templates: %w", err)
	}
	return sub, nil
}

// Source returns the template tree rooted at dir, or the embedded tree
// when dir is empty.
func Source(dir string) (fs.FS, error) {
	if dir == "" {
		return EmbeddedFS()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("templates dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("templates dir %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}
