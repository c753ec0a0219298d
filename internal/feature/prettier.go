package feature

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/modu-ai/pkgkit/internal/manifest"
)

var prettierPackages = []string{
	"prettier",
	"eslint-config-prettier",
	"eslint-plugin-prettier",
}

var prettierPackagePatterns = []string{
	"prettier-plugin-*",
	"@*/prettier-plugin-*",
	"@*/prettier-config",
	"prettier-config-*",
}

var prettierConfigFiles = []string{
	".prettierrc",
	".prettierrc.json",
	".prettierrc.json5",
	".prettierrc.yml",
	".prettierrc.yaml",
	".prettierrc.toml",
	".prettierrc.js",
	".prettierrc.cjs",
	".prettierrc.mjs",
	"prettier.config.js",
	"prettier.config.cjs",
	"prettier.config.mjs",
	".prettierignore",
}

func isPrettierPackage(name string) bool {
	if slices.Contains(prettierPackages, name) {
		return true
	}
	for _, pattern := range prettierPackagePatterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

// prettierDependencies lists the Prettier packages declared in m.
func prettierDependencies(m *manifest.Manifest) []string {
	var out []string
	for _, section := range []string{manifest.SectionDependencies, manifest.SectionDevDependencies} {
		for _, name := range m.DependencyNames(section) {
			if isPrettierPackage(name) && !slices.Contains(out, name) {
				out = append(out, name)
			}
		}
	}
	return out
}

// prettierScripts lists script keys whose command runs prettier.
func prettierScripts(m *manifest.Manifest) []string {
	var out []string
	for _, e := range m.Scripts() {
		if strings.HasPrefix(e.Value, "prettier ") || strings.Contains(e.Value, " prettier ") {
			out = append(out, e.Key)
		}
	}
	return out
}

// backupName turns ".prettierrc.json" into ".prettierrc--backup.json" and
// ".prettierrc" into ".prettierrc--backup".
func backupName(file string) string {
	ext := filepath.Ext(file)
	if ext == file {
		ext = ""
	}
	return strings.TrimSuffix(file, ext) + "--backup" + ext
}

// backupPrettierConfigs renames every Prettier config file in dir and
// returns the original names.
func backupPrettierConfigs(dir string) ([]string, error) {
	var moved []string
	for _, file := range prettierConfigFiles {
		src := filepath.Join(dir, file)
		if !exists(src) {
			continue
		}
		if err := os.Rename(src, filepath.Join(dir, backupName(file))); err != nil {
			return moved, err
		}
		moved = append(moved, file)
	}
	return moved, nil
}
