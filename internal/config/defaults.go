package config

// Default value constants.
const (
	DefaultScope          = "@modu"
	DefaultPackageManager = "pnpm"

	// EnvPrefix prefixes every environment override, e.g. PKGKIT_SCOPE.
	EnvPrefix = "PKGKIT"

	configDirName  = "pkgkit"
	configFileName = "config.yaml"
)

// NewDefaultSettings returns Settings with every default applied.
func NewDefaultSettings() *Settings {
	return &Settings{
		Scope:          DefaultScope,
		PackageManager: DefaultPackageManager,
	}
}

// defaultValues maps viper keys to their defaults. Every key must be
// listed so environment overrides reach Unmarshal.
func defaultValues() map[string]any {
	d := NewDefaultSettings()
	return map[string]any{
		"scope":           d.Scope,
		"package_manager": d.PackageManager,
		"author.name":     d.Author.Name,
		"author.email":    d.Author.Email,
		"author.url":      d.Author.URL,
		"description":     d.Description,
		"debug":           d.Debug,
		"no_color":        d.NoColor,
		"templates_dir":   d.TemplatesDir,
	}
}
