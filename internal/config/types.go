package config

// Settings are the resolved user settings of one pkgkit invocation.
// They are read once at the command boundary and passed explicitly.
type Settings struct {
	Scope          string         `mapstructure:"scope" yaml:"scope"`
	PackageManager string         `mapstructure:"package_manager" yaml:"package_manager"`
	Author         AuthorSettings `mapstructure:"author" yaml:"author"`
	Description    string         `mapstructure:"description" yaml:"description"`
	Debug          bool           `mapstructure:"debug" yaml:"debug"`
	NoColor        bool           `mapstructure:"no_color" yaml:"no_color"`
	// TemplatesDir replaces the embedded template tree when set.
	TemplatesDir string `mapstructure:"templates_dir" yaml:"templates_dir"`
}

// AuthorSettings pre-fill the author prompt of create.
type AuthorSettings struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Email string `mapstructure:"email" yaml:"email"`
	URL   string `mapstructure:"url" yaml:"url"`
}
