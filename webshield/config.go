package webshield

// DefaultInfoURL is opened when the user asks for more information on a decision page
const DefaultInfoURL = "https://gitlab.com/webshield/webshield/-/blob/master/docs/malicious-links.md"

// Default module file names searched for in the module directory
const (
	DefaultModuleName = "libwebshield.so"
	LegacyModuleName  = "libxssdefender.so"
)

// Config for webshield
type Config struct {
	Enabled    bool           `toml:"enabled" envconfig:"ENABLED"`
	ModuleDir  string         `toml:"module_dir" envconfig:"MODULE_DIR"`
	ModuleName string         `toml:"module_name" envconfig:"MODULE_NAME"`
	LegacyName string         `toml:"legacy_name" envconfig:"LEGACY_NAME"`
	InfoURL    string         `toml:"info_url" envconfig:"INFO_URL"` // overrides DefaultInfoURL when set
	Locale     string         `toml:"locale" envconfig:"LOCALE"`
	Browser    *BrowserConfig `toml:"browser" envconfig:"BROWSER"`
}

// BrowserConfig controls the guarded browser started by the browse command
type BrowserConfig struct {
	ChromePath  string   `toml:"chrome_path" envconfig:"CHROME_PATH"`
	ProfileDir  string   `toml:"profile_dir" envconfig:"PROFILE_DIR"`
	Flags       []string `toml:"flags" envconfig:"CHROME_FLAGS"`
	MetricsAddr string   `toml:"metrics_addr" envconfig:"METRICS_ADDR"`
}

// NewConfig with defaults applied
func NewConfig() *Config {
	return &Config{
		Enabled:    true,
		ModuleName: DefaultModuleName,
		LegacyName: LegacyModuleName,
		Locale:     "en-US",
		Browser:    &BrowserConfig{},
	}
}

// PathProvider resolves where the detection module lives on disk
type PathProvider interface {
	// ModulePath is the primary module path
	ModulePath() (string, error)
	// ModulePathByName resolves a path for an alternative (legacy) module name
	ModulePathByName(name string) (string, error)
	// LegacyName of the fallback module
	LegacyName() string
}
