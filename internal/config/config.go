package config

// Config represents the complete gremlin-scripts configuration.
// It can be loaded from .gremlin/config.yml with environment variable overrides.
type Config struct {
	Scripts ScriptsConfig `yaml:"scripts" mapstructure:"scripts"`
	Parser  ParserConfig  `yaml:"parser" mapstructure:"parser"`
	Watch   WatchConfig   `yaml:"watch" mapstructure:"watch"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// ScriptsConfig defines which script files are loaded and in what order.
// The default file loads first, then discovered files sorted by path, then
// Files in the order listed. Later files override methods of the same name,
// so listed files take precedence over unlisted ones.
type ScriptsConfig struct {
	DefaultFile string   `yaml:"default_file" mapstructure:"default_file"` // loaded first if present
	Files       []string `yaml:"files" mapstructure:"files"`               // explicit files, loaded last in this order
	Include     []string `yaml:"include" mapstructure:"include"`           // glob patterns for discovery
	Ignore      []string `yaml:"ignore" mapstructure:"ignore"`             // glob patterns to skip
}

// ParserConfig tunes the line scanner.
type ParserConfig struct {
	Closer string `yaml:"closer" mapstructure:"closer"` // token that ends a definition block
}

// WatchConfig controls file watching in serve mode.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled" mapstructure:"enabled"`
	DebounceMs int  `yaml:"debounce_ms" mapstructure:"debounce_ms"`
}

// LogConfig controls log output.
type LogConfig struct {
	File  string `yaml:"file" mapstructure:"file"` // empty means stderr
	Debug bool   `yaml:"debug" mapstructure:"debug"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Scripts: ScriptsConfig{
			DefaultFile: "gremlin.groovy",
			Files:       []string{},
			Include: []string{
				"**/*.groovy",
				"**/*.gremlin",
			},
			Ignore: []string{
				".git/**",
				"vendor/**",
				"node_modules/**",
				"build/**",
				"target/**",
			},
		},
		Parser: ParserConfig{
			Closer: "}",
		},
		Watch: WatchConfig{
			Enabled:    true,
			DebounceMs: 100,
		},
		Log: LogConfig{
			File:  "",
			Debug: false,
		},
	}
}
