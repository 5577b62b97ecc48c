package config

// Config represents the main configuration structure
type Config struct {
	Sanitizer SanitizerConfig `yaml:"sanitizer" mapstructure:"sanitizer"`
	Watch     WatchConfig     `yaml:"watch" mapstructure:"watch"`
	Logging   LoggingConfig   `yaml:"logging" mapstructure:"logging"`
}

// SanitizerConfig describes a single sanitization run: where to read
// files from, where to write sanitized copies, and how matches are
// replaced.
type SanitizerConfig struct {
	// SourceDir is the directory scanned recursively for input files.
	SourceDir string `yaml:"source_dir" mapstructure:"source_dir"`
	// OutputDir receives sanitized copies, mirroring the source layout.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`
	// RulesFile lists one regular expression per line; blank lines and
	// lines starting with # are skipped.
	RulesFile string `yaml:"rules_file" mapstructure:"rules_file"`
	// IgnoreFile lists glob patterns for files to exclude, relative to
	// SourceDir. Empty disables ignore matching.
	IgnoreFile string `yaml:"ignore_file" mapstructure:"ignore_file"`
	// Placeholder replaces matched text.
	Placeholder string `yaml:"placeholder" mapstructure:"placeholder"`
	// StripLength replaces each match with the placeholder exactly once
	// instead of tiling it to the match length.
	StripLength bool `yaml:"strip_length" mapstructure:"strip_length"`
	// Workers is the number of files transformed concurrently.
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// WatchConfig contains continuous-mode configuration
type WatchConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// EventsPerSecond caps how often changed files are re-sanitized.
	EventsPerSecond float64 `yaml:"events_per_second" mapstructure:"events_per_second"`
	Burst           int     `yaml:"burst" mapstructure:"burst"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // json or console
	File   struct {
		Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
		Path    string `yaml:"path" mapstructure:"path"`
	} `yaml:"file" mapstructure:"file"`
}

// GetDefaults returns a configuration with sensible defaults
func GetDefaults() *Config {
	return &Config{
		Sanitizer: SanitizerConfig{
			SourceDir:   "source",
			OutputDir:   "results",
			RulesFile:   "main.rule",
			IgnoreFile:  "ignore.list",
			Placeholder: "*",
			StripLength: false,
			Workers:     1,
		},
		Watch: WatchConfig{
			Enabled:         false,
			EventsPerSecond: 10,
			Burst:           32,
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}
