package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Load loads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	config := GetDefaults()

	v := newViper(configPath)

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error - we'll use defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate configuration
	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// newViper builds a viper instance with the standard search paths and
// environment overrides. A fresh instance per call keeps repeated loads
// in the same process from contaminating each other.
func newViper(configPath string) *viper.Viper {
	v := viper.New()

	v.SetConfigName("logveil")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	v.AddConfigPath("$HOME/.logveil/")

	// Environment variable overrides
	v.SetEnvPrefix("LOGVEIL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Use specific config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
	}

	return v
}

// Validate validates a configuration, loaded or assembled by hand.
func Validate(config *Config) error {
	if config.Sanitizer.SourceDir == "" {
		return fmt.Errorf("source directory must not be empty")
	}

	if config.Sanitizer.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}

	if config.Sanitizer.RulesFile == "" {
		return fmt.Errorf("rules file must not be empty")
	}

	if config.Sanitizer.Placeholder == "" {
		return fmt.Errorf("placeholder must not be empty")
	}

	if config.Sanitizer.Workers < 1 {
		return fmt.Errorf("invalid worker count: %d", config.Sanitizer.Workers)
	}

	if config.Watch.Enabled && config.Watch.EventsPerSecond <= 0 {
		return fmt.Errorf("invalid watch rate: %f", config.Watch.EventsPerSecond)
	}

	if config.Logging.Level != "debug" && config.Logging.Level != "info" && config.Logging.Level != "warn" && config.Logging.Level != "error" {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.Logging.Level)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", config.Logging.Format)
	}

	return nil
}

// Watch starts watching the configuration file for changes
func Watch(configPath string, callback func(*Config)) error {
	v := newViper(configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Nothing on disk to watch; hot reload is a no-op.
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		newConfig := GetDefaults()
		if err := v.Unmarshal(newConfig); err != nil {
			// Log error but don't crash
			return
		}

		if err := Validate(newConfig); err != nil {
			// Log error but don't crash
			return
		}

		callback(newConfig)
	})

	return nil
}
