package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Sanitizer.SourceDir != "source" {
		t.Errorf("SourceDir = %q, want %q", cfg.Sanitizer.SourceDir, "source")
	}
	if cfg.Sanitizer.OutputDir != "results" {
		t.Errorf("OutputDir = %q, want %q", cfg.Sanitizer.OutputDir, "results")
	}
	if cfg.Sanitizer.RulesFile != "main.rule" {
		t.Errorf("RulesFile = %q, want %q", cfg.Sanitizer.RulesFile, "main.rule")
	}
	if cfg.Sanitizer.Placeholder != "*" {
		t.Errorf("Placeholder = %q, want %q", cfg.Sanitizer.Placeholder, "*")
	}
	if cfg.Sanitizer.StripLength {
		t.Error("StripLength should default to false")
	}
	if cfg.Sanitizer.Workers != 1 {
		t.Errorf("Workers = %d, want 1", cfg.Sanitizer.Workers)
	}
	if cfg.Watch.Enabled {
		t.Error("Watch should default to disabled")
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logveil.yaml")
	content := strings.Join([]string{
		"sanitizer:",
		"  source_dir: /var/log/app",
		"  output_dir: /var/log/app-clean",
		"  placeholder: '#'",
		"  strip_length: true",
		"  workers: 4",
		"logging:",
		"  level: debug",
		"  format: console",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Sanitizer.SourceDir != "/var/log/app" {
		t.Errorf("SourceDir = %q, want %q", cfg.Sanitizer.SourceDir, "/var/log/app")
	}
	if cfg.Sanitizer.Placeholder != "#" {
		t.Errorf("Placeholder = %q, want %q", cfg.Sanitizer.Placeholder, "#")
	}
	if !cfg.Sanitizer.StripLength {
		t.Error("StripLength should be true")
	}
	if cfg.Sanitizer.Workers != 4 {
		t.Errorf("Workers = %d, want 4", cfg.Sanitizer.Workers)
	}
	// Unset keys keep their defaults.
	if cfg.Sanitizer.RulesFile != "main.rule" {
		t.Errorf("RulesFile = %q, want default %q", cfg.Sanitizer.RulesFile, "main.rule")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"Defaults", func(c *Config) {}, false},
		{"EmptySource", func(c *Config) { c.Sanitizer.SourceDir = "" }, true},
		{"EmptyOutput", func(c *Config) { c.Sanitizer.OutputDir = "" }, true},
		{"EmptyRules", func(c *Config) { c.Sanitizer.RulesFile = "" }, true},
		{"EmptyPlaceholder", func(c *Config) { c.Sanitizer.Placeholder = "" }, true},
		{"ZeroWorkers", func(c *Config) { c.Sanitizer.Workers = 0 }, true},
		{"BadLevel", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"BadFormat", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"WatchWithoutRate", func(c *Config) {
			c.Watch.Enabled = true
			c.Watch.EventsPerSecond = 0
		}, true},
		{"EmptyIgnoreAllowed", func(c *Config) { c.Sanitizer.IgnoreFile = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaults()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
