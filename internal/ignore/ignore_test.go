package ignore

import (
	"os"
	"path/filepath"
	"testing"
)

func writeIgnore(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ignore.list")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write ignore file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Run("SkipsCommentsAndBlanks", func(t *testing.T) {
		path := writeIgnore(t, "# compressed files\n*.gz\n\n  # temp\ntmp/\n")

		matcher, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if got := len(matcher.Patterns()); got != 2 {
			t.Fatalf("Loaded %d patterns, want 2", got)
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.list"))
		if err == nil {
			t.Fatal("Load succeeded for a missing file")
		}
	})

	t.Run("MalformedGlobTolerated", func(t *testing.T) {
		path := writeIgnore(t, "[unclosed\n*.gz\n")

		matcher, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed on malformed glob: %v", err)
		}
		// Well-formed patterns still work alongside the bad one.
		if !matcher.Match("a.log.gz") {
			t.Error("*.gz should still match after a malformed pattern")
		}
	})
}

func TestMatch(t *testing.T) {
	matcher := New([]string{"*.gz", "tmp/", "secrets/**/*.key"})

	tests := []struct {
		path string
		want bool
	}{
		{"a.log.gz", true},
		{"nested/dir/b.gz", true},
		{"a.log", false},
		{"tmp/scratch.txt", true},
		{"secrets/prod/api.key", true},
		{"secrets/api.pem", false},
		{"gz", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := matcher.Match(tt.path); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestMatchEmpty(t *testing.T) {
	t.Run("NilMatcher", func(t *testing.T) {
		var matcher *Matcher
		if matcher.Match("a.log") {
			t.Error("Nil matcher should match nothing")
		}
	})

	t.Run("NoPatterns", func(t *testing.T) {
		if New(nil).Match("a.log") {
			t.Error("Empty matcher should match nothing")
		}
	})
}
