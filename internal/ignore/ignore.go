package ignore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Matcher tests relative file paths against a set of glob-style ignore
// patterns. A file is ignored when any pattern matches. Matchers are
// immutable and safe for concurrent use.
type Matcher struct {
	patterns []string
	matcher  *gitignore.GitIgnore
}

// Load reads an ignore-list file and compiles its patterns. Blank lines
// and lines whose first non-whitespace character is '#' are skipped.
// Malformed glob syntax is tolerated as a literal pattern rather than
// failing the load.
func Load(path string) (*Matcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore file: %w", err)
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		text := strings.TrimSpace(line)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		patterns = append(patterns, filepath.ToSlash(text))
	}

	return New(patterns), nil
}

// New compiles a matcher from already-parsed pattern lines.
func New(patterns []string) *Matcher {
	return &Matcher{
		patterns: patterns,
		matcher:  gitignore.CompileIgnoreLines(patterns...),
	}
}

// Match reports whether the given path, relative to the source root,
// matches any ignore pattern.
func (m *Matcher) Match(relPath string) bool {
	if m == nil || len(m.patterns) == 0 {
		return false
	}
	return m.matcher.MatchesPath(filepath.ToSlash(relPath))
}

// Patterns returns the loaded pattern lines in file order.
func (m *Matcher) Patterns() []string {
	if m == nil {
		return nil
	}
	return m.patterns
}
