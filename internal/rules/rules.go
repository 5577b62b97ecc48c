package rules

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Rule is a single compiled sanitization rule. Rules are immutable after
// load and safe for concurrent use.
type Rule struct {
	// Description is the raw pattern text as it appeared in the rules file.
	Description string
	Pattern     *regexp.Regexp
}

// CompileError reports a rules-file line that is not a valid regular
// expression. The whole load fails; partial rule sets are never used.
type CompileError struct {
	File    string
	Line    int
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid regex on line %d of %s: %v", e.Line, e.File, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// ErrNoRules indicates a rules file that yielded zero usable rules.
var ErrNoRules = errors.New("no sanitization rules found")

// Load reads a rules file and returns the compiled rules in file order.
// Blank lines and lines whose first non-whitespace character is '#' are
// skipped. Any line that fails to compile aborts the load.
func Load(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules []Rule
	for idx, line := range strings.Split(string(data), "\n") {
		text := strings.TrimSpace(line)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		pattern, err := regexp.Compile(text)
		if err != nil {
			return nil, &CompileError{File: path, Line: idx + 1, Pattern: text, Err: err}
		}

		rules = append(rules, Rule{Description: text, Pattern: pattern})
	}

	if len(rules) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRules, path)
	}

	return rules, nil
}

// Scrub applies the rule to the provided text and returns the sanitized
// result. When stripLength is false every match is replaced by the
// placeholder tiled to the exact character length of the match, which
// preserves log line alignment. When stripLength is true each match
// becomes the placeholder exactly once.
func (r Rule) Scrub(text, placeholder string, stripLength bool) string {
	return r.Pattern.ReplaceAllStringFunc(text, func(matched string) string {
		if stripLength {
			return placeholder
		}
		return tile(placeholder, utf8.RuneCountInString(matched))
	})
}

// tile repeats the placeholder to exactly length characters, truncating
// the final repetition when the placeholder does not divide evenly.
func tile(placeholder string, length int) string {
	chars := []rune(placeholder)
	if len(chars) == 1 {
		return strings.Repeat(placeholder, length)
	}

	repetitions := length / len(chars)
	remainder := length % len(chars)
	return strings.Repeat(placeholder, repetitions) + string(chars[:remainder])
}
