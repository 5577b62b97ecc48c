package sanitizer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/logveil/logveil/internal/config"
	"github.com/logveil/logveil/internal/ignore"
	"github.com/logveil/logveil/internal/logger"
	"github.com/logveil/logveil/internal/rules"
)

// Sanitizer anonymizes files from a source directory into an output
// directory by applying an ordered set of regex rules. Rules and ignore
// patterns are loaded once at construction time; a Sanitizer is
// read-only afterwards and safe for concurrent use.
type Sanitizer struct {
	config config.SanitizerConfig
	rules  []rules.Rule
	ignore *ignore.Matcher
	logger *logger.Logger
}

// New loads rules and ignore patterns and validates the source
// directory. Any error here is fatal: no log file has been touched yet.
func New(cfg config.SanitizerConfig, log *logger.Logger) (*Sanitizer, error) {
	ruleSet, err := rules.Load(cfg.RulesFile)
	if err != nil {
		var compileErr *rules.CompileError
		if errors.As(err, &compileErr) {
			return nil, err
		}
		return nil, &ConfigError{Path: cfg.RulesFile, Err: err}
	}

	var matcher *ignore.Matcher
	if cfg.IgnoreFile != "" {
		matcher, err = ignore.Load(cfg.IgnoreFile)
		if err != nil {
			return nil, &ConfigError{Path: cfg.IgnoreFile, Err: err}
		}
	}

	info, err := os.Stat(cfg.SourceDir)
	if err != nil {
		return nil, &ConfigError{Path: cfg.SourceDir, Err: err}
	}
	if !info.IsDir() {
		return nil, &ConfigError{Path: cfg.SourceDir, Err: fmt.Errorf("not a directory")}
	}

	log.Info("Sanitizer initialized",
		zap.Int("rules", len(ruleSet)),
		zap.Int("ignore_patterns", len(matcher.Patterns())),
		zap.String("source", cfg.SourceDir),
		zap.String("output", cfg.OutputDir),
	)

	return &Sanitizer{
		config: cfg,
		rules:  ruleSet,
		ignore: matcher,
		logger: log,
	}, nil
}

// Rules returns the loaded rules in application order.
func (s *Sanitizer) Rules() []rules.Rule {
	return s.rules
}

// Ignored reports whether the given source-relative path matches any
// ignore pattern.
func (s *Sanitizer) Ignored(relPath string) bool {
	return s.ignore.Match(relPath)
}

// Run performs one complete pass: walk the source tree, skip ignored
// files, and write a sanitized copy of every other file under the output
// directory, mirroring the source layout. Per-file read and write errors
// are recorded in the result and do not abort the run.
func (s *Sanitizer) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result := &RunResult{}

	if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		return nil, &ConfigError{Path: s.config.OutputDir, Err: err}
	}

	tasks, err := s.collect(result)
	if err != nil {
		return nil, err
	}

	s.transformAll(ctx, tasks, result)

	result.Duration = time.Since(start)

	s.logger.Info("Sanitization run completed",
		zap.Int("scanned", result.Scanned),
		zap.Int("skipped", result.Skipped),
		zap.Int("processed", result.Processed),
		zap.Int("failed", result.Failed),
		zap.Int("replacements", result.Replacements),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// collect walks the source tree in lexical order and returns the
// source-relative paths of every non-ignored file. Ignored files are
// counted but never read.
func (s *Sanitizer) collect(result *RunResult) ([]string, error) {
	var tasks []string

	err := filepath.WalkDir(s.config.SourceDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == s.config.SourceDir {
				return &ConfigError{Path: s.config.SourceDir, Err: err}
			}
			// An unreadable entry is recorded and skipped; the rest of
			// the run continues.
			result.Failed++
			result.Failures = append(result.Failures, Failure{Path: path, Op: OpRead, Error: err.Error()})
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(s.config.SourceDir, path)
		if err != nil {
			return err
		}

		result.Scanned++

		if s.ignore.Match(rel) {
			result.Skipped++
			s.logger.Debug("Ignoring file", zap.String("path", rel))
			return nil
		}

		tasks = append(tasks, rel)
		return nil
	})
	if err != nil {
		var configErr *ConfigError
		if errors.As(err, &configErr) {
			return nil, err
		}
		return nil, &ConfigError{Path: s.config.SourceDir, Err: err}
	}

	return tasks, nil
}

// transformAll runs the transform phase over the collected files, either
// sequentially or with a worker pool. Files are independent, so parallel
// execution changes neither the output trees nor the summary counts.
func (s *Sanitizer) transformAll(ctx context.Context, tasks []string, result *RunResult) {
	if s.config.Workers <= 1 {
		for _, rel := range tasks {
			select {
			case <-ctx.Done():
				return
			default:
			}
			count, err := s.SanitizeFile(rel)
			s.record(result, rel, count, err)
		}
		return
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	taskCh := make(chan string)

	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rel := range taskCh {
				count, err := s.SanitizeFile(rel)
				mu.Lock()
				s.record(result, rel, count, err)
				mu.Unlock()
			}
		}()
	}

	for _, rel := range tasks {
		select {
		case <-ctx.Done():
			close(taskCh)
			wg.Wait()
			return
		case taskCh <- rel:
		}
	}
	close(taskCh)
	wg.Wait()
}

// SanitizeFile transforms a single source-relative file: read, apply the
// rule chain, and write the result under the output directory, creating
// intermediate directories as needed.
func (s *Sanitizer) SanitizeFile(rel string) (int, error) {
	src := filepath.Join(s.config.SourceDir, rel)

	data, err := os.ReadFile(src)
	if err != nil {
		return 0, &FileError{Path: rel, Op: OpRead, Err: err}
	}
	if bytes.IndexByte(data, 0) >= 0 {
		return 0, &FileError{Path: rel, Op: OpRead, Err: ErrBinaryContent}
	}

	sanitized, findings := s.Scrub(string(data))

	dst := filepath.Join(s.config.OutputDir, rel)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, &FileError{Path: rel, Op: OpWrite, Err: err}
	}
	if err := os.WriteFile(dst, []byte(sanitized), 0o644); err != nil {
		return 0, &FileError{Path: rel, Op: OpWrite, Err: err}
	}

	total := 0
	for _, finding := range findings {
		total += finding.Count
	}

	s.logger.Info("Processed file",
		zap.String("path", rel),
		zap.Int("replacements", total),
	)

	return total, nil
}

// Scrub applies the rule chain to the given text. Rules run in file
// order and each rule operates on the output of the previous one.
func (s *Sanitizer) Scrub(content string) (string, []Finding) {
	sanitized := content
	var findings []Finding

	for _, rule := range s.rules {
		count := len(rule.Pattern.FindAllStringIndex(sanitized, -1))
		if count == 0 {
			continue
		}

		sanitized = rule.Scrub(sanitized, s.config.Placeholder, s.config.StripLength)
		findings = append(findings, Finding{Rule: rule.Description, Count: count})

		s.logger.Debug("Sensitive data masked",
			zap.String("rule", rule.Description),
			zap.Int("count", count),
		)
	}

	return sanitized, findings
}

// record folds one per-file outcome into the run summary. Callers on
// the parallel path hold the aggregation mutex.
func (s *Sanitizer) record(result *RunResult, rel string, count int, err error) {
	if err != nil {
		var fileErr *FileError
		if !errors.As(err, &fileErr) {
			fileErr = &FileError{Path: rel, Op: OpRead, Err: err}
		}
		result.Failed++
		result.Failures = append(result.Failures, Failure{Path: fileErr.Path, Op: fileErr.Op, Error: fileErr.Err.Error()})
		s.logger.Warn("Failed to sanitize file",
			zap.String("path", fileErr.Path),
			zap.String("op", fileErr.Op),
			zap.Error(fileErr.Err),
		)
		return
	}

	result.Processed++
	result.Replacements += count
}
