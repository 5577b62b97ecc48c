package sanitizer

import (
	"errors"
	"fmt"
)

// File operations recorded in per-file failures.
const (
	OpRead  = "read"
	OpWrite = "write"
)

// ErrBinaryContent marks a source file that cannot be treated as text.
var ErrBinaryContent = errors.New("binary content")

// ConfigError is a fatal problem with the run configuration (missing or
// unreadable rules/ignore file, unusable source or output directory).
// It aborts the run before any log file is touched.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// FileError is a per-file read or write failure during the transform
// phase. It is recorded in the run summary; the run continues.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
