package sanitizer

import "time"

// Finding reports how many replacements a single rule made within one file
type Finding struct {
	Rule  string `json:"rule"`
	Count int    `json:"count"`
}

// Failure records a per-file error encountered during the transform phase
type Failure struct {
	Path  string `json:"path"`
	Op    string `json:"op"`
	Error string `json:"error"`
}

// RunResult summarizes a complete sanitization run
type RunResult struct {
	Scanned      int           `json:"scanned"`
	Skipped      int           `json:"skipped"`
	Processed    int           `json:"processed"`
	Failed       int           `json:"failed"`
	Replacements int           `json:"replacements"`
	Failures     []Failure     `json:"failures,omitempty"`
	Duration     time.Duration `json:"duration"`
}

// Clean reports whether every discovered, non-ignored file was processed
// successfully.
func (r *RunResult) Clean() bool {
	return r.Failed == 0
}
