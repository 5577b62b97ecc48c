package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/logveil/logveil/internal/config"
	"github.com/logveil/logveil/internal/logger"
	"github.com/logveil/logveil/internal/sanitizer"
)

func newSanitizer(t *testing.T) (*sanitizer.Sanitizer, config.SanitizerConfig) {
	t.Helper()
	dir := t.TempDir()

	cfg := config.SanitizerConfig{
		SourceDir:   filepath.Join(dir, "source"),
		OutputDir:   filepath.Join(dir, "results"),
		RulesFile:   filepath.Join(dir, "main.rule"),
		Placeholder: "*",
		Workers:     1,
	}

	if err := os.MkdirAll(cfg.SourceDir, 0o755); err != nil {
		t.Fatalf("Failed to create source dir: %v", err)
	}
	if err := os.WriteFile(cfg.RulesFile, []byte("secret\n"), 0o644); err != nil {
		t.Fatalf("Failed to write rules file: %v", err)
	}

	s, err := sanitizer.New(cfg, logger.Nop())
	if err != nil {
		t.Fatalf("Failed to create sanitizer: %v", err)
	}
	return s, cfg
}

func TestNew(t *testing.T) {
	s, cfg := newSanitizer(t)

	w, err := New(s, cfg.SourceDir, config.WatchConfig{EventsPerSecond: 100, Burst: 10}, logger.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()
}

func TestNew_MissingSource(t *testing.T) {
	s, cfg := newSanitizer(t)

	_, err := New(s, filepath.Join(cfg.SourceDir, "absent"), config.WatchConfig{EventsPerSecond: 100, Burst: 10}, logger.Nop())
	if err == nil {
		t.Fatal("New succeeded for a missing directory")
	}
}

func TestRun_SanitizesNewFile(t *testing.T) {
	s, cfg := newSanitizer(t)

	w, err := New(s, cfg.SourceDir, config.WatchConfig{EventsPerSecond: 100, Burst: 10}, logger.Nop())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	src := filepath.Join(cfg.SourceDir, "fresh.log")
	if err := os.WriteFile(src, []byte("a secret appeared"), 0o644); err != nil {
		t.Fatalf("Failed to write source file: %v", err)
	}

	dst := filepath.Join(cfg.OutputDir, "fresh.log")
	want := "a ****** appeared"

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(dst)
		if err == nil && string(data) == want {
			cancel()
			<-done
			return
		}
		time.Sleep(20 * time.Millisecond)
	}

	t.Fatalf("Watcher did not produce sanitized output %s within deadline", dst)
}
