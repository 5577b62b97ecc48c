package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/logveil/logveil/internal/config"
	"github.com/logveil/logveil/internal/logger"
	"github.com/logveil/logveil/internal/sanitizer"
)

// Watcher keeps the output tree current: it watches the source tree and
// re-sanitizes files as they are created or modified. Re-sanitization is
// rate limited so that chatty log writers cannot saturate the process.
type Watcher struct {
	mu        sync.RWMutex
	sanitizer *sanitizer.Sanitizer
	sourceDir string
	limiter   *rate.Limiter
	watcher   *fsnotify.Watcher
	logger    *logger.Logger
}

// New creates a watcher over the sanitizer's source directory. All
// existing subdirectories are registered; directories created later are
// picked up from their create events.
func New(s *sanitizer.Sanitizer, sourceDir string, cfg config.WatchConfig, log *logger.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		sanitizer: s,
		sourceDir: sourceDir,
		limiter:   rate.NewLimiter(rate.Limit(cfg.EventsPerSecond), cfg.Burst),
		watcher:   fsWatcher,
		logger:    log,
	}

	if err := w.addRecursive(sourceDir); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	return w, nil
}

// Close releases the underlying filesystem watcher. Run closes it on
// return; Close is for callers that never start the event loop.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// SetSanitizer swaps in a freshly built sanitizer, used when the
// configuration file changes while watching.
func (w *Watcher) SetSanitizer(s *sanitizer.Sanitizer) {
	w.mu.Lock()
	w.sanitizer = s
	w.mu.Unlock()
}

func (w *Watcher) currentSanitizer() *sanitizer.Sanitizer {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sanitizer
}

// addRecursive registers a directory and all of its subdirectories.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		return nil
	})
}

// Run processes filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.logger.Info("Watching source directory", zap.String("source", w.sourceDir))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}

// handleEvent re-sanitizes a created or modified file, or starts
// watching a newly created directory.
func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		// Deleted or renamed before we got to it.
		return
	}

	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory",
					zap.String("path", event.Name),
					zap.Error(err),
				)
			}
		}
		return
	}

	rel, err := filepath.Rel(w.sourceDir, event.Name)
	if err != nil {
		return
	}

	s := w.currentSanitizer()

	if s.Ignored(rel) {
		w.logger.Debug("Ignoring changed file", zap.String("path", rel))
		return
	}

	if err := w.limiter.Wait(ctx); err != nil {
		return
	}

	if _, err := s.SanitizeFile(rel); err != nil {
		w.logger.Warn("Failed to re-sanitize file",
			zap.String("path", rel),
			zap.Error(err),
		)
	}
}
