package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/logveil/logveil/internal/config"
	"github.com/logveil/logveil/internal/logger"
	"github.com/logveil/logveil/internal/sanitizer"
	"github.com/logveil/logveil/internal/watcher"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	// Parse command line flags
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		source      = flag.String("source", "", "Directory containing files to sanitize")
		output      = flag.String("output", "", "Directory to write anonymized files to")
		rulesFile   = flag.String("rules", "", "Path to the rules file")
		ignoreFile  = flag.String("ignore", "", "File containing glob patterns for files to ignore")
		placeholder = flag.String("placeholder", "", "Replacement token for detected matches")
		stripLength = flag.Bool("strip-length", false, "Do not maintain the original match length when replacing")
		watchMode   = flag.Bool("watch", false, "Keep running and re-sanitize files as they change")
		workers     = flag.Int("workers", 0, "Number of files transformed concurrently")
		verbosity   = flag.Int("v", 0, "Logging verbosity (0=warn, 1=info, 2=debug)")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("logveil %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Command line flags override configuration file values
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Sanitizer.SourceDir = *source
		case "output":
			cfg.Sanitizer.OutputDir = *output
		case "rules":
			cfg.Sanitizer.RulesFile = *rulesFile
		case "ignore":
			cfg.Sanitizer.IgnoreFile = *ignoreFile
		case "placeholder":
			cfg.Sanitizer.Placeholder = *placeholder
		case "strip-length":
			cfg.Sanitizer.StripLength = *stripLength
		case "watch":
			cfg.Watch.Enabled = *watchMode
		case "workers":
			cfg.Sanitizer.Workers = *workers
		case "v":
			cfg.Logging.Level = logger.LevelForVerbosity(*verbosity)
		}
	})

	// The default ignore list is optional: only insist on it when the
	// operator pointed at one explicitly.
	if cfg.Sanitizer.IgnoreFile != "" && *ignoreFile == "" && *configPath == "" {
		if _, err := os.Stat(cfg.Sanitizer.IgnoreFile); os.IsNotExist(err) {
			cfg.Sanitizer.IgnoreFile = ""
		}
	}

	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: true,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log.Info("Starting logveil",
		zap.String("version", version),
		zap.String("source", cfg.Sanitizer.SourceDir),
		zap.String("output", cfg.Sanitizer.OutputDir),
	)

	code := run(cfg, *configPath, log)
	_ = log.Sync()
	os.Exit(code)
}

// run executes one full pass and, in watch mode, keeps re-sanitizing
// changed files until interrupted. Returns the process exit code.
func run(cfg *config.Config, configPath string, log *logger.Logger) int {
	s, err := sanitizer.New(cfg.Sanitizer, log.WithComponent("sanitizer"))
	if err != nil {
		log.Error("Failed to initialize sanitizer", zap.Error(err))
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown on interrupt: completed files stay on disk.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
		cancel()
	}()

	result, err := s.Run(ctx)
	if err != nil {
		log.Error("Sanitization run failed", zap.Error(err))
		return 1
	}

	printSummary(result)

	if !cfg.Watch.Enabled {
		if !result.Clean() {
			return 1
		}
		return 0
	}

	w, err := watcher.New(s, cfg.Sanitizer.SourceDir, cfg.Watch, log.WithComponent("watcher"))
	if err != nil {
		log.Error("Failed to start watcher", zap.Error(err))
		return 1
	}

	// Hot-reload rules and settings when the config file changes.
	err = config.Watch(configPath, func(newCfg *config.Config) {
		rebuilt, err := sanitizer.New(newCfg.Sanitizer, log.WithComponent("sanitizer"))
		if err != nil {
			log.Warn("Ignoring config change", zap.Error(err))
			return
		}
		w.SetSanitizer(rebuilt)
		log.Info("Configuration reloaded")
	})
	if err != nil {
		log.Warn("Config hot reload unavailable", zap.Error(err))
	}

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		log.Error("Watcher stopped", zap.Error(err))
		return 1
	}

	return 0
}

// printSummary writes the run summary to stdout.
func printSummary(result *sanitizer.RunResult) {
	fmt.Printf("scanned: %d, skipped: %d, processed: %d, failed: %d, replacements: %d (%s)\n",
		result.Scanned, result.Skipped, result.Processed, result.Failed,
		result.Replacements, result.Duration.Round(time.Millisecond))

	for _, failure := range result.Failures {
		fmt.Printf("  failed (%s): %s: %s\n", failure.Op, failure.Path, failure.Error)
	}
}
