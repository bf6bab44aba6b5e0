package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	ghostwrite "github.com/Paranoid-AF/ghostwrite"
)

type rootOptions struct {
	verbose bool
	logFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "ghostwrite",
		Short:         "AI writing assistant with inline suggestions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write logs to a rotating file instead of stderr")

	cmd.AddCommand(
		newServeCmd(opts),
		newDraftCmd(opts),
		newModelsCmd(opts),
		newPersonasCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return cmd
}

// loadConfig loads the config and logs any validation warnings.
func loadConfig(logger *slog.Logger) (*ghostwrite.Config, error) {
	cfg, err := ghostwrite.LoadConfig()
	if err != nil {
		return nil, err
	}
	for _, w := range ghostwrite.ValidateConfig(cfg) {
		logger.Warn("config", "warning", w)
	}
	return cfg, nil
}

// newLogger builds the process logger. Flags override the config; file
// output rotates through lumberjack. fallback is used when no file is set.
func newLogger(opts *rootOptions, cfg ghostwrite.LoggingConfig, fallback io.Writer) (*slog.Logger, io.Closer) {
	level := parseLevel(cfg.Level)
	if opts.verbose {
		level = slog.LevelDebug
	}

	path := cfg.File
	if opts.logFile != "" {
		path = opts.logFile
	}

	var w io.Writer = fallback
	var closer io.Closer = nopCloser{}
	if path != "" {
		os.MkdirAll(filepath.Dir(path), 0o755)
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		w, closer = lj, lj
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closer
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
