package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"phphint/internal/config"
	"phphint/internal/phpver"
	"phphint/internal/prof"
)

// logger is installed by setupLogging before any command runs.
var logger = zerolog.Nop()

// profiling is the session started from the profiling flags, if any.
var profiling *prof.Session

func setupRun(cmd *cobra.Command, args []string) error {
	if err := setupLogging(cmd, args); err != nil {
		return err
	}
	return setupProfiling(cmd)
}

func finishRun(*cobra.Command, []string) error {
	return profiling.Stop()
}

func setupProfiling(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()
	var opts prof.Options
	var err error
	if opts.CPU, err = flags.GetString("cpu-profile"); err != nil {
		return fmt.Errorf("failed to get cpu-profile flag: %w", err)
	}
	if opts.Heap, err = flags.GetString("mem-profile"); err != nil {
		return fmt.Errorf("failed to get mem-profile flag: %w", err)
	}
	if opts.Trace, err = flags.GetString("runtime-trace"); err != nil {
		return fmt.Errorf("failed to get runtime-trace flag: %w", err)
	}
	if opts == (prof.Options{}) {
		return nil
	}
	profiling, err = prof.Start(opts)
	return err
}

func parseLogLevel(s string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "", "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	}
	return zerolog.NoLevel, fmt.Errorf("invalid --log-level %q (expected debug|info|warn|error)", s)
}

func setupLogging(cmd *cobra.Command, _ []string) error {
	levelStr, err := cmd.Root().PersistentFlags().GetString("log-level")
	if err != nil {
		return fmt.Errorf("failed to get log-level flag: %w", err)
	}
	level, err := parseLogLevel(levelStr)
	if err != nil {
		return err
	}
	useColor, err := colorEnabled(cmd, os.Stderr)
	if err != nil {
		return err
	}
	color.NoColor = !useColor
	out := zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !useColor, TimeFormat: time.TimeOnly}
	logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
	return nil
}

// colorEnabled resolves the --color flag for output written to f.
func colorEnabled(cmd *cobra.Command, f *os.File) (bool, error) {
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	switch colorFlag {
	case "on":
		return true, nil
	case "off":
		return false, nil
	case "auto":
		return isTerminal(f), nil
	}
	return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorFlag)
}

// loadConfig reads --config, or discovers the configuration governing
// target. A --php flag replaces the configured base version.
func loadConfig(cmd *cobra.Command, target string) (*config.Config, error) {
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	var cfg *config.Config
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.Discover(startDir(target))
	}
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("config", cfg.Path).Str("root", cfg.Root).Msg("configuration loaded")
	return cfg, nil
}

// forcedVersion returns the --php version, or 0 when the flag is unset.
func forcedVersion(cmd *cobra.Command) (phpver.Version, error) {
	s, err := cmd.Root().PersistentFlags().GetString("php")
	if err != nil {
		return 0, fmt.Errorf("failed to get php flag: %w", err)
	}
	if s == "" {
		return 0, nil
	}
	v, err := phpver.Parse(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --php value: %w", err)
	}
	return v, nil
}

func startDir(target string) string {
	if target == "" {
		return "."
	}
	info, err := os.Stat(target)
	if err == nil && info.IsDir() {
		return target
	}
	return filepath.Dir(target)
}

func maxDiagnosticsFlag(cmd *cobra.Command) (int, error) {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return 0, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if n < 0 {
		return 0, fmt.Errorf("--max-diagnostics must not be negative")
	}
	return n, nil
}
