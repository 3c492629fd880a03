package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"phphint/internal/version"
)

var rootCmd = &cobra.Command{
	Use:               "phphint",
	Short:             "PHP hints, errors and suggestions",
	Long:              `phphint runs a battery of hint, error and suggestion rules over PHP sources`,
	SilenceUsage:      true,
	PersistentPreRunE:  setupRun,
	PersistentPostRunE: finishRun,
}

// main registers the subcommands and global flags and runs the root command.
// Any command error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(diagCmd)
	rootCmd.AddCommand(fixCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(lspCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics per file (0 = config value)")
	rootCmd.PersistentFlags().String("config", "", "path to .phphint.toml (default: discovered from the target)")
	rootCmd.PersistentFlags().String("php", "", "target PHP version, overrides the config (e.g. 7.4)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to this file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to this file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a runtime execution trace to this file")

	err := rootCmd.Execute()
	// PersistentPostRunE is skipped when the command fails
	if stopErr := profiling.Stop(); stopErr != nil {
		logger.Error().Err(stopErr).Msg("failed to write profiles")
	}
	if err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
