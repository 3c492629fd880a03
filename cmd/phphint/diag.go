package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"phphint/internal/cache"
	"phphint/internal/diag"
	"phphint/internal/diagfmt"
	"phphint/internal/driver"
	"phphint/internal/source"
	"phphint/internal/version"
)

var diagCmd = &cobra.Command{
	Use:   "diag [flags] <file.php|directory>",
	Short: "Run hint and error rules on a PHP file or directory",
	Long:  `Run the error and hint rules over one PHP file or every PHP file within a directory`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDiagnose,
}

func init() {
	diagCmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	diagCmd.Flags().String("path-mode", "auto", "how file paths are shown (auto|absolute|relative|basename)")
	diagCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	diagCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	diagCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	diagCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	diagCmd.Flags().Bool("with-fixes", false, "include available fixes in output")
	diagCmd.Flags().Bool("preview", false, "preview fix edits in output")
	diagCmd.Flags().Int("suggest", -1, "also run suggestion rules with the caret at this offset")
	diagCmd.Flags().Bool("cache", false, "reuse findings stored in the result cache")
	diagCmd.Flags().String("ui", "off", "progress view for directories (auto|on|off)")
}

// diagRequest carries the flag values of one diag invocation.
type diagRequest struct {
	format    string
	pathMode  diagfmt.PathMode
	withNotes bool
	withFixes bool
	preview   bool
	ui        uiMode
	opts      driver.DiagnoseOptions
}

func readDiagRequest(cmd *cobra.Command, target string) (*diagRequest, error) {
	flags := cmd.Flags()
	req := &diagRequest{}
	var err error

	if req.format, err = flags.GetString("format"); err != nil {
		return nil, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch req.format {
	case "pretty", "json", "sarif", "short":
	default:
		return nil, fmt.Errorf("unknown format: %s", req.format)
	}
	pathModeStr, err := flags.GetString("path-mode")
	if err != nil {
		return nil, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	var ok bool
	if req.pathMode, ok = diagfmt.ParsePathMode(pathModeStr); !ok {
		return nil, fmt.Errorf("invalid --path-mode value %q", pathModeStr)
	}
	if req.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return nil, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if req.withFixes, err = flags.GetBool("with-fixes"); err != nil {
		return nil, fmt.Errorf("failed to get with-fixes flag: %w", err)
	}
	if req.preview, err = flags.GetBool("preview"); err != nil {
		return nil, fmt.Errorf("failed to get preview flag: %w", err)
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return nil, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if req.ui, err = readUIMode(uiStr); err != nil {
		return nil, err
	}

	opts, err := readDiagnoseOptions(cmd, target)
	if err != nil {
		return nil, err
	}
	req.opts = *opts
	return req, nil
}

// readDiagnoseOptions collects the driver options shared by diag and fix.
func readDiagnoseOptions(cmd *cobra.Command, target string) (*driver.DiagnoseOptions, error) {
	flags := cmd.Flags()
	cfg, err := loadConfig(cmd, target)
	if err != nil {
		return nil, err
	}
	opts := &driver.DiagnoseOptions{Config: cfg, Log: logger}

	if opts.MaxDiagnostics, err = maxDiagnosticsFlag(cmd); err != nil {
		return nil, err
	}
	if opts.EnableTimings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return nil, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.Version, err = forcedVersion(cmd); err != nil {
		return nil, err
	}
	if flags.Lookup("jobs") != nil {
		if opts.Jobs, err = flags.GetInt("jobs"); err != nil {
			return nil, fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	if flags.Lookup("no-warnings") != nil {
		if opts.IgnoreWarnings, err = flags.GetBool("no-warnings"); err != nil {
			return nil, fmt.Errorf("failed to get no-warnings flag: %w", err)
		}
		if opts.WarningsAsErrors, err = flags.GetBool("warnings-as-errors"); err != nil {
			return nil, fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
		}
		if opts.IgnoreWarnings && opts.WarningsAsErrors {
			return nil, fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
		}
	}
	if flags.Lookup("suggest") != nil {
		caret, err := flags.GetInt("suggest")
		if err != nil {
			return nil, fmt.Errorf("failed to get suggest flag: %w", err)
		}
		if caret >= 0 {
			opts.Suggest = true
			opts.Caret = caret
		}
	}
	if flags.Lookup("cache") != nil {
		useCache, err := flags.GetBool("cache")
		if err != nil {
			return nil, fmt.Errorf("failed to get cache flag: %w", err)
		}
		if useCache || cfg.Cache.Enabled {
			if opts.Cache, err = cache.Open(cfg.Cache.Dir); err != nil {
				return nil, err
			}
		}
	}
	return opts, nil
}

// runDiagnose prints the findings for a file or directory in the chosen
// format and fails when any finding is an error.
func runDiagnose(cmd *cobra.Command, args []string) error {
	target := args[0]
	req, err := readDiagRequest(cmd, target)
	if err != nil {
		return err
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("diag: %w", err)
	}

	var (
		results []driver.FileResult
		runErr  error
	)
	if info.IsDir() {
		if shouldUseTUI(req.ui) {
			results, runErr = runDirWithUI(cmd.Context(), "phphint", target, req.opts)
		} else {
			results, runErr = driver.DiagnoseDir(cmd.Context(), target, req.opts)
		}
	} else {
		var res *driver.FileResult
		res, runErr = driver.DiagnoseFile(cmd.Context(), target, req.opts)
		if res != nil {
			results = []driver.FileResult{*res}
		}
	}
	if errors.Is(runErr, context.Canceled) {
		return runErr
	}
	if runErr != nil {
		// rule failures and unreadable files do not hide the other findings
		logger.Error().Err(runErr).Msg("diagnose finished with errors")
	}
	if len(results) == 0 && runErr != nil {
		return runErr
	}

	for i := range results {
		driver.AppendTiming(&results[i])
	}
	fs, bag := mergeResults(results)
	if err := writeDiagnostics(cmd, os.Stdout, req, bag, fs); err != nil {
		return err
	}
	if bag.HasErrors() {
		return fmt.Errorf("diagnostics reported errors")
	}
	return nil
}

// mergeResults gathers every file's findings into one bag. Directory runs
// share one file set; single files bring their own.
func mergeResults(results []driver.FileResult) (*source.FileSet, *diag.Bag) {
	var fs *source.FileSet
	bag := diag.NewBag(0)
	for _, r := range results {
		if r.FileSet != nil && fs == nil {
			fs = r.FileSet
		}
		if r.Bag != nil {
			bag.Merge(r.Bag)
		}
	}
	if fs == nil {
		fs = source.NewFileSet()
	}
	bag.Sort()
	return fs, bag
}

func writeDiagnostics(cmd *cobra.Command, w io.Writer, req *diagRequest, bag *diag.Bag, fs *source.FileSet) error {
	switch req.format {
	case "pretty":
		useColor, err := colorEnabled(cmd, os.Stdout)
		if err != nil {
			return err
		}
		diagfmt.Pretty(w, bag, fs, diagfmt.PrettyOpts{
			Color:       useColor,
			Context:     2,
			PathMode:    req.pathMode,
			ShowNotes:   req.withNotes,
			ShowFixes:   req.withFixes,
			ShowPreview: req.preview,
		})
		return nil
	case "short":
		return diagfmt.Short(w, bag, fs, req.pathMode)
	case "json":
		return diagfmt.JSON(w, bag, fs, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         req.pathMode,
			IncludeNotes:     req.withNotes,
			IncludeFixes:     req.withFixes,
			IncludePreviews:  req.preview,
		})
	case "sarif":
		return diagfmt.Sarif(w, bag, fs, diagfmt.SarifRunMeta{
			ToolName:       "phphint",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	}
	return fmt.Errorf("unknown format: %s", req.format)
}
