package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"phphint/internal/diag"
	"phphint/internal/driver"
	"phphint/internal/fix"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.php|directory>",
	Short: "Apply available fixes to a PHP file or directory",
	Long:  "Run the rules, surface available fixes, and apply them according to the chosen strategy.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply all safe fixes")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply fix with a specific identifier")
	fixCmd.Flags().Bool("unsafe", false, "with --all, also apply fixes that need review")
	fixCmd.Flags().Bool("dry-run", false, "report the changes without writing files")
	fixCmd.Flags().Int("suggest", -1, "also offer suggestion fixes for the caret at this offset")
	fixCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
}

func runFix(cmd *cobra.Command, args []string) error {
	targetPath := args[0]

	applyAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	applyOnceFlag, err := cmd.Flags().GetBool("once")
	if err != nil {
		return err
	}
	targetID, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	unsafe, err := cmd.Flags().GetBool("unsafe")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}

	if targetID != "" && (applyAll || applyOnceFlag) {
		return fmt.Errorf("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnceFlag {
		return fmt.Errorf("--all and --once are mutually exclusive")
	}

	mode := fix.ApplyModeOnce
	if targetID != "" {
		mode = fix.ApplyModeID
	} else if applyAll {
		mode = fix.ApplyModeAll
	}
	opts := fix.ApplyOptions{
		Mode:          mode,
		TargetID:      targetID,
		DryRun:        dryRun,
		IncludeUnsafe: unsafe,
	}

	driverOpts, err := readDiagnoseOptions(cmd, targetPath)
	if err != nil {
		return err
	}

	info, err := os.Stat(targetPath)
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}

	// fix ids are only unique within one file
	if info.IsDir() && targetID != "" {
		return fmt.Errorf("fix: id can only be used with a single file")
	}

	if !info.IsDir() {
		return runFixFile(cmd.Context(), targetPath, driverOpts, opts)
	}
	return runFixDir(cmd.Context(), targetPath, driverOpts, opts)
}

func runFixFile(ctx context.Context, path string, driverOpts *driver.DiagnoseOptions, opts fix.ApplyOptions) error {
	result, err := driver.DiagnoseFile(ctx, path, *driverOpts)
	if result == nil {
		return fmt.Errorf("fix: diagnose failed: %w", err)
	}
	if err != nil {
		logger.Warn().Err(err).Str("file", path).Msg("some rules failed")
	}
	var diagnostics []*diag.Diagnostic
	if result.Bag != nil {
		result.Bag.Sort()
		diagnostics = append(diagnostics, result.Bag.Items()...)
	}
	res, applyErr := fix.Apply(result.FileSet, diagnostics, opts)
	return handleApplyResult(os.Stdout, res, applyErr)
}

func runFixDir(ctx context.Context, path string, driverOpts *driver.DiagnoseOptions, opts fix.ApplyOptions) error {
	results, err := driver.DiagnoseDir(ctx, path, *driverOpts)
	if errors.Is(err, context.Canceled) || len(results) == 0 && err != nil {
		return fmt.Errorf("fix: diagnose dir failed: %w", err)
	}
	if err != nil {
		logger.Warn().Err(err).Str("dir", path).Msg("some files failed")
	}
	if len(results) == 0 {
		return handleApplyResult(os.Stdout, &fix.ApplyResult{}, fix.ErrNoFixes)
	}

	allDiagnostics := make([]*diag.Diagnostic, 0)
	for _, r := range results {
		if r.Bag == nil {
			continue
		}
		r.Bag.Sort()
		allDiagnostics = append(allDiagnostics, r.Bag.Items()...)
	}

	res, applyErr := fix.Apply(results[0].FileSet, allDiagnostics, opts)
	return handleApplyResult(os.Stdout, res, applyErr)
}

func handleApplyResult(w io.Writer, res *fix.ApplyResult, applyErr error) error {
	if res == nil {
		return applyErr
	}

	if len(res.Applied) > 0 {
		if _, err := fmt.Fprintf(w, "Applied %d fix(es):\n", len(res.Applied)); err != nil {
			return err
		}
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			if _, err := fmt.Fprintf(w, "  %s [%s] - %s (%d edits, %s)\n",
				item.Title, item.ID, location, item.EditCount, item.Applicability.String(),
			); err != nil {
				return err
			}
		}
	}

	if len(res.FileChanges) > 0 {
		if _, err := fmt.Fprintln(w, "Updated files:"); err != nil {
			return err
		}
		for _, change := range res.FileChanges {
			if _, err := fmt.Fprintf(w, "  %s (%d edits)\n", change.Path, change.EditCount); err != nil {
				return err
			}
			if change.Content != nil {
				if _, err := fmt.Fprintf(w, "--- %s (dry run)\n%s\n", change.Path, change.Content); err != nil {
					return err
				}
			}
		}
	}

	if len(res.Skipped) > 0 {
		if _, err := fmt.Fprintln(w, "Skipped fixes:"); err != nil {
			return err
		}
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			var err error
			if skip.Title != "" {
				_, err = fmt.Fprintf(w, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				_, err = fmt.Fprintf(w, "  [%s]: %s\n", id, skip.Reason)
			}
			if err != nil {
				return err
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			_, err := fmt.Fprintln(w, "No applicable fixes found.")
			return err
		}
		return applyErr
	}

	if len(res.Applied) == 0 {
		_, err := fmt.Fprintln(w, "No fixes applied.")
		return err
	}
	return nil
}
