package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"phphint/internal/diag"
	"phphint/internal/driver"
	"phphint/internal/observ"
	"phphint/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags] <directory>",
	Short: "Re-run the rules on PHP files as they change",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().Int("debounce-ms", 0, "delay after the last change before analysing (0 = config value)")
	watchCmd.Flags().String("format", "short", "output format (pretty|json|sarif|short)")
	watchCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	watchCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	watchCmd.Flags().Bool("initial", true, "analyse the whole directory once before watching")
}

func msDuration(ms int) time.Duration {
	if ms <= 0 {
		return 0
	}
	return time.Duration(ms) * time.Millisecond
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	flags := cmd.Flags()
	debounceMS, err := flags.GetInt("debounce-ms")
	if err != nil {
		return fmt.Errorf("failed to get debounce-ms flag: %w", err)
	}
	format, err := flags.GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	metricsAddr, err := flags.GetString("metrics-addr")
	if err != nil {
		return fmt.Errorf("failed to get metrics-addr flag: %w", err)
	}
	initial, err := flags.GetBool("initial")
	if err != nil {
		return fmt.Errorf("failed to get initial flag: %w", err)
	}
	opts, err := readDiagnoseOptions(cmd, dir)
	if err != nil {
		return err
	}
	req := &diagRequest{format: format}

	report := func(results []driver.FileResult) {
		fs, bag := mergeResults(results)
		if err := writeDiagnostics(cmd, os.Stdout, req, bag, fs); err != nil {
			logger.Error().Err(err).Msg("write diagnostics")
		}
	}

	if initial {
		results, err := driver.DiagnoseDir(cmd.Context(), dir, *opts)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		if err != nil {
			logger.Warn().Err(err).Msg("initial run finished with errors")
		}
		report(results)
	}

	w, err := watch.New(watch.Options{
		Config:   opts.Config,
		Log:      logger,
		Debounce: msDuration(debounceMS),
		OnChange: func(ctx context.Context, paths []string) {
			results := make([]driver.FileResult, 0, len(paths))
			for _, p := range paths {
				if _, err := os.Stat(p); err != nil {
					continue // removed
				}
				res, err := driver.DiagnoseFile(ctx, p, *opts)
				if ctx.Err() != nil {
					logger.Debug().Msg("pass superseded by a newer change")
					return
				}
				if err != nil {
					logger.Warn().Err(err).Str("file", p).Msg("analysis failed")
				}
				if res != nil {
					results = append(results, *res)
				}
			}
			// each file has its own file set here
			for _, r := range results {
				report([]driver.FileResult{r})
			}
			if len(results) > 0 {
				fmt.Fprintf(os.Stderr, "checked %d file(s), %d finding(s)\n", len(results), totalFindings(results))
			}
		},
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(cmd.Context())
	if metricsAddr != "" {
		g.Go(func() error { return observ.Serve(gctx, metricsAddr, logger) })
	}
	g.Go(func() error {
		logger.Info().Str("dir", dir).Msg("watching")
		return w.Run(gctx, dir)
	})
	return g.Wait()
}

func totalFindings(results []driver.FileResult) int {
	n := 0
	for _, r := range results {
		if r.Bag == nil {
			continue
		}
		for _, d := range r.Bag.Items() {
			if d.Severity >= diag.SevWarning {
				n++
			}
		}
	}
	return n
}
