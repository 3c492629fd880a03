package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"phphint/internal/config"
	"phphint/internal/lsp"
	"phphint/internal/observ"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the phphint language server over stdio",
	Args:  cobra.NoArgs,
	RunE:  runLSP,
}

func init() {
	lspCmd.Flags().Int("debounce-ms", 0, "delay between an edit and its analysis (0 = config value)")
	lspCmd.Flags().String("metrics-addr", "", "serve Prometheus metrics on this address")
}

// stdio joins stdin and stdout into the stream the server speaks over.
type stdio struct {
	io.Reader
	io.Writer
}

func (stdio) Close() error {
	return errors.Join(os.Stdin.Close(), os.Stdout.Close())
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounceMS, err := cmd.Flags().GetInt("debounce-ms")
	if err != nil {
		return fmt.Errorf("failed to get debounce-ms flag: %w", err)
	}
	metricsAddr, err := cmd.Flags().GetString("metrics-addr")
	if err != nil {
		return fmt.Errorf("failed to get metrics-addr flag: %w", err)
	}
	maxDiagnostics, err := maxDiagnosticsFlag(cmd)
	if err != nil {
		return err
	}

	// an explicit --config wins over discovery from the workspace root
	var cfg *config.Config
	if path, _ := cmd.Root().PersistentFlags().GetString("config"); path != "" {
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	opts := lsp.Options{
		Config:         cfg,
		Log:            logger,
		Debounce:       msDuration(debounceMS),
		MaxDiagnostics: maxDiagnostics,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if metricsAddr != "" {
		g.Go(func() error { return observ.Serve(gctx, metricsAddr, logger) })
	}
	g.Go(func() error {
		defer cancel()
		err := lsp.Serve(gctx, stdio{Reader: os.Stdin, Writer: os.Stdout}, opts)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	return g.Wait()
}
