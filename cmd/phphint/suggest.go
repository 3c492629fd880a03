package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"phphint/internal/diag"
	"phphint/internal/driver"
	"phphint/internal/model"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest [flags] <file.php> <offset>",
	Short: "Run the suggestion rules for a caret offset",
	Long:  `Run the caret-scoped suggestion rules as an editor would with the cursor at the given byte offset`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSuggest,
}

func init() {
	suggestCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	suggestCmd.Flags().Bool("preview", true, "preview fix edits")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	path := args[0]
	caret, err := strconv.Atoi(args[1])
	if err != nil || caret < 0 {
		return fmt.Errorf("invalid offset %q", args[1])
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	preview, err := cmd.Flags().GetBool("preview")
	if err != nil {
		return fmt.Errorf("failed to get preview flag: %w", err)
	}
	cfg, err := loadConfig(cmd, path)
	if err != nil {
		return err
	}
	v, err := forcedVersion(cmd)
	if err != nil {
		return err
	}
	if v == 0 {
		v = cfg.VersionFor(path)
	}

	u, err := driver.Parse(path, cfg.MaxDiagnostics)
	if err != nil {
		return fmt.Errorf("suggest: %w", err)
	}
	ix := model.NewMemIndex()
	ix.Put(u.Scope)
	d := driver.NewDispatcher(driver.Options{Config: cfg, Log: logger})
	found, err := d.ComputeSuggestions(cmd.Context(), u.Context(v, ix), caret)
	if err != nil {
		logger.Warn().Err(err).Msg("suggestion rules failed")
	}

	bag := diag.NewBag(0)
	for _, f := range found {
		bag.Add(f)
	}
	req := &diagRequest{format: format, withFixes: true, preview: preview}
	if err := writeDiagnostics(cmd, os.Stdout, req, bag, u.FileSet); err != nil {
		return err
	}
	if bag.Len() == 0 {
		fmt.Fprintln(os.Stderr, "no suggestions at this position")
	}
	return nil
}
