package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"phphint/internal/config"
	"phphint/internal/driver"
	"phphint/internal/rule"
	"phphint/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the rules with their defaults and configured state",
	Args:  cobra.NoArgs,
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	rulesCmd.Flags().String("kind", "", "only list rules of this kind (error|hint|suggestion)")
}

type ruleEntry struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	Kind        string `json:"kind"`
	Severity    string `json:"severity"`
	Enabled     bool   `json:"enabled"`
	Default     bool   `json:"default_enabled"`
	Description string `json:"description"`
}

func runRules(cmd *cobra.Command, _ []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	kindStr, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}
	cfg, err := loadConfig(cmd, ".")
	if err != nil {
		return err
	}
	entries := ruleEntries(rules.NewRegistry(), cfg, kindStr)

	switch format {
	case "pretty":
		useColor, err := colorEnabled(cmd, os.Stdout)
		if err != nil {
			return err
		}
		return writeRuleTable(os.Stdout, entries, useColor)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	return fmt.Errorf("unknown format: %s", format)
}

func ruleEntries(reg *rule.Registry, cfg *config.Config, kind string) []ruleEntry {
	var out []ruleEntry
	for _, k := range driver.RuleKinds {
		if kind != "" && kind != k.String() {
			continue
		}
		for _, r := range reg.ByKind(k) {
			m := r.Meta()
			out = append(out, ruleEntry{
				ID:          m.Code.ID(),
				Key:         m.Key(),
				Name:        m.Name,
				Kind:        m.Kind.String(),
				Severity:    strings.ToLower(cfg.SeverityFor(m.Code, m.DefaultSeverity).String()),
				Enabled:     cfg.RuleEnabled(m.Code, m.DefaultEnabled),
				Default:     m.DefaultEnabled,
				Description: m.Description,
			})
		}
	}
	return out
}

func writeRuleTable(w io.Writer, entries []ruleEntry, useColor bool) error {
	keyWidth := 0
	for _, e := range entries {
		keyWidth = max(keyWidth, runewidth.StringWidth(e.Key))
	}
	on := color.New(color.FgGreen)
	off := color.New(color.FgHiBlack)
	if !useColor {
		on.DisableColor()
		off.DisableColor()
	}
	for _, e := range entries {
		state := on.Sprint("on ")
		if !e.Enabled {
			state = off.Sprint("off")
		}
		if _, err := fmt.Fprintf(w, "%s  %s  %s  %-10s %-8s %s\n",
			e.ID, runewidth.FillRight(e.Key, keyWidth), state, e.Kind, e.Severity, e.Description,
		); err != nil {
			return err
		}
	}
	return nil
}
