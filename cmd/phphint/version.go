package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"phphint/internal/phpver"
	"phphint/internal/rules"
	"phphint/internal/version"
)

type versionPayload struct {
	Tool        string   `json:"tool"`
	Version     string   `json:"version"`
	GitCommit   string   `json:"git_commit,omitempty"`
	BuildDate   string   `json:"build_date,omitempty"`
	Rules       int      `json:"rules"`
	PHPVersions []string `json:"php_versions"`
}

var versionFormat string

func init() {
	versionCmd.Flags().StringVar(&versionFormat, "format", "pretty", "output format (pretty|json)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the phphint build identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return renderVersion(cmd.OutOrStdout(), strings.ToLower(versionFormat))
	},
}

func renderVersion(w io.Writer, format string) error {
	switch format {
	case "", "pretty":
		_, err := fmt.Fprintln(w, version.Long())
		return err
	case "json":
		payload := versionPayload{
			Tool:      "phphint",
			Version:   version.Version,
			GitCommit: version.GitCommit,
			BuildDate: version.BuildDate,
			Rules:     len(rules.All()),
		}
		for _, v := range phpver.All() {
			payload.PHPVersions = append(payload.PHPVersions, v.String())
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	}
	return fmt.Errorf("unknown format: %s", format)
}
