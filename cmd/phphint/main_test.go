package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/config"
	"phphint/internal/diag"
	"phphint/internal/fix"
	"phphint/internal/rules"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"INFO":    zerolog.InfoLevel,
		"":        zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
	}
	for in, want := range cases {
		got, err := parseLogLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseLogLevel("loud")
	assert.Error(t, err)
}

func TestReadUIMode(t *testing.T) {
	mode, err := readUIMode(" On ")
	require.NoError(t, err)
	assert.Equal(t, uiModeOn, mode)

	mode, err = readUIMode("")
	require.NoError(t, err)
	assert.Equal(t, uiModeOff, mode)
	assert.False(t, shouldUseTUI(mode))

	_, err = readUIMode("sometimes")
	assert.Error(t, err)
}

func TestMsDuration(t *testing.T) {
	assert.Equal(t, time.Duration(0), msDuration(-5))
	assert.Equal(t, 250*time.Millisecond, msDuration(250))
}

func TestRuleEntriesFollowConfig(t *testing.T) {
	cfg, err := config.Parse(`
[rules]
disable = ["empty-statement"]
[rules.severity]
"missing-braces" = "error"
`, t.TempDir())
	require.NoError(t, err)

	entries := ruleEntries(rules.NewRegistry(), cfg, "hint")
	require.NotEmpty(t, entries)
	byKey := make(map[string]ruleEntry, len(entries))
	for _, e := range entries {
		assert.Equal(t, "hint", e.Kind)
		byKey[e.Key] = e
	}
	require.Contains(t, byKey, "empty-statement")
	assert.False(t, byKey["empty-statement"].Enabled)
	assert.True(t, byKey["empty-statement"].Default)
	assert.Equal(t, "error", byKey["missing-braces"].Severity)

	all := ruleEntries(rules.NewRegistry(), cfg, "")
	assert.Len(t, all, len(rules.All()))
}

func TestWriteRuleTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRuleTable(&buf, []ruleEntry{
		{ID: "HNT4001", Key: "empty-statement", Kind: "hint", Severity: "warning", Enabled: true, Description: "extra semicolon"},
		{ID: "HNT4005", Key: "missing-braces", Kind: "hint", Severity: "warning", Description: "braces"},
	}, false))
	out := buf.String()
	assert.Contains(t, out, "HNT4001  empty-statement  on ")
	assert.Contains(t, out, "HNT4005  missing-braces   off")
}

func TestHandleApplyResult(t *testing.T) {
	var buf bytes.Buffer
	err := handleApplyResult(&buf, &fix.ApplyResult{}, fix.ErrNoFixes)
	require.NoError(t, err)
	assert.Equal(t, "No applicable fixes found.\n", buf.String())

	buf.Reset()
	res := &fix.ApplyResult{
		Applied: []fix.AppliedFix{{
			ID: "HNT4001-0", Title: "Remove empty statement", PrimaryPath: "a.php",
			EditCount: 1, Applicability: diag.FixApplicabilityAlwaysSafe,
		}},
		FileChanges: []fix.FileChange{{Path: "a.php", EditCount: 1}},
		Skipped:     []fix.SkippedFix{{Reason: "conflicts with an applied fix"}},
	}
	require.NoError(t, handleApplyResult(&buf, res, nil))
	out := buf.String()
	assert.Contains(t, out, "Applied 1 fix(es):")
	assert.Contains(t, out, "Remove empty statement [HNT4001-0] - a.php (1 edits,")
	assert.Contains(t, out, "  a.php (1 edits)")
	assert.Contains(t, out, "  [(unnamed)]: conflicts with an applied fix")

	boom := errors.New("boom")
	assert.ErrorIs(t, handleApplyResult(&buf, &fix.ApplyResult{}, boom), boom)
}

func TestRenderVersionJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, renderVersion(&buf, "json"))
	var payload versionPayload
	require.NoError(t, json.Unmarshal(buf.Bytes(), &payload))
	assert.Equal(t, "phphint", payload.Tool)
	assert.Equal(t, len(rules.All()), payload.Rules)
	assert.Contains(t, payload.PHPVersions, "7.4")

	assert.Error(t, renderVersion(&buf, "xml"))
}
