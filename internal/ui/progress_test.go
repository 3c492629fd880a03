package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"phphint/internal/driver"
)

func TestApplyEventCountsFilesOnce(t *testing.T) {
	events := make(chan driver.Progress)
	m := NewProgressModel("phphint", []string{"a.php", "b.php"}, events).(*progressModel)

	m.applyEvent(driver.Progress{Path: "a.php", Findings: 2})
	m.applyEvent(driver.Progress{Path: "a.php", Findings: 3})
	m.applyEvent(driver.Progress{Path: "missing.php", Findings: 9})

	assert.Equal(t, 1, m.finished)
	assert.Equal(t, 3, m.findings)
	assert.Equal(t, StatusFindings, m.items[0].status)
	assert.Equal(t, StatusQueued, m.items[1].status)
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, StatusError, statusLabel(driver.Progress{Err: errors.New("boom"), Findings: 1}))
	assert.Equal(t, StatusCached, statusLabel(driver.Progress{Cached: true}))
	assert.Equal(t, StatusFindings, statusLabel(driver.Progress{Findings: 1}))
	assert.Equal(t, StatusClean, statusLabel(driver.Progress{}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd...", truncate("abcdefghij", 7))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestViewMentionsCounts(t *testing.T) {
	events := make(chan driver.Progress)
	m := NewProgressModel("lint", []string{"a.php"}, events).(*progressModel)
	m.applyEvent(driver.Progress{Path: "a.php", Findings: 1})
	m.done = true
	assert.Contains(t, m.View(), "done: lint (1/1 files, 1 findings)")
}
