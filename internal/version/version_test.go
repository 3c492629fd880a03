package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, v, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate, origNoColor := Version, GitCommit, BuildDate, color.NoColor
	Version, GitCommit, BuildDate = v, commit, date
	color.NoColor = true
	t.Cleanup(func() {
		Version, GitCommit, BuildDate, color.NoColor = origVersion, origCommit, origDate, origNoColor
	})
}

func TestVersion_DefaultValues(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.Equal(t, Version, Plain())
}

func TestColored(t *testing.T) {
	withVersion(t, "1.2.3-rc.1", "", "")
	assert.Equal(t, "1.2.3-rc.1", Colored())

	withVersion(t, "snapshot", "", "")
	assert.Equal(t, "snapshot", Colored())
}

func TestLong(t *testing.T) {
	withVersion(t, "0.1.0", "", "")
	assert.Equal(t, "phphint 0.1.0", Long())

	withVersion(t, "0.1.0", "abc123", "2024-01-15T10:30:00Z")
	assert.Equal(t, "phphint 0.1.0 (abc123) built 2024-01-15T10:30:00Z", Long())
}
