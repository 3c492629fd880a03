package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phphint/internal/source"
)

func TestBagLimitSortDedup(t *testing.T) {
	bag := NewBag(3)
	r := BagReporter{Bag: bag}
	r.Report(HintEmptyStatement, SevWarning, source.Span{Start: 10, End: 11}, "b", nil, nil)
	r.Report(ErrTypeRedeclaration, SevError, source.Span{Start: 2, End: 5}, "a", nil, nil)
	r.Report(HintEmptyStatement, SevWarning, source.Span{Start: 10, End: 11}, "b", nil, nil)
	r.Report(HintEmptyStatement, SevWarning, source.Span{Start: 20, End: 21}, "dropped", nil, nil)

	require.Equal(t, 3, bag.Len())
	assert.True(t, bag.HasErrors())

	bag.Dedup()
	bag.Sort()
	items := bag.Items()
	require.Len(t, items, 2)
	assert.Equal(t, ErrTypeRedeclaration, items[0].Code)
	assert.Equal(t, DefaultPriority, items[1].Priority)
}

func TestSortSeverityDescending(t *testing.T) {
	sp := source.Span{Start: 1, End: 2}
	items := []*Diagnostic{
		New(SevWarning, HintMissingBraces, sp, "w"),
		New(SevError, ErrPHP54Syntax, sp, "e"),
	}
	SortDiagnostics(items)
	assert.Equal(t, SevError, items[0].Severity)
}

func TestCodeKeys(t *testing.T) {
	assert.Equal(t, "HNT4001", HintEmptyStatement.ID())
	assert.Equal(t, "empty-statement", HintEmptyStatement.Key())
	assert.Equal(t, "ERR3072", ErrPHP72Syntax.ID())
	assert.Equal(t, "SUG5002", SugArrowFunction.ID())

	c, ok := LookupKey("unused-use")
	require.True(t, ok)
	assert.Equal(t, HintUnusedUse, c)
	c, ok = LookupKey("ERR3005")
	require.True(t, ok)
	assert.Equal(t, ErrTypeRedeclaration, c)
	_, ok = LookupKey("nope")
	assert.False(t, ok)
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]Severity{
		"error":      SevError,
		"Warning":    SevWarning,
		"suggestion": SevCurrentLineWarning,
		"info":       SevInfo,
	} {
		got, err := ParseSeverity(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseSeverity("fatal")
	assert.Error(t, err)
}

func TestOnceReporter(t *testing.T) {
	bag := NewBag(0)
	r := Once(BagReporter{Bag: bag})
	sp := source.Span{Start: 1, End: 4}
	r.Report(HintUnusedUse, SevWarning, sp, "unused", nil, nil)
	r.Report(HintUnusedUse, SevWarning, sp, "unused", nil, nil)
	r.Report(HintUnusedUse, SevWarning, sp, "other", nil, nil)
	r.Report(HintUnusedUse, SevWarning, source.Span{Start: 1, End: 5}, "unused", nil, nil)
	assert.Equal(t, 3, bag.Len())

	Once(nil).Report(HintUnusedUse, SevWarning, sp, "unused", nil, nil)
}
