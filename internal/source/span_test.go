package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpan_ContainsInclusive(t *testing.T) {
	s := Span{Start: 10, End: 20}
	tests := []struct {
		off  uint32
		want bool
	}{
		{9, false},
		{10, true},
		{15, true},
		{20, true},
		{21, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, s.ContainsInclusive(tt.off), "offset %d", tt.off)
	}
	assert.False(t, s.Contains(20))
	assert.True(t, Span{Start: 5, End: 5}.ContainsInclusive(5))
}

func TestSpan_Overlaps(t *testing.T) {
	base := Span{File: 1, Start: 10, End: 20}
	tests := []struct {
		name  string
		other Span
		want  bool
	}{
		{"disjoint before", Span{File: 1, Start: 0, End: 5}, false},
		{"touching start", Span{File: 1, Start: 5, End: 10}, true},
		{"inside", Span{File: 1, Start: 12, End: 14}, true},
		{"touching end", Span{File: 1, Start: 20, End: 25}, true},
		{"disjoint after", Span{File: 1, Start: 21, End: 30}, false},
		{"empty inside", Span{File: 1, Start: 15, End: 15}, true},
		{"other file", Span{File: 2, Start: 12, End: 14}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestSpan_LenAndCover(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 9}
	b := Span{File: 1, Start: 7, End: 15}
	assert.Equal(t, uint32(5), a.Len())
	assert.Equal(t, Span{File: 1, Start: 4, End: 15}, a.Cover(b))
	assert.Equal(t, a, a.Cover(Span{File: 2, Start: 0, End: 100}))
	assert.True(t, a.Cover(b).Encloses(b))
	assert.False(t, a.Encloses(b))
}

func TestSpan_Shift(t *testing.T) {
	s := Span{File: 1, Start: 10, End: 20}
	assert.Equal(t, Span{File: 1, Start: 5, End: 15}, s.ShiftLeft(5))
	assert.Equal(t, Span{File: 1, Start: 0, End: 10}, s.ShiftLeft(10))
	assert.Equal(t, s, s.ShiftLeft(11))
	assert.Equal(t, Span{File: 1, Start: 13, End: 23}, s.ShiftRight(3))
}

func TestSpan_Zeroide(t *testing.T) {
	s := Span{File: 3, Start: 7, End: 12}
	assert.Equal(t, Span{File: 3, Start: 7, End: 7}, s.ZeroideToStart())
	assert.Equal(t, Span{File: 3, Start: 12, End: 12}, s.ZeroideToEnd())
	assert.True(t, s.ZeroideToEnd().Empty())
}
