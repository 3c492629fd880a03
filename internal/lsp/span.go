package lsp

import (
	"sort"
	"unicode/utf8"

	"fortio.org/safecast"
	"go.lsp.dev/protocol"

	"phphint/internal/source"
)

// Positions are counted in UTF-16 code units, the protocol default.

const maxUint32 = ^uint32(0)

func safeUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return maxUint32
	}
	return v
}

func utf16Len(r rune) uint32 {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

// offsetForPosition clamps pos into file: lines past the end map to the
// end of content, characters past the end of a line to its '\n'.
func offsetForPosition(file *source.File, pos protocol.Position) uint32 {
	if file == nil || len(file.Content) == 0 {
		return 0
	}
	content := file.Content
	contentLen := safeUint32(len(content))
	line := int(pos.Line)
	if line > len(file.LineIdx) {
		return contentLen
	}
	var lineStart uint32
	if line > 0 {
		lineStart = file.LineIdx[line-1] + 1
	}
	lineEnd := contentLen
	if line < len(file.LineIdx) {
		lineEnd = file.LineIdx[line]
	}
	if lineStart > lineEnd {
		return lineEnd
	}
	var units uint32
	off := lineStart
	for off < lineEnd && units < pos.Character {
		r, size := utf8.DecodeRune(content[off:lineEnd])
		need := utf16Len(r)
		if units+need > pos.Character {
			break
		}
		units += need
		off += safeUint32(size)
	}
	return off
}

func positionForOffset(file *source.File, offset uint32) protocol.Position {
	if file == nil {
		return protocol.Position{}
	}
	contentLen := safeUint32(len(file.Content))
	offset = min(offset, contentLen)
	lineIdx := file.LineIdx
	idx := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= offset })
	var lineStart uint32
	if idx > 0 {
		lineStart = lineIdx[idx-1] + 1
	}
	lineStart = min(lineStart, offset)
	var units uint32
	for off := lineStart; off < offset; {
		r, size := utf8.DecodeRune(file.Content[off:offset])
		units += utf16Len(r)
		off += safeUint32(size)
	}
	return protocol.Position{Line: safeUint32(idx), Character: units}
}

func rangeForSpan(file *source.File, span source.Span) protocol.Range {
	if file == nil {
		return protocol.Range{}
	}
	return protocol.Range{
		Start: positionForOffset(file, span.Start),
		End:   positionForOffset(file, span.End),
	}
}

func spanForRange(file *source.File, r protocol.Range) source.Span {
	if file == nil {
		return source.Span{}
	}
	start := offsetForPosition(file, r.Start)
	end := max(offsetForPosition(file, r.End), start)
	return source.Span{File: file.ID, Start: start, End: end}
}
