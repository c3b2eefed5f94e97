// Package sourcemap maps byte offsets in a Later source file back to
// (line, column, snippet) triples for diagnostics. Every later stage shares
// one File so spans stay comparable from lexing through evaluation.
package sourcemap

import (
	"sort"
	"strings"
)

// File holds a source file's text plus a line-start offset table, so
// Position lookups are a binary search rather than a re-scan of the text.
type File struct {
	Name string
	Src  string

	// lineStarts[i] is the byte offset of the first byte of line i+1.
	// lineStarts[0] is always 0.
	lineStarts []int
}

// New builds a File and its line-start table for src.
func New(name, src string) *File {
	f := &File{Name: name, Src: src, lineStarts: []int{0}}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			f.lineStarts = append(f.lineStarts, i+1)
		}
	}
	return f
}

// Pos is a 1-indexed line/column pair resolved from a byte offset.
type Pos struct {
	Line   int
	Column int
}

// Position resolves a byte offset into a 1-indexed line/column pair.
// Offsets past the end of the source clamp to the final position.
func (f *File) Position(offset int) Pos {
	if offset < 0 {
		offset = 0
	}
	if offset > len(f.Src) {
		offset = len(f.Src)
	}
	// lineStarts is sorted ascending; find the last start <= offset.
	i := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	})
	line := i // lineStarts[i-1] <= offset < lineStarts[i]
	lineStart := f.lineStarts[line-1]
	return Pos{Line: line, Column: offset - lineStart + 1}
}

// Span is a half-open byte range [Start, End) into a File.
type Span struct {
	Start int
	End   int
}

// Join returns the smallest span covering both a and b.
func Join(a, b Span) Span {
	s := Span{Start: a.Start, End: a.End}
	if b.Start < s.Start {
		s.Start = b.Start
	}
	if b.End > s.End {
		s.End = b.End
	}
	return s
}

// Line returns the raw text of the 1-indexed line containing offset, with
// any trailing newline stripped, for use as a diagnostic snippet.
func (f *File) Line(offset int) string {
	pos := f.Position(offset)
	start := f.lineStarts[pos.Line-1]
	end := len(f.Src)
	if pos.Line < len(f.lineStarts) {
		end = f.lineStarts[pos.Line] - 1
	}
	if end < start {
		end = start
	}
	return strings.TrimRight(f.Src[start:end], "\r")
}

// Caret returns a "    ^" marker line aligned under Position(offset).Column,
// used beneath a snippet line in rendered diagnostics.
func (f *File) Caret(offset int) string {
	col := f.Position(offset).Column
	if col < 1 {
		col = 1
	}
	return strings.Repeat(" ", col-1) + "^"
}

// Text returns the raw source text covered by span.
func (f *File) Text(span Span) string {
	start, end := span.Start, span.End
	if start < 0 {
		start = 0
	}
	if end > len(f.Src) {
		end = len(f.Src)
	}
	if end < start {
		end = start
	}
	return f.Src[start:end]
}
