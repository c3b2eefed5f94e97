package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFile_PositionFirstLine(t *testing.T) {
	f := New("test.later", "let x = 1\nlet y = 2\n")
	assert.Equal(t, Pos{Line: 1, Column: 1}, f.Position(0))
	assert.Equal(t, Pos{Line: 1, Column: 5}, f.Position(4))
}

func TestFile_PositionSecondLine(t *testing.T) {
	f := New("test.later", "let x = 1\nlet y = 2\n")
	assert.Equal(t, Pos{Line: 2, Column: 1}, f.Position(10))
}

func TestFile_PositionClampsPastEnd(t *testing.T) {
	f := New("test.later", "abc")
	assert.Equal(t, f.Position(len(f.Src)), f.Position(1000))
}

func TestFile_LineReturnsTrimmedText(t *testing.T) {
	f := New("test.later", "let x = 1\nlet y = 2\n")
	assert.Equal(t, "let x = 1", f.Line(0))
	assert.Equal(t, "let y = 2", f.Line(10))
}

func TestFile_CaretAlignsUnderColumn(t *testing.T) {
	f := New("test.later", "abcdef")
	assert.Equal(t, "   ^", f.Caret(3))
}

func TestJoin_CoversBothSpans(t *testing.T) {
	got := Join(Span{Start: 5, End: 10}, Span{Start: 2, End: 7})
	assert.Equal(t, Span{Start: 2, End: 10}, got)
}
