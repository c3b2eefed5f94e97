package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/later-lang/later/sourcemap"
)

func TestBag_RenderOneIncludesFileLineCol(t *testing.T) {
	f := sourcemap.New("test.later", "let x = 1 / 0")
	bag := NewBag(f)
	d := New(KindRuntime, sourcemap.Span{Start: 8, End: 13}, "division by zero")
	assert.Contains(t, bag.RenderOne(d), "test.later:1:9: division by zero")
}

func TestBag_RenderSummarizesMultipleErrors(t *testing.T) {
	f := sourcemap.New("test.later", "a b c")
	bag := NewBag(f)
	bag.Add(New(KindSyntax, sourcemap.Span{Start: 0, End: 1}, "unexpected token"))
	bag.Add(New(KindSyntax, sourcemap.Span{Start: 2, End: 3}, "unexpected token"))
	assert.Contains(t, bag.Render(), "2 errors")
}

func TestBag_RenderSingleErrorHasNoSummary(t *testing.T) {
	f := sourcemap.New("test.later", "a b")
	bag := NewBag(f)
	bag.Add(New(KindSyntax, sourcemap.Span{Start: 0, End: 1}, "unexpected token"))
	assert.NotContains(t, bag.Render(), "errors")
}

func TestDiagnostic_WithSuggestion(t *testing.T) {
	d := New(KindResolve, sourcemap.Span{}, "undefined binding `coutn`")
	d = d.WithSuggestion("count")
	assert.Contains(t, d.Suggestion, "did you mean `count`?")
}

func TestSuggest_FindsCloseEditDistance(t *testing.T) {
	assert.Equal(t, "count", Suggest("coutn", []string{"count", "total", "sum"}))
}

func TestSuggest_NoneWithinThreshold(t *testing.T) {
	assert.Equal(t, "", Suggest("xyz", []string{"count", "total"}))
}

func TestError_ImplementsGoErrorWithBareMessage(t *testing.T) {
	err := NewError(New(KindRuntime, sourcemap.Span{}, "division by zero"))
	assert.Equal(t, "division by zero", err.Error())
}
