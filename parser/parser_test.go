package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/sourcemap"
)

func parse(t *testing.T, src string) *ast.Block {
	t.Helper()
	block, bag := Parse(sourcemap.New("test.later", src))
	require.Equal(t, 0, bag.Len(), "unexpected diagnostics: %s", bag.Render())
	return block
}

func TestParser_RunningPrecedence(t *testing.T) {
	block := parse(t, "1 + 2 * 3")
	require.Len(t, block.Stmts, 1)
	outer, ok := block.Stmts[0].(*ast.Bin)
	require.True(t, ok)
	assert.Equal(t, ast.OpMul, outer.Op)
	inner, ok := outer.Left.(*ast.Bin)
	require.True(t, ok)
	assert.Equal(t, ast.OpAdd, inner.Op)
}

func TestParser_ParensOverrideRunningPrecedence(t *testing.T) {
	block := parse(t, "1 + (2 * 3)")
	outer := block.Stmts[0].(*ast.Bin)
	assert.Equal(t, ast.OpAdd, outer.Op)
	_, ok := outer.Right.(*ast.Bin)
	assert.True(t, ok)
}

func TestParser_PipeCallRewrite(t *testing.T) {
	block := parse(t, `x | f(a, b)`)
	call, ok := block.Stmts[0].(*ast.Call)
	require.True(t, ok)
	require.Len(t, call.Args, 3)
	assert.Equal(t, "x", call.Args[0].(*ast.Ident).Name)
}

func TestParser_PipeDotMethodRewrite(t *testing.T) {
	block := parse(t, `1 | .len`)
	call, ok := block.Stmts[0].(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "len", call.Callee.(*ast.Ident).Name)
	require.Len(t, call.Args, 1)
}

func TestParser_PipeBareCalleeRewrite(t *testing.T) {
	block := parse(t, `x | g`)
	call, ok := block.Stmts[0].(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "g", call.Callee.(*ast.Ident).Name)
	require.Len(t, call.Args, 1)
}

func TestParser_IndexAtBuiltinExample(t *testing.T) {
	// spec §8: `[1,2,3] at -1` => 3. `at` is a regular function, reached
	// through the pipe grammar as `[1,2,3] | at(-1)` or a direct call;
	// here we just confirm plain call syntax parses.
	block := parse(t, `at([1,2,3], -1)`)
	call := block.Stmts[0].(*ast.Call)
	assert.Equal(t, "at", call.Callee.(*ast.Ident).Name)
}

func TestParser_LetMut(t *testing.T) {
	block := parse(t, "let mut x = 1")
	let := block.Stmts[0].(*ast.Let)
	assert.True(t, let.Mutable)
	assert.Equal(t, "x", let.Pat.Name)
}

func TestParser_IfElseIf(t *testing.T) {
	block := parse(t, `if a { 1 } else if b { 2 } else { 3 }`)
	ifExpr := block.Stmts[0].(*ast.If)
	elseIf, ok := ifExpr.Else.(*ast.If)
	require.True(t, ok)
	_, ok = elseIf.Else.(*ast.Block)
	assert.True(t, ok)
}

func TestParser_WhileDesugarsToLoop(t *testing.T) {
	block := parse(t, `while cond { print(1) }`)
	loop, ok := block.Stmts[0].(*ast.Loop)
	require.True(t, ok)
	guard, ok := loop.Body.Stmts[0].(*ast.If)
	require.True(t, ok)
	_, ok = guard.Cond.(*ast.Un)
	assert.True(t, ok)
}

func TestParser_ObjectShorthandAndSpread(t *testing.T) {
	block := parse(t, `{ x, ...rest }`)
	obj := block.Stmts[0].(*ast.Object)
	require.Len(t, obj.Fields, 2)
	assert.Equal(t, "x", obj.Fields[0].Key)
	assert.Equal(t, "x", obj.Fields[0].Value.(*ast.Ident).Name)
	assert.True(t, obj.Fields[1].Spread)
}

func TestParser_ListSpreadTrailingComma(t *testing.T) {
	block := parse(t, `[1, 2, ...xs,]`)
	list := block.Stmts[0].(*ast.List)
	require.Len(t, list.Elems, 3)
	_, ok := list.Elems[2].(*ast.Spread)
	assert.True(t, ok)
}

func TestParser_KebabEffectNameInPerform(t *testing.T) {
	block := parse(t, `perform my-effect(42)`)
	perf := block.Stmts[0].(*ast.Perform)
	assert.Equal(t, "my-effect", perf.Name)
}

func TestParser_HandleWithResume(t *testing.T) {
	block := parse(t, `handle { perform ask() } with { ask => resume(10) }`)
	handle := block.Stmts[0].(*ast.Handle)
	require.Len(t, handle.Cases, 1)
	assert.Equal(t, "ask", handle.Cases[0].Effect)
	_, ok := handle.Cases[0].Body.(*ast.Resume)
	assert.True(t, ok)
}

func TestParser_DeferSequence(t *testing.T) {
	block := parse(t, `defer print("3"); defer print("2"); defer print("1")`)
	require.Len(t, block.Stmts, 3)
	for _, s := range block.Stmts {
		_, ok := s.(*ast.Defer)
		assert.True(t, ok)
	}
}

func TestParser_SpawnAwaitAllRace(t *testing.T) {
	block := parse(t, `
		let t1 = spawn { 1 };
		let t2 = spawn { 2 };
		all [t1, t2];
		race [t1, t2];
		await t1
	`)
	require.Len(t, block.Stmts, 5)
	_, ok := block.Stmts[2].(*ast.All)
	assert.True(t, ok)
	_, ok = block.Stmts[3].(*ast.Race)
	assert.True(t, ok)
	_, ok = block.Stmts[4].(*ast.Await)
	assert.True(t, ok)
}

func TestParser_Timeout(t *testing.T) {
	block := parse(t, `timeout(1000, { 1 })`)
	to, ok := block.Stmts[0].(*ast.Timeout)
	require.True(t, ok)
	assert.Equal(t, int64(1000), to.Ms.(*ast.Lit).IntVal)
}

func TestParser_StringInterpolation(t *testing.T) {
	block := parse(t, `"a {1 + 2} b"`)
	interp := block.Stmts[0].(*ast.InterpString)
	require.Len(t, interp.Parts, 3)
	assert.Equal(t, "a ", interp.Parts[0].(*ast.Lit).StrVal)
	_, ok := interp.Parts[1].(*ast.Bin)
	assert.True(t, ok)
	assert.Equal(t, " b", interp.Parts[2].(*ast.Lit).StrVal)
}

func TestParser_FnWithDefaultsAndRest(t *testing.T) {
	block := parse(t, `fn add(a, b = 1, ...rest) a + b`)
	fn := block.Stmts[0].(*ast.Fn)
	assert.Equal(t, "add", fn.Name)
	require.Len(t, fn.Params, 2)
	assert.NotNil(t, fn.Params[1].Default)
	assert.Equal(t, "rest", fn.Rest)
}

func TestParser_MatchArms(t *testing.T) {
	block := parse(t, `match x { 1 => "one", _ => "other" }`)
	m := block.Stmts[0].(*ast.Match)
	require.Len(t, m.Arms, 2)
	assert.Equal(t, ast.PatLiteral, m.Arms[0].Pat.PatKind)
	assert.True(t, m.Arms[1].Pat.IsWildcard())
}

func TestParser_UnclosedParenRecoversAndReportsOneError(t *testing.T) {
	_, bag := Parse(sourcemap.New("test.later", "(1 + 2"))
	assert.GreaterOrEqual(t, bag.Len(), 1)
}

func TestParser_AsBinding(t *testing.T) {
	block := parse(t, `f() as result`)
	asNode := block.Stmts[0].(*ast.As)
	assert.Equal(t, "result", asNode.Name)
}
