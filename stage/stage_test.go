package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/parser"
	"github.com/later-lang/later/sourcemap"
)

func partition(t *testing.T, src string) (*ast.Block, []string) {
	t.Helper()
	file := sourcemap.New("test.later", src)
	block, parseBag := parser.Parse(file)
	require.Equal(t, 0, parseBag.Len(), "parse errors: %s", parseBag.Render())
	bag := Partition(file, block)
	var msgs []string
	for _, d := range bag.Items() {
		msgs = append(msgs, d.Message)
	}
	return block, msgs
}

func TestPartition_UnmarkedCodeIsRuntime(t *testing.T) {
	block, msgs := partition(t, "1 + 2")
	assert.Empty(t, msgs)
	assert.Equal(t, ast.StageRuntime, block.Stmts[0].Stage())
}

func TestPartition_ComptimeMarkForcesSubtree(t *testing.T) {
	block, msgs := partition(t, "comptime { 1 + 2 }")
	assert.Empty(t, msgs)
	mark := block.Stmts[0].(*ast.StageMark)
	assert.Equal(t, ast.StageComptime, mark.Stage())
	body := mark.Body.(*ast.Block)
	assert.Equal(t, ast.StageComptime, body.Stmts[0].Stage())
}

func TestPartition_IOAtComptimeIsRejected(t *testing.T) {
	_, msgs := partition(t, `comptime { print("hi") }`)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs, "cannot perform IO at compile time")
}

func TestPartition_EnvReadAtComptimeIsRejected(t *testing.T) {
	_, msgs := partition(t, `comptime { env-get("HOME") }`)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs, "cannot read environment at compile time")
}

func TestPartition_LinearResourceAtComptimeIsRejected(t *testing.T) {
	_, msgs := partition(t, `comptime { channel(1) }`)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs, "linear types not allowed at compile time")
}

func TestPartition_IOAtStartupIsAllowed(t *testing.T) {
	_, msgs := partition(t, `startup { print("hi") }`)
	assert.Empty(t, msgs)
}

func TestPartition_SpawnOutsideRuntimeIsRejected(t *testing.T) {
	_, msgs := partition(t, `comptime { spawn { 1 } }`)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs, "spawn not allowed before runtime")
}

func TestPartition_HandleOutsideRuntimeIsRejected(t *testing.T) {
	_, msgs := partition(t, `startup { handle { 1 } with { ask => resume(1) } }`)
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs, "handle not allowed before runtime")
}

func TestPartition_SpawnAtRuntimeIsAllowed(t *testing.T) {
	_, msgs := partition(t, `spawn { 1 }`)
	assert.Empty(t, msgs)
}

func TestPartition_RuntimeValueUsedInComptimeExpression(t *testing.T) {
	_, msgs := partition(t, `let x = print("hi"); comptime { x }`)
	require.NotEmpty(t, msgs)
	found := false
	for _, m := range msgs {
		if m == "runtime value used in comptime expression" {
			found = true
		}
	}
	assert.True(t, found, "expected cross-stage reference diagnostic, got %v", msgs)
}

func TestPartition_ComptimeBindingVisibleInsideNestedComptime(t *testing.T) {
	_, msgs := partition(t, `comptime { let x = 1; comptime { x + 1 } }`)
	assert.Empty(t, msgs)
}

func TestPartition_NestedBlocksInheritForcedStage(t *testing.T) {
	block, msgs := partition(t, `comptime { if true { 1 } else { 2 } }`)
	assert.Empty(t, msgs)
	mark := block.Stmts[0].(*ast.StageMark)
	ifExpr := mark.Body.(*ast.Block).Stmts[0].(*ast.If)
	assert.Equal(t, ast.StageComptime, ifExpr.Then.Stage())
	assert.Equal(t, ast.StageComptime, ifExpr.Else.Stage())
}
