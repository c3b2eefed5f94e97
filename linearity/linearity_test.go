package linearity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/later-lang/later/ast"
	"github.com/later-lang/later/parser"
	"github.com/later-lang/later/sourcemap"
)

func check(t *testing.T, src string) (*ast.Block, []string) {
	t.Helper()
	file := sourcemap.New("test.later", src)
	block, parseBag := parser.Parse(file)
	require.Equal(t, 0, parseBag.Len(), "parse errors: %s", parseBag.Render())
	bag := Check(file, block)
	var msgs []string
	for _, d := range bag.Items() {
		msgs = append(msgs, d.Message)
	}
	return block, msgs
}

func TestCheck_ConsumedLinearValueIsClean(t *testing.T) {
	_, msgs := check(t, `let file = open("x"); drop(file)`)
	assert.Empty(t, msgs)
}

func TestCheck_UnconsumedLinearValueAtScopeExit(t *testing.T) {
	_, msgs := check(t, `let file = open("x")`)
	assert.Contains(t, msgs, "linear value `file` was never consumed")
}

func TestCheck_DoubleConsumeIsRejected(t *testing.T) {
	_, msgs := check(t, `let file = open("x"); drop(file); drop(file)`)
	assert.Contains(t, msgs, "linear value `file` already consumed")
}

func TestCheck_PartialConsumptionAcrossBranchesIsRejected(t *testing.T) {
	_, msgs := check(t, `let file = open("x"); if true { drop(file) }`)
	assert.Contains(t, msgs, "linear value `file` may not be consumed")
}

func TestCheck_ConsumptionInEveryBranchIsAllowed(t *testing.T) {
	_, msgs := check(t, `let file = open("x"); if true { drop(file) } else { drop(file) }`)
	assert.Empty(t, msgs)
}

func TestCheck_LoopRuleRejectsConsumingOuterValueInLoop(t *testing.T) {
	_, msgs := check(t, `let file = open("x"); loop { drop(file); break nil }`)
	assert.Contains(t, msgs, "cannot consume linear value `file` in loop")
}

func TestCheck_LoopLocalValueConsumedEachIterationIsAllowed(t *testing.T) {
	_, msgs := check(t, `loop { let file = open("x"); drop(file); break nil }`)
	assert.Empty(t, msgs)
}

func TestCheck_BreakWithUnconsumedLinearValueIsRejected(t *testing.T) {
	_, msgs := check(t, `loop { let file = open("x"); break nil }`)
	assert.Contains(t, msgs, "linear value `file` not consumed before break")
}

func TestCheck_WildcardBindingOfValueWithDestructorIsRejected(t *testing.T) {
	_, msgs := check(t, `let _ = open("x")`)
	assert.Contains(t, msgs, "linear value with a destructor cannot be bound to `_`")
}

func TestCheck_ClosureCannotCaptureLinearValueByMove(t *testing.T) {
	_, msgs := check(t, `let file = open("x"); let f = fn() { drop(file) }`)
	assert.Contains(t, msgs, "closures may not capture linear value `file` by move")
}

func TestCheck_CannotMoveFieldOutOfLinearAggregate(t *testing.T) {
	_, msgs := check(t, `let file = open("x"); let conn = file.conn`)
	assert.Contains(t, msgs, "cannot move out of linear aggregate `file`; destructure with a pattern instead")
}

func TestCheck_ReadingFieldWithoutOwningIsAllowed(t *testing.T) {
	block, msgs := check(t, `let file = open("x"); print(file.conn); drop(file)`)
	assert.Empty(t, msgs)
	call := block.Stmts[1].(*ast.Call)
	field := call.Args[0].(*ast.Field)
	require.NotNil(t, field.Linearity())
	assert.Equal(t, []string{"file"}, field.Linearity().Borrows)
}

func TestCheck_NonLinearValuesAreUnrestricted(t *testing.T) {
	_, msgs := check(t, `let x = 1; let y = x + x; print(y)`)
	assert.Empty(t, msgs)
}

func TestCheck_AggregateContainingLinearValueBecomesLinear(t *testing.T) {
	_, msgs := check(t, `let file = open("x"); let bundle = [file]`)
	assert.Contains(t, msgs, "linear value `bundle` was never consumed")
}

func TestCheck_DropRecordsLinearityOnCallNode(t *testing.T) {
	block, msgs := check(t, `let file = open("x"); drop(file)`)
	assert.Empty(t, msgs)
	dropCall := block.Stmts[1].(*ast.Call)
	require.NotNil(t, dropCall.Linearity())
	assert.Equal(t, []string{"file"}, dropCall.Linearity().Drops)
}

func TestCheck_ConsumeAfterDropIsRejected(t *testing.T) {
	_, msgs := check(t, `let file = open("x"); drop(file); print(file)`)
	assert.Contains(t, msgs, "linear value `file` already consumed")
}
