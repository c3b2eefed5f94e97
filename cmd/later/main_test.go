package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// run is a small helper around runSource so each scenario below can assert
// on stdout, stderr, and exit code independently, mirroring spec §8's
// literal-input -> expected-output table.
func run(t *testing.T, src string) (stdout, stderr string, code int) {
	t.Helper()
	var out, errw strings.Builder
	code = runSource("test.later", src, &out, &errw)
	return out.String(), errw.String(), code
}

func TestE2E_RunningPrecedenceLeftToRight(t *testing.T) {
	out, _, code := run(t, `1 + 2 * 3`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "9\n", out)
}

func TestE2E_ParensOverridePrecedence(t *testing.T) {
	out, _, code := run(t, `(1 + 2 * 3)`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "9\n", out)

	out, _, code = run(t, `1 + (2 * 3)`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "7\n", out)
}

func TestE2E_LinearValueMayNotBeConsumedInOneBranch(t *testing.T) {
	_, stderr, code := run(t, `let file = open("x"); if true { close(file) }`)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "linear value `file` may not be consumed")
}

func TestE2E_UnhandledEffectAtTopLevel(t *testing.T) {
	_, stderr, code := run(t, `perform my-effect(42)`)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unhandled effect: my-effect")
}

func TestE2E_HandleResumeYieldsResumedValue(t *testing.T) {
	out, _, code := run(t, `handle { perform ask() } with { ask => resume(10) }`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "10\n", out)
}

func TestE2E_DeferRunsInReverseOrder(t *testing.T) {
	out, _, code := run(t, `defer print("3"); defer print("2"); defer print("1"); nil`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "3\n2\n1\n", out)
}

func TestE2E_PipeIntoBareFunction(t *testing.T) {
	out, _, code := run(t, `"hello" | len`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "5\n", out)
}

func TestE2E_NegativeIndexViaAt(t *testing.T) {
	out, _, code := run(t, `[1, 2, 3] | at(-1)`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "3\n", out)
}

func TestE2E_NilResultIsSuppressed(t *testing.T) {
	out, _, code := run(t, `let x = 1; nil`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "", out)
}

func TestE2E_StageIOAtComptimeRejected(t *testing.T) {
	_, stderr, code := run(t, `comptime { print("x") }`)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "cannot perform IO at compile time")
}

func TestE2E_DivisionByZeroRuntimeFault(t *testing.T) {
	_, stderr, code := run(t, `1 / 0`)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "division by zero")
}

func TestE2E_IntegerOverflowRuntimeFault(t *testing.T) {
	_, stderr, code := run(t, `9223372036854775807 + 1`)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "integer overflow")
}

func TestE2E_SpawnAndAwait(t *testing.T) {
	out, _, code := run(t, `let t = spawn { 1 + 1 }; await t`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "2\n", out)
}

func TestE2E_AllCollectsResultsInOrder(t *testing.T) {
	out, _, code := run(t, `all [spawn { 1 }, spawn { 2 }, spawn { 3 }]`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "[1, 2, 3]\n", out)
}

func TestE2E_RaceResolvesToFirstResult(t *testing.T) {
	out, _, code := run(t, `race [spawn { 1 }]`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "1\n", out)
}

func TestE2E_MapFilterReduceOverLists(t *testing.T) {
	out, _, code := run(t, `[1, 2, 3, 4] | map(fn(x) x * 2) | filter(fn(x) x > 4)`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "[6, 8]\n", out)

	out, _, code = run(t, `reduce([1, 2, 3, 4], 0, fn(acc, x) acc + x)`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "10\n", out)
}

func TestE2E_ObjectKeysValuesHasKey(t *testing.T) {
	out, _, code := run(t, `keys({ a: 1, b: 2 })`)
	assert.Equal(t, 0, code)
	assert.Equal(t, `["a", "b"]`+"\n", out)

	out, _, code = run(t, `has-key({ a: 1 }, "a")`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "true\n", out)
}

func TestE2E_AssertFailureRaisesRuntimeFault(t *testing.T) {
	_, stderr, code := run(t, `assert(1 == 2, "nope")`)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "assertion failed: nope")
}

func TestE2E_ObjectDestructuringPattern(t *testing.T) {
	out, _, code := run(t, `let { a, b } = { a: 1, b: 2 }; a + b`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "3\n", out)
}

func TestE2E_ListDestructuringWithRest(t *testing.T) {
	out, _, code := run(t, `let [first, ...rest] = [1, 2, 3]; push(rest, first)`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "[2, 3, 1]\n", out)
}

func TestE2E_StringInterpolation(t *testing.T) {
	out, _, code := run(t, `let name = "world"; "hello {name}!"`)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello world!\n", out)
}

func TestE2E_DebugDumpsParsedTreeToStderr(t *testing.T) {
	var out, errw strings.Builder
	r := newRun("test.later", "1 + 2", &out, &errw)
	r.debug = true
	code := r.exec()
	assert.Equal(t, 0, code)
	assert.Contains(t, errw.String(), "Bin(#")
}

func TestRun_ColorWrapsDiagnosticInAnsiButKeepsText(t *testing.T) {
	var out, errw strings.Builder
	r := newRun("test.later", `let file = open("x"); if true { close(file) }`, &out, &errw)
	r.color = true
	code := r.exec()
	assert.Equal(t, 1, code)
	assert.Contains(t, errw.String(), "linear value `file` may not be consumed")
	assert.Contains(t, errw.String(), "\x1b[")
}

func TestRun_NoColorIsPlainText(t *testing.T) {
	_, stderr, code := run(t, `let file = open("x"); if true { close(file) }`)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "linear value `file` may not be consumed")
	assert.NotContains(t, stderr, "\x1b[")
}

func TestRun_YieldBudgetDoesNotAffectLoopResult(t *testing.T) {
	var out, errw strings.Builder
	r := newRun("test.later", `let mut n = 0; loop { n = n + 1; if n > 50 { break n } }`, &out, &errw)
	r.yieldBudget = 10
	code := r.exec()
	assert.Equal(t, 0, code)
	assert.Equal(t, "51\n", out.String())
}
