package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrint_TopLevelStringIsUnquoted(t *testing.T) {
	assert.Equal(t, "hello", Print(Str{"hello"}))
}

func TestPrint_NestedStringIsQuoted(t *testing.T) {
	assert.Equal(t, `["a", "b"]`, Print(NewList(Str{"a"}, Str{"b"})))
}

func TestPrint_Ints(t *testing.T) {
	assert.Equal(t, "42", Print(Int{42}))
	assert.Equal(t, "-7", Print(Int{-7}))
}

func TestPrint_FloatsAlwaysHaveFractionalDigit(t *testing.T) {
	assert.Equal(t, "1.0", Print(Float{1}))
	assert.Equal(t, "3.14", Print(Float{3.14}))
	assert.Equal(t, "0.5", Print(Float{0.5}))
}

func TestPrint_FloatSpecials(t *testing.T) {
	assert.Equal(t, "inf", Print(Float{posInf()}))
	assert.Equal(t, "-inf", Print(Float{negInf()}))
	assert.Equal(t, "nan", Print(Float{nan()}))
}

func TestPrint_BoolAndNil(t *testing.T) {
	assert.Equal(t, "true", Print(Bool{true}))
	assert.Equal(t, "false", Print(Bool{false}))
	assert.Equal(t, "nil", Print(Nil))
}

func TestPrint_EmptyListAndObject(t *testing.T) {
	assert.Equal(t, "[]", Print(NewList()))
	assert.Equal(t, "{}", Print(NewObject()))
}

func TestPrint_ObjectPreservesInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("b", Int{2})
	o.Set("a", Int{1})
	o.Set("b", Int{99}) // update, not reorder
	assert.Equal(t, "{ b: 99, a: 1 }", Print(o))
}

func TestPrint_ListOfObjects(t *testing.T) {
	o := NewObject()
	o.Set("k", Str{"v"})
	assert.Equal(t, `[{ k: "v" }]`, Print(NewList(o)))
}

func TestEqual_NaNNeverEqual(t *testing.T) {
	n := Float{nan()}
	assert.False(t, Equal(n, n))
}

func TestEqual_ListStructural(t *testing.T) {
	a := NewList(Int{1}, Str{"x"})
	b := NewList(Int{1}, Str{"x"})
	assert.True(t, Equal(a, b))
}

func TestIsTruthy(t *testing.T) {
	assert.False(t, IsTruthy(Bool{false}))
	assert.False(t, IsTruthy(Nil))
	assert.True(t, IsTruthy(Bool{true}))
	assert.True(t, IsTruthy(Int{0}))
	assert.True(t, IsTruthy(Str{""}))
}

func posInf() float64 { return 1 / zero() }
func negInf() float64 { return -1 / zero() }
func nan() float64    { return zero() / zero() }
func zero() float64   { return 0 }
