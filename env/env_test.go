package env

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/later-lang/later/value"
)

func TestEnv_DefineAndLookupThroughChain(t *testing.T) {
	outer := New(nil)
	outer.Define("x", value.Int{V: 1}, false, false)
	inner := outer.Child()
	slot, ok := inner.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, value.Int{V: 1}, slot.Value)
}

func TestEnv_LookupLocalDoesNotSeeParent(t *testing.T) {
	outer := New(nil)
	outer.Define("x", value.Int{V: 1}, false, false)
	inner := outer.Child()
	_, ok := inner.LookupLocal("x")
	assert.False(t, ok)
}

func TestEnv_AssignUpdatesOriginalScope(t *testing.T) {
	outer := New(nil)
	outer.Define("x", value.Int{V: 1}, true, false)
	inner := outer.Child()
	err := inner.Assign("x", value.Int{V: 2})
	assert.NoError(t, err)
	slot, _ := outer.Lookup("x")
	assert.Equal(t, value.Int{V: 2}, slot.Value)
}

func TestEnv_AssignRejectsImmutable(t *testing.T) {
	e := New(nil)
	e.Define("x", value.Int{V: 1}, false, false)
	err := e.Assign("x", value.Int{V: 2})
	assert.Error(t, err)
}

func TestEnv_AssignUndefinedFails(t *testing.T) {
	e := New(nil)
	err := e.Assign("missing", value.Int{V: 1})
	assert.Error(t, err)
}

func TestEnv_LinearBindingStartsLive(t *testing.T) {
	e := New(nil)
	e.Define("f", value.Int{V: 1}, false, true)
	slot, _ := e.Lookup("f")
	assert.Equal(t, ClassLive, slot.Class)
}

func TestEnv_ShadowingCreatesNewBindingInChild(t *testing.T) {
	outer := New(nil)
	outer.Define("x", value.Int{V: 1}, false, false)
	inner := outer.Child()
	inner.Define("x", value.Int{V: 2}, false, false)
	innerSlot, _ := inner.Lookup("x")
	outerSlot, _ := outer.Lookup("x")
	assert.Equal(t, value.Int{V: 2}, innerSlot.Value)
	assert.Equal(t, value.Int{V: 1}, outerSlot.Value)
}
