package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStage_OrderingRuntimeLowest(t *testing.T) {
	assert.True(t, StageRuntime < StageStartup)
	assert.True(t, StageStartup < StageComptime)
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "runtime", StageRuntime.String())
	assert.Equal(t, "startup", StageStartup.String())
	assert.Equal(t, "comptime", StageComptime.String())
}

func TestIDGen_HandsOutIncreasingIDs(t *testing.T) {
	var g IDGen
	a := g.Next()
	b := g.Next()
	c := g.Next()
	assert.Less(t, a, b)
	assert.Less(t, b, c)
}

func TestDump_RendersKindAndNestedChildren(t *testing.T) {
	bin := &Bin{Meta: Meta{NID: 1}, Op: OpAdd,
		Left:  &Lit{Meta: Meta{NID: 2}, LitKind: LitInt, IntVal: 1},
		Right: &Lit{Meta: Meta{NID: 3}, LitKind: LitInt, IntVal: 2},
	}
	out := Dump(bin)
	assert.Contains(t, out, "Bin(#1, runtime) +")
	assert.Contains(t, out, "Lit(#2, runtime)")
	assert.Contains(t, out, "Lit(#3, runtime)")
}
