package quokkalua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUpvalueCounterSurvivesOuterReturn is the classic counter-closure
// shape: the root function seeds a local, builds a closure that
// increments it through an upvalue, and returns the closure. Once the
// root frame is gone the upvalue must have transitioned open → closed,
// and each subsequent call keeps mutating the closed copy.
func TestUpvalueCounterSurvivesOuterReturn(t *testing.T) {
	counter := &Prototype{
		MaxStackSize: 1,
		Constants:    []Constant{{Tag: ConstantInteger, Integer: 1}},
		Upvalues:     []UpvalueDescriptor{{InStack: true, Index: 0, Name: "i"}},
		Code: []Instruction{
			iABC(OpGetUpval, 0, 0, 0),
			iABC(OpAdd, 0, 0, rk(0)),
			iABC(OpSetUpval, 0, 0, 0),
			iABC(OpReturn, 0, 2, 0),
		},
	}
	root := &Prototype{
		MaxStackSize: 2,
		Constants:    []Constant{{Tag: ConstantInteger, Integer: 0}},
		Functions:    []*Prototype{counter},
		Code: []Instruction{
			iABx(OpLoadK, 0, 0),
			iABx(OpClosure, 1, 0),
			iABC(OpReturn, 1, 2, 0),
		},
	}

	vm := New()
	require.NoError(t, vm.Load(chunkOf(root, 1)))
	results, err := vm.Run()
	require.NoError(t, err)
	require.Len(t, results, 1)
	closure := results[0]
	require.Equal(t, TypeFunction, closure.Type())

	assert.Empty(t, vm.openUpvalues, "root's return closed its captured local")

	for want := int64(1); want <= 3; want++ {
		out, err := vm.Call(closure)
		require.NoError(t, err)
		require.Len(t, out, 1)
		assert.Equal(t, want, out[0].AsInteger())
	}
}

// TestUpvalueSharedBetweenSiblingClosures builds two closures over the
// same enclosing local; a write through one must be visible through the
// other, since both hold the same upvalue-pool entry.
func TestUpvalueSharedBetweenSiblingClosures(t *testing.T) {
	setter := &Prototype{
		MaxStackSize: 1,
		Constants:    []Constant{{Tag: ConstantInteger, Integer: 99}},
		Upvalues:     []UpvalueDescriptor{{InStack: true, Index: 0}},
		Code: []Instruction{
			iABx(OpLoadK, 0, 0),
			iABC(OpSetUpval, 0, 0, 0),
			iABC(OpReturn, 0, 1, 0),
		},
	}
	getter := &Prototype{
		MaxStackSize: 1,
		Upvalues:     []UpvalueDescriptor{{InStack: true, Index: 0}},
		Code: []Instruction{
			iABC(OpGetUpval, 0, 0, 0),
			iABC(OpReturn, 0, 2, 0),
		},
	}
	root := &Prototype{
		MaxStackSize: 3,
		Constants:    []Constant{{Tag: ConstantInteger, Integer: 0}},
		Functions:    []*Prototype{setter, getter},
		Code: []Instruction{
			iABx(OpLoadK, 0, 0),
			iABx(OpClosure, 1, 0),
			iABx(OpClosure, 2, 1),
			iABC(OpReturn, 1, 3, 0),
		},
	}

	vm := New()
	require.NoError(t, vm.Load(chunkOf(root, 1)))
	results, err := vm.Run()
	require.NoError(t, err)
	require.Len(t, results, 2)

	_, err = vm.Call(results[0])
	require.NoError(t, err)
	out, err := vm.Call(results[1])
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(99), out[0].AsInteger(),
		"write through one sibling closure is observable through the other")
}

func TestCloseUpvaluesFromOrdersTopDown(t *testing.T) {
	vm := New()
	vm.registers = append(vm.registers, intValue(10), intValue(20), intValue(30))
	h0 := vm.openUpvalueAt(0)
	h1 := vm.openUpvalueAt(1)
	h2 := vm.openUpvalueAt(2)

	vm.closeUpvaluesFrom(1)

	assert.Equal(t, upvalOpen, vm.upvalues.get(h0).state, "below the close level stays open")
	assert.Equal(t, upvalClosed, vm.upvalues.get(h1).state)
	assert.Equal(t, upvalClosed, vm.upvalues.get(h2).state)
	assert.Equal(t, int64(20), vm.upvalueGet(h1).AsInteger())
	assert.Equal(t, int64(30), vm.upvalueGet(h2).AsInteger())
	assert.Len(t, vm.openUpvalues, 1)
}

func TestOpenUpvalueAtSharesEntriesByStackIndex(t *testing.T) {
	vm := New()
	vm.registers = append(vm.registers, intValue(5))
	h1 := vm.openUpvalueAt(0)
	h2 := vm.openUpvalueAt(0)
	assert.Equal(t, h1, h2, "same stack slot resolves to the same pool entry")
	assert.Len(t, vm.openUpvalues, 1)
}
