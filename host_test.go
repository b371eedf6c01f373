package quokkalua

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHostPushPopBalance is the spec's register-stack accounting
// property: with no call in progress, the stack size equals
// pushes − pops, and a push followed immediately by a pop round-trips
// the value.
func TestHostPushPopBalance(t *testing.T) {
	vm := New()
	vm.Push(Int(1))
	vm.Push(Str("x"))
	vm.Push(Bool(true))
	require.Len(t, vm.registers, 3)

	assert.True(t, vm.Pop().AsBool())
	assert.Equal(t, "x", vm.Pop().AsString())
	require.Len(t, vm.registers, 1)

	assert.Equal(t, int64(1), vm.Pop().AsInteger())
	assert.Empty(t, vm.registers)
	assert.True(t, vm.Pop().IsNil(), "popping an empty stack yields nil")
}

func TestHostPopNReturnsInPushOrder(t *testing.T) {
	vm := New()
	vm.Push(Int(1))
	vm.Push(Int(2))
	vm.Push(Int(3))
	out := vm.PopN(3)
	require.Len(t, out, 3)
	assert.Equal(t, int64(1), out[0].AsInteger())
	assert.Equal(t, int64(3), out[2].AsInteger())
}

func TestHostGlobalRoundTrip(t *testing.T) {
	vm := New()
	vm.SetGlobal("answer", Int(42))
	assert.Equal(t, int64(42), vm.Global("answer").AsInteger())
	assert.True(t, vm.Global("missing").IsNil())
}

// TestHostNativeArguments checks NumParams/Argument from inside a native
// invoked through script, including the out-of-range nil contract.
func TestHostNativeArguments(t *testing.T) {
	root := &Prototype{
		MaxStackSize: 3,
		Constants: []Constant{
			{Tag: ConstantString, String: "probe"},
			{Tag: ConstantString, String: "abcd"},
		},
		Code: []Instruction{
			iABC(OpGetTabUp, 0, 0, rk(0)),
			iABx(OpLoadK, 1, 1),
			iABC(OpCall, 0, 2, 2),
			iABC(OpReturn, 0, 2, 0),
		},
	}
	vm := New()
	vm.Register("probe", func(vm *VM) (int, error) {
		if vm.NumParams() != 1 {
			return 0, errors.New("wrong argument count")
		}
		if !vm.Argument(5).IsNil() {
			return 0, errors.New("out-of-range argument should be nil")
		}
		vm.Push(Int(int64(len(vm.Argument(0).AsString()))))
		return 1, nil
	})
	require.NoError(t, vm.Load(chunkOf(root, 1)))
	results, err := vm.Run()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int64(4), results[0].AsInteger())
}

// TestHostNativeFaultSurfacesWrapped has a native return a plain error;
// the VM must surface it as ErrNativeFault with the cause unwrappable.
func TestHostNativeFaultSurfacesWrapped(t *testing.T) {
	cause := errors.New("sensor offline")
	root := &Prototype{
		MaxStackSize: 1,
		Constants:    []Constant{{Tag: ConstantString, String: "fail"}},
		Code: []Instruction{
			iABC(OpGetTabUp, 0, 0, rk(0)),
			iABC(OpCall, 0, 1, 1),
			iABC(OpReturn, 0, 1, 0),
		},
	}
	vm := New()
	vm.Register("fail", func(vm *VM) (int, error) {
		return 0, cause
	})
	require.NoError(t, vm.Load(chunkOf(root, 1)))
	_, err := vm.Run()
	require.Error(t, err)
	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, ErrNativeFault, e.Kind)
	assert.ErrorIs(t, err, cause)
}

// TestHostNativeResultCountTruncates declares fewer results than were
// pushed; only the last n count.
func TestHostNativeResultCountTruncates(t *testing.T) {
	root := &Prototype{
		MaxStackSize: 1,
		Constants:    []Constant{{Tag: ConstantString, String: "two"}},
		Code: []Instruction{
			iABC(OpGetTabUp, 0, 0, rk(0)),
			iABC(OpCall, 0, 1, 0),
			iABC(OpReturn, 0, 0, 0),
		},
	}
	vm := New()
	vm.Register("two", func(vm *VM) (int, error) {
		vm.Push(Int(1))
		vm.Push(Int(2))
		vm.Push(Int(3))
		return 2, nil
	})
	require.NoError(t, vm.Load(chunkOf(root, 1)))
	results, err := vm.Run()
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, int64(2), results[0].AsInteger())
	assert.Equal(t, int64(3), results[1].AsInteger())
}
