package quokkalua

import (
	"fmt"
	"unsafe"
)

// Host API: the surface a [NativeFunc] and an embedding application use
// to read arguments, push results, and manipulate globals (spec §6).

// NumParams reports how many arguments the currently executing native
// function was called with.
func (vm *VM) NumParams() int {
	frame := vm.currentFrame()
	if frame == nil {
		return 0
	}
	return len(frame.varargs)
}

// Argument returns the i'th argument (0-indexed) to the currently
// executing native function, or the nil Value if i is out of range.
func (vm *VM) Argument(i int) Value {
	frame := vm.currentFrame()
	if frame == nil || i < 0 || i >= len(frame.varargs) {
		return Value{}
	}
	return frame.varargs[i]
}

// Push appends v to the currently executing native function's result
// list, in order. Outside any native call it pushes onto the register
// stack instead, paired with [VM.Pop] (spec §6 "push a value; pop one or
// N values").
func (vm *VM) Push(v Value) {
	if frame := vm.currentFrame(); frame != nil && frame.status&statusScript == 0 {
		frame.results = append(frame.results, v)
		return
	}
	vm.retainValue(v)
	vm.registers = append(vm.registers, v)
}

// Pop removes and returns the most recently pushed value: the last
// result pushed by the currently executing native function, or the top
// of the register stack outside any native call. Popping an empty stack
// returns the nil Value. An object reference moves out with the popped
// value rather than being released.
func (vm *VM) Pop() Value {
	if frame := vm.currentFrame(); frame != nil && frame.status&statusScript == 0 {
		if n := len(frame.results); n > 0 {
			v := frame.results[n-1]
			frame.results = frame.results[:n-1]
			return v
		}
		return Value{}
	}
	if n := len(vm.registers); n > 0 {
		v := vm.registers[n-1]
		vm.registers[n-1] = Value{}
		vm.registers = vm.registers[:n-1]
		return v
	}
	return Value{}
}

// PopN pops n values, returning them in push order.
func (vm *VM) PopN(n int) []Value {
	out := make([]Value, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = vm.Pop()
	}
	return out
}

// Nil, Bool, Int, Float, Str, and Light are convenience constructors a
// native function uses to build [Value]s to push or store, without
// needing the package's internal constructors. Light wraps an opaque
// host pointer; the VM never dereferences it, only compares it by
// identity.
func Nil() Value                   { return Value{} }
func Bool(b bool) Value            { return boolValue(b) }
func Int(i int64) Value            { return intValue(i) }
func Float(f float64) Value        { return numberValue(f) }
func Str(s string) Value           { return stringValue(s) }
func Light(p unsafe.Pointer) Value { return lightValue(p) }

// NewTable allocates a fresh, empty table value. The result is a new
// reference (spec §4.3): store it with TableSet/SetGlobal/Register/Push
// before the native function returns, or it is never reachable from
// script and its slot in the object pool is never reclaimed.
func (vm *VM) NewTable() Value {
	h := vm.objects.alloc(object{kind: objKindTable, table: newTable()})
	return tableValue(h)
}

// TableGet reads key from the table value t. It returns an error if t is
// not a table.
func (vm *VM) TableGet(t, key Value) (Value, error) {
	v, err := vm.indexGet(t, key)
	if err != nil {
		return Value{}, err
	}
	return v, nil
}

// TableSet writes key/value into the table value t. It returns an error
// if t is not a table.
func (vm *VM) TableSet(t, key, value Value) error {
	if err := vm.tableSet(t, key, value); err != nil {
		return err
	}
	return nil
}

// NewNativeFunction allocates a callable closure value from a host
// function without registering it anywhere: pass it as an argument,
// store it in a table, or hand it to Register's underlying machinery
// yourself.
func (vm *VM) NewNativeFunction(name string, fn NativeFunc) Value {
	return vm.newNativeClosure(name, fn)
}

// Register installs fn under name in the distinguished environment table
// (spec §6 "Registering a native function"), making it reachable from
// script as a global.
func (vm *VM) Register(name string, fn NativeFunc) {
	closure := vm.newNativeClosure(name, fn)
	_ = vm.tableSet(vm.env, stringValue(name), closure)
}

// Global reads a value out of the distinguished environment table.
func (vm *VM) Global(name string) Value {
	v, _ := vm.indexGet(vm.env, stringValue(name))
	return v
}

// SetGlobal writes a value into the distinguished environment table.
func (vm *VM) SetGlobal(name string, v Value) {
	_ = vm.tableSet(vm.env, stringValue(name), v)
}

// Call invokes a TypeFunction value from host code (spec §6 "Calling
// into script from the host"), collecting every result it produces. A
// panic escaping the interpreter (a corrupt handle, an internal
// invariant violation) is converted into an error here rather than
// aborting the embedding process; a caller seeing such an error should
// discard the instance, since its internal consistency is gone.
func (vm *VM) Call(fn Value, args ...Value) (results []Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			results, err = nil, wrapError(ErrCorrupt, "internal fault", fmt.Errorf("%v", r))
		}
	}()
	results, cerr := vm.call(fn, args, -1)
	if cerr != nil {
		return nil, cerr
	}
	return results, nil
}
