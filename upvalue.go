package quokkalua

// upvalueState discriminates whether an upvalue-pool entry still aliases
// a live register stack slot or has been closed over its own copy.
type upvalueState int

const (
	upvalOpen upvalueState = iota
	upvalClosed
)

// upvalueSlot is one entry in the VM's upvalue pool (spec §3 "Upvalue",
// §4.8). While open, it aliases stackIndex on the register stack: reads
// and writes through the upvalue go straight to that register. Closing
// copies the register's current value into closed and severs the alias,
// after which the upvalue is independent of the stack.
type upvalueSlot struct {
	state      upvalueState
	stackIndex int
	closed     Value
}

// findOpenUpvalue returns the handle of an already-open upvalue aliasing
// stackIndex, if one exists among vm's open upvalues. Multiple closures
// capturing the same enclosing local must observe writes through each
// other (spec §4.8), which requires sharing one upvalue-pool entry rather
// than allocating a fresh one per closure.
func (vm *VM) findOpenUpvalue(stackIndex int) (int, bool) {
	for _, h := range vm.openUpvalues {
		if vm.upvalues.get(h).stackIndex == stackIndex {
			return h, true
		}
	}
	return 0, false
}

// openUpvalueAt returns the handle of the open upvalue aliasing
// stackIndex, allocating one if none exists yet. vm.openUpvalues is a
// lookup index only, not an owner; the returned handle is retained once
// on behalf of the closure about to capture it (the caller), matching
// the retain findOpenUpvalue's branch performs for every subsequent
// closure sharing the same entry.
func (vm *VM) openUpvalueAt(stackIndex int) int {
	if h, ok := vm.findOpenUpvalue(stackIndex); ok {
		vm.upvalues.retain(h)
		return h
	}
	h := vm.upvalues.alloc(upvalueSlot{state: upvalOpen, stackIndex: stackIndex})
	vm.openUpvalues = append(vm.openUpvalues, h)
	// insertion-sort by descending stackIndex so closeUpvaluesFrom visits
	// entries from the highest stack index down.
	for i := len(vm.openUpvalues) - 1; i > 0; i-- {
		if vm.upvalues.get(vm.openUpvalues[i]).stackIndex <= vm.upvalues.get(vm.openUpvalues[i-1]).stackIndex {
			break
		}
		vm.openUpvalues[i], vm.openUpvalues[i-1] = vm.openUpvalues[i-1], vm.openUpvalues[i]
	}
	vm.upvalues.retain(h)
	return h
}

// closeUpvaluesFrom closes every open upvalue whose stackIndex is >=
// level, copying each one's current register value into the slot and
// removing it from the open list (spec §4.8: closing happens when a
// block exits or a function returns, severing the alias before the
// register it pointed at is reused for something else).
func (vm *VM) closeUpvaluesFrom(level int) {
	kept := vm.openUpvalues[:0]
	for _, h := range vm.openUpvalues {
		slot := vm.upvalues.get(h)
		if slot.stackIndex >= level {
			slot.closed = vm.registers[slot.stackIndex]
			vm.retainValue(slot.closed)
			slot.state = upvalClosed
		} else {
			kept = append(kept, h)
		}
	}
	vm.openUpvalues = kept
}

// upvalueGet reads the current value held by the upvalue at handle,
// whether it is still open (aliasing a register) or already closed.
func (vm *VM) upvalueGet(handle int) Value {
	slot := vm.upvalues.get(handle)
	if slot.state == upvalOpen {
		return vm.registers[slot.stackIndex]
	}
	return slot.closed
}

// upvalueSet writes through the upvalue at handle, updating either the
// aliased register (if still open) or its closed copy.
func (vm *VM) upvalueSet(handle int, v Value) {
	slot := vm.upvalues.get(handle)
	if slot.state == upvalOpen {
		vm.storeRegister(slot.stackIndex, v)
		return
	}
	vm.release(slot.closed)
	slot.closed = v
	vm.retainValue(v)
}
