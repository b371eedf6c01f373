package quokkalua

// retainValue bumps the object-pool refcount backing v, if v references
// one (spec §4.3): every place a Value is copied onto a new owner
// (a register, an upvalue, a table slot) must pair with a retain here,
// since Go's plain struct assignment cannot intercept the copy itself.
func (vm *VM) retainValue(v Value) {
	if v.isObject() {
		vm.objects.retain(v.handle)
	}
}

// release drops the object-pool refcount backing v, if any, freeing and
// recursively releasing its contents once nothing else references it
// (a table's values, or a closure's captured upvalues). Table keys are
// not released here, since tableSet never retains them.
func (vm *VM) release(v Value) {
	if !v.isObject() {
		return
	}
	obj := *vm.objects.get(v.handle)
	if !vm.objects.release(v.handle) {
		return
	}
	switch obj.kind {
	case objKindTable:
		for _, e := range obj.table.entries {
			vm.release(e.value)
		}
	case objKindScriptClosure:
		for _, h := range obj.script.upvalues {
			vm.releaseUpvalue(h)
		}
	}
}

// releaseUpvalue drops the upvalue-pool refcount at handle, releasing
// the value it holds once the handle itself is freed.
func (vm *VM) releaseUpvalue(h int) {
	slot := *vm.upvalues.get(h)
	if !vm.upvalues.release(h) {
		return
	}
	if slot.state == upvalClosed {
		vm.release(slot.closed)
	}
}

// storeRegister overwrites a register slot, retaining the incoming value
// and releasing whatever it displaces (spec §4.3's copy-is-retain rule
// applied to the register stack specifically). Use this whenever v keeps
// existing independently of this store (a second register, a table, an
// upvalue still hold their own reference to it).
func (vm *VM) storeRegister(idx int, v Value) {
	old := vm.registers[idx]
	vm.retainValue(v)
	vm.registers[idx] = v
	vm.release(old)
}

// installRegister overwrites a register slot with v without retaining it,
// releasing only whatever value it displaces. Use this when v is moving
// into its new home rather than being duplicated: a call's results
// leaving a dying frame for the caller's registers already carry a live
// reference from wherever they originated, so giving them a second one
// here would leak it permanently (nothing would ever balance it, since no
// second owner actually exists).
func (vm *VM) installRegister(idx int, v Value) {
	old := vm.registers[idx]
	vm.registers[idx] = v
	vm.release(old)
}

// adjustResults truncates or nil-pads results to exactly want values, or
// returns them unchanged when want is negative (MULTIRET). Values cut off
// by truncation are released here, since nothing will ever install or
// return them onward otherwise.
func (vm *VM) adjustResults(results []Value, want int) []Value {
	if want < 0 {
		return results
	}
	out := make([]Value, want)
	for i := range out {
		if i < len(results) {
			out[i] = results[i]
		}
	}
	for i := want; i < len(results); i++ {
		vm.release(results[i])
	}
	return out
}
