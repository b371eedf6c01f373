package quokkalua

// newScriptClosure builds a closure object for proto, capturing its
// upvalues from the currently-executing frame per spec §4.5: each
// [UpvalueDescriptor] either aliases a live local of that enclosing
// frame (InStack true) or inherits one of the enclosing closure's own
// upvalues (InStack false). The result is allocated into the object pool
// and returned as a TypeFunction [Value].
func (vm *VM) newScriptClosure(proto *Prototype, enclosing *callFrame) Value {
	if h, ok := vm.cachedClosure(proto, enclosing); ok {
		return funcValue(h)
	}
	upvalues := make([]int, len(proto.Upvalues))
	var parent *scriptClosure
	if enclosing != nil {
		parent = vm.objects.get(enclosing.closure).script
	}
	for i, desc := range proto.Upvalues {
		if desc.InStack {
			upvalues[i] = vm.openUpvalueAt(enclosing.base + int(desc.Index))
		} else {
			h := parent.upvalues[desc.Index]
			vm.upvalues.retain(h)
			upvalues[i] = h
		}
	}
	handle := vm.objects.alloc(object{
		kind:   objKindScriptClosure,
		script: &scriptClosure{proto: proto, upvalues: upvalues},
	})
	if enclosing != nil {
		vm.closureCache[proto] = closureCacheEntry{
			handle:    handle,
			gen:       vm.objects.generation(handle),
			parent:    enclosing.closure,
			parentGen: vm.objects.generation(enclosing.closure),
			base:      enclosing.base,
		}
	}
	return funcValue(handle)
}

// closureCacheEntry remembers the closure last constructed for a
// prototype, together with enough identity (slot generations, parent
// closure, base) to tell whether a later CLOSURE execution is genuinely
// rebuilding the same closure.
type closureCacheEntry struct {
	handle    int
	gen       uint32
	parent    int
	parentGen uint32
	base      int
}

// cachedClosure returns the previously built closure for proto when the
// construction context matches exactly: same parent closure (not a
// recycled slot), same base, the cached closure's own slot has not been
// freed and reused since, and every upvalue the cached closure holds is
// the one the descriptors would resolve to right now. The last check is
// what keeps a cache hit from resurrecting a closure whose captured
// locals have since been closed: once the originating frame returned,
// the open upvalue it would capture today no longer exists, so the
// stale entry misses and a fresh closure is built.
func (vm *VM) cachedClosure(proto *Prototype, enclosing *callFrame) (int, bool) {
	if enclosing == nil {
		return 0, false
	}
	e, ok := vm.closureCache[proto]
	if !ok {
		return 0, false
	}
	if e.parent != enclosing.closure || e.base != enclosing.base {
		return 0, false
	}
	if vm.objects.generation(e.handle) != e.gen || vm.objects.generation(e.parent) != e.parentGen {
		return 0, false
	}
	cached := vm.objects.get(e.handle).script
	parent := vm.objects.get(enclosing.closure).script
	for i, desc := range proto.Upvalues {
		var want int
		if desc.InStack {
			h, open := vm.findOpenUpvalue(enclosing.base + int(desc.Index))
			if !open {
				return 0, false
			}
			want = h
		} else {
			want = parent.upvalues[desc.Index]
		}
		if cached.upvalues[i] != want {
			return 0, false
		}
	}
	return e.handle, true
}

// newNativeClosure wraps fn as a callable object (spec §6 "Registering a
// native function").
func (vm *VM) newNativeClosure(name string, fn NativeFunc) Value {
	handle := vm.objects.alloc(object{
		kind:   objKindNativeClosure,
		native: &nativeClosure{name: name, fn: fn},
	})
	return funcValue(handle)
}

// isCallable reports whether v refers to either closure kind.
func (vm *VM) isCallable(v Value) bool {
	return v.Type() == TypeFunction
}
