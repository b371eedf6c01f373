package quokkalua

import "fmt"

// Load installs chunk as the program this VM runs, constructing the
// chunk's root closure with its declared upvalues bound as closed
// upvalues (spec §4.2/§4.5): by the reference compiler's convention,
// upvalue 0 of a chunk's root function is the distinguished environment,
// so it is seeded with vm.env regardless of what the dumped descriptor
// says (a root function has no enclosing frame to resolve InStack/Index
// against). A VM may load at most one chunk; Load is meant to be called
// once, right after [New].
func (vm *VM) Load(chunk *Chunk) error {
	vm.chunk = chunk
	upvalues := make([]int, chunk.NumUpvalues)
	for i := range upvalues {
		v := Value{}
		if i == 0 {
			v = vm.env
		}
		vm.retainValue(v)
		upvalues[i] = vm.upvalues.alloc(upvalueSlot{state: upvalClosed, closed: v})
		vm.upvalues.retain(upvalues[i]) // owned by the root closure's upvalue list below
	}
	vm.globalClosure = vm.objects.alloc(object{
		kind:   objKindScriptClosure,
		script: &scriptClosure{proto: chunk.Root, upvalues: upvalues},
	})
	vm.objects.retain(vm.globalClosure) // owned by the vm.globalClosure field itself
	return nil
}

// Run invokes the loaded chunk's root function with args as its
// arguments (spec §4.2 "a chunk is itself a vararg function of zero
// parameters"), returning whatever it returns. Like [VM.Call], an
// escaping panic is converted to an error at this boundary instead of
// aborting the host.
func (vm *VM) Run(args ...Value) (results []Value, err error) {
	if vm.chunk == nil {
		return nil, newError(ErrCallNonCallable, "no chunk loaded")
	}
	defer func() {
		if r := recover(); r != nil {
			results, err = nil, wrapError(ErrCorrupt, "internal fault", fmt.Errorf("%v", r))
		}
	}()
	results, cerr := vm.call(funcValue(vm.globalClosure), args, -1)
	if cerr != nil {
		return nil, cerr
	}
	return results, nil
}

// growRegisters ensures the register stack has at least n valid slots,
// rejecting growth past the configured WithMaxRegisters ceiling.
func (vm *VM) growRegisters(n int) *Error {
	if n > vm.cfg.maxRegisters {
		return newError(ErrStackOverflow, "register stack limit exceeded")
	}
	for len(vm.registers) < n {
		vm.registers = append(vm.registers, Value{})
	}
	return nil
}

// call is the Host API's and the interpreter's shared entry point for
// invoking a TypeFunction value (spec §4.6 precall/postcall protocol).
// numResults of -1 requests every result the callee produces (MULTIRET);
// any other value truncates/pads to exactly that many.
func (vm *VM) call(fn Value, args []Value, numResults int) ([]Value, *Error) {
	if !vm.isCallable(fn) {
		return nil, newError(ErrCallNonCallable, fn.Type().String())
	}
	if len(vm.frames) >= vm.cfg.maxCallDepth {
		return nil, newError(ErrStackOverflow, "")
	}
	obj := vm.objects.get(fn.handle)
	if obj.kind == objKindNativeClosure {
		return vm.callNative(obj.native, args, numResults)
	}
	return vm.callScript(fn.handle, obj.script, args, numResults)
}

// callNative runs a host-provided function. Its call frame exists mainly
// so the Host API (Argument/NumParams/Push) has somewhere to read from
// and write to; a native frame has no register window of its own.
func (vm *VM) callNative(nc *nativeClosure, args []Value, numResults int) ([]Value, *Error) {
	vm.frames = append(vm.frames, callFrame{status: statusFresh, varargs: args})

	n, err := nc.fn(vm)

	frame := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	if err != nil {
		if e, ok := err.(*Error); ok {
			return nil, e
		}
		return nil, wrapError(ErrNativeFault, nc.name, err)
	}
	results := frame.results
	if n >= 0 && n < len(results) {
		// The native's declared count wins: only the last n pushed
		// values are its results.
		results = results[len(results)-n:]
	}
	// Pushed results carry no reference of their own yet; give each one
	// the single live reference the caller's install/return will consume,
	// matching what a script frame's RETURN hands back.
	for _, v := range results {
		vm.retainValue(v)
	}
	return vm.adjustResults(results, numResults), nil
}

// callScript runs a loaded script closure to completion (recursively, in
// the Go sense: a CALL instruction inside it invokes (*VM).call directly
// and waits for the result before resuming, which is what bounds Lua call
// depth by cfg.maxCallDepth rather than by Go's own stack).
func (vm *VM) callScript(handle int, sc *scriptClosure, args []Value, numResults int) ([]Value, *Error) {
	proto := sc.proto
	base := len(vm.registers)
	if err := vm.growRegisters(base + int(proto.MaxStackSize)); err != nil {
		return nil, err
	}

	np := int(proto.NumParams)
	for i := 0; i < np; i++ {
		v := Value{}
		if i < len(args) {
			v = args[i]
		}
		vm.retainValue(v)
		vm.registers[base+i] = v
	}
	var varargs []Value
	if proto.IsVararg && len(args) > np {
		varargs = append(varargs, args[np:]...)
		for _, v := range varargs {
			vm.retainValue(v)
		}
	}

	vm.objects.retain(handle)
	vm.frames = append(vm.frames, callFrame{
		closure:    handle,
		base:       base,
		pc:         0,
		numResults: numResults,
		varargs:    varargs,
		status:     statusFresh | statusScript,
	})

	return vm.run()
}

// run executes instructions in the top call frame until it returns (via
// RETURN/TAILCALL, or falling off the end of its code), then reports its
// results. Each run call manages exactly one frame: a CALL instruction
// recurses straight into (*VM).call rather than looping across frames
// here.
func (vm *VM) run() ([]Value, *Error) {
	fi := len(vm.frames) - 1
	for {
		frame := &vm.frames[fi]
		proto := vm.objects.get(frame.closure).script.proto
		if frame.pc >= len(proto.Code) {
			return vm.unwindReturn(frame, nil, -1, -1)
		}
		inst := proto.Code[frame.pc]
		frame.pc++

		results, done, err := vm.step(frame, proto, inst)
		if err != nil {
			vm.unwindFault(frame)
			return nil, err
		}
		if done {
			return results, nil
		}
	}
}

// unwindFault tears a faulting frame down the way unwindReturn does but
// with nothing to save: a fault unwinds every frame between the fault
// and the nearest host re-entry point, closing each one's upvalues on
// the way out (spec §7). Each Go-level run call unwinds its own frame as
// the error propagates back through the nested (*VM).call chain.
func (vm *VM) unwindFault(frame *callFrame) {
	vm.closeUpvaluesFrom(frame.base)
	for i := frame.base; i < len(vm.registers); i++ {
		vm.release(vm.registers[i])
	}
	for _, v := range frame.varargs {
		vm.release(v)
	}
	vm.objects.release(frame.closure)
	vm.registers = vm.registers[:frame.base]
	vm.frames = vm.frames[:len(vm.frames)-1]
}

// step executes one instruction in frame. A RETURN, or a TAILCALL to a
// native function, reports (results, true, nil), meaning frame has
// already been popped and run should stop; any other instruction
// (including a TAILCALL to a script closure, which keeps running in the
// reused frame) reports (nil, false, nil/err) and run continues with the
// next instruction.
func (vm *VM) step(frame *callFrame, proto *Prototype, inst Instruction) (results []Value, done bool, ferr *Error) {
	op := inst.OpCode()
	base := frame.base
	rget := func(i int) Value { return vm.registers[base+i] }
	rset := func(i int, v Value) { vm.storeRegister(base+i, v) }
	kget := func(i int) (Value, *Error) {
		if i < 0 || i >= len(proto.Constants) {
			return Value{}, newError(ErrConstantBounds, op.String())
		}
		return proto.Constants[i].value(), nil
	}
	rk := func(arg int) (Value, *Error) {
		if isConstant(arg) {
			return kget(constantIndex(arg))
		}
		return rget(arg), nil
	}
	rk2 := func(argB, argC int) (Value, Value, *Error) {
		b, err := rk(argB)
		if err != nil {
			return Value{}, Value{}, err
		}
		c, err := rk(argC)
		return b, c, err
	}
	upval := func(i int) (int, *Error) {
		upvalues := vm.closureUpvalues(frame)
		if i < 0 || i >= len(upvalues) {
			return 0, newError(ErrUpvalueBounds, op.String())
		}
		return upvalues[i], nil
	}

	switch op {
	case OpMove:
		rset(inst.ArgA(), rget(inst.ArgB()))

	case OpLoadK:
		v, err := kget(inst.ArgBx())
		if err != nil {
			return nil, false, err
		}
		rset(inst.ArgA(), v)

	case OpLoadKX:
		extra := proto.Code[frame.pc]
		frame.pc++
		v, err := kget(extra.ArgAx())
		if err != nil {
			return nil, false, err
		}
		rset(inst.ArgA(), v)

	case OpLoadBool:
		rset(inst.ArgA(), boolValue(inst.ArgB() != 0))
		if inst.ArgC() != 0 {
			frame.pc++
		}

	case OpLoadNil:
		a, b := inst.ArgA(), inst.ArgB()
		for i := 0; i <= b; i++ {
			rset(a+i, Value{})
		}

	case OpGetUpval:
		h, err := upval(inst.ArgB())
		if err != nil {
			return nil, false, err
		}
		rset(inst.ArgA(), vm.upvalueGet(h))

	case OpSetUpval:
		h, err := upval(inst.ArgB())
		if err != nil {
			return nil, false, err
		}
		vm.upvalueSet(h, rget(inst.ArgA()))

	case OpGetTabUp:
		h, err := upval(inst.ArgB())
		if err != nil {
			return nil, false, err
		}
		key, err := rk(inst.ArgC())
		if err != nil {
			return nil, false, err
		}
		v, err := vm.indexGet(vm.upvalueGet(h), key)
		if err != nil {
			return nil, false, err
		}
		rset(inst.ArgA(), v)

	case OpSetTabUp:
		h, err := upval(inst.ArgA())
		if err != nil {
			return nil, false, err
		}
		key, value, err := rk2(inst.ArgB(), inst.ArgC())
		if err != nil {
			return nil, false, err
		}
		if err := vm.tableSet(vm.upvalueGet(h), key, value); err != nil {
			return nil, false, err
		}

	case OpGetTable:
		key, err := rk(inst.ArgC())
		if err != nil {
			return nil, false, err
		}
		v, err := vm.indexGet(rget(inst.ArgB()), key)
		if err != nil {
			return nil, false, err
		}
		rset(inst.ArgA(), v)

	case OpSetTable:
		key, value, err := rk2(inst.ArgB(), inst.ArgC())
		if err != nil {
			return nil, false, err
		}
		if err := vm.tableSet(rget(inst.ArgA()), key, value); err != nil {
			return nil, false, err
		}

	case OpNewTable:
		handle := vm.objects.alloc(object{kind: objKindTable, table: newTable()})
		rset(inst.ArgA(), tableValue(handle))

	case OpSelf:
		a, b := inst.ArgA(), inst.ArgB()
		obj := rget(b)
		key, err := rk(inst.ArgC())
		if err != nil {
			return nil, false, err
		}
		method, err := vm.indexGet(obj, key)
		if err != nil {
			return nil, false, err
		}
		rset(a+1, obj)
		rset(a, method)

	case OpAdd, OpSub, OpMul, OpMod, OpPow, OpDiv, OpIDiv,
		OpBAnd, OpBOr, OpBXor, OpShl, OpShr:
		x, y, err := rk2(inst.ArgB(), inst.ArgC())
		if err != nil {
			return nil, false, err
		}
		v, err := arith(op, x, y)
		if err != nil {
			return nil, false, err
		}
		rset(inst.ArgA(), v)

	case OpUnm:
		v, err := arithUnm(rget(inst.ArgB()))
		if err != nil {
			return nil, false, err
		}
		rset(inst.ArgA(), v)

	case OpBNot:
		v, err := arithBNot(rget(inst.ArgB()))
		if err != nil {
			return nil, false, err
		}
		rset(inst.ArgA(), v)

	case OpNot:
		rset(inst.ArgA(), boolValue(!rget(inst.ArgB()).truthy()))

	case OpLen:
		v, err := vm.length(rget(inst.ArgB()))
		if err != nil {
			return nil, false, err
		}
		rset(inst.ArgA(), v)

	case OpConcat:
		b, c := inst.ArgB(), inst.ArgC()
		acc := rget(c)
		for i := c - 1; i >= b; i-- {
			var err *Error
			acc, err = concatValues(rget(i), acc)
			if err != nil {
				return nil, false, err
			}
		}
		rset(inst.ArgA(), acc)

	case OpJmp:
		vm.jumpCloseIfNeeded(frame, inst)
		frame.pc += inst.ArgSBx()

	case OpEq:
		x, y, err := rk2(inst.ArgB(), inst.ArgC())
		if err != nil {
			return nil, false, err
		}
		if valuesEqual(x, y) != (inst.ArgA() != 0) {
			frame.pc++
		}

	case OpLt:
		x, y, err := rk2(inst.ArgB(), inst.ArgC())
		if err != nil {
			return nil, false, err
		}
		lt, err := lessThan(x, y)
		if err != nil {
			return nil, false, err
		}
		if lt != (inst.ArgA() != 0) {
			frame.pc++
		}

	case OpLe:
		x, y, err := rk2(inst.ArgB(), inst.ArgC())
		if err != nil {
			return nil, false, err
		}
		le, err := lessEqual(x, y)
		if err != nil {
			return nil, false, err
		}
		if le != (inst.ArgA() != 0) {
			frame.pc++
		}

	case OpTest:
		if rget(inst.ArgA()).truthy() != (inst.ArgC() != 0) {
			frame.pc++
		}

	case OpTestSet:
		v := rget(inst.ArgB())
		if v.truthy() == (inst.ArgC() != 0) {
			rset(inst.ArgA(), v)
		} else {
			frame.pc++
		}

	case OpCall:
		return vm.doCall(frame, inst)

	case OpTailCall:
		return vm.doTailCall(frame, inst)

	case OpReturn:
		return vm.doReturn(frame, inst)

	case OpForPrep:
		a := inst.ArgA()
		init, ok := toNumberValue(rget(a))
		if !ok {
			return nil, false, newError(ErrArithOnNonNumber, "'for' initial value")
		}
		limit, ok := toNumberValue(rget(a + 1))
		if !ok {
			return nil, false, newError(ErrArithOnNonNumber, "'for' limit")
		}
		step, ok := toNumberValue(rget(a + 2))
		if !ok {
			return nil, false, newError(ErrArithOnNonNumber, "'for' step")
		}
		first, err := arith(OpSub, init, step)
		if err != nil {
			return nil, false, err
		}
		rset(a, first)
		rset(a+1, limit)
		rset(a+2, step)
		frame.pc += inst.ArgSBx()

	case OpForLoop:
		a := inst.ArgA()
		cur := rget(a)
		step := rget(a + 2)
		next, err := arith(OpAdd, cur, step)
		if err != nil {
			return nil, false, err
		}
		cont, err := forLoopContinues(next, rget(a+1), step)
		if err != nil {
			return nil, false, err
		}
		if cont {
			rset(a, next)
			rset(a+3, next)
			frame.pc += inst.ArgSBx()
		}

	case OpTForCall:
		a, c := inst.ArgA(), inst.ArgC()
		fn := rget(a)
		args := []Value{rget(a + 1), rget(a + 2)}
		res, err := vm.call(fn, args, c)
		if err != nil {
			return nil, false, err
		}
		for i := 0; i < c; i++ {
			v := Value{}
			if i < len(res) {
				v = res[i]
			}
			vm.installRegister(base+a+3+i, v)
		}

	case OpTForLoop:
		a := inst.ArgA()
		if !rget(a + 1).IsNil() {
			rset(a, rget(a+1))
			frame.pc += inst.ArgSBx()
		}

	case OpSetList:
		a, b, c := inst.ArgA(), inst.ArgB(), inst.ArgC()
		if c == 0 {
			c = proto.Code[frame.pc].ArgAx()
			frame.pc++
		}
		n := b
		if n == 0 {
			n = vm.frameTop(frame) - (base + a + 1)
		}
		const fieldsPerFlush = 50
		tv := rget(a)
		for i := 1; i <= n; i++ {
			if err := vm.tableSet(tv, intValue(int64((c-1)*fieldsPerFlush+i)), rget(a+i)); err != nil {
				return nil, false, err
			}
		}

	case OpClosure:
		bx := inst.ArgBx()
		if bx >= len(proto.Functions) {
			return nil, false, newError(ErrCorrupt, "closure prototype index out of bounds")
		}
		rset(inst.ArgA(), vm.newScriptClosure(proto.Functions[bx], frame))

	case OpVararg:
		a, b := inst.ArgA(), inst.ArgB()
		n := b - 1
		if b == 0 {
			n = len(frame.varargs)
			if err := vm.growRegisters(base + a + n); err != nil {
				return nil, false, err
			}
			vm.setFrameTop(frame, base+a+n)
		}
		for i := 0; i < n; i++ {
			v := Value{}
			if i < len(frame.varargs) {
				v = frame.varargs[i]
			}
			rset(a+i, v)
		}

	case OpExtraArg:
		// Only ever consumed inline by LOADKX/SETLIST above.

	default:
		return nil, false, newError(ErrCorrupt, "unimplemented opcode "+op.String())
	}
	return nil, false, nil
}

// closureUpvalues returns the handle list of the closure currently
// executing frame.
func (vm *VM) closureUpvalues(frame *callFrame) []int {
	return vm.objects.get(frame.closure).script.upvalues
}

// frameTop/setFrameTop track the "top of stack" a MULTIRET-producing
// instruction (VARARG with B==0, or CALL with C==0) leaves behind,
// consulted by a following CALL/TAILCALL/RETURN/SETLIST with B==0 that
// asks for "everything up to top".
func (vm *VM) frameTop(frame *callFrame) int {
	if frame.top == 0 {
		return frame.base + int(vm.objects.get(frame.closure).script.proto.MaxStackSize)
	}
	return frame.top
}

func (vm *VM) setFrameTop(frame *callFrame, abs int) {
	frame.top = abs
}

// jumpCloseIfNeeded closes upvalues before a JMP whose A field is nonzero
// (the reference compiler's convention for a jump that exits a block
// owning to-be-closed locals): A-1 is the stack level, relative to the
// frame base, at or above which open upvalues must be closed.
func (vm *VM) jumpCloseIfNeeded(frame *callFrame, inst Instruction) {
	if a := inst.ArgA(); a > 0 {
		vm.closeUpvaluesFrom(frame.base + a - 1)
	}
}

func (vm *VM) indexGet(tv, key Value) (Value, *Error) {
	if tv.Type() != TypeTable {
		return Value{}, newError(ErrIndexNonTable, tv.Type().String())
	}
	return vm.tableOf(tv).get(key), nil
}

func (vm *VM) tableOf(v Value) *Table {
	return vm.objects.get(v.handle).table
}

// tableSet writes key/value into the table value tv, retaining the new
// value and releasing whatever value previously occupied that key.
// Object-bearing keys are compared by reference identity (valuesEqual)
// but are not themselves refcounted by the table; see DESIGN.md for the
// scope note on this simplification.
func (vm *VM) tableSet(tv, key, value Value) *Error {
	if tv.Type() != TypeTable {
		return newError(ErrIndexNonTable, tv.Type().String())
	}
	t := vm.tableOf(tv)
	vm.retainValue(value)
	old := t.set(key, value)
	vm.release(old)
	return nil
}

func (vm *VM) length(v Value) (Value, *Error) {
	switch v.Type() {
	case TypeString:
		return intValue(int64(len(v.AsString()))), nil
	case TypeTable:
		return intValue(int64(vm.tableOf(v).len())), nil
	default:
		return Value{}, newError(ErrArithOnNonNumber, "attempt to get length of a "+v.Type().String()+" value")
	}
}

// doCall implements the CALL opcode's full protocol (spec §4.6),
// including the B==0/C==0 "up to top" conventions.
func (vm *VM) doCall(frame *callFrame, inst Instruction) ([]Value, bool, *Error) {
	a, b, c := inst.ArgA(), inst.ArgB(), inst.ArgC()
	base := frame.base
	fn := vm.registers[base+a]

	var args []Value
	if b == 0 {
		n := vm.frameTop(frame) - (base + a + 1)
		args = append(args, vm.registers[base+a+1:base+a+1+n]...)
	} else {
		args = append(args, vm.registers[base+a+1:base+a+b]...)
	}

	numResults := c - 1 // -1 means MULTIRET when c==0

	results, err := vm.call(fn, args, numResults)
	if err != nil {
		return nil, false, err
	}
	if c == 0 {
		if err := vm.growRegisters(base + a + len(results)); err != nil {
			return nil, false, err
		}
		for i, v := range results {
			vm.installRegister(base+a+i, v)
		}
		vm.setFrameTop(frame, base+a+len(results))
	} else {
		for i := 0; i < numResults; i++ {
			v := Value{}
			if i < len(results) {
				v = results[i]
			}
			vm.installRegister(base+a+i, v)
		}
	}
	return nil, false, nil
}

// doTailCall implements TAILCALL by reusing the current frame (spec
// §4.6): the caller has no more work to do after this call, so the
// callee takes over its stack slot, base, and register window, and the
// interpreter loop simply keeps running with the new closure's code. No
// frame is pushed and no Go-level recursion happens, which is what makes
// unbounded tail recursion run at constant depth. A native callee has no
// frame of its own to take over; it runs through the ordinary native
// path and this frame returns its results directly.
func (vm *VM) doTailCall(frame *callFrame, inst Instruction) ([]Value, bool, *Error) {
	a, b := inst.ArgA(), inst.ArgB()
	base := frame.base
	fn := vm.registers[base+a]

	var args []Value
	if b == 0 {
		n := vm.frameTop(frame) - (base + a + 1)
		args = append(args, vm.registers[base+a+1:base+a+1+n]...)
	} else {
		args = append(args, vm.registers[base+a+1:base+a+b]...)
	}

	if !vm.isCallable(fn) {
		return nil, false, newError(ErrCallNonCallable, fn.Type().String())
	}
	obj := vm.objects.get(fn.handle)
	if obj.kind == objKindNativeClosure {
		results, err := vm.call(fn, args, -1)
		if err != nil {
			return nil, false, err
		}
		res, rerr := vm.unwindReturn(frame, results, -1, -1)
		return res, true, rerr
	}

	proto := obj.script.proto
	if base+int(proto.MaxStackSize) > vm.cfg.maxRegisters {
		return nil, false, newError(ErrStackOverflow, "register stack limit exceeded")
	}

	// The args slices alias this frame's registers; give each value its
	// own reference before the register window is torn down under it.
	for _, v := range args {
		vm.retainValue(v)
	}
	vm.objects.retain(fn.handle)

	vm.closeUpvaluesFrom(base)
	for i := base; i < len(vm.registers); i++ {
		vm.release(vm.registers[i])
	}
	for _, v := range frame.varargs {
		vm.release(v)
	}
	vm.objects.release(frame.closure)
	vm.registers = vm.registers[:base]
	if err := vm.growRegisters(base + int(proto.MaxStackSize)); err != nil {
		return nil, false, err
	}

	np := int(proto.NumParams)
	for i := 0; i < np; i++ {
		if i < len(args) {
			vm.registers[base+i] = args[i]
		}
	}
	var varargs []Value
	if proto.IsVararg && len(args) > np {
		varargs = args[np:]
	} else {
		for i := np; i < len(args); i++ {
			vm.release(args[i])
		}
	}

	frame.closure = fn.handle
	frame.pc = 0
	frame.varargs = varargs
	frame.top = 0
	frame.status |= statusTail
	return nil, false, nil
}

// doReturn implements RETURN.
func (vm *VM) doReturn(frame *callFrame, inst Instruction) ([]Value, bool, *Error) {
	a, b := inst.ArgA(), inst.ArgB()
	base := frame.base
	var results []Value
	var from, to int
	if b == 0 {
		n := vm.frameTop(frame) - (base + a)
		results = append(results, vm.registers[base+a:base+a+n]...)
		from, to = base+a, base+a+n
	} else {
		results = append(results, vm.registers[base+a:base+a+b-1]...)
		from, to = base+a, base+a+b-1
	}
	res, rerr := vm.unwindReturn(frame, results, from, to)
	return res, true, rerr
}

// unwindReturn pops frame (closing any upvalues that still alias its
// registers first), releases every register in its window, and
// truncates/pads results to the count frame's caller originally asked
// for. [resultsFrom, resultsTo) names the sub-range of frame's own
// registers that results was copied out of, if any (RETURN reads its
// results straight from this frame; TAILCALL's come from elsewhere
// entirely, so it passes an empty range): those slots are skipped by the
// release pass, since their one live reference is moving into results
// rather than disappearing with the frame, and retaining them again here
// would leak it the moment results is later installed into a new home.
func (vm *VM) unwindReturn(frame *callFrame, results []Value, resultsFrom, resultsTo int) ([]Value, *Error) {
	numResults := frame.numResults
	vm.closeUpvaluesFrom(frame.base)
	callerBase := frame.base
	for i := callerBase; i < len(vm.registers); i++ {
		if i >= resultsFrom && i < resultsTo {
			continue
		}
		vm.release(vm.registers[i])
	}
	for _, v := range frame.varargs {
		vm.release(v)
	}
	vm.objects.release(frame.closure)
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.registers = vm.registers[:callerBase]
	return vm.adjustResults(results, numResults), nil
}
