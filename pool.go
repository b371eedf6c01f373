package quokkalua

// pool is the generic slot arena backing both the object pool (tables and
// closures) and the upvalue pool (spec §4.3): allocation hands out an
// opaque handle (the slot index) that ref-counts the entry, starting at
// zero references; retain bumps the count; release drops it and, on
// reaching zero, clears and frees the slot for reuse. Every owner of a
// handle — a register, a table entry, a closure's upvalue list, a VM
// field — must call retain explicitly when it takes up ownership; alloc
// itself grants none. Slots are reused from the first unoccupied position
// (linear scan) before the backing slice grows, so a long-running VM that
// allocates and drops in a steady pattern keeps a bounded table/closure
// footprint rather than growing without bound.
//
// This generalizes the free-slot-reuse idea in the teacher's environment
// frame handling (itchyny/gojq reuses freed stack indices rather than
// growing without bound), adding an explicit refcount per slot since this
// pool's entries are shared by reference (an upvalue alias, or a table/
// closure value copied onto several registers) rather than owned
// exclusively by one frame.
type pool[T any] struct {
	slots []poolSlot[T]
}

type poolSlot[T any] struct {
	value    T
	refcount int
	// gen increments each time the slot is freed, so a stale handle
	// paired with a remembered generation (the closure cache, a debug
	// assertion) can detect that its slot has since been reused.
	gen      uint32
	occupied bool
}

// alloc stores v in the first free slot (or a newly grown one) with a
// refcount of zero, and returns its handle. The caller must retain it
// once on behalf of whatever will own it first.
func (p *pool[T]) alloc(v T) int {
	for i := range p.slots {
		if !p.slots[i].occupied {
			p.slots[i] = poolSlot[T]{value: v, gen: p.slots[i].gen, occupied: true}
			return i
		}
	}
	p.slots = append(p.slots, poolSlot[T]{value: v, occupied: true})
	return len(p.slots) - 1
}

// get returns a pointer to the live value at handle. Callers must only
// pass handles obtained from alloc on this same pool while still live.
func (p *pool[T]) get(handle int) *T {
	return &p.slots[handle].value
}

// retain bumps handle's refcount, recording a new outstanding reference
// (e.g. a Value copy, or a second upvalue descriptor aliasing the same
// open upvalue).
func (p *pool[T]) retain(handle int) {
	p.slots[handle].refcount++
}

// release drops handle's refcount and, if it reaches zero, clears the
// slot's payload and marks it free for the next alloc. Reports whether
// the slot was freed.
func (p *pool[T]) release(handle int) bool {
	p.slots[handle].refcount--
	if p.slots[handle].refcount > 0 {
		return false
	}
	var zero T
	p.slots[handle] = poolSlot[T]{value: zero, gen: p.slots[handle].gen + 1}
	return true
}

// generation reports handle's current slot generation; it changes
// whenever the slot is freed, invalidating any remembered pairing of
// handle and generation.
func (p *pool[T]) generation(handle int) uint32 {
	return p.slots[handle].gen
}

// live reports the number of currently occupied slots, for diagnostics
// and tests.
func (p *pool[T]) live() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].occupied {
			n++
		}
	}
	return n
}
