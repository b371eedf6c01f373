package quokkalua

// Table is the sequence-of-pairs associative structure described in spec
// §3/§4.4: no hashing, no array part — get and set both linear-scan the
// entry list for the first key that compares equal. This is the teacher's
// gojq never had an analog for (it works over plain Go values); the
// linear-scan-only contract here is mandated by the spec itself rather
// than borrowed from any example, since it is what makes Table's
// iteration order observable and its equality semantics exact.
type Table struct {
	entries []tableEntry
}

type tableEntry struct {
	key   Value
	value Value
}

func newTable() *Table {
	return &Table{}
}

// get returns the value paired with key, or the nil Value if key is
// absent. A nil key never matches, since a pair can never be stored under
// a nil key (set turns that into a delete).
func (t *Table) get(key Value) Value {
	if key.IsNil() {
		return Value{}
	}
	for i := range t.entries {
		if valuesEqual(t.entries[i].key, key) {
			return t.entries[i].value
		}
	}
	return Value{}
}

// set stores value under key, per spec §4.4: assigning nil to an
// existing key removes the pair; assigning nil to an absent key is a
// no-op; assigning a non-nil value to an existing key overwrites it in
// place (preserving its position); assigning a non-nil value to an
// absent key appends a new pair.
//
// set reports the previous value at key (nil Value if none), so the
// caller can release any object reference it held.
func (t *Table) set(key, value Value) Value {
	for i := range t.entries {
		if valuesEqual(t.entries[i].key, key) {
			old := t.entries[i].value
			if value.IsNil() {
				t.entries = append(t.entries[:i], t.entries[i+1:]...)
			} else {
				t.entries[i].value = value
			}
			return old
		}
	}
	if !value.IsNil() {
		t.entries = append(t.entries, tableEntry{key: key, value: value})
	}
	return Value{}
}

// len reports the number of live pairs.
func (t *Table) len() int {
	return len(t.entries)
}
