package quokkalua

import "unsafe"

// Type is the tag a [Value] surfaces to script (spec §3, "Tag surfaced to
// script" column). Integers and floats both surface as TypeNumber; which
// one a particular Value holds is an internal distinction consulted only
// by arithmetic (see arithmetic.go).
type Type int

const (
	TypeNil Type = iota
	TypeBoolean
	TypeNumber
	TypeString
	TypeTable
	TypeFunction
	TypeUserData
)

func (t Type) String() string {
	switch t {
	case TypeNil:
		return "nil"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeTable:
		return "table"
	case TypeFunction:
		return "function"
	case TypeUserData:
		return "userdata"
	default:
		return "unknown"
	}
}

// Value is the tagged-union runtime value described in spec §3: every
// Value is the same shape regardless of payload, and copying one clones
// the payload — for an object reference, the copy must be paired with a
// retain of the referenced object (see (*VM).retainValue), since this type
// alone cannot intercept Go's plain struct assignment.
type Value struct {
	tag     Type
	boolean bool
	isInt   bool
	integer int64
	number  float64
	str     string
	handle  int // valid (index into the owning VM's object pool) iff tag is TypeTable or TypeFunction
	light   unsafe.Pointer
}

func boolValue(b bool) Value    { return Value{tag: TypeBoolean, boolean: b} }
func intValue(i int64) Value    { return Value{tag: TypeNumber, isInt: true, integer: i} }
func numberValue(f float64) Value {
	return Value{tag: TypeNumber, number: f}
}
func stringValue(s string) Value { return Value{tag: TypeString, str: s} }
func lightValue(p unsafe.Pointer) Value {
	return Value{tag: TypeUserData, light: p}
}
func tableValue(handle int) Value {
	return Value{tag: TypeTable, handle: handle}
}
func funcValue(handle int) Value {
	return Value{tag: TypeFunction, handle: handle}
}

// Type reports v's surfaced tag.
func (v Value) Type() Type { return v.tag }

// IsNil reports whether v is the nil value.
func (v Value) IsNil() bool { return v.tag == TypeNil }

// IsInteger reports whether v holds the integer variant of NUMBER.
func (v Value) IsInteger() bool { return v.tag == TypeNumber && v.isInt }

// IsFloat reports whether v holds the floating variant of NUMBER.
func (v Value) IsFloat() bool { return v.tag == TypeNumber && !v.isInt }

// AsBool returns v's boolean payload; only meaningful when v.Type() ==
// TypeBoolean.
func (v Value) AsBool() bool { return v.boolean }

// AsInteger returns v's integer payload; only meaningful when
// v.IsInteger().
func (v Value) AsInteger() int64 { return v.integer }

// AsFloat returns v's float payload; only meaningful when v.IsFloat().
func (v Value) AsFloat() float64 { return v.number }

// AsString returns v's string payload; only meaningful when v.Type() ==
// TypeString.
func (v Value) AsString() string { return v.str }

// truthy implements Lua's "falsey" rule (spec §3): everything is truthy
// except nil and the boolean false.
func (v Value) truthy() bool {
	return !(v.tag == TypeNil || (v.tag == TypeBoolean && !v.boolean))
}

// valuesEqual implements the key-equality rule of spec §3: by value for
// nil/bool/integer/number/string (with cross-numeric int/float
// comparison), by reference identity (same pool handle) for table/
// function values.
func valuesEqual(a, b Value) bool {
	if a.tag == TypeNumber && b.tag == TypeNumber {
		if a.isInt && b.isInt {
			return a.integer == b.integer
		}
		return a.numberAsFloat() == b.numberAsFloat()
	}
	if a.tag != b.tag {
		return false
	}
	switch a.tag {
	case TypeNil:
		return true
	case TypeBoolean:
		return a.boolean == b.boolean
	case TypeString:
		return a.str == b.str
	case TypeTable, TypeFunction:
		return a.handle == b.handle
	case TypeUserData:
		return a.light == b.light
	default:
		return false
	}
}

func (v Value) numberAsFloat() float64 {
	if v.isInt {
		return float64(v.integer)
	}
	return v.number
}

// isObject reports whether v holds a reference into the VM's object
// pool, i.e. needs a retain/release pair when copied/discarded.
func (v Value) isObject() bool {
	return v.tag == TypeTable || v.tag == TypeFunction
}
