package quokkalua

import "unsafe"

// Architecture records the byte-widths and endianness that a bytecode
// chunk's header declares for its numeric encodings (spec §3
// "Architecture descriptor"). It is fixed once a header is read and is
// immutable thereafter; every subsequent read in the chunk consults it.
type Architecture struct {
	// Little reports whether the chunk's multi-byte numerics are
	// little-endian.
	Little bool

	// SizeofInt is the width, in bytes, of the platform "int" used for
	// counts (instruction/constant/upvalue/prototype counts, line
	// numbers).
	SizeofInt uint8
	// SizeofSize is the width, in bytes, of size_t-typed lengths (used
	// by the long-string length prefix).
	SizeofSize uint8
	// SizeofInstruction is the width, in bytes, of one instruction word.
	// The interpreter only supports a width of 4.
	SizeofInstruction uint8
	// SizeofInteger is the width, in bytes, of the language's integer
	// type.
	SizeofInteger uint8
	// SizeofNumber is the width, in bytes, of the language's
	// floating-point number type. The interpreter only supports a width
	// of 8 (IEEE-754 double).
	SizeofNumber uint8
}

// hostArchitecture reports the byte order and widths of the running
// process, which chunk widths are checked against on load.
func hostArchitecture() Architecture {
	var x uint16 = 1
	little := *(*byte)(unsafe.Pointer(&x)) == 1
	return Architecture{
		Little:            little,
		SizeofInt:         4,
		SizeofSize:        8,
		SizeofInstruction: 4,
		SizeofInteger:     8,
		SizeofNumber:      8,
	}
}
