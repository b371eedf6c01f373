package cli

import (
	"bytes"
	"encoding/binary"
	"math"
)

// minimalChunkBytes assembles the smallest valid Lua 5.3 bytecode stream
// that returns the integer literal v, for exercising the CLI end-to-end
// without depending on a real compiler. The layout mirrors the root
// package's own loader tests; duplicated here since cli is a separate
// package and these are test-only bytes, not a runtime dependency.
func minimalChunkBytes(v int64) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x1B, 'L', 'u', 'a'})
	buf.WriteByte(0x53) // version
	buf.WriteByte(0)    // format
	buf.Write([]byte("\x19\x93\r\n\x1a\n"))
	buf.WriteByte(4) // sizeof(int)
	buf.WriteByte(8) // sizeof(size_t)
	buf.WriteByte(4) // sizeof(Instruction)
	buf.WriteByte(8) // sizeof(lua_Integer)
	buf.WriteByte(8) // sizeof(lua_Number)
	binary.Write(&buf, binary.LittleEndian, int64(0x5678))
	binary.Write(&buf, binary.LittleEndian, math.Float64bits(0x77))

	buf.WriteByte(1) // 1 upvalue (the environment)

	writeString(&buf, "test.luac")
	writeInt32(&buf, 0) // LineDefined
	writeInt32(&buf, 0) // LastLineDefined
	buf.WriteByte(0)    // numParams
	buf.WriteByte(0)    // isVararg
	buf.WriteByte(1)    // maxStack

	// LOADK R0, K0; RETURN R0, 2
	// Instruction layout (matching the root package's opcode.go): op in
	// bits [0,6), A in [6,14), then C in [14,23)/B in [23,32) for iABC, or
	// Bx in [14,32) for iABx.
	const opLoadK, opReturn = 1, 38
	loadK := uint32(opLoadK) // A=0, Bx=0
	ret := uint32(opReturn) | uint32(2)<<23 // A=0, B=2, C=0
	writeInt32(&buf, 2)
	binary.Write(&buf, binary.LittleEndian, loadK)
	binary.Write(&buf, binary.LittleEndian, ret)

	writeInt32(&buf, 1) // 1 constant
	buf.WriteByte(0x13) // integer tag
	binary.Write(&buf, binary.LittleEndian, v)

	writeInt32(&buf, 0) // upvalues
	writeInt32(&buf, 0) // functions
	writeInt32(&buf, 0) // lineinfo
	writeInt32(&buf, 0) // localvars
	writeInt32(&buf, 0) // upvalue names

	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, s string) {
	if s == "" {
		buf.WriteByte(0)
		return
	}
	buf.WriteByte(byte(len(s) + 1))
	buf.WriteString(s)
}

func writeInt32(buf *bytes.Buffer, n int) {
	binary.Write(buf, binary.LittleEndian, int32(n))
}
