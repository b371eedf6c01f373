package quokkalua

import "fmt"

// Instruction is one 32-bit bytecode word, laid out exactly as the
// reference Lua 5.3 compiler packs it (spec §4.6 "three fixed operand
// layouts"): a 6-bit opcode in the low bits, then operand fields whose
// meaning depends on the instruction's [OpMode].
//
//	iABC:  op(6) A(8) C(9) B(9)   -- from low bits to high
//	iABx:  op(6) A(8) Bx(18)
//	iAsBx: op(6) A(8) sBx(18), signed with a fixed bias
//	iAx:   op(6) Ax(26)
type Instruction uint32

const (
	sizeOp          = 6
	sizeA           = 8
	sizeB           = 9
	sizeC           = 9
	sizeBx          = sizeB + sizeC
	sizeAx          = sizeA + sizeB + sizeC
	posOp           = 0
	posA            = posOp + sizeOp
	posC            = posA + sizeA
	posB            = posC + sizeC
	posBx           = posC
	posAx           = posA
	maxArgBx        = 1<<sizeBx - 1
	maxArgSBx       = maxArgBx >> 1
	maxArgA         = 1<<sizeA - 1
	maxArgB         = 1<<sizeB - 1
	maxArgC         = 1<<sizeC - 1
	maxArgAx        = 1<<sizeAx - 1
	constantFlagBit = 1 << (sizeB - 1) // top bit of a 9-bit B/C field: operand is a constant-pool index
)

func mask(bits uint) uint32 { return 1<<bits - 1 }

// OpCode returns the 6-bit opcode field.
func (i Instruction) OpCode() OpCode { return OpCode(uint32(i) >> posOp & mask(sizeOp)) }

// ArgA returns the 8-bit A operand, common to every layout.
func (i Instruction) ArgA() int { return int(uint32(i) >> posA & mask(sizeA)) }

// ArgB returns the 9-bit B operand of an iABC instruction.
func (i Instruction) ArgB() int { return int(uint32(i) >> posB & mask(sizeB)) }

// ArgC returns the 9-bit C operand of an iABC instruction.
func (i Instruction) ArgC() int { return int(uint32(i) >> posC & mask(sizeC)) }

// ArgBx returns the unsigned 18-bit Bx operand of an iABx instruction.
func (i Instruction) ArgBx() int { return int(uint32(i) >> posBx & mask(sizeBx)) }

// ArgSBx returns the signed 18-bit sBx operand of an iAsBx instruction,
// removing the encoding bias.
func (i Instruction) ArgSBx() int { return i.ArgBx() - maxArgSBx }

// ArgAx returns the unsigned 26-bit Ax operand of an iAx instruction.
func (i Instruction) ArgAx() int { return int(uint32(i) >> posAx & mask(sizeAx)) }

// isConstant reports whether a raw B/C field denotes a constant-pool
// index rather than a register index (the RK encoding: spec §4.6's "top
// bit of a 9-bit operand flags a constant").
func isConstant(rk int) bool { return rk&constantFlagBit != 0 }

// constantIndex strips the constant flag bit from a raw RK operand.
func constantIndex(rk int) int { return rk &^ constantFlagBit }

// OpMode identifies which of the four operand layouts an [OpCode] uses.
type OpMode int

const (
	modeABC OpMode = iota
	modeABx
	modeAsBx
	modeAx
)

// OpCode enumerates the Lua 5.3 bytecode instruction set, in the exact
// numeric order the reference compiler assigns (spec §4.6). The order
// matters: it is what a loaded chunk's instruction words actually encode.
type OpCode int

const (
	OpMove OpCode = iota
	OpLoadK
	OpLoadKX
	OpLoadBool
	OpLoadNil
	OpGetUpval
	OpGetTabUp
	OpGetTable
	OpSetTabUp
	OpSetUpval
	OpSetTable
	OpNewTable
	OpSelf
	OpAdd
	OpSub
	OpMul
	OpMod
	OpPow
	OpDiv
	OpIDiv
	OpBAnd
	OpBOr
	OpBXor
	OpShl
	OpShr
	OpUnm
	OpBNot
	OpNot
	OpLen
	OpConcat
	OpJmp
	OpEq
	OpLt
	OpLe
	OpTest
	OpTestSet
	OpCall
	OpTailCall
	OpReturn
	OpForLoop
	OpForPrep
	OpTForCall
	OpTForLoop
	OpSetList
	OpClosure
	OpVararg
	OpExtraArg
	opCodeCount
)

var opNames = [opCodeCount]string{
	OpMove: "MOVE", OpLoadK: "LOADK", OpLoadKX: "LOADKX", OpLoadBool: "LOADBOOL",
	OpLoadNil: "LOADNIL", OpGetUpval: "GETUPVAL", OpGetTabUp: "GETTABUP",
	OpGetTable: "GETTABLE", OpSetTabUp: "SETTABUP", OpSetUpval: "SETUPVAL",
	OpSetTable: "SETTABLE", OpNewTable: "NEWTABLE", OpSelf: "SELF",
	OpAdd: "ADD", OpSub: "SUB", OpMul: "MUL", OpMod: "MOD", OpPow: "POW",
	OpDiv: "DIV", OpIDiv: "IDIV", OpBAnd: "BAND", OpBOr: "BOR", OpBXor: "BXOR",
	OpShl: "SHL", OpShr: "SHR", OpUnm: "UNM", OpBNot: "BNOT", OpNot: "NOT",
	OpLen: "LEN", OpConcat: "CONCAT", OpJmp: "JMP", OpEq: "EQ", OpLt: "LT",
	OpLe: "LE", OpTest: "TEST", OpTestSet: "TESTSET", OpCall: "CALL",
	OpTailCall: "TAILCALL", OpReturn: "RETURN", OpForLoop: "FORLOOP",
	OpForPrep: "FORPREP", OpTForCall: "TFORCALL", OpTForLoop: "TFORLOOP",
	OpSetList: "SETLIST", OpClosure: "CLOSURE", OpVararg: "VARARG",
	OpExtraArg: "EXTRAARG",
}

var opModes = [opCodeCount]OpMode{
	OpLoadK: modeABx, OpLoadKX: modeABx, OpJmp: modeAsBx, OpForLoop: modeAsBx,
	OpForPrep: modeAsBx, OpTForLoop: modeAsBx, OpClosure: modeABx, OpExtraArg: modeAx,
}

func (op OpCode) String() string {
	if op < 0 || int(op) >= len(opNames) || opNames[op] == "" {
		return fmt.Sprintf("OpCode(%d)", int(op))
	}
	return opNames[op]
}

// Mode reports which operand layout op uses.
func (op OpCode) Mode() OpMode { return opModes[op] }
