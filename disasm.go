package quokkalua

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"
)

// Disassemble renders a human-readable instruction listing for proto
// and, recursively, every nested prototype it owns. It is meant for
// debugging a loaded chunk, not for anything the interpreter itself
// consults.
func Disassemble(proto *Prototype, w io.Writer) {
	disassemble(w, proto, 0)
}

// String renders the prototype as its disassembly listing.
func (p *Prototype) String() string {
	var b strings.Builder
	Disassemble(p, &b)
	return b.String()
}

func disassemble(w io.Writer, proto *Prototype, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(w, "%sfunction <%s:%d,%d> (%d instructions, %d params%s)\n",
		indent, proto.Source, proto.LineDefined, proto.LastLineDefined,
		len(proto.Code), proto.NumParams, varargSuffix(proto))

	for pc, inst := range proto.Code {
		line := "-"
		if pc < len(proto.LineInfo) {
			line = fmt.Sprintf("%d", proto.LineInfo[pc])
		}
		opCol := padRight(inst.OpCode().String(), 10)
		fmt.Fprintf(w, "%s\t%d\t[%s]\t%s\t%s%s\n",
			indent, pc+1, line, opCol, formatOperands(inst), annotateConstants(proto, inst))
	}

	for _, child := range proto.Functions {
		disassemble(w, child, depth+1)
	}
}

func varargSuffix(proto *Prototype) string {
	if proto.IsVararg {
		return ", vararg"
	}
	return ""
}

// padRight right-pads s with spaces to at least width display columns,
// measuring width with go-runewidth so multi-byte opcode mnemonics (none
// exist today, but host-registered names might appear in annotations)
// still line up in a monospaced terminal.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func formatOperands(inst Instruction) string {
	switch inst.OpCode().Mode() {
	case modeABC:
		return fmt.Sprintf("A=%d B=%d C=%d", inst.ArgA(), inst.ArgB(), inst.ArgC())
	case modeABx:
		return fmt.Sprintf("A=%d Bx=%d", inst.ArgA(), inst.ArgBx())
	case modeAsBx:
		return fmt.Sprintf("A=%d sBx=%d", inst.ArgA(), inst.ArgSBx())
	case modeAx:
		return fmt.Sprintf("Ax=%d", inst.ArgAx())
	default:
		return ""
	}
}

// annotateConstants appends the resolved constant values an instruction's
// operands refer to, mirroring what luac -l prints after its ';' column.
// LOADK's Bx is always a constant index; for iABC opcodes, B or C
// contribute only when their constant flag bit is set.
func annotateConstants(proto *Prototype, inst Instruction) string {
	var refs []int
	switch inst.OpCode() {
	case OpLoadK:
		refs = append(refs, inst.ArgBx())
	default:
		if inst.OpCode().Mode() != modeABC {
			return ""
		}
		for _, arg := range [...]int{inst.ArgB(), inst.ArgC()} {
			if isConstant(arg) {
				refs = append(refs, constantIndex(arg))
			}
		}
	}
	var parts []string
	for _, i := range refs {
		if i < len(proto.Constants) {
			parts = append(parts, constantString(proto.Constants[i]))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "\t; " + strings.Join(parts, " ")
}

func constantString(c Constant) string {
	switch c.Tag {
	case ConstantNil:
		return "nil"
	case ConstantBoolean:
		return strconv.FormatBool(c.Boolean)
	case ConstantInteger:
		return strconv.FormatInt(c.Integer, 10)
	case ConstantNumber:
		return formatLuaFloat(c.Number)
	case ConstantString:
		return strconv.Quote(c.String)
	default:
		return "?"
	}
}
