package quokkalua

import "fmt"

// Signature, version, and format bytes a chunk must carry (spec §4.2).
var (
	chunkSignature = []byte{0x1B, 'L', 'u', 'a'}
	chunkDataCheck = []byte("\x19\x93\r\n\x1a\n")
)

const (
	chunkVersion byte = 0x53
	chunkFormat  byte = 0
)

// sentinel values used to detect endianness (spec §4.2 item 5): a Lua
// integer 0x5678 and a Lua number 0x77.0, both written by the reference
// compiler in the chunk's own declared encoding immediately after the
// architecture descriptor's five width bytes.
const (
	sentinelInteger int64   = 0x5678
	sentinelNumber  float64 = 0x77
)

// Load parses a complete bytecode chunk from s, following spec §4.2:
// header validation, then a recursive descent over the root function
// prototype (and, transitively, every nested prototype it owns).
func Load(s []byte) (chunk *Chunk, lerr error) {
	// A malformed count (a negative one, say) can make a slice allocation
	// panic; report it as a corrupt chunk instead of aborting the host.
	defer func() {
		if p := recover(); p != nil {
			chunk, lerr = nil, wrapError(ErrCorrupt, "internal fault", fmt.Errorf("%v", p))
		}
	}()
	r := newReader(s)

	if !r.literal(chunkSignature) {
		return nil, newError(ErrBadSignature, "")
	}
	version, ok := r.readByte()
	if !ok {
		return nil, newError(ErrTruncated, "version")
	}
	if version != chunkVersion {
		return nil, newError(ErrBadVersion, "")
	}
	format, ok := r.readByte()
	if !ok {
		return nil, newError(ErrTruncated, "format")
	}
	if format != chunkFormat {
		return nil, newError(ErrBadFormat, "")
	}
	if !r.literal(chunkDataCheck) {
		return nil, newError(ErrCorrupt, "data check")
	}

	arch, err := readArchitecture(r)
	if err != nil {
		return nil, err
	}
	r.arch = arch

	if err := verifyEndianness(r); err != nil {
		return nil, err
	}

	numUpvalues, ok := r.readByte()
	if !ok {
		return nil, newError(ErrTruncated, "num upvalues")
	}

	root := new(Prototype)
	if err := loadPrototype(root, r, ""); err != nil {
		return nil, err
	}

	return &Chunk{
		Header: Header{
			Version:      version,
			Format:       format,
			Architecture: arch,
		},
		NumUpvalues: numUpvalues,
		Root:        root,
	}, nil
}

func readArchitecture(r *reader) (Architecture, *Error) {
	var arch Architecture
	widths := []*uint8{
		&arch.SizeofInt,
		&arch.SizeofSize,
		&arch.SizeofInstruction,
		&arch.SizeofInteger,
		&arch.SizeofNumber,
	}
	for _, w := range widths {
		b, ok := r.readByte()
		if !ok {
			return arch, newError(ErrTruncated, "architecture")
		}
		*w = b
	}
	return arch, nil
}

// verifyEndianness reads the sentinel integer and number using, in turn,
// a little-endian and a big-endian interpretation of r.arch, keeping
// whichever matches the expected decimal values. If neither
// interpretation produces both sentinels exactly, the chunk is rejected
// as BytecodeBadEndianness (spec §4.2 item 5).
func verifyEndianness(r *reader) *Error {
	for _, little := range [...]bool{true, false} {
		probe := *r
		probe.arch.Little = little
		i, ierr := probe.readSigned(probe.arch.SizeofInteger)
		if ierr != nil {
			continue
		}
		if i != sentinelInteger {
			continue
		}
		if probe.arch.SizeofNumber != 8 {
			continue
		}
		n, nerr := probe.readLuaNumber()
		if nerr != nil {
			continue
		}
		if n != sentinelNumber {
			continue
		}
		*r = probe
		r.arch.Little = little
		return nil
	}
	return newError(ErrBadEndianness, "")
}

// loadPrototype parses one function prototype in the order spec §4.2
// lists: source, line range, parameter/vararg/stack-size metadata, code,
// constants, upvalues, nested prototypes (recursively), then
// stream-position-only debug information.
func loadPrototype(f *Prototype, r *reader, parentSource string) *Error {
	source, err := r.readString()
	if err != nil {
		return err
	}
	if source == "" {
		source = parentSource
	}
	f.Source = source

	if f.LineDefined, err = r.readPlatformInt(); err != nil {
		return err
	}
	if f.LastLineDefined, err = r.readPlatformInt(); err != nil {
		return err
	}

	numParams, ok := r.readByte()
	if !ok {
		return newError(ErrTruncated, "num params")
	}
	f.NumParams = numParams

	isVararg, ok := r.readByte()
	if !ok {
		return newError(ErrTruncated, "is vararg")
	}
	f.IsVararg = isVararg != 0

	maxStack, ok := r.readByte()
	if !ok {
		return newError(ErrTruncated, "max stack size")
	}
	f.MaxStackSize = maxStack

	// Code.
	n, err := r.readPlatformInt()
	if err != nil {
		return err
	}
	f.Code = make([]Instruction, n)
	for i := range f.Code {
		if f.Code[i], err = r.readInstruction(); err != nil {
			return err
		}
	}

	// Constants.
	if n, err = r.readPlatformInt(); err != nil {
		return err
	}
	f.Constants = make([]Constant, n)
	for i := range f.Constants {
		rawTag, ok := r.readByte()
		if !ok {
			return newError(ErrTruncated, "constant tag")
		}
		if err := loadConstant(&f.Constants[i], rawTag, r); err != nil {
			return err
		}
	}

	// Upvalues.
	if n, err = r.readPlatformInt(); err != nil {
		return err
	}
	f.Upvalues = make([]UpvalueDescriptor, n)
	for i := range f.Upvalues {
		inStack, ok := r.readByte()
		if !ok {
			return newError(ErrTruncated, "upvalue in_stack")
		}
		index, ok := r.readByte()
		if !ok {
			return newError(ErrTruncated, "upvalue index")
		}
		f.Upvalues[i].InStack = inStack != 0
		f.Upvalues[i].Index = index
	}

	// Nested prototypes.
	if n, err = r.readPlatformInt(); err != nil {
		return err
	}
	f.Functions = make([]*Prototype, n)
	for i := range f.Functions {
		child := new(Prototype)
		if err := loadPrototype(child, r, f.Source); err != nil {
			return err
		}
		f.Functions[i] = child
	}

	return loadDebugInfo(f, r)
}

// Raw (unmasked) constant tag bytes, as written by the reference
// compiler. The low nibble alone (spec §3's "Tag surfaced to script")
// collapses LUA_TNUMFLT/LUA_TNUMINT to one NUMBER category and
// LUA_TSHRSTR/LUA_TLNGSTR to one STRING category — that masked form is
// what a runtime [Value] surfaces via its [Type], but the loader needs
// the unmasked byte here to know which payload to read.
const (
	constTagNil      byte = 0x00
	constTagBoolean  byte = 0x01
	constTagFloat    byte = 0x03
	constTagInteger  byte = 0x13
	constTagShortStr byte = 0x04
	constTagLongStr  byte = 0x14
)

func loadConstant(c *Constant, tag byte, r *reader) *Error {
	switch tag {
	case constTagNil:
		c.Tag = ConstantNil
	case constTagBoolean:
		b, ok := r.readByte()
		if !ok {
			return newError(ErrTruncated, "boolean constant")
		}
		c.Tag = ConstantBoolean
		c.Boolean = b != 0
	case constTagFloat:
		n, err := r.readLuaNumber()
		if err != nil {
			return err
		}
		c.Tag = ConstantNumber
		c.Number = n
	case constTagInteger:
		n, err := r.readLuaInteger()
		if err != nil {
			return err
		}
		c.Tag = ConstantInteger
		c.Integer = n
	case constTagShortStr, constTagLongStr:
		s, err := r.readString()
		if err != nil {
			return err
		}
		c.Tag = ConstantString
		c.String = s
	default:
		return newError(ErrCorrupt, "unknown constant tag")
	}
	return nil
}

// loadDebugInfo parses line-info, local-variable, and upvalue-name
// records purely to keep the stream position correct (spec §4.2 item 8);
// none of it is retained beyond the disassembler-friendly fields already
// on Prototype.
func loadDebugInfo(f *Prototype, r *reader) *Error {
	n, err := r.readPlatformInt()
	if err != nil {
		return err
	}
	f.LineInfo = make([]int, n)
	for i := range f.LineInfo {
		if f.LineInfo[i], err = r.readPlatformInt(); err != nil {
			return err
		}
	}

	if n, err = r.readPlatformInt(); err != nil {
		return err
	}
	f.LocalVariables = make([]LocalVariable, n)
	for i := range f.LocalVariables {
		name, err := r.readString()
		if err != nil {
			return err
		}
		start, err := r.readPlatformInt()
		if err != nil {
			return err
		}
		end, err := r.readPlatformInt()
		if err != nil {
			return err
		}
		f.LocalVariables[i] = LocalVariable{Name: name, StartPC: start, EndPC: end}
	}

	if n, err = r.readPlatformInt(); err != nil {
		return err
	}
	if n != 0 && n != len(f.Upvalues) {
		return newError(ErrCorrupt, "upvalue name count mismatch")
	}
	for i := 0; i < n; i++ {
		name, err := r.readString()
		if err != nil {
			return err
		}
		f.Upvalues[i].Name = name
	}

	return nil
}
