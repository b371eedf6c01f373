package quokkalua

import "fmt"

// Kind discriminates the fault shapes listed in spec §7. The VM never
// panics the host process on a recoverable fault; every one of these is
// surfaced as an *Error from the call that triggered it.
type Kind int

const (
	_ Kind = iota
	ErrBadSignature
	ErrBadVersion
	ErrBadFormat
	ErrCorrupt
	ErrBadEndianness
	ErrTruncated
	ErrUnsupportedWidth
	ErrCallNonCallable
	ErrArithOnNonNumber
	ErrOrderOnIncomparable
	ErrConcatOnNonStringable
	ErrIndexNonTable
	ErrStackOverflow
	ErrUpvalueBounds
	ErrConstantBounds
	// ErrNativeFault wraps an error a host-registered native function
	// returned; Unwrap exposes the original.
	ErrNativeFault
)

func (k Kind) String() string {
	switch k {
	case ErrBadSignature:
		return "bad signature"
	case ErrBadVersion:
		return "bad version"
	case ErrBadFormat:
		return "bad format"
	case ErrCorrupt:
		return "corrupt chunk"
	case ErrBadEndianness:
		return "bad endianness"
	case ErrTruncated:
		return "truncated chunk"
	case ErrUnsupportedWidth:
		return "unsupported width"
	case ErrCallNonCallable:
		return "attempt to call a non-function value"
	case ErrArithOnNonNumber:
		return "attempt to perform arithmetic on a non-number value"
	case ErrOrderOnIncomparable:
		return "attempt to compare incompatible values"
	case ErrConcatOnNonStringable:
		return "attempt to concatenate a non-stringable value"
	case ErrIndexNonTable:
		return "attempt to index a non-table value"
	case ErrStackOverflow:
		return "stack overflow"
	case ErrUpvalueBounds:
		return "upvalue index out of bounds"
	case ErrConstantBounds:
		return "constant index out of bounds"
	case ErrNativeFault:
		return "native function fault"
	default:
		return fmt.Sprintf("quokkalua.Kind(%d)", int(k))
	}
}

// Error is the concrete error type every exported VM/loader operation
// returns on failure. It carries a [Kind] so callers can dispatch on the
// fault shape with errors.Is/errors.As instead of matching strings.
type Error struct {
	Kind Kind
	// Detail is a short, kind-specific elaboration (e.g. the offending
	// value's type name, or the byte offset of a truncated read).
	Detail string
	// Err, when non-nil, is a lower-level cause (an io error, say).
	Err error
}

func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same [Kind], so that
// errors.Is(err, &Error{Kind: ErrStackOverflow}) works without callers
// needing to know about Detail/Err.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(k Kind, detail string) *Error {
	return &Error{Kind: k, Detail: detail}
}

func wrapError(k Kind, detail string, err error) *Error {
	return &Error{Kind: k, Detail: detail, Err: err}
}
