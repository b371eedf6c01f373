package quokkalua

import "math"

// arith evaluates one of the binary arithmetic/bitwise opcodes against
// two already-resolved operands (spec §4.7 "Arithmetic and bitwise
// operators"). Operands that are strings are first coerced through
// toNumberValue; anything else that isn't a number is rejected.
//
// ADD/SUB/MUL/IDIV and the bitwise family stay integer when both
// operands are integers (wrapping on overflow, per two's-complement
// arithmetic); any float operand promotes the whole operation to float.
// DIV and POW always produce a float, matching the reference
// implementation's choice that these two are inherently "real" division.
func arith(op OpCode, a, b Value) (Value, *Error) {
	switch op {
	case OpBAnd, OpBOr, OpBXor, OpShl, OpShr:
		ai, aok := toInteger(a)
		bi, bok := toInteger(b)
		if !aok || !bok {
			return Value{}, newError(ErrArithOnNonNumber, "number has no integer representation")
		}
		return intValue(bitwise(op, ai, bi)), nil
	}

	na, aok := toNumberValue(a)
	nb, bok := toNumberValue(b)
	if !aok || !bok {
		return Value{}, newError(ErrArithOnNonNumber, nonNumberOperand(a, b).Type().String())
	}

	switch op {
	case OpDiv:
		return numberValue(na.numberAsFloat() / nb.numberAsFloat()), nil
	case OpPow:
		return numberValue(math.Pow(na.numberAsFloat(), nb.numberAsFloat())), nil
	}

	if na.isInt && nb.isInt {
		x, y := na.integer, nb.integer
		switch op {
		case OpAdd:
			return intValue(x + y), nil
		case OpSub:
			return intValue(x - y), nil
		case OpMul:
			return intValue(x * y), nil
		case OpMod:
			if y == 0 {
				return Value{}, newError(ErrArithOnNonNumber, "attempt to perform 'n%%0'")
			}
			return intValue(integerMod(x, y)), nil
		case OpIDiv:
			if y == 0 {
				return Value{}, newError(ErrArithOnNonNumber, "attempt to perform 'n//0'")
			}
			return intValue(integerFloorDiv(x, y)), nil
		}
	}

	x, y := na.numberAsFloat(), nb.numberAsFloat()
	switch op {
	case OpAdd:
		return numberValue(x + y), nil
	case OpSub:
		return numberValue(x - y), nil
	case OpMul:
		return numberValue(x * y), nil
	case OpMod:
		m := math.Mod(x, y)
		if m != 0 && (m < 0) != (y < 0) {
			m += y
		}
		return numberValue(m), nil
	case OpIDiv:
		return numberValue(math.Floor(x / y)), nil
	}
	panic("unreachable arith opcode")
}

func nonNumberOperand(a, b Value) Value {
	if _, ok := toNumberValue(a); !ok {
		return a
	}
	return b
}

func integerMod(x, y int64) int64 {
	m := x % y
	if m != 0 && (m < 0) != (y < 0) {
		m += y
	}
	return m
}

func integerFloorDiv(x, y int64) int64 {
	q := x / y
	if (x%y != 0) && ((x < 0) != (y < 0)) {
		q--
	}
	return q
}

func bitwise(op OpCode, a, b int64) int64 {
	switch op {
	case OpBAnd:
		return a & b
	case OpBOr:
		return a | b
	case OpBXor:
		return a ^ b
	case OpShl:
		return shiftLeft(a, b)
	case OpShr:
		return shiftLeft(a, -b)
	}
	panic("unreachable bitwise opcode")
}

// shiftLeft implements Lua's shift semantics: a negative count shifts in
// the other direction, and a count with absolute value >= 64 produces 0
// (no operand-width masking, unlike Go's native shifts).
func shiftLeft(a, n int64) int64 {
	if n <= -64 || n >= 64 {
		return 0
	}
	if n >= 0 {
		return int64(uint64(a) << uint(n))
	}
	return int64(uint64(a) >> uint(-n))
}

func arithUnm(v Value) (Value, *Error) {
	n, ok := toNumberValue(v)
	if !ok {
		return Value{}, newError(ErrArithOnNonNumber, v.Type().String())
	}
	if n.isInt {
		return intValue(-n.integer), nil
	}
	return numberValue(-n.number), nil
}

func arithBNot(v Value) (Value, *Error) {
	i, ok := toInteger(v)
	if !ok {
		return Value{}, newError(ErrArithOnNonNumber, "number has no integer representation")
	}
	return intValue(^i), nil
}

// lessThan implements spec §4.7's order comparison: numeric operands
// compare by value across int/float; string operands compare
// lexicographically by byte; anything else is incomparable.
func lessThan(a, b Value) (bool, *Error) {
	if a.Type() == TypeNumber && b.Type() == TypeNumber {
		if a.isInt && b.isInt {
			return a.integer < b.integer, nil
		}
		return a.numberAsFloat() < b.numberAsFloat(), nil
	}
	if a.Type() == TypeString && b.Type() == TypeString {
		return a.str < b.str, nil
	}
	return false, newError(ErrOrderOnIncomparable, a.Type().String()+" with "+b.Type().String())
}

func lessEqual(a, b Value) (bool, *Error) {
	if a.Type() == TypeNumber && b.Type() == TypeNumber {
		if a.isInt && b.isInt {
			return a.integer <= b.integer, nil
		}
		return a.numberAsFloat() <= b.numberAsFloat(), nil
	}
	if a.Type() == TypeString && b.Type() == TypeString {
		return a.str <= b.str, nil
	}
	return false, newError(ErrOrderOnIncomparable, a.Type().String()+" with "+b.Type().String())
}

// concatValues implements CONCAT's per-pair rule: both operands must be
// a string or a number (numbers are formatted, not just rejected), per
// spec §4.7.
func concatValues(a, b Value) (Value, *Error) {
	as, ok := toConcatString(a)
	if !ok {
		return Value{}, newError(ErrConcatOnNonStringable, a.Type().String())
	}
	bs, ok := toConcatString(b)
	if !ok {
		return Value{}, newError(ErrConcatOnNonStringable, b.Type().String())
	}
	return stringValue(as + bs), nil
}

// forLoopContinues implements FORLOOP's termination test: ascending
// loops (step >= 0) continue while the counter is <= limit; descending
// loops continue while it is >= limit.
func forLoopContinues(counter, limit, step Value) (bool, *Error) {
	stepNeg := (step.isInt && step.integer < 0) || (!step.isInt && step.number < 0)
	if stepNeg {
		return lessEqual(limit, counter)
	}
	return lessEqual(counter, limit)
}
