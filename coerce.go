package quokkalua

import (
	"math"
	"strconv"
	"strings"
)

// toNumberValue coerces v to a NUMBER-tagged Value, per spec §3/§9: a
// number coerces to itself; a string coerces if its trimmed content
// parses as a Lua numeral (hex or decimal integer, or a float literal).
// Anything else fails.
func toNumberValue(v Value) (Value, bool) {
	switch v.Type() {
	case TypeNumber:
		return v, true
	case TypeString:
		return parseNumber(v.AsString())
	default:
		return Value{}, false
	}
}

// toInteger coerces v to an exact int64, rejecting any float (or
// numeral-parsed string) that is not exactly representable as an integer
// (spec §9 "reject coercions that are not exactly representable").
func toInteger(v Value) (int64, bool) {
	n, ok := toNumberValue(v)
	if !ok {
		return 0, false
	}
	if n.isInt {
		return n.integer, true
	}
	return floatToExactInteger(n.number)
}

func floatToExactInteger(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	i := int64(f)
	if float64(i) != f {
		return 0, false
	}
	return i, true
}

// toConcatString renders v the way CONCAT does: strings pass through
// unchanged, numbers are formatted, everything else is rejected.
func toConcatString(v Value) (string, bool) {
	switch v.Type() {
	case TypeString:
		return v.AsString(), true
	case TypeNumber:
		if v.isInt {
			return strconv.FormatInt(v.integer, 10), true
		}
		return formatLuaFloat(v.number), true
	default:
		return "", false
	}
}

// formatLuaFloat mirrors the reference implementation's "%.14g" default
// float format, additionally appending ".0" to a result that would
// otherwise look like an integer (Lua always prints floats with a
// decimal point or exponent to keep them visually distinct from
// integers).
func formatLuaFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', 14, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// parseNumber implements the numeral grammar tonumber()/arithmetic
// coercion rely on: optional sign, then either a 0x/0X-prefixed
// hexadecimal integer or a decimal integer/float literal. Leading and
// trailing whitespace is ignored, matching the reference lexer's
// tolerance when coercing strings.
func parseNumber(s string) (Value, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Value{}, false
	}
	neg := false
	rest := s
	if rest[0] == '+' || rest[0] == '-' {
		neg = rest[0] == '-'
		rest = rest[1:]
	}
	if len(rest) > 1 && rest[0] == '0' && (rest[1] == 'x' || rest[1] == 'X') {
		if i, err := strconv.ParseUint(rest[2:], 16, 64); err == nil {
			v := int64(i)
			if neg {
				v = -v
			}
			return intValue(v), true
		}
		return Value{}, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return intValue(i), true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return numberValue(f), true
	}
	return Value{}, false
}
