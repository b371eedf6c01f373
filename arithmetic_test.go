package quokkalua

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithIntegerStaysInteger(t *testing.T) {
	v, err := arith(OpAdd, intValue(2), intValue(3))
	require.Nil(t, err)
	assert.True(t, v.IsInteger())
	assert.Equal(t, int64(5), v.AsInteger())
}

func TestArithMixedPromotesToFloat(t *testing.T) {
	v, err := arith(OpAdd, intValue(2), numberValue(1.5))
	require.Nil(t, err)
	assert.True(t, v.IsFloat())
	assert.Equal(t, 3.5, v.AsFloat())
}

func TestArithDivAlwaysFloat(t *testing.T) {
	v, err := arith(OpDiv, intValue(6), intValue(3))
	require.Nil(t, err)
	assert.True(t, v.IsFloat(), "DIV always produces a float, even on integer operands")
	assert.Equal(t, 2.0, v.AsFloat())
}

func TestArithIntegerDivisionByZeroErrors(t *testing.T) {
	_, err := arith(OpIDiv, intValue(1), intValue(0))
	require.NotNil(t, err)
	assert.Equal(t, ErrArithOnNonNumber, err.Kind)
}

func TestArithModSignFollowsDivisor(t *testing.T) {
	v, err := arith(OpMod, intValue(-5), intValue(3))
	require.Nil(t, err)
	assert.Equal(t, int64(1), v.AsInteger(), "Lua modulo takes the divisor's sign")

	v, err = arith(OpMod, intValue(5), intValue(-3))
	require.Nil(t, err)
	assert.Equal(t, int64(-1), v.AsInteger())
}

func TestArithStringCoercion(t *testing.T) {
	v, err := arith(OpAdd, stringValue("2"), intValue(3))
	require.Nil(t, err)
	assert.Equal(t, int64(5), v.AsInteger())
}

func TestArithNonNumberErrors(t *testing.T) {
	_, err := arith(OpAdd, boolValue(true), intValue(1))
	require.NotNil(t, err)
	assert.Equal(t, ErrArithOnNonNumber, err.Kind)
}

func TestLessThanOrdering(t *testing.T) {
	lt, err := lessThan(intValue(1), numberValue(2.0))
	require.Nil(t, err)
	assert.True(t, lt)

	lt, err = lessThan(stringValue("a"), stringValue("b"))
	require.Nil(t, err)
	assert.True(t, lt)

	_, err = lessThan(intValue(1), stringValue("a"))
	require.NotNil(t, err)
	assert.Equal(t, ErrOrderOnIncomparable, err.Kind)
}

func TestConcatValues(t *testing.T) {
	v, err := concatValues(stringValue("a"), stringValue("b"))
	require.Nil(t, err)
	assert.Equal(t, "ab", v.AsString())

	_, err = concatValues(boolValue(true), stringValue("b"))
	require.NotNil(t, err)
	assert.Equal(t, ErrConcatOnNonStringable, err.Kind)
}

func TestShiftLeftLargeCountsProduceZero(t *testing.T) {
	assert.Equal(t, int64(0), shiftLeft(1, 64))
	assert.Equal(t, int64(0), shiftLeft(1, -64))
}

func TestArithIntegerOverflowWraps(t *testing.T) {
	v, err := arith(OpAdd, intValue(math.MaxInt64), intValue(1))
	require.Nil(t, err)
	assert.Equal(t, int64(math.MinInt64), v.AsInteger(), "integer arithmetic wraps two's-complement")

	v, err = arith(OpMul, intValue(math.MaxInt64), intValue(2))
	require.Nil(t, err)
	assert.Equal(t, int64(-2), v.AsInteger())
}
