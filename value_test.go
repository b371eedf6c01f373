package quokkalua

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueTypePredicates(t *testing.T) {
	assert.True(t, (Value{}).IsNil())
	assert.Equal(t, TypeNil, (Value{}).Type())

	i := intValue(7)
	assert.True(t, i.IsInteger())
	assert.False(t, i.IsFloat())
	assert.Equal(t, int64(7), i.AsInteger())

	f := numberValue(1.5)
	assert.True(t, f.IsFloat())
	assert.False(t, f.IsInteger())
	assert.Equal(t, 1.5, f.AsFloat())

	assert.Equal(t, TypeString, stringValue("x").Type())
	assert.Equal(t, "x", stringValue("x").AsString())
}

func TestValueTruthy(t *testing.T) {
	assert.False(t, (Value{}).truthy(), "nil is falsey")
	assert.False(t, boolValue(false).truthy())
	assert.True(t, boolValue(true).truthy())
	assert.True(t, intValue(0).truthy(), "0 is truthy, unlike C-family languages")
	assert.True(t, stringValue("").truthy(), "the empty string is truthy")
}

func TestValuesEqualCrossNumeric(t *testing.T) {
	assert.True(t, valuesEqual(intValue(3), numberValue(3.0)))
	assert.False(t, valuesEqual(intValue(3), numberValue(3.5)))
	assert.True(t, valuesEqual(stringValue("a"), stringValue("a")))
	assert.False(t, valuesEqual(stringValue("a"), stringValue("b")))
	assert.True(t, valuesEqual(Value{}, Value{}))
	assert.False(t, valuesEqual(Value{}, boolValue(false)))
}

func TestValuesEqualByHandleIdentity(t *testing.T) {
	a := tableValue(1)
	b := tableValue(1)
	c := tableValue(2)
	assert.True(t, valuesEqual(a, b))
	assert.False(t, valuesEqual(a, c))
}
