package quokkalua

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolAllocStartsAtZeroRefcount(t *testing.T) {
	var p pool[int]
	h := p.alloc(42)
	require.Equal(t, 1, p.live())
	assert.Equal(t, 0, p.slots[h].refcount, "alloc grants no implicit ownership")

	// A single release on an un-retained handle frees it immediately,
	// since its refcount was already zero.
	freed := p.release(h)
	assert.True(t, freed)
	assert.Equal(t, 0, p.live())
}

func TestPoolRetainReleaseRoundTrip(t *testing.T) {
	var p pool[string]
	h := p.alloc("hello")
	p.retain(h)
	p.retain(h)
	assert.Equal(t, 2, p.slots[h].refcount)

	assert.False(t, p.release(h), "still one outstanding reference")
	assert.Equal(t, 1, p.live())
	assert.True(t, p.release(h), "last reference dropped")
	assert.Equal(t, 0, p.live())
}

func TestPoolReusesFreedSlots(t *testing.T) {
	var p pool[int]
	h1 := p.alloc(1)
	p.retain(h1)
	h2 := p.alloc(2)
	p.retain(h2)
	require.Equal(t, 2, p.live())

	p.release(h1)
	h3 := p.alloc(3)
	p.retain(h3)
	assert.Equal(t, h1, h3, "the freed slot is reused before the pool grows")
	assert.Equal(t, 2, p.live())
}

func TestPoolGetReflectsLiveValue(t *testing.T) {
	var p pool[int]
	h := p.alloc(10)
	p.retain(h)
	*p.get(h) = 99
	assert.Equal(t, 99, *p.get(h))
}
