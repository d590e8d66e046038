package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatorAlignsToEight(t *testing.T) {
	a := NewAllocator(NewHostRuntime())
	off, err := a.Alloc(13)
	require.NoError(t, err)
	assert.Equal(t, 0, off)
	off, err = a.Alloc(1)
	require.NoError(t, err)
	assert.Equal(t, 16, off)
	off, err = a.Alloc(40)
	require.NoError(t, err)
	assert.Equal(t, 24, off)

	used, peak := a.Stats()
	assert.Equal(t, 64, used)
	assert.Equal(t, 64, peak)
}

func TestAllocatorFreeAndReuseFirstFit(t *testing.T) {
	a := NewAllocator(NewHostRuntime())

	off1, err := a.Alloc(16) // [0, 16)
	require.NoError(t, err)
	off2, err := a.Alloc(16) // [16, 32)
	require.NoError(t, err)
	off3, err := a.Alloc(16) // [32, 48)
	require.NoError(t, err)

	require.NoError(t, a.Free(off1, 16))
	require.NoError(t, a.Free(off2, 16))
	require.NoError(t, a.Free(off3, 16))

	used, peak := a.Stats()
	assert.Equal(t, 0, used)
	assert.Equal(t, 48, peak)

	// Freeing all three adjacent blocks must coalesce into a single
	// [0, 48) run; a fresh 16-byte request reuses its front by first-fit.
	off, err := a.Alloc(16)
	require.NoError(t, err)
	assert.Equal(t, 0, off)

	usedAfter, peakAfter := a.Stats()
	assert.Equal(t, 16, usedAfter)
	assert.Equal(t, 48, peakAfter, "reusing coalesced space must not grow the arena")
}

func TestAllocatorTailExtend(t *testing.T) {
	a := NewAllocator(NewHostRuntime())

	off1, err := a.Alloc(16) // [0, 16)
	require.NoError(t, err)
	off2, err := a.Alloc(16) // [16, 32)
	require.NoError(t, err)
	_ = off1

	require.NoError(t, a.Free(off2, 16)) // free the highest-offset block, [16, 32)

	// A request larger than the freed tail block must extend the arena
	// past peak rather than bump-allocating a brand-new block at 32.
	off, err := a.Alloc(24)
	require.NoError(t, err)
	assert.Equal(t, 16, off)

	_, peak := a.Stats()
	assert.Equal(t, 40, peak)
}

func TestAllocatorRealizeIsSingleShot(t *testing.T) {
	a := NewAllocator(NewHostRuntime())
	_, err := a.Alloc(8)
	require.NoError(t, err)

	buf, err := a.Realize()
	require.NoError(t, err)
	assert.Len(t, buf, 8)

	assert.Panics(t, func() {
		_, _ = a.Alloc(8)
	}, "Alloc after Realize must panic as a structural violation")
}
