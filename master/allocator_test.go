package master

import (
	"testing"

	"github.com/kvcachestore/master/uuid"
	"github.com/stretchr/testify/require"
)

func TestBufferAllocatorFirstFit(t *testing.T) {
	segID := uuid.New()
	a := NewBufferAllocator(segID, 0, 1024)

	h1 := a.Allocate(256)
	require.NotNil(t, h1)
	require.Equal(t, uint64(0), h1.Offset)
	require.Equal(t, HandleComplete, h1.Status())

	h2 := a.Allocate(256)
	require.NotNil(t, h2)
	require.Equal(t, uint64(256), h2.Offset)

	require.Equal(t, uint64(512), a.UsedBytes())
	require.Equal(t, uint64(512), a.FreeBytes())
}

func TestBufferAllocatorAllocateTooLargeFails(t *testing.T) {
	a := NewBufferAllocator(uuid.New(), 0, 128)
	require.NotNil(t, a.Allocate(128))
	require.Nil(t, a.Allocate(1))
}

func TestBufferAllocatorFreeCoalesces(t *testing.T) {
	a := NewBufferAllocator(uuid.New(), 0, 300)
	h1 := a.Allocate(100)
	h2 := a.Allocate(100)
	h3 := a.Allocate(100)
	require.Equal(t, uint64(0), a.FreeBytes())

	a.Free(h2)
	require.Equal(t, uint64(100), a.FreeBytes())

	// freeing the neighbors should coalesce the whole range back together,
	// making a fresh 300-byte allocation possible again.
	a.Free(h1)
	a.Free(h3)
	require.Equal(t, uint64(300), a.FreeBytes())
	require.NotNil(t, a.Allocate(300))
}

func TestBufferAllocatorFreeUnknownHandleIsNoop(t *testing.T) {
	a := NewBufferAllocator(uuid.New(), 0, 64)
	other := NewBufferAllocator(uuid.New(), 0, 64)
	foreign := other.Allocate(32)

	a.Free(foreign)
	require.Equal(t, uint64(0), a.UsedBytes())
}

func TestBufferAllocatorTeardownInvalidatesLiveHandles(t *testing.T) {
	a := NewBufferAllocator(uuid.New(), 0, 64)
	h := a.Allocate(32)
	require.False(t, h.IsInvalid())

	a.Teardown()
	require.True(t, h.IsInvalid())
	require.Equal(t, uint64(0), a.FreeBytes())
}
