package master

import (
	"testing"

	"github.com/kvcachestore/master/uuid"
	"github.com/stretchr/testify/require"
)

func viewsOf(t *testing.T, allocs ...*BufferAllocator) []AllocatorView {
	t.Helper()
	views := make([]AllocatorView, 0, len(allocs))
	for i, a := range allocs {
		views = append(views, AllocatorView{SegmentID: a.SegmentID(), Name: []string{"a", "b", "c"}[i%3], Allocator: a})
	}
	return views
}

func TestAllocationStrategySkipsTooSmall(t *testing.T) {
	small := NewBufferAllocator(uuid.New(), 0, 16)
	big := NewBufferAllocator(uuid.New(), 0, 1024)
	strat := NewRandomAllocationStrategy()

	handle := strat.Allocate(viewsOf(t, small, big), 512, ReplicateConfig{}, map[uuid.UUID]struct{}{})
	require.NotNil(t, handle)
	require.Equal(t, big.SegmentID(), handle.SegmentID)
}

func TestAllocationStrategyHonorsPreferredSegments(t *testing.T) {
	a := NewBufferAllocator(uuid.New(), 0, 1024)
	b := NewBufferAllocator(uuid.New(), 0, 1024)
	views := []AllocatorView{
		{SegmentID: a.SegmentID(), Name: "seg-a", Allocator: a},
		{SegmentID: b.SegmentID(), Name: "seg-b", Allocator: b},
	}
	strat := NewRandomAllocationStrategy()

	for i := 0; i < 20; i++ {
		handle := strat.Allocate(views, 16, ReplicateConfig{PreferredSegments: []string{"seg-a"}}, map[uuid.UUID]struct{}{})
		require.NotNil(t, handle)
		require.Equal(t, a.SegmentID(), handle.SegmentID)
	}
}

func TestAllocationStrategyPrefersFreshSegments(t *testing.T) {
	a := NewBufferAllocator(uuid.New(), 0, 1024)
	b := NewBufferAllocator(uuid.New(), 0, 1024)
	views := []AllocatorView{
		{SegmentID: a.SegmentID(), Name: "seg-a", Allocator: a},
		{SegmentID: b.SegmentID(), Name: "seg-b", Allocator: b},
	}
	strat := NewRandomAllocationStrategy()

	for i := 0; i < 20; i++ {
		// Allocate records the segment it picks in used, so each trial
		// starts from a map holding only a.
		used := map[uuid.UUID]struct{}{a.SegmentID(): {}}
		handle := strat.Allocate(views, 16, ReplicateConfig{}, used)
		require.NotNil(t, handle)
		require.Equal(t, b.SegmentID(), handle.SegmentID)
		b.Free(handle)
	}
}

func TestAllocationStrategyReturnsNilWhenNothingEligible(t *testing.T) {
	a := NewBufferAllocator(uuid.New(), 0, 8)
	strat := NewRandomAllocationStrategy()
	handle := strat.Allocate(viewsOf(t, a), 1024, ReplicateConfig{}, map[uuid.UUID]struct{}{})
	require.Nil(t, handle)
}
