package master

import (
	"testing"

	apierrors "github.com/kvcachestore/master/errors"
	"github.com/kvcachestore/master/uuid"
	"github.com/stretchr/testify/require"
)

func TestMountSegmentIsIdempotent(t *testing.T) {
	m := NewSegmentManager()
	client := uuid.New()
	seg := Segment{ID: uuid.New(), Name: "seg-a", Base: 0, Size: 1024}

	require.NoError(t, m.MountSegment(seg, client))
	require.NoError(t, m.MountSegment(seg, client))
	require.Equal(t, []string{"seg-a"}, m.GetAllSegments())
}

func TestUnmountSegmentTwoPhase(t *testing.T) {
	m := NewSegmentManager()
	client := uuid.New()
	seg := Segment{ID: uuid.New(), Name: "seg-a", Base: 0, Size: 1024}
	require.NoError(t, m.MountSegment(seg, client))

	var handle *AllocatedBuffer
	m.withAllocators(func(views []AllocatorView) {
		require.Len(t, views, 1)
		handle = views[0].Allocator.Allocate(64)
	})
	require.NotNil(t, handle)

	decCapacity, found, err := m.PrepareUnmountSegment(seg.ID, client)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, uint64(1024), decCapacity)
	require.True(t, handle.IsInvalid())

	// after Prepare, the allocator is gone from the active table
	m.withAllocators(func(views []AllocatorView) {
		require.Len(t, views, 0)
	})

	require.NoError(t, m.CommitUnmountSegment(seg.ID, client))
	require.Empty(t, m.GetAllSegments())
}

func TestPrepareUnmountSegmentWrongClient(t *testing.T) {
	m := NewSegmentManager()
	owner := uuid.New()
	other := uuid.New()
	seg := Segment{ID: uuid.New(), Name: "seg-a", Base: 0, Size: 128}
	require.NoError(t, m.MountSegment(seg, owner))

	_, found, err := m.PrepareUnmountSegment(seg.ID, other)
	require.True(t, found)
	require.ErrorIs(t, err, apierrors.ErrSegmentNotFound)
}

func TestPrepareUnmountSegmentMissingIsIdempotent(t *testing.T) {
	m := NewSegmentManager()
	_, found, err := m.PrepareUnmountSegment(uuid.New(), uuid.New())
	require.NoError(t, err)
	require.False(t, found)
}

func TestFreeHandleAfterUnmountIsNoop(t *testing.T) {
	m := NewSegmentManager()
	client := uuid.New()
	seg := Segment{ID: uuid.New(), Name: "seg-a", Base: 0, Size: 128}
	require.NoError(t, m.MountSegment(seg, client))

	var handle *AllocatedBuffer
	m.withAllocators(func(views []AllocatorView) {
		handle = views[0].Allocator.Allocate(32)
	})

	_, _, err := m.PrepareUnmountSegment(seg.ID, client)
	require.NoError(t, err)

	// FreeHandle on an already-torn-down segment must not panic.
	m.FreeHandle(handle)
}

func TestQuerySegmentsUnknownName(t *testing.T) {
	m := NewSegmentManager()
	_, _, err := m.QuerySegments("does-not-exist")
	require.ErrorIs(t, err, apierrors.ErrSegmentNotFound)
}

func TestGetClientSegments(t *testing.T) {
	m := NewSegmentManager()
	client := uuid.New()
	segA := Segment{ID: uuid.New(), Name: "a", Base: 0, Size: 64}
	segB := Segment{ID: uuid.New(), Name: "b", Base: 64, Size: 64}
	require.NoError(t, m.MountSegment(segA, client))
	require.NoError(t, m.MountSegment(segB, client))

	got := m.GetClientSegments(client)
	require.Len(t, got, 2)
}

func TestMountSegmentWithPingRejectsOnFailedPing(t *testing.T) {
	m := NewSegmentManager()
	seg := Segment{ID: uuid.New(), Name: "seg-a", Base: 0, Size: 64}
	err := m.MountSegmentWithPing(seg, uuid.New(), func() bool { return false })
	require.ErrorIs(t, err, apierrors.ErrInternal)
	require.Empty(t, m.GetAllSegments())
}
