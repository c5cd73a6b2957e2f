package master

import (
	"testing"
	"time"

	"github.com/kvcachestore/master/uuid"
	"github.com/stretchr/testify/require"
)

func TestBoundedQueuePushPopAndOverflow(t *testing.T) {
	q := newBoundedQueue[int](2)
	require.True(t, q.Push(1))
	require.True(t, q.Push(2))
	require.False(t, q.Push(3)) // full

	v, ok := q.TryPop()
	require.True(t, ok)
	require.Equal(t, 1, v)

	_, ok = q.TryPop()
	require.True(t, ok)
	_, ok = q.TryPop()
	require.False(t, ok)
}

func TestXorshift64NeverSticksAtZero(t *testing.T) {
	rng := newXorshift64(0)
	seen := map[uint64]bool{}
	for i := 0; i < 100; i++ {
		v := rng.next()
		require.NotEqual(t, uint64(0), v)
		seen[v] = true
	}
	require.Greater(t, len(seen), 90)
}

type fakeEvictionMetrics struct {
	successCount int
	freedBytes   uint64
	fails        int
}

func (f *fakeEvictionMetrics) IncEvictionSuccess(count int, freedBytes uint64) {
	f.successCount += count
	f.freedBytes += freedBytes
}
func (f *fakeEvictionMetrics) IncEvictionFail() { f.fails++ }

func newTestGCEngine(t *testing.T) (*GCEngine, *ObjectMetadataStore, *SegmentManager, *manualClock) {
	t.Helper()
	store := NewObjectMetadataStore()
	segments := NewSegmentManager()
	clock := newManualClock(time.Now())
	remove := func(key string) error { return nil }
	metrics := &fakeEvictionMetrics{}
	cfg := EvictionConfig{EvictionRatio: 1.0, EvictionHighWatermarkRatio: 0.8}
	engine := NewGCEngine(store, segments, clock, remove, metrics, cfg)
	return engine, store, segments, clock
}

func TestBatchEvictNeverEvictsUnexpiredLease(t *testing.T) {
	engine, store, _, clock := newTestGCEngine(t)

	acc := NewMetadataAccessor(store, "live")
	md := &ObjectMetadata{Replicas: []*Replica{{Status: ReplicaComplete}}}
	md.GrantLease(clock.Now(), time.Hour)
	acc.Set(md)
	acc.Release()

	engine.BatchEvict(1.0)

	acc = NewMetadataAccessor(store, "live")
	defer acc.Release()
	require.True(t, acc.Exists())
}

func TestBatchEvictNeverEvictsNonCompleteReplica(t *testing.T) {
	engine, store, _, clock := newTestGCEngine(t)

	acc := NewMetadataAccessor(store, "processing")
	md := &ObjectMetadata{Replicas: []*Replica{{Status: ReplicaProcessing}}}
	md.GrantLease(clock.Now(), -time.Hour) // expired
	acc.Set(md)
	acc.Release()

	engine.BatchEvict(1.0)

	acc = NewMetadataAccessor(store, "processing")
	defer acc.Release()
	require.True(t, acc.Exists())
}

func TestBatchEvictFreesHandlesOfEvictedObjects(t *testing.T) {
	engine, store, segments, clock := newTestGCEngine(t)

	seg := Segment{ID: uuid.New(), Name: "seg-a", Base: 0, Size: 1024}
	require.NoError(t, segments.MountSegment(seg, uuid.New()))
	var handle *AllocatedBuffer
	segments.withAllocators(func(views []AllocatorView) {
		handle = views[0].Allocator.Allocate(64)
	})

	acc := NewMetadataAccessor(store, "expired")
	md := &ObjectMetadata{
		Size:     64,
		Replicas: []*Replica{{Handles: []*AllocatedBuffer{handle}, Status: ReplicaComplete}},
	}
	md.GrantLease(clock.Now(), -time.Hour)
	acc.Set(md)
	acc.Release()

	engine.BatchEvict(1.0)

	acc = NewMetadataAccessor(store, "expired")
	defer acc.Release()
	require.False(t, acc.Exists())

	// the freed handle must be usable again by the allocator.
	used, _ := segments.UsedCapacity()
	require.Equal(t, uint64(0), used)
}

func TestMarkForGCOverflowReportsInternalError(t *testing.T) {
	store := NewObjectMetadataStore()
	segments := NewSegmentManager()
	clock := newManualClock(time.Now())
	engine := NewGCEngine(store, segments, clock, func(string) error { return nil }, nil, EvictionConfig{})
	engine.queue = newBoundedQueue[*GCTask](1)

	require.NoError(t, engine.MarkForGC("a", time.Second))
	require.Error(t, engine.MarkForGC("b", time.Second))
}
