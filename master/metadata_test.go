package master

import (
	"testing"
	"time"

	"github.com/kvcachestore/master/uuid"
	"github.com/stretchr/testify/require"
)

func newTestHandle() *AllocatedBuffer {
	return newHandle(uuid.New(), 0, 64)
}

func TestLeaseIsMonotonic(t *testing.T) {
	md := &ObjectMetadata{}
	now := time.Now()

	md.GrantLease(now, 10*time.Second)
	first := md.LeaseTimeout

	// a shorter lease granted later must never move the deadline backward.
	md.GrantLease(now.Add(1*time.Second), 1*time.Second)
	require.Equal(t, first, md.LeaseTimeout)

	md.GrantLease(now, 20*time.Second)
	require.True(t, md.LeaseTimeout.After(first))
}

func TestIsLeaseExpired(t *testing.T) {
	md := &ObjectMetadata{}
	now := time.Now()
	require.True(t, md.IsLeaseExpired(now))

	md.GrantLease(now, time.Second)
	require.False(t, md.IsLeaseExpired(now))
	require.True(t, md.IsLeaseExpired(now.Add(2*time.Second)))
}

func TestDropInvalidReplicasFreesAllHandlesInDroppedReplica(t *testing.T) {
	h1 := newTestHandle()
	h2 := newTestHandle()
	h2.Invalidate()
	md := &ObjectMetadata{Replicas: []*Replica{{Handles: []*AllocatedBuffer{h1, h2}, Status: ReplicaComplete}}}

	var freed []*AllocatedBuffer
	empty := md.dropInvalidReplicas(func(h *AllocatedBuffer) { freed = append(freed, h) })

	require.True(t, empty)
	require.ElementsMatch(t, []*AllocatedBuffer{h1, h2}, freed)
	require.Empty(t, md.Replicas)
}

func TestDropInvalidReplicasKeepsValidOnes(t *testing.T) {
	valid := &Replica{Handles: []*AllocatedBuffer{newTestHandle()}, Status: ReplicaComplete}
	badHandle := newTestHandle()
	badHandle.Invalidate()
	invalid := &Replica{Handles: []*AllocatedBuffer{badHandle}, Status: ReplicaComplete}
	md := &ObjectMetadata{Replicas: []*Replica{valid, invalid}}

	empty := md.dropInvalidReplicas(func(*AllocatedBuffer) {})
	require.False(t, empty)
	require.Equal(t, []*Replica{valid}, md.Replicas)
}

func TestClearInvalidHandlesDropsReplicaNotWholeObject(t *testing.T) {
	store := NewObjectMetadataStore()
	acc := NewMetadataAccessor(store, "k1")

	goodHandle := newTestHandle()
	badHandle := newTestHandle()
	badHandle.Invalidate()
	good := &Replica{Handles: []*AllocatedBuffer{goodHandle}, Status: ReplicaComplete}
	bad := &Replica{Handles: []*AllocatedBuffer{badHandle}, Status: ReplicaComplete}
	acc.Set(&ObjectMetadata{Replicas: []*Replica{good, bad}})
	acc.Release()

	var freed []*AllocatedBuffer
	store.ClearInvalidHandles(func(h *AllocatedBuffer) { freed = append(freed, h) })

	acc = NewMetadataAccessor(store, "k1")
	defer acc.Release()
	require.True(t, acc.Exists())
	require.Equal(t, []*Replica{good}, acc.Get().Replicas)
	require.Equal(t, []*AllocatedBuffer{badHandle}, freed)
}

func TestClearInvalidHandlesErasesObjectWithZeroReplicasLeft(t *testing.T) {
	store := NewObjectMetadataStore()
	badHandle := newTestHandle()
	badHandle.Invalidate()
	acc := NewMetadataAccessor(store, "k1")
	acc.Set(&ObjectMetadata{Replicas: []*Replica{{Handles: []*AllocatedBuffer{badHandle}, Status: ReplicaComplete}}})
	acc.Release()

	store.ClearInvalidHandles(func(*AllocatedBuffer) {})

	acc = NewMetadataAccessor(store, "k1")
	defer acc.Release()
	require.False(t, acc.Exists())
}

func TestRemoveExpiredFreesHandlesAndCounts(t *testing.T) {
	store := NewObjectMetadataStore()
	now := time.Now()

	h := newTestHandle()
	acc := NewMetadataAccessor(store, "expired")
	md := &ObjectMetadata{Replicas: []*Replica{{Handles: []*AllocatedBuffer{h}, Status: ReplicaComplete}}}
	md.GrantLease(now.Add(-time.Hour), time.Second) // already expired
	acc.Set(md)
	acc.Release()

	acc2 := NewMetadataAccessor(store, "live")
	live := &ObjectMetadata{}
	live.GrantLease(now, time.Hour)
	acc2.Set(live)
	acc2.Release()

	var freed []*AllocatedBuffer
	count := store.RemoveExpired(now, func(h *AllocatedBuffer) { freed = append(freed, h) })

	require.Equal(t, uint64(1), count)
	require.Equal(t, []*AllocatedBuffer{h}, freed)
	require.Equal(t, 1, store.GetKeyCount())
}

func TestGetAllKeysAndKeyCount(t *testing.T) {
	store := NewObjectMetadataStore()
	for _, k := range []string{"a", "b", "c"} {
		acc := NewMetadataAccessor(store, k)
		acc.Set(&ObjectMetadata{})
		acc.Release()
	}
	require.Equal(t, 3, store.GetKeyCount())
	require.ElementsMatch(t, []string{"a", "b", "c"}, store.GetAllKeys())
}
