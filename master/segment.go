package master

import (
	"sync"

	apierrors "github.com/kvcachestore/master/errors"
	"github.com/kvcachestore/master/uuid"
)

// Segment is a contiguous remote-addressable memory range contributed by a
// client. It is created by MountSegment, mutated only by the allocator
// state held for it, and destroyed by UnmountSegment commit or by the
// ClientMonitor on client expiry.
type Segment struct {
	ID   uuid.UUID
	Name string
	Base uint64
	Size uint64
}

// segmentEntry pairs a Segment record with its owning client and, while
// mounted, the allocator that services it.
type segmentEntry struct {
	segment  Segment
	clientID uuid.UUID
}

// SegmentManager owns all segments, indexed by segment UUID and by owning
// client UUID, and coordinates access to their allocators under a
// readers-writer lock: mount/unmount are writers, PutStart's allocator
// lookups are readers. Each allocator additionally serializes its own
// Allocate/Free calls so concurrent PutStart requests against distinct
// segments never block each other.
type SegmentManager struct {
	mu sync.RWMutex

	segments   map[uuid.UUID]*segmentEntry
	allocators map[uuid.UUID]*BufferAllocator // active allocator table
	byClient   map[uuid.UUID]map[uuid.UUID]struct{}
}

func NewSegmentManager() *SegmentManager {
	return &SegmentManager{
		segments:   make(map[uuid.UUID]*segmentEntry),
		allocators: make(map[uuid.UUID]*BufferAllocator),
		byClient:   make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// MountSegment installs a fresh allocator for the segment's byte range. It
// is idempotent on segment UUID: re-mounting the same id returns nil
// without disturbing the existing allocator.
func (m *SegmentManager) MountSegment(seg Segment, clientID uuid.UUID) error {
	return m.MountSegmentWithPing(seg, clientID, nil)
}

// MountSegmentWithPing mounts seg while holding the segment write lock for
// the whole operation, invoking ping (if non-nil) before the mount is
// applied. This is what lets Master satisfy the HA ping-ordering invariant:
// the client-monitor ping must be enqueued after the segment lock is taken
// and before the mount is visible, never before
// (the client could expire first) and never after (the queue could be full
// once the client is already live and unmonitored).
func (m *SegmentManager) MountSegmentWithPing(seg Segment, clientID uuid.UUID, ping func() bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ping != nil && !ping() {
		return apierrors.ErrInternal
	}

	if _, ok := m.segments[seg.ID]; ok {
		return nil
	}

	m.segments[seg.ID] = &segmentEntry{segment: seg, clientID: clientID}
	m.allocators[seg.ID] = NewBufferAllocator(seg.ID, seg.Base, seg.Size)
	set, ok := m.byClient[clientID]
	if !ok {
		set = make(map[uuid.UUID]struct{})
		m.byClient[clientID] = set
	}
	set[seg.ID] = struct{}{}
	return nil
}

// ReMountSegment installs a client's segment set under one hold of the
// segment write lock. Idempotency on client_id membership in ok_clients is
// the caller's (Master's) responsibility. Segments whose id is already
// mounted are left as they are; segments the manager still holds for this
// client that are absent from segs are not removed.
func (m *SegmentManager) ReMountSegment(segs []Segment, clientID uuid.UUID) error {
	return m.ReMountSegmentWithPing(segs, clientID, nil)
}

// ReMountSegmentWithPing is ReMountSegment with the same ping-ordering
// guarantee MountSegmentWithPing provides.
func (m *SegmentManager) ReMountSegmentWithPing(segs []Segment, clientID uuid.UUID, ping func() bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if ping != nil && !ping() {
		return apierrors.ErrInternal
	}

	for _, seg := range segs {
		if _, ok := m.segments[seg.ID]; ok {
			continue
		}
		m.segments[seg.ID] = &segmentEntry{segment: seg, clientID: clientID}
		m.allocators[seg.ID] = NewBufferAllocator(seg.ID, seg.Base, seg.Size)
		set, ok := m.byClient[clientID]
		if !ok {
			set = make(map[uuid.UUID]struct{})
			m.byClient[clientID] = set
		}
		set[seg.ID] = struct{}{}
	}
	return nil
}

// PrepareUnmountSegment verifies ownership, tears down and removes the
// allocator from the active table under the segment write lock. After this
// returns, no subsequent PutStart can land a handle in this segment; any
// handles already issued into it are flagged HandleUnregistered by
// BufferAllocator.Teardown. Missing segment is treated as already-unmounted
// (idempotent): the caller distinguishes this from a real error via the
// returned bool.
func (m *SegmentManager) PrepareUnmountSegment(segmentID, clientID uuid.UUID) (decCapacity uint64, found bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.segments[segmentID]
	if !ok {
		return 0, false, nil
	}
	if entry.clientID != clientID {
		return 0, true, apierrors.ErrSegmentNotFound
	}

	alloc, ok := m.allocators[segmentID]
	if ok {
		alloc.Teardown()
		decCapacity = alloc.Capacity()
		delete(m.allocators, segmentID)
	}
	return decCapacity, true, nil
}

// CommitUnmountSegment removes the segment record itself. Missing segment
// at commit is treated as already-committed (idempotent).
func (m *SegmentManager) CommitUnmountSegment(segmentID, clientID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.segments[segmentID]
	if !ok {
		return nil
	}
	delete(m.segments, segmentID)
	if set, ok := m.byClient[entry.clientID]; ok {
		delete(set, segmentID)
		if len(set) == 0 {
			delete(m.byClient, entry.clientID)
		}
	}
	return nil
}

// FreeHandle releases a handle back to its owning allocator, if that
// allocator is still active. A no-op for handles whose segment has already
// been unmounted, since Teardown already reclaimed the whole range.
func (m *SegmentManager) FreeHandle(h *AllocatedBuffer) {
	m.mu.RLock()
	alloc, ok := m.allocators[h.SegmentID]
	m.mu.RUnlock()
	if ok {
		alloc.Free(h)
	}
}

// NameOf resolves a segment id to its name, used when building
// ReplicaDescriptor wire responses.
func (m *SegmentManager) NameOf(segmentID uuid.UUID) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if entry, ok := m.segments[segmentID]; ok {
		return entry.segment.Name
	}
	return ""
}

// GetAllSegments returns every mounted segment's name.
func (m *SegmentManager) GetAllSegments() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.segments))
	for _, entry := range m.segments {
		names = append(names, entry.segment.Name)
	}
	return names
}

// QuerySegments returns used/capacity bytes for the named segment.
func (m *SegmentManager) QuerySegments(name string) (used, capacity uint64, err error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for id, entry := range m.segments {
		if entry.segment.Name != name {
			continue
		}
		alloc, ok := m.allocators[id]
		if !ok {
			continue
		}
		return alloc.UsedBytes(), alloc.Capacity(), nil
	}
	return 0, 0, apierrors.ErrSegmentNotFound
}

// GetClientSegments lists the segments currently owned by clientID.
func (m *SegmentManager) GetClientSegments(clientID uuid.UUID) []Segment {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.byClient[clientID]
	if !ok {
		return nil
	}
	out := make([]Segment, 0, len(set))
	for id := range set {
		if entry, ok := m.segments[id]; ok {
			out = append(out, entry.segment)
		}
	}
	return out
}

// UsedCapacity reports aggregate used and total capacity across every
// mounted allocator, feeding the eviction engine's global used ratio.
func (m *SegmentManager) UsedCapacity() (used, capacity uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, alloc := range m.allocators {
		used += alloc.UsedBytes()
		capacity += alloc.Capacity()
	}
	return used, capacity
}

// AllSegmentUsage snapshots every mounted segment's name and used bytes
// alongside the aggregate used/capacity totals, in one read-locked pass,
// for the metrics sampler to feed straight into CapacityGauges.Sample.
func (m *SegmentManager) AllSegmentUsage() (names []string, used []uint64, totalUsed, totalCapacity uint64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names = make([]string, 0, len(m.allocators))
	used = make([]uint64, 0, len(m.allocators))
	for id, alloc := range m.allocators {
		name := ""
		if entry, ok := m.segments[id]; ok {
			name = entry.segment.Name
		}
		names = append(names, name)
		used = append(used, alloc.UsedBytes())
		totalUsed += alloc.UsedBytes()
		totalCapacity += alloc.Capacity()
	}
	return names, used, totalUsed, totalCapacity
}

// AllocatorView pairs a live allocator with the segment name it serves, the
// shape AllocationStrategy needs to honor ReplicateConfig.PreferredSegments.
type AllocatorView struct {
	SegmentID uuid.UUID
	Name      string
	Allocator *BufferAllocator
}

// withAllocators runs fn with a read lock held over the active allocator
// table, mirroring ScopedAllocatorAccess: allocators are readers relative
// to mount/unmount writers, so PutStart never races a segment's teardown.
func (m *SegmentManager) withAllocators(fn func(views []AllocatorView)) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	views := make([]AllocatorView, 0, len(m.allocators))
	for id, alloc := range m.allocators {
		name := ""
		if entry, ok := m.segments[id]; ok {
			name = entry.segment.Name
		}
		views = append(views, AllocatorView{SegmentID: id, Name: name, Allocator: alloc})
	}
	fn(views)
}
