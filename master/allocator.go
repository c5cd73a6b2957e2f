package master

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kvcachestore/master/uuid"
)

// HandleStatus is the lifecycle state of an AllocatedBuffer.
type HandleStatus int32

const (
	HandleInit HandleStatus = iota
	HandleComplete
	HandleFailed
	HandleUnregistered
)

// AllocatedBuffer is a sub-range of a segment reserved for one replica
// slice. Status is monotone except that allocator teardown flips a live
// handle to HandleUnregistered.
type AllocatedBuffer struct {
	SegmentID uuid.UUID
	Offset    uint64
	Size      uint64

	status int32
}

func newHandle(segmentID uuid.UUID, offset, size uint64) *AllocatedBuffer {
	return &AllocatedBuffer{SegmentID: segmentID, Offset: offset, Size: size, status: int32(HandleInit)}
}

func (b *AllocatedBuffer) Status() HandleStatus {
	return HandleStatus(atomic.LoadInt32(&b.status))
}

func (b *AllocatedBuffer) setStatus(s HandleStatus) {
	atomic.StoreInt32(&b.status, int32(s))
}

// Invalidate flips a live handle to HandleUnregistered. Called by the
// segment manager when the allocator backing it is torn down; the handle
// itself is never deleted, only flagged, so any Replica still referencing
// it can be swept later.
func (b *AllocatedBuffer) Invalidate() {
	atomic.StoreInt32(&b.status, int32(HandleUnregistered))
}

func (b *AllocatedBuffer) IsInvalid() bool {
	return b.Status() == HandleUnregistered
}

// freeRange is a contiguous unallocated byte range within a segment.
type freeRange struct {
	offset uint64
	size   uint64
}

// BufferAllocator is a first-fit region allocator over a contiguous
// remote-addressable byte range owned by one client segment. All access is
// through segment-level locking (SegmentManager); the allocator itself only
// guards its own free list against concurrent PutStart calls landing on the
// same segment.
type BufferAllocator struct {
	segmentID uuid.UUID
	base      uint64
	size      uint64

	mu        sync.Mutex
	free      []freeRange // sorted by offset, non-overlapping
	usedBytes uint64
	live      map[*AllocatedBuffer]struct{}
}

func NewBufferAllocator(segmentID uuid.UUID, base, size uint64) *BufferAllocator {
	return &BufferAllocator{
		segmentID: segmentID,
		base:      base,
		size:      size,
		free:      []freeRange{{offset: base, size: size}},
		live:      make(map[*AllocatedBuffer]struct{}),
	}
}

func (a *BufferAllocator) SegmentID() uuid.UUID { return a.segmentID }

func (a *BufferAllocator) Capacity() uint64 { return a.size }

func (a *BufferAllocator) UsedBytes() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.usedBytes
}

func (a *BufferAllocator) FreeBytes() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.size - a.usedBytes
}

// Allocate reserves size bytes using first-fit over the free list. Returns
// nil if no range is large enough.
func (a *BufferAllocator) Allocate(size uint64) *AllocatedBuffer {
	if size == 0 {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	for i, r := range a.free {
		if r.size < size {
			continue
		}
		handle := newHandle(a.segmentID, r.offset, size)
		if r.size == size {
			a.free = append(a.free[:i], a.free[i+1:]...)
		} else {
			a.free[i] = freeRange{offset: r.offset + size, size: r.size - size}
		}
		a.usedBytes += size
		handle.setStatus(HandleComplete)
		a.live[handle] = struct{}{}
		return handle
	}
	return nil
}

// Free releases a previously allocated handle back into the free list,
// merging with adjacent ranges.
func (a *BufferAllocator) Free(handle *AllocatedBuffer) {
	if handle == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, ok := a.live[handle]; !ok {
		return
	}
	delete(a.live, handle)
	a.usedBytes -= handle.Size

	idx := sort.Search(len(a.free), func(i int) bool { return a.free[i].offset >= handle.Offset })
	merged := freeRange{offset: handle.Offset, size: handle.Size}
	a.free = append(a.free, freeRange{})
	copy(a.free[idx+1:], a.free[idx:])
	a.free[idx] = merged
	a.coalesceLocked()
}

func (a *BufferAllocator) coalesceLocked() {
	out := a.free[:0]
	for _, r := range a.free {
		if len(out) > 0 {
			last := &out[len(out)-1]
			if last.offset+last.size == r.offset {
				last.size += r.size
				continue
			}
		}
		out = append(out, r)
	}
	a.free = out
}

// Teardown invalidates every live handle issued by this allocator. Called
// during segment unmount prepare, under the segment write lock, before the
// allocator is removed from the active table.
func (a *BufferAllocator) Teardown() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for handle := range a.live {
		handle.Invalidate()
	}
	a.live = make(map[*AllocatedBuffer]struct{})
	a.free = nil
	a.usedBytes = a.size
}
