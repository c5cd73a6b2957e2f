package master

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/kvcachestore/master/uuid"
)

// kNumShards is the fixed shard fan-out of the ObjectMetadataStore. A power
// of two so shard_index can mask the hash instead of dividing.
const kNumShards = 1024

// ReplicaStatus is the lifecycle state of one Replica.
type ReplicaStatus int32

const (
	ReplicaProcessing ReplicaStatus = iota
	ReplicaComplete
	ReplicaFailed
)

// Replica is an ordered sequence of handles covering an object's bytes in
// one placement.
type Replica struct {
	Handles []*AllocatedBuffer
	Status  ReplicaStatus
}

// HasInvalidHandle reports whether any handle in this replica was flagged
// HandleUnregistered by a segment teardown.
func (r *Replica) HasInvalidHandle() bool {
	for _, h := range r.Handles {
		if h.IsInvalid() {
			return true
		}
	}
	return false
}

func (r *Replica) totalSize() uint64 {
	var total uint64
	for _, h := range r.Handles {
		total += h.Size
	}
	return total
}

// HandleDescriptor is the on-the-wire shape of one AllocatedBuffer: an
// opaque remote address the data-plane transfer engine can read/write
// directly, plus the segment name needed to resolve a transport endpoint.
type HandleDescriptor struct {
	SegmentName   string
	RemoteAddress uint64
	Size          uint64
	Status        HandleStatus
}

// ReplicaDescriptor is the wire form of a Replica.
type ReplicaDescriptor struct {
	Status  ReplicaStatus
	Handles []HandleDescriptor
}

// Descriptor builds the wire representation of a replica, resolving each
// handle's segment id to the name the client's transport engine expects.
func (r *Replica) Descriptor(resolveName func(uuid.UUID) string) ReplicaDescriptor {
	handles := make([]HandleDescriptor, 0, len(r.Handles))
	for _, h := range r.Handles {
		handles = append(handles, HandleDescriptor{
			SegmentName:   resolveName(h.SegmentID),
			RemoteAddress: h.Offset,
			Size:          h.Size,
			Status:        h.Status(),
		})
	}
	return ReplicaDescriptor{Status: r.Status, Handles: handles}
}

// ObjectMetadata is the value stored per key: a size, an ordered set of
// replicas, and a monotonic lease deadline.
type ObjectMetadata struct {
	Size         uint64
	Replicas     []*Replica
	LeaseTimeout time.Time // zero/now => expired
}

// GrantLease extends the lease so it expires no earlier than now+ttl;
// leases only ever move forward.
func (m *ObjectMetadata) GrantLease(now time.Time, ttl time.Duration) {
	candidate := now.Add(ttl)
	if candidate.After(m.LeaseTimeout) {
		m.LeaseTimeout = candidate
	}
}

// IsLeaseExpired reports whether the lease deadline has passed as of now.
func (m *ObjectMetadata) IsLeaseExpired(now time.Time) bool {
	return !m.LeaseTimeout.After(now)
}

// AllReplicasComplete reports whether every replica has reached COMPLETE.
func (m *ObjectMetadata) AllReplicasComplete() bool {
	for _, r := range m.Replicas {
		if r.Status != ReplicaComplete {
			return false
		}
	}
	return true
}

// AllReplicasProcessing reports whether every replica is still PROCESSING.
func (m *ObjectMetadata) AllReplicasProcessing() bool {
	for _, r := range m.Replicas {
		if r.Status != ReplicaProcessing {
			return false
		}
	}
	return true
}

// dropInvalidReplicas removes replicas that reference an invalidated
// handle, freeing every handle of a dropped replica (not only the
// invalidated one, since the whole replica becomes unreadable once any of
// its handles is gone), and returns true if no valid replica remains, in
// which case PutStart may overwrite the object outright. Grounded on
// MasterService::CleanupStaleHandles.
func (m *ObjectMetadata) dropInvalidReplicas(freeHandle func(*AllocatedBuffer)) bool {
	kept := m.Replicas[:0]
	for _, r := range m.Replicas {
		if r.HasInvalidHandle() {
			for _, h := range r.Handles {
				freeHandle(h)
			}
			continue
		}
		kept = append(kept, r)
	}
	m.Replicas = kept
	return len(m.Replicas) == 0
}

// shard is one independently-locked partition of the key space.
type shard struct {
	mu      sync.Mutex
	objects map[string]*ObjectMetadata
}

func newShard() *shard {
	return &shard{objects: make(map[string]*ObjectMetadata)}
}

// ObjectMetadataStore is the fixed-fan-out sharded map from object key to
// ObjectMetadata. Every shard operation takes that shard's mutex for the
// full operation; accessors must never be nested across shards.
type ObjectMetadataStore struct {
	shards [kNumShards]*shard
}

func NewObjectMetadataStore() *ObjectMetadataStore {
	s := &ObjectMetadataStore{}
	for i := range s.shards {
		s.shards[i] = newShard()
	}
	return s
}

func shardIndex(key string) uint64 {
	return xxhash.Sum64String(key) & (kNumShards - 1)
}

func (s *ObjectMetadataStore) shardFor(key string) *shard {
	return s.shards[shardIndex(key)]
}

// MetadataAccessor is a scoped handle over one shard: constructed with a
// key, it locks the owning shard for the duration and must be released on
// every exit path, including error returns.
type MetadataAccessor struct {
	shard *shard
	key   string
}

// NewMetadataAccessor locks the shard owning key and returns a scoped
// accessor. Callers must call Release exactly once.
func NewMetadataAccessor(store *ObjectMetadataStore, key string) *MetadataAccessor {
	sh := store.shardFor(key)
	sh.mu.Lock()
	return &MetadataAccessor{shard: sh, key: key}
}

func (a *MetadataAccessor) Release() {
	a.shard.mu.Unlock()
}

func (a *MetadataAccessor) Exists() bool {
	_, ok := a.shard.objects[a.key]
	return ok
}

func (a *MetadataAccessor) Get() *ObjectMetadata {
	return a.shard.objects[a.key]
}

func (a *MetadataAccessor) Set(md *ObjectMetadata) {
	a.shard.objects[a.key] = md
}

func (a *MetadataAccessor) Erase() {
	delete(a.shard.objects, a.key)
}

// GetAllKeys walks every shard and returns every stored key. It backs
// Master.GetAllKeys; the unmount sweep walks the shards itself through
// ClearInvalidHandles and does not call it.
func (s *ObjectMetadataStore) GetAllKeys() []string {
	var keys []string
	for _, sh := range s.shards {
		sh.mu.Lock()
		for k := range sh.objects {
			keys = append(keys, k)
		}
		sh.mu.Unlock()
	}
	return keys
}

// GetKeyCount returns the total number of stored objects across all
// shards, supplemented from the original master's GetKeyCount.
func (s *ObjectMetadataStore) GetKeyCount() int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		total += len(sh.objects)
		sh.mu.Unlock()
	}
	return total
}

// NumShards returns the fixed shard fan-out, used by the eviction engine to
// pick a randomized start index.
func (s *ObjectMetadataStore) NumShards() int {
	return len(s.shards)
}

// WithShard runs fn with shard i locked for its duration. Used by the
// eviction engine, which must visit shards one at a time without ever
// holding two shard locks simultaneously.
func (s *ObjectMetadataStore) WithShard(i int, fn func(objects map[string]*ObjectMetadata)) {
	sh := s.shards[i]
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fn(sh.objects)
}

// ClearInvalidHandles walks every shard, dropping replicas that reference an
// invalidated handle and erasing objects left with zero replicas. Go has no
// destructors, so unlike the original C++ (where erasing a replica frees its
// handles via unique_ptr teardown) freeHandle is called explicitly for every
// handle in a dropped replica, including handles in segments that were not
// the one being unmounted: dropping a replica orphans all of its handles,
// not just the invalidated one. FreeHandle is a no-op for handles whose
// segment already left the active allocator table, so this is safe to call
// unconditionally. Takes no lock across shards, only per-shard during the
// walk, so it is safe to run concurrently with unrelated key operations
// while a segment unmount is in its sweep phase.
func (s *ObjectMetadataStore) ClearInvalidHandles(freeHandle func(*AllocatedBuffer)) {
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, md := range sh.objects {
			kept := md.Replicas[:0]
			for _, r := range md.Replicas {
				if r.HasInvalidHandle() {
					for _, h := range r.Handles {
						freeHandle(h)
					}
					continue
				}
				kept = append(kept, r)
			}
			md.Replicas = kept
			if len(md.Replicas) == 0 {
				delete(sh.objects, key)
			}
		}
		sh.mu.Unlock()
	}
}

// RemoveExpired erases every object whose lease has expired, returning the
// count removed. Used by RemoveAll; freeHandle reclaims every handle of
// every removed object's replicas.
func (s *ObjectMetadataStore) RemoveExpired(now time.Time, freeHandle func(*AllocatedBuffer)) uint64 {
	var count uint64
	for _, sh := range s.shards {
		sh.mu.Lock()
		for key, md := range sh.objects {
			if md.IsLeaseExpired(now) {
				for _, r := range md.Replicas {
					for _, h := range r.Handles {
						freeHandle(h)
					}
				}
				delete(sh.objects, key)
				count++
			}
		}
		sh.mu.Unlock()
	}
	return count
}
