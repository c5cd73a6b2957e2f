package master

import (
	"math/rand"

	"github.com/kvcachestore/master/uuid"
)

// ReplicateConfig is the placement policy for one Put: how many replicas to
// create and, optionally, which segments to restrict placement to.
type ReplicateConfig struct {
	ReplicaNum        uint32
	PreferredSegments []string // segment names; empty means no restriction
}

// AllocationStrategy chooses which segment services a given slice
// allocation. The default implementation is grounded on the weighted
// random node selection in master/cluster/allocator.go: pick uniformly at
// random among eligible allocators, weighted by free bytes, honoring
// preferred segments and preferring distinct segments across replicas of
// the same object.
type AllocationStrategy interface {
	// Allocate picks an allocator eligible for a chunk of the given size,
	// excluding allocators already used by other replicas of this object
	// where possible, and reserves the range. Returns nil if no allocator
	// can satisfy the request.
	Allocate(views []AllocatorView, size uint64, cfg ReplicateConfig, usedSegments map[uuid.UUID]struct{}) *AllocatedBuffer
}

type randomAllocationStrategy struct{}

func NewRandomAllocationStrategy() AllocationStrategy {
	return &randomAllocationStrategy{}
}

func (s *randomAllocationStrategy) Allocate(views []AllocatorView, size uint64, cfg ReplicateConfig, usedSegments map[uuid.UUID]struct{}) *AllocatedBuffer {
	eligible := s.eligible(views, size, cfg)
	if len(eligible) == 0 {
		return nil
	}

	fresh := make([]AllocatorView, 0, len(eligible))
	for _, v := range eligible {
		if _, used := usedSegments[v.SegmentID]; !used {
			fresh = append(fresh, v)
		}
	}
	pool := eligible
	if len(fresh) > 0 {
		pool = fresh
	}

	chosen := weightedPick(pool)
	if chosen == nil {
		return nil
	}
	handle := chosen.Allocator.Allocate(size)
	if handle == nil {
		return nil
	}
	usedSegments[chosen.SegmentID] = struct{}{}
	return handle
}

func (s *randomAllocationStrategy) eligible(views []AllocatorView, size uint64, cfg ReplicateConfig) []AllocatorView {
	preferred := make(map[string]struct{}, len(cfg.PreferredSegments))
	for _, name := range cfg.PreferredSegments {
		preferred[name] = struct{}{}
	}

	var restricted, all []AllocatorView
	for _, v := range views {
		if v.Allocator.FreeBytes() < size {
			continue
		}
		all = append(all, v)
		if len(preferred) > 0 {
			if _, ok := preferred[v.Name]; ok {
				restricted = append(restricted, v)
			}
		}
	}
	if len(preferred) > 0 && len(restricted) > 0 {
		return restricted
	}
	return all
}

// weightedPick selects one allocator with probability proportional to its
// free bytes: a weighted variant of picking uniformly at random over
// eligible segments.
func weightedPick(pool []AllocatorView) *AllocatorView {
	if len(pool) == 0 {
		return nil
	}
	var total uint64
	for _, v := range pool {
		total += v.Allocator.FreeBytes()
	}
	if total == 0 {
		return &pool[rand.Intn(len(pool))]
	}
	target := uint64(rand.Int63n(int64(total)))
	for i := range pool {
		free := pool[i].Allocator.FreeBytes()
		if target < free {
			return &pool[i]
		}
		target -= free
	}
	return &pool[len(pool)-1]
}
