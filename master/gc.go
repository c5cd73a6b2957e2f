package master

import (
	"container/heap"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	apierrors "github.com/kvcachestore/master/errors"
)

// kGCThreadSleepMs is the pause between GC passes.
const kGCThreadSleepMs = 10 * time.Millisecond

// GCTask is a delayed delete: key becomes eligible for removal at ReadyAt.
type GCTask struct {
	Key     string
	ReadyAt time.Time
}

// gcHeap is the GC thread's thread-local min-heap, ordered by ReadyAt
// ascending. It is only ever touched by the GC goroutine, so it needs no
// synchronization of its own — the boundedQueue is what producers use.
type gcHeap []*GCTask

func (h gcHeap) Len() int            { return len(h) }
func (h gcHeap) Less(i, j int) bool  { return h[i].ReadyAt.Before(h[j].ReadyAt) }
func (h gcHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *gcHeap) Push(x interface{}) { *h = append(*h, x.(*GCTask)) }
func (h *gcHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// boundedQueue is a bounded MPMC queue realized with Go's native
// concurrent-queue primitive: a buffered channel. A channel send/receive
// pair inside a select with a default case already gives non-blocking
// enqueue/dequeue for multiple producers and consumers without any
// third-party ring-buffer library available for it; queue overflow is
// signaled by a non-blocking send failing, treated as an operational
// signal rather than a correctness bug.
type boundedQueue[T any] struct {
	ch chan T
}

func newBoundedQueue[T any](capacity int) *boundedQueue[T] {
	return &boundedQueue[T]{ch: make(chan T, capacity)}
}

func (q *boundedQueue[T]) Push(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

func (q *boundedQueue[T]) TryPop() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// xorshift64 is a cheap non-cryptographic PRNG used to pick the eviction
// engine's randomized start shard.
type xorshift64 uint64

func newXorshift64(seed int64) *xorshift64 {
	s := xorshift64(seed)
	if s == 0 {
		s = 0x9E3779B97F4A7C15
	}
	return &s
}

func (x *xorshift64) next() uint64 {
	v := uint64(*x)
	v ^= v << 13
	v ^= v >> 7
	v ^= v << 17
	*x = xorshift64(v)
	return v
}

// EvictionMetrics receives outcome counters from BatchEvict.
type EvictionMetrics interface {
	IncEvictionSuccess(count int, freedBytes uint64)
	IncEvictionFail()
}

// EvictionConfig holds the ratios that drive the eviction engine.
type EvictionConfig struct {
	EvictionRatio              float64
	EvictionHighWatermarkRatio float64
}

// GCEngine owns the GC task queue and drives both GC deletion and
// watermark/demand eviction, one goroutine, matching MasterService's single
// GC thread in the original design.
type GCEngine struct {
	queue    *boundedQueue[*GCTask]
	store    *ObjectMetadataStore
	segments *SegmentManager
	clock    Clock
	remove   func(key string) error
	metrics  EvictionMetrics
	cfg      EvictionConfig

	needEviction int32 // atomic bool
	rng          *xorshift64

	sleep    time.Duration
	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

const defaultGCQueueCapacity = 1 << 16

func NewGCEngine(store *ObjectMetadataStore, segments *SegmentManager, clock Clock, remove func(key string) error, metrics EvictionMetrics, cfg EvictionConfig) *GCEngine {
	return &GCEngine{
		queue:    newBoundedQueue[*GCTask](defaultGCQueueCapacity),
		store:    store,
		segments: segments,
		clock:    clock,
		remove:   remove,
		metrics:  metrics,
		cfg:      cfg,
		rng:      newXorshift64(time.Now().UnixNano()),
		sleep:    kGCThreadSleepMs,
		done:     make(chan struct{}),
	}
}

// MarkForGC schedules key for deletion after delay. Queue overflow is
// reported as INTERNAL_ERROR; the caller proceeds without a schedule, since
// the object simply keeps whatever lease/GC state it already had.
func (e *GCEngine) MarkForGC(key string, delay time.Duration) error {
	task := &GCTask{Key: key, ReadyAt: e.clock.Now().Add(delay)}
	if !e.queue.Push(task) {
		return apierrors.ErrInternal
	}
	return nil
}

// SetNeedEviction is called by PutStart on allocation failure.
func (e *GCEngine) SetNeedEviction() {
	atomic.StoreInt32(&e.needEviction, 1)
}

func (e *GCEngine) needsEviction() bool {
	return atomic.LoadInt32(&e.needEviction) != 0
}

func (e *GCEngine) clearNeedEviction() {
	atomic.StoreInt32(&e.needEviction, 0)
}

// Start launches the GC goroutine. Stop must be called to join it.
func (e *GCEngine) Start() {
	e.wg.Add(1)
	go e.loop()
}

func (e *GCEngine) Stop() {
	e.stopOnce.Do(func() { close(e.done) })
	e.wg.Wait()
}

func (e *GCEngine) loop() {
	defer e.wg.Done()

	var pq gcHeap
	heap.Init(&pq)

	ticker := time.NewTicker(e.sleep)
	defer ticker.Stop()

	for {
		select {
		case <-e.done:
			return
		case <-ticker.C:
			e.runPass(&pq)
		}
	}
}

func (e *GCEngine) runPass(pq *gcHeap) {
	for {
		task, ok := e.queue.TryPop()
		if !ok {
			break
		}
		heap.Push(pq, task)
	}

	now := e.clock.Now()
	for pq.Len() > 0 {
		task := (*pq)[0]
		if task.ReadyAt.After(now) {
			break
		}
		heap.Pop(pq)
		// OBJECT_NOT_FOUND and OBJECT_HAS_LEASE are expected outcomes of a
		// GC removal racing a fresh Put or an unexpired read lease. Every
		// error from remove is discarded here; none is logged.
		_ = e.remove(task.Key)
	}

	used, capacity := e.segments.UsedCapacity()
	var usedRatio float64
	if capacity > 0 {
		usedRatio = float64(used) / float64(capacity)
	}

	if usedRatio > e.cfg.EvictionHighWatermarkRatio || (e.needsEviction() && e.cfg.EvictionRatio > 0) {
		target := e.cfg.EvictionRatio
		if demand := usedRatio - e.cfg.EvictionHighWatermarkRatio + e.cfg.EvictionRatio; demand > target {
			target = demand
		}
		e.BatchEvict(target)
	}
}

type evictCandidate struct {
	key          string
	leaseTimeout time.Time
}

// BatchEvict implements the watermark/demand-triggered eviction pass:
// randomized shard start, cumulative ideal-count-per-shard, and a
// lease-timeout threshold cut so cold objects go first. Never evicts a
// non-COMPLETE or unexpired-lease object.
func (e *GCEngine) BatchEvict(ratio float64) {
	now := e.clock.Now()
	numShards := e.store.NumShards()
	start := int(e.rng.next() % uint64(numShards))

	evictedCount := 0
	objectCount := 0
	var totalFreed uint64

	for i := 0; i < numShards; i++ {
		idx := (start + i) % numShards
		e.store.WithShard(idx, func(objects map[string]*ObjectMetadata) {
			objectCount += len(objects)
			ideal := int(math.Ceil(float64(objectCount)*ratio)) - evictedCount
			if ideal <= 0 {
				return
			}

			candidates := make([]evictCandidate, 0)
			for key, md := range objects {
				if md.IsLeaseExpired(now) && md.AllReplicasComplete() {
					candidates = append(candidates, evictCandidate{key: key, leaseTimeout: md.LeaseTimeout})
				}
			}
			if len(candidates) == 0 {
				return
			}

			evictNum := ideal
			if evictNum > len(candidates) {
				evictNum = len(candidates)
			}
			sort.Slice(candidates, func(a, b int) bool {
				return candidates[a].leaseTimeout.Before(candidates[b].leaseTimeout)
			})
			threshold := candidates[evictNum-1].leaseTimeout

			shardEvicted := 0
			for _, c := range candidates {
				if shardEvicted >= evictNum {
					break
				}
				if c.leaseTimeout.After(threshold) {
					continue
				}
				md, ok := objects[c.key]
				if !ok {
					continue
				}
				totalFreed += md.Size * uint64(len(md.Replicas))
				for _, r := range md.Replicas {
					for _, h := range r.Handles {
						e.segments.FreeHandle(h)
					}
				}
				delete(objects, c.key)
				shardEvicted++
			}
			evictedCount += shardEvicted
		})
	}

	if evictedCount > 0 {
		e.clearNeedEviction()
		if e.metrics != nil {
			e.metrics.IncEvictionSuccess(evictedCount, totalFreed)
		}
	} else {
		if objectCount == 0 {
			e.clearNeedEviction()
		}
		if e.metrics != nil {
			e.metrics.IncEvictionFail()
		}
	}
}
