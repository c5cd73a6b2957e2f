package master

import (
	"time"

	apierrors "github.com/kvcachestore/master/errors"
	"github.com/kvcachestore/master/uuid"
	"golang.org/x/sync/singleflight"
)

// kMaxSliceSize bounds a single slice within a replica. 64 MiB matches the
// original master's chunk-size ceiling for one contiguous handle.
const kMaxSliceSize = 64 << 20

// Config holds the master's runtime tuning knobs.
type Config struct {
	Port                  int
	MaxThreads            int
	EnableGC              bool
	EnableMetricReporting bool
	MetricsPort           int
	ControllerURL         string

	EnableHA        bool
	ViewVersion     uint64
	ClientLiveTTL   time.Duration
	ClusterID       string

	Eviction EvictionConfig

	DefaultKVLeaseTTL time.Duration
}

// Metrics is the full set of counters the Master feeds; satisfied by
// metrics.Collector in production and by a no-op stub in tests.
type Metrics interface {
	ClientMonitorMetrics
	EvictionMetrics
	ObserveOp(op string, err error)
}

// Master is the top-level orchestrator wiring the sharded metadata store,
// segment manager, allocation strategy, GC/eviction engine, and (HA) client
// monitor into a single public request surface.
type Master struct {
	cfg Config

	store    *ObjectMetadataStore
	segments *SegmentManager
	strategy AllocationStrategy
	gc       *GCEngine
	monitor  *ClientMonitor
	clock    Clock
	metrics  Metrics

	// putGroup collapses concurrent PutStart calls racing on the same key
	// onto a single allocation attempt, and pingGroup does the same for
	// bursts of retried Ping calls from one client.
	putGroup  singleflight.Group
	pingGroup singleflight.Group
}

// NewMaster builds a Master ready to Start. metrics may be nil, in which
// case op/eviction/client counters are simply not recorded.
func NewMaster(cfg Config, metrics Metrics) *Master {
	store := NewObjectMetadataStore()
	segments := NewSegmentManager()
	clock := Clock(realClock{})

	m := &Master{
		cfg:      cfg,
		store:    store,
		segments: segments,
		strategy: NewRandomAllocationStrategy(),
		clock:    clock,
		metrics:  metrics,
	}
	m.gc = NewGCEngine(store, segments, clock, m.Remove, metrics, cfg.Eviction)
	if cfg.EnableHA {
		m.monitor = NewClientMonitor(segments, store, clock, cfg.ClientLiveTTL, metrics)
	}
	return m
}

// Start launches the background GC and (HA) client-monitor goroutines.
func (m *Master) Start() {
	m.gc.Start()
	if m.monitor != nil {
		m.monitor.Start()
	}
}

// Stop joins every background goroutine.
func (m *Master) Stop() {
	m.gc.Stop()
	if m.monitor != nil {
		m.monitor.Stop()
	}
}

func (m *Master) observe(op string, err error) {
	if m.metrics != nil {
		m.metrics.ObserveOp(op, err)
	}
}

// MountSegment installs seg for clientID. In HA mode the client-monitor
// ping is enqueued while the segment write lock is held, satisfying the
// client-liveness ordering invariant.
func (m *Master) MountSegment(seg Segment, clientID uuid.UUID) error {
	var ping func() bool
	if m.monitor != nil {
		ping = func() bool { return m.monitor.EnqueuePing(clientID) }
	}
	err := m.segments.MountSegmentWithPing(seg, clientID, ping)
	m.observe("MountSegment", err)
	return err
}

// ReMountSegment is HA-only. It holds the client write-lock across both the
// ok_clients membership check and the segment manager call, per the lock
// order client-write-lock -> segment-write-lock. Idempotent: a client
// already in ok_clients returns nil without touching segments again.
func (m *Master) ReMountSegment(segs []Segment, clientID uuid.UUID) error {
	if m.monitor == nil {
		err := apierrors.ErrUnavailableInCurrentMode
		m.observe("ReMountSegment", err)
		return err
	}

	m.monitor.Lock()
	defer m.monitor.Unlock()

	if m.monitor.isOKLocked(clientID) {
		m.observe("ReMountSegment", nil)
		return nil
	}

	err := m.segments.ReMountSegmentWithPing(segs, clientID, func() bool {
		return m.monitor.EnqueuePing(clientID)
	})
	if err != nil {
		m.observe("ReMountSegment", err)
		return err
	}
	m.monitor.markOKLocked(clientID)
	if m.metrics != nil {
		m.metrics.IncActiveClients()
	}
	m.observe("ReMountSegment", nil)
	return nil
}

// UnmountSegment runs the Prepare -> Sweep -> Commit two-phase protocol.
// Missing segment at either phase is treated as already-unmounted.
func (m *Master) UnmountSegment(segmentID, clientID uuid.UUID) error {
	_, found, err := m.segments.PrepareUnmountSegment(segmentID, clientID)
	if err != nil {
		m.observe("UnmountSegment", err)
		return err
	}
	if !found {
		m.observe("UnmountSegment", nil)
		return nil
	}

	m.store.ClearInvalidHandles(m.segments.FreeHandle)

	err = m.segments.CommitUnmountSegment(segmentID, clientID)
	m.observe("UnmountSegment", err)
	return err
}

// ExistKey reports whether key is present with every replica COMPLETE,
// granting a read lease on success. A missing key is not an error.
func (m *Master) ExistKey(key string) (bool, error) {
	accessor := NewMetadataAccessor(m.store, key)
	defer accessor.Release()

	if !accessor.Exists() {
		m.observe("ExistKey", nil)
		return false, nil
	}
	md := accessor.Get()
	if !md.AllReplicasComplete() {
		err := apierrors.ErrReplicaIsNotReady
		m.observe("ExistKey", err)
		return false, err
	}
	md.GrantLease(m.clock.Now(), m.cfg.DefaultKVLeaseTTL)
	m.observe("ExistKey", nil)
	return true, nil
}

// GetReplicaList returns the descriptors for key. In GC mode it schedules a
// deletion 1000ms out instead of granting a lease; otherwise it grants
// DefaultKVLeaseTTL, same as ExistKey.
func (m *Master) GetReplicaList(key string) ([]ReplicaDescriptor, error) {
	accessor := NewMetadataAccessor(m.store, key)
	defer accessor.Release()

	if !accessor.Exists() {
		err := apierrors.ErrObjectNotFound
		m.observe("GetReplicaList", err)
		return nil, err
	}
	md := accessor.Get()
	if !md.AllReplicasComplete() {
		err := apierrors.ErrReplicaIsNotReady
		m.observe("GetReplicaList", err)
		return nil, err
	}

	if m.cfg.EnableGC {
		_ = m.gc.MarkForGC(key, 1000*time.Millisecond)
	} else {
		md.GrantLease(m.clock.Now(), m.cfg.DefaultKVLeaseTTL)
	}

	descriptors := make([]ReplicaDescriptor, 0, len(md.Replicas))
	for _, r := range md.Replicas {
		descriptors = append(descriptors, r.Descriptor(m.segments.NameOf))
	}
	m.observe("GetReplicaList", nil)
	return descriptors, nil
}

func validatePutStart(key string, valueLength uint64, sliceLengths []uint64, cfg ReplicateConfig) error {
	if key == "" || valueLength == 0 || cfg.ReplicaNum == 0 {
		return apierrors.ErrInvalidParams
	}
	var total uint64
	for _, sl := range sliceLengths {
		if sl > kMaxSliceSize {
			return apierrors.ErrInvalidParams
		}
		total += sl
	}
	if total != valueLength {
		return apierrors.ErrInvalidParams
	}
	return nil
}

// PutStart validates the request, checks for a live (non-stale) existing
// object, and allocates replica_num replicas of len(slice_lengths) handles
// each under one shared allocator-table read lock. Any allocation shortfall
// rolls back everything allocated so far in this call, sets need_eviction,
// and returns NO_AVAILABLE_HANDLE. PutStart calls for the same key that
// overlap in time are collapsed onto a single allocation attempt via
// putGroup and all receive its result; a call that starts after that
// attempt stored the object finds it and gets ErrObjectAlreadyExists.
func (m *Master) PutStart(key string, valueLength uint64, sliceLengths []uint64, cfg ReplicateConfig) ([]ReplicaDescriptor, error) {
	if err := validatePutStart(key, valueLength, sliceLengths, cfg); err != nil {
		m.observe("PutStart", err)
		return nil, err
	}

	v, err, _ := m.putGroup.Do(key, func() (interface{}, error) {
		return m.putStart(key, valueLength, sliceLengths, cfg)
	})
	if err != nil {
		m.observe("PutStart", err)
		return nil, err
	}
	m.observe("PutStart", nil)
	return v.([]ReplicaDescriptor), nil
}

func (m *Master) putStart(key string, valueLength uint64, sliceLengths []uint64, cfg ReplicateConfig) ([]ReplicaDescriptor, error) {
	accessor := NewMetadataAccessor(m.store, key)
	defer accessor.Release()

	if accessor.Exists() {
		existing := accessor.Get()
		if !existing.dropInvalidReplicas(m.segments.FreeHandle) {
			return nil, apierrors.ErrObjectAlreadyExists
		}
	}

	var replicas []*Replica
	allocFailed := false
	usedSegments := make(map[uuid.UUID]struct{})

	m.segments.withAllocators(func(views []AllocatorView) {
		byID := make(map[uuid.UUID]*BufferAllocator, len(views))
		for _, v := range views {
			byID[v.SegmentID] = v.Allocator
		}
		freeHandles := func(handles []*AllocatedBuffer) {
			for _, h := range handles {
				if alloc, ok := byID[h.SegmentID]; ok {
					alloc.Free(h)
				}
			}
		}

		for i := uint32(0); i < cfg.ReplicaNum; i++ {
			handles := make([]*AllocatedBuffer, 0, len(sliceLengths))
			for _, sl := range sliceLengths {
				handle := m.strategy.Allocate(views, sl, cfg, usedSegments)
				if handle == nil {
					allocFailed = true
					break
				}
				handles = append(handles, handle)
			}
			if allocFailed {
				freeHandles(handles)
				for _, r := range replicas {
					freeHandles(r.Handles)
				}
				replicas = nil
				return
			}
			replicas = append(replicas, &Replica{Handles: handles, Status: ReplicaProcessing})
		}
	})

	if allocFailed {
		m.gc.SetNeedEviction()
		return nil, apierrors.ErrNoAvailableHandle
	}

	accessor.Set(&ObjectMetadata{Size: valueLength, Replicas: replicas})

	descriptors := make([]ReplicaDescriptor, 0, len(replicas))
	for _, r := range replicas {
		descriptors = append(descriptors, r.Descriptor(m.segments.NameOf))
	}
	return descriptors, nil
}

// PutEnd marks every replica COMPLETE and immediately expires the lease
// (lease_timeout = now): the object is unprotected until the first read
// grants a fresh lease.
func (m *Master) PutEnd(key string) error {
	accessor := NewMetadataAccessor(m.store, key)
	defer accessor.Release()

	if !accessor.Exists() {
		err := apierrors.ErrObjectNotFound
		m.observe("PutEnd", err)
		return err
	}
	md := accessor.Get()
	for _, r := range md.Replicas {
		r.Status = ReplicaComplete
	}
	md.LeaseTimeout = m.clock.Now()
	m.observe("PutEnd", nil)
	return nil
}

// PutRevoke aborts an in-flight put, freeing every handle it allocated.
// Any replica not still PROCESSING makes the whole revoke INVALID_WRITE.
func (m *Master) PutRevoke(key string) error {
	accessor := NewMetadataAccessor(m.store, key)
	defer accessor.Release()

	if !accessor.Exists() {
		err := apierrors.ErrObjectNotFound
		m.observe("PutRevoke", err)
		return err
	}
	md := accessor.Get()
	if !md.AllReplicasProcessing() {
		err := apierrors.ErrInvalidWrite
		m.observe("PutRevoke", err)
		return err
	}
	m.freeAllHandles(md)
	accessor.Erase()
	m.observe("PutRevoke", nil)
	return nil
}

// Remove erases key, provided it has no live lease and every replica is
// COMPLETE. Frees every handle back to its allocator.
func (m *Master) Remove(key string) error {
	accessor := NewMetadataAccessor(m.store, key)
	defer accessor.Release()

	if !accessor.Exists() {
		err := apierrors.ErrObjectNotFound
		m.observe("Remove", err)
		return err
	}
	md := accessor.Get()
	now := m.clock.Now()
	if !md.IsLeaseExpired(now) {
		err := apierrors.ErrObjectHasLease
		m.observe("Remove", err)
		return err
	}
	if !md.AllReplicasComplete() {
		err := apierrors.ErrReplicaIsNotReady
		m.observe("Remove", err)
		return err
	}
	m.freeAllHandles(md)
	accessor.Erase()
	m.observe("Remove", nil)
	return nil
}

// RemoveAll walks every shard, erasing only objects with an expired lease,
// and returns the count removed.
func (m *Master) RemoveAll() uint64 {
	count := m.store.RemoveExpired(m.clock.Now(), m.segments.FreeHandle)
	m.observe("RemoveAll", nil)
	return count
}

// pingResult carries monitor.Ping's two return values through singleflight,
// which only propagates a single value plus an error.
type pingResult struct {
	status   ClientStatus
	enqueued bool
}

// Ping reports client liveness and enqueues a fresh ping regardless of the
// answer, so a client that follows a NEED_REMOUNT with ReMountSegment is
// kept alive by the ping that accompanied the failed call. Concurrent Ping
// calls for the same client — a caller retrying under a tight timeout,
// say — are collapsed via pingGroup onto a single bounded-queue enqueue
// instead of each consuming their own slot.
func (m *Master) Ping(clientID uuid.UUID) (ClientStatus, uint64, error) {
	if m.monitor == nil {
		err := apierrors.ErrUnavailableInCurrentMode
		m.observe("Ping", err)
		return ClientNeedRemount, 0, err
	}

	v, _, _ := m.pingGroup.Do(clientID.String(), func() (interface{}, error) {
		status, enqueued := m.monitor.Ping(clientID)
		return pingResult{status: status, enqueued: enqueued}, nil
	})
	res := v.(pingResult)

	if !res.enqueued {
		err := apierrors.ErrInternal
		m.observe("Ping", err)
		return res.status, m.cfg.ViewVersion, err
	}
	m.observe("Ping", nil)
	return res.status, m.cfg.ViewVersion, nil
}

// GetAllKeys, GetKeyCount, GetAllSegments, QuerySegments, GetClientSegments
// forward directly to the store/segment manager; they take no shared lock
// across the two subsystems.
func (m *Master) GetAllKeys() []string                { return m.store.GetAllKeys() }
func (m *Master) GetKeyCount() int                     { return m.store.GetKeyCount() }
func (m *Master) GetAllSegments() []string             { return m.segments.GetAllSegments() }
func (m *Master) QuerySegments(name string) (uint64, uint64, error) {
	return m.segments.QuerySegments(name)
}
func (m *Master) GetClientSegments(clientID uuid.UUID) []Segment {
	return m.segments.GetClientSegments(clientID)
}

// GetFsdir returns the cluster identifier HA clients use to resolve the
// controller. Non-HA deployments have no cluster_id, which is INVALID_PARAMS
// to ask for.
func (m *Master) GetFsdir() (string, error) {
	if m.cfg.ClusterID == "" {
		err := apierrors.ErrInvalidParams
		m.observe("GetFsdir", err)
		return "", err
	}
	m.observe("GetFsdir", nil)
	return m.cfg.ClusterID, nil
}

// SegmentUsageSnapshot exposes SegmentManager.AllSegmentUsage for the
// metrics sampler.
func (m *Master) SegmentUsageSnapshot() (names []string, used []uint64, totalUsed, totalCapacity uint64) {
	return m.segments.AllSegmentUsage()
}

func (m *Master) freeAllHandles(md *ObjectMetadata) {
	for _, r := range md.Replicas {
		for _, h := range r.Handles {
			m.segments.FreeHandle(h)
		}
	}
}
