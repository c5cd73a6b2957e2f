package master

import (
	"sync"
	"time"

	"github.com/kvcachestore/master/uuid"
	"golang.org/x/time/rate"
)

// kClientMonitorSleepMs is the pause between client-liveness sweeps.
const kClientMonitorSleepMs = 100 * time.Millisecond

const defaultClientPingQueueCapacity = 1 << 12

// pingAdmitRate/pingAdmitBurst bound how fast EnqueuePing accepts pings
// system-wide, so a single misbehaving client cannot monopolize the shared
// bounded queue and starve pings from every other client.
const (
	pingAdmitRate  = rate.Limit(20000)
	pingAdmitBurst = 4000
)

// ClientStatus is returned by Ping.
type ClientStatus int

const (
	ClientOK ClientStatus = iota
	ClientNeedRemount
)

// ClientMonitorMetrics receives active-client-count deltas.
type ClientMonitorMetrics interface {
	IncActiveClients()
	DecActiveClients()
}

// ClientMonitor detects dead clients and reclaims their segments, HA mode
// only. ok_clients is guarded by a dedicated RWMutex (the client
// write-lock in the master's lock ordering); client_ttl is private to the
// monitor goroutine, fed only through the bounded ping queue.
type ClientMonitor struct {
	pingQueue *boundedQueue[uuid.UUID]

	mu        sync.RWMutex
	okClients map[uuid.UUID]struct{}

	segments *SegmentManager
	store    *ObjectMetadataStore
	clock    Clock
	liveTTL  time.Duration
	metrics  ClientMonitorMetrics
	admit    *rate.Limiter

	sleep    time.Duration
	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

func NewClientMonitor(segments *SegmentManager, store *ObjectMetadataStore, clock Clock, liveTTL time.Duration, metrics ClientMonitorMetrics) *ClientMonitor {
	return &ClientMonitor{
		pingQueue: newBoundedQueue[uuid.UUID](defaultClientPingQueueCapacity),
		okClients: make(map[uuid.UUID]struct{}),
		segments:  segments,
		store:     store,
		clock:     clock,
		liveTTL:   liveTTL,
		metrics:   metrics,
		admit:     rate.NewLimiter(pingAdmitRate, pingAdmitBurst),
		sleep:     kClientMonitorSleepMs,
		done:      make(chan struct{}),
	}
}

// EnqueuePing pushes a liveness signal for clientID. Returns false if the
// admission rate limiter is exhausted or the bounded queue is full —
// callers surface this as INTERNAL_ERROR and the client is expected to
// retry.
func (m *ClientMonitor) EnqueuePing(clientID uuid.UUID) bool {
	if !m.admit.Allow() {
		return false
	}
	return m.pingQueue.Push(clientID)
}

// IsOK reports whether clientID is currently considered live.
func (m *ClientMonitor) IsOK(clientID uuid.UUID) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.okClients[clientID]
	return ok
}

// MarkOK adds clientID to the live set and counts it as an active client.
// Returns true if the client transitioned from not-OK. Master.ReMountSegment
// does the same through markOKLocked while it holds the client write-lock.
func (m *ClientMonitor) MarkOK(clientID uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.okClients[clientID]; ok {
		return false
	}
	m.okClients[clientID] = struct{}{}
	if m.metrics != nil {
		m.metrics.IncActiveClients()
	}
	return true
}

// Lock/Unlock expose the client write-lock directly so Master.ReMountSegment
// can hold it across both the ok_clients membership check and the segment
// manager call, matching the required lock order: client write-lock, then
// segment write-lock.
func (m *ClientMonitor) Lock()    { m.mu.Lock() }
func (m *ClientMonitor) Unlock()  { m.mu.Unlock() }
func (m *ClientMonitor) isOKLocked(clientID uuid.UUID) bool {
	_, ok := m.okClients[clientID]
	return ok
}
func (m *ClientMonitor) markOKLocked(clientID uuid.UUID) {
	m.okClients[clientID] = struct{}{}
}

// Ping refreshes clientID's TTL and reports whether it is currently live.
// The ping is enqueued unconditionally, even when the answer is
// NEED_REMOUNT, so that a client which subsequently calls ReMountSegment is
// kept alive by the ping that accompanied the failed Ping call.
func (m *ClientMonitor) Ping(clientID uuid.UUID) (ClientStatus, bool) {
	status := ClientNeedRemount
	if m.IsOK(clientID) {
		status = ClientOK
	}
	ok := m.EnqueuePing(clientID)
	return status, ok
}

func (m *ClientMonitor) Start() {
	m.wg.Add(1)
	go m.loop()
}

func (m *ClientMonitor) Stop() {
	m.stopOnce.Do(func() { close(m.done) })
	m.wg.Wait()
}

func (m *ClientMonitor) loop() {
	defer m.wg.Done()

	clientTTL := make(map[uuid.UUID]time.Time)
	ticker := time.NewTicker(m.sleep)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.tick(clientTTL)
		}
	}
}

// tick runs one monitor pass: drain pings, find expired clients, then
// unmount their segments via the same two-phase protocol as an explicit
// UnmountSegment call. The client write-lock is never held across the
// unbounded ClearInvalidHandles sweep.
func (m *ClientMonitor) tick(clientTTL map[uuid.UUID]time.Time) {
	now := m.clock.Now()

	for {
		clientID, ok := m.pingQueue.TryPop()
		if !ok {
			break
		}
		clientTTL[clientID] = now.Add(m.liveTTL)
	}

	var expired []uuid.UUID
	for clientID, deadline := range clientTTL {
		if deadline.Before(now) {
			expired = append(expired, clientID)
			delete(clientTTL, clientID)
		}
	}
	if len(expired) == 0 {
		return
	}

	type pendingUnmount struct {
		segmentID   uuid.UUID
		clientID    uuid.UUID
		decCapacity uint64
	}
	var pending []pendingUnmount

	m.mu.Lock()
	for _, clientID := range expired {
		if _, ok := m.okClients[clientID]; ok {
			delete(m.okClients, clientID)
			if m.metrics != nil {
				m.metrics.DecActiveClients()
			}
		}
	}
	for _, clientID := range expired {
		for _, seg := range m.segments.GetClientSegments(clientID) {
			decCapacity, found, err := m.segments.PrepareUnmountSegment(seg.ID, clientID)
			if err != nil || !found {
				continue
			}
			pending = append(pending, pendingUnmount{segmentID: seg.ID, clientID: clientID, decCapacity: decCapacity})
		}
	}
	m.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	m.store.ClearInvalidHandles(m.segments.FreeHandle)

	for _, p := range pending {
		_ = m.segments.CommitUnmountSegment(p.segmentID, p.clientID)
	}
}
