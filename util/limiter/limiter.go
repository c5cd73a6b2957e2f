// Copyright 2023 The Cuber Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package limiter bounds the number of request handlers running
// concurrently. The original limiter also throttled byte-rate on data
// streamed through reader/writer wrappers; the master never streams object
// bytes itself (transfer is client-to-client over segment memory, out of
// scope per the transport boundary), so only the concurrency-count half of
// the original limiter survives here, repurposed to cap concurrent RPC
// handlers at min(max_threads, hw_threads).
package limiter

import (
	"errors"
	"sync/atomic"
)

const minusOne = ^uint32(0)

// ErrLimitExceeded is returned by Acquire when the handler concurrency cap
// is already saturated.
var ErrLimitExceeded = errors.New("request handler concurrency limit exceeded")

// CountLimit is a lock-free semaphore over a concurrency count, grounded on
// the original limiter's countLimit.
type CountLimit interface {
	Running() int
	Acquire() error
	Release()
	SetLimit(limit uint32)
}

type countLimit struct {
	limit   uint32
	current uint32
}

// NewCountLimit returns a CountLimit admitting at most n concurrent holders.
// n <= 0 means unlimited.
func NewCountLimit(n int) CountLimit {
	limit := uint32(minusOne)
	if n > 0 {
		limit = uint32(n)
	}
	return &countLimit{limit: limit}
}

func (l *countLimit) Running() int {
	return int(atomic.LoadUint32(&l.current))
}

func (l *countLimit) Acquire() error {
	if atomic.AddUint32(&l.current, 1) > atomic.LoadUint32(&l.limit) {
		atomic.AddUint32(&l.current, minusOne)
		return ErrLimitExceeded
	}
	return nil
}

func (l *countLimit) Release() {
	atomic.AddUint32(&l.current, minusOne)
}

func (l *countLimit) SetLimit(limit uint32) {
	atomic.StoreUint32(&l.limit, limit)
}

// RequestLimiter bounds concurrent request-handler execution to
// min(max_threads, hw_threads). Handlers that would exceed the cap fail
// fast with
// ErrLimitExceeded rather than queueing, since the master has no notion of
// request priority to queue against.
type RequestLimiter struct {
	handlers CountLimit
}

func NewRequestLimiter(maxThreads, hwThreads int) *RequestLimiter {
	n := maxThreads
	if hwThreads > 0 && (n <= 0 || hwThreads < n) {
		n = hwThreads
	}
	return &RequestLimiter{handlers: NewCountLimit(n)}
}

func (r *RequestLimiter) Acquire() error { return r.handlers.Acquire() }
func (r *RequestLimiter) Release()       { r.handlers.Release() }
func (r *RequestLimiter) Running() int   { return r.handlers.Running() }
