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

package limiter

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCountLimit(t *testing.T) {
	l := NewCountLimit(1)
	require.NoError(t, l.Acquire())
	require.Equal(t, ErrLimitExceeded, l.Acquire())
	require.Equal(t, 1, l.Running())

	l.SetLimit(2)
	require.NoError(t, l.Acquire())
	require.Equal(t, 2, l.Running())

	l.Release()
	l.Release()
	require.Equal(t, 0, l.Running())
}

func TestCountLimitUnlimited(t *testing.T) {
	l := NewCountLimit(0)
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Acquire())
	}
	require.Equal(t, 100, l.Running())
}

func TestRequestLimiterCapsAtMin(t *testing.T) {
	l := NewRequestLimiter(2, 8)
	require.NoError(t, l.Acquire())
	require.NoError(t, l.Acquire())
	require.Equal(t, ErrLimitExceeded, l.Acquire())
	require.Equal(t, 2, l.Running())

	l.Release()
	l.Release()
	require.Equal(t, 0, l.Running())
}

func TestRequestLimiterUnboundedMaxThreadsFallsBackToHW(t *testing.T) {
	l := NewRequestLimiter(0, 3)
	require.NoError(t, l.Acquire())
	require.NoError(t, l.Acquire())
	require.NoError(t, l.Acquire())
	require.Equal(t, ErrLimitExceeded, l.Acquire())
}

func TestRequestLimiterConcurrent(t *testing.T) {
	l := NewRequestLimiter(4, 4)
	var wg sync.WaitGroup
	var admitted, rejected int32
	var mu sync.Mutex
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(); err != nil {
				mu.Lock()
				rejected++
				mu.Unlock()
				return
			}
			mu.Lock()
			admitted++
			mu.Unlock()
			l.Release()
		}()
	}
	wg.Wait()
	require.Equal(t, int32(32), admitted+rejected)
	require.Equal(t, 0, l.Running())
}
