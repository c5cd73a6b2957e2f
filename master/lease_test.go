package master

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestManualClockAdvance(t *testing.T) {
	start := time.Unix(1000, 0)
	c := newManualClock(start)
	require.Equal(t, start, c.Now())

	c.Advance(5 * time.Second)
	require.Equal(t, start.Add(5*time.Second), c.Now())
}

func TestRealClockMovesForward(t *testing.T) {
	c := realClock{}
	t1 := c.Now()
	time.Sleep(time.Millisecond)
	t2 := c.Now()
	require.True(t, t2.After(t1))
}
