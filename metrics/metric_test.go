package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

// Collector and CapacityGauges both register their metrics on the shared
// package-level Registry, which panics on duplicate registration — so this
// suite builds exactly one of each and exercises every method against them,
// rather than one Collector per test function.
func TestCollectorAndCapacityGauges(t *testing.T) {
	c := NewCollector()
	g := NewCapacityGauges()

	c.IncActiveClients()
	c.IncActiveClients()
	c.DecActiveClients()
	require.Equal(t, float64(1), testutil.ToFloat64(c.activeClients))

	c.IncEvictionSuccess(3, 4096)
	require.Equal(t, float64(3), testutil.ToFloat64(c.evictionSuccessTotal))
	require.Equal(t, float64(4096), testutil.ToFloat64(c.evictionFreedBytes))

	c.IncEvictionFail()
	require.Equal(t, float64(1), testutil.ToFloat64(c.evictionFailTotal))

	c.ObserveOp("PutStart", nil)
	c.ObserveOp("PutStart", errors.New("boom"))
	require.Equal(t, float64(1), testutil.ToFloat64(c.opTotal.WithLabelValues("PutStart", "ok")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.opTotal.WithLabelValues("PutStart", "error")))

	g.Sample(50, 100, []string{"seg-a", "seg-b"}, []uint64{30, 20})
	require.Equal(t, float64(0.5), testutil.ToFloat64(g.usedRatio))
	require.Equal(t, float64(100), testutil.ToFloat64(g.totalCapacity))
	require.Equal(t, float64(30), testutil.ToFloat64(g.segmentUsed.WithLabelValues("seg-a")))
}

func TestCapacityGaugesSampleZeroCapacity(t *testing.T) {
	// built directly, not via NewCapacityGauges, to avoid a duplicate
	// registration panic against the shared package Registry.
	g := &CapacityGauges{
		usedRatio:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_used_ratio"}),
		totalCapacity: prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_total_capacity"}),
	}
	g.Sample(0, 0, nil, nil)
	require.Equal(t, float64(0), testutil.ToFloat64(g.usedRatio))
}
