package metrics

import (
	grpcprometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Registry = prometheus.NewRegistry()

	GRPCMetrics = grpcprometheus.NewServerMetrics(
		func(c *prometheus.CounterOpts) {
			c.Namespace = "kvmaster"
		},
	)
)

func init() {
	Registry.MustRegister(
		GRPCMetrics,
	)
	GRPCMetrics.EnableHandlingTimeHistogram(
		func(h *prometheus.HistogramOpts) {
			h.Namespace = "kvmaster"
		},
	)
}

// Collector satisfies master.Metrics: active client count, eviction
// outcomes, and per-RPC op counts, all exported under the kvmaster
// namespace alongside GRPCMetrics on the same Registry.
type Collector struct {
	activeClients prometheus.Gauge

	evictionSuccessTotal prometheus.Counter
	evictionFailTotal    prometheus.Counter
	evictionFreedBytes   prometheus.Counter

	opTotal prometheus.CounterVec
}

func NewCollector() *Collector {
	c := &Collector{
		activeClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kvmaster",
			Name:      "active_clients",
			Help:      "Number of clients currently considered live by the client monitor.",
		}),
		evictionSuccessTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kvmaster",
			Name:      "eviction_success_total",
			Help:      "Number of objects evicted by BatchEvict passes.",
		}),
		evictionFailTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kvmaster",
			Name:      "eviction_fail_total",
			Help:      "Number of BatchEvict passes that evicted nothing despite being triggered.",
		}),
		evictionFreedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "kvmaster",
			Name:      "eviction_freed_bytes_total",
			Help:      "Cumulative bytes reclaimed by eviction.",
		}),
		opTotal: *prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "kvmaster",
			Name:      "op_total",
			Help:      "Request count per master operation, labeled by outcome.",
		}, []string{"op", "outcome"}),
	}
	Registry.MustRegister(
		c.activeClients,
		c.evictionSuccessTotal,
		c.evictionFailTotal,
		c.evictionFreedBytes,
		&c.opTotal,
	)
	return c
}

func (c *Collector) IncActiveClients() { c.activeClients.Inc() }
func (c *Collector) DecActiveClients() { c.activeClients.Dec() }

func (c *Collector) IncEvictionSuccess(count int, freedBytes uint64) {
	c.evictionSuccessTotal.Add(float64(count))
	c.evictionFreedBytes.Add(float64(freedBytes))
}

func (c *Collector) IncEvictionFail() { c.evictionFailTotal.Inc() }

func (c *Collector) ObserveOp(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.opTotal.WithLabelValues(op, outcome).Inc()
}

// CapacityGauges tracks used/total bytes and per-segment usage, sampled
// periodically from SegmentManager rather than pushed per-operation, since
// they are aggregate reads over every mounted allocator.
type CapacityGauges struct {
	usedRatio     prometheus.Gauge
	totalCapacity prometheus.Gauge
	segmentUsed   prometheus.GaugeVec
}

func NewCapacityGauges() *CapacityGauges {
	g := &CapacityGauges{
		usedRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kvmaster",
			Name:      "used_ratio",
			Help:      "Global used-bytes / total-capacity ratio across all mounted segments.",
		}),
		totalCapacity: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "kvmaster",
			Name:      "total_capacity_bytes",
			Help:      "Sum of capacity across all mounted segments.",
		}),
		segmentUsed: *prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "kvmaster",
			Name:      "segment_used_bytes",
			Help:      "Used bytes per named segment.",
		}, []string{"segment"}),
	}
	Registry.MustRegister(g.usedRatio, g.totalCapacity, &g.segmentUsed)
	return g
}

// Sample updates the gauges from a fresh snapshot. names must line up
// positionally with usedPerSegment; the caller (the metrics-sampling loop
// in server) is responsible for building both from the same SegmentManager
// pass.
func (g *CapacityGauges) Sample(used, capacity uint64, names []string, usedPerSegment []uint64) {
	var ratio float64
	if capacity > 0 {
		ratio = float64(used) / float64(capacity)
	}
	g.usedRatio.Set(ratio)
	g.totalCapacity.Set(float64(capacity))
	for i, name := range names {
		if i < len(usedPerSegment) {
			g.segmentUsed.WithLabelValues(name).Set(float64(usedPerSegment[i]))
		}
	}
}
