package server

import (
	"time"

	"github.com/kvcachestore/master/master"
	"github.com/kvcachestore/master/metrics"
)

// Config is the on-disk server configuration, loaded via
// blobstore/common/config in cmd/kvmaster.
type Config struct {
	Port                  int    `json:"port"`
	MaxThreads            int    `json:"max_threads"`
	EnableGC              bool   `json:"enable_gc"`
	EnableMetricReporting bool   `json:"enable_metric_reporting"`
	MetricsPort           int    `json:"metrics_port"`
	ControllerURL         string `json:"controller_url"`

	EnableHA         bool   `json:"enable_ha"`
	ViewVersion      uint64 `json:"view_version"`
	ClientLiveTTLSec int    `json:"client_live_ttl_sec"`
	ClusterID        string `json:"cluster_id"`

	EvictionRatio              float64 `json:"eviction_ratio"`
	EvictionHighWatermarkRatio float64 `json:"eviction_high_watermark_ratio"`
	DefaultKVLeaseTTLMs        int     `json:"default_kv_lease_ttl_ms"`
}

// Server owns the Master core plus the metrics collectors both the gRPC and
// HTTP front ends read from.
type Server struct {
	cfg Config

	master     *master.Master
	collector  *metrics.Collector
	capacity   *metrics.CapacityGauges
}

// NewServer validates the eviction ratios at startup, builds the Master
// core, and wires it to the metrics collectors when EnableMetricReporting
// is set.
func NewServer(cfg Config) (*Server, error) {
	if cfg.EvictionRatio < 0 || cfg.EvictionRatio > 1 {
		return nil, errInvalidEvictionRatio("eviction_ratio", cfg.EvictionRatio)
	}
	if cfg.EvictionHighWatermarkRatio < 0 || cfg.EvictionHighWatermarkRatio > 1 {
		return nil, errInvalidEvictionRatio("eviction_high_watermark_ratio", cfg.EvictionHighWatermarkRatio)
	}

	var collector *metrics.Collector
	var capacity *metrics.CapacityGauges
	var m master.Metrics
	if cfg.EnableMetricReporting {
		collector = metrics.NewCollector()
		capacity = metrics.NewCapacityGauges()
		m = collector
	}

	mc := master.Config{
		Port:                  cfg.Port,
		MaxThreads:            cfg.MaxThreads,
		EnableGC:              cfg.EnableGC,
		EnableMetricReporting: cfg.EnableMetricReporting,
		MetricsPort:           cfg.MetricsPort,
		ControllerURL:         cfg.ControllerURL,
		EnableHA:              cfg.EnableHA,
		ViewVersion:           cfg.ViewVersion,
		ClientLiveTTL:         time.Duration(cfg.ClientLiveTTLSec) * time.Second,
		ClusterID:             cfg.ClusterID,
		Eviction: master.EvictionConfig{
			EvictionRatio:              cfg.EvictionRatio,
			EvictionHighWatermarkRatio: cfg.EvictionHighWatermarkRatio,
		},
		DefaultKVLeaseTTL: time.Duration(cfg.DefaultKVLeaseTTLMs) * time.Millisecond,
	}

	return &Server{
		cfg:       cfg,
		master:    master.NewMaster(mc, m),
		collector: collector,
		capacity:  capacity,
	}, nil
}

func (s *Server) Start() { s.master.Start() }
func (s *Server) Close() { s.master.Stop() }

// sampleCapacity refreshes the used-ratio/per-segment gauges. Called on a
// timer by the HTTP server rather than per-request, since it is an
// aggregate scan over every mounted allocator.
func (s *Server) sampleCapacity() {
	if s.capacity == nil {
		return
	}
	names, used, totalUsed, totalCapacity := s.master.SegmentUsageSnapshot()
	s.capacity.Sample(totalUsed, totalCapacity, names, used)
}
