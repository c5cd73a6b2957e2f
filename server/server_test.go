package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewServerRejectsOutOfRangeEvictionRatio(t *testing.T) {
	_, err := NewServer(Config{EvictionRatio: 1.5, EvictionHighWatermarkRatio: 0.5})
	require.Error(t, err)

	_, err = NewServer(Config{EvictionRatio: 0.5, EvictionHighWatermarkRatio: -0.1})
	require.Error(t, err)
}

func TestNewServerAcceptsValidConfigWithoutMetrics(t *testing.T) {
	srv, err := NewServer(Config{EvictionRatio: 0.1, EvictionHighWatermarkRatio: 0.9})
	require.NoError(t, err)
	require.NotNil(t, srv)
	require.Nil(t, srv.collector)
	require.Nil(t, srv.capacity)
}

func TestNewServerBuildsMetricsWhenEnabled(t *testing.T) {
	srv, err := NewServer(Config{
		EvictionRatio:              0.1,
		EvictionHighWatermarkRatio: 0.9,
		EnableMetricReporting:      true,
	})
	require.NoError(t, err)
	require.NotNil(t, srv.collector)
	require.NotNil(t, srv.capacity)
}
