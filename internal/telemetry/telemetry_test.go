package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersAgainstRegistry(t *testing.T) {
	m := NewMetrics("telemetry_test_registers")
	require.NotNil(t, m)

	families, err := Registry.Gather()
	require.NoError(t, err)

	var found bool
	for _, f := range families {
		if f.GetName() == "telemetry_test_registers_orders_created_total" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestObserveLatency_RecordsDuration(t *testing.T) {
	m := NewMetrics("telemetry_test_latency")
	start := time.Now().Add(-5 * time.Millisecond)
	m.ObserveLatency(start)

	families, err := Registry.Gather()
	require.NoError(t, err)

	var sampleCount uint64
	for _, f := range families {
		if f.GetName() == "telemetry_test_latency_trade_execution_seconds" {
			sampleCount = f.GetMetric()[0].GetHistogram().GetSampleCount()
		}
	}
	assert.Equal(t, uint64(1), sampleCount)
}

func TestNewLogger_BuildsBothModes(t *testing.T) {
	dev, err := NewLogger(true)
	require.NoError(t, err)
	assert.NotNil(t, dev)

	prod, err := NewLogger(false)
	require.NoError(t, err)
	assert.NotNil(t, prod)
}
