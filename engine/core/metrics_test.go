package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRollingAverage(t *testing.T) {
	require.NoError(t, MetricsInitialize())
	metricsState = &MetricsState{}

	// A full window of 16ms frames averages to 16ms.
	for i := uint8(0); i < AVG_COUNT; i++ {
		MetricsUpdate(0.016)
	}
	_, msavg, _ := MetricsFrame()
	assert.InDelta(t, 16.0, msavg, 1e-9)
}

func TestMetricsSecondElapsed(t *testing.T) {
	require.NoError(t, MetricsInitialize())
	metricsState = &MetricsState{}

	// Nine frames of 100ms stay under a second.
	for i := 0; i < 9; i++ {
		MetricsUpdate(0.1)
		_, _, second := MetricsFrame()
		assert.False(t, second)
	}

	// The eleventh frame crosses the 1000ms threshold.
	MetricsUpdate(0.1)
	MetricsUpdate(0.1)
	fps, _, second := MetricsFrame()
	assert.True(t, second)
	assert.Equal(t, 10.0, fps)

	// The flag resets on the next update.
	MetricsUpdate(0.1)
	_, _, second = MetricsFrame()
	assert.False(t, second)
}
