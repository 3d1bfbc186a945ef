package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockResetAndTick(t *testing.T) {
	c := NewClock()
	c.Reset()

	assert.False(t, c.Stopped())
	assert.Equal(t, 0.0, c.Delta())

	time.Sleep(5 * time.Millisecond)
	c.Tick()

	assert.Greater(t, c.Delta(), 0.0)
	assert.Less(t, c.Delta(), 1.0)
	assert.GreaterOrEqual(t, c.Total(), c.Delta())
}

func TestClockStoppedReportsZeroDelta(t *testing.T) {
	c := NewClock()
	c.Reset()
	c.Stop()

	assert.True(t, c.Stopped())
	time.Sleep(2 * time.Millisecond)
	c.Tick()
	assert.Equal(t, 0.0, c.Delta())
}

func TestClockStopExcludesPausedSpan(t *testing.T) {
	c := NewClock()
	c.Reset()

	time.Sleep(5 * time.Millisecond)
	c.Tick()
	runningTotal := c.Total()

	c.Stop()
	time.Sleep(20 * time.Millisecond)
	c.Start()
	c.Tick()

	// The 20ms spent stopped must not count toward the total.
	assert.Less(t, c.Total(), runningTotal+0.015)
}

func TestClockStartWithoutStopIsNoop(t *testing.T) {
	c := NewClock()
	c.Reset()
	c.Start()
	assert.False(t, c.Stopped())

	c.Stop()
	c.Stop() // second stop must not push stopTime forward
	assert.True(t, c.Stopped())
}
