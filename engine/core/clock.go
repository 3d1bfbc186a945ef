package core

import "time"

// Clock measures frame delta and total running time in seconds.
// Stopped spans (window unfocused or minimized) are excluded from
// the total.
type Clock struct {
	baseTime   time.Time
	stopTime   time.Time
	prevTime   time.Time
	pausedTime time.Duration
	delta      float64
	stopped    bool
}

func NewClock() *Clock {
	return &Clock{}
}

// Resets the clock to a zero total and starts it.
func (c *Clock) Reset() {
	now := time.Now()
	c.baseTime = now
	c.prevTime = now
	c.pausedTime = 0
	c.stopped = false
	c.delta = 0
}

// Resumes a stopped clock. Time spent stopped is accumulated so it
// never counts toward the total.
func (c *Clock) Start() {
	if !c.stopped {
		return
	}
	now := time.Now()
	c.pausedTime += now.Sub(c.stopTime)
	c.prevTime = now
	c.stopped = false
}

// Stops the clock. Has no effect if already stopped.
func (c *Clock) Stop() {
	if c.stopped {
		return
	}
	c.stopTime = time.Now()
	c.stopped = true
}

// Advances the clock one frame. Call once per loop iteration, then
// read Delta. A stopped clock reports a zero delta.
func (c *Clock) Tick() {
	if c.stopped {
		c.delta = 0
		return
	}
	now := time.Now()
	c.delta = now.Sub(c.prevTime).Seconds()
	c.prevTime = now
	// Clamp against negative drift when the process is descheduled
	// across a suspend.
	if c.delta < 0 {
		c.delta = 0
	}
}

func (c *Clock) Delta() float64 {
	return c.delta
}

// Total seconds since Reset, excluding stopped spans.
func (c *Clock) Total() float64 {
	if c.stopped {
		return c.stopTime.Sub(c.baseTime).Seconds() - c.pausedTime.Seconds()
	}
	return c.prevTime.Sub(c.baseTime).Seconds() - c.pausedTime.Seconds()
}

func (c *Clock) Stopped() bool {
	return c.stopped
}
