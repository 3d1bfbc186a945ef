package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFenceCounterStartsIdle(t *testing.T) {
	c := &FenceCounter{}
	assert.Equal(t, uint64(0), c.Target())
	assert.Equal(t, uint64(0), c.Completed())
	assert.False(t, c.Pending())
}

func TestFenceCounterAdvance(t *testing.T) {
	c := &FenceCounter{}

	assert.Equal(t, uint64(1), c.Advance())
	assert.Equal(t, uint64(2), c.Advance())
	assert.Equal(t, uint64(3), c.Advance())

	assert.Equal(t, uint64(3), c.Target())
	assert.Equal(t, uint64(0), c.Completed())
	assert.True(t, c.Pending())
}

func TestFenceCounterRetire(t *testing.T) {
	c := &FenceCounter{}
	c.Advance()
	c.Advance()

	c.Retire(1)
	assert.Equal(t, uint64(1), c.Completed())
	assert.True(t, c.Pending())

	c.Retire(2)
	assert.Equal(t, uint64(2), c.Completed())
	assert.False(t, c.Pending())
}

func TestFenceCounterRetireNeverDecreases(t *testing.T) {
	c := &FenceCounter{}
	c.Advance()
	c.Advance()
	c.Retire(2)

	c.Retire(1)
	assert.Equal(t, uint64(2), c.Completed())
}

func TestFenceCounterRetireClampedToTarget(t *testing.T) {
	c := &FenceCounter{}
	c.Advance()

	// Completed can never run ahead of the target.
	c.Retire(100)
	assert.Equal(t, uint64(1), c.Completed())
}

func TestFenceCounterFullFrameCycle(t *testing.T) {
	c := &FenceCounter{}
	for frame := 1; frame <= 1000; frame++ {
		target := c.Advance()
		assert.Equal(t, uint64(frame), target)
		assert.True(t, c.Pending())
		c.Retire(target)
		assert.False(t, c.Pending())
	}
}
