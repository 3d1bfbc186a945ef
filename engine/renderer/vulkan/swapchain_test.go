package vulkan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAdvanceImageIndexCyclesDoubleBuffer(t *testing.T) {
	assert.Equal(t, uint32(1), AdvanceImageIndex(0, SwapchainImageCount))
	assert.Equal(t, uint32(0), AdvanceImageIndex(1, SwapchainImageCount))

	// Walk a few frames worth of presents.
	index := uint32(0)
	seen := []uint32{}
	for i := 0; i < 6; i++ {
		index = AdvanceImageIndex(index, SwapchainImageCount)
		seen = append(seen, index)
	}
	assert.Equal(t, []uint32{1, 0, 1, 0, 1, 0}, seen)
}

func TestAdvanceImageIndexLargerChains(t *testing.T) {
	assert.Equal(t, uint32(2), AdvanceImageIndex(1, 3))
	assert.Equal(t, uint32(0), AdvanceImageIndex(2, 3))
}

func TestAdvanceImageIndexZeroCount(t *testing.T) {
	assert.Equal(t, uint32(0), AdvanceImageIndex(5, 0))
}
