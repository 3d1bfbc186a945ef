package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestCalcUniformBufferSize(t *testing.T) {
	cases := []struct {
		in   uint64
		want uint64
	}{
		{0, 0},
		{1, 256},
		{64, 256},
		{255, 256},
		{256, 256},
		{257, 512},
		{1024, 1024},
		{1025, 1280},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CalcUniformBufferSize(tc.in), "size %d", tc.in)
	}
}

func TestDeviceLocalUsageCarriesBothTransferBits(t *testing.T) {
	// Readback copies the buffer back out, so transfer-src has to be
	// there alongside the transfer-dst the upload needs.
	for _, usage := range []vk.BufferUsageFlagBits{
		vk.BufferUsageVertexBufferBit,
		vk.BufferUsageIndexBufferBit,
		vk.BufferUsageUniformBufferBit,
	} {
		flags := deviceLocalUsage(usage)
		assert.NotZero(t, flags&vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), "usage %#x", usage)
		assert.NotZero(t, flags&vk.BufferUsageFlags(vk.BufferUsageTransferDstBit), "usage %#x", usage)
		assert.NotZero(t, flags&vk.BufferUsageFlags(usage), "usage %#x", usage)
	}
}

func TestCalcUniformBufferSizeAlwaysAligned(t *testing.T) {
	for size := uint64(1); size < 4096; size += 37 {
		aligned := CalcUniformBufferSize(size)
		assert.Zero(t, aligned%UniformBufferAlignment)
		assert.GreaterOrEqual(t, aligned, size)
		assert.Less(t, aligned-size, UniformBufferAlignment)
	}
}
