package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestVulkanSafeString(t *testing.T) {
	assert.Equal(t, "VK_KHR_surface\x00", VulkanSafeString("VK_KHR_surface"))
	assert.Equal(t, "already\x00", VulkanSafeString("already\x00"))
	assert.Equal(t, "\x00", VulkanSafeString(""))
}

func TestVulkanSafeStrings(t *testing.T) {
	out := VulkanSafeStrings([]string{"a", "b\x00"})
	assert.Equal(t, []string{"a\x00", "b\x00"}, out)
}

func TestFindFirstZeroInByteArray(t *testing.T) {
	assert.Equal(t, 3, FindFirstZeroInByteArray([]byte{'a', 'b', 'c', 0, 'x'}))
	assert.Equal(t, 0, FindFirstZeroInByteArray([]byte{'a', 'b', 'c'}))
}

func TestVulkanResultString(t *testing.T) {
	assert.Equal(t, "VK_SUCCESS", VulkanResultString(vk.Success, false))
	assert.Equal(t, "VK_ERROR_OUT_OF_DATE_KHR", VulkanResultString(vk.ErrorOutOfDate, true))
}

func TestVulkanResultIsSuccess(t *testing.T) {
	assert.True(t, VulkanResultIsSuccess(vk.Success))
	assert.True(t, VulkanResultIsSuccess(vk.Suboptimal))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorDeviceLost))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorOutOfDate))
}
