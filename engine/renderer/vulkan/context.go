package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spinvector/orbit/engine/core"
)

type VulkanContext struct {
	// The framebuffer's current width.
	FramebufferWidth uint32
	// The framebuffer's current height.
	FramebufferHeight uint32

	Instance  vk.Instance
	Allocator *vk.AllocationCallbacks
	Surface   vk.Surface

	// Only installed when validation is enabled.
	debugMessenger vk.DebugReportCallback

	Device *VulkanDevice

	Swapchain      *VulkanSwapchain
	MainRenderpass *VulkanRenderpass

	// The single primary command buffer. Safe to reset at the top of a
	// frame because every frame ends in a full Flush.
	CommandBuffer *VulkanCommandBuffer

	ImageAvailableSemaphore vk.Semaphore
	QueueCompleteSemaphore  vk.Semaphore

	// Flush bookkeeping: the monotonic counter and the fence it waits on.
	FlushCounter *FenceCounter
	FlushFence   *VulkanFence

	// Index of the swapchain image the current frame renders into.
	ImageIndex uint32

	RecreatingSwapchain bool
}

func (vc *VulkanContext) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	var memoryProperties vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(vc.Device.PhysicalDevice, &memoryProperties)
	memoryProperties.Deref()

	for i := uint32(0); i < memoryProperties.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		memoryProperties.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(memoryProperties.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}
