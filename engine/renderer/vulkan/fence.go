package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spinvector/orbit/engine/core"
)

// FenceCounter tracks GPU progress as a monotonic 64-bit counter.
// Target advances by one for every flush point the CPU marks;
// Completed trails it and is caught up once the GPU signals the wait
// primitive. Neither value ever decreases.
type FenceCounter struct {
	target    uint64
	completed uint64
}

// Marks a new flush point and returns its value.
func (f *FenceCounter) Advance() uint64 {
	f.target++
	return f.target
}

func (f *FenceCounter) Target() uint64 {
	return f.target
}

func (f *FenceCounter) Completed() uint64 {
	return f.completed
}

// Reports whether GPU work marked by the counter is still in flight.
func (f *FenceCounter) Pending() bool {
	return f.completed < f.target
}

// Records that the GPU reached the given flush point. Stale values
// are ignored so completion can never run backwards.
func (f *FenceCounter) Retire(value uint64) {
	if value > f.target {
		value = f.target
	}
	if value > f.completed {
		f.completed = value
	}
}

type VulkanFence struct {
	Handle     vk.Fence
	IsSignaled bool
}

func NewFence(context *VulkanContext, createSignaled bool) (*VulkanFence, error) {
	fence := &VulkanFence{
		// Make sure to signal the fence if required.
		IsSignaled: createSignaled,
	}

	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
	}
	if fence.IsSignaled {
		fenceCreateInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}

	var pFence vk.Fence
	if res := vk.CreateFence(context.Device.LogicalDevice, &fenceCreateInfo, context.Allocator, &pFence); res != vk.Success {
		err := fmt.Errorf("failed to create fence")
		core.LogError(err.Error())
		return nil, err
	}
	fence.Handle = pFence
	return fence, nil
}

func (vf *VulkanFence) FenceDestroy(context *VulkanContext) {
	if vf.Handle != nil {
		vk.DestroyFence(context.Device.LogicalDevice, vf.Handle, context.Allocator)
		vf.Handle = nil
	}
	vf.IsSignaled = false
}

func (vf *VulkanFence) FenceWait(context *VulkanContext, timeoutNs uint64) bool {
	if vf.IsSignaled {
		// If already signaled, do not wait.
		return true
	}
	result := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}, vk.True, timeoutNs)
	switch result {
	case vk.Success:
		vf.IsSignaled = true
		return true
	case vk.Timeout:
		core.LogWarn("fence wait - Timed out")
	case vk.ErrorDeviceLost:
		core.LogError("fence wait - VK_ERROR_DEVICE_LOST.")
	case vk.ErrorOutOfHostMemory:
		core.LogError("fence wait - VK_ERROR_OUT_OF_HOST_MEMORY.")
	case vk.ErrorOutOfDeviceMemory:
		core.LogError("fence wait - VK_ERROR_OUT_OF_DEVICE_MEMORY.")
	default:
		core.LogError("fence wait - An unknown error has occurred.")
	}
	return false
}

func (vf *VulkanFence) FenceReset(context *VulkanContext) error {
	if vf.IsSignaled {
		if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{vf.Handle}); res != vk.Success {
			err := fmt.Errorf("failed to reset fence")
			core.LogError(err.Error())
			return err
		}
		vf.IsSignaled = false
	}
	return nil
}

// Flush drains the graphics queue. A new flush point is marked on the
// counter, an empty submission signals the fence once every previously
// submitted command buffer has retired, and the CPU blocks until it
// does. On return all prior GPU work is complete.
func Flush(context *VulkanContext) error {
	target := context.FlushCounter.Advance()

	if err := context.FlushFence.FenceReset(context); err != nil {
		return err
	}

	// Empty submission: the fence signals only after all work queued
	// before it has finished executing.
	if res := vk.QueueSubmit(context.Device.GraphicsQueue, 0, nil, context.FlushFence.Handle); res != vk.Success {
		err := fmt.Errorf("failed to submit flush fence signal with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	if !context.FlushFence.FenceWait(context, math.MaxUint64) {
		return fmt.Errorf("flush fence wait failed at target %d", target)
	}
	context.FlushCounter.Retire(target)

	return nil
}
