package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spinvector/orbit/engine/core"
)

// Uniform allocations are handed to the GPU at this granularity.
// 256 is the largest minUniformBufferOffsetAlignment any mainstream
// device reports, so rounding to it is always valid.
const UniformBufferAlignment uint64 = 256

// Rounds the size up to the next multiple of UniformBufferAlignment.
// Only uniform buffers are padded this way; vertex and index buffers
// keep their natural size.
func CalcUniformBufferSize(size uint64) uint64 {
	return (size + UniformBufferAlignment - 1) &^ (UniformBufferAlignment - 1)
}

type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	// Non-nil while the memory is host-mapped.
	Mapped      unsafe.Pointer
	TotalSize   uint64
	Usage       vk.BufferUsageFlags
	MemoryFlags vk.MemoryPropertyFlags
}

func BufferCreate(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{
		TotalSize:   size,
		Usage:       usage,
		MemoryFlags: memoryFlags,
	}

	bufferCreateInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}

	var pBuffer vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferCreateInfo, context.Allocator, &pBuffer); res != vk.Success {
		err := fmt.Errorf("failed to create buffer with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	buffer.Handle = pBuffer

	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, uint32(memoryFlags))
	if memoryType == -1 {
		err := fmt.Errorf("required memory type not found, buffer not valid")
		core.LogError(err.Error())
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: uint32(memoryType),
	}
	var pMemory vk.DeviceMemory
	if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &pMemory); res != vk.Success {
		err := fmt.Errorf("failed to allocate buffer memory with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	buffer.Memory = pMemory

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0); res != vk.Success {
		err := fmt.Errorf("failed to bind buffer memory with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	return buffer, nil
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	if vb.Mapped != nil {
		vb.Unmap(context)
	}
	if vb.Handle != nil {
		vk.DestroyBuffer(context.Device.LogicalDevice, vb.Handle, context.Allocator)
		vb.Handle = nil
	}
	if vb.Memory != nil {
		vk.FreeMemory(context.Device.LogicalDevice, vb.Memory, context.Allocator)
		vb.Memory = nil
	}
	vb.TotalSize = 0
}

// Maps the whole buffer. The buffer must be host-visible.
func (vb *VulkanBuffer) Map(context *VulkanContext) error {
	var pData unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, 0, vk.DeviceSize(vb.TotalSize), 0, &pData); res != vk.Success {
		err := fmt.Errorf("failed to map buffer memory with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	vb.Mapped = pData
	return nil
}

func (vb *VulkanBuffer) Unmap(context *VulkanContext) {
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	vb.Mapped = nil
}

// Copies data into a mapped buffer at the given offset.
func (vb *VulkanBuffer) LoadData(data []byte, offset uint64) error {
	if vb.Mapped == nil {
		return fmt.Errorf("buffer is not mapped")
	}
	dst := unsafe.Pointer(uintptr(vb.Mapped) + uintptr(offset))
	vk.Memcopy(dst, data)
	return nil
}

// Device-local buffers carry both transfer usages: dst for the staging
// upload, src so BufferReadback can copy them back out.
func deviceLocalUsage(usage vk.BufferUsageFlagBits) vk.BufferUsageFlags {
	return vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit) |
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit) |
		vk.BufferUsageFlags(usage)
}

// NewDeviceLocalBuffer creates a device-local buffer holding data. A
// host-visible staging buffer of equal size carries the bytes, and the
// copy plus its barriers are recorded into the caller's open command
// buffer. The staging buffer is returned so the caller can keep it
// alive until the commands have been submitted and flushed, then
// destroy it.
func NewDeviceLocalBuffer(context *VulkanContext, commandBuffer *VulkanCommandBuffer, data []byte, usage vk.BufferUsageFlagBits) (*VulkanBuffer, *VulkanBuffer, error) {
	size := uint64(len(data))
	if size == 0 {
		return nil, nil, fmt.Errorf("cannot create a device-local buffer with no data")
	}

	staging, err := BufferCreate(
		context,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, nil, err
	}

	if err := staging.Map(context); err != nil {
		staging.Destroy(context)
		return nil, nil, err
	}
	if err := staging.LoadData(data, 0); err != nil {
		staging.Destroy(context)
		return nil, nil, err
	}
	staging.Unmap(context)

	gpu, err := BufferCreate(
		context,
		size,
		deviceLocalUsage(usage),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		staging.Destroy(context)
		return nil, nil, err
	}

	region := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(commandBuffer.Handle, staging.Handle, gpu.Handle, 1, []vk.BufferCopy{region})

	// Make the transfer visible before any vertex, index or uniform
	// read on the graphics queue.
	barrier := vk.BufferMemoryBarrier{
		SType:               vk.StructureTypeBufferMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(vk.AccessTransferWriteBit),
		DstAccessMask:       vk.AccessFlags(vk.AccessVertexAttributeReadBit) | vk.AccessFlags(vk.AccessIndexReadBit) | vk.AccessFlags(vk.AccessUniformReadBit),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Buffer:              gpu.Handle,
		Offset:              0,
		Size:                vk.DeviceSize(size),
	}
	vk.CmdPipelineBarrier(
		commandBuffer.Handle,
		vk.PipelineStageFlags(vk.PipelineStageTransferBit),
		vk.PipelineStageFlags(vk.PipelineStageVertexInputBit)|vk.PipelineStageFlags(vk.PipelineStageVertexShaderBit),
		0,
		0, nil,
		1, []vk.BufferMemoryBarrier{barrier},
		0, nil)

	return gpu, staging, nil
}

// BufferReadback copies size bytes of a device-local buffer back to
// the host through a one-shot staging buffer. src must have been
// created with transfer-src usage, which every buffer made through
// NewDeviceLocalBuffer has. The graphics queue is drained before the
// bytes are read, so this is strictly a verification path, not
// something for the frame loop.
func BufferReadback(context *VulkanContext, src *VulkanBuffer, size uint64) ([]byte, error) {
	readback, err := BufferCreate(
		context,
		size,
		vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit)|vk.MemoryPropertyFlags(vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	defer readback.Destroy(context)

	cb, err := AllocateAndBeginSingleUse(context, context.Device.GraphicsCommandPool)
	if err != nil {
		return nil, err
	}

	region := vk.BufferCopy{
		SrcOffset: 0,
		DstOffset: 0,
		Size:      vk.DeviceSize(size),
	}
	vk.CmdCopyBuffer(cb.Handle, src.Handle, readback.Handle, 1, []vk.BufferCopy{region})

	if err := cb.EndSingleUse(context, context.Device.GraphicsCommandPool, context.Device.GraphicsQueue); err != nil {
		return nil, err
	}
	if err := Flush(context); err != nil {
		return nil, err
	}

	if err := readback.Map(context); err != nil {
		return nil, err
	}
	data := make([]byte, size)
	vk.Memcopy(unsafe.Pointer(&data[0]), unsafe.Slice((*byte)(readback.Mapped), size))
	readback.Unmap(context)

	return data, nil
}
