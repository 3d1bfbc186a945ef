package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spinvector/orbit/engine/core"
)

// VulkanDescriptor owns the layout, pool and single set describing
// the per-frame uniform buffer visible to the vertex stage.
type VulkanDescriptor struct {
	Layout vk.DescriptorSetLayout
	Pool   vk.DescriptorPool
	Set    vk.DescriptorSet
}

func NewUniformDescriptor(context *VulkanContext, buffer *VulkanBuffer, size uint64) (*VulkanDescriptor, error) {
	descriptor := &VulkanDescriptor{}

	binding := vk.DescriptorSetLayoutBinding{
		Binding:         0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
	}

	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: 1,
		PBindings:    []vk.DescriptorSetLayoutBinding{binding},
	}

	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(context.Device.LogicalDevice, &layoutInfo, context.Allocator, &layout); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor set layout with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}
	descriptor.Layout = layout

	poolSize := vk.DescriptorPoolSize{
		Type:            vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		PoolSizeCount: 1,
		PPoolSizes:    []vk.DescriptorPoolSize{poolSize},
		MaxSets:       1,
	}

	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(context.Device.LogicalDevice, &poolInfo, context.Allocator, &pool); res != vk.Success {
		err := fmt.Errorf("failed to create descriptor pool with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, layout, context.Allocator)
		return nil, err
	}
	descriptor.Pool = pool

	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}

	sets := make([]vk.DescriptorSet, 1)
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocInfo, &sets[0]); res != vk.Success {
		err := fmt.Errorf("failed to allocate descriptor set with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		descriptor.Destroy(context)
		return nil, err
	}
	descriptor.Set = sets[0]

	bufferInfo := vk.DescriptorBufferInfo{
		Buffer: buffer.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(size),
	}
	write := vk.WriteDescriptorSet{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          descriptor.Set,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorType:  vk.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		PBufferInfo:     []vk.DescriptorBufferInfo{bufferInfo},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, 1, []vk.WriteDescriptorSet{write}, 0, nil)

	return descriptor, nil
}

func (d *VulkanDescriptor) Bind(commandBuffer *VulkanCommandBuffer, layout vk.PipelineLayout) {
	vk.CmdBindDescriptorSets(
		commandBuffer.Handle,
		vk.PipelineBindPointGraphics,
		layout,
		0,
		1, []vk.DescriptorSet{d.Set},
		0, nil)
}

func (d *VulkanDescriptor) Destroy(context *VulkanContext) {
	if d.Pool != nil {
		vk.DestroyDescriptorPool(context.Device.LogicalDevice, d.Pool, context.Allocator)
		d.Pool = nil
		d.Set = nil
	}
	if d.Layout != nil {
		vk.DestroyDescriptorSetLayout(context.Device.LogicalDevice, d.Layout, context.Allocator)
		d.Layout = nil
	}
}
