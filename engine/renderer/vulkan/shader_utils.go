package vulkan

import (
	"encoding/binary"
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spinvector/orbit/engine/core"
)

/**
 * @brief Represents a single shader stage.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module Handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

// NewShaderModule wraps SPIR-V bytecode in a shader module and the
// pipeline stage info referencing it. The entry point is always "main",
// which is what glslc emits.
func NewShaderModule(context *VulkanContext, name string, code []byte, shaderStageFlag vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	if len(code) == 0 || len(code)%4 != 0 {
		err := fmt.Errorf("shader '%s' bytecode size %d is not valid SPIR-V", name, len(code))
		core.LogError(err.Error())
		return nil, err
	}

	stage := &VulkanShaderStage{}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    bytesToWords(code),
	}

	if res := vk.CreateShaderModule(
		context.Device.LogicalDevice,
		&createInfo,
		context.Allocator,
		&stage.Handle); res != vk.Success {
		err := fmt.Errorf("failed to create shader module '%s' with error `%s`", name, VulkanResultString(res, true))
		core.LogError(err.Error())
		return nil, err
	}

	stage.ShaderStageCreateInfo = vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  shaderStageFlag,
		Module: stage.Handle,
		PName:  VulkanSafeString("main"),
	}

	return stage, nil
}

func (vs *VulkanShaderStage) Destroy(context *VulkanContext) {
	if vs.Handle != nil {
		vk.DestroyShaderModule(context.Device.LogicalDevice, vs.Handle, context.Allocator)
		vs.Handle = nil
	}
}

// SPIR-V words are little-endian on disk.
func bytesToWords(code []byte) []uint32 {
	words := make([]uint32, len(code)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(code[i*4:])
	}
	return words
}
