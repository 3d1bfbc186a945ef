package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spinvector/orbit/engine/core"
)

type VulkanDevice struct {
	PhysicalDevice     vk.PhysicalDevice
	LogicalDevice      vk.Device
	SwapchainSupport   VulkanSwapchainSupportInfo
	GraphicsQueueIndex int32
	PresentQueueIndex  int32
	TransferQueueIndex int32

	GraphicsQueue vk.Queue
	PresentQueue  vk.Queue
	TransferQueue vk.Queue

	GraphicsCommandPool vk.CommandPool

	Properties vk.PhysicalDeviceProperties
	Features   vk.PhysicalDeviceFeatures
	Memory     vk.PhysicalDeviceMemoryProperties

	DepthFormat vk.Format
}

type VulkanPhysicalDeviceRequirements struct {
	Graphics             bool
	Present              bool
	Compute              bool
	Transfer             bool
	DeviceExtensionNames []string
	DiscreteGPU          bool
}

type VulkanPhysicalDeviceQueueFamilyInfo struct {
	GraphicsFamilyIndex int32
	PresentFamilyIndex  int32
	ComputeFamilyIndex  int32
	TransferFamilyIndex int32
}

func DeviceCreate(context *VulkanContext) error {
	if err := SelectPhysicalDevice(context); err != nil {
		return err
	}

	core.LogInfo("Creating logical device...")

	// NOTE: Do not create additional queues for shared indices.
	presentSharesGraphicsQueue := context.Device.GraphicsQueueIndex == context.Device.PresentQueueIndex
	transferSharesGraphicsQueue := context.Device.GraphicsQueueIndex == context.Device.TransferQueueIndex
	indexCount := 1

	if !presentSharesGraphicsQueue {
		indexCount++
	}
	if !transferSharesGraphicsQueue {
		indexCount++
	}
	indices := make([]uint32, indexCount)
	index := 0
	indices[index] = uint32(context.Device.GraphicsQueueIndex)
	index += 1

	if !presentSharesGraphicsQueue {
		indices[index] = uint32(context.Device.PresentQueueIndex)
		index += 1
	}
	if !transferSharesGraphicsQueue {
		indices[index] = uint32(context.Device.TransferQueueIndex)
		index += 1
	}

	queueCreateInfos := make([]vk.DeviceQueueCreateInfo, indexCount)
	for i := 0; i < indexCount; i++ {
		queueCreateInfos[i].SType = vk.StructureTypeDeviceQueueCreateInfo
		queueCreateInfos[i].QueueFamilyIndex = indices[i]
		queueCreateInfos[i].QueueCount = 1
		queueCreateInfos[i].Flags = 0
		queueCreateInfos[i].PNext = nil
		var queuePriority float32 = 1.0
		queueCreateInfos[i].PQueuePriorities = []float32{queuePriority}
	}

	deviceFeatures := vk.PhysicalDeviceFeatures{}

	portabilityRequired := false
	var availableExtensionCount uint32 = 0
	var availableExtensions []vk.ExtensionProperties

	if res := vk.EnumerateDeviceExtensionProperties(context.Device.PhysicalDevice, "", &availableExtensionCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to enumerate device extension properties with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	if availableExtensionCount != 0 {
		availableExtensions = make([]vk.ExtensionProperties, availableExtensionCount)
		if res := vk.EnumerateDeviceExtensionProperties(context.Device.PhysicalDevice, "", &availableExtensionCount, availableExtensions); res != vk.Success {
			err := fmt.Errorf("failed to enumerate device extension properties with error `%s`", VulkanResultString(res, true))
			core.LogError(err.Error())
			return err
		}

		for i := 0; i < int(availableExtensionCount); i++ {
			availableExtensions[i].Deref()
			name := string(availableExtensions[i].ExtensionName[:FindFirstZeroInByteArray(availableExtensions[i].ExtensionName[:])])
			if name == "VK_KHR_portability_subset" {
				core.LogInfo("Adding required extension 'VK_KHR_portability_subset'.")
				portabilityRequired = true
				break
			}
		}
	}
	availableExtensions = nil

	extensionNames := []string{vk.KhrSwapchainExtensionName}
	if portabilityRequired {
		extensionNames = append(extensionNames, "VK_KHR_portability_subset")
	}

	deviceCreateInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(indexCount),
		PQueueCreateInfos:       queueCreateInfos,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{deviceFeatures},
		EnabledExtensionCount:   uint32(len(extensionNames)),
		PpEnabledExtensionNames: VulkanSafeStrings(extensionNames),
		// Deprecated and ignored, so pass nothing.
		EnabledLayerCount:   0,
		PpEnabledLayerNames: nil,
	}

	// Create the device.
	if res := vk.CreateDevice(
		context.Device.PhysicalDevice,
		&deviceCreateInfo,
		context.Allocator,
		&context.Device.LogicalDevice); res != vk.Success {
		err := fmt.Errorf("failed to create logical device with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	core.LogInfo("Logical device created.")

	// Get queues.
	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.GraphicsQueueIndex),
		0,
		&context.Device.GraphicsQueue)

	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.PresentQueueIndex),
		0,
		&context.Device.PresentQueue)

	vk.GetDeviceQueue(
		context.Device.LogicalDevice,
		uint32(context.Device.TransferQueueIndex),
		0,
		&context.Device.TransferQueue)
	core.LogInfo("Queues obtained.")

	// Create command pool for graphics queue.
	poolCreateInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: uint32(context.Device.GraphicsQueueIndex),
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vk.CreateCommandPool(
		context.Device.LogicalDevice,
		&poolCreateInfo,
		context.Allocator,
		&context.Device.GraphicsCommandPool); res != vk.Success {
		err := fmt.Errorf("failed to create graphics command pool with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Graphics command pool created.")

	return nil
}

func DeviceDestroy(context *VulkanContext) {
	// Unset queues
	context.Device.GraphicsQueue = nil
	context.Device.PresentQueue = nil
	context.Device.TransferQueue = nil

	core.LogInfo("Destroying command pools...")
	vk.DestroyCommandPool(
		context.Device.LogicalDevice,
		context.Device.GraphicsCommandPool,
		context.Allocator)

	// Destroy logical device
	core.LogInfo("Destroying logical device...")
	if context.Device.LogicalDevice != nil {
		vk.DestroyDevice(context.Device.LogicalDevice, context.Allocator)
		context.Device.LogicalDevice = nil
	}

	// Physical devices are not destroyed.
	core.LogInfo("Releasing physical device resources...")
	context.Device.PhysicalDevice = nil

	context.Device.SwapchainSupport.Formats = nil
	context.Device.SwapchainSupport.FormatCount = 0
	context.Device.SwapchainSupport.PresentModes = nil
	context.Device.SwapchainSupport.PresentModeCount = 0
	context.Device.SwapchainSupport.Capabilities = vk.SurfaceCapabilities{}

	context.Device.GraphicsQueueIndex = -1
	context.Device.PresentQueueIndex = -1
	context.Device.TransferQueueIndex = -1
}

func DeviceQuerySwapchainSupport(physicalDevice vk.PhysicalDevice, surface vk.Surface, supportInfo *VulkanSwapchainSupportInfo) error {
	// Surface capabilities
	if res := vk.GetPhysicalDeviceSurfaceCapabilities(physicalDevice, surface, &supportInfo.Capabilities); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface capabilities with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	supportInfo.Capabilities.Deref()

	// Surface formats
	if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface formats with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	if supportInfo.FormatCount != 0 {
		supportInfo.Formats = make([]vk.SurfaceFormat, supportInfo.FormatCount)
		if res := vk.GetPhysicalDeviceSurfaceFormats(physicalDevice, surface, &supportInfo.FormatCount, supportInfo.Formats); res != vk.Success {
			err := fmt.Errorf("failed to get physical device surface formats with error `%s`", VulkanResultString(res, true))
			core.LogError(err.Error())
			return err
		}
		for i := range supportInfo.Formats {
			supportInfo.Formats[i].Deref()
		}
	}

	// Present modes
	if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to get physical device surface present modes with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	if supportInfo.PresentModeCount != 0 {
		supportInfo.PresentModes = make([]vk.PresentMode, supportInfo.PresentModeCount)
		if res := vk.GetPhysicalDeviceSurfacePresentModes(physicalDevice, surface, &supportInfo.PresentModeCount, supportInfo.PresentModes); res != vk.Success {
			err := fmt.Errorf("failed to get physical device surface present modes with error `%s`", VulkanResultString(res, true))
			core.LogError(err.Error())
			return err
		}
	}
	return nil
}

func DeviceDetectDepthFormat(device *VulkanDevice) bool {
	// Format candidates
	candidates := []vk.Format{
		vk.FormatD32Sfloat,
		vk.FormatD32SfloatS8Uint,
		vk.FormatD24UnormS8Uint,
	}
	flags := vk.FormatFeatureDepthStencilAttachmentBit
	for i := 0; i < len(candidates); i++ {
		var properties vk.FormatProperties
		vk.GetPhysicalDeviceFormatProperties(device.PhysicalDevice, candidates[i], &properties)
		properties.Deref()
		if (vk.FormatFeatureFlagBits(properties.LinearTilingFeatures) & flags) == flags {
			device.DepthFormat = candidates[i]
			return true
		} else if (vk.FormatFeatureFlagBits(properties.OptimalTilingFeatures) & flags) == flags {
			device.DepthFormat = candidates[i]
			return true
		}
	}
	return false
}

// The uniform buffer offset granularity the device requires. Uniform
// allocations are rounded up to a multiple of this.
func (d *VulkanDevice) MinUniformBufferAlignment() uint64 {
	return uint64(d.Properties.Limits.MinUniformBufferOffsetAlignment)
}

// Largest sample count usable for both color and depth framebuffer
// attachments on this device.
func (d *VulkanDevice) MaxFramebufferSampleCount() vk.SampleCountFlagBits {
	counts := d.Properties.Limits.FramebufferColorSampleCounts & d.Properties.Limits.FramebufferDepthSampleCounts
	for _, bit := range []vk.SampleCountFlagBits{
		vk.SampleCount8Bit,
		vk.SampleCount4Bit,
		vk.SampleCount2Bit,
	} {
		if counts&vk.SampleCountFlags(bit) != 0 {
			return bit
		}
	}
	return vk.SampleCount1Bit
}

// Reports whether the device can render color and depth attachments
// at the requested sample count.
func (d *VulkanDevice) SupportsSampleCount(samples vk.SampleCountFlagBits) bool {
	counts := d.Properties.Limits.FramebufferColorSampleCounts & d.Properties.Limits.FramebufferDepthSampleCounts
	return counts&vk.SampleCountFlags(samples) != 0
}

// Picks the physical device. Discrete GPUs are preferred; if none
// qualifies the requirements are relaxed so an integrated or software
// implementation can serve instead.
func SelectPhysicalDevice(context *VulkanContext) error {
	var physicalDeviceCount uint32 = 0
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, nil); res != vk.Success {
		err := fmt.Errorf("failed to enumerate physical devices with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	if physicalDeviceCount == 0 {
		core.LogError("No devices which support Vulkan were found.")
		return core.ErrNoSuitableDevice
	}

	physicalDevices := make([]vk.PhysicalDevice, physicalDeviceCount)
	if res := vk.EnumeratePhysicalDevices(context.Instance, &physicalDeviceCount, physicalDevices); res != vk.Success {
		err := fmt.Errorf("failed to enumerate physical devices with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	for _, discreteRequired := range []bool{true, false} {
		for i := 0; i < int(physicalDeviceCount); i++ {
			properties := vk.PhysicalDeviceProperties{}
			vk.GetPhysicalDeviceProperties(physicalDevices[i], &properties)
			properties.Deref()
			properties.Limits.Deref()

			features := vk.PhysicalDeviceFeatures{}
			vk.GetPhysicalDeviceFeatures(physicalDevices[i], &features)
			features.Deref()

			memory := vk.PhysicalDeviceMemoryProperties{}
			vk.GetPhysicalDeviceMemoryProperties(physicalDevices[i], &memory)
			memory.Deref()

			requirements := VulkanPhysicalDeviceRequirements{
				Graphics:             true,
				Present:              true,
				Transfer:             true,
				DiscreteGPU:          discreteRequired,
				DeviceExtensionNames: []string{vk.KhrSwapchainExtensionName},
				// NOTE: Enable this if compute will be required.
				// Compute: true,
			}

			queueInfo := VulkanPhysicalDeviceQueueFamilyInfo{}
			if !PhysicalDeviceMeetsRequirements(
				physicalDevices[i],
				context.Surface,
				&properties,
				&features,
				&requirements,
				&queueInfo,
				&context.Device.SwapchainSupport) {
				continue
			}

			core.LogInfo("Selected device: '%s'.", VulkanSafeString(string(properties.DeviceName[:FindFirstZeroInByteArray(properties.DeviceName[:])])))
			switch properties.DeviceType {
			default:
				fallthrough
			case vk.PhysicalDeviceTypeOther:
				core.LogInfo("GPU type is Unknown.")
			case vk.PhysicalDeviceTypeIntegratedGpu:
				core.LogInfo("GPU type is Integrated.")
			case vk.PhysicalDeviceTypeDiscreteGpu:
				core.LogInfo("GPU type is Discrete.")
			case vk.PhysicalDeviceTypeVirtualGpu:
				core.LogInfo("GPU type is Virtual.")
			case vk.PhysicalDeviceTypeCpu:
				core.LogInfo("GPU type is CPU.")
			}

			core.LogInfo(
				"GPU Driver version: %d.%d.%d",
				vk.Version.Major(vk.Version(properties.DriverVersion)),
				vk.Version.Minor(vk.Version(properties.DriverVersion)),
				vk.Version.Patch(vk.Version(properties.DriverVersion)),
			)

			// Vulkan API version.
			core.LogInfo(
				"Vulkan API version: %d.%d.%d",
				vk.Version.Major(vk.Version(properties.ApiVersion)),
				vk.Version.Minor(vk.Version(properties.ApiVersion)),
				vk.Version.Patch(vk.Version(properties.ApiVersion)),
			)

			// Memory information
			for j := 0; j < int(memory.MemoryHeapCount); j++ {
				memory.MemoryHeaps[j].Deref()
				memorySizeGib := float32(memory.MemoryHeaps[j].Size) / 1024.0 / 1024.0 / 1024.0
				if vk.MemoryHeapFlagBits(memory.MemoryHeaps[j].Flags)&vk.MemoryHeapDeviceLocalBit > 0 {
					core.LogInfo("Local GPU memory: %.2f GiB", memorySizeGib)
				} else {
					core.LogInfo("Shared System memory: %.2f GiB", memorySizeGib)
				}
			}

			context.Device.PhysicalDevice = physicalDevices[i]
			context.Device.GraphicsQueueIndex = queueInfo.GraphicsFamilyIndex
			context.Device.PresentQueueIndex = queueInfo.PresentFamilyIndex
			context.Device.TransferQueueIndex = queueInfo.TransferFamilyIndex
			// NOTE: set compute index here if needed.

			// Keep a copy of properties, features and memory info for later use.
			context.Device.Properties = properties
			context.Device.Features = features
			context.Device.Memory = memory

			core.LogInfo("Physical device selected.")
			return nil
		}
		if discreteRequired {
			core.LogWarn("No discrete GPU meets the requirements, falling back to any capable device.")
		}
	}

	core.LogError("No physical devices were found which meet the requirements.")
	return core.ErrNoSuitableDevice
}

func PhysicalDeviceMeetsRequirements(device vk.PhysicalDevice, surface vk.Surface, properties *vk.PhysicalDeviceProperties, features *vk.PhysicalDeviceFeatures, requirements *VulkanPhysicalDeviceRequirements, outQueueInfo *VulkanPhysicalDeviceQueueFamilyInfo, outSwapchainSupport *VulkanSwapchainSupportInfo) bool {
	outQueueInfo.GraphicsFamilyIndex = -1
	outQueueInfo.PresentFamilyIndex = -1
	outQueueInfo.ComputeFamilyIndex = -1
	outQueueInfo.TransferFamilyIndex = -1

	// Discrete GPU?
	if requirements.DiscreteGPU {
		if properties.DeviceType != vk.PhysicalDeviceTypeDiscreteGpu {
			core.LogInfo("Device is not a discrete GPU, and one is required. Skipping.")
			return false
		}
	}

	var queueFamilyCount uint32 = 0
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, nil)
	queueFamilies := make([]vk.QueueFamilyProperties, queueFamilyCount)
	vk.GetPhysicalDeviceQueueFamilyProperties(device, &queueFamilyCount, queueFamilies)

	// Look at each queue and see what queues it supports
	core.LogInfo("Graphics | Present | Compute | Transfer | Name")
	minTransferScore := 255
	for i := 0; i < int(queueFamilyCount); i++ {
		queueFamilies[i].Deref()
		currentTransferScore := 0

		// Graphics queue?
		if vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueGraphicsBit > 0 {
			outQueueInfo.GraphicsFamilyIndex = int32(i)
			currentTransferScore++
		}

		// Compute queue?
		if queueFamilies[i].QueueFlags&vk.QueueFlags(vk.QueueComputeBit) > 0 {
			outQueueInfo.ComputeFamilyIndex = int32(i)
			currentTransferScore++
		}

		// Transfer queue?
		if vk.QueueFlagBits(queueFamilies[i].QueueFlags)&vk.QueueTransferBit > 0 {
			// Take the index if it is the current lowest. This increases the
			// liklihood that it is a dedicated transfer queue.
			if currentTransferScore <= minTransferScore {
				minTransferScore = currentTransferScore
				outQueueInfo.TransferFamilyIndex = int32(i)
			}
		}

		// Present queue?
		var supportsPresent vk.Bool32 = vk.False
		if res := vk.GetPhysicalDeviceSurfaceSupport(device, uint32(i), surface, &supportsPresent); res != vk.Success {
			return false
		}
		if supportsPresent == vk.True {
			outQueueInfo.PresentFamilyIndex = int32(i)
		}
	}

	// Print out some info about the device
	core.LogInfo("       %t |       %t |       %t |        %t | %s",
		outQueueInfo.GraphicsFamilyIndex != -1,
		outQueueInfo.PresentFamilyIndex != -1,
		outQueueInfo.ComputeFamilyIndex != -1,
		outQueueInfo.TransferFamilyIndex != -1,
		string(properties.DeviceName[:FindFirstZeroInByteArray(properties.DeviceName[:])]))

	if (!requirements.Graphics || outQueueInfo.GraphicsFamilyIndex != -1) &&
		(!requirements.Present || outQueueInfo.PresentFamilyIndex != -1) &&
		(!requirements.Compute || outQueueInfo.ComputeFamilyIndex != -1) &&
		(!requirements.Transfer || outQueueInfo.TransferFamilyIndex != -1) {
		core.LogInfo("Device meets queue requirements.")
		core.LogDebug("Graphics Family Index: %d", outQueueInfo.GraphicsFamilyIndex)
		core.LogDebug("Present Family Index:  %d", outQueueInfo.PresentFamilyIndex)
		core.LogDebug("Transfer Family Index: %d", outQueueInfo.TransferFamilyIndex)
		core.LogDebug("Compute Family Index:  %d", outQueueInfo.ComputeFamilyIndex)

		// Query swapchain support.
		if err := DeviceQuerySwapchainSupport(device, surface, outSwapchainSupport); err != nil {
			core.LogInfo("Swapchain support query failed, skipping device.")
			return false
		}

		if outSwapchainSupport.FormatCount < 1 || outSwapchainSupport.PresentModeCount < 1 {
			core.LogInfo("Required swapchain support not present, skipping device.")
			return false
		}

		// Device extensions.
		if requirements.DeviceExtensionNames != nil {
			var availableExtensionCount uint32 = 0
			var availableExtensions []vk.ExtensionProperties

			if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, nil); res != vk.Success {
				return false
			}

			if availableExtensionCount != 0 {
				availableExtensions = make([]vk.ExtensionProperties, availableExtensionCount)
				if res := vk.EnumerateDeviceExtensionProperties(device, "", &availableExtensionCount, availableExtensions); res != vk.Success {
					return false
				}
				for i := 0; i < len(requirements.DeviceExtensionNames); i++ {
					found := false
					for j := 0; j < int(availableExtensionCount); j++ {
						availableExtensions[j].Deref()
						name := string(availableExtensions[j].ExtensionName[:FindFirstZeroInByteArray(availableExtensions[j].ExtensionName[:])])
						if requirements.DeviceExtensionNames[i] == name {
							found = true
							break
						}
					}
					if !found {
						core.LogInfo("Required extension not found: '%s', skipping device.", requirements.DeviceExtensionNames[i])
						return false
					}
				}
			}
			availableExtensions = nil
		}

		// Device meets all requirements.
		return true
	}
	return false
}
