package vulkan

import (
	"fmt"
	"math"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spinvector/orbit/engine/core"
	"github.com/spinvector/orbit/engine/platform"
)

type VulkanRenderer struct {
	platform    *platform.Platform
	FrameNumber uint64
	context     *VulkanContext

	cachedFramebufferWidth  uint32
	cachedFramebufferHeight uint32

	samples vk.SampleCountFlagBits

	debug bool
}

func New(p *platform.Platform, debug bool) *VulkanRenderer {
	return &VulkanRenderer{
		platform:    p,
		FrameNumber: 0,
		context: &VulkanContext{
			FramebufferWidth:  0,
			FramebufferHeight: 0,
			Allocator:         nil,
		},
		samples: vk.SampleCount1Bit,
		debug:   debug,
	}
}

// Context exposes the Vulkan state for resource creation by the layer
// above. The backend retains ownership.
func (vr *VulkanRenderer) Context() *VulkanContext {
	return vr.context
}

func (vr *VulkanRenderer) Samples() vk.SampleCountFlagBits {
	return vr.samples
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32, samples vk.SampleCountFlagBits) error {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		err := fmt.Errorf("GetInstanceProcAddress is nil")
		core.LogError(err.Error())
		return err
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return err
	}

	vr.context.Allocator = nil
	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	// Setup Vulkan instance.
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 0, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Orbit"),
	}

	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	requiredExtensions := []string{"VK_KHR_surface"}
	requiredExtensions = append(requiredExtensions, vr.platform.RequiredVulkanExtensions()...)

	if runtime.GOOS == "darwin" {
		requiredExtensions = append(requiredExtensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		createInfo.Flags |= 1
	}

	if vr.debug {
		requiredExtensions = append(requiredExtensions, vk.ExtDebugUtilsExtensionName, vk.ExtDebugReportExtensionName)
		core.LogDebug("Required extensions:")
		for i := 0; i < len(requiredExtensions); i++ {
			core.LogDebug(requiredExtensions[i])
		}
	}

	createInfo.EnabledExtensionCount = uint32(len(requiredExtensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(requiredExtensions)

	// Validation layers. Only enabled on debug builds; the instance still
	// comes up without them when the loader cannot find the layer.
	requiredValidationLayers := []string{}
	if vr.debug {
		if hasValidationLayer() {
			requiredValidationLayers = []string{"VK_LAYER_KHRONOS_validation"}
			core.LogDebug("Validation layers enabled.")
		} else {
			core.LogWarn("VK_LAYER_KHRONOS_validation requested but not available; continuing without it.")
		}
	}
	createInfo.EnabledLayerCount = uint32(len(requiredValidationLayers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(requiredValidationLayers)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		err := fmt.Errorf("failed to create the Vulkan instance with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogInfo("Vulkan instance created.")

	if vr.debug {
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit),
			PfnCallback: dbgCallbackFunc,
			PNext:       nil,
		}

		var dbg vk.DebugReportCallback
		if err := vk.Error(vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, nil, &dbg)); err != nil {
			core.LogError("vk.CreateDebugReportCallback failed with %s", err)
			return err
		}
		vr.context.debugMessenger = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	// Surface
	surface, err := vr.platform.Window.CreateWindowSurface(vr.context.Instance, nil)
	if err != nil {
		core.LogError("Vulkan surface creation failed.")
		return err
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	// Device creation
	if err := DeviceCreate(vr.context); err != nil {
		core.LogError("failed to create device: %s", err)
		return err
	}

	core.LogDebug("device limits: uniform alignment %d, max framebuffer samples %d",
		vr.context.Device.MinUniformBufferAlignment(), vr.context.Device.MaxFramebufferSampleCount())
	if !vr.context.Device.SupportsSampleCount(samples) {
		core.LogError("requested sample count %d is not supported by the device", samples)
		return core.ErrMsaaUnsupported
	}
	vr.samples = samples

	// Swapchain
	sc, err := SwapchainCreate(vr.context, vr.context.FramebufferWidth, vr.context.FramebufferHeight, vr.samples)
	if err != nil {
		return err
	}
	vr.context.Swapchain = sc

	rp, err := RenderpassCreate(
		vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		0.690196, 0.768627, 0.870588, 1.0, // light steel blue
		1.0,
		0,
		vr.samples)
	if err != nil {
		return err
	}
	vr.context.MainRenderpass = rp

	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(vr.context.Swapchain, vr.context.MainRenderpass); err != nil {
		return err
	}

	cb, err := NewVulkanCommandBuffer(vr.context, vr.context.Device.GraphicsCommandPool, true)
	if err != nil {
		return err
	}
	vr.context.CommandBuffer = cb

	// Sync objects. One pair of semaphores and one fence: the frame loop
	// fully flushes the GPU every frame, so nothing is ever in flight
	// across frames.
	semaphoreCreateInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}
	if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.ImageAvailableSemaphore); res != vk.Success {
		err := fmt.Errorf("failed to create image-available semaphore with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}
	if res := vk.CreateSemaphore(vr.context.Device.LogicalDevice, &semaphoreCreateInfo, vr.context.Allocator, &vr.context.QueueCompleteSemaphore); res != vk.Success {
		err := fmt.Errorf("failed to create queue-complete semaphore with error `%s`", VulkanResultString(res, true))
		core.LogError(err.Error())
		return err
	}

	flushFence, err := NewFence(vr.context, false)
	if err != nil {
		return err
	}
	vr.context.FlushFence = flushFence
	vr.context.FlushCounter = &FenceCounter{}

	if err := vr.transitionDepthAttachment(); err != nil {
		return err
	}

	core.LogInfo("Vulkan renderer initialized successfully.")
	return nil
}

func hasValidationLayer() bool {
	var availableLayerCount uint32
	if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, nil); res != vk.Success {
		return false
	}
	availableLayers := make([]vk.LayerProperties, availableLayerCount)
	if res := vk.EnumerateInstanceLayerProperties(&availableLayerCount, availableLayers); res != vk.Success {
		return false
	}
	for j := range availableLayers {
		availableLayers[j].Deref()
		end := FindFirstZeroInByteArray(availableLayers[j].LayerName[:])
		if vk.ToString(availableLayers[j].LayerName[:end+1]) == "VK_LAYER_KHRONOS_validation" {
			return true
		}
	}
	return false
}

// transitionDepthAttachment records the depth image's move into
// depth-stencil attachment layout on a single-use command buffer and
// flushes it through the queue.
func (vr *VulkanRenderer) transitionDepthAttachment() error {
	cb, err := AllocateAndBeginSingleUse(vr.context, vr.context.Device.GraphicsCommandPool)
	if err != nil {
		return err
	}
	depth := vr.context.Swapchain.DepthAttachment
	if err := depth.TransitionLayout(cb, vr.context.Device.DepthFormat, vk.ImageLayoutUndefined, vk.ImageLayoutDepthStencilAttachmentOptimal); err != nil {
		return err
	}
	if err := cb.EndSingleUse(vr.context, vr.context.Device.GraphicsCommandPool, vr.context.Device.GraphicsQueue); err != nil {
		return err
	}
	return Flush(vr.context)
}

func (vr *VulkanRenderer) Shutdown() error {
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	// Destroy in the opposite order of creation.
	if vr.context.FlushFence != nil {
		vr.context.FlushFence.FenceDestroy(vr.context)
		vr.context.FlushFence = nil
	}
	if vr.context.ImageAvailableSemaphore != vk.NullSemaphore {
		vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.ImageAvailableSemaphore, vr.context.Allocator)
		vr.context.ImageAvailableSemaphore = vk.NullSemaphore
	}
	if vr.context.QueueCompleteSemaphore != vk.NullSemaphore {
		vk.DestroySemaphore(vr.context.Device.LogicalDevice, vr.context.QueueCompleteSemaphore, vr.context.Allocator)
		vr.context.QueueCompleteSemaphore = vk.NullSemaphore
	}

	if vr.context.CommandBuffer != nil && vr.context.CommandBuffer.Handle != nil {
		vr.context.CommandBuffer.Free(vr.context, vr.context.Device.GraphicsCommandPool)
		vr.context.CommandBuffer = nil
	}

	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.Swapchain.Framebuffers[i].Destroy(vr.context)
	}
	vr.context.Swapchain.Framebuffers = nil

	vr.context.MainRenderpass.RenderpassDestroy(vr.context)
	vr.context.Swapchain.SwapchainDestroy(vr.context)

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(vr.context)

	core.LogDebug("Destroying Vulkan surface...")
	if vr.context.Surface != vk.NullSurface {
		vk.DestroySurface(vr.context.Instance, vr.context.Surface, vr.context.Allocator)
		vr.context.Surface = vk.NullSurface
	}

	if vr.debug && vr.context.debugMessenger != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(vr.context.Instance, vr.context.debugMessenger, vr.context.Allocator)
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(vr.context.Instance, vr.context.Allocator)

	return nil
}

// Resize rebuilds the presentation chain at the new client size. The
// device and swapchain must already exist.
func (vr *VulkanRenderer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return fmt.Errorf("cannot resize swapchain to %dx%d", width, height)
	}
	vr.cachedFramebufferWidth = width
	vr.cachedFramebufferHeight = height
	return vr.recreateSwapchain()
}

// SetSamples swaps the renderpass and attachments over to a new sample
// count. The caller rebuilds anything created against the renderpass
// (pipelines) afterwards.
func (vr *VulkanRenderer) SetSamples(samples vk.SampleCountFlagBits) error {
	if samples == vr.samples {
		return nil
	}
	if !vr.context.Device.SupportsSampleCount(samples) {
		return core.ErrMsaaUnsupported
	}

	if err := Flush(vr.context); err != nil {
		return err
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	vr.samples = samples

	// The renderpass attachment layout changes shape with the sample
	// count, so it has to go too.
	oldPass := vr.context.MainRenderpass
	rp, err := RenderpassCreate(
		vr.context,
		0, 0, float32(vr.context.FramebufferWidth), float32(vr.context.FramebufferHeight),
		oldPass.R, oldPass.G, oldPass.B, oldPass.A,
		oldPass.Depth,
		oldPass.Stencil,
		vr.samples)
	if err != nil {
		return err
	}
	oldPass.RenderpassDestroy(vr.context)
	vr.context.MainRenderpass = rp

	vr.cachedFramebufferWidth = vr.context.FramebufferWidth
	vr.cachedFramebufferHeight = vr.context.FramebufferHeight
	return vr.recreateSwapchain()
}

// BeginFrame resets the command buffer, acquires the next swapchain
// image and opens the renderpass. Returns ErrSwapchainRebuilding when
// the chain is stale and the frame should be skipped.
func (vr *VulkanRenderer) BeginFrame() error {
	if vr.context.RecreatingSwapchain {
		return core.ErrSwapchainRebuilding
	}

	commandBuffer := vr.context.CommandBuffer
	if err := commandBuffer.Reset(); err != nil {
		return err
	}

	if _, err := vr.context.Swapchain.SwapchainAcquireNextImageIndex(vr.context, math.MaxUint64, vr.context.ImageAvailableSemaphore, vk.NullFence); err != nil {
		return err
	}

	if err := commandBuffer.Begin(false, false, false); err != nil {
		return err
	}

	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(vr.context.FramebufferWidth),
		Height:   float32(vr.context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: vk.Extent2D{
			Width:  vr.context.FramebufferWidth,
			Height: vr.context.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(commandBuffer.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(commandBuffer.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)
	vr.context.MainRenderpass.RenderpassBegin(commandBuffer, vr.context.Swapchain.Framebuffers[vr.context.ImageIndex].Handle)

	return nil
}

// EndFrame closes the renderpass, submits, presents, and flushes the
// queue so all GPU work for the frame has retired on return.
func (vr *VulkanRenderer) EndFrame() error {
	commandBuffer := vr.context.CommandBuffer

	vr.context.MainRenderpass.RenderpassEnd(commandBuffer)
	if err := commandBuffer.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{commandBuffer.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{vr.context.QueueCompleteSemaphore},
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{vr.context.ImageAvailableSemaphore},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
	}

	if result := vk.QueueSubmit(vr.context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); result != vk.Success {
		err := fmt.Errorf("vkQueueSubmit failed with result: %s", VulkanResultString(result, true))
		core.LogError(err.Error())
		return err
	}
	commandBuffer.UpdateSubmitted()

	presentIndex := vr.context.ImageIndex
	if err := vr.context.Swapchain.SwapchainPresent(
		vr.context,
		vr.context.Device.PresentQueue,
		vr.context.QueueCompleteSemaphore,
		presentIndex); err != nil {
		if err == core.ErrSwapchainRebuilding {
			// The present raced a resize; the next Resize call rebuilds.
			core.LogDebug("swapchain out of date on present")
		} else {
			return err
		}
	}

	if err := Flush(vr.context); err != nil {
		return err
	}

	vr.FrameNumber++
	return nil
}

func (vr *VulkanRenderer) regenerateFramebuffers(swapchain *VulkanSwapchain, renderpass *VulkanRenderpass) error {
	for i := 0; i < int(swapchain.ImageCount); i++ {
		var attachments []vk.ImageView
		if swapchain.ColorAttachment != nil {
			// Multisampled: render into the offscreen color target,
			// resolve into the swapchain image.
			attachments = []vk.ImageView{
				swapchain.ColorAttachment.View,
				swapchain.DepthAttachment.View,
				swapchain.Views[i],
			}
		} else {
			attachments = []vk.ImageView{
				swapchain.Views[i],
				swapchain.DepthAttachment.View,
			}
		}
		fb, err := FramebufferCreate(vr.context, renderpass, vr.context.FramebufferWidth, vr.context.FramebufferHeight, attachments)
		if err != nil {
			core.LogError("failed to create framebuffer %d", i)
			return err
		}
		swapchain.Framebuffers[i] = fb
	}
	return nil
}

func (vr *VulkanRenderer) recreateSwapchain() error {
	if vr.context.RecreatingSwapchain {
		core.LogDebug("recreateSwapchain called when already recreating.")
		return core.ErrSwapchainRebuilding
	}
	vr.context.RecreatingSwapchain = true

	// Retire everything before tearing the chain down.
	if err := Flush(vr.context); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)

	if err := vr.context.CommandBuffer.Reset(); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}

	for i := 0; i < int(vr.context.Swapchain.ImageCount); i++ {
		vr.context.Swapchain.Framebuffers[i].Destroy(vr.context)
	}

	// Requery support in case the surface capabilities moved.
	DeviceQuerySwapchainSupport(vr.context.Device.PhysicalDevice, vr.context.Surface, &vr.context.Device.SwapchainSupport)
	DeviceDetectDepthFormat(vr.context.Device)

	sc, err := vr.context.Swapchain.SwapchainRecreate(vr.context, vr.cachedFramebufferWidth, vr.cachedFramebufferHeight, vr.samples)
	if err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}
	vr.context.Swapchain = sc

	vr.context.FramebufferWidth = vr.cachedFramebufferWidth
	vr.context.FramebufferHeight = vr.cachedFramebufferHeight
	vr.cachedFramebufferWidth = 0
	vr.cachedFramebufferHeight = 0

	vr.context.MainRenderpass.X = 0
	vr.context.MainRenderpass.Y = 0
	vr.context.MainRenderpass.W = float32(vr.context.FramebufferWidth)
	vr.context.MainRenderpass.H = float32(vr.context.FramebufferHeight)

	vr.context.Swapchain.Framebuffers = make([]*VulkanFramebuffer, vr.context.Swapchain.ImageCount)
	if err := vr.regenerateFramebuffers(vr.context.Swapchain, vr.context.MainRenderpass); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}

	if err := vr.transitionDepthAttachment(); err != nil {
		vr.context.RecreatingSwapchain = false
		return err
	}

	vr.context.RecreatingSwapchain = false
	core.LogInfo("swapchain recreated at %dx%d (%dx msaa)", vr.context.FramebufferWidth, vr.context.FramebufferHeight, vr.samples)
	return nil
}

func dbgCallbackFunc(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, object uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		core.LogError("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit) != 0:
		core.LogWarn("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	case flags&vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit) != 0:
		core.LogWarn("performance: [%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	default:
		core.LogInfo("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	}
	return vk.Bool32(vk.False)
}
