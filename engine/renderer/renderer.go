package renderer

import (
	"errors"
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spinvector/orbit/engine/core"
	"github.com/spinvector/orbit/engine/math"
	"github.com/spinvector/orbit/engine/platform"
	"github.com/spinvector/orbit/engine/renderer/vulkan"
	"github.com/spinvector/orbit/shaders"
)

const boxSubmeshName = "box"

/**
 * @brief The frontend over the Vulkan backend: owns the camera, the
 * cube geometry, the pipeline and the per-frame uniform buffer.
 */
type Renderer struct {
	backend *vulkan.VulkanRenderer
	camera  *OrbitCamera

	mesh       *MeshGeometry
	pipeline   *vulkan.VulkanPipeline
	vertShader *vulkan.VulkanShaderStage
	fragShader *vulkan.VulkanShaderStage
	uniform    *vulkan.VulkanBuffer
	descriptor *vulkan.VulkanDescriptor

	world      math.Mat4
	projection math.Mat4

	msaaEnabled bool
	msaaSamples uint32
}

func NewRenderer(p *platform.Platform, debug bool, msaaEnabled bool, msaaSamples uint32) *Renderer {
	return &Renderer{
		backend:     vulkan.New(p, debug),
		camera:      NewOrbitCamera(),
		world:       math.NewMat4Identity(),
		msaaEnabled: msaaEnabled,
		msaaSamples: msaaSamples,
	}
}

func (r *Renderer) Camera() *OrbitCamera {
	return r.camera
}

func (r *Renderer) MsaaEnabled() bool {
	return r.msaaEnabled
}

func (r *Renderer) sampleCount() vk.SampleCountFlagBits {
	if !r.msaaEnabled {
		return vk.SampleCount1Bit
	}
	switch r.msaaSamples {
	case 2:
		return vk.SampleCount2Bit
	case 8:
		return vk.SampleCount8Bit
	default:
		return vk.SampleCount4Bit
	}
}

func (r *Renderer) Initialize(appName string, width, height uint32) error {
	if err := r.backend.Initialize(appName, width, height, r.sampleCount()); err != nil {
		return err
	}
	context := r.backend.Context()

	// Per-frame uniform buffer, persistently mapped. A single buffer is
	// enough because every frame ends in a full queue flush, so the GPU
	// is never reading it while the CPU writes the next frame.
	uniformSize := vulkan.CalcUniformBufferSize(uint64(unsafe.Sizeof(math.Mat4{})))
	uniform, err := vulkan.BufferCreate(context, uniformSize,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return err
	}
	if err := uniform.Map(context); err != nil {
		uniform.Destroy(context)
		return err
	}
	r.uniform = uniform

	descriptor, err := vulkan.NewUniformDescriptor(context, uniform, uniformSize)
	if err != nil {
		return err
	}
	r.descriptor = descriptor

	vertCode, err := shaderBytecode("vert.spv", shaders.Vertex)
	if err != nil {
		return err
	}
	fragCode, err := shaderBytecode("frag.spv", shaders.Fragment)
	if err != nil {
		return err
	}
	vert, err := vulkan.NewShaderModule(context, "shader.vert", vertCode, vk.ShaderStageVertexBit)
	if err != nil {
		return err
	}
	r.vertShader = vert
	frag, err := vulkan.NewShaderModule(context, "shader.frag", fragCode, vk.ShaderStageFragmentBit)
	if err != nil {
		return err
	}
	r.fragShader = frag

	// Upload the cube through a single-use command buffer and flush so
	// the staging buffers can be released before the first frame.
	uploadCb, err := vulkan.AllocateAndBeginSingleUse(context, context.Device.GraphicsCommandPool)
	if err != nil {
		return err
	}
	vertices, indices := BoxGeometry()
	mesh, err := NewMeshGeometry(context, uploadCb, boxSubmeshName, vertices, indices)
	if err != nil {
		return err
	}
	mesh.AddSubmesh(boxSubmeshName, uint32(len(indices)), 0, 0)
	if err := uploadCb.EndSingleUse(context, context.Device.GraphicsCommandPool, context.Device.GraphicsQueue); err != nil {
		return err
	}
	if err := vulkan.Flush(context); err != nil {
		return err
	}
	mesh.DisposeUploaders(context)
	r.mesh = mesh

	if err := r.createPipeline(); err != nil {
		return err
	}

	r.setProjection(width, height)
	return nil
}

// shaderBytecode guards against a checkout whose SPIR-V has not been
// compiled yet; the committed .spv files start out empty.
func shaderBytecode(name string, code []byte) ([]byte, error) {
	if len(code) == 0 {
		return nil, fmt.Errorf("embedded shader %s is empty; run `mage build:shaders` and rebuild", name)
	}
	return code, nil
}

func (r *Renderer) createPipeline() error {
	context := r.backend.Context()

	attributes := []vk.VertexInputAttributeDescription{
		{Location: 0, Binding: 0, Format: vk.FormatR32g32b32Sfloat, Offset: 0},
		{Location: 1, Binding: 0, Format: vk.FormatR32g32b32a32Sfloat, Offset: uint32(unsafe.Offsetof(math.ColorVertex3D{}.Colour))},
	}

	config := &vulkan.VulkanPipelineConfig{
		Renderpass:           context.MainRenderpass,
		Stride:               r.mesh.VertexStride,
		Attributes:           attributes,
		DescriptorSetLayouts: []vk.DescriptorSetLayout{r.descriptor.Layout},
		Stages: []vk.PipelineShaderStageCreateInfo{
			r.vertShader.ShaderStageCreateInfo,
			r.fragShader.ShaderStageCreateInfo,
		},
		Viewport: vk.Viewport{
			X: 0, Y: 0,
			Width:    float32(context.FramebufferWidth),
			Height:   float32(context.FramebufferHeight),
			MinDepth: 0, MaxDepth: 1,
		},
		Scissor: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{Width: context.FramebufferWidth, Height: context.FramebufferHeight},
		},
		// No face culling: the cube is convex, and skipping the cull
		// keeps the clip-space Y flip from inverting the winding test.
		CullMode:    vulkan.FaceCullModeNone,
		IsWireframe: false,
		Samples:     r.backend.Samples(),
		DepthTest:   true,
	}

	pipeline, err := vulkan.NewGraphicsPipeline(context, config)
	if err != nil {
		return err
	}
	r.pipeline = pipeline
	return nil
}

func (r *Renderer) setProjection(width, height uint32) {
	if height == 0 {
		height = 1
	}
	aspect := float32(width) / float32(height)
	r.projection = math.NewMat4Perspective(math.K_QUARTER_PI, aspect, 1.0, 1000.0)
}

// Resize rebuilds the presentation chain and recomputes the projection.
// Zero-sized dimensions are the caller's signal to suspend instead.
func (r *Renderer) Resize(width, height uint32) error {
	if err := r.backend.Resize(width, height); err != nil {
		return err
	}
	r.setProjection(width, height)
	return nil
}

// SetMsaaEnabled toggles multisampling. Reports whether the state
// actually changed; the swapchain, renderpass and pipeline are rebuilt
// when it did.
func (r *Renderer) SetMsaaEnabled(enabled bool) (bool, error) {
	if enabled == r.msaaEnabled {
		return false, nil
	}
	r.msaaEnabled = enabled
	if err := r.backend.SetSamples(r.sampleCount()); err != nil {
		r.msaaEnabled = !enabled
		return false, err
	}

	// The pipeline's rasterization sample count is baked in; rebuild it
	// against the new renderpass.
	context := r.backend.Context()
	r.pipeline.Destroy(context)
	r.pipeline = nil
	if err := r.createPipeline(); err != nil {
		return false, err
	}
	return true, nil
}

// Update recomputes the world-view-projection matrix from the camera
// and writes it, transposed, into the mapped uniform buffer. No GPU
// submission happens here.
func (r *Renderer) Update(delta float64) error {
	wvp := r.world.Mul(r.camera.View()).Mul(r.projection)
	t := math.NewMat4Transposed(wvp)

	data := unsafe.Slice((*byte)(unsafe.Pointer(&t.Data[0])), int(unsafe.Sizeof(t.Data)))
	return r.uniform.LoadData(data, 0)
}

// Draw records and submits one frame: one indexed draw of the cube,
// then present and a full flush.
func (r *Renderer) Draw() error {
	// Resolve the draw range before any recording starts, so a bad mesh
	// never leaves a half-recorded frame behind.
	sub, ok := r.mesh.Submesh(boxSubmeshName)
	if !ok {
		core.LogError("mesh `%s` has no `%s` submesh", r.mesh.Name, boxSubmeshName)
		return errors.New("missing submesh")
	}

	if err := r.backend.BeginFrame(); err != nil {
		if errors.Is(err, core.ErrSwapchainRebuilding) {
			// Stale chain; skip the frame, the resize path rebuilds.
			return nil
		}
		return err
	}

	context := r.backend.Context()
	commandBuffer := context.CommandBuffer

	r.pipeline.Bind(commandBuffer, vk.PipelineBindPointGraphics)
	r.descriptor.Bind(commandBuffer, r.pipeline.PipelineLayout)

	vk.CmdBindVertexBuffers(commandBuffer.Handle, 0, 1, []vk.Buffer{r.mesh.VertexBuffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(commandBuffer.Handle, r.mesh.IndexBuffer.Handle, 0, r.mesh.IndexType)

	vk.CmdDrawIndexed(commandBuffer.Handle, sub.IndexCount, 1, sub.FirstIndex, sub.VertexOffset, 0)

	return r.backend.EndFrame()
}

func (r *Renderer) Shutdown() error {
	context := r.backend.Context()
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	if r.pipeline != nil {
		r.pipeline.Destroy(context)
		r.pipeline = nil
	}
	if r.vertShader != nil {
		r.vertShader.Destroy(context)
		r.vertShader = nil
	}
	if r.fragShader != nil {
		r.fragShader.Destroy(context)
		r.fragShader = nil
	}
	if r.descriptor != nil {
		r.descriptor.Destroy(context)
		r.descriptor = nil
	}
	if r.uniform != nil {
		r.uniform.Unmap(context)
		r.uniform.Destroy(context)
		r.uniform = nil
	}
	if r.mesh != nil {
		r.mesh.Destroy(context)
		r.mesh = nil
	}
	return r.backend.Shutdown()
}
