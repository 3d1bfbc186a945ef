package renderer

import (
	"fmt"
	"unsafe"

	"github.com/google/uuid"
	vk "github.com/goki/vulkan"
	"github.com/spinvector/orbit/engine/core"
	"github.com/spinvector/orbit/engine/math"
	"github.com/spinvector/orbit/engine/renderer/vulkan"
)

/**
 * @brief A named draw range within a mesh's index buffer.
 */
type SubmeshRange struct {
	IndexCount   uint32
	FirstIndex   uint32
	VertexOffset int32
}

/**
 * @brief Geometry uploaded to the GPU: vertex and index buffers plus
 * the CPU-side mirrors they were built from. The staging buffers used
 * for the upload stay alive until DisposeUploaders is called after the
 * copy commands have been flushed through the queue.
 */
type MeshGeometry struct {
	ID   uint32
	Name string

	Vertices []math.ColorVertex3D
	Indices  []uint16

	VertexStride uint32
	IndexType    vk.IndexType

	VertexBuffer *vulkan.VulkanBuffer
	IndexBuffer  *vulkan.VulkanBuffer

	vertexUploader *vulkan.VulkanBuffer
	indexUploader  *vulkan.VulkanBuffer

	Submeshes map[string]SubmeshRange
}

// NewMeshGeometry uploads vertex and index data into device-local
// buffers, recording the copies into the caller's open command buffer.
// The caller must submit and flush before drawing, then call
// DisposeUploaders. An empty name gets a generated one.
func NewMeshGeometry(context *vulkan.VulkanContext, commandBuffer *vulkan.VulkanCommandBuffer, name string, vertices []math.ColorVertex3D, indices []uint16) (*MeshGeometry, error) {
	if len(vertices) == 0 || len(indices) == 0 {
		return nil, fmt.Errorf("mesh `%s` requires both vertices and indices", name)
	}
	if name == "" {
		name = uuid.New().String()
	}

	mesh := &MeshGeometry{
		Name:         name,
		Vertices:     vertices,
		Indices:      indices,
		VertexStride: uint32(unsafe.Sizeof(math.ColorVertex3D{})),
		IndexType:    vk.IndexTypeUint16,
		Submeshes:    make(map[string]SubmeshRange),
	}
	mesh.ID = core.IdentifierAquireNewID(mesh)

	vertexBytes := unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), len(vertices)*int(mesh.VertexStride))
	gpu, staging, err := vulkan.NewDeviceLocalBuffer(context, commandBuffer, vertexBytes, vk.BufferUsageVertexBufferBit)
	if err != nil {
		return nil, err
	}
	mesh.VertexBuffer = gpu
	mesh.vertexUploader = staging

	indexBytes := unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*2)
	gpu, staging, err = vulkan.NewDeviceLocalBuffer(context, commandBuffer, indexBytes, vk.BufferUsageIndexBufferBit)
	if err != nil {
		mesh.VertexBuffer.Destroy(context)
		mesh.vertexUploader.Destroy(context)
		return nil, err
	}
	mesh.IndexBuffer = gpu
	mesh.indexUploader = staging

	core.LogDebug("uploaded mesh `%s` (%d vertices, %d indices)", mesh.Name, len(vertices), len(indices))
	return mesh, nil
}

// AddSubmesh names a draw range over the index buffer.
func (m *MeshGeometry) AddSubmesh(name string, indexCount, firstIndex uint32, vertexOffset int32) {
	m.Submeshes[name] = SubmeshRange{
		IndexCount:   indexCount,
		FirstIndex:   firstIndex,
		VertexOffset: vertexOffset,
	}
}

func (m *MeshGeometry) Submesh(name string) (SubmeshRange, bool) {
	r, ok := m.Submeshes[name]
	return r, ok
}

// DisposeUploaders releases the staging buffers. Only legal after the
// upload commands have been flushed through the queue.
func (m *MeshGeometry) DisposeUploaders(context *vulkan.VulkanContext) {
	if m.vertexUploader != nil {
		m.vertexUploader.Destroy(context)
		m.vertexUploader = nil
	}
	if m.indexUploader != nil {
		m.indexUploader.Destroy(context)
		m.indexUploader = nil
	}
}

func (m *MeshGeometry) Destroy(context *vulkan.VulkanContext) {
	m.DisposeUploaders(context)
	if m.IndexBuffer != nil {
		m.IndexBuffer.Destroy(context)
		m.IndexBuffer = nil
	}
	if m.VertexBuffer != nil {
		m.VertexBuffer.Destroy(context)
		m.VertexBuffer = nil
	}
	if err := core.IdentifierReleaseID(m.ID); err != nil {
		core.LogWarn(err.Error())
	}
}

// BoxGeometry returns the unit-ish colored cube: one vertex per corner,
// 12 triangles indexed clockwise.
func BoxGeometry() ([]math.ColorVertex3D, []uint16) {
	white := math.NewVec4(1, 1, 1, 1)
	black := math.NewVec4(0, 0, 0, 1)
	red := math.NewVec4(1, 0, 0, 1)
	green := math.NewVec4(0, 1, 0, 1)
	blue := math.NewVec4(0, 0, 1, 1)
	yellow := math.NewVec4(1, 1, 0, 1)
	cyan := math.NewVec4(0, 1, 1, 1)
	magenta := math.NewVec4(1, 0, 1, 1)

	vertices := []math.ColorVertex3D{
		{Position: math.NewVec3(-1, -1, -1), Colour: white},
		{Position: math.NewVec3(-1, +1, -1), Colour: black},
		{Position: math.NewVec3(+1, +1, -1), Colour: red},
		{Position: math.NewVec3(+1, -1, -1), Colour: green},
		{Position: math.NewVec3(-1, -1, +1), Colour: blue},
		{Position: math.NewVec3(-1, +1, +1), Colour: yellow},
		{Position: math.NewVec3(+1, +1, +1), Colour: cyan},
		{Position: math.NewVec3(+1, -1, +1), Colour: magenta},
	}

	indices := []uint16{
		// front
		0, 1, 2, 0, 2, 3,
		// back
		4, 6, 5, 4, 7, 6,
		// left
		4, 5, 1, 4, 1, 0,
		// right
		3, 2, 6, 3, 6, 7,
		// top
		1, 5, 6, 1, 6, 2,
		// bottom
		4, 0, 3, 4, 3, 7,
	}

	return vertices, indices
}
