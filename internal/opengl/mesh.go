package opengl

import (
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"matengine/core"
)

// GPUMesh holds the OpenGL buffer objects for an uploaded mesh.
type GPUMesh struct {
	VAO        uint32
	VBO        uint32
	EBO        uint32
	IndexCount int32
	HasIndices bool
}

// Vertex attribute names and their fixed locations.
var vertexAttribs = [...]string{
	0: "inPosition",
	1: "inNormal",
	2: "inTexCoord",
	3: "inColor",
	4: "inTangent",
	5: "inBitangent",
}

func bindAttribLocations(prog uint32) {
	for i, name := range vertexAttribs {
		gl.BindAttribLocation(prog, uint32(i), gl.Str(name+"\x00"))
	}
}

// RenderMesh draws count instances of mesh, uploading it on first use.
// The level of detail is ignored: meshes carry a single index buffer.
func (r *Renderer) RenderMesh(mesh *core.Mesh, lod, count int) {
	g := r.ensureUploaded(mesh)
	if g == nil {
		return
	}

	primitive := uint32(gl.TRIANGLES)
	switch mesh.DrawMode {
	case core.DrawLines:
		primitive = gl.LINES
	case core.DrawPoints:
		primitive = gl.POINTS
	}

	gl.BindVertexArray(g.VAO)
	switch {
	case g.HasIndices && count > 1:
		gl.DrawElementsInstanced(primitive, g.IndexCount, gl.UNSIGNED_INT, nil, int32(count))
	case g.HasIndices:
		gl.DrawElements(primitive, g.IndexCount, gl.UNSIGNED_INT, nil)
	case count > 1:
		gl.DrawArraysInstanced(primitive, 0, int32(len(mesh.Vertices)), int32(count))
	default:
		gl.DrawArrays(primitive, 0, int32(len(mesh.Vertices)))
	}
	gl.BindVertexArray(0)
	r.stats.OnMeshDrawn(mesh, lod, count)
}

// ReleaseMesh frees GPU buffers for the given mesh.
func (r *Renderer) ReleaseMesh(mesh *core.Mesh) {
	g, ok := r.gpuMeshes[mesh]
	if !ok {
		return
	}
	gl.DeleteVertexArrays(1, &g.VAO)
	gl.DeleteBuffers(1, &g.VBO)
	if g.HasIndices {
		gl.DeleteBuffers(1, &g.EBO)
	}
	delete(r.gpuMeshes, mesh)
	mesh.GPUData = nil
}

// ensureUploaded uploads vertex/index data if not already done.
func (r *Renderer) ensureUploaded(mesh *core.Mesh) *GPUMesh {
	if g, ok := r.gpuMeshes[mesh]; ok {
		return g
	}
	if len(mesh.Vertices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(core.Vertex{}))
	g := &GPUMesh{
		IndexCount: int32(len(mesh.Indices)),
		HasIndices: len(mesh.Indices) > 0,
	}

	gl.GenVertexArrays(1, &g.VAO)
	gl.GenBuffers(1, &g.VBO)
	gl.BindVertexArray(g.VAO)

	gl.BindBuffer(gl.ARRAY_BUFFER, g.VBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.Vertices)*int(stride), gl.Ptr(mesh.Vertices), gl.STATIC_DRAW)

	var v core.Vertex
	attribs := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.UV)},
		{4, unsafe.Offsetof(v.Color)},
		{3, unsafe.Offsetof(v.Tangent)},
		{3, unsafe.Offsetof(v.Bitangent)},
	}
	for i, a := range attribs {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), a.size, gl.FLOAT, false, stride, gl.PtrOffset(int(a.offset)))
	}

	if g.HasIndices {
		gl.GenBuffers(1, &g.EBO)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.EBO)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Indices)*4, gl.Ptr(mesh.Indices), gl.STATIC_DRAW)
	}

	gl.BindVertexArray(0)

	r.gpuMeshes[mesh] = g
	mesh.GPUData = g
	return g
}
