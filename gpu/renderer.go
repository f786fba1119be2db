package gpu

import (
	"matengine/core"
	"matengine/light"
	"matengine/shader"
	"matengine/textures"
)

// Renderer is the GPU command sink. Implementations are used from the
// render goroutine only.
type Renderer interface {
	// Caps returns the capabilities detected for the current context.
	Caps() CapSet

	ApplyRenderState(rs *RenderState)

	// SetShader binds s, building it on first use, and uploads every
	// uniform that changed since the last upload.
	SetShader(s *shader.Shader) error

	SetTexture(unit int, tex *textures.Texture) error

	// RenderMesh draws count instances of mesh at the given level of detail.
	RenderMesh(mesh *core.Mesh, lod, count int)

	// SetLighting feeds lights to the fixed-function pipeline.
	SetLighting(lights *light.List)
	ClearLighting()

	SetBackgroundColor(c core.Color)
	ClearBuffers(color, depth, stencil bool)
	SetViewport(x, y, width, height int)

	Statistics() *Statistics
}

// FixedFuncBinding names a fixed-function pipeline input a material
// parameter may feed in addition to its shader uniform.
type FixedFuncBinding int

const (
	FixedFuncNone FixedFuncBinding = iota
	FixedFuncMaterialColor
	FixedFuncMaterialAmbient
	FixedFuncMaterialDiffuse
	FixedFuncMaterialSpecular
	FixedFuncMaterialShininess
	FixedFuncUseMaterialColors
	FixedFuncUseVertexColor
)

var fixedFuncNames = [...]string{
	"None", "Color", "MaterialAmbient", "MaterialDiffuse", "MaterialSpecular",
	"MaterialShininess", "UseMaterialColors", "UseVertexColor",
}

func (b FixedFuncBinding) String() string { return enumName(fixedFuncNames[:], int(b)) }

func ParseFixedFuncBinding(s string) (FixedFuncBinding, bool) {
	i, ok := enumIndex(fixedFuncNames[:], s)
	return FixedFuncBinding(i), ok
}

// FixedFuncRenderer is implemented by renderers that emulate or drive
// a fixed-function pipeline.
type FixedFuncRenderer interface {
	SetFixedFuncBinding(b FixedFuncBinding, v shader.Value)
}
