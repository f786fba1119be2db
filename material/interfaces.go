// Package material resolves materials to draw calls: it picks a
// technique the hardware supports, keeps the technique's shader in sync
// with the material's parameters, merges render state and uploads
// parameters and lights before drawing.
package material

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"matengine/core"
	"matengine/gpu"
	"matengine/light"
	"matengine/shader"
)

var (
	ErrIllegalArgument = errors.New("material: illegal argument")
	ErrUnsupported     = errors.New("material: unsupported operation")
)

// RenderManager is what a material needs from the frame renderer.
type RenderManager interface {
	Renderer() gpu.Renderer

	// ForcedRenderState returns a state that replaces every material's
	// own state, or nil.
	ForcedRenderState() *gpu.RenderState

	// UpdateUniformBindings writes the engine-global values of the
	// given world-bound uniforms.
	UpdateUniformBindings(uniforms []*shader.Uniform)

	// ViewMatrix is the view matrix of the current camera.
	ViewMatrix() mgl32.Mat4

	// SinglePassLightBatchSize is the number of lights packed per
	// single-pass draw.
	SinglePassLightBatchSize() int
}

// Drawable is a geometry a material can render.
type Drawable interface {
	Mesh() *core.Mesh
	LodLevel() int
	WorldLightList() *light.List
}

// ShaderLoader builds or fetches the shader variant for a key.
type ShaderLoader interface {
	LoadShader(key shader.Key) (*shader.Shader, error)
}
