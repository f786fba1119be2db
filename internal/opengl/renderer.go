// Package opengl is the OpenGL 4.1 core backend of gpu.Renderer.
// Every method must be called on the goroutine that owns the context.
package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"matengine/core"
	"matengine/gpu"
	"matengine/internal/logger"
	"matengine/light"
	"matengine/shader"
	"matengine/textures"
)

// Renderer is the OpenGL rendering backend.
type Renderer struct {
	caps gpu.CapSet

	program    uint32
	state      gpu.RenderState
	stateValid bool

	boundTextures map[int]uint32
	uploaded      map[*textures.Texture]*glTexture
	gpuMeshes     map[*core.Mesh]*GPUMesh
	programs      map[uint32]*shader.Shader

	stats gpu.Statistics

	viewportW int32
	viewportH int32
}

var (
	_ gpu.Renderer          = (*Renderer)(nil)
	_ gpu.FixedFuncRenderer = (*Renderer)(nil)
)

// NewRenderer initialises OpenGL and detects the context's capabilities.
// Must be called after the GLFW window context is made current.
func NewRenderer() (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	version := gl.GoStr(gl.GetString(gl.VERSION))
	glslVersion := gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION))
	r := &Renderer{
		caps:          capsFor(version, glslVersion),
		boundTextures: make(map[int]uint32),
		uploaded:      make(map[*textures.Texture]*glTexture),
		gpuMeshes:     make(map[*core.Mesh]*GPUMesh),
		programs:      make(map[uint32]*shader.Shader),
	}
	logger.Log.Info("OpenGL renderer initialized",
		zap.String("version", version),
		zap.String("glsl", glslVersion),
		zap.Stringer("caps", r.caps))

	if r.caps.Contains(gpu.CapSeamlessCubemap) {
		gl.Enable(gl.TEXTURE_CUBE_MAP_SEAMLESS)
	}
	r.ApplyRenderState(gpu.DefaultRenderState())
	return r, nil
}

func (r *Renderer) Caps() gpu.CapSet { return r.caps }

// SetCaps overrides the detected capabilities, e.g. to exercise the
// fallback techniques of a material on a capable machine.
func (r *Renderer) SetCaps(caps gpu.CapSet) { r.caps = caps }

func (r *Renderer) Statistics() *gpu.Statistics { return &r.stats }

// ── Viewport and buffers ──────────────────────────────────────────────────────

func (r *Renderer) SetViewport(x, y, width, height int) {
	r.viewportW = int32(width)
	r.viewportH = int32(height)
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (r *Renderer) SetBackgroundColor(c core.Color) {
	gl.ClearColor(c.R, c.G, c.B, c.A)
}

// ClearBuffers clears the selected buffers. Depth and color writes are
// re-enabled first so a masked state from the last draw cannot block
// the clear.
func (r *Renderer) ClearBuffers(color, depth, stencil bool) {
	var bits uint32
	if color {
		gl.ColorMask(true, true, true, true)
		r.state.SetColorWrite(true)
		bits |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		gl.DepthMask(true)
		r.state.SetDepthWrite(true)
		bits |= gl.DEPTH_BUFFER_BIT
	}
	if stencil {
		bits |= gl.STENCIL_BUFFER_BIT
	}
	if bits != 0 {
		gl.Clear(bits)
	}
}

// ── Fixed function ────────────────────────────────────────────────────────────

// SetLighting does nothing: the core profile has no fixed-function
// lighting, so techniques relying on it draw unlit.
func (r *Renderer) SetLighting(lights *light.List) {
	if lights != nil && lights.Len() > 0 {
		logger.Log.Debug("fixed-function lighting is not available on the core profile",
			zap.Int("lights", lights.Len()))
	}
}

func (r *Renderer) ClearLighting() {}

func (r *Renderer) SetFixedFuncBinding(b gpu.FixedFuncBinding, v shader.Value) {
	logger.Log.Debug("fixed-function binding ignored on the core profile",
		zap.Stringer("binding", b),
		zap.Stringer("value", v))
}

// ── Resource management ───────────────────────────────────────────────────────

// Destroy releases all GPU resources.
func (r *Renderer) Destroy() {
	for mesh := range r.gpuMeshes {
		r.ReleaseMesh(mesh)
	}
	for tex := range r.uploaded {
		r.DeleteTexture(tex)
	}
	for id, s := range r.programs {
		gl.DeleteProgram(id)
		s.Handle = nil
		s.ResetLocations()
	}
	clear(r.programs)
	r.program = 0
}
