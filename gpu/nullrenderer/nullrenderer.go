// Package nullrenderer provides a gpu.Renderer that draws nothing and
// records every call, for tests and headless runs.
package nullrenderer

import (
	"matengine/core"
	"matengine/gpu"
	"matengine/light"
	"matengine/shader"
	"matengine/textures"
)

// DrawCall is a snapshot of the pipeline taken at RenderMesh time.
type DrawCall struct {
	Mesh     *core.Mesh
	LOD      int
	Count    int
	Shader   *shader.Shader
	State    gpu.RenderState
	Uniforms map[string]shader.Value
	Textures map[int]*textures.Texture
}

// Uniform returns the value uniform name had when the call was issued.
func (d DrawCall) Uniform(name string) (shader.Value, bool) {
	v, ok := d.Uniforms[name]
	return v, ok
}

// Renderer records what a real backend would have done.
type Renderer struct {
	caps  gpu.CapSet
	stats gpu.Statistics

	shader   *shader.Shader
	state    gpu.RenderState
	textures map[int]*textures.Texture

	// SetShaderErr, when set, is returned by SetShader.
	SetShaderErr error

	States         []gpu.RenderState
	ShaderBinds    []*shader.Shader
	Draws          []DrawCall
	Lighting       []light.List
	LightingClears int
	FixedFunc      map[gpu.FixedFuncBinding]shader.Value
	Background     core.Color
}

// New returns a renderer reporting the given capabilities.
func New(caps ...gpu.Caps) *Renderer {
	return &Renderer{
		caps:      gpu.NewCapSet(caps...),
		state:     *gpu.DefaultRenderState(),
		textures:  make(map[int]*textures.Texture),
		FixedFunc: make(map[gpu.FixedFuncBinding]shader.Value),
	}
}

// NewGLSL returns a renderer with the capabilities of a GL 4.1 context.
func NewGLSL() *Renderer {
	return New(gpu.CapOpenGL20, gpu.CapOpenGL30, gpu.CapOpenGL41, gpu.CapFrameBuffer,
		gpu.CapGLSL100, gpu.CapGLSL110, gpu.CapGLSL120, gpu.CapGLSL130,
		gpu.CapGLSL140, gpu.CapGLSL150, gpu.CapGLSL330, gpu.CapGLSL400, gpu.CapGLSL410)
}

func (r *Renderer) Caps() gpu.CapSet { return r.caps }

func (r *Renderer) SetCaps(caps gpu.CapSet) { r.caps = caps }

func (r *Renderer) ApplyRenderState(rs *gpu.RenderState) {
	r.state = *rs
	r.States = append(r.States, *rs)
	r.stats.OnRenderState()
}

// State returns the last applied render state.
func (r *Renderer) State() gpu.RenderState { return r.state }

func (r *Renderer) SetShader(s *shader.Shader) error {
	if r.SetShaderErr != nil {
		return r.SetShaderErr
	}
	r.stats.OnShader(s != r.shader)
	r.shader = s
	r.ShaderBinds = append(r.ShaderBinds, s)
	for _, u := range s.Uniforms() {
		if u.IsUpdateNeeded() {
			u.ClearUpdateNeeded()
			r.stats.OnUniformSet()
		}
	}
	return nil
}

// BoundShader returns the shader of the last SetShader call.
func (r *Renderer) BoundShader() *shader.Shader { return r.shader }

func (r *Renderer) SetTexture(unit int, tex *textures.Texture) error {
	r.stats.OnTexture(r.textures[unit] != tex)
	r.textures[unit] = tex
	return nil
}

// Texture returns the texture bound to unit.
func (r *Renderer) Texture(unit int) *textures.Texture { return r.textures[unit] }

func (r *Renderer) RenderMesh(mesh *core.Mesh, lod, count int) {
	r.stats.OnMeshDrawn(mesh, lod, count)
	d := DrawCall{
		Mesh:     mesh,
		LOD:      lod,
		Count:    count,
		Shader:   r.shader,
		State:    r.state,
		Uniforms: make(map[string]shader.Value),
		Textures: make(map[int]*textures.Texture, len(r.textures)),
	}
	if r.shader != nil {
		for _, u := range r.shader.Uniforms() {
			d.Uniforms[u.Name()] = u.Value().Clone()
		}
	}
	for unit, tex := range r.textures {
		d.Textures[unit] = tex
	}
	r.Draws = append(r.Draws, d)
}

func (r *Renderer) SetLighting(lights *light.List) {
	r.Lighting = append(r.Lighting, lights.Clone())
}

func (r *Renderer) ClearLighting() { r.LightingClears++ }

func (r *Renderer) SetFixedFuncBinding(b gpu.FixedFuncBinding, v shader.Value) {
	r.FixedFunc[b] = v
}

func (r *Renderer) SetBackgroundColor(c core.Color) { r.Background = c }

func (r *Renderer) ClearBuffers(color, depth, stencil bool) {}

func (r *Renderer) SetViewport(x, y, width, height int) {}

func (r *Renderer) Statistics() *gpu.Statistics { return &r.stats }

// Reset forgets every recorded call but keeps the capabilities.
func (r *Renderer) Reset() {
	caps := r.caps
	*r = *New()
	r.caps = caps
}

var (
	_ gpu.Renderer          = (*Renderer)(nil)
	_ gpu.FixedFuncRenderer = (*Renderer)(nil)
)
