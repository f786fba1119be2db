package material

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"matengine/core"
	"matengine/gpu"
	"matengine/light"
	"matengine/shader"
)

// Lighting uniforms written by the engine.
const (
	uniformLightColor     = "g_LightColor"
	uniformLightPosition  = "g_LightPosition"
	uniformLightDirection = "g_LightDirection"
	uniformAmbientColor   = "g_AmbientLightColor"
)

// DefaultSinglePassLightBatchSize is used when the render manager
// reports no batch size.
const DefaultSinglePassLightBatchSize = 4

// nullDirLight is a directional light pointing down, used to draw the
// ambient term when a geometry has only ambient lights.
var nullDirLight = mgl32.Vec4{0, -1, 0, -1}

// additiveLight blends the second and later passes of multi-pass
// lighting onto the first.
func additiveLight() *gpu.RenderState {
	rs := gpu.DefaultRenderState()
	rs.SetBlendMode(gpu.BlendAlphaAdditive)
	rs.SetDepthWrite(false)
	return rs
}

// Render draws geom with the material: it selects a technique, applies
// render state, uploads world bindings, parameters and lights, then
// issues the draw calls.
func (m *Material) Render(geom Drawable, rm RenderManager) error {
	if err := m.autoSelectTechnique(rm); err != nil {
		return err
	}
	r := rm.Renderer()
	tech := m.technique
	techDef := tech.Def()
	lights := geom.WorldLightList()

	if techDef.LightMode() == LightMultiPass && (lights == nil || lights.Len() == 0) {
		return nil
	}

	if forced := rm.ForcedRenderState(); forced != nil {
		r.ApplyRenderState(forced)
	} else {
		base := techDef.RenderState()
		if base == nil {
			base = gpu.DefaultRenderState()
		}
		r.ApplyRenderState(base.CopyMergedTo(m.additionalState, &m.mergedState))
	}

	s := tech.Shader()
	if !techDef.UsesShaders() && (techDef.LightMode() == LightSinglePass || techDef.LightMode() == LightMultiPass) {
		return fmt.Errorf("%w: technique %q uses %s lighting without shaders", ErrUnsupported, techDef.Name(), techDef.LightMode())
	}
	if techDef.UsesShaders() {
		s.ClearSetByCurrentMaterial()
		rm.UpdateUniformBindings(tech.WorldBindUniforms())
	}

	for _, n := range m.paramOrder {
		if err := m.params[n].Apply(r, tech); err != nil {
			return err
		}
	}

	switch techDef.LightMode() {
	case LightDisable:
		r.ClearLighting()
	case LightSinglePass:
		n := rm.SinglePassLightBatchSize()
		if n <= 0 {
			n = DefaultSinglePassLightBatchSize
		}
		if err := updateLightListUniforms(s, lights, n); err != nil {
			return err
		}
	case LightFixedPipeline:
		if lights == nil {
			lights = &light.List{}
		}
		r.SetLighting(lights)
	case LightMultiPass:
		s.ResetUniformsNotSetByCurrent()
		return renderMultipassLighting(s, geom, rm)
	}

	if techDef.UsesShaders() {
		s.ResetUniformsNotSetByCurrent()
		if err := r.SetShader(s); err != nil {
			return fmt.Errorf("material %q: %w", m.def.Name(), err)
		}
	}
	r.RenderMesh(geom.Mesh(), geom.LodLevel(), 1)
	return nil
}

// Preload selects a technique and hands its textures and shader to the
// renderer ahead of the first frame.
func (m *Material) Preload(rm RenderManager) error {
	if err := m.autoSelectTechnique(rm); err != nil {
		return err
	}
	r := rm.Renderer()
	tech := m.technique
	usesShaders := tech.Def().UsesShaders()

	for _, n := range m.paramOrder {
		switch p := m.params[n].(type) {
		case *MatParamTexture:
			if err := r.SetTexture(0, p.Texture()); err != nil {
				return fmt.Errorf("material %q: preload %q: %w", m.def.Name(), p.Name(), err)
			}
		default:
			if usesShaders {
				tech.updateUniformParam(p.PrefixedName(), p.Value())
			}
		}
	}
	if usesShaders {
		return r.SetShader(tech.Shader())
	}
	return nil
}

// ── Lighting ──────────────────────────────────────────────────────────────────

// updateLightListUniforms packs up to n non-ambient lights into the
// light uniform arrays for a single draw. Ambient lights are summed into
// the ambient color and take no slot. Unused slots are zero.
func updateLightListUniforms(s *shader.Shader, lights *light.List, n int) error {
	if n == 0 {
		return nil
	}
	lightColor := s.Uniform(uniformLightColor)
	lightPos := s.Uniform(uniformLightPosition)
	lightDir := s.Uniform(uniformLightDirection)
	lightColor.SetVector4Length(n)
	lightPos.SetVector4Length(n)
	lightDir.SetVector4Length(n)

	if lights == nil {
		lights = &light.List{}
	}
	s.Uniform(uniformAmbientColor).SetValue(shader.ColorValue(lights.AmbientColor()))

	idx := 0
	for _, l := range lights.Lights() {
		if idx >= n {
			break
		}
		switch lt := l.(type) {
		case *light.Ambient:
			continue
		case *light.Directional:
			d := lt.Direction
			lightPos.SetVector4InArray(d[0], d[1], d[2], -1, idx)
			lightDir.SetVector4InArray(0, 0, 0, 0, idx)
		case *light.Point:
			p := lt.Position
			lightPos.SetVector4InArray(p[0], p[1], p[2], lt.InvRadius(), idx)
			lightDir.SetVector4InArray(0, 0, 0, 0, idx)
		case *light.Spot:
			p, d := lt.Position, lt.Direction
			lightPos.SetVector4InArray(p[0], p[1], p[2], lt.InvRange(), idx)
			lightDir.SetVector4InArray(d[0], d[1], d[2], lt.PackedAngleCos(), idx)
		default:
			return fmt.Errorf("%w: unknown type of light: %s", ErrUnsupported, l.Type())
		}
		c := l.Color()
		lightColor.SetVector4InArray(c.R, c.G, c.B, l.Type().ID(), idx)
		idx++
	}
	for ; idx < n; idx++ {
		lightColor.SetVector4InArray(0, 0, 0, 0, idx)
		lightPos.SetVector4InArray(0, 0, 0, 0, idx)
		lightDir.SetVector4InArray(0, 0, 0, 0, idx)
	}
	return nil
}

// renderMultipassLighting draws geom once per non-ambient light. The
// first pass carries the ambient term; later passes blend additively
// with the ambient term zeroed. With only ambient lights a single pass
// lit by nullDirLight draws the ambient term.
func renderMultipassLighting(s *shader.Shader, geom Drawable, rm RenderManager) error {
	r := rm.Renderer()
	lights := geom.WorldLightList()
	lightDir := s.Uniform(uniformLightDirection)
	lightColor := s.Uniform(uniformLightColor)
	lightPos := s.Uniform(uniformLightPosition)
	ambientColor := s.Uniform(uniformAmbientColor)

	draw := func() error {
		if err := r.SetShader(s); err != nil {
			return err
		}
		r.RenderMesh(geom.Mesh(), geom.LodLevel(), 1)
		return nil
	}

	first, second := true, false
	for _, l := range lights.Lights() {
		if l.Type() == light.TypeAmbient {
			continue
		}
		if first {
			ambientColor.SetValue(shader.ColorValue(lights.AmbientColor()))
			first, second = false, true
		} else if second {
			ambientColor.SetValue(shader.ColorValue(core.ColorBlack))
			r.ApplyRenderState(additiveLight())
			second = false
		}

		c := l.Color()
		lightColor.SetValue(shader.Vec4(mgl32.Vec4{c.R, c.G, c.B, l.Type().ID()}))

		switch lt := l.(type) {
		case *light.Directional:
			d := lt.Direction
			lightPos.SetValue(shader.Vec4(mgl32.Vec4{d[0], d[1], d[2], -1}))
			lightDir.SetValue(shader.Vec4(mgl32.Vec4{0, 0, 0, 0}))
		case *light.Point:
			p := lt.Position
			lightPos.SetValue(shader.Vec4(mgl32.Vec4{p[0], p[1], p[2], lt.InvRadius()}))
			lightDir.SetValue(shader.Vec4(mgl32.Vec4{0, 0, 0, 0}))
		case *light.Spot:
			p := lt.Position
			lightPos.SetValue(shader.Vec4(mgl32.Vec4{p[0], p[1], p[2], lt.InvRange()}))
			// Spot direction is sent in view space.
			v := rm.ViewMatrix().Mul4x1(lt.Direction.Vec4(0))
			lightDir.SetValue(shader.Vec4(mgl32.Vec4{v[0], v[1], v[2], lt.PackedAngleCos()}))
		default:
			return fmt.Errorf("%w: unknown type of light: %s", ErrUnsupported, l.Type())
		}

		if err := draw(); err != nil {
			return err
		}
	}

	if first && lights.Len() > 0 {
		ambientColor.SetValue(shader.ColorValue(lights.AmbientColor()))
		lightColor.SetValue(shader.ColorValue(core.ColorBlackNoAlpha))
		lightPos.SetValue(shader.Vec4(nullDirLight))
		return draw()
	}
	return nil
}
