package material

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"matengine/core"
	"matengine/gpu"
	"matengine/internal/logger"
	"matengine/shader"
	"matengine/textures"
)

// Material is a MaterialDef plus parameter values, an optional render
// state override and the technique it currently renders with.
//
// A Material is not safe for concurrent use. Mutating a texture
// parameter while another goroutine sorts or renders with the material
// gives inconsistent sort ids.
type Material struct {
	def       *MaterialDef
	name      string
	assetName string

	params     map[string]Param
	paramOrder []string

	technique  *Technique
	techniques map[string]*Technique

	additionalState *gpu.RenderState
	mergedState     gpu.RenderState

	transparent     bool
	receivesShadows bool

	sortID      int
	nextTexUnit int
}

// New creates a material of def with the definition's defaults applied.
func New(def *MaterialDef) (*Material, error) {
	m, err := newBare(def)
	if err != nil {
		return nil, err
	}
	for _, p := range def.MaterialParams() {
		if p.Value().IsNil() {
			continue
		}
		if err := m.SetParam(p.Name(), p.Value()); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Material) MaterialDef() *MaterialDef { return m.def }

func (m *Material) Name() string     { return m.name }
func (m *Material) SetName(n string) { m.name = n }

// AssetName is the path the material was loaded from, or "".
func (m *Material) AssetName() string     { return m.assetName }
func (m *Material) SetAssetName(n string) { m.assetName = n }

// ActiveTechnique returns the selected technique, or nil.
func (m *Material) ActiveTechnique() *Technique { return m.technique }

// AdditionalRenderState returns the material's render state override,
// creating one that applies nothing on first use.
func (m *Material) AdditionalRenderState() *gpu.RenderState {
	if m.additionalState == nil {
		m.additionalState = gpu.AdditionalRenderState()
	}
	return m.additionalState
}

func (m *Material) IsTransparent() bool       { return m.transparent }
func (m *Material) SetTransparent(v bool)     { m.transparent = v }
func (m *Material) ReceivesShadows() bool     { return m.receivesShadows }
func (m *Material) SetReceivesShadows(v bool) { m.receivesShadows = v }

// Clone returns a material with copies of every parameter and of the
// render state override. The clone starts without a technique.
func (m *Material) Clone() *Material {
	c := *m
	c.params = make(map[string]Param, len(m.params))
	for n, p := range m.params {
		c.params[n] = p.Clone()
	}
	c.paramOrder = slices.Clone(m.paramOrder)
	c.technique = nil
	c.techniques = make(map[string]*Technique)
	if m.additionalState != nil {
		c.additionalState = m.additionalState.Clone()
	}
	c.sortID = -1
	return &c
}

// ContentEqual reports whether m and o render identically: same
// definition, parameters, render state override and flags.
func (m *Material) ContentEqual(o *Material) bool {
	if m == o {
		return true
	}
	if o == nil || m.def != o.def || m.transparent != o.transparent || m.receivesShadows != o.receivesShadows {
		return false
	}
	if len(m.params) != len(o.params) {
		return false
	}
	for n, p := range m.params {
		q, ok := o.params[n]
		if !ok || !p.Value().Equal(q.Value()) {
			return false
		}
		if pt, ok := p.(*MatParamTexture); ok {
			if qt, ok := q.(*MatParamTexture); !ok || pt.Unit() != qt.Unit() {
				return false
			}
		}
	}
	a, b := m.additionalState, o.additionalState
	if a == nil {
		a = gpu.AdditionalRenderState()
	}
	if b == nil {
		b = gpu.AdditionalRenderState()
	}
	return a.Equal(b)
}

// newBare creates a material of def without any parameters set.
func newBare(def *MaterialDef) (*Material, error) {
	if def == nil {
		return nil, fmt.Errorf("%w: nil material definition", ErrIllegalArgument)
	}
	return &Material{
		def:        def,
		params:     make(map[string]Param),
		techniques: make(map[string]*Technique),
		sortID:     -1,
	}, nil
}

// ── Parameters ────────────────────────────────────────────────────────────────

// Params returns the parameters in the order they were first set.
func (m *Material) Params() []Param {
	out := make([]Param, 0, len(m.paramOrder))
	for _, n := range m.paramOrder {
		out = append(out, m.params[n])
	}
	return out
}

// Param returns the parameter called name, or nil when unset.
func (m *Material) Param(name string) Param { return m.params[name] }

// TextureParam returns the texture parameter called name, or nil.
func (m *Material) TextureParam(name string) *MatParamTexture {
	p, _ := m.params[name].(*MatParamTexture)
	return p
}

// ParamValue returns the value of name, or a nil Value when unset.
func (m *Material) ParamValue(name string) shader.Value {
	if p := m.params[name]; p != nil {
		return p.Value()
	}
	return shader.Value{}
}

// checkSetParam resolves name against the definition. Names with the
// legacy "m_" prefix are accepted with a warning. It returns the
// canonical name and its declaration.
func (m *Material) checkSetParam(name string) (string, Param, error) {
	decl := m.def.MaterialParam(name)
	if decl == nil && strings.HasPrefix(name, UniformPrefix) {
		stripped := strings.TrimPrefix(name, UniformPrefix)
		if decl = m.def.MaterialParam(stripped); decl != nil {
			logger.Log.Warn("material parameter uses a deprecated naming convention",
				zap.String("param", name),
				zap.String("use", stripped),
				zap.String("material", m.def.Name()))
			name = stripped
		}
	}
	if decl == nil {
		return "", nil, fmt.Errorf("%w: material parameter is not defined: %s", ErrIllegalArgument, name)
	}
	return name, decl, nil
}

// SetParam sets the parameter called name. The value's kind must match
// the declared type. A nil value clears the parameter.
func (m *Material) SetParam(name string, v shader.Value) error {
	if v.Kind().IsTextureType() {
		return m.SetTextureParam(name, v.Kind(), v.Texture())
	}
	if v.IsNil() {
		return m.ClearParam(name)
	}
	name, decl, err := m.checkSetParam(name)
	if err != nil {
		return err
	}
	if decl.VarType() != v.Kind() {
		return fmt.Errorf("%w: material parameter %s is %s, got %s", ErrIllegalArgument, name, decl.VarType(), v.Kind())
	}

	p := m.params[name]
	if p == nil {
		p = NewMatParam(v.Kind(), name, v, decl.FixedFuncBinding())
		m.params[name] = p
		m.paramOrder = append(m.paramOrder, name)
	} else {
		p.setValue(v)
	}
	if m.technique != nil {
		m.technique.notifySetParam(p)
	}
	return nil
}

// SetTextureParam sets a texture parameter. New textures take the next
// free unit; a nil texture clears the parameter.
func (m *Material) SetTextureParam(name string, typ shader.VarType, tex *textures.Texture) error {
	if tex == nil {
		return m.ClearParam(name)
	}
	name, decl, err := m.checkSetParam(name)
	if err != nil {
		return err
	}
	if decl.VarType() != typ {
		return fmt.Errorf("%w: material parameter %s is %s, got %s", ErrIllegalArgument, name, decl.VarType(), typ)
	}

	p, _ := m.params[name].(*MatParamTexture)
	if p == nil {
		p = NewMatParamTexture(typ, name, tex, m.nextTexUnit)
		m.nextTexUnit++
		m.params[name] = p
		m.paramOrder = append(m.paramOrder, name)
	} else {
		p.setValue(shader.TextureValue(typ, tex))
	}
	if m.technique != nil {
		m.technique.notifySetParam(p)
	}
	m.sortID = -1
	return nil
}

// ClearParam removes the parameter called name. Removing a texture
// frees its unit and moves every higher unit down by one.
func (m *Material) ClearParam(name string) error {
	name, _, err := m.checkSetParam(name)
	if err != nil {
		return err
	}
	p := m.params[name]
	if p == nil {
		return nil
	}
	delete(m.params, name)
	if i := slices.Index(m.paramOrder, name); i >= 0 {
		m.paramOrder = slices.Delete(m.paramOrder, i, i+1)
	}

	if tp, ok := p.(*MatParamTexture); ok {
		removed := tp.Unit()
		m.nextTexUnit--
		for _, other := range m.params {
			if ot, ok := other.(*MatParamTexture); ok && ot.Unit() > removed {
				ot.SetUnit(ot.Unit() - 1)
			}
		}
		m.sortID = -1
	}
	if m.technique != nil {
		m.technique.notifyClearParam(name)
	}
	return nil
}

func (m *Material) SetFloat(name string, v float32) error { return m.SetParam(name, shader.Float(v)) }
func (m *Material) SetInt(name string, v int) error       { return m.SetParam(name, shader.Int(v)) }
func (m *Material) SetBoolean(name string, v bool) error  { return m.SetParam(name, shader.Bool(v)) }

func (m *Material) SetColor(name string, c core.Color) error {
	return m.SetParam(name, shader.ColorValue(c))
}

func (m *Material) SetVector2(name string, v mgl32.Vec2) error { return m.SetParam(name, shader.Vec2(v)) }
func (m *Material) SetVector3(name string, v mgl32.Vec3) error { return m.SetParam(name, shader.Vec3(v)) }
func (m *Material) SetVector4(name string, v mgl32.Vec4) error { return m.SetParam(name, shader.Vec4(v)) }
func (m *Material) SetMatrix4(name string, v mgl32.Mat4) error { return m.SetParam(name, shader.Mat4(v)) }

// SetTexture sets a texture parameter, deriving the sampler kind from
// the texture's type.
func (m *Material) SetTexture(name string, tex *textures.Texture) error {
	if tex == nil {
		return m.ClearParam(name)
	}
	typ, err := VarTypeFor(tex.Type)
	if err != nil {
		return err
	}
	return m.SetTextureParam(name, typ, tex)
}

// ── Techniques ────────────────────────────────────────────────────────────────

// SelectTechnique makes the technique called name active. "Default"
// picks the first default technique the renderer supports. Selecting
// the active technique again does nothing.
func (m *Material) SelectTechnique(name string, rm RenderManager) error {
	caps := rm.Renderer().Caps()
	tech := m.techniques[name]
	if tech == nil {
		var def *TechniqueDef
		if name == DefaultTechniqueName {
			defaults := m.def.DefaultTechniques()
			if len(defaults) == 0 {
				return fmt.Errorf("%w: no default techniques are available on material %q", ErrIllegalArgument, m.def.Name())
			}
			for _, td := range defaults {
				if caps.ContainsAll(td.RequiredCaps()) {
					def = td
					break
				}
			}
			if def == nil {
				last := defaults[len(defaults)-1]
				return fmt.Errorf("%w: no default technique on material %q is supported by the renderer, caps %s are required",
					ErrUnsupported, m.def.Name(), last.RequiredCaps())
			}
		} else {
			def = m.def.TechniqueDef(name)
			if def == nil {
				return fmt.Errorf("%w: material %q has no technique %q", ErrIllegalArgument, m.def.Name(), name)
			}
			if !caps.ContainsAll(def.RequiredCaps()) {
				return fmt.Errorf("%w: technique %q on material %q requires caps %s",
					ErrUnsupported, name, m.def.Name(), def.RequiredCaps())
			}
		}
		tech = newTechnique(m, def)
		m.techniques[name] = tech
	} else if tech == m.technique {
		return nil
	}

	m.technique = tech
	m.sortID = -1
	return tech.MakeCurrent(m.def.ShaderLoader(), true, caps)
}

// ResetTechnique drops the active technique so the next render picks
// one from the renderer's caps again. Loaded techniques stay cached.
func (m *Material) ResetTechnique() {
	m.technique = nil
	m.sortID = -1
}

// autoSelectTechnique selects a technique when none is active and
// reloads a stale one.
func (m *Material) autoSelectTechnique(rm RenderManager) error {
	caps := rm.Renderer().Caps()
	if m.technique == nil {
		name := FixedFuncTechniqueName
		if caps.Contains(gpu.CapGLSL100) {
			name = DefaultTechniqueName
		}
		return m.SelectTechnique(name, rm)
	}
	if m.technique.NeedReload() {
		return m.technique.MakeCurrent(m.def.ShaderLoader(), false, caps)
	}
	return nil
}

// ── Sorting ───────────────────────────────────────────────────────────────────

// SortID is a key that groups materials by shader, then by texture.
// It is -1 until a technique with a shader is active.
func (m *Material) SortID() int {
	t := m.technique
	if m.sortID == -1 && t != nil && t.Shader() != nil {
		texSum := 0
		for _, n := range m.paramOrder {
			tp, ok := m.params[n].(*MatParamTexture)
			if !ok {
				continue
			}
			if tex := tp.Texture(); tex != nil && tex.Image != nil {
				texSum += tex.Image.ID % 0xff
			}
		}
		m.sortID = texSum + t.Shader().ID()*1000
	}
	return m.sortID
}

// Compare orders materials by descending sort id. It is negative when
// m sorts before o.
func (m *Material) Compare(o *Material) int {
	return o.SortID() - m.SortID()
}

func (m *Material) String() string {
	return fmt.Sprintf("Material[name=%s, def=%s, params=%d]", m.name, m.def.Name(), len(m.params))
}
