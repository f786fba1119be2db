package material

import (
	"fmt"
	"strings"

	"matengine/export"
	"matengine/gpu"
	"matengine/shader"
	"matengine/textures"
)

// UniformPrefix is prepended to a parameter name to form its uniform.
const UniformPrefix = "m_"

// Param is a named, typed material parameter value. It is either a
// *MatParam or a *MatParamTexture.
type Param interface {
	Name() string
	VarType() shader.VarType
	Value() shader.Value
	// PrefixedName is the uniform the parameter feeds.
	PrefixedName() string
	FixedFuncBinding() gpu.FixedFuncBinding

	// Apply pushes the value to the technique's shader or the renderer.
	Apply(r gpu.Renderer, tech *Technique) error
	ValueAsString() (string, error)
	Clone() Param

	export.Savable

	// uniformValue is the value written to the parameter's uniform.
	uniformValue() shader.Value
	setValue(v shader.Value)
}

// ── MatParam ──────────────────────────────────────────────────────────────────

// MatParam is a non-texture parameter.
type MatParam struct {
	typ       shader.VarType
	name      string
	value     shader.Value
	ffBinding gpu.FixedFuncBinding
}

func NewMatParam(typ shader.VarType, name string, value shader.Value, ff gpu.FixedFuncBinding) *MatParam {
	return &MatParam{typ: typ, name: name, value: value.Clone(), ffBinding: ff}
}

func (p *MatParam) Name() string                           { return p.name }
func (p *MatParam) VarType() shader.VarType                { return p.typ }
func (p *MatParam) Value() shader.Value                    { return p.value }
func (p *MatParam) PrefixedName() string                   { return UniformPrefix + p.name }
func (p *MatParam) FixedFuncBinding() gpu.FixedFuncBinding { return p.ffBinding }

func (p *MatParam) setValue(v shader.Value)    { p.value = v.Clone() }
func (p *MatParam) uniformValue() shader.Value { return p.value }

// Apply writes the value to the parameter's uniform and, on a
// fixed-function renderer, to its fixed-function binding.
func (p *MatParam) Apply(r gpu.Renderer, tech *Technique) error {
	tech.updateUniformParam(p.PrefixedName(), p.value)
	if p.ffBinding != gpu.FixedFuncNone {
		if ff, ok := r.(gpu.FixedFuncRenderer); ok {
			ff.SetFixedFuncBinding(p.ffBinding, p.value)
		}
	}
	return nil
}

// ValueAsString formats the value the way a material file spells it.
func (p *MatParam) ValueAsString() (string, error) {
	switch p.typ {
	case shader.VarBoolean, shader.VarFloat, shader.VarInt,
		shader.VarVector2, shader.VarVector3, shader.VarVector4:
		return p.value.String(), nil
	}
	return "", fmt.Errorf("%w: cannot format %s parameter %q", ErrUnsupported, p.typ, p.name)
}

func (p *MatParam) Clone() Param {
	c := *p
	c.value = p.value.Clone()
	return &c
}

func (p *MatParam) String() string {
	return fmt.Sprintf("%s %s : %s", p.typ, p.name, p.value)
}

// ── MatParamTexture ───────────────────────────────────────────────────────────

// MatParamTexture is a texture parameter bound to a texture unit.
type MatParamTexture struct {
	MatParam
	unit int
}

func NewMatParamTexture(typ shader.VarType, name string, tex *textures.Texture, unit int) *MatParamTexture {
	return &MatParamTexture{
		MatParam: MatParam{typ: typ, name: name, value: shader.TextureValue(typ, tex)},
		unit:     unit,
	}
}

func (p *MatParamTexture) Unit() int                  { return p.unit }
func (p *MatParamTexture) SetUnit(unit int)           { p.unit = unit }
func (p *MatParamTexture) Texture() *textures.Texture { return p.value.Texture() }
func (p *MatParamTexture) uniformValue() shader.Value { return shader.Int(p.unit) }

func (p *MatParamTexture) setValue(v shader.Value) {
	p.value = shader.TextureValue(p.typ, v.Texture())
}

// Apply binds the texture to the parameter's unit and writes the unit
// to the sampler uniform.
func (p *MatParamTexture) Apply(r gpu.Renderer, tech *Technique) error {
	if err := r.SetTexture(p.unit, p.Texture()); err != nil {
		return fmt.Errorf("material: bind %q to unit %d: %w", p.name, p.unit, err)
	}
	tech.updateUniformParam(p.PrefixedName(), shader.Int(p.unit))
	return nil
}

// ValueAsString returns the texture's asset path.
func (p *MatParamTexture) ValueAsString() (string, error) {
	tex := p.Texture()
	if tex == nil || tex.Path == "" {
		return "", fmt.Errorf("%w: texture parameter %q has no asset path", ErrUnsupported, p.name)
	}
	if strings.ContainsAny(tex.Path, " \t") {
		return fmt.Sprintf("%q", tex.Path), nil
	}
	return tex.Path, nil
}

func (p *MatParamTexture) Clone() Param {
	c := *p
	return &c
}

func (p *MatParamTexture) String() string {
	return fmt.Sprintf("%s %s : %s (unit %d)", p.typ, p.name, p.value, p.unit)
}

// ── Texture types ─────────────────────────────────────────────────────────────

// TextureTypeFor returns the texture dimensionality a sampler kind takes.
func TextureTypeFor(t shader.VarType) (textures.Type, error) {
	switch t {
	case shader.VarTexture2D:
		return textures.TwoDimensional, nil
	case shader.VarTexture3D:
		return textures.ThreeDimensional, nil
	case shader.VarTextureArray:
		return textures.TwoDimensionalArray, nil
	case shader.VarTextureCubeMap:
		return textures.CubeMap, nil
	}
	return 0, fmt.Errorf("%w: %s is not a texture type", ErrUnsupported, t)
}

// VarTypeFor returns the sampler kind for a texture dimensionality.
func VarTypeFor(t textures.Type) (shader.VarType, error) {
	switch t {
	case textures.TwoDimensional:
		return shader.VarTexture2D, nil
	case textures.ThreeDimensional:
		return shader.VarTexture3D, nil
	case textures.TwoDimensionalArray:
		return shader.VarTextureArray, nil
	case textures.CubeMap:
		return shader.VarTextureCubeMap, nil
	}
	return 0, fmt.Errorf("%w: texture type %s has no parameter type", ErrUnsupported, t)
}
