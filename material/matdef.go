package material

import (
	"fmt"
	"slices"

	"matengine/gpu"
	"matengine/shader"
	"matengine/textures"
)

// DefaultTechniqueName is the technique selected when none is asked for
// on shader-capable hardware.
const DefaultTechniqueName = "Default"

// FixedFuncTechniqueName is selected on hardware without GLSL support.
const FixedFuncTechniqueName = "FixedFunc"

// MaterialDef declares the parameters a material may set and the
// techniques that can render it. It is shared by every material created
// from it and must not change once materials use it.
type MaterialDef struct {
	name      string
	assetName string
	loader    ShaderLoader

	params     map[string]Param
	paramOrder []string

	techniques  map[string]*TechniqueDef
	defaultTech []*TechniqueDef
}

func NewMaterialDef(name string, loader ShaderLoader) *MaterialDef {
	return &MaterialDef{
		name:       name,
		loader:     loader,
		params:     make(map[string]Param),
		techniques: make(map[string]*TechniqueDef),
	}
}

func (d *MaterialDef) Name() string { return d.name }

// AssetName is the path the definition was loaded from.
func (d *MaterialDef) AssetName() string     { return d.assetName }
func (d *MaterialDef) SetAssetName(n string) { d.assetName = n }

func (d *MaterialDef) ShaderLoader() ShaderLoader     { return d.loader }
func (d *MaterialDef) SetShaderLoader(l ShaderLoader) { d.loader = l }

// AddMaterialParam declares a parameter. A non-nil value becomes the
// default every new material starts with. Texture kinds take their
// default from value's texture.
func (d *MaterialDef) AddMaterialParam(typ shader.VarType, name string, value shader.Value, ff gpu.FixedFuncBinding) error {
	if !value.IsNil() && value.Kind() != typ {
		return fmt.Errorf("%w: default of %q is %s, declared %s", ErrIllegalArgument, name, value.Kind(), typ)
	}
	var p Param
	if typ.IsTextureType() {
		var tex *textures.Texture
		if !value.IsNil() {
			tex = value.Texture()
		}
		p = NewMatParamTexture(typ, name, tex, 0)
	} else {
		p = NewMatParam(typ, name, value, ff)
	}
	if _, ok := d.params[name]; !ok {
		d.paramOrder = append(d.paramOrder, name)
	}
	d.params[name] = p
	return nil
}

// MaterialParam returns the declaration of name, or nil.
func (d *MaterialDef) MaterialParam(name string) Param {
	return d.params[name]
}

// MaterialParams returns the declarations in declaration order.
func (d *MaterialDef) MaterialParams() []Param {
	out := make([]Param, 0, len(d.paramOrder))
	for _, n := range d.paramOrder {
		out = append(out, d.params[n])
	}
	return out
}

// AddTechniqueDef registers td. Definitions named "Default" are
// appended to the default list in order of preference instead.
func (d *MaterialDef) AddTechniqueDef(td *TechniqueDef) {
	if td.Name() == DefaultTechniqueName {
		d.defaultTech = append(d.defaultTech, td)
		return
	}
	d.techniques[td.Name()] = td
}

// TechniqueDef returns the technique called name, or nil.
func (d *MaterialDef) TechniqueDef(name string) *TechniqueDef {
	return d.techniques[name]
}

// DefaultTechniques returns the default techniques in order of preference.
func (d *MaterialDef) DefaultTechniques() []*TechniqueDef {
	return d.defaultTech
}

// TechniqueDefNames returns every technique name, "Default" first
// when any default exists and the rest sorted.
func (d *MaterialDef) TechniqueDefNames() []string {
	var out []string
	if len(d.defaultTech) > 0 {
		out = append(out, DefaultTechniqueName)
	}
	start := len(out)
	for n := range d.techniques {
		out = append(out, n)
	}
	slices.Sort(out[start:])
	return out
}
