package assets

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"matengine/gpu"
	"matengine/material"
	"matengine/shader"
)

// ── Material definition documents ────────────────────────────────────────────

type matDefDoc struct {
	Name       string         `yaml:"name"`
	Params     []paramDoc     `yaml:"params"`
	Techniques []techniqueDoc `yaml:"techniques"`
}

type paramDoc struct {
	Type      string    `yaml:"type"`
	Name      string    `yaml:"name"`
	Default   yaml.Node `yaml:"default"`
	FixedFunc string    `yaml:"fixedFunc"`
}

type techniqueDoc struct {
	Name              string            `yaml:"name"`
	VertexShader      string            `yaml:"vertexShader"`
	FragmentShader    string            `yaml:"fragmentShader"`
	VertexLanguage    string            `yaml:"vertexLanguage"`
	FragmentLanguage  string            `yaml:"fragmentLanguage"`
	LightMode         string            `yaml:"lightMode"`
	ShadowMode        string            `yaml:"shadowMode"`
	RequiredCaps      []string          `yaml:"requiredCaps"`
	WorldParams       []string          `yaml:"worldParams"`
	Defines           map[string]string `yaml:"defines"`
	PresetDefines     yaml.Node         `yaml:"presetDefines"`
	RenderState       *renderStateDoc   `yaml:"renderState"`
	ForcedRenderState *renderStateDoc   `yaml:"forcedRenderState"`
	NoRender          bool              `yaml:"noRender"`
}

// renderStateDoc lists the groups a document overrides. Absent fields
// leave the base state untouched.
type renderStateDoc struct {
	PointSprite  *bool       `yaml:"pointSprite"`
	Wireframe    *bool       `yaml:"wireframe"`
	CullMode     string      `yaml:"cullMode"`
	DepthWrite   *bool       `yaml:"depthWrite"`
	DepthTest    *bool       `yaml:"depthTest"`
	ColorWrite   *bool       `yaml:"colorWrite"`
	BlendMode    string      `yaml:"blendMode"`
	AlphaTest    *bool       `yaml:"alphaTest"`
	AlphaFallOff *float32    `yaml:"alphaFallOff"`
	AlphaFunc    string      `yaml:"alphaFunc"`
	PolyOffset   []float32   `yaml:"polyOffset"` // factor, units
	DepthFunc    string      `yaml:"depthFunc"`
	LineWidth    *float32    `yaml:"lineWidth"`
	Stencil      *stencilDoc `yaml:"stencil"`
}

type stencilDoc struct {
	FrontStencilFail string `yaml:"frontStencilFail"`
	FrontDepthFail   string `yaml:"frontDepthFail"`
	FrontDepthPass   string `yaml:"frontDepthPass"`
	BackStencilFail  string `yaml:"backStencilFail"`
	BackDepthFail    string `yaml:"backDepthFail"`
	BackDepthPass    string `yaml:"backDepthPass"`
	FrontFunc        string `yaml:"frontFunc"`
	BackFunc         string `yaml:"backFunc"`
}

// ── Material documents ───────────────────────────────────────────────────────

type materialDoc struct {
	Name                  string          `yaml:"name"`
	Def                   string          `yaml:"def"`
	Transparent           bool            `yaml:"transparent"`
	ReceivesShadows       bool            `yaml:"receivesShadows"`
	Params                yaml.Node       `yaml:"params"`
	AdditionalRenderState *renderStateDoc `yaml:"additionalRenderState"`
}

// ── Conversion ───────────────────────────────────────────────────────────────

func (d *renderStateDoc) applyTo(rs *gpu.RenderState) error {
	if d == nil {
		return nil
	}
	if d.PointSprite != nil {
		rs.SetPointSprite(*d.PointSprite)
	}
	if d.Wireframe != nil {
		rs.SetWireframe(*d.Wireframe)
	}
	if d.CullMode != "" {
		m, err := gpu.ParseCullMode(d.CullMode)
		if err != nil {
			return err
		}
		rs.SetCullMode(m)
	}
	if d.DepthWrite != nil {
		rs.SetDepthWrite(*d.DepthWrite)
	}
	if d.DepthTest != nil {
		rs.SetDepthTest(*d.DepthTest)
	}
	if d.ColorWrite != nil {
		rs.SetColorWrite(*d.ColorWrite)
	}
	if d.BlendMode != "" {
		m, err := gpu.ParseBlendMode(d.BlendMode)
		if err != nil {
			return err
		}
		rs.SetBlendMode(m)
	}
	if d.AlphaTest != nil {
		rs.SetAlphaTest(*d.AlphaTest)
	}
	if d.AlphaFallOff != nil {
		rs.SetAlphaFallOff(*d.AlphaFallOff)
	}
	if d.AlphaFunc != "" {
		f, err := gpu.ParseTestFunction(d.AlphaFunc)
		if err != nil {
			return err
		}
		rs.SetAlphaFunc(f)
	}
	switch len(d.PolyOffset) {
	case 0:
	case 2:
		rs.SetPolyOffset(d.PolyOffset[0], d.PolyOffset[1])
	default:
		return fmt.Errorf("polyOffset wants [factor, units], got %d values", len(d.PolyOffset))
	}
	if d.DepthFunc != "" {
		f, err := gpu.ParseTestFunction(d.DepthFunc)
		if err != nil {
			return err
		}
		rs.SetDepthFunc(f)
	}
	if d.LineWidth != nil {
		rs.SetLineWidth(*d.LineWidth)
	}
	if d.Stencil != nil {
		s, err := d.Stencil.state(rs.Stencil())
		if err != nil {
			return err
		}
		rs.SetStencil(s)
	}
	return nil
}

func (d *stencilDoc) state(base gpu.StencilState) (gpu.StencilState, error) {
	s := base
	s.Enabled = true
	ops := []struct {
		name string
		dst  *gpu.StencilOperation
	}{
		{d.FrontStencilFail, &s.FrontStencilFail},
		{d.FrontDepthFail, &s.FrontDepthFail},
		{d.FrontDepthPass, &s.FrontDepthPass},
		{d.BackStencilFail, &s.BackStencilFail},
		{d.BackDepthFail, &s.BackDepthFail},
		{d.BackDepthPass, &s.BackDepthPass},
	}
	for _, op := range ops {
		if op.name == "" {
			continue
		}
		v, err := gpu.ParseStencilOperation(op.name)
		if err != nil {
			return s, err
		}
		*op.dst = v
	}
	funcs := []struct {
		name string
		dst  *gpu.TestFunction
	}{
		{d.FrontFunc, &s.FrontFunc},
		{d.BackFunc, &s.BackFunc},
	}
	for _, f := range funcs {
		if f.name == "" {
			continue
		}
		v, err := gpu.ParseTestFunction(f.name)
		if err != nil {
			return s, err
		}
		*f.dst = v
	}
	return s, nil
}

// decodeValue reads a parameter value of kind typ from a YAML node.
// Vectors, matrices and arrays are flat float lists.
func decodeValue(typ shader.VarType, n *yaml.Node) (shader.Value, error) {
	switch typ {
	case shader.VarBoolean:
		var b bool
		if err := n.Decode(&b); err != nil {
			return shader.Value{}, err
		}
		return shader.Bool(b), nil
	case shader.VarInt:
		var i int
		if err := n.Decode(&i); err != nil {
			return shader.Value{}, err
		}
		return shader.Int(i), nil
	case shader.VarFloat:
		var f float32
		if err := n.Decode(&f); err != nil {
			return shader.Value{}, err
		}
		return shader.Float(f), nil
	}

	var fs []float32
	if err := n.Decode(&fs); err != nil {
		return shader.Value{}, err
	}
	c := typ.Components()
	if c == 0 {
		return shader.Value{}, fmt.Errorf("%w: type %s has no literal form", material.ErrUnsupported, typ)
	}
	if typ.UsesMultiData() {
		if len(fs)%c != 0 {
			return shader.Value{}, fmt.Errorf("%s wants a multiple of %d values, got %d", typ, c, len(fs))
		}
	} else if len(fs) != c {
		return shader.Value{}, fmt.Errorf("%s wants %d values, got %d", typ, c, len(fs))
	}
	return shader.FloatsValue(typ, fs), nil
}

// decodePresetValue reads a technique preset define. Booleans and
// numbers keep their kind; anything else is rejected.
func decodePresetValue(n *yaml.Node) (shader.Value, error) {
	switch n.Tag {
	case "!!bool":
		return decodeValue(shader.VarBoolean, n)
	case "!!int":
		return decodeValue(shader.VarInt, n)
	case "!!float":
		return decodeValue(shader.VarFloat, n)
	}
	return shader.Value{}, fmt.Errorf("preset define must be a boolean or a number, got %q", n.Value)
}

// mappingPairs walks a YAML mapping node in document order.
func mappingPairs(n *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if n.Kind == 0 {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if err := fn(n.Content[i].Value, n.Content[i+1]); err != nil {
			return fmt.Errorf("line %d: %s: %w", n.Content[i].Line, n.Content[i].Value, err)
		}
	}
	return nil
}

func (d *matDefDoc) build(assetName string, loader material.ShaderLoader) (*material.MaterialDef, error) {
	if d.Name == "" {
		return nil, fmt.Errorf("material definition has no name")
	}
	def := material.NewMaterialDef(d.Name, loader)
	def.SetAssetName(assetName)

	for _, p := range d.Params {
		typ, err := shader.ParseVarType(p.Type)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", p.Name, err)
		}
		ff := gpu.FixedFuncNone
		if p.FixedFunc != "" {
			var ok bool
			if ff, ok = gpu.ParseFixedFuncBinding(p.FixedFunc); !ok {
				return nil, fmt.Errorf("param %q: unknown fixed function binding %q", p.Name, p.FixedFunc)
			}
		}
		var v shader.Value
		if p.Default.Kind != 0 && !typ.IsTextureType() {
			if v, err = decodeValue(typ, &p.Default); err != nil {
				return nil, fmt.Errorf("param %q: %w", p.Name, err)
			}
		}
		if err := def.AddMaterialParam(typ, p.Name, v, ff); err != nil {
			return nil, err
		}
	}

	for i := range d.Techniques {
		td, err := d.Techniques[i].build()
		if err != nil {
			return nil, fmt.Errorf("technique %q: %w", d.Techniques[i].Name, err)
		}
		def.AddTechniqueDef(td)
	}
	return def, nil
}

func (d *techniqueDoc) build() (*material.TechniqueDef, error) {
	name := d.Name
	if name == "" {
		name = material.DefaultTechniqueName
	}
	td := material.NewTechniqueDef(name)

	if d.VertexShader != "" || d.FragmentShader != "" {
		if err := td.SetShaderFile(d.VertexShader, d.FragmentShader, d.VertexLanguage, d.FragmentLanguage); err != nil {
			return nil, err
		}
	}
	if len(d.RequiredCaps) > 0 {
		caps, err := gpu.ParseCaps(d.RequiredCaps)
		if err != nil {
			return nil, err
		}
		td.AddRequiredCaps(caps)
	}
	if d.LightMode != "" {
		m, err := material.ParseLightMode(d.LightMode)
		if err != nil {
			return nil, err
		}
		td.SetLightMode(m)
	}
	if d.ShadowMode != "" {
		m, err := material.ParseShadowMode(d.ShadowMode)
		if err != nil {
			return nil, err
		}
		td.SetShadowMode(m)
	}
	for _, wp := range d.WorldParams {
		if !td.AddWorldParam(wp) {
			return nil, fmt.Errorf("unknown world parameter %q", wp)
		}
	}
	for param, define := range d.Defines {
		td.AddShaderParamDefine(param, define)
	}
	err := mappingPairs(&d.PresetDefines, func(k string, n *yaml.Node) error {
		v, err := decodePresetValue(n)
		if err != nil {
			return err
		}
		td.AddShaderPresetDefine(k, v)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if d.RenderState != nil {
		rs := gpu.DefaultRenderState()
		if err := d.RenderState.applyTo(rs); err != nil {
			return nil, fmt.Errorf("renderState: %w", err)
		}
		td.SetRenderState(rs)
	}
	if d.ForcedRenderState != nil {
		rs := gpu.DefaultRenderState()
		if err := d.ForcedRenderState.applyTo(rs); err != nil {
			return nil, fmt.Errorf("forcedRenderState: %w", err)
		}
		td.SetForcedRenderState(rs)
	}
	td.SetNoRender(d.NoRender)
	return td, nil
}
