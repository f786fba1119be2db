package material

import (
	"fmt"
	"slices"

	"matengine/export"
	"matengine/gpu"
	"matengine/shader"
	"matengine/textures"
)

// AssetLoader resolves the assets a saved material refers to.
type AssetLoader interface {
	LoadMaterialDef(name string) (*MaterialDef, error)
	LoadTexture(path string) (*textures.Texture, error)
}

func writeParamHeader(oc *export.OutputCapsule, p *MatParam) {
	oc.WriteString("varType", p.typ.String(), "")
	oc.WriteString("name", p.name, "")
	oc.WriteString("ff_binding", p.ffBinding.String(), gpu.FixedFuncNone.String())
}

func (p *MatParam) Write(oc *export.OutputCapsule) error {
	writeParamHeader(oc, p)
	switch p.typ {
	case shader.VarInt:
		oc.WriteInt("value_int", p.value.Int(), 0)
	case shader.VarBoolean:
		oc.WriteBool("value_bool", p.value.Bool(), false)
	case shader.VarFloat:
		oc.WriteFloat("value_float", p.value.Float(), 0)
	default:
		oc.WriteFloats("value_floats", p.value.Floats())
	}
	return nil
}

func (p *MatParamTexture) Write(oc *export.OutputCapsule) error {
	writeParamHeader(oc, &p.MatParam)
	oc.WriteInt("texture_unit", p.unit, -1)
	if tex := p.Texture(); tex != nil {
		oc.WriteString("texture", tex.Path, "")
	}
	return nil
}

// readParam restores a parameter written by Write.
func readParam(ic *export.InputCapsule, assets AssetLoader) (Param, error) {
	name := ic.ReadString("name", "")
	typ, err := shader.ParseVarType(ic.ReadString("varType", ""))
	if err != nil {
		return nil, fmt.Errorf("param %q: %w", name, err)
	}
	ff, ok := gpu.ParseFixedFuncBinding(ic.ReadString("ff_binding", gpu.FixedFuncNone.String()))
	if !ok {
		ff = gpu.FixedFuncNone
	}

	if typ.IsTextureType() {
		var tex *textures.Texture
		if path := ic.ReadString("texture", ""); path != "" {
			if assets == nil {
				return nil, fmt.Errorf("param %q: no asset loader for texture %q", name, path)
			}
			if tex, err = assets.LoadTexture(path); err != nil {
				return nil, fmt.Errorf("param %q: %w", name, err)
			}
		}
		return NewMatParamTexture(typ, name, tex, ic.ReadInt("texture_unit", -1)), nil
	}

	var v shader.Value
	switch typ {
	case shader.VarInt:
		v = shader.Int(ic.ReadInt("value_int", 0))
	case shader.VarBoolean:
		v = shader.Bool(ic.ReadBool("value_bool", false))
	case shader.VarFloat:
		v = shader.Float(ic.ReadFloat("value_float", 0))
	default:
		v = shader.FloatsValue(typ, ic.ReadFloats("value_floats"))
	}
	return NewMatParam(typ, name, v, ff), nil
}

// Write saves the material: definition asset name, parameters, render
// state override and flags.
func (m *Material) Write(oc *export.OutputCapsule) error {
	oc.WriteString("name", m.name, "")
	oc.WriteString("material_def", m.def.AssetName(), "")
	oc.WriteBool("is_transparent", m.transparent, false)
	oc.WriteBool("receives_shadows", m.receivesShadows, false)
	if m.additionalState != nil {
		if err := oc.WriteSavable("render_state", m.additionalState); err != nil {
			return err
		}
	}
	return export.WriteSavableList(oc, "parameters", m.Params())
}

// ReadMaterial restores a material saved with Write. Only the saved
// parameters are present afterwards; definition defaults the material
// had cleared stay cleared. Texture parameters keep their saved units.
func ReadMaterial(ic *export.InputCapsule, assets AssetLoader) (*Material, error) {
	defName := ic.ReadString("material_def", "")
	if defName == "" {
		return nil, fmt.Errorf("%w: material has no definition", ErrIllegalArgument)
	}
	def, err := assets.LoadMaterialDef(defName)
	if err != nil {
		return nil, fmt.Errorf("material: load definition %q: %w", defName, err)
	}
	m, err := newBare(def)
	if err != nil {
		return nil, err
	}
	m.name = ic.ReadString("name", "")
	m.transparent = ic.ReadBool("is_transparent", false)
	m.receivesShadows = ic.ReadBool("receives_shadows", false)

	if sub := ic.ReadCapsule("render_state"); sub != nil {
		rs := gpu.AdditionalRenderState()
		if err := rs.Read(sub); err != nil {
			return nil, err
		}
		m.additionalState = rs
	}

	for _, pc := range ic.ReadCapsuleList("parameters") {
		p, err := readParam(pc, assets)
		if err != nil {
			return nil, err
		}
		if err := m.insertSavedParam(p); err != nil {
			return nil, err
		}
	}

	var texParams []*MatParamTexture
	for _, n := range m.paramOrder {
		if tp, ok := m.params[n].(*MatParamTexture); ok {
			texParams = append(texParams, tp)
		}
	}

	// Saved units are kept as they are unless a texture could not be
	// restored; the remaining units are then closed up in saved order.
	slices.SortStableFunc(texParams, func(a, b *MatParamTexture) int { return a.Unit() - b.Unit() })
	for i, tp := range texParams {
		tp.SetUnit(i)
	}
	m.nextTexUnit = len(texParams)
	return m, nil
}

// insertSavedParam validates p against the definition and stores it as
// is. Texture parameters without a texture are dropped.
func (m *Material) insertSavedParam(p Param) error {
	name, decl, err := m.checkSetParam(p.Name())
	if err != nil {
		return err
	}
	if decl.VarType() != p.VarType() {
		return fmt.Errorf("%w: material parameter %s is %s, got %s", ErrIllegalArgument, name, decl.VarType(), p.VarType())
	}
	switch tp := p.(type) {
	case *MatParamTexture:
		if tp.Texture() == nil {
			return nil
		}
		tp.name = name
	case *MatParam:
		if tp.Value().IsNil() {
			return nil
		}
		tp.name = name
	}
	if _, dup := m.params[name]; !dup {
		m.paramOrder = append(m.paramOrder, name)
	}
	m.params[name] = p
	return nil
}
