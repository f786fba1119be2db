package material

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"matengine/export"
	"matengine/gpu"
	"matengine/shader"
)

// LightMode is how a technique consumes the lights of a geometry.
type LightMode int

const (
	// LightDisable renders without lights.
	LightDisable LightMode = iota
	// LightSinglePass packs a batch of lights into uniform arrays and
	// draws once.
	LightSinglePass
	// LightMultiPass draws once per light with additive blending.
	LightMultiPass
	// LightFixedPipeline hands lights to the fixed-function pipeline.
	LightFixedPipeline
)

var lightModeNames = [...]string{"Disable", "SinglePass", "MultiPass", "FixedPipeline"}

func (m LightMode) String() string {
	if m >= 0 && int(m) < len(lightModeNames) {
		return lightModeNames[m]
	}
	return fmt.Sprintf("LightMode(%d)", int(m))
}

func ParseLightMode(s string) (LightMode, error) {
	if i := slices.Index(lightModeNames[:], s); i >= 0 {
		return LightMode(i), nil
	}
	return 0, fmt.Errorf("%w: unknown light mode %q", ErrIllegalArgument, s)
}

// ShadowMode is how a technique takes part in shadow rendering.
type ShadowMode int

const (
	ShadowDisable ShadowMode = iota
	ShadowInPass
	ShadowPostPass
)

var shadowModeNames = [...]string{"Disable", "InPass", "PostPass"}

func (m ShadowMode) String() string {
	if m >= 0 && int(m) < len(shadowModeNames) {
		return shadowModeNames[m]
	}
	return fmt.Sprintf("ShadowMode(%d)", int(m))
}

func ParseShadowMode(s string) (ShadowMode, error) {
	if i := slices.Index(shadowModeNames[:], s); i >= 0 {
		return ShadowMode(i), nil
	}
	return 0, fmt.Errorf("%w: unknown shadow mode %q", ErrIllegalArgument, s)
}

// TechniqueDef is the static description of one way to render a
// material definition. It is built while the definition loads and is
// read-only afterwards.
type TechniqueDef struct {
	name string

	vertName     string
	fragName     string
	vertLanguage string
	fragLanguage string
	usesShaders  bool

	requiredCaps gpu.CapSet
	lightMode    LightMode
	shadowMode   ShadowMode

	renderState       *gpu.RenderState
	forcedRenderState *gpu.RenderState

	presetDefines *shader.DefineList
	defineParams  map[string]string
	worldBinds    []shader.UniformBinding

	noRender bool
}

func NewTechniqueDef(name string) *TechniqueDef {
	return &TechniqueDef{
		name:         name,
		defineParams: make(map[string]string),
	}
}

func (td *TechniqueDef) Name() string { return td.name }

// SetShaderFile sets the vertex and fragment shaders. Each language is
// also a capability the technique requires.
func (td *TechniqueDef) SetShaderFile(vert, frag, vertLanguage, fragLanguage string) error {
	for _, lang := range []string{vertLanguage, fragLanguage} {
		c, err := gpu.ParseCap(lang)
		if err != nil {
			return fmt.Errorf("%w: technique %q: shader language %q", ErrIllegalArgument, td.name, lang)
		}
		td.requiredCaps = td.requiredCaps.Add(c)
	}
	td.vertName, td.fragName = vert, frag
	td.vertLanguage, td.fragLanguage = vertLanguage, fragLanguage
	td.usesShaders = true
	return nil
}

func (td *TechniqueDef) VertexShaderName() string       { return td.vertName }
func (td *TechniqueDef) FragmentShaderName() string     { return td.fragName }
func (td *TechniqueDef) VertexShaderLanguage() string   { return td.vertLanguage }
func (td *TechniqueDef) FragmentShaderLanguage() string { return td.fragLanguage }

// UsesShaders is false for fixed-function techniques.
func (td *TechniqueDef) UsesShaders() bool { return td.usesShaders }

func (td *TechniqueDef) RequiredCaps() gpu.CapSet { return td.requiredCaps }

// AddRequiredCaps adds capabilities beyond those implied by the shaders.
func (td *TechniqueDef) AddRequiredCaps(caps gpu.CapSet) {
	td.requiredCaps = td.requiredCaps.Union(caps)
}

func (td *TechniqueDef) LightMode() LightMode       { return td.lightMode }
func (td *TechniqueDef) SetLightMode(m LightMode)   { td.lightMode = m }
func (td *TechniqueDef) ShadowMode() ShadowMode     { return td.shadowMode }
func (td *TechniqueDef) SetShadowMode(m ShadowMode) { td.shadowMode = m }

// RenderState returns the technique's own state, or nil for the default.
func (td *TechniqueDef) RenderState() *gpu.RenderState      { return td.renderState }
func (td *TechniqueDef) SetRenderState(rs *gpu.RenderState) { td.renderState = rs }

// ForcedRenderState is used while the technique is forced onto every
// geometry of a pass.
func (td *TechniqueDef) ForcedRenderState() *gpu.RenderState {
	return td.forcedRenderState
}

func (td *TechniqueDef) SetForcedRenderState(rs *gpu.RenderState) {
	td.forcedRenderState = rs
}

func (td *TechniqueDef) NoRender() bool     { return td.noRender }
func (td *TechniqueDef) SetNoRender(v bool) { td.noRender = v }

// AddShaderParamDefine maps a material parameter to the preprocessor
// define its value controls.
func (td *TechniqueDef) AddShaderParamDefine(paramName, defineName string) {
	td.defineParams[paramName] = defineName
}

// ShaderParamDefine returns the define paramName controls, or "".
func (td *TechniqueDef) ShaderParamDefine(paramName string) string {
	return td.defineParams[paramName]
}

// ShaderParamDefines returns a copy of the parameter to define mapping.
func (td *TechniqueDef) ShaderParamDefines() map[string]string {
	return maps.Clone(td.defineParams)
}

// AddShaderPresetDefine defines name for every shader of the technique.
func (td *TechniqueDef) AddShaderPresetDefine(name string, v shader.Value) {
	if td.presetDefines == nil {
		td.presetDefines = shader.NewDefineList()
	}
	td.presetDefines.Set(name, v)
}

// ShaderPresetDefines returns the preset defines, or nil.
func (td *TechniqueDef) ShaderPresetDefines() *shader.DefineList { return td.presetDefines }

// AddWorldParam declares that the technique's shaders read the world
// binding called name. It reports false for unknown bindings. World
// bindings need GLSL, so GLSL100 becomes a required capability.
func (td *TechniqueDef) AddWorldParam(name string) bool {
	b, ok := shader.ParseUniformBinding(name)
	if !ok {
		return false
	}
	td.worldBinds = append(td.worldBinds, b)
	td.requiredCaps = td.requiredCaps.Add(gpu.CapGLSL100)
	return true
}

func (td *TechniqueDef) WorldBindings() []shader.UniformBinding { return td.worldBinds }

func (td *TechniqueDef) String() string {
	return fmt.Sprintf("TechniqueDef[name=%s, vert=%s, frag=%s, lightMode=%s, caps=%s]",
		td.name, td.vertName, td.fragName, td.lightMode, td.requiredCaps)
}

// ── Capsule ───────────────────────────────────────────────────────────────────

func (td *TechniqueDef) Write(oc *export.OutputCapsule) error {
	oc.WriteString("name", td.name, "")
	oc.WriteString("vertName", td.vertName, "")
	oc.WriteString("fragName", td.fragName, "")
	oc.WriteString("vertLanguage", td.vertLanguage, "")
	oc.WriteString("fragLanguage", td.fragLanguage, "")
	oc.WriteBool("usesShaders", td.usesShaders, false)
	oc.WriteStrings("requiredCaps", td.requiredCaps.Names())
	oc.WriteString("lightMode", td.lightMode.String(), LightDisable.String())
	oc.WriteString("shadowMode", td.shadowMode.String(), ShadowDisable.String())
	oc.WriteBool("noRender", td.noRender, false)

	if td.presetDefines != nil {
		if err := oc.WriteSavable("presetDefines", td.presetDefines); err != nil {
			return err
		}
	}
	if td.renderState != nil {
		if err := oc.WriteSavable("renderState", td.renderState); err != nil {
			return err
		}
	}
	if td.forcedRenderState != nil {
		if err := oc.WriteSavable("forcedRenderState", td.forcedRenderState); err != nil {
			return err
		}
	}

	params := slices.Sorted(maps.Keys(td.defineParams))
	pairs := make([]string, len(params))
	for i, p := range params {
		pairs[i] = p + "=" + td.defineParams[p]
	}
	oc.WriteStrings("defineParams", pairs)

	binds := make([]string, len(td.worldBinds))
	for i, b := range td.worldBinds {
		binds[i] = b.String()
	}
	oc.WriteStrings("worldBindings", binds)
	return nil
}

func (td *TechniqueDef) Read(ic *export.InputCapsule) error {
	td.name = ic.ReadString("name", "")
	td.vertName = ic.ReadString("vertName", "")
	td.fragName = ic.ReadString("fragName", "")
	td.vertLanguage = ic.ReadString("vertLanguage", "")
	td.fragLanguage = ic.ReadString("fragLanguage", "")
	td.usesShaders = ic.ReadBool("usesShaders", false)
	td.noRender = ic.ReadBool("noRender", false)

	caps, err := gpu.ParseCaps(ic.ReadStrings("requiredCaps"))
	if err != nil {
		return fmt.Errorf("technique %q: %w", td.name, err)
	}
	td.requiredCaps = caps
	if td.lightMode, err = ParseLightMode(ic.ReadString("lightMode", LightDisable.String())); err != nil {
		return err
	}
	if td.shadowMode, err = ParseShadowMode(ic.ReadString("shadowMode", ShadowDisable.String())); err != nil {
		return err
	}

	td.presetDefines = nil
	if sub := ic.ReadCapsule("presetDefines"); sub != nil {
		td.presetDefines = shader.NewDefineList()
		if err := td.presetDefines.Read(sub); err != nil {
			return err
		}
	}
	td.renderState = nil
	if sub := ic.ReadCapsule("renderState"); sub != nil {
		td.renderState = gpu.DefaultRenderState()
		if err := td.renderState.Read(sub); err != nil {
			return err
		}
	}
	td.forcedRenderState = nil
	if sub := ic.ReadCapsule("forcedRenderState"); sub != nil {
		td.forcedRenderState = gpu.DefaultRenderState()
		if err := td.forcedRenderState.Read(sub); err != nil {
			return err
		}
	}

	td.defineParams = make(map[string]string)
	for _, pair := range ic.ReadStrings("defineParams") {
		param, define, ok := strings.Cut(pair, "=")
		if !ok {
			return fmt.Errorf("technique %q: bad define mapping %q", td.name, pair)
		}
		td.defineParams[param] = define
	}

	td.worldBinds = nil
	for _, name := range ic.ReadStrings("worldBindings") {
		b, ok := shader.ParseUniformBinding(name)
		if !ok {
			return fmt.Errorf("technique %q: unknown world binding %q", td.name, name)
		}
		td.worldBinds = append(td.worldBinds, b)
	}
	return nil
}
