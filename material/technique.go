package material

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"matengine/gpu"
	"matengine/internal/logger"
	"matengine/shader"
)

// TechniqueState tracks whether a technique's shader matches its
// defines.
type TechniqueState int

const (
	// Uninitialized techniques have never loaded a shader.
	Uninitialized TechniqueState = iota
	// Compiled techniques hold a shader built from the current defines.
	Compiled
	// Stale techniques hold a shader built from outdated defines.
	Stale
)

func (s TechniqueState) String() string {
	switch s {
	case Uninitialized:
		return "Uninitialized"
	case Compiled:
		return "Compiled"
	case Stale:
		return "Stale"
	}
	return fmt.Sprintf("TechniqueState(%d)", int(s))
}

var errNoShaderLoader = errors.New("material: no shader loader")

// Technique is a TechniqueDef instantiated for one material. It owns
// the shader variant matching the material's current parameters.
type Technique struct {
	def   *TechniqueDef
	owner *Material

	state             TechniqueState
	defines           *shader.DefineList
	shader            *shader.Shader
	worldBindUniforms []*shader.Uniform
}

func newTechnique(owner *Material, def *TechniqueDef) *Technique {
	t := &Technique{def: def, owner: owner}
	if def.UsesShaders() {
		t.defines = shader.NewDefineList()
	}
	return t
}

func (t *Technique) Def() *TechniqueDef { return t.def }

// Shader returns the current shader, nil before the first load and for
// fixed-function techniques.
func (t *Technique) Shader() *shader.Shader { return t.shader }

// Defines returns the defines resolved from the owner's parameters.
func (t *Technique) Defines() *shader.DefineList { return t.defines }

func (t *Technique) WorldBindUniforms() []*shader.Uniform { return t.worldBindUniforms }

func (t *Technique) State() TechniqueState { return t.state }

// NeedReload reports whether the next MakeCurrent loads a shader.
func (t *Technique) NeedReload() bool {
	return t.def.UsesShaders() && t.state != Compiled
}

// invalidate moves a compiled technique to Stale. Uninitialized and
// Stale techniques keep their state.
func (t *Technique) invalidate() {
	if t.state == Compiled {
		t.state = Stale
	}
}

// MakeCurrent prepares the technique for rendering. When switched is
// true the defines are rebuilt from the owner's parameters first. A
// shader is loaded when none matches the defines.
func (t *Technique) MakeCurrent(loader ShaderLoader, switched bool, caps gpu.CapSet) error {
	if !t.def.UsesShaders() {
		return nil
	}

	if switched {
		fresh := shader.NewDefineList()
		for _, p := range t.owner.Params() {
			if define := t.def.ShaderParamDefine(p.Name()); define != "" {
				fresh.Set(define, p.Value())
			}
		}
		if !fresh.Equal(t.defines) {
			t.defines = fresh
			t.invalidate()
		}
	}

	if t.state != Compiled {
		return t.loadShader(loader, caps)
	}
	return nil
}

// AllDefines returns the preset defines overlaid with the resolved ones.
func (t *Technique) AllDefines() *shader.DefineList {
	all := shader.NewDefineList()
	all.AddFrom(t.def.ShaderPresetDefines())
	all.AddFrom(t.defines)
	return all
}

func (t *Technique) loadShader(loader ShaderLoader, caps gpu.CapSet) error {
	if loader == nil {
		return fmt.Errorf("technique %q: %w", t.def.Name(), errNoShaderLoader)
	}
	if !caps.ContainsAll(t.def.RequiredCaps()) {
		return fmt.Errorf("%w: technique %q requires caps %s", ErrUnsupported, t.def.Name(), t.def.RequiredCaps())
	}

	key := shader.Key{
		VertName:     t.def.VertexShaderName(),
		FragName:     t.def.FragmentShaderName(),
		Defines:      t.AllDefines(),
		VertLanguage: t.def.VertexShaderLanguage(),
		FragLanguage: t.def.FragmentShaderLanguage(),
	}
	s, err := loader.LoadShader(key)
	if err != nil {
		return fmt.Errorf("technique %q: load shader: %w", t.def.Name(), err)
	}

	if t.state == Stale {
		logger.Log.Debug("technique reloaded",
			zap.String("technique", t.def.Name()),
			zap.String("defines", key.DefinesHeader()))
	}

	if t.shader != s {
		t.owner.sortID = -1
	}
	t.shader = s
	binds := t.def.WorldBindings()
	t.worldBindUniforms = make([]*shader.Uniform, 0, len(binds))
	for _, b := range binds {
		u := s.Uniform(b.UniformName())
		u.SetBinding(b)
		t.worldBindUniforms = append(t.worldBindUniforms, u)
	}
	t.state = Compiled
	return nil
}

// notifySetParam updates the define and uniform fed by p.
func (t *Technique) notifySetParam(p Param) {
	if define := t.def.ShaderParamDefine(p.Name()); define != "" && t.defines != nil {
		if t.defines.Set(define, p.Value()) {
			t.invalidate()
		}
	}
	t.updateUniformParam(p.PrefixedName(), p.uniformValue())
}

// notifyClearParam drops the define and uniform fed by the parameter name.
func (t *Technique) notifyClearParam(name string) {
	if define := t.def.ShaderParamDefine(name); define != "" && t.defines != nil {
		if t.defines.Remove(define) {
			t.invalidate()
		}
	}
	if t.shader != nil {
		t.shader.RemoveUniform(UniformPrefix + name)
	}
}

// updateUniformParam writes v to the uniform called name. It does
// nothing without a shader.
func (t *Technique) updateUniformParam(name string, v shader.Value) {
	if t.shader == nil {
		return
	}
	t.shader.Uniform(name).SetValue(v)
}
