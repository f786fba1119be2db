package shader

import (
	"slices"
	"strings"
	"sync/atomic"
)

// Shader languages. A technique that declares one of these requires the
// capability of the same name.
const (
	GLSL100 = "GLSL100"
	GLSL110 = "GLSL110"
	GLSL120 = "GLSL120"
	GLSL130 = "GLSL130"
	GLSL140 = "GLSL140"
	GLSL150 = "GLSL150"
	GLSL330 = "GLSL330"
	GLSL400 = "GLSL400"
	GLSL410 = "GLSL410"
)

// Key identifies a compiled shader variant.
type Key struct {
	VertName     string
	FragName     string
	Defines      *DefineList
	VertLanguage string
	FragLanguage string
}

// String is unique per variant and is used as the shader cache key.
func (k Key) String() string {
	var sb strings.Builder
	sb.WriteString(k.VertName)
	sb.WriteByte('|')
	sb.WriteString(k.FragName)
	sb.WriteByte('|')
	sb.WriteString(k.VertLanguage)
	sb.WriteByte('|')
	sb.WriteString(k.FragLanguage)
	if k.Defines != nil {
		for _, name := range k.Defines.Names() {
			v, _ := k.Defines.Get(name)
			sb.WriteByte('|')
			sb.WriteString(name)
			sb.WriteByte('=')
			sb.WriteString(v)
		}
	}
	return sb.String()
}

// DefinesHeader returns the compiled define block, or "" without defines.
func (k Key) DefinesHeader() string {
	if k.Defines == nil {
		return ""
	}
	return k.Defines.Compiled()
}

// SourceStage is a pipeline stage of a shader source.
type SourceStage int

const (
	StageVertex SourceStage = iota
	StageFragment
)

func (s SourceStage) String() string {
	if s == StageFragment {
		return "fragment"
	}
	return "vertex"
}

// Source is one stage's GLSL text.
type Source struct {
	Stage    SourceStage
	Name     string
	Language string
	Code     string
	Defines  string
}

var shaderIDCounter atomic.Int32

// Shader is a program made of sources plus the uniforms the engine
// writes into it. The backend owns Handle.
type Shader struct {
	id       int
	key      Key
	sources  []Source
	uniforms map[string]*Uniform
	order    []string

	// Handle is set by the renderer backend once the program is built.
	Handle any
}

// New creates an empty shader with a fresh id.
func New(key Key) *Shader {
	return &Shader{
		id:       int(shaderIDCounter.Add(1)),
		key:      key,
		uniforms: make(map[string]*Uniform),
	}
}

// ID is unique per shader and never zero.
func (s *Shader) ID() int  { return s.id }
func (s *Shader) Key() Key { return s.key }

func (s *Shader) AddSource(src Source) {
	s.sources = append(s.sources, src)
}

func (s *Shader) Sources() []Source { return s.sources }

// Uniform returns the uniform called name, creating it on first use.
func (s *Shader) Uniform(name string) *Uniform {
	if u, ok := s.uniforms[name]; ok {
		return u
	}
	u := newUniform(name)
	s.uniforms[name] = u
	s.order = append(s.order, name)
	return u
}

// LookupUniform returns the uniform called name without creating it.
func (s *Shader) LookupUniform(name string) (*Uniform, bool) {
	u, ok := s.uniforms[name]
	return u, ok
}

func (s *Shader) RemoveUniform(name string) {
	if _, ok := s.uniforms[name]; !ok {
		return
	}
	delete(s.uniforms, name)
	if i := slices.Index(s.order, name); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

// Uniforms returns the uniforms in creation order.
func (s *Shader) Uniforms() []*Uniform {
	out := make([]*Uniform, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.uniforms[name])
	}
	return out
}

// ClearSetByCurrentMaterial clears the flag on every uniform.
func (s *Shader) ClearSetByCurrentMaterial() {
	for _, u := range s.uniforms {
		u.ClearSetByCurrentMaterial()
	}
}

// ResetUniformsNotSetByCurrent zeroes every non-bound uniform the
// current material did not write, so values of the previous material
// do not leak into this draw.
func (s *Shader) ResetUniformsNotSetByCurrent() {
	for _, name := range s.order {
		u := s.uniforms[name]
		if !u.setByCurrentMaterial && u.binding == BindingNone {
			u.ClearValue()
		}
	}
}

// ResetLocations forgets every uniform location, e.g. after the
// backend relinked the program.
func (s *Shader) ResetLocations() {
	for _, u := range s.uniforms {
		u.Reset()
	}
}
