// Package gpu describes the GPU command sink the material core renders
// through: hardware capabilities, fixed-function render state and the
// Renderer interface a backend implements.
package gpu

import (
	"fmt"
	"math/bits"
	"strings"
)

// Caps is a single hardware capability.
type Caps int

const (
	CapFrameBuffer Caps = iota
	CapFrameBufferMRT
	CapFrameBufferMultisample
	CapTextureMultisample
	CapOpenGL20
	CapOpenGL21
	CapOpenGL30
	CapOpenGL31
	CapOpenGL32
	CapOpenGL33
	CapOpenGL40
	CapOpenGL41
	CapARBprogram
	CapGLSL100
	CapGLSL110
	CapGLSL120
	CapGLSL130
	CapGLSL140
	CapGLSL150
	CapGLSL330
	CapGLSL400
	CapGLSL410
	CapInstancing
	CapVertexTextureFetch
	CapFloatTexture
	CapFloatColorBuffer
	CapFloatDepthBuffer
	CapTextureArray
	CapTextureBuffer
	CapTextureCompressionLATC
	CapNonPowerOfTwoTextures
	CapMeshInstancing
	CapVertexBufferArray
	CapSeamlessCubemap
	capCount
)

var capsNames = [...]string{
	CapFrameBuffer:            "FrameBuffer",
	CapFrameBufferMRT:         "FrameBufferMRT",
	CapFrameBufferMultisample: "FrameBufferMultisample",
	CapTextureMultisample:     "TextureMultisample",
	CapOpenGL20:               "OpenGL20",
	CapOpenGL21:               "OpenGL21",
	CapOpenGL30:               "OpenGL30",
	CapOpenGL31:               "OpenGL31",
	CapOpenGL32:               "OpenGL32",
	CapOpenGL33:               "OpenGL33",
	CapOpenGL40:               "OpenGL40",
	CapOpenGL41:               "OpenGL41",
	CapARBprogram:             "ARBprogram",
	CapGLSL100:                "GLSL100",
	CapGLSL110:                "GLSL110",
	CapGLSL120:                "GLSL120",
	CapGLSL130:                "GLSL130",
	CapGLSL140:                "GLSL140",
	CapGLSL150:                "GLSL150",
	CapGLSL330:                "GLSL330",
	CapGLSL400:                "GLSL400",
	CapGLSL410:                "GLSL410",
	CapInstancing:             "Instancing",
	CapVertexTextureFetch:     "VertexTextureFetch",
	CapFloatTexture:           "FloatTexture",
	CapFloatColorBuffer:       "FloatColorBuffer",
	CapFloatDepthBuffer:       "FloatDepthBuffer",
	CapTextureArray:           "TextureArray",
	CapTextureBuffer:          "TextureBuffer",
	CapTextureCompressionLATC: "TextureCompressionLATC",
	CapNonPowerOfTwoTextures:  "NonPowerOfTwoTextures",
	CapMeshInstancing:         "MeshInstancing",
	CapVertexBufferArray:      "VertexBufferArray",
	CapSeamlessCubemap:        "SeamlessCubemap",
}

func (c Caps) String() string {
	if c >= 0 && c < capCount {
		return capsNames[c]
	}
	return fmt.Sprintf("Caps(%d)", int(c))
}

// ParseCap returns the capability with the given name.
func ParseCap(name string) (Caps, error) {
	for i, n := range capsNames {
		if n == name {
			return Caps(i), nil
		}
	}
	return 0, fmt.Errorf("gpu: unknown capability %q", name)
}

// CapSet is a set of capabilities. The zero value is empty.
type CapSet uint64

// NewCapSet returns a set holding caps.
func NewCapSet(caps ...Caps) CapSet {
	var s CapSet
	for _, c := range caps {
		s = s.Add(c)
	}
	return s
}

// ParseCaps builds a set from capability names.
func ParseCaps(names []string) (CapSet, error) {
	var s CapSet
	for _, n := range names {
		c, err := ParseCap(strings.TrimSpace(n))
		if err != nil {
			return 0, err
		}
		s = s.Add(c)
	}
	return s, nil
}

func (s CapSet) Add(c Caps) CapSet     { return s | 1<<uint(c) }
func (s CapSet) Remove(c Caps) CapSet  { return s &^ (1 << uint(c)) }
func (s CapSet) Union(o CapSet) CapSet { return s | o }

func (s CapSet) Contains(c Caps) bool { return s&(1<<uint(c)) != 0 }

// ContainsAll reports whether every capability of o is in s.
func (s CapSet) ContainsAll(o CapSet) bool { return s&o == o }

func (s CapSet) Len() int { return bits.OnesCount64(uint64(s)) }

// List returns the capabilities in declaration order.
func (s CapSet) List() []Caps {
	var out []Caps
	for c := Caps(0); c < capCount; c++ {
		if s.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

func (s CapSet) String() string {
	names := make([]string, 0, s.Len())
	for _, c := range s.List() {
		names = append(names, c.String())
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// Names returns the capability names in declaration order.
func (s CapSet) Names() []string {
	var out []string
	for _, c := range s.List() {
		out = append(out, c.String())
	}
	return out
}
