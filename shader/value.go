package shader

import (
	"slices"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"matengine/core"
	"matengine/textures"
)

// Value is a typed parameter or uniform value. Kind says which of the
// payload fields is meaningful: floats for scalars, vectors, matrices
// and their arrays; i for Int; b for Boolean; tex for texture kinds.
// The zero Value has Kind VarNone and means "no value".
type Value struct {
	kind VarType
	f    []float32
	i    int32
	b    bool
	tex  *textures.Texture
}

func Float(v float32) Value { return Value{kind: VarFloat, f: []float32{v}} }
func Int(v int) Value       { return Value{kind: VarInt, i: int32(v)} }
func Bool(v bool) Value     { return Value{kind: VarBoolean, b: v} }

func Vec2(v mgl32.Vec2) Value { return Value{kind: VarVector2, f: v[:]} }
func Vec3(v mgl32.Vec3) Value { return Value{kind: VarVector3, f: v[:]} }
func Vec4(v mgl32.Vec4) Value { return Value{kind: VarVector4, f: v[:]} }

// ColorValue stores c as a Vector4 (r, g, b, a).
func ColorValue(c core.Color) Value {
	return Value{kind: VarVector4, f: []float32{c.R, c.G, c.B, c.A}}
}

// Quat stores q as a Vector4 (x, y, z, w).
func Quat(q mgl32.Quat) Value {
	return Value{kind: VarVector4, f: []float32{q.V[0], q.V[1], q.V[2], q.W}}
}

func Mat3(m mgl32.Mat3) Value { return Value{kind: VarMatrix3, f: m[:]} }
func Mat4(m mgl32.Mat4) Value { return Value{kind: VarMatrix4, f: m[:]} }

func FloatArray(v []float32) Value {
	return Value{kind: VarFloatArray, f: slices.Clone(v)}
}

func Vec2Array(v []mgl32.Vec2) Value {
	f := make([]float32, 0, len(v)*2)
	for _, x := range v {
		f = append(f, x[:]...)
	}
	return Value{kind: VarVector2Array, f: f}
}

func Vec3Array(v []mgl32.Vec3) Value {
	f := make([]float32, 0, len(v)*3)
	for _, x := range v {
		f = append(f, x[:]...)
	}
	return Value{kind: VarVector3Array, f: f}
}

func Vec4Array(v []mgl32.Vec4) Value {
	f := make([]float32, 0, len(v)*4)
	for _, x := range v {
		f = append(f, x[:]...)
	}
	return Value{kind: VarVector4Array, f: f}
}

func Mat4Array(v []mgl32.Mat4) Value {
	f := make([]float32, 0, len(v)*16)
	for _, x := range v {
		f = append(f, x[:]...)
	}
	return Value{kind: VarMatrix4Array, f: f}
}

// TextureValue stores tex under the given texture kind.
func TextureValue(kind VarType, tex *textures.Texture) Value {
	return Value{kind: kind, tex: tex}
}

// FloatsValue builds a value of kind from raw float data. It is used by
// decoders that know the kind only at run time.
func FloatsValue(kind VarType, f []float32) Value {
	return Value{kind: kind, f: slices.Clone(f)}
}

func (v Value) Kind() VarType { return v.kind }

// IsNil reports whether v carries no value. A texture kind with a nil
// texture is nil too.
func (v Value) IsNil() bool {
	if v.kind == VarNone {
		return true
	}
	return v.kind.IsTextureType() && v.tex == nil
}

func (v Value) Float() float32 {
	if len(v.f) == 0 {
		return 0
	}
	return v.f[0]
}

func (v Value) Int() int                   { return int(v.i) }
func (v Value) Bool() bool                 { return v.b }
func (v Value) Texture() *textures.Texture { return v.tex }

// Floats returns the raw float payload. Callers must not modify it.
func (v Value) Floats() []float32 { return v.f }

// Vec4 returns the first four floats, zero padded.
func (v Value) Vec4() mgl32.Vec4 {
	var out mgl32.Vec4
	copy(out[:], v.f)
	return out
}

func (v Value) Vec3() mgl32.Vec3 {
	var out mgl32.Vec3
	copy(out[:], v.f)
	return out
}

func (v Value) Vec2() mgl32.Vec2 {
	var out mgl32.Vec2
	copy(out[:], v.f)
	return out
}

func (v Value) Mat4() mgl32.Mat4 {
	var out mgl32.Mat4
	copy(out[:], v.f)
	return out
}

func (v Value) Mat3() mgl32.Mat3 {
	var out mgl32.Mat3
	copy(out[:], v.f)
	return out
}

// Len returns the element count of an array kind, and 1 otherwise.
func (v Value) Len() int {
	if !v.kind.UsesMultiData() {
		return 1
	}
	n := v.kind.Components()
	if n == 0 {
		return 0
	}
	return len(v.f) / n
}

// Equal reports whether v and o hold the same kind and payload.
// Textures compare by identity.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch {
	case v.kind == VarInt:
		return v.i == o.i
	case v.kind == VarBoolean:
		return v.b == o.b
	case v.kind.IsTextureType():
		return v.tex == o.tex
	}
	return slices.Equal(v.f, o.f)
}

// Clone returns a copy that does not share float storage with v.
func (v Value) Clone() Value {
	v.f = slices.Clone(v.f)
	return v
}

// zero returns a value of the same kind and length with every component zero.
func (v Value) zero() Value {
	z := Value{kind: v.kind}
	if v.f != nil {
		z.f = make([]float32, len(v.f))
	}
	return z
}

// String formats v the way it appears in a preprocessor define or a
// material file: numbers in decimal, vectors space separated.
func (v Value) String() string {
	switch {
	case v.kind == VarNone:
		return ""
	case v.kind == VarInt:
		return strconv.Itoa(int(v.i))
	case v.kind == VarBoolean:
		return strconv.FormatBool(v.b)
	case v.kind.IsTextureType():
		if v.tex == nil {
			return ""
		}
		if v.tex.Path != "" {
			return v.tex.Path
		}
		return v.tex.Name
	}
	parts := make([]string, len(v.f))
	for i, x := range v.f {
		parts[i] = formatFloat(x)
	}
	return strings.Join(parts, " ")
}

func formatFloat(x float32) string {
	s := strconv.FormatFloat(float64(x), 'f', -1, 32)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
