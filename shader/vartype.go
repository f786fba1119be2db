// Package shader models shader programs, their uniforms and the
// preprocessor defines they are compiled with.
package shader

import "fmt"

// VarType is the type of a material parameter or shader uniform.
type VarType int

const (
	VarNone VarType = iota
	VarFloat
	VarVector2
	VarVector3
	VarVector4
	VarFloatArray
	VarVector2Array
	VarVector3Array
	VarVector4Array
	VarBoolean
	VarMatrix3
	VarMatrix4
	VarMatrix3Array
	VarMatrix4Array
	VarTextureBuffer
	VarTexture2D
	VarTexture3D
	VarTextureArray
	VarTextureCubeMap
	VarInt
)

var varTypeNames = [...]string{
	VarNone:           "None",
	VarFloat:          "Float",
	VarVector2:        "Vector2",
	VarVector3:        "Vector3",
	VarVector4:        "Vector4",
	VarFloatArray:     "FloatArray",
	VarVector2Array:   "Vector2Array",
	VarVector3Array:   "Vector3Array",
	VarVector4Array:   "Vector4Array",
	VarBoolean:        "Boolean",
	VarMatrix3:        "Matrix3",
	VarMatrix4:        "Matrix4",
	VarMatrix3Array:   "Matrix3Array",
	VarMatrix4Array:   "Matrix4Array",
	VarTextureBuffer:  "TextureBuffer",
	VarTexture2D:      "Texture2D",
	VarTexture3D:      "Texture3D",
	VarTextureArray:   "TextureArray",
	VarTextureCubeMap: "TextureCubeMap",
	VarInt:            "Int",
}

var glslTypes = [...]string{
	VarFloat:          "float",
	VarVector2:        "vec2",
	VarVector3:        "vec3",
	VarVector4:        "vec4",
	VarFloatArray:     "float",
	VarVector2Array:   "vec2",
	VarVector3Array:   "vec3",
	VarVector4Array:   "vec4",
	VarBoolean:        "bool",
	VarMatrix3:        "mat3",
	VarMatrix4:        "mat4",
	VarMatrix3Array:   "mat3",
	VarMatrix4Array:   "mat4",
	VarTextureBuffer:  "sampler1D",
	VarTexture2D:      "sampler2D",
	VarTexture3D:      "sampler3D",
	VarTextureArray:   "sampler2DArray",
	VarTextureCubeMap: "samplerCube",
	VarInt:            "int",
}

func (t VarType) String() string {
	if t >= 0 && int(t) < len(varTypeNames) {
		return varTypeNames[t]
	}
	return fmt.Sprintf("VarType(%d)", int(t))
}

// ParseVarType returns the VarType with the given name.
func ParseVarType(name string) (VarType, error) {
	for i, n := range varTypeNames {
		if n == name && VarType(i) != VarNone {
			return VarType(i), nil
		}
	}
	return VarNone, fmt.Errorf("shader: unknown var type %q", name)
}

// IsTextureType reports whether values of t are textures.
func (t VarType) IsTextureType() bool {
	switch t {
	case VarTextureBuffer, VarTexture2D, VarTexture3D, VarTextureArray, VarTextureCubeMap:
		return true
	}
	return false
}

// UsesMultiData reports whether t is uploaded as an array.
func (t VarType) UsesMultiData() bool {
	switch t {
	case VarFloatArray, VarVector2Array, VarVector3Array, VarVector4Array,
		VarMatrix3Array, VarMatrix4Array:
		return true
	}
	return false
}

// GLSLType returns the GLSL type keyword for t.
func (t VarType) GLSLType() string {
	if t > VarNone && int(t) < len(glslTypes) {
		return glslTypes[t]
	}
	return ""
}

// Components returns the float count of one element of t.
func (t VarType) Components() int {
	switch t {
	case VarFloat, VarFloatArray:
		return 1
	case VarVector2, VarVector2Array:
		return 2
	case VarVector3, VarVector3Array:
		return 3
	case VarVector4, VarVector4Array:
		return 4
	case VarMatrix3, VarMatrix3Array:
		return 9
	case VarMatrix4, VarMatrix4Array:
		return 16
	}
	return 0
}
