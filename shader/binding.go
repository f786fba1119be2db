package shader

// UniformBinding names an engine-global value that is uploaded to a
// uniform called "g_" + name without any material involvement.
type UniformBinding int

const (
	BindingNone UniformBinding = iota
	WorldMatrix
	ViewMatrix
	ProjectionMatrix
	WorldViewMatrix
	NormalMatrix
	WorldViewProjectionMatrix
	ViewProjectionMatrix
	WorldMatrixInverseTranspose
	WorldMatrixInverse
	ViewMatrixInverse
	ProjectionMatrixInverse
	ViewProjectionMatrixInverse
	WorldViewMatrixInverse
	NormalMatrixInverse
	WorldViewProjectionMatrixInverse
	ViewPort
	FrustumNearFar
	Resolution
	ResolutionInverse
	Aspect
	CameraPosition
	CameraDirection
	CameraLeft
	CameraUp
	Time
	Tpf
	FrameRate
)

var bindingInfo = [...]struct {
	name string
	typ  VarType
}{
	BindingNone:                      {"None", VarNone},
	WorldMatrix:                      {"WorldMatrix", VarMatrix4},
	ViewMatrix:                       {"ViewMatrix", VarMatrix4},
	ProjectionMatrix:                 {"ProjectionMatrix", VarMatrix4},
	WorldViewMatrix:                  {"WorldViewMatrix", VarMatrix4},
	NormalMatrix:                     {"NormalMatrix", VarMatrix3},
	WorldViewProjectionMatrix:        {"WorldViewProjectionMatrix", VarMatrix4},
	ViewProjectionMatrix:             {"ViewProjectionMatrix", VarMatrix4},
	WorldMatrixInverseTranspose:      {"WorldMatrixInverseTranspose", VarMatrix3},
	WorldMatrixInverse:               {"WorldMatrixInverse", VarMatrix4},
	ViewMatrixInverse:                {"ViewMatrixInverse", VarMatrix4},
	ProjectionMatrixInverse:          {"ProjectionMatrixInverse", VarMatrix4},
	ViewProjectionMatrixInverse:      {"ViewProjectionMatrixInverse", VarMatrix4},
	WorldViewMatrixInverse:           {"WorldViewMatrixInverse", VarMatrix4},
	NormalMatrixInverse:              {"NormalMatrixInverse", VarMatrix3},
	WorldViewProjectionMatrixInverse: {"WorldViewProjectionMatrixInverse", VarMatrix4},
	ViewPort:                         {"ViewPort", VarVector4},
	FrustumNearFar:                   {"FrustumNearFar", VarVector2},
	Resolution:                       {"Resolution", VarVector2},
	ResolutionInverse:                {"ResolutionInverse", VarVector2},
	Aspect:                           {"Aspect", VarFloat},
	CameraPosition:                   {"CameraPosition", VarVector3},
	CameraDirection:                  {"CameraDirection", VarVector3},
	CameraLeft:                       {"CameraLeft", VarVector3},
	CameraUp:                         {"CameraUp", VarVector3},
	Time:                             {"Time", VarFloat},
	Tpf:                              {"Tpf", VarFloat},
	FrameRate:                        {"FrameRate", VarFloat},
}

func (b UniformBinding) String() string {
	if b >= 0 && int(b) < len(bindingInfo) {
		return bindingInfo[b].name
	}
	return "Unknown"
}

// VarType returns the type of the uniform the binding feeds.
func (b UniformBinding) VarType() VarType {
	if b >= 0 && int(b) < len(bindingInfo) {
		return bindingInfo[b].typ
	}
	return VarNone
}

// UniformName returns the uniform the binding feeds, e.g. "g_WorldMatrix".
func (b UniformBinding) UniformName() string {
	return "g_" + b.String()
}

// ParseUniformBinding returns the binding with the given name.
func ParseUniformBinding(name string) (UniformBinding, bool) {
	for i := 1; i < len(bindingInfo); i++ {
		if bindingInfo[i].name == name {
			return UniformBinding(i), true
		}
	}
	return BindingNone, false
}
