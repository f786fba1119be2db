package shader

// Uniform location sentinels.
const (
	LocationUnknown    = -2
	LocationNotDefined = -1
)

// Uniform is a named shader input and the value last assigned to it.
type Uniform struct {
	name     string
	binding  UniformBinding
	value    Value
	location int32

	setByCurrentMaterial bool
	updateNeeded         bool
}

func newUniform(name string) *Uniform {
	return &Uniform{name: name, location: LocationUnknown}
}

func (u *Uniform) Name() string            { return u.name }
func (u *Uniform) Binding() UniformBinding { return u.binding }
func (u *Uniform) Value() Value            { return u.value }
func (u *Uniform) VarType() VarType        { return u.value.kind }

func (u *Uniform) SetBinding(b UniformBinding) { u.binding = b }

// Location returns the backend location, or one of the sentinels.
func (u *Uniform) Location() int32       { return u.location }
func (u *Uniform) SetLocation(loc int32) { u.location = loc }

func (u *Uniform) IsSetByCurrentMaterial() bool { return u.setByCurrentMaterial }
func (u *Uniform) IsUpdateNeeded() bool         { return u.updateNeeded }

// ClearSetByCurrentMaterial forgets that the current material wrote u.
func (u *Uniform) ClearSetByCurrentMaterial() { u.setByCurrentMaterial = false }

// ClearUpdateNeeded is called by the backend once u has been uploaded.
func (u *Uniform) ClearUpdateNeeded() { u.updateNeeded = false }

// SetValue assigns v and marks u as written by the current material.
// Assigning an equal value does not request another upload.
func (u *Uniform) SetValue(v Value) {
	u.setByCurrentMaterial = true
	if u.value.kind == v.kind && u.value.Equal(v) {
		return
	}
	u.value = v.Clone()
	u.updateNeeded = true
}

// SetVector4Length sizes u as a Vector4Array of n elements, keeping
// existing elements that still fit.
func (u *Uniform) SetVector4Length(n int) {
	u.setByCurrentMaterial = true
	if u.value.kind == VarVector4Array && len(u.value.f) == n*4 {
		return
	}
	f := make([]float32, n*4)
	if u.value.kind == VarVector4Array {
		copy(f, u.value.f)
	}
	u.value = Value{kind: VarVector4Array, f: f}
	u.updateNeeded = true
}

// SetVector4InArray writes (x, y, z, w) at index i of a Vector4Array
// uniform sized by SetVector4Length. Out of range indices are ignored.
func (u *Uniform) SetVector4InArray(x, y, z, w float32, i int) {
	if u.value.kind != VarVector4Array || i < 0 || (i+1)*4 > len(u.value.f) {
		return
	}
	u.setByCurrentMaterial = true
	s := u.value.f[i*4 : i*4+4]
	if s[0] == x && s[1] == y && s[2] == z && s[3] == w {
		return
	}
	s[0], s[1], s[2], s[3] = x, y, z, w
	u.updateNeeded = true
}

// ClearValue zeroes the value while keeping its kind and length.
func (u *Uniform) ClearValue() {
	if u.value.kind == VarNone {
		return
	}
	u.value = u.value.zero()
	u.updateNeeded = true
}

// Reset forgets the location so the backend looks it up again.
func (u *Uniform) Reset() {
	u.location = LocationUnknown
	u.updateNeeded = true
}
