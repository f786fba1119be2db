package renderer

import (
	"github.com/go-gl/mathgl/mgl32"

	"matengine/scene"
	"matengine/shader"
)

// UniformBindingManager holds the per-frame and per-geometry engine
// state that world-bound uniforms are fed from.
type UniformBindingManager struct {
	worldMatrix    mgl32.Mat4
	viewMatrix     mgl32.Mat4
	projMatrix     mgl32.Mat4
	viewProjMatrix mgl32.Mat4

	camPos, camDir, camLeft, camUp mgl32.Vec3
	near, far                      float32

	viewX, viewY, viewWidth, viewHeight int

	time, tpf float32
}

func NewUniformBindingManager() *UniformBindingManager {
	return &UniformBindingManager{
		worldMatrix:    mgl32.Ident4(),
		viewMatrix:     mgl32.Ident4(),
		projMatrix:     mgl32.Ident4(),
		viewProjMatrix: mgl32.Ident4(),
	}
}

// SetCamera captures the camera's matrices and frame.
func (m *UniformBindingManager) SetCamera(cam *scene.Camera) {
	m.viewMatrix = cam.ViewMatrix()
	m.projMatrix = cam.ProjectionMatrix()
	m.viewProjMatrix = cam.ViewProjectionMatrix()
	m.camPos = cam.Position
	m.camDir = cam.Direction()
	m.camLeft = cam.Left()
	m.camUp = cam.Up()
	m.near, m.far = cam.NearPlane, cam.FarPlane
}

func (m *UniformBindingManager) SetWorldMatrix(w mgl32.Mat4) { m.worldMatrix = w }

func (m *UniformBindingManager) SetViewPort(x, y, width, height int) {
	m.viewX, m.viewY, m.viewWidth, m.viewHeight = x, y, width, height
}

// SetTimer records the running time and the duration of the last frame,
// both in seconds.
func (m *UniformBindingManager) SetTimer(time, tpf float32) {
	m.time, m.tpf = time, tpf
}

func (m *UniformBindingManager) ViewMatrix() mgl32.Mat4 { return m.viewMatrix }

func normalMatrix(worldView mgl32.Mat4) mgl32.Mat3 {
	return worldView.Mat3().Inv().Transpose()
}

// UpdateUniformBindings writes the current value of each uniform's
// binding. Uniforms without a binding are left alone.
func (m *UniformBindingManager) UpdateUniformBindings(uniforms []*shader.Uniform) {
	for _, u := range uniforms {
		var v shader.Value
		switch u.Binding() {
		case shader.WorldMatrix:
			v = shader.Mat4(m.worldMatrix)
		case shader.ViewMatrix:
			v = shader.Mat4(m.viewMatrix)
		case shader.ProjectionMatrix:
			v = shader.Mat4(m.projMatrix)
		case shader.ViewProjectionMatrix:
			v = shader.Mat4(m.viewProjMatrix)
		case shader.WorldViewMatrix:
			v = shader.Mat4(m.viewMatrix.Mul4(m.worldMatrix))
		case shader.NormalMatrix:
			v = shader.Mat3(normalMatrix(m.viewMatrix.Mul4(m.worldMatrix)))
		case shader.WorldViewProjectionMatrix:
			v = shader.Mat4(m.viewProjMatrix.Mul4(m.worldMatrix))
		case shader.WorldMatrixInverseTranspose:
			v = shader.Mat3(m.worldMatrix.Mat3().Inv().Transpose())
		case shader.WorldMatrixInverse:
			v = shader.Mat4(m.worldMatrix.Inv())
		case shader.ViewMatrixInverse:
			v = shader.Mat4(m.viewMatrix.Inv())
		case shader.ProjectionMatrixInverse:
			v = shader.Mat4(m.projMatrix.Inv())
		case shader.ViewProjectionMatrixInverse:
			v = shader.Mat4(m.viewProjMatrix.Inv())
		case shader.WorldViewMatrixInverse:
			v = shader.Mat4(m.viewMatrix.Mul4(m.worldMatrix).Inv())
		case shader.NormalMatrixInverse:
			v = shader.Mat3(normalMatrix(m.viewMatrix.Mul4(m.worldMatrix)).Inv())
		case shader.WorldViewProjectionMatrixInverse:
			v = shader.Mat4(m.viewProjMatrix.Mul4(m.worldMatrix).Inv())
		case shader.ViewPort:
			v = shader.Vec4(mgl32.Vec4{float32(m.viewX), float32(m.viewY), float32(m.viewWidth), float32(m.viewHeight)})
		case shader.FrustumNearFar:
			v = shader.Vec2(mgl32.Vec2{m.near, m.far})
		case shader.Resolution:
			v = shader.Vec2(mgl32.Vec2{float32(m.viewWidth), float32(m.viewHeight)})
		case shader.ResolutionInverse:
			v = shader.Vec2(mgl32.Vec2{safeInv(float32(m.viewWidth)), safeInv(float32(m.viewHeight))})
		case shader.Aspect:
			v = shader.Float(float32(m.viewWidth) * safeInv(float32(m.viewHeight)))
		case shader.CameraPosition:
			v = shader.Vec3(m.camPos)
		case shader.CameraDirection:
			v = shader.Vec3(m.camDir)
		case shader.CameraLeft:
			v = shader.Vec3(m.camLeft)
		case shader.CameraUp:
			v = shader.Vec3(m.camUp)
		case shader.Time:
			v = shader.Float(m.time)
		case shader.Tpf:
			v = shader.Float(m.tpf)
		case shader.FrameRate:
			v = shader.Float(safeInv(m.tpf))
		default:
			continue
		}
		u.SetValue(v)
	}
}

func safeInv(x float32) float32 {
	if x == 0 {
		return 0
	}
	return 1 / x
}
