package core

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
)

// Color is a linear RGBA color with float components.
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite        = Color{1, 1, 1, 1}
	ColorBlack        = Color{0, 0, 0, 1}
	ColorBlackNoAlpha = Color{0, 0, 0, 0}
	ColorRed          = Color{1, 0, 0, 1}
	ColorGreen        = Color{0, 1, 0, 1}
	ColorBlue         = Color{0, 0, 1, 1}
	ColorYellow       = Color{1, 1, 0, 1}
	ColorGray         = Color{0.2, 0.2, 0.2, 1}
)

// Vec4 returns the color as an (r, g, b, a) vector.
func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// Add returns the component-wise sum of c and other.
func (c Color) Add(other Color) Color {
	return Color{R: c.R + other.R, G: c.G + other.G, B: c.B + other.B, A: c.A + other.A}
}

// ColorFromVec4 builds a Color from an (r, g, b, a) vector.
func ColorFromVec4(v mgl32.Vec4) Color {
	return Color{R: v[0], G: v[1], B: v[2], A: v[3]}
}

type Vertex struct {
	Position  mgl32.Vec3
	Normal    mgl32.Vec3
	UV        mgl32.Vec2
	Color     Color
	Tangent   mgl32.Vec3
	Bitangent mgl32.Vec3
}

// DrawMode controls the primitive type used when rendering a mesh.
type DrawMode int

const (
	DrawTriangles DrawMode = iota // default
	DrawLines                     // pairs of indices form line segments
	DrawPoints
)

var meshIDCounter atomic.Uint32

// Mesh holds CPU-side vertex/index data.
// GPU upload is managed by the renderer backend.
type Mesh struct {
	ID       uint32
	Name     string
	Vertices []Vertex
	Indices  []uint32
	DrawMode DrawMode

	// BoundMin and BoundMax enclose every vertex position. UpdateBound
	// recomputes them after the vertices change.
	BoundMin mgl32.Vec3
	BoundMax mgl32.Vec3

	// GPUData is set by the renderer backend (e.g. *opengl.GPUMesh).
	// Do not access directly; use the renderer's API.
	GPUData interface{}
}

// NewMesh builds a Mesh from vertex and index data.
func NewMesh(name string, vertices []Vertex, indices []uint32) *Mesh {
	m := &Mesh{
		ID:       meshIDCounter.Add(1),
		Name:     name,
		Vertices: vertices,
		Indices:  indices,
	}
	m.UpdateBound()
	return m
}

// UpdateBound recomputes the local bounding box from the vertices.
func (m *Mesh) UpdateBound() {
	if len(m.Vertices) == 0 {
		m.BoundMin, m.BoundMax = mgl32.Vec3{}, mgl32.Vec3{}
		return
	}
	lo, hi := m.Vertices[0].Position, m.Vertices[0].Position
	for _, v := range m.Vertices[1:] {
		for i := range 3 {
			lo[i] = min(lo[i], v.Position[i])
			hi[i] = max(hi[i], v.Position[i])
		}
	}
	m.BoundMin, m.BoundMax = lo, hi
}

// TriangleCount returns the number of triangles the mesh draws.
func (m *Mesh) TriangleCount() int {
	if m.DrawMode != DrawTriangles {
		return 0
	}
	if len(m.Indices) > 0 {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}

type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func NewTransform() Transform {
	return Transform{
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

func (t Transform) GetMatrix() mgl32.Mat4 {
	translation := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotation := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())
	return translation.Mul4(rotation).Mul4(scale)
}

func (t Transform) GetForward() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 0, -1})
}

func (t Transform) GetRight() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{1, 0, 0})
}

func (t Transform) GetUp() mgl32.Vec3 {
	return t.Rotation.Rotate(mgl32.Vec3{0, 1, 0})
}

type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}
