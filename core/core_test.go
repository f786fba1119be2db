package core

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-5

func assertVec3(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range 3 {
		assert.InDelta(t, want[i], got[i], eps, "component %d of %v", i, got)
	}
}

func TestNewBox(t *testing.T) {
	m := NewBox(2)
	require.Len(t, m.Vertices, 24)
	require.Len(t, m.Indices, 36)
	assert.Equal(t, 12, m.TriangleCount())

	for _, v := range m.Vertices {
		for i := range 3 {
			assert.InDelta(t, 1, math32.Abs(v.Position[i]), eps, "corners sit on the unit box")
		}
		assert.InDelta(t, 1, v.Position.Dot(v.Normal), eps, "vertex lies on its face")
		assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), eps)
	}

	front := m.Vertices[0]
	assertVec3(t, mgl32.Vec3{0, 0, 1}, front.Normal)
	assertVec3(t, mgl32.Vec3{1, 0, 0}, front.Tangent)
	assertVec3(t, mgl32.Vec3{0, 1, 0}, front.Bitangent)
}

func TestNewSphere(t *testing.T) {
	m := NewSphere(3, 16, 8)
	assert.Len(t, m.Vertices, 17*9)
	assert.Equal(t, 16*8*2, m.TriangleCount())
	for _, v := range m.Vertices {
		assert.InDelta(t, 3, v.Position.Len(), 1e-4)
		assert.InDelta(t, 1, v.Normal.Len(), 1e-4)
	}

	clamped := NewSphere(1, 1, 1)
	assert.Len(t, clamped.Vertices, 4*3, "segments and rings are clamped to a minimum")
}

func TestNewPlane(t *testing.T) {
	m := NewPlane(4, 2, 2)
	assert.Len(t, m.Vertices, 9)
	assert.Equal(t, 8, m.TriangleCount())

	first, last := m.Vertices[0], m.Vertices[8]
	assertVec3(t, mgl32.Vec3{-2, 0, -1}, first.Position)
	assertVec3(t, mgl32.Vec3{2, 0, 1}, last.Position)
	assert.Equal(t, mgl32.Vec2{4, 2}, last.UV, "uvs repeat once per unit")
	for _, v := range m.Vertices {
		assertVec3(t, mgl32.Vec3{0, 1, 0}, v.Normal)
		assertVec3(t, mgl32.Vec3{1, 0, 0}, v.Tangent)
	}
}

func TestComputeTangentsDegenerateUV(t *testing.T) {
	vertices := []Vertex{
		{Position: mgl32.Vec3{0, 0, 0}, Normal: mgl32.Vec3{0, 0, 1}},
		{Position: mgl32.Vec3{1, 0, 0}, Normal: mgl32.Vec3{0, 0, 1}},
		{Position: mgl32.Vec3{0, 1, 0}, Normal: mgl32.Vec3{0, 0, 1}},
	}
	m := NewMesh("flat-uv", vertices, nil)
	ComputeTangents(m)

	for _, v := range m.Vertices {
		assert.InDelta(t, 1, v.Tangent.Len(), eps, "a fallback tangent is picked")
		assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), eps)
		assert.InDelta(t, 1, v.Bitangent.Len(), eps)
	}
}

func TestComputeTangentsSkipsLines(t *testing.T) {
	m := NewMesh("line", make([]Vertex, 2), []uint32{0, 1})
	m.DrawMode = DrawLines
	ComputeTangents(m)
	assert.Equal(t, mgl32.Vec3{}, m.Vertices[0].Tangent)
	assert.Zero(t, m.TriangleCount())
}

func TestMeshIDsAreUnique(t *testing.T) {
	a := NewMesh("a", nil, nil)
	b := NewMesh("b", nil, nil)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestTransformMatrix(t *testing.T) {
	tr := NewTransform()
	assert.Equal(t, mgl32.Ident4(), tr.GetMatrix())

	tr.Position = mgl32.Vec3{1, 2, 3}
	tr.Scale = mgl32.Vec3{2, 2, 2}
	p := tr.GetMatrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assertVec3(t, mgl32.Vec3{3, 2, 3}, p.Vec3())

	tr.Rotation = mgl32.QuatRotate(math32.Pi/2, mgl32.Vec3{0, 1, 0})
	assertVec3(t, mgl32.Vec3{-1, 0, 0}, tr.GetForward())
	assertVec3(t, mgl32.Vec3{0, 1, 0}, tr.GetUp())
}

func TestColor(t *testing.T) {
	c := ColorRed.Add(ColorBlue)
	assert.Equal(t, Color{1, 0, 1, 2}, c)
	assert.Equal(t, c, ColorFromVec4(c.Vec4()))
}

func TestNewGrid(t *testing.T) {
	m := NewGrid(10, 4)
	assert.Equal(t, DrawLines, m.DrawMode)
	assert.Len(t, m.Vertices, 4*5)
	assert.Len(t, m.Indices, 4*5)
	assert.Zero(t, m.TriangleCount())

	centre := m.Vertices[4*2]
	assert.Equal(t, float32(0), centre.Position.X(), "the middle line crosses the origin")
	assert.Equal(t, float32(0.9), centre.Color.B)
	assertVec3(t, mgl32.Vec3{-5, 0, -5}, m.BoundMin)
	assertVec3(t, mgl32.Vec3{5, 0, 5}, m.BoundMax)
}

func TestUpdateBound(t *testing.T) {
	m := NewBox(2)
	assertVec3(t, mgl32.Vec3{-1, -1, -1}, m.BoundMin)
	assertVec3(t, mgl32.Vec3{1, 1, 1}, m.BoundMax)

	m.Vertices = m.Vertices[:1]
	m.Vertices[0].Position = mgl32.Vec3{3, 4, 5}
	m.UpdateBound()
	assert.Equal(t, m.BoundMin, m.BoundMax)

	empty := NewMesh("empty", nil, nil)
	assert.Equal(t, mgl32.Vec3{}, empty.BoundMax)
}
