package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matengine/core"
	"matengine/light"
	"matengine/material"
)

func testMaterial(t *testing.T) *material.Material {
	t.Helper()
	m, err := material.New(material.NewMaterialDef("Plain", nil))
	require.NoError(t, err)
	return m
}

func testMesh() *core.Mesh {
	return core.NewMesh("tri", make([]core.Vertex, 3), []uint32{0, 1, 2})
}

func TestWorldMatrixFollowsParent(t *testing.T) {
	parent := NewNode("parent")
	child := NewNode("child")
	parent.AddChild(child)

	child.SetPosition(mgl32.Vec3{0, 1, 0})
	parent.SetPosition(mgl32.Vec3{2, 0, 0})
	assert.Equal(t, mgl32.Vec3{2, 1, 0}, child.WorldPosition())

	parent.Translate(mgl32.Vec3{0, 0, -1})
	assert.Equal(t, mgl32.Vec3{2, 1, -1}, child.WorldPosition(), "moving the parent dirties the child")
}

func TestReparentingDetachesFromOldParent(t *testing.T) {
	a, b := NewNode("a"), NewNode("b")
	child := NewNode("child")
	a.AddChild(child)
	b.AddChild(child)

	assert.Empty(t, a.Children)
	assert.Same(t, b, child.Parent)

	b.RemoveChild(child)
	assert.Nil(t, child.Parent)
}

func TestWorldLightListIncludesAncestors(t *testing.T) {
	sun := light.NewDirectional(core.ColorWhite, mgl32.Vec3{0, -1, 0})
	lamp := light.NewPoint(core.ColorWhite, mgl32.Vec3{}, 5)
	root := NewNode("root")
	root.AddLight(sun)
	child := NewNode("child")
	child.AddLight(lamp)
	root.AddChild(child)

	lights := child.WorldLightList()
	require.Equal(t, 2, lights.Len())
	assert.Same(t, lamp, lights.At(0), "own lights come first")
	assert.Same(t, sun, lights.At(1))

	assert.Equal(t, 1, root.WorldLightList().Len(), "lights do not leak upwards")
}

func TestGeometryAttachment(t *testing.T) {
	g := NewGeometry("g", testMesh(), testMaterial(t))
	assert.Equal(t, 0, g.WorldLightList().Len())
	assert.Equal(t, mgl32.Ident4(), g.WorldMatrix())

	a, b := NewNode("a"), NewNode("b")
	a.SetGeometry(g)
	assert.Same(t, a, g.Node())
	b.SetGeometry(g)
	assert.Nil(t, a.Geometry(), "a geometry has one node")
	assert.Same(t, b, g.Node())

	b.SetPosition(mgl32.Vec3{1, 2, 3})
	assert.Equal(t, b.GetWorldMatrix(), g.WorldMatrix())
}

func TestQueueBucket(t *testing.T) {
	m := testMaterial(t)
	g := NewGeometry("g", testMesh(), m)
	assert.Equal(t, BucketOpaque, g.QueueBucket())

	m.SetTransparent(true)
	assert.Equal(t, BucketTransparent, g.QueueBucket())

	g.Bucket = BucketSky
	assert.Equal(t, BucketSky, g.QueueBucket())
	assert.Equal(t, "Sky", BucketSky.String())
}

func TestSceneGeometriesSkipsHiddenSubtrees(t *testing.T) {
	s := NewScene()
	visible := NewGeometryNode("visible", testMesh(), testMaterial(t))
	hidden := NewNode("hidden")
	hidden.Visible = false
	hidden.AddChild(NewGeometryNode("under-hidden", testMesh(), testMaterial(t)))
	s.AddNode(visible)
	s.AddNode(hidden)
	s.AddNode(NewGeometryNode("no-material", testMesh(), nil))

	geoms := s.Geometries()
	require.Len(t, geoms, 1)
	assert.Equal(t, "visible", geoms[0].Name)
}

func TestSceneLightsReachGeometries(t *testing.T) {
	s := NewScene()
	sun := light.NewDirectional(core.ColorWhite, mgl32.Vec3{0, -1, 0})
	s.AddLight(sun)
	n := NewGeometryNode("g", testMesh(), testMaterial(t))
	s.AddNode(n)

	assert.Same(t, sun, n.Geometry().WorldLightList().At(0))
	assert.True(t, s.RemoveLight(sun))
	assert.Zero(t, n.Geometry().WorldLightList().Len())
}

func TestFind(t *testing.T) {
	root := NewNode("root")
	mid := NewNode("mid")
	leaf := NewNode("leaf")
	root.AddChild(mid)
	mid.AddChild(leaf)

	assert.Same(t, leaf, root.Find("leaf"))
	assert.Nil(t, root.Find("missing"))

	var visited []string
	root.Traverse(func(n *Node) { visited = append(visited, n.Name) })
	assert.Equal(t, []string{"root", "mid", "leaf"}, visited)
}

func TestOrbitCamera(t *testing.T) {
	c := NewOrbitCamera(mgl32.Vec3{}, 10, mgl32.DegToRad(45), 16.0/9)
	c.Pitch = 0
	c.UpdatePosition()
	assert.InDelta(t, 10, c.Position.Len(), 1e-4)
	assert.InDelta(t, 10, c.Position.Z(), 1e-4)

	c.Orbit(0, 10)
	assert.Equal(t, float32(1.5), c.Pitch, "pitch is clamped")

	c.Zoom(-100)
	assert.Equal(t, float32(0.1), c.Distance)
}

func TestCameraViewMatrix(t *testing.T) {
	c := NewCamera(mgl32.DegToRad(60), 1, 0.1, 100)
	c.SetPosition(mgl32.Vec3{0, 0, 5})

	p := c.ViewMatrix().Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	assert.InDelta(t, -5, p.Z(), 1e-5, "the origin is in front of the camera")

	c.Resize(200, 100)
	assert.Equal(t, float32(2), c.AspectRatio)
	assert.Equal(t, c.ProjectionMatrix().Mul4(c.ViewMatrix()), c.ViewProjectionMatrix())
}

func TestFrustumCullsBoxes(t *testing.T) {
	c := NewCamera(mgl32.DegToRad(60), 1, 0.1, 100)
	c.SetPosition(mgl32.Vec3{0, 0, 5})
	f := c.Frustum()

	inside := AABB{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	behind := AABB{Min: mgl32.Vec3{-1, -1, 8}, Max: mgl32.Vec3{1, 1, 9}}
	beyondFar := AABB{Min: mgl32.Vec3{-1, -1, -200}, Max: mgl32.Vec3{1, 1, -150}}
	straddling := AABB{Min: mgl32.Vec3{-1, -1, 4}, Max: mgl32.Vec3{1, 1, 6}}

	assert.True(t, inside.IntersectsFrustum(&f))
	assert.False(t, behind.IntersectsFrustum(&f))
	assert.False(t, beyondFar.IntersectsFrustum(&f))
	assert.True(t, straddling.IntersectsFrustum(&f))

	assert.InDelta(t, 5-0.1, f.Planes[4].DistanceTo(mgl32.Vec3{}), 1e-3, "near plane distance is in world units")
}

func TestGeometryWorldBound(t *testing.T) {
	n := NewGeometryNode("box", core.NewBox(2), testMaterial(t))
	n.SetPosition(mgl32.Vec3{10, 0, 0})
	n.SetScale(mgl32.Vec3{2, 2, 2})

	b := n.Geometry().WorldBound()
	for i, want := range []float32{8, -2, -2} {
		assert.InDelta(t, want, b.Min[i], 1e-5)
	}
	for i, want := range []float32{12, 2, 2} {
		assert.InDelta(t, want, b.Max[i], 1e-5)
	}

	bare := NewGeometry("bare", nil, nil)
	assert.Equal(t, AABB{}, bare.WorldBound())
}
