package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"matengine/core"
	"matengine/light"
	"matengine/material"
)

// Bucket is the render queue a geometry is drawn in.
type Bucket int

const (
	BucketInherit Bucket = iota
	BucketOpaque
	BucketTransparent
	BucketTranslucent
	BucketSky
	BucketGui
)

var bucketNames = [...]string{"Inherit", "Opaque", "Transparent", "Translucent", "Sky", "Gui"}

func (b Bucket) String() string {
	if b >= 0 && int(b) < len(bucketNames) {
		return bucketNames[b]
	}
	return fmt.Sprintf("Bucket(%d)", int(b))
}

// Geometry is a mesh drawn with a material. It takes its transform and
// lights from the node it is attached to.
type Geometry struct {
	Name   string
	Bucket Bucket

	mesh     *core.Mesh
	material *material.Material
	lodLevel int
	node     *Node
}

func NewGeometry(name string, mesh *core.Mesh, mat *material.Material) *Geometry {
	return &Geometry{Name: name, mesh: mesh, material: mat}
}

// NewGeometryNode returns a node carrying a new geometry.
func NewGeometryNode(name string, mesh *core.Mesh, mat *material.Material) *Node {
	n := NewNode(name)
	n.SetGeometry(NewGeometry(name, mesh, mat))
	return n
}

func (g *Geometry) Mesh() *core.Mesh                 { return g.mesh }
func (g *Geometry) SetMesh(m *core.Mesh)             { g.mesh = m }
func (g *Geometry) Material() *material.Material     { return g.material }
func (g *Geometry) SetMaterial(m *material.Material) { g.material = m }
func (g *Geometry) LodLevel() int                    { return g.lodLevel }
func (g *Geometry) SetLodLevel(lod int)              { g.lodLevel = lod }
func (g *Geometry) Node() *Node                      { return g.node }

// QueueBucket resolves BucketInherit: transparent materials go to the
// transparent bucket, everything else is opaque.
func (g *Geometry) QueueBucket() Bucket {
	if g.Bucket != BucketInherit {
		return g.Bucket
	}
	if g.material != nil && g.material.IsTransparent() {
		return BucketTransparent
	}
	return BucketOpaque
}

// WorldMatrix is the world transform of the owning node, or identity.
func (g *Geometry) WorldMatrix() mgl32.Mat4 {
	if g.node == nil {
		return mgl32.Ident4()
	}
	return g.node.GetWorldMatrix()
}

// WorldBound is the world-space box around the mesh. A geometry without
// a mesh has an empty box at its origin.
func (g *Geometry) WorldBound() AABB {
	if g.mesh == nil {
		p := g.WorldMatrix().Col(3).Vec3()
		return AABB{Min: p, Max: p}
	}
	return WorldAABB(g.mesh, g.WorldMatrix())
}

// WorldLightList returns the lights of the owning node and its
// ancestors. A detached geometry has no lights.
func (g *Geometry) WorldLightList() *light.List {
	if g.node == nil {
		return &light.List{}
	}
	return g.node.WorldLightList()
}

var _ material.Drawable = (*Geometry)(nil)
