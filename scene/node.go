package scene

import (
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"matengine/core"
	"matengine/light"
)

var nodeIDCounter atomic.Uint32

// Node is an element of the scene graph. It carries a local transform,
// lights that shine on its subtree and optionally a Geometry.
type Node struct {
	Name      string
	Transform core.Transform
	Parent    *Node
	Children  []*Node
	Visible   bool
	ID        uint32

	geometry    *Geometry
	localLights light.List
	worldLights light.List

	// Cached world transform
	worldMatrixDirty bool
	worldMatrix      mgl32.Mat4
}

func NewNode(name string) *Node {
	return &Node{
		Name:             name,
		Transform:        core.NewTransform(),
		Visible:          true,
		ID:               nodeIDCounter.Add(1),
		worldMatrixDirty: true,
	}
}

func (n *Node) AddChild(child *Node) {
	if child.Parent != nil {
		child.Parent.RemoveChild(child)
	}
	child.Parent = n
	n.Children = append(n.Children, child)
	child.MarkWorldMatrixDirty()
}

func (n *Node) RemoveChild(child *Node) {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.Parent = nil
			child.MarkWorldMatrixDirty()
			return
		}
	}
}

// Geometry returns the attached geometry, or nil.
func (n *Node) Geometry() *Geometry { return n.geometry }

// SetGeometry attaches g to n, detaching it from its previous node.
func (n *Node) SetGeometry(g *Geometry) {
	if n.geometry != nil {
		n.geometry.node = nil
	}
	if g != nil {
		if g.node != nil {
			g.node.geometry = nil
		}
		g.node = n
	}
	n.geometry = g
}

// AddLight makes lt shine on n and its descendants.
func (n *Node) AddLight(lt light.Light) { n.localLights.Add(lt) }

func (n *Node) RemoveLight(lt light.Light) bool { return n.localLights.Remove(lt) }

func (n *Node) LocalLights() *light.List { return &n.localLights }

// WorldLightList returns the lights affecting n: its own lights first,
// then those of each ancestor up to the root.
func (n *Node) WorldLightList() *light.List {
	n.worldLights = light.NewList(n.localLights.Lights()...)
	for p := n.Parent; p != nil; p = p.Parent {
		for _, lt := range p.localLights.Lights() {
			n.worldLights.Add(lt)
		}
	}
	return &n.worldLights
}

func (n *Node) GetWorldMatrix() mgl32.Mat4 {
	if n.worldMatrixDirty {
		local := n.Transform.GetMatrix()
		if n.Parent != nil {
			n.worldMatrix = n.Parent.GetWorldMatrix().Mul4(local)
		} else {
			n.worldMatrix = local
		}
		n.worldMatrixDirty = false
	}
	return n.worldMatrix
}

// WorldPosition is the translation part of the world matrix.
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.GetWorldMatrix().Col(3).Vec3()
}

func (n *Node) MarkWorldMatrixDirty() {
	n.worldMatrixDirty = true
	for _, child := range n.Children {
		child.MarkWorldMatrixDirty()
	}
}

func (n *Node) SetPosition(pos mgl32.Vec3) {
	n.Transform.Position = pos
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetRotation(rot mgl32.Quat) {
	n.Transform.Rotation = rot
	n.MarkWorldMatrixDirty()
}

func (n *Node) SetScale(scale mgl32.Vec3) {
	n.Transform.Scale = scale
	n.MarkWorldMatrixDirty()
}

func (n *Node) Translate(delta mgl32.Vec3) {
	n.Transform.Position = n.Transform.Position.Add(delta)
	n.MarkWorldMatrixDirty()
}

func (n *Node) Rotate(axis mgl32.Vec3, angle float32) {
	n.Transform.Rotation = n.Transform.Rotation.Mul(mgl32.QuatRotate(angle, axis)).Normalize()
	n.MarkWorldMatrixDirty()
}

// Traverse visits n and its descendants depth first.
func (n *Node) Traverse(callback func(*Node)) {
	callback(n)
	for _, child := range n.Children {
		child.Traverse(callback)
	}
}

// Find finds a node by name
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, child := range n.Children {
		if found := child.Find(name); found != nil {
			return found
		}
	}
	return nil
}
