package scene

import (
	"matengine/core"
	"matengine/light"
)

// Scene is a node graph, the camera looking at it and the color the
// frame is cleared to.
type Scene struct {
	Root       *Node
	Camera     *Camera
	Background core.Color
}

func NewScene() *Scene {
	return &Scene{
		Root:       NewNode("Root"),
		Background: core.Color{R: 0.5, G: 0.7, B: 1.0, A: 1.0},
	}
}

func (s *Scene) SetCamera(camera *Camera) {
	s.Camera = camera
}

func (s *Scene) AddNode(node *Node) {
	s.Root.AddChild(node)
}

func (s *Scene) RemoveNode(node *Node) {
	s.Root.RemoveChild(node)
}

// AddLight adds a light that shines on the whole scene.
func (s *Scene) AddLight(lt light.Light) {
	s.Root.AddLight(lt)
}

func (s *Scene) RemoveLight(lt light.Light) bool {
	return s.Root.RemoveLight(lt)
}

// Geometries returns every geometry whose node and ancestors are
// visible, in depth-first order.
func (s *Scene) Geometries() []*Geometry {
	var out []*Geometry
	var walk func(n *Node)
	walk = func(n *Node) {
		if !n.Visible {
			return
		}
		if g := n.geometry; g != nil && g.mesh != nil && g.material != nil {
			out = append(out, g)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	if s.Root != nil {
		walk(s.Root)
	}
	return out
}
