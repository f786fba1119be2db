package renderer

import (
	"cmp"
	"slices"

	"matengine/scene"
)

// Comparator orders geometries within a render queue.
type Comparator interface {
	SetCamera(cam *scene.Camera)
	Compare(a, b *scene.Geometry) int
}

func distanceSq(cam *scene.Camera, g *scene.Geometry) float32 {
	if cam == nil {
		return 0
	}
	d := g.WorldMatrix().Col(3).Vec3().Sub(cam.Position)
	return d.Dot(d)
}

// OpaqueComparator groups geometries by material sort id so shader and
// texture switches are minimized, then draws near geometry first.
type OpaqueComparator struct {
	cam *scene.Camera
}

func (c *OpaqueComparator) SetCamera(cam *scene.Camera) { c.cam = cam }

func (c *OpaqueComparator) Compare(a, b *scene.Geometry) int {
	if r := a.Material().Compare(b.Material()); r != 0 {
		return r
	}
	return cmp.Compare(distanceSq(c.cam, a), distanceSq(c.cam, b))
}

// TransparentComparator draws far geometry first.
type TransparentComparator struct {
	cam *scene.Camera
}

func (c *TransparentComparator) SetCamera(cam *scene.Camera) { c.cam = cam }

func (c *TransparentComparator) Compare(a, b *scene.Geometry) int {
	return cmp.Compare(distanceSq(c.cam, b), distanceSq(c.cam, a))
}

// GeometryList is a render queue.
type GeometryList struct {
	geoms []*scene.Geometry
	cmp   Comparator
}

func NewGeometryList(c Comparator) *GeometryList {
	return &GeometryList{cmp: c}
}

func (l *GeometryList) Add(g *scene.Geometry)         { l.geoms = append(l.geoms, g) }
func (l *GeometryList) Len() int                      { return len(l.geoms) }
func (l *GeometryList) Get(i int) *scene.Geometry     { return l.geoms[i] }
func (l *GeometryList) Geometries() []*scene.Geometry { return l.geoms }

// Clear empties the list, keeping its storage.
func (l *GeometryList) Clear() {
	clear(l.geoms)
	l.geoms = l.geoms[:0]
}

// Sort orders the list for cam. Materials changed by another goroutine
// during a sort may be ordered inconsistently.
func (l *GeometryList) Sort(cam *scene.Camera) {
	if l.cmp == nil {
		return
	}
	l.cmp.SetCamera(cam)
	slices.SortStableFunc(l.geoms, l.cmp.Compare)
}
