package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"matengine/core"
)

// Plane is the half-space a·x + d >= 0. Normal points into the inside
// of the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// DistanceTo returns the signed distance from pt to the plane. Positive
// means inside.
func (p Plane) DistanceTo(pt mgl32.Vec3) float32 {
	return p.Normal.Dot(pt) + p.D
}

// Frustum holds the six clip planes of a view volume.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromViewProjection extracts the clip planes from a
// view-projection matrix (Gribb/Hartmann). The planes are normalized so
// DistanceTo is measured in world units.
func FrustumFromViewProjection(vp mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := vp.Row(0), vp.Row(1), vp.Row(2), vp.Row(3)

	var f Frustum
	f.Planes[0] = normalizePlane(r3.Add(r0))
	f.Planes[1] = normalizePlane(r3.Sub(r0))
	f.Planes[2] = normalizePlane(r3.Add(r1))
	f.Planes[3] = normalizePlane(r3.Sub(r1))
	f.Planes[4] = normalizePlane(r3.Add(r2))
	f.Planes[5] = normalizePlane(r3.Sub(r2))
	return f
}

func normalizePlane(v mgl32.Vec4) Plane {
	n := v.Vec3()
	l := n.Len()
	if l == 0 {
		return Plane{}
	}
	return Plane{Normal: n.Mul(1 / l), D: v.W() / l}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// IntersectsFrustum returns false if the box is completely outside f.
// For each plane only the corner furthest along the normal is tested.
func (box AABB) IntersectsFrustum(f *Frustum) bool {
	for _, p := range f.Planes {
		var corner mgl32.Vec3
		for i := range 3 {
			corner[i] = box.Max[i]
			if p.Normal[i] < 0 {
				corner[i] = box.Min[i]
			}
		}
		if p.DistanceTo(corner) < 0 {
			return false
		}
	}
	return true
}

// WorldAABB transforms the local bound of mesh by world.
func WorldAABB(mesh *core.Mesh, world mgl32.Mat4) AABB {
	mn, mx := mesh.BoundMin, mesh.BoundMax
	var out AABB
	for i := range 8 {
		c := mgl32.Vec3{mn[0], mn[1], mn[2]}
		if i&1 != 0 {
			c[0] = mx[0]
		}
		if i&2 != 0 {
			c[1] = mx[1]
		}
		if i&4 != 0 {
			c[2] = mx[2]
		}
		wp := mgl32.TransformCoordinate(c, world)
		if i == 0 {
			out = AABB{Min: wp, Max: wp}
			continue
		}
		for k := range 3 {
			out.Min[k] = min(out.Min[k], wp[k])
			out.Max[k] = max(out.Max[k], wp[k])
		}
	}
	return out
}
