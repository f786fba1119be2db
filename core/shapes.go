package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// boxFaces lists each face of a unit box as normal, u axis and v axis.
var boxFaces = [6][3]mgl32.Vec3{
	{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
	{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
	{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
	{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
	{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
}

// NewBox returns an axis-aligned cube of the given edge length centred
// on the origin, with per-face normals and UVs.
func NewBox(size float32) *Mesh {
	h := size / 2
	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	corners := [4]mgl32.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	for _, f := range boxFaces {
		n, u, v := f[0], f[1], f[2]
		base := uint32(len(vertices))
		for _, c := range corners {
			p := n.Add(u.Mul(c.X())).Add(v.Mul(c.Y())).Mul(h)
			vertices = append(vertices, Vertex{
				Position: p,
				Normal:   n,
				UV:       mgl32.Vec2{(c.X() + 1) / 2, (c.Y() + 1) / 2},
				Color:    ColorWhite,
			})
		}
		indices = append(indices, base, base+1, base+2, base+2, base+3, base)
	}

	m := NewMesh("Box", vertices, indices)
	ComputeTangents(m)
	return m
}

// NewSphere returns a UV sphere.
func NewSphere(radius float32, segments, rings int) *Mesh {
	segments = max(segments, 3)
	rings = max(rings, 2)

	vertices := make([]Vertex, 0, (rings+1)*(segments+1))
	for ring := 0; ring <= rings; ring++ {
		phi := float32(ring) * math32.Pi / float32(rings)
		sinPhi, cosPhi := math32.Sincos(phi)
		for seg := 0; seg <= segments; seg++ {
			theta := float32(seg) * 2 * math32.Pi / float32(segments)
			sinTheta, cosTheta := math32.Sincos(theta)

			n := mgl32.Vec3{sinPhi * cosTheta, cosPhi, sinPhi * sinTheta}
			vertices = append(vertices, Vertex{
				Position: n.Mul(radius),
				Normal:   n,
				UV:       mgl32.Vec2{float32(seg) / float32(segments), float32(ring) / float32(rings)},
				Color:    ColorWhite,
			})
		}
	}

	indices := make([]uint32, 0, rings*segments*6)
	for ring := range rings {
		for seg := range segments {
			cur := uint32(ring*(segments+1) + seg)
			next := cur + uint32(segments+1)
			indices = append(indices, cur, next, cur+1, cur+1, next, next+1)
		}
	}

	m := NewMesh("Sphere", vertices, indices)
	ComputeTangents(m)
	return m
}

// NewPlane returns a flat grid in the XZ plane facing +Y. The UVs repeat
// once per unit so tiled textures keep their scale.
func NewPlane(width, depth float32, subdivisions int) *Mesh {
	n := max(subdivisions, 1)
	vertices := make([]Vertex, 0, (n+1)*(n+1))
	for z := 0; z <= n; z++ {
		for x := 0; x <= n; x++ {
			fx, fz := float32(x)/float32(n), float32(z)/float32(n)
			vertices = append(vertices, Vertex{
				Position: mgl32.Vec3{(fx - 0.5) * width, 0, (fz - 0.5) * depth},
				Normal:   mgl32.Vec3{0, 1, 0},
				UV:       mgl32.Vec2{fx * width, fz * depth},
				Color:    ColorWhite,
			})
		}
	}

	indices := make([]uint32, 0, n*n*6)
	for z := range n {
		for x := range n {
			i := uint32(z*(n+1) + x)
			below := i + uint32(n+1)
			indices = append(indices, i, below, i+1, i+1, below, below+1)
		}
	}

	m := NewMesh("Plane", vertices, indices)
	ComputeTangents(m)
	return m
}

// NewGrid returns a line grid in the XZ plane spanning size world units
// with divisions cells per axis. The centre line along X is red, the one
// along Z is blue and the rest are gray, stored as vertex colors.
func NewGrid(size float32, divisions int) *Mesh {
	divisions = max(divisions, 1)
	half := size / 2
	step := size / float32(divisions)

	gray := Color{R: 0.35, G: 0.35, B: 0.35, A: 1}
	red := Color{R: 0.8, G: 0.15, B: 0.15, A: 1}
	blue := Color{R: 0.15, G: 0.35, B: 0.9, A: 1}
	up := mgl32.Vec3{0, 1, 0}

	vertices := make([]Vertex, 0, 4*(divisions+1))
	indices := make([]uint32, 0, 4*(divisions+1))
	addLine := func(a, b mgl32.Vec3, c Color) {
		base := uint32(len(vertices))
		vertices = append(vertices,
			Vertex{Position: a, Normal: up, Color: c},
			Vertex{Position: b, Normal: up, Color: c},
		)
		indices = append(indices, base, base+1)
	}

	for i := 0; i <= divisions; i++ {
		off := -half + float32(i)*step
		zc, xc := gray, gray
		if i == divisions/2 {
			zc, xc = blue, red
		}
		addLine(mgl32.Vec3{off, 0, -half}, mgl32.Vec3{off, 0, half}, zc)
		addLine(mgl32.Vec3{-half, 0, off}, mgl32.Vec3{half, 0, off}, xc)
	}

	m := NewMesh("Grid", vertices, indices)
	m.DrawMode = DrawLines
	return m
}
