// Package textures holds CPU-side texture images and a path-keyed cache.
package textures

import (
	"image/color"
	"sync/atomic"
)

// Type is the dimensionality of a texture.
type Type int

const (
	TwoDimensional Type = iota
	ThreeDimensional
	TwoDimensionalArray
	CubeMap
	Buffer
)

func (t Type) String() string {
	switch t {
	case TwoDimensional:
		return "TwoDimensional"
	case ThreeDimensional:
		return "ThreeDimensional"
	case TwoDimensionalArray:
		return "TwoDimensionalArray"
	case CubeMap:
		return "CubeMap"
	case Buffer:
		return "Buffer"
	}
	return "Unknown"
}

var imageIDCounter atomic.Int32

// Image is RGBA8 pixel data (4 bytes per pixel, row-major, top-to-bottom).
// ID is unique per image and stable for its lifetime; draw-call sorting
// keys on it.
type Image struct {
	ID     int
	Width  int
	Height int
	Depth  int
	Pixels []byte
}

// NewImage wraps pixel data in an Image with a fresh ID.
func NewImage(width, height int, pixels []byte) *Image {
	return &Image{
		ID:     int(imageIDCounter.Add(1)),
		Width:  width,
		Height: height,
		Depth:  1,
		Pixels: pixels,
	}
}

// Texture is an image plus the way it is sampled.
// Handle is set by the renderer backend after upload; do not access directly.
type Texture struct {
	Name  string
	Type  Type
	Image *Image
	// Path is empty for procedural textures.
	Path   string
	Handle uint32
}

// New creates a texture of the given type around img.
func New(name string, typ Type, img *Image) *Texture {
	return &Texture{Name: name, Type: typ, Image: img}
}

// NewSolid creates a 1x1 2D texture with the given color.
func NewSolid(name string, c color.RGBA) *Texture {
	return New(name, TwoDimensional, NewImage(1, 1, []byte{c.R, c.G, c.B, c.A}))
}

// NewChecker creates a size x size 2D checkerboard with 8x8 blocks.
func NewChecker(name string, size int, c1, c2 color.RGBA) *Texture {
	pixels := make([]byte, size*size*4)
	blockSize := size / 8
	if blockSize < 1 {
		blockSize = 1
	}

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			idx := (y*size + x) * 4
			c := c2
			if ((x/blockSize)+(y/blockSize))%2 == 0 {
				c = c1
			}
			pixels[idx] = c.R
			pixels[idx+1] = c.G
			pixels[idx+2] = c.B
			pixels[idx+3] = c.A
		}
	}
	return New(name, TwoDimensional, NewImage(size, size, pixels))
}
