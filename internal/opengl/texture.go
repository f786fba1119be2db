package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"matengine/textures"
)

type glTexture struct {
	id     uint32
	target uint32
}

func textureTarget(t textures.Type) (uint32, error) {
	switch t {
	case textures.TwoDimensional:
		return gl.TEXTURE_2D, nil
	case textures.ThreeDimensional:
		return gl.TEXTURE_3D, nil
	case textures.TwoDimensionalArray:
		return gl.TEXTURE_2D_ARRAY, nil
	case textures.CubeMap:
		return gl.TEXTURE_CUBE_MAP, nil
	}
	return 0, fmt.Errorf("texture type %s is not supported", t)
}

// SetTexture binds tex to unit, uploading it on first use.
func (r *Renderer) SetTexture(unit int, tex *textures.Texture) error {
	if tex == nil {
		return fmt.Errorf("set texture unit %d: nil texture", unit)
	}
	t, err := r.upload(tex)
	if err != nil {
		return err
	}
	switched := r.boundTextures[unit] != t.id
	if switched {
		gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
		gl.BindTexture(t.target, t.id)
		r.boundTextures[unit] = t.id
	}
	r.stats.OnTexture(switched)
	return nil
}

// upload sends the pixels of tex to the GPU and records the handle on
// the texture.
func (r *Renderer) upload(tex *textures.Texture) (*glTexture, error) {
	if t, ok := r.uploaded[tex]; ok {
		return t, nil
	}
	img := tex.Image
	if img == nil || len(img.Pixels) == 0 {
		return nil, fmt.Errorf("texture %q has no pixel data", tex.Name)
	}
	target, err := textureTarget(tex.Type)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", tex.Name, err)
	}

	t := &glTexture{target: target}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(target, t.id)

	gl.TexParameteri(target, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(target, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(target, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	w, h := int32(img.Width), int32(img.Height)
	switch target {
	case gl.TEXTURE_2D:
		gl.TexImage2D(target, 0, gl.RGBA, w, h, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pixels[0]))
	case gl.TEXTURE_3D, gl.TEXTURE_2D_ARRAY:
		depth := int32(max(img.Depth, 1))
		gl.TexImage3D(target, 0, gl.RGBA, w, h/depth, depth, 0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pixels[0]))
	case gl.TEXTURE_CUBE_MAP:
		// faces are stacked vertically: +X, -X, +Y, -Y, +Z, -Z
		face := h / 6
		size := int(w) * int(face) * 4
		if face == 0 || len(img.Pixels) < size*6 {
			gl.DeleteTextures(1, &t.id)
			return nil, fmt.Errorf("cube map %q must stack six square faces", tex.Name)
		}
		for i := range 6 {
			gl.TexImage2D(gl.TEXTURE_CUBE_MAP_POSITIVE_X+uint32(i), 0, gl.RGBA, w, face, 0, gl.RGBA, gl.UNSIGNED_BYTE,
				unsafe.Pointer(&img.Pixels[i*size]))
		}
	}
	gl.GenerateMipmap(target)
	gl.BindTexture(target, 0)
	// the unit that was active no longer holds its texture
	clear(r.boundTextures)

	r.uploaded[tex] = t
	tex.Handle = t.id
	return t, nil
}

// DeleteTexture frees a previously uploaded GPU texture and zeroes its
// handle.
func (r *Renderer) DeleteTexture(tex *textures.Texture) {
	t, ok := r.uploaded[tex]
	if !ok {
		return
	}
	gl.DeleteTextures(1, &t.id)
	delete(r.uploaded, tex)
	for unit, id := range r.boundTextures {
		if id == t.id {
			delete(r.boundTextures, unit)
		}
	}
	tex.Handle = 0
}
