package textures

import (
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"
)

// Load reads a PNG, JPEG, GIF, BMP, WebP or TGA file from disk and
// returns a 2D texture. The image is converted to RGBA8.
func Load(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %q: %w", path, err)
	}
	defer f.Close()

	tex, err := Decode(path, f)
	if err != nil {
		return nil, err
	}
	tex.Path = path
	return tex, nil
}

// Decode reads an encoded image from r and returns a 2D texture named
// name. The decoder is picked from the extension of name; names without
// a known extension are sniffed as PNG, JPEG or GIF.
func Decode(name string, r io.Reader) (*Texture, error) {
	img, err := decodeByExtension(r, filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("decode texture %q: %w", name, err)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	return New(name, TwoDimensional, NewImage(bounds.Dx(), bounds.Dy(), rgba.Pix)), nil
}

func decodeByExtension(r io.Reader, ext string) (image.Image, error) {
	switch strings.ToLower(ext) {
	case ".png":
		return png.Decode(r)
	case ".jpg", ".jpeg":
		return jpeg.Decode(r)
	case ".gif":
		return gif.Decode(r)
	case ".bmp":
		return bmp.Decode(r)
	case ".webp":
		return webp.Decode(r)
	case ".tga":
		return tga.Decode(r)
	}
	img, _, err := image.Decode(r)
	return img, err
}
