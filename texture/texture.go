// Package texture manages 2D textures by ID.
//
// Textures are stored in a handle table whose null object is a small
// checkerboard, so drawing with a released or failed texture shows a
// visible placeholder instead of crashing. CPU-side pixel data (with an
// optional mipmap chain) is kept in the table; a backend Uploader mirrors
// every texture on the GPU under the same ID.
//
// Create must be called on the render goroutine. Other goroutines use
// CreateAsync, which hands the work to the render goroutine through a
// resource.Rendezvous that the renderer drains once per frame with Update.
package texture

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"
)

// Texture errors.
var (
	// ErrInvalidImage is returned for nil, empty or oversized images.
	ErrInvalidImage = errors.New("texture: invalid image")

	// ErrDecode is returned when image data cannot be decoded.
	ErrDecode = errors.New("texture: decode failed")
)

// MaxSize is the largest supported texture dimension.
const MaxSize = 16384

// ID identifies a texture. The zero ID is the null texture.
type ID uint32

// Null is the ID of the null texture.
const Null ID = 0

// IsNull reports whether id is the null texture.
func (id ID) IsNull() bool {
	return id == Null
}

// Desc selects how a texture is created.
type Desc uint8

const (
	// DescUnmipped creates a single level.
	DescUnmipped Desc = iota

	// DescMipped creates a full mipmap chain down to 1x1.
	DescMipped
)

// String returns the name of the descriptor.
func (d Desc) String() string {
	switch d {
	case DescUnmipped:
		return "Unmipped"
	case DescMipped:
		return "Mipped"
	default:
		return "Unknown"
	}
}

// Texture is the CPU-side record of a texture.
type Texture struct {
	// ID is the handle the texture is registered under.
	ID ID

	// Width and Height of level 0 in pixels.
	Width, Height int

	Desc Desc

	// Levels holds straight-alpha pixel data, level 0 first.
	Levels []*image.NRGBA

	// Label is used in logs and GPU debug names.
	Label string

	uploaded bool
}

// Size returns the size of level 0.
func (t *Texture) Size() image.Point {
	return image.Pt(t.Width, t.Height)
}

// newTexture converts img to NRGBA and builds the mipmap chain for desc.
func newTexture(img image.Image, desc Desc, label string) (*Texture, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidImage, b)
	}
	if b.Dx() > MaxSize || b.Dy() > MaxSize {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d", ErrInvalidImage, b.Dx(), b.Dy(), MaxSize)
	}

	base := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(base, base.Bounds(), img, b.Min, draw.Src)

	t := &Texture{
		Width:  b.Dx(),
		Height: b.Dy(),
		Desc:   desc,
		Levels: []*image.NRGBA{base},
		Label:  label,
	}
	if desc == DescMipped {
		t.Levels = append(t.Levels, mipChain(base)...)
	}
	return t, nil
}

// mipChain returns levels 1..n for base, halving each dimension (minimum 1)
// with a box filter until 1x1.
func mipChain(base *image.NRGBA) []*image.NRGBA {
	var levels []*image.NRGBA
	prev := base
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	for w > 1 || h > 1 {
		w = max(w/2, 1)
		h = max(h/2, 1)
		next := imaging.Resize(prev, w, h, imaging.Box)
		levels = append(levels, next)
		prev = next
	}
	return levels
}

// MipLevelCount returns the number of levels a full chain has for a w x h texture.
func MipLevelCount(w, h int) int {
	n := 1
	for w > 1 || h > 1 {
		w = max(w/2, 1)
		h = max(h/2, 1)
		n++
	}
	return n
}

// nullImage returns the 16x16 checkerboard used as the null texture.
func nullImage() image.Image {
	const size, cell = 16, 4
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	magenta := color.NRGBA{R: 255, B: 255, A: 255}
	black := color.NRGBA{A: 255}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if (x/cell+y/cell)%2 == 0 {
				img.SetNRGBA(x, y, magenta)
			} else {
				img.SetNRGBA(x, y, black)
			}
		}
	}
	return img
}
