//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch2d/texture"
)

// gpuTexture is the GPU copy of a texture.Texture.
type gpuTexture struct {
	tex  hal.Texture
	view hal.TextureView
}

func (t *gpuTexture) destroy(device hal.Device) {
	if t.view != nil {
		device.DestroyTextureView(t.view)
	}
	if t.tex != nil {
		device.DestroyTexture(t.tex)
	}
}

// CreateTexture uploads every level of t. It implements texture.Uploader.
func (d *Driver) CreateTexture(t *texture.Texture) error {
	if t == nil || len(t.Levels) == 0 {
		return fmt.Errorf("native: texture without pixel data")
	}
	label := t.Label
	if label == "" {
		label = fmt.Sprintf("texture_%d", t.ID)
	}

	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label: label,
		Size: hal.Extent3D{
			Width:              uint32(t.Width),  //nolint:gosec // bounded by texture.MaxSize
			Height:             uint32(t.Height), //nolint:gosec // bounded by texture.MaxSize
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: uint32(len(t.Levels)), //nolint:gosec // mip chains are short
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("native: create texture %q: %w", label, err)
	}
	gt := &gpuTexture{tex: tex}

	for level, img := range t.Levels {
		b := img.Bounds()
		err := d.queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: tex, MipLevel: uint32(level)}, //nolint:gosec // mip chains are short
			img.Pix,
			&hal.ImageDataLayout{BytesPerRow: uint32(img.Stride), RowsPerImage: uint32(b.Dy())}, //nolint:gosec // bounded by texture.MaxSize
			&hal.Extent3D{Width: uint32(b.Dx()), Height: uint32(b.Dy()), DepthOrArrayLayers: 1}, //nolint:gosec // bounded by texture.MaxSize
		)
		if err != nil {
			gt.destroy(d.device)
			return fmt.Errorf("native: write texture %q level %d: %w", label, level, err)
		}
	}

	gt.view, err = d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: uint32(len(t.Levels)), //nolint:gosec // mip chains are short
	})
	if err != nil {
		gt.destroy(d.device)
		return fmt.Errorf("native: create texture view %q: %w", label, err)
	}

	if old, ok := d.textures[t.ID]; ok {
		d.forgetBindGroups(t.ID)
		old.destroy(d.device)
	}
	d.textures[t.ID] = gt
	slogger().Debug("native: texture created", "id", t.ID, "label", label,
		"width", t.Width, "height", t.Height, "levels", len(t.Levels))
	return nil
}

// DestroyTexture releases the GPU copy of id. It implements
// texture.Uploader.
func (d *Driver) DestroyTexture(id texture.ID) {
	gt, ok := d.textures[id]
	if !ok {
		return
	}
	d.forgetBindGroups(id)
	gt.destroy(d.device)
	delete(d.textures, id)
}

// textureView returns the view bound for id, falling back to the null
// texture.
func (d *Driver) textureView(id texture.ID) (texture.ID, hal.TextureView, bool) {
	if gt, ok := d.textures[id]; ok {
		return id, gt.view, true
	}
	if gt, ok := d.textures[texture.Null]; ok {
		return texture.Null, gt.view, true
	}
	return texture.Null, nil, false
}
