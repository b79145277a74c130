//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// renderTarget is the color attachment frames are drawn into: either an
// offscreen texture the driver owns or a surface view owned by the caller.
// With MSAA, frames are drawn into a multisampled texture and resolved.
type renderTarget struct {
	width, height int

	tex  hal.Texture // nil for surface targets
	view hal.TextureView

	msaaTex  hal.Texture
	msaaView hal.TextureView
}

func (t *renderTarget) createOffscreen(device hal.Device, config Config) error {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "batch2d_target",
		Size:          extent(config.Width, config.Height),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        config.Format,
		Usage: gputypes.TextureUsageRenderAttachment |
			gputypes.TextureUsageTextureBinding |
			gputypes.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create target texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "batch2d_target_view",
		Format:        config.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return fmt.Errorf("create target view: %w", err)
	}
	t.tex, t.view = tex, view
	t.width, t.height = config.Width, config.Height
	return t.createMSAA(device, config)
}

func (t *renderTarget) setSurface(device hal.Device, view hal.TextureView, config Config) error {
	t.destroy(device)
	t.view = view
	t.width, t.height = config.Width, config.Height
	return t.createMSAA(device, config)
}

func (t *renderTarget) createMSAA(device hal.Device, config Config) error {
	if config.SampleCount <= 1 {
		return nil
	}
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "batch2d_msaa",
		Size:          extent(config.Width, config.Height),
		MipLevelCount: 1,
		SampleCount:   config.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        config.Format,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create MSAA texture: %w", err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         "batch2d_msaa_view",
		Format:        config.Format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return fmt.Errorf("create MSAA view: %w", err)
	}
	t.msaaTex, t.msaaView = tex, view
	return nil
}

// attachment returns the color attachment clearing to clear.
func (t *renderTarget) attachment(clear [4]float32) hal.RenderPassColorAttachment {
	a := hal.RenderPassColorAttachment{
		View:    t.view,
		LoadOp:  gputypes.LoadOpClear,
		StoreOp: gputypes.StoreOpStore,
		ClearValue: gputypes.Color{
			R: float64(clear[0]), G: float64(clear[1]), B: float64(clear[2]), A: float64(clear[3]),
		},
	}
	if t.msaaView != nil {
		a.View, a.ResolveTarget = t.msaaView, t.view
		a.StoreOp = gputypes.StoreOpDiscard
	}
	return a
}

// destroy releases what the target owns. Surface views belong to the
// caller and are only forgotten.
func (t *renderTarget) destroy(device hal.Device) {
	if t.msaaView != nil {
		device.DestroyTextureView(t.msaaView)
	}
	if t.msaaTex != nil {
		device.DestroyTexture(t.msaaTex)
	}
	if t.tex != nil {
		if t.view != nil {
			device.DestroyTextureView(t.view)
		}
		device.DestroyTexture(t.tex)
	}
	*t = renderTarget{}
}

func extent(w, h int) hal.Extent3D {
	return hal.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1} //nolint:gosec // validated positive
}
