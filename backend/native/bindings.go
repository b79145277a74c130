//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch2d/state"
	"github.com/gogpu/batch2d/texture"
)

// bindKey identifies the texture bind group of a draw.
type bindKey struct {
	tex     texture.ID
	sampler state.SamplerState
}

func (d *Driver) samplerFor(s state.SamplerState) (hal.Sampler, error) {
	if smp, ok := d.samplers[s]; ok {
		return smp, nil
	}
	smp, err := d.device.CreateSampler(samplerDescriptor(s))
	if err != nil {
		return nil, fmt.Errorf("create sampler %v: %w", s, err)
	}
	d.samplers[s] = smp
	return smp, nil
}

// textureBindGroup returns the bind group sampling key.tex through
// key.sampler. Unknown textures sample the null texture.
func (d *Driver) textureBindGroup(key bindKey) (hal.BindGroup, error) {
	id, view, ok := d.textureView(key.tex)
	if !ok {
		return nil, fmt.Errorf("texture %d not uploaded and no null texture", key.tex)
	}
	key.tex = id
	if bg, ok := d.bindGroups[key]; ok {
		return bg, nil
	}
	smp, err := d.samplerFor(key.sampler)
	if err != nil {
		return nil, err
	}
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "batch2d_texture_bind",
		Layout: d.pipelines.textureLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			{Binding: 1, Resource: gputypes.SamplerBinding{Sampler: smp.NativeHandle()}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create texture bind group: %w", err)
	}
	d.bindGroups[key] = bg
	return bg, nil
}

// forgetBindGroups destroys the bind groups referencing id.
func (d *Driver) forgetBindGroups(id texture.ID) {
	for key, bg := range d.bindGroups {
		if key.tex == id {
			d.device.DestroyBindGroup(bg)
			delete(d.bindGroups, key)
		}
	}
}

// constantsBindGroup rebuilds the constants bind group after the uniform
// buffer changed.
func (d *Driver) constantsBindGroup() error {
	if d.constantsGroup != nil {
		d.device.DestroyBindGroup(d.constantsGroup)
		d.constantsGroup = nil
	}
	bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "batch2d_constants_bind",
		Layout: d.pipelines.constantsLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: d.uniforms.buf.NativeHandle(), Offset: 0, Size: constantsSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create constants bind group: %w", err)
	}
	d.constantsGroup = bg
	return nil
}
