//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch2d/batch"
	"github.com/gogpu/batch2d/shader"
	"github.com/gogpu/batch2d/state"
)

// constantsSize is the size of the Constants uniform block: two transform
// rows, the color multiplier and the color offset.
const constantsSize = 64

// pipelineKey selects a render pipeline. Everything else the driver binds
// is dynamic state.
type pipelineKey struct {
	shader shader.ID
	blend  state.BlendState
	cull   state.CullMode
}

// pipelineCache builds render pipelines on first use and keeps them until
// the target format changes or their shader is released.
type pipelineCache struct {
	device hal.Device

	constantsLayout hal.BindGroupLayout
	textureLayout   hal.BindGroupLayout
	layout          hal.PipelineLayout

	modules   map[shader.ID]hal.ShaderModule
	pipelines map[pipelineKey]hal.RenderPipeline

	hits, misses int
}

func newPipelineCache(device hal.Device) (*pipelineCache, error) {
	c := &pipelineCache{
		device:    device,
		modules:   make(map[shader.ID]hal.ShaderModule),
		pipelines: make(map[pipelineKey]hal.RenderPipeline),
	}

	var err error
	c.constantsLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "batch2d_constants_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer: &gputypes.BufferBindingLayout{
					Type:             gputypes.BufferBindingTypeUniform,
					HasDynamicOffset: true,
					MinBindingSize:   constantsSize,
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create constants layout: %w", err)
	}

	c.textureLayout, err = device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "batch2d_texture_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		},
	})
	if err != nil {
		c.destroy()
		return nil, fmt.Errorf("create texture layout: %w", err)
	}

	c.layout, err = device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "batch2d_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.constantsLayout, c.textureLayout},
	})
	if err != nil {
		c.destroy()
		return nil, fmt.Errorf("create pipeline layout: %w", err)
	}
	return c, nil
}

// vertexLayout matches batch.Vertex2D.
func vertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: batch.VertexSize,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},  // uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 2}, // color
			},
		},
	}
}

func (c *pipelineCache) module(ps *shader.PixelShader) (hal.ShaderModule, error) {
	if m, ok := c.modules[ps.ID]; ok {
		return m, nil
	}
	m, err := c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "batch2d_" + ps.Name,
		Source: hal.ShaderSource{WGSL: ps.Source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile shader %q: %w", ps.Name, err)
	}
	c.modules[ps.ID] = m
	return m, nil
}

// get returns the pipeline for key, drawing into format with samples
// samples per pixel.
func (c *pipelineCache) get(key pipelineKey, ps *shader.PixelShader, format gputypes.TextureFormat, samples uint32) (hal.RenderPipeline, error) {
	if p, ok := c.pipelines[key]; ok {
		c.hits++
		return p, nil
	}
	c.misses++

	module, err := c.module(ps)
	if err != nil {
		return nil, err
	}
	p, err := c.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  fmt.Sprintf("batch2d_pipeline_%s", ps.Name),
		Layout: c.layout,
		Vertex: hal.VertexState{
			Module:     module,
			EntryPoint: shader.VertexEntryPoint,
			Buffers:    vertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     module,
			EntryPoint: shader.FragmentEntryPoint,
			Targets: []gputypes.ColorTargetState{
				{
					Format:    format,
					Blend:     blendState(key.blend),
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology:  gputypes.PrimitiveTopologyTriangleList,
			FrontFace: gputypes.FrontFaceCCW,
			CullMode:  cullMode(key.cull),
		},
		Multisample: gputypes.MultisampleState{
			Count:                  samples,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: key.blend.AlphaToCoverage && samples > 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create pipeline %q: %w", ps.Name, err)
	}
	c.pipelines[key] = p
	return p, nil
}

// forgetShader destroys the module and pipelines built for id.
func (c *pipelineCache) forgetShader(id shader.ID) {
	for key, p := range c.pipelines {
		if key.shader == id {
			c.device.DestroyRenderPipeline(p)
			delete(c.pipelines, key)
		}
	}
	if m, ok := c.modules[id]; ok {
		c.device.DestroyShaderModule(m)
		delete(c.modules, id)
	}
}

// clearPipelines drops every pipeline, keeping shader modules.
func (c *pipelineCache) clearPipelines() {
	for key, p := range c.pipelines {
		c.device.DestroyRenderPipeline(p)
		delete(c.pipelines, key)
	}
}

func (c *pipelineCache) destroy() {
	c.clearPipelines()
	for id, m := range c.modules {
		c.device.DestroyShaderModule(m)
		delete(c.modules, id)
	}
	if c.layout != nil {
		c.device.DestroyPipelineLayout(c.layout)
		c.layout = nil
	}
	if c.textureLayout != nil {
		c.device.DestroyBindGroupLayout(c.textureLayout)
		c.textureLayout = nil
	}
	if c.constantsLayout != nil {
		c.device.DestroyBindGroupLayout(c.constantsLayout)
		c.constantsLayout = nil
	}
}
