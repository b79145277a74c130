//go:build !nogpu

package native

import (
	"fmt"
	"image"
	"log/slog"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch2d/shader"
	"github.com/gogpu/batch2d/state"
	"github.com/gogpu/batch2d/texture"
)

// ShaderLookup resolves pixel shader IDs to compiled shaders.
// *shader.Manager implements it.
type ShaderLookup interface {
	Get(id shader.ID) (*shader.PixelShader, bool)
}

var _ ShaderLookup = (*shader.Manager)(nil)

// Config holds configuration for a Driver.
type Config struct {
	// Width and Height of the offscreen target. Ignored once a surface
	// target is set.
	Width, Height int

	// Format of the render target.
	Format gputypes.TextureFormat

	// SampleCount is 1 or 4. Alpha-to-coverage needs 4.
	SampleCount uint32
}

// DefaultConfig returns an 800x600 RGBA8 configuration without MSAA.
func DefaultConfig() Config {
	return Config{
		Width:       800,
		Height:      600,
		Format:      gputypes.TextureFormatRGBA8Unorm,
		SampleCount: 1,
	}
}

// FrameStats describes the last encoded frame.
type FrameStats struct {
	DrawCalls        int
	PipelineSwitches int
	BindGroupChanges int
	VertexBytes      int
	IndexBytes       int
	ConstantBlocks   int
	PipelinesCreated int
}

// Driver executes batch2d command streams on a wgpu HAL device.
//
// Draws are recorded between BeginFrame and EndFrame and encoded into a
// single render pass when the frame ends, so the shared buffers can grow
// without rebinding mid-pass. A Driver is not safe for concurrent use; all
// calls must come from the render goroutine.
type Driver struct {
	device  hal.Device
	queue   hal.Queue
	shaders ShaderLookup
	config  Config

	pipelines *pipelineCache
	target    renderTarget

	textures       map[texture.ID]*gpuTexture
	samplers       map[state.SamplerState]hal.Sampler
	bindGroups     map[bindKey]hal.BindGroup
	constantsGroup hal.BindGroup

	vertices growBuffer
	indices  growBuffer
	uniforms growBuffer

	pending []submission

	bound boundState
	frame frameState
	stats FrameStats

	warnedWireframe bool
	closed          bool
}

// submission is a command buffer the GPU may still be executing.
type submission struct {
	cmd   hal.CommandBuffer
	index uint64
}

// New creates a Driver on device and queue. shaders resolves the pixel
// shader IDs bound during replay.
func New(device hal.Device, queue hal.Queue, shaders ShaderLookup, config Config) (*Driver, error) {
	if device == nil || queue == nil {
		return nil, ErrNilDevice
	}
	if shaders == nil {
		return nil, fmt.Errorf("native: nil shader lookup")
	}
	def := DefaultConfig()
	if config.Format == gputypes.TextureFormatUndefined {
		config.Format = def.Format
	}
	if config.SampleCount != 4 {
		config.SampleCount = 1
	}
	if config.Width <= 0 || config.Height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, config.Width, config.Height)
	}

	pipelines, err := newPipelineCache(device)
	if err != nil {
		return nil, fmt.Errorf("native: %w", err)
	}

	d := &Driver{
		device:     device,
		queue:      queue,
		shaders:    shaders,
		config:     config,
		pipelines:  pipelines,
		textures:   make(map[texture.ID]*gpuTexture),
		samplers:   make(map[state.SamplerState]hal.Sampler),
		bindGroups: make(map[bindKey]hal.BindGroup),
		vertices:   growBuffer{label: "batch2d_vertices", usage: gputypes.BufferUsageVertex},
		indices:    growBuffer{label: "batch2d_indices", usage: gputypes.BufferUsageIndex},
		uniforms:   growBuffer{label: "batch2d_constants", usage: gputypes.BufferUsageUniform},
	}

	if err := d.target.createOffscreen(device, config); err != nil {
		pipelines.destroy()
		return nil, fmt.Errorf("native: %w", err)
	}
	slogger().Info("native: driver created",
		"width", config.Width, "height", config.Height,
		"format", config.Format, "samples", config.SampleCount)
	return d, nil
}

// NewFromProvider creates a Driver on the device of a gpucontext provider.
// The provider must also expose HalDevice() and HalQueue(). The target
// format follows the provider's surface format.
func NewFromProvider(provider gpucontext.DeviceProvider, shaders ShaderLookup, config Config) (*Driver, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	if f := provider.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		config.Format = f
	}
	return New(device, queue, shaders, config)
}

// SetLogger implements the logger hook batch2d.SetLogger propagates to.
func (d *Driver) SetLogger(l *slog.Logger) {
	setLogger(l)
}

// Config returns the driver configuration.
func (d *Driver) Config() Config {
	return d.config
}

// Stats returns statistics of the last encoded frame.
func (d *Driver) Stats() FrameStats {
	return d.stats
}

// TargetSize returns the size of the render target in pixels.
func (d *Driver) TargetSize() (int, int) {
	return d.target.width, d.target.height
}

// Target returns the offscreen target texture, or nil while drawing to a
// surface.
func (d *Driver) Target() hal.Texture {
	return d.target.tex
}

// SetSurfaceTarget draws subsequent frames into view, which the caller
// owns. The previous offscreen target is released.
func (d *Driver) SetSurfaceTarget(view hal.TextureView, width, height int, format gputypes.TextureFormat) error {
	if view == nil {
		return fmt.Errorf("native: nil surface view")
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if d.frame.open {
		return ErrFrameInProgress
	}
	if format != gputypes.TextureFormatUndefined && format != d.config.Format {
		d.config.Format = format
		d.pipelines.clearPipelines()
	}
	cfg := d.config
	cfg.Width, cfg.Height = width, height
	if err := d.target.setSurface(d.device, view, cfg); err != nil {
		return fmt.Errorf("native: %w", err)
	}
	return nil
}

// Resize recreates the offscreen target at the new size.
func (d *Driver) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	if d.frame.open {
		return ErrFrameInProgress
	}
	d.target.destroy(d.device)
	d.config.Width, d.config.Height = width, height
	if err := d.target.createOffscreen(d.device, d.config); err != nil {
		return fmt.Errorf("native: %w", err)
	}
	return nil
}

// ForgetShader releases the pipelines built for id. Pass it as
// shader.Config.OnRelease.
func (d *Driver) ForgetShader(id shader.ID) {
	d.pipelines.forgetShader(id)
}

// Close waits for the GPU and releases every resource the driver created.
func (d *Driver) Close() {
	if d.closed {
		return
	}
	d.closed = true
	if err := d.device.WaitIdle(); err != nil {
		slogger().Warn("native: wait idle on close", "err", err)
	}
	d.freeSubmissions(true)

	for key, bg := range d.bindGroups {
		d.device.DestroyBindGroup(bg)
		delete(d.bindGroups, key)
	}
	if d.constantsGroup != nil {
		d.device.DestroyBindGroup(d.constantsGroup)
		d.constantsGroup = nil
	}
	for s, smp := range d.samplers {
		d.device.DestroySampler(smp)
		delete(d.samplers, s)
	}
	for id, t := range d.textures {
		t.destroy(d.device)
		delete(d.textures, id)
	}
	d.vertices.destroy(d.device)
	d.indices.destroy(d.device)
	d.uniforms.destroy(d.device)
	d.target.destroy(d.device)
	d.pipelines.destroy()
	slogger().Info("native: driver closed")
}

// freeSubmissions frees command buffers the GPU has finished with, or all
// of them when all is set.
func (d *Driver) freeSubmissions(all bool) {
	done := d.queue.PollCompleted()
	kept := d.pending[:0]
	for _, s := range d.pending {
		if all || s.index <= done {
			d.device.FreeCommandBuffer(s.cmd)
			continue
		}
		kept = append(kept, s)
	}
	d.pending = kept
}

// SetBlendEnable implements state.BlendApplier.
func (d *Driver) SetBlendEnable(enable bool) {
	d.bound.key.blend.Enable = enable
}

// SetBlendFactors implements state.BlendApplier.
func (d *Driver) SetBlendFactors(srcColor, dstColor, srcAlpha, dstAlpha state.BlendFactor) {
	b := &d.bound.key.blend
	b.SrcColor, b.DstColor, b.SrcAlpha, b.DstAlpha = srcColor, dstColor, srcAlpha, dstAlpha
}

// SetBlendOperations implements state.BlendApplier.
func (d *Driver) SetBlendOperations(color, alpha state.BlendOp) {
	d.bound.key.blend.ColorOp, d.bound.key.blend.AlphaOp = color, alpha
}

// SetAlphaToCoverage implements state.BlendApplier.
func (d *Driver) SetAlphaToCoverage(enable bool) {
	d.bound.key.blend.AlphaToCoverage = enable
}

// SetFillMode implements state.RasterizerApplier. Wireframe fill is not
// available through WebGPU and draws solid.
func (d *Driver) SetFillMode(m state.FillMode) {
	if m == state.FillWireframe && !d.warnedWireframe {
		d.warnedWireframe = true
		slogger().Warn("native: wireframe fill not supported, drawing solid")
	}
}

// SetCullMode implements state.RasterizerApplier.
func (d *Driver) SetCullMode(m state.CullMode) {
	d.bound.key.cull = m
}

// SetScissorEnable implements state.RasterizerApplier.
func (d *Driver) SetScissorEnable(enable bool) {
	d.bound.scissorEnable = enable
}

// SetDepthBias implements state.RasterizerApplier. The 2D target has no
// depth attachment, so the bias has no effect.
func (d *Driver) SetDepthBias(int32) {}

// SetSamplerFilter implements state.SamplerApplier.
func (d *Driver) SetSamplerFilter(slot uint32, minFilter, magFilter, mipFilter state.Filter) {
	if slot < state.MaxSamplerCount {
		s := &d.bound.samplers[slot]
		s.MinFilter, s.MagFilter, s.MipFilter = minFilter, magFilter, mipFilter
	}
}

// SetSamplerAddress implements state.SamplerApplier.
func (d *Driver) SetSamplerAddress(slot uint32, u, v, w state.AddressMode) {
	if slot < state.MaxSamplerCount {
		s := &d.bound.samplers[slot]
		s.AddressU, s.AddressV, s.AddressW = u, v, w
	}
}

// SetSamplerAnisotropy implements state.SamplerApplier.
func (d *Driver) SetSamplerAnisotropy(slot uint32, maxAnisotropy uint8) {
	if slot < state.MaxSamplerCount {
		d.bound.samplers[slot].MaxAnisotropy = maxAnisotropy
	}
}

// SetScissorRect sets the scissor rectangle used while scissoring is
// enabled.
func (d *Driver) SetScissorRect(r image.Rectangle) {
	d.bound.scissor = r
}

// SetViewport sets the viewport in target pixels.
func (d *Driver) SetViewport(r image.Rectangle) {
	d.bound.viewport = r
}

// BindTexture binds id to a pixel shader slot. Only slot 0 is sampled by
// the built-in prelude.
func (d *Driver) BindTexture(slot uint32, id texture.ID) {
	if slot < state.MaxSamplerCount {
		d.bound.textures[slot] = id
	}
}

// BindPixelShader selects the pixel shader of subsequent draws.
func (d *Driver) BindPixelShader(id shader.ID) {
	d.bound.key.shader = id
}

// UploadTransform sets the two transform rows of the constants block.
func (d *Driver) UploadTransform(t [2][4]float32) {
	d.bound.constants[0], d.bound.constants[1] = t[0], t[1]
	d.bound.constantsDirty = true
}

// UploadColors sets the color multiplier and offset of the constants
// block.
func (d *Driver) UploadColors(mul, add [4]float32) {
	d.bound.constants[2], d.bound.constants[3] = mul, add
	d.bound.constantsDirty = true
}
