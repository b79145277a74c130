package batch2d

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/batch2d/batch"
	"github.com/gogpu/batch2d/command"
	"github.com/gogpu/batch2d/geom"
	"github.com/gogpu/batch2d/internal/tess"
	"github.com/gogpu/batch2d/shader"
	"github.com/gogpu/batch2d/state"
	"github.com/gogpu/batch2d/texture"
)

// Stats describes the last flushed frame.
type Stats struct {
	// Commands is the number of replayed commands.
	Commands int

	// DrawCalls is the number of indexed draws issued.
	DrawCalls int

	// Triangles is the number of triangles drawn.
	Triangles int

	// Batches is the number of batch regions uploaded.
	Batches int

	// StateChanges counts state commands that reached the driver.
	StateChanges int

	// Dropped counts shapes that produced no geometry.
	Dropped int
}

// Renderer records 2D shapes and replays them on a Driver.
//
// A Renderer is not safe for concurrent use; all calls must come from the
// render goroutine.
type Renderer struct {
	driver   Driver
	textures TextureSource
	shaders  ShaderSource
	config   Config

	rec   *command.Recorder
	alloc *batch.Allocator
	fn    tess.Alloc

	blend      *state.BlendCache
	rasterizer *state.RasterizerCache
	sampler    *state.SamplerCache

	// Replay-side copies of what the driver has bound.
	scissor      image.Rectangle
	scissorBound bool

	customPS   shader.ID
	clearColor [4]float32

	dropped int
	stats   Stats
	closed  bool
}

// New creates a Renderer drawing with driver. textures and shaders answer
// resource queries and decide which IDs are live at flush time.
func New(driver Driver, textures TextureSource, shaders ShaderSource, opts ...Option) (*Renderer, error) {
	if driver == nil {
		return nil, ErrNilDriver
	}
	if textures == nil || shaders == nil {
		return nil, fmt.Errorf("%w: nil texture or shader source", ErrGraphicsInit)
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.CommandCapacity <= 0 {
		cfg.CommandCapacity = DefaultCommandCapacity
	}

	blend, _ := lookup("blend", BlendPresets, cfg.Blend)
	rasterizer, _ := lookup("rasterizer", RasterizerPresets, cfg.Rasterizer)
	sampler, _ := lookup("sampler", SamplerPresets, cfg.Sampler)

	propagateLogger(driver)

	r := &Renderer{
		driver:     driver,
		textures:   textures,
		shaders:    shaders,
		config:     cfg,
		rec:        command.NewRecorderSize(cfg.CommandCapacity),
		alloc:      batch.New(cfg.batchConfig()),
		blend:      state.NewBlendCache(driver),
		rasterizer: state.NewRasterizerCache(driver),
		sampler:    state.NewSamplerCache(driver),
		clearColor: cfg.clearColor(),
	}
	r.fn = r.allocate

	r.rec.PushBlendState(blend)
	r.rec.PushRasterizerState(rasterizer)
	for slot := range uint32(state.MaxSamplerCount) {
		r.rec.PushSamplerState(slot, sampler)
	}
	r.rec.PushPixelShader(shaders.Shape())
	r.rec.Reset()

	Logger().Info("batch2d: renderer created",
		"vertexCapacity", r.alloc.VertexCapacity(),
		"indexCapacity", r.alloc.IndexCapacity(),
		"maxBatches", r.alloc.MaxBatches())
	return r, nil
}

// Close stops the renderer. Flush returns ErrClosed afterwards.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	forgetDriver(r.driver)
}

// Config returns the configuration the renderer was created with.
func (r *Renderer) Config() Config {
	return r.config
}

// Stats returns statistics of the last flush.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// Stream returns the recorded command stream, for inspection.
func (r *Renderer) Stream() *command.Stream {
	return r.rec.Stream()
}

// allocate hands out batch space, moving to the next region when the
// current one is full.
func (r *Renderer) allocate(vertexCount, indexCount int) (batch.Slot, bool) {
	s, err := r.alloc.GetBuffer(vertexCount, indexCount)
	if errors.Is(err, batch.ErrBatchFull) {
		next, nerr := r.alloc.NextBatch()
		if nerr != nil {
			Logger().Warn("batch2d: out of batch regions",
				"vertices", vertexCount, "indices", indexCount, "err", nerr)
			return batch.Slot{}, false
		}
		r.rec.PushNextBatch(next)
		s, err = r.alloc.GetBuffer(vertexCount, indexCount)
	}
	if err != nil {
		Logger().Debug("batch2d: allocation failed",
			"vertices", vertexCount, "indices", indexCount, "err", err)
		return batch.Slot{}, false
	}
	return s, true
}

// draw records n indices written by the last builder for an untextured
// shape. Shader changes are recorded after the geometry so that a batch
// switch during building keeps them with the draw they belong to.
func (r *Renderer) draw(n int) int {
	if n <= 0 {
		return r.drop()
	}
	if r.customPS != shader.Null {
		r.rec.PushPixelShader(r.customPS)
	} else {
		r.rec.PushPixelShader(r.shaders.Shape())
	}
	r.rec.PushDraw(uint32(n))
	return n
}

// drawTextured is draw for shapes sampling tex through slot 0.
func (r *Renderer) drawTextured(tex texture.ID, n int) int {
	if n <= 0 {
		return r.drop()
	}
	if r.customPS != shader.Null {
		r.rec.PushPixelShader(r.customPS)
	} else {
		r.rec.PushPixelShader(r.shaders.Texture())
	}
	r.rec.PushPSTexture(0, tex)
	r.rec.PushDraw(uint32(n))
	return n
}

func (r *Renderer) drop() int {
	r.dropped++
	Logger().Debug("batch2d: shape dropped")
	return 0
}

// scale is the magnification applied by the current transform.
func (r *Renderer) scale() float32 {
	return float32(r.rec.MaxScaling())
}

// SetBlendState sets the blend state of subsequent draws.
func (r *Renderer) SetBlendState(s state.BlendState) {
	r.rec.PushBlendState(s)
}

// BlendState returns the blend state of subsequent draws.
func (r *Renderer) BlendState() state.BlendState {
	return r.rec.BlendState()
}

// SetRasterizerState sets the rasterizer state of subsequent draws.
func (r *Renderer) SetRasterizerState(s state.RasterizerState) {
	r.rec.PushRasterizerState(s)
}

// RasterizerState returns the rasterizer state of subsequent draws.
func (r *Renderer) RasterizerState() state.RasterizerState {
	return r.rec.RasterizerState()
}

// SetSamplerState sets the sampler of a pixel shader slot. Slots at or
// beyond state.MaxSamplerCount are ignored.
func (r *Renderer) SetSamplerState(slot uint32, s state.SamplerState) {
	r.rec.PushSamplerState(slot, s)
}

// SamplerState returns the sampler of a pixel shader slot.
func (r *Renderer) SamplerState(slot uint32) state.SamplerState {
	return r.rec.SamplerState(slot)
}

// SetScissorRect sets the scissor rectangle in target pixels. It only
// clips when the rasterizer state enables scissoring.
func (r *Renderer) SetScissorRect(rect image.Rectangle) {
	r.rec.PushScissorRect(rect.Canon())
}

// ScissorRect returns the scissor rectangle.
func (r *Renderer) ScissorRect() image.Rectangle {
	return r.rec.ScissorRect()
}

// SetViewport restricts drawing to rect. A nil rect selects the whole
// target. Pixel coordinates of later shapes are relative to the viewport.
func (r *Renderer) SetViewport(rect *image.Rectangle) {
	if rect == nil {
		r.rec.PushViewport(command.FullViewport)
		return
	}
	r.rec.PushViewport(command.ViewportRect(rect.Canon()))
}

// Viewport returns the viewport rectangle and whether one is set.
func (r *Renderer) Viewport() (image.Rectangle, bool) {
	v := r.rec.Viewport()
	return v.Rect, v.Custom
}

// SetTransformLocal sets the transform applied to shapes before the camera
// transform.
func (r *Renderer) SetTransformLocal(m geom.Mat3x2) {
	r.rec.SetTransformLocal(m)
}

// SetTransformCamera sets the camera transform, applied after the local
// transform.
func (r *Renderer) SetTransformCamera(m geom.Mat3x2) {
	r.rec.SetTransformCamera(m)
}

// SetTransformScreen sets the transform applied after the camera
// transform, typically a scale from scene to target pixels.
func (r *Renderer) SetTransformScreen(m geom.Mat3x2) {
	r.rec.SetTransformScreen(m)
}

// TransformScreen returns the screen transform.
func (r *Renderer) TransformScreen() geom.Mat3x2 {
	return r.rec.TransformScreen()
}

// TransformLocal returns the local transform.
func (r *Renderer) TransformLocal() geom.Mat3x2 {
	return r.rec.TransformLocal()
}

// TransformCamera returns the camera transform.
func (r *Renderer) TransformCamera() geom.Mat3x2 {
	return r.rec.TransformCamera()
}

// MaxScaling returns the largest magnification of the combined transform.
// Curved shapes pick their segment count from it.
func (r *Renderer) MaxScaling() float64 {
	return r.rec.MaxScaling()
}

// SetPixelShader replaces the built-in pixel shaders for subsequent draws.
// shader.Null restores the built-ins.
func (r *Renderer) SetPixelShader(id shader.ID) {
	r.customPS = id
}

// PixelShader returns the custom pixel shader, or shader.Null.
func (r *Renderer) PixelShader() shader.ID {
	return r.customPS
}

// SetPSTexture binds a texture to a pixel shader slot for custom shaders.
// Slot 0 is rebound by every textured shape.
func (r *Renderer) SetPSTexture(slot uint32, id texture.ID) {
	r.rec.PushPSTexture(slot, id)
}

// PSTexture returns the texture bound to a pixel shader slot.
func (r *Renderer) PSTexture(slot uint32) texture.ID {
	return r.rec.PSTexture(slot)
}

// SetColorMul sets the color multiplied into every vertex color.
func (r *Renderer) SetColorMul(c geom.ColorF) {
	r.rec.PushColorMul(c)
}

// ColorMul returns the color multiplier.
func (r *Renderer) ColorMul() geom.ColorF {
	return r.rec.ColorMul()
}

// SetColorAdd sets the color added to every output pixel.
func (r *Renderer) SetColorAdd(c geom.ColorF) {
	r.rec.PushColorAdd(c)
}

// ColorAdd returns the color offset.
func (r *Renderer) ColorAdd() geom.ColorF {
	return r.rec.ColorAdd()
}

// ResetState restores every state to its default and removes the custom
// pixel shader. The changes are recorded like any other state change.
func (r *Renderer) ResetState() {
	r.customPS = shader.Null
	r.rec.ResetState()
}
