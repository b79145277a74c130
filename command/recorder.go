package command

import (
	"image"

	"github.com/gogpu/batch2d/geom"
	"github.com/gogpu/batch2d/shader"
	"github.com/gogpu/batch2d/state"
	"github.com/gogpu/batch2d/texture"
)

// MaxTextureSlots is the number of pixel shader texture slots.
const MaxTextureSlots = state.MaxSamplerCount

// Pending-change bits. Flush emits pending states in this order.
const (
	bitColorMul uint64 = 1 << iota
	bitColorAdd
	bitBlend
	bitRasterizer
	bitSampler0
	bitTransform   = bitSampler0 << MaxTextureSlots
	bitPixelShader = bitTransform << 1
	bitScissor     = bitTransform << 2
	bitViewport    = bitTransform << 3
	bitTexture0    = bitTransform << 4
)

// snapshot is one full set of tracked render state.
type snapshot struct {
	colorMul    geom.ColorF
	colorAdd    geom.ColorF
	blend       state.BlendState
	rasterizer  state.RasterizerState
	samplers    [MaxTextureSlots]state.SamplerState
	transform   geom.Mat3x2
	pixelShader shader.ID
	scissor     image.Rectangle
	viewport    Viewport
	textures    [MaxTextureSlots]texture.ID
}

func defaultSnapshot() snapshot {
	s := snapshot{
		colorMul:   geom.White,
		blend:      state.BlendDefault,
		rasterizer: state.RasterizerDefault2D,
		transform:  geom.Identity(),
	}
	for i := range s.samplers {
		s.samplers[i] = state.SamplerDefault2D
	}
	return s
}

// Recorder tracks the current render state and records it into a Stream
// lazily: state commands are written just before the next draw that needs
// them, changes reverted before that draw produce nothing, and consecutive
// draws with no state change in between are merged.
//
// Recorder is not safe for concurrent use.
type Recorder struct {
	stream *Stream

	current snapshot
	emitted snapshot
	pending uint64

	local  geom.Mat3x2
	camera geom.Mat3x2
	screen geom.Mat3x2

	drawCount uint32
	hasDraw   bool
}

// NewRecorder creates a Recorder with default state. Call Reset before
// recording a frame.
func NewRecorder() *Recorder {
	return NewRecorderSize(256)
}

// NewRecorderSize is like NewRecorder with room for capacity commands.
func NewRecorderSize(capacity int) *Recorder {
	r := &Recorder{
		stream:  NewStream(capacity),
		current: defaultSnapshot(),
		local:   geom.Identity(),
		camera:  geom.Identity(),
		screen:  geom.Identity(),
	}
	r.emitted = r.current
	return r
}

// Stream returns the underlying stream. Call Flush first so pending draws
// and state are included.
func (r *Recorder) Stream() *Stream {
	return r.stream
}

// Reset empties the stream and starts a new frame: it records a switch to
// batch 0 followed by every current state, so replay starts from a fully
// known state.
func (r *Recorder) Reset() {
	r.stream.Reset()
	r.drawCount = 0
	r.hasDraw = false
	r.pending = 0

	r.stream.PushNextBatch(0)
	c := &r.current
	r.stream.PushColorMul(c.colorMul)
	r.stream.PushColorAdd(c.colorAdd)
	r.stream.PushBlendState(c.blend)
	r.stream.PushRasterizerState(c.rasterizer)
	for i, s := range c.samplers {
		r.stream.PushSamplerState(uint32(i), s)
	}
	r.stream.PushTransform(c.transform)
	r.stream.PushPixelShader(c.pixelShader)
	r.stream.PushScissorRect(c.scissor)
	r.stream.PushViewport(c.viewport)
	for i, t := range c.textures {
		r.stream.PushPSTexture(uint32(i), t)
	}
	r.emitted = r.current
}

// ResetState restores every tracked state to its default. The changes are
// recorded like any other state change.
func (r *Recorder) ResetState() {
	d := defaultSnapshot()
	r.local = geom.Identity()
	r.camera = geom.Identity()
	r.screen = geom.Identity()
	r.PushColorMul(d.colorMul)
	r.PushColorAdd(d.colorAdd)
	r.PushBlendState(d.blend)
	r.PushRasterizerState(d.rasterizer)
	for i, s := range d.samplers {
		r.PushSamplerState(uint32(i), s)
	}
	r.updateTransform()
	r.PushPixelShader(d.pixelShader)
	r.PushScissorRect(d.scissor)
	r.PushViewport(d.viewport)
	for i, t := range d.textures {
		r.PushPSTexture(uint32(i), t)
	}
}

// track updates *cur to v and marks bit pending when v differs from the
// last value written to the stream.
func track[T comparable](r *Recorder, cur, emitted *T, v T, bit uint64) {
	if *cur == v {
		return
	}
	*cur = v
	if v != *emitted {
		r.pending |= bit
	} else {
		r.pending &^= bit
	}
}

// PushDraw records a draw of indexCount indices. It is merged with the
// previous draw when no state changed in between.
func (r *Recorder) PushDraw(indexCount uint32) {
	if indexCount == 0 {
		return
	}
	if r.pending != 0 {
		r.flush()
	}
	r.drawCount += indexCount
	r.hasDraw = true
}

// PushNextBatch records a switch to batch region batch. Pending draws and
// state are written first.
func (r *Recorder) PushNextBatch(batch uint32) {
	r.flush()
	r.stream.PushNextBatch(batch)
}

// Flush writes the pending draw and every pending state change.
func (r *Recorder) Flush() {
	r.flush()
}

func (r *Recorder) flush() {
	if r.hasDraw {
		r.stream.PushDraw(r.drawCount)
		r.drawCount = 0
		r.hasDraw = false
	}
	if r.pending == 0 {
		return
	}

	c, e, s := &r.current, &r.emitted, r.stream
	if r.pending&bitColorMul != 0 {
		s.PushColorMul(c.colorMul)
		e.colorMul = c.colorMul
	}
	if r.pending&bitColorAdd != 0 {
		s.PushColorAdd(c.colorAdd)
		e.colorAdd = c.colorAdd
	}
	if r.pending&bitBlend != 0 {
		s.PushBlendState(c.blend)
		e.blend = c.blend
	}
	if r.pending&bitRasterizer != 0 {
		s.PushRasterizerState(c.rasterizer)
		e.rasterizer = c.rasterizer
	}
	for i := range c.samplers {
		if r.pending&(bitSampler0<<i) != 0 {
			s.PushSamplerState(uint32(i), c.samplers[i])
			e.samplers[i] = c.samplers[i]
		}
	}
	if r.pending&bitTransform != 0 {
		s.PushTransform(c.transform)
		e.transform = c.transform
	}
	if r.pending&bitPixelShader != 0 {
		s.PushPixelShader(c.pixelShader)
		e.pixelShader = c.pixelShader
	}
	if r.pending&bitScissor != 0 {
		s.PushScissorRect(c.scissor)
		e.scissor = c.scissor
	}
	if r.pending&bitViewport != 0 {
		s.PushViewport(c.viewport)
		e.viewport = c.viewport
	}
	for i := range c.textures {
		if r.pending&(bitTexture0<<i) != 0 {
			s.PushPSTexture(uint32(i), c.textures[i])
			e.textures[i] = c.textures[i]
		}
	}
	r.pending = 0
}

// HasPending reports whether a draw or state change has not been written.
func (r *Recorder) HasPending() bool {
	return r.hasDraw || r.pending != 0
}

// PushColorMul sets the vertex color multiplier.
func (r *Recorder) PushColorMul(c geom.ColorF) {
	track(r, &r.current.colorMul, &r.emitted.colorMul, c, bitColorMul)
}

// PushColorAdd sets the color added to every output pixel.
func (r *Recorder) PushColorAdd(c geom.ColorF) {
	track(r, &r.current.colorAdd, &r.emitted.colorAdd, c, bitColorAdd)
}

// PushBlendState sets the blend state.
func (r *Recorder) PushBlendState(s state.BlendState) {
	track(r, &r.current.blend, &r.emitted.blend, s, bitBlend)
}

// PushRasterizerState sets the rasterizer state.
func (r *Recorder) PushRasterizerState(s state.RasterizerState) {
	track(r, &r.current.rasterizer, &r.emitted.rasterizer, s, bitRasterizer)
}

// PushSamplerState sets the sampler state of slot. Slots outside
// [0, MaxTextureSlots) are ignored.
func (r *Recorder) PushSamplerState(slot uint32, s state.SamplerState) {
	if slot >= MaxTextureSlots {
		return
	}
	track(r, &r.current.samplers[slot], &r.emitted.samplers[slot], s, bitSampler0<<slot)
}

// PushScissorRect sets the scissor rectangle.
func (r *Recorder) PushScissorRect(rect image.Rectangle) {
	track(r, &r.current.scissor, &r.emitted.scissor, rect, bitScissor)
}

// PushViewport sets the viewport.
func (r *Recorder) PushViewport(v Viewport) {
	if !v.Custom {
		v = FullViewport
	}
	track(r, &r.current.viewport, &r.emitted.viewport, v, bitViewport)
}

// PushPixelShader binds a pixel shader.
func (r *Recorder) PushPixelShader(id shader.ID) {
	track(r, &r.current.pixelShader, &r.emitted.pixelShader, id, bitPixelShader)
}

// PushPSTexture binds a texture to slot. Slots outside
// [0, MaxTextureSlots) are ignored.
func (r *Recorder) PushPSTexture(slot uint32, id texture.ID) {
	if slot >= MaxTextureSlots {
		return
	}
	track(r, &r.current.textures[slot], &r.emitted.textures[slot], id, bitTexture0<<slot)
}

// SetTransformLocal sets the local transform. Vertices are transformed by
// the local transform, then the camera transform, then the screen
// transform.
func (r *Recorder) SetTransformLocal(m geom.Mat3x2) {
	r.local = m
	r.updateTransform()
}

// SetTransformCamera sets the camera transform.
func (r *Recorder) SetTransformCamera(m geom.Mat3x2) {
	r.camera = m
	r.updateTransform()
}

// SetTransformScreen sets the screen transform, used to scale a whole
// scene to the target.
func (r *Recorder) SetTransformScreen(m geom.Mat3x2) {
	r.screen = m
	r.updateTransform()
}

func (r *Recorder) updateTransform() {
	m := r.local.Multiply(r.camera).Multiply(r.screen)
	track(r, &r.current.transform, &r.emitted.transform, m, bitTransform)
}

// ColorMul returns the current vertex color multiplier.
func (r *Recorder) ColorMul() geom.ColorF { return r.current.colorMul }

// ColorAdd returns the current color offset.
func (r *Recorder) ColorAdd() geom.ColorF { return r.current.colorAdd }

// BlendState returns the current blend state.
func (r *Recorder) BlendState() state.BlendState { return r.current.blend }

// RasterizerState returns the current rasterizer state.
func (r *Recorder) RasterizerState() state.RasterizerState { return r.current.rasterizer }

// SamplerState returns the sampler state of slot, or the default state for
// slots out of range.
func (r *Recorder) SamplerState(slot uint32) state.SamplerState {
	if slot >= MaxTextureSlots {
		return state.SamplerDefault2D
	}
	return r.current.samplers[slot]
}

// ScissorRect returns the current scissor rectangle.
func (r *Recorder) ScissorRect() image.Rectangle { return r.current.scissor }

// Viewport returns the current viewport.
func (r *Recorder) Viewport() Viewport { return r.current.viewport }

// PixelShader returns the bound pixel shader.
func (r *Recorder) PixelShader() shader.ID { return r.current.pixelShader }

// PSTexture returns the texture bound to slot.
func (r *Recorder) PSTexture(slot uint32) texture.ID {
	if slot >= MaxTextureSlots {
		return texture.Null
	}
	return r.current.textures[slot]
}

// TransformLocal returns the local transform.
func (r *Recorder) TransformLocal() geom.Mat3x2 { return r.local }

// TransformCamera returns the camera transform.
func (r *Recorder) TransformCamera() geom.Mat3x2 { return r.camera }

// TransformScreen returns the screen transform.
func (r *Recorder) TransformScreen() geom.Mat3x2 { return r.screen }

// TransformCombined returns the local, camera and screen transforms
// combined.
func (r *Recorder) TransformCombined() geom.Mat3x2 { return r.current.transform }

// MaxScaling returns the largest scale factor of the combined transform.
// Tessellation uses it to pick segment counts.
func (r *Recorder) MaxScaling() float64 {
	return r.current.transform.MaxScaling()
}
