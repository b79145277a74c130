package command

import (
	"fmt"
	"image"

	"github.com/gogpu/batch2d/geom"
	"github.com/gogpu/batch2d/shader"
	"github.com/gogpu/batch2d/state"
	"github.com/gogpu/batch2d/texture"
)

// Stream is an ordered list of commands. Payloads are stored in one slice
// per command type and referenced from the header list by index.
//
// Stream is not safe for concurrent use.
type Stream struct {
	headers []Header

	draws       []uint32
	nextBatches []uint32
	blends      []state.BlendState
	rasterizers []state.RasterizerState
	samplers    []SamplerStateCommand
	scissors    []image.Rectangle
	viewports   []Viewport
	transforms  []geom.Mat3x2
	shaders     []shader.ID
	textures    []PSTextureCommand
	colorMuls   []geom.ColorF
	colorAdds   []geom.ColorF

	byteLen int
}

// NewStream creates a Stream with room for capacity headers.
func NewStream(capacity int) *Stream {
	if capacity < 0 {
		capacity = 0
	}
	return &Stream{
		headers: make([]Header, 0, capacity),
		draws:   make([]uint32, 0, capacity/2),
	}
}

// Len returns the number of commands.
func (s *Stream) Len() int {
	return len(s.headers)
}

// ByteLen returns the encoded size of every command pushed since the last
// Reset.
func (s *Stream) ByteLen() int {
	return s.byteLen
}

// Header returns the header of command i.
func (s *Stream) Header(i int) Header {
	return s.headers[i]
}

// Headers returns the header list. The slice is only valid until the next
// push or Reset.
func (s *Stream) Headers() []Header {
	return s.headers
}

// Reset empties the stream, keeping allocated storage.
func (s *Stream) Reset() {
	s.headers = s.headers[:0]
	s.draws = s.draws[:0]
	s.nextBatches = s.nextBatches[:0]
	s.blends = s.blends[:0]
	s.rasterizers = s.rasterizers[:0]
	s.samplers = s.samplers[:0]
	s.scissors = s.scissors[:0]
	s.viewports = s.viewports[:0]
	s.transforms = s.transforms[:0]
	s.shaders = s.shaders[:0]
	s.textures = s.textures[:0]
	s.colorMuls = s.colorMuls[:0]
	s.colorAdds = s.colorAdds[:0]
	s.byteLen = 0
}

func (s *Stream) header(t CommandType, index int, c Command) {
	s.headers = append(s.headers, Header{Type: t, Index: uint32(index)})
	s.byteLen += c.Size()
}

// Push appends a typed command.
func (s *Stream) Push(c Command) {
	switch c := c.(type) {
	case NopCommand:
		s.PushNop()
	case DrawCommand:
		s.PushDraw(c.IndexCount)
	case NextBatchCommand:
		s.PushNextBatch(c.Batch)
	case BlendStateCommand:
		s.PushBlendState(c.State)
	case RasterizerStateCommand:
		s.PushRasterizerState(c.State)
	case SamplerStateCommand:
		s.PushSamplerState(c.Slot, c.State)
	case ScissorRectCommand:
		s.PushScissorRect(c.Rect)
	case ViewportCommand:
		s.PushViewport(c.Viewport)
	case TransformCommand:
		s.PushTransform(c.Matrix)
	case PixelShaderCommand:
		s.PushPixelShader(c.Shader)
	case PSTextureCommand:
		s.PushPSTexture(c.Slot, c.Texture)
	case ColorMulCommand:
		s.PushColorMul(c.Color)
	case ColorAddCommand:
		s.PushColorAdd(c.Color)
	default:
		panic(fmt.Sprintf("command: unknown command %T", c))
	}
}

// PushNop appends a command that does nothing.
func (s *Stream) PushNop() {
	s.header(CmdNop, 0, NopCommand{})
}

// PushDraw appends a draw of indexCount indices.
func (s *Stream) PushDraw(indexCount uint32) {
	s.header(CmdDraw, len(s.draws), DrawCommand{IndexCount: indexCount})
	s.draws = append(s.draws, indexCount)
}

// PushNextBatch appends a switch to batch region batch.
func (s *Stream) PushNextBatch(batch uint32) {
	s.header(CmdNextBatch, len(s.nextBatches), NextBatchCommand{Batch: batch})
	s.nextBatches = append(s.nextBatches, batch)
}

// PushBlendState appends a blend state change.
func (s *Stream) PushBlendState(st state.BlendState) {
	s.header(CmdBlendState, len(s.blends), BlendStateCommand{State: st})
	s.blends = append(s.blends, st)
}

// PushRasterizerState appends a rasterizer state change.
func (s *Stream) PushRasterizerState(st state.RasterizerState) {
	s.header(CmdRasterizerState, len(s.rasterizers), RasterizerStateCommand{State: st})
	s.rasterizers = append(s.rasterizers, st)
}

// PushSamplerState appends a sampler state change for slot.
func (s *Stream) PushSamplerState(slot uint32, st state.SamplerState) {
	c := SamplerStateCommand{Slot: slot, State: st}
	s.header(CmdSamplerState, len(s.samplers), c)
	s.samplers = append(s.samplers, c)
}

// PushScissorRect appends a scissor rectangle change.
func (s *Stream) PushScissorRect(r image.Rectangle) {
	s.header(CmdScissorRect, len(s.scissors), ScissorRectCommand{Rect: r})
	s.scissors = append(s.scissors, r)
}

// PushViewport appends a viewport change.
func (s *Stream) PushViewport(v Viewport) {
	s.header(CmdViewport, len(s.viewports), ViewportCommand{Viewport: v})
	s.viewports = append(s.viewports, v)
}

// PushTransform appends a transform change.
func (s *Stream) PushTransform(m geom.Mat3x2) {
	s.header(CmdTransform, len(s.transforms), TransformCommand{Matrix: m})
	s.transforms = append(s.transforms, m)
}

// PushPixelShader appends a pixel shader change.
func (s *Stream) PushPixelShader(id shader.ID) {
	s.header(CmdPixelShader, len(s.shaders), PixelShaderCommand{Shader: id})
	s.shaders = append(s.shaders, id)
}

// PushPSTexture appends a texture binding change for slot.
func (s *Stream) PushPSTexture(slot uint32, id texture.ID) {
	c := PSTextureCommand{Slot: slot, Texture: id}
	s.header(CmdPSTexture, len(s.textures), c)
	s.textures = append(s.textures, c)
}

// PushColorMul appends a color multiplier change.
func (s *Stream) PushColorMul(c geom.ColorF) {
	s.header(CmdColorMul, len(s.colorMuls), ColorMulCommand{Color: c})
	s.colorMuls = append(s.colorMuls, c)
}

// PushColorAdd appends a color offset change.
func (s *Stream) PushColorAdd(c geom.ColorF) {
	s.header(CmdColorAdd, len(s.colorAdds), ColorAddCommand{Color: c})
	s.colorAdds = append(s.colorAdds, c)
}

// At returns the typed view of command i.
func (s *Stream) At(i int) Command {
	h := s.headers[i]
	switch h.Type {
	case CmdDraw:
		return DrawCommand{IndexCount: s.draws[h.Index]}
	case CmdNextBatch:
		return NextBatchCommand{Batch: s.nextBatches[h.Index]}
	case CmdBlendState:
		return BlendStateCommand{State: s.blends[h.Index]}
	case CmdRasterizerState:
		return RasterizerStateCommand{State: s.rasterizers[h.Index]}
	case CmdSamplerState:
		return s.samplers[h.Index]
	case CmdScissorRect:
		return ScissorRectCommand{Rect: s.scissors[h.Index]}
	case CmdViewport:
		return ViewportCommand{Viewport: s.viewports[h.Index]}
	case CmdTransform:
		return TransformCommand{Matrix: s.transforms[h.Index]}
	case CmdPixelShader:
		return PixelShaderCommand{Shader: s.shaders[h.Index]}
	case CmdPSTexture:
		return s.textures[h.Index]
	case CmdColorMul:
		return ColorMulCommand{Color: s.colorMuls[h.Index]}
	case CmdColorAdd:
		return ColorAddCommand{Color: s.colorAdds[h.Index]}
	default:
		return NopCommand{}
	}
}

// Each calls fn with every command in push order until fn returns false.
func (s *Stream) Each(fn func(i int, c Command) bool) {
	for i := range s.headers {
		if !fn(i, s.At(i)) {
			return
		}
	}
}

// Count returns the number of commands of type t.
func (s *Stream) Count(t CommandType) int {
	n := 0
	for _, h := range s.headers {
		if h.Type == t {
			n++
		}
	}
	return n
}

// Dump returns one line per command, for debugging.
func (s *Stream) Dump() []string {
	lines := make([]string, 0, len(s.headers))
	s.Each(func(i int, c Command) bool {
		lines = append(lines, fmt.Sprintf("%d: %s %+v", i, c.Type(), c))
		return true
	})
	return lines
}
