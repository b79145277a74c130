// Package command records 2D draw calls and state changes as an ordered
// instruction stream for deferred, batched execution.
//
// A Stream is a sum-typed instruction list: each entry is a Header holding
// the CommandType and an index into a per-type payload slice. Commands
// replay strictly in push order, and a state change only affects draws
// pushed after it.
//
// A Recorder sits on top of a Stream and keeps the stream small. It tracks
// the state the caller wants, emits state commands only when a draw needs
// them, cancels changes that are reverted before the next draw, and merges
// consecutive draws into one.
//
// # Example
//
//	rec := command.NewRecorder()
//	rec.Reset()
//	rec.PushBlendState(state.BlendAdditive)
//	rec.PushDraw(6)
//	rec.PushDraw(6) // merged with the previous draw
//	rec.Flush()
//	rec.Stream().Each(func(i int, c command.Command) bool {
//	    fmt.Println(i, c.Type())
//	    return true
//	})
package command

import (
	"image"
	"unsafe"

	"github.com/gogpu/batch2d/geom"
	"github.com/gogpu/batch2d/shader"
	"github.com/gogpu/batch2d/state"
	"github.com/gogpu/batch2d/texture"
)

// CommandType identifies the type of a command.
type CommandType uint8

const (
	CmdNop CommandType = iota
	CmdDraw
	CmdNextBatch
	CmdBlendState
	CmdRasterizerState
	CmdSamplerState
	CmdScissorRect
	CmdViewport
	CmdTransform
	CmdPixelShader
	CmdPSTexture
	CmdColorMul
	CmdColorAdd
)

// commandTypeNames maps CommandType values to their string representation.
var commandTypeNames = [...]string{
	CmdNop:             "Nop",
	CmdDraw:            "Draw",
	CmdNextBatch:       "NextBatch",
	CmdBlendState:      "BlendState",
	CmdRasterizerState: "RasterizerState",
	CmdSamplerState:    "SamplerState",
	CmdScissorRect:     "ScissorRect",
	CmdViewport:        "Viewport",
	CmdTransform:       "Transform",
	CmdPixelShader:     "PixelShader",
	CmdPSTexture:       "PSTexture",
	CmdColorMul:        "ColorMul",
	CmdColorAdd:        "ColorAdd",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Header is the fixed-size part of every recorded command.
type Header struct {
	Type CommandType

	// Index selects the payload in the slice for Type.
	Index uint32
}

// headerSize is the encoded size of a Header in bytes.
const headerSize = int(unsafe.Sizeof(Header{}))

// Command is implemented by the typed view of every command.
type Command interface {
	// Type returns the CommandType for this command.
	Type() CommandType

	// Size returns the encoded size of the command in bytes.
	Size() int
}

// Viewport is the render target region drawn into. The zero value covers
// the whole render target.
type Viewport struct {
	Rect   image.Rectangle
	Custom bool
}

// FullViewport covers the whole render target.
var FullViewport = Viewport{}

// ViewportRect returns a viewport limited to r.
func ViewportRect(r image.Rectangle) Viewport {
	return Viewport{Rect: r, Custom: true}
}

// NopCommand does nothing.
type NopCommand struct{}

// Type implements Command.
func (NopCommand) Type() CommandType { return CmdNop }

// Size implements Command.
func (NopCommand) Size() int { return headerSize }

// DrawCommand draws IndexCount indices from the current batch.
type DrawCommand struct {
	IndexCount uint32
}

// Type implements Command.
func (DrawCommand) Type() CommandType { return CmdDraw }

// Size implements Command.
func (c DrawCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }

// NextBatchCommand binds batch region Batch; following draws start at its
// first index.
type NextBatchCommand struct {
	Batch uint32
}

// Type implements Command.
func (NextBatchCommand) Type() CommandType { return CmdNextBatch }

// Size implements Command.
func (c NextBatchCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }

// BlendStateCommand sets the blend state.
type BlendStateCommand struct {
	State state.BlendState
}

// Type implements Command.
func (BlendStateCommand) Type() CommandType { return CmdBlendState }

// Size implements Command.
func (c BlendStateCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }

// RasterizerStateCommand sets the rasterizer state.
type RasterizerStateCommand struct {
	State state.RasterizerState
}

// Type implements Command.
func (RasterizerStateCommand) Type() CommandType { return CmdRasterizerState }

// Size implements Command.
func (c RasterizerStateCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }

// SamplerStateCommand sets the sampler state of one pixel shader slot.
type SamplerStateCommand struct {
	Slot  uint32
	State state.SamplerState
}

// Type implements Command.
func (SamplerStateCommand) Type() CommandType { return CmdSamplerState }

// Size implements Command.
func (c SamplerStateCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }

// ScissorRectCommand sets the scissor rectangle in pixels.
type ScissorRectCommand struct {
	Rect image.Rectangle
}

// Type implements Command.
func (ScissorRectCommand) Type() CommandType { return CmdScissorRect }

// Size implements Command.
func (c ScissorRectCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }

// ViewportCommand sets the viewport.
type ViewportCommand struct {
	Viewport Viewport
}

// Type implements Command.
func (ViewportCommand) Type() CommandType { return CmdViewport }

// Size implements Command.
func (c ViewportCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }

// TransformCommand sets the combined local and camera transform.
type TransformCommand struct {
	Matrix geom.Mat3x2
}

// Type implements Command.
func (TransformCommand) Type() CommandType { return CmdTransform }

// Size implements Command.
func (c TransformCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }

// PixelShaderCommand binds a pixel shader.
type PixelShaderCommand struct {
	Shader shader.ID
}

// Type implements Command.
func (PixelShaderCommand) Type() CommandType { return CmdPixelShader }

// Size implements Command.
func (c PixelShaderCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }

// PSTextureCommand binds a texture to a pixel shader slot.
type PSTextureCommand struct {
	Slot    uint32
	Texture texture.ID
}

// Type implements Command.
func (PSTextureCommand) Type() CommandType { return CmdPSTexture }

// Size implements Command.
func (c PSTextureCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }

// ColorMulCommand sets the color every vertex color is multiplied by.
type ColorMulCommand struct {
	Color geom.ColorF
}

// Type implements Command.
func (ColorMulCommand) Type() CommandType { return CmdColorMul }

// Size implements Command.
func (c ColorMulCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }

// ColorAddCommand sets the color added to every output pixel.
type ColorAddCommand struct {
	Color geom.ColorF
}

// Type implements Command.
func (ColorAddCommand) Type() CommandType { return CmdColorAdd }

// Size implements Command.
func (c ColorAddCommand) Size() int { return headerSize + int(unsafe.Sizeof(c)) }
