package batch2d

import (
	"image"

	"github.com/gogpu/batch2d/batch"
	"github.com/gogpu/batch2d/shader"
	"github.com/gogpu/batch2d/state"
	"github.com/gogpu/batch2d/texture"
)

// ScissorViewport sets the scissor rectangle and the viewport, both in
// target pixels.
type ScissorViewport interface {
	SetScissorRect(r image.Rectangle)
	SetViewport(r image.Rectangle)
}

// TextureBinder binds textures to pixel shader slots.
type TextureBinder interface {
	BindTexture(slot uint32, id texture.ID)
}

// ShaderBinder binds the pixel shader used by subsequent draws.
type ShaderBinder interface {
	BindPixelShader(id shader.ID)
}

// ConstantUploader writes the shader constants.
//
// The transform maps a pixel position p to clip space as
//
//	x = t[0][0]*p.x + t[1][0]*p.y + t[0][2]
//	y = t[0][1]*p.x + t[1][1]*p.y + t[0][3]
type ConstantUploader interface {
	UploadTransform(t [2][4]float32)
	UploadColors(mul, add [4]float32)
}

// BatchUploader copies one batch region into the GPU buffers and binds it.
type BatchUploader interface {
	UploadBatch(info batch.Info, vertices []batch.Vertex2D, indices []batch.Index) error
}

// IndexedDrawer issues indexed triangle-list draws from the bound batch.
type IndexedDrawer interface {
	DrawIndexed(indexCount, startIndex uint32, baseVertex int32)
}

// Driver is everything the Renderer needs from a GPU backend. State calls
// may arrive outside BeginFrame/EndFrame and must be remembered until the
// next draw.
type Driver interface {
	state.BlendApplier
	state.RasterizerApplier
	state.SamplerApplier
	ScissorViewport
	TextureBinder
	ShaderBinder
	ConstantUploader
	BatchUploader
	IndexedDrawer

	// BeginFrame starts recording a frame that clears the target to clear.
	BeginFrame(clear [4]float32) error

	// EndFrame submits the recorded frame.
	EndFrame() error

	// TargetSize returns the size of the render target in pixels.
	TargetSize() (width, height int)
}

// TextureSource answers texture queries. *texture.Manager implements it.
type TextureSource interface {
	Size(id texture.ID) (width, height int)
	Contains(id texture.ID) bool
}

// ShaderSource names the built-in pixel shaders and answers whether a
// shader is live. *shader.Manager implements it.
type ShaderSource interface {
	Shape() shader.ID
	Texture() shader.ID
	Contains(id shader.ID) bool
}

var (
	_ TextureSource = (*texture.Manager)(nil)
	_ ShaderSource  = (*shader.Manager)(nil)
)
