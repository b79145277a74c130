package backend

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/batch2d/batch"
	"github.com/gogpu/batch2d/shader"
	"github.com/gogpu/batch2d/state"
	"github.com/gogpu/batch2d/texture"
)

// ErrFrameState is returned by NullDriver for unbalanced BeginFrame and
// EndFrame calls or uploads outside a frame.
var ErrFrameState = errors.New("backend: frame not in expected state")

// NullStats counts what a NullDriver was asked to do.
type NullStats struct {
	Frames    int
	DrawCalls int
	Triangles int
	Batches   int
	Vertices  int
	Textures  int
}

// NullDriver accepts every driver call without a GPU. It validates the
// frame lifecycle and draw ranges and counts the work, which makes it
// useful for headless runs and tests.
type NullDriver struct {
	width, height int

	textures map[texture.ID]image.Point
	info     batch.Info
	vertices int
	indices  int
	inFrame  bool

	stats  NullStats
	closed bool
}

// init registers the null backend on package import.
func init() {
	Register(BackendNull, func(o Options) (Driver, error) {
		return NewNullDriver(o.Width, o.Height), nil
	})
}

// NewNullDriver creates a NullDriver with a width x height target.
// Non-positive sizes become 1.
func NewNullDriver(width, height int) *NullDriver {
	return &NullDriver{
		width:    max(width, 1),
		height:   max(height, 1),
		textures: make(map[texture.ID]image.Point),
	}
}

// Stats returns the counters accumulated since creation.
func (d *NullDriver) Stats() NullStats {
	s := d.stats
	s.Textures = len(d.textures)
	return s
}

// TargetSize implements batch2d.Driver.
func (d *NullDriver) TargetSize() (int, int) { return d.width, d.height }

// BeginFrame implements batch2d.Driver.
func (d *NullDriver) BeginFrame([4]float32) error {
	if d.inFrame || d.closed {
		return fmt.Errorf("%w: begin", ErrFrameState)
	}
	d.inFrame = true
	d.vertices, d.indices = 0, 0
	return nil
}

// EndFrame implements batch2d.Driver.
func (d *NullDriver) EndFrame() error {
	if !d.inFrame {
		return fmt.Errorf("%w: end", ErrFrameState)
	}
	d.inFrame = false
	d.stats.Frames++
	return nil
}

// UploadBatch implements batch2d.Driver.
func (d *NullDriver) UploadBatch(info batch.Info, vertices []batch.Vertex2D, indices []batch.Index) error {
	if !d.inFrame {
		return fmt.Errorf("%w: upload", ErrFrameState)
	}
	for _, i := range indices {
		if int(i) >= len(vertices) {
			return fmt.Errorf("backend: index %d out of %d vertices", i, len(vertices))
		}
	}
	d.info = info
	d.vertices, d.indices = len(vertices), len(indices)
	d.stats.Batches++
	d.stats.Vertices += len(vertices)
	return nil
}

// DrawIndexed implements batch2d.Driver. Draws outside the uploaded batch
// are ignored.
func (d *NullDriver) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	if !d.inFrame || baseVertex != d.info.BaseVertex {
		return
	}
	first := int(startIndex) - int(d.info.StartIndex)
	if first < 0 || first+int(indexCount) > d.indices {
		return
	}
	d.stats.DrawCalls++
	d.stats.Triangles += int(indexCount / 3)
}

// CreateTexture implements texture.Uploader.
func (d *NullDriver) CreateTexture(t *texture.Texture) error {
	d.textures[t.ID] = image.Pt(t.Width, t.Height)
	return nil
}

// DestroyTexture implements texture.Uploader.
func (d *NullDriver) DestroyTexture(id texture.ID) { delete(d.textures, id) }

// ForgetShader implements Driver.
func (d *NullDriver) ForgetShader(shader.ID) {}

// Close implements Driver.
func (d *NullDriver) Close() {
	d.closed = true
	clear(d.textures)
}

func (d *NullDriver) SetBlendEnable(bool)                                               {}
func (d *NullDriver) SetBlendFactors(_, _, _, _ state.BlendFactor)                      {}
func (d *NullDriver) SetBlendOperations(_, _ state.BlendOp)                             {}
func (d *NullDriver) SetAlphaToCoverage(bool)                                           {}
func (d *NullDriver) SetFillMode(state.FillMode)                                        {}
func (d *NullDriver) SetCullMode(state.CullMode)                                        {}
func (d *NullDriver) SetScissorEnable(bool)                                             {}
func (d *NullDriver) SetDepthBias(int32)                                                {}
func (d *NullDriver) SetSamplerFilter(uint32, state.Filter, state.Filter, state.Filter) {}
func (d *NullDriver) SetSamplerAddress(uint32, state.AddressMode, state.AddressMode, state.AddressMode) {
}
func (d *NullDriver) SetSamplerAnisotropy(uint32, uint8) {}
func (d *NullDriver) SetScissorRect(image.Rectangle)     {}
func (d *NullDriver) SetViewport(image.Rectangle)        {}
func (d *NullDriver) BindTexture(uint32, texture.ID)     {}
func (d *NullDriver) BindPixelShader(shader.ID)          {}
func (d *NullDriver) UploadTransform([2][4]float32)      {}
func (d *NullDriver) UploadColors(_, _ [4]float32)       {}
