package batch2d

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/batch2d/batch"
	"github.com/gogpu/batch2d/command"
	"github.com/gogpu/batch2d/geom"
	"github.com/gogpu/batch2d/texture"
)

// Flush replays everything recorded since the last clearing flush on the
// driver. With clear set, the command stream and batch buffers are emptied
// afterwards; otherwise they are kept, and the next Flush replays them
// again together with anything added in between.
//
// A failing command abandons the rest of the frame. The frame is still
// ended so the driver can begin the next one, and the error is returned;
// the recording is still cleared when clear is set.
func (r *Renderer) Flush(clear bool) error {
	if r.closed {
		return ErrClosed
	}
	r.rec.Flush()

	s := r.rec.Stream()
	var err error
	if s.Count(command.CmdDraw) > 0 {
		err = r.replay(s)
	} else {
		r.stats = Stats{Dropped: r.dropped}
	}

	if clear || s.Count(command.CmdDraw) == 0 {
		r.reset()
	}
	return err
}

// Replay replays the command stream s on the renderer's driver using the
// renderer's batch buffers. It is used to play back streams recorded
// elsewhere, for example in tests.
func (r *Renderer) Replay(s *command.Stream) error {
	if r.closed {
		return ErrClosed
	}
	return r.replay(s)
}

// reset empties the recording and the batch buffers for a new frame.
func (r *Renderer) reset() {
	r.alloc.Reset()
	r.rec.Reset()
	r.dropped = 0
}

// replayer holds the per-frame state of one replay.
type replayer struct {
	r *Renderer

	info   batch.Info
	cursor uint32

	target   image.Rectangle
	viewport image.Rectangle // clipped to target
	// offset moves viewport pixels into the clipped viewport.
	offset    image.Point
	transform geom.Mat3x2
	mul, add  geom.ColorF

	stats Stats
}

func (r *Renderer) replay(s *command.Stream) error {
	w, h := r.driver.TargetSize()
	p := &replayer{
		r:         r,
		target:    image.Rect(0, 0, w, h),
		transform: geom.Identity(),
		mul:       geom.White,
		add:       geom.Transparent,
	}
	p.viewport = p.target

	if err := r.driver.BeginFrame(r.clearColor); err != nil {
		return fmt.Errorf("batch2d: begin frame: %w", err)
	}
	r.scissorBound = false

	for i := range s.Len() {
		if err := p.exec(s.At(i)); err != nil {
			err = fmt.Errorf("batch2d: command %d: %w", i, err)
			if endErr := r.driver.EndFrame(); endErr != nil {
				err = errors.Join(err, fmt.Errorf("batch2d: end frame: %w", endErr))
			}
			return err
		}
	}
	p.stats.Commands = s.Len()
	p.stats.Dropped = r.dropped

	if err := r.driver.EndFrame(); err != nil {
		return fmt.Errorf("batch2d: end frame: %w", err)
	}
	r.stats = p.stats
	Logger().Debug("batch2d: frame flushed",
		"commands", p.stats.Commands,
		"drawCalls", p.stats.DrawCalls,
		"triangles", p.stats.Triangles,
		"batches", p.stats.Batches,
		"stateChanges", p.stats.StateChanges,
		"dropped", p.stats.Dropped)
	return nil
}

func (p *replayer) exec(c command.Command) error {
	r := p.r
	d := r.driver
	switch c := c.(type) {
	case command.DrawCommand:
		d.DrawIndexed(c.IndexCount, p.info.StartIndex+p.cursor, p.info.BaseVertex)
		p.cursor += c.IndexCount
		p.stats.DrawCalls++
		p.stats.Triangles += int(c.IndexCount / 3)

	case command.NextBatchCommand:
		if int(c.Batch) >= r.alloc.Count() {
			return fmt.Errorf("batch %d not allocated", c.Batch)
		}
		region, info := r.alloc.Batch(c.Batch)
		if err := d.UploadBatch(info, region.Vertices, region.Indices); err != nil {
			return fmt.Errorf("upload batch %d: %w", c.Batch, err)
		}
		p.info = info
		p.cursor = 0
		p.stats.Batches++

	case command.BlendStateCommand:
		p.count(r.blend.Set(c.State))

	case command.RasterizerStateCommand:
		p.count(r.rasterizer.Set(c.State))

	case command.SamplerStateCommand:
		p.count(r.sampler.Set(c.Slot, c.State))

	case command.ScissorRectCommand:
		if r.scissorBound && r.scissor == c.Rect {
			return nil
		}
		d.SetScissorRect(c.Rect)
		r.scissor, r.scissorBound = c.Rect, true
		p.stats.StateChanges++

	case command.ViewportCommand:
		vp := p.target
		if c.Viewport.Custom {
			vp = c.Viewport.Rect
		}
		p.viewport = vp.Intersect(p.target)
		p.offset = vp.Min.Sub(p.viewport.Min)
		d.SetViewport(p.viewport)
		p.uploadTransform()
		p.stats.StateChanges++

	case command.TransformCommand:
		p.transform = c.Matrix
		p.uploadTransform()

	case command.PixelShaderCommand:
		if !r.shaders.Contains(c.Shader) {
			Logger().Debug("batch2d: unknown pixel shader ignored", "id", c.Shader)
			return nil
		}
		d.BindPixelShader(c.Shader)
		p.stats.StateChanges++

	case command.PSTextureCommand:
		id := c.Texture
		if !r.textures.Contains(id) {
			id = texture.Null
		}
		d.BindTexture(c.Slot, id)
		p.stats.StateChanges++

	case command.ColorMulCommand:
		p.mul = c.Color
		d.UploadColors(p.mul.Float4(), p.add.Float4())

	case command.ColorAddCommand:
		p.add = c.Color
		d.UploadColors(p.mul.Float4(), p.add.Float4())
	}
	return nil
}

func (p *replayer) count(changed bool) {
	if changed {
		p.stats.StateChanges++
	}
}

// uploadTransform writes the current transform followed by the mapping
// from viewport pixels to clip space. A viewport reaching past the target
// is drawn through its clipped part, shifted so that shapes keep their
// place on the target.
func (p *replayer) uploadTransform() {
	w, h := p.viewport.Dx(), p.viewport.Dy()
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	m := p.transform
	if p.offset != (image.Point{}) {
		m = m.Multiply(geom.Translate(float64(p.offset.X), float64(p.offset.Y)))
	}
	p.r.driver.UploadTransform(TransformConstants(m.Multiply(geom.Screen(float64(w), float64(h)))))
}

// TransformConstants packs an affine transform into the two constant
// vectors read by the vertex shader.
func TransformConstants(m geom.Mat3x2) [2][4]float32 {
	return [2][4]float32{
		{float32(m.M11), float32(m.M12), float32(m.M31), float32(m.M32)},
		{float32(m.M21), float32(m.M22), 0, 1},
	}
}
