//go:build !nogpu

package native

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch2d/batch"
	"github.com/gogpu/batch2d/state"
	"github.com/gogpu/batch2d/texture"
)

// constantsAlign is the dynamic uniform offset alignment WebGPU guarantees.
const constantsAlign = 256

// boundState is the state the driver has been told to bind. It survives
// frames, like the state of a device context.
type boundState struct {
	key           pipelineKey
	scissorEnable bool
	scissor       image.Rectangle
	viewport      image.Rectangle
	samplers      [state.MaxSamplerCount]state.SamplerState
	textures      [state.MaxSamplerCount]texture.ID

	constants      [4][4]float32
	constantsDirty bool
}

// drawOp is one recorded indexed draw with the state it was issued under.
type drawOp struct {
	key      pipelineKey
	bind     bindKey
	viewport image.Rectangle
	scissor  image.Rectangle

	constantsOffset uint32
	indexCount      uint32
	firstIndex      uint32
	baseVertex      int32
}

// frameState holds what is recorded between BeginFrame and EndFrame.
type frameState struct {
	open  bool
	clear [4]float32

	ops       []drawOp
	vertices  []byte
	indices   []byte
	constants []byte

	constantsOffset uint32
}

func (f *frameState) reset(clear [4]float32) {
	f.open = true
	f.clear = clear
	f.ops = f.ops[:0]
	f.vertices = f.vertices[:0]
	f.indices = f.indices[:0]
	f.constants = f.constants[:0]
	f.constantsOffset = 0
}

// BeginFrame starts recording a frame that clears the target to clear.
func (d *Driver) BeginFrame(clear [4]float32) error {
	if d.frame.open {
		return ErrFrameInProgress
	}
	d.freeSubmissions(false)
	d.frame.reset(clear)

	full := image.Rect(0, 0, d.target.width, d.target.height)
	d.bound.viewport = full
	d.bound.scissor = full
	d.bound.constantsDirty = true
	return nil
}

// UploadBatch copies a batch region to the place info gives it in the
// shared buffers.
func (d *Driver) UploadBatch(info batch.Info, vertices []batch.Vertex2D, indices []batch.Index) error {
	if !d.frame.open {
		return ErrNoFrame
	}
	if info.BaseVertex < 0 {
		return fmt.Errorf("%w: base vertex %d", ErrBatchRange, info.BaseVertex)
	}

	vOff := int(info.BaseVertex) * batch.VertexSize
	vEnd := vOff + len(vertices)*batch.VertexSize
	d.frame.vertices = growBytes(d.frame.vertices, vEnd)
	for i, v := range vertices {
		putVertex(d.frame.vertices[vOff+i*batch.VertexSize:], v)
	}

	iOff := int(info.StartIndex) * batch.IndexSize
	iEnd := iOff + len(indices)*batch.IndexSize
	d.frame.indices = growBytes(d.frame.indices, iEnd)
	for i, idx := range indices {
		binary.LittleEndian.PutUint16(d.frame.indices[iOff+i*batch.IndexSize:], idx)
	}
	return nil
}

// growBytes extends b to at least n bytes, zeroing new space.
func growBytes(b []byte, n int) []byte {
	if n <= len(b) {
		return b
	}
	if n <= cap(b) {
		old := len(b)
		b = b[:n]
		clear(b[old:])
		return b
	}
	nb := make([]byte, n, max(n, 2*cap(b)))
	copy(nb, b)
	return nb
}

// putVertex writes v in the layout of vertexLayout.
func putVertex(buf []byte, v batch.Vertex2D) {
	fs := [8]float32{v.Pos[0], v.Pos[1], v.Tex[0], v.Tex[1], v.Color[0], v.Color[1], v.Color[2], v.Color[3]}
	for i, f := range fs {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
}

// DrawIndexed records a draw with the currently bound state.
func (d *Driver) DrawIndexed(indexCount, startIndex uint32, baseVertex int32) {
	if !d.frame.open {
		slogger().Warn("native: draw outside frame ignored", "indices", indexCount)
		return
	}
	if indexCount == 0 {
		return
	}
	full := image.Rect(0, 0, d.target.width, d.target.height)
	viewport := d.bound.viewport.Intersect(full)
	if viewport.Empty() {
		return
	}
	scissor := full
	if d.bound.scissorEnable {
		scissor = d.bound.scissor.Intersect(full)
	}

	if d.bound.constantsDirty {
		d.frame.constantsOffset = uint32(len(d.frame.constants)) //nolint:gosec // bounded by frame size
		d.frame.constants = growBytes(d.frame.constants, len(d.frame.constants)+constantsAlign)
		buf := d.frame.constants[d.frame.constantsOffset:]
		for i, row := range d.bound.constants {
			for j, f := range row {
				binary.LittleEndian.PutUint32(buf[(i*4+j)*4:], math.Float32bits(f))
			}
		}
		d.bound.constantsDirty = false
	}

	d.frame.ops = append(d.frame.ops, drawOp{
		key:             d.bound.key,
		bind:            bindKey{tex: d.bound.textures[0], sampler: d.bound.samplers[0]},
		viewport:        viewport,
		scissor:         scissor,
		constantsOffset: d.frame.constantsOffset,
		indexCount:      indexCount,
		firstIndex:      startIndex,
		baseVertex:      baseVertex,
	})
}

// EndFrame uploads the recorded data and encodes and submits the frame's
// render pass.
func (d *Driver) EndFrame() error {
	if !d.frame.open {
		return ErrNoFrame
	}
	d.frame.open = false

	stats := FrameStats{
		VertexBytes:    len(d.frame.vertices),
		IndexBytes:     len(d.frame.indices),
		ConstantBlocks: len(d.frame.constants) / constantsAlign,
	}
	missesBefore := d.pipelines.misses

	if err := d.upload(); err != nil {
		return fmt.Errorf("native: %w", err)
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "batch2d_encoder"})
	if err != nil {
		return fmt.Errorf("native: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("batch2d_frame"); err != nil {
		return fmt.Errorf("native: begin encoding: %w", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label:            "batch2d_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{d.target.attachment(d.frame.clear)},
	})
	err = d.encode(rp, &stats)
	rp.End()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("native: %w", err)
	}

	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("native: end encoding: %w", err)
	}
	index, err := d.queue.Submit([]hal.CommandBuffer{cmd})
	if err != nil {
		d.device.FreeCommandBuffer(cmd)
		return fmt.Errorf("%w: submit: %w", ErrDeviceLost, err)
	}
	d.pending = append(d.pending, submission{cmd: cmd, index: index})

	stats.PipelinesCreated = d.pipelines.misses - missesBefore
	d.stats = stats
	slogger().Debug("native: frame submitted",
		"draws", stats.DrawCalls, "pipelineSwitches", stats.PipelineSwitches,
		"vertexBytes", stats.VertexBytes, "indexBytes", stats.IndexBytes)
	return nil
}

// upload writes the frame's vertices, indices and constants to the GPU.
func (d *Driver) upload() error {
	if len(d.frame.ops) == 0 {
		return nil
	}
	if _, err := d.vertices.ensure(d.device, uint64(len(d.frame.vertices))); err != nil {
		return err
	}
	if _, err := d.indices.ensure(d.device, uint64(len(d.frame.indices))); err != nil {
		return err
	}
	grown, err := d.uniforms.ensure(d.device, uint64(len(d.frame.constants)))
	if err != nil {
		return err
	}
	if grown || d.constantsGroup == nil {
		if err := d.constantsBindGroup(); err != nil {
			return err
		}
	}

	if err := d.vertices.write(d.queue, d.frame.vertices); err != nil {
		return err
	}
	if err := d.indices.write(d.queue, d.frame.indices); err != nil {
		return err
	}
	return d.uniforms.write(d.queue, d.frame.constants)
}

// encode records the frame's draws into rp, setting only state that
// differs from the previous draw.
func (d *Driver) encode(rp hal.RenderPassEncoder, stats *FrameStats) error {
	if len(d.frame.ops) == 0 {
		return nil
	}
	rp.SetVertexBuffer(0, d.vertices.buf, 0)
	rp.SetIndexBuffer(d.indices.buf, gputypes.IndexFormatUint16, 0)

	first := true
	var prev drawOp
	for _, op := range d.frame.ops {
		if first || op.key != prev.key {
			ps, _ := d.shaders.Get(op.key.shader)
			if ps == nil {
				return fmt.Errorf("no shader for id %d", op.key.shader)
			}
			pipeline, err := d.pipelines.get(op.key, ps, d.config.Format, d.config.SampleCount)
			if err != nil {
				return err
			}
			rp.SetPipeline(pipeline)
			stats.PipelineSwitches++
		}

		if first || op.constantsOffset != prev.constantsOffset {
			rp.SetBindGroup(0, d.constantsGroup, []uint32{op.constantsOffset})
		}
		if first || op.bind != prev.bind {
			bg, err := d.textureBindGroup(op.bind)
			if err != nil {
				return err
			}
			rp.SetBindGroup(1, bg, nil)
			stats.BindGroupChanges++
		}

		if first || op.viewport != prev.viewport {
			v := op.viewport
			rp.SetViewport(float32(v.Min.X), float32(v.Min.Y), float32(v.Dx()), float32(v.Dy()), 0, 1)
		}
		if first || op.scissor != prev.scissor {
			s := op.scissor
			rp.SetScissorRect(uint32(s.Min.X), uint32(s.Min.Y), uint32(s.Dx()), uint32(s.Dy())) //nolint:gosec // clipped to the target
		}

		rp.DrawIndexed(op.indexCount, 1, op.firstIndex, op.baseVertex, 0)
		stats.DrawCalls++
		prev, first = op, false
	}
	return nil
}
