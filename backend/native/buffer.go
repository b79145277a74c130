//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// minBufferSize is the smallest GPU buffer the driver creates.
const minBufferSize = 64 << 10

// growBuffer is a GPU buffer that is recreated larger when a frame needs
// more space than it has. Contents are rewritten every frame.
type growBuffer struct {
	label string
	usage gputypes.BufferUsage

	buf  hal.Buffer
	size uint64
}

// ensure makes the buffer hold at least n bytes. It reports whether the
// buffer was recreated, which invalidates bind groups referencing it.
func (b *growBuffer) ensure(device hal.Device, n uint64) (bool, error) {
	if b.buf != nil && b.size >= n {
		return false, nil
	}
	size := max(b.size, minBufferSize)
	for size < n {
		size *= 2
	}
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label,
		Size:  size,
		Usage: b.usage | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return false, fmt.Errorf("create %s (%d bytes): %w", b.label, size, err)
	}
	if b.buf != nil {
		device.DestroyBuffer(b.buf)
	}
	b.buf, b.size = buf, size
	slogger().Debug("native: buffer grown", "label", b.label, "size", size)
	return true, nil
}

// write uploads data, padded to a multiple of four bytes.
func (b *growBuffer) write(queue hal.Queue, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if pad := len(data) % 4; pad != 0 {
		data = append(data, make([]byte, 4-pad)...)
	}
	if err := queue.WriteBuffer(b.buf, 0, data); err != nil {
		return fmt.Errorf("write %s: %w", b.label, err)
	}
	return nil
}

func (b *growBuffer) destroy(device hal.Device) {
	if b.buf != nil {
		device.DestroyBuffer(b.buf)
		b.buf, b.size = nil, 0
	}
}
