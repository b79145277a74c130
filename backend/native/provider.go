//go:build !nogpu

package native

import (
	"fmt"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/batch2d/backend"
)

// init registers the native backend on package import.
func init() {
	backend.Register(backend.BackendNative, func(o backend.Options) (backend.Driver, error) {
		if o.Provider == nil {
			return nil, fmt.Errorf("%w: no device provider", backend.ErrBackendNotAvailable)
		}
		config := DefaultConfig()
		config.Width, config.Height = o.Width, o.Height
		d, err := NewFromProvider(o.Provider, o.Shaders, config)
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

var _ backend.Driver = (*Driver)(nil)

// Provider is a gpucontext.DeviceProvider over a HAL device. It also
// exposes HalDevice and HalQueue, which NewFromProvider requires.
type Provider struct {
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
	info   gpucontext.AdapterInfo
}

var _ gpucontext.DeviceProvider = (*Provider)(nil)

// NewProvider wraps device and queue. format may be undefined for
// headless use.
func NewProvider(device hal.Device, queue hal.Queue, format gputypes.TextureFormat, info gpucontext.AdapterInfo) *Provider {
	return &Provider{device: device, queue: queue, format: format, info: info}
}

// Headless opens the noop HAL device, which accepts every call and
// executes nothing. It runs the full driver path without a GPU.
func Headless() (*Provider, error) {
	inst, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("native: noop instance: %w", err)
	}
	adapters := inst.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, fmt.Errorf("native: noop instance has no adapter")
	}
	od, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("native: open noop device: %w", err)
	}
	return NewProvider(od.Device, od.Queue, gputypes.TextureFormatUndefined,
		gpucontext.AdapterInfo{Name: "noop", Type: gpucontext.AdapterTypeSoftware}), nil
}

func (p *Provider) Device() gpucontext.Device             { return p.device }
func (p *Provider) Queue() gpucontext.Queue               { return p.queue }
func (p *Provider) SurfaceFormat() gputypes.TextureFormat { return p.format }
func (p *Provider) Adapter() gpucontext.Adapter           { return nil }
func (p *Provider) AdapterInfo() gpucontext.AdapterInfo   { return p.info }
func (p *Provider) HalDevice() any                        { return p.device }
func (p *Provider) HalQueue() any                         { return p.queue }
