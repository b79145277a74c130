package backend

import (
	"errors"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/shader"
	"github.com/gogpu/batch2d/texture"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not
	// registered or cannot run with the given options.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoShaders is returned when Options carries no shader lookup.
	ErrNoShaders = errors.New("backend: nil shader lookup")
)

// Driver is a batch2d driver that also owns GPU textures.
//
// Drivers are created via Open or OpenDefault and must be closed after
// the renderer and texture manager using them.
type Driver interface {
	batch2d.Driver
	texture.Uploader

	// ForgetShader drops everything built for a released pixel shader.
	ForgetShader(id shader.ID)

	// Close releases all driver resources.
	Close()
}

// ShaderLookup resolves pixel shader IDs to compiled shaders.
// *shader.Manager implements it.
type ShaderLookup interface {
	Get(id shader.ID) (*shader.PixelShader, bool)
}

// Options configures a driver created from the registry.
type Options struct {
	// Width and Height of the render target.
	Width, Height int

	// Shaders resolves the pixel shaders bound during replay.
	Shaders ShaderLookup

	// Provider supplies the GPU device. GPU backends are unavailable
	// without one.
	Provider gpucontext.DeviceProvider
}

// Factory creates a driver from options. It returns ErrBackendNotAvailable
// when the options cannot be served, so OpenDefault can try the next one.
type Factory func(Options) (Driver, error)
