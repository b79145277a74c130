// Package backend selects the driver a batch2d Renderer replays into.
//
// Drivers are registered via init() functions and opened by name at
// runtime. The null driver is registered by this package; importing
// backend/native registers the GPU driver:
//
//	import _ "github.com/gogpu/batch2d/backend/native"
//
// # Driver Selection
//
// Use OpenDefault to get the best driver the options can serve, or Open
// to request one by name:
//
//	shaders, _ := shader.NewManager(shader.Config{})
//	drv, name, err := backend.OpenDefault(backend.Options{
//		Width: 800, Height: 600, Shaders: shaders, Provider: provider,
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer drv.Close()
//
// Without a Provider the native backend is unavailable and OpenDefault
// falls back to the null driver.
//
// # Available Backends
//
// - "native": wgpu HAL device from a gpucontext.DeviceProvider
// - "null": counts work without a GPU (always available)
package backend
