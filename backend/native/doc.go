// Package native executes batch2d command streams on a wgpu HAL device.
//
// Driver implements batch2d.Driver and texture.Uploader. Each frame the
// renderer replays its command stream into the driver: state changes are
// tracked, batch regions are copied into staging memory, and draws are
// recorded with the state they were issued under. EndFrame uploads the
// shared vertex, index and constant buffers and encodes every draw into a
// single render pass.
//
// Pipelines are built on first use, keyed by pixel shader, blend state and
// cull mode. Textures and samplers are combined into cached bind groups;
// only slot 0 is sampled by the shader prelude.
//
// Typical setup:
//
//	var drv *native.Driver
//	shaders, _ := shader.NewManager(shader.Config{
//	    OnRelease: func(id shader.ID) { drv.ForgetShader(id) },
//	})
//	drv, _ = native.New(device, queue, shaders, native.DefaultConfig())
//	textures, _ := texture.NewManager(drv, texture.DefaultConfig())
//	r, _ := batch2d.New(drv, textures, shaders)
//
// Build with the nogpu tag to exclude the package from GPU-less builds.
package native
