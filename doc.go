// Package batch2d provides a deferred, batched 2D renderer.
//
// # Overview
//
// Shapes are tessellated into triangles as they are added, packed into
// shared vertex and index buffers, and recorded together with state changes
// into an ordered command stream. Flush replays the stream against a
// [Driver], skipping state changes that would not change what is bound.
//
// # Quick Start
//
//	import "github.com/gogpu/batch2d"
//
//	r, err := batch2d.New(driver, textures, shaders)
//	if err != nil {
//	    return err
//	}
//
//	r.AddRect(geom.R(10, 10, 100, 50), geom.RGB(1, 0, 0))
//	r.AddCircle(geom.V(200, 200), 40, geom.White, geom.White)
//
//	r.SetBlendState(state.BlendAdditive)
//	r.AddLine(batch2d.LineCapRound, geom.V(0, 0), geom.V(300, 300), 4,
//	    [2]geom.ColorF{geom.White, geom.Black})
//
//	if err := r.Flush(true); err != nil {
//	    return err
//	}
//
// # Architecture
//
// The library is organized into:
//   - Renderer: drawing API and replay (this package)
//   - command: the command stream and the coalescing recorder
//   - batch: vertex and index buffer regions
//   - state: blend, rasterizer and sampler state caches
//   - handle: ID tables with a null object
//   - texture, shader: resource managers built on handle tables
//   - resource: creation requests served on the render goroutine
//   - backend/native: a Driver over gogpu/wgpu
//
// # Coordinate System
//
// Uses standard computer graphics coordinates:
//   - Origin (0,0) at top-left
//   - X increases right
//   - Y increases down
//   - Angles in radians, 0 is up, increases clockwise
//
// # Threading
//
// A Renderer is owned by one goroutine, the render goroutine. Textures may
// be requested from other goroutines with texture.Manager.CreateAsync; the
// requests are served by texture.Manager.Update on the render goroutine.
package batch2d

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
