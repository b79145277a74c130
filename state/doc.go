// Package state describes fixed-function GPU state (blend, rasterizer,
// sampler) and caches that mirror what has been issued to a driver.
//
// Each cache keeps the state currently bound on the driver. Set compares the
// requested state with the cached one and forwards only the fields that
// changed, through a narrow applier interface implemented by the driver.
// Nothing else may change the driver's fixed-function state, otherwise the
// cache no longer reflects the GPU.
//
// Caches are not safe for concurrent use; they belong to the render goroutine.
package state

// Stats counts cache activity.
type Stats struct {
	// Sets is the number of Set calls.
	Sets uint64

	// Skipped is the number of Set calls that matched the current state.
	Skipped uint64

	// DriverCalls is the number of applier calls issued, including the
	// initial calls made by the constructor.
	DriverCalls uint64
}
