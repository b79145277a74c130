package native

import "errors"

// Package errors for the native driver.
var (
	// ErrNilDevice is returned when the driver is created without a device
	// or queue.
	ErrNilDevice = errors.New("native: HAL device or queue is nil")

	// ErrNoHALProvider is returned when a device provider does not expose
	// HAL types.
	ErrNoHALProvider = errors.New("native: provider does not expose HAL device")

	// ErrInvalidDimensions is returned when the target width or height is
	// not positive.
	ErrInvalidDimensions = errors.New("native: invalid dimensions")

	// ErrNoFrame is returned by EndFrame without a matching BeginFrame.
	ErrNoFrame = errors.New("native: no frame in progress")

	// ErrFrameInProgress is returned by BeginFrame while a frame is open.
	ErrFrameInProgress = errors.New("native: frame already in progress")

	// ErrBatchRange is returned for batch data outside the shared buffers.
	ErrBatchRange = errors.New("native: batch out of range")

	// ErrDeviceLost is returned when the GPU device stops responding.
	ErrDeviceLost = errors.New("native: GPU device lost")
)
