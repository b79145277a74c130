package batch2d

import "errors"

var (
	// ErrNilDriver is returned by New when no driver is given.
	ErrNilDriver = errors.New("batch2d: nil driver")

	// ErrGraphicsInit wraps driver failures while creating a Renderer.
	ErrGraphicsInit = errors.New("batch2d: graphics initialization failed")

	// ErrClosed is returned by Flush after Close.
	ErrClosed = errors.New("batch2d: renderer closed")

	// ErrUnknownConfigFormat is returned by LoadConfig for files that are
	// neither TOML nor YAML.
	ErrUnknownConfigFormat = errors.New("batch2d: unknown config format")
)
