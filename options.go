package batch2d

import "github.com/gogpu/batch2d/geom"

// Option configures a Renderer during creation.
//
// Example:
//
//	cfg, err := batch2d.LoadConfig("renderer.toml")
//	if err != nil {
//	    return err
//	}
//	r, err := batch2d.New(driver, textures, shaders, batch2d.WithConfig(cfg))
type Option func(*Config)

// WithConfig replaces the whole configuration. Later options still apply.
func WithConfig(c Config) Option {
	return func(o *Config) {
		*o = c
	}
}

// WithBatchCapacity sets the number of vertices and indices per batch
// region. Values out of range are clamped by the batch allocator.
func WithBatchCapacity(vertices, indices int) Option {
	return func(o *Config) {
		o.VertexCapacity = vertices
		o.IndexCapacity = indices
	}
}

// WithMaxBatches bounds the number of batch regions per frame.
func WithMaxBatches(n int) Option {
	return func(o *Config) {
		o.MaxBatches = n
	}
}

// WithClearColor sets the color the target is cleared to on every flush.
func WithClearColor(c geom.ColorF) Option {
	return func(o *Config) {
		o.ClearColor = [4]float64{c.R, c.G, c.B, c.A}
	}
}
