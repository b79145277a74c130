package state

import "fmt"

// FillMode selects how triangles are rasterized.
type FillMode uint8

const (
	FillSolid FillMode = iota
	FillWireframe
)

// String returns the name of the fill mode.
func (m FillMode) String() string {
	switch m {
	case FillSolid:
		return "Solid"
	case FillWireframe:
		return "Wireframe"
	default:
		return "Unknown"
	}
}

// CullMode selects which triangle faces are discarded.
// Front faces are counter-clockwise; the mapping is the same at
// initialization and on every update.
type CullMode uint8

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

// String returns the name of the cull mode.
func (m CullMode) String() string {
	switch m {
	case CullNone:
		return "None"
	case CullFront:
		return "Front"
	case CullBack:
		return "Back"
	default:
		return "Unknown"
	}
}

// RasterizerState describes triangle rasterization.
type RasterizerState struct {
	FillMode      FillMode
	CullMode      CullMode
	ScissorEnable bool
	DepthBias     int32
}

// Rasterizer presets.
var (
	RasterizerDefault2D        = RasterizerState{FillMode: FillSolid, CullMode: CullNone}
	RasterizerWireframe2D      = RasterizerState{FillMode: FillWireframe, CullMode: CullNone}
	RasterizerSolidCullBack    = RasterizerState{FillMode: FillSolid, CullMode: CullBack}
	RasterizerSolidCullFront   = RasterizerState{FillMode: FillSolid, CullMode: CullFront}
	RasterizerDefault2DScissor = RasterizerState{FillMode: FillSolid, CullMode: CullNone, ScissorEnable: true}
)

// String returns a compact description of the state.
func (s RasterizerState) String() string {
	return fmt.Sprintf("Rasterizer[%s, cull=%s, scissor=%t, bias=%d]",
		s.FillMode, s.CullMode, s.ScissorEnable, s.DepthBias)
}

// RasterizerApplier issues rasterizer state changes to a driver.
type RasterizerApplier interface {
	SetFillMode(mode FillMode)
	SetCullMode(mode CullMode)
	SetScissorEnable(enable bool)
	SetDepthBias(bias int32)
}

// RasterizerCache tracks the rasterizer state bound on a driver.
type RasterizerCache struct {
	applier RasterizerApplier
	current RasterizerState
	stats   Stats
}

// NewRasterizerCache creates a cache and brings the driver to
// RasterizerDefault2D.
func NewRasterizerCache(applier RasterizerApplier) *RasterizerCache {
	def := RasterizerDefault2D
	c := &RasterizerCache{applier: applier, current: def}
	applier.SetFillMode(def.FillMode)
	applier.SetCullMode(def.CullMode)
	applier.SetScissorEnable(def.ScissorEnable)
	applier.SetDepthBias(def.DepthBias)
	c.stats.DriverCalls = 4
	return c
}

// Set binds s, issuing only the calls for fields that differ from the
// current state. It reports whether any driver call was made.
func (c *RasterizerCache) Set(s RasterizerState) bool {
	c.stats.Sets++
	if s == c.current {
		c.stats.Skipped++
		return false
	}

	if s.FillMode != c.current.FillMode {
		c.applier.SetFillMode(s.FillMode)
		c.stats.DriverCalls++
	}
	if s.CullMode != c.current.CullMode {
		c.applier.SetCullMode(s.CullMode)
		c.stats.DriverCalls++
	}
	if s.ScissorEnable != c.current.ScissorEnable {
		c.applier.SetScissorEnable(s.ScissorEnable)
		c.stats.DriverCalls++
	}
	if s.DepthBias != c.current.DepthBias {
		c.applier.SetDepthBias(s.DepthBias)
		c.stats.DriverCalls++
	}

	c.current = s
	return true
}

// Current returns the state bound on the driver.
func (c *RasterizerCache) Current() RasterizerState {
	return c.current
}

// Stats returns cache counters.
func (c *RasterizerCache) Stats() Stats {
	return c.stats
}
