package state

import "fmt"

// BlendFactor selects a blend equation operand.
type BlendFactor uint8

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcColor
	BlendInvSrcColor
	BlendSrcAlpha
	BlendInvSrcAlpha
	BlendDestAlpha
	BlendInvDestAlpha
	BlendDestColor
	BlendInvDestColor
	BlendSrcAlphaSat
	BlendConstant
	BlendInvConstant
)

var blendFactorNames = [...]string{
	BlendZero:         "Zero",
	BlendOne:          "One",
	BlendSrcColor:     "SrcColor",
	BlendInvSrcColor:  "InvSrcColor",
	BlendSrcAlpha:     "SrcAlpha",
	BlendInvSrcAlpha:  "InvSrcAlpha",
	BlendDestAlpha:    "DestAlpha",
	BlendInvDestAlpha: "InvDestAlpha",
	BlendDestColor:    "DestColor",
	BlendInvDestColor: "InvDestColor",
	BlendSrcAlphaSat:  "SrcAlphaSat",
	BlendConstant:     "Constant",
	BlendInvConstant:  "InvConstant",
}

// String returns the name of the factor.
func (f BlendFactor) String() string {
	if int(f) < len(blendFactorNames) {
		return blendFactorNames[f]
	}
	return "Unknown"
}

// BlendOp combines the source and destination terms.
type BlendOp uint8

const (
	BlendOpAdd BlendOp = iota
	BlendOpSubtract
	BlendOpRevSubtract
	BlendOpMin
	BlendOpMax
)

var blendOpNames = [...]string{
	BlendOpAdd:         "Add",
	BlendOpSubtract:    "Subtract",
	BlendOpRevSubtract: "RevSubtract",
	BlendOpMin:         "Min",
	BlendOpMax:         "Max",
}

// String returns the name of the operation.
func (o BlendOp) String() string {
	if int(o) < len(blendOpNames) {
		return blendOpNames[o]
	}
	return "Unknown"
}

// BlendState describes color blending for the render target.
type BlendState struct {
	Enable bool

	SrcColor BlendFactor
	DstColor BlendFactor
	ColorOp  BlendOp

	SrcAlpha BlendFactor
	DstAlpha BlendFactor
	AlphaOp  BlendOp

	AlphaToCoverage bool
}

// Blend presets.
var (
	// BlendDefault is straight (non-premultiplied) alpha blending.
	BlendDefault = BlendState{
		Enable:   true,
		SrcColor: BlendSrcAlpha, DstColor: BlendInvSrcAlpha, ColorOp: BlendOpAdd,
		SrcAlpha: BlendZero, DstAlpha: BlendOne, AlphaOp: BlendOpAdd,
	}

	// BlendPremultiplied expects colors already multiplied by alpha.
	BlendPremultiplied = BlendState{
		Enable:   true,
		SrcColor: BlendOne, DstColor: BlendInvSrcAlpha, ColorOp: BlendOpAdd,
		SrcAlpha: BlendZero, DstAlpha: BlendOne, AlphaOp: BlendOpAdd,
	}

	// BlendOpaque writes source colors unchanged.
	BlendOpaque = BlendState{
		Enable:   false,
		SrcColor: BlendSrcAlpha, DstColor: BlendInvSrcAlpha, ColorOp: BlendOpAdd,
		SrcAlpha: BlendZero, DstAlpha: BlendOne, AlphaOp: BlendOpAdd,
	}

	// BlendAdditive adds source colors weighted by alpha.
	BlendAdditive = BlendState{
		Enable:   true,
		SrcColor: BlendSrcAlpha, DstColor: BlendOne, ColorOp: BlendOpAdd,
		SrcAlpha: BlendZero, DstAlpha: BlendOne, AlphaOp: BlendOpAdd,
	}

	// BlendSubtractive subtracts source colors weighted by alpha.
	BlendSubtractive = BlendState{
		Enable:   true,
		SrcColor: BlendSrcAlpha, DstColor: BlendOne, ColorOp: BlendOpRevSubtract,
		SrcAlpha: BlendZero, DstAlpha: BlendOne, AlphaOp: BlendOpAdd,
	}

	// BlendMultiplicative multiplies the destination by the source color.
	BlendMultiplicative = BlendState{
		Enable:   true,
		SrcColor: BlendZero, DstColor: BlendSrcColor, ColorOp: BlendOpAdd,
		SrcAlpha: BlendZero, DstAlpha: BlendOne, AlphaOp: BlendOpAdd,
	}
)

// String returns a compact description of the state.
func (s BlendState) String() string {
	if !s.Enable {
		return "Blend[off]"
	}
	return fmt.Sprintf("Blend[%s*src %s %s*dst, alpha %s*src %s %s*dst, a2c=%t]",
		s.SrcColor, s.ColorOp, s.DstColor, s.SrcAlpha, s.AlphaOp, s.DstAlpha, s.AlphaToCoverage)
}

// BlendApplier issues blend state changes to a driver.
type BlendApplier interface {
	SetBlendEnable(enable bool)
	SetBlendFactors(srcColor, dstColor, srcAlpha, dstAlpha BlendFactor)
	SetBlendOperations(color, alpha BlendOp)
	SetAlphaToCoverage(enable bool)
}

// BlendCache tracks the blend state bound on a driver.
type BlendCache struct {
	applier BlendApplier
	current BlendState
	stats   Stats
}

// NewBlendCache creates a cache and brings the driver to BlendDefault.
func NewBlendCache(applier BlendApplier) *BlendCache {
	c := &BlendCache{applier: applier, current: BlendDefault}
	applier.SetBlendEnable(BlendDefault.Enable)
	applier.SetBlendFactors(BlendDefault.SrcColor, BlendDefault.DstColor, BlendDefault.SrcAlpha, BlendDefault.DstAlpha)
	applier.SetBlendOperations(BlendDefault.ColorOp, BlendDefault.AlphaOp)
	applier.SetAlphaToCoverage(BlendDefault.AlphaToCoverage)
	c.stats.DriverCalls = 4
	return c
}

// Set binds s, issuing only the calls for fields that differ from the
// current state. It reports whether any driver call was made.
func (c *BlendCache) Set(s BlendState) bool {
	c.stats.Sets++
	if s == c.current {
		c.stats.Skipped++
		return false
	}

	cur := c.current
	if s.Enable != cur.Enable {
		c.applier.SetBlendEnable(s.Enable)
		c.stats.DriverCalls++
	}
	if s.SrcColor != cur.SrcColor || s.DstColor != cur.DstColor ||
		s.SrcAlpha != cur.SrcAlpha || s.DstAlpha != cur.DstAlpha {
		c.applier.SetBlendFactors(s.SrcColor, s.DstColor, s.SrcAlpha, s.DstAlpha)
		c.stats.DriverCalls++
	}
	if s.ColorOp != cur.ColorOp || s.AlphaOp != cur.AlphaOp {
		c.applier.SetBlendOperations(s.ColorOp, s.AlphaOp)
		c.stats.DriverCalls++
	}
	if s.AlphaToCoverage != cur.AlphaToCoverage {
		c.applier.SetAlphaToCoverage(s.AlphaToCoverage)
		c.stats.DriverCalls++
	}

	c.current = s
	return true
}

// Current returns the state bound on the driver.
func (c *BlendCache) Current() BlendState {
	return c.current
}

// Stats returns cache counters.
func (c *BlendCache) Stats() Stats {
	return c.stats
}
