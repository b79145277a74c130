package state

import "fmt"

// MaxSamplerCount is the number of sampler slots per shader stage.
const MaxSamplerCount = 8

// AddressMode selects how texture coordinates outside [0, 1] are resolved.
type AddressMode uint8

const (
	AddressRepeat AddressMode = iota
	AddressMirror
	AddressClamp
)

var addressModeNames = [...]string{
	AddressRepeat: "Repeat",
	AddressMirror: "Mirror",
	AddressClamp:  "Clamp",
}

// String returns the name of the address mode.
func (m AddressMode) String() string {
	if int(m) < len(addressModeNames) {
		return addressModeNames[m]
	}
	return "Unknown"
}

// Filter selects texel filtering.
type Filter uint8

const (
	FilterNearest Filter = iota
	FilterLinear
)

// String returns the name of the filter.
func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "Nearest"
	case FilterLinear:
		return "Linear"
	default:
		return "Unknown"
	}
}

// SamplerState describes texture sampling for one slot.
type SamplerState struct {
	AddressU AddressMode
	AddressV AddressMode
	AddressW AddressMode

	MinFilter Filter
	MagFilter Filter
	MipFilter Filter

	// MaxAnisotropy is 1 when anisotropic filtering is off.
	MaxAnisotropy uint8
}

// Sampler presets.
var (
	SamplerDefault2D = SamplerState{
		AddressU: AddressClamp, AddressV: AddressClamp, AddressW: AddressClamp,
		MinFilter: FilterLinear, MagFilter: FilterLinear, MipFilter: FilterLinear,
		MaxAnisotropy: 1,
	}
	SamplerRepeatLinear = SamplerState{
		AddressU: AddressRepeat, AddressV: AddressRepeat, AddressW: AddressRepeat,
		MinFilter: FilterLinear, MagFilter: FilterLinear, MipFilter: FilterLinear,
		MaxAnisotropy: 1,
	}
	SamplerClampNearest = SamplerState{
		AddressU: AddressClamp, AddressV: AddressClamp, AddressW: AddressClamp,
		MinFilter: FilterNearest, MagFilter: FilterNearest, MipFilter: FilterNearest,
		MaxAnisotropy: 1,
	}
	SamplerRepeatNearest = SamplerState{
		AddressU: AddressRepeat, AddressV: AddressRepeat, AddressW: AddressRepeat,
		MinFilter: FilterNearest, MagFilter: FilterNearest, MipFilter: FilterNearest,
		MaxAnisotropy: 1,
	}
	SamplerMirrorLinear = SamplerState{
		AddressU: AddressMirror, AddressV: AddressMirror, AddressW: AddressMirror,
		MinFilter: FilterLinear, MagFilter: FilterLinear, MipFilter: FilterLinear,
		MaxAnisotropy: 1,
	}
)

// String returns a compact description of the state.
func (s SamplerState) String() string {
	return fmt.Sprintf("Sampler[%s/%s/%s, min=%s mag=%s mip=%s, aniso=%d]",
		s.AddressU, s.AddressV, s.AddressW, s.MinFilter, s.MagFilter, s.MipFilter, s.MaxAnisotropy)
}

// SamplerApplier issues sampler state changes for a slot to a driver.
type SamplerApplier interface {
	SetSamplerFilter(slot uint32, minFilter, magFilter, mipFilter Filter)
	SetSamplerAddress(slot uint32, u, v, w AddressMode)
	SetSamplerAnisotropy(slot uint32, maxAnisotropy uint8)
}

// SamplerCache tracks the sampler state bound on every slot of a driver.
type SamplerCache struct {
	applier SamplerApplier
	current [MaxSamplerCount]SamplerState
	stats   Stats
}

// NewSamplerCache creates a cache and brings every slot to SamplerDefault2D.
func NewSamplerCache(applier SamplerApplier) *SamplerCache {
	c := &SamplerCache{applier: applier}
	def := SamplerDefault2D
	for slot := uint32(0); slot < MaxSamplerCount; slot++ {
		c.current[slot] = def
		applier.SetSamplerFilter(slot, def.MinFilter, def.MagFilter, def.MipFilter)
		applier.SetSamplerAddress(slot, def.AddressU, def.AddressV, def.AddressW)
		applier.SetSamplerAnisotropy(slot, def.MaxAnisotropy)
		c.stats.DriverCalls += 3
	}
	return c
}

// Set binds s to slot, issuing only the calls for fields that differ from
// the current state of that slot. Slots at or above MaxSamplerCount are
// ignored. It reports whether any driver call was made.
func (c *SamplerCache) Set(slot uint32, s SamplerState) bool {
	if slot >= MaxSamplerCount {
		return false
	}
	c.stats.Sets++

	cur := c.current[slot]
	if s == cur {
		c.stats.Skipped++
		return false
	}

	if s.MinFilter != cur.MinFilter || s.MagFilter != cur.MagFilter || s.MipFilter != cur.MipFilter {
		c.applier.SetSamplerFilter(slot, s.MinFilter, s.MagFilter, s.MipFilter)
		c.stats.DriverCalls++
	}
	if s.AddressU != cur.AddressU || s.AddressV != cur.AddressV || s.AddressW != cur.AddressW {
		c.applier.SetSamplerAddress(slot, s.AddressU, s.AddressV, s.AddressW)
		c.stats.DriverCalls++
	}
	if s.MaxAnisotropy != cur.MaxAnisotropy {
		c.applier.SetSamplerAnisotropy(slot, s.MaxAnisotropy)
		c.stats.DriverCalls++
	}

	c.current[slot] = s
	return true
}

// Current returns the state bound on slot.
func (c *SamplerCache) Current(slot uint32) SamplerState {
	if slot >= MaxSamplerCount {
		return SamplerState{}
	}
	return c.current[slot]
}

// Stats returns cache counters.
func (c *SamplerCache) Stats() Stats {
	return c.stats
}
