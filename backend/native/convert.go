//go:build !nogpu

package native

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch2d/state"
)

var blendFactors = [...]gputypes.BlendFactor{
	state.BlendZero:         gputypes.BlendFactorZero,
	state.BlendOne:          gputypes.BlendFactorOne,
	state.BlendSrcColor:     gputypes.BlendFactorSrc,
	state.BlendInvSrcColor:  gputypes.BlendFactorOneMinusSrc,
	state.BlendSrcAlpha:     gputypes.BlendFactorSrcAlpha,
	state.BlendInvSrcAlpha:  gputypes.BlendFactorOneMinusSrcAlpha,
	state.BlendDestAlpha:    gputypes.BlendFactorDstAlpha,
	state.BlendInvDestAlpha: gputypes.BlendFactorOneMinusDstAlpha,
	state.BlendDestColor:    gputypes.BlendFactorDst,
	state.BlendInvDestColor: gputypes.BlendFactorOneMinusDst,
	state.BlendSrcAlphaSat:  gputypes.BlendFactorSrcAlphaSaturated,
	state.BlendConstant:     gputypes.BlendFactorConstant,
	state.BlendInvConstant:  gputypes.BlendFactorOneMinusConstant,
}

func blendFactor(f state.BlendFactor) gputypes.BlendFactor {
	if int(f) < len(blendFactors) {
		return blendFactors[f]
	}
	return gputypes.BlendFactorOne
}

func blendOp(o state.BlendOp) gputypes.BlendOperation {
	switch o {
	case state.BlendOpSubtract:
		return gputypes.BlendOperationSubtract
	case state.BlendOpRevSubtract:
		return gputypes.BlendOperationReverseSubtract
	case state.BlendOpMin:
		return gputypes.BlendOperationMin
	case state.BlendOpMax:
		return gputypes.BlendOperationMax
	default:
		return gputypes.BlendOperationAdd
	}
}

// blendState returns nil when blending is disabled. Min and Max ignore the
// factors, and WebGPU requires them to be One.
func blendState(s state.BlendState) *gputypes.BlendState {
	if !s.Enable {
		return nil
	}
	component := func(src, dst state.BlendFactor, op state.BlendOp) gputypes.BlendComponent {
		c := gputypes.BlendComponent{
			SrcFactor: blendFactor(src),
			DstFactor: blendFactor(dst),
			Operation: blendOp(op),
		}
		if op == state.BlendOpMin || op == state.BlendOpMax {
			c.SrcFactor, c.DstFactor = gputypes.BlendFactorOne, gputypes.BlendFactorOne
		}
		return c
	}
	return &gputypes.BlendState{
		Color: component(s.SrcColor, s.DstColor, s.ColorOp),
		Alpha: component(s.SrcAlpha, s.DstAlpha, s.AlphaOp),
	}
}

func cullMode(m state.CullMode) gputypes.CullMode {
	switch m {
	case state.CullFront:
		return gputypes.CullModeFront
	case state.CullBack:
		return gputypes.CullModeBack
	default:
		return gputypes.CullModeNone
	}
}

func addressMode(m state.AddressMode) gputypes.AddressMode {
	switch m {
	case state.AddressMirror:
		return gputypes.AddressModeMirrorRepeat
	case state.AddressClamp:
		return gputypes.AddressModeClampToEdge
	default:
		return gputypes.AddressModeRepeat
	}
}

func filterMode(f state.Filter) gputypes.FilterMode {
	if f == state.FilterLinear {
		return gputypes.FilterModeLinear
	}
	return gputypes.FilterModeNearest
}

// samplerDescriptor converts s. Anisotropic filtering requires every filter
// to be linear, so anisotropy is dropped to 1 otherwise.
func samplerDescriptor(s state.SamplerState) *hal.SamplerDescriptor {
	aniso := uint16(max(s.MaxAnisotropy, 1))
	if s.MinFilter != state.FilterLinear || s.MagFilter != state.FilterLinear || s.MipFilter != state.FilterLinear {
		aniso = 1
	}
	return &hal.SamplerDescriptor{
		Label:        "batch2d_sampler",
		AddressModeU: addressMode(s.AddressU),
		AddressModeV: addressMode(s.AddressV),
		AddressModeW: addressMode(s.AddressW),
		MagFilter:    filterMode(s.MagFilter),
		MinFilter:    filterMode(s.MinFilter),
		MipmapFilter: filterMode(s.MipFilter),
		LodMinClamp:  0,
		LodMaxClamp:  32,
		Anisotropy:   aniso,
	}
}
