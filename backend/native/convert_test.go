//go:build !nogpu

package native

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/batch2d/state"
)

func TestBlendFactor(t *testing.T) {
	tests := []struct {
		in   state.BlendFactor
		want gputypes.BlendFactor
	}{
		{state.BlendZero, gputypes.BlendFactorZero},
		{state.BlendOne, gputypes.BlendFactorOne},
		{state.BlendSrcAlpha, gputypes.BlendFactorSrcAlpha},
		{state.BlendInvSrcAlpha, gputypes.BlendFactorOneMinusSrcAlpha},
		{state.BlendDestColor, gputypes.BlendFactorDst},
		{state.BlendSrcAlphaSat, gputypes.BlendFactorSrcAlphaSaturated},
		{state.BlendInvConstant, gputypes.BlendFactorOneMinusConstant},
		{state.BlendFactor(200), gputypes.BlendFactorOne},
	}
	for _, tt := range tests {
		t.Run(tt.in.String(), func(t *testing.T) {
			if got := blendFactor(tt.in); got != tt.want {
				t.Errorf("blendFactor(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestBlendState(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		if got := blendState(state.BlendOpaque); got != nil {
			t.Errorf("blendState(opaque) = %+v, want nil", got)
		}
	})

	t.Run("default", func(t *testing.T) {
		got := blendState(state.BlendDefault)
		if got == nil {
			t.Fatal("blendState(default) = nil")
		}
		want := gputypes.BlendComponent{
			SrcFactor: gputypes.BlendFactorSrcAlpha,
			DstFactor: gputypes.BlendFactorOneMinusSrcAlpha,
			Operation: gputypes.BlendOperationAdd,
		}
		if got.Color != want {
			t.Errorf("color = %+v, want %+v", got.Color, want)
		}
	})

	t.Run("subtractive", func(t *testing.T) {
		got := blendState(state.BlendSubtractive)
		if got.Color.Operation != gputypes.BlendOperationReverseSubtract {
			t.Errorf("color op = %v, want ReverseSubtract", got.Color.Operation)
		}
	})

	t.Run("min forces one factors", func(t *testing.T) {
		s := state.BlendDefault
		s.ColorOp = state.BlendOpMin
		s.AlphaOp = state.BlendOpMax
		got := blendState(s)
		for name, c := range map[string]gputypes.BlendComponent{"color": got.Color, "alpha": got.Alpha} {
			if c.SrcFactor != gputypes.BlendFactorOne || c.DstFactor != gputypes.BlendFactorOne {
				t.Errorf("%s factors = %v/%v, want One/One", name, c.SrcFactor, c.DstFactor)
			}
		}
		if got.Color.Operation != gputypes.BlendOperationMin || got.Alpha.Operation != gputypes.BlendOperationMax {
			t.Errorf("ops = %v/%v, want Min/Max", got.Color.Operation, got.Alpha.Operation)
		}
	})
}

func TestCullAndAddressModes(t *testing.T) {
	if got := cullMode(state.CullBack); got != gputypes.CullModeBack {
		t.Errorf("cullMode(Back) = %v", got)
	}
	if got := cullMode(state.CullNone); got != gputypes.CullModeNone {
		t.Errorf("cullMode(None) = %v", got)
	}

	tests := []struct {
		in   state.AddressMode
		want gputypes.AddressMode
	}{
		{state.AddressRepeat, gputypes.AddressModeRepeat},
		{state.AddressMirror, gputypes.AddressModeMirrorRepeat},
		{state.AddressClamp, gputypes.AddressModeClampToEdge},
	}
	for _, tt := range tests {
		if got := addressMode(tt.in); got != tt.want {
			t.Errorf("addressMode(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSamplerDescriptor(t *testing.T) {
	tests := []struct {
		name      string
		in        state.SamplerState
		wantAniso uint16
		wantMag   gputypes.FilterMode
	}{
		{"linear clamp", state.SamplerDefault2D, 1, gputypes.FilterModeLinear},
		{"nearest", state.SamplerRepeatNearest, 1, gputypes.FilterModeNearest},
		{"aniso", state.SamplerState{
			AddressU: state.AddressRepeat, AddressV: state.AddressRepeat, AddressW: state.AddressRepeat,
			MinFilter: state.FilterLinear, MagFilter: state.FilterLinear, MipFilter: state.FilterLinear,
			MaxAnisotropy: 8,
		}, 8, gputypes.FilterModeLinear},
		{"aniso dropped for nearest mip", state.SamplerState{
			MinFilter: state.FilterLinear, MagFilter: state.FilterLinear, MipFilter: state.FilterNearest,
			MaxAnisotropy: 8,
		}, 1, gputypes.FilterModeLinear},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := samplerDescriptor(tt.in)
			if d.Anisotropy != tt.wantAniso {
				t.Errorf("Anisotropy = %d, want %d", d.Anisotropy, tt.wantAniso)
			}
			if d.MagFilter != tt.wantMag {
				t.Errorf("MagFilter = %v, want %v", d.MagFilter, tt.wantMag)
			}
			if d.AddressModeU != addressMode(tt.in.AddressU) {
				t.Errorf("AddressModeU = %v", d.AddressModeU)
			}
		})
	}
}
