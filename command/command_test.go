package command

import (
	"image"
	"reflect"
	"testing"

	"github.com/gogpu/batch2d/geom"
	"github.com/gogpu/batch2d/state"
)

func TestCommandType_String(t *testing.T) {
	tests := []struct {
		c    CommandType
		want string
	}{
		{CmdNop, "Nop"},
		{CmdDraw, "Draw"},
		{CmdNextBatch, "NextBatch"},
		{CmdSamplerState, "SamplerState"},
		{CmdPSTexture, "PSTexture"},
		{CmdColorAdd, "ColorAdd"},
		{CommandType(200), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.c.String(); got != tt.want {
			t.Errorf("CommandType(%d).String() = %q, want %q", tt.c, got, tt.want)
		}
	}
}

func allCommands() []Command {
	return []Command{
		NextBatchCommand{Batch: 0},
		BlendStateCommand{State: state.BlendAdditive},
		RasterizerStateCommand{State: state.RasterizerWireframe2D},
		SamplerStateCommand{Slot: 3, State: state.SamplerClampNearest},
		ScissorRectCommand{Rect: image.Rect(1, 2, 30, 40)},
		ViewportCommand{Viewport: ViewportRect(image.Rect(0, 0, 320, 240))},
		TransformCommand{Matrix: geom.Translate(5, 6)},
		PixelShaderCommand{Shader: 2},
		PSTextureCommand{Slot: 1, Texture: 9},
		ColorMulCommand{Color: geom.RGBA(1, 0.5, 0.25, 1)},
		ColorAddCommand{Color: geom.RGBA(0.1, 0, 0, 0)},
		DrawCommand{IndexCount: 6},
		NopCommand{},
		DrawCommand{IndexCount: 12},
		NextBatchCommand{Batch: 1},
		DrawCommand{IndexCount: 3},
	}
}

func TestStream_ReplaysInPushOrder(t *testing.T) {
	s := NewStream(0)
	want := allCommands()
	size := 0
	for _, c := range want {
		s.Push(c)
		size += c.Size()
	}

	if s.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", s.Len(), len(want))
	}
	if s.ByteLen() != size {
		t.Errorf("ByteLen() = %d, want %d", s.ByteLen(), size)
	}

	var got []Command
	s.Each(func(_ int, c Command) bool {
		got = append(got, c)
		return true
	})
	if !reflect.DeepEqual(got, want) {
		t.Errorf("replay mismatch\n got %v\nwant %v", got, want)
	}

	if n := s.Count(CmdDraw); n != 3 {
		t.Errorf("Count(CmdDraw) = %d, want 3", n)
	}
	if h := s.Header(12); h.Type != CmdNop {
		t.Errorf("Header(12).Type = %s, want Nop", h.Type)
	}
	if len(s.Dump()) != len(want) {
		t.Errorf("Dump() has %d lines, want %d", len(s.Dump()), len(want))
	}
}

func TestStream_EachStops(t *testing.T) {
	s := NewStream(4)
	for i := 0; i < 5; i++ {
		s.PushDraw(3)
	}
	n := 0
	s.Each(func(int, Command) bool {
		n++
		return n < 2
	})
	if n != 2 {
		t.Errorf("Each visited %d commands, want 2", n)
	}
}

func TestStream_ResetIsIdempotent(t *testing.T) {
	s := NewStream(0)
	for _, c := range allCommands() {
		s.Push(c)
	}
	s.Reset()
	s.Reset()
	if s.Len() != 0 || s.ByteLen() != 0 {
		t.Fatalf("after Reset Len() = %d, ByteLen() = %d", s.Len(), s.ByteLen())
	}

	// Payload indices restart at zero after Reset.
	s.PushBlendState(state.BlendOpaque)
	if h := s.Header(0); h.Index != 0 {
		t.Errorf("Header(0).Index = %d, want 0", h.Index)
	}
	if c := s.At(0).(BlendStateCommand); c.State != state.BlendOpaque {
		t.Errorf("At(0) = %v, want BlendOpaque", c.State)
	}
}

func TestStream_PushUnknownPanics(t *testing.T) {
	type bogus struct{ NopCommand }
	defer func() {
		if recover() == nil {
			t.Error("Push(unknown) did not panic")
		}
	}()
	NewStream(0).Push(bogus{})
}
