//go:build !nogpu

package native

import (
	"encoding/binary"
	"errors"
	"image"
	"math"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/backend"
	"github.com/gogpu/batch2d/batch"
	"github.com/gogpu/batch2d/geom"
	"github.com/gogpu/batch2d/shader"
	"github.com/gogpu/batch2d/state"
	"github.com/gogpu/batch2d/texture"
)

// openNoop opens a device on the noop HAL backend.
func openNoop(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	p, err := Headless()
	if err != nil {
		t.Fatalf("Headless: %v", err)
	}
	return p.device, p.queue
}

type testStack struct {
	drv      *Driver
	shaders  *shader.Manager
	textures *texture.Manager
	r        *batch2d.Renderer
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	device, queue := openNoop(t)

	var drv *Driver
	shaders, err := shader.NewManager(shader.Config{
		OnRelease: func(id shader.ID) {
			if drv != nil {
				drv.ForgetShader(id)
			}
		},
	})
	if err != nil {
		t.Fatalf("shader.NewManager: %v", err)
	}
	drv, err = New(device, queue, shaders, Config{Width: 320, Height: 240})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	textures, err := texture.NewManager(drv, texture.DefaultConfig())
	if err != nil {
		t.Fatalf("texture.NewManager: %v", err)
	}
	r, err := batch2d.New(drv, textures, shaders)
	if err != nil {
		t.Fatalf("batch2d.New: %v", err)
	}
	t.Cleanup(func() {
		r.Close()
		textures.Close()
		shaders.Close()
		drv.Close()
	})
	return &testStack{drv: drv, shaders: shaders, textures: textures, r: r}
}

func TestNew_Errors(t *testing.T) {
	device, queue := openNoop(t)
	shaders, err := shader.NewManager(shader.Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer shaders.Close()

	tests := []struct {
		name    string
		device  hal.Device
		queue   hal.Queue
		config  Config
		wantErr error
	}{
		{"nil device", nil, queue, DefaultConfig(), ErrNilDevice},
		{"nil queue", device, nil, DefaultConfig(), ErrNilDevice},
		{"zero width", device, queue, Config{Width: 0, Height: 10}, ErrInvalidDimensions},
		{"negative height", device, queue, Config{Width: 10, Height: -1}, ErrInvalidDimensions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.device, tt.queue, shaders, tt.config)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_ConfigDefaults(t *testing.T) {
	device, queue := openNoop(t)
	shaders, err := shader.NewManager(shader.Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer shaders.Close()

	drv, err := New(device, queue, shaders, Config{Width: 64, Height: 32, SampleCount: 3})
	if err != nil {
		t.Fatal(err)
	}
	defer drv.Close()

	cfg := drv.Config()
	if cfg.Format != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("Format = %v, want RGBA8Unorm", cfg.Format)
	}
	if cfg.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1", cfg.SampleCount)
	}
	if w, h := drv.TargetSize(); w != 64 || h != 32 {
		t.Errorf("TargetSize = %dx%d, want 64x32", w, h)
	}
	if drv.Target() == nil {
		t.Error("Target() = nil for offscreen driver")
	}
}

// halOnlyProvider exposes a HAL device without implementing the rest of
// gpucontext.DeviceProvider.
type halOnlyProvider struct {
	gpucontext.DeviceProvider
	device hal.Device
	queue  hal.Queue
	format gputypes.TextureFormat
}

func (p halOnlyProvider) HalDevice() any                        { return p.device }
func (p halOnlyProvider) HalQueue() any                         { return p.queue }
func (p halOnlyProvider) SurfaceFormat() gputypes.TextureFormat { return p.format }

type plainProvider struct {
	gpucontext.DeviceProvider
}

func TestNewFromProvider(t *testing.T) {
	device, queue := openNoop(t)
	shaders, err := shader.NewManager(shader.Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer shaders.Close()

	t.Run("no hal access", func(t *testing.T) {
		_, err := NewFromProvider(plainProvider{}, shaders, DefaultConfig())
		if !errors.Is(err, ErrNoHALProvider) {
			t.Errorf("error = %v, want ErrNoHALProvider", err)
		}
	})

	t.Run("surface format", func(t *testing.T) {
		p := halOnlyProvider{device: device, queue: queue, format: gputypes.TextureFormatBGRA8Unorm}
		drv, err := NewFromProvider(p, shaders, DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		defer drv.Close()
		if got := drv.Config().Format; got != gputypes.TextureFormatBGRA8Unorm {
			t.Errorf("Format = %v, want BGRA8Unorm", got)
		}
	})
}

func TestDriver_FrameLifecycle(t *testing.T) {
	s := newTestStack(t)
	d := s.drv

	if err := d.EndFrame(); !errors.Is(err, ErrNoFrame) {
		t.Errorf("EndFrame without frame = %v, want ErrNoFrame", err)
	}
	if err := d.UploadBatch(batch.Info{}, nil, nil); !errors.Is(err, ErrNoFrame) {
		t.Errorf("UploadBatch without frame = %v, want ErrNoFrame", err)
	}
	if err := d.BeginFrame([4]float32{}); err != nil {
		t.Fatal(err)
	}
	if err := d.BeginFrame([4]float32{}); !errors.Is(err, ErrFrameInProgress) {
		t.Errorf("second BeginFrame = %v, want ErrFrameInProgress", err)
	}
	if err := d.Resize(10, 10); !errors.Is(err, ErrFrameInProgress) {
		t.Errorf("Resize in frame = %v, want ErrFrameInProgress", err)
	}
	if err := d.UploadBatch(batch.Info{BaseVertex: -1}, nil, nil); !errors.Is(err, ErrBatchRange) {
		t.Errorf("negative base vertex = %v, want ErrBatchRange", err)
	}
	if err := d.EndFrame(); err != nil {
		t.Errorf("empty EndFrame = %v", err)
	}
	if got := d.Stats().DrawCalls; got != 0 {
		t.Errorf("DrawCalls = %d, want 0", got)
	}
}

func TestDriver_FlushRect(t *testing.T) {
	s := newTestStack(t)

	s.r.AddRect(geom.R(10, 20, 30, 40), geom.White)
	if err := s.r.Flush(false); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	st := s.drv.Stats()
	if st.DrawCalls != s.r.Stats().DrawCalls || st.DrawCalls != 1 {
		t.Errorf("DrawCalls = %d, renderer %d, want 1", st.DrawCalls, s.r.Stats().DrawCalls)
	}
	if st.VertexBytes != 4*batch.VertexSize {
		t.Errorf("VertexBytes = %d, want %d", st.VertexBytes, 4*batch.VertexSize)
	}
	if st.IndexBytes != 6*batch.IndexSize {
		t.Errorf("IndexBytes = %d, want %d", st.IndexBytes, 6*batch.IndexSize)
	}
	if st.PipelinesCreated != 1 {
		t.Errorf("PipelinesCreated = %d, want 1", st.PipelinesCreated)
	}

	// Staged vertices hold the rectangle corners in pixels.
	found := false
	for off := 0; off < len(s.drv.frame.vertices); off += batch.VertexSize {
		x := math.Float32frombits(binary.LittleEndian.Uint32(s.drv.frame.vertices[off:]))
		y := math.Float32frombits(binary.LittleEndian.Uint32(s.drv.frame.vertices[off+4:]))
		if x == 40 && y == 60 {
			found = true
		}
	}
	if !found {
		t.Error("bottom-right corner (40, 60) not staged")
	}

	// The same frame again reuses the cached pipeline.
	if err := s.r.Flush(true); err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if got := s.drv.Stats().PipelinesCreated; got != 0 {
		t.Errorf("PipelinesCreated on replay = %d, want 0", got)
	}
}

func TestDriver_ConstantBlocks(t *testing.T) {
	frame := func(t *testing.T, recolor bool) FrameStats {
		s := newTestStack(t)
		s.r.AddRect(geom.R(0, 0, 10, 10), geom.White)
		if recolor {
			s.r.SetColorMul(geom.RGBA(1, 0, 0, 1))
		}
		s.r.AddRect(geom.R(20, 0, 10, 10), geom.White)
		if err := s.r.Flush(true); err != nil {
			t.Fatal(err)
		}
		return s.drv.Stats()
	}

	plain := frame(t, false)
	recolored := frame(t, true)
	if plain.ConstantBlocks < 1 {
		t.Fatalf("ConstantBlocks = %d, want at least 1", plain.ConstantBlocks)
	}
	if recolored.ConstantBlocks != plain.ConstantBlocks+1 {
		t.Errorf("ConstantBlocks with color change = %d, want %d",
			recolored.ConstantBlocks, plain.ConstantBlocks+1)
	}
	if recolored.DrawCalls != 2 {
		t.Errorf("DrawCalls = %d, want 2", recolored.DrawCalls)
	}
}

func TestDriver_PipelinePerBlendState(t *testing.T) {
	s := newTestStack(t)

	s.r.AddRect(geom.R(0, 0, 10, 10), geom.White)
	s.r.SetBlendState(state.BlendAdditive)
	s.r.AddRect(geom.R(20, 0, 10, 10), geom.White)
	s.r.SetBlendState(state.BlendDefault)
	s.r.AddRect(geom.R(40, 0, 10, 10), geom.White)
	if err := s.r.Flush(true); err != nil {
		t.Fatal(err)
	}

	st := s.drv.Stats()
	if st.PipelinesCreated != 2 {
		t.Errorf("PipelinesCreated = %d, want 2", st.PipelinesCreated)
	}
	if st.PipelineSwitches != 3 {
		t.Errorf("PipelineSwitches = %d, want 3", st.PipelineSwitches)
	}
}

func TestDriver_ScissorAndViewport(t *testing.T) {
	s := newTestStack(t)

	s.r.SetRasterizerState(state.RasterizerDefault2DScissor)
	s.r.SetScissorRect(image.Rect(-5, 10, 100, 500))
	s.r.AddRect(geom.R(0, 0, 10, 10), geom.White)

	vp := image.Rect(0, 0, 160, 120)
	s.r.SetViewport(&vp)
	s.r.AddRect(geom.R(0, 0, 10, 10), geom.White)
	if err := s.r.Flush(true); err != nil {
		t.Fatal(err)
	}

	ops := s.drv.frame.ops
	if len(ops) != 2 {
		t.Fatalf("recorded %d draws, want 2", len(ops))
	}
	if want := image.Rect(0, 10, 100, 240); ops[0].scissor != want {
		t.Errorf("scissor = %v, want %v", ops[0].scissor, want)
	}
	if want := image.Rect(0, 0, 320, 240); ops[0].viewport != want {
		t.Errorf("viewport = %v, want %v", ops[0].viewport, want)
	}
	if ops[1].viewport != vp {
		t.Errorf("viewport = %v, want %v", ops[1].viewport, vp)
	}
}

func TestDriver_Textures(t *testing.T) {
	s := newTestStack(t)

	if _, ok := s.drv.textures[texture.Null]; !ok {
		t.Fatal("null texture not uploaded")
	}
	id, err := s.textures.Create(image.NewNRGBA(image.Rect(0, 0, 8, 8)), texture.DescMipped, "tile")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.drv.textures[id]; !ok {
		t.Fatalf("texture %d not uploaded", id)
	}

	s.r.AddTexture(id, geom.V(0, 0), geom.White)
	if err := s.r.Flush(true); err != nil {
		t.Fatal(err)
	}
	ops := s.drv.frame.ops
	if len(ops) != 1 || ops[0].bind.tex != id {
		t.Fatalf("ops = %+v, want one draw sampling %d", ops, id)
	}
	if ops[0].key.shader != s.shaders.Texture() {
		t.Errorf("shader = %d, want texture shader %d", ops[0].key.shader, s.shaders.Texture())
	}
	if len(s.drv.bindGroups) == 0 {
		t.Error("no bind group cached")
	}

	if err := s.textures.Release(id); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.drv.textures[id]; ok {
		t.Error("released texture still on the GPU")
	}
	for key := range s.drv.bindGroups {
		if key.tex == id {
			t.Error("bind group of released texture kept")
		}
	}

	// Unknown textures fall back to null.
	got, view, ok := s.drv.textureView(id)
	if !ok || got != texture.Null || view == nil {
		t.Errorf("textureView(released) = %d, %v, %v; want null", got, view, ok)
	}
}

func TestDriver_ForgetShader(t *testing.T) {
	s := newTestStack(t)

	id, err := s.shaders.Create("tint", `
@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return in.color * vec4<f32>(1.0, 0.5, 0.5, 1.0);
}
`)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	s.r.SetPixelShader(id)
	s.r.AddRect(geom.R(0, 0, 10, 10), geom.White)
	if err := s.r.Flush(true); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.drv.pipelines.modules[id]; !ok {
		t.Fatal("custom shader module not built")
	}

	s.r.SetPixelShader(s.shaders.Shape())
	if err := s.shaders.Release(id); err != nil {
		t.Fatal(err)
	}
	if _, ok := s.drv.pipelines.modules[id]; ok {
		t.Error("module kept after release")
	}
	for key := range s.drv.pipelines.pipelines {
		if key.shader == id {
			t.Error("pipeline kept after release")
		}
	}
}

func TestDriver_Resize(t *testing.T) {
	s := newTestStack(t)

	if err := s.drv.Resize(0, 10); !errors.Is(err, ErrInvalidDimensions) {
		t.Errorf("Resize(0, 10) = %v, want ErrInvalidDimensions", err)
	}
	if err := s.drv.Resize(640, 480); err != nil {
		t.Fatal(err)
	}
	if w, h := s.drv.TargetSize(); w != 640 || h != 480 {
		t.Errorf("TargetSize = %dx%d, want 640x480", w, h)
	}
	s.r.AddRect(geom.R(0, 0, 10, 10), geom.White)
	if err := s.r.Flush(true); err != nil {
		t.Fatal(err)
	}
	if want := image.Rect(0, 0, 640, 480); s.drv.frame.ops[0].viewport != want {
		t.Errorf("viewport = %v, want %v", s.drv.frame.ops[0].viewport, want)
	}
}

func TestDriver_WireframeDrawsSolid(t *testing.T) {
	s := newTestStack(t)

	s.r.SetRasterizerState(state.RasterizerWireframe2D)
	s.r.AddRect(geom.R(0, 0, 10, 10), geom.White)
	if err := s.r.Flush(true); err != nil {
		t.Fatal(err)
	}
	if !s.drv.warnedWireframe {
		t.Error("wireframe not reported")
	}
	if got := s.drv.Stats().DrawCalls; got != 1 {
		t.Errorf("DrawCalls = %d, want 1", got)
	}
}

func TestDriver_SubmissionsFreed(t *testing.T) {
	s := newTestStack(t)

	for range 3 {
		s.r.AddRect(geom.R(0, 0, 10, 10), geom.White)
		if err := s.r.Flush(true); err != nil {
			t.Fatal(err)
		}
	}
	// The noop queue completes immediately, so each frame frees the last.
	if n := len(s.drv.pending); n != 1 {
		t.Errorf("pending submissions = %d, want 1", n)
	}
}

func TestGrowBytes(t *testing.T) {
	b := growBytes(nil, 8)
	if len(b) != 8 {
		t.Fatalf("len = %d, want 8", len(b))
	}
	b[7] = 0xFF
	b = b[:4]
	b = growBytes(b, 8)
	if b[7] != 0 {
		t.Error("regrown space not zeroed")
	}
	if got := growBytes(b, 2); len(got) != 8 {
		t.Errorf("shrinking grow changed len to %d", len(got))
	}
}

func TestPutVertex(t *testing.T) {
	buf := make([]byte, batch.VertexSize)
	putVertex(buf, batch.Vertex2D{
		Pos:   [2]float32{1, 2},
		Tex:   [2]float32{0.25, 0.75},
		Color: [4]float32{0.1, 0.2, 0.3, 0.4},
	})
	want := []float32{1, 2, 0.25, 0.75, 0.1, 0.2, 0.3, 0.4}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
}

func TestBackendRegistry(t *testing.T) {
	shaders, err := shader.NewManager(shader.Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer shaders.Close()

	if _, err := backend.Open(backend.BackendNative, backend.Options{Width: 8, Height: 8, Shaders: shaders}); !errors.Is(err, backend.ErrBackendNotAvailable) {
		t.Errorf("Open without provider = %v, want ErrBackendNotAvailable", err)
	}

	provider, err := Headless()
	if err != nil {
		t.Fatal(err)
	}
	d, name, err := backend.OpenDefault(backend.Options{Width: 8, Height: 8, Shaders: shaders, Provider: provider})
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if name != backend.BackendNative {
		t.Errorf("OpenDefault chose %q, want %q", name, backend.BackendNative)
	}
	if _, ok := d.(*Driver); !ok {
		t.Errorf("driver is %T, want *Driver", d)
	}
	if w, h := d.TargetSize(); w != 8 || h != 8 {
		t.Errorf("TargetSize = %dx%d, want 8x8", w, h)
	}
}
