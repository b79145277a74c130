package tess

import (
	"math"
	"reflect"
	"testing"

	"github.com/gogpu/batch2d/batch"
)

var white = Color{1, 1, 1, 1}

// recorder collects every allocation made by a builder.
type recorder struct {
	alloc *batch.Allocator
	calls int
	fail  bool
}

func newRecorder() *recorder {
	return &recorder{alloc: batch.New(batch.Config{VertexCapacity: 4096, MaxBatches: 1})}
}

func (r *recorder) Alloc(vc, ic int) (batch.Slot, bool) {
	r.calls++
	if r.fail {
		return batch.Slot{}, false
	}
	s, err := r.alloc.GetBuffer(vc, ic)
	return s, err == nil
}

func (r *recorder) region() batch.Region {
	reg, _ := r.alloc.Batch(0)
	return reg
}

// checkIndices verifies that every index references a written vertex.
func checkIndices(t *testing.T, r *recorder, wantIndices int) {
	t.Helper()
	reg := r.region()
	if len(reg.Indices) != wantIndices {
		t.Errorf("indices written = %d, want %d", len(reg.Indices), wantIndices)
	}
	for i, idx := range reg.Indices {
		if int(idx) >= len(reg.Vertices) {
			t.Fatalf("index %d = %d outside %d vertices", i, idx, len(reg.Vertices))
		}
	}
	if len(reg.Indices)%3 != 0 {
		t.Errorf("index count %d is not whole triangles", len(reg.Indices))
	}
}

func TestQuality_MonotonicAndClamped(t *testing.T) {
	fns := map[string]func(float32) int{
		"circle":         CircleQuality,
		"circleFrame":    CircleFrameQuality,
		"fan":            FanQuality,
		"ellipse":        EllipseQuality,
		"texturedCircle": TexturedCircleQuality,
		"pieFull":        func(s float32) int { return CirclePieQuality(s, 2*math.Pi) },
	}
	for name, fn := range fns {
		t.Run(name, func(t *testing.T) {
			prev := 0
			for s := float32(0); s < 20000; s += 0.37 {
				q := fn(s)
				if q < prev {
					t.Fatalf("quality(%v) = %d < quality at smaller size %d", s, q, prev)
				}
				if q > MaxQuality {
					t.Fatalf("quality(%v) = %d > %d", s, q, MaxQuality)
				}
				prev = q
			}
			if fn(1e9) > MaxQuality {
				t.Errorf("quality(1e9) = %d, want <= %d", fn(1e9), MaxQuality)
			}
		})
	}
}

func TestQuality_Values(t *testing.T) {
	tests := []struct {
		name string
		got  int
		want int
	}{
		{"circle 0", CircleQuality(0), 6},
		{"circle 5", CircleQuality(5), 16},
		{"circle 10", CircleQuality(10), 20},
		{"circle huge", CircleQuality(1e6), 255},
		{"frame 1", CircleFrameQuality(1), 6},
		{"frame 3", CircleFrameQuality(3), 8},
		{"frame 8", CircleFrameQuality(8), 16},
		{"frame 12", CircleFrameQuality(12), 17},
		{"pie small", CirclePieQuality(1, math.Pi), 4},
		{"pie tiny angle", CirclePieQuality(100, 0.01), 3},
		{"pie half", CirclePieQuality(100, math.Pi), 40},
		{"fan 1", FanQuality(1), 3},
		{"fan 6", FanQuality(6), 5},
		{"fan 12", FanQuality(12), 8},
		{"fan 100", FanQuality(100), 26},
		{"fan huge", FanQuality(1e6), 64},
		{"ellipse 0", EllipseQuality(0), 18},
		{"ellipse huge", EllipseQuality(1e6), 255},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %d, want %d", tt.name, tt.got, tt.want)
		}
	}
}

func TestBuilders_IndexCounts(t *testing.T) {
	center := Vec{100, 100}
	r := Rect{10, 20, 110, 70}
	tests := []struct {
		name  string
		build func(Alloc) int
		want  int
	}{
		{"line", func(a Alloc) int {
			n, _ := Line(a, CapSquare, Vec{0, 0}, Vec{10, 0}, 2, [2]Color{white, white})
			return n
		}, 6},
		{"triangle", func(a Alloc) int { return Triangle(a, [3]Vec{{0, 0}, {1, 0}, {0, 1}}, [3]Color{white, white, white}) }, 3},
		{"rect", func(a Alloc) int { return RectColors(a, r, [4]Color{white, white, white, white}) }, 6},
		{"rectFrame", func(a Alloc) int { return RectFrame(a, r, 3, white, white) }, 24},
		{"circle", func(a Alloc) int { return Circle(a, center, 40, white, white, 1) }, CircleQuality(40) * 3},
		{"circleFrame", func(a Alloc) int { return CircleFrame(a, center, 40, 4, white, white, 1) }, CircleFrameQuality(44) * 6},
		{"pie", func(a Alloc) int { return CirclePie(a, center, 40, 0, math.Pi, white, white, 1) }, (CirclePieQuality(40, math.Pi) - 1) * 3},
		{"arc", func(a Alloc) int { return CircleArc(a, center, 40, 0, math.Pi, 4, white, white, 1) }, (CirclePieQuality(44, math.Pi) - 1) * 6},
		{"ellipse", func(a Alloc) int { return EllipseAuto(a, center, 60, 30, white, white, 1) }, EllipseQuality(60) * 3},
		{"ellipseFrame", func(a Alloc) int { return EllipseFrame(a, center, 60, 30, 2, white, white, 1) }, CircleFrameQuality(62) * 6},
		{"quad", func(a Alloc) int {
			return Quad(a, [4]Vec{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, [4]Color{white, white, white, white})
		}, 6},
		{"roundRect", func(a Alloc) int { return RoundRect(a, r, 8, white, 1) }, (FanQuality(8)*4 - 2) * 3},
		{"textureRegion", func(a Alloc) int { return TextureRegion(a, r, Rect{0, 0, 1, 1}, [4]Color{white, white, white, white}) }, 6},
		{"texturedCircle", func(a Alloc) int { return TexturedCircle(a, center, 40, Rect{0, 0, 1, 1}, white, 1) }, TexturedCircleQuality(40) * 3},
		{"texturedQuad", func(a Alloc) int {
			return TexturedQuad(a, [4]Vec{{0, 0}, {10, 0}, {10, 10}, {0, 10}}, Rect{0, 0, 1, 1}, white)
		}, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			if got := tt.build(rec.Alloc); got != tt.want {
				t.Errorf("indices = %d, want %d", got, tt.want)
			}
			checkIndices(t, rec, tt.want)
		})
	}
}

func TestBuilders_Deterministic(t *testing.T) {
	build := func() batch.Region {
		rec := newRecorder()
		Circle(rec.Alloc, Vec{50, 50}, 33.3, white, white, 1.5)
		CircleArc(rec.Alloc, Vec{50, 50}, 20, 0.3, 2.1, 5, white, white, 1.5)
		LineString(rec.Alloc, CapSquare, []Vec{{0, 0}, {30, 5}, {60, -10}, {90, 40}}, Vec{}, 4, false, white, false, 1)
		return rec.region()
	}
	a, b := build(), build()
	if !reflect.DeepEqual(a, b) {
		t.Error("same input produced different geometry")
	}
}

func TestBuilders_Degenerate(t *testing.T) {
	tests := []struct {
		name  string
		build func(Alloc) int
	}{
		{"line zero thickness", func(a Alloc) int { n, _ := Line(a, CapFlat, Vec{}, Vec{1, 1}, 0, [2]Color{}); return n }},
		{"frame zero thickness", func(a Alloc) int { return RectFrame(a, Rect{0, 0, 1, 1}, 0, white, white) }},
		{"pie zero angle", func(a Alloc) int { return CirclePie(a, Vec{}, 10, 0, 0, white, white, 1) }},
		{"arc zero angle", func(a Alloc) int { return CircleArc(a, Vec{}, 10, 0, 0, 2, white, white, 1) }},
		{"roundRect empty", func(a Alloc) int { return RoundRect(a, Rect{5, 5, 5, 10}, 2, white, 1) }},
		{"shape empty", func(a Alloc) int { return Shape2D(a, nil, []uint16{0, 1, 2}, Vec{}, white) }},
		{"shape bad index", func(a Alloc) int { return Shape2D(a, []Vec{{}, {}, {}}, []uint16{0, 1, 3}, Vec{}, white) }},
		{"lineString one point", func(a Alloc) int {
			return LineString(a, CapSquare, []Vec{{1, 1}}, Vec{}, 2, false, white, false, 1).Indices
		}},
		{"lineString all duplicates", func(a Alloc) int {
			return LineString(a, CapSquare, []Vec{{1, 1}, {1, 1}, {1, 1.001}}, Vec{}, 2, false, white, false, 1).Indices
		}},
		{"lineString closed two points", func(a Alloc) int {
			return LineString(a, CapFlat, []Vec{{0, 0}, {10, 0}}, Vec{}, 2, false, white, true, 1).Indices
		}},
		{"lineString closed back to start", func(a Alloc) int {
			return LineString(a, CapFlat, []Vec{{0, 0}, {10, 0}, {0, 0}}, Vec{}, 2, false, white, true, 1).Indices
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			if got := tt.build(rec.Alloc); got != 0 {
				t.Errorf("indices = %d, want 0", got)
			}
			if len(rec.region().Vertices) != 0 {
				t.Error("dropped shape left vertices behind")
			}
		})
	}
}

func TestBuilders_AllocFailure(t *testing.T) {
	rec := newRecorder()
	rec.fail = true
	if n := Circle(rec.Alloc, Vec{}, 10, white, white, 1); n != 0 {
		t.Errorf("Circle() with failing alloc = %d, want 0", n)
	}
	if rec.calls != 1 {
		t.Errorf("alloc calls = %d, want 1", rec.calls)
	}
}

func TestLine_Caps(t *testing.T) {
	colors := [2]Color{white, white}
	tests := []struct {
		cap   Cap
		wantX [4]float32
	}{
		{CapSquare, [4]float32{-1, -1, 11, 11}},
		{CapFlat, [4]float32{0, 0, 10, 10}},
		{CapRound, [4]float32{0, 0, 10, 10}},
	}
	for _, tt := range tests {
		rec := newRecorder()
		_, start := Line(rec.Alloc, tt.cap, Vec{0, 0}, Vec{10, 0}, 2, colors)
		v := rec.region().Vertices
		for i := range tt.wantX {
			if v[i].Pos[0] != tt.wantX[i] {
				t.Errorf("cap %d: vertex %d x = %v, want %v", tt.cap, i, v[i].Pos[0], tt.wantX[i])
			}
		}
		// Horizontal line: normal points down (+y), so the begin cap starts
		// at 6 o'clock.
		if math.Abs(float64(start)-math.Pi) > 1e-5 {
			t.Errorf("cap %d: start angle = %v, want π", tt.cap, start)
		}
	}
}

func TestCircle_Geometry(t *testing.T) {
	rec := newRecorder()
	q := CircleQuality(10)
	Circle(rec.Alloc, Vec{5, 5}, 10, Color{1, 0, 0, 1}, white, 1)
	v := rec.region().Vertices
	if v[0].Pos != [2]float32{5, 5} || v[0].Color != (Color{1, 0, 0, 1}) {
		t.Errorf("center vertex = %+v", v[0])
	}
	for i := 1; i <= q; i++ {
		dx, dy := float64(v[i].Pos[0]-5), float64(v[i].Pos[1]-5)
		if d := math.Hypot(dx, dy); math.Abs(d-10) > 1e-4 {
			t.Errorf("vertex %d at distance %v, want 10", i, d)
		}
	}
	// First perimeter vertex is at angle 0, the next one is above it (y up
	// is negative).
	if v[1].Pos[0] != 15 || v[2].Pos[1] >= 5 {
		t.Errorf("perimeter starts at %v then %v", v[1].Pos, v[2].Pos)
	}
}

func TestLineString(t *testing.T) {
	pts := []Vec{{0, 0}, {100, 0}, {100, 100}}
	tests := []struct {
		name        string
		cap         Cap
		closed      bool
		wantIndices int
	}{
		{"open", CapSquare, false, 12},
		{"open flat", CapFlat, false, 12},
		{"closed", CapSquare, true, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			res := LineString(rec.Alloc, tt.cap, pts, Vec{}, 4, false, white, tt.closed, 1)
			if res.Indices != tt.wantIndices {
				t.Errorf("Indices = %d, want %d", res.Indices, tt.wantIndices)
			}
			checkIndices(t, rec, tt.wantIndices)
		})
	}
}

func TestLineString_ReversalStaysFinite(t *testing.T) {
	pts := []Vec{{0, 0}, {10, 0}, {0, 0}, {0, 10}}
	for _, inner := range []bool{false, true} {
		for _, closed := range []bool{false, true} {
			rec := newRecorder()
			res := LineString(rec.Alloc, CapSquare, pts, Vec{}, 2, inner, white, closed, 1)
			if res.Indices == 0 {
				t.Fatalf("inner=%v closed=%v: line dropped", inner, closed)
			}
			checkIndices(t, rec, res.Indices)
			for i, v := range rec.region().Vertices {
				for _, f := range v.Pos {
					if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
						t.Fatalf("inner=%v closed=%v: vertex %d = %v", inner, closed, i, v.Pos)
					}
				}
			}
		}
	}
}

func TestLineString_DropsDuplicatesAndOffset(t *testing.T) {
	rec := newRecorder()
	pts := []Vec{{0, 0}, {0.01, 0}, {50, 0}, {50, 0}, {100, 0}}
	res := LineString(rec.Alloc, CapFlat, pts, Vec{10, 20}, 2, false, white, false, 1)
	// Three distinct points on a straight line: two segments.
	if res.Indices != 12 {
		t.Fatalf("Indices = %d, want 12", res.Indices)
	}
	v := rec.region().Vertices
	if len(v) != 6 {
		t.Fatalf("vertices = %d, want 6", len(v))
	}
	if v[0].Pos != [2]float32{10, 21} || v[5].Pos != [2]float32{110, 19} {
		t.Errorf("offset outline = %v ... %v", v[0].Pos, v[5].Pos)
	}
}

func TestLineString_SharpJoinAddsHelper(t *testing.T) {
	rec := newRecorder()
	// A hairpin turn: the segments fold back onto each other.
	pts := []Vec{{0, 0}, {100, 0}, {0, 5}}
	res := LineString(rec.Alloc, CapFlat, pts, Vec{}, 2, false, white, false, 1)
	if res.Indices != 18 {
		t.Errorf("Indices = %d, want 18 (helper point inserted)", res.Indices)
	}
	rec = newRecorder()
	res = LineString(rec.Alloc, CapFlat, pts, Vec{}, 2, true, white, false, 1)
	if res.Indices != 12 {
		t.Errorf("inner Indices = %d, want 12", res.Indices)
	}
}

func TestShape2D_Offset(t *testing.T) {
	rec := newRecorder()
	// Occupy the first vertices so the shape's indices must be rebased.
	Triangle(rec.Alloc, [3]Vec{}, [3]Color{})
	n := Shape2D(rec.Alloc, []Vec{{0, 0}, {1, 0}, {0, 1}}, []uint16{0, 1, 2}, Vec{5, 5}, white)
	if n != 3 {
		t.Fatalf("Shape2D() = %d, want 3", n)
	}
	reg := rec.region()
	if !reflect.DeepEqual(reg.Indices[3:], []batch.Index{3, 4, 5}) {
		t.Errorf("rebased indices = %v, want [3 4 5]", reg.Indices[3:])
	}
	if reg.Vertices[4].Pos != [2]float32{6, 5} {
		t.Errorf("offset vertex = %v, want [6 5]", reg.Vertices[4].Pos)
	}
}

func TestShape2DTransformed(t *testing.T) {
	rec := newRecorder()
	// Quarter turn: (1, 0) goes to (0, 1), then offset.
	n := Shape2DTransformed(rec.Alloc, []Vec{{0, 0}, {1, 0}, {0, 2}}, []uint16{0, 1, 2}, 1, 0, Vec{10, 20}, white)
	if n != 3 {
		t.Fatalf("Shape2DTransformed() = %d, want 3", n)
	}
	want := [][2]float32{{10, 20}, {10, 21}, {8, 20}}
	for i, w := range want {
		if got := rec.region().Vertices[i].Pos; got != w {
			t.Errorf("vertex %d = %v, want %v", i, got, w)
		}
	}
}

func TestTexturedParticles(t *testing.T) {
	rec := newRecorder()
	Triangle(rec.Alloc, [3]Vec{}, [3]Color{})
	red := Color{1, 0, 0, 1}
	particles := []Particle{
		{Center: Vec{10, 10}, Size: 4, Color: white},
		{Center: Vec{0, 0}, Rotation: math.Pi / 2, Size: 2, Color: red},
	}
	n := TexturedParticles(rec.Alloc, particles)
	if n != 12 {
		t.Fatalf("TexturedParticles() = %d, want 12", n)
	}
	checkIndices(t, rec, 15)

	reg := rec.region()
	if !reflect.DeepEqual(reg.Indices[3:9], []batch.Index{3, 4, 5, 5, 4, 6}) {
		t.Errorf("first particle indices = %v", reg.Indices[3:9])
	}
	if !reflect.DeepEqual(reg.Indices[9:], []batch.Index{7, 8, 9, 9, 8, 10}) {
		t.Errorf("second particle indices = %v", reg.Indices[9:])
	}

	v := reg.Vertices[3:]
	if v[0].Pos != [2]float32{8, 8} || v[3].Pos != [2]float32{12, 12} {
		t.Errorf("unrotated corners = %v, %v, want [8 8], [12 12]", v[0].Pos, v[3].Pos)
	}
	if v[3].Tex != [2]float32{1, 1} || v[1].Color != white {
		t.Errorf("corner 3 uv = %v, corner 1 color = %v", v[3].Tex, v[1].Color)
	}
	// A quarter turn moves the top-left corner to the top-right.
	got := v[4].Pos
	if math.Abs(float64(got[0]-1)) > 1e-5 || math.Abs(float64(got[1]+1)) > 1e-5 || v[4].Color != red {
		t.Errorf("rotated corner = %v %v, want [1 -1] red", got, v[4].Color)
	}

	if n := TexturedParticles(rec.Alloc, nil); n != 0 {
		t.Errorf("TexturedParticles(nil) = %d, want 0", n)
	}
}

func TestSprite_ClampsToTriangles(t *testing.T) {
	vertices := make([]batch.Vertex2D, 4)
	indices := []uint16{0, 1, 2, 2, 1, 3, 0}
	tests := []struct {
		name       string
		start, cnt int
		want       int
	}{
		{"all", 0, 100, 6},
		{"partial", 0, 5, 3},
		{"offset", 3, 4, 3},
		{"start past end", 7, 3, 0},
		{"too few", 6, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := newRecorder()
			if got := Sprite(rec.Alloc, vertices, indices, tt.start, tt.cnt); got != tt.want {
				t.Errorf("Sprite() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArcEnds(t *testing.T) {
	begin, end, beginAngle, endAngle := ArcEnds(Vec{0, 0}, 9, 0, math.Pi/2, 2)
	if math.Abs(float64(begin.X)) > 1e-5 || math.Abs(float64(begin.Y+10)) > 1e-5 {
		t.Errorf("begin = %v, want (0,-10)", begin)
	}
	if math.Abs(float64(end.X-10)) > 1e-5 || math.Abs(float64(end.Y)) > 1e-5 {
		t.Errorf("end = %v, want (10,0)", end)
	}
	if math.Abs(float64(beginAngle)-math.Pi) > 1e-5 || math.Abs(float64(endAngle)-math.Pi/2) > 1e-5 {
		t.Errorf("angles = (%v, %v), want (π, π/2)", beginAngle, endAngle)
	}
}

func BenchmarkCircle(b *testing.B) {
	a := batch.New(batch.DefaultConfig())
	alloc := func(vc, ic int) (batch.Slot, bool) {
		s, err := a.GetBuffer(vc, ic)
		if err != nil {
			a.Reset()
			s, err = a.GetBuffer(vc, ic)
		}
		return s, err == nil
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		Circle(alloc, Vec{100, 100}, 50, white, white, 1)
	}
}
