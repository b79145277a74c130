package batch

import (
	"errors"
	"math/rand"
	"testing"
	"unsafe"
)

func smallConfig() Config {
	return Config{VertexCapacity: 64, IndexCapacity: 96, MaxBatches: 4}
}

func TestVertexSize(t *testing.T) {
	if got := unsafe.Sizeof(Vertex2D{}); got != VertexSize {
		t.Errorf("sizeof(Vertex2D) = %d, want %d", got, VertexSize)
	}
}

func TestNew_Clamping(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		wantVC int
		wantIC int
		wantMB int
	}{
		{"zero", Config{}, DefaultVertexCapacity, DefaultVertexCapacity * 3, DefaultMaxBatches},
		{"too small", Config{VertexCapacity: 3}, MinVertexCapacity, MinVertexCapacity * 3, DefaultMaxBatches},
		{"too large", Config{VertexCapacity: 1 << 20}, DefaultVertexCapacity, DefaultVertexCapacity * 3, DefaultMaxBatches},
		{"explicit", smallConfig(), 64, 96, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.config)
			if a.VertexCapacity() != tt.wantVC || a.IndexCapacity() != tt.wantIC || a.MaxBatches() != tt.wantMB {
				t.Errorf("New() = (%d, %d, %d), want (%d, %d, %d)",
					a.VertexCapacity(), a.IndexCapacity(), a.MaxBatches(), tt.wantVC, tt.wantIC, tt.wantMB)
			}
		})
	}
}

func TestGetBuffer_IndexOffsetAccumulates(t *testing.T) {
	a := New(smallConfig())

	s1, err := a.GetBuffer(4, 6)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := a.GetBuffer(3, 3)
	if err != nil {
		t.Fatal(err)
	}
	if s1.IndexOffset != 0 || s2.IndexOffset != 4 {
		t.Errorf("IndexOffset = (%d, %d), want (0, 4)", s1.IndexOffset, s2.IndexOffset)
	}
	if len(s1.Vertices) != 4 || len(s1.Indices) != 6 || len(s2.Vertices) != 3 || len(s2.Indices) != 3 {
		t.Error("slot lengths do not match the request")
	}

	s2.Vertices[0].Pos = [2]float32{7, 8}
	region, _ := a.Batch(0)
	if region.Vertices[4].Pos != [2]float32{7, 8} {
		t.Error("slot does not alias region storage")
	}
}

func TestGetBuffer_Errors(t *testing.T) {
	a := New(smallConfig())

	if _, err := a.GetBuffer(0, 3); !errors.Is(err, ErrEmptyRequest) {
		t.Errorf("GetBuffer(0, 3) error = %v, want ErrEmptyRequest", err)
	}
	if _, err := a.GetBuffer(65, 3); !errors.Is(err, ErrRequestTooLarge) {
		t.Errorf("GetBuffer(65, 3) error = %v, want ErrRequestTooLarge", err)
	}
	if _, err := a.GetBuffer(3, 97); !errors.Is(err, ErrRequestTooLarge) {
		t.Errorf("GetBuffer(3, 97) error = %v, want ErrRequestTooLarge", err)
	}

	if _, err := a.GetBuffer(60, 6); err != nil {
		t.Fatal(err)
	}
	if _, err := a.GetBuffer(5, 6); !errors.Is(err, ErrBatchFull) {
		t.Errorf("GetBuffer() on full region error = %v, want ErrBatchFull", err)
	}
}

func TestNextBatch_Limit(t *testing.T) {
	a := New(smallConfig())
	for want := uint32(1); want < 4; want++ {
		got, err := a.NextBatch()
		if err != nil || got != want {
			t.Fatalf("NextBatch() = (%d, %v), want (%d, nil)", got, err, want)
		}
	}
	if _, err := a.NextBatch(); !errors.Is(err, ErrTooManyBatches) {
		t.Errorf("NextBatch() past limit error = %v, want ErrTooManyBatches", err)
	}
	if a.Count() != 4 {
		t.Errorf("Count() = %d, want 4", a.Count())
	}
}

func TestIndexRebasing(t *testing.T) {
	a := New(Config{VertexCapacity: 64, IndexCapacity: 150, MaxBatches: 1000})
	rng := rand.New(rand.NewSource(7))

	type written struct {
		batch    uint32
		vertices int
	}
	var draws []written

	for i := 0; i < 500; i++ {
		vc := 3 + rng.Intn(20)
		ic := 3 * (1 + rng.Intn(10))

		slot, err := a.GetBuffer(vc, ic)
		if errors.Is(err, ErrBatchFull) {
			if _, err := a.NextBatch(); err != nil {
				t.Fatal(err)
			}
			slot, err = a.GetBuffer(vc, ic)
		}
		if err != nil {
			t.Fatalf("GetBuffer(%d, %d) error = %v", vc, ic, err)
		}

		// Local indices reference only this slot's vertices.
		for j := range slot.Indices {
			slot.Indices[j] = slot.IndexOffset + Index(rng.Intn(vc))
		}
		draws = append(draws, written{batch: a.Current(), vertices: vc})
	}

	for b := uint32(0); b < uint32(a.Count()); b++ {
		region, info := a.Batch(b)
		for _, idx := range region.Indices {
			if int(idx) >= len(region.Vertices) {
				t.Fatalf("batch %d: index %d outside its %d vertices", b, idx, len(region.Vertices))
			}
		}
		if info.BaseVertex != int32(b)*64 || info.StartIndex != b*150 {
			t.Errorf("Info(%d) = %+v", b, info)
		}
	}

	total := 0
	for _, d := range draws {
		total += d.vertices
	}
	sum := 0
	for b := uint32(0); b < uint32(a.Count()); b++ {
		region, _ := a.Batch(b)
		sum += len(region.Vertices)
	}
	if sum != total {
		t.Errorf("vertices stored = %d, want %d", sum, total)
	}
}

func TestReset(t *testing.T) {
	a := New(smallConfig())
	if _, err := a.GetBuffer(10, 12); err != nil {
		t.Fatal(err)
	}
	if _, err := a.NextBatch(); err != nil {
		t.Fatal(err)
	}
	if _, err := a.GetBuffer(5, 6); err != nil {
		t.Fatal(err)
	}

	a.Reset()
	if a.Current() != 0 || a.Count() != 1 {
		t.Errorf("after Reset Current() = %d, Count() = %d, want 0, 1", a.Current(), a.Count())
	}
	s, err := a.GetBuffer(3, 3)
	if err != nil || s.IndexOffset != 0 {
		t.Errorf("GetBuffer() after Reset = (offset %d, %v), want (0, nil)", s.IndexOffset, err)
	}

	// Rotation after Reset reuses the old region storage emptied.
	if _, err := a.NextBatch(); err != nil {
		t.Fatal(err)
	}
	region, _ := a.Batch(1)
	if len(region.Vertices) != 0 {
		t.Errorf("reused region has %d stale vertices", len(region.Vertices))
	}
}

func TestBatch_PanicsOutOfRange(t *testing.T) {
	a := New(smallConfig())
	defer func() {
		if recover() == nil {
			t.Error("Batch(5) did not panic")
		}
	}()
	a.Batch(5)
}

func BenchmarkGetBuffer(b *testing.B) {
	a := New(DefaultConfig())
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := a.GetBuffer(4, 6); err != nil {
			a.Reset()
		}
	}
}
