package texture

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"time"
)

type mockUploader struct {
	mu        sync.Mutex
	created   []ID
	destroyed []ID
	failNext  bool
}

func (u *mockUploader) CreateTexture(t *Texture) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failNext {
		u.failNext = false
		return errors.New("out of memory")
	}
	u.created = append(u.created, t.ID)
	return nil
}

func (u *mockUploader) DestroyTexture(id ID) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.destroyed = append(u.destroyed, id)
}

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	return img
}

func TestMipLevelCount(t *testing.T) {
	tests := []struct {
		w, h, want int
	}{
		{1, 1, 1},
		{2, 2, 2},
		{256, 256, 9},
		{256, 1, 9},
		{5, 3, 3},
	}
	for _, tt := range tests {
		if got := MipLevelCount(tt.w, tt.h); got != tt.want {
			t.Errorf("MipLevelCount(%d, %d) = %d, want %d", tt.w, tt.h, got, tt.want)
		}
	}
}

func TestNewTexture_Mipped(t *testing.T) {
	tex, err := newTexture(solidImage(64, 16), DescMipped, "mipped")
	if err != nil {
		t.Fatalf("newTexture() error = %v", err)
	}
	if len(tex.Levels) != MipLevelCount(64, 16) {
		t.Fatalf("levels = %d, want %d", len(tex.Levels), MipLevelCount(64, 16))
	}
	w, h := 64, 16
	for i, lvl := range tex.Levels {
		if lvl.Bounds().Dx() != w || lvl.Bounds().Dy() != h {
			t.Errorf("level %d size = %v, want %dx%d", i, lvl.Bounds().Size(), w, h)
		}
		w, h = max(w/2, 1), max(h/2, 1)
	}

	// A solid image stays solid through box filtering.
	last := tex.Levels[len(tex.Levels)-1]
	if c := last.NRGBAAt(0, 0); c.R != 10 || c.G != 20 || c.B != 30 || c.A != 255 {
		t.Errorf("1x1 level color = %v, want {10 20 30 255}", c)
	}
}

func TestNewTexture_Invalid(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{"nil", nil},
		{"empty", image.NewRGBA(image.Rect(0, 0, 0, 10))},
		{"too large", image.NewRGBA(image.Rect(0, 0, MaxSize+1, 1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := newTexture(tt.img, DescUnmipped, tt.name); !errors.Is(err, ErrInvalidImage) {
				t.Errorf("newTexture() error = %v, want ErrInvalidImage", err)
			}
		})
	}
}

func TestManager_NullTexture(t *testing.T) {
	u := &mockUploader{}
	m, err := NewManager(u, DefaultConfig())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	if w, h := m.Size(Null); w != 16 || h != 16 {
		t.Errorf("Size(Null) = %dx%d, want 16x16", w, h)
	}
	if len(u.created) != 1 || u.created[0] != Null {
		t.Errorf("uploader created = %v, want [0]", u.created)
	}
	// Unknown IDs fall back to the null texture.
	if got := m.Get(99); got != m.Get(Null) {
		t.Error("Get(unknown) did not return the null texture")
	}
}

func TestManager_CreateRelease(t *testing.T) {
	u := &mockUploader{}
	m, err := NewManager(u, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	id, err := m.Create(solidImage(8, 4), DescUnmipped, "a")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if id == Null {
		t.Fatal("Create() returned Null")
	}
	if w, h := m.Size(id); w != 8 || h != 4 {
		t.Errorf("Size() = %dx%d, want 8x4", w, h)
	}
	if m.Get(id).ID != id {
		t.Errorf("Get().ID = %d, want %d", m.Get(id).ID, id)
	}

	if err := m.Release(id); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if m.Contains(id) {
		t.Error("Contains() = true after Release")
	}
	if len(u.destroyed) != 1 || u.destroyed[0] != id {
		t.Errorf("uploader destroyed = %v, want [%d]", u.destroyed, id)
	}
}

func TestManager_UploadFailure(t *testing.T) {
	u := &mockUploader{}
	m, err := NewManager(u, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	u.failNext = true
	id, err := m.Create(solidImage(2, 2), DescUnmipped, "broken")
	if err == nil || id != Null {
		t.Fatalf("Create() = (%d, %v), want (Null, error)", id, err)
	}
	if m.Len() != 0 {
		t.Errorf("Len() = %d, want 0", m.Len())
	}
	if len(u.destroyed) != 0 {
		t.Errorf("DestroyTexture called for a texture never created: %v", u.destroyed)
	}
}

func TestManager_Capacity(t *testing.T) {
	m, err := NewManager(nil, Config{Capacity: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create(solidImage(1, 1), DescUnmipped, "first"); err != nil {
		t.Fatal(err)
	}
	id, err := m.Create(solidImage(1, 1), DescUnmipped, "second")
	if err == nil || id != Null {
		t.Errorf("Create() on full manager = (%d, %v), want (Null, error)", id, err)
	}
}

func TestManager_Decode(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(3, 5)); err != nil {
		t.Fatal(err)
	}

	m, err := NewManager(nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	id, err := m.Decode(&buf, DescMipped, "png")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if w, h := m.Size(id); w != 3 || h != 5 {
		t.Errorf("Size() = %dx%d, want 3x5", w, h)
	}

	if _, err := m.Decode(bytes.NewReader([]byte("not an image")), DescUnmipped, "junk"); !errors.Is(err, ErrDecode) {
		t.Errorf("Decode(junk) error = %v, want ErrDecode", err)
	}
}

func TestManager_CreateAsync(t *testing.T) {
	m, err := NewManager(&mockUploader{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	type reply struct {
		id  ID
		err error
	}
	done := make(chan reply, 1)
	go func() {
		id, err := m.CreateAsync(context.Background(), solidImage(4, 4), DescUnmipped, "async")
		done <- reply{id, err}
	}()

	// Render loop: serve requests until the loader is answered.
	deadline := time.After(2 * time.Second)
	for {
		m.Update(1)
		select {
		case r := <-done:
			if r.err != nil {
				t.Fatalf("CreateAsync() error = %v", r.err)
			}
			if !m.Contains(r.id) || r.id == Null {
				t.Errorf("CreateAsync() = %d, not a live texture", r.id)
			}
			return
		case <-deadline:
			t.Fatal("CreateAsync() was never served")
		case <-time.After(time.Millisecond):
		}
	}
}

func TestManager_CloseReleasesWaiters(t *testing.T) {
	m, err := NewManager(nil, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := m.CreateAsync(context.Background(), solidImage(1, 1), DescUnmipped, "late")
		done <- err
	}()
	for m.Pending() == 0 {
		time.Sleep(time.Millisecond)
	}

	m.Close()
	if err := <-done; !IsClosed(err) {
		t.Errorf("CreateAsync() after Close error = %v, want closed", err)
	}
}

func TestDesc_String(t *testing.T) {
	if DescMipped.String() != "Mipped" || Desc(9).String() != "Unknown" {
		t.Error("Desc.String() mismatch")
	}
}
