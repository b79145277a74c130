package texture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"time"

	// Decoders registered for Load and Decode.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/gogpu/batch2d/handle"
	"github.com/gogpu/batch2d/resource"
)

// Uploader mirrors textures on the GPU. It is called on the render
// goroutine only.
type Uploader interface {
	CreateTexture(t *Texture) error
	DestroyTexture(id ID)
}

// Config holds configuration for a Manager.
type Config struct {
	// Capacity limits the number of live textures (0 = unlimited).
	Capacity uint32

	// AsyncTimeout bounds CreateAsync. Zero uses resource.DefaultTimeout.
	AsyncTimeout time.Duration

	// Monitor observes texture lifetimes (optional).
	Monitor handle.Monitor
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{AsyncTimeout: resource.DefaultTimeout}
}

type createRequest struct {
	img   image.Image
	desc  Desc
	label string
}

// Manager owns every texture.
type Manager struct {
	uploader Uploader
	table    *handle.Table[ID, *Texture]
	async    *resource.Rendezvous[createRequest, ID]
}

// NewManager creates a Manager and registers the null texture.
// uploader may be nil for CPU-only use.
func NewManager(uploader Uploader, config Config) (*Manager, error) {
	m := &Manager{uploader: uploader}

	opts := []handle.Option{
		handle.WithRelease(func(t *Texture) {
			if t.uploaded {
				m.uploader.DestroyTexture(t.ID)
			}
		}),
	}
	if config.Capacity > 0 {
		opts = append(opts, handle.WithCapacity(config.Capacity))
	}
	if config.Monitor != nil {
		opts = append(opts, handle.WithMonitor(config.Monitor))
	}
	m.table = handle.New[ID, *Texture]("Texture", opts...)
	m.async = resource.New[createRequest, ID](resource.Config{Timeout: config.AsyncTimeout})

	null, err := newTexture(nullImage(), DescUnmipped, "null")
	if err != nil {
		return nil, err
	}
	null.ID = Null
	if uploader != nil {
		if err := uploader.CreateTexture(null); err != nil {
			return nil, fmt.Errorf("texture: create null texture: %w", err)
		}
		null.uploaded = true
	}
	if err := m.table.SetNullData(null); err != nil {
		return nil, err
	}
	return m, nil
}

// Create registers img as a new texture. It must be called on the render
// goroutine. On failure it returns Null and the error.
func (m *Manager) Create(img image.Image, desc Desc, label string) (ID, error) {
	t, err := newTexture(img, desc, label)
	if err != nil {
		return Null, err
	}

	id := m.table.Add(t, label)
	if id == Null {
		return Null, fmt.Errorf("texture: table %q is full", m.table.Name())
	}
	t.ID = id

	if m.uploader != nil {
		if err := m.uploader.CreateTexture(t); err != nil {
			_ = m.table.Erase(id)
			return Null, fmt.Errorf("texture: upload %q: %w", label, err)
		}
		t.uploaded = true
	}
	return id, nil
}

// CreateAsync asks the render goroutine to create the texture and waits
// for the result. It is safe to call from any goroutine other than the
// render goroutine, which would deadlock waiting for itself.
func (m *Manager) CreateAsync(ctx context.Context, img image.Image, desc Desc, label string) (ID, error) {
	id, err := m.async.Request(ctx, createRequest{img: img, desc: desc, label: label})
	if err != nil {
		return Null, err
	}
	return id, nil
}

// Update serves up to limit pending CreateAsync requests (limit <= 0 serves
// all). It must be called on the render goroutine and returns the number of
// requests served.
func (m *Manager) Update(limit int) int {
	return m.async.Serve(limit, func(req createRequest) (ID, error) {
		return m.Create(req.img, req.desc, req.label)
	})
}

// Decode reads an encoded image (PNG, JPEG, BMP, TIFF, WebP) and creates a
// texture from it.
func (m *Manager) Decode(r io.Reader, desc Desc, label string) (ID, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return Null, fmt.Errorf("%w: %s: %w", ErrDecode, label, err)
	}
	return m.Create(img, desc, label)
}

// Load reads and decodes the image file at path.
func (m *Manager) Load(path string, desc Desc) (ID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Null, fmt.Errorf("texture: %w", err)
	}
	return m.Decode(bytes.NewReader(data), desc, filepath.Base(path))
}

// Release destroys the texture. Releasing Null is a no-op.
func (m *Manager) Release(id ID) error {
	return m.table.Erase(id)
}

// Get returns the texture for id, or the null texture when id is not live.
func (m *Manager) Get(id ID) *Texture {
	t, _ := m.table.GetOrNull(id)
	return t
}

// Size returns the size of the texture, or of the null texture when id is
// not live. It implements the renderer's texture source.
func (m *Manager) Size(id ID) (width, height int) {
	t := m.Get(id)
	if t == nil {
		return 0, 0
	}
	return t.Width, t.Height
}

// Contains reports whether id is live.
func (m *Manager) Contains(id ID) bool {
	return m.table.Contains(id)
}

// Len returns the number of live textures, excluding the null texture.
func (m *Manager) Len() int {
	return m.table.Len()
}

// Pending returns the number of queued CreateAsync requests.
func (m *Manager) Pending() int {
	return m.async.Pending()
}

// Close fails every waiting CreateAsync call and destroys all textures.
func (m *Manager) Close() {
	m.async.Close()
	m.table.Destroy()
}

// IsClosed reports whether err came from a request made during or after Close.
func IsClosed(err error) bool {
	return errors.Is(err, resource.ErrClosed)
}
