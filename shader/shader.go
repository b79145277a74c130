// Package shader manages 2D pixel shaders by ID.
//
// A pixel shader is a WGSL fragment stage named fs_main. It is combined with
// a shared prelude that declares the constant buffer, the texture and
// sampler bindings, and the vertex stage vs_main, then compiled with naga to
// SPIR-V so that errors surface when the shader is created rather than when
// it is first drawn.
//
// The null shader is the built-in shape shader, so an unknown ID always
// draws flat-colored geometry.
package shader

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/naga"

	"github.com/gogpu/batch2d/handle"
)

// Shader errors.
var (
	// ErrEmptySource is returned for a shader without source.
	ErrEmptySource = errors.New("shader: empty source")

	// ErrCompile is returned when WGSL compilation fails.
	ErrCompile = errors.New("shader: compile failed")

	// ErrMissingEntryPoint is returned when the source lacks fs_main.
	ErrMissingEntryPoint = errors.New("shader: missing fs_main entry point")
)

// Entry points shared by every compiled module.
const (
	VertexEntryPoint   = "vs_main"
	FragmentEntryPoint = "fs_main"
)

//go:embed shaders/prelude.wgsl
var preludeSource string

//go:embed shaders/shape.wgsl
var shapeSource string

//go:embed shaders/texture.wgsl
var textureSource string

// Prelude returns the WGSL prepended to every pixel shader.
func Prelude() string {
	return preludeSource
}

// ID identifies a pixel shader. The zero ID is the shape shader.
type ID uint32

// Null is the ID of the null (shape) shader.
const Null ID = 0

// PixelShader is a compiled pixel shader.
type PixelShader struct {
	ID   ID
	Name string

	// Source is the complete WGSL module (prelude plus fragment stage).
	Source string

	// SPIRV is the compiled module.
	SPIRV []uint32
}

// Compile builds a complete module from a fragment-stage source.
func Compile(name, fragment string) (*PixelShader, error) {
	if strings.TrimSpace(fragment) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, name)
	}
	if !strings.Contains(fragment, FragmentEntryPoint) {
		return nil, fmt.Errorf("%w: %s", ErrMissingEntryPoint, name)
	}

	source := preludeSource + "\n" + fragment
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, name, err)
	}

	spirv, err := spirvWords(spirvBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrCompile, name, err)
	}
	return &PixelShader{Name: name, Source: source, SPIRV: spirv}, nil
}

// spirvWords splits a SPIR-V binary into its little-endian 32-bit words.
func spirvWords(b []byte) ([]uint32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("SPIR-V length %d is not a multiple of 4", len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return words, nil
}

// Config holds configuration for a Manager.
type Config struct {
	// Capacity limits the number of live custom shaders (0 = unlimited).
	Capacity uint32

	// OnRelease is called with the ID of every released shader, so backends
	// can drop pipelines built for it.
	OnRelease func(ID)
}

// Manager owns every pixel shader.
type Manager struct {
	table   *handle.Table[ID, *PixelShader]
	texture ID
}

// NewManager compiles the built-in shaders and creates a Manager.
func NewManager(config Config) (*Manager, error) {
	opts := []handle.Option{
		handle.WithRelease(func(ps *PixelShader) {
			if config.OnRelease != nil {
				config.OnRelease(ps.ID)
			}
		}),
	}
	if config.Capacity > 0 {
		// Room for the built-in texture shader.
		opts = append(opts, handle.WithCapacity(config.Capacity+1))
	}
	m := &Manager{table: handle.New[ID, *PixelShader]("PixelShader", opts...)}

	shape, err := Compile("shape", shapeSource)
	if err != nil {
		return nil, err
	}
	if err := m.table.SetNullData(shape); err != nil {
		return nil, err
	}

	m.texture, err = m.Create("texture", textureSource)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Create compiles fragment and registers it. On failure it returns Null.
func (m *Manager) Create(name, fragment string) (ID, error) {
	ps, err := Compile(name, fragment)
	if err != nil {
		return Null, err
	}
	id := m.table.Add(ps, name)
	if id == Null {
		return Null, fmt.Errorf("shader: table %q is full", m.table.Name())
	}
	ps.ID = id
	return id, nil
}

// Release destroys the shader. Releasing Null or a built-in is a no-op.
func (m *Manager) Release(id ID) error {
	if id == m.texture {
		return nil
	}
	return m.table.Erase(id)
}

// Get returns the shader for id, or the shape shader when id is not live.
// The boolean reports whether id was live.
func (m *Manager) Get(id ID) (*PixelShader, bool) {
	return m.table.GetOrNull(id)
}

// Contains reports whether id is the shape shader or a live shader.
func (m *Manager) Contains(id ID) bool {
	return m.table.Contains(id)
}

// Shape returns the ID of the built-in shape shader.
func (m *Manager) Shape() ID {
	return Null
}

// Texture returns the ID of the built-in texture shader.
func (m *Manager) Texture() ID {
	return m.texture
}

// Len returns the number of live shaders including the built-in texture
// shader and excluding the null shader.
func (m *Manager) Len() int {
	return m.table.Len()
}

// Close destroys every shader.
func (m *Manager) Close() {
	m.table.Destroy()
}
