package batch2d

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/batch2d/batch"
	"github.com/gogpu/batch2d/geom"
	"github.com/gogpu/batch2d/state"
)

// ErrInvalidConfig is returned for configuration values that name no known
// preset.
var ErrInvalidConfig = errors.New("batch2d: invalid config")

// Config holds configuration for a Renderer.
type Config struct {
	// VertexCapacity is the number of vertices per batch region.
	VertexCapacity int `toml:"vertex_capacity" yaml:"vertex_capacity"`

	// IndexCapacity is the number of indices per batch region.
	IndexCapacity int `toml:"index_capacity" yaml:"index_capacity"`

	// MaxBatches bounds the number of batch regions per frame.
	MaxBatches int `toml:"max_batches" yaml:"max_batches"`

	// CommandCapacity is the initial command stream capacity.
	CommandCapacity int `toml:"command_capacity" yaml:"command_capacity"`

	// Blend names the initial blend preset (see BlendPresets).
	Blend string `toml:"blend" yaml:"blend"`

	// Rasterizer names the initial rasterizer preset (see RasterizerPresets).
	Rasterizer string `toml:"rasterizer" yaml:"rasterizer"`

	// Sampler names the initial preset of every sampler slot (see
	// SamplerPresets).
	Sampler string `toml:"sampler" yaml:"sampler"`

	// ClearColor is the RGBA color the target is cleared to at the start
	// of every flush.
	ClearColor [4]float64 `toml:"clear_color" yaml:"clear_color"`
}

// DefaultCommandCapacity is the default initial command stream capacity.
const DefaultCommandCapacity = 1024

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		VertexCapacity:  batch.DefaultVertexCapacity,
		IndexCapacity:   batch.DefaultIndexCapacity,
		MaxBatches:      batch.DefaultMaxBatches,
		CommandCapacity: DefaultCommandCapacity,
		Blend:           "default",
		Rasterizer:      "default",
		Sampler:         "default",
		ClearColor:      [4]float64{0, 0, 0, 1},
	}
}

// BlendPresets maps config names to blend states.
var BlendPresets = map[string]state.BlendState{
	"default":        state.BlendDefault,
	"premultiplied":  state.BlendPremultiplied,
	"opaque":         state.BlendOpaque,
	"additive":       state.BlendAdditive,
	"subtractive":    state.BlendSubtractive,
	"multiplicative": state.BlendMultiplicative,
}

// RasterizerPresets maps config names to rasterizer states.
var RasterizerPresets = map[string]state.RasterizerState{
	"default":    state.RasterizerDefault2D,
	"wireframe":  state.RasterizerWireframe2D,
	"cull_back":  state.RasterizerSolidCullBack,
	"cull_front": state.RasterizerSolidCullFront,
	"scissor":    state.RasterizerDefault2DScissor,
}

// SamplerPresets maps config names to sampler states.
var SamplerPresets = map[string]state.SamplerState{
	"default":        state.SamplerDefault2D,
	"repeat_linear":  state.SamplerRepeatLinear,
	"clamp_nearest":  state.SamplerClampNearest,
	"repeat_nearest": state.SamplerRepeatNearest,
	"mirror_linear":  state.SamplerMirrorLinear,
}

func lookup[T any](kind string, presets map[string]T, name string) (T, error) {
	if name == "" {
		name = "default"
	}
	v, ok := presets[strings.ToLower(name)]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: unknown %s preset %q", ErrInvalidConfig, kind, name)
	}
	return v, nil
}

// Validate reports whether every preset name is known.
func (c Config) Validate() error {
	if _, err := lookup("blend", BlendPresets, c.Blend); err != nil {
		return err
	}
	if _, err := lookup("rasterizer", RasterizerPresets, c.Rasterizer); err != nil {
		return err
	}
	if _, err := lookup("sampler", SamplerPresets, c.Sampler); err != nil {
		return err
	}
	return nil
}

func (c Config) batchConfig() batch.Config {
	return batch.Config{
		VertexCapacity: c.VertexCapacity,
		IndexCapacity:  c.IndexCapacity,
		MaxBatches:     c.MaxBatches,
	}
}

func (c Config) clearColor() [4]float32 {
	return geom.ColorF{R: c.ClearColor[0], G: c.ClearColor[1], B: c.ClearColor[2], A: c.ClearColor[3]}.Float4()
}

type decoder interface {
	Decode(v any) error
}

func decoderFor(path string, r io.Reader) (decoder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.NewDecoder(r).DisallowUnknownFields(), nil
	case ".yaml", ".yml":
		d := yaml.NewDecoder(r)
		d.KnownFields(true)
		return d, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownConfigFormat, path)
	}
}

// LoadConfig reads a TOML (.toml) or YAML (.yaml, .yml) file. Keys missing
// from the file keep their DefaultConfig values.
func LoadConfig(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("batch2d: %w", err)
	}
	defer f.Close()
	return ReadConfig(path, bufio.NewReader(f))
}

// ReadConfig decodes a configuration from r. The format is chosen by the
// extension of name.
func ReadConfig(name string, r io.Reader) (Config, error) {
	d, err := decoderFor(name, r)
	if err != nil {
		return Config{}, err
	}
	c := DefaultConfig()
	if err := d.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("batch2d: decode %s: %w", name, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}
