// Command batch2ddemo records a scene with the batch2d renderer and replays
// it through a driver from the backend registry, printing the per-frame
// statistics. The native driver runs on the headless noop device.
package main

import (
	"context"
	"flag"
	"image"
	"image/color"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/batch2d"
	"github.com/gogpu/batch2d/backend"
	"github.com/gogpu/batch2d/backend/native"
	"github.com/gogpu/batch2d/geom"
	"github.com/gogpu/batch2d/shader"
	"github.com/gogpu/batch2d/state"
	"github.com/gogpu/batch2d/texture"
)

func main() {
	var (
		width      = flag.Int("width", 800, "target width")
		height     = flag.Int("height", 600, "target height")
		frames     = flag.Int("frames", 3, "number of frames to draw")
		configPath = flag.String("config", "", "renderer config file (.toml, .yaml)")
		imagePath  = flag.String("image", "", "image to draw as a sprite")
		backendArg = flag.String("backend", "", "driver backend (native, null); empty picks the best")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	batch2d.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	provider, err := native.Headless()
	if err != nil {
		log.Fatalf("Failed to open device: %v", err)
	}

	var drv backend.Driver
	shaders, err := shader.NewManager(shader.Config{
		OnRelease: func(id shader.ID) {
			if drv != nil {
				drv.ForgetShader(id)
			}
		},
	})
	if err != nil {
		log.Fatalf("Failed to create shaders: %v", err)
	}
	defer shaders.Close()

	opts := backend.Options{Width: *width, Height: *height, Shaders: shaders, Provider: provider}
	name := *backendArg
	if name == "" {
		drv, name, err = backend.OpenDefault(opts)
	} else {
		drv, err = backend.Open(name, opts)
	}
	if err != nil {
		log.Fatalf("Failed to create driver: %v", err)
	}
	defer drv.Close()
	log.Printf("Using %s backend (available: %v)", name, backend.Available())

	textures, err := texture.NewManager(drv, texture.DefaultConfig())
	if err != nil {
		log.Fatalf("Failed to create textures: %v", err)
	}
	defer textures.Close()

	var ropts []batch2d.Option
	if *configPath != "" {
		cfg, err := batch2d.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		ropts = append(ropts, batch2d.WithConfig(cfg))
	}
	ropts = append(ropts, batch2d.WithClearColor(geom.RGB(0.1, 0.12, 0.16)))

	r, err := batch2d.New(drv, textures, shaders, ropts...)
	if err != nil {
		log.Fatalf("Failed to create renderer: %v", err)
	}
	defer r.Close()

	sprite, err := loadSprite(textures, *imagePath)
	if err != nil {
		log.Fatalf("Failed to create sprite: %v", err)
	}

	p := message.NewPrinter(language.English)
	for i := range *frames {
		drawScene(r, sprite, float64(i)*0.25, *width, *height)
		if err := r.Flush(true); err != nil {
			log.Fatalf("Frame %d: %v", i, err)
		}
		rs := r.Stats()
		p.Printf("frame %d: %d commands, %d draws, %d triangles, %d state changes\n",
			i, rs.Commands, rs.DrawCalls, rs.Triangles, rs.StateChanges)
		if nd, ok := drv.(*native.Driver); ok {
			ds := nd.Stats()
			p.Printf("         %d pipeline switches, %d bytes of vertices, %d bytes of indices\n",
				ds.PipelineSwitches, ds.VertexBytes, ds.IndexBytes)
		}
	}
}

// loadSprite loads path, or creates a checkerboard on a worker goroutine
// when path is empty. The render goroutine serves the request.
func loadSprite(textures *texture.Manager, path string) (texture.ID, error) {
	if path != "" {
		return textures.Load(path, texture.DescMipped)
	}

	type result struct {
		id  texture.ID
		err error
	}
	done := make(chan result, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		id, err := textures.CreateAsync(ctx, checkerboard(64, 8), texture.DescMipped, "checker")
		done <- result{id, err}
	}()
	for {
		textures.Update(0)
		select {
		case res := <-done:
			return res.id, res.err
		case <-time.After(time.Millisecond):
		}
	}
}

func checkerboard(size, cell int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			c := color.NRGBA{R: 240, G: 240, B: 240, A: 255}
			if (x/cell+y/cell)%2 == 1 {
				c = color.NRGBA{R: 40, G: 90, B: 200, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func drawScene(r *batch2d.Renderer, sprite texture.ID, t float64, w, h int) {
	fw, fh := float64(w), float64(h)

	// Background
	r.AddRectColors(geom.R(0, 0, fw, fh), [4]geom.ColorF{
		geom.RGB(0.1, 0.2, 0.4), geom.RGB(0.1, 0.2, 0.4),
		geom.RGB(0.5, 0.5, 0.6), geom.RGB(0.5, 0.5, 0.6),
	})

	// Shapes
	r.AddCircle(geom.V(150, 150), 60, geom.RGBA(1, 0.3, 0.3, 0.8), geom.RGBA(1, 0.3, 0.3, 0.2))
	r.AddCircleFrame(geom.V(150, 150), 70, 4, geom.White, geom.White)
	r.AddRoundRect(geom.RoundRect{Rect: geom.R(300, 100, 140, 90), Radius: 16}, geom.RGB(1, 0.8, 0))
	r.AddRectFrame(geom.R(300, 100, 140, 90), 3, geom.White, geom.White)
	r.AddEllipse(geom.V(560, 150), 80, 40, geom.RGB(0.3, 1, 0.5), geom.RGB(0.1, 0.5, 0.2))
	r.AddCirclePie(geom.V(700, 150), 50, t, math.Pi*1.5, geom.RGB(0.9, 0.4, 1), geom.RGB(0.9, 0.4, 1))

	// Lines
	r.AddLine(batch2d.LineCapRound, geom.V(80, 300), geom.V(320, 340), 12,
		[2]geom.ColorF{geom.RGB(1, 0.5, 0), geom.RGB(1, 1, 0)})
	r.AddCircleArc(batch2d.LineCapSquare, geom.V(450, 330), 50, 0, math.Pi+t, 8, geom.White, geom.White)

	star := make([]geom.Vec2, 10)
	for i := range star {
		rad := 60.0
		if i%2 == 1 {
			rad = 28
		}
		a := float64(i)*math.Pi/5 - math.Pi/2
		star[i] = geom.V(rad*math.Cos(a), rad*math.Sin(a))
	}
	r.AddLineString(batch2d.LineCapButt, star, geom.V(640, 340), 5, false, geom.RGB(1, 1, 0.3), true)

	// Rotated squares with additive blending
	r.SetBlendState(state.BlendAdditive)
	for i := range 8 {
		angle := float64(i)*math.Pi/4 + t
		r.SetTransformLocal(geom.Rotate(angle).Multiply(geom.Translate(150, 480)))
		r.AddRect(geom.R(-25, -25, 50, 50), hue(float64(i)*45).WithAlpha(0.5))
	}
	r.SetTransformLocal(geom.Identity())
	r.SetBlendState(state.BlendDefault)

	// Sprites
	r.AddTexture(sprite, geom.V(320, 420), geom.White)
	r.SetSamplerState(0, state.SamplerRepeatNearest)
	r.AddTextureRegion(sprite, geom.R(420, 420, 160, 120), geom.FloatRect{Right: 3, Bottom: 2}, geom.White)
	r.SetSamplerState(0, state.SamplerDefault2D)

	// Clipped overlay
	r.SetRasterizerState(state.RasterizerDefault2DScissor)
	r.SetScissorRect(image.Rect(600, 400, 760, 560))
	r.AddCircle(geom.V(680, 480), 110, geom.RGBA(0, 0.8, 1, 0.6), geom.RGBA(0, 0.8, 1, 0))
	r.SetRasterizerState(state.RasterizerDefault2D)
}

// hue returns a saturated color for an angle in degrees.
func hue(deg float64) geom.ColorF {
	c := func(shift float64) float64 {
		return 0.5 + 0.5*math.Cos((deg-shift)*math.Pi/180)
	}
	return geom.RGB(c(0), c(120), c(240))
}
