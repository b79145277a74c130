package batch2d

import (
	"github.com/gogpu/batch2d/batch"
	"github.com/gogpu/batch2d/geom"
	"github.com/gogpu/batch2d/internal/tess"
	"github.com/gogpu/batch2d/texture"
)

// AddTexture draws the whole texture with its top-left corner at pos, at
// its natural size.
func (r *Renderer) AddTexture(tex texture.ID, pos geom.Vec2, c geom.ColorF) int {
	w, h := r.textures.Size(tex)
	if w <= 0 || h <= 0 {
		return r.drop()
	}
	return r.AddTextureRegion(tex, geom.R(pos.X, pos.Y, float64(w), float64(h)), geom.FullUV, c)
}

// AddTextureRegion draws the uv region of tex stretched over rc.
func (r *Renderer) AddTextureRegion(tex texture.ID, rc geom.Rect, uv geom.FloatRect, c geom.ColorF) int {
	return r.drawTextured(tex, tess.TextureRegion(r.fn, rect(rc), uvRect(uv), same4(c)))
}

// AddTextureRegionColors is AddTextureRegion with corner colors given
// clockwise from the top-left corner.
func (r *Renderer) AddTextureRegionColors(tex texture.ID, rc geom.Rect, uv geom.FloatRect, cs [4]geom.ColorF) int {
	return r.drawTextured(tex, tess.TextureRegion(r.fn, rect(rc), uvRect(uv), colors4(cs)))
}

// AddTexturedCircle draws a circle showing the ellipse inscribed in the uv
// region of tex.
func (r *Renderer) AddTexturedCircle(tex texture.ID, circle geom.Circle, uv geom.FloatRect, c geom.ColorF) int {
	return r.drawTextured(tex, tess.TexturedCircle(r.fn, vec(circle.Center), float32(circle.R), uvRect(uv), c.Float4(), r.scale()))
}

// AddTexturedQuad draws the uv region of tex mapped onto q. The region's
// top-left corner goes to q.P0.
func (r *Renderer) AddTexturedQuad(tex texture.ID, q geom.Quad, uv geom.FloatRect, c geom.ColorF) int {
	return r.drawTextured(tex, tess.TexturedQuad(r.fn, quad(q), uvRect(uv), c.Float4()))
}

// AddSprite draws prebuilt textured geometry. The index count is rounded
// down to whole triangles.
func (r *Renderer) AddSprite(tex texture.ID, vertices []batch.Vertex2D, indices []uint16) int {
	return r.AddSpriteRange(tex, vertices, indices, 0, len(indices))
}

// AddSpriteRange draws count indices of a sprite starting at start. The
// range is clamped to the available indices.
func (r *Renderer) AddSpriteRange(tex texture.ID, vertices []batch.Vertex2D, indices []uint16, start, count int) int {
	return r.drawTextured(tex, tess.Sprite(r.fn, vertices, indices, start, count))
}

// Particle is one particle of a particle system as drawn by
// AddTexturedParticles.
type Particle struct {
	Position geom.Vec2
	Rotation float64

	StartSize  float64
	StartColor geom.ColorF

	// StartLifeTime and RemainingLifeTime are in seconds.
	StartLifeTime, RemainingLifeTime float64
}

// SizeOverLifeTime returns the size of a particle at its current age.
type SizeOverLifeTime func(startSize, startLifeTime, remainingLifeTime float64) float64

// ColorOverLifeTime returns the color of a particle at its current age.
type ColorOverLifeTime func(startColor geom.ColorF, startLifeTime, remainingLifeTime float64) geom.ColorF

// AddTexturedParticles draws every particle as a square showing the whole
// texture, rotated by the particle's rotation. Nil functions keep the
// start size and color.
func (r *Renderer) AddTexturedParticles(tex texture.ID, particles []Particle, size SizeOverLifeTime, color ColorOverLifeTime) int {
	buf := make([]tess.Particle, len(particles))
	for i, p := range particles {
		sz, c := p.StartSize, p.StartColor
		if size != nil {
			sz = size(p.StartSize, p.StartLifeTime, p.RemainingLifeTime)
		}
		if color != nil {
			c = color(p.StartColor, p.StartLifeTime, p.RemainingLifeTime)
		}
		buf[i] = tess.Particle{
			Center:   vec(p.Position),
			Rotation: float32(p.Rotation),
			Size:     float32(sz),
			Color:    c.Float4(),
		}
	}
	return r.drawTextured(tex, tess.TexturedParticles(r.fn, buf))
}
