// Package batch packs the vertices and indices of many small draws into
// shared regions so they can be drawn with few GPU calls.
//
// An Allocator owns a list of regions. GetBuffer hands out slices of the
// current region; when the region is full it returns ErrBatchFull and the
// caller rotates with NextBatch, recording the rotation in the command
// stream so replay binds the right region before the following draws.
//
// Indices written by callers are local to the region: they are biased by
// the IndexOffset of the slot, which counts the vertices already written to
// the region. At replay each region is drawn with its own base vertex.
//
// Allocator is not safe for concurrent use.
package batch

import (
	"errors"
	"fmt"
)

// Batch errors.
var (
	// ErrBatchFull is returned when the current region cannot hold the request.
	ErrBatchFull = errors.New("batch: region full")

	// ErrRequestTooLarge is returned when a request exceeds a whole region.
	ErrRequestTooLarge = errors.New("batch: request exceeds region capacity")

	// ErrEmptyRequest is returned for requests without vertices or indices.
	ErrEmptyRequest = errors.New("batch: empty request")

	// ErrTooManyBatches is returned when NextBatch would exceed MaxBatches.
	ErrTooManyBatches = errors.New("batch: too many batches")
)

// Index is the element type of index buffers.
type Index = uint16

// Vertex2D is the vertex layout shared by every 2D shader.
type Vertex2D struct {
	Pos   [2]float32
	Tex   [2]float32
	Color [4]float32
}

// VertexSize is the size of Vertex2D in bytes.
const VertexSize = 32

// IndexSize is the size of Index in bytes.
const IndexSize = 2

// Default limits.
const (
	// DefaultVertexCapacity is the default number of vertices per region.
	// Local indices must stay addressable by Index.
	DefaultVertexCapacity = 65535

	// DefaultIndexCapacity is the default number of indices per region.
	DefaultIndexCapacity = DefaultVertexCapacity * 3

	// DefaultMaxBatches bounds the regions used in one frame.
	DefaultMaxBatches = 64

	// MinVertexCapacity is the smallest allowed region.
	MinVertexCapacity = 64
)

// Config holds configuration for an Allocator.
type Config struct {
	// VertexCapacity is the number of vertices per region, in
	// [MinVertexCapacity, DefaultVertexCapacity].
	VertexCapacity int

	// IndexCapacity is the number of indices per region. Defaults to
	// three times VertexCapacity when <= 0.
	IndexCapacity int

	// MaxBatches bounds the number of regions. Defaults to
	// DefaultMaxBatches when <= 0.
	MaxBatches int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		VertexCapacity: DefaultVertexCapacity,
		IndexCapacity:  DefaultIndexCapacity,
		MaxBatches:     DefaultMaxBatches,
	}
}

// Info locates a region inside the shared GPU buffers.
type Info struct {
	// BaseVertex is added to every index of the region at draw time.
	BaseVertex int32

	// StartIndex is the offset of the region's first index.
	StartIndex uint32
}

// Region is the CPU-side data of one batch.
type Region struct {
	Vertices []Vertex2D
	Indices  []Index
}

// Slot is the space handed out by GetBuffer. Callers write exactly
// len(Vertices) vertices and len(Indices) indices, each index biased by
// IndexOffset.
type Slot struct {
	Vertices    []Vertex2D
	Indices     []Index
	IndexOffset Index
}

// Allocator hands out vertex and index space from a list of regions.
type Allocator struct {
	vertexCapacity int
	indexCapacity  int
	maxBatches     int

	regions []Region
	current int
}

// New creates an Allocator. Out-of-range configuration values are clamped.
func New(config Config) *Allocator {
	vc := config.VertexCapacity
	if vc <= 0 || vc > DefaultVertexCapacity {
		vc = DefaultVertexCapacity
	}
	if vc < MinVertexCapacity {
		vc = MinVertexCapacity
	}

	ic := config.IndexCapacity
	if ic <= 0 {
		ic = vc * 3
	}

	mb := config.MaxBatches
	if mb <= 0 {
		mb = DefaultMaxBatches
	}

	a := &Allocator{
		vertexCapacity: vc,
		indexCapacity:  ic,
		maxBatches:     mb,
	}
	a.regions = append(a.regions, a.newRegion())
	return a
}

func (a *Allocator) newRegion() Region {
	return Region{
		Vertices: make([]Vertex2D, 0, a.vertexCapacity),
		Indices:  make([]Index, 0, a.indexCapacity),
	}
}

// VertexCapacity returns the number of vertices per region.
func (a *Allocator) VertexCapacity() int { return a.vertexCapacity }

// IndexCapacity returns the number of indices per region.
func (a *Allocator) IndexCapacity() int { return a.indexCapacity }

// GetBuffer reserves vertexCount vertices and indexCount indices in the
// current region. It returns ErrBatchFull when the region has no room,
// after which the caller should call NextBatch and retry.
func (a *Allocator) GetBuffer(vertexCount, indexCount int) (Slot, error) {
	if vertexCount <= 0 || indexCount <= 0 {
		return Slot{}, fmt.Errorf("%w: %d vertices, %d indices", ErrEmptyRequest, vertexCount, indexCount)
	}
	if vertexCount > a.vertexCapacity || indexCount > a.indexCapacity {
		return Slot{}, fmt.Errorf("%w: %d vertices, %d indices (capacity %d, %d)",
			ErrRequestTooLarge, vertexCount, indexCount, a.vertexCapacity, a.indexCapacity)
	}

	r := &a.regions[a.current]
	nv, ni := len(r.Vertices), len(r.Indices)
	if nv+vertexCount > a.vertexCapacity || ni+indexCount > a.indexCapacity {
		return Slot{}, ErrBatchFull
	}

	r.Vertices = r.Vertices[:nv+vertexCount]
	r.Indices = r.Indices[:ni+indexCount]
	return Slot{
		Vertices:    r.Vertices[nv:],
		Indices:     r.Indices[ni:],
		IndexOffset: Index(nv),
	}, nil
}

// NextBatch rotates to a fresh region and returns its index.
func (a *Allocator) NextBatch() (uint32, error) {
	next := a.current + 1
	if next >= a.maxBatches {
		return uint32(a.current), fmt.Errorf("%w: limit %d", ErrTooManyBatches, a.maxBatches)
	}
	if next == len(a.regions) {
		a.regions = append(a.regions, a.newRegion())
	} else {
		a.regions[next].Vertices = a.regions[next].Vertices[:0]
		a.regions[next].Indices = a.regions[next].Indices[:0]
	}
	a.current = next
	return uint32(next), nil
}

// Current returns the index of the region GetBuffer writes to.
func (a *Allocator) Current() uint32 {
	return uint32(a.current)
}

// Count returns the number of regions in use this frame.
func (a *Allocator) Count() int {
	return a.current + 1
}

// Batch returns the data and location of region i.
// It panics if i is not a region in use.
func (a *Allocator) Batch(i uint32) (Region, Info) {
	if int(i) > a.current {
		panic(fmt.Sprintf("batch: region %d not in use (current %d)", i, a.current))
	}
	return a.regions[i], a.Info(i)
}

// Info returns where region i lives in the shared GPU buffers.
func (a *Allocator) Info(i uint32) Info {
	return Info{
		BaseVertex: int32(i) * int32(a.vertexCapacity),
		StartIndex: i * uint32(a.indexCapacity),
	}
}

// MaxBatches returns the region limit.
func (a *Allocator) MaxBatches() int {
	return a.maxBatches
}

// Reset empties every region and rewinds to region 0, keeping storage.
func (a *Allocator) Reset() {
	for i := 0; i <= a.current; i++ {
		a.regions[i].Vertices = a.regions[i].Vertices[:0]
		a.regions[i].Indices = a.regions[i].Indices[:0]
	}
	a.current = 0
}
