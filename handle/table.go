// Package handle provides a generic registry that maps small integer IDs to
// owned resources.
//
// A Table owns every resource added to it. IDs are weak references: they are
// looked up, never dereferenced directly, and the reserved NullAsset ID always
// resolves to a valid null object installed with SetNullData. This removes
// nil checks from every draw call that takes a texture or shader ID.
//
// IDs are handed out from a monotonic counter. Once the counter has wrapped
// past the capacity, the table falls back to a linear scan for the first
// free ID, so recycling only costs O(n) for long-running programs that
// have already created more resources than the table can hold at once.
//
// Table is safe for concurrent use.
package handle

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Handle table errors.
var (
	// ErrInvalidHandle is returned when an ID does not refer to a live entry.
	ErrInvalidHandle = errors.New("handle: invalid handle")

	// ErrNullDataAlreadySet is returned when SetNullData is called twice.
	ErrNullDataAlreadySet = errors.New("handle: null data already set")

	// ErrNullDataMissing is returned when the null object is needed before
	// SetNullData has been called.
	ErrNullDataMissing = errors.New("handle: null data not set")
)

// ID is the constraint satisfied by resource identifiers.
type ID interface {
	~uint32
}

const (
	// NullAsset is the reserved ID of the null object.
	NullAsset = 0

	// InvalidID is the reserved sentinel that is never handed out.
	InvalidID = math.MaxUint32

	// MaxCapacity is the largest number of live non-null entries a table can hold.
	MaxCapacity = InvalidID - 1
)

// IsNull reports whether id is the null asset.
func IsNull[I ID](id I) bool {
	return id == NullAsset
}

// Releaser is implemented by resources that hold external state
// (GPU objects, file handles). Release is called when the entry is erased
// or the table is destroyed.
type Releaser interface {
	Release()
}

// Monitor observes resource lifetimes. Calls are fire-and-forget and are
// made without the table lock held.
type Monitor interface {
	Created(table string, id uint32, info string)
	Released(table string, id uint32)
}

type entry[R any] struct {
	res  R
	info string
}

// Table maps IDs to owned resources.
type Table[I ID, R any] struct {
	mu sync.Mutex

	name     string
	entries  map[I]entry[R]
	null     R
	hasNull  bool
	counter  uint32
	wrapped  bool
	capacity uint32

	monitor Monitor
	release func(R)
}

// Option configures a Table.
type Option func(*options)

type options struct {
	capacity uint32
	monitor  Monitor
	release  any
}

// WithCapacity limits the number of live non-null entries. IDs are then
// allocated from [1, n]. Values of zero or above MaxCapacity are clamped to
// MaxCapacity.
func WithCapacity(n uint32) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithMonitor installs a lifetime observer.
func WithMonitor(m Monitor) Option {
	return func(o *options) {
		o.monitor = m
	}
}

// WithRelease installs a function that destroys resources removed from the
// table. It takes precedence over the Releaser interface.
func WithRelease[R any](fn func(R)) Option {
	return func(o *options) {
		o.release = fn
	}
}

// New creates an empty table. The name is used in log output and monitor
// notifications.
func New[I ID, R any](name string, opts ...Option) *Table[I, R] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	capacity := o.capacity
	if capacity == 0 || capacity > MaxCapacity {
		capacity = MaxCapacity
	}

	t := &Table[I, R]{
		name:     name,
		entries:  make(map[I]entry[R]),
		capacity: capacity,
		monitor:  o.monitor,
	}
	if fn, ok := o.release.(func(R)); ok {
		t.release = fn
	}
	return t
}

// Name returns the table name.
func (t *Table[I, R]) Name() string {
	return t.name
}

// Capacity returns the maximum number of live non-null entries.
func (t *Table[I, R]) Capacity() uint32 {
	return t.capacity
}

// SetNullData installs the object that NullAsset resolves to.
// It must be called once, before the first Add.
func (t *Table[I, R]) SetNullData(r R) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.hasNull {
		return fmt.Errorf("%w: table %q", ErrNullDataAlreadySet, t.name)
	}
	t.null = r
	t.hasNull = true
	return nil
}

// Add inserts r and returns its new ID. When the table is full, or the null
// object has not been installed yet, the resource is not stored and NullAsset
// is returned; callers keep working through the null object.
func (t *Table[I, R]) Add(r R, info string) I {
	t.mu.Lock()

	if !t.hasNull {
		t.mu.Unlock()
		slogger().Error("handle: add before SetNullData", "table", t.name, "info", info)
		return NullAsset
	}

	if uint32(len(t.entries)) >= t.capacity {
		t.mu.Unlock()
		slogger().Warn("handle: table is full", "table", t.name, "capacity", t.capacity, "info", info)
		return NullAsset
	}

	id := I(t.nextID())
	t.entries[id] = entry[R]{res: r, info: info}
	monitor := t.monitor
	t.mu.Unlock()

	slogger().Debug("handle: created", "table", t.name, "id", uint32(id), "info", info)
	if monitor != nil {
		monitor.Created(t.name, uint32(id), info)
	}
	return id
}

// nextID returns a free ID. Must be called with mu held and with at least
// one free slot.
func (t *Table[I, R]) nextID() uint32 {
	if !t.wrapped {
		t.counter++
		if t.counter <= t.capacity {
			return t.counter
		}
		t.wrapped = true
		t.counter = 0
	}

	for id := uint32(1); id <= t.capacity; id++ {
		if _, used := t.entries[I(id)]; !used {
			return id
		}
	}
	return NullAsset
}

// Get returns the resource for id. NullAsset resolves to the null object.
func (t *Table[I, R]) Get(id I) (R, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == NullAsset {
		if !t.hasNull {
			var zero R
			return zero, fmt.Errorf("%w: table %q", ErrNullDataMissing, t.name)
		}
		return t.null, nil
	}

	e, ok := t.entries[id]
	if !ok {
		var zero R
		return zero, fmt.Errorf("%w: table %q id %d", ErrInvalidHandle, t.name, uint32(id))
	}
	return e.res, nil
}

// MustGet is like Get but panics on an invalid ID. Use it where an invalid
// ID is a programming error.
func (t *Table[I, R]) MustGet(id I) R {
	r, err := t.Get(id)
	if err != nil {
		panic(err)
	}
	return r
}

// GetOrNull returns the resource for id, or the null object when id is not
// live. The boolean reports whether id was live (or NullAsset).
func (t *Table[I, R]) GetOrNull(id I) (R, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id != NullAsset {
		if e, ok := t.entries[id]; ok {
			return e.res, true
		}
		return t.null, false
	}
	return t.null, t.hasNull
}

// Contains reports whether id refers to a live entry. NullAsset is contained
// once the null object is set.
func (t *Table[I, R]) Contains(id I) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if id == NullAsset {
		return t.hasNull
	}
	_, ok := t.entries[id]
	return ok
}

// Erase removes and releases the resource for id. Erasing NullAsset is a no-op.
func (t *Table[I, R]) Erase(id I) error {
	if id == NullAsset {
		return nil
	}

	t.mu.Lock()
	e, ok := t.entries[id]
	if !ok {
		t.mu.Unlock()
		return fmt.Errorf("%w: table %q id %d", ErrInvalidHandle, t.name, uint32(id))
	}
	delete(t.entries, id)
	monitor := t.monitor
	t.mu.Unlock()

	t.releaseResource(e.res)
	slogger().Debug("handle: released", "table", t.name, "id", uint32(id), "info", e.info)
	if monitor != nil {
		monitor.Released(t.name, uint32(id))
	}
	return nil
}

// Len returns the number of live non-null entries.
func (t *Table[I, R]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Each calls fn for every live non-null entry in ascending ID order until fn
// returns false. fn runs on a snapshot, so it may call back into the table.
func (t *Table[I, R]) Each(fn func(I, R) bool) {
	t.mu.Lock()
	ids := make([]I, 0, len(t.entries))
	for id := range t.entries {
		ids = append(ids, id)
	}
	snapshot := make(map[I]R, len(t.entries))
	for id, e := range t.entries {
		snapshot[id] = e.res
	}
	t.mu.Unlock()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if !fn(id, snapshot[id]) {
			return
		}
	}
}

// Destroy releases every entry and the null object, and resets the table.
// It is used at shutdown; entries still alive are logged.
func (t *Table[I, R]) Destroy() {
	t.mu.Lock()
	entries := t.entries
	null, hasNull := t.null, t.hasNull
	monitor := t.monitor

	t.entries = make(map[I]entry[R])
	var zero R
	t.null = zero
	t.hasNull = false
	t.counter = 0
	t.wrapped = false
	t.mu.Unlock()

	ids := make([]I, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		e := entries[id]
		slogger().Debug("handle: released at shutdown", "table", t.name, "id", uint32(id), "info", e.info)
		t.releaseResource(e.res)
		if monitor != nil {
			monitor.Released(t.name, uint32(id))
		}
	}
	if hasNull {
		t.releaseResource(null)
	}
}

func (t *Table[I, R]) releaseResource(r R) {
	if t.release != nil {
		t.release(r)
		return
	}
	if rel, ok := any(r).(Releaser); ok {
		rel.Release()
	}
}
