// Package resource implements a cross-goroutine rendezvous for creating
// resources that must be built on one owning goroutine.
//
// GPU objects are created on the render goroutine. A loader running
// elsewhere posts a request with Request and blocks; the render goroutine
// calls Serve once per frame to create the queued resources and hand the
// results back. Requests time out with ErrResourceCreationTimeout.
package resource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Rendezvous errors.
var (
	// ErrResourceCreationTimeout is returned when a request is not served in time.
	ErrResourceCreationTimeout = errors.New("resource: creation timed out")

	// ErrClosed is returned for requests made or pending after Close.
	ErrClosed = errors.New("resource: rendezvous closed")
)

// DefaultTimeout is the time a requester waits before giving up.
const DefaultTimeout = 5 * time.Second

// Config holds configuration for a Rendezvous.
type Config struct {
	// Timeout bounds how long Request blocks. Zero means DefaultTimeout;
	// a negative value disables the timeout (only ctx can cancel).
	Timeout time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{Timeout: DefaultTimeout}
}

// request states
const (
	statePending int32 = iota
	stateServing
	stateAbandoned
)

type result[Res any] struct {
	value Res
	err   error
}

type request[Req, Res any] struct {
	req   Req
	state atomic.Int32
	done  chan result[Res]
}

// Rendezvous queues requests from any goroutine and serves them on the
// owning goroutine.
type Rendezvous[Req, Res any] struct {
	mu      sync.Mutex
	queue   []*request[Req, Res]
	closed  bool
	timeout time.Duration
}

// New creates a Rendezvous.
func New[Req, Res any](config Config) *Rendezvous[Req, Res] {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &Rendezvous[Req, Res]{timeout: timeout}
}

// Timeout returns the configured request timeout (negative when disabled).
func (r *Rendezvous[Req, Res]) Timeout() time.Duration {
	return r.timeout
}

// Request posts req and blocks until it is served, ctx is done, the
// timeout elapses, or the rendezvous is closed. A request that has already
// started being served is always waited for, so its result is never lost.
func (r *Rendezvous[Req, Res]) Request(ctx context.Context, req Req) (Res, error) {
	var zero Res

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return zero, ErrClosed
	}
	p := &request[Req, Res]{req: req, done: make(chan result[Res], 1)}
	r.queue = append(r.queue, p)
	r.mu.Unlock()

	var timeoutC <-chan time.Time
	if r.timeout > 0 {
		timer := time.NewTimer(r.timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case res := <-p.done:
		return res.value, res.err
	case <-ctx.Done():
		if p.state.CompareAndSwap(statePending, stateAbandoned) {
			return zero, ctx.Err()
		}
	case <-timeoutC:
		if p.state.CompareAndSwap(statePending, stateAbandoned) {
			return zero, fmt.Errorf("%w after %s", ErrResourceCreationTimeout, r.timeout)
		}
	}

	// Being served right now.
	res := <-p.done
	return res.value, res.err
}

// Serve fulfils up to limit queued requests with fn, in request order, on the
// calling goroutine. limit <= 0 serves every queued request. Requests whose
// caller has given up are dropped without calling fn. It returns the number
// of requests served.
func (r *Rendezvous[Req, Res]) Serve(limit int, fn func(Req) (Res, error)) int {
	r.mu.Lock()
	n := len(r.queue)
	if limit > 0 && limit < n {
		n = limit
	}
	batch := make([]*request[Req, Res], n)
	copy(batch, r.queue[:n])
	r.queue = append(r.queue[:0], r.queue[n:]...)
	r.mu.Unlock()

	served := 0
	for _, p := range batch {
		if !p.state.CompareAndSwap(statePending, stateServing) {
			continue
		}
		value, err := fn(p.req)
		p.done <- result[Res]{value: value, err: err}
		served++
	}
	return served
}

// Pending returns the number of queued requests, including abandoned ones
// not yet drained by Serve.
func (r *Rendezvous[Req, Res]) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// Close fails every queued request with ErrClosed and rejects new ones.
// It returns the number of waiting requesters released.
func (r *Rendezvous[Req, Res]) Close() int {
	r.mu.Lock()
	r.closed = true
	queue := r.queue
	r.queue = nil
	r.mu.Unlock()

	released := 0
	for _, p := range queue {
		if p.state.CompareAndSwap(statePending, stateServing) {
			p.done <- result[Res]{err: ErrClosed}
			released++
		}
	}
	return released
}
