package backend

import (
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Backend name constants.
const (
	// BackendNative is the name of the wgpu HAL driver.
	BackendNative = "native"
	// BackendNull is the name of the recording driver without a GPU.
	BackendNull = "null"
)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first available wins).
	backendPriority = []string{BackendNative, BackendNull}
)

// Register registers a driver factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open creates a driver with the named backend.
func Open(name string, opts Options) (Driver, error) {
	if opts.Shaders == nil {
		return nil, ErrNoShaders
	}
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q not registered", ErrBackendNotAvailable, name)
	}
	d, err := factory(opts)
	if err != nil {
		return nil, fmt.Errorf("backend %q: %w", name, err)
	}
	return d, nil
}

// OpenDefault creates a driver with the first backend in priority order
// that can serve opts, falling back to any other registered backend. It
// returns the chosen backend name.
func OpenDefault(opts Options) (Driver, string, error) {
	names := Available()
	order := make([]string, 0, len(names))
	for _, name := range backendPriority {
		if slices.Contains(names, name) {
			order = append(order, name)
		}
	}
	for _, name := range names {
		if !slices.Contains(order, name) {
			order = append(order, name)
		}
	}

	for _, name := range order {
		d, err := Open(name, opts)
		if err == nil {
			return d, name, nil
		}
		if !errors.Is(err, ErrBackendNotAvailable) {
			return nil, "", err
		}
	}
	return nil, "", ErrBackendNotAvailable
}
