package encoder

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Provider owns the shared base encoder for the process.
//
// The capability is loaded lazily on first Acquire and reloaded only when the
// requested model identity differs from the loaded one. Consumers receive a
// read-shared Capability and must not mutate it; per-request optimization
// goes through CloneTextTower instead.
type Provider struct {
	load LoadFunc

	mu      sync.RWMutex
	current Capability

	group singleflight.Group
}

// NewProvider builds a Provider around the host's load function.
func NewProvider(load LoadFunc) *Provider {
	return &Provider{load: load}
}

// Acquire returns the capability for modelID, loading or switching models as
// needed. Concurrent calls for the same identity share a single load. The
// previously loaded capability is released after a switch.
func (p *Provider) Acquire(ctx context.Context, modelID string) (Capability, error) {
	if p.load == nil {
		return nil, fmt.Errorf("no loader configured: %w", ErrModelUnavailable)
	}

	p.mu.RLock()
	current := p.current
	p.mu.RUnlock()
	if current != nil && current.ID() == modelID {
		return current, nil
	}

	v, err, _ := p.group.Do(modelID, func() (interface{}, error) {
		// Re-check under the write path: another flight may have swapped
		// the model in while this call was queued.
		p.mu.RLock()
		cur := p.current
		p.mu.RUnlock()
		if cur != nil && cur.ID() == modelID {
			return cur, nil
		}

		loaded, err := p.load(ctx, modelID)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", modelID, err)
		}

		p.mu.Lock()
		stale := p.current
		p.current = loaded
		p.mu.Unlock()

		if stale != nil {
			stale.Release()
		}
		return loaded, nil
	})
	if err != nil {
		if !IsModelUnavailable(err) {
			err = fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}
		return nil, err
	}
	return v.(Capability), nil
}

// Current returns the loaded capability without triggering a load, or nil.
func (p *Provider) Current() Capability {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Release drops and releases the loaded capability, if any.
func (p *Provider) Release() {
	p.mu.Lock()
	current := p.current
	p.current = nil
	p.mu.Unlock()
	if current != nil {
		current.Release()
	}
}
