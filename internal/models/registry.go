// Package models keeps the process-wide table of model names per provider.
// Entries are filled lazily by fetchers and never invalidated; until a
// provider's list is loaded, callers must treat its models as unknown.
package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"
)

var (
	ErrUnsupportedProvider = errors.New("no model list fetcher for provider")
	ErrMissingKey          = errors.New("provider API key is not set")
)

// State is what the registry knows about one provider.
type State uint8

const (
	// StateAbsent means no list has been loaded.
	StateAbsent State = iota
	// StateLoading means a fetch is in flight; there is still no list.
	StateLoading
	// StateLoaded means a non-empty list is available.
	StateLoaded
	// StateEmpty means the provider answered with no models.
	StateEmpty
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateEmpty:
		return "empty"
	}
	return "unknown"
}

// Fetcher lists the model names a provider serves.
type Fetcher interface {
	Models(ctx context.Context) ([]string, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context) ([]string, error)

func (f FetcherFunc) Models(ctx context.Context) ([]string, error) { return f(ctx) }

type entry struct {
	state State
	names []string
	set   map[string]struct{}
}

// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	entries  map[string]*entry
	fetchers map[string]Fetcher
	group    singleflight.Group
}

// NewRegistry returns an empty registry using fetchers keyed by provider.
func NewRegistry(fetchers map[string]Fetcher) *Registry {
	if fetchers == nil {
		fetchers = make(map[string]Fetcher)
	}
	return &Registry{entries: make(map[string]*entry), fetchers: fetchers}
}

// Seed stores names for provider, replacing any previous list.
func (r *Registry) Seed(provider string, names []string) {
	e := &entry{state: StateEmpty, set: make(map[string]struct{}, len(names))}
	for _, n := range names {
		if _, dup := e.set[n]; dup || n == "" {
			continue
		}
		e.set[n] = struct{}{}
		e.names = append(e.names, n)
	}
	if len(e.names) > 0 {
		e.state = StateLoaded
	}
	sort.Strings(e.names)
	r.mu.Lock()
	r.entries[provider] = e
	r.mu.Unlock()
}

// Lookup returns the known names and the provider's state. The slice must
// not be modified.
func (r *Registry) Lookup(provider string) ([]string, State) {
	if r == nil {
		return nil, StateAbsent
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[provider]
	if !ok {
		return nil, StateAbsent
	}
	return e.names, e.state
}

// Has reports whether model is listed for provider. ok is false unless the
// provider's list is loaded.
func (r *Registry) Has(provider, model string) (found, ok bool) {
	if r == nil {
		return false, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, exists := r.entries[provider]
	if !exists || e.state != StateLoaded {
		return false, false
	}
	_, found = e.set[model]
	return found, true
}

// Fetch loads provider's list, sharing one call among concurrent callers.
func (r *Registry) Fetch(ctx context.Context, provider string) ([]string, error) {
	f, ok := r.fetchers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, provider)
	}
	v, err, _ := r.group.Do(provider, func() (any, error) {
		r.markLoading(provider)
		names, err := f.Models(ctx)
		if err != nil {
			r.clearLoading(provider)
			return nil, fmt.Errorf("list %s models: %w", provider, err)
		}
		r.Seed(provider, names)
		got, _ := r.Lookup(provider)
		return got, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// Ensure starts a background fetch when provider has no list and no fetch
// is running. The returned channel closes when that fetch finishes; it is
// nil when nothing was started.
func (r *Registry) Ensure(ctx context.Context, provider string) <-chan struct{} {
	if _, ok := r.fetchers[provider]; !ok {
		return nil
	}
	r.mu.Lock()
	if e, ok := r.entries[provider]; ok && e.state != StateAbsent {
		r.mu.Unlock()
		return nil
	}
	r.entries[provider] = &entry{state: StateLoading}
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Fetch(ctx, provider)
	}()
	return done
}

// Providers lists providers that have a fetcher.
func (r *Registry) Providers() []string {
	out := make([]string, 0, len(r.fetchers))
	for p := range r.fetchers {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) markLoading(provider string) {
	r.mu.Lock()
	if e, ok := r.entries[provider]; !ok || e.state == StateAbsent {
		r.entries[provider] = &entry{state: StateLoading}
	}
	r.mu.Unlock()
}

// clearLoading returns a failed provider to absent unless another writer
// already stored a list.
func (r *Registry) clearLoading(provider string) {
	r.mu.Lock()
	if e, ok := r.entries[provider]; ok && e.state == StateLoading {
		delete(r.entries, provider)
	}
	r.mu.Unlock()
}
