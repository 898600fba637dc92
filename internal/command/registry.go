package command

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps command names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Defaults returns a Registry holding the built-in commands.
func Defaults() *Registry {
	r := NewRegistry()
	r.MustRegister(VersionName, NewVersion)
	r.MustRegister(DescribeAPIName, NewDescribeAPI)
	return r
}

// normalize lowercases and trims a command name.
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds f under name. Names are case-insensitive.
func (r *Registry) Register(name string, f Factory) error {
	key := normalize(name)
	if key == "" {
		return ErrInvalidName
	}
	if f == nil {
		return fmt.Errorf("register %q: nil factory", key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[key]; exists {
		return fmt.Errorf("register %q: %w", key, ErrDuplicate)
	}
	r.factories[key] = f
	return nil
}

// MustRegister is Register that panics on error. Use it for static wiring.
func (r *Registry) MustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[normalize(name)]
	return f, ok
}

// Names returns the registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

// New constructs the command registered under name, bound to c.
func (r *Registry) New(name string, c *Context) (Command, error) {
	f, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, normalize(name))
	}
	return f(c), nil
}
