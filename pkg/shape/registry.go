package shape

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Ref is a late-bound reference to a shape registered under a name. Refs
// make recursive models expressible.
type Ref struct {
	name     string
	registry *Registry
}

func (r *Ref) Kind() Kind     { return KindRef }
func (r *Ref) String() string { return r.name }
func (r *Ref) sealed()        {}

// Name returns the referenced name.
func (r *Ref) Name() string { return r.name }

// Resolve returns the referenced shape, following chains of references.
func (r *Ref) Resolve() (Shape, bool) {
	seen := map[*Ref]struct{}{}
	current := r
	for {
		if _, loop := seen[current]; loop || current.registry == nil {
			return nil, false
		}
		seen[current] = struct{}{}
		target, ok := current.registry.Lookup(current.name)
		if !ok {
			return nil, false
		}
		next, isRef := target.(*Ref)
		if !isRef {
			return target, true
		}
		current = next
	}
}

// Registry holds named shapes. Registration normally happens once at
// startup; lookups are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	shapes map[string]Shape
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{shapes: make(map[string]Shape)}
}

// Register stores s under name. Names must be unique.
func (r *Registry) Register(name string, s Shape) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("shape registry: name is required")
	}
	if s == nil {
		return fmt.Errorf("shape registry: shape %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shapes == nil {
		r.shapes = make(map[string]Shape)
	}
	if _, exists := r.shapes[name]; exists {
		return fmt.Errorf("shape registry: %q already registered", name)
	}
	r.shapes[name] = s
	return nil
}

// MustRegister panics when Register fails.
func (r *Registry) MustRegister(name string, s Shape) {
	if err := r.Register(name, s); err != nil {
		panic(err)
	}
}

// Lookup returns the shape registered under name.
func (r *Registry) Lookup(name string) (Shape, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.shapes[name]
	return s, ok
}

// Ref returns a reference to name bound to this registry. The name does not
// need to be registered yet.
func (r *Registry) Ref(name string) *Ref {
	return &Ref{name: name, registry: r}
}

// Names lists registered names in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.shapes))
	for name := range r.shapes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len reports the number of registered shapes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.shapes)
}

// Resolve verifies that every reference reachable from a registered shape
// resolves.
func (r *Registry) Resolve() error {
	visited := make(map[Shape]struct{})
	for _, name := range r.Names() {
		s, _ := r.Lookup(name)
		if err := resolveWalk(s, name, visited); err != nil {
			return err
		}
	}
	return nil
}

func resolveWalk(s Shape, owner string, visited map[Shape]struct{}) error {
	if _, seen := visited[s]; seen {
		return nil
	}
	visited[s] = struct{}{}
	if ref, ok := s.(*Ref); ok {
		target, found := ref.Resolve()
		if !found {
			return fmt.Errorf("shape registry: %s references unknown shape %q", owner, ref.Name())
		}
		return resolveWalk(target, ref.Name(), visited)
	}
	for _, child := range Children(s) {
		if err := resolveWalk(child, owner, visited); err != nil {
			return err
		}
	}
	return nil
}
