package shape

import (
	"fmt"
	"strings"
)

// Union is an ordered list of candidate variants. Order is significant: the
// first variant that accepts a value wins, which resolves inputs that could
// satisfy more than one variant.
type Union struct {
	name     string
	variants []Shape
}

// NewUnion declares a union. An empty name declares an anonymous union.
func NewUnion(name string, variants ...Shape) (*Union, error) {
	if len(variants) == 0 {
		return nil, fmt.Errorf("shape: union %q declares no variants", name)
	}
	for i, variant := range variants {
		if variant == nil {
			return nil, fmt.Errorf("shape: union %q: variant %d is nil", name, i)
		}
	}
	return &Union{name: name, variants: append([]Shape(nil), variants...)}, nil
}

// MustUnion is NewUnion for static declarations; it panics on error.
func MustUnion(name string, variants ...Shape) *Union {
	u, err := NewUnion(name, variants...)
	if err != nil {
		panic(err)
	}
	return u
}

// OneOf declares an anonymous union.
func OneOf(variants ...Shape) *Union {
	return MustUnion("", variants...)
}

func (u *Union) Kind() Kind { return KindUnion }
func (u *Union) sealed()    {}

// String returns the union name, or "union<a|b>" for anonymous unions.
func (u *Union) String() string {
	if u.name != "" {
		return u.name
	}
	parts := make([]string, 0, len(u.variants))
	for _, variant := range u.variants {
		parts = append(parts, variant.String())
	}
	return "union<" + strings.Join(parts, "|") + ">"
}

// Name returns the declared name, possibly empty.
func (u *Union) Name() string { return u.name }

// Variants returns the candidates in declaration order.
func (u *Union) Variants() []Shape { return append([]Shape(nil), u.variants...) }

// Variant returns the candidate at index i.
func (u *Union) Variant(i int) (Shape, bool) {
	if i < 0 || i >= len(u.variants) {
		return nil, false
	}
	return u.variants[i], true
}

// Len reports the number of variants.
func (u *Union) Len() int { return len(u.variants) }
