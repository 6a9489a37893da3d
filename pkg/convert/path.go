package convert

import (
	"strconv"
	"strings"
)

// Path locates a node relative to the conversion root. Paths are immutable:
// appending a segment returns a new Path and leaves the receiver untouched.
// The zero Path is the root.
type Path struct {
	tail *segment
	size int
}

type segmentKind uint8

const (
	segmentField segmentKind = iota
	segmentIndex
	segmentKey
)

type segment struct {
	parent *segment
	kind   segmentKind
	name   string
	index  int
}

// Field appends a model field name.
func (p Path) Field(name string) Path {
	return p.push(&segment{kind: segmentField, name: name})
}

// Index appends a list index.
func (p Path) Index(i int) Path {
	return p.push(&segment{kind: segmentIndex, index: i})
}

// Key appends a map key.
func (p Path) Key(key string) Path {
	return p.push(&segment{kind: segmentKey, name: key})
}

func (p Path) push(s *segment) Path {
	s.parent = p.tail
	return Path{tail: s, size: p.size + 1}
}

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool {
	return p.tail == nil
}

// Len reports the number of segments.
func (p Path) Len() int {
	return p.size
}

func (p Path) segments() []*segment {
	out := make([]*segment, p.size)
	i := p.size - 1
	for s := p.tail; s != nil; s = s.parent {
		out[i] = s
		i--
	}
	return out
}

// Segments returns the raw segments from the root, indexes rendered as
// decimal strings.
func (p Path) Segments() []string {
	segs := p.segments()
	out := make([]string, 0, len(segs))
	for _, s := range segs {
		if s.kind == segmentIndex {
			out = append(out, strconv.Itoa(s.index))
			continue
		}
		out = append(out, s.name)
	}
	return out
}

// String renders the path in dotted/indexed form, e.g. "messages[0].role".
// Map keys that are not plain identifiers render quoted: `metadata["a.b"]`.
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p.segments() {
		switch {
		case s.kind == segmentIndex:
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(s.index))
			b.WriteByte(']')
		case s.kind == segmentKey && !isIdentifier(s.name):
			b.WriteByte('[')
			b.WriteString(strconv.Quote(s.name))
			b.WriteByte(']')
		default:
			if i > 0 {
				b.WriteByte('.')
			}
			b.WriteString(s.name)
		}
	}
	return b.String()
}

// Pointer renders the path as an RFC 6901 JSON pointer over in-memory names.
func (p Path) Pointer() string {
	var b strings.Builder
	replacer := strings.NewReplacer("~", "~0", "/", "~1")
	for _, segment := range p.Segments() {
		b.WriteByte('/')
		b.WriteString(replacer.Replace(segment))
	}
	return b.String()
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '-':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
