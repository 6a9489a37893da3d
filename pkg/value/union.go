package value

import "io"

// Union is the result of coercing a union shape: the zero-based index of the
// variant that matched, its description and the variant's typed value.
type Union struct {
	Index   int
	Variant string
	Value   any
}

// File is an upload body. A Body that also implements io.Seeker can be
// rewound and resent; any other reader is consumed by the first attempt.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// Rewindable reports whether the body can be replayed.
func (f File) Rewindable() bool {
	_, ok := f.Body.(io.Seeker)
	return ok
}
