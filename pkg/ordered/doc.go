// Package ordered provides a string-keyed map that remembers insertion order
// together with a JSON codec that preserves object key order in both
// directions. Wire objects decoded by this package and typed map values
// produced by the conversion engine share the same representation.
package ordered
