// Package value holds the typed in-memory representations produced by the
// conversion engine: model instances (Object), matched union values (Union)
// and upload bodies (File).
package value
