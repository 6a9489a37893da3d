// Package client sends API requests built by the conversion engine. A
// Client dumps typed parameters against their shape, hands the wire tree to a
// Transport together with the retry-safety flag from the dump, and coerces the
// response body against the result shape.
//
// The HTTP transport only retries a request when its body can be replayed:
// bodies that carry a one-shot upload stream are sent exactly once.
package client
