// Package convert is the conversion engine shared by every API model. It
// walks a declared shape and either coerces a decoded JSON tree into typed
// values (responses) or dumps typed values back into a JSON tree (requests).
//
// Both directions are strict, synchronous and fail-fast: the first problem
// aborts the traversal and is returned as an *Error carrying the path from the
// root to the offending node, for example
//
//	messages[0].role: invalid enum value "bot" (allowed: [system,user,assistant])
//
// Dumping additionally reports whether the produced request body can be sent
// again: a one-shot upload stream anywhere in the tree clears Dumped.CanRetry.
//
// Shapes are immutable and may be shared between goroutines. Each top-level
// Coerce or Dump call creates its own state, so concurrent calls are safe.
package convert
