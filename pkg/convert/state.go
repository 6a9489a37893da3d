package convert

// CoerceState carries the current path during wire-to-typed conversion. It
// is a value type: child states are derived with Field/Index/Key and the
// parent is unaffected.
type CoerceState struct {
	path Path
}

// NewCoerceState returns a state positioned at the root.
func NewCoerceState() CoerceState {
	return CoerceState{}
}

// Path returns the current position.
func (s CoerceState) Path() Path { return s.path }

// Field returns the state for a model field.
func (s CoerceState) Field(name string) CoerceState { return CoerceState{path: s.path.Field(name)} }

// Index returns the state for a list element.
func (s CoerceState) Index(i int) CoerceState { return CoerceState{path: s.path.Index(i)} }

// Key returns the state for a map entry.
func (s CoerceState) Key(key string) CoerceState { return CoerceState{path: s.path.Key(key)} }

// DumpState carries the current path and the retry-safety flag of one
// top-level dump. Child states share the flag with their parent, so marking a
// one-shot value anywhere in the tree is visible at the root. Obtain states
// from NewDumpState; states must not be shared between concurrent dumps.
type DumpState struct {
	path  Path
	retry *retryFlag
}

type retryFlag struct {
	oneShot bool
}

// NewDumpState returns a root state whose CanRetry reports true.
func NewDumpState() DumpState {
	return DumpState{retry: &retryFlag{}}
}

// Path returns the current position.
func (s DumpState) Path() Path { return s.path }

// Field returns the state for a model field.
func (s DumpState) Field(name string) DumpState { return DumpState{path: s.path.Field(name), retry: s.retry} }

// Index returns the state for a list element.
func (s DumpState) Index(i int) DumpState { return DumpState{path: s.path.Index(i), retry: s.retry} }

// Key returns the state for a map entry.
func (s DumpState) Key(key string) DumpState { return DumpState{path: s.path.Key(key), retry: s.retry} }

// CanRetry reports whether every value dumped so far can be sent again. A
// zero DumpState reports false because it cannot track one-shot values.
func (s DumpState) CanRetry() bool {
	return s.retry != nil && !s.retry.oneShot
}

// MarkOneShot records that the request body contains a value that can only
// be sent once.
func (s DumpState) MarkOneShot() {
	if s.retry != nil {
		s.retry.oneShot = true
	}
}

// trial returns a state at the same path with its own flag, used while a
// union probes candidate variants.
func (s DumpState) trial() DumpState {
	return DumpState{path: s.path, retry: &retryFlag{}}
}

// absorb copies the outcome of a successful trial into s.
func (s DumpState) absorb(trial DumpState) {
	if !trial.CanRetry() {
		s.MarkOneShot()
	}
}
