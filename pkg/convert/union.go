package convert

import (
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// Variants are tried strictly in declaration order and the first success
// wins. Variants do not extend the path.

func coerceUnion(u *shape.Union, raw any, st CoerceState) (any, error) {
	failures := make([]VariantFailure, 0, u.Len())
	for i, variant := range u.Variants() {
		converted, err := CoerceWith(variant, raw, st)
		if err == nil {
			return value.Union{Index: i, Variant: variant.String(), Value: converted}, nil
		}
		failures = append(failures, VariantFailure{Variant: variant.String(), Err: err})
	}
	return nil, noMatchingVariant(u, raw, st.Path(), failures)
}

func dumpUnion(u *shape.Union, v any, st DumpState) (any, error) {
	if tagged, ok := v.(value.Union); ok {
		if variant, found := u.Variant(tagged.Index); found {
			return DumpWith(variant, tagged.Value, st)
		}
		return nil, typeMismatch(st.Path(), u, v)
	}
	failures := make([]VariantFailure, 0, u.Len())
	for _, variant := range u.Variants() {
		// A rejected variant may already have seen a one-shot body; only the
		// winner's retry outcome counts.
		trial := st.trial()
		dumped, err := DumpWith(variant, v, trial)
		if err == nil {
			st.absorb(trial)
			return dumped, nil
		}
		failures = append(failures, VariantFailure{Variant: variant.String(), Err: err})
	}
	return nil, noMatchingVariant(u, v, st.Path(), failures)
}

func noMatchingVariant(u *shape.Union, v any, path Path, failures []VariantFailure) *Error {
	return &Error{
		Kind:     KindNoMatchingVariant,
		Path:     path,
		Expected: u.String(),
		Actual:   describe(v),
		Variants: failures,
	}
}
