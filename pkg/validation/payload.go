package validation

import (
	"errors"
	"strings"

	"github.com/casemark/casedev-go/pkg/convert"
	"github.com/casemark/casedev-go/pkg/shape"
)

// Issue represents a validation error with optional location metadata.
type Issue struct {
	Path    string `json:"path,omitempty"`
	Pointer string `json:"pointer,omitempty"`
	Field   string `json:"field,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// Result captures validation outcomes for CLI and builder previews.
type Result struct {
	Valid  bool    `json:"valid"`
	Issues []Issue `json:"issues,omitempty"`
}

// ValidatePayload checks that a wire JSON document coerces against s.
func ValidatePayload(s shape.Shape, raw []byte) Result {
	_, err := convert.CoerceJSON(s, raw)
	return resultFromError(err)
}

// ValidateValue checks that an in-memory value dumps against s.
func ValidateValue(s shape.Shape, v any) Result {
	_, err := convert.Dump(s, v)
	return resultFromError(err)
}

// FromError wraps err into a single-issue result; a nil error is valid.
func FromError(err error) Result {
	return resultFromError(err)
}

func resultFromError(err error) Result {
	if err == nil {
		return Result{Valid: true}
	}
	return Result{Valid: false, Issues: []Issue{IssueFromError(err)}}
}

// IssueFromError converts a conversion error into an Issue. Errors that carry
// no location keep only their message.
func IssueFromError(err error) Issue {
	if err == nil {
		return Issue{Message: "unknown error"}
	}
	var convErr *convert.Error
	if errors.As(err, &convErr) {
		path := convErr.Path
		if convErr.Field != "" {
			path = path.Field(convErr.Field)
		}
		return Issue{
			Path:    convErr.Path.String(),
			Pointer: path.Pointer(),
			Field:   fieldPath(path),
			Kind:    string(convErr.Kind),
			Message: convErr.Message(),
		}
	}

	msg := strings.TrimSpace(err.Error())
	msg = strings.TrimPrefix(msg, "convert: ")
	msg = strings.TrimPrefix(msg, "ordered: ")
	return Issue{Message: strings.TrimSpace(msg)}
}

// fieldPath drops list indexes: "messages[0].role" becomes "messages.role".
func fieldPath(path convert.Path) string {
	segments := path.Segments()
	out := make([]string, 0, len(segments))
	for _, segment := range segments {
		if segment == "" || isNumeric(segment) {
			continue
		}
		out = append(out, segment)
	}
	return strings.Join(out, ".")
}

func isNumeric(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
