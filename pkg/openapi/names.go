package openapi

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// CamelCase turns a wire name such as "max_tokens" or "content-type" into
// "maxTokens" / "contentType". Names without separators are kept as is.
func CamelCase(wire string) string {
	parts := splitWords(wire)
	if len(parts) <= 1 {
		return wire
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, part := range parts[1:] {
		b.WriteString(upperFirst(part))
	}
	return b.String()
}

// PascalCase renders "chat completion" or "chat_completion" as
// "ChatCompletion". It names hoisted inline schemas.
func PascalCase(s string) string {
	var b strings.Builder
	for _, part := range splitWords(s) {
		b.WriteString(upperFirst(part))
	}
	return b.String()
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

// Detect reports whether the raw payload appears to be an OpenAPI or Swagger
// document rather than a declaration file.
func Detect(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	if trimmed[0] == '{' {
		var payload map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &payload); err == nil {
			_, openapi := payload["openapi"]
			_, swagger := payload["swagger"]
			return openapi || swagger
		}
		return false
	}
	for _, line := range strings.Split(string(trimmed), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "openapi:") || strings.HasPrefix(line, "swagger:") {
			return true
		}
	}
	return false
}
