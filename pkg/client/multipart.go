package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/casemark/casedev-go/pkg/ordered"
	"github.com/casemark/casedev-go/pkg/value"
)

// encodeMultipart writes the top-level entries of a dumped object as form
// parts. Files become file parts and scalars plain fields. Nested objects
// holding a file are flattened into bracketed part names (attachment[file],
// files[0][body]); other nested trees are sent as JSON encoded fields.
// Seekable file bodies are rewound first so that retried attempts resend the
// full content.
func encodeMultipart(body any) (io.Reader, string, error) {
	fields, ok := body.(*ordered.Map)
	if !ok {
		return nil, "", fmt.Errorf("client: multipart body must be an object, got %T", body)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	var failed error
	fields.Range(func(key string, v any) bool {
		failed = writePart(writer, key, v)
		return failed == nil
	})
	if failed != nil {
		return nil, "", failed
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("client: multipart: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func writePart(writer *multipart.Writer, key string, v any) error {
	switch typed := v.(type) {
	case nil:
		return nil
	case value.File:
		return writeFile(writer, key, typed)
	case io.Reader:
		return writeFile(writer, key, value.File{Name: key, Body: typed})
	case []any:
		for i, item := range typed {
			name := key
			if nested, ok := item.(*ordered.Map); ok && hasFile(nested) {
				name = fmt.Sprintf("%s[%d]", key, i)
			}
			if err := writePart(writer, name, item); err != nil {
				return err
			}
		}
		return nil
	case *ordered.Map:
		if hasFile(typed) {
			var failed error
			typed.Range(func(sub string, item any) bool {
				failed = writePart(writer, key+"["+sub+"]", item)
				return failed == nil
			})
			return failed
		}
		data, err := ordered.Encode(typed)
		if err != nil {
			return fmt.Errorf("client: multipart field %q: %w", key, err)
		}
		return writer.WriteField(key, string(data))
	default:
		return writer.WriteField(key, formField(typed))
	}
}

func writeFile(writer *multipart.Writer, key string, file value.File) error {
	if file.Body == nil {
		return fmt.Errorf("client: multipart field %q: file body is nil", key)
	}
	if seeker, ok := file.Body.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("client: rewind %q: %w", key, err)
		}
	}
	name := file.Name
	if name == "" {
		name = key
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, key, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("client: multipart field %q: %w", key, err)
	}
	if _, err := io.Copy(part, file.Body); err != nil {
		return fmt.Errorf("client: upload %q: %w", key, err)
	}
	return nil
}

func formField(v any) string {
	switch typed := v.(type) {
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case time.Time:
		return typed.Format(time.RFC3339Nano)
	default:
		return strings.TrimSpace(fmt.Sprint(typed))
	}
}

// hasFile reports whether a dumped tree carries an upload anywhere.
func hasFile(v any) bool {
	switch typed := v.(type) {
	case value.File, io.Reader:
		return true
	case []any:
		for _, item := range typed {
			if hasFile(item) {
				return true
			}
		}
	case *ordered.Map:
		found := false
		typed.Range(func(_ string, item any) bool {
			found = hasFile(item)
			return !found
		})
		return found
	}
	return false
}
