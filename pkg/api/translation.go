package api

import (
	"context"
	"net/http"

	"github.com/casemark/casedev-go/pkg/client"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// TranslationFormat tells the service how to treat markup in the input.
type TranslationFormat string

const (
	FormatText TranslationFormat = "text"
	FormatHTML TranslationFormat = "html"
)

// TranslationFormatShape is the enum of input text formats.
var TranslationFormatShape = shape.MustEnum("TranslationFormat", FormatText, FormatHTML)

// TranslateTextShape accepts a single string or a batch.
var TranslateTextShape = shape.MustUnion("TranslateText", shape.String, shape.ListOf(shape.String))

// TranslateParamsShape is the request body of Translate; text is sent as "q".
var TranslateParamsShape = shape.MustModel("TranslateParams",
	shape.Required("text", TranslateTextShape).WithWire("q"),
	shape.Required("target", shape.String),
	shape.Optional("source", shape.String),
	shape.Optional("format", TranslationFormatShape),
)

// TranslatedTextShape is one translated segment.
var TranslatedTextShape = shape.MustModel("TranslatedText",
	shape.Required("translatedText", shape.String).WithWire("translated_text"),
	shape.Optional("detectedSourceLanguage", shape.String).WithWire("detected_source_language"),
)

// TranslationShape is the response of Translate.
var TranslationShape = shape.MustModel("Translation",
	shape.Required("translations", shape.ListOf(TranslatedTextShape)),
)

var translateEndpoint = client.Endpoint{
	Method: http.MethodPost,
	Path:   "/translate/v1/translate",
	Params: TranslateParamsShape,
	Result: TranslationShape,
}

func init() {
	register(map[string]shape.Shape{
		"TranslationFormat": TranslationFormatShape,
		"TranslateText":     TranslateTextShape,
		"TranslateParams":   TranslateParamsShape,
		"TranslatedText":    TranslatedTextShape,
		"Translation":       TranslationShape,
	})
}

// TranslationService translates text.
type TranslationService struct {
	client *client.Client
}

// Translate sends a TranslateParams value. The text field takes a string or
// a []string / []any batch.
func (s *TranslationService) Translate(ctx context.Context, params value.Object) (value.Object, error) {
	return call(ctx, s.client, translateEndpoint, params)
}
