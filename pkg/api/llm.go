package api

import (
	"context"
	"net/http"

	"github.com/casemark/casedev-go/pkg/client"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// Role is the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// RoleShape is the enum of chat message roles.
var RoleShape = shape.MustEnum("Role", RoleSystem, RoleUser, RoleAssistant)

// MessageShape is one chat message.
var MessageShape = shape.MustModel("Message",
	shape.Required("role", RoleShape),
	shape.Required("content", shape.String),
)

// ChatCompletionParamsShape is the request body of CreateChatCompletion.
var ChatCompletionParamsShape = shape.MustModel("ChatCompletionParams",
	shape.Required("model", shape.String),
	shape.Required("messages", shape.ListOf(MessageShape)),
	shape.Optional("maxTokens", shape.Int).WithWire("max_tokens").AsNullable(),
	shape.Optional("temperature", shape.Float),
	shape.Optional("stream", shape.Bool).WithDefault(false),
)

// UsageShape reports token counts for a completion.
var UsageShape = shape.MustModel("Usage",
	shape.Required("promptTokens", shape.Int).WithWire("prompt_tokens"),
	shape.Required("completionTokens", shape.Int).WithWire("completion_tokens"),
	shape.Required("totalTokens", shape.Int).WithWire("total_tokens"),
)

// ChatCompletionChoiceShape is one generated alternative.
var ChatCompletionChoiceShape = shape.MustModel("ChatCompletionChoice",
	shape.Required("index", shape.Int),
	shape.Required("message", MessageShape),
	shape.Optional("finishReason", shape.String).WithWire("finish_reason").AsNullable(),
)

// ChatCompletionShape is the response of CreateChatCompletion.
var ChatCompletionShape = shape.MustModel("ChatCompletion",
	shape.Required("id", shape.String),
	shape.Required("model", shape.String),
	shape.Required("created", shape.Int),
	shape.Required("choices", shape.ListOf(ChatCompletionChoiceShape)),
	shape.Optional("usage", UsageShape),
)

var chatCompletionEndpoint = client.Endpoint{
	Method: http.MethodPost,
	Path:   "/llm/v1/chat/completions",
	Params: ChatCompletionParamsShape,
	Result: ChatCompletionShape,
}

func init() {
	register(map[string]shape.Shape{
		"Role":                 RoleShape,
		"Message":              MessageShape,
		"ChatCompletionParams": ChatCompletionParamsShape,
		"Usage":                UsageShape,
		"ChatCompletionChoice": ChatCompletionChoiceShape,
		"ChatCompletion":       ChatCompletionShape,
	})
}

// NewMessage builds a Message value.
func NewMessage(role Role, content string) value.Object {
	return value.New("Message").With("role", role).With("content", content)
}

// LLMService calls the language model endpoints.
type LLMService struct {
	client *client.Client
}

// CreateChatCompletion sends a ChatCompletionParams value and returns the
// coerced ChatCompletion.
func (s *LLMService) CreateChatCompletion(ctx context.Context, params value.Object) (value.Object, error) {
	return call(ctx, s.client, chatCompletionEndpoint, params)
}
