package api

import (
	"context"
	"net/http"

	"github.com/casemark/casedev-go/pkg/client"
	"github.com/casemark/casedev-go/pkg/shape"
	"github.com/casemark/casedev-go/pkg/value"
)

// SearchMethod selects the vault retrieval strategy.
type SearchMethod string

const (
	SearchVector   SearchMethod = "vector"
	SearchHybrid   SearchMethod = "hybrid"
	SearchFullText SearchMethod = "fulltext"
)

// SearchMethodShape is the enum of vault search strategies.
var SearchMethodShape = shape.MustEnum("SearchMethod", SearchVector, SearchHybrid, SearchFullText)

// VaultUploadParamsShape is sent as multipart/form-data.
var VaultUploadParamsShape = shape.MustModel("VaultUploadParams",
	shape.Required("file", shape.File),
	shape.Optional("filename", shape.String),
	shape.Optional("metadata", shape.MapOf(shape.String)),
)

// VaultObjectShape is a stored vault document.
var VaultObjectShape = shape.MustModel("VaultObject",
	shape.Required("id", shape.String),
	shape.Required("vaultID", shape.String).WithWire("vault_id"),
	shape.Required("filename", shape.String),
	shape.Optional("contentType", shape.String).WithWire("content_type"),
	shape.Optional("sizeBytes", shape.Int).WithWire("size_bytes"),
	shape.Required("createdAt", shape.DateTime).WithWire("created_at"),
	shape.Optional("metadata", shape.MapOf(shape.String)),
)

// VaultSearchParamsShape is the request body of Search.
var VaultSearchParamsShape = shape.MustModel("VaultSearchParams",
	shape.Required("query", shape.String),
	shape.Optional("method", SearchMethodShape).WithDefault(SearchHybrid),
	shape.Optional("limit", shape.Int).WithDefault(int64(10)),
)

// VaultChunkShape is one matching passage.
var VaultChunkShape = shape.MustModel("VaultChunk",
	shape.Required("objectID", shape.String).WithWire("object_id"),
	shape.Required("text", shape.String),
	shape.Required("score", shape.Float),
)

// VaultSearchResultShape is the response of Search.
var VaultSearchResultShape = shape.MustModel("VaultSearchResult",
	shape.Required("chunks", shape.ListOf(VaultChunkShape)),
)

var (
	vaultUploadEndpoint = client.Endpoint{
		Method:    http.MethodPost,
		Path:      "/vault/{id}/upload",
		Params:    VaultUploadParamsShape,
		Result:    VaultObjectShape,
		Multipart: true,
	}
	vaultSearchEndpoint = client.Endpoint{
		Method: http.MethodPost,
		Path:   "/vault/{id}/search",
		Params: VaultSearchParamsShape,
		Result: VaultSearchResultShape,
	}
)

func init() {
	register(map[string]shape.Shape{
		"SearchMethod":      SearchMethodShape,
		"VaultUploadParams": VaultUploadParamsShape,
		"VaultObject":       VaultObjectShape,
		"VaultSearchParams": VaultSearchParamsShape,
		"VaultChunk":        VaultChunkShape,
		"VaultSearchResult": VaultSearchResultShape,
	})
}

// VaultService stores and searches documents.
type VaultService struct {
	client *client.Client
}

// Upload stores a file in the vault. Uploads whose body is not seekable are
// never retried.
func (s *VaultService) Upload(ctx context.Context, vaultID string, params value.Object) (value.Object, error) {
	return call(ctx, s.client, vaultUploadEndpoint, params, vaultID)
}

// Search queries the vault.
func (s *VaultService) Search(ctx context.Context, vaultID string, params value.Object) (value.Object, error) {
	return call(ctx, s.client, vaultSearchEndpoint, params, vaultID)
}
