// Package openapi exposes the public contracts for importing OpenAPI 3
// documents as shapes. The kin-openapi backed implementation lives under
// internal/openapi so the dependency stays hidden from consumers; documents
// are loaded through the shared schema.Loader.
package openapi
