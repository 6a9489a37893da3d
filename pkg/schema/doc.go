// Package schema reads shape declaration files. A declaration document lists
// named enums, unions and models in YAML or JSON:
//
//	enums:
//	  Role: [system, user, assistant]
//	unions:
//	  Content: [string, list<string>]
//	models:
//	  Message:
//	    fields:
//	      - {name: content, type: Content, required: true}
//	      - {name: role, type: Role, required: true}
//	      - {name: maxTokens, wire: max_tokens, type: int, nullable: true, default: 256}
//
// Parse turns a document into a shape.Registry. The Source, Document and
// Loader contracts are shared with the OpenAPI importer.
package schema
