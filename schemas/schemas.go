// Package schemas embeds the JSON Schemas for choicelab input files.
package schemas

import _ "embed"

// ModelSchemaJSON is the JSON Schema for utility model files.
//
//go:embed model.schema.json
var ModelSchemaJSON string
