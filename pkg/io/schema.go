package io

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/matzehuels/brickyard/pkg/catalog"
)

const schemaURL = "https://brickyard.dev/schemas/build.schema.json"

const schemaTemplate = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "Brickyard build",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "type", "position", "rotation", "color"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "type": {"enum": %s},
      "position": {"$ref": "#/definitions/vec3"},
      "rotation": {"$ref": "#/definitions/vec3"},
      "color": {"enum": %s}
    }
  },
  "definitions": {
    "vec3": {
      "type": "array",
      "items": {"type": "number"},
      "minItems": 3,
      "maxItems": 3
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
)

// Schema returns the compiled build schema. The piece type and colour enums
// are derived from the catalog.
func Schema() *jsonschema.Schema {
	schemaOnce.Do(func() {
		types, err := json.Marshal(catalog.All())
		if err != nil {
			panic(err)
		}
		colors, err := json.Marshal(catalog.Colors)
		if err != nil {
			panic(err)
		}
		schema = jsonschema.MustCompileString(schemaURL, fmt.Sprintf(schemaTemplate, types, colors))
	})
	return schema
}
