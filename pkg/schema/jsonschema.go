// Package schema reflects Go structs into the JSON schema objects used as
// tool parameters, both for chat requests and MCP tool listings.
package schema

import (
	"sync"

	"github.com/invopop/jsonschema"
)

// Schema is the object level of a tool parameter schema.
type Schema struct {
	Properties any
	Required   []string
}

// Map renders the schema as a JSON schema object. Required is never null,
// some endpoints reject that.
func (s Schema) Map() map[string]any {
	required := s.Required
	if required == nil {
		required = []string{}
	}
	return map[string]any{
		"type":       "object",
		"properties": s.Properties,
		"required":   required,
	}
}

var reflector = sync.OnceValue(func() *jsonschema.Reflector {
	return &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
})

// Get reflects T, reading `json` and `jsonschema` struct tags.
func Get[T any]() Schema {
	var v T
	s := reflector().Reflect(v)
	return Schema{
		Properties: s.Properties,
		Required:   s.Required,
	}
}
