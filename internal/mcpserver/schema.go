package mcpserver

import (
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// InputSchema infers the schema of In and restricts the named string
// properties to the given values. It panics on a property In does not have,
// since tools are registered at startup.
func InputSchema[In any](enums map[string][]string) *jsonschema.Schema {
	schema, err := jsonschema.For[In](nil)
	if err != nil {
		panic(fmt.Sprintf("mcpserver: infer input schema: %v", err))
	}
	for prop, values := range enums {
		p, ok := schema.Properties[prop]
		if !ok {
			panic(fmt.Sprintf("mcpserver: input schema has no property %q", prop))
		}
		if p.Items != nil {
			p = p.Items
		}
		p.Enum = make([]any, len(values))
		for i, v := range values {
			p.Enum[i] = v
		}
	}
	return schema
}
