package tablegen

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// rowsSchema accepts an array of flat objects whose values are scalars.
const rowsSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "array",
	"items": {
		"type": "object",
		"additionalProperties": {
			"type": ["string", "number", "boolean", "null"]
		}
	}
}`

func responseSchema() (*gojsonschema.Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(rowsSchema))
	if err != nil {
		return nil, fmt.Errorf("tablegen: compile schema: %w", err)
	}
	return s, nil
}
