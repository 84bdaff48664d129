package models

import (
	"encoding/json"
	"fmt"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const idListSchemaURL = "todocal://schemas/id-list.json"

const idListSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["ids"],
	"properties": {
		"ids": {
			"type": "array",
			"items": {"type": "string"}
		}
	}
}`

var idList = jsonschema.MustCompileString(idListSchemaURL, idListSchema)

// ParseIDList decodes a {"ids": [...]} payload used by the reorder
// operations. The ids must all be strings.
func ParseIDList(data []byte) ([]string, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrInvalid, err)
	}
	if err := idList.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: ids must be a list of strings", ErrInvalid)
	}

	var payload struct {
		IDs []string `json:"ids"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: ids must be a list of strings", ErrInvalid)
	}
	return payload.IDs, nil
}
