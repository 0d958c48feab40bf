package httpapi

import (
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request bodies. Extra properties are allowed and stored as-is.
const (
	createSchemaJSON = `{
  "type": "object",
  "required": ["title"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "completed": {"type": "boolean"}
  }
}`

	replaceSchemaJSON = `{
  "type": "object",
  "required": ["title", "completed"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "completed": {"type": "boolean"}
  }
}`

	patchSchemaJSON = `{
  "type": "object",
  "minProperties": 1,
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "completed": {"type": "boolean"}
  }
}`
)

var (
	createSchema  = jsonschema.MustCompileString("create.json", createSchemaJSON)
	replaceSchema = jsonschema.MustCompileString("replace.json", replaceSchemaJSON)
	patchSchema   = jsonschema.MustCompileString("patch.json", patchSchemaJSON)
)

// validate checks a decoded JSON body against schema and flattens the
// leaf causes into one message.
func validate(schema *jsonschema.Schema, body any) error {
	err := schema.Validate(body)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return err
	}
	var msgs []string
	collectCauses(ve, &msgs)
	return fmt.Errorf("invalid body: %s", strings.Join(msgs, "; "))
}

func collectCauses(err *jsonschema.ValidationError, out *[]string) {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, loc+": "+err.Message)
		return
	}
	for _, c := range err.Causes {
		collectCauses(c, out)
	}
}
