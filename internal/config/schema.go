package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaID is where the published configuration schema lives.
const SchemaID = "https://raw.githubusercontent.com/spachava753/toolbridge/refs/heads/main/schema/toolbridge-config-schema.json"

// Schema reflects the JSON schema of the configuration file.
func Schema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: true,
	}

	schema := reflector.Reflect(&Config{})
	schema.Title = "Toolbridge Configuration Schema"
	schema.Description = "JSON Schema for toolbridge configuration files"
	schema.Version = "https://json-schema.org/draft/2020-12/schema"
	schema.ID = SchemaID
	return schema
}

// SchemaJSON returns Schema indented for writing to disk.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
