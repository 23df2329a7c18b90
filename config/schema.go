package config

import (
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of the board file format, for editor completion.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	return r.Reflect(&BoardFile{})
}
