package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/reglet-dev/reglet-numerics/domain/errors"
)

// Schema returns the JSON Schema (Draft 2020-12) of the configuration file.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand the top-level struct inline
	}
	s := reflector.Reflect(&Config{})
	s.Title = "reglet-numerics configuration"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, &errors.SchemaError{Err: err, Type: "Config"}
	}
	return data, nil
}
