package config

import (
	"io"

	"gopkg.in/yaml.v3"

	pkgerrors "github.com/forgebase/depengine/pkg/errors"
)

// Decode parses and validates one job document. It does not resolve
// cross-file template imports or hydrate contract artifacts — only the
// single document's own shape and structural invariants.
func Decode(r io.Reader) (*Job, error) {
	var doc Job
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, pkgerrors.NewValidationError("job", "could not parse job document", err)
	}
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
