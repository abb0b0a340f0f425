// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// The manager calls validateStruct immediately after it unmarshals the
// repaired Koanf tree into a Config instance.  The JSON Schema already
// gated the raw document; this pass asserts the typed invariants (enum
// membership, numeric ranges, host formats) survived the unmarshal and
// any environment overrides, which never pass through the schema.
package config

import "github.com/go-playground/validator/v10"

var v = validator.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
