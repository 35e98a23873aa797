// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// loader.go calls validateStruct immediately after it unmarshals the
// merged Koanf tree into a Config instance.  A tag mismatch aborts
// startup, so the binary never runs with partial configuration.  The
// rules in play are `required` and `hostname_port` on the HTTP block,
// `required` on every git endpoint's repo_url/branch/workdir, and
// `oneof=cli gogit` on the backend selector.
package config

import "github.com/go-playground/validator/v10"

var v = validator.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
