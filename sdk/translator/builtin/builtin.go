// Package builtin exposes the built-in translator registrations for SDK users.
package builtin

import (
	"github.com/agrelay/agrelay/internal/translator"
	sdktranslator "github.com/agrelay/agrelay/sdk/translator"
)

// Registry returns a fresh registry populated with all built-in translators.
func Registry() *sdktranslator.Registry {
	r := sdktranslator.NewRegistry()
	translator.RegisterDefaults(r)
	return r
}

// Pipeline returns a pipeline over a registry that already contains the
// built-in translators.
func Pipeline() *sdktranslator.Pipeline {
	return sdktranslator.NewPipeline(Registry())
}
