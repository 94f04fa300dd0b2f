// Package translator assembles the built-in translation pairs. Callers build a
// registry explicitly; nothing registers itself at import time.
package translator

import (
	openaiclient "github.com/agrelay/agrelay/internal/translator/antigravity/openai/chat-completions"
	antigravityclient "github.com/agrelay/agrelay/internal/translator/openai/antigravity"
	sdktranslator "github.com/agrelay/agrelay/sdk/translator"
)

// RegisterDefaults wires every built-in pair into r:
//
//	Antigravity client -> OpenAI provider
//	OpenAI client -> Antigravity provider
func RegisterDefaults(r *sdktranslator.Registry) {
	antigravityclient.Register(r)
	openaiclient.Register(r)
}
