package chat_completions

import (
	"github.com/agrelay/agrelay/internal/constant"
	"github.com/agrelay/agrelay/internal/interfaces"
	sdktranslator "github.com/agrelay/agrelay/sdk/translator"
)

// Register wires the OpenAI -> Antigravity pair into the given registry.
func Register(r *sdktranslator.Registry) {
	r.Register(
		sdktranslator.FromString(constant.OpenAI),
		sdktranslator.FromString(constant.Antigravity),
		ConvertOpenAIRequestToAntigravity,
		interfaces.TranslateResponse{
			Stream:    ConvertAntigravityResponseToOpenAI,
			NonStream: ConvertAntigravityResponseToOpenAINonStream,
		},
	)
}
