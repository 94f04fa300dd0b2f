package antigravity

import (
	"github.com/agrelay/agrelay/internal/constant"
	"github.com/agrelay/agrelay/internal/interfaces"
	sdktranslator "github.com/agrelay/agrelay/sdk/translator"
)

// Register wires the Antigravity -> OpenAI pair into the given registry.
func Register(r *sdktranslator.Registry) {
	r.Register(
		sdktranslator.FromString(constant.Antigravity),
		sdktranslator.FromString(constant.OpenAI),
		ConvertAntigravityRequestToOpenAI,
		interfaces.TranslateResponse{
			Stream:     ConvertOpenAIResponseToAntigravity,
			NonStream:  ConvertOpenAIResponseToAntigravityNonStream,
			TokenCount: AntigravityTokenCount,
		},
	)
}
