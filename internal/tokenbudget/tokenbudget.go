// Package tokenbudget adjusts per-request output token limits so that
// declared tool schemas do not eat into the caller's intended completion
// budget. Providers count serialized tool declarations against the same
// window as the completion.
package tokenbudget

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tiktoken-go/tokenizer"
)

// tokenizerForModel returns a tokenizer codec suitable for an OpenAI-style model id.
func tokenizerForModel(model string) (tokenizer.Codec, error) {
	sanitized := strings.ToLower(strings.TrimSpace(model))
	switch {
	case sanitized == "":
		return tokenizer.Get(tokenizer.Cl100kBase)
	case strings.HasPrefix(sanitized, "gpt-5"):
		return tokenizer.ForModel(tokenizer.GPT5)
	case strings.HasPrefix(sanitized, "gpt-4.1"):
		return tokenizer.ForModel(tokenizer.GPT41)
	case strings.HasPrefix(sanitized, "gpt-4o"):
		return tokenizer.ForModel(tokenizer.GPT4o)
	case strings.HasPrefix(sanitized, "gpt-4"):
		return tokenizer.ForModel(tokenizer.GPT4)
	case strings.HasPrefix(sanitized, "gpt-3"):
		return tokenizer.ForModel(tokenizer.GPT35Turbo)
	case strings.HasPrefix(sanitized, "o1"):
		return tokenizer.ForModel(tokenizer.O1)
	case strings.HasPrefix(sanitized, "o3"):
		return tokenizer.ForModel(tokenizer.O3)
	case strings.HasPrefix(sanitized, "o4"):
		return tokenizer.ForModel(tokenizer.O4Mini)
	default:
		return tokenizer.Get(tokenizer.O200kBase)
	}
}

// CountToolTokens approximates the token cost of an OpenAI-style tools array.
func CountToolTokens(model string, toolsRawJSON []byte) int64 {
	if len(toolsRawJSON) == 0 {
		return 0
	}
	tools := gjson.ParseBytes(toolsRawJSON)
	if !tools.IsArray() {
		return 0
	}

	segments := make([]string, 0, 8)
	tools.ForEach(func(_, tool gjson.Result) bool {
		if fn := tool.Get("function"); fn.Exists() {
			tool = fn
		}
		if v := tool.Get("name").String(); v != "" {
			segments = append(segments, v)
		}
		if v := tool.Get("description").String(); v != "" {
			segments = append(segments, v)
		}
		if params := tool.Get("parameters"); params.Exists() {
			segments = append(segments, params.Raw)
		}
		return true
	})
	joined := strings.TrimSpace(strings.Join(segments, "\n"))
	if joined == "" {
		return 0
	}

	enc, err := tokenizerForModel(model)
	if err != nil {
		log.Warnf("tokenbudget: tokenizer unavailable for model %s: %v", model, err)
		return 0
	}
	count, err := enc.Count(joined)
	if err != nil {
		log.Warnf("tokenbudget: count failed for model %s: %v", model, err)
		return 0
	}
	return int64(count)
}

// AdjustMaxTokens shrinks a requested output limit by the approximate cost of
// the declared tools. Non-positive limits pass through untouched, and the
// result never drops below 1.
func AdjustMaxTokens(model string, limit int64, toolsRawJSON []byte) int64 {
	if limit <= 0 {
		return limit
	}
	reserved := CountToolTokens(model, toolsRawJSON)
	if reserved <= 0 {
		return limit
	}
	adjusted := limit - reserved
	if adjusted < 1 {
		return 1
	}
	return adjusted
}
