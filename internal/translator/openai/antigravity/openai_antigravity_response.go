// Package antigravity provides response translation functionality for OpenAI to Antigravity API.
// This package handles the conversion of OpenAI Chat Completions API responses into Antigravity-compatible
// JSON format, transforming streaming events and non-streaming responses into the format
// expected by Antigravity API clients. It supports both streaming and non-streaming modes,
// handling text content, tool calls, and usage metadata appropriately.
package antigravity

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/agrelay/agrelay/internal/translator/antigravity/common"
)

// ToolCallAccumulator holds the state for reassembling one tool call whose
// identifier, name, and arguments arrive fragmented across chunks on the same
// slot index.
type ToolCallAccumulator struct {
	ID        strings.Builder
	Name      strings.Builder
	Arguments strings.Builder
}

// Params holds per-stream state for response conversion. One value serves
// exactly one logical stream; the caller threads it through every call.
type Params struct {
	// ToolCalls maps the delta slot index to the partial record for that call.
	ToolCalls map[int]*ToolCallAccumulator
	// ResponseID and ModelVersion latch from the first chunk carrying them.
	ResponseID   string
	ModelVersion string
	// Latched usage accounting, carried onto frames once observed.
	HasUsage         bool
	PromptTokens     int64
	CompletionTokens int64
	TotalTokens      int64
	ReasoningTokens  int64
	CachedTokens     int64
	// Closed is set after the terminal frame; later chunks are dropped.
	Closed bool
}

// ConvertOpenAIResponseToAntigravity converts OpenAI Chat Completions streaming chunks
// into Antigravity response-envelope chunks.
//
// Tool-call deltas are never emitted as they arrive; each fragment is merged into the
// accumulator slot named by its index and the completed calls are emitted exactly once,
// on the chunk that carries the finish reason. Chunks that contribute nothing visible
// produce no output frame.
func ConvertOpenAIResponseToAntigravity(_ context.Context, _ string, originalRequestRawJSON, requestRawJSON, rawJSON []byte, param *any) []string {
	if *param == nil {
		*param = &Params{ToolCalls: make(map[int]*ToolCallAccumulator)}
	}
	p := (*param).(*Params)
	if p.ToolCalls == nil {
		p.ToolCalls = make(map[int]*ToolCallAccumulator)
	}

	if len(bytes.TrimSpace(rawJSON)) == 0 {
		return []string{}
	}
	if strings.TrimSpace(string(rawJSON)) == "[DONE]" {
		return []string{}
	}
	if bytes.HasPrefix(rawJSON, []byte("data:")) {
		rawJSON = bytes.TrimSpace(rawJSON[5:])
	}
	if p.Closed {
		log.Warnf("antigravity response: chunk received after stream close, dropping")
		return []string{}
	}

	root := gjson.ParseBytes(rawJSON)

	// Latch stream identity once.
	if p.ResponseID == "" {
		if id := root.Get("id"); id.Exists() {
			p.ResponseID = id.String()
		}
	}
	if p.ModelVersion == "" {
		if model := root.Get("model"); model.Exists() {
			p.ModelVersion = model.String()
		}
	}

	if usage := root.Get("usage"); usage.Exists() && usage.IsObject() {
		p.HasUsage = true
		p.PromptTokens = usage.Get("prompt_tokens").Int()
		p.CompletionTokens = usage.Get("completion_tokens").Int()
		p.TotalTokens = usage.Get("total_tokens").Int()
		p.ReasoningTokens = usage.Get("completion_tokens_details.reasoning_tokens").Int()
		p.CachedTokens = usage.Get("prompt_tokens_details.cached_tokens").Int()
	}

	choices := root.Get("choices")
	if !choices.Exists() || !choices.IsArray() || len(choices.Array()) == 0 {
		// Usage-only or content-free housekeeping chunk.
		return []string{}
	}

	var results []string

	choices.ForEach(func(_, choice gjson.Result) bool {
		if p.Closed {
			return false
		}
		candidateIndex := int(choice.Get("index").Int())
		delta := choice.Get("delta")

		template := `{"candidates":[{"content":{"parts":[],"role":"model"},"index":0}]}`
		template, _ = sjson.Set(template, "candidates.0.index", candidateIndex)
		partIndex := 0

		if reasoning := delta.Get("reasoning_content"); reasoning.Exists() && reasoning.String() != "" {
			template, _ = sjson.Set(template, fmt.Sprintf("candidates.0.content.parts.%d.thought", partIndex), true)
			template, _ = sjson.Set(template, fmt.Sprintf("candidates.0.content.parts.%d.text", partIndex), reasoning.String())
			partIndex++
		}

		if content := delta.Get("content"); content.Exists() && content.String() != "" {
			template, _ = sjson.Set(template, fmt.Sprintf("candidates.0.content.parts.%d.text", partIndex), content.String())
			partIndex++
		}

		// Merge tool-call fragments into the accumulator; nothing is emitted
		// for them until the finish chunk.
		if toolCalls := delta.Get("tool_calls"); toolCalls.Exists() && toolCalls.IsArray() {
			toolCalls.ForEach(func(_, toolCall gjson.Result) bool {
				toolType := toolCall.Get("type").String()
				if toolType != "" && toolType != "function" {
					return true
				}
				slot := int(toolCall.Get("index").Int())
				acc, exists := p.ToolCalls[slot]
				if !exists {
					acc = &ToolCallAccumulator{}
					p.ToolCalls[slot] = acc
				}
				if id := toolCall.Get("id").String(); id != "" {
					acc.ID.WriteString(id)
				}
				function := toolCall.Get("function")
				if name := function.Get("name").String(); name != "" {
					acc.Name.WriteString(name)
				}
				if args := function.Get("arguments").String(); args != "" {
					acc.Arguments.WriteString(args)
				}
				return true
			})
		}

		finishReason := choice.Get("finish_reason")
		isTerminal := finishReason.Exists() && finishReason.Type == gjson.String && finishReason.String() != ""

		if isTerminal {
			// Finalize accumulated tool calls in ascending slot order.
			slots := make([]int, 0, len(p.ToolCalls))
			for slot := range p.ToolCalls {
				slots = append(slots, slot)
			}
			sort.Ints(slots)
			for _, slot := range slots {
				acc := p.ToolCalls[slot]
				base := fmt.Sprintf("candidates.0.content.parts.%d.functionCall", partIndex)
				if id := acc.ID.String(); id != "" {
					template, _ = sjson.Set(template, base+".id", id)
				}
				template, _ = sjson.Set(template, base+".name", acc.Name.String())
				template, _ = sjson.SetRaw(template, base+".args", decodeArgsObjectRaw(acc.Arguments.String()))
				partIndex++
			}
			p.ToolCalls = make(map[int]*ToolCallAccumulator)

			if partIndex == 0 {
				// A terminal frame must carry at least one part.
				template, _ = sjson.Set(template, "candidates.0.content.parts.0.text", "")
				partIndex++
			}
			template, _ = sjson.Set(template, "candidates.0.finishReason", mapOpenAIFinishReasonToAntigravity(finishReason.String()))
			p.Closed = true
		} else if partIndex == 0 {
			// Nothing visible in this chunk.
			return true
		}

		if p.ResponseID != "" {
			template, _ = sjson.Set(template, "responseId", p.ResponseID)
		}
		if p.ModelVersion != "" {
			template, _ = sjson.Set(template, "modelVersion", p.ModelVersion)
		}
		if p.HasUsage {
			template = attachUsageMetadata(template, p)
		}

		results = append(results, common.WrapResponse(template))
		return true
	})

	return results
}

// mapOpenAIFinishReasonToAntigravity is the authoritative finish-reason table
// for this pair. Unrecognized reasons map to the normal-stop value.
func mapOpenAIFinishReasonToAntigravity(openAIReason string) string {
	switch openAIReason {
	case "stop":
		return "STOP"
	case "length":
		return "MAX_TOKENS"
	case "tool_calls":
		return "STOP"
	case "content_filter":
		return "SAFETY"
	default:
		return "STOP"
	}
}

// decodeArgsObjectRaw parses a concatenated argument string into a JSON object.
// Partial or malformed arguments degrade to an empty object rather than
// aborting the stream.
func decodeArgsObjectRaw(argsStr string) string {
	trimmed := strings.TrimSpace(argsStr)
	if trimmed == "" || trimmed == "{}" {
		return "{}"
	}
	if gjson.Valid(trimmed) {
		parsed := gjson.Parse(trimmed)
		if parsed.IsObject() {
			return parsed.Raw
		}
	}
	log.Warnf("antigravity response: undecodable tool arguments, emitting empty object")
	return "{}"
}

func attachUsageMetadata(template string, p *Params) string {
	template, _ = sjson.Set(template, "usageMetadata.promptTokenCount", p.PromptTokens)
	template, _ = sjson.Set(template, "usageMetadata.candidatesTokenCount", p.CompletionTokens)
	template, _ = sjson.Set(template, "usageMetadata.totalTokenCount", p.TotalTokens)
	if p.ReasoningTokens > 0 {
		template, _ = sjson.Set(template, "usageMetadata.thoughtsTokenCount", p.ReasoningTokens)
	}
	if p.CachedTokens > 0 {
		template, _ = sjson.Set(template, "usageMetadata.cachedContentTokenCount", p.CachedTokens)
	}
	return template
}

// ConvertOpenAIResponseToAntigravityNonStream converts a complete OpenAI response into a
// single Antigravity response envelope.
func ConvertOpenAIResponseToAntigravityNonStream(_ context.Context, _ string, originalRequestRawJSON, requestRawJSON, rawJSON []byte, _ *any) string {
	root := gjson.ParseBytes(rawJSON)

	out := `{"candidates":[{"content":{"parts":[],"role":"model"},"index":0}]}`
	if id := root.Get("id"); id.Exists() {
		out, _ = sjson.Set(out, "responseId", id.String())
	}
	if model := root.Get("model"); model.Exists() {
		out, _ = sjson.Set(out, "modelVersion", model.String())
	}

	if choices := root.Get("choices"); choices.Exists() && choices.IsArray() {
		choices.ForEach(func(_, choice gjson.Result) bool {
			message := choice.Get("message")
			out, _ = sjson.Set(out, "candidates.0.index", choice.Get("index").Int())
			partIndex := 0

			if reasoning := message.Get("reasoning_content"); reasoning.Exists() && reasoning.String() != "" {
				out, _ = sjson.Set(out, fmt.Sprintf("candidates.0.content.parts.%d.thought", partIndex), true)
				out, _ = sjson.Set(out, fmt.Sprintf("candidates.0.content.parts.%d.text", partIndex), reasoning.String())
				partIndex++
			}
			if content := message.Get("content"); content.Exists() && content.String() != "" {
				out, _ = sjson.Set(out, fmt.Sprintf("candidates.0.content.parts.%d.text", partIndex), content.String())
				partIndex++
			}
			if toolCalls := message.Get("tool_calls"); toolCalls.Exists() && toolCalls.IsArray() {
				toolCalls.ForEach(func(_, toolCall gjson.Result) bool {
					toolType := toolCall.Get("type").String()
					if toolType != "" && toolType != "function" {
						return true
					}
					function := toolCall.Get("function")
					base := fmt.Sprintf("candidates.0.content.parts.%d.functionCall", partIndex)
					if id := toolCall.Get("id").String(); id != "" {
						out, _ = sjson.Set(out, base+".id", id)
					}
					out, _ = sjson.Set(out, base+".name", function.Get("name").String())
					out, _ = sjson.SetRaw(out, base+".args", decodeArgsObjectRaw(function.Get("arguments").String()))
					partIndex++
					return true
				})
			}
			if finishReason := choice.Get("finish_reason"); finishReason.Exists() && finishReason.String() != "" {
				if partIndex == 0 {
					out, _ = sjson.Set(out, "candidates.0.content.parts.0.text", "")
				}
				out, _ = sjson.Set(out, "candidates.0.finishReason", mapOpenAIFinishReasonToAntigravity(finishReason.String()))
			}
			return true
		})
	}

	if usage := root.Get("usage"); usage.Exists() && usage.IsObject() {
		out, _ = sjson.Set(out, "usageMetadata.promptTokenCount", usage.Get("prompt_tokens").Int())
		out, _ = sjson.Set(out, "usageMetadata.candidatesTokenCount", usage.Get("completion_tokens").Int())
		out, _ = sjson.Set(out, "usageMetadata.totalTokenCount", usage.Get("total_tokens").Int())
		if reasoningTokens := usage.Get("completion_tokens_details.reasoning_tokens").Int(); reasoningTokens > 0 {
			out, _ = sjson.Set(out, "usageMetadata.thoughtsTokenCount", reasoningTokens)
		}
		if cachedTokens := usage.Get("prompt_tokens_details.cached_tokens").Int(); cachedTokens > 0 {
			out, _ = sjson.Set(out, "usageMetadata.cachedContentTokenCount", cachedTokens)
		}
	}

	return common.WrapResponse(out)
}

// AntigravityTokenCount shapes a token count for countTokens-style endpoints.
func AntigravityTokenCount(_ context.Context, count int64) string {
	return fmt.Sprintf(`{"response":{"totalTokens":%d,"promptTokensDetails":[{"modality":"TEXT","tokenCount":%d}]}}`, count, count)
}
