package chat_completions

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/agrelay/agrelay/internal/translator/antigravity/common"
)

// convertAntigravityResponseToOpenAIParams holds per-stream conversion state.
type convertAntigravityResponseToOpenAIParams struct {
	UnixTimestamp int64
	// FunctionIndex tracks tool call indices per candidate index to support multiple candidates.
	FunctionIndex map[int]int
	// SawToolCall records that a functionCall part streamed earlier; the
	// terminal chunk then reports finish_reason "tool_calls" regardless of
	// the upstream finishReason.
	SawToolCall bool
}

// functionCallIDCounter provides a process-wide unique counter for function call identifiers.
var functionCallIDCounter uint64

// ConvertAntigravityResponseToOpenAI translates one streaming Antigravity chunk into
// OpenAI Chat Completions chunk format. The Antigravity "response" envelope is
// stripped first, then candidates become choices: text and thought parts map to
// delta.content / delta.reasoning_content, functionCall parts become tool_calls
// deltas, and inlineData parts become data-URL image deltas. Intermediate chunks
// never carry a finish_reason; the terminal chunk reports "tool_calls" whenever a
// functionCall was seen earlier, keeping the upstream value in native_finish_reason.
func ConvertAntigravityResponseToOpenAI(_ context.Context, _ string, _, _ []byte, rawJSON []byte, param *any) []string {
	if *param == nil {
		*param = &convertAntigravityResponseToOpenAIParams{
			UnixTimestamp: 0,
			FunctionIndex: make(map[int]int),
		}
	}
	p := (*param).(*convertAntigravityResponseToOpenAIParams)
	if p.FunctionIndex == nil {
		p.FunctionIndex = make(map[int]int)
	}

	if bytes.Equal(bytes.TrimSpace(rawJSON), []byte("[DONE]")) {
		return []string{}
	}

	rawJSON = common.UnwrapResponse(rawJSON)

	baseTemplate := `{"id":"","object":"chat.completion.chunk","created":12345,"model":"model","choices":[{"index":0,"delta":{"role":null,"content":null,"reasoning_content":null,"tool_calls":null},"finish_reason":null,"native_finish_reason":null}]}`

	if modelVersionResult := gjson.GetBytes(rawJSON, "modelVersion"); modelVersionResult.Exists() {
		baseTemplate, _ = sjson.Set(baseTemplate, "model", modelVersionResult.String())
	}

	if createTimeResult := gjson.GetBytes(rawJSON, "createTime"); createTimeResult.Exists() {
		t, err := time.Parse(time.RFC3339Nano, createTimeResult.String())
		if err == nil {
			p.UnixTimestamp = t.Unix()
		}
	}
	baseTemplate, _ = sjson.Set(baseTemplate, "created", p.UnixTimestamp)

	if responseIDResult := gjson.GetBytes(rawJSON, "responseId"); responseIDResult.Exists() {
		baseTemplate, _ = sjson.Set(baseTemplate, "id", responseIDResult.String())
	}

	if usageResult := gjson.GetBytes(rawJSON, "usageMetadata"); usageResult.Exists() {
		baseTemplate = attachOpenAIUsage(baseTemplate, usageResult)
	}

	var responseStrings []string
	candidates := gjson.GetBytes(rawJSON, "candidates")

	if candidates.IsArray() {
		candidates.ForEach(func(_, candidate gjson.Result) bool {
			template := baseTemplate

			candidateIndex := int(candidate.Get("index").Int())
			template, _ = sjson.Set(template, "choices.0.index", candidateIndex)

			finishReason := strings.ToLower(candidate.Get("finishReason").String())

			partsResult := candidate.Get("content.parts")
			if partsResult.IsArray() {
				for _, partResult := range partsResult.Array() {
					partTextResult := partResult.Get("text")
					functionCallResult := partResult.Get("functionCall")
					inlineDataResult := partResult.Get("inlineData")

					thoughtSignatureResult := partResult.Get("thoughtSignature")
					hasContentPayload := partTextResult.Exists() || functionCallResult.Exists() || inlineDataResult.Exists()
					// Signature-only parts carry nothing translatable.
					if thoughtSignatureResult.Exists() && thoughtSignatureResult.String() != "" && !hasContentPayload {
						continue
					}

					if partTextResult.Exists() {
						if partResult.Get("thought").Bool() {
							template, _ = sjson.Set(template, "choices.0.delta.reasoning_content", partTextResult.String())
						} else {
							template, _ = sjson.Set(template, "choices.0.delta.content", partTextResult.String())
						}
						template, _ = sjson.Set(template, "choices.0.delta.role", "assistant")
					} else if functionCallResult.Exists() {
						p.SawToolCall = true

						functionCallIndex := p.FunctionIndex[candidateIndex]
						p.FunctionIndex[candidateIndex]++

						toolCallsResult := gjson.Get(template, "choices.0.delta.tool_calls")
						if toolCallsResult.Exists() && toolCallsResult.IsArray() {
							functionCallIndex = len(toolCallsResult.Array())
						} else {
							template, _ = sjson.SetRaw(template, "choices.0.delta.tool_calls", `[]`)
						}

						toolCall := `{"id":"","index":0,"type":"function","function":{"name":"","arguments":""}}`
						fcName := functionCallResult.Get("name").String()
						toolCallID := functionCallResult.Get("id").String()
						if toolCallID == "" {
							toolCallID = fmt.Sprintf("%s-%d-%d", fcName, time.Now().UnixNano(), atomic.AddUint64(&functionCallIDCounter, 1))
						}
						toolCall, _ = sjson.Set(toolCall, "id", toolCallID)
						toolCall, _ = sjson.Set(toolCall, "index", functionCallIndex)
						toolCall, _ = sjson.Set(toolCall, "function.name", fcName)
						if fcArgsResult := functionCallResult.Get("args"); fcArgsResult.Exists() {
							toolCall, _ = sjson.Set(toolCall, "function.arguments", fcArgsResult.Raw)
						}
						template, _ = sjson.Set(template, "choices.0.delta.role", "assistant")
						template, _ = sjson.SetRaw(template, "choices.0.delta.tool_calls.-1", toolCall)
					} else if inlineDataResult.Exists() {
						data := inlineDataResult.Get("data").String()
						if data == "" {
							continue
						}
						mimeType := inlineDataResult.Get("mimeType").String()
						if mimeType == "" {
							mimeType = "image/png"
						}
						imageURL := fmt.Sprintf("data:%s;base64,%s", mimeType, data)
						imagesResult := gjson.Get(template, "choices.0.delta.images")
						if !imagesResult.Exists() || !imagesResult.IsArray() {
							template, _ = sjson.SetRaw(template, "choices.0.delta.images", `[]`)
						}
						imageIndex := len(gjson.Get(template, "choices.0.delta.images").Array())
						imagePayload := `{"type":"image_url","image_url":{"url":""}}`
						imagePayload, _ = sjson.Set(imagePayload, "index", imageIndex)
						imagePayload, _ = sjson.Set(imagePayload, "image_url.url", imageURL)
						template, _ = sjson.Set(template, "choices.0.delta.role", "assistant")
						template, _ = sjson.SetRaw(template, "choices.0.delta.images.-1", imagePayload)
					}
				}
			}

			// finish_reason is reported only on the terminal chunk; a
			// functionCall chunk itself stays open so the client keeps
			// reading tool-call deltas.
			if finishReason != "" {
				if p.SawToolCall {
					template, _ = sjson.Set(template, "choices.0.finish_reason", "tool_calls")
					template, _ = sjson.Set(template, "choices.0.native_finish_reason", finishReason)
				} else {
					mapped := mapAntigravityFinishReasonToOpenAI(finishReason)
					template, _ = sjson.Set(template, "choices.0.finish_reason", mapped)
					template, _ = sjson.Set(template, "choices.0.native_finish_reason", finishReason)
				}
			}

			responseStrings = append(responseStrings, template)
			return true
		})
	} else if gjson.GetBytes(rawJSON, "usageMetadata").Exists() {
		// Pure usage chunk, pass the accounting along.
		responseStrings = append(responseStrings, baseTemplate)
	}

	return responseStrings
}

// mapAntigravityFinishReasonToOpenAI maps an upstream finishReason (already
// lowercased) to the Chat Completions vocabulary.
func mapAntigravityFinishReasonToOpenAI(finishReason string) string {
	switch finishReason {
	case "stop", "max_tokens":
		return finishReason
	case "safety", "prohibited_content", "blocklist", "spii":
		return "content_filter"
	default:
		return "stop"
	}
}

// attachOpenAIUsage writes Antigravity usage metadata onto an OpenAI template.
// Cached tokens are subtracted from the prompt count and thinking tokens added,
// matching how Chat Completions accounts for both.
func attachOpenAIUsage(template string, usageResult gjson.Result) string {
	if candidatesTokenCountResult := usageResult.Get("candidatesTokenCount"); candidatesTokenCountResult.Exists() {
		template, _ = sjson.Set(template, "usage.completion_tokens", candidatesTokenCountResult.Int())
	}
	if totalTokenCountResult := usageResult.Get("totalTokenCount"); totalTokenCountResult.Exists() {
		template, _ = sjson.Set(template, "usage.total_tokens", totalTokenCountResult.Int())
	}
	cachedTokenCount := usageResult.Get("cachedContentTokenCount").Int()
	thoughtsTokenCount := usageResult.Get("thoughtsTokenCount").Int()
	promptTokenCount := usageResult.Get("promptTokenCount").Int() - cachedTokenCount
	template, _ = sjson.Set(template, "usage.prompt_tokens", promptTokenCount+thoughtsTokenCount)
	if thoughtsTokenCount > 0 {
		template, _ = sjson.Set(template, "usage.completion_tokens_details.reasoning_tokens", thoughtsTokenCount)
	}
	if cachedTokenCount > 0 {
		var err error
		template, err = sjson.Set(template, "usage.prompt_tokens_details.cached_tokens", cachedTokenCount)
		if err != nil {
			log.Warnf("antigravity openai response: failed to set cached_tokens: %v", err)
		}
	}
	return template
}

// ConvertAntigravityResponseToOpenAINonStream converts a complete Antigravity
// response into a single OpenAI chat.completion document.
func ConvertAntigravityResponseToOpenAINonStream(_ context.Context, _ string, _, _ []byte, rawJSON []byte, _ *any) string {
	rawJSON = common.UnwrapResponse(rawJSON)

	var unixTimestamp int64
	template := `{"id":"","object":"chat.completion","created":123456,"model":"model","choices":[]}`

	if modelVersionResult := gjson.GetBytes(rawJSON, "modelVersion"); modelVersionResult.Exists() {
		template, _ = sjson.Set(template, "model", modelVersionResult.String())
	}

	if createTimeResult := gjson.GetBytes(rawJSON, "createTime"); createTimeResult.Exists() {
		t, err := time.Parse(time.RFC3339Nano, createTimeResult.String())
		if err == nil {
			unixTimestamp = t.Unix()
		}
	}
	template, _ = sjson.Set(template, "created", unixTimestamp)

	if responseIDResult := gjson.GetBytes(rawJSON, "responseId"); responseIDResult.Exists() {
		template, _ = sjson.Set(template, "id", responseIDResult.String())
	}

	if usageResult := gjson.GetBytes(rawJSON, "usageMetadata"); usageResult.Exists() {
		template = attachOpenAIUsage(template, usageResult)
	}

	candidates := gjson.GetBytes(rawJSON, "candidates")
	if candidates.IsArray() {
		candidates.ForEach(func(_, candidate gjson.Result) bool {
			choiceTemplate := `{"index":0,"message":{"role":"assistant","content":null,"reasoning_content":null,"tool_calls":null},"finish_reason":null,"native_finish_reason":null}`

			choiceTemplate, _ = sjson.Set(choiceTemplate, "index", candidate.Get("index").Int())

			finishReason := strings.ToLower(candidate.Get("finishReason").String())
			if finishReason != "" {
				choiceTemplate, _ = sjson.Set(choiceTemplate, "finish_reason", mapAntigravityFinishReasonToOpenAI(finishReason))
				choiceTemplate, _ = sjson.Set(choiceTemplate, "native_finish_reason", finishReason)
			}

			partsResult := candidate.Get("content.parts")
			hasFunctionCall := false
			if partsResult.IsArray() {
				for _, partResult := range partsResult.Array() {
					partTextResult := partResult.Get("text")
					functionCallResult := partResult.Get("functionCall")
					inlineDataResult := partResult.Get("inlineData")

					if partTextResult.Exists() {
						if partResult.Get("thought").Bool() {
							oldVal := gjson.Get(choiceTemplate, "message.reasoning_content").String()
							choiceTemplate, _ = sjson.Set(choiceTemplate, "message.reasoning_content", oldVal+partTextResult.String())
						} else {
							oldVal := gjson.Get(choiceTemplate, "message.content").String()
							choiceTemplate, _ = sjson.Set(choiceTemplate, "message.content", oldVal+partTextResult.String())
						}
					} else if functionCallResult.Exists() {
						hasFunctionCall = true
						toolCallsResult := gjson.Get(choiceTemplate, "message.tool_calls")
						if !toolCallsResult.Exists() || !toolCallsResult.IsArray() {
							choiceTemplate, _ = sjson.SetRaw(choiceTemplate, "message.tool_calls", `[]`)
						}
						toolCall := `{"id":"","type":"function","function":{"name":"","arguments":""}}`
						fcName := functionCallResult.Get("name").String()
						toolCallID := functionCallResult.Get("id").String()
						if toolCallID == "" {
							toolCallID = fmt.Sprintf("%s-%d-%d", fcName, time.Now().UnixNano(), atomic.AddUint64(&functionCallIDCounter, 1))
						}
						toolCall, _ = sjson.Set(toolCall, "id", toolCallID)
						toolCall, _ = sjson.Set(toolCall, "function.name", fcName)
						if fcArgsResult := functionCallResult.Get("args"); fcArgsResult.Exists() {
							toolCall, _ = sjson.Set(toolCall, "function.arguments", fcArgsResult.Raw)
						}
						choiceTemplate, _ = sjson.SetRaw(choiceTemplate, "message.tool_calls.-1", toolCall)
					} else if inlineDataResult.Exists() {
						data := inlineDataResult.Get("data").String()
						if data == "" {
							continue
						}
						mimeType := inlineDataResult.Get("mimeType").String()
						if mimeType == "" {
							mimeType = "image/png"
						}
						imageURL := fmt.Sprintf("data:%s;base64,%s", mimeType, data)
						imagesResult := gjson.Get(choiceTemplate, "message.images")
						if !imagesResult.Exists() || !imagesResult.IsArray() {
							choiceTemplate, _ = sjson.SetRaw(choiceTemplate, "message.images", `[]`)
						}
						imageIndex := len(gjson.Get(choiceTemplate, "message.images").Array())
						imagePayload := `{"type":"image_url","image_url":{"url":""}}`
						imagePayload, _ = sjson.Set(imagePayload, "index", imageIndex)
						imagePayload, _ = sjson.Set(imagePayload, "image_url.url", imageURL)
						choiceTemplate, _ = sjson.SetRaw(choiceTemplate, "message.images.-1", imagePayload)
					}
				}
			}

			if hasFunctionCall {
				choiceTemplate, _ = sjson.Set(choiceTemplate, "finish_reason", "tool_calls")
				if finishReason != "" {
					choiceTemplate, _ = sjson.Set(choiceTemplate, "native_finish_reason", finishReason)
				} else {
					choiceTemplate, _ = sjson.Set(choiceTemplate, "native_finish_reason", "tool_calls")
				}
			}

			template, _ = sjson.SetRaw(template, "choices.-1", choiceTemplate)
			return true
		})
	}

	return template
}
