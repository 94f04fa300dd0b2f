// Package antigravity provides request translation functionality for Antigravity to OpenAI API.
// It handles parsing and transforming Antigravity API requests into OpenAI Chat Completions API format,
// extracting model information, generation config, message contents, and tool declarations.
// The package performs JSON data transformation to ensure compatibility
// between Antigravity API format and OpenAI API's expected format.
package antigravity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/agrelay/agrelay/internal/thinking"
	"github.com/agrelay/agrelay/internal/tokenbudget"
	"github.com/agrelay/agrelay/internal/util"
)

// genToolCallID synthesizes an identifier for functionCall parts that arrive
// without one.
func genToolCallID() string {
	return "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ConvertAntigravityRequestToOpenAI parses and transforms an Antigravity API request into OpenAI Chat Completions API format.
// It unwraps the request envelope, then extracts the generation config, message contents,
// and tool declarations from the raw JSON request and returns them in the format expected
// by the OpenAI API.
func ConvertAntigravityRequestToOpenAI(modelName string, inputRawJSON []byte, stream bool) []byte {
	root := gjson.ParseBytes(inputRawJSON)
	// Antigravity wraps the generation request in a "request" envelope next to
	// the model field. Tolerate bare payloads as well.
	if req := root.Get("request"); req.Exists() && req.IsObject() {
		root = req
	}

	out := `{"model":"","messages":[]}`
	out, _ = sjson.Set(out, "model", modelName)

	maxOutputTokens := int64(-1)

	// Generation config mapping
	if genConfig := root.Get("generationConfig"); genConfig.Exists() {
		if temp := genConfig.Get("temperature"); temp.Exists() {
			out, _ = sjson.Set(out, "temperature", temp.Float())
		}
		if topP := genConfig.Get("topP"); topP.Exists() {
			out, _ = sjson.Set(out, "top_p", topP.Float())
		}
		if topK := genConfig.Get("topK"); topK.Exists() {
			out, _ = sjson.Set(out, "top_k", topK.Int())
		}
		if maxTokens := genConfig.Get("maxOutputTokens"); maxTokens.Exists() {
			// Applied after tools are translated so the budget adjuster can
			// account for declared schemas.
			maxOutputTokens = maxTokens.Int()
		}
		if stopSequences := genConfig.Get("stopSequences"); stopSequences.Exists() && stopSequences.IsArray() {
			var stops []string
			stopSequences.ForEach(func(_, value gjson.Result) bool {
				stops = append(stops, value.String())
				return true
			})
			if len(stops) > 0 {
				out, _ = sjson.Set(out, "stop", stops)
			}
		}
		if candidateCount := genConfig.Get("candidateCount"); candidateCount.Exists() {
			out, _ = sjson.Set(out, "n", candidateCount.Int())
		}

		// Map thinkingConfig to reasoning_effort. A discrete level passes
		// through lowercased; a numeric budget buckets through the threshold
		// table. Google SDKs send snake_case variants of both keys.
		if thinkingConfig := genConfig.Get("thinkingConfig"); thinkingConfig.Exists() && thinkingConfig.IsObject() {
			thinkingLevel := thinkingConfig.Get("thinkingLevel")
			if !thinkingLevel.Exists() {
				thinkingLevel = thinkingConfig.Get("thinking_level")
			}
			if thinkingLevel.Exists() {
				effort := strings.ToLower(strings.TrimSpace(thinkingLevel.String()))
				if effort != "" {
					out, _ = sjson.Set(out, "reasoning_effort", effort)
				}
			} else {
				thinkingBudget := thinkingConfig.Get("thinkingBudget")
				if !thinkingBudget.Exists() {
					thinkingBudget = thinkingConfig.Get("thinking_budget")
				}
				if thinkingBudget.Exists() {
					if effort, ok := thinking.ConvertBudgetToLevel(int(thinkingBudget.Int())); ok {
						out, _ = sjson.Set(out, "reasoning_effort", effort)
					}
				}
			}
		}
	}

	out, _ = sjson.Set(out, "stream", stream)

	// System instruction -> one leading system message. The instruction may be
	// a bare string or a content block; either way all textual parts collapse
	// into a single string in order.
	systemInstruction := root.Get("systemInstruction")
	if !systemInstruction.Exists() {
		systemInstruction = root.Get("system_instruction")
	}
	if systemInstruction.Exists() {
		var systemText strings.Builder
		if systemInstruction.Type == gjson.String {
			systemText.WriteString(systemInstruction.String())
		} else if parts := systemInstruction.Get("parts"); parts.Exists() && parts.IsArray() {
			parts.ForEach(func(_, part gjson.Result) bool {
				if text := part.Get("text"); text.Exists() {
					systemText.WriteString(text.String())
				}
				return true
			})
		}
		if systemText.Len() > 0 {
			msg := `{"role":"system","content":""}`
			msg, _ = sjson.Set(msg, "content", systemText.String())
			out, _ = sjson.SetRaw(out, "messages.-1", msg)
		}
	}

	var toolCallIDs []string // synthesized ids, matched to later tool results

	if contents := root.Get("contents"); contents.Exists() && contents.IsArray() {
		contents.ForEach(func(_, content gjson.Result) bool {
			role := content.Get("role").String()
			if role == "model" {
				role = "assistant"
			}
			parts := content.Get("parts")

			var textBuilder strings.Builder
			var reasoningBuilder strings.Builder
			contentWrapper := `{"arr":[]}`
			contentPartsCount := 0
			onlyTextContent := true
			toolCallsWrapper := `{"arr":[]}`
			toolCallsCount := 0
			toolResultsWrapper := `{"arr":[]}`
			toolResultsCount := 0

			if parts.Exists() && parts.IsArray() {
				parts.ForEach(func(_, part gjson.Result) bool {
					text := part.Get("text")
					functionCall := part.Get("functionCall")
					functionResponse := part.Get("functionResponse")
					inlineData := part.Get("inlineData")
					thoughtSignature := part.Get("thoughtSignature")

					// A part carrying only a continuation signature is
					// skipped; a signature trailing real payload is ignored.
					hasPayload := text.Exists() || functionCall.Exists() || functionResponse.Exists() || inlineData.Exists()
					if thoughtSignature.Exists() && !hasPayload {
						return true
					}

					switch {
					case text.Exists():
						if part.Get("thought").Bool() {
							reasoningBuilder.WriteString(text.String())
							return true
						}
						textBuilder.WriteString(text.String())
						contentPart := `{"type":"text","text":""}`
						contentPart, _ = sjson.Set(contentPart, "text", text.String())
						contentWrapper, _ = sjson.SetRaw(contentWrapper, "arr.-1", contentPart)
						contentPartsCount++

					case inlineData.Exists():
						onlyTextContent = false
						mimeType := inlineData.Get("mimeType").String()
						if mimeType == "" {
							mimeType = inlineData.Get("mime_type").String()
						}
						if mimeType == "" {
							mimeType = "application/octet-stream"
						}
						imageURL := fmt.Sprintf("data:%s;base64,%s", mimeType, inlineData.Get("data").String())
						contentPart := `{"type":"image_url","image_url":{"url":""}}`
						contentPart, _ = sjson.Set(contentPart, "image_url.url", imageURL)
						contentWrapper, _ = sjson.SetRaw(contentWrapper, "arr.-1", contentPart)
						contentPartsCount++

					case functionCall.Exists():
						toolCallID := functionCall.Get("id").String()
						if toolCallID == "" {
							toolCallID = genToolCallID()
						}
						toolCallIDs = append(toolCallIDs, toolCallID)

						toolCall := `{"id":"","type":"function","function":{"name":"","arguments":""}}`
						toolCall, _ = sjson.Set(toolCall, "id", toolCallID)
						toolCall, _ = sjson.Set(toolCall, "function.name", functionCall.Get("name").String())
						if args := functionCall.Get("args"); args.Exists() {
							toolCall, _ = sjson.Set(toolCall, "function.arguments", args.Raw)
						} else {
							toolCall, _ = sjson.Set(toolCall, "function.arguments", "{}")
						}
						toolCallsWrapper, _ = sjson.SetRaw(toolCallsWrapper, "arr.-1", toolCall)
						toolCallsCount++

					case functionResponse.Exists():
						toolMsg := `{"role":"tool","tool_call_id":"","content":""}`
						if response := functionResponse.Get("response"); response.Exists() {
							if contentField := response.Get("content"); contentField.Exists() {
								toolMsg, _ = sjson.Set(toolMsg, "content", contentField.Raw)
							} else {
								toolMsg, _ = sjson.Set(toolMsg, "content", response.Raw)
							}
						}
						if id := functionResponse.Get("id"); id.Exists() && id.String() != "" {
							toolMsg, _ = sjson.Set(toolMsg, "tool_call_id", id.String())
						} else if len(toolCallIDs) > 0 {
							toolMsg, _ = sjson.Set(toolMsg, "tool_call_id", toolCallIDs[len(toolCallIDs)-1])
						} else {
							toolMsg, _ = sjson.Set(toolMsg, "tool_call_id", genToolCallID())
						}
						toolResultsWrapper, _ = sjson.SetRaw(toolResultsWrapper, "arr.-1", toolMsg)
						toolResultsCount++
					}
					return true
				})
			}

			// Block composition priority: tool results win the block, then
			// tool invocations, then plain content. A block that produced
			// nothing emits no message.
			switch {
			case toolResultsCount > 0:
				gjson.Get(toolResultsWrapper, "arr").ForEach(func(_, toolMsg gjson.Result) bool {
					out, _ = sjson.SetRaw(out, "messages.-1", toolMsg.Raw)
					return true
				})

			case toolCallsCount > 0:
				msg := `{"role":""}`
				msg, _ = sjson.Set(msg, "role", role)
				if contentPartsCount > 0 {
					if onlyTextContent {
						msg, _ = sjson.Set(msg, "content", textBuilder.String())
					} else {
						msg, _ = sjson.SetRaw(msg, "content", gjson.Get(contentWrapper, "arr").Raw)
					}
				}
				if reasoningBuilder.Len() > 0 {
					msg, _ = sjson.Set(msg, "reasoning_content", reasoningBuilder.String())
				}
				msg, _ = sjson.SetRaw(msg, "tool_calls", gjson.Get(toolCallsWrapper, "arr").Raw)
				out, _ = sjson.SetRaw(out, "messages.-1", msg)

			case contentPartsCount > 0 || reasoningBuilder.Len() > 0:
				msg := `{"role":""}`
				msg, _ = sjson.Set(msg, "role", role)
				if contentPartsCount > 0 {
					if onlyTextContent {
						msg, _ = sjson.Set(msg, "content", textBuilder.String())
					} else {
						msg, _ = sjson.SetRaw(msg, "content", gjson.Get(contentWrapper, "arr").Raw)
					}
				}
				if reasoningBuilder.Len() > 0 {
					msg, _ = sjson.Set(msg, "reasoning_content", reasoningBuilder.String())
				}
				out, _ = sjson.SetRaw(out, "messages.-1", msg)
			}
			return true
		})
	}

	// Tools mapping: functionDeclarations -> OpenAI tools, with schema type
	// tokens folded to the lowercase vocabulary.
	if tools := root.Get("tools"); tools.Exists() && tools.IsArray() {
		tools.ForEach(func(_, tool gjson.Result) bool {
			if functionDeclarations := tool.Get("functionDeclarations"); functionDeclarations.Exists() && functionDeclarations.IsArray() {
				functionDeclarations.ForEach(func(_, funcDecl gjson.Result) bool {
					openAITool := `{"type":"function","function":{"name":"","description":""}}`
					openAITool, _ = sjson.Set(openAITool, "function.name", funcDecl.Get("name").String())
					openAITool, _ = sjson.Set(openAITool, "function.description", funcDecl.Get("description").String())

					parameters := funcDecl.Get("parameters")
					if !parameters.Exists() {
						parameters = funcDecl.Get("parametersJsonSchema")
					}
					openAITool, _ = sjson.SetRaw(openAITool, "function.parameters", util.EnsureObjectSchema(parameters.Raw, false))

					out, _ = sjson.SetRaw(out, "tools.-1", openAITool)
					return true
				})
			}
			return true
		})
	}

	if toolConfig := root.Get("toolConfig"); toolConfig.Exists() {
		if functionCallingConfig := toolConfig.Get("functionCallingConfig"); functionCallingConfig.Exists() {
			switch functionCallingConfig.Get("mode").String() {
			case "NONE":
				out, _ = sjson.Set(out, "tool_choice", "none")
			case "AUTO":
				out, _ = sjson.Set(out, "tool_choice", "auto")
			case "ANY":
				out, _ = sjson.Set(out, "tool_choice", "required")
			}
		}
	}

	if maxOutputTokens >= 0 {
		var toolsRaw []byte
		if toolsResult := gjson.Get(out, "tools"); toolsResult.Exists() {
			toolsRaw = []byte(toolsResult.Raw)
		}
		out, _ = sjson.Set(out, "max_tokens", tokenbudget.AdjustMaxTokens(modelName, maxOutputTokens, toolsRaw))
	}

	return []byte(out)
}
