// Package chat_completions provides request translation functionality for OpenAI to Antigravity API.
// It handles parsing and transforming OpenAI Chat Completions API requests into the Antigravity
// request-envelope format, converting message lists, tool declarations, and generation parameters
// into the shape expected by Antigravity API clients.
package chat_completions

import (
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/agrelay/agrelay/internal/misc"
	"github.com/agrelay/agrelay/internal/thinking"
	"github.com/agrelay/agrelay/internal/tokenbudget"
	"github.com/agrelay/agrelay/internal/translator/antigravity/common"
	"github.com/agrelay/agrelay/internal/util"
)

// skipThoughtSignatureSentinel marks replayed functionCall history parts so the
// upstream validator does not reject them for a missing signature.
const skipThoughtSignatureSentinel = "skip_thought_signature_validator"

// ConvertOpenAIRequestToAntigravity parses and transforms an OpenAI Chat Completions API
// request into the Antigravity request envelope. System messages flatten into one
// systemInstruction block, the remaining messages become contents, and declared tools
// become functionDeclarations with their schema type tokens folded to the uppercase
// vocabulary.
func ConvertOpenAIRequestToAntigravity(modelName string, inputRawJSON []byte, _ bool) []byte {
	root := gjson.ParseBytes(inputRawJSON)

	out := `{"model":"","request":{"contents":[]}}`
	out, _ = sjson.Set(out, "model", modelName)

	var systemText strings.Builder
	pendingToolIDs := make(map[string]string) // tool_call_id -> function name

	if messages := root.Get("messages"); messages.Exists() && messages.IsArray() {
		messages.ForEach(func(_, message gjson.Result) bool {
			role := message.Get("role").String()
			content := message.Get("content")

			switch role {
			case "system", "developer":
				if content.Type == gjson.String {
					systemText.WriteString(content.String())
				} else if content.IsArray() {
					content.ForEach(func(_, part gjson.Result) bool {
						if text := part.Get("text"); text.Exists() {
							systemText.WriteString(text.String())
						}
						return true
					})
				}
				return true

			case "tool":
				part := `{"functionResponse":{"response":{}}}`
				toolCallID := message.Get("tool_call_id").String()
				if toolCallID != "" {
					part, _ = sjson.Set(part, "functionResponse.id", toolCallID)
					if name, ok := pendingToolIDs[toolCallID]; ok {
						part, _ = sjson.Set(part, "functionResponse.name", name)
					}
				}
				if content.Exists() {
					if content.Type == gjson.String && gjson.Valid(content.String()) {
						part, _ = sjson.SetRaw(part, "functionResponse.response.content", gjson.Parse(content.String()).Raw)
					} else if content.Type == gjson.String {
						part, _ = sjson.Set(part, "functionResponse.response.content", content.String())
					} else {
						part, _ = sjson.SetRaw(part, "functionResponse.response.content", content.Raw)
					}
				}
				block := `{"role":"user","parts":[]}`
				block, _ = sjson.SetRaw(block, "parts.-1", part)
				out, _ = sjson.SetRaw(out, "request.contents.-1", block)
				return true
			}

			if role == "assistant" {
				role = "model"
			}
			block := `{"role":"","parts":[]}`
			block, _ = sjson.Set(block, "role", role)
			partsAdded := 0

			if reasoning := message.Get("reasoning_content"); reasoning.Exists() && reasoning.String() != "" {
				part := `{"thought":true,"text":""}`
				part, _ = sjson.Set(part, "text", reasoning.String())
				block, _ = sjson.SetRaw(block, "parts.-1", part)
				partsAdded++
			}

			if content.Type == gjson.String && content.String() != "" {
				part := `{"text":""}`
				part, _ = sjson.Set(part, "text", content.String())
				block, _ = sjson.SetRaw(block, "parts.-1", part)
				partsAdded++
			} else if content.IsArray() {
				content.ForEach(func(_, contentPart gjson.Result) bool {
					switch contentPart.Get("type").String() {
					case "text":
						part := `{"text":""}`
						part, _ = sjson.Set(part, "text", contentPart.Get("text").String())
						block, _ = sjson.SetRaw(block, "parts.-1", part)
						partsAdded++
					case "image_url":
						mimeType, data, ok := splitDataURL(contentPart.Get("image_url.url").String())
						if !ok {
							log.Warnf("antigravity request: unsupported image url, dropping part")
							return true
						}
						part := `{"inlineData":{"mimeType":"","data":""}}`
						part, _ = sjson.Set(part, "inlineData.mimeType", mimeType)
						part, _ = sjson.Set(part, "inlineData.data", data)
						block, _ = sjson.SetRaw(block, "parts.-1", part)
						partsAdded++
					case "file":
						filename := contentPart.Get("file.filename").String()
						ext := ""
						if sp := strings.Split(filename, "."); len(sp) > 1 {
							ext = sp[len(sp)-1]
						}
						mimeType, ok := misc.MimeTypes[ext]
						if !ok {
							log.Warnf("antigravity request: unknown file extension %q, dropping part", ext)
							return true
						}
						part := `{"inlineData":{"mimeType":"","data":""}}`
						part, _ = sjson.Set(part, "inlineData.mimeType", mimeType)
						part, _ = sjson.Set(part, "inlineData.data", contentPart.Get("file.file_data").String())
						block, _ = sjson.SetRaw(block, "parts.-1", part)
						partsAdded++
					}
					return true
				})
			}

			if toolCalls := message.Get("tool_calls"); toolCalls.Exists() && toolCalls.IsArray() {
				toolCalls.ForEach(func(_, toolCall gjson.Result) bool {
					toolType := toolCall.Get("type").String()
					if toolType != "" && toolType != "function" {
						return true
					}
					function := toolCall.Get("function")
					name := function.Get("name").String()
					if id := toolCall.Get("id").String(); id != "" {
						pendingToolIDs[id] = name
					}

					part := `{"functionCall":{"name":"","args":{}}}`
					part, _ = sjson.Set(part, "functionCall.name", name)
					if id := toolCall.Get("id").String(); id != "" {
						part, _ = sjson.Set(part, "functionCall.id", id)
					}
					args := strings.TrimSpace(function.Get("arguments").String())
					if args != "" && gjson.Valid(args) && gjson.Parse(args).IsObject() {
						part, _ = sjson.SetRaw(part, "functionCall.args", gjson.Parse(args).Raw)
					}
					// Replayed history calls carry no signature.
					part, _ = sjson.Set(part, "thoughtSignature", skipThoughtSignatureSentinel)
					block, _ = sjson.SetRaw(block, "parts.-1", part)
					partsAdded++
					return true
				})
			}

			if partsAdded > 0 {
				out, _ = sjson.SetRaw(out, "request.contents.-1", block)
			}
			return true
		})
	}

	if systemText.Len() > 0 {
		instruction := `{"role":"user","parts":[{"text":""}]}`
		instruction, _ = sjson.Set(instruction, "parts.0.text", systemText.String())
		out, _ = sjson.SetRaw(out, "request.systemInstruction", instruction)
	}

	// Tools mapping: OpenAI tools -> functionDeclarations with uppercase
	// schema type tokens.
	if tools := root.Get("tools"); tools.Exists() && tools.IsArray() && len(tools.Array()) > 0 {
		toolsJSON := `[{"functionDeclarations":[]}]`
		declCount := 0
		tools.ForEach(func(_, tool gjson.Result) bool {
			function := tool.Get("function")
			if !function.Exists() {
				return true
			}
			decl := `{"name":"","description":""}`
			decl, _ = sjson.Set(decl, "name", function.Get("name").String())
			decl, _ = sjson.Set(decl, "description", function.Get("description").String())
			decl, _ = sjson.SetRaw(decl, "parametersJsonSchema", util.EnsureObjectSchema(function.Get("parameters").Raw, true))
			toolsJSON, _ = sjson.SetRaw(toolsJSON, "0.functionDeclarations.-1", decl)
			declCount++
			return true
		})
		if declCount > 0 {
			out, _ = sjson.SetRaw(out, "request.tools", toolsJSON)
		}
	}

	if toolChoice := root.Get("tool_choice"); toolChoice.Exists() && toolChoice.Type == gjson.String {
		switch toolChoice.String() {
		case "none":
			out, _ = sjson.Set(out, "request.toolConfig.functionCallingConfig.mode", "NONE")
		case "auto":
			out, _ = sjson.Set(out, "request.toolConfig.functionCallingConfig.mode", "AUTO")
		case "required":
			out, _ = sjson.Set(out, "request.toolConfig.functionCallingConfig.mode", "ANY")
		}
	}

	// Generation config mapping
	if v := root.Get("temperature"); v.Exists() && v.Type == gjson.Number {
		out, _ = sjson.Set(out, "request.generationConfig.temperature", v.Float())
	}
	if v := root.Get("top_p"); v.Exists() && v.Type == gjson.Number {
		out, _ = sjson.Set(out, "request.generationConfig.topP", v.Float())
	}
	if v := root.Get("top_k"); v.Exists() && v.Type == gjson.Number {
		out, _ = sjson.Set(out, "request.generationConfig.topK", v.Int())
	}
	maxTokens := root.Get("max_tokens")
	if !maxTokens.Exists() {
		maxTokens = root.Get("max_completion_tokens")
	}
	if maxTokens.Exists() && maxTokens.Type == gjson.Number {
		// Declared tool schemas count against the same window as the
		// completion, so the limit shrinks by their token cost.
		var toolsRaw []byte
		if tools := root.Get("tools"); tools.Exists() && tools.IsArray() {
			toolsRaw = []byte(tools.Raw)
		}
		out, _ = sjson.Set(out, "request.generationConfig.maxOutputTokens",
			tokenbudget.AdjustMaxTokens(modelName, maxTokens.Int(), toolsRaw))
	}
	if v := root.Get("n"); v.Exists() && v.Type == gjson.Number {
		out, _ = sjson.Set(out, "request.generationConfig.candidateCount", v.Int())
	}
	if stop := root.Get("stop"); stop.Exists() {
		var stops []string
		if stop.Type == gjson.String {
			stops = append(stops, stop.String())
		} else if stop.IsArray() {
			stop.ForEach(func(_, value gjson.Result) bool {
				stops = append(stops, value.String())
				return true
			})
		}
		if len(stops) > 0 {
			out, _ = sjson.Set(out, "request.generationConfig.stopSequences", stops)
		}
	}

	// reasoning_effort -> thinkingBudget
	if effort := root.Get("reasoning_effort"); effort.Exists() && effort.Type == gjson.String {
		if budget, ok := thinking.ConvertLevelToBudget(effort.String()); ok {
			out, _ = sjson.Set(out, "request.generationConfig.thinkingConfig.thinkingBudget", budget)
			out, _ = sjson.Set(out, "request.generationConfig.thinkingConfig.includeThoughts", true)
		}
	}

	return common.AttachDefaultSafetySettings([]byte(out), "request.safetySettings")
}

// splitDataURL splits a data: URL into its MIME type and base64 payload.
func splitDataURL(url string) (mimeType, data string, ok bool) {
	if !strings.HasPrefix(url, "data:") {
		return "", "", false
	}
	rest := url[len("data:"):]
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", "", false
	}
	mimeType = rest[:sep]
	data = rest[sep+len(";base64,"):]
	if mimeType == "" || data == "" {
		return "", "", false
	}
	return mimeType, data, true
}
