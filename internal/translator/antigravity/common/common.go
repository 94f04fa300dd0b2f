// Package common holds helpers shared by the Antigravity translator pairs:
// the request/response envelope plumbing and the default safety settings
// attached to outbound requests.
package common

import (
	"bytes"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/agrelay/agrelay/internal/util"
)

// DefaultSafetySettings returns the default safety configuration attached to
// Antigravity requests.
func DefaultSafetySettings() []map[string]string {
	return []map[string]string{
		{
			"category":  "HARM_CATEGORY_HARASSMENT",
			"threshold": "OFF",
		},
		{
			"category":  "HARM_CATEGORY_HATE_SPEECH",
			"threshold": "OFF",
		},
		{
			"category":  "HARM_CATEGORY_SEXUALLY_EXPLICIT",
			"threshold": "OFF",
		},
		{
			"category":  "HARM_CATEGORY_DANGEROUS_CONTENT",
			"threshold": "OFF",
		},
		{
			"category":  "HARM_CATEGORY_CIVIC_INTEGRITY",
			"threshold": "BLOCK_NONE",
		},
	}
}

// AttachDefaultSafetySettings ensures the default safety settings are present when absent.
// The caller must provide the target JSON path (e.g. "safetySettings" or "request.safetySettings").
func AttachDefaultSafetySettings(rawJSON []byte, path string) []byte {
	if gjson.GetBytes(rawJSON, path).Exists() {
		return rawJSON
	}

	out, err := sjson.SetBytes(rawJSON, path, DefaultSafetySettings())
	if err != nil {
		return rawJSON
	}

	return out
}

// RestoreUsageMetadata renames cpaUsageMetadata back to usageMetadata.
// Antigravity reports token accounting under the cpa-prefixed key; downstream
// translators only understand the standard one.
func RestoreUsageMetadata(rawJSON []byte) []byte {
	if !gjson.GetBytes(rawJSON, "cpaUsageMetadata").Exists() {
		return rawJSON
	}
	out, err := util.RenameKey(string(rawJSON), "cpaUsageMetadata", "usageMetadata")
	if err != nil {
		return rawJSON
	}
	return []byte(out)
}

// UnwrapResponse strips an SSE "data:" prefix and the Antigravity "response"
// envelope from a chunk, restoring usage metadata along the way. Payloads
// without the envelope pass through with only the usage key restored.
func UnwrapResponse(rawJSON []byte) []byte {
	if bytes.HasPrefix(rawJSON, []byte("data:")) {
		rawJSON = bytes.TrimSpace(rawJSON[5:])
	}
	if inner := gjson.GetBytes(rawJSON, "response"); inner.Exists() && inner.IsObject() {
		rawJSON = []byte(inner.Raw)
	}
	return RestoreUsageMetadata(rawJSON)
}

// WrapResponse places a translated payload inside the Antigravity "response"
// envelope.
func WrapResponse(payload string) string {
	out, err := sjson.SetRaw(`{"response":{}}`, "response", payload)
	if err != nil {
		return `{"response":{}}`
	}
	return out
}
