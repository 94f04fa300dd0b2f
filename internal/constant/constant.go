// Package constant defines wire-format identifier constants used throughout
// the translation engine, ensuring consistent naming across the application.
package constant

const (
	// Gemini represents the Google Gemini dialect identifier.
	Gemini = "gemini"

	// GeminiCLI represents the Google Gemini CLI dialect identifier.
	GeminiCLI = "gemini-cli"

	// Codex represents the OpenAI Codex dialect identifier.
	Codex = "codex"

	// Claude represents the Anthropic Claude dialect identifier.
	Claude = "claude"

	// OpenAI represents the OpenAI Chat Completions dialect identifier.
	OpenAI = "openai"

	// OpenaiResponse represents the OpenAI Responses dialect identifier.
	OpenaiResponse = "openai-response"

	// Antigravity represents the Antigravity dialect identifier.
	Antigravity = "antigravity"
)
