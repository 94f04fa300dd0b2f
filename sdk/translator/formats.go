package translator

// Common format identifiers exposed for SDK users.
const (
	FormatOpenAI         Format = "openai"
	FormatOpenAIResponse Format = "openai-response"
	FormatClaude         Format = "claude"
	FormatGemini         Format = "gemini"
	FormatGeminiCLI      Format = "gemini-cli"
	FormatCodex          Format = "codex"
	FormatAntigravity    Format = "antigravity"
)
