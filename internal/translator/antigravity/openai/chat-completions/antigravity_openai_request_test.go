package chat_completions

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestRequestEnvelopeShape(t *testing.T) {
	input := []byte(`{
		"model": "gpt-4o",
		"messages": [
			{"role":"system","content":"You are terse."},
			{"role":"user","content":"What is the weather?"}
		],
		"temperature": 0.4,
		"max_tokens": 512
	}`)

	out := string(ConvertOpenAIRequestToAntigravity("gemini-3-pro", input, true))

	if got := gjson.Get(out, "model").String(); got != "gemini-3-pro" {
		t.Errorf("model = %q", got)
	}
	if got := gjson.Get(out, "request.systemInstruction.parts.0.text").String(); got != "You are terse." {
		t.Errorf("systemInstruction = %q", got)
	}
	contents := gjson.Get(out, "request.contents").Array()
	if len(contents) != 1 {
		t.Fatalf("contents = %s", gjson.Get(out, "request.contents").Raw)
	}
	if contents[0].Get("role").String() != "user" || contents[0].Get("parts.0.text").String() != "What is the weather?" {
		t.Errorf("content block = %s", contents[0].Raw)
	}
	if got := gjson.Get(out, "request.generationConfig.temperature").Float(); got != 0.4 {
		t.Errorf("temperature = %v", got)
	}
	if got := gjson.Get(out, "request.generationConfig.maxOutputTokens").Int(); got != 512 {
		t.Errorf("maxOutputTokens = %d", got)
	}
	if !gjson.Get(out, "request.safetySettings").IsArray() {
		t.Errorf("safetySettings missing: %s", gjson.Get(out, "request.safetySettings").Raw)
	}
}

func TestRequestToolDeclarationsUppercased(t *testing.T) {
	input := []byte(`{"messages":[],"tools":[
		{"type":"function","function":{"name":"get_weather","description":"weather lookup","parameters":{"type":"object","properties":{"city":{"type":"string"}}}}}
	]}`)
	out := string(ConvertOpenAIRequestToAntigravity("gemini-3-pro", input, false))

	decl := gjson.Get(out, "request.tools.0.functionDeclarations.0")
	if decl.Get("name").String() != "get_weather" {
		t.Errorf("declaration = %s", decl.Raw)
	}
	schema := decl.Get("parametersJsonSchema")
	if schema.Get("type").String() != "OBJECT" {
		t.Errorf("schema type = %q", schema.Get("type").String())
	}
	if schema.Get("properties.city.type").String() != "STRING" {
		t.Errorf("property type = %q", schema.Get("properties.city.type").String())
	}
}

func TestRequestToolCallHistoryCarriesSentinel(t *testing.T) {
	input := []byte(`{"messages":[
		{"role":"assistant","tool_calls":[{"id":"call_7","type":"function","function":{"name":"get_weather","arguments":"{\"city\":\"Paris\"}"}}]},
		{"role":"tool","tool_call_id":"call_7","content":"{\"temp\":21}"}
	]}`)
	out := string(ConvertOpenAIRequestToAntigravity("gemini-3-pro", input, false))

	contents := gjson.Get(out, "request.contents").Array()
	if len(contents) != 2 {
		t.Fatalf("contents = %s", gjson.Get(out, "request.contents").Raw)
	}

	callPart := contents[0].Get("parts.0")
	if contents[0].Get("role").String() != "model" {
		t.Errorf("role = %q", contents[0].Get("role").String())
	}
	if callPart.Get("functionCall.id").String() != "call_7" ||
		callPart.Get("functionCall.name").String() != "get_weather" ||
		callPart.Get("functionCall.args.city").String() != "Paris" {
		t.Errorf("functionCall part = %s", callPart.Raw)
	}
	if got := callPart.Get("thoughtSignature").String(); got != "skip_thought_signature_validator" {
		t.Errorf("thoughtSignature = %q", got)
	}

	responsePart := contents[1].Get("parts.0.functionResponse")
	if responsePart.Get("id").String() != "call_7" || responsePart.Get("name").String() != "get_weather" {
		t.Errorf("functionResponse = %s", responsePart.Raw)
	}
	if responsePart.Get("response.content.temp").Int() != 21 {
		t.Errorf("response payload = %s", responsePart.Get("response").Raw)
	}
}

func TestRequestReasoningEffortToThinkingBudget(t *testing.T) {
	cases := []struct {
		effort string
		budget int64
	}{
		{"minimal", 512},
		{"low", 1024},
		{"medium", 8192},
		{"high", 24576},
		{"xhigh", 32768},
		{"auto", -1},
	}
	for _, c := range cases {
		input := []byte(`{"messages":[],"reasoning_effort":"` + c.effort + `"}`)
		out := string(ConvertOpenAIRequestToAntigravity("gemini-3-pro", input, false))
		if got := gjson.Get(out, "request.generationConfig.thinkingConfig.thinkingBudget").Int(); got != c.budget {
			t.Errorf("effort %q -> budget %d, want %d", c.effort, got, c.budget)
		}
		if !gjson.Get(out, "request.generationConfig.thinkingConfig.includeThoughts").Bool() {
			t.Errorf("effort %q: includeThoughts not set", c.effort)
		}
	}
}

func TestRequestImageContentBecomesInlineData(t *testing.T) {
	input := []byte(`{"messages":[
		{"role":"user","content":[
			{"type":"text","text":"what is this?"},
			{"type":"image_url","image_url":{"url":"data:image/jpeg;base64,aGVsbG8="}}
		]}
	]}`)
	out := string(ConvertOpenAIRequestToAntigravity("gemini-3-pro", input, false))

	parts := gjson.Get(out, "request.contents.0.parts").Array()
	if len(parts) != 2 {
		t.Fatalf("parts = %s", gjson.Get(out, "request.contents.0.parts").Raw)
	}
	if parts[0].Get("text").String() != "what is this?" {
		t.Errorf("text part = %s", parts[0].Raw)
	}
	inline := parts[1].Get("inlineData")
	if inline.Get("mimeType").String() != "image/jpeg" || inline.Get("data").String() != "aGVsbG8=" {
		t.Errorf("inlineData = %s", inline.Raw)
	}
}

func TestRequestFilePartUsesExtensionMimeType(t *testing.T) {
	input := []byte(`{"messages":[
		{"role":"user","content":[
			{"type":"file","file":{"filename":"report.pdf","file_data":"cGRm"}},
			{"type":"file","file":{"filename":"mystery.xyz","file_data":"ignored"}}
		]}
	]}`)
	out := string(ConvertOpenAIRequestToAntigravity("gemini-3-pro", input, false))

	parts := gjson.Get(out, "request.contents.0.parts").Array()
	if len(parts) != 1 {
		t.Fatalf("parts = %s", gjson.Get(out, "request.contents.0.parts").Raw)
	}
	inline := parts[0].Get("inlineData")
	if inline.Get("mimeType").String() != "application/pdf" || inline.Get("data").String() != "cGRm" {
		t.Errorf("inlineData = %s", inline.Raw)
	}
}

func TestRequestToolChoiceModes(t *testing.T) {
	cases := map[string]string{
		"none":     "NONE",
		"auto":     "AUTO",
		"required": "ANY",
	}
	for choice, mode := range cases {
		input := []byte(`{"messages":[],"tool_choice":"` + choice + `"}`)
		out := string(ConvertOpenAIRequestToAntigravity("gemini-3-pro", input, false))
		if got := gjson.Get(out, "request.toolConfig.functionCallingConfig.mode").String(); got != mode {
			t.Errorf("tool_choice %q -> mode %q, want %q", choice, got, mode)
		}
	}
}

func TestRequestStopSequencesAndCandidateCount(t *testing.T) {
	input := []byte(`{"messages":[],"stop":["END","FIN"],"n":2,"top_p":0.9,"top_k":40}`)
	out := string(ConvertOpenAIRequestToAntigravity("gemini-3-pro", input, false))

	stops := gjson.Get(out, "request.generationConfig.stopSequences").Array()
	if len(stops) != 2 || stops[0].String() != "END" {
		t.Errorf("stopSequences = %s", gjson.Get(out, "request.generationConfig.stopSequences").Raw)
	}
	if got := gjson.Get(out, "request.generationConfig.candidateCount").Int(); got != 2 {
		t.Errorf("candidateCount = %d", got)
	}
	if got := gjson.Get(out, "request.generationConfig.topP").Float(); got != 0.9 {
		t.Errorf("topP = %v", got)
	}
	if got := gjson.Get(out, "request.generationConfig.topK").Int(); got != 40 {
		t.Errorf("topK = %d", got)
	}
}

func TestRequestMaxOutputTokensAdjustedForTools(t *testing.T) {
	input := []byte(`{
		"messages":[{"role":"user","content":"hi"}],
		"max_tokens":4096,
		"tools":[{"type":"function","function":{"name":"get_weather","description":"Look up weather by city name","parameters":{"type":"object","properties":{"city":{"type":"string"}}}}}]
	}`)
	out := string(ConvertOpenAIRequestToAntigravity("gemini-3-pro", input, false))

	maxTokens := gjson.Get(out, "request.generationConfig.maxOutputTokens").Int()
	if maxTokens <= 0 || maxTokens >= 4096 {
		t.Errorf("maxOutputTokens = %d, want adjusted below 4096", maxTokens)
	}

	// Without tools the limit passes through untouched.
	input = []byte(`{"messages":[],"max_tokens":4096}`)
	out = string(ConvertOpenAIRequestToAntigravity("gemini-3-pro", input, false))
	if got := gjson.Get(out, "request.generationConfig.maxOutputTokens").Int(); got != 4096 {
		t.Errorf("maxOutputTokens = %d, want 4096", got)
	}
}

func TestRequestReasoningContentBecomesThoughtPart(t *testing.T) {
	input := []byte(`{"messages":[
		{"role":"assistant","content":"Answer.","reasoning_content":"Working it out."}
	]}`)
	out := string(ConvertOpenAIRequestToAntigravity("gemini-3-pro", input, false))

	parts := gjson.Get(out, "request.contents.0.parts").Array()
	if len(parts) != 2 {
		t.Fatalf("parts = %s", gjson.Get(out, "request.contents.0.parts").Raw)
	}
	if !parts[0].Get("thought").Bool() || parts[0].Get("text").String() != "Working it out." {
		t.Errorf("thought part = %s", parts[0].Raw)
	}
	if parts[1].Get("text").String() != "Answer." {
		t.Errorf("text part = %s", parts[1].Raw)
	}
}
