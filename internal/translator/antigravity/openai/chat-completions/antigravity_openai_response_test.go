package chat_completions

import (
	"context"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestStreamToolCallForcesTerminalFinishReason(t *testing.T) {
	ctx := context.Background()
	var param any

	chunk1 := []byte(`{"response":{"candidates":[{"content":{"parts":[{"functionCall":{"name":"list_files","args":{"path":"."}}}]}}]}}`)
	result1 := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk1, &param)

	if len(result1) != 1 {
		t.Fatalf("chunk1 produced %d frames", len(result1))
	}
	// The functionCall chunk itself stays open.
	fr1 := gjson.Get(result1[0], "choices.0.finish_reason")
	if fr1.Exists() && fr1.Type != gjson.Null {
		t.Errorf("finish_reason on functionCall chunk = %v", fr1)
	}
	toolCall := gjson.Get(result1[0], "choices.0.delta.tool_calls.0")
	if toolCall.Get("function.name").String() != "list_files" {
		t.Errorf("tool call = %s", toolCall.Raw)
	}
	if !strings.Contains(toolCall.Get("function.arguments").String(), `"path"`) {
		t.Errorf("arguments = %q", toolCall.Get("function.arguments").String())
	}

	chunk2 := []byte(`{"response":{"candidates":[{"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":20,"totalTokenCount":30}}}`)
	result2 := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk2, &param)

	if len(result2) != 1 {
		t.Fatalf("chunk2 produced %d frames", len(result2))
	}
	if fr := gjson.Get(result2[0], "choices.0.finish_reason").String(); fr != "tool_calls" {
		t.Errorf("finish_reason = %q, want tool_calls", fr)
	}
	if nfr := gjson.Get(result2[0], "choices.0.native_finish_reason").String(); nfr != "stop" {
		t.Errorf("native_finish_reason = %q, want stop", nfr)
	}
}

func TestStreamStopForPlainText(t *testing.T) {
	ctx := context.Background()
	var param any

	chunk1 := []byte(`{"response":{"candidates":[{"content":{"parts":[{"text":"Hello world"}]}}]}}`)
	result1 := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk1, &param)
	if got := gjson.Get(result1[0], "choices.0.delta.content").String(); got != "Hello world" {
		t.Errorf("content = %q", got)
	}

	chunk2 := []byte(`{"response":{"candidates":[{"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":5,"totalTokenCount":15}}}`)
	result2 := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk2, &param)

	if fr := gjson.Get(result2[0], "choices.0.finish_reason").String(); fr != "stop" {
		t.Errorf("finish_reason = %q, want stop", fr)
	}
}

func TestStreamMaxTokensPassesThrough(t *testing.T) {
	ctx := context.Background()
	var param any

	chunk1 := []byte(`{"response":{"candidates":[{"content":{"parts":[{"text":"Hello"}]}}]}}`)
	ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk1, &param)

	chunk2 := []byte(`{"response":{"candidates":[{"finishReason":"MAX_TOKENS"}],"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":100,"totalTokenCount":110}}}`)
	result2 := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk2, &param)

	if fr := gjson.Get(result2[0], "choices.0.finish_reason").String(); fr != "max_tokens" {
		t.Errorf("finish_reason = %q, want max_tokens", fr)
	}
}

func TestStreamToolCallOutranksMaxTokens(t *testing.T) {
	ctx := context.Background()
	var param any

	chunk1 := []byte(`{"response":{"candidates":[{"content":{"parts":[{"functionCall":{"name":"test","args":{}}}]}}]}}`)
	ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk1, &param)

	chunk2 := []byte(`{"response":{"candidates":[{"finishReason":"MAX_TOKENS"}],"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":100,"totalTokenCount":110}}}`)
	result2 := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk2, &param)

	if fr := gjson.Get(result2[0], "choices.0.finish_reason").String(); fr != "tool_calls" {
		t.Errorf("finish_reason = %q, want tool_calls", fr)
	}
	if nfr := gjson.Get(result2[0], "choices.0.native_finish_reason").String(); nfr != "max_tokens" {
		t.Errorf("native_finish_reason = %q, want max_tokens", nfr)
	}
}

func TestStreamIntermediateChunksStayOpen(t *testing.T) {
	ctx := context.Background()
	var param any

	for _, chunk := range []string{
		`{"response":{"candidates":[{"content":{"parts":[{"text":"Hello"}]}}]}}`,
		`{"response":{"candidates":[{"content":{"parts":[{"text":" world"}]}}]}}`,
	} {
		results := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, []byte(chunk), &param)
		fr := gjson.Get(results[0], "choices.0.finish_reason")
		if fr.Exists() && fr.Type != gjson.Null {
			t.Errorf("finish_reason on intermediate chunk = %v", fr)
		}
	}
}

func TestStreamUsageAccounting(t *testing.T) {
	ctx := context.Background()
	var param any

	chunk := []byte(`{"response":{"candidates":[{"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":100,"candidatesTokenCount":40,"totalTokenCount":160,"thoughtsTokenCount":20,"cachedContentTokenCount":30}}}`)
	results := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk, &param)

	usage := gjson.Get(results[0], "usage")
	// prompt = 100 - 30 cached + 20 thoughts
	if got := usage.Get("prompt_tokens").Int(); got != 90 {
		t.Errorf("prompt_tokens = %d, want 90", got)
	}
	if got := usage.Get("completion_tokens").Int(); got != 40 {
		t.Errorf("completion_tokens = %d, want 40", got)
	}
	if got := usage.Get("completion_tokens_details.reasoning_tokens").Int(); got != 20 {
		t.Errorf("reasoning_tokens = %d, want 20", got)
	}
	if got := usage.Get("prompt_tokens_details.cached_tokens").Int(); got != 30 {
		t.Errorf("cached_tokens = %d, want 30", got)
	}
}

func TestStreamCpaUsageMetadataRestored(t *testing.T) {
	ctx := context.Background()
	var param any

	chunk := []byte(`data: {"response":{"candidates":[{"finishReason":"STOP"}],"cpaUsageMetadata":{"promptTokenCount":7,"candidatesTokenCount":3,"totalTokenCount":10}}}`)
	results := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk, &param)

	if len(results) != 1 {
		t.Fatalf("got %d frames", len(results))
	}
	if got := gjson.Get(results[0], "usage.total_tokens").Int(); got != 10 {
		t.Errorf("total_tokens = %d, want 10", got)
	}
}

func TestStreamIdentityAndThought(t *testing.T) {
	ctx := context.Background()
	var param any

	chunk := []byte(`{"response":{"responseId":"resp-9","modelVersion":"models/test-1","candidates":[{"content":{"parts":[{"text":"planning","thought":true}]}}]}}`)
	results := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk, &param)

	if got := gjson.Get(results[0], "id").String(); got != "resp-9" {
		t.Errorf("id = %q", got)
	}
	if got := gjson.Get(results[0], "model").String(); got != "models/test-1" {
		t.Errorf("model = %q", got)
	}
	if got := gjson.Get(results[0], "choices.0.delta.reasoning_content").String(); got != "planning" {
		t.Errorf("reasoning_content = %q", got)
	}
	content := gjson.Get(results[0], "choices.0.delta.content")
	if content.Type != gjson.Null {
		t.Errorf("content = %v, want null", content)
	}
}

func TestStreamToolCallIDPreserved(t *testing.T) {
	ctx := context.Background()
	var param any

	chunk := []byte(`{"response":{"candidates":[{"content":{"parts":[{"functionCall":{"id":"call_42","name":"f","args":{}}}]}}]}}`)
	results := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk, &param)

	if got := gjson.Get(results[0], "choices.0.delta.tool_calls.0.id").String(); got != "call_42" {
		t.Errorf("id = %q, want call_42", got)
	}
}

func TestStreamInlineDataBecomesImageDelta(t *testing.T) {
	ctx := context.Background()
	var param any

	chunk := []byte(`{"response":{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"aGVsbG8="}}]}}]}}`)
	results := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, chunk, &param)

	url := gjson.Get(results[0], "choices.0.delta.images.0.image_url.url").String()
	if url != "data:image/png;base64,aGVsbG8=" {
		t.Errorf("image url = %q", url)
	}
}

func TestStreamDoneMarkerProducesNothing(t *testing.T) {
	ctx := context.Background()
	var param any

	if results := ConvertAntigravityResponseToOpenAI(ctx, "model", nil, nil, []byte("[DONE]"), &param); len(results) != 0 {
		t.Errorf("[DONE] produced %d frames", len(results))
	}
}

func TestNonStreamConversion(t *testing.T) {
	ctx := context.Background()
	var param any

	payload := []byte(`{"response":{
		"responseId":"resp-1",
		"modelVersion":"models/test-1",
		"candidates":[{"content":{"parts":[
			{"text":"thinking","thought":true},
			{"text":"Sunny."},
			{"functionCall":{"id":"call_3","name":"get_weather","args":{"city":"Paris"}}}
		]},"finishReason":"STOP"}],
		"usageMetadata":{"promptTokenCount":10,"candidatesTokenCount":20,"totalTokenCount":30}
	}}`)

	out := ConvertAntigravityResponseToOpenAINonStream(ctx, "model", nil, nil, payload, &param)

	message := gjson.Get(out, "choices.0.message")
	if message.Get("content").String() != "Sunny." {
		t.Errorf("content = %q", message.Get("content").String())
	}
	if message.Get("reasoning_content").String() != "thinking" {
		t.Errorf("reasoning_content = %q", message.Get("reasoning_content").String())
	}
	if message.Get("tool_calls.0.id").String() != "call_3" {
		t.Errorf("tool call = %s", message.Get("tool_calls.0").Raw)
	}
	// Tool call present, so finish_reason reports tool_calls.
	if got := gjson.Get(out, "choices.0.finish_reason").String(); got != "tool_calls" {
		t.Errorf("finish_reason = %q", got)
	}
	if got := gjson.Get(out, "choices.0.native_finish_reason").String(); got != "stop" {
		t.Errorf("native_finish_reason = %q", got)
	}
	if got := gjson.Get(out, "usage.total_tokens").Int(); got != 30 {
		t.Errorf("total_tokens = %d", got)
	}
}
