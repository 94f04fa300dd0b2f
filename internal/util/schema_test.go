package util

import (
	"testing"

	"github.com/tidwall/gjson"
)

func TestNormalizeSchemaTypesLowercases(t *testing.T) {
	schema := `{"type":"OBJECT","properties":{"name":{"type":"STRING"},"tags":{"type":"ARRAY","items":{"type":"STRING"}},"nested":{"type":"OBJECT","properties":{"n":{"type":"INTEGER"}}}}}`
	out := NormalizeSchemaTypes(schema, false)

	checks := map[string]string{
		"type":                               "object",
		"properties.name.type":               "string",
		"properties.tags.type":               "array",
		"properties.tags.items.type":         "string",
		"properties.nested.properties.n.type": "integer",
	}
	for path, want := range checks {
		if got := gjson.Get(out, path).String(); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
}

func TestNormalizeSchemaTypesUppercases(t *testing.T) {
	schema := `{"type":"object","properties":{"flag":{"type":"boolean"}}}`
	out := NormalizeSchemaTypes(schema, true)
	if got := gjson.Get(out, "type").String(); got != "OBJECT" {
		t.Errorf("type = %q, want OBJECT", got)
	}
	if got := gjson.Get(out, "properties.flag.type").String(); got != "BOOLEAN" {
		t.Errorf("flag type = %q, want BOOLEAN", got)
	}
}

func TestNormalizeSchemaTypesLeavesUnknownTokens(t *testing.T) {
	schema := `{"type":"OBJECT","properties":{"when":{"type":"TIMESTAMP"}}}`
	out := NormalizeSchemaTypes(schema, false)
	if got := gjson.Get(out, "properties.when.type").String(); got != "TIMESTAMP" {
		t.Errorf("unknown token rewritten: %q", got)
	}
	if got := gjson.Get(out, "type").String(); got != "object" {
		t.Errorf("known token not folded: %q", got)
	}
}

func TestNormalizeSchemaTypesSkipsPropertyNamedType(t *testing.T) {
	// A property literally named "type" holds an object, not a schema token.
	schema := `{"type":"OBJECT","properties":{"type":{"type":"STRING","description":"entity type"}}}`
	out := NormalizeSchemaTypes(schema, false)
	if got := gjson.Get(out, "properties.type.type").String(); got != "string" {
		t.Errorf("inner type token = %q, want string", got)
	}
	if got := gjson.Get(out, "properties.type.description").String(); got != "entity type" {
		t.Errorf("description clobbered: %q", got)
	}
}

func TestNormalizeSchemaTypesMalformedInput(t *testing.T) {
	in := `{"type":"OBJECT"` // truncated
	if out := NormalizeSchemaTypes(in, false); out != in {
		t.Errorf("malformed input mutated: %q", out)
	}
}

func TestEnsureObjectSchema(t *testing.T) {
	if got := EnsureObjectSchema("", false); got != `{"type":"object","properties":{}}` {
		t.Errorf("empty lowercase fallback = %s", got)
	}
	if got := EnsureObjectSchema(`"not-a-schema"`, true); got != `{"type":"OBJECT","properties":{}}` {
		t.Errorf("non-object uppercase fallback = %s", got)
	}
	got := EnsureObjectSchema(`{"type":"STRING"}`, false)
	if gjson.Get(got, "type").String() != "string" {
		t.Errorf("existing schema not normalized: %s", got)
	}
}
