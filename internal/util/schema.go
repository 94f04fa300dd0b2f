package util

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// schemaTypeTokens is the set of JSON schema type names whose casing differs
// between dialects. Google-style schemas carry them uppercase (OBJECT,
// STRING), OpenAI-style schemas lowercase.
var schemaTypeTokens = map[string]bool{
	"object":  true,
	"array":   true,
	"string":  true,
	"number":  true,
	"integer": true,
	"boolean": true,
	"null":    true,
}

// NormalizeSchemaTypes folds every "type" token in a JSON schema to one
// casing, recursing through nested properties and items. Unknown tokens and
// non-string type values are left untouched. Malformed input is returned
// as-is.
func NormalizeSchemaTypes(schemaJSON string, upper bool) string {
	if !gjson.Valid(schemaJSON) {
		return schemaJSON
	}

	var paths []string
	Walk(gjson.Parse(schemaJSON), "", "type", &paths)
	for _, p := range paths {
		value := gjson.Get(schemaJSON, p)
		if value.Type != gjson.String {
			continue
		}
		token := value.String()
		if !schemaTypeTokens[strings.ToLower(token)] {
			continue
		}
		folded := strings.ToLower(token)
		if upper {
			folded = strings.ToUpper(token)
		}
		if folded == token {
			continue
		}
		if out, err := sjson.Set(schemaJSON, p, folded); err == nil {
			schemaJSON = out
		}
	}
	return schemaJSON
}

// EnsureObjectSchema returns the schema unchanged when it is a JSON object,
// otherwise an empty object schema in the requested casing. Tool declarations
// without parameters still need a syntactically complete schema downstream.
func EnsureObjectSchema(schemaJSON string, upper bool) string {
	if gjson.Valid(schemaJSON) && gjson.Parse(schemaJSON).IsObject() {
		return NormalizeSchemaTypes(schemaJSON, upper)
	}
	if upper {
		return `{"type":"OBJECT","properties":{}}`
	}
	return `{"type":"object","properties":{}}`
}
