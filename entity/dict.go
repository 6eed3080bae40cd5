package entity

import (
	"fmt"
	"sort"

	"github.com/syssam/sqlplan"
)

// TypeKey is the dict field carrying the entity variant name.
const TypeKey = "__type__"

// dictString reads a required string field from a serialised dict.
func dictString(kind Kind, data map[string]any, key string) (string, error) {
	v, ok := data[key]
	if !ok {
		return "", constructionErr(kind, dictName(data), fmt.Sprintf("missing %q field", key))
	}
	s, ok := v.(string)
	if !ok {
		return "", constructionErr(kind, dictName(data), fmt.Sprintf("field %q is not a string", key))
	}
	return s, nil
}

// dictOptString reads a nullable string field. Absent and null both map to "".
func dictOptString(kind Kind, data map[string]any, key string) (string, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", constructionErr(kind, dictName(data), fmt.Sprintf("field %q is not a string", key))
	}
	return s, nil
}

// dictStrings reads a list-of-strings field. Absent maps to nil.
func dictStrings(kind Kind, data map[string]any, key string) ([]string, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, constructionErr(kind, dictName(data), fmt.Sprintf("field %q is not a list", key))
	}
	out := make([]string, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, constructionErr(kind, dictName(data), fmt.Sprintf("field %q holds a non-string element", key))
		}
		out[i] = s
	}
	return out, nil
}

// dictMap reads a nested dict field. Absent maps to nil.
func dictMap(kind Kind, data map[string]any, key string) (map[string]any, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, constructionErr(kind, dictName(data), fmt.Sprintf("field %q is not a map", key))
	}
	return m, nil
}

// dictList reads a list field. Absent maps to nil.
func dictList(kind Kind, data map[string]any, key string) ([]any, error) {
	v, ok := data[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, constructionErr(kind, dictName(data), fmt.Sprintf("field %q is not a list", key))
	}
	return items, nil
}

// dictName extracts a best-effort entity name for error messages.
func dictName(data map[string]any) string {
	if s, ok := data["name"].(string); ok {
		return s
	}
	if s, ok := data["ref"].(string); ok {
		return s
	}
	return "?"
}

// sortedKeys returns the keys of a serialised map in sorted order, keeping
// dict-driven reconstruction deterministic.
func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// constructionErr builds a ConstructionError for the given variant.
func constructionErr(kind Kind, name, reason string) error {
	return sqlplan.NewConstructionError(string(kind), name, reason)
}
