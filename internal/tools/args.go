package tools

import (
	"encoding/json"
	"fmt"
)

// Argument and payload helpers. Tool arguments arrive as map[string]any
// decoded from JSON, so numbers are float64 and lists are []any.

func stringArg(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

func optionalStringArg(args map[string]any, key string) *string {
	if value, ok := args[key].(string); ok {
		return &value
	}
	return nil
}

func optionalFloatArg(args map[string]any, key string) *float64 {
	if value, ok := args[key].(float64); ok {
		return &value
	}
	return nil
}

func optionalBoolArg(args map[string]any, key string) *bool {
	if value, ok := args[key].(bool); ok {
		return &value
	}
	return nil
}

func intArg(args map[string]any, key string, fallback int) int {
	if value, ok := args[key].(float64); ok {
		return int(value)
	}
	return fallback
}

func stringSliceArg(args map[string]any, key string) ([]string, bool) {
	raw, ok := args[key].([]any)
	if !ok {
		return nil, false
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		value, ok := item.(string)
		if !ok {
			return nil, false
		}
		values = append(values, value)
	}
	return values, true
}

// subMap walks nested map[string]any payloads, returning nil when any hop
// is missing or the wrong shape.
func subMap(m map[string]any, keys ...string) map[string]any {
	current := m
	for _, key := range keys {
		next, ok := current[key].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

func listField(m map[string]any, key string) []any {
	list, _ := m[key].([]any)
	return list
}

func marshalJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(data), nil
}

// jsonError renders an argument-validation problem as a JSON payload, the
// shape clients expect for recoverable input mistakes.
func jsonError(message string) string {
	out, _ := json.MarshalIndent(map[string]string{"error": message}, "", "  ")
	return string(out)
}
