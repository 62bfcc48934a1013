package blocks

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Rule helpers shared by the variant table in variants.go. Each returns a
// RuleFunc producing at most one FieldError, so a variant's Rules slice maps
// one-to-one onto the documented field check order.

func stringFromAny(v any) string {
	s, _ := v.(string)
	return s
}

func floatFromAny(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func listFromAny(v any) ([]any, bool) {
	arr, ok := v.([]any)
	return arr, ok
}

func requireString(field string) RuleFunc {
	return func(content map[string]any) *FieldError {
		if strings.TrimSpace(stringFromAny(content[field])) == "" {
			return &FieldError{Field: field, Message: field + " is required"}
		}
		return nil
	}
}

func requireStringIn(field string, allowed ...string) RuleFunc {
	return func(content map[string]any) *FieldError {
		s := strings.TrimSpace(stringFromAny(content[field]))
		if s == "" {
			return &FieldError{Field: field, Message: field + " is required"}
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return &FieldError{Field: field, Message: fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", "))}
	}
}

func requireMinItems(field string, min int) RuleFunc {
	return func(content map[string]any) *FieldError {
		arr, ok := listFromAny(content[field])
		if !ok || len(arr) < min {
			if min <= 1 {
				return &FieldError{Field: field, Message: field + " is required"}
			}
			return &FieldError{Field: field, Message: fmt.Sprintf("%s must have at least %d entries", field, min)}
		}
		return nil
	}
}

// requireItemsText checks every entry of a list-item array carries non-empty
// text. Entries are objects shaped {text: string}.
func requireItemsText(field string) RuleFunc {
	return func(content map[string]any) *FieldError {
		arr, ok := listFromAny(content[field])
		if !ok || len(arr) == 0 {
			return &FieldError{Field: field, Message: field + " is required"}
		}
		for i, it := range arr {
			m, ok := it.(map[string]any)
			if !ok || strings.TrimSpace(stringFromAny(m["text"])) == "" {
				return &FieldError{Field: field, Message: fmt.Sprintf("%s[%d] text is required", field, i)}
			}
		}
		return nil
	}
}

func requireObject(field string) RuleFunc {
	return func(content map[string]any) *FieldError {
		m, ok := content[field].(map[string]any)
		if !ok || m == nil {
			return &FieldError{Field: field, Message: field + " is required"}
		}
		return nil
	}
}

// optionalNumberMin validates a numeric field only when present.
func optionalNumberMin(field string, min float64) RuleFunc {
	return func(content map[string]any) *FieldError {
		v, ok := content[field]
		if !ok || v == nil {
			return nil
		}
		n, ok := floatFromAny(v)
		if !ok || n < min {
			return &FieldError{Field: field, Message: fmt.Sprintf("%s must be a number >= %v", field, min)}
		}
		return nil
	}
}

// numberInRange validates a numeric field nested in the config object, only
// when present. aiGenerator carries maxTokens and temperature this way.
func configNumberInRange(field string, min, max float64) RuleFunc {
	return func(content map[string]any) *FieldError {
		cfg, ok := content["config"].(map[string]any)
		if !ok || cfg == nil {
			return nil
		}
		v, ok := cfg[field]
		if !ok || v == nil {
			return nil
		}
		n, ok := floatFromAny(v)
		if !ok || n < min || n > max {
			return &FieldError{Field: "config." + field, Message: fmt.Sprintf("%s must be between %v and %v", field, min, max)}
		}
		return nil
	}
}
