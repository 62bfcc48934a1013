package blocks

import "github.com/coursekit/coursekit-backend/internal/types"

// Result is the outcome of validating one block.
type Result struct {
	IsValid bool         `json:"isValid"`
	Errors  []FieldError `json:"errors"`
}

// Validate checks a block's content against its variant's rules. Pure and
// deterministic: findings come back in the variant's documented field order.
// Unknown types are always valid so server-introduced block types keep
// rendering before this build learns their rules.
func Validate(b *types.Block) Result {
	if b == nil {
		return Result{IsValid: true, Errors: []FieldError{}}
	}
	v, known := Lookup(b.Type)
	if !known {
		return Result{IsValid: true, Errors: []FieldError{}}
	}

	content := b.Content
	if content == nil {
		content = map[string]any{}
	}

	errs := make([]FieldError, 0)
	for _, rule := range v.Rules {
		if fe := rule(content); fe != nil {
			errs = append(errs, *fe)
		}
	}
	return Result{IsValid: len(errs) == 0, Errors: errs}
}

// ValidateAll validates every block and returns results keyed by block id,
// containing only failures. Callers infer "all valid" from map emptiness.
func ValidateAll(list []*types.Block) map[string]Result {
	out := map[string]Result{}
	for _, b := range list {
		if b == nil {
			continue
		}
		if res := Validate(b); !res.IsValid {
			out[b.ID] = res
		}
	}
	return out
}
