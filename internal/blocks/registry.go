package blocks

import "sort"

// FieldError is one validation finding against a single content field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RuleFunc checks one documented content rule. Returns nil when satisfied.
type RuleFunc func(content map[string]any) *FieldError

// Variant declares everything the rest of the system needs to know about one
// block type: its content rules (in documented check order), the content new
// blocks start from, and which editor/renderer component handles it. Adding
// a block type is registering a Variant; validator, collection and dispatch
// code stay untouched.
type Variant struct {
	Type     string
	Rules    []RuleFunc
	Defaults func() map[string]any
	Editor   string
	Renderer string

	// SanitizeFields lists content fields holding rich-text markup that must
	// be stripped of executable markup before rendering.
	SanitizeFields []string
}

var registry = map[string]Variant{}

// Register adds a variant to the registry. Call from init only; the registry
// is read-only after package initialization.
func Register(v Variant) {
	if v.Type == "" {
		panic("blocks: variant with empty type")
	}
	if _, dup := registry[v.Type]; dup {
		panic("blocks: duplicate variant " + v.Type)
	}
	registry[v.Type] = v
}

func Lookup(blockType string) (Variant, bool) {
	v, ok := registry[blockType]
	return v, ok
}

// Types returns all registered variant tags, sorted for stable iteration.
func Types() []string {
	out := make([]string, 0, len(registry))
	for t := range registry {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// DefaultContent builds the empty variant-shaped content a freshly created
// block starts with. Unknown types get an empty object.
func DefaultContent(blockType string) map[string]any {
	v, ok := registry[blockType]
	if !ok || v.Defaults == nil {
		return map[string]any{}
	}
	return v.Defaults()
}
