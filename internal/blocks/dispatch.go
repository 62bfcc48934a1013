package blocks

import "github.com/coursekit/coursekit-backend/internal/types"

// Dispatch maps a block's declared type onto the editor/renderer component
// that handles it. Unknown types never fail: the editor falls back to a raw
// key/value form and the renderer to a placeholder, so documents created by
// a newer server keep opening here.

const (
	FallbackEditor   = "RawContentEditor"
	FallbackRenderer = "UnsupportedBlockViewer"
)

type EditorDescriptor struct {
	Component string         `json:"component"`
	BlockID   string         `json:"blockId"`
	BlockType string         `json:"blockType"`
	Content   map[string]any `json:"content"`
}

type RendererDescriptor struct {
	Component string         `json:"component"`
	BlockID   string         `json:"blockId"`
	BlockType string         `json:"blockType"`
	Content   map[string]any `json:"content"`
}

// EditorFor selects the editing component for a block.
func EditorFor(b *types.Block) EditorDescriptor {
	d := EditorDescriptor{
		Component: FallbackEditor,
		BlockID:   b.ID,
		BlockType: b.Type,
		Content:   b.Content,
	}
	if v, ok := Lookup(b.Type); ok {
		d.Component = v.Editor
	}
	return d
}

// RendererFor selects the read-only component for a block. Content fields the
// variant marks as rich text are returned sanitized; the block itself is not
// mutated.
func RendererFor(b *types.Block) RendererDescriptor {
	d := RendererDescriptor{
		Component: FallbackRenderer,
		BlockID:   b.ID,
		BlockType: b.Type,
		Content:   b.Content,
	}
	v, ok := Lookup(b.Type)
	if !ok {
		return d
	}
	d.Component = v.Renderer
	if len(v.SanitizeFields) > 0 {
		content := deepCopyMap(b.Content)
		if content == nil {
			content = map[string]any{}
		}
		for _, f := range v.SanitizeFields {
			if s, ok := content[f].(string); ok {
				content[f] = SanitizeMarkup(s)
			}
		}
		d.Content = content
	}
	return d
}

// RenderPlan builds renderer descriptors for a whole collection in order.
func RenderPlan(list []*types.Block) []RendererDescriptor {
	out := make([]RendererDescriptor, 0, len(list))
	for _, b := range list {
		if b == nil {
			continue
		}
		out = append(out, RendererFor(b))
	}
	return out
}
