package blocks

import (
	"strings"
	"testing"

	"github.com/coursekit/coursekit-backend/internal/types"
)

func TestEditorFor_KnownAndFallback(t *testing.T) {
	d := EditorFor(mkBlock("text", map[string]any{"text": "hi"}))
	if d.Component != "TextBlockEditor" {
		t.Fatalf("expected TextBlockEditor, got %s", d.Component)
	}

	d = EditorFor(mkBlock("hologram", nil))
	if d.Component != FallbackEditor {
		t.Fatalf("unknown type should fall back to %s, got %s", FallbackEditor, d.Component)
	}
	if d.BlockType != "hologram" {
		t.Fatalf("descriptor should carry the declared type, got %s", d.BlockType)
	}
}

func TestRendererFor_FallbackKeepsContent(t *testing.T) {
	content := map[string]any{"weird": true}
	d := RendererFor(mkBlock("hologram", content))
	if d.Component != FallbackRenderer {
		t.Fatalf("unknown type should fall back to %s, got %s", FallbackRenderer, d.Component)
	}
	if d.Content["weird"] != true {
		t.Fatalf("fallback should pass content through, got %v", d.Content)
	}
}

func TestRendererFor_SanitizesRichText(t *testing.T) {
	b := mkBlock("text", map[string]any{"text": `<b>hi</b><script>alert(1)</script>`})
	d := RendererFor(b)
	if d.Component != "TextBlockViewer" {
		t.Fatalf("expected TextBlockViewer, got %s", d.Component)
	}
	got, _ := d.Content["text"].(string)
	if strings.Contains(got, "<script") {
		t.Fatalf("script not stripped: %q", got)
	}
	if !strings.Contains(got, "<b>hi</b>") {
		t.Fatalf("benign markup lost: %q", got)
	}
	// The stored block must stay untouched.
	if !strings.Contains(b.Content["text"].(string), "<script>") {
		t.Fatalf("renderer mutated the stored block: %q", b.Content["text"])
	}
}

func TestRenderPlan_OrderAndNilSkip(t *testing.T) {
	list := []*types.Block{
		mkBlock("text", map[string]any{"text": "a"}),
		nil,
		mkBlock("divider", nil),
	}
	plan := RenderPlan(list)
	if len(plan) != 2 {
		t.Fatalf("expected 2 descriptors, got %d", len(plan))
	}
	if plan[0].BlockType != "text" || plan[1].BlockType != "divider" {
		t.Fatalf("plan out of order: %+v", plan)
	}
}
