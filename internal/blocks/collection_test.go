package blocks

import (
	"reflect"
	"testing"

	"github.com/coursekit/coursekit-backend/internal/types"
)

func seedCollection(t *testing.T, n int) *Collection {
	t.Helper()
	c := NewCollection(nil)
	for i := 0; i < n; i++ {
		c.Add("text", -1)
	}
	return c
}

func orders(c *Collection) []int {
	out := make([]int, 0, c.Len())
	for _, b := range c.Blocks() {
		out = append(out, b.Order)
	}
	return out
}

func TestNewCollection_SortsAndRenumbers(t *testing.T) {
	list := []*types.Block{
		{ID: "c", Order: 7},
		{ID: "a", Order: 2},
		nil,
		{ID: "b", Order: 5},
	}
	c := NewCollection(list)
	if c.Len() != 3 {
		t.Fatalf("nil entries should be dropped, got %d", c.Len())
	}
	got := c.Blocks()
	wantIDs := []string{"a", "b", "c"}
	for i, id := range wantIDs {
		if got[i].ID != id || got[i].Order != i {
			t.Fatalf("position %d: want id=%s order=%d, got id=%s order=%d", i, id, i, got[i].ID, got[i].Order)
		}
	}
}

func TestAdd_AtIndexAndAppend(t *testing.T) {
	c := seedCollection(t, 2)
	first := c.Blocks()[0]

	mid := c.Add("divider", 1)
	if c.Len() != 3 {
		t.Fatalf("expected 3 blocks, got %d", c.Len())
	}
	if c.Blocks()[1].ID != mid.ID {
		t.Fatalf("block not inserted at index 1")
	}
	if c.Blocks()[0].ID != first.ID {
		t.Fatalf("insertion disturbed preceding block")
	}

	tail := c.Add("text", -1)
	if c.Blocks()[3].ID != tail.ID {
		t.Fatalf("negative index should append")
	}
	over := c.Add("text", 99)
	if c.Blocks()[4].ID != over.ID {
		t.Fatalf("out-of-range index should append")
	}
	if !reflect.DeepEqual(orders(c), []int{0, 1, 2, 3, 4}) {
		t.Fatalf("orders not contiguous: %v", orders(c))
	}
}

func TestAdd_UsesVariantDefaults(t *testing.T) {
	c := NewCollection(nil)
	b := c.Add("poll", -1)
	if b.ID == "" {
		t.Fatalf("added block needs an id")
	}
	if _, ok := b.Content["question"]; !ok {
		t.Fatalf("poll defaults missing question: %v", b.Content)
	}
}

func TestRemove_Renumbers(t *testing.T) {
	c := seedCollection(t, 5)
	victim := c.Blocks()[2]
	if err := c.Remove(victim.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if c.Len() != 4 {
		t.Fatalf("expected 4 blocks, got %d", c.Len())
	}
	if !reflect.DeepEqual(orders(c), []int{0, 1, 2, 3}) {
		t.Fatalf("orders not contiguous after remove: %v", orders(c))
	}
	if err := c.Remove("nope"); err == nil {
		t.Fatalf("removing a missing block should fail")
	}
}

func TestMove_StableRelocation(t *testing.T) {
	c := seedCollection(t, 4)
	ids := func() []string {
		out := []string{}
		for _, b := range c.Blocks() {
			out = append(out, b.ID)
		}
		return out
	}
	before := ids()

	if err := c.Move(before[3], 0); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	want := []string{before[3], before[0], before[1], before[2]}
	if !reflect.DeepEqual(ids(), want) {
		t.Fatalf("want %v, got %v", want, ids())
	}
	if !reflect.DeepEqual(orders(c), []int{0, 1, 2, 3}) {
		t.Fatalf("orders not contiguous after move: %v", orders(c))
	}

	if err := c.Move(before[0], 99); err == nil {
		t.Fatalf("out-of-range move should fail")
	}
	if err := c.Move("nope", 0); err == nil {
		t.Fatalf("moving a missing block should fail")
	}
}

func TestDuplicate_DeepCopyAfterSource(t *testing.T) {
	c := NewCollection(nil)
	src := c.Add("list", -1)
	src.Content["items"] = []any{map[string]any{"text": "one"}}

	dup, err := c.Duplicate(src.ID)
	if err != nil {
		t.Fatalf("duplicate failed: %v", err)
	}
	if dup.ID == src.ID {
		t.Fatalf("duplicate must get a fresh id")
	}
	if c.Blocks()[1].ID != dup.ID {
		t.Fatalf("duplicate should sit immediately after its source")
	}
	if !reflect.DeepEqual(dup.Content, src.Content) {
		t.Fatalf("duplicate content should equal source content")
	}

	// Mutating the copy must not touch the source.
	dup.Content["items"].([]any)[0].(map[string]any)["text"] = "changed"
	if src.Content["items"].([]any)[0].(map[string]any)["text"] != "one" {
		t.Fatalf("duplicate shares nested content with source")
	}

	dup2, err := c.Duplicate(src.ID)
	if err != nil {
		t.Fatalf("second duplicate failed: %v", err)
	}
	if dup2.ID == dup.ID {
		t.Fatalf("duplicates must have distinct ids")
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 blocks, got %d", c.Len())
	}
}

func TestPatchContent_ShallowMerge(t *testing.T) {
	c := NewCollection(nil)
	b := c.Add("text", -1)
	if _, err := c.PatchContent(b.ID, map[string]any{"a": 1}); err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	patched, err := c.PatchContent(b.ID, map[string]any{"b": 2})
	if err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if patched.Content["a"] != 1 || patched.Content["b"] != 2 {
		t.Fatalf("shallow merge lost keys: %v", patched.Content)
	}
	if _, ok := patched.Content["text"]; !ok {
		t.Fatalf("untouched sibling key dropped: %v", patched.Content)
	}
	if patched.UpdatedAt.IsZero() {
		t.Fatalf("patch should bump UpdatedAt")
	}
	if _, err := c.PatchContent("nope", map[string]any{}); err == nil {
		t.Fatalf("patching a missing block should fail")
	}
}

func TestSnapshot_IsolatedFromLaterEdits(t *testing.T) {
	c := NewCollection(nil)
	b := c.Add("text", -1)
	b.Content["text"] = "original"

	snap := c.Snapshot()
	if _, err := c.PatchContent(b.ID, map[string]any{"text": "edited"}); err != nil {
		t.Fatalf("patch failed: %v", err)
	}
	if snap[0].Content["text"] != "original" {
		t.Fatalf("snapshot observed a later edit: %v", snap[0].Content)
	}
}
