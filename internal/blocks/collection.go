package blocks

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/types"
)

// Collection is the ordered block list of one page. Invariants held across
// every mutation: ids are unique, Order values are contiguous from 0 and
// match slice position. Mutations are synchronous and atomic; the collection
// is owned by a single editing session and is not safe for concurrent use.
type Collection struct {
	blocks []*types.Block
}

// NewCollection wraps existing blocks, sorting by Order and renumbering so
// the invariants hold regardless of what was loaded.
func NewCollection(list []*types.Block) *Collection {
	c := &Collection{blocks: make([]*types.Block, 0, len(list))}
	for _, b := range list {
		if b == nil {
			continue
		}
		c.blocks = append(c.blocks, b)
	}
	// Stable insertion sort on Order; collections are small.
	for i := 1; i < len(c.blocks); i++ {
		for j := i; j > 0 && c.blocks[j-1].Order > c.blocks[j].Order; j-- {
			c.blocks[j-1], c.blocks[j] = c.blocks[j], c.blocks[j-1]
		}
	}
	c.renumber()
	return c
}

func (c *Collection) Len() int { return len(c.blocks) }

// Blocks returns the blocks in order. The slice is a copy; elements are the
// live blocks.
func (c *Collection) Blocks() []*types.Block {
	out := make([]*types.Block, len(c.blocks))
	copy(out, c.blocks)
	return out
}

// Snapshot deep-copies the collection for handoff across the persistence
// boundary, so in-flight saves never observe later edits.
func (c *Collection) Snapshot() []*types.Block {
	out := make([]*types.Block, len(c.blocks))
	for i, b := range c.blocks {
		cp := *b
		cp.Content = deepCopyMap(b.Content)
		out[i] = &cp
	}
	return out
}

func (c *Collection) Get(id string) (*types.Block, bool) {
	for _, b := range c.blocks {
		if b.ID == id {
			return b, true
		}
	}
	return nil, false
}

// Add creates a block of the given type with default content and inserts it
// at atIndex. atIndex < 0 or atIndex >= Len appends. Returns the new block.
func (c *Collection) Add(blockType string, atIndex int) *types.Block {
	now := time.Now().UTC()
	b := &types.Block{
		ID:        uuid.NewString(),
		Type:      blockType,
		Content:   DefaultContent(blockType),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if atIndex < 0 || atIndex > len(c.blocks) {
		atIndex = len(c.blocks)
	}
	c.blocks = append(c.blocks, nil)
	copy(c.blocks[atIndex+1:], c.blocks[atIndex:])
	c.blocks[atIndex] = b
	c.renumber()
	return b
}

// Remove deletes the block and renumbers the remainder contiguously from 0.
func (c *Collection) Remove(id string) error {
	idx := c.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("block %s: %w", id, apperr.ErrNotFound)
	}
	c.blocks = append(c.blocks[:idx], c.blocks[idx+1:]...)
	c.renumber()
	return nil
}

// Move relocates the block to toIndex. Stable: the relative order of every
// other block is preserved, matching drag-and-drop expectations.
func (c *Collection) Move(id string, toIndex int) error {
	idx := c.indexOf(id)
	if idx < 0 {
		return fmt.Errorf("block %s: %w", id, apperr.ErrNotFound)
	}
	if toIndex < 0 || toIndex >= len(c.blocks) {
		return fmt.Errorf("index %d: %w", toIndex, apperr.ErrOutOfRange)
	}
	b := c.blocks[idx]
	c.blocks = append(c.blocks[:idx], c.blocks[idx+1:]...)
	c.blocks = append(c.blocks, nil)
	copy(c.blocks[toIndex+1:], c.blocks[toIndex:])
	c.blocks[toIndex] = b
	c.renumber()
	return nil
}

// Duplicate deep-copies the block under a fresh id and inserts the copy
// immediately after the source.
func (c *Collection) Duplicate(id string) (*types.Block, error) {
	idx := c.indexOf(id)
	if idx < 0 {
		return nil, fmt.Errorf("block %s: %w", id, apperr.ErrNotFound)
	}
	src := c.blocks[idx]
	now := time.Now().UTC()
	dup := &types.Block{
		ID:        uuid.NewString(),
		Type:      src.Type,
		Content:   deepCopyMap(src.Content),
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.blocks = append(c.blocks, nil)
	copy(c.blocks[idx+2:], c.blocks[idx+1:])
	c.blocks[idx+1] = dup
	c.renumber()
	return dup, nil
}

// PatchContent shallow-merges partial into the block's content: new keys are
// added, existing keys overwritten, untouched sibling keys preserved. Bumps
// UpdatedAt and returns the block for the caller to re-validate.
func (c *Collection) PatchContent(id string, partial map[string]any) (*types.Block, error) {
	b, ok := c.Get(id)
	if !ok {
		return nil, fmt.Errorf("block %s: %w", id, apperr.ErrNotFound)
	}
	if b.Content == nil {
		b.Content = map[string]any{}
	}
	for k, v := range partial {
		b.Content[k] = v
	}
	b.UpdatedAt = time.Now().UTC()
	return b, nil
}

func (c *Collection) indexOf(id string) int {
	for i, b := range c.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (c *Collection) renumber() {
	for i, b := range c.blocks {
		b.Order = i
	}
}

func deepCopyMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
