package types

import "time"

// Block is one typed content unit inside a page document. Blocks live as a
// JSONB array on the page row (see Page.Blocks), not as their own table, so
// the JSON tags here are the persisted wire contract. Content is an open map
// shaped per the block's variant; the blocks package owns its rules.
type Block struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Order     int            `json:"order"`
	Content   map[string]any `json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}
