package editor

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"

	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/blocks"
	"github.com/coursekit/coursekit-backend/internal/types"
)

type Status string

const (
	StatusIdle   Status = "idle"
	StatusSaving Status = "saving"
	StatusSaved  Status = "saved"
	StatusError  Status = "error"
)

// SaveState is the transient per-session save indicator. Terminal means
// retries are exhausted (or the failure is not retryable) and nothing more
// happens until a new edit or an explicit Retry.
type SaveState struct {
	Status      Status     `json:"status"`
	LastSavedAt *time.Time `json:"lastSavedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
	MaxRetries  int        `json:"maxRetries"`
	Terminal    bool       `json:"terminal"`
	LastError   string     `json:"lastError,omitempty"`
}

// Persister is the page-storage boundary the controller saves through.
type Persister interface {
	SavePageBlocks(ctx context.Context, pageID uuid.UUID, list []*types.Block) error
}

type Options struct {
	// DebounceInterval is the quiet period after the last edit before a save
	// fires. Zero means the 2s default.
	DebounceInterval time.Duration
	// MaxRetries bounds automatic retries of transient failures. Zero means 3.
	MaxRetries int
	// Backoff returns the delay before retry attempt n (1-based). Nil means
	// exponential 1s, 2s, 4s... capped at 10s.
	Backoff func(attempt int) time.Duration
}

func defaultBackoff(attempt int) time.Duration {
	d := time.Second << (attempt - 1)
	if d > 10*time.Second {
		d = 10 * time.Second
	}
	return d
}

// Controller coordinates edits to one page's block collection and debounces
// persistence behind them.
//
// States: idle -> saving -> {saved, error}; saved -> idle on the next edit;
// error -> saving on retry; error goes terminal once retries are exhausted.
// At most one save is in flight; edits arriving mid-flight collapse into
// exactly one follow-up save carrying the latest aggregate state.
type Controller struct {
	mu         sync.Mutex
	pageID     uuid.UUID
	col        *blocks.Collection
	persist    Persister
	opts       Options
	debounced  func(func())
	state      SaveState
	dirty      bool
	inflight   bool
	pending    bool
	retryTimer *time.Timer
	closed     bool
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewController(ctx context.Context, pageID uuid.UUID, col *blocks.Collection, persist Persister, opts Options) *Controller {
	if opts.DebounceInterval <= 0 {
		opts.DebounceInterval = 2 * time.Second
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 3
	}
	if opts.Backoff == nil {
		opts.Backoff = defaultBackoff
	}
	cctx, cancel := context.WithCancel(ctx)
	return &Controller{
		pageID:    pageID,
		col:       col,
		persist:   persist,
		opts:      opts,
		debounced: debounce.New(opts.DebounceInterval),
		state:     SaveState{Status: StatusIdle, MaxRetries: opts.MaxRetries},
		ctx:       cctx,
		cancel:    cancel,
	}
}

// Apply runs a mutation against the collection and schedules a debounced
// save. The mutation is synchronous; persistence lags by up to one debounce
// interval plus one in-flight save. A failed mutation schedules nothing.
func (c *Controller) Apply(mutate func(*blocks.Collection) error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return context.Canceled
	}
	if err := mutate(c.col); err != nil {
		c.mu.Unlock()
		return err
	}
	c.dirty = true
	// A fresh edit restarts the save cycle, whatever went wrong before.
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	if c.state.Status == StatusSaved || c.state.Status == StatusError {
		c.state.Status = StatusIdle
		c.state.RetryCount = 0
		c.state.Terminal = false
		c.state.LastError = ""
	}
	c.mu.Unlock()

	c.debounced(c.flush)
	return nil
}

// Flush saves immediately, bypassing the debounce quiet period.
func (c *Controller) Flush() { c.flush() }

// Retry re-attempts a save after a terminal error.
func (c *Controller) Retry() {
	c.mu.Lock()
	if c.closed || !c.dirty {
		c.mu.Unlock()
		return
	}
	c.state.RetryCount = 0
	c.state.Terminal = false
	c.mu.Unlock()
	c.flush()
}

// HasUnsavedChanges reports whether in-memory state is ahead of storage. The
// navigation-guard collaborator subscribes to this.
func (c *Controller) HasUnsavedChanges() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty || c.inflight || c.pending
}

func (c *Controller) State() SaveState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Blocks returns a deep-copied snapshot of the current collection.
func (c *Controller) Blocks() []*types.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.col.Snapshot()
}

// Close cancels timers and the in-flight context. Pending edits are dropped;
// the caller is expected to have consulted HasUnsavedChanges first.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) flush() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.inflight {
		// Collapse into one follow-up save once the current one resolves.
		c.pending = true
		c.mu.Unlock()
		return
	}
	if !c.dirty {
		c.mu.Unlock()
		return
	}
	c.dirty = false
	c.inflight = true
	c.state.Status = StatusSaving
	snapshot := c.col.Snapshot()
	c.mu.Unlock()

	err := c.persist.SavePageBlocks(c.ctx, c.pageID, snapshot)

	c.mu.Lock()
	c.inflight = false
	if c.closed {
		c.mu.Unlock()
		return
	}
	if err == nil {
		now := time.Now().UTC()
		c.state.Status = StatusSaved
		c.state.LastSavedAt = &now
		c.state.RetryCount = 0
		c.state.Terminal = false
		c.state.LastError = ""
		if c.pending {
			c.pending = false
			c.mu.Unlock()
			go c.flush()
			return
		}
		c.mu.Unlock()
		return
	}

	// The snapshot never reached storage; the session still has unsaved work.
	c.dirty = true
	c.state.Status = StatusError
	c.state.LastError = err.Error()
	c.pending = false

	if apperr.IsTransient(err) {
		c.state.RetryCount++
		if c.state.RetryCount < c.opts.MaxRetries {
			delay := c.opts.Backoff(c.state.RetryCount)
			c.retryTimer = time.AfterFunc(delay, c.flush)
			c.mu.Unlock()
			return
		}
		c.state.Terminal = true
		c.mu.Unlock()
		return
	}

	// Validation and auth failures are never retried automatically.
	c.state.Terminal = true
	c.mu.Unlock()
}
