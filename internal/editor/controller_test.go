package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/blocks"
	"github.com/coursekit/coursekit-backend/internal/types"
)

// fakePersister scripts save outcomes: it pops one error per call and
// succeeds once the script runs out.
type fakePersister struct {
	mu    sync.Mutex
	calls int
	errs  []error
	saved [][]*types.Block
}

func (f *fakePersister) SavePageBlocks(_ context.Context, _ uuid.UUID, list []*types.Block) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.saved = append(f.saved, list)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func (f *fakePersister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakePersister) lastSaved() []*types.Block {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.saved) == 0 {
		return nil
	}
	return f.saved[len(f.saved)-1]
}

func transientErr() error {
	return apperr.Transient("page_save", fmt.Errorf("storage hiccup"))
}

func fastOpts(maxRetries int) Options {
	return Options{
		DebounceInterval: 20 * time.Millisecond,
		MaxRetries:       maxRetries,
		Backoff:          func(int) time.Duration { return 10 * time.Millisecond },
	}
}

func newTestController(t *testing.T, persist Persister, opts Options) (*Controller, *types.Block) {
	t.Helper()
	col := blocks.NewCollection(nil)
	b := col.Add("text", -1)
	ctrl := NewController(context.Background(), uuid.New(), col, persist, opts)
	t.Cleanup(ctrl.Close)
	return ctrl, b
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestController_DebounceCollapsesBurst(t *testing.T) {
	fake := &fakePersister{}
	ctrl, b := newTestController(t, fake, fastOpts(3))

	for _, patch := range []map[string]any{
		{"text": "d"},
		{"text": "dr"},
		{"text": "draft", "extra": true},
	} {
		p := patch
		if err := ctrl.Apply(func(c *blocks.Collection) error {
			_, err := c.PatchContent(b.ID, p)
			return err
		}); err != nil {
			t.Fatalf("apply failed: %v", err)
		}
	}
	if !ctrl.HasUnsavedChanges() {
		t.Fatalf("edits should register as unsaved before the debounce fires")
	}

	waitFor(t, "debounced save", func() bool { return ctrl.State().Status == StatusSaved })
	if got := fake.callCount(); got != 1 {
		t.Fatalf("burst of edits should persist once, got %d calls", got)
	}
	saved := fake.lastSaved()
	if saved[0].Content["text"] != "draft" || saved[0].Content["extra"] != true {
		t.Fatalf("save missed the aggregate state: %v", saved[0].Content)
	}
	if ctrl.HasUnsavedChanges() {
		t.Fatalf("nothing should be unsaved after the save lands")
	}
	st := ctrl.State()
	if st.LastSavedAt == nil || st.RetryCount != 0 {
		t.Fatalf("unexpected state after save: %+v", st)
	}
}

func TestController_TransientFailuresRetryThenSucceed(t *testing.T) {
	fake := &fakePersister{errs: []error{transientErr(), transientErr()}}
	ctrl, b := newTestController(t, fake, fastOpts(3))

	if err := ctrl.Apply(func(c *blocks.Collection) error {
		_, err := c.PatchContent(b.ID, map[string]any{"text": "keep me"})
		return err
	}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	waitFor(t, "save after two retries", func() bool { return ctrl.State().Status == StatusSaved })
	if got := fake.callCount(); got != 3 {
		t.Fatalf("expected 3 attempts (2 failures + success), got %d", got)
	}
	st := ctrl.State()
	if st.RetryCount != 0 || st.Terminal || st.LastError != "" {
		t.Fatalf("state not reset after recovery: %+v", st)
	}
	if ctrl.HasUnsavedChanges() {
		t.Fatalf("recovered session should have nothing unsaved")
	}
}

func TestController_ExhaustedRetriesGoTerminal(t *testing.T) {
	fake := &fakePersister{errs: []error{
		transientErr(), transientErr(), transientErr(),
	}}
	ctrl, b := newTestController(t, fake, fastOpts(2))

	if err := ctrl.Apply(func(c *blocks.Collection) error {
		_, err := c.PatchContent(b.ID, map[string]any{"text": "doomed"})
		return err
	}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	waitFor(t, "terminal error", func() bool {
		st := ctrl.State()
		return st.Status == StatusError && st.Terminal
	})
	if got := fake.callCount(); got != 2 {
		t.Fatalf("expected exactly MaxRetries attempts, got %d", got)
	}

	// Terminal means no further automatic attempts.
	time.Sleep(100 * time.Millisecond)
	if got := fake.callCount(); got != 2 {
		t.Fatalf("terminal state kept retrying: %d calls", got)
	}
	if !ctrl.HasUnsavedChanges() {
		t.Fatalf("failed saves should leave unsaved work")
	}

	// Explicit retry restarts the cycle; one more scripted failure, then the
	// 4th attempt lands.
	ctrl.Retry()
	waitFor(t, "save after explicit retry", func() bool { return ctrl.State().Status == StatusSaved })
	if got := fake.callCount(); got != 4 {
		t.Fatalf("expected 4 total attempts after retry, got %d", got)
	}
}

func TestController_NonTransientErrorNeverRetries(t *testing.T) {
	fake := &fakePersister{errs: []error{apperr.Validation("bad_payload", fmt.Errorf("rejected"))}}
	ctrl, b := newTestController(t, fake, fastOpts(3))

	if err := ctrl.Apply(func(c *blocks.Collection) error {
		_, err := c.PatchContent(b.ID, map[string]any{"text": "x"})
		return err
	}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	waitFor(t, "terminal error", func() bool { return ctrl.State().Terminal })
	time.Sleep(50 * time.Millisecond)
	if got := fake.callCount(); got != 1 {
		t.Fatalf("non-transient failure must not retry, got %d calls", got)
	}
	if st := ctrl.State(); st.Status != StatusError || st.RetryCount != 0 {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestController_EditDuringErrorResetsState(t *testing.T) {
	fake := &fakePersister{errs: []error{transientErr(), transientErr()}}
	ctrl, b := newTestController(t, fake, fastOpts(2))

	if err := ctrl.Apply(func(c *blocks.Collection) error {
		_, err := c.PatchContent(b.ID, map[string]any{"text": "v1"})
		return err
	}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	waitFor(t, "terminal error", func() bool { return ctrl.State().Terminal })

	// A fresh edit clears the error and restarts the save cycle.
	if err := ctrl.Apply(func(c *blocks.Collection) error {
		_, err := c.PatchContent(b.ID, map[string]any{"text": "v2"})
		return err
	}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	waitFor(t, "save after new edit", func() bool { return ctrl.State().Status == StatusSaved })
	if saved := fake.lastSaved(); saved[0].Content["text"] != "v2" {
		t.Fatalf("latest edit not persisted: %v", saved[0].Content)
	}
}

func TestController_FlushBypassesDebounce(t *testing.T) {
	fake := &fakePersister{}
	opts := fastOpts(3)
	opts.DebounceInterval = 10 * time.Second
	ctrl, b := newTestController(t, fake, opts)

	if err := ctrl.Apply(func(c *blocks.Collection) error {
		_, err := c.PatchContent(b.ID, map[string]any{"text": "now"})
		return err
	}); err != nil {
		t.Fatalf("apply failed: %v", err)
	}
	ctrl.Flush()
	waitFor(t, "flushed save", func() bool { return ctrl.State().Status == StatusSaved })
	if got := fake.callCount(); got != 1 {
		t.Fatalf("expected 1 save from flush, got %d", got)
	}
}

func TestController_ApplyAfterClose(t *testing.T) {
	fake := &fakePersister{}
	ctrl, b := newTestController(t, fake, fastOpts(3))
	ctrl.Close()
	err := ctrl.Apply(func(c *blocks.Collection) error {
		_, err := c.PatchContent(b.ID, map[string]any{"text": "late"})
		return err
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("apply after close should fail with context.Canceled, got %v", err)
	}
}
