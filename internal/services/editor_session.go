package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/blocks"
	"github.com/coursekit/coursekit-backend/internal/editor"
	"github.com/coursekit/coursekit-backend/internal/logger"
	"github.com/coursekit/coursekit-backend/internal/types"
)

// SessionStatus is what the editor UI polls: the autosave indicator plus the
// unsaved-changes signal the navigation guard consumes and current
// validation findings (failures only).
type SessionStatus struct {
	SaveState         editor.SaveState         `json:"saveState"`
	HasUnsavedChanges bool                     `json:"hasUnsavedChanges"`
	Validation        map[string]blocks.Result `json:"validation"`
}

// EditorService hosts one editing session per open page. Sessions wrap the
// page's block collection in an autosave controller; edits apply in-memory
// synchronously and persist last-write-wins behind the debounce.
type EditorService interface {
	Open(ctx context.Context, pageID uuid.UUID) ([]*types.Block, error)
	AddBlock(ctx context.Context, pageID uuid.UUID, blockType string, atIndex int) (*types.Block, error)
	RemoveBlock(ctx context.Context, pageID uuid.UUID, blockID string) error
	MoveBlock(ctx context.Context, pageID uuid.UUID, blockID string, toIndex int) error
	DuplicateBlock(ctx context.Context, pageID uuid.UUID, blockID string) (*types.Block, error)
	PatchBlock(ctx context.Context, pageID uuid.UUID, blockID string, patch map[string]any) (*types.Block, blocks.Result, error)
	Status(ctx context.Context, pageID uuid.UUID) (*SessionStatus, error)
	Retry(ctx context.Context, pageID uuid.UUID) error
	Flush(ctx context.Context, pageID uuid.UUID) error
	Close(ctx context.Context, pageID uuid.UUID) error
}

type editorService struct {
	mu       sync.Mutex
	log      *logger.Logger
	pages    PageService
	sessions map[uuid.UUID]*editor.Controller
	opts     editor.Options
}

func NewEditorService(log *logger.Logger, pages PageService, debounceInterval time.Duration, maxRetries int) EditorService {
	return &editorService{
		log:      log.With("service", "EditorService"),
		pages:    pages,
		sessions: map[uuid.UUID]*editor.Controller{},
		opts: editor.Options{
			DebounceInterval: debounceInterval,
			MaxRetries:       maxRetries,
		},
	}
}

func (es *editorService) Open(ctx context.Context, pageID uuid.UUID) ([]*types.Block, error) {
	es.mu.Lock()
	if ctrl, ok := es.sessions[pageID]; ok {
		es.mu.Unlock()
		return ctrl.Blocks(), nil
	}
	es.mu.Unlock()

	_, list, err := es.pages.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	col := blocks.NewCollection(list)
	// Saves outlive the opening request, so the controller gets its own
	// lifetime, not the request context.
	ctrl := editor.NewController(context.Background(), pageID, col, es.pages, es.opts)

	es.mu.Lock()
	if existing, ok := es.sessions[pageID]; ok {
		es.mu.Unlock()
		ctrl.Close()
		return existing.Blocks(), nil
	}
	es.sessions[pageID] = ctrl
	es.mu.Unlock()

	es.log.Info("editor session opened", "page_id", pageID)
	return ctrl.Blocks(), nil
}

func (es *editorService) session(pageID uuid.UUID) (*editor.Controller, error) {
	es.mu.Lock()
	defer es.mu.Unlock()
	ctrl, ok := es.sessions[pageID]
	if !ok {
		return nil, fmt.Errorf("editor session for page %s: %w", pageID, apperr.ErrNotFound)
	}
	return ctrl, nil
}

func (es *editorService) AddBlock(ctx context.Context, pageID uuid.UUID, blockType string, atIndex int) (*types.Block, error) {
	ctrl, err := es.session(pageID)
	if err != nil {
		return nil, err
	}
	var added *types.Block
	err = ctrl.Apply(func(c *blocks.Collection) error {
		added = c.Add(blockType, atIndex)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

func (es *editorService) RemoveBlock(ctx context.Context, pageID uuid.UUID, blockID string) error {
	ctrl, err := es.session(pageID)
	if err != nil {
		return err
	}
	return ctrl.Apply(func(c *blocks.Collection) error {
		return c.Remove(blockID)
	})
}

func (es *editorService) MoveBlock(ctx context.Context, pageID uuid.UUID, blockID string, toIndex int) error {
	ctrl, err := es.session(pageID)
	if err != nil {
		return err
	}
	return ctrl.Apply(func(c *blocks.Collection) error {
		return c.Move(blockID, toIndex)
	})
}

func (es *editorService) DuplicateBlock(ctx context.Context, pageID uuid.UUID, blockID string) (*types.Block, error) {
	ctrl, err := es.session(pageID)
	if err != nil {
		return nil, err
	}
	var dup *types.Block
	err = ctrl.Apply(func(c *blocks.Collection) error {
		var dErr error
		dup, dErr = c.Duplicate(blockID)
		return dErr
	})
	if err != nil {
		return nil, err
	}
	return dup, nil
}

func (es *editorService) PatchBlock(ctx context.Context, pageID uuid.UUID, blockID string, patch map[string]any) (*types.Block, blocks.Result, error) {
	ctrl, err := es.session(pageID)
	if err != nil {
		return nil, blocks.Result{}, err
	}
	var patched *types.Block
	err = ctrl.Apply(func(c *blocks.Collection) error {
		var pErr error
		patched, pErr = c.PatchContent(blockID, patch)
		return pErr
	})
	if err != nil {
		return nil, blocks.Result{}, err
	}
	return patched, blocks.Validate(patched), nil
}

func (es *editorService) Status(ctx context.Context, pageID uuid.UUID) (*SessionStatus, error) {
	ctrl, err := es.session(pageID)
	if err != nil {
		return nil, err
	}
	return &SessionStatus{
		SaveState:         ctrl.State(),
		HasUnsavedChanges: ctrl.HasUnsavedChanges(),
		Validation:        blocks.ValidateAll(ctrl.Blocks()),
	}, nil
}

func (es *editorService) Retry(ctx context.Context, pageID uuid.UUID) error {
	ctrl, err := es.session(pageID)
	if err != nil {
		return err
	}
	ctrl.Retry()
	return nil
}

func (es *editorService) Flush(ctx context.Context, pageID uuid.UUID) error {
	ctrl, err := es.session(pageID)
	if err != nil {
		return err
	}
	ctrl.Flush()
	return nil
}

func (es *editorService) Close(ctx context.Context, pageID uuid.UUID) error {
	es.mu.Lock()
	ctrl, ok := es.sessions[pageID]
	if ok {
		delete(es.sessions, pageID)
	}
	es.mu.Unlock()
	if !ok {
		return fmt.Errorf("editor session for page %s: %w", pageID, apperr.ErrNotFound)
	}
	// Flush any unsaved work before tearing the session down.
	if ctrl.HasUnsavedChanges() {
		ctrl.Flush()
	}
	ctrl.Close()
	es.log.Info("editor session closed", "page_id", pageID)
	return nil
}
