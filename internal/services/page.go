package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/blocks"
	"github.com/coursekit/coursekit-backend/internal/logger"
	"github.com/coursekit/coursekit-backend/internal/repos"
	"github.com/coursekit/coursekit-backend/internal/types"
)

// PageService owns the persistence contract for page documents: reads return
// the canonical stored collection, writes normalize (sort, renumber, fill
// missing ids) and report validation findings. Invalid blocks are persisted;
// validation is advisory at save time and blocks only publishing, which is
// handled elsewhere.
type PageService interface {
	CreatePage(ctx context.Context, moduleID uuid.UUID, title string) (*types.Page, error)
	GetPage(ctx context.Context, pageID uuid.UUID) (*types.Page, []*types.Block, error)
	ListPagesForModule(ctx context.Context, moduleID uuid.UUID) ([]*types.Page, error)
	ReplaceBlocks(ctx context.Context, pageID uuid.UUID, list []*types.Block) ([]*types.Block, map[string]blocks.Result, error)
	ValidatePage(ctx context.Context, pageID uuid.UUID) (map[string]blocks.Result, error)
	RenderPage(ctx context.Context, pageID uuid.UUID) ([]blocks.RendererDescriptor, error)

	// SavePageBlocks implements editor.Persister: storage failures surface as
	// transient errors so the autosave controller can retry them.
	SavePageBlocks(ctx context.Context, pageID uuid.UUID, list []*types.Block) error
}

type pageService struct {
	db       *gorm.DB
	log      *logger.Logger
	pageRepo repos.PageRepo
}

func NewPageService(db *gorm.DB, log *logger.Logger, pageRepo repos.PageRepo) PageService {
	return &pageService{
		db:       db,
		log:      log.With("service", "PageService"),
		pageRepo: pageRepo,
	}
}

func (ps *pageService) CreatePage(ctx context.Context, moduleID uuid.UUID, title string) (*types.Page, error) {
	if title == "" {
		return nil, apperr.Validation("missing_title", fmt.Errorf("title is required"))
	}
	existing, err := ps.pageRepo.GetByModuleIDs(ctx, nil, []uuid.UUID{moduleID})
	if err != nil {
		return nil, fmt.Errorf("load sibling pages: %w", err)
	}
	raw, err := encodeBlocks(nil)
	if err != nil {
		return nil, err
	}
	page := &types.Page{
		ID:       uuid.New(),
		ModuleID: moduleID,
		Title:    title,
		Position: len(existing),
		Blocks:   raw,
	}
	if _, err := ps.pageRepo.Create(ctx, nil, []*types.Page{page}); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return page, nil
}

func (ps *pageService) GetPage(ctx context.Context, pageID uuid.UUID) (*types.Page, []*types.Block, error) {
	page, err := ps.pageRepo.GetByID(ctx, nil, pageID)
	if err != nil {
		return nil, nil, err
	}
	list, err := decodeBlocks(page.Blocks)
	if err != nil {
		return nil, nil, fmt.Errorf("decode page blocks: %w", err)
	}
	return page, list, nil
}

func (ps *pageService) ListPagesForModule(ctx context.Context, moduleID uuid.UUID) ([]*types.Page, error) {
	return ps.pageRepo.GetByModuleIDs(ctx, nil, []uuid.UUID{moduleID})
}

func (ps *pageService) ReplaceBlocks(ctx context.Context, pageID uuid.UUID, list []*types.Block) ([]*types.Block, map[string]blocks.Result, error) {
	for _, b := range list {
		if b != nil && b.ID == "" {
			b.ID = uuid.NewString()
		}
	}
	col := blocks.NewCollection(list)
	canonical := col.Snapshot()
	findings := blocks.ValidateAll(canonical)

	if err := ps.SavePageBlocks(ctx, pageID, canonical); err != nil {
		return nil, nil, err
	}
	return canonical, findings, nil
}

func (ps *pageService) ValidatePage(ctx context.Context, pageID uuid.UUID) (map[string]blocks.Result, error) {
	_, list, err := ps.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return blocks.ValidateAll(list), nil
}

func (ps *pageService) RenderPage(ctx context.Context, pageID uuid.UUID) ([]blocks.RendererDescriptor, error) {
	_, list, err := ps.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return blocks.RenderPlan(list), nil
}

func (ps *pageService) SavePageBlocks(ctx context.Context, pageID uuid.UUID, list []*types.Block) error {
	raw, err := encodeBlocks(list)
	if err != nil {
		return fmt.Errorf("encode page blocks: %w", err)
	}
	if err := ps.pageRepo.UpdateBlocks(ctx, nil, pageID, raw); err != nil {
		if apperr.IsNotFound(err) {
			return err
		}
		return apperr.Transient("page_save", fmt.Errorf("save page %s: %w", pageID, err))
	}
	return nil
}

func decodeBlocks(raw datatypes.JSON) ([]*types.Block, error) {
	if len(raw) == 0 {
		return []*types.Block{}, nil
	}
	var list []*types.Block
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func encodeBlocks(list []*types.Block) (datatypes.JSON, error) {
	if list == nil {
		list = []*types.Block{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}
