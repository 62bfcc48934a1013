package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/logger"
	"github.com/coursekit/coursekit-backend/internal/types"
)

type PageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, pages []*types.Page) ([]*types.Page, error)
	GetByID(ctx context.Context, tx *gorm.DB, pageID uuid.UUID) (*types.Page, error)
	GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Page, error)
	Update(ctx context.Context, tx *gorm.DB, pageID uuid.UUID, updates map[string]interface{}) error
	UpdateBlocks(ctx context.Context, tx *gorm.DB, pageID uuid.UUID, blocks datatypes.JSON) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, pageIDs []uuid.UUID) error
}

type pageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPageRepo(db *gorm.DB, baseLog *logger.Logger) PageRepo {
	return &pageRepo{db: db, log: baseLog.With("repo", "PageRepo")}
}

func (r *pageRepo) Create(ctx context.Context, tx *gorm.DB, pages []*types.Page) ([]*types.Page, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(pages) == 0 {
		return []*types.Page{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&pages).Error; err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *pageRepo) GetByID(ctx context.Context, tx *gorm.DB, pageID uuid.UUID) (*types.Page, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Page
	if err := transaction.WithContext(ctx).
		Where("id = ?", pageID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (r *pageRepo) GetByModuleIDs(ctx context.Context, tx *gorm.DB, moduleIDs []uuid.UUID) ([]*types.Page, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Page
	if len(moduleIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("module_id IN ?", moduleIDs).
		Order("position ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *pageRepo) Update(ctx context.Context, tx *gorm.DB, pageID uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Page{}).
		Where("id = ?", pageID).
		Updates(updates).Error; err != nil {
		return err
	}
	return nil
}

// UpdateBlocks is last-write-wins on the whole collection column.
func (r *pageRepo) UpdateBlocks(ctx context.Context, tx *gorm.DB, pageID uuid.UUID, blocks datatypes.JSON) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Model(&types.Page{}).
		Where("id = ?", pageID).
		Updates(map[string]interface{}{
			"blocks":     blocks,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *pageRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, pageIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(pageIDs) == 0 {
		return nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", pageIDs).
		Delete(&types.Page{}).Error; err != nil {
		return err
	}
	return nil
}
