package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursekit/coursekit-backend/internal/apperr"
	"github.com/coursekit/coursekit-backend/internal/logger"
	"github.com/coursekit/coursekit-backend/internal/repos"
	"github.com/coursekit/coursekit-backend/internal/requestdata"
	"github.com/coursekit/coursekit-backend/internal/types"
)

// CourseTree is a course with its modules and their pages, the nested
// document shape the editor fetches in one request.
type CourseTree struct {
	Course  *types.Course   `json:"course"`
	Modules []*ModuleBranch `json:"modules"`
}

type ModuleBranch struct {
	Module *types.CourseModule `json:"module"`
	Pages  []*types.Page       `json:"pages"`
}

type CourseService interface {
	CreateCourse(ctx context.Context, title, description, level, subject string) (*types.Course, error)
	GetCourseTree(ctx context.Context, courseID uuid.UUID) (*CourseTree, error)
	ListCoursesForUser(ctx context.Context) ([]*types.Course, error)
	UpdateCourse(ctx context.Context, courseID uuid.UUID, updates map[string]interface{}) (*types.Course, error)
	DeleteCourse(ctx context.Context, courseID uuid.UUID) error
	AddModule(ctx context.Context, courseID uuid.UUID, title string) (*types.CourseModule, error)
}

type courseService struct {
	db         *gorm.DB
	log        *logger.Logger
	courseRepo repos.CourseRepo
	moduleRepo repos.CourseModuleRepo
	pageRepo   repos.PageRepo
}

func NewCourseService(db *gorm.DB, log *logger.Logger, courseRepo repos.CourseRepo, moduleRepo repos.CourseModuleRepo, pageRepo repos.PageRepo) CourseService {
	return &courseService{
		db:         db,
		log:        log.With("service", "CourseService"),
		courseRepo: courseRepo,
		moduleRepo: moduleRepo,
		pageRepo:   pageRepo,
	}
}

func currentUserID(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, apperr.ErrUnauthorized
	}
	return rd.UserID, nil
}

func (cs *courseService) CreateCourse(ctx context.Context, title, description, level, subject string) (*types.Course, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	if title == "" {
		return nil, apperr.Validation("missing_title", fmt.Errorf("title is required"))
	}
	course := &types.Course{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Level:       level,
		Subject:     subject,
	}
	if _, err := cs.courseRepo.Create(ctx, nil, []*types.Course{course}); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

func (cs *courseService) GetCourseTree(ctx context.Context, courseID uuid.UUID) (*CourseTree, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	course, err := cs.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course.UserID != userID {
		return nil, apperr.ErrNotFound
	}

	modules, err := cs.moduleRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	moduleIDs := make([]uuid.UUID, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}
	pages, err := cs.pageRepo.GetByModuleIDs(ctx, nil, moduleIDs)
	if err != nil {
		return nil, fmt.Errorf("load pages: %w", err)
	}

	pagesByModule := map[uuid.UUID][]*types.Page{}
	for _, p := range pages {
		pagesByModule[p.ModuleID] = append(pagesByModule[p.ModuleID], p)
	}
	tree := &CourseTree{Course: course, Modules: make([]*ModuleBranch, 0, len(modules))}
	for _, m := range modules {
		tree.Modules = append(tree.Modules, &ModuleBranch{Module: m, Pages: pagesByModule[m.ID]})
	}
	return tree, nil
}

func (cs *courseService) ListCoursesForUser(ctx context.Context) ([]*types.Course, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return cs.courseRepo.GetByUserIDs(ctx, nil, []uuid.UUID{userID})
}

func (cs *courseService) UpdateCourse(ctx context.Context, courseID uuid.UUID, updates map[string]interface{}) (*types.Course, error) {
	if _, err := cs.ownedCourse(ctx, courseID); err != nil {
		return nil, err
	}
	allowed := map[string]bool{"title": true, "description": true, "level": true, "subject": true, "metadata": true}
	filtered := map[string]interface{}{}
	for k, v := range updates {
		if allowed[k] {
			filtered[k] = v
		}
	}
	if err := cs.courseRepo.Update(ctx, nil, courseID, filtered); err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	return cs.courseRepo.GetByID(ctx, nil, courseID)
}

func (cs *courseService) DeleteCourse(ctx context.Context, courseID uuid.UUID) error {
	if _, err := cs.ownedCourse(ctx, courseID); err != nil {
		return err
	}
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.moduleRepo.SoftDeleteByCourseIDs(ctx, tx, []uuid.UUID{courseID}); err != nil {
			return fmt.Errorf("delete modules: %w", err)
		}
		return cs.courseRepo.SoftDeleteByIDs(ctx, tx, []uuid.UUID{courseID})
	})
}

func (cs *courseService) AddModule(ctx context.Context, courseID uuid.UUID, title string) (*types.CourseModule, error) {
	if _, err := cs.ownedCourse(ctx, courseID); err != nil {
		return nil, err
	}
	if title == "" {
		return nil, apperr.Validation("missing_title", fmt.Errorf("title is required"))
	}
	existing, err := cs.moduleRepo.GetByCourseIDs(ctx, nil, []uuid.UUID{courseID})
	if err != nil {
		return nil, fmt.Errorf("load modules: %w", err)
	}
	mod := &types.CourseModule{
		ID:       uuid.New(),
		CourseID: courseID,
		Title:    title,
		Position: len(existing),
	}
	if _, err := cs.moduleRepo.Create(ctx, nil, []*types.CourseModule{mod}); err != nil {
		return nil, fmt.Errorf("create module: %w", err)
	}
	return mod, nil
}

func (cs *courseService) ownedCourse(ctx context.Context, courseID uuid.UUID) (*types.Course, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	course, err := cs.courseRepo.GetByID(ctx, nil, courseID)
	if err != nil {
		return nil, err
	}
	if course.UserID != userID {
		return nil, apperr.ErrNotFound
	}
	return course, nil
}
