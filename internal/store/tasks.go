package store

import (
	"context"
	"errors"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/query"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type gormTaskStore struct {
	db *gorm.DB
}

func NewTaskStore(db *gorm.DB) TaskStore {
	return &gormTaskStore{db: db}
}

func (s *gormTaskStore) FindByID(ctx context.Context, id string) (*models.Task, error) {
	taskID, err := uuid.FromString(id)
	if err != nil {
		// An identity the store cannot address is reported as absent,
		// not as a bad request.
		return nil, apperrors.NewNotFound("invalid task ID format")
	}

	var task models.Task
	result := s.db.WithContext(ctx).First(&task, "id = ?", taskID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("task not found")
		}
		return nil, apperrors.NewPersistence("failed to load task", result.Error)
	}
	return &task, nil
}

func (s *gormTaskStore) Find(ctx context.Context, opts query.Options) ([]models.Task, error) {
	var tasks []models.Task
	result := applyOptions(s.db.WithContext(ctx).Model(&models.Task{}), opts).Find(&tasks)
	if result.Error != nil {
		return nil, apperrors.NewPersistence("failed to query tasks", result.Error)
	}
	return tasks, nil
}

func (s *gormTaskStore) Count(ctx context.Context, opts query.Options) (int64, error) {
	var count int64
	db := s.db.WithContext(ctx).Model(&models.Task{})
	if len(opts.Where) > 0 {
		db = db.Where(opts.Where)
	}
	if err := db.Count(&count).Error; err != nil {
		return 0, apperrors.NewPersistence("failed to count tasks", err)
	}
	return count, nil
}

func (s *gormTaskStore) Save(ctx context.Context, task *models.Task) error {
	if err := s.db.WithContext(ctx).Save(task).Error; err != nil {
		return apperrors.NewPersistence("failed to save task", err)
	}
	return nil
}

func (s *gormTaskStore) BulkUpdate(ctx context.Context, filter TaskFilter, fields map[string]interface{}) (int64, error) {
	db := s.db.WithContext(ctx).Model(&models.Task{})
	switch {
	case filter.IDs != nil:
		if len(filter.IDs) == 0 {
			return 0, nil
		}
		db = db.Where("id IN ?", filter.IDs)
	case filter.AssignedUser != nil:
		db = db.Where("assigned_user = ?", *filter.AssignedUser)
	default:
		return 0, apperrors.NewPersistence("bulk update requires a filter", nil)
	}

	result := db.Updates(fields)
	if result.Error != nil {
		return 0, apperrors.NewPersistence("failed to bulk update tasks", result.Error)
	}
	return result.RowsAffected, nil
}

func (s *gormTaskStore) Delete(ctx context.Context, id string) error {
	taskID, err := uuid.FromString(id)
	if err != nil {
		return apperrors.NewNotFound("invalid task ID format")
	}

	result := s.db.WithContext(ctx).Delete(&models.Task{}, "id = ?", taskID)
	if result.Error != nil {
		return apperrors.NewPersistence("failed to delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("task not found")
	}
	return nil
}
