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

type gormUserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) UserStore {
	return &gormUserStore{db: db}
}

func (s *gormUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	userID, err := uuid.FromString(id)
	if err != nil {
		return nil, apperrors.NewNotFound("invalid user ID format")
	}

	var user models.User
	result := s.db.WithContext(ctx).First(&user, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user not found")
		}
		return nil, apperrors.NewPersistence("failed to load user", result.Error)
	}
	return &user, nil
}

func (s *gormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	result := s.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user not found")
		}
		return nil, apperrors.NewPersistence("failed to load user", result.Error)
	}
	return &user, nil
}

func (s *gormUserStore) Find(ctx context.Context, opts query.Options) ([]models.User, error) {
	var users []models.User
	result := applyOptions(s.db.WithContext(ctx).Model(&models.User{}), opts).Find(&users)
	if result.Error != nil {
		return nil, apperrors.NewPersistence("failed to query users", result.Error)
	}
	return users, nil
}

func (s *gormUserStore) Count(ctx context.Context, opts query.Options) (int64, error) {
	var count int64
	db := s.db.WithContext(ctx).Model(&models.User{})
	if len(opts.Where) > 0 {
		db = db.Where(opts.Where)
	}
	if err := db.Count(&count).Error; err != nil {
		return 0, apperrors.NewPersistence("failed to count users", err)
	}
	return count, nil
}

func (s *gormUserStore) Save(ctx context.Context, user *models.User) error {
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewConflict("a user with this email already exists")
		}
		return apperrors.NewPersistence("failed to save user", err)
	}
	return nil
}

func (s *gormUserStore) Delete(ctx context.Context, id string) error {
	userID, err := uuid.FromString(id)
	if err != nil {
		return apperrors.NewNotFound("invalid user ID format")
	}

	result := s.db.WithContext(ctx).Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return apperrors.NewPersistence("failed to delete user", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NewNotFound("user not found")
	}
	return nil
}
