package services

import (
	"context"

	"task-tracker/backend/internal/engine"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/query"
	"task-tracker/backend/internal/store"
)

type UserService interface {
	CreateUser(ctx context.Context, in engine.UserInput) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsers(ctx context.Context, opts query.Options) ([]models.User, error)
	CountUsers(ctx context.Context, opts query.Options) (int64, error)
	UpdateUser(ctx context.Context, id string, in engine.UserUpdate) (*models.User, []engine.LinkCorrection, error)
	DeleteUser(ctx context.Context, id string) ([]engine.LinkCorrection, error)
}

type userService struct {
	engine *engine.Engine
	users  store.UserStore
}

func NewUserService(eng *engine.Engine, users store.UserStore) UserService {
	return &userService{engine: eng, users: users}
}

func (s *userService) CreateUser(ctx context.Context, in engine.UserInput) (*models.User, error) {
	return s.engine.CreateUser(ctx, in)
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.users.FindByID(ctx, id)
}

func (s *userService) GetUsers(ctx context.Context, opts query.Options) ([]models.User, error) {
	return s.users.Find(ctx, opts)
}

func (s *userService) CountUsers(ctx context.Context, opts query.Options) (int64, error) {
	return s.users.Count(ctx, opts)
}

func (s *userService) UpdateUser(ctx context.Context, id string, in engine.UserUpdate) (*models.User, []engine.LinkCorrection, error) {
	return s.engine.UpdateUser(ctx, id, in)
}

func (s *userService) DeleteUser(ctx context.Context, id string) ([]engine.LinkCorrection, error) {
	return s.engine.DeleteUser(ctx, id)
}
