package services

import (
	"context"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/engine"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/query"
)

type CachedUserService struct {
	inner UserService
	cache *cache.RedisCache
}

func NewCachedUserService(inner UserService, cacheInstance *cache.RedisCache) *CachedUserService {
	return &CachedUserService{inner: inner, cache: cacheInstance}
}

func (s *CachedUserService) CreateUser(ctx context.Context, in engine.UserInput) (*models.User, error) {
	user, err := s.inner.CreateUser(ctx, in)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.UserKey(user.ID.String()), user, documentTTL)
	return user, nil
}

func (s *CachedUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var cached models.User
	if err := s.cache.Get(cache.UserKey(id), &cached); err == nil {
		return &cached, nil
	}

	user, err := s.inner.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.UserKey(id), user, documentTTL)
	return user, nil
}

func (s *CachedUserService) GetUsers(ctx context.Context, opts query.Options) ([]models.User, error) {
	return s.inner.GetUsers(ctx, opts)
}

func (s *CachedUserService) CountUsers(ctx context.Context, opts query.Options) (int64, error) {
	return s.inner.CountUsers(ctx, opts)
}

func (s *CachedUserService) UpdateUser(ctx context.Context, id string, in engine.UserUpdate) (*models.User, []engine.LinkCorrection, error) {
	user, corrections, err := s.inner.UpdateUser(ctx, id, in)
	if err != nil {
		return nil, nil, err
	}

	s.cache.Delete(cache.UserKey(id))
	s.invalidateCorrected(corrections)
	return user, corrections, nil
}

func (s *CachedUserService) DeleteUser(ctx context.Context, id string) ([]engine.LinkCorrection, error) {
	corrections, err := s.inner.DeleteUser(ctx, id)
	if err != nil {
		return corrections, err
	}

	s.cache.Delete(cache.UserKey(id))
	s.invalidateCorrected(corrections)
	return corrections, nil
}

func (s *CachedUserService) invalidateCorrected(corrections []engine.LinkCorrection) {
	for _, c := range corrections {
		switch c.Collection {
		case engine.CollectionUsers:
			s.cache.Delete(cache.UserKey(c.ID))
		case engine.CollectionTasks:
			s.cache.DeletePattern("task:*")
		}
	}
}
