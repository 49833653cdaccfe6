package services

import (
	"context"
	"time"

	"task-tracker/backend/internal/cache"
	"task-tracker/backend/internal/engine"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/query"
)

const documentTTL = 30 * time.Minute

// CachedTaskService is a read-through decorator over TaskService. The
// engine's correction list tells it which reverse-side documents were
// rewritten, so their cache entries are dropped along with the primary.
type CachedTaskService struct {
	inner TaskService
	cache *cache.RedisCache
}

func NewCachedTaskService(inner TaskService, cacheInstance *cache.RedisCache) *CachedTaskService {
	return &CachedTaskService{inner: inner, cache: cacheInstance}
}

func (s *CachedTaskService) CreateTask(ctx context.Context, in engine.TaskInput) (*models.Task, []engine.LinkCorrection, error) {
	task, corrections, err := s.inner.CreateTask(ctx, in)
	if err != nil {
		return nil, nil, err
	}

	s.cache.Set(cache.TaskKey(task.ID.String()), task, documentTTL)
	s.invalidateCorrected(corrections)
	return task, corrections, nil
}

func (s *CachedTaskService) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	var cached models.Task
	if err := s.cache.Get(cache.TaskKey(id), &cached); err == nil {
		return &cached, nil
	}

	task, err := s.inner.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.TaskKey(id), task, documentTTL)
	return task, nil
}

// Listings are not cached: the where/select/sort option space is
// unbounded, so entries would rarely be reused before invalidation.
func (s *CachedTaskService) GetTasks(ctx context.Context, opts query.Options) ([]models.Task, error) {
	return s.inner.GetTasks(ctx, opts)
}

func (s *CachedTaskService) CountTasks(ctx context.Context, opts query.Options) (int64, error) {
	return s.inner.CountTasks(ctx, opts)
}

func (s *CachedTaskService) UpdateTask(ctx context.Context, id string, in engine.TaskUpdate) (*models.Task, []engine.LinkCorrection, error) {
	task, corrections, err := s.inner.UpdateTask(ctx, id, in)
	if err != nil {
		return nil, nil, err
	}

	s.cache.Delete(cache.TaskKey(id))
	s.invalidateCorrected(corrections)
	return task, corrections, nil
}

func (s *CachedTaskService) DeleteTask(ctx context.Context, id string) ([]engine.LinkCorrection, error) {
	corrections, err := s.inner.DeleteTask(ctx, id)
	if err != nil {
		return corrections, err
	}

	s.cache.Delete(cache.TaskKey(id))
	s.invalidateCorrected(corrections)
	return corrections, nil
}

func (s *CachedTaskService) invalidateCorrected(corrections []engine.LinkCorrection) {
	for _, c := range corrections {
		switch c.Collection {
		case engine.CollectionUsers:
			s.cache.Delete(cache.UserKey(c.ID))
		case engine.CollectionTasks:
			// Bulk task corrections do not enumerate ids.
			s.cache.DeletePattern("task:*")
		}
	}
}
