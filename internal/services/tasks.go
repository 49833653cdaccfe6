package services

import (
	"context"

	"task-tracker/backend/internal/engine"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/query"
	"task-tracker/backend/internal/store"
)

// TaskService is the mutation-intent surface the HTTP layer talks to.
// Mutations also report the secondary documents the engine corrected,
// so decorators (caching) know exactly what changed.
type TaskService interface {
	CreateTask(ctx context.Context, in engine.TaskInput) (*models.Task, []engine.LinkCorrection, error)
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	GetTasks(ctx context.Context, opts query.Options) ([]models.Task, error)
	CountTasks(ctx context.Context, opts query.Options) (int64, error)
	UpdateTask(ctx context.Context, id string, in engine.TaskUpdate) (*models.Task, []engine.LinkCorrection, error)
	DeleteTask(ctx context.Context, id string) ([]engine.LinkCorrection, error)
}

type taskService struct {
	engine *engine.Engine
	tasks  store.TaskStore
}

func NewTaskService(eng *engine.Engine, tasks store.TaskStore) TaskService {
	return &taskService{engine: eng, tasks: tasks}
}

func (s *taskService) CreateTask(ctx context.Context, in engine.TaskInput) (*models.Task, []engine.LinkCorrection, error) {
	return s.engine.CreateTask(ctx, in)
}

func (s *taskService) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

func (s *taskService) GetTasks(ctx context.Context, opts query.Options) ([]models.Task, error) {
	return s.tasks.Find(ctx, opts)
}

func (s *taskService) CountTasks(ctx context.Context, opts query.Options) (int64, error) {
	return s.tasks.Count(ctx, opts)
}

func (s *taskService) UpdateTask(ctx context.Context, id string, in engine.TaskUpdate) (*models.Task, []engine.LinkCorrection, error) {
	return s.engine.UpdateTask(ctx, id, in)
}

func (s *taskService) DeleteTask(ctx context.Context, id string) ([]engine.LinkCorrection, error) {
	return s.engine.DeleteTask(ctx, id)
}
