package engine

import (
	"context"
	"strings"
	"time"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/models"

	"github.com/gofrs/uuid"
)

// TaskInput is the payload for creating a task. Optional fields keep
// their documented defaults when nil.
type TaskInput struct {
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Deadline         *models.Timestamp `json:"deadline"`
	Completed        *bool             `json:"completed"`
	AssignedUser     *string           `json:"assignedUser"`
	AssignedUserName *string           `json:"assignedUserName"`
}

// TaskUpdate is a partial field set; only non-nil fields are applied
// over the existing document.
type TaskUpdate struct {
	Name             *string           `json:"name"`
	Description      *string           `json:"description"`
	Deadline         *models.Timestamp `json:"deadline"`
	Completed        *bool             `json:"completed"`
	AssignedUser     *string           `json:"assignedUser"`
	AssignedUserName *string           `json:"assignedUserName"`
}

// CreateTask persists a new task and, when it arrives assigned and not
// completed, appends it to the owner's pendingTasks. A dangling
// assignedUser is accepted as-is; the correction simply finds no owner.
func (e *Engine) CreateTask(ctx context.Context, in TaskInput) (*models.Task, []LinkCorrection, error) {
	if strings.TrimSpace(in.Name) == "" || in.Deadline == nil || in.Deadline.IsZero() {
		return nil, nil, apperrors.NewValidation("name and deadline are required fields")
	}

	task := &models.Task{
		ID:               uuid.Must(uuid.NewV4()),
		Name:             in.Name,
		Description:      in.Description,
		Deadline:         *in.Deadline,
		AssignedUserName: models.UnassignedName,
		DateCreated:      time.Now().UTC(),
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}
	if in.AssignedUser != nil {
		task.AssignedUser = *in.AssignedUser
	}
	if in.AssignedUserName != nil {
		task.AssignedUserName = *in.AssignedUserName
	}

	if err := e.tasks.Save(ctx, task); err != nil {
		return nil, nil, err
	}

	var corrections []LinkCorrection
	if task.AssignedUser != "" && !task.Completed {
		corrections = e.runCorrections(ctx, "createTask", task.ID.String(),
			e.addToPendingTasks(task.AssignedUser, task.ID.String()))
	}
	return task, corrections, nil
}

// UpdateTask merges the supplied fields over the stored task, persists
// it and then runs the three independent reverse-side corrections:
// remove from a former owner, ensure presence in the current owner's
// list while the task is open, and remove from the pre-update owner on
// completion. A completed task is never added to any list.
func (e *Engine) UpdateTask(ctx context.Context, id string, in TaskUpdate) (*models.Task, []LinkCorrection, error) {
	task, err := e.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	previousOwner := task.AssignedUser

	if in.Name != nil {
		task.Name = *in.Name
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Deadline != nil {
		task.Deadline = *in.Deadline
	}
	if in.Completed != nil {
		task.Completed = *in.Completed
	}
	if in.AssignedUser != nil {
		task.AssignedUser = *in.AssignedUser
	}
	if in.AssignedUserName != nil {
		task.AssignedUserName = *in.AssignedUserName
	}

	if strings.TrimSpace(task.Name) == "" || task.Deadline.IsZero() {
		return nil, nil, apperrors.NewValidation("name and deadline are required fields")
	}

	if err := e.tasks.Save(ctx, task); err != nil {
		return nil, nil, err
	}

	taskID := task.ID.String()
	var fns []correctionFn
	if previousOwner != "" && previousOwner != task.AssignedUser {
		fns = append(fns, e.removeFromPendingTasks(previousOwner, taskID))
	}
	if task.AssignedUser != "" && !task.Completed {
		fns = append(fns, e.addToPendingTasks(task.AssignedUser, taskID))
	}
	if task.Completed && previousOwner != "" {
		fns = append(fns, e.removeFromPendingTasks(previousOwner, taskID))
	}

	corrections := e.runCorrections(ctx, "updateTask", taskID, fns...)
	return task, corrections, nil
}

// DeleteTask removes the task from its owner's pendingTasks (owner
// missing is tolerated) and then deletes the task document. The
// deletion itself is unconditional once the task exists.
func (e *Engine) DeleteTask(ctx context.Context, id string) ([]LinkCorrection, error) {
	task, err := e.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var corrections []LinkCorrection
	if task.AssignedUser != "" {
		corrections = e.runCorrections(ctx, "deleteTask", task.ID.String(),
			e.removeFromPendingTasks(task.AssignedUser, task.ID.String()))
	}

	if err := e.tasks.Delete(ctx, id); err != nil {
		return corrections, err
	}
	return corrections, nil
}

// addToPendingTasks ensures taskID appears exactly once in the owner's
// pendingTasks. An absent owner is a no-op, never an error.
func (e *Engine) addToPendingTasks(ownerID, taskID string) correctionFn {
	return func(ctx context.Context) (*LinkCorrection, error) {
		owner, err := e.users.FindByID(ctx, ownerID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		if owner.PendingTasks.Contains(taskID) {
			return nil, nil
		}

		owner.PendingTasks = owner.PendingTasks.Append(taskID)
		if err := e.users.Save(ctx, owner); err != nil {
			return nil, err
		}
		return &LinkCorrection{Collection: CollectionUsers, ID: owner.ID.String(), Action: ActionPendingAdd}, nil
	}
}

func (e *Engine) removeFromPendingTasks(ownerID, taskID string) correctionFn {
	return func(ctx context.Context) (*LinkCorrection, error) {
		owner, err := e.users.FindByID(ctx, ownerID)
		if err != nil {
			if apperrors.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		if !owner.PendingTasks.Contains(taskID) {
			return nil, nil
		}

		owner.PendingTasks = owner.PendingTasks.Remove(taskID)
		if err := e.users.Save(ctx, owner); err != nil {
			return nil, err
		}
		return &LinkCorrection{Collection: CollectionUsers, ID: owner.ID.String(), Action: ActionPendingRemove}, nil
	}
}
