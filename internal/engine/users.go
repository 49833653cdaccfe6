package engine

import (
	"context"
	"strings"
	"time"

	"task-tracker/backend/internal/apperrors"
	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/store"

	"github.com/gofrs/uuid"
)

type UserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UserUpdate is a partial field set. PendingTasks, when supplied,
// replaces the stored list wholesale.
type UserUpdate struct {
	Name         *string   `json:"name"`
	Email        *string   `json:"email"`
	PendingTasks *[]string `json:"pendingTasks"`
}

// CreateUser persists a new user. A new user owns no tasks, so there is
// no reverse side to correct.
func (e *Engine) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, apperrors.NewValidation("name and email are required fields")
	}

	if _, err := e.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.NewConflict("a user with this email already exists")
	} else if !apperrors.IsNotFound(err) {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.Must(uuid.NewV4()),
		Name:         in.Name,
		Email:        in.Email,
		PendingTasks: models.StringList{},
		DateCreated:  time.Now().UTC(),
	}
	if err := e.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser merges the supplied fields, persists the user, then
// force-relinks every task listed in pendingTasks to this user. This is
// the one forward (User -> Task) propagation path; it is also what
// refreshes the assignedUserName cache after a rename.
func (e *Engine) UpdateUser(ctx context.Context, id string, in UserUpdate) (*models.User, []LinkCorrection, error) {
	user, err := e.users.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.PendingTasks != nil {
		user.PendingTasks = dedupe(*in.PendingTasks)
	}

	if strings.TrimSpace(user.Name) == "" || strings.TrimSpace(user.Email) == "" {
		return nil, nil, apperrors.NewValidation("name and email are required fields")
	}

	if in.Email != nil {
		if existing, err := e.users.FindByEmail(ctx, user.Email); err == nil && existing.ID != user.ID {
			return nil, nil, apperrors.NewConflict("a user with this email already exists")
		} else if err != nil && !apperrors.IsNotFound(err) {
			return nil, nil, err
		}
	}

	if err := e.users.Save(ctx, user); err != nil {
		return nil, nil, err
	}

	var corrections []LinkCorrection
	if len(user.PendingTasks) > 0 {
		corrections = e.runCorrections(ctx, "updateUser", user.ID.String(),
			e.relinkPendingTasks(user.ID.String(), user.Name, user.PendingTasks))
	}
	return user, corrections, nil
}

// DeleteUser unassigns every task pointing at this user, then deletes
// the user document.
func (e *Engine) DeleteUser(ctx context.Context, id string) ([]LinkCorrection, error) {
	user, err := e.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ownerID := user.ID.String()
	corrections := e.runCorrections(ctx, "deleteUser", ownerID,
		func(ctx context.Context) (*LinkCorrection, error) {
			count, err := e.tasks.BulkUpdate(ctx, store.TaskFilter{AssignedUser: &ownerID}, map[string]interface{}{
				"assigned_user":      "",
				"assigned_user_name": models.UnassignedName,
			})
			if err != nil {
				return nil, err
			}
			if count == 0 {
				return nil, nil
			}
			return &LinkCorrection{Collection: CollectionTasks, ID: ownerID, Action: ActionUnassign}, nil
		})

	if err := e.users.Delete(ctx, id); err != nil {
		return corrections, err
	}
	return corrections, nil
}

// relinkPendingTasks bulk-points every listed task at the owner,
// overwriting whatever assignedUser those tasks carried before.
func (e *Engine) relinkPendingTasks(ownerID, ownerName string, taskIDs models.StringList) correctionFn {
	return func(ctx context.Context) (*LinkCorrection, error) {
		count, err := e.tasks.BulkUpdate(ctx, store.TaskFilter{IDs: []string(taskIDs)}, map[string]interface{}{
			"assigned_user":      ownerID,
			"assigned_user_name": ownerName,
		})
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, nil
		}
		return &LinkCorrection{Collection: CollectionTasks, ID: ownerID, Action: ActionRelink}, nil
	}
}

func dedupe(ids []string) models.StringList {
	list := models.StringList{}
	for _, id := range ids {
		list = list.Append(id)
	}
	return list
}
