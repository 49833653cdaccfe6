// Package store is the per-collection persistence surface the
// consistency engine runs against: find-by-id, find-by-filter, save,
// bulk-update-by-filter and delete, each atomic for a single document
// only. No cross-document transaction is offered.
package store

import (
	"context"
	"fmt"
	"strings"

	"task-tracker/backend/internal/models"
	"task-tracker/backend/internal/query"

	"gorm.io/gorm"
)

type TaskStore interface {
	FindByID(ctx context.Context, id string) (*models.Task, error)
	Find(ctx context.Context, opts query.Options) ([]models.Task, error)
	Count(ctx context.Context, opts query.Options) (int64, error)
	Save(ctx context.Context, task *models.Task) error
	BulkUpdate(ctx context.Context, filter TaskFilter, fields map[string]interface{}) (int64, error)
	Delete(ctx context.Context, id string) error
}

type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Find(ctx context.Context, opts query.Options) ([]models.User, error)
	Count(ctx context.Context, opts query.Options) (int64, error)
	Save(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// TaskFilter selects tasks for a bulk update. Set exactly one of the
// fields.
type TaskFilter struct {
	IDs          []string
	AssignedUser *string
}

func applyOptions(db *gorm.DB, opts query.Options) *gorm.DB {
	if len(opts.Where) > 0 {
		db = db.Where(opts.Where)
	}
	if len(opts.Select) > 0 {
		db = db.Select(opts.Select)
	}
	for _, order := range opts.Sort {
		direction := "ASC"
		if order.Desc {
			direction = "DESC"
		}
		db = db.Order(fmt.Sprintf("%s %s", order.Column, direction))
	}
	if opts.Limit > 0 {
		db = db.Limit(opts.Limit)
	}
	if opts.Skip > 0 {
		db = db.Offset(opts.Skip)
	}
	return db
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
