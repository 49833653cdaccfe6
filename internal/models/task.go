package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// Task is one side of the denormalized Task <-> User link. AssignedUser
// holds the owning user's identity or "" when unassigned;
// AssignedUserName caches the owner's name as of the last link repair.
type Task struct {
	ID               uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	Name             string    `json:"name" gorm:"not null"`
	Description      string    `json:"description"`
	Deadline         Timestamp `json:"deadline" gorm:"not null"`
	Completed        bool      `json:"completed" gorm:"not null;default:false"`
	AssignedUser     string    `json:"assignedUser" gorm:"default:''"`
	AssignedUserName string    `json:"assignedUserName" gorm:"default:'unassigned'"`
	DateCreated      time.Time `json:"dateCreated"`
}

func (Task) TableName() string {
	return "tasks"
}
