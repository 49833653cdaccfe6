package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// User is the reverse side of the link: PendingTasks lists the
// identities of non-completed tasks assigned to this user, each at most
// once.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	Name         string     `json:"name" gorm:"not null"`
	Email        string     `json:"email" gorm:"unique;not null"`
	PendingTasks StringList `json:"pendingTasks" gorm:"type:text"`
	DateCreated  time.Time  `json:"dateCreated"`
}

func (User) TableName() string {
	return "users"
}
