package repository

import (
	"context"
	"errors"
	"time"

	"github.com/satyaranjan2005/Taskmanager-backend/shared/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
	ErrTaskNotFound = errors.New("task not found")
)

// UserStore is the write model for users. Emails are expected to be
// normalized by the caller.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// EmailTaken reports whether a user other than excludeID holds email.
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	UpdateEmail(ctx context.Context, id, email string, updatedAt time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error
}

// TaskStore persists tasks. Every method except Create is scoped by owner:
// a task owned by someone else behaves exactly like a missing one.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, ownerID, id string) (*models.Task, error)
	Update(ctx context.Context, task *models.Task) error
	Delete(ctx context.Context, ownerID, id string) error
	List(ctx context.Context, ownerID string, filter models.TaskFilter, sort models.TaskSort) ([]models.Task, error)
	CountByStatus(ctx context.Context, ownerID string) (map[models.TaskStatus]int64, error)
}

// sortColumns maps the sortable API field names onto table columns.
var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"dueDate":   "due_date",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
}

// IsSortable reports whether field may be used as a sort key.
func IsSortable(field string) bool {
	_, ok := sortColumns[field]
	return ok
}

func sortColumn(field string) string {
	if column, ok := sortColumns[field]; ok {
		return column
	}
	return "created_at"
}
