package events

import "time"

// Event types
const (
	UserCreated         = "user.created"
	UserUpdated         = "user.updated"
	UserPasswordChanged = "user.password_changed"

	TaskCreated = "task.created"
	TaskUpdated = "task.updated"
	TaskToggled = "task.toggled"
	TaskDeleted = "task.deleted"
)

// Stream names
const (
	UserEventsStream = "user.events"
	TaskEventsStream = "task.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// User events
type UserCreatedEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type UserUpdatedEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

type UserPasswordChangedEvent struct {
	UserID string `json:"userId"`
}

// Task events
type TaskEvent struct {
	TaskID  string `json:"taskId"`
	OwnerID string `json:"userId"`
	Status  string `json:"status,omitempty"`
}
