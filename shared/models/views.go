package models

import "time"

// UserView is the read-optimised projection of a user.
// It never exposes PasswordHash.
type UserView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AuthUser is the minimal identity returned by signup, login and verify.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthResult pairs a freshly signed session token with its user.
type AuthResult struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

// TaskStats is the per-owner aggregate; statuses without tasks report 0.
type TaskStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
}

// NewTaskStats folds per-status counts into the fixed-shape result.
func NewTaskStats(counts map[TaskStatus]int64) TaskStats {
	var stats TaskStats
	for status, n := range counts {
		stats.Total += n
		switch status {
		case StatusPending:
			stats.Pending = n
		case StatusInProgress:
			stats.InProgress = n
		case StatusCompleted:
			stats.Completed = n
		}
	}
	return stats
}

func (u *User) View() *UserView {
	return &UserView{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (v *UserView) AuthUser() AuthUser {
	return AuthUser{ID: v.ID, Email: v.Email}
}
