package cqrs

// ---------- Identity commands ----------

type SignupCommand struct {
	Email    string `validate:"required,mailbox"`
	Password string `validate:"required,min=6"`
}

type LoginCommand struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// ---------- Profile commands ----------

// UpdateProfileCommand carries an optional email; an empty Email means no change.
type UpdateProfileCommand struct {
	UserID string
	Email  string
}

type ChangePasswordCommand struct {
	UserID          string
	CurrentPassword string `validate:"required"`
	NewPassword     string `validate:"required"`
}

// ---------- Task commands ----------

type CreateTaskCommand struct {
	OwnerID     string
	Title       string `validate:"required"`
	Description string
	Status      string
	Priority    string
	DueDate     string
}

// UpdateTaskCommand is a partial update: only fields with Present set are
// written back.
type UpdateTaskCommand struct {
	OwnerID     string
	TaskID      string
	Title       Optional[string]
	Description Optional[string]
	Status      Optional[string]
	Priority    Optional[string]
	DueDate     Optional[string]
}

type DeleteTaskCommand struct {
	OwnerID string
	TaskID  string
}

type ToggleTaskCommand struct {
	OwnerID string
	TaskID  string
}
