package cqrs

// ---------- Identity queries ----------

// VerifyTokenQuery resolves a bearer token to its user.
type VerifyTokenQuery struct {
	Token string
}

// ---------- Profile queries ----------

// GetProfileQuery fetches the caller's own user view.
type GetProfileQuery struct {
	UserID string
}

// ---------- Task queries ----------

// ListTasksQuery lists the owner's tasks. Empty Status/Priority mean no filter;
// an unknown SortBy falls back to createdAt and any Order other than "asc" is
// descending.
type ListTasksQuery struct {
	OwnerID  string
	Status   string
	Priority string
	SortBy   string
	Order    string
}

// GetTaskQuery fetches a single task owned by OwnerID.
type GetTaskQuery struct {
	OwnerID string
	TaskID  string
}

// TaskStatsQuery aggregates the owner's tasks by status.
type TaskStatsQuery struct {
	OwnerID string
}
