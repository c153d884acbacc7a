package task

import (
	"time"

	"task-user-service/internal/domain/query"
	domain "task-user-service/internal/domain/task"
)

// CreateTaskRequest represents the request payload for creating a task.
// An empty AssignedUserName falls back to the default for AssignedUser.
type CreateTaskRequest struct {
	Name             string    `validate:"required"`
	Description      string
	Deadline         time.Time `validate:"required"`
	Completed        bool
	AssignedUser     string
	AssignedUserName string
}

// ReplaceTaskRequest represents the request payload for replacing a task.
// A nil AssignedUserName falls back to the default for AssignedUser; an
// explicit value, even "", is stored as given.
type ReplaceTaskRequest struct {
	ID               string    `validate:"required"`
	Name             string    `validate:"required"`
	Description      string
	Deadline         time.Time `validate:"required"`
	Completed        bool
	AssignedUser     string
	AssignedUserName *string
}

// ListTasksRequest represents the request payload for listing tasks.
type ListTasksRequest struct {
	Query query.Params
}

// ListTasksResponse holds either the matching tasks or, when the request
// asked for a count, the number of matches.
type ListTasksResponse struct {
	Tasks []*domain.Task
	Count int64
}
