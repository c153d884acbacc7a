package user

import (
	"task-user-service/internal/domain/query"
	domain "task-user-service/internal/domain/user"
)

// CreateUserRequest represents the request payload for creating a new user.
type CreateUserRequest struct {
	Name         string `validate:"required"`
	Email        string `validate:"required"`
	PendingTasks []string
}

// ReplaceUserRequest represents the request payload for replacing a user.
// HasPendingTasks is false when the client sent no valid pendingTasks list;
// the stored list is then emptied without touching any task.
type ReplaceUserRequest struct {
	ID              string `validate:"required"`
	Name            string `validate:"required"`
	Email           string `validate:"required"`
	PendingTasks    []string
	HasPendingTasks bool
}

// ListUsersRequest represents the request payload for listing users.
type ListUsersRequest struct {
	Query query.Params
}

// ListUsersResponse holds either the matching users or, when the request
// asked for a count, the number of matches.
type ListUsersResponse struct {
	Users []*domain.User
	Count int64
}
