package user

import (
	"slices"
	"time"
)

// User represents a user entity in the system.
type User struct {
	ID           string    // ID is the store-assigned unique identifier
	Name         string    // Name is the display name, copied onto assigned tasks
	Email        string    // Email is unique across all users
	PendingTasks []string  // PendingTasks lists the IDs of incomplete tasks assigned to the user
	DateCreated  time.Time // DateCreated is set by the store on insert
}

// HasPendingTask reports whether taskID is in the user's pending list.
func (u *User) HasPendingTask(taskID string) bool {
	return slices.Contains(u.PendingTasks, taskID)
}

// WithPendingTask returns the pending list with taskID appended once.
func WithPendingTask(pending []string, taskID string) []string {
	if slices.Contains(pending, taskID) {
		return pending
	}
	return append(slices.Clone(pending), taskID)
}

// WithoutPendingTask returns the pending list with every occurrence of taskID removed.
func WithoutPendingTask(pending []string, taskID string) []string {
	out := make([]string, 0, len(pending))
	for _, id := range pending {
		if id != taskID {
			out = append(out, id)
		}
	}
	return out
}
