package task

import "time"

// UnassignedName is the assignedUserName placeholder for tasks without an assignee.
const UnassignedName = "unassigned"

// Task represents a task entity in the system.
//
// AssignedUser is a plain user identifier with no referential integrity; it
// may point at a user that no longer exists. AssignedUserName caches the
// assignee's name at assignment time.
type Task struct {
	ID               string
	Name             string
	Description      string
	Deadline         time.Time
	Completed        bool
	AssignedUser     string // "" when unassigned
	AssignedUserName string // UnassignedName when unassigned
	DateCreated      time.Time
}

// IsAssigned reports whether the task names an assignee.
func (t *Task) IsAssigned() bool {
	return t.AssignedUser != ""
}

// IsPending reports whether the task belongs in its assignee's pending list.
func (t *Task) IsPending() bool {
	return t.IsAssigned() && !t.Completed
}

// NeedsAssigneeName reports whether AssignedUserName is absent or the placeholder.
func (t *Task) NeedsAssigneeName() bool {
	return t.AssignedUserName == "" || t.AssignedUserName == UnassignedName
}

// DefaultAssigneeName returns the name stored when the caller supplies none.
func DefaultAssigneeName(assignedUser string) string {
	if assignedUser == "" {
		return UnassignedName
	}
	return ""
}
