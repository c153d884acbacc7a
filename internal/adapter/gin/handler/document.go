package handler

import (
	"task-user-service/internal/domain/query"
	"task-user-service/internal/domain/task"
	"task-user-service/internal/domain/user"
)

func userDocument(u *user.User) map[string]any {
	pending := u.PendingTasks
	if pending == nil {
		pending = []string{}
	}
	return map[string]any{
		query.IDField:  u.ID,
		"name":         u.Name,
		"email":        u.Email,
		"pendingTasks": pending,
		"dateCreated":  query.FormatTime(u.DateCreated),
	}
}

func taskDocument(t *task.Task) map[string]any {
	return map[string]any{
		query.IDField:      t.ID,
		"name":             t.Name,
		"description":      t.Description,
		"deadline":         query.FormatTime(t.Deadline),
		"completed":        t.Completed,
		"assignedUser":     t.AssignedUser,
		"assignedUserName": t.AssignedUserName,
		"dateCreated":      query.FormatTime(t.DateCreated),
	}
}

func userDocuments(users []*user.User, p *query.Projection) []map[string]any {
	docs := make([]map[string]any, len(users))
	for i, u := range users {
		docs[i] = p.Apply(userDocument(u))
	}
	return docs
}

func taskDocuments(tasks []*task.Task, p *query.Projection) []map[string]any {
	docs := make([]map[string]any, len(tasks))
	for i, t := range tasks {
		docs[i] = p.Apply(taskDocument(t))
	}
	return docs
}
