package task

import (
	"context"

	domain "task-user-service/internal/domain/task"
)

// Usecase defines the interface for task business logic operations.
type Usecase interface {
	CreateTask(ctx context.Context, in CreateTaskRequest) (*domain.Task, error)
	ReplaceTask(ctx context.Context, in ReplaceTaskRequest) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) (*domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	ListTasks(ctx context.Context, in ListTasksRequest) (*ListTasksResponse, error)
}
