package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"task-user-service/internal/domain/query"
	domain "task-user-service/internal/domain/task"
	pkgerrors "task-user-service/pkg/errors"
	"task-user-service/pkg/logger"
)

const msgNameDeadlineRequired = "Name and deadline are required"

// Repository defines the interface for task data access operations.
type Repository interface {
	List(ctx context.Context, p query.Params) ([]*domain.Task, error)
	Count(ctx context.Context, p query.Params) (int64, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Replace(ctx context.Context, t *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, id string) (*domain.Task, error)
}

// Reconciler propagates task changes to the pending lists of their assignees.
type Reconciler interface {
	TaskCreated(ctx context.Context, t *domain.Task) error
	TaskReplaced(ctx context.Context, prev, next *domain.Task) error
	TaskDeleted(ctx context.Context, t *domain.Task) error
}

// Service implements the business logic for task management operations.
type Service struct {
	repo      Repository
	reconcile Reconciler
	log       *zap.Logger
	validate  *validator.Validate
}

var _ Usecase = (*Service)(nil)

// New creates a new instance of Service.
func New(r Repository, rec Reconciler, log *zap.Logger) *Service {
	return &Service{repo: r, reconcile: rec, log: log, validate: validator.New()}
}

func formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fields = append(fields, e.Field())
		}
		return pkgerrors.NewValidationError(strings.Join(fields, ","), msgNameDeadlineRequired)
	}
	return fmt.Errorf("failed to validate request: %w", err)
}

// CreateTask stores a new task and links it to its assignee.
func (s *Service) CreateTask(ctx context.Context, in CreateTaskRequest) (*domain.Task, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("creating task", zap.String("name", in.Name), zap.String("assigned_user", in.AssignedUser))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	name := in.AssignedUserName
	if name == "" {
		name = domain.DefaultAssigneeName(in.AssignedUser)
	}

	created, err := s.repo.Create(ctx, &domain.Task{
		Name:             in.Name,
		Description:      in.Description,
		Deadline:         in.Deadline,
		Completed:        in.Completed,
		AssignedUser:     in.AssignedUser,
		AssignedUserName: name,
	})
	if err != nil {
		log.Error("failed to create task", zap.Error(err))
		return nil, err
	}

	if err := s.reconcile.TaskCreated(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// ReplaceTask replaces every field of an existing task and moves the task
// reference between pending lists when the assignee or completion changed.
func (s *Service) ReplaceTask(ctx context.Context, in ReplaceTaskRequest) (*domain.Task, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("replacing task", zap.String("id", in.ID), zap.String("assigned_user", in.AssignedUser))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err)
	}

	prev, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			log.Error("failed to load task", zap.String("id", in.ID), zap.Error(err))
		}
		return nil, err
	}

	name := domain.DefaultAssigneeName(in.AssignedUser)
	if in.AssignedUserName != nil {
		name = *in.AssignedUserName
	}

	updated, err := s.repo.Replace(ctx, &domain.Task{
		ID:               in.ID,
		Name:             in.Name,
		Description:      in.Description,
		Deadline:         in.Deadline,
		Completed:        in.Completed,
		AssignedUser:     in.AssignedUser,
		AssignedUserName: name,
	})
	if err != nil {
		log.Error("failed to replace task", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}

	if err := s.reconcile.TaskReplaced(ctx, prev, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTask deletes a task and drops it from its assignee's pending list.
func (s *Service) DeleteTask(ctx context.Context, id string) (*domain.Task, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("deleting task", zap.String("id", id))

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete task", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := s.reconcile.TaskDeleted(ctx, deleted); err != nil {
		return nil, err
	}
	return deleted, nil
}

// GetTask retrieves a task by ID.
func (s *Service) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			logger.WithContext(ctx, s.log).Error("failed to get task", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return t, nil
}

// ListTasks returns the tasks matching the query, or their count.
func (s *Service) ListTasks(ctx context.Context, in ListTasksRequest) (*ListTasksResponse, error) {
	log := logger.WithContext(ctx, s.log)

	if in.Query.Count {
		n, err := s.repo.Count(ctx, in.Query)
		if err != nil {
			log.Error("failed to count tasks", zap.Error(err))
			return nil, err
		}
		return &ListTasksResponse{Count: n}, nil
	}

	log.Debug("listing tasks", zap.Int("skip", in.Query.Skip), zap.Int("limit", in.Query.Limit))

	tasks, err := s.repo.List(ctx, in.Query)
	if err != nil {
		log.Error("failed to list tasks", zap.Error(err))
		return nil, err
	}
	return &ListTasksResponse{Tasks: tasks}, nil
}
