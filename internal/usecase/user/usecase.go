package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"task-user-service/internal/domain/query"
	domain "task-user-service/internal/domain/user"
	pkgerrors "task-user-service/pkg/errors"
	"task-user-service/pkg/logger"
)

const msgNameEmailRequired = "Name and email are required"

// Repository defines the interface for user data access operations.
type Repository interface {
	List(ctx context.Context, p query.Params) ([]*domain.User, error)  // List users matching a query
	Count(ctx context.Context, p query.Params) (int64, error)          // Count users matching a query filter
	GetByID(ctx context.Context, id string) (*domain.User, error)      // Retrieve user by ID
	GetByEmail(ctx context.Context, email string) (*domain.User, error) // Retrieve user by email, nil if absent
	Create(ctx context.Context, u *domain.User) (*domain.User, error)   // Create a new user
	Replace(ctx context.Context, u *domain.User) (*domain.User, error)  // Replace an existing user
	Delete(ctx context.Context, id string) (*domain.User, error)        // Delete user by ID
}

// Reconciler propagates user changes to the tasks that reference the user.
type Reconciler interface {
	UserReplaced(ctx context.Context, u *domain.User) error
	UserDeleted(ctx context.Context, userID string) error
}

// Service implements the business logic for user management operations.
type Service struct {
	repo      Repository          // Repository for data access
	reconcile Reconciler          // Keeps task assignments in sync
	log       *zap.Logger         // Logger for structured logging
	validate  *validator.Validate // Validator for request validation
}

var _ Usecase = (*Service)(nil)

// New creates a new instance of Service.
func New(r Repository, rec Reconciler, log *zap.Logger) *Service {
	return &Service{repo: r, reconcile: rec, log: log, validate: validator.New()}
}

// formatValidationError converts validator.ValidationErrors into a
// ValidationError carrying the client-facing message.
func formatValidationError(err error, message string) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			fields = append(fields, e.Field())
		}
		return pkgerrors.NewValidationError(strings.Join(fields, ","), message)
	}
	return fmt.Errorf("failed to validate request: %w", err)
}

// checkEmailFree returns an AlreadyExistsError when email belongs to a user
// other than selfID.
func (s *Service) checkEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to validate email uniqueness: %w", err)
	}
	if existing != nil && existing.ID != selfID {
		logger.WithContext(ctx, s.log).Warn("email already exists", zap.String("email", email), zap.String("existing_id", existing.ID))
		return pkgerrors.NewAlreadyExistsError("user", "Email already exists")
	}
	return nil
}

// CreateUser creates a new user after validating the request and checking email uniqueness.
func (s *Service) CreateUser(ctx context.Context, in CreateUserRequest) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("creating user", zap.String("name", in.Name), zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err, msgNameEmailRequired)
	}

	if err := s.checkEmailFree(ctx, in.Email, ""); err != nil {
		return nil, err
	}

	pending := in.PendingTasks
	if pending == nil {
		pending = []string{}
	}

	created, err := s.repo.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PendingTasks: pending,
	})
	if err != nil {
		log.Error("failed to create user", zap.Error(err))
		return nil, err
	}
	return created, nil
}

// ReplaceUser replaces an existing user. When the request carries a pending
// list, task assignments are reconciled against it.
func (s *Service) ReplaceUser(ctx context.Context, in ReplaceUserRequest) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("replacing user", zap.String("id", in.ID), zap.String("name", in.Name), zap.String("email", in.Email))

	if err := s.validate.Struct(in); err != nil {
		log.Warn("validate failed", zap.Error(err))
		return nil, formatValidationError(err, msgNameEmailRequired)
	}

	if err := s.checkEmailFree(ctx, in.Email, in.ID); err != nil {
		return nil, err
	}

	pending := []string{}
	if in.HasPendingTasks && in.PendingTasks != nil {
		pending = in.PendingTasks
	}

	updated, err := s.repo.Replace(ctx, &domain.User{
		ID:           in.ID,
		Name:         in.Name,
		Email:        in.Email,
		PendingTasks: pending,
	})
	if err != nil {
		log.Error("failed to replace user", zap.String("id", in.ID), zap.Error(err))
		return nil, err
	}

	if in.HasPendingTasks {
		if err := s.reconcile.UserReplaced(ctx, updated); err != nil {
			return nil, err
		}
	}

	return updated, nil
}

// DeleteUser deletes a user and unassigns their incomplete tasks.
func (s *Service) DeleteUser(ctx context.Context, id string) (*domain.User, error) {
	log := logger.WithContext(ctx, s.log)
	log.Info("deleting user", zap.String("id", id))

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete user", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if err := s.reconcile.UserDeleted(ctx, deleted.ID); err != nil {
		return nil, err
	}

	return deleted, nil
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			logger.WithContext(ctx, s.log).Error("failed to get user", zap.String("id", id), zap.Error(err))
		}
		return nil, err
	}
	return u, nil
}

// ListUsers returns the users matching the query, or their count.
// Users have no default limit.
func (s *Service) ListUsers(ctx context.Context, in ListUsersRequest) (*ListUsersResponse, error) {
	log := logger.WithContext(ctx, s.log)

	if in.Query.Count {
		n, err := s.repo.Count(ctx, in.Query)
		if err != nil {
			log.Error("failed to count users", zap.Error(err))
			return nil, err
		}
		return &ListUsersResponse{Count: n}, nil
	}

	log.Debug("listing users", zap.Int("skip", in.Query.Skip), zap.Int("limit", in.Query.Limit))

	users, err := s.repo.List(ctx, in.Query)
	if err != nil {
		log.Error("failed to list users", zap.Error(err))
		return nil, err
	}
	return &ListUsersResponse{Users: users}, nil
}
