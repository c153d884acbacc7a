package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"task-user-service/internal/domain/query"
	"task-user-service/internal/domain/user"
	pkgerrors "task-user-service/pkg/errors"
)

// UserRepoPG implements the user Repository interface on top of GORM.
type UserRepoPG struct {
	db  *gorm.DB    // GORM database connection
	log *zap.Logger // Structured logger for database operations
}

// NewUserRepoPG creates a new instance of UserRepoPG.
func NewUserRepoPG(db *gorm.DB, log *zap.Logger) *UserRepoPG {
	return &UserRepoPG{db: db, log: log}
}

func userNotFound() error {
	return pkgerrors.NewNotFoundError("user", "User not found")
}

func emailTaken() error {
	return pkgerrors.NewAlreadyExistsError("user", "Email already exists")
}

// List returns the users matching p.
func (r *UserRepoPG) List(ctx context.Context, p query.Params) ([]*user.User, error) {
	var models []UserSchema
	if err := listQuery(r.db.WithContext(ctx).Model(&UserSchema{}), userFields, p).Find(&models).Error; err != nil {
		r.log.Error("failed to list users from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*user.User, len(models))
	for i := range models {
		users[i] = models[i].toDomain()
	}
	return users, nil
}

// Count returns the number of users matching the filter of p.
func (r *UserRepoPG) Count(ctx context.Context, p query.Params) (int64, error) {
	var n int64
	if err := applyFilter(r.db.WithContext(ctx).Model(&UserSchema{}), userFields, p.Filter).Count(&n).Error; err != nil {
		r.log.Error("failed to count users in db", zap.Error(err))
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// GetByID retrieves a user by identifier.
func (r *UserRepoPG) GetByID(ctx context.Context, id string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found", zap.String("id", id))
			return nil, userNotFound()
		}
		r.log.Error("failed to get user from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return model.toDomain(), nil
}

// GetByEmail retrieves a user by email address. It returns nil, nil when no
// user has that email.
func (r *UserRepoPG) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var model UserSchema
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("user not found by email", zap.String("email", email))
			return nil, nil
		}
		r.log.Error("failed to get user by email from db", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return model.toDomain(), nil
}

// Create inserts u, assigning its ID and DateCreated.
func (r *UserRepoPG) Create(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	model := userSchemaFrom(u)
	model.ID = xid.New().String()
	model.DateCreated = time.Now().UTC().Truncate(time.Millisecond)
	if model.PendingTasks == nil {
		model.PendingTasks = StringList{}
	}

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			r.log.Warn("email already exists", zap.String("email", u.Email))
			return nil, emailTaken()
		}
		r.log.Error("failed to create user in db", zap.Error(err), zap.String("email", u.Email))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created in db", zap.String("id", model.ID))
	return model.toDomain(), nil
}

// Replace overwrites name, email and pendingTasks of the user u.ID.
// DateCreated is kept.
func (r *UserRepoPG) Replace(ctx context.Context, u *user.User) (*user.User, error) {
	if u == nil {
		return nil, errors.New("user cannot be nil")
	}

	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", u.ID).First(&model).Error; err != nil {
			return err
		}
		model.Name = u.Name
		model.Email = u.Email
		model.PendingTasks = StringList(u.PendingTasks)
		if model.PendingTasks == nil {
			model.PendingTasks = StringList{}
		}
		return tx.Save(&model).Error
	})
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, userNotFound()
		case errors.Is(err, gorm.ErrDuplicatedKey):
			r.log.Warn("email already exists", zap.String("email", u.Email))
			return nil, emailTaken()
		}
		r.log.Error("failed to replace user in db", zap.Error(err), zap.String("id", u.ID))
		return nil, fmt.Errorf("failed to replace user: %w", err)
	}

	r.log.Info("user replaced in db", zap.String("id", model.ID))
	return model.toDomain(), nil
}

// Delete removes the user and returns it as it was before deletion.
func (r *UserRepoPG) Delete(ctx context.Context, id string) (*user.User, error) {
	var model UserSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&UserSchema{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userNotFound()
		}
		r.log.Error("failed to delete user in db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	r.log.Info("user deleted in db", zap.String("id", id))
	return model.toDomain(), nil
}

// AddPendingTask appends taskID to the user's pending list unless present.
func (r *UserRepoPG) AddPendingTask(ctx context.Context, userID, taskID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserSchema
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", userID).First(&model).Error; err != nil {
			return err
		}
		next := user.WithPendingTask(model.PendingTasks, taskID)
		if len(next) == len(model.PendingTasks) {
			return nil
		}
		return tx.Model(&UserSchema{}).Where("id = ?", userID).Update("pending_tasks", StringList(next)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return userNotFound()
		}
		r.log.Error("failed to add pending task", zap.Error(err), zap.String("user_id", userID), zap.String("task_id", taskID))
		return fmt.Errorf("failed to add pending task: %w", err)
	}
	return nil
}

// RemovePendingTask removes every occurrence of taskID from the user's
// pending list. A missing user is not an error.
func (r *UserRepoPG) RemovePendingTask(ctx context.Context, userID, taskID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model UserSchema
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", userID).First(&model).Error; err != nil {
			return err
		}
		next := user.WithoutPendingTask(model.PendingTasks, taskID)
		if len(next) == len(model.PendingTasks) {
			return nil
		}
		return tx.Model(&UserSchema{}).Where("id = ?", userID).Update("pending_tasks", StringList(next)).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("pending task owner not found", zap.String("user_id", userID))
			return nil
		}
		r.log.Error("failed to remove pending task", zap.Error(err), zap.String("user_id", userID), zap.String("task_id", taskID))
		return fmt.Errorf("failed to remove pending task: %w", err)
	}
	return nil
}
