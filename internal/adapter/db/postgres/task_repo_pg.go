package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"task-user-service/internal/domain/query"
	"task-user-service/internal/domain/task"
	pkgerrors "task-user-service/pkg/errors"
)

// TaskRepoPG implements the task Repository interface on top of GORM.
type TaskRepoPG struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewTaskRepoPG creates a new instance of TaskRepoPG.
func NewTaskRepoPG(db *gorm.DB, log *zap.Logger) *TaskRepoPG {
	return &TaskRepoPG{db: db, log: log}
}

func taskNotFound() error {
	return pkgerrors.NewNotFoundError("task", "Task not found")
}

// List returns the tasks matching p.
func (r *TaskRepoPG) List(ctx context.Context, p query.Params) ([]*task.Task, error) {
	var models []TaskSchema
	if err := listQuery(r.db.WithContext(ctx).Model(&TaskSchema{}), taskFields, p).Find(&models).Error; err != nil {
		r.log.Error("failed to list tasks from db", zap.Error(err))
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	tasks := make([]*task.Task, len(models))
	for i := range models {
		tasks[i] = models[i].toDomain()
	}
	return tasks, nil
}

// Count returns the number of tasks matching the filter of p.
func (r *TaskRepoPG) Count(ctx context.Context, p query.Params) (int64, error) {
	var n int64
	if err := applyFilter(r.db.WithContext(ctx).Model(&TaskSchema{}), taskFields, p.Filter).Count(&n).Error; err != nil {
		r.log.Error("failed to count tasks in db", zap.Error(err))
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

// GetByID retrieves a task by identifier.
func (r *TaskRepoPG) GetByID(ctx context.Context, id string) (*task.Task, error) {
	var model TaskSchema
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.log.Debug("task not found", zap.String("id", id))
			return nil, taskNotFound()
		}
		r.log.Error("failed to get task from db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return model.toDomain(), nil
}

// Create inserts t, assigning its ID and DateCreated.
func (r *TaskRepoPG) Create(ctx context.Context, t *task.Task) (*task.Task, error) {
	if t == nil {
		return nil, errors.New("task cannot be nil")
	}

	model := taskSchemaFrom(t)
	model.ID = xid.New().String()
	model.DateCreated = time.Now().UTC().Truncate(time.Millisecond)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		r.log.Error("failed to create task in db", zap.Error(err), zap.String("name", t.Name))
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	r.log.Info("task created in db", zap.String("id", model.ID))
	return model.toDomain(), nil
}

// Replace overwrites every mutable field of the task t.ID. DateCreated is kept.
func (r *TaskRepoPG) Replace(ctx context.Context, t *task.Task) (*task.Task, error) {
	if t == nil {
		return nil, errors.New("task cannot be nil")
	}

	var model TaskSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", t.ID).First(&model).Error; err != nil {
			return err
		}
		next := taskSchemaFrom(t)
		next.DateCreated = model.DateCreated
		model = next
		return tx.Save(&model).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskNotFound()
		}
		r.log.Error("failed to replace task in db", zap.Error(err), zap.String("id", t.ID))
		return nil, fmt.Errorf("failed to replace task: %w", err)
	}

	r.log.Info("task replaced in db", zap.String("id", model.ID))
	return model.toDomain(), nil
}

// Delete removes the task and returns it as it was before deletion.
func (r *TaskRepoPG) Delete(ctx context.Context, id string) (*task.Task, error) {
	var model TaskSchema
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&model).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&TaskSchema{}).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, taskNotFound()
		}
		r.log.Error("failed to delete task in db", zap.Error(err), zap.String("id", id))
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}

	r.log.Info("task deleted in db", zap.String("id", id))
	return model.toDomain(), nil
}

// SetAssignedUserName stores name as the task's cached assignee name.
func (r *TaskRepoPG) SetAssignedUserName(ctx context.Context, taskID, name string) error {
	if err := r.db.WithContext(ctx).Model(&TaskSchema{}).Where("id = ?", taskID).
		Update("assigned_user_name", name).Error; err != nil {
		r.log.Error("failed to set assigned user name", zap.Error(err), zap.String("task_id", taskID))
		return fmt.Errorf("failed to set assigned user name: %w", err)
	}
	return nil
}

var unassigned = map[string]any{
	"assigned_user":      "",
	"assigned_user_name": task.UnassignedName,
}

// UnassignAllExcept unassigns every task of userID whose id is not in keep.
func (r *TaskRepoPG) UnassignAllExcept(ctx context.Context, userID string, keep []string) (int64, error) {
	tx := r.db.WithContext(ctx).Model(&TaskSchema{}).Where("assigned_user = ?", userID)
	if len(keep) > 0 {
		tx = tx.Where("id NOT IN ?", keep)
	}

	res := tx.Updates(unassigned)
	if res.Error != nil {
		r.log.Error("failed to unassign tasks", zap.Error(res.Error), zap.String("user_id", userID))
		return 0, fmt.Errorf("failed to unassign tasks: %w", res.Error)
	}

	r.log.Debug("tasks unassigned", zap.String("user_id", userID), zap.Int64("rows", res.RowsAffected))
	return res.RowsAffected, nil
}

// AssignPending assigns the incomplete tasks among ids to userID.
// Completed tasks are left untouched.
func (r *TaskRepoPG) AssignPending(ctx context.Context, ids []string, userID, userName string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res := r.db.WithContext(ctx).Model(&TaskSchema{}).
		Where("id IN ?", ids).
		Where("completed = ?", false).
		Updates(map[string]any{
			"assigned_user":      userID,
			"assigned_user_name": userName,
		})
	if res.Error != nil {
		r.log.Error("failed to assign tasks", zap.Error(res.Error), zap.String("user_id", userID))
		return 0, fmt.Errorf("failed to assign tasks: %w", res.Error)
	}

	r.log.Debug("tasks assigned", zap.String("user_id", userID), zap.Int64("rows", res.RowsAffected))
	return res.RowsAffected, nil
}

// UnassignIncomplete unassigns every incomplete task of userID.
func (r *TaskRepoPG) UnassignIncomplete(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&TaskSchema{}).
		Where("assigned_user = ?", userID).
		Where("completed = ?", false).
		Updates(unassigned)
	if res.Error != nil {
		r.log.Error("failed to unassign incomplete tasks", zap.Error(res.Error), zap.String("user_id", userID))
		return 0, fmt.Errorf("failed to unassign incomplete tasks: %w", res.Error)
	}

	r.log.Debug("incomplete tasks unassigned", zap.String("user_id", userID), zap.Int64("rows", res.RowsAffected))
	return res.RowsAffected, nil
}
