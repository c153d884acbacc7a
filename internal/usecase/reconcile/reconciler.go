// Package reconcile keeps User.PendingTasks and Task.AssignedUser consistent
// after a user or task mutation has been committed.
//
// Each follow-up step is persisted independently. A failing step stops the
// remaining steps of that rule and is reported as a ReconciliationError;
// steps already applied, and the primary mutation, are kept.
package reconcile

import (
	"context"

	"go.uber.org/zap"

	"task-user-service/internal/domain/task"
	"task-user-service/internal/domain/user"
	pkgerrors "task-user-service/pkg/errors"
	"task-user-service/pkg/logger"
)

// Step names reported in ReconciliationError.
const (
	StepUnassignExcluded   = "unassign excluded tasks"
	StepAssignListed       = "assign listed tasks"
	StepUnassignIncomplete = "unassign incomplete tasks"
	StepLookupAssignee     = "lookup assignee"
	StepBackfillName       = "backfill assignee name"
	StepAddPending         = "add pending task"
	StepRemovePending      = "remove pending task"
)

// UserStore is the subset of the user repository the reconciler writes to.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
	AddPendingTask(ctx context.Context, userID, taskID string) error
	RemovePendingTask(ctx context.Context, userID, taskID string) error
}

// TaskStore is the subset of the task repository the reconciler writes to.
type TaskStore interface {
	SetAssignedUserName(ctx context.Context, taskID, name string) error
	UnassignAllExcept(ctx context.Context, userID string, keep []string) (int64, error)
	AssignPending(ctx context.Context, ids []string, userID, userName string) (int64, error)
	UnassignIncomplete(ctx context.Context, userID string) (int64, error)
}

// Reconciler applies the follow-up writes that keep both sides of the
// user/task reference in sync.
type Reconciler struct {
	users UserStore
	tasks TaskStore
	log   *zap.Logger
}

// New creates a Reconciler.
func New(users UserStore, tasks TaskStore, log *zap.Logger) *Reconciler {
	return &Reconciler{users: users, tasks: tasks, log: log.Named("reconcile")}
}

func (r *Reconciler) fail(ctx context.Context, step string, err error, fields ...zap.Field) error {
	fields = append(fields, zap.String("step", step), zap.Error(err))
	logger.WithContext(ctx, r.log).Error("reconciliation step failed", fields...)
	return pkgerrors.NewReconciliationError(step, err)
}

// UserReplaced runs after a user was replaced with an explicit pending list.
// Tasks of u missing from the list are unassigned; incomplete listed tasks
// are assigned to u, whoever held them before.
func (r *Reconciler) UserReplaced(ctx context.Context, u *user.User) error {
	if _, err := r.tasks.UnassignAllExcept(ctx, u.ID, u.PendingTasks); err != nil {
		return r.fail(ctx, StepUnassignExcluded, err, zap.String("user_id", u.ID))
	}
	if _, err := r.tasks.AssignPending(ctx, u.PendingTasks, u.ID, u.Name); err != nil {
		return r.fail(ctx, StepAssignListed, err, zap.String("user_id", u.ID))
	}
	return nil
}

// UserDeleted unassigns the incomplete tasks of a deleted user. Completed
// tasks keep their assignee.
func (r *Reconciler) UserDeleted(ctx context.Context, userID string) error {
	if _, err := r.tasks.UnassignIncomplete(ctx, userID); err != nil {
		return r.fail(ctx, StepUnassignIncomplete, err, zap.String("user_id", userID))
	}
	return nil
}

// TaskCreated links a newly created, incomplete, assigned task to its
// assignee. t.AssignedUserName is updated in place when backfilled.
func (r *Reconciler) TaskCreated(ctx context.Context, t *task.Task) error {
	if !t.IsPending() {
		return nil
	}
	return r.attach(ctx, t)
}

// TaskReplaced moves the task reference from prev's assignee to next's.
// next.AssignedUserName is updated in place when backfilled.
func (r *Reconciler) TaskReplaced(ctx context.Context, prev, next *task.Task) error {
	if prev.IsAssigned() && (prev.AssignedUser != next.AssignedUser || next.Completed) {
		if err := r.users.RemovePendingTask(ctx, prev.AssignedUser, next.ID); err != nil {
			return r.fail(ctx, StepRemovePending, err, zap.String("user_id", prev.AssignedUser), zap.String("task_id", next.ID))
		}
	}

	if next.IsPending() {
		return r.attach(ctx, next)
	}
	return nil
}

// TaskDeleted drops the deleted task from its assignee's pending list.
func (r *Reconciler) TaskDeleted(ctx context.Context, t *task.Task) error {
	if !t.IsAssigned() {
		return nil
	}
	if err := r.users.RemovePendingTask(ctx, t.AssignedUser, t.ID); err != nil {
		return r.fail(ctx, StepRemovePending, err, zap.String("user_id", t.AssignedUser), zap.String("task_id", t.ID))
	}
	return nil
}

// attach backfills the assignee name, then records t in the assignee's
// pending list. A dangling assignee is left alone.
func (r *Reconciler) attach(ctx context.Context, t *task.Task) error {
	assignee, err := r.users.GetByID(ctx, t.AssignedUser)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			logger.WithContext(ctx, r.log).Debug("assignee not found", zap.String("user_id", t.AssignedUser), zap.String("task_id", t.ID))
			return nil
		}
		return r.fail(ctx, StepLookupAssignee, err, zap.String("user_id", t.AssignedUser))
	}

	if t.NeedsAssigneeName() {
		if err := r.tasks.SetAssignedUserName(ctx, t.ID, assignee.Name); err != nil {
			return r.fail(ctx, StepBackfillName, err, zap.String("task_id", t.ID))
		}
		t.AssignedUserName = assignee.Name
	}

	if err := r.users.AddPendingTask(ctx, assignee.ID, t.ID); err != nil {
		if pkgerrors.IsNotFound(err) {
			return nil
		}
		return r.fail(ctx, StepAddPending, err, zap.String("user_id", assignee.ID), zap.String("task_id", t.ID))
	}
	return nil
}
