package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-user-service/internal/domain/query"
	taskuc "task-user-service/internal/usecase/task"
	"task-user-service/pkg/logger"
	"task-user-service/pkg/security"
)

const (
	msgTaskNotFound         = "Task not found"
	msgNameDeadlineRequired = "Name and deadline are required"
	msgInvalidDeadline      = "Invalid deadline"
	msgErrorFetchingTasks   = "Error fetching tasks"
	msgErrorFetchingTask    = "Error fetching task"
	msgErrorCreatingTask    = "Error creating task"
	msgErrorUpdatingTask    = "Error updating task"
	msgErrorDeletingTask    = "Error deleting task"
)

// TaskHandler handles HTTP requests for task operations
type TaskHandler struct {
	uc           taskuc.Usecase
	defaultLimit int
	log          *zap.Logger
}

// NewTaskHandler creates a new TaskHandler. defaultLimit caps task lists
// that do not name a limit.
func NewTaskHandler(uc taskuc.Usecase, defaultLimit int, log *zap.Logger) *TaskHandler {
	return &TaskHandler{
		uc:           uc,
		defaultLimit: defaultLimit,
		log:          log,
	}
}

func (h *TaskHandler) taskID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := security.ValidateIdentifier(id); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Debug("invalid task id", zap.String("id", id), zap.Error(err))
		Fail(c, http.StatusNotFound, msgTaskNotFound)
		return "", false
	}
	return id, true
}

// bindTask decodes the request body, or writes a 400 and reports false.
func (h *TaskHandler) bindTask(c *gin.Context) (*taskBody, bool) {
	var body taskBody
	if err := c.ShouldBindJSON(&body); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid task request", zap.Error(err))
		Fail(c, http.StatusBadRequest, msgNameDeadlineRequired)
		return nil, false
	}
	if body.Deadline.Invalid && body.Name != "" {
		Fail(c, http.StatusBadRequest, msgInvalidDeadline)
		return nil, false
	}
	return &body, true
}

// ListTasks handles GET /tasks
func (h *TaskHandler) ListTasks(c *gin.Context) {
	p := query.FromValues(c.Request.URL.Query(), h.defaultLimit)

	resp, err := h.uc.ListTasks(c.Request.Context(), taskuc.ListTasksRequest{Query: p})
	if err != nil {
		respondError(c, h.log, err, msgErrorFetchingTasks)
		return
	}

	if p.Count {
		ok(c, resp.Count)
		return
	}
	ok(c, taskDocuments(resp.Tasks, p.Projection))
}

// CreateTask handles POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	body, valid := h.bindTask(c)
	if !valid {
		return
	}

	t, err := h.uc.CreateTask(c.Request.Context(), taskuc.CreateTaskRequest{
		Name:             body.Name,
		Description:      deref(body.Description),
		Deadline:         body.Deadline.Time,
		Completed:        bool(body.Completed),
		AssignedUser:     deref(body.AssignedUser),
		AssignedUserName: deref(body.AssignedUserName),
	})
	if err != nil {
		respondError(c, h.log, err, msgErrorCreatingTask)
		return
	}

	created(c, taskDocument(t))
}

// GetTask handles GET /tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	id, valid := h.taskID(c)
	if !valid {
		return
	}

	t, err := h.uc.GetTask(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, msgErrorFetchingTask)
		return
	}

	ok(c, query.ParseProjection(c.Query("select")).Apply(taskDocument(t)))
}

// ReplaceTask handles PUT /tasks/:id
func (h *TaskHandler) ReplaceTask(c *gin.Context) {
	id, valid := h.taskID(c)
	if !valid {
		return
	}

	body, valid := h.bindTask(c)
	if !valid {
		return
	}

	t, err := h.uc.ReplaceTask(c.Request.Context(), taskuc.ReplaceTaskRequest{
		ID:               id,
		Name:             body.Name,
		Description:      deref(body.Description),
		Deadline:         body.Deadline.Time,
		Completed:        bool(body.Completed),
		AssignedUser:     deref(body.AssignedUser),
		AssignedUserName: body.AssignedUserName,
	})
	if err != nil {
		respondError(c, h.log, err, msgErrorUpdatingTask)
		return
	}

	ok(c, taskDocument(t))
}

// DeleteTask handles DELETE /tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, valid := h.taskID(c)
	if !valid {
		return
	}

	t, err := h.uc.DeleteTask(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, msgErrorDeletingTask)
		return
	}

	ok(c, taskDocument(t))
}
