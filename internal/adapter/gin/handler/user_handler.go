package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-user-service/internal/domain/query"
	"task-user-service/internal/usecase/user"
	"task-user-service/pkg/logger"
	"task-user-service/pkg/security"
)

const (
	msgUserNotFound       = "User not found"
	msgNameEmailRequired  = "Name and email are required"
	msgErrorFetchingUsers = "Error fetching users"
	msgErrorFetchingUser  = "Error fetching user"
	msgErrorCreatingUser  = "Error creating user"
	msgErrorUpdatingUser  = "Error updating user"
	msgErrorDeletingUser  = "Error deleting user"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// userID returns the path identifier, or writes a 404 when it cannot name a user.
func (h *UserHandler) userID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := security.ValidateIdentifier(id); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Debug("invalid user id", zap.String("id", id), zap.Error(err))
		Fail(c, http.StatusNotFound, msgUserNotFound)
		return "", false
	}
	return id, true
}

// ListUsers handles GET /users
func (h *UserHandler) ListUsers(c *gin.Context) {
	p := query.FromValues(c.Request.URL.Query(), 0)

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{Query: p})
	if err != nil {
		respondError(c, h.log, err, msgErrorFetchingUsers)
		return
	}

	if p.Count {
		ok(c, resp.Count)
		return
	}
	ok(c, userDocuments(resp.Users, p.Projection))
}

// CreateUser handles POST /users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var body userBody
	if err := c.ShouldBindJSON(&body); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid create user request", zap.Error(err))
		Fail(c, http.StatusBadRequest, msgNameEmailRequired)
		return
	}

	pending, _ := body.pendingTasks()
	u, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Name:         body.Name,
		Email:        body.Email,
		PendingTasks: pending,
	})
	if err != nil {
		respondError(c, h.log, err, msgErrorCreatingUser)
		return
	}

	created(c, userDocument(u))
}

// GetUser handles GET /users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	id, valid := h.userID(c)
	if !valid {
		return
	}

	u, err := h.uc.GetUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, msgErrorFetchingUser)
		return
	}

	ok(c, query.ParseProjection(c.Query("select")).Apply(userDocument(u)))
}

// ReplaceUser handles PUT /users/:id
func (h *UserHandler) ReplaceUser(c *gin.Context) {
	id, valid := h.userID(c)
	if !valid {
		return
	}

	var body userBody
	if err := c.ShouldBindJSON(&body); err != nil {
		logger.WithContext(c.Request.Context(), h.log).Warn("invalid replace user request", zap.Error(err))
		Fail(c, http.StatusBadRequest, msgNameEmailRequired)
		return
	}

	pending, hasPending := body.pendingTasks()
	u, err := h.uc.ReplaceUser(c.Request.Context(), user.ReplaceUserRequest{
		ID:              id,
		Name:            body.Name,
		Email:           body.Email,
		PendingTasks:    pending,
		HasPendingTasks: hasPending,
	})
	if err != nil {
		respondError(c, h.log, err, msgErrorUpdatingUser)
		return
	}

	ok(c, userDocument(u))
}

// DeleteUser handles DELETE /users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, valid := h.userID(c)
	if !valid {
		return
	}

	u, err := h.uc.DeleteUser(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, msgErrorDeletingUser)
		return
	}

	ok(c, userDocument(u))
}
