package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	domain "task-user-service/internal/domain/task"
	taskuc "task-user-service/internal/usecase/task"
	pkgerrors "task-user-service/pkg/errors"
)

type MockTaskUsecase struct {
	mock.Mock
}

func (m *MockTaskUsecase) CreateTask(ctx context.Context, req taskuc.CreateTaskRequest) (*domain.Task, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskUsecase) ReplaceTask(ctx context.Context, req taskuc.ReplaceTaskRequest) (*domain.Task, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskUsecase) DeleteTask(ctx context.Context, id string) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskUsecase) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Task), args.Error(1)
}

func (m *MockTaskUsecase) ListTasks(ctx context.Context, req taskuc.ListTasksRequest) (*taskuc.ListTasksResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*taskuc.ListTasksResponse), args.Error(1)
}

func setupTaskTest(t *testing.T) (*gin.Engine, *MockTaskUsecase) {
	gin.SetMode(gin.TestMode)
	uc := new(MockTaskUsecase)
	t.Cleanup(func() { uc.AssertExpectations(t) })
	h := NewTaskHandler(uc, 100, zaptest.NewLogger(t))

	r := gin.New()
	r.GET("/tasks", h.ListTasks)
	r.POST("/tasks", h.CreateTask)
	r.GET("/tasks/:id", h.GetTask)
	r.PUT("/tasks/:id", h.ReplaceTask)
	r.DELETE("/tasks/:id", h.DeleteTask)
	return r, uc
}

var deadline0 = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

func sampleTask() *domain.Task {
	return &domain.Task{
		ID: "t1", Name: "Write report", Deadline: deadline0,
		AssignedUser: "u1", AssignedUserName: "Ada", DateCreated: created0,
	}
}

func TestCreateTask(t *testing.T) {
	t.Run("EpochDeadlineAndTruthyCompleted", func(t *testing.T) {
		r, uc := setupTaskTest(t)
		uc.On("CreateTask", mock.Anything, mock.MatchedBy(func(req taskuc.CreateTaskRequest) bool {
			return req.Name == "Write report" && req.Deadline.Equal(deadline0) &&
				req.Completed && req.AssignedUser == "u1" && req.AssignedUserName == ""
		})).Return(sampleTask(), nil)

		w := doRequest(r, http.MethodPost, "/tasks", `{"name":"Write report","deadline":1893456000000,"completed":"yes","assignedUser":"u1"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w)
		assert.Equal(t, "Created", env.Message)
		assert.JSONEq(t, `{
			"_id": "t1", "name": "Write report", "description": "",
			"deadline": "2030-01-01T00:00:00.000Z", "completed": false,
			"assignedUser": "u1", "assignedUserName": "Ada",
			"dateCreated": "2024-01-02T03:04:05.000Z"
		}`, string(env.Data))
	})

	t.Run("DateDeadline", func(t *testing.T) {
		r, uc := setupTaskTest(t)
		uc.On("CreateTask", mock.Anything, mock.MatchedBy(func(req taskuc.CreateTaskRequest) bool {
			return req.Deadline.Equal(deadline0) && !req.Completed
		})).Return(sampleTask(), nil)

		w := doRequest(r, http.MethodPost, "/tasks", `{"name":"x","deadline":"2030-01-01","completed":"false"}`)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("MissingDeadline", func(t *testing.T) {
		r, uc := setupTaskTest(t)
		uc.On("CreateTask", mock.Anything, mock.MatchedBy(func(req taskuc.CreateTaskRequest) bool {
			return req.Deadline.IsZero()
		})).Return(nil, pkgerrors.NewValidationError("Deadline", "Name and deadline are required"))

		w := doRequest(r, http.MethodPost, "/tasks", `{"name":"x","deadline":0}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Name and deadline are required", decodeEnvelope(t, w).Message)
	})

	t.Run("InvalidDeadline", func(t *testing.T) {
		r, _ := setupTaskTest(t)

		w := doRequest(r, http.MethodPost, "/tasks", `{"name":"x","deadline":"someday"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid deadline", decodeEnvelope(t, w).Message)
	})
}

func TestListTasks_DefaultLimit(t *testing.T) {
	r, uc := setupTaskTest(t)
	uc.On("ListTasks", mock.Anything, mock.MatchedBy(func(req taskuc.ListTasksRequest) bool {
		return req.Query.Limit == 100
	})).Return(&taskuc.ListTasksResponse{Tasks: []*domain.Task{sampleTask()}}, nil).Once()
	uc.On("ListTasks", mock.Anything, mock.MatchedBy(func(req taskuc.ListTasksRequest) bool {
		return req.Query.Limit == 5
	})).Return(&taskuc.ListTasksResponse{}, nil).Once()

	w := doRequest(r, http.MethodGet, "/tasks?limit=0", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodGet, "/tasks?limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReplaceTask_AssignedUserNamePresence(t *testing.T) {
	r, uc := setupTaskTest(t)
	uc.On("ReplaceTask", mock.Anything, mock.MatchedBy(func(req taskuc.ReplaceTaskRequest) bool {
		return req.ID == "t1" && req.AssignedUserName != nil && *req.AssignedUserName == ""
	})).Return(sampleTask(), nil).Once()
	uc.On("ReplaceTask", mock.Anything, mock.MatchedBy(func(req taskuc.ReplaceTaskRequest) bool {
		return req.ID == "t2" && req.AssignedUserName == nil
	})).Return(sampleTask(), nil).Once()

	w := doRequest(r, http.MethodPut, "/tasks/t1", `{"name":"x","deadline":"2030-01-01","assignedUserName":""}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doRequest(r, http.MethodPut, "/tasks/t2", `{"name":"x","deadline":"2030-01-01"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestTaskNotFound(t *testing.T) {
	r, uc := setupTaskTest(t)
	notFound := pkgerrors.NewNotFoundError("task", "Task not found")
	uc.On("GetTask", mock.Anything, "t9").Return(nil, notFound)
	uc.On("DeleteTask", mock.Anything, "t9").Return(nil, notFound)

	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		w := doRequest(r, method, "/tasks/t9", nil)
		assert.Equal(t, http.StatusNotFound, w.Code, method)
		assert.Equal(t, "Task not found", decodeEnvelope(t, w).Message, method)
	}
}

func TestDeleteTask_ReconciliationFailure(t *testing.T) {
	r, uc := setupTaskTest(t)
	uc.On("DeleteTask", mock.Anything, "t1").
		Return(nil, pkgerrors.NewReconciliationError("remove pending task", assert.AnError))

	w := doRequest(r, http.MethodDelete, "/tasks/t1", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error deleting task", decodeEnvelope(t, w).Message)
}
