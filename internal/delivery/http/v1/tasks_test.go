package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

// memoryTaskService is an in-memory services.TaskService.
type memoryTaskService struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]models.Task
	err    error
}

func newMemoryTaskService() *memoryTaskService {
	return &memoryTaskService{tasks: make(map[int64]models.Task)}
}

func (s *memoryTaskService) CreateTask(_ context.Context, params services.CreateTaskParams) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if !params.Status.Valid() {
		return nil, services.ErrInvalidTaskStatus
	}

	s.nextID++
	task := models.Task{
		ID:           s.nextID,
		Title:        params.Title,
		Description:  params.Description,
		Status:       params.Status,
		CreationTime: time.Now().UTC(),
	}
	s.tasks[task.ID] = task
	return &task, nil
}

func (s *memoryTaskService) GetTasks(context.Context) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	tasks := make([]*models.Task, 0, len(s.tasks))
	for id := int64(1); id <= s.nextID; id++ {
		if task, ok := s.tasks[id]; ok {
			tasks = append(tasks, &task)
		}
	}
	return tasks, nil
}

func (s *memoryTaskService) GetTaskByID(_ context.Context, id int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	task, ok := s.tasks[id]
	if !ok {
		return nil, services.ErrTaskNotFound
	}
	return &task, nil
}

func (s *memoryTaskService) UpdateTask(_ context.Context, params services.UpdateTaskParams) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if params.Status != nil && !params.Status.Valid() {
		return nil, services.ErrInvalidTaskStatus
	}

	task, ok := s.tasks[params.ID]
	if !ok {
		return nil, services.ErrTaskNotFound
	}
	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	s.tasks[task.ID] = task
	return &task, nil
}

func (s *memoryTaskService) DeleteTask(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	if _, ok := s.tasks[id]; !ok {
		return services.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func newTestRouter(t *testing.T, svc services.TaskService) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	RegisterRoutes(router, New(zerolog.Nop(), svc))
	return router
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)
	return rr
}

func doRaw(t *testing.T, h http.Handler, method, path, raw string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(raw))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)
	return rr
}

func decodeTask(t *testing.T, rr *httptest.ResponseRecorder) getTaskResponse {
	t.Helper()

	var out getTaskResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

func decodeDetail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var out struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out.Detail
}

func createTask(t *testing.T, h http.Handler, title, description, status string) getTaskResponse {
	t.Helper()

	rr := doJSON(t, h, http.MethodPost, "/tasks/", map[string]any{
		"title":       title,
		"description": description,
		"status":      status,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decodeTask(t, rr)
}

func TestTaskLifecycle(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	created := createTask(t, router, "A", "d", "pending")
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, "в ожидании", created.StatusLabel)
	assert.False(t, created.CreationTime.IsZero())

	rr := doJSON(t, router, http.MethodPut, "/tasks/1", map[string]any{"status": "done"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decodeTask(t, rr)
	assert.Equal(t, "done", updated.Status)
	assert.Equal(t, "A", updated.Title)
	assert.Equal(t, "d", updated.Description)

	rr = doJSON(t, router, http.MethodDelete, "/tasks/1", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"message":"Task deleted successfully"}`, rr.Body.String())

	rr = doJSON(t, router, http.MethodGet, "/tasks/1", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "null", rr.Body.String())
}

func TestPOST_Tasks_RoundTrip(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	for _, status := range []string{"done", "pending", "working"} {
		t.Run(status, func(t *testing.T) {
			created := createTask(t, router, "title "+status, "description "+status, status)

			rr := doJSON(t, router, http.MethodGet, "/tasks/"+strconv.FormatInt(created.ID, 10), nil)
			require.Equal(t, http.StatusOK, rr.Code)
			got := decodeTask(t, rr)

			assert.Equal(t, created.ID, got.ID)
			assert.Equal(t, "title "+status, got.Title)
			assert.Equal(t, "description "+status, got.Description)
			assert.Equal(t, status, got.Status)
		})
	}
}

func TestPOST_Tasks_AcceptsDisplayLabel(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	created := createTask(t, router, "A", "d", "в работе")

	assert.Equal(t, "working", created.Status)
	assert.Equal(t, "в работе", created.StatusLabel)
}

func TestPOST_Tasks_InvalidStatus_422(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	for _, status := range []string{"archived", "", "DONE"} {
		t.Run(status, func(t *testing.T) {
			rr := doJSON(t, router, http.MethodPost, "/tasks/", map[string]any{
				"title":       "A",
				"description": "d",
				"status":      status,
			})

			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code, rr.Body.String())
			assert.Equal(t, msgInvalidTaskStatus, decodeDetail(t, rr))
		})
	}
}

func TestPOST_Tasks_MissingField_422(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	rr := doJSON(t, router, http.MethodPost, "/tasks/", map[string]any{
		"title":  "A",
		"status": "pending",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, `field "description" is required`, decodeDetail(t, rr))
}

func TestPOST_Tasks_InvalidJSON_422(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	rr := doRaw(t, router, http.MethodPost, "/tasks/", "{bad json}")

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, msgInvalidRequestBody, decodeDetail(t, rr))
}

func TestPOST_Tasks_ServiceError_500(t *testing.T) {
	svc := newMemoryTaskService()
	svc.err = errors.New("connection refused")
	router := newTestRouter(t, svc)

	rr := doJSON(t, router, http.MethodPost, "/tasks/", map[string]any{
		"title":       "A",
		"description": "d",
		"status":      "pending",
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), decodeDetail(t, rr))
}

func TestGET_Tasks_Empty(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	rr := doJSON(t, router, http.MethodGet, "/tasks/", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGET_Tasks_List(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())
	createTask(t, router, "A", "x", "pending")
	createTask(t, router, "B", "y", "working")

	rr := doJSON(t, router, http.MethodGet, "/tasks/", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var out []getTaskResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].Title)
	assert.Equal(t, "B", out[1].Title)
}

func TestGET_Tasks_DeletedTaskNotListed(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())
	first := createTask(t, router, "A", "x", "pending")
	createTask(t, router, "B", "y", "working")

	rr := doJSON(t, router, http.MethodDelete, "/tasks/"+strconv.FormatInt(first.ID, 10), nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = doJSON(t, router, http.MethodGet, "/tasks/", nil)
	var out []getTaskResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, "B", out[0].Title)
}

func TestGET_TaskByID_InvalidID_422(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	rr := doJSON(t, router, http.MethodGet, "/tasks/abc", nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, msgInvalidTaskID, decodeDetail(t, rr))
}

func TestPUT_Task_TitleOnly(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())
	created := createTask(t, router, "A", "d", "working")

	rr := doJSON(t, router, http.MethodPut, "/tasks/"+strconv.FormatInt(created.ID, 10), map[string]any{"title": "B"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	updated := decodeTask(t, rr)

	assert.Equal(t, "B", updated.Title)
	assert.Equal(t, "d", updated.Description)
	assert.Equal(t, "working", updated.Status)
	assert.Equal(t, created.CreationTime, updated.CreationTime)
}

func TestPUT_Task_InvalidStatus_422(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())
	created := createTask(t, router, "A", "d", "pending")

	rr := doJSON(t, router, http.MethodPut, "/tasks/"+strconv.FormatInt(created.ID, 10), map[string]any{"status": "archived"})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Equal(t, msgInvalidTaskStatus, decodeDetail(t, rr))
}

func TestPUT_Task_InvalidStatusOnMissingTask_422(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	rr := doJSON(t, router, http.MethodPut, "/tasks/99", map[string]any{"status": "archived"})

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestPUT_Task_NotFound_404(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	rr := doJSON(t, router, http.MethodPut, "/tasks/99", map[string]any{"title": "B"})

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, msgTaskNotFound, decodeDetail(t, rr))
}

func TestDELETE_Task_NotFound_404(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	rr := doJSON(t, router, http.MethodDelete, "/tasks/99", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, msgTaskNotFound, decodeDetail(t, rr))
}

func TestRequestID(t *testing.T) {
	router := newTestRouter(t, newMemoryTaskService())

	rr := doJSON(t, router, http.MethodGet, "/tasks/", nil)
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/tasks/", nil)
	req.Header.Set(requestIDHeader, "req-123")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, "req-123", rr.Header().Get(requestIDHeader))
}
