package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-task-tracker/internal/models"
	"github.com/adanyl0v/go-task-tracker/internal/services"
)

type getTaskResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"status_label"`
	CreationTime time.Time `json:"creation_time"`
}

func newGetTaskResponse(task *models.Task) getTaskResponse {
	return getTaskResponse{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		Status:       string(task.Status),
		StatusLabel:  task.Status.Label(),
		CreationTime: task.CreationTime,
	}
}

type deleteTaskResponse struct {
	Message string `json:"message"`
}

type createTaskRequest struct {
	Title       *string `json:"title" binding:"required"`
	Description *string `json:"description" binding:"required"`
	Status      *string `json:"status" binding:"required,task_status"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	logger := h.requestLogger(c)

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindingError(err))
		return
	}

	status, err := models.ParseStatus(*req.Status)
	if err != nil {
		logger.Error().
			Str("status", *req.Status).
			Msg("invalid status")
		abort(c, newUnprocessableEntityError(msgInvalidTaskStatus))
		return
	}

	task, err := h.tasks.CreateTask(c.Request.Context(), services.CreateTaskParams{
		Title:       *req.Title,
		Description: *req.Description,
		Status:      status,
	})
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, newServiceError(err))
		return
	}

	logger.Info().
		Int64("id", task.ID).
		Msg("created task")
	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	logger := h.requestLogger(c)

	tasks, err := h.tasks.GetTasks(c.Request.Context())
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to get tasks")
		abort(c, newServiceError(err))
		return
	}

	response := make([]getTaskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newGetTaskResponse(task)
	}

	logger.Debug().
		Int("count", len(response)).
		Msg("fetched tasks")
	c.JSON(http.StatusOK, response)
}

// HandleGetTask answers 200 with a null body when the task does not
// exist, unlike update and delete which answer 404.
func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	logger := h.requestLogger(c)

	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.tasks.GetTaskByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			logger.Warn().
				Int64("id", taskID).
				Msg("task not found")
			c.JSON(http.StatusOK, nil)
			return
		}

		logger.Error().
			Err(err).
			Int64("id", taskID).
			Msg("failed to get task")
		abort(c, newServiceError(err))
		return
	}

	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

type updateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty" binding:"omitempty,task_status"`
}

// HandleUpdateTask checks the status before the task existence, so an
// invalid status on a missing task answers 422.
func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	logger := h.requestLogger(c)

	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBindingError(err))
		return
	}

	params := services.UpdateTaskParams{
		ID:          taskID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status, err := models.ParseStatus(*req.Status)
		if err != nil {
			logger.Error().
				Str("status", *req.Status).
				Msg("invalid status")
			abort(c, newUnprocessableEntityError(msgInvalidTaskStatus))
			return
		}
		params.Status = &status
	}

	task, err := h.tasks.UpdateTask(c.Request.Context(), params)
	if err != nil {
		logger.Error().
			Err(err).
			Int64("id", taskID).
			Msg("failed to update task")
		abort(c, newServiceError(err))
		return
	}

	logger.Info().
		Int64("id", task.ID).
		Msg("updated task")
	c.JSON(http.StatusOK, newGetTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	logger := h.requestLogger(c)

	taskID, ok := h.taskIDParam(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteTask(c.Request.Context(), taskID)
	if err != nil {
		logger.Error().
			Err(err).
			Int64("id", taskID).
			Msg("failed to delete task")
		abort(c, newServiceError(err))
		return
	}

	logger.Info().
		Int64("id", taskID).
		Msg("deleted task")
	c.JSON(http.StatusOK, deleteTaskResponse{Message: "Task deleted successfully"})
}

func (h *handlerImpl) taskIDParam(c *gin.Context) (int64, bool) {
	param := c.Param("id")
	taskID, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		h.requestLogger(c).Error().
			Err(err).
			Str("id", param).
			Msg("invalid task id")
		abort(c, newUnprocessableEntityError(msgInvalidTaskID))
		return 0, false
	}
	return taskID, true
}
