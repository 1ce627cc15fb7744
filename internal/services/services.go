package services

import (
	"context"
	"errors"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrInvalidTaskStatus = models.ErrInvalidStatus
)

type TaskService interface {
	// CreateTask inserts a new task and returns it with the generated
	// id and creation time.
	//
	// It returns ErrInvalidTaskStatus if the status is not one of the
	// known statuses.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// GetTasks returns every task ordered by id. It returns an empty
	// slice rather than an error when there are no tasks.
	GetTasks(ctx context.Context) ([]*models.Task, error)

	// GetTaskByID returns ErrTaskNotFound if there is no task with the given id.
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)

	// UpdateTask applies only the non-nil fields of params.
	//
	// It returns ErrInvalidTaskStatus if a supplied status is unknown
	// and ErrTaskNotFound if there is no task with the given id.
	UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask returns ErrTaskNotFound if there is no task with the given id.
	DeleteTask(ctx context.Context, id int64) error
}

type CreateTaskParams struct {
	Title       string
	Description string
	Status      models.Status
}

type UpdateTaskParams struct {
	ID          int64
	Title       *string
	Description *string
	Status      *models.Status
}
