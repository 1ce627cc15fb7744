package services

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

type taskServiceImpl struct {
	logger   zerolog.Logger
	sessions Sessions
	now      func() time.Time
}

func NewTaskService(
	logger zerolog.Logger,
	sessions Sessions,
) TaskService {
	return &taskServiceImpl{
		logger:   logger,
		sessions: sessions,
		now:      time.Now,
	}
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	if !params.Status.Valid() {
		s.logger.Error().
			Str("status", string(params.Status)).
			Msg("invalid task status")
		return nil, ErrInvalidTaskStatus
	}

	// The creation time is taken per insert, never as a column default.
	task := &models.Task{
		Title:        params.Title,
		Description:  params.Description,
		Status:       params.Status,
		CreationTime: s.now().UTC(),
	}

	const insertTaskQuery = `
INSERT INTO tasks (title,
                   description,
                   status,
                   creation_time)
VALUES ($1, $2, $3, $4)
RETURNING id
`
	err := s.sessions.WithSession(ctx, func(q Querier) error {
		return q.QueryRow(
			ctx,
			insertTaskQuery,
			task.Title,
			task.Description,
			string(task.Status),
			task.CreationTime,
		).Scan(&task.ID)
	})
	if err != nil {
		if isCheckViolation(err) {
			s.logger.Error().
				Err(err).
				Str("status", string(task.Status)).
				Msg("task status rejected by database")
			return nil, ErrInvalidTaskStatus
		}

		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTasks(ctx context.Context) ([]*models.Task, error) {
	const selectTasksQuery = `
SELECT id,
       title,
       description,
       status,
       creation_time
FROM tasks
ORDER BY id
`
	tasks := make([]*models.Task, 0)
	err := s.sessions.WithSession(ctx, func(q Querier) error {
		rows, err := q.Query(ctx, selectTasksQuery)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			task, err := scanTask(rows)
			if err != nil {
				return err
			}
			tasks = append(tasks, task)
		}

		return rows.Err()
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Msg("selected tasks")
	return tasks, nil
}

func (s *taskServiceImpl) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	const selectTaskByIDQuery = `
SELECT id,
       title,
       description,
       status,
       creation_time
FROM tasks
WHERE id = $1
`
	var task *models.Task
	err := s.sessions.WithSession(ctx, func(q Querier) error {
		var err error
		task, err = scanTask(q.QueryRow(ctx, selectTaskByIDQuery, id))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Debug().
				Int64("task_id", id).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to select task by id")
		return nil, err
	}

	s.logger.Debug().
		Int64("task_id", id).
		Msg("selected task by id")
	return task, nil
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, params UpdateTaskParams) (*models.Task, error) {
	var status *string
	if params.Status != nil {
		if !params.Status.Valid() {
			s.logger.Error().
				Str("status", string(*params.Status)).
				Int64("task_id", params.ID).
				Msg("invalid task status")
			return nil, ErrInvalidTaskStatus
		}
		statusKey := string(*params.Status)
		status = &statusKey
	}

	// NULL parameters keep the current column value.
	const updateTaskQuery = `
UPDATE tasks
SET title = COALESCE($1, title),
    description = COALESCE($2, description),
    status = COALESCE($3, status)
WHERE id = $4
RETURNING id, title, description, status, creation_time
`
	var task *models.Task
	err := s.sessions.WithSession(ctx, func(q Querier) error {
		var err error
		task, err = scanTask(q.QueryRow(
			ctx,
			updateTaskQuery,
			params.Title,
			params.Description,
			status,
			params.ID,
		))
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.logger.Error().
				Int64("task_id", params.ID).
				Msg("task not found")
			return nil, ErrTaskNotFound
		}
		if isCheckViolation(err) {
			s.logger.Error().
				Err(err).
				Int64("task_id", params.ID).
				Msg("task status rejected by database")
			return nil, ErrInvalidTaskStatus
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", params.ID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Msg("updated task")
	return task, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	var tag pgconn.CommandTag
	err := s.sessions.WithSession(ctx, func(q Querier) error {
		var err error
		tag, err = q.Exec(ctx, deleteTaskQuery, id)
		return err
	})
	if err != nil {
		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		s.logger.Error().
			Int64("task_id", id).
			Msg("task not found")
		return ErrTaskNotFound
	}

	s.logger.Info().
		Int64("task_id", id).
		Msg("deleted task")
	return nil
}

func scanTask(row pgx.Row) (*models.Task, error) {
	var (
		task   models.Task
		status string
	)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&task.CreationTime,
	)
	if err != nil {
		return nil, err
	}

	task.Status = models.Status(status)
	return &task, nil
}

func isCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation
}
