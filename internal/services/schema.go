package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-task-tracker/internal/models"
)

func schemaStatements() []string {
	keys := make([]string, 0, len(models.Statuses()))
	for _, s := range models.Statuses() {
		keys = append(keys, "'"+string(s)+"'")
	}

	return []string{
		`
CREATE TABLE IF NOT EXISTS tasks (
    id            BIGSERIAL PRIMARY KEY,
    title         TEXT        NOT NULL,
    description   TEXT        NOT NULL,
    status        TEXT        NOT NULL CHECK (status IN (` + strings.Join(keys, ", ") + `)),
    creation_time TIMESTAMPTZ NOT NULL
)
`,
		`CREATE INDEX IF NOT EXISTS tasks_title_idx ON tasks (title)`,
		`CREATE INDEX IF NOT EXISTS tasks_description_idx ON tasks (description)`,
	}
}

// InitSchema creates the tasks table and its indexes if they are missing.
// Existing rows are left untouched, so it is safe to call on every start.
func InitSchema(ctx context.Context, logger zerolog.Logger, sessions Sessions) error {
	return sessions.WithSession(ctx, func(q Querier) error {
		for _, stmt := range schemaStatements() {
			_, err := q.Exec(ctx, stmt)
			if err != nil {
				logger.Error().
					Err(err).
					Msg("failed to execute schema statement")
				return fmt.Errorf("init schema: %w", err)
			}
		}

		logger.Info().Msg("initialized schema")
		return nil
	})
}
