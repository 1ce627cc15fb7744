package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Querier is the part of a pgx connection the services run statements on.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Sessions hands out a storage session for one unit of work. The
// session is released when fn returns, whatever the outcome.
type Sessions interface {
	WithSession(ctx context.Context, fn func(q Querier) error) error
}

type poolSessions struct {
	pgPool *pgxpool.Pool
}

func NewPoolSessions(pgPool *pgxpool.Pool) Sessions {
	return &poolSessions{pgPool: pgPool}
}

func (s *poolSessions) WithSession(ctx context.Context, fn func(q Querier) error) error {
	conn, err := s.pgPool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	return fn(conn)
}
