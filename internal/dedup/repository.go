package dedup

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Executor is the subset of pgx methods marker writes need, so the
// repository can run inside a caller-owned transaction.
type Executor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Repository stores processed-event markers. A marker's existence is the sole
// source of truth for "this consumer already handled this event".
type Repository struct {
	executor Executor
}

func NewRepository(exec Executor) *Repository {
	return &Repository{executor: exec}
}

// WithExecutor returns a shallow copy using the provided executor (e.g., a transaction).
func (r *Repository) WithExecutor(exec Executor) *Repository {
	return &Repository{executor: exec}
}

// Insert writes the marker for (consumer, event). The unique constraint on
// that pair is the concurrency guard: when two deliveries of the same event
// race, the loser's insert reports alreadyProcessed and must discard.
// Inside a transaction a conflict aborts the tx, so callers roll back on the
// duplicate path; that path mutates nothing anyway.
func (r *Repository) Insert(ctx context.Context, consumerName, eventID string) (alreadyProcessed bool, err error) {
	_, err = r.executor.Exec(ctx, `
		INSERT INTO processed_events (consumer_name, event_id, processed_at)
		VALUES ($1, $2, now())
	`, consumerName, eventID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return true, nil
		}
		return false, fmt.Errorf("insert marker: %w", err)
	}
	return false, nil
}
