package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// pgUniqueViolation is the postgres error code for unique_violation.
const pgUniqueViolation = "23505"

// OpenPostgres opens a network-backed postgres store. Connection
// establishment is verified with a bounded retry loop: the database
// container is often still warming up when the service starts. After the
// attempts are exhausted the last ping error is returned and the caller
// is expected to exit.
func OpenPostgres(ctx context.Context, url string, attempts int, delay time.Duration, log *slog.Logger) (*Store, error) {
	if attempts < 1 {
		attempts = 1
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("open postgres database: %w", err)
	}

	for attempt := 1; ; attempt++ {
		err = db.PingContext(ctx)
		if err == nil {
			break
		}
		if attempt >= attempts {
			db.Close()
			return nil, fmt.Errorf("connect to postgres after %d attempts: %w", attempts, err)
		}
		log.Warn("database not ready, retrying",
			"attempt", attempt,
			"max_attempts", attempts,
			"delay", delay,
			"error", err,
		)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		}
	}

	return &Store{
		db:  db,
		d:   postgresDialect{},
		log: log.With("component", "store"),
	}, nil
}

type postgresDialect struct{}

func (postgresDialect) name() string { return "postgres" }

func (postgresDialect) createTable() string {
	return `CREATE TABLE IF NOT EXISTS records (
		id BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
		eid TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		rights TEXT NOT NULL,
		status TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		updated_at TIMESTAMPTZ NOT NULL
	)`
}

func (postgresDialect) rebind(query string) string {
	return rebindPositional(query)
}

func (postgresDialect) isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}
