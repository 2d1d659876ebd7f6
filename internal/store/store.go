// Package store implements durable storage of records behind a minimal
// query surface. One Store works against either a file-based sqlite
// database or a network postgres database; the differences (DDL,
// placeholders, unique-violation detection) live in the dialect.
//
// Every operation acquires a connection at entry, executes exactly one
// statement, and releases the connection on all exit paths. No operation
// opens a transaction; the unique constraint on eid is the second line of
// defense behind the service-level pre-check.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"recordbook/internal/core"
)

// dialect captures the per-driver differences.
type dialect interface {
	name() string
	createTable() string
	// rebind rewrites ? placeholders into the driver's native form.
	rebind(query string) string
	isUniqueViolation(err error) bool
}

// Store executes SQL statements against the records table.
type Store struct {
	db  *sql.DB
	d   dialect
	log *slog.Logger
}

const selectCols = "id, eid, name, rights, status, remarks, updated_at"

// Init ensures the backing schema exists. Idempotent; safe to call on
// every process start.
func (s *Store) Init(ctx context.Context) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, s.d.createTable()); err != nil {
		return fmt.Errorf("create records table: %w", err)
	}

	s.log.Info("database schema initialized", "dialect", s.d.name())
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns records ordered by id descending. A non-blank filter keeps
// only records whose eid or name contains the substring, case-insensitive.
// limit <= 0 returns everything.
func (s *Store) List(ctx context.Context, filter string, skip, limit int) ([]core.Record, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	query := "SELECT " + selectCols + " FROM records"
	var args []any

	if filter != "" {
		query += " WHERE LOWER(eid) LIKE ? OR LOWER(name) LIKE ?"
		pattern := "%" + strings.ToLower(filter) + "%"
		args = append(args, pattern, pattern)
	}

	query += " ORDER BY id DESC"

	if limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, limit, skip)
	}

	rows, err := conn.QueryContext(ctx, s.d.rebind(query), args...)
	if err != nil {
		s.log.Error("list records failed", "error", err)
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	records := []core.Record{}
	for rows.Next() {
		var rec core.Record
		if err := rows.Scan(&rec.ID, &rec.EID, &rec.Name, &rec.Rights, &rec.Status, &rec.Remarks, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	return records, nil
}

// FindByEID returns the record holding eid, or nil when none does. A
// positive excludeID leaves that record out of consideration, which lets
// an update keep its own unchanged eid.
func (s *Store) FindByEID(ctx context.Context, eid string, excludeID int64) (*core.Record, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	query := "SELECT " + selectCols + " FROM records WHERE eid = ?"
	args := []any{eid}
	if excludeID > 0 {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}

	rec, err := scanOne(conn.QueryRowContext(ctx, s.d.rebind(query), args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("find by eid failed", "eid", eid, "error", err)
		return nil, fmt.Errorf("find by eid: %w", err)
	}
	return rec, nil
}

// FindByID returns the record with the given id, or core.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id int64) (*core.Record, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	query := s.d.rebind("SELECT " + selectCols + " FROM records WHERE id = ?")
	rec, err := scanOne(conn.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		s.log.Error("find by id failed", "id", id, "error", err)
		return nil, fmt.Errorf("find by id: %w", err)
	}
	return rec, nil
}

// Insert persists a new record and returns its assigned id. The timestamp
// is set here, once, at creation. A unique violation on eid comes back as
// core.ErrDuplicateEID.
func (s *Store) Insert(ctx context.Context, in core.CreateInput) (int64, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	query := s.d.rebind(`INSERT INTO records (eid, name, rights, status, remarks, updated_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`)

	var id int64
	err = conn.QueryRowContext(ctx, query,
		in.EID, in.Name, in.Rights, in.Status, in.Remarks, time.Now().UTC(),
	).Scan(&id)
	if err != nil {
		if s.d.isUniqueViolation(err) {
			return 0, core.ErrDuplicateEID
		}
		s.log.Error("insert record failed", "eid", in.EID, "error", err)
		return 0, fmt.Errorf("insert record: %w", err)
	}

	return id, nil
}

// Update applies the non-nil fields of the patch to the record with the
// given id and refreshes its timestamp. The SET clause is assembled from
// the declared patch fields only.
func (s *Store) Update(ctx context.Context, id int64, patch core.UpdateInput) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	var sets []string
	var args []any

	if patch.EID != nil {
		sets = append(sets, "eid = ?")
		args = append(args, *patch.EID)
	}
	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Rights != nil {
		sets = append(sets, "rights = ?")
		args = append(args, *patch.Rights)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Remarks != nil {
		sets = append(sets, "remarks = ?")
		args = append(args, *patch.Remarks)
	}
	if len(sets) == 0 {
		return core.ErrNoFields
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := s.d.rebind("UPDATE records SET " + strings.Join(sets, ", ") + " WHERE id = ?")

	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		if s.d.isUniqueViolation(err) {
			return core.ErrDuplicateEID
		}
		s.log.Error("update record failed", "id", id, "error", err)
		return fmt.Errorf("update record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update record: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	return nil
}

// Delete removes the row with the given id.
func (s *Store) Delete(ctx context.Context, id int64) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	query := s.d.rebind("DELETE FROM records WHERE id = ?")

	res, err := conn.ExecContext(ctx, query, id)
	if err != nil {
		s.log.Error("delete record failed", "id", id, "error", err)
		return fmt.Errorf("delete record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}

	return nil
}

// Count returns the number of stored records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	var n int64
	if err := conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func scanOne(row *sql.Row) (*core.Record, error) {
	var rec core.Record
	err := row.Scan(&rec.ID, &rec.EID, &rec.Name, &rec.Rights, &rec.Status, &rec.Remarks, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// rebindPositional rewrites ? placeholders to $1..$n. Queries here never
// contain a literal question mark, so a plain scan is enough.
func rebindPositional(query string) string {
	var b strings.Builder
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}
