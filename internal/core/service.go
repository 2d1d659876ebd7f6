package core

import (
	"context"
	"fmt"
	"strings"
)

// Pagination defaults for the listing endpoint.
const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

// Storer is the storage surface the service depends on. It is implemented
// by internal/store for both the sqlite and postgres dialects.
type Storer interface {
	// List returns records ordered by id descending. A blank filter returns
	// everything; a non-blank filter matches eid or name case-insensitively.
	// limit <= 0 disables pagination.
	List(ctx context.Context, filter string, skip, limit int) ([]Record, error)

	// FindByEID returns the record holding eid, or nil when there is none.
	// excludeID > 0 ignores that record (used for update pre-checks).
	FindByEID(ctx context.Context, eid string, excludeID int64) (*Record, error)

	// FindByID returns the record with the given id or ErrNotFound.
	FindByID(ctx context.Context, id int64) (*Record, error)

	// Insert persists a new record, assigns its id and timestamp, and
	// returns the id. Returns ErrDuplicateEID on a unique violation.
	Insert(ctx context.Context, in CreateInput) (int64, error)

	// Update applies the non-nil fields of the patch and refreshes the
	// timestamp. Returns ErrNotFound when no row matched.
	Update(ctx context.Context, id int64, patch UpdateInput) error

	// Delete removes the row. Returns ErrNotFound when no row matched.
	Delete(ctx context.Context, id int64) error

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)
}

// Service enforces the business invariants the storage layer cannot enforce
// by itself. It never logs; every outcome propagates to the handlers as a
// typed error.
type Service struct {
	store Storer
}

// NewService creates a Service on top of a record store.
func NewService(store Storer) *Service {
	return &Service{store: store}
}

// Create validates the input, rejects duplicate EIDs, and returns the
// stored record with its server-assigned id and timestamp.
//
// The pre-check and the insert are not atomic; a concurrent create with the
// same EID slips past the pre-check and is caught by the storage unique
// constraint, which the store also reports as ErrDuplicateEID.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Record, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	existing, err := s.store.FindByEID(ctx, in.EID, 0)
	if err != nil {
		return nil, fmt.Errorf("check eid: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEID
	}

	id, err := s.store.Insert(ctx, in)
	if err != nil {
		return nil, err
	}

	// Read back to capture the server-assigned fields.
	return s.store.FindByID(ctx, id)
}

// Update applies a partial update to the record with the given id and
// returns the refreshed record.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Record, error) {
	if in.IsEmpty() {
		return nil, ErrNoFields
	}
	if err := validateUpdate(in); err != nil {
		return nil, err
	}

	if in.EID != nil {
		other, err := s.store.FindByEID(ctx, *in.EID, id)
		if err != nil {
			return nil, fmt.Errorf("check eid: %w", err)
		}
		if other != nil {
			return nil, ErrDuplicateEID
		}
	}

	if err := s.store.Update(ctx, id, in); err != nil {
		return nil, err
	}

	return s.store.FindByID(ctx, id)
}

// Delete permanently removes the record with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// Search returns the records matching query, newest first. A blank query
// returns the full set (no filter).
func (s *Service) Search(ctx context.Context, query string, skip, limit int) ([]Record, error) {
	if skip < 0 {
		skip = DefaultSkip
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return s.store.List(ctx, strings.TrimSpace(query), skip, limit)
}

// ExportAll returns the full, unfiltered record set for the export writer.
// Read-only: it never mutates state.
func (s *Service) ExportAll(ctx context.Context) ([]Record, error) {
	return s.store.List(ctx, "", 0, 0)
}

// Count returns the number of stored records.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.Count(ctx)
}
