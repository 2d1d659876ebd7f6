// Package core provides the business logic for the record service: the
// Record model, input validation, uniqueness enforcement, and the mapping
// of storage errors to typed outcomes and user-facing messages.
package core

import "time"

// Field length limits enforced on create and update.
const (
	MaxEIDLen     = 50
	MaxNameLen    = 100
	MaxRightsLen  = 50
	MaxStatusLen  = 50
	MaxRemarksLen = 500
)

// Record is the single persisted entity. UpdatedAt carries last-modified
// semantics: set at insert and refreshed on every update.
type Record struct {
	ID        int64     `json:"id"`
	EID       string    `json:"eid"`
	Name      string    `json:"name"`
	Rights    string    `json:"rights"`
	Status    string    `json:"status"`
	Remarks   string    `json:"remarks"`
	UpdatedAt time.Time `json:"timestamp"`
}

// FormattedTime renders UpdatedAt for the HTML listing page.
func (r Record) FormattedTime() string {
	return r.UpdatedAt.Local().Format("2006-01-02 15:04:05")
}

// CreateInput holds the fields a client supplies when creating a record.
type CreateInput struct {
	EID     string `json:"eid"`
	Name    string `json:"name"`
	Rights  string `json:"rights"`
	Status  string `json:"status"`
	Remarks string `json:"remarks"`
}

// UpdateInput holds an explicit optional-field patch. A nil field is left
// untouched; a non-nil field is written as-is. The store builds the UPDATE
// statement from exactly these declared fields, never from reflection.
type UpdateInput struct {
	EID     *string `json:"eid"`
	Name    *string `json:"name"`
	Rights  *string `json:"rights"`
	Status  *string `json:"status"`
	Remarks *string `json:"remarks"`
}

// IsEmpty reports whether the patch supplies no fields at all.
func (u UpdateInput) IsEmpty() bool {
	return u.EID == nil && u.Name == nil && u.Rights == nil && u.Status == nil && u.Remarks == nil
}
