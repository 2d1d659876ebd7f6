package core

// errors.go defines the typed outcomes of service operations and the
// user-friendly message catalog for storage errors.
//
// Error codes are grouped by category:
//
//	DB001 - Duplicate key: a record with this EID already exists
//	DB002 - Unique constraint: this value must be unique but already exists
//	DB004 - Connection refused: unable to connect to the database
//	DB005 - Connection reset: database connection was interrupted
//	DB006 - Timeout: operation timed out
//	ERR000 - Fallback for anything unrecognized
//
// Handlers quote the code in responses so users can reference it when
// reporting a problem.

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors surfaced by the store and the service. Handlers map these
// to HTTP statuses; nothing below the handler layer logs them.
var (
	// ErrNotFound means no record matched the requested id.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEID means the EID is already held by another record,
	// detected either by the service pre-check or by the storage-level
	// unique constraint backstop.
	ErrDuplicateEID = errors.New("eid already exists")

	// ErrNoFields means an update supplied no fields to change.
	ErrNoFields = errors.New("no fields provided for update")
)

// ValidationError reports a malformed or missing input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// UserMessage is a user-friendly rendering of a technical error.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps substrings of driver error text to user messages.
// Order matters: first match wins.
var errorPatterns = []errorPattern{
	{"duplicate key", UserMessage{
		Code:    "DB001",
		Message: "A record with this EID already exists",
		Action:  "Choose a different EID",
	}},
	{"already exists", UserMessage{
		Code:    "DB001",
		Message: "A record with this EID already exists",
		Action:  "Choose a different EID",
	}},
	{"unique constraint", UserMessage{
		Code:    "DB002",
		Message: "This value must be unique but already exists",
		Action:  "Check for an existing record with the same value",
	}},
	{"connection refused", UserMessage{
		Code:    "DB004",
		Message: "Unable to connect to database",
		Action:  "Please try again in a few moments",
	}},
	{"connection reset", UserMessage{
		Code:    "DB005",
		Message: "Database connection was interrupted",
		Action:  "Please try again",
	}},
	{"timeout", UserMessage{
		Code:    "DB006",
		Message: "Operation timed out",
		Action:  "Please try again later",
	}},
	{"deadline exceeded", UserMessage{
		Code:    "DB006",
		Message: "Operation timed out",
		Action:  "Please try again later",
	}},
}

var defaultMessage = UserMessage{
	Code:    "ERR000",
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support with the error code",
}

// MapError converts a technical error into a user-friendly message.
// Returns the zero UserMessage for nil errors.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display:
// "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
