package core

import (
	"errors"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "duplicate key maps to DB001",
			err:      errors.New("ERROR: duplicate key value violates unique constraint"),
			wantCode: "DB001",
		},
		{
			name:     "sentinel duplicate maps to DB001",
			err:      ErrDuplicateEID,
			wantCode: "DB001",
		},
		{
			name:     "unique constraint maps to DB002",
			err:      errors.New("UNIQUE constraint failed: records.eid"),
			wantCode: "DB002",
		},
		{
			name:     "connection refused maps to DB004",
			err:      errors.New("dial tcp 127.0.0.1:5432: connection refused"),
			wantCode: "DB004",
		},
		{
			name:     "connection reset maps to DB005",
			err:      errors.New("read tcp: connection reset by peer"),
			wantCode: "DB005",
		},
		{
			name:     "deadline exceeded maps to DB006",
			err:      errors.New("context deadline exceeded"),
			wantCode: "DB006",
		},
		{
			name:     "unknown error falls back to ERR000",
			err:      errors.New("something odd happened"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("expected empty string for nil error, got %q", got)
	}

	got := FormatUserError(errors.New("connection refused"))
	want := "Unable to connect to database (Code: DB004). Please try again in a few moments"
	if got != want {
		t.Errorf("FormatUserError = %q, want %q", got, want)
	}
}
