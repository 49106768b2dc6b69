package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil error returns empty", err: nil, wantCode: ""},
		{name: "wrapped file too large", err: fmt.Errorf("upload q3.csv: %w", ErrFileTooLarge), wantCode: "FILE001"},
		{name: "no file", err: ErrNoFile, wantCode: "FILE004"},
		{name: "unsupported file", err: fmt.Errorf("%w: report.pdf", ErrUnsupportedFile), wantCode: "FILE006"},
		{name: "unknown data type", err: fmt.Errorf("%w: %q", ErrUnknownDataType, "x"), wantCode: "TBL002"},
		{name: "no records", err: ErrNoRecords, wantCode: "VAL007"},
		{name: "bad request", err: fmt.Errorf("%w: unexpected EOF", ErrBadRequest), wantCode: "VAL008"},
		{name: "busy", err: fmt.Errorf("upload a.csv: %w", ErrTooManyUploads), wantCode: "UPL002"},
		{name: "store sentinel wins over pattern", err: fmt.Errorf("save: %w: %w", ErrStore, errors.New("duplicate key")), wantCode: "DB008"},
		{name: "duplicate key", err: errors.New("pq: duplicate key value violates unique constraint"), wantCode: "DB001"},
		{name: "unique constraint", err: errors.New("UNIQUE constraint failed: import_batches.file_name"), wantCode: "DB001"},
		{name: "connection refused", err: errors.New("dial tcp: connection refused"), wantCode: "DB004"},
		{name: "connection reset", err: errors.New("read: connection reset by peer"), wantCode: "DB005"},
		{name: "cancelled", err: context.Canceled, wantCode: "UPL004"},
		{name: "deadline before timeout", err: errors.New("context deadline exceeded (timeout)"), wantCode: "UPL005"},
		{name: "timeout", err: errors.New("i/o timeout"), wantCode: "DB006"},
		{name: "sqlite busy", err: errors.New("database is locked (5) (SQLITE_BUSY)"), wantCode: "DB007"},
		{name: "rate limit", err: errors.New("rate limit exceeded"), wantCode: "RATE001"},
		{name: "case insensitive", err: errors.New("DUPLICATE KEY value"), wantCode: "DB001"},
		{name: "unknown error returns default", err: errors.New("some random internal error"), wantCode: "ERR000"},
		{name: "empty input is not an error code", err: errors.New("empty file"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.wantCode)
			}
			if tt.err != nil && (got.Message == "" || got.Action == "") {
				t.Errorf("MapError(%v) has empty message or action: %+v", tt.err, got)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}

	got := FormatUserError(ErrNoFile)
	want := "No file was selected (Code: FILE004). Please select a CSV file to upload"
	if got != want {
		t.Errorf("FormatUserError = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("boom"), false},
		{ErrTooManyUploads, true},
		{errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		if got := IsUserFacing(tt.err); got != tt.want {
			t.Errorf("IsUserFacing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestNewUserError(t *testing.T) {
	if NewUserError(nil) != nil {
		t.Fatal("NewUserError(nil) should be nil")
	}

	inner := fmt.Errorf("upload: %w", ErrFileTooLarge)
	ue := NewUserError(inner)
	if ue.Error() != "File exceeds the maximum upload size" {
		t.Errorf("Error() = %q", ue.Error())
	}
	if !errors.Is(ue, ErrFileTooLarge) {
		t.Error("UserError should unwrap to the technical error")
	}
	if ue.User.Code != "FILE001" {
		t.Errorf("Code = %q, want FILE001", ue.User.Code)
	}
}
