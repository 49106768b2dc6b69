package core

// error_messages.go maps request-level failures to user-facing messages.
//
// Each message carries a code users can quote to support. Validation problems
// are not errors in this sense: they travel inside ValidationResult and never
// reach MapError.
//
// # Store Errors (DB001-DB099)
//
//	DB001 - Duplicate key: A batch with this ID already exists
//	        Patterns: "duplicate key", "unique constraint"
//
//	DB004 - Connection refused: Unable to reach the record store
//	        Patterns: "connection refused"
//
//	DB005 - Connection reset: Store connection was interrupted
//	        Patterns: "connection reset"
//
//	DB006 - Timeout: Operation timed out
//	        Patterns: "timeout"
//
//	DB007 - Busy: Store was busy with conflicting operations
//	        Patterns: "deadlock", "database is locked"
//
//	DB008 - Store unavailable: Saving the batch failed
//	        Sentinel: ErrStore
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL007 - No records: The import carried no rows
//	         Sentinel: ErrNoRecords
//
//	VAL008 - Bad request body: The request could not be decoded
//	         Sentinel: ErrBadRequest
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: File exceeds the upload size limit
//	          Sentinel: ErrFileTooLarge
//
//	FILE004 - No file: No file was selected
//	          Sentinel: ErrNoFile
//
//	FILE006 - Unsupported file: Only CSV uploads are accepted
//	          Sentinel: ErrUnsupportedFile
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: Too many uploads in progress
//	         Sentinel: ErrTooManyUploads
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout: Request timed out
//	         Patterns: "context deadline exceeded"
//
// # Schema Errors (TBL001-TBL099)
//
//	TBL002 - Unknown data type: No schema is registered under that key
//	         Sentinel: ErrUnknownDataType
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//
// # Matching
//
// Sentinels are checked first with errors.Is, so wrapped errors keep their
// code. Remaining errors are matched case-insensitively by substring, first
// match wins.

import (
	"errors"
	"fmt"
	"strings"
)

// Request-level failures. Wrap them with fmt.Errorf("...: %w", err).
var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrNoFile          = errors.New("no file provided")
	ErrUnknownDataType = errors.New("unknown data type")
	ErrNoRecords       = errors.New("no records provided")
	ErrTooManyUploads  = errors.New("too many uploads in progress")
	ErrBadRequest      = errors.New("malformed request")
	ErrStore           = errors.New("record store failure")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

// sentinelMessages is consulted before the pattern table.
var sentinelMessages = []sentinelMessage{
	{ErrFileTooLarge, UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Split the file into smaller chunks",
		Code:    "FILE001",
	}},
	{ErrNoFile, UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to upload",
		Code:    "FILE004",
	}},
	{ErrUnsupportedFile, UserMessage{
		Message: "Only CSV files can be uploaded",
		Action:  "Export your data as comma-separated text and try again",
		Code:    "FILE006",
	}},
	{ErrUnknownDataType, UserMessage{
		Message: "Unknown data type",
		Action:  "Choose one of the data types listed by /api/schemas",
		Code:    "TBL002",
	}},
	{ErrNoRecords, UserMessage{
		Message: "No records to import",
		Action:  "Upload a file with at least one data row",
		Code:    "VAL007",
	}},
	{ErrBadRequest, UserMessage{
		Message: "The request could not be read",
		Action:  "Check the request body and try again",
		Code:    "VAL008",
	}},
	{ErrTooManyUploads, UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
	}},
	{ErrStore, UserMessage{
		Message: "Records could not be saved",
		Action:  "Please try again in a few moments",
		Code:    "DB008",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// Specific patterns must come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "duplicate key",
		msg: UserMessage{
			Message: "A batch with this ID already exists",
			Action:  "Retry the import",
			Code:    "DB001",
		},
	},
	{
		pattern: "unique constraint",
		msg: UserMessage{
			Message: "A batch with this ID already exists",
			Action:  "Retry the import",
			Code:    "DB001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the record store",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "connection reset",
		msg: UserMessage{
			Message: "Store connection was interrupted",
			Action:  "Please try again",
			Code:    "DB005",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try uploading a smaller file or check your connection",
			Code:    "UPL005",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Operation timed out",
			Action:  "Try uploading a smaller file or try again later",
			Code:    "DB006",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "Store was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "Store was busy with conflicting operations",
			Action:  "Please try again",
			Code:    "DB007",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
// Support staff should check the logs for the technical error.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
//	err := fmt.Errorf("upload q3.csv: %w", ErrFileTooLarge)
//	msg := MapError(err)
//	// msg.Code == "FILE001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error (for logs) with its user message.
type UserError struct {
	Technical error
	User      UserMessage
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err and keeps the original for logging. Returns nil for nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
