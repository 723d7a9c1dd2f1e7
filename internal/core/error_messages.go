package core

// error_messages.go maps technical errors to user messages with support codes.
//
// Codes are grouped by category:
//
//	FILE001 - File too large          Patterns: "file too large"
//	FILE002 - Invalid workbook        Patterns: "invalid workbook"
//	FILE003 - Invalid CSV             Patterns: "invalid csv"
//	FILE004 - No file                 Patterns: "no file provided"
//	FILE005 - Empty file              Patterns: "empty file"
//	FILE006 - Unsupported file type   Patterns: "unsupported file type"
//
//	UPL001  - System busy             Patterns: "too many concurrent uploads"
//	UPL002  - Request cancelled       Patterns: "context canceled"
//	UPL003  - Request timeout         Patterns: "context deadline exceeded"
//
//	VAL001  - Input required          Patterns: "input is required"
//	VAL002  - Input too long          Patterns: "input too long"
//
//	REQ001  - Malformed request       Patterns: "invalid json"
//	REQ002  - Request too large       Patterns: "request body too large"
//	REQ003  - Unauthorized            Patterns: "invalid api key"
//	REQ004  - Malformed form          Patterns: "invalid form"
//
//	TBL001  - Unknown table           Patterns: "unknown table"
//	RATE001 - Rate limited            Patterns: "rate limit"
//
//	ERR000  - Unknown error (fallback; check the logs for the technical error)
//
// Patterns are matched case-insensitively with strings.Contains and the first
// match wins, so specific patterns come before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	// File errors
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum upload size",
			Action:  "Remove unused sheets or rows and upload again",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid workbook",
		msg: UserMessage{
			Message: "File is not a valid Excel workbook",
			Action:  "Save the master file as .xlsx and upload again",
			Code:    "FILE002",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not a valid CSV",
			Action:  "Ensure the file is comma-separated with a header row",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select an HSN/SAC master workbook to upload",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "The uploaded file is empty",
			Action:  "Upload a workbook with HSN and SAC sheets",
			Code:    "FILE005",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Only .xlsx workbooks are accepted",
			Action:  "Save the master file as .xlsx and upload again",
			Code:    "FILE006",
		},
	},

	// Upload errors
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "System is busy processing other uploads",
			Action:  "Please wait a moment and try again",
			Code:    "UPL001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL003",
		},
	},

	// Validation errors
	{
		pattern: "input is required",
		msg: UserMessage{
			Message: "No codes were entered",
			Action:  "Enter one or more HSN or SAC codes separated by commas",
			Code:    "VAL001",
		},
	},
	{
		pattern: "input too long",
		msg: UserMessage{
			Message: "Input is too long",
			Action:  "Split the codes into several smaller requests",
			Code:    "VAL002",
		},
	},

	// Request errors
	{
		pattern: "invalid json",
		msg: UserMessage{
			Message: "Request body is not valid JSON",
			Action:  `Send a body like {"input": "1001, 9954"}`,
			Code:    "REQ001",
		},
	},
	{
		pattern: "invalid form",
		msg: UserMessage{
			Message: "The form could not be read",
			Action:  "Reload the page and try again",
			Code:    "REQ004",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Request body is too large",
			Action:  "Send fewer codes per request",
			Code:    "REQ002",
		},
	},
	{
		pattern: "invalid api key",
		msg: UserMessage{
			Message: "Missing or invalid API key",
			Action:  "Provide a valid key in the X-API-Key header",
			Code:    "REQ003",
		},
	},

	// Table and rate errors
	{
		pattern: "unknown table",
		msg: UserMessage{
			Message: "Unknown reference table",
			Action:  "This table type is not configured",
			Code:    "TBL001",
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

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It searches through known error patterns (case-insensitive) and returns
// the first match. If no pattern matches, the ERR000 fallback is returned.
//
// Example:
//
//	msg := MapError(ErrEmptyFile)
//	// msg.Code == "FILE005"
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

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// generic ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with the message shown to users.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
