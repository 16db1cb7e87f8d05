// Package core provides the sheet loading and program extraction logic.
//
// # Error Codes Reference
//
// This file maps technical errors to messages shown on the page and in API
// responses. Codes let a user quote the failure when asking for help.
//
// # Fetch Errors (FETCH001-FETCH099)
//
//	FETCH001 - Sheet too large: The spreadsheet export exceeds the size limit
//	           Action: Split the tab or raise SHEETS_MAX_BODY_SIZE
//	           Patterns: "sheet too large"
//
//	FETCH002 - Fetch timeout: The spreadsheet host did not answer in time
//	           Action: Please try again in a few moments
//	           Patterns: "context deadline exceeded", "timeout"
//
//	FETCH003 - Fetch busy: Too many sheet downloads are running
//	           Action: Please wait a moment and try again
//	           Patterns: "too many concurrent fetches"
//
//	FETCH004 - Fetch failed: The spreadsheet could not be downloaded
//	           Action: Check that the sheet is published to the web
//	           Patterns: "failed to fetch"
//
//	FETCH005 - Cancelled: The request was cancelled
//	           Action: Please try again
//	           Patterns: "context canceled"
//
// # Sheet Errors (SHEET001-SHEET099)
//
//	SHEET001 - Sheet not found: No sheet has that name
//	           Patterns: "sheet not found"
//
//	SHEET002 - Tab out of range: No tab has that index
//	           Patterns: "tab out of range"
//
//	SHEET003 - Not loaded: Sheets have not been loaded yet
//	           Patterns: "no sheets loaded"
//
// # Snapshot Errors (SNAP001-SNAP099)
//
//	SNAP001 - Snapshot not found: No stored copy of the sheet exists
//	          Patterns: "snapshot not found"
//
//	SNAP002 - Snapshot store: The snapshot store could not be reached
//	          Patterns: "snapshot store"
//
//	SNAP003 - History disabled: No snapshot store is configured
//	          Patterns: "snapshot history disabled"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Body too large: The submitted text is too large
//	         Patterns: "request body too large"
//
//	REQ002 - Invalid request: The request could not be read
//	         Patterns: "invalid request"
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no pattern matches. The original error is in the logs.
//
// Patterns are matched case-insensitively using strings.Contains and the
// first match wins, so specific patterns come before general ones.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: "failed to fetch x: sheet too large" must map to
// FETCH001, not FETCH004.
var errorPatterns = []errorPattern{
	// Fetch
	{
		pattern: "sheet too large",
		msg: UserMessage{
			Message: "The spreadsheet export exceeds the size limit",
			Action:  "Split the tab or raise SHEETS_MAX_BODY_SIZE",
			Code:    "FETCH001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "The spreadsheet host did not answer in time",
			Action:  "Please try again in a few moments",
			Code:    "FETCH002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "The spreadsheet host did not answer in time",
			Action:  "Please try again in a few moments",
			Code:    "FETCH002",
		},
	},
	{
		pattern: "too many concurrent fetches",
		msg: UserMessage{
			Message: "Too many sheet downloads are running",
			Action:  "Please wait a moment and try again",
			Code:    "FETCH003",
		},
	},
	{
		pattern: "failed to fetch",
		msg: UserMessage{
			Message: "The spreadsheet could not be downloaded",
			Action:  "Check that the sheet is published to the web",
			Code:    "FETCH004",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "The request was cancelled",
			Action:  "Please try again",
			Code:    "FETCH005",
		},
	},

	// Sheets
	{
		pattern: "sheet not found",
		msg: UserMessage{
			Message: "No sheet has that name",
			Action:  "Pick one of the tabs on the page",
			Code:    "SHEET001",
		},
	},
	{
		pattern: "tab out of range",
		msg: UserMessage{
			Message: "No tab has that index",
			Action:  "Pick one of the tabs on the page",
			Code:    "SHEET002",
		},
	},
	{
		pattern: "no sheets loaded",
		msg: UserMessage{
			Message: "Sheets have not been loaded yet",
			Action:  "Please wait for the first refresh to finish",
			Code:    "SHEET003",
		},
	},

	// Snapshots
	{
		pattern: "snapshot not found",
		msg: UserMessage{
			Message: "No stored copy of this sheet exists",
			Action:  "Refresh the sheets to create one",
			Code:    "SNAP001",
		},
	},
	{
		pattern: "snapshot store",
		msg: UserMessage{
			Message: "The snapshot store could not be reached",
			Action:  "Please try again or contact support",
			Code:    "SNAP002",
		},
	},
	{
		pattern: "snapshot history disabled",
		msg: UserMessage{
			Message: "Snapshot history is not enabled",
			Action:  "Set STORE_DRIVER to keep sheet history",
			Code:    "SNAP003",
		},
	},

	// Requests
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "The submitted text is too large",
			Action:  "Submit a smaller document",
			Code:    "REQ001",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "The request could not be read",
			Action:  "Check the request body and try again",
			Code:    "REQ002",
		},
	},

	// Rate limiting
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. If no
// pattern matches, the ERR000 fallback is returned.
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

// IsUserFacing reports whether err matches a known pattern.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
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
