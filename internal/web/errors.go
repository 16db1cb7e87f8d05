package web

// errors.go turns handler errors into responses.
//
// The technical error is logged with the request ID; the client receives the
// mapped user message. API routes and JSON clients get an ErrorResponse,
// browsers get the error alert inside a page.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/proker/internal/core"
	"github.com/JonMunkholm/proker/internal/logging"
	"github.com/JonMunkholm/proker/internal/store"
	"github.com/JonMunkholm/proker/internal/web/templates"
)

var (
	errRateLimited = errors.New("rate limit exceeded")
	errInvalidTab  = errors.New("invalid request: tab must be a non-negative integer")
	errEmptyBody   = errors.New("invalid request: empty body")
)

// ErrorResponse is the JSON body of an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped user message with status.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	userMsg := core.MapError(err)

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, status)
		return
	}
	respondErrorHTML(w, r, userMsg, status)
}

// statusFor picks the HTTP status for err, or fallback when err has no
// specific status.
func statusFor(err error, fallback int) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, errInvalidTab), errors.Is(err, errEmptyBody):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrTabOutOfRange),
		errors.Is(err, core.ErrSheetNotFound),
		errors.Is(err, core.ErrSnapshotNotFound),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, core.ErrNoSnapshotStore):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNotLoaded), errors.Is(err, core.ErrTooManyFetches):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return fallback
	}
}

func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, status int) {
	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error alert", "error", err)
	}
}

// wantsJSON reports whether the client should get a JSON error.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
