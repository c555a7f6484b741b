package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Error is the application error envelope. Code is the HTTP status the error
// maps to; Message is safe to return to clients. The wrapped cause never
// leaves the process.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with no wrapped cause.
func New(code int, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches an underlying cause to a client-safe message.
func Wrap(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// HandleError normalizes any error into the uniform JSON envelope. Unknown
// errors become a generic 500 so internals never leak to clients.
func HandleError(w http.ResponseWriter, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = &Error{Code: http.StatusInternalServerError, Message: "Internal server error"}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Code)
	json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": appErr.Message,
	})
}
