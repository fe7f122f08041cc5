package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Error — неуспешный вызов API: либо ответ не-2xx, либо сбой транспорта (StatusCode == 0).
type Error struct {
	StatusCode int
	Message    string // сообщение сервера из конверта, может быть пустым
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode == 0 && e.Err != nil:
		return fmt.Sprintf("network error: %v", e.Err)
	case e.Message != "":
		return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("server returned status %d", e.StatusCode)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// NotFound reports whether the server answered 404.
func (e *Error) NotFound() bool { return e.StatusCode == http.StatusNotFound }

// IsNotFound reports whether err is an *Error with status 404.
func IsNotFound(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.NotFound()
}

// Message picks the text shown to the user: the server-provided message,
// the error text for non-API errors, or fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	if s := err.Error(); s != "" {
		return s
	}
	return fallback
}
