package contact

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ValidationError is a submission missing one of its fields. It is the only
// failure the visitor is told about.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 0 {
		return "missing fields"
	}
	return "missing fields: " + strings.Join(e.Problems, "; ")
}

// PersistenceError means the message was not stored. No email was sent.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store contact message: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationError means the message was stored as MessageID but the
// operator was not notified.
type NotificationError struct {
	MessageID string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notify about contact message %s: %v", e.MessageID, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// StatusCode maps a Submit error to the HTTP status returned to the visitor.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
