package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound matches failures where the server answered 404
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized matches failures where the server rejected the token or credentials
	ErrUnauthorized = errors.New("unauthorized")
)

// OperationError is the single failure signal of every gateway call. Status is
// zero when the request never got a response.
type OperationError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *OperationError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s failed: %s", e.Op, e.Message)
	}
	return fmt.Sprintf("%s failed (%d): %s", e.Op, e.Status, e.Message)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the status-derived sentinels
func (e *OperationError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	}
	return false
}

// Message returns the human-readable text of err, unwrapping an OperationError when present
func Message(err error) string {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr.Message
	}
	return err.Error()
}
