package shopassist

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors matched by APIError via errors.Is.
var (
	ErrInvalidRequest = errors.New("shopassist: invalid request")
	ErrUnauthorized   = errors.New("shopassist: unauthorized")
	ErrServer         = errors.New("shopassist: server error")
)

// APIError is a non-2xx response. Reply carries the server's displayable
// message when the body had one.
type APIError struct {
	StatusCode int
	Reply      string
}

func (e *APIError) Error() string {
	if e.Reply != "" {
		return fmt.Sprintf("shopassist: status %d: %s", e.StatusCode, e.Reply)
	}
	return fmt.Sprintf("shopassist: status %d", e.StatusCode)
}

// Is maps the status code onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrInvalidRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrServer:
		return e.StatusCode >= http.StatusInternalServerError
	}
	return false
}
