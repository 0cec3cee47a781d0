package api

import (
	"errors"
	"fmt"
)

// StatusError reports a non-success response from the backend.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Code)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Message)
}

// IsNotFound reports whether err is a backend 404. The auth bootstrap treats
// a 404 on the profile endpoint as "account not yet provisioned".
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == 404
}

// Status returns the HTTP status carried by err, or 0 when err is not a
// StatusError.
func Status(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
