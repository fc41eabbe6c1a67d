package activitypub

import (
	"errors"
	"fmt"
)

// Common errors for the activitypub package.
var (
	// ErrInvalidURL indicates the request URL could not be parsed.
	ErrInvalidURL = errors.New("invalid url")
	// ErrInvalidBody indicates the response body is not valid JSON.
	ErrInvalidBody = errors.New("invalid response body")
	// ErrBodyTooLarge indicates the response exceeded the size limit.
	ErrBodyTooLarge = errors.New("response too large")
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("activitypub request failed: %d %s", e.StatusCode, e.Status)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
