package httpclient

import "fmt"

// StatusError indicates a non-success HTTP status from an upstream service.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.StatusCode, e.URL)
}

// IsServerError reports whether the error is a 5xx upstream failure.
func IsServerError(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.StatusCode >= 500
}
