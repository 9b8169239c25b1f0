package api

import "fmt"

// RequestError reports a non-OK HTTP outcome: either a status the policy
// never retries, or the rate-ban status after retries ran out.
type RequestError struct {
	Status int
	Path   string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("unexpected status code %d for %s", e.Status, e.Path)
}

// NetworkError reports a transport-level failure with no HTTP response
// behind it (DNS, refused connection, timeout, truncated body).
type NetworkError struct {
	Path string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request for %s failed: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}
