package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound matches a RemoteError carrying HTTP 404, so callers can write
// errors.Is(err, api.ErrNotFound) without inspecting status codes.
var ErrNotFound = errors.New("not found")

// NetworkError reports a transport-level failure: the request never produced
// an HTTP response. Timeout is set when the request exceeded its deadline.
type NetworkError struct {
	Op      string
	Err     error
	Timeout bool
}

func (e *NetworkError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: request timed out: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// RemoteError reports a non-2xx response from the backend. Detail is the
// structured detail field from the response body when present, otherwise a
// generic message.
type RemoteError struct {
	Status int
	Detail string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error %d: %s", e.Status, e.Detail)
}

func (e *RemoteError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// IsTimeout reports whether err is a NetworkError caused by the per-request
// deadline.
func IsTimeout(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) && ne.Timeout
}
