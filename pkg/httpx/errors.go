package httpx

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is matched by every *MalformedResponseError.
var ErrMalformedResponse = errors.New("malformed response")

// RemoteCallError is returned when a response status is neither a success
// code nor one of the codes the caller excluded.
type RemoteCallError struct {
	StatusCode int
	// Body is the complete response body.
	Body string
}

func (e *RemoteCallError) Error() string {
	return fmt.Sprintf("remote call failed with status %d: %s", e.StatusCode, e.Body)
}

// MalformedResponseError is returned when a successful response does not
// match the expected schema.
type MalformedResponseError struct {
	Reason string
	Body   string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMalformedResponse, e.Reason)
}

func (e *MalformedResponseError) Unwrap() error {
	return ErrMalformedResponse
}

// StatusCode returns the status of a RemoteCallError found in err's chain.
func StatusCode(err error) (int, bool) {
	var remoteErr *RemoteCallError
	if errors.As(err, &remoteErr) {
		return remoteErr.StatusCode, true
	}
	return 0, false
}
