package discogs

import (
	"errors"
	"fmt"
)

var (
	ErrMissingVerifier  = errors.New("missing oauth verifier")
	ErrVerifierRejected = errors.New("oauth verifier rejected by upstream")
)

// UpstreamError reports a failed call to Discogs: a non-2xx status, or a 2xx
// response whose body is missing required fields. It is not locally
// recoverable and is surfaced to the caller unchanged.
type UpstreamError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("discogs %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
}
