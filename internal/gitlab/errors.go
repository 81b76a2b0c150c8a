package gitlab

import (
	"fmt"
	"net/http"
)

const (
	authenticationErrorTemplateConstant  = "instance %s rejected the configured token with status %d"
	remoteErrorTemplateConstant          = "instance %s returned unexpected status %d for page %d"
	transientStatusErrorTemplateConstant = "transient status %d"
	fetchExhaustedErrorTemplateConstant  = "instance %s: page %d still failing after %d attempts: %v"
)

// AuthenticationError reports a 401 or 403 response. It is never retried.
type AuthenticationError struct {
	Instance   string
	StatusCode int
}

// Error describes the authentication failure.
func (authenticationError *AuthenticationError) Error() string {
	return fmt.Sprintf(authenticationErrorTemplateConstant, authenticationError.Instance, authenticationError.StatusCode)
}

// RemoteError reports a non-transient, non-authentication HTTP failure. It is
// never retried.
type RemoteError struct {
	Instance   string
	StatusCode int
	PageNumber int
}

// Error describes the remote failure.
func (remoteError *RemoteError) Error() string {
	return fmt.Sprintf(remoteErrorTemplateConstant, remoteError.Instance, remoteError.StatusCode, remoteError.PageNumber)
}

// TransientStatusError reports a retryable HTTP status (429, 500, 502, 503,
// 504). It never escapes the page fetcher directly; after retries run out it
// is wrapped inside a FetchExhaustedError.
type TransientStatusError struct {
	StatusCode int
}

// Error describes the transient failure.
func (transientError *TransientStatusError) Error() string {
	return fmt.Sprintf(transientStatusErrorTemplateConstant, transientError.StatusCode)
}

// FetchExhaustedError reports that a page kept failing transiently until the
// configured retry budget ran out. The affected instance yields no results.
type FetchExhaustedError struct {
	Instance   string
	PageNumber int
	Attempts   int
	Cause      error
}

// Error describes the exhausted retry budget.
func (exhaustedError *FetchExhaustedError) Error() string {
	return fmt.Sprintf(fetchExhaustedErrorTemplateConstant, exhaustedError.Instance, exhaustedError.PageNumber, exhaustedError.Attempts, exhaustedError.Cause)
}

// Unwrap exposes the final transient failure.
func (exhaustedError *FetchExhaustedError) Unwrap() error {
	return exhaustedError.Cause
}

var transientStatusCodes = map[int]struct{}{
	http.StatusTooManyRequests:     {},
	http.StatusInternalServerError: {},
	http.StatusBadGateway:          {},
	http.StatusServiceUnavailable:  {},
	http.StatusGatewayTimeout:      {},
}

func isTransientStatus(statusCode int) bool {
	_, transient := transientStatusCodes[statusCode]
	return transient
}
