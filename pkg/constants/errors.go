package constants

import "errors"

// Errors
var (
	ErrInvalidResponse = errors.New("invalid service response")
	ErrNotFound        = errors.New("resource not found")
	ErrUnauthorized    = errors.New("invalid or missing credentials")
	ErrRateLimited     = errors.New("rate limited by the service")
)

var (
	ErrIDInUse            = errors.New("id already in use")
	ErrTimeout            = errors.New("timeout")
	ErrNoBaseURL          = errors.New("base url not set")
	ErrNoMarshaler        = errors.New("marshaler is not set")
	ErrNoUnmarshaler      = errors.New("unmarshaler is not set")
	ErrNoCredentials      = errors.New("api key or member token not set")
	ErrClosed             = errors.New("connection closed")
	ErrMethodNotAvailable = errors.New("method not available on this connection")
)
