package connection

import (
	"context"
	"net/url"
)

// Connection is the transport used by the SDK to reach the service.
// There is one production implementation, HTTPConnection; tests swap in
// fakes.
type Connection interface {
	Connect(ctx context.Context) error
	Close() error
	// Do performs one REST call and, when dest is non-nil, decodes the
	// response body into it.
	Do(ctx context.Context, req *Request, dest any) error
}

// Request describes one REST call against the service.
type Request struct {
	// Method is the HTTP method. Defaults to GET when empty.
	Method string
	// Path is the endpoint path, e.g. "/1/boards/560bf4298b3dda300c18d09c".
	Path string
	// Query holds endpoint parameters such as fields selections.
	// Credentials are attached by the connection, not the caller.
	Query url.Values
	// Body, when non-nil, is encoded with the connection's marshaler.
	Body any
}
