package constants

import "time"

var (
	WebsocketScheme       = "ws"
	WebsocketSecureScheme = "wss"
	HTTPScheme            = "http"
	HTTPSecureScheme      = "https"
)

const (
	// DefaultHTTPTimeout bounds a single REST round trip.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultWSTimeout bounds waiting for an acknowledgement frame on
	// the event stream.
	DefaultWSTimeout = 30 * time.Second

	// RequestIDLength is the length of generated request correlation IDs.
	RequestIDLength = 16
)
