package connection

import (
	"fmt"
	"net/url"
	"os"

	"github.com/plankhq/plank.go/internal/codec"
	"github.com/plankhq/plank.go/pkg/logger"
)

// Config carries everything a connection needs: the service endpoint,
// credentials and the ambient codec and logger.
type Config struct {
	URL     url.URL
	BaseURL string

	// Key identifies the application, Token the acting member. Both are
	// attached to every request as query parameters.
	Key   string
	Token string

	Marshaler   codec.Marshaler
	Unmarshaler codec.Unmarshaler
	Logger      logger.Logger
}

// NewConfig creates a Config for the service endpoint at u, such as
// "https://api.plank.example". It is not absolutely necessary to build
// a Config through this function, but it wires the JSON codec and a
// default logger so the connection is usable as-is.
func NewConfig(u *url.URL, key, token string) *Config {
	c := codec.JSON{}
	return &Config{
		URL:         *u,
		BaseURL:     fmt.Sprintf("%s://%s", u.Scheme, u.Host),
		Key:         key,
		Token:       token,
		Marshaler:   c,
		Unmarshaler: c,
		Logger:      logger.New(os.Stderr),
	}
}
