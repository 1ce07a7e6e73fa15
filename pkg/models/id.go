package models

import (
	"fmt"
	"strconv"
	"time"
)

// ID is a remote object identifier: 24 lowercase hex characters. The
// leading 8 characters encode the object's creation time as unix
// seconds, which Time recovers without a round trip to the service.
type ID string

const idLength = 24

// ParseID validates s and returns it as an ID.
func ParseID(s string) (ID, error) {
	id := ID(s)
	if err := id.Validate(); err != nil {
		return "", err
	}
	return id, nil
}

func (id ID) Validate() error {
	if len(id) != idLength {
		return fmt.Errorf("invalid object id %q: want %d characters, got %d", string(id), idLength, len(id))
	}
	for _, r := range id {
		if (r < '0' || r > '9') && (r < 'a' || r > 'f') {
			return fmt.Errorf("invalid object id %q: non-hex character %q", string(id), r)
		}
	}
	return nil
}

func (id ID) IsZero() bool {
	return id == ""
}

// Time returns the creation time encoded in the identifier.
func (id ID) Time() (time.Time, error) {
	if err := id.Validate(); err != nil {
		return time.Time{}, err
	}
	secs, err := strconv.ParseInt(string(id[:8]), 16, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid object id %q: %w", string(id), err)
	}
	return time.Unix(secs, 0).UTC(), nil
}

func (id ID) String() string {
	return string(id)
}
