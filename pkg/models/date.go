package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the timestamp format the service emits: RFC3339 with
// millisecond precision, always UTC.
const Layout = "2006-01-02T15:04:05.000Z"

// Date is a service timestamp. The zero Date marshals as JSON null,
// which is how the service represents an unset due date.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: t.UTC()}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.UTC().Format(Layout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid date %s", string(data))
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		// some endpoints omit the milliseconds
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", s, err)
		}
	}
	*d = NewDate(t)
	return nil
}
