package codec

import "encoding/json"

// JSON is the wire codec used for all REST calls. The service speaks
// plain JSON, so this is a thin wrapper around encoding/json that
// satisfies both Marshaler and Unmarshaler.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, dst any) error {
	return json.Unmarshal(data, dst)
}
