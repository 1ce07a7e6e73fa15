package codec

// Marshaler encodes request bodies before they are sent to the service.
type Marshaler interface {
	Marshal(v any) ([]byte, error)
}

// Unmarshaler decodes response bodies received from the service.
type Unmarshaler interface {
	Unmarshal(data []byte, dst any) error
}
