package server

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// jsonCodec marshals the plain Go message structs of this package. Connect's
// built-in JSON codec only accepts protobuf messages.
type jsonCodec struct {
	name string
}

func (c jsonCodec) Name() string {
	return c.name
}

func (c jsonCodec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (c jsonCodec) Unmarshal(data []byte, msg any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(msg); err != nil {
		return fmt.Errorf("decode %T: %w", msg, err)
	}
	return nil
}

var (
	// JSONCodec serves the "application/json" content type.
	JSONCodec = jsonCodec{name: "json"}

	jsonCharsetCodec = jsonCodec{name: "json; charset=utf-8"}
)
