package codec

import (
	"encoding/json"
	"errors"
	"fmt"
)

func init() {
	Register("json", NewJSONCodec)
}

type jsonCodecImpl struct{}

// NewJSONCodec creates a new codec for the JSON format. The output is
// indented so store files stay readable and hand-editable. This is the
// default codec.
func NewJSONCodec() ICodec {
	return &jsonCodecImpl{}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see interface.go)
// --------------------------------------------------------------------------

func (c *jsonCodecImpl) Name() string {
	return "json"
}

func (c *jsonCodecImpl) Encode(entries map[string]any) ([]byte, error) {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		var typeErr *json.UnsupportedTypeError
		var valueErr *json.UnsupportedValueError
		var marshalerErr *json.MarshalerError
		if errors.As(err, &typeErr) || errors.As(err, &valueErr) || errors.As(err, &marshalerErr) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return nil, err
	}
	return append(data, '\n'), nil
}

func (c *jsonCodecImpl) Decode(data []byte) (map[string]any, error) {
	var entries map[string]any
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	// json.Unmarshal accepts a top-level "null" without filling the map,
	// treat it like any other non-object document
	if entries == nil {
		return nil, errors.New("document is not a JSON object")
	}
	return entries, nil
}
