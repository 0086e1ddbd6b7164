package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// JSON is a [Codec] backed by [encoding/json].
type JSON struct {
	// UseNumber decodes numbers into [json.Number] instead of float64
	// when the destination is an interface.
	UseNumber bool
	// DisallowUnknownFields rejects object keys with no matching field.
	DisallowUnknownFields bool
}

func (JSON) ContentType() string { return "application/json" }

func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (j JSON) Unmarshal(data []byte, v any) error {
	d := j.decoder(data)

	if err := d.Decode(v); err != nil {
		return err
	}

	if _, err := d.Token(); !errors.Is(err, io.EOF) {
		return ErrTrailingData
	}

	return nil
}

func (j JSON) Split(data []byte) ([][]byte, error) {
	var raw []json.RawMessage
	if err := j.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if raw == nil {
		return nil, fmt.Errorf("%w: got null", ErrNotSequence)
	}

	elems := make([][]byte, len(raw))
	for i, r := range raw {
		elems[i] = r
	}

	return elems, nil
}

func (j JSON) decoder(data []byte) *json.Decoder {
	d := json.NewDecoder(bytes.NewReader(data))

	if j.UseNumber {
		d.UseNumber()
	}
	if j.DisallowUnknownFields {
		d.DisallowUnknownFields()
	}

	return d
}
