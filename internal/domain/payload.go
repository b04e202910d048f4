package domain

import (
	"encoding/json"
	"fmt"
)

// Payload is an opaque JSON document. Handler configs, handler results
// and notification payloads all travel as Payloads; the core never
// interprets their contents.
type Payload []byte

// PayloadFrom encodes v as a Payload.
func PayloadFrom(v any) (Payload, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return Payload(b), nil
}

// Decode unmarshals the payload into v. Decoding an empty payload is a
// no-op.
func (p Payload) Decode(v any) error {
	if len(p) == 0 {
		return nil
	}
	if err := json.Unmarshal(p, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}

func (p Payload) IsEmpty() bool {
	return len(p) == 0
}

func (p Payload) String() string {
	return string(p)
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	if p == nil {
		return fmt.Errorf("unmarshal into nil payload")
	}
	*p = append((*p)[0:0], data...)
	return nil
}
