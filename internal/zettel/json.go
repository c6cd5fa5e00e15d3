package zettel

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON renders a Value as its natural JSON counterpart: null,
// bool, number, string, or array. DateTime values are rendered as RFC3339
// strings, matching how they'd round-trip through YAML front matter.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindBool:
		return json.Marshal(v.boolVal)
	case KindInt:
		return json.Marshal(v.intVal)
	case KindFloat:
		return json.Marshal(v.floatVal)
	case KindString:
		return json.Marshal(v.strVal)
	case KindDateTime:
		return json.Marshal(v.timeVal)
	case KindList:
		return json.Marshal(v.listVal)
	default:
		return []byte("null"), nil
	}
}

// MarshalJSON renders an OrderedMap as a JSON object with keys in
// insertion order. Postgres's jsonb type canonicalizes key order on
// storage regardless, but this keeps any other JSON consumer (e.g. a
// `zettelkasten parse` CLI output) faithful to the note's own order.
func (m *OrderedMap) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		valJSON, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON renders a Section as {"heading": ..., "body": ...}.
func (s Section) MarshalJSON() ([]byte, error) {
	type alias struct {
		Heading string `json:"heading"`
		Body    string `json:"body"`
	}
	return json.Marshal(alias{Heading: s.Heading, Body: s.Body})
}
