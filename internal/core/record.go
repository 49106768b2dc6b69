package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UnmarshalJSON accepts any JSON object. Strings are kept as is, numbers keep
// their literal text, booleans become "true"/"false", nulls are dropped and
// nested values are kept as their JSON text. This lets already-transformed
// records be sent back through an import.
func (r *Record) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		*r = nil
		return nil
	}

	out := make(Record, len(raw))
	for k, v := range raw {
		s, ok, err := stringify(v)
		if err != nil {
			return fmt.Errorf("field %q: %w", k, err)
		}
		if ok {
			out[k] = s
		}
	}
	*r = out
	return nil
}

func stringify(v any) (string, bool, error) {
	switch x := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return x, true, nil
	case json.Number:
		return x.String(), true, nil
	case bool:
		return strconv.FormatBool(x), true, nil
	case float64:
		return formatFloat(x), true, nil
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return "", false, err
		}
		return string(b), true, nil
	}
}

func marshalRecord(r Record) ([]byte, error) {
	return json.Marshal(map[string]string(r))
}

// RecordOf flattens a domain record back into a Record via its JSON form.
func RecordOf(d DomainRecord) (Record, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, err
	}
	return r, nil
}
