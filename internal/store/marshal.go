package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xldenis/prusti-dev/internal/canon"
)

// marshalOptions converts run options to canonical JSON TEXT for storage.
// Uses RFC 8785 canonical JSON so that identical options compare equal.
func marshalOptions(opts map[string]any) (string, error) {
	if opts == nil {
		return "{}", nil
	}
	data, err := canon.MarshalCanonical(opts)
	if err != nil {
		return "", fmt.Errorf("marshal options: %w", err)
	}
	return string(data), nil
}

// unmarshalOptions parses canonical JSON TEXT. Numbers are kept as
// json.Number so integers round-trip without float conversion.
func unmarshalOptions(data string) (map[string]any, error) {
	out := map[string]any{}
	if data == "" || data == "{}" {
		return out, nil
	}
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}
	return out, nil
}
