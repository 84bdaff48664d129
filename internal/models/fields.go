package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Fields is a loosely-typed JSON object keyed by field name. Presence of a
// key is what distinguishes a partial update from an untouched field.
type Fields map[string]json.RawMessage

// ParseFields decodes a request body into Fields. An empty body is an
// empty object; anything other than a JSON object is ErrInvalid.
func ParseFields(data []byte) (Fields, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Fields{}, nil
	}

	var f Fields
	if err := json.Unmarshal(trimmed, &f); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalid)
		}
		return nil, fmt.Errorf("%w: malformed JSON: %v", ErrInvalid, err)
	}
	if f == nil {
		return nil, fmt.Errorf("%w: body must be a JSON object", ErrInvalid)
	}
	return f, nil
}

// Has reports whether key was supplied.
func (f Fields) Has(key string) bool {
	_, ok := f[key]
	return ok
}

// Text returns a scalar field as a string. Numbers and booleans are
// rendered as their literal text and null reads as "". Objects and arrays
// are rejected.
func (f Fields) Text(key string) (string, bool) {
	raw, ok := f[key]
	if !ok {
		return "", false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false
	}
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case float64, bool:
		return strings.TrimSpace(string(raw)), true
	default:
		return "", false
	}
}

// Bool returns a boolean field. JSON booleans and strings accepted by
// strconv.ParseBool are understood.
func (f Fields) Bool(key string) (bool, bool) {
	raw, ok := f[key]
	if !ok {
		return false, false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false
	}
	switch val := v.(type) {
	case bool:
		return val, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(val))
		return b, err == nil
	default:
		return false, false
	}
}

// Int returns an integral number field, also accepting numeric strings.
func (f Fields) Int(key string) (int, bool) {
	raw, ok := f[key]
	if !ok {
		return 0, false
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		if val != math.Trunc(val) {
			return 0, false
		}
		return int(val), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		return n, err == nil
	default:
		return 0, false
	}
}

// Objects returns an array field as a list of Fields, skipping items that
// are not objects.
func (f Fields) Objects(key string) []Fields {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	return ObjectList(raw)
}

// ObjectList decodes a JSON array, keeping only its object items.
func ObjectList(data []byte) []Fields {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	out := make([]Fields, 0, len(items))
	for _, item := range items {
		var obj Fields
		if err := json.Unmarshal(item, &obj); err != nil || obj == nil {
			continue
		}
		out = append(out, obj)
	}
	return out
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}
