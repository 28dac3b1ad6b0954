package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// AttributeMap is the free-form key->value store carried by CanonicalProduct and
// RetailerListing. Values are scalars, lists, or nested maps decoded from JSON — mirroring
// the tagged-value space described for the source's semi-structured attribute columns.
type AttributeMap map[string]interface{}

// Scan implements sql.Scanner so bun can load a jsonb/json column directly into the map.
func (a *AttributeMap) Scan(value interface{}) error {
	if value == nil {
		*a = AttributeMap{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("models: unsupported AttributeMap scan type %T", value)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		*a = AttributeMap{}
		return nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*a = m
	return nil
}

// Value implements driver.Valuer.
func (a AttributeMap) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]interface{}(a))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// IsEmptyAttributeValue reports whether a value counts as "empty" for first-write-wins /
// monotonic-fill merge decisions: null, blank string, or empty list/map.
func IsEmptyAttributeValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}

// Clone returns a shallow copy safe to mutate independently of the receiver.
func (a AttributeMap) Clone() AttributeMap {
	out := make(AttributeMap, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
