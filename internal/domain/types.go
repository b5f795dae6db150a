package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
)

// MapOfAny is persisted as JSON in the database
type MapOfAny map[string]any

// Scan implements the sql.Scanner interface
func (m *MapOfAny) Scan(val interface{}) error {
	var data []byte

	if b, ok := val.([]byte); ok {
		// Clone the bytes: the sql driver reuses the same backing array
		// for subsequent rows.
		data = bytes.Clone(b)
	} else if s, ok := val.(string); ok {
		data = []byte(s)
	} else if val == nil {
		return nil
	}

	return json.Unmarshal(data, m)
}

// Value implements the driver.Valuer interface
func (m MapOfAny) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// JSONValue holds an arbitrary JSON document (object, array or scalar) as it
// is stored in a JSONB column.
type JSONValue struct {
	Data any
}

// Scan implements the sql.Scanner interface
func (v *JSONValue) Scan(val interface{}) error {
	var data []byte

	switch raw := val.(type) {
	case []byte:
		data = bytes.Clone(raw)
	case string:
		data = []byte(raw)
	case nil:
		v.Data = nil
		return nil
	}

	return json.Unmarshal(data, &v.Data)
}

// Value implements the driver.Valuer interface
func (v JSONValue) Value() (driver.Value, error) {
	return json.Marshal(v.Data)
}

// MarshalJSON implements the json.Marshaler interface
func (v JSONValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Data)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (v *JSONValue) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &v.Data)
}
