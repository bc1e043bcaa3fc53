package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONColumn stores any JSON-marshalable value in a single jsonb
// column, for the handful of entity fields that are ordered lists or
// small structs rather than first-class relations (Transcription's
// segments, Chunk's keywords). Generalizes the map[string]interface{}-
// in-jsonb approach to any value type.
type JSONColumn[T any] struct {
	Value T
}

func (j JSONColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(j.Value)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (j *JSONColumn[T]) Scan(src interface{}) error {
	if src == nil {
		var zero T
		j.Value = zero
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported Scan source type %T for JSONColumn", src)
	}
	if len(b) == 0 {
		return nil
	}
	return json.Unmarshal(b, &j.Value)
}

// GormDataType tells GORM's postgres dialect to render this column as
// jsonb rather than a generic blob type.
func (JSONColumn[T]) GormDataType() string {
	return "jsonb"
}
