package http

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is a single key/value pair of an ordered payload or log record.
type Field struct {
	Key   string
	Value any
}

// Fields is an ordered mapping. It encodes to a JSON object and to a query
// string in insertion order, unlike Go maps which encode with sorted keys.
type Fields []Field

// NewFields builds Fields from alternating keys and values.
func NewFields(kv ...any) Fields {
	f := make(Fields, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		f = append(f, Field{Key: fmt.Sprint(kv[i]), Value: kv[i+1]})
	}
	return f
}

func (f Fields) Get(key string) (any, bool) {
	for _, fld := range f {
		if fld.Key == key {
			return fld.Value, true
		}
	}
	return nil, false
}

// Set replaces the value of key, or appends it when absent.
func (f *Fields) Set(key string, value any) {
	for i := range *f {
		if (*f)[i].Key == key {
			(*f)[i].Value = value
			return
		}
	}
	*f = append(*f, Field{Key: key, Value: value})
}

// Clone returns a shallow copy.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	copy(out, f)
	return out
}

func (f Fields) Map() map[string]any {
	m := make(map[string]any, len(f))
	for _, fld := range f {
		m[fld.Key] = fld.Value
	}
	return m
}

func (f Fields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fld := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(fld.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(fld.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", fld.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
