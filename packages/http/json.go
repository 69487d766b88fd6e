package http

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// EncodePayload returns the outgoing text for a payload. Strings and byte
// slices are sent as-is, anything else is JSON encoded. The boolean is false
// when there is no payload at all.
func EncodePayload(payload any) (string, bool, error) {
	switch v := payload.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	case []byte:
		return string(v), true, nil
	case json.RawMessage:
		return string(v), true, nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// IsJSON reports whether text is syntactically valid JSON.
func IsJSON(text string) bool {
	return gjson.Valid(text)
}

// ParseJSON decodes text into a payload value, keeping object keys in
// document order by decoding objects into Fields.
func ParseJSON(text string) (any, error) {
	if !gjson.Valid(text) {
		return nil, fmt.Errorf("invalid JSON payload")
	}
	return fromResult(gjson.Parse(text)), nil
}

func fromResult(r gjson.Result) any {
	switch {
	case r.IsObject():
		f := Fields{}
		r.ForEach(func(key, value gjson.Result) bool {
			f = append(f, Field{Key: key.String(), Value: fromResult(value)})
			return true
		})
		return f
	case r.IsArray():
		items := []any{}
		r.ForEach(func(_, value gjson.Result) bool {
			items = append(items, fromResult(value))
			return true
		})
		return items
	case r.Type == gjson.Number:
		return json.Number(r.Raw)
	default:
		return r.Value()
	}
}
