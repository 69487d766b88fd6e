package http

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// BuildQuery serializes a payload into a URL query string.
//
// Keys and values are percent-encoded with '+' for spaces. Nested objects and
// arrays produce bracketed keys (a[b]=1, a[0]=1), booleans become 1 and 0,
// nulls are skipped. Pairs follow the payload's iteration order: insertion
// order for Fields, field order for structs and sorted keys for Go maps.
// A string payload is taken to be an already encoded query.
func BuildQuery(payload any) (string, error) {
	switch v := payload.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimPrefix(v, "?"), nil
	case []byte:
		return strings.TrimPrefix(string(v), "?"), nil
	case url.Values:
		return v.Encode(), nil
	}

	text, _, err := EncodePayload(payload)
	if err != nil {
		return "", err
	}
	root := gjson.Parse(text)
	if !root.IsObject() && !root.IsArray() {
		return "", fmt.Errorf("%w: cannot build a query from %T", ErrUnsupportedPayload, payload)
	}

	var pairs []string
	appendPairs(&pairs, "", root)
	return strings.Join(pairs, "&"), nil
}

func appendPairs(pairs *[]string, prefix string, node gjson.Result) {
	index := 0
	isArray := node.IsArray()
	node.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if isArray {
			name = strconv.Itoa(index)
			index++
		}
		if prefix != "" {
			name = prefix + "[" + name + "]"
		}

		switch {
		case value.IsObject() || value.IsArray():
			appendPairs(pairs, name, value)
		case value.Type == gjson.Null:
		case value.Type == gjson.True:
			*pairs = append(*pairs, url.QueryEscape(name)+"=1")
		case value.Type == gjson.False:
			*pairs = append(*pairs, url.QueryEscape(name)+"=0")
		case value.Type == gjson.Number:
			*pairs = append(*pairs, url.QueryEscape(name)+"="+url.QueryEscape(value.Raw))
		default:
			*pairs = append(*pairs, url.QueryEscape(name)+"="+url.QueryEscape(value.String()))
		}
		return true
	})
}

// isEmptyPayload reports whether a payload carries nothing worth sending:
// nil, zero-length strings, slices and maps, and nil pointers.
func isEmptyPayload(payload any) bool {
	if payload == nil {
		return true
	}
	v := reflect.ValueOf(payload)
	switch v.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}
