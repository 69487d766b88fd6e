// Package middleware provides payload mutators for the riqwest client.
package middleware

import (
	"fmt"
	"strings"
	"time"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/google/uuid"
)

// RequestID stamps a fresh UUID into field unless the payload already has one.
func RequestID(field string) rhttp.Middleware {
	return func(payload any, _ *string) (any, error) {
		return setField(payload, field, uuid.New().String(), false)
	}
}

// Timestamp writes the current time in RFC 3339 format into field. A nil
// clock means time.Now.
func Timestamp(field string, clock func() time.Time) rhttp.Middleware {
	if clock == nil {
		clock = time.Now
	}
	return func(payload any, _ *string) (any, error) {
		return setField(payload, field, clock().UTC().Format(time.RFC3339), true)
	}
}

// Defaults fills in keys that are missing from the payload.
func Defaults(defaults rhttp.Fields) rhttp.Middleware {
	return func(payload any, _ *string) (any, error) {
		var err error
		for _, f := range defaults {
			payload, err = setField(payload, f.Key, f.Value, false)
			if err != nil {
				return nil, err
			}
		}
		return payload, nil
	}
}

// Prefix prepends prefix to the route, e.g. "/v2".
func Prefix(prefix string) rhttp.Middleware {
	prefix = "/" + strings.Trim(prefix, "/")
	return func(payload any, route *string) (any, error) {
		if prefix != "/" && !strings.HasPrefix(*route, prefix+"/") && *route != prefix {
			*route = prefix + *route
		}
		return payload, nil
	}
}

// setField returns a copy of payload with key set. Nil payloads become Fields.
// The caller's payload is never modified in place.
func setField(payload any, key string, value any, overwrite bool) (any, error) {
	switch p := payload.(type) {
	case nil:
		return rhttp.Fields{{Key: key, Value: value}}, nil
	case rhttp.Fields:
		if _, ok := p.Get(key); ok && !overwrite {
			return p, nil
		}
		out := p.Clone()
		out.Set(key, value)
		return out, nil
	case map[string]any:
		if _, ok := p[key]; ok && !overwrite {
			return p, nil
		}
		out := make(map[string]any, len(p)+1)
		for k, v := range p {
			out[k] = v
		}
		out[key] = value
		return out, nil
	case map[string]string:
		if _, ok := p[key]; ok && !overwrite {
			return p, nil
		}
		out := make(map[string]string, len(p)+1)
		for k, v := range p {
			out[k] = v
		}
		out[key] = fmt.Sprint(value)
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot set %q on %T", rhttp.ErrUnsupportedPayload, key, payload)
	}
}
