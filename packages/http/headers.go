package http

import (
	"sort"
	"strings"
)

// Headers is an ordered header set keyed by lower-cased name.
// Keys are normalized once on insertion; later values overwrite earlier ones.
type Headers struct {
	keys   []string
	values map[string]string
}

// NewHeaders creates an empty header set.
func NewHeaders() *Headers {
	return &Headers{values: make(map[string]string)}
}

// DefaultHeaders returns the header set every client starts with.
func DefaultHeaders() *Headers {
	h := NewHeaders()
	h.Set("Content-Type", "application/json")
	h.Set("Accept-Encoding", "identity")
	h.Set("User-Agent", "riqwest/"+Version)
	return h
}

func (h *Headers) Set(key, value string) {
	if h.values == nil {
		h.values = make(map[string]string)
	}
	k := strings.ToLower(key)
	if _, ok := h.values[k]; !ok {
		h.keys = append(h.keys, k)
	}
	h.values[k] = value
}

// SetAll applies Set for every entry. Entries are applied in sorted key
// order so that keys differing only in case resolve deterministically.
func (h *Headers) SetAll(headers map[string]string) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Set(k, headers[k])
	}
}

func (h *Headers) Get(key string) string {
	if h == nil {
		return ""
	}
	return h.values[strings.ToLower(key)]
}

func (h *Headers) Has(key string) bool {
	if h == nil {
		return false
	}
	_, ok := h.values[strings.ToLower(key)]
	return ok
}

func (h *Headers) Del(key string) {
	k := strings.ToLower(key)
	if _, ok := h.values[k]; !ok {
		return
	}
	delete(h.values, k)
	for i, existing := range h.keys {
		if existing == k {
			h.keys = append(h.keys[:i], h.keys[i+1:]...)
			break
		}
	}
}

func (h *Headers) Len() int {
	if h == nil {
		return 0
	}
	return len(h.keys)
}

// Keys returns the normalized keys in insertion order.
func (h *Headers) Keys() []string {
	if h == nil {
		return nil
	}
	out := make([]string, len(h.keys))
	copy(out, h.keys)
	return out
}

// Each calls fn for every header in insertion order.
func (h *Headers) Each(fn func(key, value string)) {
	if h == nil {
		return
	}
	for _, k := range h.keys {
		fn(k, h.values[k])
	}
}

func (h *Headers) Clone() *Headers {
	c := NewHeaders()
	h.Each(c.Set)
	return c
}

func (h *Headers) Map() map[string]string {
	m := make(map[string]string, h.Len())
	h.Each(func(k, v string) {
		m[k] = v
	})
	return m
}

// Lines renders the headers as "key: value" lines.
func (h *Headers) Lines() []string {
	lines := make([]string, 0, h.Len())
	h.Each(func(k, v string) {
		lines = append(lines, k+": "+v)
	})
	return lines
}
