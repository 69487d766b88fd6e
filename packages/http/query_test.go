package http

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	type filter struct {
		Status string `json:"status"`
		Limit  int    `json:"limit"`
	}

	tests := []struct {
		name    string
		payload any
		want    string
	}{
		{"nil", nil, ""},
		{"ordered fields", NewFields("b", 2, "a", 1), "b=2&a=1"},
		{"map sorted", map[string]any{"b": 2, "a": 1}, "a=1&b=2"},
		{"struct field order", filter{Status: "open", Limit: 10}, "status=open&limit=10"},
		{"spaces and symbols", NewFields("q", "a b&c"), "q=a+b%26c"},
		{"booleans and null", NewFields("on", true, "off", false, "gone", nil), "on=1&off=0"},
		{"nested object", NewFields("user", NewFields("name", "ada")), "user%5Bname%5D=ada"},
		{"nested list", NewFields("ids", []int{4, 5}), "ids%5B0%5D=4&ids%5B1%5D=5"},
		{"top level list", []string{"x", "y"}, "0=x&1=y"},
		{"string passthrough", "?a=1&b=2", "a=1&b=2"},
		{"url values", url.Values{"k": {"v"}}, "k=v"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildQuery(tt.payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildQuery_Scalar(t *testing.T) {
	_, err := BuildQuery(42)
	assert.ErrorIs(t, err, ErrUnsupportedPayload)
}

func TestIsEmptyPayload(t *testing.T) {
	var nilFields *Fields

	assert.True(t, isEmptyPayload(nil))
	assert.True(t, isEmptyPayload(""))
	assert.True(t, isEmptyPayload(Fields{}))
	assert.True(t, isEmptyPayload(map[string]any{}))
	assert.True(t, isEmptyPayload(nilFields))
	assert.False(t, isEmptyPayload(NewFields("a", 1)))
	assert.False(t, isEmptyPayload("a=1"))
}
