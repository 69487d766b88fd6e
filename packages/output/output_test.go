package output

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestRecord() rhttp.Fields {
	return rhttp.Fields{
		{Key: "Method", Value: "POST"},
		{Key: "Host", Value: "http://example.com"},
		{Key: "Port", Value: 80},
		{Key: "Route", Value: "/users"},
		{Key: "Headers", Value: map[string]string{"content-type": "application/json"}},
		{Key: "Payload", Value: `{"name":"ada"}`},
	}
}

func TestConsoleFormatter_Log(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.Log(rhttp.TagRequestOut, requestRecord())
	f.Log(rhttp.TagResponse, rhttp.NewFields("Response Code", 201, "Response Body", "{}"))

	out := buf.String()
	assert.Contains(t, out, "POST http://example.com/users (port 80)")
	assert.Contains(t, out, "← 201")
	assert.NotContains(t, out, "Payload")
}

func TestConsoleFormatter_Verbose(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))

	f.Log(rhttp.TagRequestOut, requestRecord())

	out := buf.String()
	assert.Contains(t, out, "content-type: application/json")
	assert.Contains(t, out, `Payload: {"name":"ada"}`)
}

func TestConsoleFormatter_TransferError(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.Log(rhttp.TagResponse, rhttp.NewFields("Response Body", "", "Transfer Error", "refused on URL http://x/"))
	assert.Contains(t, buf.String(), "x refused on URL http://x/")
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "[array with 2 items]", formatValue([]any{1, 2}, 10))
	assert.Equal(t, "{object with 1 keys}", formatValue(rhttp.NewFields("a", 1), 10))
	assert.Equal(t, "abc...", formatValue("abcdef", 3))
	assert.Equal(t, "-", formatValue(nil, 3))
}

func TestJSONLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLogger(WithJSONWriter(&buf))
	l.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	l.Log(rhttp.TagRequestOut, rhttp.NewFields("Method", "GET", "Route", "/"))

	line := strings.TrimSpace(buf.String())
	assert.Equal(t, `{"time":"2024-01-02T03:04:05Z","tag":"REQUEST OUT","record":{"Method":"GET","Route":"/"}}`, line)
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewSlogLogger(slog.New(slog.NewJSONHandler(&buf, nil)))

	l.Log(rhttp.TagResponse, rhttp.NewFields("Response Code", 200))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "RESPONSE", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(200), entry["Response Code"])
	assert.Equal(t, "riqwest", entry["component"])
}
