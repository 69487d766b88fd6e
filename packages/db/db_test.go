package db

import (
	"context"
	"path/filepath"
	"testing"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SQLite(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "history.db")

	history, err := Open("sqlite://" + dbPath)
	require.NoError(t, err)
	defer history.Close()

	history.Log(rhttp.TagRequestOut, rhttp.NewFields("Method", "GET", "Route", "/users"))
	require.NoError(t, history.Err())

	entries, err := history.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, rhttp.TagRequestOut, entries[0].Tag)
	assert.Equal(t, "/users", entries[0].Record["Route"])
}

func TestOpen_SQLiteWithColonPrefix(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "history.db")

	history, err := Open("sqlite:" + dbPath)
	require.NoError(t, err)
	defer history.Close()
}

func TestRecent_NewestFirst(t *testing.T) {
	history, err := Open(":memory:")
	require.NoError(t, err)
	defer history.Close()

	for _, route := range []string{"/a", "/b", "/c"} {
		history.Log(rhttp.TagRequestOut, rhttp.NewFields("Route", route))
	}

	entries, err := history.Recent(2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "/c", entries[0].Record["Route"])
	assert.Equal(t, "/b", entries[1].Record["Route"])
}

func TestHistory_AsClientLogger(t *testing.T) {
	history, err := Open(":memory:")
	require.NoError(t, err)
	defer history.Close()

	registry := rhttp.NewRegistry()
	require.NoError(t, registry.SetLogger(history))
	transport := rhttp.TransportFunc(func(context.Context, *rhttp.Call) (*rhttp.DispatchResult, error) {
		return &rhttp.DispatchResult{StatusCode: 204, Info: rhttp.Info{}}, nil
	})
	c := rhttp.NewClient("http://example.com", rhttp.WithTransport(transport), rhttp.WithRegistry(registry))

	_, err = c.Delete("/users/1", nil, nil)
	require.NoError(t, err)

	entries, err := history.Recent(10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, rhttp.TagResponse, entries[0].Tag)
	assert.Equal(t, float64(204), entries[0].Record["Response Code"])
	assert.Equal(t, rhttp.TagRequestOut, entries[1].Tag)
}

func TestParseConnectionString(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"sqlite://./h.db", "./h.db", false},
		{"sqlite:h.db", "h.db", false},
		{"h.db", "h.db", false},
		{"postgres://u@h/db", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseConnectionString(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
