package bench

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(codes ...int) *rhttp.Client {
	i := 0
	transport := rhttp.TransportFunc(func(context.Context, *rhttp.Call) (*rhttp.DispatchResult, error) {
		code := codes[i%len(codes)]
		i++
		if code == 0 {
			return nil, errors.New("connection refused")
		}
		return &rhttp.DispatchResult{StatusCode: code, Info: rhttp.Info{}}, nil
	})
	return rhttp.NewClient("http://example.com", rhttp.WithTransport(transport), rhttp.WithRegistry(rhttp.NewRegistry()))
}

func TestRun_CountsOutcomes(t *testing.T) {
	c := testClient(200, 200, 404, 0)

	summary, err := Run(context.Background(), Config{Requests: 8}, func() (rhttp.Response, error) {
		return c.Get("/", nil, nil)
	})
	require.NoError(t, err)

	assert.Equal(t, int64(8), summary.TotalRequests)
	assert.Equal(t, int64(4), summary.StatusCodes[200])
	assert.Equal(t, int64(2), summary.StatusCodes[404])
	assert.Equal(t, int64(2), summary.TransferErrors)
	assert.InDelta(t, 0.25, summary.ErrorRate, 0.001)
	assert.True(t, summary.P99 >= summary.P50)
}

func TestRun_RateLimited(t *testing.T) {
	c := testClient(200)

	start := time.Now()
	summary, err := Run(context.Background(), Config{Requests: 5, Rate: 50}, func() (rhttp.Response, error) {
		return c.Get("/", nil, nil)
	})
	require.NoError(t, err)

	assert.Equal(t, int64(5), summary.TotalRequests)
	// burst of 1 at 50/s: four waits of 20ms
	assert.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestRun_Duration(t *testing.T) {
	c := testClient(200)

	summary, err := Run(context.Background(), Config{Duration: 50 * time.Millisecond, Rate: 100}, func() (rhttp.Response, error) {
		return c.Get("/", nil, nil)
	})
	require.NoError(t, err)
	assert.Greater(t, summary.TotalRequests, int64(0))
	assert.Less(t, summary.TotalRequests, int64(20))
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
	assert.Error(t, (&Config{Requests: 1, Rate: -1}).Validate())
	assert.NoError(t, (&Config{Requests: 1}).Validate())
}

func TestMetrics_HandlerErrors(t *testing.T) {
	m := NewMetrics()
	m.Start()
	m.Record(time.Millisecond, nil, errors.New("unexpected status"))
	m.Stop()

	s := m.Summary()
	assert.Equal(t, int64(1), s.HandlerErrors)
	assert.Equal(t, int64(0), s.TransferErrors)
}

func TestReport(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	Report(&buf, &Summary{
		TotalRequests: 3,
		StatusCodes:   map[int]int64{200: 2, 500: 1},
		P50:           time.Millisecond,
	})

	out := buf.String()
	assert.Contains(t, out, "Requests:  3")
	assert.Contains(t, out, "Status 200: 2")
	assert.Contains(t, out, "Status 500: 1")
	assert.Contains(t, out, "p50 1ms")
}
