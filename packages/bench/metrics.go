package bench

import (
	"errors"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
)

// latency bounds in microseconds: 1us to 60s
const (
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// Metrics collects latencies and outcomes of benchmark requests
type Metrics struct {
	mu sync.Mutex

	histogram *hdrhistogram.Histogram

	total          int64
	transferErrors int64
	handlerErrors  int64
	statusCodes    map[int]int64

	startTime time.Time
	endTime   time.Time
}

// NewMetrics creates a new Metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		histogram:   hdrhistogram.New(minLatencyUs, maxLatencyUs, 3),
		statusCodes: make(map[int]int64),
	}
}

// Start marks the beginning of the run
func (m *Metrics) Start() {
	m.mu.Lock()
	m.startTime = time.Now()
	m.mu.Unlock()
}

// Stop marks the end of the run
func (m *Metrics) Stop() {
	m.mu.Lock()
	m.endTime = time.Now()
	m.mu.Unlock()
}

// Record records one request outcome. resp is nil when err is set.
func (m *Metrics) Record(duration time.Duration, resp rhttp.Response, err error) {
	latencyUs := duration.Microseconds()
	if latencyUs < minLatencyUs {
		latencyUs = minLatencyUs
	}
	if latencyUs > maxLatencyUs {
		latencyUs = maxLatencyUs
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.total++
	_ = m.histogram.RecordValue(latencyUs)

	var transferErr *rhttp.TransferError
	switch {
	case errors.As(err, &transferErr):
		m.transferErrors++
	case err != nil:
		m.handlerErrors++
	case resp != nil:
		m.statusCodes[resp.Code()]++
	}
}

// Summary is the final result of a run
type Summary struct {
	Duration       time.Duration
	TotalRequests  int64
	TransferErrors int64
	HandlerErrors  int64
	StatusCodes    map[int]int64

	RPS       float64
	ErrorRate float64

	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
	P50  time.Duration
	P90  time.Duration
	P95  time.Duration
	P99  time.Duration
}

// Summary returns the aggregated results
func (m *Metrics) Summary() *Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	end := m.endTime
	if end.IsZero() {
		end = time.Now()
	}

	s := &Summary{
		Duration:       end.Sub(m.startTime),
		TotalRequests:  m.total,
		TransferErrors: m.transferErrors,
		HandlerErrors:  m.handlerErrors,
		StatusCodes:    make(map[int]int64, len(m.statusCodes)),
	}
	for code, n := range m.statusCodes {
		s.StatusCodes[code] = n
	}

	if s.Duration > 0 {
		s.RPS = float64(m.total) / s.Duration.Seconds()
	}
	if m.total > 0 {
		s.ErrorRate = float64(m.transferErrors+m.handlerErrors) / float64(m.total)
		s.Min = us(m.histogram.Min())
		s.Max = us(m.histogram.Max())
		s.Mean = time.Duration(m.histogram.Mean() * float64(time.Microsecond))
		s.P50 = us(m.histogram.ValueAtQuantile(50))
		s.P90 = us(m.histogram.ValueAtQuantile(90))
		s.P95 = us(m.histogram.ValueAtQuantile(95))
		s.P99 = us(m.histogram.ValueAtQuantile(99))
	}

	return s
}

func us(v int64) time.Duration {
	return time.Duration(v) * time.Microsecond
}
