// Package metrics exposes Prometheus metrics derived from riqwest log records.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Default histogram buckets for response latency.
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// Recorder is an http.Logger that turns request and response records into
// Prometheus metrics.
type Recorder struct {
	Registry *prometheus.Registry

	RequestsTotal  *prometheus.CounterVec
	ResponsesTotal *prometheus.CounterVec
	TransferErrors prometheus.Counter
	Duration       prometheus.Histogram
}

// New creates a Recorder with a custom registry and all collectors registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()

	r := &Recorder{
		Registry: reg,

		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riqwest_requests_total",
			Help: "Total outgoing requests by method.",
		}, []string{"method"}),

		ResponsesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "riqwest_responses_total",
			Help: "Total responses by status code.",
		}, []string{"status_code"}),

		TransferErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "riqwest_transfer_errors_total",
			Help: "Total calls that failed before a response was received.",
		}),

		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "riqwest_response_duration_seconds",
			Help:    "Time from dispatch to complete response body in seconds.",
			Buckets: defaultBuckets,
		}),
	}

	reg.MustRegister(
		r.RequestsTotal,
		r.ResponsesTotal,
		r.TransferErrors,
		r.Duration,
	)

	return r
}

// knownMethods lists the allowed HTTP method label values (bounded cardinality).
var knownMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "DELETE": true,
	"PATCH": true, "HEAD": true, "OPTIONS": true,
}

// NormalizeMethod returns a bounded HTTP method label.
// Non-standard methods are mapped to "other" to prevent cardinality explosion.
func NormalizeMethod(method string) string {
	if knownMethods[method] {
		return method
	}
	return "other"
}

func (r *Recorder) Log(tag string, record rhttp.Fields) {
	switch tag {
	case rhttp.TagRequestOut:
		method, _ := record.Get("Method")
		m, _ := method.(string)
		r.RequestsTotal.WithLabelValues(NormalizeMethod(m)).Inc()
	case rhttp.TagResponse:
		if _, failed := record.Get("Transfer Error"); failed {
			r.TransferErrors.Inc()
			return
		}
		code, _ := record.Get("Response Code")
		c, _ := code.(int)
		r.ResponsesTotal.WithLabelValues(strconv.Itoa(c)).Inc()

		info, _ := record.Get("Response Info")
		if i, ok := info.(rhttp.Info); ok {
			if d, ok := i[rhttp.InfoTotalTime].(time.Duration); ok {
				r.Duration.Observe(d.Seconds())
			}
		}
	}
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}
