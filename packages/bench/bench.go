// Package bench sends the same request repeatedly at a fixed pace and
// summarizes latencies.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	rhttp "github.com/abdul-hamid-achik/riqwest/packages/http"
	"golang.org/x/time/rate"
)

// Config controls a benchmark run
type Config struct {
	// Requests is the number of requests to send
	Requests int
	// Rate is the target requests per second; 0 means unpaced
	Rate float64
	// Duration stops the run early when positive
	Duration time.Duration
}

// Validate checks the configuration
func (c *Config) Validate() error {
	if c.Requests <= 0 && c.Duration <= 0 {
		return errors.New("either requests or duration must be positive")
	}
	if c.Rate < 0 {
		return fmt.Errorf("rate must not be negative, got %v", c.Rate)
	}
	return nil
}

// SendFunc issues one request.
type SendFunc func() (rhttp.Response, error)

// Run calls send sequentially until the request count or duration is
// reached, or ctx is done. Request failures are recorded, not returned.
func Run(ctx context.Context, cfg Config, send SendFunc) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}

	metrics := NewMetrics()
	metrics.Start()

	for i := 0; cfg.Requests <= 0 || i < cfg.Requests; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				break
			}
		}
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		resp, err := send()
		metrics.Record(time.Since(start), resp, err)
	}

	metrics.Stop()
	return metrics.Summary(), nil
}
