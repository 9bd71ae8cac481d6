/*
scheduler.go - Periodic projection refresh

PURPOSE:
  Re-runs the horizon projection on a fixed interval so the Prometheus
  gauges (spare capital, timeline size) stay current without a client
  polling the API, and logs a warning when spare capital goes negative,
  i.e. some future floor is already breached.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Runs once immediately on Start
  - A failed run (no control yet, bad definition) is logged and skipped;
    the next tick tries again

CONFIGURATION:
  - CheckInterval: How often to refresh (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewRefreshScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: project() updates the same gauges on every request
  - metrics.go: The gauges
*/
package api

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// RefreshResult summarizes one scheduled run.
type RefreshResult struct {
	At           time.Time
	Instances    int
	SpareCapital decimal.Decimal
	Err          error
}

// RefreshScheduler periodically projects the stored horizon.
type RefreshScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
	last   RefreshResult
}

// NewRefreshScheduler creates a new scheduler.
func NewRefreshScheduler(handler *Handler) *RefreshScheduler {
	return &RefreshScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan struct{}),
	}
}

// Start begins the scheduler.
func (rs *RefreshScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	log := rs.Handler.Log
	if !rs.Enabled {
		log.Info().Msg("refresh scheduler disabled")
		return
	}

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)
	go rs.run(rs.ticker.C)

	log.Info().Dur("interval", rs.CheckInterval).Msg("refresh scheduler started")
}

// Stop stops the scheduler and waits for a running refresh to finish.
func (rs *RefreshScheduler) Stop() {
	rs.mu.Lock()
	ticker := rs.ticker
	rs.ticker = nil
	rs.mu.Unlock()

	if ticker != nil {
		ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.Handler.Log.Info().Msg("refresh scheduler stopped")
	}
}

func (rs *RefreshScheduler) run(tick <-chan time.Time) {
	defer rs.wg.Done()

	rs.RunNow()
	for {
		select {
		case <-tick:
			rs.RunNow()
		case <-rs.stop:
			return
		}
	}
}

// RunNow refreshes immediately and returns the result.
func (rs *RefreshScheduler) RunNow() RefreshResult {
	h := rs.Handler
	started := time.Now()
	result := RefreshResult{At: started}

	projection, err := h.runProjection(context.Background(), "", "")
	h.Metrics.ObserveProjection("scheduler", started, err)
	if err != nil {
		result.Err = err
		h.Log.Warn().Err(err).Msg("scheduled projection failed")
	} else {
		result.Instances = len(projection.Instances)
		h.Metrics.TimelineInstances.Set(float64(result.Instances))
		if spare, ok := projection.SpareCapital(); ok {
			result.SpareCapital = spare
			h.Metrics.SpareCapital.Set(spare.InexactFloat64())
			if spare.IsNegative() {
				h.Log.Warn().
					Str("spare_capital", spare.StringFixed(2)).
					Msg("projected balance falls below the reserve")
			}
		}
		h.Log.Debug().Int("instances", result.Instances).Msg("scheduled projection complete")
	}

	rs.mu.Lock()
	rs.last = result
	rs.mu.Unlock()
	return result
}

// LastResult returns the most recent refresh.
func (rs *RefreshScheduler) LastResult() RefreshResult {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.last
}

// GetNextRunTime returns when the next scheduled check will occur.
func (rs *RefreshScheduler) GetNextRunTime() time.Time {
	return rs.LastResult().At.Add(rs.CheckInterval)
}
