/*
refresher.go - Background cache warm-up

PURPOSE:
  Periodically touches the configured datasets so the first dashboard
  request after a TTL expiry does not pay the full upstream fetch.

DESIGN:
  - Runs a background goroutine with a configurable interval
  - Each tick calls Get on every configured dataset; an entry inside its
    TTL is a no-op, an expired one refetches
  - Errors are logged and never fatal

USAGE:
  refresher := dataset.NewRefresher(source, []string{"sales"}, 5*time.Minute)
  refresher.Start()
  // ... later
  refresher.Stop()
*/
package dataset

import (
	"context"
	"log"
	"sync"
	"time"
)

// Refresher keeps a set of datasets warm in a RowSource.
type Refresher struct {
	Source   RowSource
	Datasets []string
	Interval time.Duration

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewRefresher creates a refresher for the given datasets.
func NewRefresher(source RowSource, datasets []string, interval time.Duration) *Refresher {
	return &Refresher{Source: source, Datasets: datasets, Interval: interval}
}

// Start launches the background warm-up loop.
func (r *Refresher) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticker != nil {
		return // already running
	}

	r.ticker = time.NewTicker(r.Interval)
	r.stop = make(chan struct{})
	r.wg.Add(1)

	go func() {
		defer r.wg.Done()
		r.warm()
		for {
			select {
			case <-r.ticker.C:
				r.warm()
			case <-r.stop:
				return
			}
		}
	}()

	log.Printf("Dataset refresher started (interval: %v)", r.Interval)
}

// Stop halts the loop and waits for an in-progress warm-up to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.ticker == nil {
		return
	}
	r.ticker.Stop()
	close(r.stop)
	r.wg.Wait()
	r.ticker = nil
}

func (r *Refresher) warm() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	for _, ds := range r.Datasets {
		if _, _, err := r.Source.Get(ctx, ds); err != nil {
			log.Printf("Cache warm-up failed for %s: %v", ds, err)
		}
	}
}
