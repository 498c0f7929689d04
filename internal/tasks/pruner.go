package tasks

import (
	"context"
	"log"
	"time"

	"temp-monitor/internal/store"
)

// Pruner periodically applies the store's retention caps so reading
// history stays bounded independently of query-time limits.
type Pruner struct {
	Store    store.Store
	Interval time.Duration
}

// Run sweeps on a fixed interval until the context is cancelled.
func (p *Pruner) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := p.Store.PruneSensorReadings(ctx)
			if err != nil {
				log.Printf("pruner: sweep: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("pruner: removed %d readings", removed)
			}
		}
	}
}
