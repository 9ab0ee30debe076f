// Package scheduler drives the engine's loop mode. Cron is the normal
// trigger; Loop covers environments that run the binary as a long-lived
// process instead.
package scheduler

import (
	"context"
	"log"
	"time"
)

// Task is one full engine pass.
type Task func(ctx context.Context) error

// Loop runs task immediately, then once per interval, strictly one at a
// time: a pass that outlasts the interval delays the next one rather than
// overlapping it. Returns when ctx is canceled.
func Loop(ctx context.Context, interval time.Duration, name string, task Task) {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		if err := task(ctx); err != nil {
			log.Printf("[%s] run failed: %v", name, err)
		}
		if ctx.Err() != nil {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
