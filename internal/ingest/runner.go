package ingest

import (
	"context"
	"log"
)

// Adapter is one job source. Run walks the source and feeds every
// candidate through the Run it was given; it returns an error only when
// the whole pass is unusable (for example the first index page never
// loaded).
type Adapter interface {
	Name() string
	Run(ctx context.Context, run *Run) error
}

// RunAll executes the adapters one after another against a shared
// pipeline. Sources stay sequential so each one's host sees a single
// crawler; an aborted adapter is logged with whatever partial stats it
// produced and the rest still run.
func RunAll(ctx context.Context, p *Pipeline, adapters []Adapter) []Stats {
	all := make([]Stats, 0, len(adapters))
	for _, a := range adapters {
		log.Printf("[ingest] source=%s starting", a.Name())
		run := p.NewRun(a.Name())
		if err := a.Run(ctx, run); err != nil {
			run.Stats.Errors++
			log.Printf("[ingest] source=%s aborted: %v", a.Name(), err)
		} else {
			log.Printf("[ingest] source=%s done: %s", a.Name(), run.Stats.String())
		}
		all = append(all, run.Stats)
	}
	return all
}
