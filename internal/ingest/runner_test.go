package ingest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmill-engine/internal/domain"
)

type fakeAdapter struct {
	name   string
	drafts []domain.Draft
	err    error
	order  *[]string
}

func (a *fakeAdapter) Name() string { return a.name }

func (a *fakeAdapter) Run(ctx context.Context, run *Run) error {
	*a.order = append(*a.order, a.name)
	for _, d := range a.drafts {
		run.Process(ctx, d)
	}
	return a.err
}

func TestRunAllSequential(t *testing.T) {
	store := &fakeStore{}
	p := testPipeline(store, nil)

	var order []string
	second := sampleDraft()
	second.RelativeLink = "/jobs/policy-officer"
	second.ApplyLink = "https://other.example/apply/7"
	second.Title = "Policy Officer"

	adapters := []Adapter{
		&fakeAdapter{name: "eurobrussels", drafts: []domain.Draft{sampleDraft()}, order: &order},
		&fakeAdapter{name: "euractiv", drafts: []domain.Draft{second}, order: &order},
	}

	stats := RunAll(context.Background(), p, adapters)

	assert.Equal(t, []string{"eurobrussels", "euractiv"}, order)
	require.Len(t, stats, 2)
	assert.Equal(t, "eurobrussels", stats[0].Source)
	assert.Equal(t, 1, stats[0].Saved)
	assert.Equal(t, "euractiv", stats[1].Source)
	assert.Equal(t, 1, stats[1].Saved)
	assert.Len(t, store.saved, 2)
}

// A key saved by an earlier adapter is a duplicate for every later one in
// the same invocation.
func TestRunAllSharesResolver(t *testing.T) {
	store := &fakeStore{}
	p := testPipeline(store, nil)

	var order []string
	adapters := []Adapter{
		&fakeAdapter{name: "eurobrussels", drafts: []domain.Draft{sampleDraft()}, order: &order},
		&fakeAdapter{name: "jobsinbrussels", drafts: []domain.Draft{sampleDraft()}, order: &order},
	}

	stats := RunAll(context.Background(), p, adapters)

	assert.Len(t, store.saved, 1)
	assert.Equal(t, 1, stats[0].Saved)
	assert.Equal(t, 1, stats[1].Duplicates)
	assert.Zero(t, stats[1].Saved)
}

// An adapter abort surfaces in its stats but never stops the rest.
func TestRunAllAbortedAdapter(t *testing.T) {
	store := &fakeStore{}
	p := testPipeline(store, nil)

	var order []string
	adapters := []Adapter{
		&fakeAdapter{name: "eurobrussels", err: fmt.Errorf("first page unreachable"), order: &order},
		&fakeAdapter{name: "euractiv", drafts: []domain.Draft{sampleDraft()}, order: &order},
	}

	stats := RunAll(context.Background(), p, adapters)

	assert.Equal(t, []string{"eurobrussels", "euractiv"}, order)
	require.Len(t, stats, 2)
	assert.Equal(t, 1, stats[0].Errors)
	assert.Equal(t, 1, stats[1].Saved)
}

func TestTotals(t *testing.T) {
	total := Totals([]Stats{
		{Source: "eurobrussels", Processed: 10, Saved: 6, Duplicates: 3, Skipped: 1, EmailsFound: 4, EmailsSent: 3, EmailErrors: 1},
		{Source: "euractiv", Processed: 5, Saved: 2, Duplicates: 2, Errors: 1, EmailsFound: 1, EmailsSent: 1},
	})

	assert.Equal(t, "total", total.Source)
	assert.Equal(t, 15, total.Processed)
	assert.Equal(t, 8, total.Saved)
	assert.Equal(t, 5, total.Duplicates)
	assert.Equal(t, 1, total.Skipped)
	assert.Equal(t, 1, total.Errors)
	assert.Equal(t, 5, total.EmailsFound)
	assert.Equal(t, 4, total.EmailsSent)
	assert.Equal(t, 1, total.EmailErrors)
}

func TestStatsString(t *testing.T) {
	s := Stats{Processed: 7, Saved: 4, Duplicates: 2, Skipped: 1, EmailsFound: 3, EmailsSent: 2, EmailErrors: 1}
	assert.Equal(t,
		"processed=7 saved=4 duplicates=2 skipped=1 errors=0 emails_found=3 emails_sent=2 email_errors=1",
		s.String())
}
