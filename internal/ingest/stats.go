package ingest

import "fmt"

// Stats is one adapter run's tally. Duplicates and skips are normal
// outcomes, not errors; Errors counts candidates or pages that actually
// failed.
type Stats struct {
	Source      string
	Processed   int
	Saved       int
	Duplicates  int
	Skipped     int
	Errors      int
	EmailsFound int
	EmailsSent  int
	EmailErrors int
}

func (s Stats) String() string {
	return fmt.Sprintf("processed=%d saved=%d duplicates=%d skipped=%d errors=%d emails_found=%d emails_sent=%d email_errors=%d",
		s.Processed, s.Saved, s.Duplicates, s.Skipped, s.Errors, s.EmailsFound, s.EmailsSent, s.EmailErrors)
}

// Totals folds per-source stats into one summary line for the end of a run.
func Totals(all []Stats) Stats {
	var t Stats
	t.Source = "total"
	for _, s := range all {
		t.Processed += s.Processed
		t.Saved += s.Saved
		t.Duplicates += s.Duplicates
		t.Skipped += s.Skipped
		t.Errors += s.Errors
		t.EmailsFound += s.EmailsFound
		t.EmailsSent += s.EmailsSent
		t.EmailErrors += s.EmailErrors
	}
	return t
}
