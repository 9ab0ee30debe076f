// Package ingest drives candidates through the shared pipeline: duplicate
// check, normalization, persistence, then notification of any contact
// addresses the extractor found. Adapters own the fetching; everything
// after the Draft is built lives here.
package ingest

import (
	"context"
	"fmt"
	"html/template"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobmill-engine/internal/dedupe"
	"jobmill-engine/internal/domain"
	"jobmill-engine/internal/normalize"
	"jobmill-engine/internal/notify"
)

// Storage is the slice of the store the pipeline needs.
type Storage interface {
	SaveListing(ctx context.Context, l domain.Listing) (bool, error)
}

// PipelineOptions wires one engine invocation. Queue may be nil to turn
// notifications off; Now and NewID exist so tests can pin time and
// identity.
type PipelineOptions struct {
	Store      Storage
	Resolver   *dedupe.Resolver
	Queue      *notify.Queue
	Now        func() time.Time
	NewID      func() string
	ExpiryDays int
	DryRun     bool
}

// Pipeline holds the collaborators shared by every adapter in a run. It is
// constructed once per invocation and passed around explicitly.
type Pipeline struct {
	store      Storage
	resolver   *dedupe.Resolver
	queue      *notify.Queue
	now        func() time.Time
	newID      func() string
	expiryDays int
	dryRun     bool
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.ExpiryDays <= 0 {
		opts.ExpiryDays = domain.DefaultExpiryDays
	}
	return &Pipeline{
		store:      opts.Store,
		resolver:   opts.Resolver,
		queue:      opts.Queue,
		now:        opts.Now,
		newID:      opts.NewID,
		expiryDays: opts.ExpiryDays,
		dryRun:     opts.DryRun,
	}
}

// NewRun opens the bookkeeping for one adapter run: its stats and the
// recipients already notified within it.
func (p *Pipeline) NewRun(source string) *Run {
	return &Run{
		p:        p,
		source:   source,
		Stats:    Stats{Source: source},
		notified: make(map[string]bool),
	}
}

// Run is one adapter's pass over its source.
type Run struct {
	p        *Pipeline
	source   string
	Stats    Stats
	notified map[string]bool
}

// IsDuplicate consults the resolver before the adapter spends a detail
// fetch on the candidate. A hit is tallied as a duplicate.
func (r *Run) IsDuplicate(key string) bool {
	if r.p.resolver.IsDuplicate(key) {
		r.Stats.Duplicates++
		return true
	}
	return false
}

// MarkSkipped records a candidate dropped for a missing field or a failed
// detail fetch that the adapter chose to survive.
func (r *Run) MarkSkipped() { r.Stats.Skipped++ }

// MarkError records a page or candidate failure that was logged upstream.
func (r *Run) MarkError() { r.Stats.Errors++ }

// Process takes a fully extracted Draft through normalization,
// persistence and notification. Per-candidate failures are logged and
// tallied, never returned; nothing a single candidate does can abort the
// run.
func (r *Run) Process(ctx context.Context, d domain.Draft) {
	r.Stats.Processed++

	if strings.TrimSpace(d.Title) == "" || (d.ApplyLink == "" && d.RelativeLink == "") {
		log.Printf("[ingest] source=%s skipping candidate without title or link", r.source)
		r.Stats.Skipped++
		return
	}

	key := d.RelativeLink
	if key == "" {
		key = d.ApplyLink
	}
	if r.p.resolver.IsDuplicate(key) {
		r.Stats.Duplicates++
		return
	}

	l := r.build(d)

	if r.p.dryRun {
		log.Printf("[ingest] source=%s dry-run: would save %q (%s)", r.source, l.Title, l.Slug)
		r.register(d)
		r.Stats.Saved++
		r.Stats.EmailsFound += len(d.Emails)
		return
	}

	added, err := r.p.store.SaveListing(ctx, l)
	if err != nil {
		log.Printf("[ingest] source=%s save %s: %v", r.source, l.Slug, err)
		r.Stats.Errors++
		return
	}
	if !added {
		// lost the race to the unique index; same outcome as a resolver hit
		log.Printf("[ingest] source=%s duplicate at save: %s", r.source, key)
		r.register(d)
		r.Stats.Duplicates++
		return
	}

	r.register(d)
	r.Stats.Saved++
	log.Printf("[ingest] source=%s saved %q (%s)", r.source, l.Title, l.Slug)

	r.notify(ctx, l, d.Emails)
}

// register records both link keys so later candidates in this run, from
// any source, see the save immediately.
func (r *Run) register(d domain.Draft) {
	r.p.resolver.Register(d.RelativeLink)
	r.p.resolver.Register(d.ApplyLink)
}

func (r *Run) build(d domain.Draft) domain.Listing {
	now := r.p.now().UTC()
	id := r.p.newID()
	text := d.Title + "\n" + d.Description

	// expiresOn must land strictly after createdAt; a stale source
	// deadline falls back to the default window
	expires := now.AddDate(0, 0, r.p.expiryDays)
	if d.Deadline != nil && d.Deadline.After(now) {
		expires = d.Deadline.UTC()
	}

	city, state, country := normalize.SplitLocation(d.LocationRaw)

	var contact string
	if len(d.Emails) > 0 {
		contact = d.Emails[0]
	}

	return domain.Listing{
		ID:           id,
		Slug:         normalize.Slug(d.Title, d.CompanyName, id),
		Title:        strings.TrimSpace(d.Title),
		Description:  d.Description,
		CompanyName:  strings.TrimSpace(d.CompanyName),
		Tags:         d.Tags,
		Seniority:    normalize.Seniority(d.Title),
		ContractType: normalize.ContractType(d.ContractType, text),
		Type:         normalize.JobType(d.JobType),
		Remote:       normalize.RemoteStatus(text),
		City:         city,
		Country:      country,
		State:        state,
		Salary:       normalize.SalaryEstimate(text),
		Plan:         domain.DefaultPlan,
		ApplyLink:    d.ApplyLink,
		RelativeLink: d.RelativeLink,
		ContactEmail: contact,
		Source:       r.source,
		CreatedAt:    now,
		UpdatedAt:    now,
		ExpiresOn:    expires,
	}
}

var mailBody = template.Must(template.New("notify").Parse(`<p>Hello,</p>
<p>Your job posting <strong>{{.Title}}</strong>{{if .CompanyName}} at {{.CompanyName}}{{end}} is now listed on JobMill:</p>
<p><a href="https://jobmill.eu/jobs/{{.Slug}}">jobmill.eu/jobs/{{.Slug}}</a></p>
<p>Reply to this email to claim or update the listing.</p>`))

// notify queues one email per newly discovered address and waits for the
// handles so the run's summary reflects real outcomes. Addresses already
// notified in this adapter run are not queued twice.
func (r *Run) notify(ctx context.Context, l domain.Listing, emails []string) {
	r.Stats.EmailsFound += len(emails)
	if r.p.queue == nil || len(emails) == 0 {
		return
	}

	var html strings.Builder
	if err := mailBody.Execute(&html, l); err != nil {
		log.Printf("[notify] source=%s render body: %v", r.source, err)
		r.Stats.EmailErrors++
		return
	}
	subject := fmt.Sprintf("Your job posting %q on JobMill", l.Title)

	type pendingSend struct {
		to     string
		handle <-chan notify.Result
	}
	var sends []pendingSend
	for _, to := range emails {
		lower := strings.ToLower(to)
		if r.notified[lower] {
			continue
		}
		r.notified[lower] = true
		sends = append(sends, pendingSend{
			to: to,
			handle: r.p.queue.Enqueue(notify.Message{
				To:      to,
				Subject: subject,
				HTML:    html.String(),
				Tags:    []string{r.source, "job-notification"},
			}),
		})
	}

	for _, s := range sends {
		select {
		case res := <-s.handle:
			if res.Err != nil {
				log.Printf("[notify] source=%s to=%s: %v", r.source, s.to, res.Err)
				r.Stats.EmailErrors++
			} else {
				r.Stats.EmailsSent++
			}
		case <-ctx.Done():
			log.Printf("[notify] source=%s canceled waiting on %s", r.source, s.to)
			r.Stats.EmailErrors++
		}
	}
}
