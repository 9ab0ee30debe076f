package euractiv

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmill-engine/internal/dedupe"
	"jobmill-engine/internal/domain"
	"jobmill-engine/internal/fetch"
	"jobmill-engine/internal/ingest"
)

type memStore struct {
	saved []domain.Listing
}

func (m *memStore) SaveListing(_ context.Context, l domain.Listing) (bool, error) {
	m.saved = append(m.saved, l)
	return true, nil
}

func newRun(store ingest.Storage, seed []string) *ingest.Run {
	p := ingest.NewPipeline(ingest.PipelineOptions{
		Store:    store,
		Resolver: dedupe.NewResolver(seed),
	})
	return p.NewRun("euractiv")
}

func testClient() *fetch.Client {
	return fetch.New(fetch.Options{PerHostRPS: 1000, Burst: 1000, Retries: 1, Backoff: time.Millisecond})
}

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>EurActiv JobSite</title>
<link>https://jobs.euractiv.example</link>
<description>Vacancies</description>
<item>
  <title>Senior Policy Officer</title>
  <link>https://jobs.euractiv.example/job/4101</link>
  <description><![CDATA[<p>Shape European <strong>transport policy</strong>.</p><p>Apply via hiring@eda.example with your CV.</p>]]></description>
  <category domain="agency">European Defence Agency</category>
  <category domain="contract_type">Fixed term</category>
  <category domain="vacancy_type">Part-time</category>
  <category domain="tags">defence</category>
  <category domain="tags">procurement</category>
  <category domain="location">Brussels, Belgium</category>
  <category>Uncategorised extra</category>
</item>
<item>
  <title>Junior Press Assistant</title>
  <link>https://jobs.euractiv.example/job/4102</link>
  <category domain="agency">Press Office</category>
</item>
<item>
  <title></title>
  <link>https://jobs.euractiv.example/job/4103</link>
</item>
</channel>
</rss>`

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(body))
	}))
}

func TestRunExtractsTaxonomy(t *testing.T) {
	srv := serveFeed(t, feedXML)
	defer srv.Close()

	store := &memStore{}
	run := newRun(store, nil)
	a := New(Config{FeedURL: srv.URL, MaxListings: 100}, testClient())

	require.NoError(t, a.Run(context.Background(), run))
	require.Len(t, store.saved, 2)

	first := store.saved[0]
	assert.Equal(t, "Senior Policy Officer", first.Title)
	assert.Equal(t, "European Defence Agency", first.CompanyName)
	assert.Equal(t, "Fixed term", first.ContractType)
	assert.Equal(t, domain.TypePartTime, first.Type)
	assert.Equal(t, domain.SenioritySenior, first.Seniority)
	assert.Equal(t, []string{"defence", "procurement"}, first.Tags)
	assert.Equal(t, "Brussels", first.City)
	assert.Equal(t, "Belgium", first.Country)
	assert.Equal(t, "https://jobs.euractiv.example/job/4101", first.ApplyLink)
	assert.Empty(t, first.RelativeLink, "the feed has no stable relative paths")
	assert.Equal(t, "hiring@eda.example", first.ContactEmail)
	assert.Equal(t,
		"Shape European transport policy.\n\nApply via hiring@eda.example with your CV.",
		first.Description)

	// no description in the feed, the reader is pointed at the listing
	second := store.saved[1]
	assert.Equal(t, "Press Office", second.CompanyName)
	assert.Equal(t, fallbackDescription, second.Description)
	assert.Empty(t, second.ContactEmail)

	// the titleless third item
	assert.Equal(t, 1, run.Stats.Skipped)
}

func TestRunCandidateCap(t *testing.T) {
	srv := serveFeed(t, feedXML)
	defer srv.Close()

	store := &memStore{}
	run := newRun(store, nil)
	a := New(Config{FeedURL: srv.URL, MaxListings: 1}, testClient())

	require.NoError(t, a.Run(context.Background(), run))
	assert.Len(t, store.saved, 1)
}

func TestRunSkipsKnownLinks(t *testing.T) {
	// a feed whose only item was already stored under its apply link:
	// the run must end with nothing saved and one duplicate counted
	const singleItem = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>EurActiv JobSite</title>
<item>
  <title>Senior Policy Officer</title>
  <link>https://jobs.euractiv.example/job/4101</link>
</item>
</channel></rss>`
	srv := serveFeed(t, singleItem)
	defer srv.Close()

	store := &memStore{}
	run := newRun(store, []string{"https://jobs.euractiv.example/job/4101"})
	a := New(Config{FeedURL: srv.URL, MaxListings: 100}, testClient())

	require.NoError(t, a.Run(context.Background(), run))
	assert.Empty(t, store.saved)
	assert.Equal(t, 1, run.Stats.Duplicates)
	assert.Zero(t, run.Stats.Processed, "known links are dropped before extraction")
}

func TestRunFeedUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	run := newRun(&memStore{}, nil)
	a := New(Config{FeedURL: srv.URL, MaxListings: 100}, testClient())

	err := a.Run(context.Background(), run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch feed")
}

func TestRunMalformedFeed(t *testing.T) {
	srv := serveFeed(t, `{"definitely":"not xml"}`)
	defer srv.Close()

	run := newRun(&memStore{}, nil)
	a := New(Config{FeedURL: srv.URL, MaxListings: 100}, testClient())

	err := a.Run(context.Background(), run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse feed")
}
