// Package eurobrussels scrapes the paginated EuroBrussels job table. Rows
// carry the title, employer and location; the full description, contact
// emails and deadline live on a per-row detail page, occasionally only as
// a PDF or DOCX attachment.
package eurobrussels

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobmill-engine/internal/dedupe"
	"jobmill-engine/internal/docext"
	"jobmill-engine/internal/domain"
	"jobmill-engine/internal/extract"
	"jobmill-engine/internal/fetch"
	"jobmill-engine/internal/ingest"
	"jobmill-engine/internal/source"
)

// Attribution sentences the site appends to every posting; they never
// belong in a stored description.
var boilerplate = []string{
	"found on eurobrussels",
	"via eurobrussels",
	"eurobrussels is the leading job board",
}

type Config struct {
	BaseURL     string // https://www.eurobrussels.com
	MaxListings int    // cap on candidates examined per run
}

type Adapter struct {
	cfg    Config
	client *fetch.Client
}

func New(cfg Config, client *fetch.Client) *Adapter {
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return "eurobrussels" }

// row is one table entry from a listing page.
type row struct {
	Title    string
	Company  string
	Location string
	Href     string // site-relative detail link
}

// Run walks the listing pages in order until the table runs dry or the
// candidate cap is hit. A first page that never loads aborts the whole
// pass; a later page failure keeps whatever the earlier pages produced.
func (a *Adapter) Run(ctx context.Context, run *ingest.Run) error {
	base := strings.TrimSuffix(a.cfg.BaseURL, "/")
	examined := 0

	for page := 1; ; page++ {
		pageURL := fmt.Sprintf("%s/jobs?page=%d", base, page)
		doc, err := a.client.GetDocument(ctx, pageURL)
		if err != nil {
			if page == 1 {
				return fmt.Errorf("first listing page: %w", err)
			}
			log.Printf("[eurobrussels] page=%d unreachable, keeping partial results: %v", page, err)
			run.MarkError()
			return nil
		}

		rows := parseRows(doc)
		if len(rows) == 0 {
			return nil // past the last page
		}
		log.Printf("[eurobrussels] page=%d rows=%d", page, len(rows))

		for _, r := range rows {
			if examined >= a.cfg.MaxListings {
				log.Printf("[eurobrussels] candidate cap %d reached", a.cfg.MaxListings)
				return nil
			}
			examined++

			if r.Href == "" || r.Title == "" {
				log.Printf("[eurobrussels] row without title or link, skipping")
				run.MarkSkipped()
				continue
			}
			key := dedupe.RelativeKey(r.Href)
			if run.IsDuplicate(key) {
				continue
			}

			draft, err := a.fetchDetail(ctx, base, r)
			if err != nil {
				log.Printf("[eurobrussels] detail %s: %v", r.Href, err)
				run.MarkError()
				continue
			}
			draft.RelativeLink = key
			run.Process(ctx, draft)
		}
	}
}

func parseRows(doc *goquery.Document) []row {
	var rows []row
	doc.Find("table.job-list tr, table.jobs tr").Each(func(_ int, tr *goquery.Selection) {
		link := tr.Find("a[href]").First()
		href, _ := link.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return // header or spacer row
		}
		rows = append(rows, row{
			Title:    extract.CleanText(link.Text()),
			Company:  extract.CleanText(tr.Find("td.company, .employer").First().Text()),
			Location: extract.CleanText(tr.Find("td.location, .location").First().Text()),
			Href:     href,
		})
	})
	return rows
}

// fetchDetail loads the posting page and builds the draft. The
// description comes from the inline body when there is one, otherwise
// from a linked attachment, otherwise from the shared placeholder.
func (a *Adapter) fetchDetail(ctx context.Context, base string, r row) (domain.Draft, error) {
	detailURL := source.AbsoluteURL(base, r.Href)
	doc, err := a.client.GetDocument(ctx, detailURL)
	if err != nil {
		return domain.Draft{}, err
	}

	body := doc.Find(".job-description, #job-description, article").First()
	if body.Length() == 0 {
		body = doc.Find("body")
	}

	applyLink := detailURL
	if href, ok := doc.Find("a.apply, a[href*='apply']").First().Attr("href"); ok {
		if abs := source.AbsoluteURL(detailURL, href); abs != "" {
			applyLink = abs
		}
	}

	meta := metaFields(doc)

	desc := extract.HTMLText(body, boilerplate)
	if desc == "" {
		desc = a.attachmentText(ctx, detailURL, doc)
	}

	company := r.Company
	if company == "" {
		company = extract.CleanText(doc.Find(".employer, .company-name").First().Text())
	}
	location := r.Location
	if location == "" {
		location = meta["location"]
	}

	return domain.Draft{
		Title:        r.Title,
		CompanyName:  company,
		Description:  desc,
		Emails:       extract.DiscoverEmails(doc.Selection, desc),
		ContractType: meta["contract type"],
		LocationRaw:  location,
		ApplyLink:    applyLink,
		Deadline:     source.ParseDate(meta["deadline"]),
	}, nil
}

// metaFields reads the dt/dd facts box on a detail page into a lowercase
// key map ("Contract Type" -> "contract type").
func metaFields(doc *goquery.Document) map[string]string {
	meta := make(map[string]string)
	doc.Find("dl dt").Each(func(_ int, dt *goquery.Selection) {
		key := strings.ToLower(extract.CleanText(dt.Text()))
		val := extract.CleanText(dt.NextFiltered("dd").Text())
		if key != "" && val != "" {
			meta[key] = val
		}
	})
	return meta
}

// attachmentText pulls the description out of a linked PDF/DOCX when the
// page has no inline body. Any failure degrades to the placeholder; an
// unreadable attachment never costs the candidate.
func (a *Adapter) attachmentText(ctx context.Context, pageURL string, doc *goquery.Document) string {
	href, ok := doc.Find(`a[href$=".pdf"], a[href$=".docx"]`).First().Attr("href")
	if !ok {
		return docext.Placeholder
	}
	attURL := source.AbsoluteURL(pageURL, href)
	if attURL == "" {
		return docext.Placeholder
	}

	data, err := a.client.Get(ctx, attURL)
	if err != nil {
		log.Printf("[eurobrussels] attachment fetch %s: %v", attURL, err)
		return docext.Placeholder
	}
	text, err := docext.Text(attURL, data)
	if err != nil {
		log.Printf("[eurobrussels] attachment text %s: %v", attURL, err)
		return docext.Placeholder
	}
	return text
}
