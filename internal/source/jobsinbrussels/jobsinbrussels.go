// Package jobsinbrussels scrapes a card-based board where postings hang
// off employer pages: an outer company directory, then up to a handful of
// job cards per company. Apply buttons are tracking redirects; the true
// destination is taken from the Location header in one hop.
package jobsinbrussels

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"jobmill-engine/internal/dedupe"
	"jobmill-engine/internal/domain"
	"jobmill-engine/internal/extract"
	"jobmill-engine/internal/fetch"
	"jobmill-engine/internal/ingest"
	"jobmill-engine/internal/source"
)

var boilerplate = []string{
	"this position was posted on jobs in brussels",
	"powered by jobs in brussels",
}

type Config struct {
	BaseURL       string // https://www.jobsinbrussels.com
	MaxCompanies  int    // cap on employer pages visited per run
	MaxPerCompany int    // cap on job cards taken per employer
}

type Adapter struct {
	cfg    Config
	client *fetch.Client
}

func New(cfg Config, client *fetch.Client) *Adapter {
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return "jobsinbrussels" }

type company struct {
	Name string
	Href string
}

type card struct {
	Title    string
	Location string
	Href     string // site-relative detail link
	ApplyRef string // tracking redirect target
}

// Run enumerates the company directory, then visits each employer page
// for its job cards. The directory is foundational: if it never loads the
// pass aborts. A single employer page failing only costs that employer.
func (a *Adapter) Run(ctx context.Context, run *ingest.Run) error {
	base := strings.TrimSuffix(a.cfg.BaseURL, "/")

	companies, err := a.fetchCompanies(ctx, base)
	if err != nil {
		return fmt.Errorf("company directory: %w", err)
	}
	log.Printf("[jobsinbrussels] companies=%d (cap %d)", len(companies), a.cfg.MaxCompanies)

	for _, co := range companies {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, err := a.client.GetDocument(ctx, source.AbsoluteURL(base, co.Href))
		if err != nil {
			log.Printf("[jobsinbrussels] company %q page: %v", co.Name, err)
			run.MarkError()
			continue
		}
		a.processCompany(ctx, run, base, co, parseCards(doc))
	}
	return nil
}

// fetchCompanies pages through the directory until the company cap, an
// empty page, or a pagination failure. Only page 1 is fatal.
func (a *Adapter) fetchCompanies(ctx context.Context, base string) ([]company, error) {
	var out []company
	for page := 1; len(out) < a.cfg.MaxCompanies; page++ {
		dirURL := fmt.Sprintf("%s/companies?page=%d", base, page)
		doc, err := a.client.GetDocument(ctx, dirURL)
		if err != nil {
			if page == 1 {
				return nil, err
			}
			log.Printf("[jobsinbrussels] directory page=%d unreachable: %v", page, err)
			break
		}

		before := len(out)
		doc.Find(".company-card").Each(func(_ int, sel *goquery.Selection) {
			if len(out) >= a.cfg.MaxCompanies {
				return
			}
			link := sel.Find("a[href]").First()
			href, _ := link.Attr("href")
			name := extract.CleanText(sel.Find(".company-name").First().Text())
			if name == "" {
				name = extract.CleanText(link.Text())
			}
			if strings.TrimSpace(href) == "" || name == "" {
				return
			}
			out = append(out, company{Name: name, Href: strings.TrimSpace(href)})
		})
		if len(out) == before {
			break // past the last directory page
		}
	}
	return out, nil
}

func parseCards(doc *goquery.Document) []card {
	var cards []card
	doc.Find(".job-card").Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a.job-link, h3 a").First()
		href, _ := link.Attr("href")
		applyRef, _ := sel.Find("a.apply, a[href*='/go/']").First().Attr("href")
		cards = append(cards, card{
			Title:    extract.CleanText(link.Text()),
			Location: extract.CleanText(sel.Find(".location").First().Text()),
			Href:     strings.TrimSpace(href),
			ApplyRef: strings.TrimSpace(applyRef),
		})
	})
	return cards
}

func (a *Adapter) processCompany(ctx context.Context, run *ingest.Run, base string, co company, cards []card) {
	taken := 0
	for _, c := range cards {
		if taken >= a.cfg.MaxPerCompany {
			log.Printf("[jobsinbrussels] company %q card cap %d reached", co.Name, a.cfg.MaxPerCompany)
			return
		}
		taken++

		if c.Href == "" || c.Title == "" {
			log.Printf("[jobsinbrussels] company %q card without title or link, skipping", co.Name)
			run.MarkSkipped()
			continue
		}
		key := dedupe.RelativeKey(c.Href)
		if run.IsDuplicate(key) {
			continue
		}

		draft, err := a.fetchDetail(ctx, base, co, c)
		if err != nil {
			log.Printf("[jobsinbrussels] detail %s: %v", c.Href, err)
			run.MarkError()
			continue
		}
		draft.RelativeLink = key
		run.Process(ctx, draft)
	}
}

func (a *Adapter) fetchDetail(ctx context.Context, base string, co company, c card) (domain.Draft, error) {
	detailURL := source.AbsoluteURL(base, c.Href)
	doc, err := a.client.GetDocument(ctx, detailURL)
	if err != nil {
		return domain.Draft{}, err
	}

	body := doc.Find(".job-description, article").First()
	if body.Length() == 0 {
		body = doc.Find("body")
	}
	desc := extract.HTMLText(body, boilerplate)

	var tags []string
	doc.Find(".tags a, .tag").Each(func(_ int, t *goquery.Selection) {
		if v := extract.CleanText(t.Text()); v != "" {
			tags = append(tags, v)
		}
	})

	return domain.Draft{
		Title:        c.Title,
		CompanyName:  co.Name,
		Description:  desc,
		Emails:       extract.DiscoverEmails(doc.Selection, desc),
		Tags:         tags,
		ContractType: extract.CleanText(doc.Find(".contract-type").First().Text()),
		LocationRaw:  c.Location,
		ApplyLink:    a.resolveApply(ctx, detailURL, c.ApplyRef),
	}, nil
}

// resolveApply turns a tracking link into the real destination by reading
// the redirect's Location header, one hop only. No apply button, or a
// redirect that cannot be resolved, falls back to the detail page itself.
func (a *Adapter) resolveApply(ctx context.Context, detailURL, applyRef string) string {
	if applyRef == "" {
		return detailURL
	}
	trackURL := source.AbsoluteURL(detailURL, applyRef)
	if trackURL == "" {
		return detailURL
	}
	target, err := a.client.ResolveRedirect(ctx, trackURL)
	if err != nil {
		log.Printf("[jobsinbrussels] resolve apply %s: %v", trackURL, err)
		return detailURL
	}
	return target
}
