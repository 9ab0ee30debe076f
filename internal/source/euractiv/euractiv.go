// Package euractiv ingests the EurActiv JobSite syndication feed. One
// fetch yields every candidate; structured fields ride along as RSS
// category elements whose domain attribute names the taxonomy (agency,
// contract_type, vacancy_type, tags, location).
package euractiv

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed/rss"

	"jobmill-engine/internal/domain"
	"jobmill-engine/internal/extract"
	"jobmill-engine/internal/fetch"
	"jobmill-engine/internal/ingest"
)

// Taxonomy identifiers carried in <category domain="...">. Matching is
// exact; anything else is ignored.
const (
	taxAgency       = "agency"
	taxContractType = "contract_type"
	taxVacancyType  = "vacancy_type"
	taxTags         = "tags"
	taxLocation     = "location"
)

// fallbackDescription substitutes for items published without one.
const fallbackDescription = "Full details are available on the original listing page."

type Config struct {
	FeedURL     string
	MaxListings int
}

type Adapter struct {
	cfg    Config
	client *fetch.Client
	parser *rss.Parser
}

func New(cfg Config, client *fetch.Client) *Adapter {
	return &Adapter{cfg: cfg, client: client, parser: &rss.Parser{}}
}

func (a *Adapter) Name() string { return "euractiv" }

// Run fetches the feed once and walks its items in document order. The
// feed has no stable relative paths, so the item link doubles as apply
// link and dedupe key.
func (a *Adapter) Run(ctx context.Context, run *ingest.Run) error {
	body, err := a.client.Get(ctx, a.cfg.FeedURL)
	if err != nil {
		return fmt.Errorf("fetch feed: %w", err)
	}
	feed, err := a.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse feed: %w", err)
	}
	log.Printf("[euractiv] feed items=%d", len(feed.Items))

	for i, item := range feed.Items {
		if i >= a.cfg.MaxListings {
			log.Printf("[euractiv] candidate cap %d reached", a.cfg.MaxListings)
			return nil
		}
		if item == nil {
			continue
		}

		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			log.Printf("[euractiv] item without title or link, skipping")
			run.MarkSkipped()
			continue
		}
		if run.IsDuplicate(link) {
			continue
		}

		run.Process(ctx, a.buildDraft(item, title, link))
	}
	return nil
}

func (a *Adapter) buildDraft(item *rss.Item, title, link string) domain.Draft {
	tax := taxonomy{}
	for _, c := range item.Categories {
		if c == nil {
			continue
		}
		value := strings.TrimSpace(c.Value)
		if value == "" {
			continue
		}
		switch c.Domain {
		case taxAgency:
			tax.agency = value
		case taxContractType:
			tax.contractType = value
		case taxVacancyType:
			tax.vacancyType = value
		case taxTags:
			tax.tags = append(tax.tags, value)
		case taxLocation:
			tax.location = value
		}
	}

	desc := flattenDescription(item.Description)
	if desc == "" {
		desc = fallbackDescription
	}

	return domain.Draft{
		Title:        title,
		CompanyName:  tax.agency,
		Description:  desc,
		Emails:       extract.Emails(desc),
		Tags:         tax.tags,
		ContractType: tax.contractType,
		JobType:      tax.vacancyType,
		LocationRaw:  tax.location,
		ApplyLink:    link,
		// no RelativeLink: the feed is the one source without stable paths
	}
}

type taxonomy struct {
	agency       string
	contractType string
	vacancyType  string
	location     string
	tags         []string
}

// flattenDescription strips the markup feeds tend to wrap descriptions
// in. Plain-text descriptions pass through whitespace-normalized.
func flattenDescription(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return extract.CleanText(raw)
	}
	return extract.HTMLText(doc.Selection, nil)
}
