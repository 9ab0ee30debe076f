// Package storyblok ingests listings from a Storyblok-style headless CMS.
// The list endpoint returns lightweight story summaries; each posting's
// body arrives from the detail endpoint as a typed rich-text document that
// the extractor flattens.
package storyblok

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"jobmill-engine/internal/dedupe"
	"jobmill-engine/internal/domain"
	"jobmill-engine/internal/extract"
	"jobmill-engine/internal/fetch"
	"jobmill-engine/internal/ingest"
	"jobmill-engine/internal/richtext"
	"jobmill-engine/internal/source"
)

type Config struct {
	BaseURL     string // https://api.storyblok.com
	Token       string // public content-delivery token
	PerPage     int
	MaxListings int
}

type Adapter struct {
	cfg    Config
	client *fetch.Client
}

func New(cfg Config, client *fetch.Client) *Adapter {
	return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return "storyblok" }

// storySummary is the lightweight list-endpoint shape; content is only
// present on the detail endpoint.
type storySummary struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullSlug string `json:"full_slug"`
}

type storyList struct {
	Stories []storySummary `json:"stories"`
}

type storyDetail struct {
	Story struct {
		ID       int64        `json:"id"`
		Name     string       `json:"name"`
		FullSlug string       `json:"full_slug"`
		Content  storyContent `json:"content"`
	} `json:"story"`
}

type storyContent struct {
	Title        string          `json:"title"`
	Company      string          `json:"company"`
	CompanyName  string          `json:"company_name"`
	Body         json.RawMessage `json:"body"` // rich-text block tree
	ApplyURL     string          `json:"apply_url"`
	Location     string          `json:"location"`
	ContractType string          `json:"contract_type"`
	JobType      string          `json:"job_type"`
	Tags         []string        `json:"tags"`
	Deadline     string          `json:"deadline"`
}

// Run pages through the story list and hydrates each new slug from the
// detail endpoint. The first list page is foundational; later page
// failures keep the partial results.
func (a *Adapter) Run(ctx context.Context, run *ingest.Run) error {
	examined := 0
	for page := 1; ; page++ {
		var list storyList
		if err := a.client.GetJSON(ctx, a.listURL(page), &list); err != nil {
			if page == 1 {
				return fmt.Errorf("first story page: %w", err)
			}
			log.Printf("[storyblok] page=%d unreachable, keeping partial results: %v", page, err)
			run.MarkError()
			return nil
		}
		if len(list.Stories) == 0 {
			return nil
		}
		log.Printf("[storyblok] page=%d stories=%d", page, len(list.Stories))

		for _, s := range list.Stories {
			if examined >= a.cfg.MaxListings {
				log.Printf("[storyblok] candidate cap %d reached", a.cfg.MaxListings)
				return nil
			}
			examined++

			if s.FullSlug == "" {
				log.Printf("[storyblok] story id=%d without slug, skipping", s.ID)
				run.MarkSkipped()
				continue
			}
			key := dedupe.RelativeKey(s.FullSlug)
			if run.IsDuplicate(key) {
				continue
			}

			draft, err := a.fetchStory(ctx, s)
			if err != nil {
				log.Printf("[storyblok] story %s: %v", s.FullSlug, err)
				run.MarkError()
				continue
			}
			draft.RelativeLink = key
			run.Process(ctx, draft)
		}

		if len(list.Stories) < a.cfg.PerPage {
			return nil // short page means last page
		}
	}
}

func (a *Adapter) listURL(page int) string {
	return fmt.Sprintf("%s/v2/cdn/stories?starts_with=jobs/&page=%d&per_page=%d&token=%s",
		strings.TrimSuffix(a.cfg.BaseURL, "/"), page, a.cfg.PerPage, url.QueryEscape(a.cfg.Token))
}

func (a *Adapter) detailURL(id int64) string {
	return fmt.Sprintf("%s/v2/cdn/stories/%d?token=%s",
		strings.TrimSuffix(a.cfg.BaseURL, "/"), id, url.QueryEscape(a.cfg.Token))
}

func (a *Adapter) fetchStory(ctx context.Context, s storySummary) (domain.Draft, error) {
	var detail storyDetail
	if err := a.client.GetJSON(ctx, a.detailURL(s.ID), &detail); err != nil {
		return domain.Draft{}, err
	}
	c := detail.Story.Content

	title := strings.TrimSpace(c.Title)
	if title == "" {
		_, title = splitDisplayName(detail.Story.Name)
	}

	desc := a.flattenBody(s.FullSlug, c.Body)

	return domain.Draft{
		Title:        title,
		CompanyName:  companyName(c, detail.Story.Name),
		Description:  desc,
		Emails:       extract.Emails(desc),
		Tags:         c.Tags,
		ContractType: c.ContractType,
		JobType:      c.JobType,
		LocationRaw:  c.Location,
		ApplyLink:    strings.TrimSpace(c.ApplyURL),
		Deadline:     source.ParseDate(c.Deadline),
	}, nil
}

func (a *Adapter) flattenBody(slug string, body json.RawMessage) string {
	if len(body) == 0 {
		return ""
	}
	doc, err := richtext.Parse(body)
	if err != nil {
		// a malformed body is a CMS editing accident, not a lost candidate
		log.Printf("[storyblok] story %s body: %v", slug, err)
		return ""
	}
	return extract.FlattenRichText(doc)
}

// companyName falls back through the content fields, then the
// "Company - Title" display-name convention, then the unknown marker.
func companyName(c storyContent, displayName string) string {
	if v := strings.TrimSpace(c.Company); v != "" {
		return v
	}
	if v := strings.TrimSpace(c.CompanyName); v != "" {
		return v
	}
	if co, _ := splitDisplayName(displayName); co != "" {
		return co
	}
	return "Unknown Company"
}

// splitDisplayName splits "Acme - Senior Engineer" into company and title.
// Names without the separator yield no company and the whole name as
// title.
func splitDisplayName(name string) (company, title string) {
	name = strings.TrimSpace(name)
	if co, rest, ok := strings.Cut(name, " - "); ok {
		return strings.TrimSpace(co), strings.TrimSpace(rest)
	}
	return "", name
}
