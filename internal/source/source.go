// Package source holds the helpers shared by the per-site adapter
// packages underneath it. Each adapter walks one external source and
// feeds candidates into an ingest run; the common plumbing for URLs and
// source-supplied dates lives here.
package source

import (
	"net/url"
	"strings"
	"time"
)

// AbsoluteURL resolves href against base. Already-absolute links pass
// through untouched; junk that does not parse comes back empty so callers
// can treat it as a missing link.
func AbsoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	h, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(h).String()
}

// dateLayouts covers the formats the scraped sites actually publish.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	time.RFC3339,
}

// ParseDate turns a scraped deadline string into a time, nil when nothing
// matches. Dates are read as UTC midnight; sources publish days, not
// instants.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
