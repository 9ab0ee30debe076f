package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Deliberately lenient: ASCII local part, dotted domain, 2+ letter TLD.
var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)

// Emails returns the addresses found in text, deduplicated, in discovery
// order. The first element is what ends up as a listing's contactEmail.
func Emails(text string) []string {
	return dedupeEmails(emailPattern.FindAllString(text, -1))
}

// DiscoverEmails scans the flattened description text, mailto anchors, and
// any element whose class mentions "email" or "contact". One combined
// ordered set comes back; text hits sort before markup hits.
func DiscoverEmails(sel *goquery.Selection, flattened string) []string {
	found := emailPattern.FindAllString(flattened, -1)

	sel.Find(`a[href^="mailto:"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(href, '?'); i >= 0 {
			href = href[:i]
		}
		found = append(found, emailPattern.FindAllString(href, -1)...)
	})

	sel.Find(`[class*="email"], [class*="contact"]`).Each(func(_ int, el *goquery.Selection) {
		found = append(found, emailPattern.FindAllString(el.Text(), -1)...)
	})

	return dedupeEmails(found)
}

func dedupeEmails(found []string) []string {
	if len(found) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(found))
	out := make([]string, 0, len(found))
	for _, e := range found {
		k := strings.ToLower(e)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}
