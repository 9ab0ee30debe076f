// Package extract turns source payloads (parsed markup fragments or CMS
// rich-text trees) into a flat description string plus the contact emails
// discovered inside. Nothing here touches the network or the store.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Block-level elements that contribute one line each to the flattened text.
const blockSelector = "p, li, h1, h2, h3, h4, h5, h6"

// CleanText collapses whitespace runs (including NBSP) to single spaces.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, " ", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// HTMLText flattens a markup fragment into readable plain text. Script and
// style subtrees are dropped, paragraphs matching any boilerplate rule
// (case-insensitive substring) are removed, and the remaining block elements
// are joined with blank lines. Mutates the selection it is given.
func HTMLText(sel *goquery.Selection, boilerplate []string) string {
	sel.Find("script, style, noscript").Remove()
	removeBoilerplate(sel, boilerplate)

	var blocks []string
	sel.Find(blockSelector).Each(func(_ int, el *goquery.Selection) {
		// skip nested blocks (li > p); the outermost one carries the text
		if el.ParentsFiltered(blockSelector).Length() > 0 {
			return
		}
		if t := CleanText(el.Text()); t != "" {
			blocks = append(blocks, t)
		}
	})
	if len(blocks) == 0 {
		// fragment with no block structure at all
		return CleanText(sel.Text())
	}
	return strings.Join(blocks, "\n\n")
}

func removeBoilerplate(sel *goquery.Selection, rules []string) {
	if len(rules) == 0 {
		return
	}
	sel.Find("p").Each(func(_ int, p *goquery.Selection) {
		t := strings.ToLower(p.Text())
		for _, rule := range rules {
			if strings.Contains(t, strings.ToLower(rule)) {
				p.Remove()
				return
			}
		}
	})
}
