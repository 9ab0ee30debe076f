// Package normalize derives canonical listing fields from raw title and
// description text. Every function here is pure and total: unknown input
// degrades to a documented default, never to an error.
package normalize

import (
	"regexp"
	"strings"

	"jobmill-engine/internal/domain"
)

var (
	slugStrip   = regexp.MustCompile(`[^a-z0-9\s-]+`)
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugHyphens = regexp.MustCompile(`-{2,}`)
)

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func last6(id string) string {
	if len(id) > 6 {
		id = id[len(id)-6:]
	}
	return strings.ToLower(id)
}

// Slug builds the URL-safe identifier "{title}-at-{company}-{last6(id)}".
// It is deterministic and emits only [a-z0-9-]. Empty title and company
// fall back to "untitled" and "unknown-company".
func Slug(title, company, id string) string {
	t := slugify(title)
	if t == "" {
		t = "untitled"
	}
	c := slugify(company)
	if c == "" {
		c = "unknown-company"
	}
	out := t + "-at-" + c + "-" + last6(id)
	return strings.Trim(slugHyphens.ReplaceAllString(out, "-"), "-")
}

// keywordRule maps any-of substrings to a canonical value; tables are
// evaluated top to bottom, first hit wins.
type keywordRule struct {
	any   []string
	value string
}

var seniorityRules = []keywordRule{
	{any: []string{"intern", "trainee"}, value: domain.SeniorityIntern},
	{any: []string{"junior", "assistant"}, value: domain.SeniorityJunior},
	{any: []string{"senior", "manager", "lead"}, value: domain.SenioritySenior},
}

// Seniority classifies a title into one of the four tiers, mid-level when
// no keyword matches. Matching is case-insensitive and on the title only.
func Seniority(title string) string {
	t := strings.ToLower(title)
	for _, r := range seniorityRules {
		for _, needle := range r.any {
			if strings.Contains(t, needle) {
				return r.value
			}
		}
	}
	return domain.SeniorityMid
}

var contractRules = []keywordRule{
	{any: []string{"permanent", "indefinite"}, value: "permanent"},
	{any: []string{"fixed term", "fixed-term", "temporary"}, value: "fixed-term"},
	{any: []string{"freelance", "contractor"}, value: "freelance"},
	{any: []string{"internship", "trainee"}, value: "internship"},
}

// ContractType keeps an explicit source value verbatim, otherwise infers
// from text, otherwise stays blank.
func ContractType(explicit, text string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	t := strings.ToLower(text)
	for _, r := range contractRules {
		for _, needle := range r.any {
			if strings.Contains(t, needle) {
				return r.value
			}
		}
	}
	return ""
}

// JobType maps a source's explicit employment-type hint onto the
// full-time/part-time pair, defaulting to full-time.
func JobType(explicit string) string {
	if strings.Contains(strings.ToLower(explicit), "part") {
		return domain.TypePartTime
	}
	return domain.TypeFullTime
}
