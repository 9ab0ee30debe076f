package domain

import "time"

// Seniority tiers. Every listing carries exactly one of these; classification
// never returns anything outside this set.
const (
	SeniorityIntern = "intern"
	SeniorityJunior = "junior"
	SeniorityMid    = "mid-level"
	SenioritySenior = "senior"
)

// Remote status values.
const (
	RemoteYes     = "yes"
	RemotePartial = "partial"
	RemoteNo      = "no"
)

// Employment type values.
const (
	TypeFullTime = "full-time"
	TypePartTime = "part-time"
)

// DefaultPlan is the lifecycle tag assigned to every scraped listing.
const DefaultPlan = "basic"

// DefaultExpiryDays applies when a source provides no explicit deadline.
const DefaultExpiryDays = 30

// Listing is the persisted record, one row per ingested job posting.
type Listing struct {
	ID           string
	Slug         string // unique, derived from (title, company, id) at creation
	Title        string
	Description  string
	CompanyName  string
	Tags         []string
	Seniority    string
	ContractType string // free text: permanent/fixed-term/freelance/internship
	Type         string // full-time or part-time
	Remote       string // yes/partial/no
	City         string
	Country      string
	State        string
	Salary       int // monthly estimate, 0 = unknown
	Plan         string
	ApplyLink    string
	RelativeLink string // sparse-unique dedupe key, '' when the source has none
	ContactEmail string // first discovered email, '' when none
	Source       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ExpiresOn    time.Time
}
