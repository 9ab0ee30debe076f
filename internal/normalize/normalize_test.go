package normalize

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobmill-engine/internal/domain"
)

func TestSlug(t *testing.T) {
	id := "a1b2c3d4-e5f6-7890-abcd-ef0123456789"

	got := Slug("Senior Go Developer", "Acme BV", id)
	assert.Equal(t, "senior-go-developer-at-acme-bv-456789", got)

	// deterministic
	assert.Equal(t, got, Slug("Senior Go Developer", "Acme BV", id))
}

func TestSlugCharset(t *testing.T) {
	safe := regexp.MustCompile(`^[a-z0-9-]+$`)

	cases := []struct{ title, company, id string }{
		{"C++ / C# Engineer (m/f/x)", "Ünïcorn GmbH & Co.", "ID123ABC"},
		{"  Data.Scientist!!  ", "foo_bar", "xyz"},
		{"DevOps --- Engineer", "Tabs\tand\nnewlines", "000000"},
		{"软件工程师", "株式会社", "deadbeef"},
	}

	for _, c := range cases {
		got := Slug(c.title, c.company, c.id)
		assert.Regexp(t, safe, got, "slug %q from %q/%q", got, c.title, c.company)
	}
}

func TestSlugFallbacks(t *testing.T) {
	assert.Equal(t, "untitled-at-unknown-company-123456", Slug("", "", "123456"))
	assert.Equal(t, "untitled-at-acme-at-home-123456", Slug("!!!", "Acme at Home", "aB123456"))
}

func TestSeniorityTotal(t *testing.T) {
	tiers := map[string]bool{
		domain.SeniorityIntern: true,
		domain.SeniorityJunior: true,
		domain.SeniorityMid:    true,
		domain.SenioritySenior: true,
	}

	titles := []string{
		"", "Software Engineer", "SENIOR Backend Developer", "Junior QA",
		"Engineering Manager", "Marketing Intern", "Trainee Lawyer",
		"Assistant to the Director", "Tech Lead", "unrelated nonsense 123",
	}
	for _, title := range titles {
		got := Seniority(title)
		assert.True(t, tiers[got], "Seniority(%q) = %q not in tier set", title, got)
	}
}

func TestSeniorityPriority(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Intern", domain.SeniorityIntern},
		{"Senior Trainee Program", domain.SeniorityIntern}, // intern keywords beat senior
		{"Junior Manager", domain.SeniorityJunior},         // junior keywords beat senior
		{"Senior Developer", domain.SenioritySenior},
		{"Team Lead", domain.SenioritySenior},
		{"Account Manager", domain.SenioritySenior},
		{"Software Engineer", domain.SeniorityMid},
		{"", domain.SeniorityMid},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Seniority(c.title), "title %q", c.title)
	}
}

func TestRemoteStatus(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"This is a fully remote position", domain.RemoteYes},
		{"Hybrid role, 2 days in office", domain.RemotePartial},
		{"Office-based role in Brussels", domain.RemoteNo},
		{"100% remote, EU timezones", domain.RemoteYes},
		{"Remote work possible", domain.RemoteYes},
		{"Remote option after probation", domain.RemotePartial},
		{"Partially remote schedule", domain.RemotePartial},
		{"Remote fridays, office the rest of the week", domain.RemotePartial},
		{"Onsite in Ghent, remote on request", domain.RemotePartial},
		{"Great team, nice salary", domain.RemoteNo},
		{"Remoteness is a quality of distant places", domain.RemoteNo}, // no standalone word
		{"", domain.RemoteNo},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RemoteStatus(c.text), "text %q", c.text)
	}
}

func TestSalaryEstimate(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"We offer €3.500 per month plus benefits", 3500},
		{"Salary: €3,500/month", 3500},
		{"Pay is 2800 EUR monthly", 2800},
		{"£48.000 per annum", 4000},
		{"$60,000 a year", 5000},
		{"EUR 4.200 / month", 4200},
		{"Competitive salary", 0},
		{"Call us on 0032 2 123 45 67", 0}, // phone number, no currency qualifier
		{"€ per month", 0},
		{"", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SalaryEstimate(c.text), "text %q", c.text)
	}
}

func TestSalaryFirstPatternWins(t *testing.T) {
	// monthly pattern is listed first, so the monthly figure wins even when
	// a yearly one appears earlier in the text
	got := SalaryEstimate("€48.000 per year, that is €4.000 per month")
	assert.Equal(t, 4000, got)
}

func TestContractType(t *testing.T) {
	assert.Equal(t, "CDI", ContractType("CDI", "temporary role"), "explicit value wins verbatim")
	assert.Equal(t, "permanent", ContractType("", "Permanent contract from day one"))
	assert.Equal(t, "permanent", ContractType("", "indefinite duration agreement"))
	assert.Equal(t, "fixed-term", ContractType("", "Fixed term until December"))
	assert.Equal(t, "fixed-term", ContractType("", "temporary assignment"))
	assert.Equal(t, "freelance", ContractType("", "looking for a contractor"))
	assert.Equal(t, "internship", ContractType("", "6-month internship"))
	assert.Equal(t, "", ContractType("", "nothing to infer here"))
}

func TestJobType(t *testing.T) {
	assert.Equal(t, domain.TypeFullTime, JobType(""))
	assert.Equal(t, domain.TypeFullTime, JobType("Full-time"))
	assert.Equal(t, domain.TypePartTime, JobType("Part-time"))
	assert.Equal(t, domain.TypePartTime, JobType("part time (50%)"))
}

func TestSplitLocation(t *testing.T) {
	city, state, country := SplitLocation("Brussels, Belgium")
	assert.Equal(t, "Brussels", city)
	assert.Equal(t, "", state)
	assert.Equal(t, "Belgium", country)

	city, state, country = SplitLocation("Brussels")
	assert.Equal(t, "Brussels", city)
	assert.Equal(t, "", state)
	assert.Equal(t, "", country)

	city, state, country = SplitLocation("Leuven, Flemish Brabant, Belgium")
	assert.Equal(t, "Leuven", city)
	assert.Equal(t, "Flemish Brabant", state)
	assert.Equal(t, "Belgium", country)

	city, state, country = SplitLocation("")
	assert.Equal(t, "", city)
	assert.Equal(t, "", state)
	assert.Equal(t, "", country)
}
