package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolver(t *testing.T) {
	r := NewResolver([]string{"/jobs/1", "/jobs/2", ""})

	assert.True(t, r.IsDuplicate("/jobs/1"))
	assert.True(t, r.IsDuplicate("/jobs/2"))
	assert.False(t, r.IsDuplicate("/jobs/3"))
	assert.Equal(t, 2, r.Len())

	r.Register("/jobs/3")
	assert.True(t, r.IsDuplicate("/jobs/3"))

	// empty keys are inert
	r.Register("")
	assert.False(t, r.IsDuplicate(""))
	assert.Equal(t, 3, r.Len())
}

func TestResolversAreIndependent(t *testing.T) {
	a := NewResolver(nil)
	b := NewResolver(nil)

	a.Register("/jobs/1")
	assert.True(t, a.IsDuplicate("/jobs/1"))
	assert.False(t, b.IsDuplicate("/jobs/1"))
}

func TestRelativeKey(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"https://jobs.example.eu/vacancies/1234/", "/vacancies/1234"},
		{"https://jobs.example.eu/vacancies/1234?utm_source=feed", "/vacancies/1234"},
		{"http://jobs.example.eu/", "/"},
		{"https://jobs.example.eu", "/"},
		{"/vacancies/1234/", "/vacancies/1234"},
		{"vacancies/1234", "/vacancies/1234"},
		{"  /vacancies/1234  ", "/vacancies/1234"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, RelativeKey(c.in), "input %q", c.in)
	}
}

func TestRelativeKeyStableAcrossVariants(t *testing.T) {
	// the same listing reached via different URL shapes yields one key
	variants := []string{
		"https://jobs.example.eu/vacancies/1234",
		"https://jobs.example.eu/vacancies/1234/",
		"https://jobs.example.eu/vacancies/1234?page=2",
		"/vacancies/1234",
	}
	want := RelativeKey(variants[0])
	for _, v := range variants[1:] {
		assert.Equal(t, want, RelativeKey(v), "variant %q", v)
	}
}
