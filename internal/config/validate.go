package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a copy with defaults filled in, plus the
// validation outcome. Missing tunables become defaults; missing source
// endpoints are errors.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	// ---- Defaults ----

	if strings.TrimSpace(out.App.DataDir) == "" {
		out.App.DataDir = "./data"
	}
	if strings.TrimSpace(out.App.DBFile) == "" {
		out.App.DBFile = "jobmill.db"
	}

	if out.Fetch.TimeoutSeconds <= 0 {
		out.Fetch.TimeoutSeconds = 30
	}
	if out.Fetch.PerHostRPS <= 0 {
		out.Fetch.PerHostRPS = 1
	}
	if out.Fetch.Burst <= 0 {
		out.Fetch.Burst = 2
	}
	if out.Fetch.Retries <= 0 {
		out.Fetch.Retries = 3
	}
	if out.Fetch.BackoffMillis <= 0 {
		out.Fetch.BackoffMillis = 500
	}

	if out.Sources.EuroBrussels.MaxListings <= 0 {
		out.Sources.EuroBrussels.MaxListings = 100
	}
	if out.Sources.JobsInBrussels.MaxCompanies <= 0 {
		out.Sources.JobsInBrussels.MaxCompanies = 20
	}
	if out.Sources.JobsInBrussels.MaxPerCompany <= 0 {
		out.Sources.JobsInBrussels.MaxPerCompany = 5
	}
	if out.Sources.Storyblok.PerPage <= 0 {
		out.Sources.Storyblok.PerPage = 25
	}
	if out.Sources.Storyblok.MaxListings <= 0 {
		out.Sources.Storyblok.MaxListings = 100
	}
	if out.Sources.Euractiv.MaxListings <= 0 {
		out.Sources.Euractiv.MaxListings = 200
	}

	if out.Notify.BatchSize <= 0 {
		out.Notify.BatchSize = 2
	}
	if out.Notify.WindowMillis <= 0 {
		out.Notify.WindowMillis = 1000
	}

	if out.Expiry.DefaultDays <= 0 {
		out.Expiry.DefaultDays = 30
	}

	// ---- Validation rules ----

	if out.Fetch.TimeoutSeconds < 5 {
		res.addWarn("fetch.timeout_seconds is very low (%d); slow sources will be dropped.", out.Fetch.TimeoutSeconds)
	}
	if out.Fetch.PerHostRPS > 5 {
		res.addWarn("fetch.per_host_rps=%g is aggressive for scraped sites.", out.Fetch.PerHostRPS)
	}

	if out.Sources.EuroBrussels.Enabled && strings.TrimSpace(out.Sources.EuroBrussels.BaseURL) == "" {
		res.addErr("sources.eurobrussels.base_url is required when enabled")
	}
	if out.Sources.JobsInBrussels.Enabled && strings.TrimSpace(out.Sources.JobsInBrussels.BaseURL) == "" {
		res.addErr("sources.jobsinbrussels.base_url is required when enabled")
	}
	if out.Sources.Storyblok.Enabled {
		if strings.TrimSpace(out.Sources.Storyblok.BaseURL) == "" {
			res.addErr("sources.storyblok.base_url is required when enabled")
		}
		if strings.TrimSpace(out.Sources.Storyblok.Token) == "" {
			res.addErr("sources.storyblok.token is required when enabled")
		}
	}
	if out.Sources.Euractiv.Enabled && strings.TrimSpace(out.Sources.Euractiv.FeedURL) == "" {
		res.addErr("sources.euractiv.feed_url is required when enabled")
	}

	if !out.Sources.EuroBrussels.Enabled && !out.Sources.JobsInBrussels.Enabled &&
		!out.Sources.Storyblok.Enabled && !out.Sources.Euractiv.Enabled {
		res.addWarn("no sources enabled; a run will do nothing.")
	}

	if out.Notify.Enabled {
		if strings.TrimSpace(out.Notify.BaseURL) == "" {
			res.addErr("notify.base_url is required when notify.enabled=true")
		}
		if strings.TrimSpace(out.Notify.From) == "" {
			res.addErr("notify.from is required when notify.enabled=true")
		}
	}

	return out, res
}
