package domain

import "time"

// Draft is the shape an adapter hands to the pipeline once source-specific
// extraction is done. Each source package builds it with its own typed
// function over its own candidate struct; nothing downstream probes raw
// payloads for alternately named fields.
type Draft struct {
	Title       string
	CompanyName string

	// Description is the flattened plain text produced by the extractor.
	Description string
	// Emails preserves discovery order; the first one becomes ContactEmail.
	Emails []string

	Tags []string

	// ContractType is the source's explicit value, '' when the source has
	// none and the normalizer should infer from text.
	ContractType string
	// JobType is the source's explicit full-time/part-time hint, '' → default.
	JobType string

	LocationRaw string

	ApplyLink    string
	RelativeLink string // '' when the source has no stable relative path

	// Deadline is the source-provided expiry, nil → 30 days from ingestion.
	Deadline *time.Time
}
