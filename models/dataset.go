package models

// DatasetDescriptor identifies one queryable resource on data.gov.in.
type DatasetDescriptor struct {
	ResourceID  string `json:"resource_id" yaml:"resource_id"`
	Title       string `json:"title" yaml:"title"`
	Ministry    string `json:"ministry" yaml:"ministry"`
	Description string `json:"description" yaml:"description"`
}

// Record is one row returned by the upstream API. The field set varies per
// dataset, so values stay untyped.
type Record map[string]interface{}

// FetchOutcome is the result of fetching one dataset for one query. A failed
// fetch is not an error: it is an outcome with zero records.
type FetchOutcome struct {
	Dataset   DatasetDescriptor
	Records   []Record
	Succeeded bool
}

// Source is a citation accompanying an answer. Live sources are derived from
// fetched datasets; trusted sources come from the static reference catalog.
type Source struct {
	Title       string `json:"title" yaml:"title"`
	URL         string `json:"url" yaml:"url"`
	Ministry    string `json:"ministry,omitempty" yaml:"ministry,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Records     int    `json:"records,omitempty" yaml:"-"`
}

// Answer is the final product of the resolution pipeline for one query.
type Answer struct {
	Text    string
	Sources []Source
	Mode    ResponseMode
}
