package models

import "time"

// BusinessRecord is one extracted business from the map results.
// Name and MapsLink are always present on a successful extraction;
// the other fields are empty when the detail panel does not show them.
type BusinessRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Website     string `json:"website"`
	Phone       string `json:"phone"`
	MapsLink    string `json:"maps_link"`
}

// HasWebsite reports whether the record carries a website URL.
func (r BusinessRecord) HasWebsite() bool {
	return r.Website != ""
}

// HasPhone reports whether the record carries a phone number.
func (r BusinessRecord) HasPhone() bool {
	return r.Phone != ""
}

// KeywordSummary is the per-keyword outcome row of a batch run.
type KeywordSummary struct {
	Keyword   string
	Records   int
	Attempted int
	Skipped   int
	Status    string
	Duration  time.Duration
}
