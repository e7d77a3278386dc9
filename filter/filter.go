package filter

import (
	"github.com/Candra0x6/BusinessScap-Maps/config"
	"github.com/Candra0x6/BusinessScap-Maps/models"
)

// Filter applies filter criteria to extracted business records
type Filter struct {
	cfg *config.FilterConfig
}

// NewFilter creates a new Filter instance
func NewFilter(cfg *config.FilterConfig) *Filter {
	return &Filter{
		cfg: cfg,
	}
}

// ApplyFilters filters records based on the configuration
func (f *Filter) ApplyFilters(records []models.BusinessRecord) []models.BusinessRecord {
	var filtered []models.BusinessRecord

	for _, record := range records {
		if f.matchesFilters(record) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}

// matchesFilters checks if a record matches all filter criteria
func (f *Filter) matchesFilters(record models.BusinessRecord) bool {
	if f.cfg.RequireWebsite && !record.HasWebsite() {
		return false
	}

	if f.cfg.RequirePhone && !record.HasPhone() {
		return false
	}

	return true
}
