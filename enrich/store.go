package enrich

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Candra0x6/BusinessScap-Maps/db"
)

// EnrichStored walks stored businesses that have a website but no
// email yet, crawls each site and writes harvested addresses back.
// Returns how many businesses were enriched. Per-site failures are
// logged and skipped; only store errors abort the pass.
func EnrichStored(store *db.DB, e *Enricher, limit int) (int, error) {
	businesses, err := store.GetBusinessesMissingEmail(limit)
	if err != nil {
		return 0, fmt.Errorf("failed to load enrichment queue: %w", err)
	}

	log.Printf("Enriching %d businesses\n", len(businesses))

	enriched := 0
	for i, b := range businesses {
		if i > 0 {
			time.Sleep(e.cfg.Delay())
		}

		email, err := e.FindEmail(b.Website.String)
		if err != nil {
			if !errors.Is(err, ErrNoEmail) {
				log.Printf("Warning: Enrichment of %s (%s) failed: %v\n", b.Name, b.Website.String, err)
			}
			continue
		}

		if err := store.UpdateBusinessEmail(b.ID, email); err != nil {
			return enriched, fmt.Errorf("failed to store email for %s: %w", b.Name, err)
		}
		enriched++
		log.Printf("Enriched %s with %s\n", b.Name, email)
	}

	log.Printf("Enrichment finished: %d/%d businesses got an email\n", enriched, len(businesses))
	return enriched, nil
}
