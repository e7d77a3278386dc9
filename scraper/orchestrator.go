package scraper

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Candra0x6/BusinessScap-Maps/config"
	"github.com/Candra0x6/BusinessScap-Maps/models"
)

// Stats summarizes one keyword run. Attempted counts positions whose
// outcome was decided, so Attempted == Succeeded + Skipped. Retried
// counts stale re-resolution attempts, which happen in place and do not
// decide a position by themselves.
type Stats struct {
	Attempted int
	Succeeded int
	Skipped   int
	Retried   int
	Degraded  bool
}

// Orchestrator drives one keyword end to end: submit the search, expand
// the results panel to convergence, walk the listings and extract each
// one, with per-listing failures absorbed as logged skips.
type Orchestrator struct {
	sess Session
	cfg  *config.ScraperConfig
}

// NewOrchestrator creates an Orchestrator. Configuration is explicit;
// there is no package-level state.
func NewOrchestrator(sess Session, cfg *config.ScraperConfig) *Orchestrator {
	return &Orchestrator{sess: sess, cfg: cfg}
}

// Run scrapes up to max_results_per_keyword businesses for keyword.
// One bad listing never fails the run: timeouts and incomplete panels
// are counted as skips and the cursor moves on. Only a dead session
// aborts, and even then the records gathered so far come back with the
// error.
func (o *Orchestrator) Run(keyword string) ([]models.BusinessRecord, Stats, error) {
	var stats Stats
	var records []models.BusinessRecord

	log.Printf("Searching for %q\n", keyword)
	if err := o.sess.Search(keyword); err != nil {
		return nil, stats, fmt.Errorf("search %q: %w", keyword, err)
	}

	total, err := NewScroller(o.sess, o.cfg).Expand()
	if err != nil {
		return nil, stats, err
	}
	if total == 0 {
		log.Printf("No results for %q\n", keyword)
		return records, stats, nil
	}

	limit := o.cfg.MaxResultsPerKeyword
	log.Printf("Extracting up to %d of %d listings for %q\n", limit, total, keyword)

	extractor := NewExtractor(o.sess, o.cfg)
	iter := NewIterator(o.sess, o.cfg)

	err = iter.ForEach(0, func(h Handle) error {
		rec, extractErr := extractor.Extract(h)
		if extractErr != nil {
			var f *Failure
			if errors.As(extractErr, &f) {
				switch f.Kind {
				case StaleReference:
					stats.Retried++
					return extractErr
				case SessionFailure:
					return extractErr
				default:
					stats.Attempted++
					stats.Skipped++
					log.Printf("Skipping listing %d: %v\n", h.Position, extractErr)
					return nil
				}
			}
			return extractErr
		}

		stats.Attempted++
		stats.Succeeded++
		records = append(records, rec)
		log.Printf("Extracted %d/%d: %s\n", len(records), limit, rec.Name)
		if limit > 0 && len(records) >= limit {
			return ErrStop
		}
		time.Sleep(o.cfg.SettleDelay())
		return nil
	})

	// Positions the iterator gave up on after stale retries are skips too.
	if n := iter.Abandoned(); n > 0 {
		stats.Attempted += n
		stats.Skipped += n
	}

	if err != nil {
		if errors.Is(err, ErrDegraded) {
			stats.Degraded = true
			log.Printf("Warning: keyword %q cut short after repeated stale listings\n", keyword)
			return records, stats, nil
		}
		return records, stats, err
	}

	return records, stats, nil
}
