package scraper

import (
	"errors"
	"log"
	"time"

	"github.com/Candra0x6/BusinessScap-Maps/config"
)

// VisitFunc processes the listing at one cursor position. Returning nil
// advances the cursor; ErrStop ends iteration cleanly; a StaleReference
// failure makes the iterator re-resolve and retry the same position; a
// SessionFailure aborts iteration.
type VisitFunc func(h Handle) error

// Iterator walks listing positions against the live collection. It never
// holds element references between steps: the collection size is re-read
// before every visit, and element access happens inside the visit through
// the session's index-addressed accessor. The collection may grow, shrink
// or be replaced wholesale between steps without breaking the walk.
type Iterator struct {
	sess      Session
	cfg       *config.ScraperConfig
	abandoned int
}

// NewIterator creates an Iterator over a live session.
func NewIterator(sess Session, cfg *config.ScraperConfig) *Iterator {
	return &Iterator{sess: sess, cfg: cfg}
}

// Abandoned returns how many positions were given up after exhausting
// the stale retry budget during the last ForEach.
func (it *Iterator) Abandoned() int {
	return it.abandoned
}

// ForEach visits listing positions from start until the live collection
// is exhausted, fn asks to stop, or the walk degrades. Exhaustion is the
// expected end and returns nil. ErrDegraded is returned after
// max_consecutive_skips positions in a row were abandoned as stale. A
// visit-count safety bound of twice the result cap guards against a
// pathologically churning view.
func (it *Iterator) ForEach(start int, fn VisitFunc) error {
	cursor := start
	staleRetries := 0
	consecAbandoned := 0
	visits := 0
	maxVisits := 2 * it.cfg.MaxResultsPerKeyword
	it.abandoned = 0

	for {
		if maxVisits > 0 && visits >= maxVisits {
			log.Printf("Warning: iteration stopped at safety bound after %d visits\n", visits)
			return nil
		}

		size, err := it.sess.ListingCount()
		if err != nil {
			return err
		}
		if cursor >= size {
			// The panel already converged, so nothing more will appear.
			log.Printf("Listing collection exhausted at position %d (%d items)\n", cursor, size)
			return nil
		}

		visits++
		err = fn(Handle{Position: cursor})
		switch {
		case err == nil:
			cursor++
			staleRetries = 0
			consecAbandoned = 0

		case errors.Is(err, ErrStop):
			return nil

		case IsKind(err, StaleReference):
			staleRetries++
			if staleRetries >= it.cfg.StaleRetryBudget {
				log.Printf("Abandoning listing %d after %d stale attempts\n", cursor, staleRetries)
				it.abandoned++
				consecAbandoned++
				cursor++
				staleRetries = 0
				if it.cfg.MaxConsecutiveSkips > 0 && consecAbandoned >= it.cfg.MaxConsecutiveSkips {
					log.Printf("Warning: %d consecutive listings abandoned, giving up on this keyword\n", consecAbandoned)
					return ErrDegraded
				}
			} else {
				log.Printf("Listing %d went stale, re-resolving (attempt %d/%d)\n", cursor, staleRetries+1, it.cfg.StaleRetryBudget)
				time.Sleep(it.cfg.StaleRetryDelay())
			}

		case IsKind(err, SessionFailure):
			return err

		default:
			return err
		}
	}
}
