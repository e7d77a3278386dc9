package scraper

import (
	"log"
	"time"

	"github.com/Candra0x6/BusinessScap-Maps/config"
)

// Listing growth has settled once this many consecutive scroll commands
// leave the panel extent unchanged.
const noGrowthThreshold = 2

// Scroller expands the virtualized results panel until its measured
// extent converges or the scroll budget is spent.
type Scroller struct {
	sess Session
	cfg  *config.ScraperConfig
}

// NewScroller creates a Scroller over a live session.
func NewScroller(sess Session, cfg *config.ScraperConfig) *Scroller {
	return &Scroller{sess: sess, cfg: cfg}
}

// Expand scrolls the results panel to the bottom repeatedly, waiting for
// new items to render between commands, and stops once the extent stops
// growing, the end-of-results marker appears, or max_scroll_attempts is
// reached. It returns the fresh listing count as the item estimate.
func (s *Scroller) Expand() (int, error) {
	prev, err := s.sess.ScrollExtent()
	if err != nil {
		return 0, err
	}

	noGrowth := 0
	for attempt := 1; attempt <= s.cfg.MaxScrollAttempts; attempt++ {
		if err := s.sess.ScrollToBottom(); err != nil {
			return 0, err
		}
		time.Sleep(s.cfg.SettleDelay())

		extent, err := s.sess.ScrollExtent()
		if err != nil {
			return 0, err
		}
		log.Printf("Scroll %d/%d: panel extent %d -> %d\n", attempt, s.cfg.MaxScrollAttempts, prev, extent)

		if extent == prev {
			noGrowth++
			if end, endErr := s.sess.EndOfResults(); endErr == nil && end {
				log.Println("End of results marker reached")
				break
			}
			if noGrowth >= noGrowthThreshold {
				log.Printf("Panel extent stable after %d scrolls\n", attempt)
				break
			}
		} else {
			noGrowth = 0
		}
		prev = extent
	}

	count, err := s.sess.ListingCount()
	if err != nil {
		return 0, err
	}
	log.Printf("Listing panel converged with %d items\n", count)
	return count, nil
}
