package scraper

import (
	"fmt"
	"time"

	"github.com/Candra0x6/BusinessScap-Maps/config"
	"github.com/Candra0x6/BusinessScap-Maps/models"
	"github.com/Candra0x6/BusinessScap-Maps/parser"
)

// Detail-panel queries, primary first. The panel markup shifts between
// rollouts, so every field carries a fallback chain.
var (
	nameSelectors = []string{"h1.DUwDvf.lfPIob", "h1.DUwDvf", "h1"}

	descriptionSelectors = []string{
		"button[jsaction*='pane.rating.category']",
		"button.DkEaL",
	}

	websiteProbes = []attrProbe{
		{"a[data-item-id='authority']", "href"},
		{"a[aria-label^='Website:']", "href"},
	}

	phoneProbes = []attrProbe{
		{"button[data-item-id*='phone']", "aria-label"},
		{"a[href^='tel:']", "href"},
	}
)

// attrProbe reads one attribute from the first node a selector matches.
type attrProbe struct {
	selector string
	attr     string
}

// Extractor opens one listing's detail panel and reads its fields into a
// BusinessRecord. Name and maps link are required; description, website
// and phone are optional.
type Extractor struct {
	sess Session
	cfg  *config.ScraperConfig
}

// NewExtractor creates an Extractor over a live session.
func NewExtractor(sess Session, cfg *config.ScraperConfig) *Extractor {
	return &Extractor{sess: sess, cfg: cfg}
}

// Extract opens the listing at h, waits for the panel to settle and reads
// its fields. The whole extraction is retried up to extract_attempts times
// when a bounded wait expires or required fields have not rendered yet;
// the panel may simply not have finished rendering, so single-field
// retries would read a half-drawn view. StaleReference and SessionFailure
// surface immediately: the iterator owns stale recovery, and a dead
// session cannot be retried here.
func (e *Extractor) Extract(h Handle) (models.BusinessRecord, error) {
	lastKind := MissingRequiredFields
	var lastErr error

	attempts := e.cfg.ExtractAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			time.Sleep(e.cfg.SettleDelay())
		}

		if err := e.sess.OpenListing(h.Position); err != nil {
			if IsKind(err, StaleReference) || IsKind(err, SessionFailure) {
				return models.BusinessRecord{}, err
			}
			lastKind, lastErr = InteractionTimeout, err
			continue
		}

		time.Sleep(e.cfg.SettleDelay())

		rec, err := e.readFields()
		if err != nil {
			if IsKind(err, SessionFailure) {
				return models.BusinessRecord{}, err
			}
			lastKind, lastErr = InteractionTimeout, err
			continue
		}

		if rec.Name == "" || rec.MapsLink == "" {
			lastKind = MissingRequiredFields
			lastErr = fmt.Errorf("name %q, maps link %q", rec.Name, rec.MapsLink)
			continue
		}

		return rec, nil
	}

	return models.BusinessRecord{}, NewFailure(lastKind, h.Position, lastErr)
}

// readFields reads the detail panel with fresh structural queries.
// Optional fields that are simply absent come back empty without error.
func (e *Extractor) readFields() (models.BusinessRecord, error) {
	var rec models.BusinessRecord

	for _, sel := range nameSelectors {
		text, err := e.sess.ReadText(sel)
		if err != nil {
			return rec, err
		}
		if text != "" {
			rec.Name = parser.CleanText(text)
			break
		}
	}

	for _, sel := range descriptionSelectors {
		text, err := e.sess.ReadText(sel)
		if err != nil {
			return rec, err
		}
		if text != "" {
			rec.Description = parser.CleanText(text)
			break
		}
	}

	for _, probe := range websiteProbes {
		val, err := e.sess.ReadAttr(probe.selector, probe.attr)
		if err != nil {
			return rec, err
		}
		if val != "" {
			rec.Website = parser.CleanWebsiteURL(val)
			break
		}
	}

	for _, probe := range phoneProbes {
		val, err := e.sess.ReadAttr(probe.selector, probe.attr)
		if err != nil {
			return rec, err
		}
		if val != "" {
			rec.Phone = parser.NormalizePhone(val, e.cfg.PhoneRegion)
			break
		}
	}

	loc, err := e.sess.Location()
	if err != nil {
		return rec, err
	}
	rec.MapsLink = loc

	return rec, nil
}
