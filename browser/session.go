package browser

import (
	"net/url"
	"time"

	"github.com/go-rod/rod"

	"github.com/Candra0x6/BusinessScap-Maps/scraper"
)

const mapsSearchURL = "https://www.google.com/maps/search/"

// Listing anchors inside the results feed. The collection is resolved
// fresh inside every script; no element reference survives a call.
const feedSelector = `div[role="feed"]`

// Session drives one Google Maps tab and implements scraper.Session.
// All element access goes through page scripts that re-query the DOM,
// so a re-render between calls can only surface as a classified
// stale-reference failure, never as a silently dead handle.
type Session struct {
	page    *rod.Page
	timeout time.Duration
}

// Search opens the maps search for keyword and waits for the results
// feed to render.
func (s *Session) Search(keyword string) error {
	target := mapsSearchURL + url.PathEscape(keyword) + "?hl=en"

	if err := s.page.Timeout(2 * s.timeout).Navigate(target); err != nil {
		return classifyErr(err, -1)
	}
	if err := s.page.Timeout(2 * s.timeout).WaitLoad(); err != nil {
		return classifyErr(err, -1)
	}

	// Consent interstitials appear on fresh profiles; best effort.
	s.page.Eval(consentJS)

	if _, err := s.page.Timeout(s.timeout).Element(feedSelector); err != nil {
		return classifyErr(err, -1)
	}
	return nil
}

// ScrollExtent measures the results feed scroll height.
func (s *Session) ScrollExtent() (int, error) {
	res, err := s.page.Timeout(s.timeout).Eval(scrollExtentJS)
	if err != nil {
		return 0, classifyErr(err, -1)
	}
	return res.Value.Int(), nil
}

// ScrollToBottom commands the feed to its current end so the next
// batch of listings loads.
func (s *Session) ScrollToBottom() error {
	if _, err := s.page.Timeout(s.timeout).Eval(scrollToBottomJS); err != nil {
		return classifyErr(err, -1)
	}
	return nil
}

// ListingCount freshly counts the listing anchors in the feed.
func (s *Session) ListingCount() (int, error) {
	res, err := s.page.Timeout(s.timeout).Eval(listingCountJS)
	if err != nil {
		return 0, classifyErr(err, -1)
	}
	return res.Value.Int(), nil
}

// EndOfResults reports whether the feed shows its terminal marker.
func (s *Session) EndOfResults() (bool, error) {
	res, err := s.page.Timeout(s.timeout).Eval(endOfResultsJS)
	if err != nil {
		return false, classifyErr(err, -1)
	}
	return res.Value.Bool(), nil
}

// OpenListing re-resolves the feed collection, centers the listing at
// index in the viewport and clicks it, then waits for the detail
// heading to render. An index past the freshly resolved collection is
// a stale reference: the view shrank between the caller's size check
// and this interaction.
func (s *Session) OpenListing(index int) error {
	res, err := s.page.Timeout(s.timeout).Eval(openListingJS, index)
	if err != nil {
		return classifyErr(err, index)
	}
	if !res.Value.Bool() {
		return scraper.NewFailure(scraper.StaleReference, index, errListingVanished)
	}

	if _, err := s.page.Timeout(s.timeout).Element("h1.DUwDvf"); err != nil {
		return classifyErr(err, index)
	}
	return nil
}

// ReadText returns the trimmed text of the first match, "" when the
// selector matches nothing.
func (s *Session) ReadText(selector string) (string, error) {
	res, err := s.page.Timeout(s.timeout).Eval(readTextJS, selector)
	if err != nil {
		return "", classifyErr(err, -1)
	}
	return res.Value.Str(), nil
}

// ReadAttr returns an attribute of the first match, "" when the node
// or the attribute is absent.
func (s *Session) ReadAttr(selector, attr string) (string, error) {
	res, err := s.page.Timeout(s.timeout).Eval(readAttrJS, selector, attr)
	if err != nil {
		return "", classifyErr(err, -1)
	}
	return res.Value.Str(), nil
}

// Location returns the tab's current URL. Maps rewrites it to the
// opened place, which is what the extractor records as the maps link.
func (s *Session) Location() (string, error) {
	info, err := s.page.Timeout(s.timeout).Info()
	if err != nil {
		return "", classifyErr(err, -1)
	}
	return info.URL, nil
}

// Close closes the tab. The owning Browser stays usable.
func (s *Session) Close() error {
	return s.page.Close()
}

const (
	scrollExtentJS = `() => {
		const feed = document.querySelector('div[role="feed"]');
		return feed ? feed.scrollHeight : 0;
	}`

	scrollToBottomJS = `() => {
		const feed = document.querySelector('div[role="feed"]');
		if (feed) feed.scrollTo(0, feed.scrollHeight);
	}`

	listingCountJS = `() => {
		return document.querySelectorAll('div[role="feed"] a.hfpxzc').length;
	}`

	endOfResultsJS = `() => {
		return !!document.querySelector('div[role="feed"] span.HlvSq');
	}`

	openListingJS = `(i) => {
		const links = document.querySelectorAll('div[role="feed"] a.hfpxzc');
		if (i >= links.length) return false;
		links[i].scrollIntoView({block: 'center'});
		links[i].click();
		return true;
	}`

	readTextJS = `(sel) => {
		const el = document.querySelector(sel);
		return el ? el.textContent.trim() : '';
	}`

	readAttrJS = `(sel, attr) => {
		const el = document.querySelector(sel);
		if (!el) return '';
		const v = el.getAttribute(attr);
		return v === null ? '' : v;
	}`

	consentJS = `() => {
		const selectors = [
			'button[aria-label="Accept all"]',
			'button[aria-label="I agree"]',
			'form[action*="consent"] button',
		];
		for (const sel of selectors) {
			const btn = document.querySelector(sel);
			if (btn) { btn.click(); return true; }
		}
		return false;
	}`
)
