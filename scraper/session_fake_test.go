package scraper

import (
	"errors"
	"fmt"

	"github.com/Candra0x6/BusinessScap-Maps/config"
)

// fakeItem is one scripted listing backing the fake session.
type fakeItem struct {
	name        string
	description string
	website     string
	phone       string
	link        string
}

func makeItems(n int) []fakeItem {
	items := make([]fakeItem, n)
	for i := range items {
		items[i] = fakeItem{
			name:        fmt.Sprintf("Business %03d", i),
			description: "Coffee shop",
			website:     fmt.Sprintf("https://biz%03d.example.com", i),
			phone:       "Phone: +1 650-253-0000",
			link:        fmt.Sprintf("https://maps.example.com/place/%03d", i),
		}
	}
	return items
}

// fakeSession scripts a live map view: the backing collection can grow
// on scroll commands, be mutated mid-iteration, and fail on demand.
type fakeSession struct {
	items []fakeItem

	growth    []int // collection sizes applied per scroll command
	scrolls   int
	endMarker bool

	staleRemaining map[int]int  // position -> remaining stale open failures
	timeoutAlways  map[int]bool // position -> every open times out
	killAt         int          // position whose open kills the session, -1 off
	failAll        error        // once set, every call errors

	opened    int
	openCount map[int]int
	onOpen    func(pos int) // runs after a successful open

	searched  []string
	searchErr error
}

func newFakeSession(items []fakeItem) *fakeSession {
	return &fakeSession{
		items:          items,
		staleRemaining: map[int]int{},
		timeoutAlways:  map[int]bool{},
		killAt:         -1,
		opened:         -1,
		openCount:      map[int]int{},
	}
}

func (s *fakeSession) Search(keyword string) error {
	if s.failAll != nil {
		return s.failAll
	}
	if s.searchErr != nil {
		return s.searchErr
	}
	s.searched = append(s.searched, keyword)
	return nil
}

func (s *fakeSession) ScrollExtent() (int, error) {
	if s.failAll != nil {
		return 0, s.failAll
	}
	return len(s.items) * 137, nil
}

func (s *fakeSession) ScrollToBottom() error {
	if s.failAll != nil {
		return s.failAll
	}
	s.scrolls++
	if s.scrolls <= len(s.growth) {
		s.items = makeItems(s.growth[s.scrolls-1])
	}
	return nil
}

func (s *fakeSession) ListingCount() (int, error) {
	if s.failAll != nil {
		return 0, s.failAll
	}
	return len(s.items), nil
}

func (s *fakeSession) EndOfResults() (bool, error) {
	if s.failAll != nil {
		return false, s.failAll
	}
	return s.endMarker, nil
}

func (s *fakeSession) OpenListing(index int) error {
	if s.failAll != nil {
		return s.failAll
	}
	if s.killAt >= 0 && index == s.killAt {
		s.failAll = NewFailure(SessionFailure, index, errors.New("browser connection lost"))
		return s.failAll
	}
	if s.staleRemaining[index] > 0 {
		s.staleRemaining[index]--
		return NewFailure(StaleReference, index, errors.New("node detached from document"))
	}
	if s.timeoutAlways[index] {
		return NewFailure(InteractionTimeout, index, errors.New("deadline exceeded"))
	}
	if index >= len(s.items) {
		return NewFailure(StaleReference, index, errors.New("listing index out of range"))
	}
	s.opened = index
	s.openCount[index]++
	if s.onOpen != nil {
		s.onOpen(index)
	}
	return nil
}

func (s *fakeSession) ReadText(selector string) (string, error) {
	if s.failAll != nil {
		return "", s.failAll
	}
	if s.opened < 0 || s.opened >= len(s.items) {
		return "", nil
	}
	item := s.items[s.opened]
	for _, sel := range nameSelectors {
		if sel == selector {
			return item.name, nil
		}
	}
	for _, sel := range descriptionSelectors {
		if sel == selector {
			return item.description, nil
		}
	}
	return "", nil
}

func (s *fakeSession) ReadAttr(selector, attr string) (string, error) {
	if s.failAll != nil {
		return "", s.failAll
	}
	if s.opened < 0 || s.opened >= len(s.items) {
		return "", nil
	}
	item := s.items[s.opened]
	if selector == websiteProbes[0].selector && attr == websiteProbes[0].attr {
		return item.website, nil
	}
	if selector == phoneProbes[0].selector && attr == phoneProbes[0].attr {
		return item.phone, nil
	}
	return "", nil
}

func (s *fakeSession) Location() (string, error) {
	if s.failAll != nil {
		return "", s.failAll
	}
	if s.opened >= 0 && s.opened < len(s.items) {
		return s.items[s.opened].link, nil
	}
	return "https://maps.example.com/search", nil
}

// testScraperConfig returns engine settings with zero pacing so tests
// run instantly.
func testScraperConfig() *config.ScraperConfig {
	return &config.ScraperConfig{
		MaxResultsPerKeyword: 50,
		MaxScrollAttempts:    10,
		ExtractAttempts:      2,
		StaleRetryBudget:     3,
		MaxConsecutiveSkips:  5,
		PhoneRegion:          "US",
	}
}
